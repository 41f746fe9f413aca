package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yarkm13/ftpsh/internal/config"
	"github.com/yarkm13/ftpsh/internal/errors"
	"github.com/yarkm13/ftpsh/internal/logger"
	"github.com/yarkm13/ftpsh/internal/ui"
)

// Global flags
var (
	cfgFile      string
	protocolFlag string
	userFlag     string
	timeoutFlag  time.Duration
	noColor      bool
	debugFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "ftpsh [host port]",
	Short: "Interactive FTP, FTPS and SFTP client shell",
	Long: `ftpsh opens an interactive shell for browsing a remote server and
downloading files from it.

Given a host and port it connects before the prompt appears. Type 'help'
inside the shell for the list of commands.

Examples:
  ftpsh
  ftpsh ftp.example.com 21
  ftpsh --protocol sftp --user deploy files.example.com 22`,
	Args:          validateHostPort,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd, args)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./.ftpsh.yaml or ~/.config/ftpsh/config.yaml)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&debugFlag, "debug", false, "log protocol activity (also FTPSH_DEBUG)")

	f := rootCmd.Flags()
	f.StringVar(&protocolFlag, "protocol", config.DefaultProtocol, "remote protocol: ftp, ftps or sftp")
	f.StringVarP(&userFlag, "user", "u", "", "default login for connect (prompts for a password)")
	f.DurationVar(&timeoutFlag, "timeout", config.DefaultTimeout, "dial and login timeout")
}

// validateHostPort accepts no arguments or exactly a host and a port.
func validateHostPort(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0, 2:
		return nil
	default:
		return errors.New(errors.ErrUsage,
			fmt.Sprintf("Expected a host and a port, got %d argument(s)", len(args)),
			"Run 'ftpsh <host> <port>' or 'ftpsh' without arguments")
	}
}

// loadConfig resolves the effective config for cmd and applies the output
// settings.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile, cmd.Flags())
	if err != nil {
		return nil, "", err
	}
	if noColor {
		ui.DisableColors()
	} else {
		ui.SetColorMode(cfg.Color)
	}
	return cfg, path, nil
}

func debugEnabled() bool {
	return debugFlag || os.Getenv(logger.DebugEnv) != ""
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
