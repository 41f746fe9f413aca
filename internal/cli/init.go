package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yarkm13/ftpsh/internal/config"
	"github.com/yarkm13/ftpsh/internal/remote"
	"github.com/yarkm13/ftpsh/internal/ui"
)

var (
	initForce    bool
	initProtocol string
	initUser     string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .ftpsh.yaml configuration",
	Long: `Write a .ftpsh.yaml file with default settings to the current directory.

Examples:
  ftpsh init
  ftpsh init --protocol sftp --user deploy
  ftpsh init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd, config.ConfigFileName)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config")
	initCmd.Flags().StringVar(&initProtocol, "protocol", config.DefaultProtocol, "protocol to store: ftp, ftps or sftp")
	initCmd.Flags().StringVar(&initUser, "user", "", "default login to store")
}

func initConfig(cmd *cobra.Command, path string) error {
	cfg := config.DefaultConfig()
	cfg.Protocol = initProtocol
	cfg.User = initUser
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Write(path, cfg, initForce); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	abs, _ := filepath.Abs(path)
	_, _ = fmt.Fprintln(out, ui.SuccessStyle().Render(fmt.Sprintf("%s Created %s", ui.SymbolSuccess, abs)))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintf(out, "  ftpsh <host> %d  - Connect and open the shell\n", remote.DefaultPort(cfg.Protocol))
	_, _ = fmt.Fprintln(out, "  ftpsh config      - Show the effective configuration")
	return nil
}
