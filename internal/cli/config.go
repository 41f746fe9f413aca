package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yarkm13/ftpsh/internal/config"
	"github.com/yarkm13/ftpsh/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration ftpsh would use, after merging the config file,
FTPSH_* environment variables and defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return printConfig(cmd, cfg, path)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func printConfig(cmd *cobra.Command, cfg *config.Config, path string) error {
	data, err := config.Render(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := "built-in defaults"
	if path != "" {
		source = path
	}
	_, _ = fmt.Fprintln(out, ui.MutedStyle().Render("# source: "+source))
	_, _ = fmt.Fprint(out, string(data))
	return nil
}
