package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yarkm13/ftpsh/internal/config"
	"github.com/yarkm13/ftpsh/internal/dispatch"
	"github.com/yarkm13/ftpsh/internal/localfs"
	"github.com/yarkm13/ftpsh/internal/logger"
	"github.com/yarkm13/ftpsh/internal/remote"
	"github.com/yarkm13/ftpsh/internal/session"
	"github.com/yarkm13/ftpsh/internal/shell"
)

func runShell(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	console, err := shell.New(os.Stdin, cmd.OutOrStdout(), cfg.Prompt)
	if err != nil {
		return err
	}
	defer func() { _ = console.Close() }()

	log := logger.Noop()
	if debugEnabled() {
		log = logger.NewWriterLogger("[ftpsh]", console.Writer(), true)
	}
	logger.SetDefault(log)
	if cfgPath != "" {
		log.Debug("using config %s", cfgPath)
	}

	d, ctrl, err := newSession(cfg, console, localfs.NewOS(), log)
	if err != nil {
		return err
	}
	defer ctrl.Disconnect()

	ctx := cmd.Context()
	if len(args) == 2 {
		// A failed startup connect is reported; the shell still starts.
		_ = d.Dispatch(ctx, "connect", args)
	}
	return console.Run(ctx)
}

// newSession wires a remote client, controller and dispatcher to console.
func newSession(cfg *config.Config, console *shell.Console, fs localfs.FS, log logger.Logger) (*dispatch.Dispatcher, *session.Controller, error) {
	client, err := remote.NewClient(cfg.Protocol, remote.Options{
		Timeout:        cfg.Timeout,
		DisableEPSV:    cfg.FTP.DisableEPSV,
		TLSSkipVerify:  cfg.FTP.TLSSkipVerify,
		SSHConfigPath:  cfg.SFTP.SSHConfig,
		ConfirmHostKey: console.Confirm,
		Logger:         log,
	})
	if err != nil {
		return nil, nil, err
	}

	ctrl := session.NewController(client, fs, log)
	d := dispatch.New(ctrl, console.Reporter(), console, dispatch.Options{
		DefaultUser: cfg.User,
		Logger:      log,
	})
	console.SetCommands(d)
	return d, ctrl, nil
}
