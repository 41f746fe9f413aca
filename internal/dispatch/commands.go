package dispatch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/yarkm13/ftpsh/internal/errors"
	"github.com/yarkm13/ftpsh/internal/remote"
	"github.com/yarkm13/ftpsh/internal/session"
)

func commandTable() []*Command {
	return []*Command{
		{
			Name:        "connect",
			Usage:       "[-f] [-u user] <host> <port>",
			Description: "Open a connection to a remote server",
			MinArgs:     2,
			flags: func(fs *pflag.FlagSet) {
				fs.BoolP("force", "f", false, "Drop the current connection first")
				fs.StringP("user", "u", "", "Log in as user (prompts for a password)")
			},
			run: runConnect,
		},
		{
			Name:        "status",
			Description: "Show the connection status",
			run: func(_ context.Context, d *Dispatcher, _ *pflag.FlagSet) error {
				d.reporter.Info("%s", d.ctrl.Status())
				return nil
			},
		},
		{
			Name:        "close",
			Description: "Close the connection",
			run: func(_ context.Context, d *Dispatcher, _ *pflag.FlagSet) error {
				d.ctrl.Disconnect()
				d.reporter.Success("Connection closed")
				return nil
			},
		},
		{
			Name:        "pwd",
			Description: "Print the remote working directory",
			run: func(_ context.Context, d *Dispatcher, _ *pflag.FlagSet) error {
				dir, err := d.ctrl.Pwd()
				if err != nil {
					return err
				}
				d.reporter.Info("%s", dir)
				return nil
			},
		},
		{
			Name:        "cd",
			Usage:       "<path>",
			Description: "Change the remote working directory",
			MinArgs:     1,
			run: func(_ context.Context, d *Dispatcher, fs *pflag.FlagSet) error {
				res, err := d.ctrl.Cd(fs.Arg(0))
				if err != nil {
					return err
				}
				d.reporter.Result(res)
				return nil
			},
		},
		{
			Name:        "ls",
			Usage:       "[-l]",
			Description: "List the remote working directory",
			flags: func(fs *pflag.FlagSet) {
				fs.BoolP("long", "l", false, "Show sizes and modification times")
			},
			run: func(_ context.Context, d *Dispatcher, fs *pflag.FlagSet) error {
				entries, err := d.ctrl.List()
				if err != nil {
					return err
				}
				long, _ := fs.GetBool("long")
				d.reporter.Entries(entries, long)
				return nil
			},
		},
		{
			Name:        "download",
			Usage:       "<remote_filename> <local_path>",
			Description: "Download a file; an existing local directory receives it under its remote name",
			MinArgs:     2,
			run: func(_ context.Context, d *Dispatcher, fs *pflag.FlagSet) error {
				dl, err := d.ctrl.Download(fs.Arg(0), fs.Arg(1))
				if err != nil {
					return err
				}
				d.reporter.Download(dl)
				return nil
			},
		},
		{
			Name:           "downloadDir",
			Usage:          "[--filter regexp] <local_path> [regexp]",
			Description:    "Download every file of the remote working directory into an existing local directory",
			MinArgs:        1,
			QuotedPatterns: true,
			flags: func(fs *pflag.FlagSet) {
				fs.String("filter", "", "Only download names matching this regular expression")
			},
			run: runDownloadDir,
		},
	}
}

func runConnect(ctx context.Context, d *Dispatcher, fs *pflag.FlagSet) error {
	host := fs.Arg(0)
	port, err := strconv.Atoi(fs.Arg(1))
	if err != nil || port < 1 || port > 65535 {
		return errors.New(errors.ErrUsage,
			fmt.Sprintf("Invalid port: %s", fs.Arg(1)),
			"Ports are numbers between 1 and 65535")
	}
	force, _ := fs.GetBool("force")
	user, _ := fs.GetString("user")
	if user == "" {
		user = d.opts.DefaultUser
	}

	var creds *remote.Credentials
	if user != "" {
		if d.secrets == nil {
			return errors.New(errors.ErrUsage, "Cannot read a password here", "")
		}
		password, pErr := d.secrets.ReadSecret(fmt.Sprintf("Password for %s@%s: ", user, host))
		if pErr != nil {
			return errors.WrapWithCode(pErr, errors.ErrUsage, "Password entry aborted", "")
		}
		creds = remote.NewCredentials(user, []byte(password))
		defer creds.Clear()
	}

	res, err := d.ctrl.Connect(ctx, host, port, creds, force)
	if err != nil {
		return err
	}
	d.reporter.Result(res)
	return nil
}

func runDownloadDir(_ context.Context, d *Dispatcher, fs *pflag.FlagSet) error {
	pattern, _ := fs.GetString("filter")
	if fs.NArg() > 1 {
		if fs.Changed("filter") {
			return errors.New(errors.ErrUsage,
				"Pattern given twice",
				"Use either --filter or the second argument, not both")
		}
		pattern = fs.Arg(1)
	}
	filter, err := session.NewFilter(pattern)
	if err != nil {
		return err
	}

	summary, err := d.ctrl.DownloadDir(fs.Arg(0), filter, d.reporter.SummaryItem)
	if err != nil {
		return err
	}
	d.reporter.Summary(summary)
	return nil
}
