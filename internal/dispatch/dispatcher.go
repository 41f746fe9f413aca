// Package dispatch maps typed shell commands onto session operations and
// reports exactly one outcome for each of them.
package dispatch

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/pflag"

	"github.com/yarkm13/ftpsh/internal/errors"
	"github.com/yarkm13/ftpsh/internal/logger"
	"github.com/yarkm13/ftpsh/internal/remote"
	"github.com/yarkm13/ftpsh/internal/session"
)

// ErrUnknownCommand is returned by Dispatch for names missing from the table.
var ErrUnknownCommand = stderrors.New("unknown command")

// Reporter receives command outcomes.
type Reporter interface {
	Writer() io.Writer
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(err error)
	Result(res remote.Result)
	Entries(entries []remote.Entry, long bool)
	Download(dl session.Download)
	SummaryItem(item session.SummaryItem)
	Summary(s *session.Summary)
}

// SecretPrompter reads a secret without echoing it.
type SecretPrompter interface {
	ReadSecret(prompt string) (string, error)
}

// Command is one row of the command table.
type Command struct {
	Name        string
	Usage       string
	Description string
	// MinArgs is the number of positional arguments required after flags
	// have been parsed.
	MinArgs int
	// QuotedPatterns marks commands that take a regular expression, which
	// must be single-quoted to keep its backslashes.
	QuotedPatterns bool

	flags func(fs *pflag.FlagSet)
	run   func(ctx context.Context, d *Dispatcher, fs *pflag.FlagSet) error
}

// Options configure a Dispatcher.
type Options struct {
	// DefaultUser is used by connect when no --user is given. Empty means
	// anonymous login.
	DefaultUser string
	Logger      logger.Logger
}

// Dispatcher validates arguments and runs commands against a session
// controller. It holds no state of its own between commands.
type Dispatcher struct {
	ctrl     *session.Controller
	reporter Reporter
	secrets  SecretPrompter
	opts     Options
	log      logger.Logger
	commands map[string]*Command
}

func New(ctrl *session.Controller, reporter Reporter, secrets SecretPrompter, opts Options) *Dispatcher {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	d := &Dispatcher{
		ctrl:     ctrl,
		reporter: reporter,
		secrets:  secrets,
		opts:     opts,
		log:      log,
		commands: make(map[string]*Command),
	}
	for _, cmd := range commandTable() {
		d.commands[cmd.Name] = cmd
	}
	return d
}

// Lookup returns the command registered under name.
func (d *Dispatcher) Lookup(name string) (*Command, bool) {
	cmd, ok := d.commands[name]
	return cmd, ok
}

// Names returns the command names sorted alphabetically.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs one command. Every outcome, including usage errors and
// failed operations, goes to the Reporter; only an unknown name is
// returned as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args []string) error {
	cmd, ok := d.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("command %s panicked: %v", name, r)
			d.reporter.Error(errors.New(errors.ErrRemote,
				fmt.Sprintf("Internal error while running %s: %v", name, r),
				"The session is still usable"))
		}
	}()

	fs := pflag.NewFlagSet(cmd.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	parseArgs := args
	if cmd.flags == nil && !isHelpRequest(args) {
		// Without flags every word is an operand, dashes included.
		parseArgs = append([]string{"--"}, args...)
	}
	if err := fs.Parse(parseArgs); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			d.printCommandHelp(cmd, fs)
			return nil
		}
		usageErr := errors.NewUsage(cmd.Name, cmd.Usage)
		usageErr.Cause = err
		d.reporter.Error(usageErr)
		return nil
	}
	if fs.NArg() < cmd.MinArgs {
		d.reporter.Error(errors.NewUsage(cmd.Name, cmd.Usage))
		return nil
	}

	d.log.Debug("running %s %v", cmd.Name, fs.Args())
	if err := cmd.run(ctx, d, fs); err != nil {
		d.reporter.Error(err)
	}
	return nil
}

func (d *Dispatcher) printCommandHelp(cmd *Command, fs *pflag.FlagSet) {
	w := d.reporter.Writer()
	_, _ = fmt.Fprintf(w, "Usage: %s %s\n\n%s\n", cmd.Name, cmd.Usage, cmd.Description)
	if fs.HasFlags() {
		_, _ = fmt.Fprintf(w, "\n%s", fs.FlagUsages())
		_, _ = fmt.Fprintln(w, "\nPut -- before arguments that start with a dash.")
	}
}

func isHelpRequest(args []string) bool {
	return len(args) == 1 && (args[0] == "-h" || args[0] == "--help")
}
