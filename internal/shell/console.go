// Package shell runs the interactive prompt: it reads lines, splits them
// into words and hands commands to a dispatcher.
package shell

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-shellwords"
	"golang.org/x/term"

	"github.com/yarkm13/ftpsh/internal/dispatch"
	"github.com/yarkm13/ftpsh/internal/errors"
	"github.com/yarkm13/ftpsh/internal/ui"
)

const (
	helpCmd = "help"
	exitCmd = "exit"
	quitCmd = "quit"

	keyTab = 9
)

// Commands is what the console needs from the command dispatcher.
type Commands interface {
	Dispatch(ctx context.Context, name string, args []string) error
	Lookup(name string) (*dispatch.Command, bool)
	Names() []string
}

// Console is the interactive command shell.
type Console struct {
	in          lineReader
	prompt      string
	interactive bool
	reporter    *ui.Reporter
	commands    Commands
}

// New creates a console on stdin/stdout. A terminal is switched to raw
// mode for line editing; any other input is read line by line. Close must
// be called to restore the terminal.
func New(stdin *os.File, stdout io.Writer, prompt string) (*Console, error) {
	if !term.IsTerminal(int(stdin.Fd())) {
		return NewWithIO(stdin, stdout, prompt), nil
	}
	r, err := newTTYReader(stdin, stdout, prompt)
	if err != nil {
		return nil, err
	}
	c := &Console{in: r, prompt: prompt, interactive: true}
	c.reporter = ui.NewReporter(r)
	r.AutoCompleteCallback = c.autoComplete
	return c, nil
}

// NewWithIO creates a non-interactive console over arbitrary streams.
func NewWithIO(in io.Reader, out io.Writer, prompt string) *Console {
	r := newPlainReader(in, out)
	return &Console{in: r, prompt: prompt, reporter: ui.NewReporter(r)}
}

// SetCommands attaches the dispatcher. It is separate from New because
// the dispatcher itself reports through the console.
func (c *Console) SetCommands(cmds Commands) {
	c.commands = cmds
}

// Writer returns the console output. In raw mode it translates line
// endings, so everything printed during a session must go through it.
func (c *Console) Writer() io.Writer {
	return c.in
}

func (c *Console) Reporter() *ui.Reporter {
	return c.reporter
}

func (c *Console) Close() error {
	return c.in.Close()
}

// ReadSecret reads a password without echo.
func (c *Console) ReadSecret(prompt string) (string, error) {
	return c.in.ReadPassword(prompt)
}

// Confirm asks a yes/no question; anything but y or yes is a no.
func (c *Console) Confirm(question string) (bool, error) {
	answer, err := c.ask(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (c *Console) ask(question string) (string, error) {
	if c.interactive {
		c.in.SetPrompt(question)
		defer c.in.SetPrompt(c.prompt)
	} else {
		_, _ = fmt.Fprint(c.in, question)
	}
	return c.in.ReadLine()
}

// Run reads and executes commands until exit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := c.in.ReadLine()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				if c.interactive {
					_, _ = fmt.Fprintln(c.in)
				}
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if c.Execute(ctx, line) {
			return nil
		}
	}
}

// Execute runs a single input line and reports whether the shell should
// exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}

	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err == nil && p.Position != -1 {
		err = stderrors.New("unexpected shell operator")
	}
	if err != nil {
		c.reporter.Error(errors.WrapWithCode(err, errors.ErrUsage,
			"Could not parse input",
			"Quote arguments containing spaces or special characters"))
		return false
	}
	if len(args) == 0 {
		return false
	}

	name := args[0]
	switch name {
	case exitCmd, quitCmd:
		return true
	case helpCmd:
		c.printHelp()
		return false
	}

	if c.commands == nil {
		return false
	}
	cmd, ok := c.commands.Lookup(name)
	if !ok {
		c.reporter.Error(errors.New(errors.ErrUsage,
			"Unknown command: "+name,
			"Type 'help' to list commands"))
		return false
	}
	if cmd.QuotedPatterns && hasBareBackslash(line) {
		c.reporter.Error(errors.New(errors.ErrUsage,
			"Unquoted backslash in "+name+" arguments",
			`Single-quote regular expressions, e.g. downloadDir /tmp/out '\.csv$'`))
		return false
	}
	_ = c.commands.Dispatch(ctx, name, args[1:])
	return false
}

// hasBareBackslash reports whether line has a backslash outside single
// quotes. The word splitter consumes those as escapes.
func hasBareBackslash(line string) bool {
	var single, double bool
	for _, r := range line {
		switch {
		case r == '\'' && !double:
			single = !single
		case r == '"' && !single:
			double = !double
		case r == '\\' && !single:
			return true
		}
	}
	return false
}

func (c *Console) printHelp() {
	tw := tabwriter.NewWriter(c.in, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "Commands:")
	if c.commands != nil {
		for _, name := range c.commands.Names() {
			cmd, _ := c.commands.Lookup(name)
			_, _ = fmt.Fprintf(tw, "  %s %s\t%s\n", cmd.Name, cmd.Usage, cmd.Description)
		}
	}
	_, _ = fmt.Fprintf(tw, "  %s\t%s\n", helpCmd, "Show this help")
	_, _ = fmt.Fprintf(tw, "  %s, %s\t%s\n", exitCmd, quitCmd, "Leave the shell")
	_ = tw.Flush()
	_, _ = fmt.Fprintln(c.in, ui.MutedStyle().Render("Quote regular expressions, e.g. downloadDir /tmp/out '\\.csv$'"))
}

func (c *Console) completionNames() []string {
	names := []string{helpCmd, exitCmd, quitCmd}
	if c.commands != nil {
		names = append(names, c.commands.Names()...)
	}
	sort.Strings(names)
	return names
}

// autoComplete completes the command name on TAB.
func (c *Console) autoComplete(line string, pos int, key rune) (string, int, bool) {
	if key != keyTab || len(line) == 0 || strings.Contains(line, " ") {
		return line, pos, false
	}
	completed := completeCommand(line, c.completionNames())
	return completed, len(completed), true
}

// completeCommand extends input to the longest prefix shared by every
// name that starts with it. A unique match gets a trailing space.
func completeCommand(input string, names []string) string {
	var matches []string
	for _, n := range names {
		if strings.HasPrefix(n, input) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return input
	case 1:
		return matches[0] + " "
	}

	prefix := matches[0]
	for _, m := range matches[1:] {
		for !strings.HasPrefix(m, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
