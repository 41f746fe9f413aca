package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// lineReader is the part of a line editor the console needs.
type lineReader interface {
	io.Writer
	ReadLine() (string, error)
	ReadPassword(prompt string) (string, error)
	SetPrompt(prompt string)
	Close() error
}

// ttyReader edits lines on a raw-mode terminal.
type ttyReader struct {
	*term.Terminal
	fd       int
	oldState *term.State
}

func newTTYReader(stdin *os.File, stdout io.Writer, prompt string) (*ttyReader, error) {
	fd := int(stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set terminal raw mode: %w", err)
	}

	screen := struct {
		io.Reader
		io.Writer
	}{stdin, stdout}

	t := term.NewTerminal(screen, prompt)
	if width, height, sErr := term.GetSize(fd); sErr == nil {
		_ = t.SetSize(width, height)
	}
	return &ttyReader{Terminal: t, fd: fd, oldState: oldState}, nil
}

func (r *ttyReader) Close() error {
	if r.oldState == nil {
		return nil
	}
	err := term.Restore(r.fd, r.oldState)
	r.oldState = nil
	return err
}

// plainReader reads newline separated commands from a pipe or file. No
// prompt is printed for commands, so scripted output stays clean.
type plainReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPlainReader(in io.Reader, out io.Writer) *plainReader {
	return &plainReader{scanner: bufio.NewScanner(in), out: out}
}

func (r *plainReader) Write(p []byte) (int, error) {
	return r.out.Write(p)
}

func (r *plainReader) ReadLine() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// ReadPassword cannot hide input that is not a terminal; it only shows
// the prompt.
func (r *plainReader) ReadPassword(prompt string) (string, error) {
	_, _ = fmt.Fprint(r.out, prompt)
	line, err := r.ReadLine()
	_, _ = fmt.Fprintln(r.out)
	return line, err
}

func (r *plainReader) SetPrompt(string) {}

func (r *plainReader) Close() error { return nil }
