// Package localfs is the local filesystem capability used by transfers.
package localfs

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Info is the result of a successful stat probe.
type Info struct {
	IsDir bool
}

// FS is the local filesystem as seen by the session.
type FS interface {
	// Stat probes path. It returns nil when the path does not exist or the
	// probe fails; callers treat both the same way.
	Stat(path string) *Info
	// WithWriter creates or truncates path and hands a writer to fn. The
	// file is flushed and closed when fn returns, whether or not it failed.
	WithWriter(path string, fn func(w io.Writer) error) error
}

type aferoFS struct {
	fs afero.Fs
}

// New wraps an afero filesystem.
func New(fs afero.Fs) FS {
	return &aferoFS{fs: fs}
}

// NewOS returns the real operating system filesystem.
func NewOS() FS {
	return New(afero.NewOsFs())
}

func (a *aferoFS) Stat(path string) *Info {
	fi, err := a.fs.Stat(path)
	if err != nil {
		return nil
	}
	return &Info{IsDir: fi.IsDir()}
}

func (a *aferoFS) WithWriter(path string, fn func(w io.Writer) error) (err error) {
	f, err := a.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", cErr)
		}
	}()

	bw := bufio.NewWriter(f)
	fnErr := fn(bw)
	// Flush even on failure so partial content lands on disk.
	if fErr := bw.Flush(); fErr != nil && fnErr == nil {
		return fmt.Errorf("failed to write destination file: %w", fErr)
	}
	return fnErr
}
