package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/yarkm13/ftpsh/internal/logger"
)

var errClosed = errors.New("connection is closed")

// Client is the remote file-transfer capability a session drives.
// Implementations are not safe for concurrent use: the control channel is a
// single ordered stream, so callers issue one operation at a time.
type Client interface {
	// Access dials host:port and logs in. A nil creds means anonymous login.
	Access(ctx context.Context, host string, port int, creds *Credentials) (Result, error)
	// Close ends the session. Closing an already closed client is a no-op.
	Close() error
	IsOpen() bool
	Pwd() (string, error)
	ChangeDir(path string) (Result, error)
	// List returns the entries of the current remote working directory in
	// the order the server sent them.
	List() ([]Entry, error)
	// DownloadTo streams remoteName from the working directory into w.
	DownloadTo(w io.Writer, remoteName string) (Result, error)
}

// EntryKind classifies a listing entry.
type EntryKind int

const (
	KindOther EntryKind = iota
	KindFile
	KindDirectory
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "other"
	}
}

// Entry is one item of a remote directory listing.
type Entry struct {
	Name    string
	Kind    EntryKind
	Size    uint64
	ModTime time.Time
}

// Result is the outcome of a remote operation as reported by the server.
// Code is the protocol status code, zero when the protocol has none (SFTP).
type Result struct {
	Code    int
	Message string
	// Bytes is the number of bytes moved by a transfer.
	Bytes int64
}

func (r Result) String() string {
	if r.Code == 0 {
		return fmt.Sprintf("Remote: %s", r.Message)
	}
	return fmt.Sprintf("Remote (status %d): %s", r.Code, r.Message)
}

// Options configure how a client dials and authenticates.
type Options struct {
	Timeout time.Duration

	// FTP
	DisableEPSV   bool
	TLSSkipVerify bool

	// SFTP
	SSHConfigPath string
	// ConfirmHostKey asks the user whether to trust an unknown host key.
	// When nil, unknown keys are rejected.
	ConfirmHostKey func(question string) (bool, error)

	Logger logger.Logger
}

func (o Options) log() logger.Logger {
	if o.Logger == nil {
		return logger.Default()
	}
	return o.Logger
}

// Factory creates clients for the protocols it accepts.
type Factory interface {
	Accept(protocol string) bool
	Create(protocol string, opts Options) (Client, error)
	Name() string
}
