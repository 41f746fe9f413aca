package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jlaffaye/ftp"
)

const (
	anonymousUser     = "anonymous"
	anonymousPassword = "anonymous"
)

type FTPClientFactory struct{}

func (f *FTPClientFactory) Accept(protocol string) bool {
	return protocol == "ftp" || protocol == "ftps"
}

func (f *FTPClientFactory) Create(protocol string, opts Options) (Client, error) {
	return NewFTPClient(opts, protocol == "ftps"), nil
}

func (f *FTPClientFactory) Name() string {
	return "ftp"
}

// FTPClient speaks FTP, or FTPS with explicit TLS, through jlaffaye/ftp.
type FTPClient struct {
	conn   *ftp.ServerConn
	opts   Options
	useTLS bool
}

func NewFTPClient(opts Options, useTLS bool) *FTPClient {
	return &FTPClient{
		opts:   opts,
		useTLS: useTLS,
	}
}

func (f *FTPClient) Access(ctx context.Context, host string, port int, creds *Credentials) (Result, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	log := f.opts.log()

	dialOpts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithDisabledEPSV(f.opts.DisableEPSV),
	}
	if f.opts.Timeout > 0 {
		dialOpts = append(dialOpts, ftp.DialWithTimeout(f.opts.Timeout))
	}
	if f.useTLS {
		dialOpts = append(dialOpts, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName:         host,
			InsecureSkipVerify: f.opts.TLSSkipVerify,
		}))
	}

	log.Debug("dialing %s (tls=%v)", addr, f.useTLS)
	c, err := ftp.Dial(addr, dialOpts...)
	if err != nil {
		return Result{}, err
	}
	// Keep the control connection even if login fails so the caller can
	// see it is open and close it.
	f.conn = c

	user, password := anonymousUser, anonymousPassword
	if creds != nil && creds.Username != "" {
		user = creds.Username
		password = string(creds.Password())
	}

	log.Debug("logging in as %s", user)
	if err := c.Login(user, password); err != nil {
		return Result{}, err
	}

	return Result{
		Code:    ftp.StatusLoggedIn,
		Message: fmt.Sprintf("%s (%s)", ftp.StatusText(ftp.StatusLoggedIn), user),
	}, nil
}

func (f *FTPClient) Close() error {
	if f.conn == nil {
		return nil
	}
	err := f.conn.Quit()
	f.conn = nil
	return err
}

func (f *FTPClient) IsOpen() bool {
	return f.conn != nil
}

func (f *FTPClient) Pwd() (string, error) {
	if f.conn == nil {
		return "", errClosed
	}
	return f.conn.CurrentDir()
}

func (f *FTPClient) ChangeDir(path string) (Result, error) {
	if f.conn == nil {
		return Result{}, errClosed
	}
	if err := f.conn.ChangeDir(path); err != nil {
		return Result{}, err
	}
	dir, err := f.conn.CurrentDir()
	if err != nil {
		dir = path
	}
	return Result{
		Code:    ftp.StatusRequestedFileActionOK,
		Message: fmt.Sprintf("Working directory is now %s", dir),
	}, nil
}

func (f *FTPClient) List() ([]Entry, error) {
	if f.conn == nil {
		return nil, errClosed
	}
	dir, err := f.conn.CurrentDir()
	if err != nil {
		return nil, err
	}

	f.opts.log().Debug("listing: %s", dir)
	raw, err := f.conn.List(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		entries = append(entries, Entry{
			Name:    e.Name,
			Kind:    ftpEntryKind(e.Type),
			Size:    e.Size,
			ModTime: e.Time,
		})
	}
	return entries, nil
}

func (f *FTPClient) DownloadTo(w io.Writer, remoteName string) (Result, error) {
	if f.conn == nil {
		return Result{}, errClosed
	}
	r, err := f.conn.Retr(remoteName)
	if err != nil {
		return Result{}, err
	}

	n, copyErr := io.Copy(w, r)
	// Close reads the final transfer reply, so its error matters too.
	closeErr := r.Close()
	if copyErr != nil {
		return Result{Bytes: n}, copyErr
	}
	if closeErr != nil {
		return Result{Bytes: n}, closeErr
	}

	return Result{
		Code:    ftp.StatusClosingDataConnection,
		Message: fmt.Sprintf("Transfer complete, %s received", humanize.IBytes(uint64(n))),
		Bytes:   n,
	}, nil
}

func ftpEntryKind(t ftp.EntryType) EntryKind {
	switch t {
	case ftp.EntryTypeFile:
		return KindFile
	case ftp.EntryTypeFolder:
		return KindDirectory
	default:
		return KindOther
	}
}
