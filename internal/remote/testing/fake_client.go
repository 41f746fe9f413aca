// Package testing provides a scripted remote.Client for tests.
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/yarkm13/ftpsh/internal/remote"
)

// ErrNoSuchFile is returned by DownloadTo for names not in Files.
var ErrNoSuchFile = errors.New("550 No such file or directory")

// FakeClient records every call and answers from canned data.
type FakeClient struct {
	mu sync.Mutex

	open bool
	cwd  string

	// AccessErr makes Access fail. When LeaveOpenOnFailure is set the
	// client reports itself open afterwards, like a control connection that
	// dialed but failed to log in.
	AccessErr          error
	LeaveOpenOnFailure bool
	CloseErr           error
	ChangeDirErr       error
	ListErr            error

	Entries []remote.Entry
	Files   map[string][]byte
	// DownloadErrs fails DownloadTo for specific names after writing
	// PartialBytes of content.
	DownloadErrs map[string]error
	PartialBytes int

	Calls      []string
	CloseCount int
	LastCreds  *remote.Credentials
}

// NewFakeClient creates a closed client whose working directory is "/".
func NewFakeClient() *FakeClient {
	return &FakeClient{
		cwd:          "/",
		Files:        make(map[string][]byte),
		DownloadErrs: make(map[string]error),
	}
}

// SetOpen forces the connection state without an Access call.
func (f *FakeClient) SetOpen(open bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = open
}

// AddFile adds a file entry to the listing and its content.
func (f *FakeClient) AddFile(name, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Entries = append(f.Entries, remote.Entry{Name: name, Kind: remote.KindFile, Size: uint64(len(content))})
	f.Files[name] = []byte(content)
}

// AddDir adds a directory entry to the listing.
func (f *FakeClient) AddDir(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Entries = append(f.Entries, remote.Entry{Name: name, Kind: remote.KindDirectory})
}

// RemoteCalls returns a copy of the recorded calls.
func (f *FakeClient) RemoteCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}

func (f *FakeClient) record(format string, args ...interface{}) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

func (f *FakeClient) Access(ctx context.Context, host string, port int, creds *remote.Credentials) (remote.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("access %s:%d", host, port)
	f.LastCreds = creds

	if f.AccessErr != nil {
		f.open = f.LeaveOpenOnFailure
		return remote.Result{}, f.AccessErr
	}
	f.open = true
	f.cwd = "/"
	return remote.Result{Code: 230, Message: "User logged in, proceed."}, nil
}

func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("close")
	f.CloseCount++
	f.open = false
	return f.CloseErr
}

func (f *FakeClient) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *FakeClient) Pwd() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pwd")
	return f.cwd, nil
}

func (f *FakeClient) ChangeDir(path string) (remote.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("cd %s", path)
	if f.ChangeDirErr != nil {
		return remote.Result{}, f.ChangeDirErr
	}
	f.cwd = path
	return remote.Result{Code: 250, Message: "Working directory is now " + path}, nil
}

func (f *FakeClient) List() ([]remote.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]remote.Entry, len(f.Entries))
	copy(out, f.Entries)
	return out, nil
}

func (f *FakeClient) DownloadTo(w io.Writer, remoteName string) (remote.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("download %s", remoteName)

	content, ok := f.Files[remoteName]
	if !ok {
		return remote.Result{}, ErrNoSuchFile
	}
	if err, fail := f.DownloadErrs[remoteName]; fail {
		n := f.PartialBytes
		if n > len(content) {
			n = len(content)
		}
		written, _ := w.Write(content[:n])
		return remote.Result{Bytes: int64(written)}, err
	}

	n, err := w.Write(content)
	if err != nil {
		return remote.Result{Bytes: int64(n)}, err
	}
	return remote.Result{Code: 226, Message: "Transfer complete", Bytes: int64(n)}, nil
}

var _ remote.Client = (*FakeClient)(nil)
