package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kevinburke/ssh_config"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type SFTPClientFactory struct{}

func (f *SFTPClientFactory) Accept(protocol string) bool { return protocol == "sftp" }

func (f *SFTPClientFactory) Create(protocol string, opts Options) (Client, error) {
	return NewSFTPClient(opts), nil
}

func (f *SFTPClientFactory) Name() string { return "sftp" }

// SFTPClient runs the SFTP subsystem over an SSH connection. SFTP has no
// server-side working directory, so the client tracks one itself.
type SFTPClient struct {
	sshClient *ssh.Client
	client    *sftp.Client
	cwd       string
	opts      Options
	hostKeys  *hostKeyStore
}

func NewSFTPClient(opts Options) *SFTPClient {
	return &SFTPClient{
		opts:     opts,
		hostKeys: newHostKeyStore(),
	}
}

// sshHost is what ~/.ssh/config says about an alias.
type sshHost struct {
	hostname     string
	user         string
	identityFile string
}

func lookupSSHConfig(configPath, alias string) sshHost {
	h := sshHost{hostname: alias}
	if configPath == "" {
		return h
	}
	content, err := os.ReadFile(expandHome(configPath))
	if err != nil {
		return h
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return h
	}
	if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
		h.hostname = hostname
	}
	if user, _ := cfg.Get(alias, "User"); user != "" {
		h.user = user
	}
	if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
		h.identityFile = expandHome(identity)
	}
	return h
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

func (s *SFTPClient) Access(ctx context.Context, host string, port int, creds *Credentials) (Result, error) {
	log := s.opts.log()
	h := lookupSSHConfig(s.opts.SSHConfigPath, host)

	user := h.user
	if creds != nil && creds.Username != "" {
		user = creds.Username
	}
	if user == "" {
		return Result{}, fmt.Errorf("sftp requires a username (connect --user)")
	}

	var auth []ssh.AuthMethod
	if h.identityFile != "" {
		if signer, err := loadSigner(h.identityFile); err == nil {
			auth = append(auth, ssh.PublicKeys(signer))
		} else {
			log.Warn("ignoring identity file %s: %v", h.identityFile, err)
		}
	}
	if pw := creds.Password(); len(pw) > 0 {
		auth = append(auth, ssh.Password(string(pw)))
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: s.hostKeys.callback(s.opts.ConfirmHostKey),
		Timeout:         s.opts.Timeout,
	}

	addr := net.JoinHostPort(h.hostname, strconv.Itoa(port))
	log.Debug("dialing %s as %s", addr, user)

	var d net.Dialer
	d.Timeout = s.opts.Timeout
	netConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{}, fmt.Errorf("failed to dial: %w", err)
	}
	// ClientConfig.Timeout only applies inside ssh.Dial.
	if s.opts.Timeout > 0 {
		_ = netConn.SetDeadline(time.Now().Add(s.opts.Timeout))
	}
	conn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
	if err != nil {
		_ = netConn.Close()
		return Result{}, fmt.Errorf("ssh handshake failed: %w", err)
	}
	_ = netConn.SetDeadline(time.Time{})
	s.sshClient = ssh.NewClient(conn, chans, reqs)

	client, err := sftp.NewClient(s.sshClient)
	if err != nil {
		return Result{}, fmt.Errorf("failed to start sftp subsystem: %w", err)
	}
	s.client = client

	cwd, err := client.Getwd()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read remote home: %w", err)
	}
	s.cwd = cwd

	return Result{Message: fmt.Sprintf("SFTP session established as %s, home is %s", user, cwd)}, nil
}

func loadSigner(keyPath string) (ssh.Signer, error) {
	privateKeyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return signer, nil
}

func (s *SFTPClient) Close() error {
	var err error
	if s.client != nil {
		err = s.client.Close()
		s.client = nil
	}
	if s.sshClient != nil {
		if cErr := s.sshClient.Close(); err == nil {
			err = cErr
		}
		s.sshClient = nil
	}
	s.cwd = ""
	return err
}

func (s *SFTPClient) IsOpen() bool {
	return s.sshClient != nil
}

func (s *SFTPClient) Pwd() (string, error) {
	if s.client == nil {
		return "", errClosed
	}
	return s.cwd, nil
}

func (s *SFTPClient) resolve(p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(s.cwd, p)
}

func (s *SFTPClient) ChangeDir(p string) (Result, error) {
	if s.client == nil {
		return Result{}, errClosed
	}
	target := s.resolve(p)
	fi, err := s.client.Stat(target)
	if err != nil {
		return Result{}, err
	}
	if !fi.IsDir() {
		return Result{}, fmt.Errorf("not a directory: %s", target)
	}
	s.cwd = target
	return Result{Message: fmt.Sprintf("Working directory is now %s", target)}, nil
}

func (s *SFTPClient) List() ([]Entry, error) {
	if s.client == nil {
		return nil, errClosed
	}
	s.opts.log().Debug("listing: %s", s.cwd)
	infos, err := s.client.ReadDir(s.cwd)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		kind := KindOther
		switch {
		case fi.IsDir():
			kind = KindDirectory
		case fi.Mode().IsRegular():
			kind = KindFile
		}
		entries = append(entries, Entry{
			Name:    fi.Name(),
			Kind:    kind,
			Size:    uint64(fi.Size()),
			ModTime: fi.ModTime(),
		})
	}
	return entries, nil
}

func (s *SFTPClient) DownloadTo(w io.Writer, remoteName string) (Result, error) {
	if s.client == nil {
		return Result{}, errClosed
	}
	f, err := s.client.Open(s.resolve(remoteName))
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	n, err := f.WriteTo(w)
	if err != nil {
		return Result{Bytes: n}, fmt.Errorf("failed to copy file contents: %w", err)
	}
	return Result{
		Message: fmt.Sprintf("Transfer complete, %s received", humanize.IBytes(uint64(n))),
		Bytes:   n,
	}, nil
}
