package session

import (
	"context"
	"fmt"

	"github.com/yarkm13/ftpsh/internal/errors"
	"github.com/yarkm13/ftpsh/internal/localfs"
	"github.com/yarkm13/ftpsh/internal/logger"
	"github.com/yarkm13/ftpsh/internal/remote"
)

// Controller owns the remote client and the connection state for one
// interactive session. Every remote operation goes through it so that the
// "connected" precondition is checked in one place.
type Controller struct {
	state     ConnectionState
	client    remote.Client
	transfers *Orchestrator
	log       logger.Logger
}

func NewController(client remote.Client, fs localfs.FS, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Noop()
	}
	return &Controller{
		client:    client,
		transfers: NewOrchestrator(fs, log),
		log:       log,
	}
}

// State returns a snapshot of the connection state.
func (c *Controller) State() ConnectionState {
	return c.state
}

// Connect logs in to host:port. With force, an open connection is dropped
// first; without it, an open connection makes Connect fail and stay put.
func (c *Controller) Connect(ctx context.Context, host string, port int, creds *remote.Credentials, force bool) (remote.Result, error) {
	if c.state.IsOpen() {
		if !force {
			return remote.Result{}, errors.New(errors.ErrAlreadyConnected,
				"Already connected",
				"Run 'close' first or use 'connect --force'")
		}
		c.log.Debug("replacing connection to %s:%d", c.state.Host(), c.state.Port())
		if err := c.client.Close(); err != nil {
			c.log.Debug("ignoring close error: %v", err)
		}
		c.state.Clear()
	}

	c.log.Debug("connecting to %s:%d as %v", host, port, creds)
	res, err := c.client.Access(ctx, host, port, creds)
	if err != nil {
		if c.client.IsOpen() {
			_ = c.client.Close()
		}
		c.state.Clear()
		return remote.Result{}, errors.WrapWithCode(err, errors.ErrConnect,
			fmt.Sprintf("Could not connect to %s:%d", host, port),
			"Check the host, port and credentials")
	}

	c.state.Set(host, port)
	c.log.Info("connected to %s:%d", host, port)
	return res, nil
}

// Disconnect closes the connection. It is safe to call when already closed.
func (c *Controller) Disconnect() {
	if err := c.client.Close(); err != nil {
		c.log.Debug("ignoring close error: %v", err)
	}
	c.state.Clear()
}

// Status describes the connection without touching the network.
func (c *Controller) Status() string {
	return c.state.Describe()
}

func (c *Controller) requireOpen() error {
	if !c.state.IsOpen() {
		return errors.New(errors.ErrNotConnected,
			"Not connected",
			"Run 'connect <host> <port>' first")
	}
	return nil
}

func remoteFailed(err error, what string) error {
	return errors.Wrap(err, "Remote command failed: "+what)
}

func (c *Controller) Pwd() (string, error) {
	if err := c.requireOpen(); err != nil {
		return "", err
	}
	dir, err := c.client.Pwd()
	if err != nil {
		return "", remoteFailed(err, "pwd")
	}
	return dir, nil
}

func (c *Controller) Cd(path string) (remote.Result, error) {
	if err := c.requireOpen(); err != nil {
		return remote.Result{}, err
	}
	res, err := c.client.ChangeDir(path)
	if err != nil {
		return remote.Result{}, remoteFailed(err, "cd "+path)
	}
	return res, nil
}

func (c *Controller) List() ([]remote.Entry, error) {
	if err := c.requireOpen(); err != nil {
		return nil, err
	}
	entries, err := c.client.List()
	if err != nil {
		return nil, remoteFailed(err, "ls")
	}
	return entries, nil
}

// Download fetches one file from the remote working directory.
func (c *Controller) Download(remoteName, localPath string) (Download, error) {
	if err := c.requireOpen(); err != nil {
		return Download{}, err
	}
	return c.transfers.DownloadOne(c.client, remoteName, localPath)
}

// DownloadDir fetches every matching file of the remote working directory
// into localDir. Per-entry failures are in the summary, not the error.
func (c *Controller) DownloadDir(localDir string, filter Filter, onItem func(SummaryItem)) (*Summary, error) {
	if err := c.requireOpen(); err != nil {
		return nil, err
	}
	return c.transfers.DownloadDirectory(c.client, localDir, filter, onItem)
}
