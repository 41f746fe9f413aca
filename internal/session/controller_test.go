package session

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarkm13/ftpsh/internal/errors"
	"github.com/yarkm13/ftpsh/internal/localfs"
	"github.com/yarkm13/ftpsh/internal/logger"
	"github.com/yarkm13/ftpsh/internal/remote"
	remotetest "github.com/yarkm13/ftpsh/internal/remote/testing"
)

func newTestController(t *testing.T) (*Controller, *remotetest.FakeClient, afero.Fs) {
	t.Helper()
	mem := afero.NewMemMapFs()
	client := remotetest.NewFakeClient()
	return NewController(client, localfs.New(mem), logger.Noop()), client, mem
}

func connected(t *testing.T) (*Controller, *remotetest.FakeClient, afero.Fs) {
	t.Helper()
	c, client, mem := newTestController(t)
	_, err := c.Connect(context.Background(), "ftp.example.com", 21, nil, false)
	require.NoError(t, err)
	client.Calls = nil
	return c, client, mem
}

func TestConnect_WhenClosed(t *testing.T) {
	c, client, _ := newTestController(t)

	res, err := c.Connect(context.Background(), "ftp.example.com", 21, nil, false)
	require.NoError(t, err)

	assert.Equal(t, 230, res.Code)
	assert.Equal(t, "Connected to ftp.example.com:21", c.Status())
	assert.Equal(t, []string{"access ftp.example.com:21"}, client.RemoteCalls())
	assert.Nil(t, client.LastCreds, "no username means anonymous login")
}

func TestConnect_PassesCredentials(t *testing.T) {
	c, client, _ := newTestController(t)
	creds := remote.NewCredentials("alice", []byte("secret"))

	_, err := c.Connect(context.Background(), "ftp.example.com", 21, creds, false)
	require.NoError(t, err)
	assert.Same(t, creds, client.LastCreds)
}

func TestConnect_AlreadyConnected(t *testing.T) {
	c, client, _ := connected(t)

	_, err := c.Connect(context.Background(), "other.example.com", 2121, nil, false)
	require.Error(t, err)

	assert.True(t, errors.IsCode(err, errors.ErrAlreadyConnected))
	assert.Equal(t, "Connected to ftp.example.com:21", c.Status(), "existing connection untouched")
	assert.Empty(t, client.RemoteCalls(), "no close and no access")
}

func TestConnect_ForceClosesPriorConnectionOnce(t *testing.T) {
	c, client, _ := connected(t)
	client.CloseErr = stderrors.New("421 already gone")

	_, err := c.Connect(context.Background(), "other.example.com", 2121, nil, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"close", "access other.example.com:2121"}, client.RemoteCalls())
	assert.Equal(t, 1, client.CloseCount)
	assert.Equal(t, "Connected to other.example.com:2121", c.Status())
}

func TestConnect_Failure(t *testing.T) {
	tests := []struct {
		name          string
		leaveOpen     bool
		wantCloseCall bool
	}{
		{name: "dial refused", leaveOpen: false, wantCloseCall: false},
		{name: "login rejected on open control connection", leaveOpen: true, wantCloseCall: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, client, _ := newTestController(t)
			cause := stderrors.New("530 Login incorrect")
			client.AccessErr = cause
			client.LeaveOpenOnFailure = tt.leaveOpen

			_, err := c.Connect(context.Background(), "ftp.example.com", 21, nil, false)
			require.Error(t, err)

			assert.True(t, errors.IsCode(err, errors.ErrConnect))
			assert.ErrorIs(t, err, cause)
			assert.False(t, stateOf(c).IsOpen())
			assert.False(t, client.IsOpen())
			assert.Equal(t, "Not connected", c.Status())
			assert.Equal(t, tt.wantCloseCall, client.CloseCount == 1)
		})
	}
}

func TestConnect_FailureAfterForceLeavesClosed(t *testing.T) {
	c, client, _ := connected(t)
	client.AccessErr = stderrors.New("connection refused")

	_, err := c.Connect(context.Background(), "down.example.com", 21, nil, true)
	require.Error(t, err)

	assert.Equal(t, "Not connected", c.Status())
	assert.Equal(t, "", stateOf(c).Host())
	assert.Equal(t, 0, stateOf(c).Port())
}

func TestDisconnect_Idempotent(t *testing.T) {
	c, client, _ := connected(t)

	for i := 0; i < 3; i++ {
		c.Disconnect()
		assert.False(t, stateOf(c).IsOpen())
		assert.Equal(t, "Not connected", c.Status())
	}
	assert.False(t, client.IsOpen())

	c2, _, _ := newTestController(t)
	c2.Disconnect()
	assert.False(t, stateOf(c2).IsOpen())
}

func TestPassthrough_NotConnected(t *testing.T) {
	ops := map[string]func(c *Controller) error{
		"pwd": func(c *Controller) error {
			_, err := c.Pwd()
			return err
		},
		"cd": func(c *Controller) error {
			_, err := c.Cd("/missing")
			return err
		},
		"ls": func(c *Controller) error {
			_, err := c.List()
			return err
		},
		"download": func(c *Controller) error {
			_, err := c.Download("report.txt", "/tmp")
			return err
		},
		"downloadDir": func(c *Controller) error {
			_, err := c.DownloadDir("/tmp", nil, nil)
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			c, client, _ := newTestController(t)

			err := op(c)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrNotConnected))
			assert.Empty(t, client.RemoteCalls(), "no remote call while closed")
		})
	}
}

func TestPassthrough_Connected(t *testing.T) {
	c, client, _ := connected(t)
	client.AddDir("pub")
	client.AddFile("README", "hello")

	res, err := c.Cd("/pub")
	require.NoError(t, err)
	assert.Equal(t, 250, res.Code)

	dir, err := c.Pwd()
	require.NoError(t, err)
	assert.Equal(t, "/pub", dir)

	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, remote.KindDirectory, entries[0].Kind)
	assert.Equal(t, "README", entries[1].Name)

	assert.Equal(t, []string{"cd /pub", "pwd", "list"}, client.RemoteCalls())
}

func TestCd_RemoteFailure(t *testing.T) {
	c, client, _ := connected(t)
	cause := stderrors.New("550 /missing: No such file or directory")
	client.ChangeDirErr = cause

	_, err := c.Cd("/missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRemote))
	assert.ErrorIs(t, err, cause)
	assert.True(t, stateOf(c).IsOpen(), "a failed command does not drop the session")
}

func TestDownload_IntoDirectory(t *testing.T) {
	c, client, mem := connected(t)
	require.NoError(t, mem.MkdirAll("/tmp", 0755))
	client.AddFile("report.txt", "q3 numbers")

	dl, err := c.Download("report.txt", "/tmp")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/report.txt", dl.LocalPath)
	assert.Equal(t, int64(10), dl.Result.Bytes)
	data, err := afero.ReadFile(mem, "/tmp/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "q3 numbers", string(data))
}

// stateOf returns an addressable copy of the controller's state so its
// pointer-receiver accessors can be called.
func stateOf(c *Controller) *ConnectionState {
	s := c.State()
	return &s
}
