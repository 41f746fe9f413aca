package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarkm13/ftpsh/internal/dispatch"
	"github.com/yarkm13/ftpsh/internal/localfs"
	"github.com/yarkm13/ftpsh/internal/logger"
	remotetest "github.com/yarkm13/ftpsh/internal/remote/testing"
	"github.com/yarkm13/ftpsh/internal/session"
)

func newTestConsole(t *testing.T, input string) (*Console, *bytes.Buffer, *remotetest.FakeClient) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	var out bytes.Buffer
	c := NewWithIO(strings.NewReader(input), &out, "ftpsh> ")

	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/tmp/out", 0755))
	client := remotetest.NewFakeClient()
	ctrl := session.NewController(client, localfs.New(mem), logger.Noop())
	c.SetCommands(dispatch.New(ctrl, c.Reporter(), c, dispatch.Options{}))
	return c, &out, client
}

func TestRun_ScriptedSession(t *testing.T) {
	input := strings.Join([]string{
		"status",
		"connect ftp.example.com 21",
		"status",
		"close",
		"status",
	}, "\n")
	c, out, client := newTestConsole(t, input)

	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Not connected")
	assert.Contains(t, text, "Remote (status 230)")
	assert.Contains(t, text, "Connected to ftp.example.com:21")
	assert.Equal(t, []string{"access ftp.example.com:21", "close"}, client.RemoteCalls())
}

func TestRun_ExitStopsReading(t *testing.T) {
	c, _, client := newTestConsole(t, "exit\nconnect ftp.example.com 21\n")

	require.NoError(t, c.Run(context.Background()))
	assert.Empty(t, client.RemoteCalls())
}

func TestRun_CancelledContext(t *testing.T) {
	c, _, client := newTestConsole(t, "connect ftp.example.com 21\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.Run(ctx))
	assert.Empty(t, client.RemoteCalls())
}

func TestExecute_UnknownCommand(t *testing.T) {
	c, out, client := newTestConsole(t, "")

	assert.False(t, c.Execute(context.Background(), "rm -rf /"))
	assert.Contains(t, out.String(), "Unknown command: rm")
	assert.Contains(t, out.String(), "Type 'help' to list commands")
	assert.Empty(t, client.RemoteCalls())
}

func TestExecute_QuotedArguments(t *testing.T) {
	c, _, client := newTestConsole(t, "")
	client.AddFile("my report.txt", "x")
	ctx := context.Background()

	c.Execute(ctx, "connect ftp.example.com 21")
	c.Execute(ctx, `download "my report.txt" /tmp/out`)
	c.Execute(ctx, `downloadDir /tmp/out '\.csv$'`)

	calls := client.RemoteCalls()
	assert.Contains(t, calls, "download my report.txt")
	assert.Equal(t, "list", calls[len(calls)-1], "the quoted pattern filters out every entry")
}

func TestExecute_UnquotedBackslashInPattern(t *testing.T) {
	for _, line := range []string{
		`downloadDir /tmp/out \.csv$`,
		`downloadDir /tmp/out "\.csv$"`,
	} {
		t.Run(line, func(t *testing.T) {
			c, out, client := newTestConsole(t, "")
			client.AddFile("xcsv", "x")
			c.Execute(context.Background(), "connect ftp.example.com 21")

			c.Execute(context.Background(), line)
			assert.Contains(t, out.String(), "Unquoted backslash in downloadDir arguments")
			assert.Contains(t, out.String(), `'\.csv$'`)
			assert.Equal(t, []string{"access ftp.example.com:21"}, client.RemoteCalls())
		})
	}
}

func TestHasBareBackslash(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: `downloadDir /tmp/out '\.csv$'`, want: false},
		{line: `downloadDir /tmp/out \.csv$`, want: true},
		{line: `downloadDir /tmp/out "\.csv$"`, want: true},
		{line: `downloadDir "/tmp/it's" '\d+'`, want: false},
		{line: `downloadDir /tmp/out`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, hasBareBackslash(tt.line))
		})
	}
}

func TestExecute_RejectsShellOperators(t *testing.T) {
	c, out, client := newTestConsole(t, "")

	c.Execute(context.Background(), "status; close")
	assert.Contains(t, out.String(), "Could not parse input")
	assert.Empty(t, client.RemoteCalls())
}

func TestExecute_BlankAndComment(t *testing.T) {
	c, out, _ := newTestConsole(t, "")

	assert.False(t, c.Execute(context.Background(), "   "))
	assert.False(t, c.Execute(context.Background(), "# comment"))
	assert.Empty(t, out.String())
}

func TestExecute_Help(t *testing.T) {
	c, out, _ := newTestConsole(t, "")

	c.Execute(context.Background(), "help")
	text := out.String()
	for _, want := range []string{"connect [-f] [-u user] <host> <port>", "downloadDir", "exit, quit"} {
		assert.Contains(t, text, want)
	}
}

func TestReadSecret_Plain(t *testing.T) {
	c, out, _ := newTestConsole(t, "s3cret\n")

	secret, err := c.ReadSecret("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)
	assert.Contains(t, out.String(), "Password: ")
}

func TestConnectPromptsForPassword(t *testing.T) {
	c, _, client := newTestConsole(t, "connect -u alice ftp.example.com 21\nhunter2\n")

	require.NoError(t, c.Run(context.Background()))
	require.NotNil(t, client.LastCreds)
	assert.Equal(t, "alice", client.LastCreds.Username)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			c, out, _ := newTestConsole(t, tt.input)
			ok, err := c.Confirm("Trust this host?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "Trust this host? [y/N]: ")
		})
	}
}

func TestConfirm_EOF(t *testing.T) {
	c, _, _ := newTestConsole(t, "")
	_, err := c.Confirm("Trust this host?")
	assert.Error(t, err)
}

func TestCompleteCommand(t *testing.T) {
	names := []string{"cd", "close", "connect", "download", "downloadDir", "exit", "help", "ls"}

	tests := []struct {
		input string
		want  string
	}{
		{input: "l", want: "ls "},
		{input: "c", want: "c"},
		{input: "co", want: "connect "},
		{input: "cl", want: "close "},
		{input: "dow", want: "download"},
		{input: "x", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, completeCommand(tt.input, names))
		})
	}
}

func TestAutoComplete(t *testing.T) {
	c, _, _ := newTestConsole(t, "")

	line, pos, ok := c.autoComplete("pw", 2, keyTab)
	assert.True(t, ok)
	assert.Equal(t, "pwd ", line)
	assert.Equal(t, 4, pos)

	_, _, ok = c.autoComplete("cd pu", 5, keyTab)
	assert.False(t, ok, "only the command word is completed")

	_, _, ok = c.autoComplete("pw", 2, 'x')
	assert.False(t, ok)
}
