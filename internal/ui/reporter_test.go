package ui

import (
	"bytes"
	stderrors "errors"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/yarkm13/ftpsh/internal/errors"
	"github.com/yarkm13/ftpsh/internal/remote"
	"github.com/yarkm13/ftpsh/internal/session"
)

func plainReporter(t *testing.T) (*Reporter, *bytes.Buffer) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
	var buf bytes.Buffer
	return NewReporter(&buf), &buf
}

func TestReporter_Result(t *testing.T) {
	r, buf := plainReporter(t)
	r.Result(remote.Result{Code: 250, Message: "Working directory is now /pub"})
	assert.Equal(t, "Remote (status 250): Working directory is now /pub\n", buf.String())
}

func TestReporter_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "structured with suggestion",
			err:      errors.New(errors.ErrNotConnected, "Not connected", "Run 'connect <host> <port>' first"),
			contains: []string{"✗ Not connected", "  Run 'connect <host> <port>' first"},
		},
		{
			name: "ftp reply cause",
			err: errors.Wrap(&textproto.Error{Code: 550, Msg: "Failed to change directory."},
				"Remote command failed: cd /missing"),
			contains: []string{"✗ Remote command failed: cd /missing: Remote (status 550): Failed to change directory."},
		},
		{
			name:     "plain error",
			err:      stderrors.New("unexpected"),
			contains: []string{"✗ unexpected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, buf := plainReporter(t)
			r.Error(tt.err)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestReporter_ErrorNil(t *testing.T) {
	r, buf := plainReporter(t)
	r.Error(nil)
	assert.Empty(t, buf.String())
}

func TestReporter_Entries(t *testing.T) {
	entries := []remote.Entry{
		{Name: "pub", Kind: remote.KindDirectory},
		{Name: "README", Kind: remote.KindFile, Size: 2048, ModTime: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
	}

	t.Run("short", func(t *testing.T) {
		r, buf := plainReporter(t)
		r.Entries(entries, false)
		assert.Equal(t, "pub/\nREADME\n", buf.String())
	})

	t.Run("directories marked without colour", func(t *testing.T) {
		r, buf := plainReporter(t)
		r.Entries([]remote.Entry{
			{Name: "sub", Kind: remote.KindDirectory},
			{Name: "a.txt", Kind: remote.KindFile},
		}, false)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, []string{"sub/", "a.txt"}, lines)
		assert.NotContains(t, buf.String(), "\x1b[", "no escape codes under the ascii profile")
	})

	t.Run("long", func(t *testing.T) {
		r, buf := plainReporter(t)
		r.Entries(entries, true)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Len(t, lines, 2)
		assert.Contains(t, lines[0], "<DIR>")
		assert.Contains(t, lines[0], "pub/")
		assert.Contains(t, lines[1], "2.0 KiB")
		assert.Contains(t, lines[1], "Mar 01 10:30")
	})

	t.Run("empty", func(t *testing.T) {
		r, buf := plainReporter(t)
		r.Entries(nil, false)
		assert.Contains(t, buf.String(), "Directory is empty")
	})
}

func TestReporter_Download(t *testing.T) {
	r, buf := plainReporter(t)
	r.Download(session.Download{
		RemoteName: "report.txt",
		LocalPath:  "/tmp/report.txt",
		Result:     remote.Result{Code: 226, Message: "Transfer complete", Bytes: 10},
	})
	assert.Equal(t, "✓ report.txt → /tmp/report.txt [Remote (status 226): Transfer complete]\n", buf.String())
}

func TestReporter_SummaryItem(t *testing.T) {
	r, buf := plainReporter(t)
	r.SummaryItem(session.SummaryItem{Name: "a.csv", Status: session.StatusDownloaded, LocalPath: "/tmp/out/a.csv", Bytes: 1})
	r.SummaryItem(session.SummaryItem{Name: "b.csv", Status: session.StatusFailed, Err: stderrors.New("451 local error")})
	r.SummaryItem(session.SummaryItem{Name: "b.txt", Status: session.StatusSkipped, Reason: "filtered"})
	r.SummaryItem(session.SummaryItem{Name: "sub", Status: session.StatusSkipped, Reason: "directory"})

	out := buf.String()
	assert.Contains(t, out, "✓ a.csv → /tmp/out/a.csv")
	assert.Contains(t, out, "✗ b.csv: 451 local error")
	assert.Contains(t, out, "⊘ b.txt (filtered)")
	assert.NotContains(t, out, "sub")
}

func TestReporter_Summary(t *testing.T) {
	r, buf := plainReporter(t)
	r.Summary(&session.Summary{
		LocalDir: "/tmp/out",
		Items: []session.SummaryItem{
			{Name: "a", Status: session.StatusDownloaded, Bytes: 3},
			{Name: "b", Status: session.StatusFailed, Err: stderrors.New("x")},
		},
	})
	assert.Contains(t, buf.String(), "! Finished downloading into /tmp/out: 1 downloaded, 1 failed, 0 skipped (3 B)")
}

func TestSetColorMode(t *testing.T) {
	defer lipgloss.SetColorProfile(termenv.Ascii)

	SetColorMode("always")
	assert.Equal(t, termenv.ANSI, lipgloss.ColorProfile())

	SetColorMode("never")
	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())
	assert.Equal(t, "plain", DirectoryStyle().Render("plain"))
}
