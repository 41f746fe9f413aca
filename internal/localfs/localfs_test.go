package localfs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/tmp/out", 0755))
	require.NoError(t, afero.WriteFile(mem, "/tmp/out/a.txt", []byte("a"), 0644))
	fs := New(mem)

	tests := []struct {
		name string
		path string
		want *Info
	}{
		{name: "directory", path: "/tmp/out", want: &Info{IsDir: true}},
		{name: "file", path: "/tmp/out/a.txt", want: &Info{IsDir: false}},
		{name: "missing", path: "/tmp/missing", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fs.Stat(tt.path))
		})
	}
}

func TestWithWriter(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/report.txt", []byte("old content that is longer"), 0644))
	fs := New(mem)

	err := fs.WithWriter("/report.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "new")
		return err
	})
	require.NoError(t, err)

	data, err := afero.ReadFile(mem, "/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data), "existing file is truncated")
}

func TestWithWriter_KeepsPartialContentOnError(t *testing.T) {
	mem := afero.NewMemMapFs()
	fs := New(mem)
	boom := errors.New("connection reset")

	err := fs.WithWriter("/partial.bin", func(w io.Writer) error {
		_, _ = io.WriteString(w, "half")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, rErr := afero.ReadFile(mem, "/partial.bin")
	require.NoError(t, rErr)
	assert.Equal(t, "half", string(data))
}

func TestWithWriter_CreateFails(t *testing.T) {
	fs := New(afero.NewReadOnlyFs(afero.NewMemMapFs()))

	called := false
	err := fs.WithWriter("/x.txt", func(w io.Writer) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "failed to create destination file")
}

func TestNewOS(t *testing.T) {
	dir := t.TempDir()
	fs := NewOS()

	require.Equal(t, &Info{IsDir: true}, fs.Stat(dir))

	target := filepath.Join(dir, "out.txt")
	require.NoError(t, fs.WithWriter(target, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	}))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
