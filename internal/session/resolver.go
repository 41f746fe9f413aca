package session

import (
	"path/filepath"

	"github.com/yarkm13/ftpsh/internal/localfs"
)

// ResolveDestination picks the local file a download of remoteName writes to.
// An existing directory receives the file under its remote name; anything
// else (missing path, regular file, failed probe) is the target itself and
// is overwritten.
func ResolveDestination(fs localfs.FS, remoteName, localPath string) string {
	if info := fs.Stat(localPath); info != nil && info.IsDir {
		return filepath.Join(localPath, remoteName)
	}
	return localPath
}
