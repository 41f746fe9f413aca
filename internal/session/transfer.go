package session

import (
	stderrors "errors"
	"io"
	"strings"

	"github.com/yarkm13/ftpsh/internal/errors"
	"github.com/yarkm13/ftpsh/internal/localfs"
	"github.com/yarkm13/ftpsh/internal/logger"
	"github.com/yarkm13/ftpsh/internal/remote"
)

// Download describes a finished single-file transfer.
type Download struct {
	RemoteName string
	LocalPath  string
	Result     remote.Result
}

// Orchestrator runs downloads. It keeps no state between calls; the remote
// client is passed in for the duration of each call only.
type Orchestrator struct {
	fs  localfs.FS
	log logger.Logger
}

func NewOrchestrator(fs localfs.FS, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Noop()
	}
	return &Orchestrator{fs: fs, log: log}
}

// DownloadOne copies remoteName from the remote working directory to
// localPath. A failed transfer leaves whatever was written in place.
func (o *Orchestrator) DownloadOne(client remote.Client, remoteName, localPath string) (Download, error) {
	dl := Download{
		RemoteName: remoteName,
		LocalPath:  ResolveDestination(o.fs, remoteName, localPath),
	}

	o.log.Debug("downloading %s to %s", remoteName, dl.LocalPath)
	err := o.fs.WithWriter(dl.LocalPath, func(w io.Writer) error {
		res, err := client.DownloadTo(w, remoteName)
		dl.Result = res
		return err
	})
	if err != nil {
		return dl, errors.WrapWithCode(err, errors.ErrTransfer,
			"Download of "+remoteName+" failed",
			"Partial data may remain in "+dl.LocalPath)
	}
	return dl, nil
}

// DownloadDirectory downloads every file of the remote working directory
// that passes filter into localDir. Entries are processed one at a time in
// listing order; a failing entry is recorded and the walk continues.
// onItem, if set, is called after each entry is settled.
func (o *Orchestrator) DownloadDirectory(client remote.Client, localDir string, filter Filter, onItem func(SummaryItem)) (*Summary, error) {
	if info := o.fs.Stat(localDir); info == nil || !info.IsDir {
		return nil, errors.New(errors.ErrLocalTarget,
			"Local path must be an existing directory: "+localDir,
			"Create it first or pick another directory")
	}

	entries, err := client.List()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrRemote,
			"Could not list the remote working directory", "")
	}

	o.log.Info("downloading contents of the remote working directory into %s", localDir)
	summary := &Summary{LocalDir: localDir, Filter: filter}

	for _, entry := range entries {
		item := SummaryItem{Name: entry.Name}

		switch {
		case entry.Kind != remote.KindFile:
			item.Status = StatusSkipped
			item.Reason = entry.Kind.String()
		case !safeEntryName(entry.Name):
			o.log.Warn("skipping entry with unsafe name: %q", entry.Name)
			item.Status = StatusSkipped
			item.Reason = "unsafe name"
		case !matches(filter, entry.Name):
			item.Status = StatusSkipped
			item.Reason = "filtered"
		default:
			dl, dErr := o.DownloadOne(client, entry.Name, localDir)
			item.LocalPath = dl.LocalPath
			item.Bytes = dl.Result.Bytes
			if dErr != nil {
				o.log.Error("download of %s failed: %v", entry.Name, errCause(dErr))
				item.Status = StatusFailed
				item.Err = errCause(dErr)
			} else {
				item.Status = StatusDownloaded
			}
		}

		summary.Items = append(summary.Items, item)
		if onItem != nil {
			onItem(item)
		}
	}

	o.log.Info("finished downloading: %d downloaded, %d failed", summary.Downloaded(), summary.Failed())
	return summary, nil
}

// safeEntryName rejects names that would escape the target directory.
func safeEntryName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func errCause(err error) error {
	var fErr *errors.Error
	if stderrors.As(err, &fErr) && fErr.Cause != nil {
		return fErr.Cause
	}
	return err
}
