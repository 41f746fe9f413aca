package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/yarkm13/ftpsh/internal/errors"
	"github.com/yarkm13/ftpsh/internal/remote"
	"github.com/yarkm13/ftpsh/internal/session"
)

// Reporter renders command outcomes to the terminal.
type Reporter struct {
	out io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{out: w}
}

func (r *Reporter) Writer() io.Writer {
	return r.out
}

func (r *Reporter) println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

func (r *Reporter) Info(format string, args ...interface{}) {
	r.println(fmt.Sprintf(format, args...))
}

func (r *Reporter) Success(format string, args ...interface{}) {
	r.println(SuccessStyle().Render(SymbolSuccess + " " + fmt.Sprintf(format, args...)))
}

func (r *Reporter) Warn(format string, args ...interface{}) {
	r.println(WarningStyle().Render(SymbolWarning + " " + fmt.Sprintf(format, args...)))
}

// Result prints a protocol reply, e.g. "Remote (status 250): ...".
func (r *Reporter) Result(res remote.Result) {
	r.println(res.String())
}

// Error prints err on one line, with its suggestion muted underneath.
func (r *Reporter) Error(err error) {
	if err == nil {
		return
	}
	var fErr *errors.Error
	if !stderrors.As(err, &fErr) {
		r.println(ErrorStyle().Render(SymbolFail + " " + describeCause(err)))
		return
	}

	line := fErr.Message
	if fErr.Cause != nil {
		line += ": " + describeCause(fErr.Cause)
	}
	r.println(ErrorStyle().Render(SymbolFail + " " + line))
	if fErr.Suggestion != "" {
		r.println(MutedStyle().Render("  " + fErr.Suggestion))
	}
}

// describeCause shows FTP replies in the same shape as successful results.
func describeCause(err error) string {
	var tpErr *textproto.Error
	if stderrors.As(err, &tpErr) {
		return fmt.Sprintf("Remote (status %d): %s", tpErr.Code, strings.TrimSpace(tpErr.Msg))
	}
	return strings.TrimSpace(err.Error())
}

// Entries prints a directory listing. Directory names end in a slash and
// are highlighted; with long set, size and modification time are shown too.
func (r *Reporter) Entries(entries []remote.Entry, long bool) {
	if len(entries) == 0 {
		r.println(MutedStyle().Render("Directory is empty"))
		return
	}
	if !long {
		for _, e := range entries {
			r.println(entryName(e))
		}
		return
	}

	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		size := humanize.IBytes(e.Size)
		if e.Kind == remote.KindDirectory {
			size = "<DIR>"
		}
		modTime := ""
		if !e.ModTime.IsZero() {
			modTime = e.ModTime.Format("Jan 02 15:04")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", size, modTime, entryName(e))
	}
	_ = tw.Flush()
}

func entryName(e remote.Entry) string {
	switch e.Kind {
	case remote.KindDirectory:
		return DirectoryStyle().Render(e.Name + "/")
	case remote.KindOther:
		return InfoStyle().Render(e.Name)
	default:
		return e.Name
	}
}

// Download prints the outcome of a single-file download, protocol reply
// included, on one line.
func (r *Reporter) Download(dl session.Download) {
	r.Success("%s %s %s [%s]", dl.RemoteName, SymbolArrow, dl.LocalPath, dl.Result.String())
}

// SummaryItem prints one entry of a directory download as it settles.
// Skipped entries are only shown when they were filtered out by name, so
// subdirectories do not clutter the output.
func (r *Reporter) SummaryItem(item session.SummaryItem) {
	switch item.Status {
	case session.StatusDownloaded:
		r.Success("%s %s %s (%s)", item.Name, SymbolArrow, item.LocalPath, humanize.IBytes(uint64(item.Bytes)))
	case session.StatusFailed:
		r.println(ErrorStyle().Render(fmt.Sprintf("%s %s: %s", SymbolFail, item.Name, describeCause(item.Err))))
	case session.StatusSkipped:
		if item.Reason != "filtered" && item.Reason != "unsafe name" {
			return
		}
		r.println(MutedStyle().Render(fmt.Sprintf("%s %s (%s)", SymbolSkipped, item.Name, item.Reason)))
	}
}

// Summary prints the closing line of a directory download.
func (r *Reporter) Summary(s *session.Summary) {
	line := s.String()
	if s.Downloaded() > 0 {
		line += fmt.Sprintf(" (%s)", humanize.IBytes(uint64(s.Bytes())))
	}
	if s.Failed() > 0 {
		r.Warn("%s", line)
		return
	}
	r.Success("%s", line)
}
