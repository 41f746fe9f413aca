package session

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ItemStatus is the outcome of one listing entry in a directory download.
type ItemStatus int

const (
	StatusPending ItemStatus = iota
	StatusDownloaded
	StatusFailed
	StatusSkipped
)

func (s ItemStatus) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "pending"
	}
}

// SummaryItem records what happened to a single listing entry.
type SummaryItem struct {
	Name      string
	Status    ItemStatus
	LocalPath string
	Bytes     int64
	// Reason explains a skip.
	Reason string
	Err    error
}

// Summary holds the per-entry outcomes of a directory download in listing
// order.
type Summary struct {
	LocalDir string
	Filter   Filter
	Items    []SummaryItem
}

func (s *Summary) count(status ItemStatus) int {
	n := 0
	for _, item := range s.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

func (s *Summary) Downloaded() int { return s.count(StatusDownloaded) }
func (s *Summary) Failed() int     { return s.count(StatusFailed) }
func (s *Summary) Skipped() int    { return s.count(StatusSkipped) }

// Bytes is the total received across downloaded entries.
func (s *Summary) Bytes() int64 {
	var total int64
	for _, item := range s.Items {
		if item.Status == StatusDownloaded {
			total += item.Bytes
		}
	}
	return total
}

// Err aggregates every per-entry failure, or returns nil if there were none.
func (s *Summary) Err() error {
	var result *multierror.Error
	for _, item := range s.Items {
		if item.Status == StatusFailed {
			result = multierror.Append(result, fmt.Errorf("%s: %w", item.Name, item.Err))
		}
	}
	return result.ErrorOrNil()
}

func (s *Summary) String() string {
	return fmt.Sprintf("Finished downloading into %s: %d downloaded, %d failed, %d skipped",
		s.LocalDir, s.Downloaded(), s.Failed(), s.Skipped())
}
