package compare

import (
	"context"
	"fmt"
	"io"

	"github.com/sdejongh/dircmp/pkg/storage"
)

// Outcome is the result category of a content comparison
type Outcome int

const (
	// Identical indicates text files (or metadata) match
	Identical Outcome = iota
	// Different indicates text files (or metadata) differ
	Different
	// BinaryIdentical indicates binary files with the same bytes
	BinaryIdentical
	// BinaryDifferent indicates binary files with different bytes
	BinaryDifferent
	// Error indicates the comparison could not be completed
	Error
)

func (o Outcome) String() string {
	switch o {
	case Identical:
		return "identical"
	case Different:
		return "different"
	case BinaryIdentical:
		return "binary-identical"
	case BinaryDifferent:
		return "binary-different"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Target is one side of a comparison: a path relative to a backend root
type Target struct {
	Backend storage.Backend
	Path    string
}

// Comparison holds the result of comparing a file across all sides
type Comparison struct {
	Outcome Outcome
	Reason  string
	Err     error
	// Differences is the number of differing line blocks found by text comparison
	Differences int
}

// ContentComparer compares the same file on two or three sides.
// Failures are reported through an Error outcome, never a panic.
type ContentComparer interface {
	Compare(ctx context.Context, targets []Target) *Comparison

	// Name returns the name of the comparison method
	Name() string
}

// ReaderWrapper wraps readers opened for comparison (e.g., for rate limiting)
type ReaderWrapper func(ctx context.Context, rc io.ReadCloser) io.ReadCloser

func failed(reason string, err error) *Comparison {
	return &Comparison{Outcome: Error, Reason: reason, Err: err}
}

func checkTargets(targets []Target) *Comparison {
	if len(targets) < 2 {
		return failed("comparison needs at least two sides", fmt.Errorf("got %d targets", len(targets)))
	}
	return nil
}

// statAll returns metadata for every target
func statAll(ctx context.Context, targets []Target) ([]*storage.FileInfo, *Comparison) {
	infos := make([]*storage.FileInfo, len(targets))
	for i, t := range targets {
		info, err := t.Backend.Stat(ctx, t.Path)
		if err != nil {
			return nil, failed(fmt.Sprintf("failed to stat %s", t.Path), err)
		}
		infos[i] = info
	}
	return infos, nil
}

// openAll opens a reader on every target; on failure readers already opened are closed
func openAll(ctx context.Context, targets []Target, wrap ReaderWrapper) ([]io.ReadCloser, *Comparison) {
	readers := make([]io.ReadCloser, 0, len(targets))
	for _, t := range targets {
		rc, err := t.Backend.Read(ctx, t.Path)
		if err != nil {
			closeAll(readers)
			return nil, failed(fmt.Sprintf("failed to open %s", t.Path), err)
		}
		if wrap != nil {
			rc = wrap(ctx, rc)
		}
		readers = append(readers, rc)
	}
	return readers, nil
}

func closeAll(readers []io.ReadCloser) {
	for _, r := range readers {
		r.Close()
	}
}

func sizesDiffer(infos []*storage.FileInfo) bool {
	for _, info := range infos[1:] {
		if info.Size != infos[0].Size {
			return true
		}
	}
	return false
}

func sizeList(infos []*storage.FileInfo) string {
	s := ""
	for i, info := range infos {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d", info.Size)
	}
	return s
}
