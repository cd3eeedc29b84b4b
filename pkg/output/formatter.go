package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sdejongh/dircmp/pkg/models"
)

// Formatter defines the interface for output formatting
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Start initializes the formatter for a new compare run
	Start(writer io.Writer, paths models.PathSet, method models.CompareMethod) error

	// Progress reports live counters during the run
	Progress(snap models.StatsSnapshot) error

	// Complete finalizes output with the result tree and summary
	Complete(report *models.CompareReport) error

	// Error reports an error during the run
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// Options tunes what formatters print
type Options struct {
	// Tree prints every item instead of only differences and errors
	Tree bool
	// Quiet suppresses everything except the final status
	Quiet bool
}

// New returns the formatter registered under format
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case "", "human":
		return NewHumanFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or fallback when unknown
func terminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}

// reportable reports whether an item shows up in a differences listing
func reportable(item *models.CompareItem) bool {
	c := item.Classification()
	return c.IsDifference() || c == models.CompareError || c == models.Unknown
}

// collectItems returns the items below the root in display order. Without
// all, only reportable items are returned.
func collectItems(root *models.CompareItem, all bool) []*models.CompareItem {
	var out []*models.CompareItem
	var visit func(item *models.CompareItem)
	visit = func(item *models.CompareItem) {
		for _, c := range item.Children() {
			if all || reportable(c) {
				out = append(out, c)
			}
			visit(c)
		}
	}
	if root != nil {
		if !root.IsFolder {
			if all || reportable(root) {
				out = append(out, root)
			}
			return out
		}
		visit(root)
	}
	return out
}

func itemKind(item *models.CompareItem) string {
	if item.IsFolder {
		return "folder"
	}
	return "file"
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// itemCounts holds final classification counts of a result tree
type itemCounts struct {
	Files   [models.NumClassifications]int64
	Folders [models.NumClassifications]int64
}

// countItems tallies every item below the root. A file root counts itself.
func countItems(root *models.CompareItem) itemCounts {
	var counts itemCounts
	for _, item := range collectItems(root, true) {
		c := item.Classification()
		if item.IsFolder {
			counts.Folders[c]++
		} else {
			counts.Files[c]++
		}
	}
	return counts
}
