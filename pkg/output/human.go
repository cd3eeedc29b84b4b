package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/sdejongh/dircmp/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer    io.Writer
	opts      Options
	startTime time.Time
	lastPhase models.Phase
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(opts Options) *HumanFormatter {
	return &HumanFormatter{opts: opts}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, paths models.PathSet, method models.CompareMethod) error {
	f.writer = writer
	f.startTime = time.Now()
	f.lastPhase = models.PhaseIdle

	if writer == nil || f.opts.Quiet {
		return nil
	}

	fmt.Fprintf(writer, "Comparing (%s):\n", method)
	fmt.Fprintf(writer, "  Left:   %s\n", paths.Left())
	if paths.IsThreeWay() {
		fmt.Fprintf(writer, "  Middle: %s\n", paths.Middle())
	}
	fmt.Fprintf(writer, "  Right:  %s\n", paths.Right())
	return nil
}

// Progress prints a line when the run changes phase
func (f *HumanFormatter) Progress(snap models.StatsSnapshot) error {
	if f.writer == nil || f.opts.Quiet || snap.Phase == f.lastPhase {
		return nil
	}
	f.lastPhase = snap.Phase

	switch snap.Phase {
	case models.PhaseCollecting:
		fmt.Fprintf(f.writer, "Collecting...\n")
	case models.PhaseComparing:
		fmt.Fprintf(f.writer, "Comparing %d files (%d items collected)...\n", snap.Queued, snap.Collected)
	}
	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.CompareReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	if !f.opts.Quiet {
		f.writeItems(report.Root)
		fmt.Fprintf(f.writer, "\n")
		fmt.Fprintf(f.writer, "Compare completed in %s\n", report.Duration.Round(time.Millisecond))
		fmt.Fprintf(f.writer, "\n")
		f.writeSummary(report)
		fmt.Fprintf(f.writer, "\n")
	}

	fmt.Fprintf(f.writer, "Status: %s\n", report.Status)
	return nil
}

// writeItems lists differences by path, or the whole tree indented by depth
func (f *HumanFormatter) writeItems(root *models.CompareItem) {
	items := collectItems(root, f.opts.Tree)
	if len(items) == 0 {
		if !f.opts.Tree {
			fmt.Fprintf(f.writer, "\nNo differences found.\n")
		}
		return
	}

	if f.opts.Tree {
		fmt.Fprintf(f.writer, "\nTree:\n")
	} else {
		fmt.Fprintf(f.writer, "\nDifferences:\n")
	}

	for _, item := range items {
		o := item.Outcome()
		label := item.RelativePath
		if f.opts.Tree {
			depth := strings.Count(item.RelativePath, "/")
			label = strings.Repeat("  ", depth) + item.Name
		}
		if item.IsFolder {
			label += "/"
		}

		line := fmt.Sprintf("  %-12s %s", "["+o.Classification.String()+"]", label)
		if o.Reason != "" && (reportable(item) || o.Classification == models.Skipped) {
			line += " (" + o.Reason + ")"
		}
		fmt.Fprintln(f.writer, line)
	}
}

// writeSummary renders the final classification counts as a table
func (f *HumanFormatter) writeSummary(report *models.CompareReport) {
	counts := countItems(report.Root)

	table := tablewriter.NewWriter(f.writer)
	table.SetHeader([]string{"Result", "Files", "Folders"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	var files, folders int64
	for c := models.Classification(0); int(c) < models.NumClassifications; c++ {
		if counts.Files[c] == 0 && counts.Folders[c] == 0 {
			continue
		}
		files += counts.Files[c]
		folders += counts.Folders[c]
		table.Append([]string{c.String(), fmt.Sprintf("%d", counts.Files[c]), fmt.Sprintf("%d", counts.Folders[c])})
	}

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", files), fmt.Sprintf("%d", folders)})
	table.Render()

	fmt.Fprintf(f.writer, "Items collected: %d, files compared: %d/%d\n", report.Stats.Collected, report.Stats.Compared, report.Stats.Queued)
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
