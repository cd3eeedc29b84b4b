package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/dircmp/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer    io.Writer
	opts      Options
	startTime time.Time
	errors    []string
}

// JSONReportData represents the final report
type JSONReportData struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	Aborted    bool           `json:"aborted"`
	Paths      []string       `json:"paths"`
	Method     string         `json:"method"`
	Duration   string         `json:"duration"`
	DurationMs int64          `json:"duration_ms"`
	Stats      JSONStatsData  `json:"stats"`
	Items      []JSONItemData `json:"items,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
}

// JSONStatsData represents counters in JSON format
type JSONStatsData struct {
	Files       map[string]int64 `json:"files"`
	Folders     map[string]int64 `json:"folders"`
	Collected   int64            `json:"collected"`
	Queued      int64            `json:"queued"`
	Compared    int64            `json:"compared"`
	Differences int64            `json:"differences"`
	Errors      int64            `json:"errors"`
}

// JSONItemData represents one compared entry
type JSONItemData struct {
	Path           string                `json:"path"`
	Type           string                `json:"type"`
	Classification models.Classification `json:"classification"`
	Reason         string                `json:"reason,omitempty"`
	Differences    int                   `json:"differences,omitempty"`
	Sides          []JSONSideData        `json:"sides"`
}

// JSONSideData represents the metadata of an entry on one side
type JSONSideData struct {
	Exists  bool   `json:"exists"`
	Size    int64  `json:"size,omitempty"`
	ModTime string `json:"mod_time,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts Options) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, paths models.PathSet, method models.CompareMethod) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.startTime = time.Now()
	f.errors = nil
	return nil
}

// Progress is a no-op so the output stays a single parseable document
func (f *JSONFormatter) Progress(snap models.StatsSnapshot) error {
	return nil
}

// Complete writes the report as one JSON document
func (f *JSONFormatter) Complete(report *models.CompareReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	data := buildReportData(report, f.opts.Tree)
	data.Errors = f.errors

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// buildReportData converts a report. Without all, only differences and
// errors are listed.
func buildReportData(report *models.CompareReport, all bool) JSONReportData {
	counts := countItems(report.Root)
	stats := JSONStatsData{
		Files:       make(map[string]int64),
		Folders:     make(map[string]int64),
		Collected:   report.Stats.Collected,
		Queued:      report.Stats.Queued,
		Compared:    report.Stats.Compared,
		Differences: report.Stats.Differences(),
		Errors:      report.Stats.Errors(),
	}
	for c := models.Classification(0); int(c) < models.NumClassifications; c++ {
		if counts.Files[c] > 0 {
			stats.Files[c.String()] = counts.Files[c]
		}
		if counts.Folders[c] > 0 {
			stats.Folders[c.String()] = counts.Folders[c]
		}
	}

	var items []JSONItemData
	for _, item := range collectItems(report.Root, all) {
		items = append(items, itemData(item))
	}

	return JSONReportData{
		RunID:      report.RunID,
		Status:     string(report.Status),
		Aborted:    report.Aborted,
		Paths:      report.Paths.Paths(),
		Method:     string(report.Method),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats:      stats,
		Items:      items,
	}
}

func itemData(item *models.CompareItem) JSONItemData {
	o := item.Outcome()
	sides := make([]JSONSideData, len(item.Sides))
	for i, s := range item.Sides {
		sides[i] = JSONSideData{Exists: s.Exists}
		if s.Exists {
			sides[i].ModTime = s.ModTime.Format(time.RFC3339)
			if !s.IsDir {
				sides[i].Size = s.Size
			}
		}
	}
	return JSONItemData{
		Path:           item.RelativePath,
		Type:           itemKind(item),
		Classification: o.Classification,
		Reason:         o.Reason,
		Differences:    o.Differences,
		Sides:          sides,
	}
}

// Error records an error to include in the final document
func (f *JSONFormatter) Error(err error) error {
	f.errors = append(f.errors, err.Error())
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
