package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/dircmp/pkg/models"
)

// WriteDifferencesReport writes the differences report to a file
// Format can be "human" or "json"
func WriteDifferencesReport(report *models.CompareReport, path string, format string) error {
	if len(collectItems(report.Root, false)) == 0 {
		// No differences - don't create empty file
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create differences file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		return writeDifferencesJSON(report, file)
	default: // "human"
		return writeDifferencesHuman(report, file)
	}
}

// differenceOrder is the section order of the human report
var differenceOrder = []models.Classification{
	models.CompareError,
	models.LeftOnly,
	models.MiddleOnly,
	models.RightOnly,
	models.Different,
	models.BinaryDiff,
	models.Unknown,
}

var differenceLabels = map[models.Classification]string{
	models.CompareError: "Errors",
	models.LeftOnly:     "Only in Left",
	models.MiddleOnly:   "Only in Middle",
	models.RightOnly:    "Only in Right",
	models.Different:    "Content Differences",
	models.BinaryDiff:   "Binary Differences",
	models.Unknown:      "Not Compared",
}

// writeDifferencesHuman writes differences in human-readable format
func writeDifferencesHuman(report *models.CompareReport, w io.Writer) error {
	items := collectItems(report.Root, false)

	fmt.Fprintf(w, "Differences Report\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Run: %s\n", report.RunID)
	fmt.Fprintf(w, "Left: %s\n", report.Paths.Left())
	if report.Paths.IsThreeWay() {
		fmt.Fprintf(w, "Middle: %s\n", report.Paths.Middle())
	}
	fmt.Fprintf(w, "Right: %s\n", report.Paths.Right())
	fmt.Fprintf(w, "Method: %s\n", report.Method)
	fmt.Fprintf(w, "Aborted: %v\n\n", report.Aborted)

	fmt.Fprintf(w, "Total Differences: %d\n\n", len(items))

	byClass := make(map[models.Classification][]*models.CompareItem)
	for _, item := range items {
		c := item.Classification()
		byClass[c] = append(byClass[c], item)
	}

	for _, c := range differenceOrder {
		group := byClass[c]
		if len(group) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d)", differenceLabels[c], len(group))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, item := range group {
			o := item.Outcome()
			path := item.RelativePath
			if item.IsFolder {
				path += "/"
			}
			fmt.Fprintf(w, "  %s\n", path)
			if o.Reason != "" {
				fmt.Fprintf(w, "    Details: %s\n", o.Reason)
			}
			if item.IsFolder {
				continue
			}
			for s, side := range item.Sides {
				if !side.Exists {
					continue
				}
				fmt.Fprintf(w, "    %-7s %s, modified %s\n", report.Paths.SideName(s)+":", formatBytes(side.Size), side.ModTime.Format(time.RFC3339))
			}
		}

		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeDifferencesJSON writes differences in JSON format
func writeDifferencesJSON(report *models.CompareReport, w io.Writer) error {
	data := buildReportData(report, false)
	output := struct {
		Generated   string         `json:"generated"`
		RunID       string         `json:"run_id"`
		Paths       []string       `json:"paths"`
		Method      string         `json:"method"`
		TotalCount  int            `json:"total_count"`
		Differences []JSONItemData `json:"differences"`
	}{
		Generated:   time.Now().Format(time.RFC3339),
		RunID:       data.RunID,
		Paths:       data.Paths,
		Method:      data.Method,
		TotalCount:  len(data.Items),
		Differences: data.Items,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
