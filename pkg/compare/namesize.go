package compare

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeTolerance absorbs filesystem timestamp precision differences
const DefaultTimeTolerance = time.Second

// MetadataComparator compares files by size and/or modification time
// without reading their content
type MetadataComparator struct {
	checkSize bool
	checkDate bool
	tolerance time.Duration
}

// NewSizeComparator compares sizes only
func NewSizeComparator() *MetadataComparator {
	return &MetadataComparator{checkSize: true}
}

// NewDateComparator compares modification times only
func NewDateComparator(tolerance time.Duration) *MetadataComparator {
	return &MetadataComparator{checkDate: true, tolerance: tolerance}
}

// NewDateSizeComparator compares modification times and sizes
func NewDateSizeComparator(tolerance time.Duration) *MetadataComparator {
	return &MetadataComparator{checkSize: true, checkDate: true, tolerance: tolerance}
}

// Compare compares file metadata across all sides
func (c *MetadataComparator) Compare(ctx context.Context, targets []Target) *Comparison {
	if res := checkTargets(targets); res != nil {
		return res
	}

	infos, res := statAll(ctx, targets)
	if res != nil {
		return res
	}

	if c.checkSize && sizesDiffer(infos) {
		return &Comparison{Outcome: Different, Reason: fmt.Sprintf("file sizes differ (%s)", sizeList(infos))}
	}

	if c.checkDate {
		for _, info := range infos[1:] {
			delta := info.ModTime.Sub(infos[0].ModTime)
			if delta < 0 {
				delta = -delta
			}
			if delta > c.tolerance {
				return &Comparison{
					Outcome: Different,
					Reason: fmt.Sprintf("modification times differ (%s vs %s)",
						infos[0].ModTime.Format("2006-01-02 15:04:05"), info.ModTime.Format("2006-01-02 15:04:05")),
				}
			}
		}
	}

	return &Comparison{Outcome: Identical, Reason: fmt.Sprintf("%s matches", c.Name())}
}

// Name returns the comparator name
func (c *MetadataComparator) Name() string {
	switch {
	case c.checkSize && c.checkDate:
		return "datesize"
	case c.checkDate:
		return "date"
	default:
		return "size"
	}
}
