package models

import (
	"time"
)

// CompareReport summarizes a finished compare run
type CompareReport struct {
	RunID   string
	Paths   PathSet
	Method  CompareMethod
	Aborted bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Stats StatsSnapshot
	Root  *CompareItem

	Status CompareStatus
}

// CompareStatus represents the overall result
type CompareStatus string

const (
	// StatusIdentical indicates no differences were found
	StatusIdentical CompareStatus = "identical"
	// StatusDifferent indicates at least one difference
	StatusDifferent CompareStatus = "different"
	// StatusErrors indicates some items could not be compared
	StatusErrors CompareStatus = "errors"
	// StatusAborted indicates the run was cancelled
	StatusAborted CompareStatus = "aborted"
)

// StatusFor derives the overall status from the root outcome and stats
func StatusFor(root *CompareItem, stats StatsSnapshot, aborted bool) CompareStatus {
	switch {
	case aborted:
		return StatusAborted
	case stats.Errors() > 0:
		return StatusErrors
	case root != nil && root.Classification() == CompareError:
		return StatusErrors
	case stats.Differences() > 0:
		return StatusDifferent
	case root != nil && root.Classification().IsDifference():
		return StatusDifferent
	default:
		return StatusIdentical
	}
}

// ExitCode returns the process exit code for the status
func (s CompareStatus) ExitCode() int {
	switch s {
	case StatusIdentical:
		return 0
	case StatusDifferent:
		return 1
	case StatusErrors:
		return 2
	case StatusAborted:
		return 3
	default:
		return 2
	}
}
