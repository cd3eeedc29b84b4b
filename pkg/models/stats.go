package models

import (
	"sync/atomic"
)

// Phase is the activity state of a compare run
type Phase int32

const (
	// PhaseIdle means no unit of work is active
	PhaseIdle Phase = iota
	// PhaseCollecting means the tree walk is in progress
	PhaseCollecting
	// PhaseComparing means only content comparison is in progress
	PhaseComparing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCollecting:
		return "collecting"
	case PhaseComparing:
		return "comparing"
	default:
		return "unknown"
	}
}

// CompareStats tracks live progress of a compare run. Counters only grow
// during a run, except when an item is reclassified. Reset is called when
// the next run starts.
type CompareStats struct {
	collecting atomic.Int32
	comparing  atomic.Int32

	files   [NumClassifications]atomic.Int64
	folders [NumClassifications]atomic.Int64

	collected atomic.Int64
	queued    atomic.Int64
	compared  atomic.Int64
}

// NewCompareStats creates zeroed stats in the idle phase
func NewCompareStats() *CompareStats {
	return &CompareStats{}
}

// Reset returns the stats to idle and zero
func (s *CompareStats) Reset() {
	s.collecting.Store(0)
	s.comparing.Store(0)
	for i := range s.files {
		s.files[i].Store(0)
		s.folders[i].Store(0)
	}
	s.collected.Store(0)
	s.queued.Store(0)
	s.compared.Store(0)
}

// BeginCollect marks the collector active
func (s *CompareStats) BeginCollect() { s.collecting.Add(1) }

// EndCollect marks the collector finished
func (s *CompareStats) EndCollect() { s.collecting.Add(-1) }

// BeginCompare marks the comparator active
func (s *CompareStats) BeginCompare() { s.comparing.Add(1) }

// EndCompare marks the comparator finished
func (s *CompareStats) EndCompare() { s.comparing.Add(-1) }

// Phase returns Collecting while a walk runs, Comparing while only
// comparison runs, Idle otherwise
func (s *CompareStats) Phase() Phase {
	if s.collecting.Load() > 0 {
		return PhaseCollecting
	}
	if s.comparing.Load() > 0 {
		return PhaseComparing
	}
	return PhaseIdle
}

// AddElement counts a resolved item
func (s *CompareStats) AddElement(c Classification, isFolder bool) {
	if c < 0 || int(c) >= NumClassifications {
		return
	}
	if isFolder {
		s.folders[c].Add(1)
	} else {
		s.files[c].Add(1)
	}
}

// Reclassify moves a resolved item from one classification to another
func (s *CompareStats) Reclassify(from, to Classification, isFolder bool) {
	if from < 0 || int(from) >= NumClassifications {
		s.AddElement(to, isFolder)
		return
	}
	if isFolder {
		s.folders[from].Add(-1)
	} else {
		s.files[from].Add(-1)
	}
	s.AddElement(to, isFolder)
}

// AddCollected counts an item added to the tree
func (s *CompareStats) AddCollected() { s.collected.Add(1) }

// AddQueued counts an item queued for content comparison
func (s *CompareStats) AddQueued() { s.queued.Add(1) }

// AddCompared counts a finished content comparison
func (s *CompareStats) AddCompared() { s.compared.Add(1) }

// Snapshot returns a consistent-enough copy for progress reporting
func (s *CompareStats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Phase:     s.Phase(),
		Collected: s.collected.Load(),
		Queued:    s.queued.Load(),
		Compared:  s.compared.Load(),
	}
	for i := range s.files {
		snap.Files[i] = s.files[i].Load()
		snap.Folders[i] = s.folders[i].Load()
	}
	return snap
}

// StatsSnapshot is an immutable copy of CompareStats
type StatsSnapshot struct {
	Phase     Phase
	Files     [NumClassifications]int64
	Folders   [NumClassifications]int64
	Collected int64
	Queued    int64
	Compared  int64
}

// Count returns files plus folders with classification c
func (s StatsSnapshot) Count(c Classification) int64 {
	return s.Files[c] + s.Folders[c]
}

// Differences returns the number of items counted as differences
func (s StatsSnapshot) Differences() int64 {
	var n int64
	for c := Classification(0); int(c) < NumClassifications; c++ {
		if c.IsDifference() {
			n += s.Count(c)
		}
	}
	return n
}

// Errors returns the number of items that could not be compared
func (s StatsSnapshot) Errors() int64 {
	return s.Count(CompareError)
}
