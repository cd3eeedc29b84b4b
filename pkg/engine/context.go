package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/sdejongh/dircmp/internal/platform"
	"github.com/sdejongh/dircmp/pkg/filter"
	"github.com/sdejongh/dircmp/pkg/models"
	"github.com/sdejongh/dircmp/pkg/storage"
)

// RunState is the lifecycle state of a compare run
type RunState int32

const (
	// NotStarted means no run has been started yet
	NotStarted RunState = iota
	// Running means collection or comparison is in progress
	Running
	// Completed means the last run finished or was aborted
	Completed
)

func (s RunState) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// AbortGate is polled at safe points; true means stop
type AbortGate func() bool

// CompareContext holds everything one compare session works on: the roots,
// their storage, filtering and the results. A context runs one compare at a
// time and keeps its tree between runs for scope-restricted re-compares.
type CompareContext struct {
	Paths models.PathSet
	// Backends holds one storage backend per side
	Backends []storage.Backend
	// RootPaths are the compared roots relative to each backend; empty for
	// folder roots, the file name for file roots
	RootPaths []string

	Filter        filter.Filter
	CaseSensitive bool
	ExpandUnique  bool

	Stats *models.CompareStats
	Tree  *models.ItemTree

	recursive    bool
	onlySelected bool
	aborting     atomic.Bool
	state        atomic.Int32
}

// NewCompareContext creates a context over existing backends
func NewCompareContext(paths models.PathSet, backends []storage.Backend, rootPaths []string, f filter.Filter) (*CompareContext, error) {
	if len(backends) != paths.Len() || len(rootPaths) != paths.Len() {
		return nil, fmt.Errorf("expected %d backends and root paths, got %d and %d", paths.Len(), len(backends), len(rootPaths))
	}
	if f == nil {
		f = filter.All{}
	}
	return &CompareContext{
		Paths:         paths,
		Backends:      backends,
		RootPaths:     rootPaths,
		Filter:        f,
		CaseSensitive: platform.CaseSensitiveNames(),
		Stats:         models.NewCompareStats(),
		Tree:          models.NewItemTree(),
	}, nil
}

// NewLocalContext opens OS filesystem backends for every root.
// File roots are served by a backend on their parent directory.
func NewLocalContext(paths models.PathSet, f filter.Filter) (*CompareContext, error) {
	backends := make([]storage.Backend, paths.Len())
	rootPaths := make([]string, paths.Len())

	for i, p := range paths.Paths() {
		dir := p
		if paths.Kind() == models.KindFiles {
			dir, rootPaths[i] = filepath.Dir(p), filepath.Base(p)
		}
		backend, err := storage.NewLocal(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s root: %w", paths.SideName(i), err)
		}
		backends[i] = backend
	}

	return NewCompareContext(paths, backends, rootPaths, f)
}

// Recursive reports the recursion flag of the current run
func (c *CompareContext) Recursive() bool { return c.recursive }

// OnlySelected reports whether the current run is scope-restricted
func (c *CompareContext) OnlySelected() bool { return c.onlySelected }

// State returns the run state
func (c *CompareContext) State() RunState {
	return RunState(c.state.Load())
}

// Abort requests cooperative cancellation of the active run
func (c *CompareContext) Abort() {
	c.aborting.Store(true)
}

// Aborting reports whether an abort was requested
func (c *CompareContext) Aborting() bool {
	return c.aborting.Load()
}

// Close releases the storage backends
func (c *CompareContext) Close() error {
	var firstErr error
	for _, b := range c.Backends {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// begin moves the context to Running and snapshots the run parameters
func (c *CompareContext) begin(opts RunOptions) error {
	for {
		s := c.state.Load()
		if RunState(s) == Running {
			return &MisuseError{Op: "start compare", Err: ErrAlreadyRunning}
		}
		if c.state.CompareAndSwap(s, int32(Running)) {
			break
		}
	}
	c.aborting.Store(false)
	c.recursive = opts.Recursive
	c.onlySelected = opts.OnlySelected
	return nil
}

func (c *CompareContext) end() {
	c.state.Store(int32(Completed))
}

// abortGate returns the gate polled by the collector and comparator
func (c *CompareContext) abortGate(ctx context.Context) AbortGate {
	return func() bool {
		return c.aborting.Load() || ctx.Err() != nil
	}
}

func (c *CompareContext) sideName(side int) string {
	return c.Paths.SideName(side)
}
