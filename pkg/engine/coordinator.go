// Package engine walks the compared roots, resolves every aligned item and
// aggregates folder outcomes.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/dircmp/pkg/compare"
	"github.com/sdejongh/dircmp/pkg/filter"
	"github.com/sdejongh/dircmp/pkg/logging"
	"github.com/sdejongh/dircmp/pkg/models"
)

// NotificationSink receives one completion notice per run
type NotificationSink interface {
	NotifyCompareComplete(runID string)
}

// NotifyFunc adapts a function to NotificationSink
type NotifyFunc func(runID string)

// NotifyCompareComplete calls f
func (f NotifyFunc) NotifyCompareComplete(runID string) { f(runID) }

// Options configures a Coordinator
type Options struct {
	// SingleThreaded collects fully, then compares, on the caller's goroutine
	SingleThreaded bool
	// Method is recorded in run reports
	Method models.CompareMethod
}

// RunOptions are the parameters of one run
type RunOptions struct {
	Recursive    bool
	OnlySelected bool
	// ID identifies the run in logs and notifications; generated when empty
	ID string
}

// Coordinator runs the collector and comparator over a CompareContext
type Coordinator struct {
	collector  *TreeCollector
	comparator *ItemComparator
	logger     logging.Logger
	sink       NotificationSink
	opts       Options
}

// NewCoordinator creates a coordinator. logger and sink may be nil.
func NewCoordinator(comparer compare.ContentComparer, logger logging.Logger, sink NotificationSink, opts Options) *Coordinator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Coordinator{
		collector:  NewTreeCollector(logger),
		comparator: NewItemComparator(comparer, logger),
		logger:     logger,
		sink:       sink,
		opts:       opts,
	}
}

// StartCompare opens local backends for paths and starts a run on a new
// context. A nil filter includes everything.
func (c *Coordinator) StartCompare(ctx context.Context, paths models.PathSet, f filter.Filter, recursive, onlySelected bool) (*RunHandle, error) {
	cc, err := NewLocalContext(paths, f)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, cc, RunOptions{Recursive: recursive, OnlySelected: onlySelected})
}

// Run starts a compare on cc. It fails with a MisuseError wrapping
// ErrAlreadyRunning if cc has an active run. In single-threaded mode the
// returned handle is already completed.
func (c *Coordinator) Run(ctx context.Context, cc *CompareContext, opts RunOptions) (*RunHandle, error) {
	if err := cc.begin(opts); err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	ctx = logging.WithRunID(ctx, id)

	h := &RunHandle{
		id:        id,
		cc:        cc,
		method:    c.opts.Method,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}
	h.state.Store(int32(Running))

	cc.Stats.Reset()
	if !opts.OnlySelected {
		cc.Tree.Clear()
	}

	c.logger.Info(ctx, "Starting compare", logging.Fields{
		"paths":           cc.Paths.Paths(),
		"recursive":       opts.Recursive,
		"only_selected":   opts.OnlySelected,
		"single_threaded": c.opts.SingleThreaded,
	})

	list := NewItemList()
	abort := cc.abortGate(ctx)

	if c.opts.SingleThreaded {
		c.runSequential(ctx, cc, list, abort)
		c.finish(ctx, h, list)
		return h, nil
	}

	if !opts.OnlySelected {
		cc.Stats.BeginCollect()
	}
	cc.Stats.BeginCompare()
	go func() {
		c.runConcurrent(ctx, cc, list, abort)
		c.finish(ctx, h, list)
	}()
	return h, nil
}

func (c *Coordinator) runSequential(ctx context.Context, cc *CompareContext, list *ItemList, abort AbortGate) {
	if cc.OnlySelected() {
		cc.Stats.BeginCompare()
		defer cc.Stats.EndCompare()
		c.comparator.CompareSelected(ctx, cc, c.collector, abort)
		return
	}

	cc.Stats.BeginCollect()
	c.collect(ctx, cc, list, abort)
	cc.Stats.EndCollect()

	cc.Stats.BeginCompare()
	defer cc.Stats.EndCompare()
	c.comparator.CompareItems(ctx, cc, list, abort)
}

// runConcurrent expects the phase counters to be raised by the caller
func (c *Coordinator) runConcurrent(ctx context.Context, cc *CompareContext, list *ItemList, abort AbortGate) {
	if cc.OnlySelected() {
		defer cc.Stats.EndCompare()
		c.guard(ctx, "comparator", func() {
			c.comparator.CompareSelected(ctx, cc, c.collector, abort)
		})
		return
	}

	var g errgroup.Group
	g.Go(func() error {
		defer cc.Stats.EndCollect()
		c.guard(ctx, "collector", func() {
			c.collect(ctx, cc, list, abort)
		})
		return nil
	})
	g.Go(func() error {
		defer cc.Stats.EndCompare()
		c.guard(ctx, "comparator", func() {
			c.comparator.CompareItems(ctx, cc, list, abort)
		})
		return nil
	})
	g.Wait()
}

// collect walks the roots and always closes list
func (c *Coordinator) collect(ctx context.Context, cc *CompareContext, list *ItemList, abort AbortGate) {
	defer list.Close()
	c.collector.CollectRoot(ctx, cc, collectOptions(cc, abort), list)
}

// guard keeps a panicking unit from taking the process down
func (c *Coordinator) guard(ctx context.Context, unit string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(ctx, "Compare unit panicked", fmt.Errorf("%v", r), logging.Fields{"unit": unit})
		}
	}()
	fn()
}

func (c *Coordinator) finish(ctx context.Context, h *RunHandle, list *ItemList) {
	list.Close()
	list.Clear()

	h.cc.Tree.Aggregate()
	h.aborted.Store(h.cc.Aborting() || ctx.Err() != nil)
	h.endTime = time.Now()

	h.cc.end()
	h.state.Store(int32(Completed))
	close(h.done)

	snap := h.cc.Stats.Snapshot()
	c.logger.Info(ctx, "Compare finished", logging.Fields{
		"aborted":     h.Aborted(),
		"duration":    h.endTime.Sub(h.startTime).String(),
		"items":       snap.Collected,
		"compared":    snap.Compared,
		"differences": snap.Differences(),
		"errors":      snap.Errors(),
	})

	if c.sink != nil {
		go c.sink.NotifyCompareComplete(h.id)
	}
}

// RunHandle tracks one compare run
type RunHandle struct {
	id     string
	cc     *CompareContext
	method models.CompareMethod

	state   atomic.Int32
	aborted atomic.Bool
	done    chan struct{}

	startTime time.Time
	endTime   time.Time
}

// ID returns the run identifier
func (h *RunHandle) ID() string { return h.id }

// State returns Running until the run completes
func (h *RunHandle) State() RunState { return RunState(h.state.Load()) }

// Abort requests cooperative cancellation. It has no effect once the run
// has completed.
func (h *RunHandle) Abort() {
	if h.State() == Running {
		h.cc.Abort()
	}
}

// Aborted reports whether the run ended early. Valid after completion.
func (h *RunHandle) Aborted() bool { return h.aborted.Load() }

// Stats returns a snapshot of the live counters
func (h *RunHandle) Stats() models.StatsSnapshot { return h.cc.Stats.Snapshot() }

// Tree returns the result tree. Read it after Done is closed for final results.
func (h *RunHandle) Tree() *models.ItemTree { return h.cc.Tree }

// Context returns the compare context of the run
func (h *RunHandle) Context() *CompareContext { return h.cc }

// Done is closed when the run completes
func (h *RunHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run completes or ctx is done
func (h *RunHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Report summarizes the run. It returns nil before completion.
func (h *RunHandle) Report() *models.CompareReport {
	if h.State() != Completed {
		return nil
	}
	stats := h.cc.Stats.Snapshot()
	root := h.cc.Tree.Root()
	return &models.CompareReport{
		RunID:     h.id,
		Paths:     h.cc.Paths,
		Method:    h.method,
		Aborted:   h.Aborted(),
		StartTime: h.startTime,
		EndTime:   h.endTime,
		Duration:  h.endTime.Sub(h.startTime),
		Stats:     stats,
		Root:      root,
		Status:    models.StatusFor(root, stats, h.Aborted()),
	}
}
