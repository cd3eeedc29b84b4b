package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sdejongh/dircmp/pkg/compare"
	"github.com/sdejongh/dircmp/pkg/logging"
	"github.com/sdejongh/dircmp/pkg/models"
)

// ItemComparator resolves queued file items with a ContentComparer
type ItemComparator struct {
	comparer compare.ContentComparer
	logger   logging.Logger
}

// NewItemComparator creates a comparator
func NewItemComparator(comparer compare.ContentComparer, logger logging.Logger) *ItemComparator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &ItemComparator{
		comparer: comparer,
		logger:   logger.WithFields(logging.Fields{"component": "comparator"}),
	}
}

// CompareItems consumes list in collection order until it is closed, then
// aggregates folder outcomes. After an abort the remaining items are
// drained without being compared so the collector never blocks.
func (ic *ItemComparator) CompareItems(ctx context.Context, cc *CompareContext, list *ItemList, abort AbortGate) {
	ic.drain(ctx, cc, list, abort)
	cc.Tree.Aggregate()
}

func (ic *ItemComparator) drain(ctx context.Context, cc *CompareContext, list *ItemList, abort AbortGate) {
	skipped := 0
	for i := 0; ; i++ {
		item, ok := list.Next(i)
		if !ok {
			break
		}
		if abort != nil && abort() {
			skipped++
			continue
		}
		ic.compareItem(ctx, cc, item)
	}

	if skipped > 0 {
		ic.logger.Info(ctx, "Comparison aborted", logging.Fields{"not_compared": skipped})
	}
}

// CompareSelected rebuilds every selected item from the filesystem,
// compares it and swaps it into the tree in place of the old item. Items
// that are not selected keep their outcome, and so does a selected item
// whose refresh was cut short by an abort.
func (ic *ItemComparator) CompareSelected(ctx context.Context, cc *CompareContext, collector *TreeCollector, abort AbortGate) {
	opts := collectOptions(cc, abort)

	for _, old := range cc.Tree.Selected() {
		if abort != nil && abort() {
			break
		}

		list := NewItemList()
		fresh := collector.Refresh(ctx, cc, old, opts, list)
		list.Close()
		ic.drain(ctx, cc, list, abort)
		list.Clear()

		// An aborted refresh leaves the previous result in place
		if state := models.Aggregate(fresh); state == models.Unknown && abort != nil && abort() {
			ic.logger.Info(ctx, "Re-compare aborted, keeping previous result", logging.Fields{"path": old.RelativePath})
			break
		}

		if !cc.Tree.Replace(old, fresh) {
			ic.logger.Warn(ctx, "Selected item no longer in tree", logging.Fields{"path": old.RelativePath})
			continue
		}
		ic.logger.Debug(ctx, "Item re-compared", logging.Fields{
			"path":           fresh.RelativePath,
			"classification": fresh.Classification().String(),
		})
	}

	cc.Tree.Aggregate()
}

func (ic *ItemComparator) compareItem(ctx context.Context, cc *CompareContext, item *models.CompareItem) {
	if item.Classification() != models.Unknown {
		return
	}

	targets := make([]compare.Target, len(item.Sides))
	for s, side := range item.Sides {
		targets[s] = compare.Target{Backend: cc.Backends[s], Path: side.Path}
	}

	res := ic.safeCompare(ctx, targets)
	o := outcomeFor(res)
	if o.Classification == models.CompareError {
		ic.logger.Warn(ctx, "Failed to compare file", logging.Fields{
			"path":   item.RelativePath,
			"reason": o.Reason,
		})
	}

	if item.Resolve(o) {
		cc.Stats.AddElement(o.Classification, false)
	}
	cc.Stats.AddCompared()
}

// safeCompare turns a comparer panic into an error result
func (ic *ItemComparator) safeCompare(ctx context.Context, targets []compare.Target) (res *compare.Comparison) {
	defer func() {
		if r := recover(); r != nil {
			ic.logger.Error(ctx, "Comparer panicked", fmt.Errorf("%v", r), logging.Fields{"stack": string(debug.Stack())})
			res = &compare.Comparison{Outcome: compare.Error, Reason: fmt.Sprintf("comparer panic: %v", r)}
		}
	}()

	res = ic.comparer.Compare(ctx, targets)
	if res == nil {
		res = &compare.Comparison{Outcome: compare.Error, Reason: "comparer returned no result"}
	}
	return res
}

// outcomeFor maps a comparer result to an item outcome
func outcomeFor(res *compare.Comparison) models.Outcome {
	o := models.Outcome{Reason: res.Reason, Differences: res.Differences}
	switch res.Outcome {
	case compare.Identical:
		o.Classification = models.Equal
	case compare.Different:
		o.Classification = models.Different
	case compare.BinaryIdentical:
		o.Classification = models.BinarySame
	case compare.BinaryDifferent:
		o.Classification = models.BinaryDiff
	default:
		o.Classification = models.CompareError
		if res.Err != nil {
			o.Reason = fmt.Sprintf("%s: %v", res.Reason, res.Err)
		}
	}
	return o
}
