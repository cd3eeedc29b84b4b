package engine

import (
	"sync"

	"github.com/sdejongh/dircmp/pkg/models"
)

// ItemList is the queue of collected items waiting for content comparison.
// It is append-only while a run is active: the collector appends fully
// built items and the comparator reads them by index up to the published
// length, blocking for more until the list is closed.
type ItemList struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*models.CompareItem
	closed bool
}

// NewItemList creates an open, empty list
func NewItemList() *ItemList {
	l := &ItemList{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Append publishes an item. It returns false once the list is closed.
func (l *ItemList) Append(item *models.CompareItem) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.items = append(l.items, item)
	l.cond.Broadcast()
	return true
}

// Close marks the end of collection and wakes blocked readers
func (l *ItemList) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cond.Broadcast()
}

// Next returns item i, blocking until it is published.
// It returns false when the list is closed with fewer than i+1 items.
func (l *ItemList) Next(i int) (*models.CompareItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i >= len(l.items) && !l.closed {
		l.cond.Wait()
	}
	if i >= len(l.items) {
		return nil, false
	}
	return l.items[i], true
}

// Len returns the published length
func (l *ItemList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Closed reports whether collection has finished
func (l *ItemList) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Clear drops all items. Results stay in the tree.
func (l *ItemList) Clear() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
}
