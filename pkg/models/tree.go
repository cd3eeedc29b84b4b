package models

import (
	"sync"
)

// ItemTree holds the result of a comparison as a tree of items rooted at
// the compared roots. Child order is the directory-walk order.
type ItemTree struct {
	mu   sync.RWMutex
	root *CompareItem
}

// NewItemTree creates an empty tree
func NewItemTree() *ItemTree {
	return &ItemTree{}
}

// Reset replaces the whole tree with a new root
func (t *ItemTree) Reset(root *CompareItem) {
	t.mu.Lock()
	t.root = root
	t.mu.Unlock()
}

// Clear drops the tree contents
func (t *ItemTree) Clear() {
	t.Reset(nil)
}

// Root returns the root item, nil before the first collection
func (t *ItemTree) Root() *CompareItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Walk visits items depth-first in display order. Returning false from fn
// skips the item's children.
func (t *ItemTree) Walk(fn func(item *CompareItem) bool) {
	root := t.Root()
	if root == nil {
		return
	}
	walk(root, fn)
}

func walk(item *CompareItem, fn func(item *CompareItem) bool) {
	if !fn(item) {
		return
	}
	for _, c := range item.Children() {
		walk(c, fn)
	}
}

// Find returns the item with the given relative path, or nil
func (t *ItemTree) Find(relativePath string) *CompareItem {
	var found *CompareItem
	t.Walk(func(item *CompareItem) bool {
		if found != nil {
			return false
		}
		if item.RelativePath == relativePath {
			found = item
			return false
		}
		return item.IsFolder
	})
	return found
}

// Selected returns the top-most items marked for re-compare. Descendants of
// a selected folder are covered by the folder and not returned separately.
func (t *ItemTree) Selected() []*CompareItem {
	var out []*CompareItem
	t.Walk(func(item *CompareItem) bool {
		if item.Selected() {
			out = append(out, item)
			return false
		}
		return true
	})
	return out
}

// Replace swaps old for replacement. Replacing the root resets the tree.
func (t *ItemTree) Replace(old, replacement *CompareItem) bool {
	parent := old.Parent()
	if parent == nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.root != old {
			return false
		}
		t.root = replacement
		return true
	}
	return parent.ReplaceChild(old, replacement)
}

// Count returns the number of items below the root
func (t *ItemTree) Count() int {
	n := -1
	t.Walk(func(*CompareItem) bool {
		n++
		return true
	})
	if n < 0 {
		return 0
	}
	return n
}

// Aggregate recomputes folder outcomes bottom-up from their children.
// Folders classified during collection (unique, skipped, unreadable) keep
// their classification.
func (t *ItemTree) Aggregate() Classification {
	root := t.Root()
	if root == nil {
		return Unknown
	}
	return Aggregate(root)
}

// Aggregate computes the outcome of item and all folders below it.
// Folders whose contents were never listed stay Unknown.
func Aggregate(item *CompareItem) Classification {
	if !item.IsFolder {
		return item.Classification()
	}

	var hasError, hasDiff, hasUnknown bool
	for _, c := range item.Children() {
		switch state := Aggregate(c); {
		case state == CompareError:
			hasError = true
		case state == Unknown:
			hasUnknown = true
		case state.IsDifference():
			hasDiff = true
		}
	}

	if !item.isDerivable() {
		return item.Classification()
	}

	var o Outcome
	switch {
	case !item.Collected():
		o = Outcome{Classification: Unknown, Reason: "folder not collected"}
	case hasError:
		o = Outcome{Classification: CompareError, Reason: "folder contains errors"}
	case hasUnknown:
		o = Outcome{Classification: Unknown, Reason: "folder not fully compared"}
	case hasDiff:
		o = Outcome{Classification: Different, Reason: "folder contents differ"}
	default:
		o = Outcome{Classification: Equal, Reason: "folder contents identical"}
	}
	item.setDerived(o)
	return o.Classification
}
