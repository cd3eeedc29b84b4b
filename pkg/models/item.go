package models

import (
	"fmt"
	"io/fs"
	"sync"
	"time"
)

// Classification is the comparison outcome assigned to an item
type Classification int

const (
	// Unknown means the item has not been resolved yet
	Unknown Classification = iota
	// Equal indicates text content (or metadata) is identical
	Equal
	// Different indicates content differs
	Different
	// LeftOnly indicates the entry exists only on the left side
	LeftOnly
	// RightOnly indicates the entry exists only on the right side
	RightOnly
	// MiddleOnly indicates the entry exists only on the middle side (three-way)
	MiddleOnly
	// Skipped indicates the entry is shown but was not compared
	Skipped
	// CompareError indicates the entry could not be read or compared
	CompareError
	// BinarySame indicates binary files with identical content
	BinarySame
	// BinaryDiff indicates binary files with different content
	BinaryDiff
)

var classificationNames = [...]string{
	Unknown:      "unknown",
	Equal:        "equal",
	Different:    "different",
	LeftOnly:     "left-only",
	RightOnly:    "right-only",
	MiddleOnly:   "middle-only",
	Skipped:      "skipped",
	CompareError: "error",
	BinarySame:   "binary-same",
	BinaryDiff:   "binary-diff",
}

// NumClassifications is the number of defined classification values
const NumClassifications = len(classificationNames)

func (c Classification) String() string {
	if c < 0 || int(c) >= len(classificationNames) {
		return "invalid"
	}
	return classificationNames[c]
}

// MarshalText implements encoding.TextMarshaler
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Classification) UnmarshalText(text []byte) error {
	for i, name := range classificationNames {
		if name == string(text) {
			*c = Classification(i)
			return nil
		}
	}
	return fmt.Errorf("unknown classification: %s", text)
}

// IsUnique reports whether the classification marks a one-sided entry
func (c Classification) IsUnique() bool {
	return c == LeftOnly || c == RightOnly || c == MiddleOnly
}

// IsDifference reports whether the classification counts as a difference
func (c Classification) IsDifference() bool {
	return c == Different || c == BinaryDiff || c.IsUnique()
}

// IsSame reports whether the classification counts as identical
func (c Classification) IsSame() bool {
	return c == Equal || c == BinarySame
}

// SideInfo holds the metadata of an entry on one side of the comparison
type SideInfo struct {
	// Exists is false when the entry is missing on this side
	Exists bool
	// Path is relative to this side's storage root
	Path    string
	Size    int64
	ModTime time.Time
	Mode    fs.FileMode
	IsDir   bool
}

// Outcome is the resolved state of an item
type Outcome struct {
	Classification Classification
	// Reason explains the classification
	Reason string
	// Differences is the number of differing blocks reported by text comparison
	Differences int
}

// CompareItem is one filesystem entry aligned across all sides.
// RelativePath, Name, IsFolder and Sides are fixed at construction; the
// outcome and child list are guarded by the item's lock.
type CompareItem struct {
	RelativePath string
	Name         string
	IsFolder     bool
	Sides        []SideInfo

	mu       sync.RWMutex
	outcome  Outcome
	derived  bool
	selected bool
	parent   *CompareItem
	children []*CompareItem
}

// NewCompareItem creates an unresolved item
func NewCompareItem(relativePath, name string, isFolder bool, sides []SideInfo) *CompareItem {
	return &CompareItem{
		RelativePath: relativePath,
		Name:         name,
		IsFolder:     isFolder,
		Sides:        sides,
	}
}

// Classification returns the current classification
func (i *CompareItem) Classification() Classification {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.outcome.Classification
}

// Outcome returns a copy of the current outcome
func (i *CompareItem) Outcome() Outcome {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.outcome
}

// Resolve sets the outcome of an unresolved item.
// It returns false if the item was already classified.
func (i *CompareItem) Resolve(o Outcome) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.outcome.Classification != Unknown {
		return false
	}
	i.outcome = o
	return true
}

// Fail marks the item as not comparable, replacing any collect-time
// classification. It returns the previous classification and false when
// the item already holds an error.
func (i *CompareItem) Fail(o Outcome) (Classification, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	prev := i.outcome.Classification
	if prev == CompareError {
		return prev, false
	}
	o.Classification = CompareError
	i.outcome = o
	i.derived = false
	return prev, true
}

// setDerived stores a folder outcome computed from its children
func (i *CompareItem) setDerived(o Outcome) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.outcome = o
	i.derived = true
}

// isDerivable reports whether the folder outcome comes from its children
func (i *CompareItem) isDerivable() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.IsFolder && (i.derived || i.outcome.Classification == Unknown)
}

// Selected reports whether the item is marked for re-compare
func (i *CompareItem) Selected() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.selected
}

// Select marks or unmarks the item for re-compare
func (i *CompareItem) Select(selected bool) {
	i.mu.Lock()
	i.selected = selected
	i.mu.Unlock()
}

// Parent returns the containing folder item, nil at the root
func (i *CompareItem) Parent() *CompareItem {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.parent
}

// Children returns a snapshot of the child list
func (i *CompareItem) Children() []*CompareItem {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]*CompareItem, len(i.children))
	copy(out, i.children)
	return out
}

// SetChildren publishes a fully built child list, replacing any previous one.
// After the first call the folder counts as collected, even when empty.
func (i *CompareItem) SetChildren(children []*CompareItem) {
	if children == nil {
		children = []*CompareItem{}
	}
	for _, c := range children {
		c.mu.Lock()
		c.parent = i
		c.mu.Unlock()
	}
	i.mu.Lock()
	i.children = children
	i.mu.Unlock()
}

// Collected reports whether the folder's children were listed
func (i *CompareItem) Collected() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.children != nil
}

// ReplaceChild swaps old for replacement in the child list.
// It returns false if old is not a child of i.
func (i *CompareItem) ReplaceChild(old, replacement *CompareItem) bool {
	replacement.mu.Lock()
	replacement.parent = i
	replacement.mu.Unlock()

	i.mu.Lock()
	defer i.mu.Unlock()
	for idx, c := range i.children {
		if c == old {
			next := make([]*CompareItem, len(i.children))
			copy(next, i.children)
			next[idx] = replacement
			i.children = next
			return true
		}
	}
	return false
}

// ExistsOn reports whether the entry exists on the given side
func (i *CompareItem) ExistsOn(side int) bool {
	return side < len(i.Sides) && i.Sides[side].Exists
}

// PresentSides returns the number of sides the entry exists on
func (i *CompareItem) PresentSides() int {
	n := 0
	for _, s := range i.Sides {
		if s.Exists {
			n++
		}
	}
	return n
}
