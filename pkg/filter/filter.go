// Package filter decides which entries take part in a folder comparison.
package filter

// Filter selects entries for the tree walk. Paths are relative to the
// compared roots and use forward slashes.
type Filter interface {
	// ShouldInclude reports whether the entry appears in the result at all
	ShouldInclude(path string, isFolder bool) bool
	// ShouldRecurse reports whether a matched folder is descended into
	ShouldRecurse(path string) bool
}

// Skipper is implemented by filters that keep some entries visible but
// exclude them from comparison.
type Skipper interface {
	ShouldSkip(path string, isFolder bool) bool
}

// All includes every entry and recurses everywhere
type All struct{}

// ShouldInclude always returns true
func (All) ShouldInclude(string, bool) bool { return true }

// ShouldRecurse always returns true
func (All) ShouldRecurse(string) bool { return true }

// ShouldSkip reports whether f marks the entry as shown-but-skipped
func ShouldSkip(f Filter, path string, isFolder bool) bool {
	if s, ok := f.(Skipper); ok {
		return s.ShouldSkip(path, isFolder)
	}
	return false
}
