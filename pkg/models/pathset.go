package models

import (
	"fmt"
	"os"

	"github.com/sdejongh/dircmp/internal/platform"
)

// Side indexes into a PathSet and an item's per-side metadata
const (
	SideLeft = 0
)

// PathKind tells whether a PathSet compares folders or single files
type PathKind string

const (
	// KindFolders compares directory trees
	KindFolders PathKind = "folders"
	// KindFiles compares one file per side
	KindFiles PathKind = "files"
)

// PathSet is the ordered list of 2 or 3 normalized roots under comparison:
// left, optional middle, right.
type PathSet struct {
	paths []string
	kind  PathKind
}

// NewPathSet normalizes and validates the given roots. Every root must
// exist and all roots must be of the same kind.
func NewPathSet(paths ...string) (PathSet, error) {
	if len(paths) < 2 || len(paths) > 3 {
		return PathSet{}, &ValidationError{Field: "paths", Message: fmt.Sprintf("expected 2 or 3 paths, got %d", len(paths))}
	}

	normalized := make([]string, len(paths))
	var kind PathKind
	for i, p := range paths {
		n, err := platform.NormalizePath(p)
		if err != nil {
			return PathSet{}, err
		}

		info, err := os.Stat(n)
		if err != nil {
			return PathSet{}, fmt.Errorf("failed to access %s: %w", n, err)
		}

		k := KindFiles
		if info.IsDir() {
			k = KindFolders
		}
		if i > 0 && k != kind {
			return PathSet{}, &ValidationError{Field: "paths", Message: "cannot compare a folder with a file"}
		}
		kind = k
		normalized[i] = n
	}

	return PathSet{paths: normalized, kind: kind}, nil
}

// NewPathSetUnchecked builds a PathSet without touching the filesystem.
// Used when roots live on a non-OS storage backend.
func NewPathSetUnchecked(kind PathKind, paths ...string) PathSet {
	cp := make([]string, len(paths))
	copy(cp, paths)
	return PathSet{paths: cp, kind: kind}
}

// Len returns the number of sides
func (p PathSet) Len() int { return len(p.paths) }

// Kind returns whether folders or files are compared
func (p PathSet) Kind() PathKind { return p.kind }

// Path returns the root for a side
func (p PathSet) Path(side int) string { return p.paths[side] }

// Paths returns a copy of all roots
func (p PathSet) Paths() []string {
	out := make([]string, len(p.paths))
	copy(out, p.paths)
	return out
}

// Left returns the left root
func (p PathSet) Left() string { return p.paths[SideLeft] }

// Right returns the right root
func (p PathSet) Right() string { return p.paths[p.RightSide()] }

// Middle returns the middle root, empty for two-way comparisons
func (p PathSet) Middle() string {
	if !p.IsThreeWay() {
		return ""
	}
	return p.paths[1]
}

// IsThreeWay reports whether a middle root is present
func (p PathSet) IsThreeWay() bool { return len(p.paths) == 3 }

// RightSide returns the side index of the right root
func (p PathSet) RightSide() int { return len(p.paths) - 1 }

// UniqueClass returns the classification for an entry present only on side
func (p PathSet) UniqueClass(side int) Classification {
	switch {
	case side == SideLeft:
		return LeftOnly
	case side == p.RightSide():
		return RightOnly
	default:
		return MiddleOnly
	}
}

// SideName returns a display name for a side
func (p PathSet) SideName(side int) string {
	switch {
	case side == SideLeft:
		return "left"
	case side == p.RightSide():
		return "right"
	default:
		return "middle"
	}
}

// Validate rejects identical or nested roots
func (p PathSet) Validate() error {
	for i := range p.paths {
		for j := i + 1; j < len(p.paths); j++ {
			a, b := p.paths[i], p.paths[j]
			if platform.SamePath(a, b) {
				return &ValidationError{Field: "paths", Message: fmt.Sprintf("%s and %s roots are the same: %s", p.SideName(i), p.SideName(j), a)}
			}
			if p.kind == KindFolders && (platform.IsNested(a, b) || platform.IsNested(b, a)) {
				return &ValidationError{Field: "paths", Message: fmt.Sprintf("%s and %s roots are nested", p.SideName(i), p.SideName(j))}
			}
		}
	}
	return nil
}
