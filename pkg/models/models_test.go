package models

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// ============== Classification Tests ==============

func TestClassificationString(t *testing.T) {
	tests := []struct {
		class    Classification
		expected string
	}{
		{Unknown, "unknown"},
		{Equal, "equal"},
		{Different, "different"},
		{LeftOnly, "left-only"},
		{RightOnly, "right-only"},
		{MiddleOnly, "middle-only"},
		{Skipped, "skipped"},
		{CompareError, "error"},
		{BinarySame, "binary-same"},
		{BinaryDiff, "binary-diff"},
		{Classification(42), "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if tt.class.String() != tt.expected {
				t.Errorf("String() = %s, want %s", tt.class.String(), tt.expected)
			}
		})
	}
}

func TestClassificationPredicates(t *testing.T) {
	if !LeftOnly.IsDifference() || !BinaryDiff.IsDifference() || !Different.IsDifference() {
		t.Error("unique and differing classifications should count as differences")
	}
	if Equal.IsDifference() || Skipped.IsDifference() || CompareError.IsDifference() {
		t.Error("equal, skipped and error should not count as differences")
	}
	if !BinarySame.IsSame() || !Equal.IsSame() {
		t.Error("Equal and BinarySame should count as same")
	}
}

// ============== CompareItem Tests ==============

func newFile(name string, c Classification) *CompareItem {
	item := NewCompareItem(name, name, false, []SideInfo{{Exists: true}, {Exists: true}})
	if c != Unknown {
		item.Resolve(Outcome{Classification: c})
	}
	return item
}

func newFolder(name string, children ...*CompareItem) *CompareItem {
	item := NewCompareItem(name, name, true, []SideInfo{{Exists: true, IsDir: true}, {Exists: true, IsDir: true}})
	item.SetChildren(children)
	return item
}

func TestResolveIsOneShot(t *testing.T) {
	item := newFile("a.txt", Unknown)

	if !item.Resolve(Outcome{Classification: Equal}) {
		t.Fatal("first Resolve() should succeed")
	}
	if item.Resolve(Outcome{Classification: Different}) {
		t.Error("second Resolve() should be rejected")
	}
	if item.Classification() != Equal {
		t.Errorf("Classification() = %s, want equal", item.Classification())
	}
}

func TestFailOverridesUniqueClass(t *testing.T) {
	item := NewCompareItem("u", "u", true, []SideInfo{{Exists: true, IsDir: true}, {}})
	item.Resolve(Outcome{Classification: LeftOnly, Reason: "only in left"})

	prev, ok := item.Fail(Outcome{Reason: "left: cannot read u"})
	if !ok || prev != LeftOnly {
		t.Fatalf("Fail() = %s, %v, want left-only, true", prev, ok)
	}
	if item.Classification() != CompareError {
		t.Errorf("Classification() = %s, want error", item.Classification())
	}
	if _, ok := item.Fail(Outcome{Reason: "again"}); ok {
		t.Error("second Fail() should be rejected")
	}
	if item.Outcome().Reason != "left: cannot read u" {
		t.Errorf("Reason = %q, want the first failure", item.Outcome().Reason)
	}

	stats := NewCompareStats()
	stats.AddElement(LeftOnly, true)
	stats.Reclassify(prev, CompareError, true)
	snap := stats.Snapshot()
	if snap.Folders[LeftOnly] != 0 || snap.Folders[CompareError] != 1 {
		t.Errorf("folders = %v, want the left-only count moved to error", snap.Folders)
	}
}

func TestSetChildrenSetsParent(t *testing.T) {
	child := newFile("a.txt", Equal)
	folder := newFolder("", child)

	if child.Parent() != folder {
		t.Error("child parent should be the folder")
	}

	replacement := newFile("a.txt", Different)
	if !folder.ReplaceChild(child, replacement) {
		t.Fatal("ReplaceChild() should find the child")
	}
	if folder.Children()[0] != replacement {
		t.Error("replacement should take the child's slot")
	}
	if replacement.Parent() != folder {
		t.Error("replacement parent should be the folder")
	}
	if folder.ReplaceChild(child, replacement) {
		t.Error("ReplaceChild() should fail for a detached item")
	}
}

// ============== Aggregation Tests ==============

func TestAggregate(t *testing.T) {
	t.Run("DifferentDominatesEqual", func(t *testing.T) {
		root := newFolder("", newFile("a", Equal), newFile("b", Different), newFile("c", Equal))
		if got := Aggregate(root); got != Different {
			t.Errorf("Aggregate() = %s, want different", got)
		}
	})

	t.Run("OnlyEqualChildren", func(t *testing.T) {
		root := newFolder("", newFile("a", Equal), newFile("b", BinarySame), newFile("c", Skipped))
		if got := Aggregate(root); got != Equal {
			t.Errorf("Aggregate() = %s, want equal", got)
		}
	})

	t.Run("EmptyFolderIsEqual", func(t *testing.T) {
		if got := Aggregate(newFolder("")); got != Equal {
			t.Errorf("Aggregate() = %s, want equal", got)
		}
	})

	t.Run("UncollectedFolderStaysUnknown", func(t *testing.T) {
		pending := NewCompareItem("p", "p", true, []SideInfo{{Exists: true, IsDir: true}, {Exists: true, IsDir: true}})
		root := newFolder("", newFile("a", Equal), pending)
		if got := Aggregate(root); got != Unknown {
			t.Errorf("Aggregate() = %s, want unknown", got)
		}
		if pending.Collected() {
			t.Error("folder without SetChildren should not be collected")
		}
	})

	t.Run("UniqueChildMakesDifferent", func(t *testing.T) {
		root := newFolder("", newFile("a", Equal), newFile("c", LeftOnly))
		if got := Aggregate(root); got != Different {
			t.Errorf("Aggregate() = %s, want different", got)
		}
	})

	t.Run("NestedErrorPropagates", func(t *testing.T) {
		sub := newFolder("sub", newFile("sub/x", CompareError), newFile("sub/y", Different))
		root := newFolder("", newFile("a", Equal), sub)
		if got := Aggregate(root); got != CompareError {
			t.Errorf("Aggregate() = %s, want error", got)
		}
		if sub.Classification() != CompareError {
			t.Errorf("sub = %s, want error", sub.Classification())
		}
	})

	t.Run("UnknownChildKeepsFolderUnknown", func(t *testing.T) {
		root := newFolder("", newFile("a", Equal), newFile("b", Unknown))
		if got := Aggregate(root); got != Unknown {
			t.Errorf("Aggregate() = %s, want unknown", got)
		}
	})

	t.Run("CollectedFolderStateKept", func(t *testing.T) {
		unique := NewCompareItem("u", "u", true, []SideInfo{{Exists: true, IsDir: true}, {}})
		unique.Resolve(Outcome{Classification: LeftOnly})
		root := newFolder("", unique)
		Aggregate(root)
		if unique.Classification() != LeftOnly {
			t.Errorf("unique folder = %s, want left-only", unique.Classification())
		}
		if root.Classification() != Different {
			t.Errorf("root = %s, want different", root.Classification())
		}
	})

	t.Run("RecomputedAfterReplace", func(t *testing.T) {
		b := newFile("b", Different)
		root := newFolder("", newFile("a", Equal), b)
		Aggregate(root)
		root.ReplaceChild(b, newFile("b", Equal))
		if got := Aggregate(root); got != Equal {
			t.Errorf("Aggregate() = %s, want equal after replace", got)
		}
	})
}

// ============== ItemTree Tests ==============

func TestItemTree(t *testing.T) {
	a := newFile("a.txt", Equal)
	b := newFile("dir/b.txt", Different)
	dir := newFolder("dir", b)
	root := newFolder("", a, dir)

	tree := NewItemTree()
	if tree.Root() != nil || tree.Count() != 0 {
		t.Fatal("new tree should be empty")
	}
	tree.Reset(root)

	t.Run("Count", func(t *testing.T) {
		if tree.Count() != 3 {
			t.Errorf("Count() = %d, want 3", tree.Count())
		}
	})

	t.Run("Find", func(t *testing.T) {
		if tree.Find("dir/b.txt") != b {
			t.Error("Find() should return nested item")
		}
		if tree.Find("missing") != nil {
			t.Error("Find() should return nil for unknown path")
		}
	})

	t.Run("SelectedTopMostOnly", func(t *testing.T) {
		dir.Select(true)
		b.Select(true)
		defer dir.Select(false)
		defer b.Select(false)

		sel := tree.Selected()
		if len(sel) != 1 || sel[0] != dir {
			t.Errorf("Selected() = %v, want only dir", sel)
		}
	})

	t.Run("WalkOrder", func(t *testing.T) {
		var paths []string
		tree.Walk(func(item *CompareItem) bool {
			paths = append(paths, item.RelativePath)
			return true
		})
		want := []string{"", "a.txt", "dir", "dir/b.txt"}
		if len(paths) != len(want) {
			t.Fatalf("Walk() visited %v, want %v", paths, want)
		}
		for i := range want {
			if paths[i] != want[i] {
				t.Errorf("Walk()[%d] = %s, want %s", i, paths[i], want[i])
			}
		}
	})

	t.Run("ReplaceRoot", func(t *testing.T) {
		other := newFolder("")
		if !tree.Replace(root, other) {
			t.Fatal("Replace() should accept the root")
		}
		if tree.Root() != other {
			t.Error("Root() should be the replacement")
		}
		tree.Reset(root)
	})
}

// ============== CompareStats Tests ==============

func TestCompareStatsPhase(t *testing.T) {
	s := NewCompareStats()
	if s.Phase() != PhaseIdle {
		t.Errorf("Phase() = %s, want idle", s.Phase())
	}

	s.BeginCompare()
	if s.Phase() != PhaseComparing {
		t.Errorf("Phase() = %s, want comparing", s.Phase())
	}

	s.BeginCollect()
	if s.Phase() != PhaseCollecting {
		t.Errorf("Phase() = %s, want collecting while walk runs", s.Phase())
	}

	s.EndCollect()
	if s.Phase() != PhaseComparing {
		t.Errorf("Phase() = %s, want comparing after walk", s.Phase())
	}

	s.EndCompare()
	if s.Phase() != PhaseIdle {
		t.Errorf("Phase() = %s, want idle", s.Phase())
	}
}

func TestCompareStatsCounters(t *testing.T) {
	s := NewCompareStats()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddElement(Equal, false)
			s.AddElement(LeftOnly, true)
			s.AddCompared()
		}()
	}
	wg.Wait()
	s.AddElement(Classification(-1), false)

	snap := s.Snapshot()
	if snap.Files[Equal] != 50 {
		t.Errorf("Files[Equal] = %d, want 50", snap.Files[Equal])
	}
	if snap.Folders[LeftOnly] != 50 {
		t.Errorf("Folders[LeftOnly] = %d, want 50", snap.Folders[LeftOnly])
	}
	if snap.Differences() != 50 {
		t.Errorf("Differences() = %d, want 50", snap.Differences())
	}
	if snap.Compared != 50 {
		t.Errorf("Compared = %d, want 50", snap.Compared)
	}

	s.Reset()
	if s.Snapshot().Count(Equal) != 0 {
		t.Error("Reset() should zero counters")
	}
}

// ============== Report Tests ==============

func TestStatusFor(t *testing.T) {
	var clean StatsSnapshot

	withDiff := StatsSnapshot{}
	withDiff.Files[Different] = 1

	withErr := StatsSnapshot{}
	withErr.Files[Different] = 1
	withErr.Files[CompareError] = 1

	tests := []struct {
		name    string
		stats   StatsSnapshot
		aborted bool
		want    CompareStatus
		code    int
	}{
		{"Identical", clean, false, StatusIdentical, 0},
		{"Different", withDiff, false, StatusDifferent, 1},
		{"Errors", withErr, false, StatusErrors, 2},
		{"Aborted", withErr, true, StatusAborted, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusFor(nil, tt.stats, tt.aborted)
			if got != tt.want {
				t.Errorf("StatusFor() = %s, want %s", got, tt.want)
			}
			if got.ExitCode() != tt.code {
				t.Errorf("ExitCode() = %d, want %d", got.ExitCode(), tt.code)
			}
		})
	}
}

// ============== PathSet / Operation Tests ==============

func TestNewPathSet(t *testing.T) {
	base := t.TempDir()
	left := filepath.Join(base, "L")
	right := filepath.Join(base, "R")
	middle := filepath.Join(base, "M")
	for _, d := range []string{left, right, middle} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
	}
	file := filepath.Join(base, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	t.Run("TwoWay", func(t *testing.T) {
		ps, err := NewPathSet(left, right)
		if err != nil {
			t.Fatalf("NewPathSet() error = %v", err)
		}
		if ps.Len() != 2 || ps.IsThreeWay() || ps.Kind() != KindFolders {
			t.Errorf("unexpected PathSet: %+v", ps)
		}
		if ps.UniqueClass(1) != RightOnly {
			t.Errorf("UniqueClass(1) = %s, want right-only", ps.UniqueClass(1))
		}
	})

	t.Run("ThreeWay", func(t *testing.T) {
		ps, err := NewPathSet(left, middle, right)
		if err != nil {
			t.Fatalf("NewPathSet() error = %v", err)
		}
		if ps.Middle() != middle || ps.Right() != right {
			t.Errorf("Middle() = %s, Right() = %s", ps.Middle(), ps.Right())
		}
		if ps.UniqueClass(1) != MiddleOnly || ps.UniqueClass(2) != RightOnly {
			t.Error("unexpected unique classes for three-way set")
		}
	})

	t.Run("MixedKinds", func(t *testing.T) {
		if _, err := NewPathSet(left, file); err == nil {
			t.Error("NewPathSet() should reject folder vs file")
		}
	})

	t.Run("WrongCount", func(t *testing.T) {
		_, err := NewPathSet(left)
		if _, ok := err.(*ValidationError); !ok {
			t.Errorf("NewPathSet() error = %v, want ValidationError", err)
		}
	})

	t.Run("SameRootsInvalid", func(t *testing.T) {
		ps, err := NewPathSet(left, left)
		if err != nil {
			t.Fatalf("NewPathSet() error = %v", err)
		}
		if ps.Validate() == nil {
			t.Error("Validate() should reject identical roots")
		}
	})

	t.Run("NestedRootsInvalid", func(t *testing.T) {
		ps, err := NewPathSet(base, left)
		if err != nil {
			t.Fatalf("NewPathSet() error = %v", err)
		}
		if ps.Validate() == nil {
			t.Error("Validate() should reject nested roots")
		}
	})
}

func TestCompareOperationValidate(t *testing.T) {
	ps := NewPathSetUnchecked(KindFolders, "/l", "/r")

	t.Run("Valid", func(t *testing.T) {
		op := &CompareOperation{Paths: ps, Method: MethodContent}
		if err := op.Validate(); err != nil {
			t.Errorf("Validate() error = %v, want nil", err)
		}
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		op := &CompareOperation{Paths: ps, Method: "fuzzy"}
		err := op.Validate()
		ve, ok := err.(*ValidationError)
		if !ok || ve.Field != "Method" {
			t.Errorf("Validate() error = %v, want Method ValidationError", err)
		}
	})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "TestField", Message: "test message"}
	if err.Error() != "TestField: test message" {
		t.Errorf("Error() = %s", err.Error())
	}
}
