package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dircmp/pkg/filter"
	"github.com/sdejongh/dircmp/pkg/models"
)

func basicTree(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{
		"/L/a.txt":     "same",
		"/R/a.txt":     "same",
		"/L/b.txt":     "left version",
		"/R/b.txt":     "right version",
		"/L/c.txt":     "only here",
		"/L/sub/d.txt": "deep",
		"/R/sub/d.txt": "deep",
	})
	return fsys
}

// TestCoordinatorModes tests that both execution modes produce the same results
func TestCoordinatorModes(t *testing.T) {
	want := map[string]models.Classification{
		"":          models.Different,
		"a.txt":     models.Equal,
		"b.txt":     models.Different,
		"c.txt":     models.LeftOnly,
		"sub":       models.Equal,
		"sub/d.txt": models.Equal,
	}

	for _, single := range []bool{true, false} {
		name := "Concurrent"
		if single {
			name = "SingleThreaded"
		}
		t.Run(name, func(t *testing.T) {
			cc := newTestContext(t, basicTree(t), nil, "/L", "/R")
			coord := NewCoordinator(newContentComparer(t), nil, nil, Options{SingleThreaded: single})

			h := runToCompletion(t, coord, cc, RunOptions{Recursive: true})

			assert.Equal(t, want, flatten(h.Tree()))
			assert.False(t, h.Aborted())
			assert.NotEmpty(t, h.ID())

			snap := h.Stats()
			assert.Equal(t, models.PhaseIdle, snap.Phase)
			assert.Equal(t, int64(3), snap.Compared)
			assert.Equal(t, int64(2), snap.Files[models.Equal])
			assert.Equal(t, int64(1), snap.Files[models.Different])
			assert.Equal(t, int64(1), snap.Files[models.LeftOnly])

			report := h.Report()
			require.NotNil(t, report)
			assert.Equal(t, models.StatusDifferent, report.Status)
			assert.Equal(t, 1, report.Status.ExitCode())
		})
	}
}

// TestCoordinatorCompleteness tests that a finished run leaves nothing unresolved
func TestCoordinatorCompleteness(t *testing.T) {
	fsys := basicTree(t)
	writeFiles(t, fsys, map[string]string{
		"/L/x/y/z/1.txt": "1",
		"/R/x/y/z/1.txt": "2",
		"/R/x/y/2.txt":   "2",
		"/L/bin.dat":     "\x00\x01\x02",
		"/R/bin.dat":     "\x00\x01\x02",
	})
	cc := newTestContext(t, fsys, nil, "/L", "/R")
	coord := NewCoordinator(newContentComparer(t), nil, nil, Options{})

	h := runToCompletion(t, coord, cc, RunOptions{Recursive: true})

	h.Tree().Walk(func(item *models.CompareItem) bool {
		assert.NotEqual(t, models.Unknown, item.Classification(), "item %q unresolved", item.RelativePath)
		return true
	})
	assert.Equal(t, models.BinarySame, h.Tree().Find("bin.dat").Classification())
	assert.Equal(t, models.Different, h.Tree().Find("x").Classification())
}

// TestCoordinatorIdempotent tests that repeating a run yields the same tree
func TestCoordinatorIdempotent(t *testing.T) {
	cc := newTestContext(t, basicTree(t), nil, "/L", "/R")
	coord := NewCoordinator(newContentComparer(t), nil, nil, Options{})

	first := flatten(runToCompletion(t, coord, cc, RunOptions{Recursive: true}).Tree())
	h := runToCompletion(t, coord, cc, RunOptions{Recursive: true})

	assert.Equal(t, first, flatten(h.Tree()))
	assert.Equal(t, int64(3), h.Stats().Compared, "stats reset between runs")
}

// TestCoordinatorErrors tests error isolation
func TestCoordinatorErrors(t *testing.T) {
	t.Run("TypeMismatchPropagates", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFiles(t, fsys, map[string]string{
			"/L/x/inner.txt": "folder",
			"/R/x":           "file",
			"/L/ok.txt":      "ok",
			"/R/ok.txt":      "ok",
		})
		cc := newTestContext(t, fsys, nil, "/L", "/R")
		coord := NewCoordinator(newContentComparer(t), nil, nil, Options{})

		h := runToCompletion(t, coord, cc, RunOptions{Recursive: true})

		got := flatten(h.Tree())
		assert.Equal(t, models.CompareError, got["x"])
		assert.Equal(t, models.Equal, got["ok.txt"])
		assert.Equal(t, models.CompareError, got[""])
		assert.Equal(t, models.StatusErrors, h.Report().Status)
	})

	t.Run("UnreadableFolder", func(t *testing.T) {
		fsys := newFailingFs(basicTree(t))
		fsys.Fail("/R/sub")
		cc := newTestContext(t, fsys, nil, "/L", "/R")
		coord := NewCoordinator(newContentComparer(t), nil, nil, Options{})

		h := runToCompletion(t, coord, cc, RunOptions{Recursive: true})

		got := flatten(h.Tree())
		assert.Equal(t, models.CompareError, got["sub"])
		assert.Equal(t, models.Equal, got["a.txt"])
		assert.Equal(t, models.Different, got["b.txt"])
		assert.Equal(t, models.CompareError, got[""])

		assert.Contains(t, h.Tree().Find("sub").Outcome().Reason, "right: cannot read sub")
	})

	t.Run("ComparerPanic", func(t *testing.T) {
		cc := newTestContext(t, basicTree(t), nil, "/L", "/R")
		comparer := &panicComparer{ContentComparer: newContentComparer(t), path: "b.txt"}
		coord := NewCoordinator(comparer, nil, nil, Options{})

		h := runToCompletion(t, coord, cc, RunOptions{Recursive: true})

		b := h.Tree().Find("b.txt")
		assert.Equal(t, models.CompareError, b.Classification())
		assert.Contains(t, b.Outcome().Reason, "comparer panic")
		assert.Equal(t, models.Equal, h.Tree().Find("sub/d.txt").Classification())
	})
}

// TestCoordinatorOnlySelected tests scope-restricted re-compares
func TestCoordinatorOnlySelected(t *testing.T) {
	for _, single := range []bool{true, false} {
		name := "Concurrent"
		if single {
			name = "SingleThreaded"
		}
		t.Run(name, func(t *testing.T) {
			fsys := basicTree(t)
			cc := newTestContext(t, fsys, nil, "/L", "/R")
			coord := NewCoordinator(newContentComparer(t), nil, nil, Options{SingleThreaded: single})

			h := runToCompletion(t, coord, cc, RunOptions{Recursive: true})
			a := h.Tree().Find("a.txt")
			c := h.Tree().Find("c.txt")
			sub := h.Tree().Find("sub")

			writeFiles(t, fsys, map[string]string{
				"/R/b.txt":     "left version",
				"/R/a.txt":     "changed but not selected",
				"/R/sub/d.txt": "changed and selected",
			})
			h.Tree().Find("b.txt").Select(true)
			sub.Select(true)

			h = runToCompletion(t, coord, cc, RunOptions{Recursive: true, OnlySelected: true})

			tree := h.Tree()
			assert.Same(t, a, tree.Find("a.txt"))
			assert.Same(t, c, tree.Find("c.txt"))
			assert.Equal(t, models.Equal, tree.Find("a.txt").Classification())
			assert.Equal(t, models.Equal, tree.Find("b.txt").Classification())
			assert.False(t, tree.Find("b.txt").Selected())
			assert.NotSame(t, sub, tree.Find("sub"))
			assert.Equal(t, models.Different, tree.Find("sub").Classification())
			assert.Equal(t, models.Different, tree.Find("sub/d.txt").Classification())
			assert.Equal(t, models.Different, tree.Root().Classification())
			assert.Equal(t, int64(2), h.Stats().Compared)
		})
	}
}

// TestCoordinatorAbort tests cooperative cancellation
func TestCoordinatorAbort(t *testing.T) {
	t.Run("DuringCollection", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFiles(t, fsys, map[string]string{
			"/L/d1/x.txt": "1",
			"/R/d1/x.txt": "1",
			"/L/d2/x.txt": "2",
			"/R/d2/x.txt": "2",
			"/L/d3/x.txt": "3",
			"/R/d3/x.txt": "3",
		})
		cc := newTestContext(t, fsys, nil, "/L", "/R")
		cc.Filter = &abortingFilter{cc: cc, path: "d1/x.txt"}
		coord := NewCoordinator(newContentComparer(t), nil, nil, Options{SingleThreaded: true})

		h := runToCompletion(t, coord, cc, RunOptions{Recursive: true})

		assert.True(t, h.Aborted())
		tree := h.Tree()
		require.NotNil(t, tree.Find("d1/x.txt"))
		assert.Nil(t, tree.Find("d2/x.txt"))
		for _, name := range []string{"d2", "d3"} {
			folder := tree.Find(name)
			require.NotNil(t, folder)
			assert.False(t, folder.Collected())
			assert.Equal(t, models.Unknown, folder.Classification())
		}
		assert.Equal(t, models.Unknown, tree.Root().Classification())

		report := h.Report()
		assert.Equal(t, models.StatusAborted, report.Status)
		assert.Equal(t, 3, report.Status.ExitCode())
	})

	t.Run("DuringComparison", func(t *testing.T) {
		cc := newTestContext(t, basicTree(t), nil, "/L", "/R")
		gate := newGatedComparer(newContentComparer(t), "a.txt")
		coord := NewCoordinator(gate, nil, nil, Options{})

		h, err := coord.Run(context.Background(), cc, RunOptions{Recursive: true})
		require.NoError(t, err)

		<-gate.entered
		h.Abort()
		close(gate.release)
		require.NoError(t, h.Wait(context.Background()))

		assert.True(t, h.Aborted())
		assert.Equal(t, models.Unknown, h.Tree().Find("b.txt").Classification())
		assert.Equal(t, models.LeftOnly, h.Tree().Find("c.txt").Classification())
		assert.Equal(t, models.StatusAborted, h.Report().Status)
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		cc := newTestContext(t, basicTree(t), nil, "/L", "/R")
		coord := NewCoordinator(newContentComparer(t), nil, nil, Options{SingleThreaded: true})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		h, err := coord.Run(ctx, cc, RunOptions{Recursive: true})
		require.NoError(t, err)
		assert.True(t, h.Aborted())
	})

	t.Run("DuringSelectedRecompare", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFiles(t, fsys, map[string]string{
			"/L/sub/a.txt": "a",
			"/R/sub/a.txt": "a",
			"/L/sub/b.txt": "b",
			"/R/sub/b.txt": "b",
		})
		cc := newTestContext(t, fsys, nil, "/L", "/R")
		first := NewCoordinator(newContentComparer(t), nil, nil, Options{SingleThreaded: true})
		h := runToCompletion(t, first, cc, RunOptions{Recursive: true})
		before := flatten(h.Tree())
		sub := h.Tree().Find("sub")
		sub.Select(true)

		gate := newGatedComparer(newContentComparer(t), "sub/a.txt")
		coord := NewCoordinator(gate, nil, nil, Options{})
		h, err := coord.Run(context.Background(), cc, RunOptions{Recursive: true, OnlySelected: true})
		require.NoError(t, err)

		<-gate.entered
		h.Abort()
		close(gate.release)
		require.NoError(t, h.Wait(context.Background()))

		assert.True(t, h.Aborted())
		assert.Same(t, sub, h.Tree().Find("sub"))
		assert.Equal(t, before, flatten(h.Tree()))
		assert.Equal(t, models.Equal, h.Tree().Find("sub/b.txt").Classification())
	})

	t.Run("NextRunClearsAbort", func(t *testing.T) {
		cc := newTestContext(t, basicTree(t), nil, "/L", "/R")
		coord := NewCoordinator(newContentComparer(t), nil, nil, Options{SingleThreaded: true})
		cc.Abort()

		h := runToCompletion(t, coord, cc, RunOptions{Recursive: true})
		assert.False(t, h.Aborted())

		h.Abort()
		assert.False(t, cc.Aborting(), "abort on a completed run has no effect")
	})
}

// TestCoordinatorMisuse tests the single active run per context rule
func TestCoordinatorMisuse(t *testing.T) {
	cc := newTestContext(t, basicTree(t), nil, "/L", "/R")
	gate := newGatedComparer(newContentComparer(t), "a.txt")
	coord := NewCoordinator(gate, nil, nil, Options{})

	h, err := coord.Run(context.Background(), cc, RunOptions{Recursive: true})
	require.NoError(t, err)
	<-gate.entered

	assert.Equal(t, Running, h.State())
	assert.Equal(t, Running, cc.State())
	assert.Nil(t, h.Report())
	assert.Eventually(t, func() bool {
		return h.Stats().Phase == models.PhaseComparing
	}, time.Second, 5*time.Millisecond)

	_, err = coord.Run(context.Background(), cc, RunOptions{Recursive: true})
	var misuse *MisuseError
	require.ErrorAs(t, err, &misuse)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(gate.release)
	require.NoError(t, h.Wait(context.Background()))
	assert.Equal(t, Completed, cc.State())

	h, err = coord.Run(context.Background(), cc, RunOptions{Recursive: true})
	require.NoError(t, err, "context is reusable after completion")
	require.NoError(t, h.Wait(context.Background()))
}

// TestCoordinatorNotification tests the completion notice
func TestCoordinatorNotification(t *testing.T) {
	for _, single := range []bool{true, false} {
		cc := newTestContext(t, basicTree(t), nil, "/L", "/R")
		sink := newCountingSink()
		coord := NewCoordinator(newContentComparer(t), nil, sink, Options{SingleThreaded: single})

		h, err := coord.Run(context.Background(), cc, RunOptions{Recursive: true, ID: "run-42"})
		require.NoError(t, err)
		require.NoError(t, h.Wait(context.Background()))

		select {
		case id := <-sink.ch:
			assert.Equal(t, "run-42", id)
		case <-time.After(time.Second):
			t.Fatal("no completion notice")
		}
		select {
		case id := <-sink.ch:
			t.Fatalf("unexpected second notice %q", id)
		case <-time.After(30 * time.Millisecond):
		}
	}
}

// TestStartCompare tests comparing real directories
func TestStartCompare(t *testing.T) {
	left, right := t.TempDir(), t.TempDir()
	for _, dir := range []string{left, right} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "same.txt"), []byte("hello\n"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(right, "extra.txt"), []byte("x"), 0644))

	paths, err := models.NewPathSet(left, right)
	require.NoError(t, err)

	notified := make(chan string, 1)
	coord := NewCoordinator(newContentComparer(t), nil, NotifyFunc(func(id string) { notified <- id }), Options{})
	h, err := coord.StartCompare(context.Background(), paths, nil, true, false)
	require.NoError(t, err)
	require.NoError(t, h.Wait(context.Background()))
	defer h.Context().Close()

	got := flatten(h.Tree())
	assert.Equal(t, models.Equal, got["same.txt"])
	assert.Equal(t, models.RightOnly, got["extra.txt"])
	assert.Equal(t, models.Different, got[""])

	select {
	case id := <-notified:
		assert.Equal(t, h.ID(), id)
	case <-time.After(time.Second):
		t.Fatal("no completion notice")
	}
}

// TestStartCompareWithFilter tests that the filter reaches the collector
func TestStartCompareWithFilter(t *testing.T) {
	left, right := t.TempDir(), t.TempDir()
	for _, dir := range []string{left, right} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "same.txt"), []byte("hello\n"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(right, "extra.tmp"), []byte("x"), 0644))

	paths, err := models.NewPathSet(left, right)
	require.NoError(t, err)

	coord := NewCoordinator(newContentComparer(t), nil, nil, Options{})
	h, err := coord.StartCompare(context.Background(), paths, filter.NewGlob([]string{"*.tmp"}, nil), true, false)
	require.NoError(t, err)
	require.NoError(t, h.Wait(context.Background()))
	defer h.Context().Close()

	got := flatten(h.Tree())
	assert.NotContains(t, got, "extra.tmp")
	assert.Equal(t, models.Equal, got[""])
	assert.Equal(t, models.StatusIdentical, h.Report().Status)
}
