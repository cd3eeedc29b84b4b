package engine

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dircmp/pkg/compare"
	"github.com/sdejongh/dircmp/pkg/filter"
	"github.com/sdejongh/dircmp/pkg/models"
	"github.com/sdejongh/dircmp/pkg/storage"
)

// failingFs refuses to open selected paths, simulating unreadable directories
type failingFs struct {
	afero.Fs
	mu   sync.Mutex
	fail map[string]bool
}

func newFailingFs(base afero.Fs) *failingFs {
	return &failingFs{Fs: base, fail: make(map[string]bool)}
}

func (f *failingFs) Fail(name string) {
	f.mu.Lock()
	f.fail[filepath.Clean(name)] = true
	f.mu.Unlock()
}

func (f *failingFs) Open(name string) (afero.File, error) {
	f.mu.Lock()
	failed := f.fail[filepath.Clean(name)]
	f.mu.Unlock()
	if failed {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}

// writeFiles creates files (and their parent folders) on fsys
func writeFiles(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for p, content := range files {
		require.NoError(t, fsys.MkdirAll(path.Dir(p), 0755))
		require.NoError(t, afero.WriteFile(fsys, p, []byte(content), 0644))
	}
}

// newTestContext builds a folder context over roots on fsys
func newTestContext(t *testing.T, fsys afero.Fs, f filter.Filter, roots ...string) *CompareContext {
	t.Helper()
	backends := make([]storage.Backend, len(roots))
	for i, r := range roots {
		require.NoError(t, fsys.MkdirAll(r, 0755))
		b, err := storage.NewFromFs(fsys, r)
		require.NoError(t, err)
		backends[i] = b
	}
	cc, err := NewCompareContext(models.NewPathSetUnchecked(models.KindFolders, roots...), backends, make([]string, len(roots)), f)
	require.NoError(t, err)
	return cc
}

func newContentComparer(t *testing.T) compare.ContentComparer {
	t.Helper()
	c, err := compare.New(models.MethodContent, compare.Options{})
	require.NoError(t, err)
	return c
}

// runToCompletion starts a run and waits for it
func runToCompletion(t *testing.T, coord *Coordinator, cc *CompareContext, opts RunOptions) *RunHandle {
	t.Helper()
	h, err := coord.Run(context.Background(), cc, opts)
	require.NoError(t, err)
	require.NoError(t, h.Wait(context.Background()))
	require.Equal(t, Completed, h.State())
	return h
}

// flatten maps every item's relative path to its classification
func flatten(tree *models.ItemTree) map[string]models.Classification {
	out := make(map[string]models.Classification)
	tree.Walk(func(item *models.CompareItem) bool {
		out[item.RelativePath] = item.Classification()
		return true
	})
	return out
}

// gatedComparer blocks comparisons of one path until released
type gatedComparer struct {
	compare.ContentComparer
	gate    string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedComparer(inner compare.ContentComparer, gate string) *gatedComparer {
	return &gatedComparer{
		ContentComparer: inner,
		gate:            gate,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (g *gatedComparer) Compare(ctx context.Context, targets []compare.Target) *compare.Comparison {
	if targets[0].Path == g.gate {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.ContentComparer.Compare(ctx, targets)
}

// panicComparer panics for one path
type panicComparer struct {
	compare.ContentComparer
	path string
}

func (p *panicComparer) Compare(ctx context.Context, targets []compare.Target) *compare.Comparison {
	if targets[0].Path == p.path {
		panic("simulated comparer crash")
	}
	return p.ContentComparer.Compare(ctx, targets)
}

// abortingFilter aborts the context when it first sees a path
type abortingFilter struct {
	filter.All
	cc   *CompareContext
	path string
}

func (f *abortingFilter) ShouldInclude(p string, isFolder bool) bool {
	if p == f.path {
		f.cc.Abort()
	}
	return true
}

// countingSink records completion notices
type countingSink struct {
	ch chan string
}

func newCountingSink() *countingSink {
	return &countingSink{ch: make(chan string, 8)}
}

func (s *countingSink) NotifyCompareComplete(runID string) {
	s.ch <- runID
}
