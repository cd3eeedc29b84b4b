package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/cases"

	"github.com/sdejongh/dircmp/internal/platform"
	"github.com/sdejongh/dircmp/pkg/filter"
	"github.com/sdejongh/dircmp/pkg/logging"
	"github.com/sdejongh/dircmp/pkg/models"
	"github.com/sdejongh/dircmp/pkg/storage"
)

// CollectOptions controls one tree walk
type CollectOptions struct {
	// StartSubdir is the relative path the walk starts from, empty for the roots
	StartSubdir string
	// Depth limits recursion: -1 unlimited, 0 the start directory only
	Depth         int
	CaseSensitive bool
	Filter        filter.Filter
	ShouldAbort   AbortGate
	// ExpandUnique lists the contents of folders missing on some sides
	ExpandUnique bool
}

// collectOptions derives walk options from the context
func collectOptions(cc *CompareContext, abort AbortGate) CollectOptions {
	depth := -1
	if !cc.Recursive() {
		depth = 0
	}
	return CollectOptions{
		Depth:         depth,
		CaseSensitive: cc.CaseSensitive,
		Filter:        cc.Filter,
		ShouldAbort:   abort,
		ExpandUnique:  cc.ExpandUnique,
	}
}

// TreeCollector walks all sides in lockstep and builds aligned items
type TreeCollector struct {
	logger logging.Logger
}

// NewTreeCollector creates a collector
func NewTreeCollector(logger logging.Logger) *TreeCollector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &TreeCollector{logger: logger.WithFields(logging.Fields{"component": "collector"})}
}

// CollectRoot builds the root item from the roots of every side, installs
// it as the tree root and walks below it. File roots produce a single queued
// file item.
func (tc *TreeCollector) CollectRoot(ctx context.Context, cc *CompareContext, opts CollectOptions, list *ItemList) *models.CompareItem {
	n := cc.Paths.Len()
	sides := make([]models.SideInfo, n)
	var statErr error
	for i := 0; i < n; i++ {
		side, err := statSide(ctx, cc.Backends[i], cc.RootPaths[i])
		if err != nil && statErr == nil {
			statErr = &FilesystemError{Side: cc.sideName(i), Path: cc.RootPaths[i], Err: err}
		}
		sides[i] = side
	}

	isFolder := cc.Paths.Kind() != models.KindFiles
	name := ""
	if !isFolder {
		name = cc.RootPaths[models.SideLeft]
	}
	root := models.NewCompareItem(opts.StartSubdir, name, isFolder, sides)
	cc.Tree.Reset(root)
	cc.Stats.AddCollected()

	switch {
	case statErr != nil:
		tc.resolve(cc, root, models.Outcome{Classification: models.CompareError, Reason: statErr.Error()})
		tc.logger.Warn(ctx, "Cannot access compare root", logging.Fields{"error": statErr.Error()})
	case !isFolder:
		tc.enqueue(cc, root, list)
	default:
		tc.Collect(ctx, cc, root, opts, list)
	}
	return root
}

// Collect lists parent on every side where it exists, publishes the
// aligned children and recurses into matched folders. Directory read
// errors mark parent as CompareError and the walk carries on elsewhere.
func (tc *TreeCollector) Collect(ctx context.Context, cc *CompareContext, parent *models.CompareItem, opts CollectOptions, list *ItemList) {
	if opts.ShouldAbort != nil && opts.ShouldAbort() {
		return
	}
	if opts.Filter == nil {
		opts.Filter = filter.All{}
	}

	n := len(parent.Sides)
	listings := make([]map[string]storage.FileInfo, n)
	keys := mapset.NewThreadUnsafeSet[string]()
	fold := cases.Fold()

	for s := 0; s < n; s++ {
		if !parent.Sides[s].Exists {
			continue
		}
		entries, err := cc.Backends[s].ReadDir(ctx, parent.Sides[s].Path)
		if err != nil {
			fsErr := &FilesystemError{Side: cc.sideName(s), Path: parent.Sides[s].Path, Err: err}
			tc.logger.Warn(ctx, "Failed to read directory", logging.Fields{
				"side":  fsErr.Side,
				"path":  parent.RelativePath,
				"error": err.Error(),
			})
			tc.fail(cc, parent, fsErr.Error())
			return
		}

		listings[s] = make(map[string]storage.FileInfo, len(entries))
		for _, e := range entries {
			key := e.Name
			if !opts.CaseSensitive {
				key = fold.String(e.Name)
			}
			// Names colliding under case folding keep the first entry
			if _, dup := listings[s][key]; dup {
				continue
			}
			listings[s][key] = e
			keys.Add(key)
		}
	}

	sorted := keys.ToSlice()
	sort.Strings(sorted)

	children := make([]*models.CompareItem, 0, len(sorted))
	var pending, descend []*models.CompareItem
	for _, key := range sorted {
		item, action := tc.buildItem(cc, parent, key, listings, opts)
		if item == nil {
			continue
		}
		children = append(children, item)
		switch action {
		case actionQueue:
			pending = append(pending, item)
		case actionDescend:
			descend = append(descend, item)
		}
	}

	parent.SetChildren(children)

	for _, item := range pending {
		tc.enqueue(cc, item, list)
	}

	childOpts := opts
	if opts.Depth > 0 {
		childOpts.Depth = opts.Depth - 1
	}
	for _, folder := range descend {
		if opts.ShouldAbort != nil && opts.ShouldAbort() {
			tc.logger.Debug(ctx, "Collection aborted", logging.Fields{"path": parent.RelativePath})
			return
		}
		tc.Collect(ctx, cc, folder, childOpts, list)
	}
}

type itemAction int

const (
	actionNone itemAction = iota
	actionQueue
	actionDescend
)

// buildItem aligns the entries named key across all sides and classifies
// what can be decided without reading content
func (tc *TreeCollector) buildItem(cc *CompareContext, parent *models.CompareItem, key string, listings []map[string]storage.FileInfo, opts CollectOptions) (*models.CompareItem, itemAction) {
	n := len(parent.Sides)
	sides := make([]models.SideInfo, n)
	first := -1
	for s := 0; s < n; s++ {
		e, ok := listings[s][key]
		if !ok {
			continue
		}
		if first < 0 {
			first = s
		}
		sides[s] = models.SideInfo{
			Exists:  true,
			Path:    e.RelativePath,
			Size:    e.Size,
			ModTime: e.ModTime,
			Mode:    e.Mode,
			IsDir:   e.IsDir,
		}
	}

	name := listings[first][key].Name
	for s := 0; s < n; s++ {
		if !sides[s].Exists {
			sides[s].Path = platform.JoinRel(parent.Sides[s].Path, name)
		}
	}

	rel := platform.JoinRel(parent.RelativePath, name)
	isFolder := sides[first].IsDir
	if !opts.Filter.ShouldInclude(rel, isFolder) {
		return nil, actionNone
	}

	item := models.NewCompareItem(rel, name, isFolder, sides)
	cc.Stats.AddCollected()

	o, action := classify(cc, item, opts)
	if o.Classification != models.Unknown {
		tc.resolve(cc, item, o)
	}
	return item, action
}

// classify decides the collect-time outcome of an item and what to do next
func classify(cc *CompareContext, item *models.CompareItem, opts CollectOptions) (models.Outcome, itemAction) {
	present := item.PresentSides()
	n := len(item.Sides)
	canDescend := item.IsFolder && opts.Depth != 0

	if present < n {
		action := actionNone
		if canDescend && opts.ExpandUnique {
			action = actionDescend
		}
		if present == 1 {
			for s := range item.Sides {
				if item.Sides[s].Exists {
					return models.Outcome{
						Classification: cc.Paths.UniqueClass(s),
						Reason:         fmt.Sprintf("only in %s", cc.sideName(s)),
					}, action
				}
			}
		}
		return models.Outcome{Classification: models.Different, Reason: "missing on " + missingSides(cc, item)}, action
	}

	for s := 1; s < n; s++ {
		if item.Sides[s].IsDir != item.Sides[0].IsDir {
			return models.Outcome{
				Classification: models.CompareError,
				Reason:         fmt.Sprintf("type mismatch: %s is a %s, %s is a %s", cc.sideName(0), kindName(item.Sides[0].IsDir), cc.sideName(s), kindName(item.Sides[s].IsDir)),
			}, actionNone
		}
	}

	if filter.ShouldSkip(opts.Filter, item.RelativePath, item.IsFolder) {
		return models.Outcome{Classification: models.Skipped, Reason: "skipped by filter"}, actionNone
	}

	if !item.IsFolder {
		return models.Outcome{}, actionQueue
	}
	if !canDescend || !opts.Filter.ShouldRecurse(item.RelativePath) {
		return models.Outcome{Classification: models.Skipped, Reason: "folder not descended"}, actionNone
	}
	return models.Outcome{}, actionDescend
}

// Refresh rebuilds an item from a fresh stat of every side. Folders are
// walked again with opts and their files appended to list. The old item is
// left untouched.
func (tc *TreeCollector) Refresh(ctx context.Context, cc *CompareContext, old *models.CompareItem, opts CollectOptions, list *ItemList) *models.CompareItem {
	n := len(old.Sides)
	sides := make([]models.SideInfo, n)
	var statErr error
	for s := 0; s < n; s++ {
		side, err := statSide(ctx, cc.Backends[s], old.Sides[s].Path)
		if err != nil && statErr == nil {
			statErr = &FilesystemError{Side: cc.sideName(s), Path: old.Sides[s].Path, Err: err}
		}
		sides[s] = side
	}

	isFolder := old.IsFolder
	for _, side := range sides {
		if side.Exists {
			isFolder = side.IsDir
			break
		}
	}

	item := models.NewCompareItem(old.RelativePath, old.Name, isFolder, sides)
	cc.Stats.AddCollected()

	if statErr != nil {
		tc.resolve(cc, item, models.Outcome{Classification: models.CompareError, Reason: statErr.Error()})
		return item
	}
	if item.PresentSides() == 0 {
		tc.resolve(cc, item, models.Outcome{Classification: models.CompareError, Reason: "no longer exists on any side"})
		return item
	}

	o, action := classify(cc, item, opts)
	if o.Classification != models.Unknown {
		tc.resolve(cc, item, o)
	}
	switch action {
	case actionQueue:
		tc.enqueue(cc, item, list)
	case actionDescend:
		childOpts := opts
		if opts.Depth > 0 {
			childOpts.Depth = opts.Depth - 1
		}
		tc.Collect(ctx, cc, item, childOpts, list)
	}
	return item
}

func (tc *TreeCollector) resolve(cc *CompareContext, item *models.CompareItem, o models.Outcome) {
	if item.Resolve(o) {
		cc.Stats.AddElement(o.Classification, item.IsFolder)
	}
}

// fail turns item into a CompareError, including folders already
// classified as unique before they were expanded
func (tc *TreeCollector) fail(cc *CompareContext, item *models.CompareItem, reason string) {
	prev, ok := item.Fail(models.Outcome{Reason: reason})
	if !ok {
		return
	}
	if prev == models.Unknown {
		cc.Stats.AddElement(models.CompareError, item.IsFolder)
		return
	}
	cc.Stats.Reclassify(prev, models.CompareError, item.IsFolder)
}

func (tc *TreeCollector) enqueue(cc *CompareContext, item *models.CompareItem, list *ItemList) {
	if list.Append(item) {
		cc.Stats.AddQueued()
	}
}

// statSide reads the metadata of path on one side. A missing entry is not
// an error; it yields a SideInfo with Exists false.
func statSide(ctx context.Context, backend storage.Backend, path string) (models.SideInfo, error) {
	info, err := backend.Stat(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.SideInfo{Path: path}, nil
		}
		return models.SideInfo{Path: path}, err
	}
	return models.SideInfo{
		Exists:  true,
		Path:    path,
		Size:    info.Size,
		ModTime: info.ModTime,
		Mode:    info.Mode,
		IsDir:   info.IsDir,
	}, nil
}

func missingSides(cc *CompareContext, item *models.CompareItem) string {
	out := ""
	for s, side := range item.Sides {
		if side.Exists {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += cc.sideName(s)
	}
	return out
}

func kindName(isDir bool) string {
	if isDir {
		return "folder"
	}
	return "file"
}
