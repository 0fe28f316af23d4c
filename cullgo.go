package cullgo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/cullgo/cullgo/cache"
	"github.com/cullgo/cullgo/camera"
	"github.com/cullgo/cullgo/geom"
	"github.com/cullgo/cullgo/lod"
	"github.com/cullgo/cullgo/quadtree"
	"github.com/cullgo/cullgo/queue"
	"github.com/cullgo/cullgo/scheduler"
)

// ItemID is the stable identity of an item. Replacing the item set with
// SubmitItems keeps cached artifacts for IDs that reappear, so an ID must
// only be reused for an item whose content is unchanged.
type ItemID uint64

// BuildFunc produces the render artifact for one item. It may be expensive;
// the scheduler bounds how many run per tick. Failures are logged and the
// item is skipped for the batch, never fatal.
type BuildFunc[A any] func(ctx context.Context) (A, error)

// Item is a positioned visual item. Immutable once submitted.
type Item[A any] struct {
	ID          ItemID
	Bounds      geom.Rect // world space
	Clusterable bool
	Build       BuildFunc[A]
}

// RenderItem is one entry of the emitted render list.
type RenderItem[A any] struct {
	Item       Item[A]
	Artifact   A
	ScreenRect geom.Rect
}

// Frame is the result of one engine tick.
type Frame[A any] struct {
	// Items is the render list: every visible item whose artifact is built,
	// in build-target order (nearest the viewport center first).
	Items []RenderItem[A]
	// VisibleCount is the size of the post-reduction visible set.
	VisibleCount int
	// TotalCount is the number of items in the spatial index.
	TotalCount int
	// CacheHitRatio is the result cache's lifetime hit ratio.
	CacheHitRatio float64
	// BatchDuration is the wall-clock time of this tick's build batch.
	BatchDuration time.Duration
	// Building reports whether unbuilt visible items remain.
	Building bool
	// Changed reports whether this tick altered observable state (camera
	// movement, a retarget, or newly built artifacts). Callers can skip
	// repainting when it is false.
	Changed bool
}

// errNilBuild is reported for items submitted without a build operation.
var errNilBuild = errors.New("item has no build operation")

// Engine composes the camera, the spatial index, the level-of-detail
// reducer, the build scheduler and the result cache. It is single-threaded:
// all methods must be called from the tick-driving goroutine.
type Engine[A any] struct {
	opts    options
	logger  *Logger
	metrics MetricsCollector

	cam      *camera.Camera
	viewport geom.Size

	items      map[ItemID]Item[A]
	order      []Item[A] // submission order, for deterministic index rebuilds
	index      *quadtree.Tree
	indexDirty bool

	artifacts *cache.LRU[ItemID, A]
	release   func(ItemID, A)
	sched     *scheduler.Scheduler[A]
	pq        *queue.Queue

	dirty     bool // visible set must be recomputed
	target    []Item[A]
	lastTick  time.Time
	hasTicked bool
}

// cacheStore adapts the result cache to the scheduler's store interface.
type cacheStore[A any] struct {
	c *cache.LRU[ItemID, A]
}

func (s cacheStore[A]) Put(key uint64, artifact A) { s.c.Put(ItemID(key), artifact) }
func (s cacheStore[A]) Contains(key uint64) bool   { return s.c.Contains(ItemID(key)) }

// New creates an engine for artifacts of type A. Configuration errors fail
// fast here; nothing after construction is fatal.
func New[A any](optFns ...Option) (*Engine[A], error) {
	o := applyOptions(optFns)

	cam, err := camera.New(o.minZoom, o.maxZoom)
	if err != nil {
		return nil, &ErrInvalidZoomBounds{Min: o.minZoom, Max: o.maxZoom, cause: err}
	}

	e := &Engine[A]{
		opts:    o,
		logger:  o.logger,
		metrics: o.metrics,
		cam:     cam,
		items:   make(map[ItemID]Item[A]),
		pq:      queue.New(64),
	}

	e.artifacts, err = cache.New[ItemID, A](o.cacheCapacity, func(id ItemID, a A) {
		if e.release != nil {
			e.release(id, a)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCacheCapacity, err)
	}

	e.sched, err = scheduler.New[A](cacheStore[A]{c: e.artifacts}, scheduler.Config{
		MaxBuildsPerTick: o.maxBuildsPerTick,
		TickBudget:       o.tickBudget,
		Limiter:          o.limiter,
		Logger:           o.logger.Logger,
		Now:              o.now,
	})
	if err != nil {
		return nil, &ErrInvalidBudget{
			MaxBuildsPerTick: o.maxBuildsPerTick,
			TickBudget:       o.tickBudget.String(),
			cause:            err,
		}
	}

	return e, nil
}

// OnEvict registers a release hook invoked for every artifact removed from
// the result cache by eviction or invalidation. Use it to free resources
// the artifacts own (textures, file handles).
func (e *Engine[A]) OnEvict(fn func(ItemID, A)) {
	e.release = fn
}

// SubmitItems replaces the engine's dataset. The spatial index is marked
// dirty and rebuilt lazily on the next tick, not eagerly. Cached artifacts
// for IDs present in the new set remain valid because items are immutable
// per ID.
func (e *Engine[A]) SubmitItems(items []Item[A]) {
	e.items = make(map[ItemID]Item[A], len(items))
	e.order = make([]Item[A], 0, len(items))
	for _, it := range items {
		if _, dup := e.items[it.ID]; dup {
			e.logger.Warn("duplicate item id ignored", "id", uint64(it.ID))
			continue
		}
		e.items[it.ID] = it
		e.order = append(e.order, it)
	}
	e.indexDirty = true
	e.dirty = true
}

// SetViewport sets the viewport pixel size the render/UI layer reports.
func (e *Engine[A]) SetViewport(size geom.Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidViewport, size.Width, size.Height)
	}
	if size != e.viewport {
		e.viewport = size
		e.dirty = true
	}
	return nil
}

// Origin returns the camera's world-space origin (viewport top-left).
func (e *Engine[A]) Origin() geom.Point { return e.cam.Origin() }

// Zoom returns the camera's zoom factor.
func (e *Engine[A]) Zoom() float64 { return e.cam.Zoom() }

// SetCamera moves the camera to an absolute origin and zoom (clamped). A
// zoom change invalidates all cached artifacts, which are scale-specific.
// It reports whether anything changed.
func (e *Engine[A]) SetCamera(origin geom.Point, zoom float64) bool {
	moved, zoomed := e.cam.SetPose(origin, zoom)
	if zoomed {
		e.invalidateScale()
	}
	if moved || zoomed {
		e.dirty = true
	}
	return moved || zoomed
}

// Pan translates the camera by a world-space delta. Cached artifacts stay
// valid; only the visible set is recomputed.
func (e *Engine[A]) Pan(delta geom.Point) bool {
	if !e.cam.Pan(delta) {
		return false
	}
	e.dirty = true
	return true
}

// ZoomAt multiplies the zoom by factor, keeping the world point under the
// focal screen point fixed. A zoom saturated at its bound changes nothing
// and triggers no invalidation.
func (e *Engine[A]) ZoomAt(factor float64, focal geom.Point) bool {
	if !e.cam.ZoomBy(factor, focal) {
		return false
	}
	e.invalidateScale()
	e.dirty = true
	return true
}

// ScrollTo animates the camera origin to target over the given duration.
// The tween advances on each Tick.
func (e *Engine[A]) ScrollTo(target geom.Point, duration time.Duration, easeFn ease.TweenFunc) {
	e.cam.ScrollTo(target, duration, easeFn)
}

// ZoomTo animates the zoom factor to target over the given duration.
func (e *Engine[A]) ZoomTo(zoom float64, duration time.Duration, easeFn ease.TweenFunc) {
	e.cam.ZoomTo(zoom, duration, easeFn)
}

// Animating reports whether a camera tween is in progress.
func (e *Engine[A]) Animating() bool { return e.cam.Animating() }

// Tick runs one cooperative engine step: advance camera tweens, lazily
// rebuild the index if the dataset changed, recompute the visible set if
// the camera moved, run one budgeted build batch, and emit the render list
// with metrics. Ticks where nothing changed are cheap no-ops.
func (e *Engine[A]) Tick(ctx context.Context) Frame[A] {
	start := e.opts.now()

	var dt time.Duration
	if e.hasTicked {
		dt = start.Sub(e.lastTick)
	}
	e.lastTick = start
	e.hasTicked = true

	changed := false
	if moved, zoomed := e.cam.Animate(dt); moved || zoomed {
		if zoomed {
			e.invalidateScale()
		}
		e.dirty = true
	}

	if e.indexDirty {
		e.rebuildIndex()
		e.dirty = true
	}

	if e.dirty {
		e.retarget()
		e.dirty = false
		changed = true
	}

	batch := scheduler.Batch{Total: e.sched.TargetLen(), Done: true}
	if e.sched.State() == scheduler.StateBuilding {
		batch = e.sched.RunBatch(ctx)
		e.logger.LogBatch(batch.Built, batch.Failed, batch.Total, batch.Duration)
		e.metrics.RecordBatch(batch.Built, batch.Failed, batch.Duration)
		if batch.Built > 0 {
			changed = true
		}
	}

	frame := e.assembleFrame(batch)
	frame.Changed = changed

	elapsed := e.opts.now().Sub(start)
	e.metrics.RecordTick(frame.VisibleCount, batch.Built, elapsed)
	e.logger.LogTick(frame.VisibleCount, frame.TotalCount, frame.CacheHitRatio, elapsed)
	return frame
}

// invalidateScale clears everything rendered at the previous zoom level.
func (e *Engine[A]) invalidateScale() {
	e.artifacts.Clear()
	e.sched.Invalidate()
}

// rebuildIndex recovers from dataset staleness: root bounds are the union
// of all item rectangles inflated by a margin so items added near the edge
// of the world later still fit.
func (e *Engine[A]) rebuildIndex() {
	start := e.opts.now()

	var bounds geom.Rect
	for _, it := range e.order {
		bounds = bounds.Union(it.Bounds)
	}
	margin := max(bounds.Width, bounds.Height) * 0.1
	if margin <= 0 {
		margin = 1
	}

	tree := quadtree.New(bounds.Inflate(margin), e.opts.quadtree)
	dropped := 0
	for _, it := range e.order {
		if !tree.Insert(quadtree.Entry{ID: uint64(it.ID), Bounds: it.Bounds}) {
			dropped++
		}
	}

	e.index = tree
	e.indexDirty = false

	elapsed := e.opts.now().Sub(start)
	e.logger.LogRebuild(tree.Len(), dropped, elapsed)
	e.metrics.RecordRebuild(tree.Len(), dropped, elapsed)
}

// retarget recomputes the visible set and hands the scheduler a new target:
// cull against the quadtree, reduce dense clusters, then order the result
// center-out so the items the user is looking at build first.
func (e *Engine[A]) retarget() {
	if e.viewport == (geom.Size{}) || e.index == nil {
		e.target = nil
		e.sched.SetTarget(nil)
		return
	}

	visible := e.cam.VisibleWorldRect(e.viewport)

	start := e.opts.now()
	entries := e.index.Query(visible)
	e.metrics.RecordQuery(len(entries), e.opts.now().Sub(start))

	candidates := make([]Item[A], 0, len(entries))
	for _, en := range entries {
		if it, ok := e.items[ItemID(en.ID)]; ok {
			candidates = append(candidates, it)
		}
	}

	candidates = lod.Reduce(candidates, e.cam.Zoom(), e.opts.lod,
		func(it Item[A]) geom.Point { return it.Bounds.Center() },
		func(it Item[A]) bool { return it.Clusterable },
	)

	center := visible.Center()
	e.pq.Reset()
	byID := make(map[ItemID]Item[A], len(candidates))
	for _, it := range candidates {
		byID[it.ID] = it
		e.pq.Push(queue.Item{ID: uint64(it.ID), Priority: it.Bounds.Center().Dist(center)})
	}

	ordered := make([]Item[A], 0, len(candidates))
	jobs := make([]scheduler.Job[A], 0, len(candidates))
	for e.pq.Len() > 0 {
		qi, _ := e.pq.Pop()
		it := byID[ItemID(qi.ID)]
		ordered = append(ordered, it)
		jobs = append(jobs, scheduler.Job[A]{ID: qi.ID, Build: e.buildFunc(it)})
	}

	e.target = ordered
	e.sched.SetTarget(jobs)
}

func (e *Engine[A]) buildFunc(it Item[A]) func(context.Context) (A, error) {
	return func(ctx context.Context) (A, error) {
		if it.Build == nil {
			var zero A
			return zero, errNilBuild
		}
		return it.Build(ctx)
	}
}

// assembleFrame reads built artifacts back out of the cache in target order
// and projects their rectangles into screen space.
func (e *Engine[A]) assembleFrame(batch scheduler.Batch) Frame[A] {
	items := make([]RenderItem[A], 0, len(e.target))
	for _, it := range e.target {
		artifact, ok := e.artifacts.Get(it.ID)
		if !ok {
			// Not built yet (or build failed): absent from this tick's list.
			continue
		}
		items = append(items, RenderItem[A]{
			Item:       it,
			Artifact:   artifact,
			ScreenRect: e.cam.WorldToScreen(it.Bounds),
		})
	}

	total := 0
	if e.index != nil {
		total = e.index.Len()
	}

	return Frame[A]{
		Items:         items,
		VisibleCount:  len(e.target),
		TotalCount:    total,
		CacheHitRatio: e.artifacts.HitRatio(),
		BatchDuration: batch.Duration,
		Building:      !batch.Done,
	}
}
