package cullgo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"

	"github.com/cullgo/cullgo/geom"
	"github.com/cullgo/cullgo/lod"
)

// manualClock only advances when the test says so.
type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func countingItem(calls map[ItemID]int, id ItemID, bounds geom.Rect) Item[string] {
	return Item[string]{
		ID:     id,
		Bounds: bounds,
		Build: func(context.Context) (string, error) {
			calls[id]++
			return "artifact", nil
		},
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine[string] {
	t.Helper()
	eng, err := New[string](opts...)
	require.NoError(t, err)
	require.NoError(t, eng.SetViewport(geom.Size{Width: 100, Height: 100}))
	return eng
}

func TestNewConfigurationErrors(t *testing.T) {
	_, err := New[string](WithZoomBounds(0, 1))
	var zb *ErrInvalidZoomBounds
	require.ErrorAs(t, err, &zb)
	assert.Equal(t, 0.0, zb.Min)

	_, err = New[string](WithCacheCapacity(-1))
	assert.ErrorIs(t, err, ErrInvalidCacheCapacity)

	_, err = New[string](WithBudget(0, time.Millisecond))
	var bb *ErrInvalidBudget
	assert.ErrorAs(t, err, &bb)
}

func TestSetViewportValidates(t *testing.T) {
	eng, err := New[string]()
	require.NoError(t, err)
	assert.ErrorIs(t, eng.SetViewport(geom.Size{Width: 0, Height: 100}), ErrInvalidViewport)
	assert.NoError(t, eng.SetViewport(geom.Size{Width: 1, Height: 1}))
}

func TestTickBuildsVisibleItems(t *testing.T) {
	eng := newTestEngine(t)
	calls := make(map[ItemID]int)

	// Viewport covers world [0,100)x[0,100) at zoom 1.
	eng.SubmitItems([]Item[string]{
		countingItem(calls, 1, geom.Rect{X: 45, Y: 45, Width: 10, Height: 10}),  // center dist 0
		countingItem(calls, 2, geom.Rect{X: 10, Y: 10, Width: 10, Height: 10}),  // far corner
		countingItem(calls, 3, geom.Rect{X: 70, Y: 40, Width: 10, Height: 10}),  // mid
		countingItem(calls, 4, geom.Rect{X: 500, Y: 500, Width: 10, Height: 10}), // culled
	})

	frame := eng.Tick(context.Background())

	assert.True(t, frame.Changed)
	assert.False(t, frame.Building)
	assert.Equal(t, 3, frame.VisibleCount)
	assert.Equal(t, 4, frame.TotalCount)
	require.Len(t, frame.Items, 3)

	// Center-out build order: nearest the viewport center first.
	assert.Equal(t, ItemID(1), frame.Items[0].Item.ID)
	assert.Equal(t, ItemID(3), frame.Items[1].Item.ID)
	assert.Equal(t, ItemID(2), frame.Items[2].Item.ID)

	assert.Zero(t, calls[4], "culled item is never built")

	// Screen projection at zoom 1, origin (0,0) is the identity.
	assert.Equal(t, geom.Rect{X: 45, Y: 45, Width: 10, Height: 10}, frame.Items[0].ScreenRect)

	// A quiet tick changes nothing and rebuilds nothing.
	frame = eng.Tick(context.Background())
	assert.False(t, frame.Changed)
	require.Len(t, frame.Items, 3)
	for id, n := range calls {
		assert.Equal(t, 1, n, "item %d built once", id)
	}
}

func TestBudgetedBuildAcrossTicks(t *testing.T) {
	eng := newTestEngine(t, WithBudget(2, time.Second))
	calls := make(map[ItemID]int)

	items := make([]Item[string], 0, 5)
	for i := 0; i < 5; i++ {
		items = append(items, countingItem(calls, ItemID(i+1),
			geom.Rect{X: float64(i) * 15, Y: 40, Width: 10, Height: 10}))
	}
	eng.SubmitItems(items)

	ctx := context.Background()

	frame := eng.Tick(ctx)
	assert.True(t, frame.Building)
	assert.Len(t, frame.Items, 2)

	frame = eng.Tick(ctx)
	assert.True(t, frame.Building)
	assert.Len(t, frame.Items, 4)

	frame = eng.Tick(ctx)
	assert.False(t, frame.Building)
	assert.Len(t, frame.Items, 5)
}

func TestPanCarriesOverBuiltItems(t *testing.T) {
	eng := newTestEngine(t)
	calls := make(map[ItemID]int)

	eng.SubmitItems([]Item[string]{
		countingItem(calls, 1, geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}),
	})

	ctx := context.Background()
	eng.Tick(ctx)
	require.Equal(t, 1, calls[1])

	// Small pan: item 1 stays visible and must not rebuild.
	require.True(t, eng.Pan(geom.Point{X: 5, Y: 0}))
	frame := eng.Tick(ctx)

	assert.True(t, frame.Changed, "pan moves every screen rect")
	assert.Equal(t, 1, calls[1])
	require.Len(t, frame.Items, 1)
	assert.Equal(t, geom.Rect{X: 35, Y: 40, Width: 10, Height: 10}, frame.Items[0].ScreenRect)
}

func TestZoomChangeInvalidatesArtifacts(t *testing.T) {
	eng := newTestEngine(t)
	calls := make(map[ItemID]int)

	eng.SubmitItems([]Item[string]{
		countingItem(calls, 1, geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}),
	})

	ctx := context.Background()
	eng.Tick(ctx)
	require.Equal(t, 1, calls[1])

	var released []ItemID
	eng.OnEvict(func(id ItemID, _ string) { released = append(released, id) })

	// Cached artifacts are scale-specific: zooming rebuilds.
	require.True(t, eng.ZoomAt(1.5, geom.Point{X: 50, Y: 50}))
	eng.Tick(ctx)
	assert.Equal(t, 2, calls[1])
	assert.Equal(t, []ItemID{1}, released)

	// A zoom saturated at its bound invalidates nothing.
	for eng.ZoomAt(2, geom.Point{X: 50, Y: 50}) {
	}
	eng.Tick(ctx) // settle at the zoom bound
	built := calls[1]
	assert.False(t, eng.ZoomAt(2, geom.Point{X: 50, Y: 50}))
	eng.Tick(ctx)
	assert.Equal(t, built, calls[1], "saturated zoom is a no-op")
}

func TestLazyIndexRebuild(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	eng := newTestEngine(t, WithMetricsCollector(metrics))
	calls := make(map[ItemID]int)

	eng.SubmitItems([]Item[string]{
		countingItem(calls, 1, geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}),
	})
	eng.SubmitItems([]Item[string]{
		countingItem(calls, 1, geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}),
		countingItem(calls, 2, geom.Rect{X: 60, Y: 40, Width: 10, Height: 10}),
	})

	// Two submissions, but the rebuild is lazy: only the tick pays for it,
	// and only once.
	assert.Zero(t, metrics.GetStats().RebuildCount)
	frame := eng.Tick(context.Background())
	assert.Equal(t, int64(1), metrics.GetStats().RebuildCount)
	assert.Equal(t, 2, frame.TotalCount)
}

func TestLODReducesDenseClusters(t *testing.T) {
	eng := newTestEngine(t,
		WithZoomBounds(0.05, 8),
		WithLOD(lod.Config{PixelThreshold: 64, SizeCutoff: 5, MinCandidates: 4, ZoomThreshold: 0.5}),
	)
	calls := make(map[ItemID]int)

	// Ten clusterable items bunched together near the world origin.
	items := make([]Item[string], 0, 10)
	for i := 0; i < 10; i++ {
		it := countingItem(calls, ItemID(i+1),
			geom.Rect{X: float64(i) * 2, Y: 0, Width: 1, Height: 1})
		it.Clusterable = true
		items = append(items, it)
	}
	eng.SubmitItems(items)

	// Zoom far out; the viewport sees everything.
	require.True(t, eng.SetCamera(geom.Point{X: -200, Y: -200}, 0.1))
	frame := eng.Tick(context.Background())

	assert.Equal(t, 1, frame.VisibleCount, "dense cluster collapses to one representative")
	require.Len(t, frame.Items, 1)

	// Zoomed back in, every item is its own target again.
	require.True(t, eng.SetCamera(geom.Point{}, 1))
	frame = eng.Tick(context.Background())
	assert.Equal(t, 10, frame.VisibleCount)
}

func TestFailedBuildMissingFromRenderList(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	eng := newTestEngine(t, WithMetricsCollector(metrics))
	calls := make(map[ItemID]int)

	broken := Item[string]{
		ID:     2,
		Bounds: geom.Rect{X: 60, Y: 40, Width: 10, Height: 10},
		Build: func(context.Context) (string, error) {
			return "", errors.New("shader compile error")
		},
	}
	eng.SubmitItems([]Item[string]{
		countingItem(calls, 1, geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}),
		broken,
	})

	frame := eng.Tick(context.Background())

	assert.Equal(t, 2, frame.VisibleCount)
	require.Len(t, frame.Items, 1, "failed item is simply absent")
	assert.Equal(t, ItemID(1), frame.Items[0].Item.ID)
	assert.Equal(t, int64(1), metrics.GetStats().FailedBuilds)
}

func TestNilBuildIsSkippedNotFatal(t *testing.T) {
	eng := newTestEngine(t)
	eng.SubmitItems([]Item[string]{
		{ID: 1, Bounds: geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}},
	})

	frame := eng.Tick(context.Background())
	assert.Empty(t, frame.Items)
	assert.False(t, frame.Building)
}

func TestScrollTweenAdvancesWithTicks(t *testing.T) {
	clock := &manualClock{now: time.Unix(1000, 0)}
	eng := newTestEngine(t, WithClock(clock.Now))

	eng.SubmitItems(nil)
	eng.ScrollTo(geom.Point{X: 100, Y: 0}, time.Second, ease.Linear)

	ctx := context.Background()
	eng.Tick(ctx) // establishes the tick timestamp; dt is zero

	for iter := 0; iter < 12; iter++ {
		clock.Advance(100 * time.Millisecond)
		eng.Tick(ctx)
	}

	assert.False(t, eng.Animating())
	assert.InDelta(t, 100, eng.Origin().X, 1e-3)

	// With the tween finished and nothing else pending, ticks go quiet.
	clock.Advance(100 * time.Millisecond)
	frame := eng.Tick(ctx)
	assert.False(t, frame.Changed)
}

func TestFrameCacheHitRatio(t *testing.T) {
	eng := newTestEngine(t)
	calls := make(map[ItemID]int)
	eng.SubmitItems([]Item[string]{
		countingItem(calls, 1, geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}),
	})

	ctx := context.Background()
	frame := eng.Tick(ctx)
	assert.Positive(t, frame.CacheHitRatio)

	for iter := 0; iter < 5; iter++ {
		frame = eng.Tick(ctx)
	}
	assert.Greater(t, frame.CacheHitRatio, 0.8, "steady state is hit-dominated")
}

func TestDuplicateSubmittedIDsIgnored(t *testing.T) {
	eng := newTestEngine(t)
	calls := make(map[ItemID]int)
	eng.SubmitItems([]Item[string]{
		countingItem(calls, 1, geom.Rect{X: 40, Y: 40, Width: 10, Height: 10}),
		countingItem(calls, 1, geom.Rect{X: 60, Y: 40, Width: 10, Height: 10}),
	})

	frame := eng.Tick(context.Background())
	assert.Equal(t, 1, frame.TotalCount)
}
