package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"

	"github.com/cullgo/cullgo/geom"
)

func TestNewValidatesBounds(t *testing.T) {
	_, err := New(0, 4)
	assert.ErrorIs(t, err, ErrInvalidZoomBounds)

	_, err = New(2, 1)
	assert.ErrorIs(t, err, ErrInvalidZoomBounds)

	c, err := New(0.5, 4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Zoom())
}

func TestZoomClampIdempotence(t *testing.T) {
	c, err := New(0.25, 4)
	require.NoError(t, err)

	focal := geom.Point{X: 100, Y: 100}

	// Zoom out until the floor saturates.
	for c.ZoomBy(0.5, focal) {
	}
	assert.Equal(t, 0.25, c.Zoom())

	// Further zoom-out in the same direction changes nothing.
	origin := c.Origin()
	assert.False(t, c.ZoomBy(0.5, focal))
	assert.Equal(t, origin, c.Origin())
	assert.Equal(t, 0.25, c.Zoom())

	// Same at the ceiling.
	for c.ZoomBy(2, focal) {
	}
	assert.Equal(t, 4.0, c.Zoom())
	assert.False(t, c.ZoomBy(2, focal))
}

func TestZoomAnchorsFocalPoint(t *testing.T) {
	c, err := New(0.1, 10)
	require.NoError(t, err)
	c.SetPose(geom.Point{X: -37.5, Y: 12.25}, 1.5)

	focal := geom.Point{X: 320, Y: 240}
	before := c.ScreenToWorld(focal)

	require.True(t, c.ZoomBy(1.7, focal))

	after := c.ScreenToWorld(focal)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestPan(t *testing.T) {
	c, err := New(0.5, 2)
	require.NoError(t, err)

	assert.False(t, c.Pan(geom.Point{}), "zero pan is a no-op")
	assert.True(t, c.Pan(geom.Point{X: 10, Y: -5}))
	assert.Equal(t, geom.Point{X: 10, Y: -5}, c.Origin())
}

func TestWorldToScreen(t *testing.T) {
	c, err := New(0.1, 10)
	require.NoError(t, err)
	c.SetPose(geom.Point{X: 100, Y: 50}, 2)

	s := c.WorldToScreen(geom.Rect{X: 110, Y: 60, Width: 5, Height: 4})
	assert.Equal(t, geom.Rect{X: 20, Y: 20, Width: 10, Height: 8}, s)

	// Degenerate world rects are floored to a positive screen size.
	s = c.WorldToScreen(geom.Rect{X: 110, Y: 60})
	assert.Greater(t, s.Width, 0.0)
	assert.Greater(t, s.Height, 0.0)
}

func TestVisibleWorldRect(t *testing.T) {
	c, err := New(0.1, 10)
	require.NoError(t, err)
	c.SetPose(geom.Point{X: -10, Y: 20}, 2)

	r := c.VisibleWorldRect(geom.Size{Width: 800, Height: 600})
	assert.Equal(t, geom.Rect{X: -10, Y: 20, Width: 400, Height: 300}, r)
}

func TestScrollToReachesTarget(t *testing.T) {
	c, err := New(0.1, 10)
	require.NoError(t, err)

	target := geom.Point{X: 200, Y: -80}
	c.ScrollTo(target, 500*time.Millisecond, ease.Linear)
	require.True(t, c.Animating())

	var moved bool
	for iter := 0; iter < 10; iter++ {
		m, zoomed := c.Animate(50 * time.Millisecond)
		moved = moved || m
		assert.False(t, zoomed)
	}

	assert.True(t, moved)
	assert.False(t, c.Animating())
	assert.InDelta(t, target.X, c.Origin().X, 1e-3)
	assert.InDelta(t, target.Y, c.Origin().Y, 1e-3)
}

func TestZoomToClampsAndFinishes(t *testing.T) {
	c, err := New(0.5, 2)
	require.NoError(t, err)

	c.ZoomTo(100, time.Second, ease.Linear) // clamped to 2
	var zoomed bool
	for iter := 0; iter < 12; iter++ {
		_, z := c.Animate(100 * time.Millisecond)
		zoomed = zoomed || z
	}

	assert.True(t, zoomed)
	assert.False(t, c.Animating())
	assert.InDelta(t, 2.0, c.Zoom(), 1e-3)
}
