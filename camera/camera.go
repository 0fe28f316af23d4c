// Package camera owns the world origin and zoom factor of the viewport and
// converts between world and screen coordinates.
//
// The camera is parameterized by the world-space position of the viewport's
// top-left corner (origin) and a zoom factor in screen pixels per world
// unit. Zoom is always clamped to the configured [min, max] range; a zoom
// operation that saturates at a bound is a no-op and reports no change, so
// callers can suppress downstream invalidation.
package camera

import (
	"errors"
	"fmt"

	"github.com/cullgo/cullgo/geom"
)

// ErrInvalidZoomBounds is returned when the configured zoom range is not
// 0 < min <= max.
var ErrInvalidZoomBounds = errors.New("camera: zoom bounds must satisfy 0 < min <= max")

// minScreenExtent is the floor applied to projected widths and heights so
// extreme zoom-out never produces zero or negative screen rectangles.
const minScreenExtent = 1e-3

// Camera converts between world space and screen space.
type Camera struct {
	origin  geom.Point
	zoom    float64
	minZoom float64
	maxZoom float64

	anim *anim
}

// New creates a Camera with zoom clamped to [minZoom, maxZoom]. The initial
// zoom is 1 clamped into the range; the initial origin is the world origin.
func New(minZoom, maxZoom float64) (*Camera, error) {
	if minZoom <= 0 || maxZoom < minZoom {
		return nil, fmt.Errorf("%w: got [%v, %v]", ErrInvalidZoomBounds, minZoom, maxZoom)
	}
	return &Camera{
		zoom:    clamp(1, minZoom, maxZoom),
		minZoom: minZoom,
		maxZoom: maxZoom,
	}, nil
}

// Origin returns the world-space position of the viewport's top-left corner.
func (c *Camera) Origin() geom.Point { return c.origin }

// Zoom returns the current zoom factor in screen pixels per world unit.
func (c *Camera) Zoom() float64 { return c.zoom }

// SetPose moves the camera to the given origin and zoom. The zoom is clamped
// into the configured range. It reports whether the origin moved and whether
// the zoom changed.
func (c *Camera) SetPose(origin geom.Point, zoom float64) (moved, zoomed bool) {
	zoom = clamp(zoom, c.minZoom, c.maxZoom)
	moved = origin != c.origin
	zoomed = zoom != c.zoom
	c.origin = origin
	c.zoom = zoom
	return moved, zoomed
}

// Pan translates the origin by a world-space delta. It reports whether the
// camera actually moved.
func (c *Camera) Pan(delta geom.Point) bool {
	if delta == (geom.Point{}) {
		return false
	}
	c.origin = c.origin.Add(delta)
	return true
}

// ZoomBy multiplies the zoom by factor, clamped into the configured range,
// keeping the world point currently under the focal screen point fixed on
// screen. If clamping leaves the zoom unchanged, the camera state does not
// change at all and ZoomBy returns false.
func (c *Camera) ZoomBy(factor float64, focal geom.Point) bool {
	next := clamp(c.zoom*factor, c.minZoom, c.maxZoom)
	if next == c.zoom {
		return false
	}
	before := c.ScreenToWorld(focal)
	c.zoom = next
	after := c.ScreenToWorld(focal)
	c.origin = c.origin.Add(before.Sub(after))
	return true
}

// WorldToScreen projects a world rectangle into screen space. Width and
// height are floored to a small positive value so degenerate rectangles
// never reach the renderer.
func (c *Camera) WorldToScreen(r geom.Rect) geom.Rect {
	return geom.Rect{
		X:      (r.X - c.origin.X) * c.zoom,
		Y:      (r.Y - c.origin.Y) * c.zoom,
		Width:  max(r.Width*c.zoom, minScreenExtent),
		Height: max(r.Height*c.zoom, minScreenExtent),
	}
}

// ScreenToWorld maps a screen point back into world space.
func (c *Camera) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Point{
		X: c.origin.X + p.X/c.zoom,
		Y: c.origin.Y + p.Y/c.zoom,
	}
}

// VisibleWorldRect returns the world-space rectangle covered by a viewport
// of the given pixel size.
func (c *Camera) VisibleWorldRect(viewport geom.Size) geom.Rect {
	return geom.Rect{
		X:      c.origin.X,
		Y:      c.origin.Y,
		Width:  viewport.Width / c.zoom,
		Height: viewport.Height / c.zoom,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
