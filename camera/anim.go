package camera

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/cullgo/cullgo/geom"
)

// anim holds the active scroll/zoom tweens for the camera.
type anim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	tweenZ *gween.Tween
	doneX  bool
	doneY  bool
	doneZ  bool
}

func (a *anim) finished() bool {
	return a.doneX && a.doneY && a.doneZ
}

// ScrollTo animates the origin to target over the given duration. Starting a
// new scroll replaces any scroll in progress; an active zoom tween keeps
// running.
func (c *Camera) ScrollTo(target geom.Point, duration time.Duration, easeFn ease.TweenFunc) {
	d := float32(duration.Seconds())
	a := c.ensureAnim()
	a.tweenX = gween.New(float32(c.origin.X), float32(target.X), d, easeFn)
	a.tweenY = gween.New(float32(c.origin.Y), float32(target.Y), d, easeFn)
	a.doneX, a.doneY = false, false
}

// ZoomTo animates the zoom factor to target (clamped into the configured
// range) over the given duration. The origin is left alone; callers that
// want an anchored zoom should use ZoomBy per input event instead.
func (c *Camera) ZoomTo(target float64, duration time.Duration, easeFn ease.TweenFunc) {
	target = clamp(target, c.minZoom, c.maxZoom)
	a := c.ensureAnim()
	a.tweenZ = gween.New(float32(c.zoom), float32(target), float32(duration.Seconds()), easeFn)
	a.doneZ = false
}

// Animating reports whether a scroll or zoom tween is in progress.
func (c *Camera) Animating() bool {
	return c.anim != nil
}

// Animate advances active tweens by dt. It reports whether the origin moved
// and whether the zoom changed so the caller can invalidate accordingly.
func (c *Camera) Animate(dt time.Duration) (moved, zoomed bool) {
	a := c.anim
	if a == nil {
		return false, false
	}
	step := float32(dt.Seconds())

	if !a.doneX {
		v, done := a.tweenX.Update(step)
		if float64(v) != c.origin.X {
			c.origin.X = float64(v)
			moved = true
		}
		a.doneX = done
	}
	if !a.doneY {
		v, done := a.tweenY.Update(step)
		if float64(v) != c.origin.Y {
			c.origin.Y = float64(v)
			moved = true
		}
		a.doneY = done
	}
	if !a.doneZ {
		v, done := a.tweenZ.Update(step)
		z := clamp(float64(v), c.minZoom, c.maxZoom)
		if z != c.zoom {
			c.zoom = z
			zoomed = true
		}
		a.doneZ = done
	}

	if a.finished() {
		c.anim = nil
	}
	return moved, zoomed
}

func (c *Camera) ensureAnim() *anim {
	if c.anim == nil {
		c.anim = &anim{doneX: true, doneY: true, doneZ: true}
	}
	return c.anim
}
