// Package cullgo provides an embedded, tick-driven viewport culling and
// incremental build engine for very large, sparse 2-D worlds.
//
// The engine maintains a spatial index over world-space item rectangles and,
// for a moving, zooming camera, incrementally produces the set of items that
// must be rendered without ever exceeding a fixed per-tick time budget:
//
//   - Region quadtree culling of the camera's visible world rectangle
//   - World-to-screen camera transform with clamped, focal-anchored zoom
//   - Level-of-detail reduction of dense clusters at low zoom
//   - Deadline-budgeted incremental build scheduling, resumable across ticks
//   - Bounded LRU caching of build artifacts
//
// Building an item is an opaque, possibly expensive operation supplied by
// the caller; the engine is generic over the artifact type and never
// inspects what a build produces.
//
// # Quick Start
//
//	eng, err := cullgo.New[string](
//	    cullgo.WithZoomBounds(0.1, 8),
//	    cullgo.WithBudget(16, 8*time.Millisecond),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	eng.SetViewport(geom.Size{Width: 1280, Height: 720})
//	eng.SubmitItems(items)
//
//	for frame := range frames { // external tick driver
//	    for _, ri := range eng.Tick(ctx).Items {
//	        draw(ri.Artifact, ri.ScreenRect)
//	    }
//	}
//
// # Execution model
//
// The core is single-threaded, cooperative and tick-driven. Tick returns
// control to the caller at the end of every batch; an external driver (a
// timer, a frame callback, or the driver package) re-invokes it. A quiet
// tick with no camera change and no pending build work is a cheap no-op:
// the engine is change- and budget-driven, never time-driven regardless of
// need. Change propagation is explicit state on the returned Frame rather
// than listener callbacks; the caller decides how to fan it out.
package cullgo
