package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/cullgo/cullgo"
	"github.com/cullgo/cullgo/geom"
	"github.com/tanema/gween/ease"
)

func main() {
	seed := int64(4711)
	size := 200000
	world := 100000.0

	eng, err := cullgo.New[string](
		cullgo.WithZoomBounds(0.05, 8),
		cullgo.WithBudget(64, 4*time.Millisecond),
		cullgo.WithCacheCapacity(4096),
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := eng.SetViewport(geom.Size{Width: 1280, Height: 720}); err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- Submit ---")
	fmt.Println("Items:", size)

	rng := rand.New(rand.NewSource(seed))
	items := make([]cullgo.Item[string], 0, size)
	for i := range size {
		id := cullgo.ItemID(i + 1)
		items = append(items, cullgo.Item[string]{
			ID: id,
			Bounds: geom.Rect{
				X:      rng.Float64() * world,
				Y:      rng.Float64() * world,
				Width:  8 + rng.Float64()*56,
				Height: 8 + rng.Float64()*56,
			},
			Clusterable: true,
			Build: func(context.Context) (string, error) {
				return fmt.Sprintf("tile-%d", id), nil
			},
		})
	}

	start := time.Now()
	eng.SubmitItems(items)
	fmt.Printf("Seconds: %.4f\n\n", time.Since(start).Seconds())

	ctx := context.Background()
	runTicks(ctx, eng, "--- First frame (index rebuild + budgeted build) ---")

	fmt.Println("--- Pan (cache carries over) ---")
	eng.Pan(geom.Point{X: 200, Y: 120})
	runTicks(ctx, eng, "")

	fmt.Println("--- Zoom out (LOD reduction, full rebuild) ---")
	eng.ZoomAt(0.25, geom.Point{X: 640, Y: 360})
	runTicks(ctx, eng, "")

	fmt.Println("--- Animated scroll ---")
	eng.ScrollTo(geom.Point{X: world / 2, Y: world / 2}, 500*time.Millisecond, ease.OutQuad)
	start = time.Now()
	frames := 0
	for eng.Animating() {
		eng.Tick(ctx)
		frames++
		time.Sleep(8 * time.Millisecond)
	}
	fmt.Printf("Frames: %d\n", frames)
	fmt.Printf("Seconds: %.4f\n\n", time.Since(start).Seconds())
}

func runTicks(ctx context.Context, eng *cullgo.Engine[string], header string) {
	if header != "" {
		fmt.Println(header)
	}

	start := time.Now()
	ticks := 0
	frame := eng.Tick(ctx)
	ticks++
	for frame.Building {
		frame = eng.Tick(ctx)
		ticks++
	}

	fmt.Printf("Visible: %d of %d\n", frame.VisibleCount, frame.TotalCount)
	fmt.Printf("Rendered: %d\n", len(frame.Items))
	fmt.Printf("Ticks: %d\n", ticks)
	fmt.Printf("Cache hit ratio: %.2f\n", frame.CacheHitRatio)
	fmt.Printf("Seconds: %.4f\n\n", time.Since(start).Seconds())
}
