package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cullgo/cullgo/geom"
)

type dot struct {
	id      uint64
	pos     geom.Point
	cluster bool
}

func center(d dot) geom.Point { return d.pos }
func isCluster(d dot) bool    { return d.cluster }

// makeDots places n clusterable dots within a tiny radius of each other.
func makeDots(n int) []dot {
	dots := make([]dot, 0, n)
	for i := 0; i < n; i++ {
		dots = append(dots, dot{
			id:      uint64(i),
			pos:     geom.Point{X: float64(i) * 0.1, Y: 0},
			cluster: true,
		})
	}
	return dots
}

func TestDenseClusterCollapsesToOneRepresentative(t *testing.T) {
	cfg := Config{PixelThreshold: 64, SizeCutoff: 5, MinCandidates: 4, ZoomThreshold: 0.5}

	// At zoom 0.25 the world radius is 256; ten dots within 1 world unit.
	out := Reduce(makeDots(10), 0.25, cfg, center, isCluster)

	assert.Len(t, out, 1)
	assert.Equal(t, uint64(0), out[0].id, "the seed represents the cluster")
}

func TestSmallClusterEmittedUnchanged(t *testing.T) {
	cfg := Config{PixelThreshold: 64, SizeCutoff: 5, MinCandidates: 2, ZoomThreshold: 0.5}

	in := makeDots(3)
	out := Reduce(in, 0.25, cfg, center, isCluster)
	assert.Equal(t, in, out, "clusters at or below the cutoff keep every member")
}

func TestNoReductionAboveZoomThreshold(t *testing.T) {
	cfg := Config{PixelThreshold: 64, SizeCutoff: 5, MinCandidates: 2, ZoomThreshold: 0.5}

	in := makeDots(20)
	out := Reduce(in, 1.0, cfg, center, isCluster)
	assert.Equal(t, in, out)
}

func TestSmallSetsNeverReduced(t *testing.T) {
	cfg := Config{PixelThreshold: 64, SizeCutoff: 2, MinCandidates: 8, ZoomThreshold: 0.5}

	in := makeDots(8)
	out := Reduce(in, 0.1, cfg, center, isCluster)
	assert.Equal(t, in, out, "sets up to MinCandidates pass through")
}

func TestNonClusterablePassThrough(t *testing.T) {
	cfg := Config{PixelThreshold: 64, SizeCutoff: 3, MinCandidates: 2, ZoomThreshold: 0.5}

	in := makeDots(10)
	in = append(in,
		dot{id: 100, pos: geom.Point{X: 0.5, Y: 0}},
		dot{id: 101, pos: geom.Point{X: 0.6, Y: 0}},
	)

	out := Reduce(in, 0.25, cfg, center, isCluster)

	var ids []uint64
	for _, d := range out {
		ids = append(ids, d.id)
	}
	// One representative for the dense cluster, both plain dots untouched.
	assert.Equal(t, []uint64{0, 100, 101}, ids)
}

func TestCutoffStricterAtVeryLowZoom(t *testing.T) {
	cfg := Config{PixelThreshold: 64, SizeCutoff: 8, MinCandidates: 2, ZoomThreshold: 0.5}

	// Six dots: above the halved cutoff (4) but below the normal cutoff (8).
	in := makeDots(6)

	// Moderate low zoom: cutoff stays 8, cluster of 6 survives intact.
	out := Reduce(in, 0.4, cfg, center, isCluster)
	assert.Len(t, out, 6)

	// Very low zoom (< ZoomThreshold/2): cutoff halves to 4, cluster collapses.
	out = Reduce(in, 0.2, cfg, center, isCluster)
	assert.Len(t, out, 1)
}

func TestDistantSeedsFormSeparateClusters(t *testing.T) {
	cfg := Config{PixelThreshold: 10, SizeCutoff: 2, MinCandidates: 2, ZoomThreshold: 0.5}

	// Two dense groups far apart: each collapses independently.
	var in []dot
	for i := 0; i < 5; i++ {
		in = append(in, dot{id: uint64(i), pos: geom.Point{X: float64(i), Y: 0}, cluster: true})
	}
	for i := 0; i < 5; i++ {
		in = append(in, dot{id: uint64(100 + i), pos: geom.Point{X: 10000 + float64(i), Y: 0}, cluster: true})
	}

	out := Reduce(in, 0.25, cfg, center, isCluster)

	var ids []uint64
	for _, d := range out {
		ids = append(ids, d.id)
	}
	assert.Equal(t, []uint64{0, 100}, ids)
}
