// Package lod collapses dense clusters of clusterable items into single
// representatives when the camera is zoomed far out.
//
// The reducer runs over the already culled visible set, never the whole
// world, so its O(n²) greedy grouping over the clusterable subset is an
// accepted complexity bound rather than a defect.
package lod

import "github.com/cullgo/cullgo/geom"

// Config tunes when and how aggressively reduction happens.
type Config struct {
	// PixelThreshold is the cluster radius in screen pixels. The world-space
	// radius is PixelThreshold/zoom, so clusters grow as the user zooms out.
	PixelThreshold float64
	// SizeCutoff is the cluster size above which a cluster collapses to a
	// single representative. At very low zoom (below half ZoomThreshold) the
	// cutoff halves, making collapsing stricter.
	SizeCutoff int
	// MinCandidates is the smallest candidate set worth reducing; below it
	// the clustering overhead would exceed its benefit.
	MinCandidates int
	// ZoomThreshold is the zoom below which reduction applies at all.
	ZoomThreshold float64
}

// DefaultConfig is used for non-positive Config fields.
var DefaultConfig = Config{
	PixelThreshold: 64,
	SizeCutoff:     5,
	MinCandidates:  8,
	ZoomThreshold:  0.5,
}

func (c Config) withDefaults() Config {
	if c.PixelThreshold <= 0 {
		c.PixelThreshold = DefaultConfig.PixelThreshold
	}
	if c.SizeCutoff <= 0 {
		c.SizeCutoff = DefaultConfig.SizeCutoff
	}
	if c.MinCandidates <= 0 {
		c.MinCandidates = DefaultConfig.MinCandidates
	}
	if c.ZoomThreshold <= 0 {
		c.ZoomThreshold = DefaultConfig.ZoomThreshold
	}
	return c
}

// cutoff returns the cluster-size cutoff for the given zoom. Below half the
// zoom threshold the cutoff halves (floor 2): the further out the user is,
// the less a dense region deserves individual items.
func (c Config) cutoff(zoom float64) int {
	if zoom < c.ZoomThreshold/2 {
		return max(2, c.SizeCutoff/2)
	}
	return c.SizeCutoff
}

// Reduce applies level-of-detail reduction to items. Items whose clusterable
// accessor reports false pass through untouched; clusterable items are
// greedily grouped around seed items by center distance, and any group
// larger than the zoom-dependent cutoff is replaced by its seed.
//
// Reduction only happens when zoom is below cfg.ZoomThreshold and the
// candidate set is larger than cfg.MinCandidates; otherwise the input slice
// is returned as is.
func Reduce[T any](items []T, zoom float64, cfg Config, center func(T) geom.Point, clusterable func(T) bool) []T {
	cfg = cfg.withDefaults()
	if zoom >= cfg.ZoomThreshold || len(items) <= cfg.MinCandidates {
		return items
	}

	var group, rest []T
	for _, it := range items {
		if clusterable(it) {
			group = append(group, it)
		} else {
			rest = append(rest, it)
		}
	}
	if len(group) == 0 {
		return items
	}

	radius := cfg.PixelThreshold / zoom
	cut := cfg.cutoff(zoom)
	visited := make([]bool, len(group))

	out := make([]T, 0, len(items))
	for i := range group {
		if visited[i] {
			continue
		}
		visited[i] = true
		seed := center(group[i])

		cluster := []int{i}
		for j := i + 1; j < len(group); j++ {
			if visited[j] {
				continue
			}
			if seed.Dist(center(group[j])) < radius {
				visited[j] = true
				cluster = append(cluster, j)
			}
		}

		if len(cluster) > cut {
			// Collapse to the seed; deterministic for a fixed input order.
			out = append(out, group[i])
			continue
		}
		for _, k := range cluster {
			out = append(out, group[k])
		}
	}

	return append(out, rest...)
}
