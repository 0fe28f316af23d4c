// Package quadtree implements a region quadtree over world-space bounding
// rectangles, used for viewport culling.
//
// The tree's root bounds are fixed at construction: the caller computes them
// as the union of all item rectangles plus a margin, and a world that grows
// past them requires building a fresh tree (rebuild-on-dirty, not online
// growth). A node subdivides into four equal quadrants once its entry count
// exceeds MaxItemsPerNode and its depth is below MaxDepth. An entry descends
// into a child only if that child fully contains its rectangle; entries that
// straddle a quadrant boundary are retained at the current node, so no entry
// is ever duplicated across children.
package quadtree

import "github.com/cullgo/cullgo/geom"

// Entry is a single indexed rectangle.
type Entry struct {
	ID     uint64
	Bounds geom.Rect
}

// Config holds the subdivision policy.
type Config struct {
	// MaxItemsPerNode is the entry count above which a node subdivides.
	MaxItemsPerNode int
	// MaxDepth caps subdivision; nodes at MaxDepth retain all entries.
	MaxDepth int
}

// DefaultConfig is used for non-positive Config fields.
var DefaultConfig = Config{
	MaxItemsPerNode: 8,
	MaxDepth:        8,
}

func (c Config) withDefaults() Config {
	if c.MaxItemsPerNode <= 0 {
		c.MaxItemsPerNode = DefaultConfig.MaxItemsPerNode
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultConfig.MaxDepth
	}
	return c
}

// Tree is a region quadtree. It is not safe for concurrent use.
type Tree struct {
	cfg  Config
	root *node
}

type node struct {
	bounds   geom.Rect
	depth    int
	entries  []Entry
	children *[4]node
}

// New creates a tree covering bounds.
func New(bounds geom.Rect, cfg Config) *Tree {
	return &Tree{
		cfg:  cfg.withDefaults(),
		root: &node{bounds: bounds},
	}
}

// Bounds returns the fixed root bounds.
func (t *Tree) Bounds() geom.Rect { return t.root.bounds }

// Insert adds an entry. It returns false, without inserting, if the entry's
// rectangle does not overlap the root bounds; once overlap is confirmed the
// insert always succeeds.
func (t *Tree) Insert(e Entry) bool {
	if !e.Bounds.Intersects(t.root.bounds) {
		return false
	}
	t.root.insert(e, t.cfg)
	return true
}

// Query returns every entry whose rectangle overlaps r. Nodes whose bounds
// do not overlap r are pruned. The order is deterministic for a fixed
// insertion order: retained entries first, then the NW, NE, SW, SE children.
func (t *Tree) Query(r geom.Rect) []Entry {
	var out []Entry
	t.root.query(r, &out)
	return out
}

// Len returns the total entry count, computed recursively over the tree.
func (t *Tree) Len() int {
	return t.root.len()
}

func (n *node) insert(e Entry, cfg Config) {
	if n.children == nil {
		if len(n.entries) < cfg.MaxItemsPerNode || n.depth >= cfg.MaxDepth {
			n.entries = append(n.entries, e)
			return
		}
		n.subdivide(cfg)
	}
	if c := n.childContaining(e.Bounds); c != nil {
		c.insert(e, cfg)
		return
	}
	// Straddles a quadrant boundary: retain here.
	n.entries = append(n.entries, e)
}

func (n *node) subdivide(cfg Config) {
	halfW := n.bounds.Width / 2
	halfH := n.bounds.Height / 2
	depth := n.depth + 1

	n.children = &[4]node{
		{bounds: geom.Rect{X: n.bounds.X, Y: n.bounds.Y, Width: halfW, Height: halfH}, depth: depth},
		{bounds: geom.Rect{X: n.bounds.X + halfW, Y: n.bounds.Y, Width: halfW, Height: halfH}, depth: depth},
		{bounds: geom.Rect{X: n.bounds.X, Y: n.bounds.Y + halfH, Width: halfW, Height: halfH}, depth: depth},
		{bounds: geom.Rect{X: n.bounds.X + halfW, Y: n.bounds.Y + halfH, Width: halfW, Height: halfH}, depth: depth},
	}

	// Push fully contained entries down; keep the straddlers.
	retained := n.entries[:0]
	for _, e := range n.entries {
		if c := n.childContaining(e.Bounds); c != nil {
			c.insert(e, cfg)
			continue
		}
		retained = append(retained, e)
	}
	n.entries = retained
}

func (n *node) childContaining(r geom.Rect) *node {
	if n.children == nil {
		return nil
	}
	for i := range n.children {
		if n.children[i].bounds.Contains(r) {
			return &n.children[i]
		}
	}
	return nil
}

func (n *node) query(r geom.Rect, out *[]Entry) {
	if !n.bounds.Intersects(r) {
		return
	}
	for _, e := range n.entries {
		if e.Bounds.Intersects(r) {
			*out = append(*out, e)
		}
	}
	if n.children == nil {
		return
	}
	for i := range n.children {
		n.children[i].query(r, out)
	}
}

func (n *node) len() int {
	total := len(n.entries)
	if n.children != nil {
		for i := range n.children {
			total += n.children[i].len()
		}
	}
	return total
}
