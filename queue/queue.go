// Package queue implements the min-heap the engine uses to order build
// targets by distance from the viewport center, so the items the user is
// looking at materialize first.
package queue

// Item is a prioritized entry. Value-based to avoid pointer indirection on
// the hot ordering path.
type Item struct {
	// ID is the entry's stable identity, used to break priority ties so the
	// drain order is deterministic.
	ID uint64
	// Priority orders the heap; smaller drains first.
	Priority float64
}

// Queue is a binary min-heap of Items. The zero value is ready to use.
type Queue struct {
	items []Item
}

// New creates a queue with the given initial capacity.
func New(capacity int) *Queue {
	return &Queue{items: make([]Item, 0, capacity)}
}

// Len returns the number of queued items.
func (q *Queue) Len() int { return len(q.items) }

// Push inserts an item while maintaining the heap invariant.
func (q *Queue) Push(item Item) {
	q.items = append(q.items, item)
	q.siftUp(len(q.items) - 1)
}

// Pop removes and returns the lowest-priority item.
func (q *Queue) Pop() (Item, bool) {
	n := len(q.items)
	if n == 0 {
		return Item{}, false
	}
	root := q.items[0]
	last := q.items[n-1]
	q.items[n-1] = Item{}
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}
	return root, true
}

// Reset clears the queue for reuse, keeping the backing slice.
func (q *Queue) Reset() {
	q.items = q.items[:0]
}

func (q *Queue) less(i, j int) bool {
	if q.items[i].Priority != q.items[j].Priority {
		return q.items[i].Priority < q.items[j].Priority
	}
	return q.items[i].ID < q.items[j].ID
}

func (q *Queue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *Queue) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.less(r, l) {
			best = r
		}
		if !q.less(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
