package contour

import (
	"container/heap"

	"ctcontour/pkg/grid"
)

// MulberryName identifies the proposed sparse frontier variant.
const MulberryName = "mulberry"

// Mulberry is the proposed extractor. It avoids the full 8-neighbor
// evaluation of foreground pixels deep inside large uniform regions by
// exploiting the spatial coherence of segmentation masks: real masks have
// thin transition bands between foreground and background relative to
// their interior area.
//
// The traversal works in two phases:
//
//  1. Seeding. One pass over the sparse foreground list enqueues every
//     foreground pixel with a background orthogonal neighbor. Out-of-range
//     reads as background, so the grid border needs no special casing.
//  2. Frontier resolution. A priority queue ordered by a deterministic key
//     pops unresolved pixels. Each popped pixel gets the same 8-neighbor
//     test as dense-scan; pixels that resolve as boundary expand to their
//     unvisited foreground 8-neighbors, interior pixels do not expand.
//
// Only pixels within one hop of a foreground/background transition are ever
// enqueued. Foreground unreachable from any seed is fully interior and is
// excluded without individual evaluation.
//
// The priority key orders internal work only; it must never influence the
// resulting set. The default key is raster position, which makes timing
// reproducible.
type Mulberry struct {
	// key maps a coordinate to its queue priority. Overridable so tests can
	// shuffle the ordering and verify the output set is unaffected.
	key func(width int, c grid.Coordinate) int
}

// NewMulberry returns the proposed extractor with raster-order keys.
func NewMulberry() *Mulberry {
	return &Mulberry{key: rasterKey}
}

func rasterKey(width int, c grid.Coordinate) int {
	return c.Row*width + c.Col
}

// Name implements Extractor.
func (*Mulberry) Name() string {
	return MulberryName
}

// Extract implements Extractor.
func (m *Mulberry) Extract(g *grid.Binary) (Set, error) {
	_, width := g.Dims()
	set := NewSet()

	frontier := &coordHeap{}
	enqueued := make(map[grid.Coordinate]struct{})

	push := func(c grid.Coordinate) {
		if _, seen := enqueued[c]; seen {
			return
		}
		enqueued[c] = struct{}{}
		heap.Push(frontier, keyed{key: m.key(width, c), coord: c})
	}

	// Seed with foreground pixels orthogonally adjacent to background.
	// Every contour pixel whose only background contact is diagonal sits
	// next to such a seed, so expansion from the seeds covers the rest.
	for c := range g.Foreground() {
		for _, n := range grid.Neighbors4(c) {
			if !g.IsForeground(n) {
				push(c)
				break
			}
		}
	}

	for frontier.Len() > 0 {
		c := heap.Pop(frontier).(keyed).coord
		if !isContour(g, c) {
			// Interior pixel within one hop of the boundary band.
			// Resolved, never re-examined, and not expanded.
			continue
		}
		set.Add(c)
		for _, n := range grid.Neighbors8(c) {
			if g.IsForeground(n) {
				push(n)
			}
		}
	}

	return set, nil
}

// keyed pairs a coordinate with its queue priority.
type keyed struct {
	key   int
	coord grid.Coordinate
}

// coordHeap is a min-heap over priority keys, used as the frontier queue.
type coordHeap []keyed

func (h coordHeap) Len() int           { return len(h) }
func (h coordHeap) Less(i, j int) bool { return h[i].key < h[j].key }
func (h coordHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *coordHeap) Push(x any)        { *h = append(*h, x.(keyed)) }

func (h *coordHeap) Pop() any {
	old := *h
	n := len(old)
	last := old[n-1]
	*h = old[:n-1]
	return last
}
