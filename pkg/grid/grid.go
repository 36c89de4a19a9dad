// Package grid provides the immutable binary mask representation that all
// contour extractors operate on. A grid is built once from a dense
// foreground/background mask and keeps a sparse index of its foreground
// coordinates, so that membership queries and iteration cost scale with the
// number of foreground pixels rather than the slice area. CT segmentation
// masks are typically sparse, which is what makes the sparse extraction
// algorithms in pkg/contour worthwhile.
package grid

import (
	"fmt"
	"iter"
)

// Coordinate indexes one pixel within a bounded 2D slice as (row, column).
type Coordinate struct {
	Row int
	Col int
}

// Neighbors4 returns the 4 orthogonal neighbors of c, independent of any
// grid bounds. Entries that fall outside a grid resolve to background when
// queried through Binary.IsForeground.
func Neighbors4(c Coordinate) [4]Coordinate {
	return [4]Coordinate{
		{c.Row - 1, c.Col},
		{c.Row + 1, c.Col},
		{c.Row, c.Col - 1},
		{c.Row, c.Col + 1},
	}
}

// Neighbors8 returns the 8 orthogonal and diagonal neighbors of c,
// independent of any grid bounds.
func Neighbors8(c Coordinate) [8]Coordinate {
	return [8]Coordinate{
		{c.Row - 1, c.Col - 1},
		{c.Row - 1, c.Col},
		{c.Row - 1, c.Col + 1},
		{c.Row, c.Col - 1},
		{c.Row, c.Col + 1},
		{c.Row + 1, c.Col - 1},
		{c.Row + 1, c.Col},
		{c.Row + 1, c.Col + 1},
	}
}

// Binary is an immutable foreground/background grid for one image slice.
// Construction is the only mutation point; afterwards any number of
// concurrent readers may share it without locking.
type Binary struct {
	height int
	width  int

	// foreground holds every foreground coordinate in row-major order.
	foreground []Coordinate

	// index is the sparse membership set used for O(1) neighbor queries.
	// Out-of-range coordinates are simply absent, so they read as background.
	index map[Coordinate]struct{}
}

// FromMask builds a Binary grid from a dense row-major mask of height*width
// cells. The mask is scanned exactly once.
func FromMask(height, width int, mask []bool) (*Binary, error) {
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", height, width)
	}
	if len(mask) != height*width {
		return nil, fmt.Errorf("mask has %d cells, want %d for a %dx%d grid",
			len(mask), height*width, height, width)
	}

	g := &Binary{
		height: height,
		width:  width,
		index:  make(map[Coordinate]struct{}),
	}
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			if mask[r*width+c] {
				coord := Coordinate{Row: r, Col: c}
				g.foreground = append(g.foreground, coord)
				g.index[coord] = struct{}{}
			}
		}
	}
	return g, nil
}

// FromFunc builds a Binary grid by sampling pred at every cell.
func FromFunc(height, width int, pred func(row, col int) bool) (*Binary, error) {
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", height, width)
	}

	g := &Binary{
		height: height,
		width:  width,
		index:  make(map[Coordinate]struct{}),
	}
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			if pred(r, c) {
				coord := Coordinate{Row: r, Col: c}
				g.foreground = append(g.foreground, coord)
				g.index[coord] = struct{}{}
			}
		}
	}
	return g, nil
}

// Dims returns the grid height and width.
func (g *Binary) Dims() (height, width int) {
	return g.height, g.width
}

// IsForeground reports whether c is a foreground pixel. Out-of-range
// coordinates are background; there is no error path.
func (g *Binary) IsForeground(c Coordinate) bool {
	_, ok := g.index[c]
	return ok
}

// ForegroundCount returns the number of foreground pixels.
func (g *Binary) ForegroundCount() int {
	return len(g.foreground)
}

// Foreground returns a restartable sequence over the foreground coordinates
// in row-major order.
func (g *Binary) Foreground() iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		for _, c := range g.foreground {
			if !yield(c) {
				return
			}
		}
	}
}
