// Package contour implements the competing boundary-extraction algorithms.
// A contour pixel is a foreground pixel with at least one background (or
// out-of-range) pixel in its 8-neighborhood. That predicate is the single
// source of truth for correctness: every extractor variant in this package
// must produce exactly the same set of contour pixels for any legal grid,
// differing only in how much work it spends finding them.
package contour

import (
	"fmt"
	"sort"

	"ctcontour/pkg/grid"
)

// Set is a contour point set for one grid under one algorithm. Sets are
// compared by coordinate membership, never by discovery order.
type Set map[grid.Coordinate]struct{}

// NewSet returns an empty contour set.
func NewSet() Set {
	return make(Set)
}

// Add inserts c into the set.
func (s Set) Add(c grid.Coordinate) {
	s[c] = struct{}{}
}

// Contains reports whether c is in the set.
func (s Set) Contains(c grid.Coordinate) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of contour points.
func (s Set) Len() int {
	return len(s)
}

// Equal reports content equality with other, independent of insertion order.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if _, ok := other[c]; !ok {
			return false
		}
	}
	return true
}

// Coordinates returns the contour points in row-major order.
func (s Set) Coordinates() []grid.Coordinate {
	coords := make([]grid.Coordinate, 0, len(s))
	for c := range s {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Row != coords[j].Row {
			return coords[i].Row < coords[j].Row
		}
		return coords[i].Col < coords[j].Col
	})
	return coords
}

// Extractor is the contract shared by all algorithm variants. Variants are
// interchangeable: for any legal grid they must return content-equal sets.
type Extractor interface {
	// Name returns the stable variant identifier used in configuration
	// and reports.
	Name() string

	// Extract computes the contour set of g. The grid is shared and
	// read-only; implementations must not retain or mutate it.
	Extract(g *grid.Binary) (Set, error)
}

// isContour applies the defining 8-neighborhood predicate to a foreground
// coordinate. Out-of-range neighbors read as background via the grid index.
func isContour(g *grid.Binary, c grid.Coordinate) bool {
	for _, n := range grid.Neighbors8(c) {
		if !g.IsForeground(n) {
			return true
		}
	}
	return false
}

// Variants resolves a list of configured variant names to extractor
// instances. Unknown names are a configuration error.
func Variants(names ...string) ([]Extractor, error) {
	extractors := make([]Extractor, 0, len(names))
	for _, name := range names {
		switch name {
		case DenseScanName:
			extractors = append(extractors, NewDenseScan())
		case MulberryName:
			extractors = append(extractors, NewMulberry())
		case RasterName:
			extractors = append(extractors, NewRaster())
		default:
			return nil, fmt.Errorf("unknown contour variant %q", name)
		}
	}
	return extractors, nil
}
