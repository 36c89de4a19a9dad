package contour

import "ctcontour/pkg/grid"

// RasterName identifies the full-grid scan baseline variant.
const RasterName = "raster"

// Raster is a deliberately naive baseline that scans every cell of the
// H x W grid instead of the sparse foreground list. Its cost scales with
// slice area regardless of mask sparsity, which makes it a useful lower
// bound when measuring what the sparse index buys the other variants.
type Raster struct{}

// NewRaster returns the full-grid scan baseline extractor.
func NewRaster() *Raster {
	return &Raster{}
}

// Name implements Extractor.
func (*Raster) Name() string {
	return RasterName
}

// Extract implements Extractor.
func (*Raster) Extract(g *grid.Binary) (Set, error) {
	height, width := g.Dims()
	set := NewSet()
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			coord := grid.Coordinate{Row: r, Col: c}
			if g.IsForeground(coord) && isContour(g, coord) {
				set.Add(coord)
			}
		}
	}
	return set, nil
}
