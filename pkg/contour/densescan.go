package contour

import "ctcontour/pkg/grid"

// DenseScanName identifies the dense-scan baseline variant.
const DenseScanName = "dense-scan"

// DenseScan is the correctness reference: it applies the full 8-neighbor
// test to every foreground pixel through the sparse membership index.
// Cost is O(foreground * 8) membership tests, exhaustive and unambiguous,
// which is why every other variant is checked against it.
type DenseScan struct{}

// NewDenseScan returns the dense-scan baseline extractor.
func NewDenseScan() *DenseScan {
	return &DenseScan{}
}

// Name implements Extractor.
func (*DenseScan) Name() string {
	return DenseScanName
}

// Extract implements Extractor.
func (*DenseScan) Extract(g *grid.Binary) (Set, error) {
	set := NewSet()
	for c := range g.Foreground() {
		if isContour(g, c) {
			set.Add(c)
		}
	}
	return set, nil
}
