package models

import (
	"fmt"

	"ctcontour/pkg/grid"
)

// Slice represents a single binarized 2D mask slice with metadata
type Slice struct {
	// Grid is the immutable binary mask for this slice
	Grid *grid.Binary

	// Volume is the numeric index of the source volume in the dataset,
	// following the segmentation-<n>.nii naming convention
	Volume int

	// Index is the z position of this slice within the source volume
	Index int
}

// ID returns the stable identifier used to key this slice in reports,
// e.g. "segmentation-12/slice-34".
func (s Slice) ID() string {
	return fmt.Sprintf("segmentation-%d/slice-%d", s.Volume, s.Index)
}
