// Package volume supplies binary mask slices to the ablation harness. It is
// the external collaborator side of the system: it knows about the NIfTI-1
// file format and the LiTS dataset layout, and hands everything downstream
// as immutable grids. The core never sees a file path.
package volume

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"ctcontour/pkg/grid"
)

// NIfTI-1 constants. Only the header fields needed to decode an integer
// label volume are interpreted; everything else is carried opaquely.
const (
	niftiHeaderSize = 348

	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
	dtInt8    = 256
	dtUint16  = 512
)

// LabelVolume is a decoded 3D integer segmentation mask. Voxel values are
// label codes (LiTS: 0 background, 1 liver, 2 tumor).
type LabelVolume struct {
	width  int // x extent
	height int // y extent
	depth  int // z extent, the slice axis

	// labels holds the voxels with x varying fastest, matching the NIfTI
	// data layout.
	labels []uint8
}

// OpenLabel reads a NIfTI-1 label volume from disk. Gzip-compressed files
// are detected by their magic bytes, so both .nii and .nii.gz work.
func OpenLabel(path string) (*LabelVolume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening label volume: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var r io.Reader = br
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	vol, err := DecodeLabel(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return vol, nil
}

// DecodeLabel decodes a NIfTI-1 stream into a label volume. Both byte
// orders are accepted; the order is inferred from the sizeof_hdr field.
func DecodeLabel(r io.Reader) (*LabelVolume, error) {
	header := make([]byte, niftiHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	order, err := headerByteOrder(header)
	if err != nil {
		return nil, err
	}

	if m := header[344:348]; !bytes.Equal(m, []byte("n+1\x00")) && !bytes.Equal(m, []byte("ni1\x00")) {
		return nil, fmt.Errorf("not a NIfTI-1 file (magic %q)", m)
	}

	// dim[0] is the number of dimensions; dim[1..3] are x, y, z extents.
	ndim := int(int16(order.Uint16(header[40:42])))
	if ndim < 2 || ndim > 7 {
		return nil, fmt.Errorf("unsupported dimensionality %d", ndim)
	}
	nx := int(int16(order.Uint16(header[42:44])))
	ny := int(int16(order.Uint16(header[44:46])))
	nz := 1
	if ndim >= 3 {
		nz = int(int16(order.Uint16(header[46:48])))
	}
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid volume extents %dx%dx%d", nx, ny, nz)
	}

	datatype := int16(order.Uint16(header[70:72]))
	bitpix := int(int16(order.Uint16(header[72:74])))
	voxOffset := int64(math.Float32frombits(order.Uint32(header[108:112])))
	if voxOffset < niftiHeaderSize {
		voxOffset = niftiHeaderSize
	}

	// Skip the extension bytes between the header and the voxel data.
	if _, err := io.CopyN(io.Discard, r, voxOffset-niftiHeaderSize); err != nil {
		return nil, fmt.Errorf("skipping to voxel data: %w", err)
	}

	voxels := nx * ny * nz
	raw := make([]byte, voxels*bitpix/8)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("reading voxel data: %w", err)
	}

	labels, err := decodeVoxels(raw, voxels, datatype, order)
	if err != nil {
		return nil, err
	}

	return &LabelVolume{
		width:  nx,
		height: ny,
		depth:  nz,
		labels: labels,
	}, nil
}

// headerByteOrder infers endianness from sizeof_hdr, which is 348 in the
// file's native order.
func headerByteOrder(header []byte) (binary.ByteOrder, error) {
	if binary.LittleEndian.Uint32(header[0:4]) == niftiHeaderSize {
		return binary.LittleEndian, nil
	}
	if binary.BigEndian.Uint32(header[0:4]) == niftiHeaderSize {
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("not a NIfTI-1 file (sizeof_hdr != %d)", niftiHeaderSize)
}

// decodeVoxels converts raw voxel bytes into label codes. Values outside
// [0, 255] mean the file is not a label mask.
func decodeVoxels(raw []byte, voxels int, datatype int16, order binary.ByteOrder) ([]uint8, error) {
	labels := make([]uint8, voxels)

	toLabel := func(i int, v float64) error {
		if v < 0 || v > 255 || v != math.Trunc(v) {
			return fmt.Errorf("voxel %d has non-label value %g", i, v)
		}
		labels[i] = uint8(v)
		return nil
	}

	switch datatype {
	case dtUint8:
		copy(labels, raw)
	case dtInt8:
		for i := 0; i < voxels; i++ {
			if err := toLabel(i, float64(int8(raw[i]))); err != nil {
				return nil, err
			}
		}
	case dtInt16:
		for i := 0; i < voxels; i++ {
			if err := toLabel(i, float64(int16(order.Uint16(raw[i*2:])))); err != nil {
				return nil, err
			}
		}
	case dtUint16:
		for i := 0; i < voxels; i++ {
			if err := toLabel(i, float64(order.Uint16(raw[i*2:]))); err != nil {
				return nil, err
			}
		}
	case dtInt32:
		for i := 0; i < voxels; i++ {
			if err := toLabel(i, float64(int32(order.Uint32(raw[i*4:])))); err != nil {
				return nil, err
			}
		}
	case dtFloat32:
		for i := 0; i < voxels; i++ {
			if err := toLabel(i, float64(math.Float32frombits(order.Uint32(raw[i*4:])))); err != nil {
				return nil, err
			}
		}
	case dtFloat64:
		for i := 0; i < voxels; i++ {
			if err := toLabel(i, math.Float64frombits(order.Uint64(raw[i*8:]))); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported NIfTI datatype %d", datatype)
	}

	return labels, nil
}

// Dims returns the x, y, z extents of the volume.
func (v *LabelVolume) Dims() (width, height, depth int) {
	return v.width, v.height, v.depth
}

// Label returns the label code at (x, y, z). Callers must stay in bounds.
func (v *LabelVolume) Label(x, y, z int) uint8 {
	return v.labels[z*v.width*v.height+y*v.width+x]
}

// MaskSlice binarizes one z slice: voxels with label >= threshold become
// foreground. With the LiTS labels a threshold of 1 merges tumor voxels
// into the liver mask, which is the behavior the original dataset tooling
// uses before boundary extraction.
func (v *LabelVolume) MaskSlice(z int, threshold uint8) (*grid.Binary, error) {
	if z < 0 || z >= v.depth {
		return nil, fmt.Errorf("slice %d out of range [0,%d)", z, v.depth)
	}
	return grid.FromFunc(v.height, v.width, func(row, col int) bool {
		return v.Label(col, row, z) >= threshold
	})
}
