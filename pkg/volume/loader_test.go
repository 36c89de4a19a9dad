package volume

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLabelFile(t *testing.T, dir, name string, nz int) {
	t.Helper()
	voxels := make([]byte, 2*2*nz)
	voxels[0] = 1
	data := encodeNifti(t, binary.LittleEndian, 2, 2, nz, dtUint8, 8, voxels)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func TestLoaderDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeLabelFile(t, dir, "segmentation-2.nii", 1)
	writeLabelFile(t, dir, "segmentation-0.nii", 1)
	writeLabelFile(t, dir, "segmentation-10.nii", 1)
	// Files that must be ignored by the naming pattern.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "volume-1.nii"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	loader, err := NewLoader(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, loader.VolumeCount())

	// Numeric index order, not lexicographic.
	indices := make([]int, 0, len(loader.files))
	for _, f := range loader.files {
		indices = append(indices, f.index)
	}
	assert.Equal(t, []int{0, 2, 10}, indices)

	limited, err := NewLoader(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, limited.VolumeCount())
}

func TestLoaderErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "nope"), 0)
		assert.Error(t, err)
	})

	t.Run("no volumes", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
		_, err := NewLoader(dir, 0)
		assert.Error(t, err)
	})
}

// TestLoadSkipsUndecodable verifies an input error is per-volume, never
// fatal to the batch.
func TestLoadSkipsUndecodable(t *testing.T) {
	dir := t.TempDir()
	writeLabelFile(t, dir, "segmentation-0.nii", 3)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "segmentation-1.nii"), []byte("garbage"), 0644))
	writeLabelFile(t, dir, "segmentation-2.nii", 2)

	loader, err := NewLoader(dir, 0)
	require.NoError(t, err)
	require.Equal(t, 3, loader.VolumeCount())

	slices := loader.Load(1, zerolog.Nop())
	// Volumes 0 and 2 contribute 3+2 slices; volume 1 is skipped.
	require.Len(t, slices, 5)

	for _, s := range slices {
		assert.NotEqual(t, 1, s.Volume)
		assert.NotNil(t, s.Grid)
	}
	assert.Equal(t, "segmentation-0/slice-0", slices[0].ID())
	assert.Equal(t, 1, slices[0].Grid.ForegroundCount())
}

func TestResolveRoot(t *testing.T) {
	t.Run("explicit config wins", func(t *testing.T) {
		t.Setenv(envLabelDir, "/from/env")
		root, err := ResolveRoot("/explicit")
		require.NoError(t, err)
		assert.Equal(t, "/explicit", root)
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv(envLabelDir, "/from/env")
		root, err := ResolveRoot("")
		require.NoError(t, err)
		assert.Equal(t, "/from/env", root)
	})

	t.Run("home convention", func(t *testing.T) {
		t.Setenv(envLabelDir, "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		root, err := ResolveRoot("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "dataset", "train", "label"), root)
	})
}
