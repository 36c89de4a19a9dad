package visualization

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"ctcontour/internal/models"
	"ctcontour/pkg/contour"
	"ctcontour/pkg/grid"
)

func testGrid(t *testing.T) *grid.Binary {
	t.Helper()
	g, err := grid.FromFunc(3, 3, func(r, c int) bool {
		return r == 1 // middle row foreground
	})
	if err != nil {
		t.Fatalf("FromFunc: %v", err)
	}
	return g
}

// TestRenderColors verifies each pixel class gets its own color
func TestRenderColors(t *testing.T) {
	g := testGrid(t)
	set, err := contour.NewDenseScan().Extract(g)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	img := NewOverlay(g, set).Render()

	bounds := img.Bounds()
	if bounds.Dx() != 3 || bounds.Dy() != 3 {
		t.Fatalf("expected 3x3 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	// The whole middle row is contour (every pixel touches background).
	if img.At(1, 1) != contourColor {
		t.Errorf("expected contour color at (1,1), got %v", img.At(1, 1))
	}
	if img.At(1, 0) != backgroundColor {
		t.Errorf("expected background color at (1,0), got %v", img.At(1, 0))
	}
}

// TestSaveSequence verifies one PNG per slice lands in the output directory
func TestSaveSequence(t *testing.T) {
	g := testGrid(t)
	slices := []models.Slice{
		{Grid: g, Volume: 3, Index: 0},
		{Grid: g, Volume: 3, Index: 1},
	}

	dir := filepath.Join(t.TempDir(), "overlays")
	if err := SaveSequence(slices, contour.NewDenseScan(), dir); err != nil {
		t.Fatalf("SaveSequence: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading output dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 overlay files, got %d", len(entries))
	}

	f, err := os.Open(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("opening overlay: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("overlay is not a decodable PNG: %v", err)
	}
}
