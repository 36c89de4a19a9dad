// Package visualization renders binary mask slices with their extracted
// contours highlighted, for eyeballing algorithm output. It is debug
// tooling outside the timed path of the ablation batch.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"ctcontour/internal/models"
	"ctcontour/pkg/contour"
	"ctcontour/pkg/grid"
)

var (
	backgroundColor = color.RGBA{R: 16, G: 16, B: 16, A: 255}
	foregroundColor = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	contourColor    = color.RGBA{R: 220, G: 40, B: 40, A: 255}
)

// Overlay renders one mask slice with its contour set highlighted.
type Overlay struct {
	grid *grid.Binary
	set  contour.Set
}

// NewOverlay creates an overlay renderer for one slice.
func NewOverlay(g *grid.Binary, set contour.Set) *Overlay {
	return &Overlay{grid: g, set: set}
}

// Render produces the overlay image: dark background, gray foreground,
// contour pixels in red.
func (o *Overlay) Render() image.Image {
	height, width := o.grid.Dims()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, backgroundColor)
		}
	}
	for c := range o.grid.Foreground() {
		img.Set(c.Col, c.Row, foregroundColor)
	}
	for _, c := range o.set.Coordinates() {
		img.Set(c.Col, c.Row, contourColor)
	}

	return img
}

// Save writes the rendered overlay as a PNG file.
func (o *Overlay) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, o.Render())
}

// SaveSequence extracts and saves an overlay for every slice in the batch,
// using the provided extractor for the contour sets.
func SaveSequence(slices []models.Slice, extractor contour.Extractor, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for _, slice := range slices {
		set, err := extractor.Extract(slice.Grid)
		if err != nil {
			return fmt.Errorf("extracting contour for %s: %w", slice.ID(), err)
		}

		filename := filepath.Join(outputDir,
			fmt.Sprintf("segmentation-%03d_slice_%04d.png", slice.Volume, slice.Index))
		if err := NewOverlay(slice.Grid, set).Save(filename); err != nil {
			return fmt.Errorf("saving overlay for %s: %w", slice.ID(), err)
		}
	}

	return nil
}
