package renderer

import (
	"image"

	"github.com/df07/go-photon-tracer/pkg/integrator"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	if tileSize <= 0 {
		tileSize = DefaultConfig().TileSize
	}

	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{ID: tileID, Bounds: image.Rect(x0, y0, x1, y1)})
			tileID++
		}
	}

	return tiles
}

// TileRenderer traces the pixels of a tile into a shared buffer
type TileRenderer struct {
	integrator integrator.Integrator
	view       View
}

// NewTileRenderer creates a tile renderer for one frame
func NewTileRenderer(integratorInst integrator.Integrator, view View) *TileRenderer {
	return &TileRenderer{integrator: integratorInst, view: view}
}

// RenderTileBounds traces every pixel inside bounds and writes the tonemapped
// result. Tiles do not overlap, so concurrent calls write disjoint pixels.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, buffer *PixelBuffer) int {
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ray := tr.view.Ray(i, j, buffer.Width, buffer.Height)
			buffer.Set(i, j, tr.integrator.Trace(ray))
		}
	}
	return bounds.Dx() * bounds.Dy()
}
