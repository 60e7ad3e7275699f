package renderer

import "time"

// CoreStats are wall-clock timings and counts for the last render
type CoreStats struct {
	RenderTime    time.Duration // Time spent in the last Render call
	BVHBuildTime  time.Duration // Total hierarchy build time over all meshes
	PhotonTime    time.Duration // Time spent seeding the photon map
	TriangleCount int
	PhotonCount   int
	CausticCount  int
}

// RenderStats summarises one frame
type RenderStats struct {
	Width       int
	Height      int
	TotalPixels int // Pixels traced, excluding failed tiles
	Tiles       int
	FailedTiles int
	Workers     int
}

// add folds one tile's result into the frame totals
func (rs *RenderStats) add(result TileResult) {
	if result.Error != nil {
		rs.FailedTiles++
		return
	}
	rs.TotalPixels += result.Pixels
}
