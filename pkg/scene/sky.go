package scene

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Sky is an equirectangular environment table looked up by ray direction
type Sky struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewSky creates a sky from row-major pixels
func NewSky(width, height int, pixels []core.Vec3) *Sky {
	return &Sky{Width: width, Height: height, Pixels: pixels}
}

// Sample returns the texel seen along a unit direction.
// u = 1 + atan2(x, -z)/π spans [0, 2) across the width; v = acos(y)/π spans
// the height from the zenith down.
func (s *Sky) Sample(direction core.Vec3) core.Vec3 {
	if len(s.Pixels) == 0 || s.Width <= 0 || s.Height <= 0 {
		return core.Vec3{}
	}

	u := 1 + math.Atan2(direction.X, -direction.Z)/math.Pi
	v := math.Acos(math.Max(-1, math.Min(1, direction.Y))) / math.Pi

	// u == 2 wraps to column 0; v == 1 stays on the bottom row
	x := int(float64(s.Width)*0.5*u) % s.Width
	y := min(int(float64(s.Height)*v), s.Height-1)
	idx := max(0, y)*s.Width + max(0, x)

	return s.Pixels[min(len(s.Pixels)-1, idx)]
}
