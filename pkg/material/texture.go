package material

import (
	"github.com/df07/go-photon-tracer/pkg/core"
)

// Texture is a row-major image table sampled by UV coordinates
type Texture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Pixels[y*Width + x]
}

// NewTexture creates a texture from linear colors
func NewTexture(width, height int, pixels []core.Vec3) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// NewTextureFromBytes creates a texture from 8-bit RGBA data, scaling each
// channel by 1/255. Alpha is ignored.
func NewTextureFromBytes(width, height int, rgba []byte) *Texture {
	const inv = 1.0 / 255
	pixels := make([]core.Vec3, width*height)
	for i := range pixels {
		o := i * 4
		if o+2 >= len(rgba) {
			break
		}
		pixels[i] = core.NewVec3(float64(rgba[o])*inv, float64(rgba[o+1])*inv, float64(rgba[o+2])*inv)
	}
	return NewTexture(width, height, pixels)
}

// Sample returns the nearest texel for uv. Coordinates wrap to [0, 1);
// V=0 is the bottom row.
func (t *Texture) Sample(uv core.Vec2) core.Vec3 {
	if t == nil || len(t.Pixels) == 0 || t.Width <= 0 || t.Height <= 0 {
		return core.Vec3{}
	}

	u := uv.X - float64(int(uv.X))
	v := uv.Y - float64(int(uv.Y))
	if u < 0 {
		u += 1.0
	}
	if v < 0 {
		v += 1.0
	}

	x := int(u * float64(t.Width))
	y := int((1.0 - v) * float64(t.Height))

	x = max(0, min(t.Width-1, x))
	y = max(0, min(t.Height-1, y))

	idx := y*t.Width + x
	if idx >= len(t.Pixels) {
		idx = len(t.Pixels) - 1
	}
	return t.Pixels[idx]
}
