package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/df07/go-photon-tracer/pkg/core"
)

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// channel maps a linear value to 8 bits as clamp(int(c*256), 0, 255).
// NaN maps to 0.
func channel(c float64) uint32 {
	if math.IsNaN(c) {
		return 0
	}
	// Clamp in float first; int conversion of out-of-range floats is undefined
	return uint32(clamp(int(clamp(c*256, -1, 256)), 0, 255))
}

// Tonemap packs a linear color as b<<16 | g<<8 | r
func Tonemap(c core.Vec3) uint32 {
	return channel(c.Z)<<16 | channel(c.Y)<<8 | channel(c.X)
}

// PixelBuffer holds a rendered frame as packed 8-bit pixels, row-major from
// the top-left
type PixelBuffer struct {
	Width  int
	Height int
	Pixels []uint32
}

// NewPixelBuffer creates a black frame
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{Width: width, Height: height, Pixels: make([]uint32, width*height)}
}

// Set tonemaps and stores a color
func (pb *PixelBuffer) Set(x, y int, c core.Vec3) {
	pb.Pixels[y*pb.Width+x] = Tonemap(c)
}

// At returns the packed pixel at (x, y)
func (pb *PixelBuffer) At(x, y int) uint32 {
	return pb.Pixels[y*pb.Width+x]
}

// Image converts the frame to an opaque RGBA image
func (pb *PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pb.Width, pb.Height))
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			p := pb.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(p),
				G: uint8(p >> 8),
				B: uint8(p >> 16),
				A: 255,
			})
		}
	}
	return img
}
