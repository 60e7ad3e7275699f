package material

import (
	"github.com/df07/go-photon-tracer/pkg/core"
)

// NewProceduralTexture fills a width x height texture from a per-texel function
func NewProceduralTexture(width, height int, texel func(x, y int) core.Vec3) *Texture {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = texel(x, y)
		}
	}
	return NewTexture(width, height, pixels)
}

// NewCheckerboardTexture creates a checkerboard with square checks of checkSize texels
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *Texture {
	checkSize = max(1, checkSize)
	return NewProceduralTexture(width, height, func(x, y int) core.Vec3 {
		if (x/checkSize+y/checkSize)%2 == 0 {
			return color1
		}
		return color2
	})
}

// NewUVDebugTexture maps U to red and V to green
func NewUVDebugTexture(width, height int) *Texture {
	return NewProceduralTexture(width, height, func(x, y int) core.Vec3 {
		u := float64(x) / float64(max(1, width-1))
		v := float64(y) / float64(max(1, height-1))
		return core.NewVec3(u, v, 0.0)
	})
}

// NewGradientTexture creates a vertical gradient from color1 (top row) to color2 (bottom row)
func NewGradientTexture(width, height int, color1, color2 core.Vec3) *Texture {
	return NewProceduralTexture(width, height, func(x, y int) core.Vec3 {
		t := float64(y) / float64(max(1, height-1))
		return color1.Multiply(1.0 - t).Add(color2.Multiply(t))
	})
}
