package lights

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// DirectionalLight is a light at infinity arriving from a fixed direction
type DirectionalLight struct {
	Direction core.Vec3 // Direction the light travels
	Radiance  core.Vec3
}

// NewDirectionalLight creates a directional light travelling along direction
func NewDirectionalLight(direction, radiance core.Vec3) *DirectionalLight {
	return &DirectionalLight{Direction: direction.Normalize(), Radiance: radiance}
}

// Type implements the Light interface
func (dl *DirectionalLight) Type() LightType {
	return LightTypeDirectional
}

// Illuminate implements the Light interface. There is no distance falloff.
func (dl *DirectionalLight) Illuminate(point core.Vec3) LightSample {
	return LightSample{
		Direction: dl.Direction.Negate(),
		Distance:  math.Inf(1),
		Radiance:  dl.Radiance,
	}
}
