package lights

import (
	"github.com/df07/go-photon-tracer/pkg/core"
)

// PointLight emits equally in all directions from a single position
type PointLight struct {
	Position core.Vec3
	Radiance core.Vec3
}

// NewPointLight creates a new point light
func NewPointLight(position, radiance core.Vec3) *PointLight {
	return &PointLight{Position: position, Radiance: radiance}
}

// Type implements the Light interface
func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// Illuminate implements the Light interface with inverse-square falloff
func (pl *PointLight) Illuminate(point core.Vec3) LightSample {
	toLight := pl.Position.Subtract(point)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		// Shading point coincides with the light
		return LightSample{Direction: core.NewVec3(0, 1, 0)}
	}

	distance := toLight.Length()
	return LightSample{
		Direction: toLight.Multiply(1 / distance),
		Distance:  distance,
		Radiance:  pl.Radiance.Multiply(1 / dist2),
	}
}

// EmitPhoton implements PhotonEmitter. Directions come from the normalized
// cube sample, which is not uniform over the sphere.
func (pl *PointLight) EmitPhoton(sample core.Vec3) (core.Ray, core.Vec3) {
	return core.NewRay(pl.Position, core.SampleCubeDirection(sample)), pl.Radiance
}
