package lights

import "github.com/df07/go-photon-tracer/pkg/core"

type LightType string

const (
	LightTypePoint       LightType = "point"
	LightTypeDirectional LightType = "directional"
)

// Light interface for sources evaluated by direct illumination
type Light interface {
	Type() LightType

	// Illuminate returns the direction FROM point TO the light, the distance
	// a shadow ray must travel, and the radiance arriving at point
	// (falloff included)
	Illuminate(point core.Vec3) LightSample
}

// LightSample contains what a shading point sees of one light
type LightSample struct {
	Direction core.Vec3 // Unit direction from shading point to light
	Distance  float64   // Shadow ray length, +Inf for directional lights
	Radiance  core.Vec3 // Radiance arriving at the shading point
}

// PhotonEmitter is implemented by lights that seed the photon map
type PhotonEmitter interface {
	// EmitPhoton returns a ray leaving the light and the photon's power for a
	// given 3D sample
	EmitPhoton(sample core.Vec3) (core.Ray, core.Vec3)
}
