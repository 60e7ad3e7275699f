package integrator

import (
	"github.com/df07/go-photon-tracer/pkg/core"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Trace computes the radiance arriving along a camera ray
	Trace(ray core.Ray) core.Vec3
}

var _ Integrator = (*Whitted)(nil)
