package geometry

import (
	"github.com/df07/go-photon-tracer/pkg/core"
)

// Sphere is an analytic primitive tested alongside the hierarchy, never inserted into it
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material int
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material int) Sphere {
	return Sphere{Center: center, Radius: radius, Material: material}
}

// Intersect returns the hit distance along ray, or +Inf
func (s Sphere) Intersect(ray core.Ray) float64 {
	return IntersectSphere(ray, s.Center, s.Radius)
}

// NormalAt returns the outward unit normal at a surface point
func (s Sphere) NormalAt(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Multiply(1.0 / s.Radius)
}

// Bounds returns the sphere's bounding box
func (s Sphere) Bounds() core.AABB {
	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}
