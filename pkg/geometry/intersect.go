package geometry

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

const (
	// TriangleEpsilon bounds the determinant and the accepted hit range (ε, 1/ε)
	TriangleEpsilon = 1e-6
	// SphereEpsilon is the minimum accepted sphere hit distance
	SphereEpsilon = 0.001
)

// IntersectTriangle tests a ray against a triangle using the Möller-Trumbore
// algorithm. It returns the hit distance, or +Inf when there is no hit.
//
// The upper bound 1/ε rejects far hits that become spuriously close when the
// ray direction is not unit length.
func IntersectTriangle(ray core.Ray, v0, v1, v2 core.Vec3) float64 {
	miss := math.Inf(1)

	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)

	// Ray parallel to the triangle plane
	if det > -TriangleEpsilon && det < TriangleEpsilon {
		return miss
	}

	f := 1.0 / det
	s := ray.Origin.Subtract(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return miss
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return miss
	}

	t := f * edge2.Dot(q)
	if t <= TriangleEpsilon || t >= 1.0/TriangleEpsilon {
		return miss
	}
	return t
}

// IntersectSphere tests a ray against a sphere using the geometric
// formulation: project the center onto the ray and compare the perpendicular
// distance with the radius. It returns the nearest distance above
// SphereEpsilon, which is the far root when the origin is inside the sphere,
// or +Inf when there is no hit.
func IntersectSphere(ray core.Ray, center core.Vec3, radius float64) float64 {
	miss := math.Inf(1)
	if radius <= 0 {
		return miss
	}

	dd := ray.Direction.LengthSquared()
	if dd == 0 {
		return miss
	}

	toCenter := center.Subtract(ray.Origin)
	tca := toCenter.Dot(ray.Direction) / dd
	perp2 := toCenter.LengthSquared() - tca*tca*dd
	r2 := radius * radius
	if perp2 > r2 {
		return miss
	}

	thc := math.Sqrt((r2 - perp2) / dd)
	if t := tca - thc; t > SphereEpsilon {
		return t
	}
	if t := tca + thc; t > SphereEpsilon {
		return t
	}
	return miss
}
