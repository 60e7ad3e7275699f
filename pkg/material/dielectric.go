package material

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Reflect mirrors v about the surface normal n: r = v - 2*dot(v,n)*n
func Reflect(v, n core.Vec3) core.Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// Refract bends the incident direction through a surface with the given
// index of refraction using Snell's law. The normal may face either side;
// when the incident direction agrees with it the ray is leaving the medium
// and the indices are swapped. ok is false on total internal reflection.
func Refract(incident, normal core.Vec3, ior float64) (dir core.Vec3, ok bool) {
	cosi := math.Max(-1, math.Min(1, incident.Dot(normal)))
	n1, n2 := 1.0, ior
	n := normal
	if cosi < 0 {
		cosi = -cosi
	} else {
		n = normal.Negate()
		n1, n2 = n2, n1
	}

	eta := n1 / n2
	k := 1 - eta*eta*(1-cosi*cosi)
	if k < 0 {
		return core.Vec3{}, false
	}
	return incident.Multiply(eta).Add(n.Multiply(eta*cosi - math.Sqrt(k))), true
}

// Fresnel returns the fraction of light reflected at a dielectric boundary
// using the exact (unpolarized average) Fresnel equations. Total internal
// reflection returns 1.
func Fresnel(incident, normal core.Vec3, ior float64) float64 {
	cosi := math.Max(-1, math.Min(1, incident.Dot(normal)))
	n1, n2 := 1.0, ior
	if cosi > 0 {
		n1, n2 = n2, n1
	}

	sint := n1 / n2 * math.Sqrt(math.Max(0, 1-cosi*cosi))
	if sint >= 1 {
		return 1
	}

	cost := math.Sqrt(math.Max(0, 1-sint*sint))
	cosi = math.Abs(cosi)
	rs := (n2*cosi - n1*cost) / (n2*cosi + n1*cost)
	rp := (n1*cosi - n2*cost) / (n1*cosi + n2*cost)
	return (rs*rs + rp*rp) / 2
}

// CriticalAngle returns the angle from the normal beyond which light inside
// a medium of the given index is totally internally reflected
func CriticalAngle(ior float64) float64 {
	if ior <= 1 {
		return math.Pi / 2
	}
	return math.Asin(1 / ior)
}
