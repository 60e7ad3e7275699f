package core

import "math"

// Axis selects one of the three coordinate axes
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the axis name
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the empty box. Its union with any box yields that box.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, point := range points {
		box = box.Extend(point)
	}
	return box
}

// IsEmpty reports whether the box contains no points
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X > aabb.Max.X ||
		aabb.Min.Y > aabb.Max.Y ||
		aabb.Min.Z > aabb.Max.Z
}

// Extend returns the box grown to include point
func (aabb AABB) Extend(point Vec3) AABB {
	return AABB{Min: aabb.Min.Min(point), Max: aabb.Max.Max(point)}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max)}
}

// Contains reports whether other lies entirely inside this box
func (aabb AABB) Contains(other AABB) bool {
	if other.IsEmpty() {
		return true
	}
	return aabb.Min.X <= other.Min.X && aabb.Min.Y <= other.Min.Y && aabb.Min.Z <= other.Min.Z &&
		aabb.Max.X >= other.Max.X && aabb.Max.Y >= other.Max.Y && aabb.Max.Z >= other.Max.Z
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB. The empty box has area 0;
// deriving it from the sentinel corners would give NaN or +Inf.
func (aabb AABB) SurfaceArea() float64 {
	if aabb.IsEmpty() {
		return 0
	}
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// LongestAxis returns the axis with the longest extent. Ties resolve to the lower axis.
func (aabb AABB) LongestAxis() Axis {
	size := aabb.Size()
	if size.X >= size.Y && size.X >= size.Z {
		return AxisX
	}
	if size.Y >= size.Z {
		return AxisY
	}
	return AxisZ
}

// IntersectRay performs the slab test using a precomputed inverse direction.
// It returns the entry and exit distances and whether the interval is non-empty
// and not entirely behind the origin.
//
// Zero direction components produce infinite inverses. When the origin lies
// exactly on a slab plane the product is NaN; comparisons against NaN are
// false, so such a slab simply leaves the interval unchanged.
func (aabb AABB) IntersectRay(origin, invDir Vec3) (tNear, tFar float64, hit bool) {
	tNear = math.Inf(-1)
	tFar = math.Inf(1)

	for axis := AxisX; axis <= AxisZ; axis++ {
		o := origin.Axis(axis)
		inv := invDir.Axis(axis)
		t1 := (aabb.Min.Axis(axis) - o) * inv
		t2 := (aabb.Max.Axis(axis) - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
	}

	return tNear, tFar, tNear <= tFar && tFar >= 0
}

// Hit tests if a ray intersects with this AABB within [tMin, tMax]
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	tNear, tFar, hit := aabb.IntersectRay(ray.Origin, ray.Direction.Inverse())
	if !hit {
		return false
	}
	return tNear <= tMax && tFar >= tMin
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}
