package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
)

// QuadTriangles splits the parallelogram corner, corner+u, corner+u+v,
// corner+v into two triangles with UVs spanning [0,1]^2
func QuadTriangles(corner, u, v core.Vec3, material int) []geometry.Triangle {
	p0 := corner
	p1 := corner.Add(u)
	p2 := corner.Add(u).Add(v)
	p3 := corner.Add(v)

	return []geometry.Triangle{
		geometry.NewTriangleWithUV(p0, p1, p2,
			core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(1, 1), material),
		geometry.NewTriangleWithUV(p0, p2, p3,
			core.NewVec2(0, 0), core.NewVec2(1, 1), core.NewVec2(0, 1), material),
	}
}

// NewGroundQuad creates a horizontal square centered at center, facing up
func NewGroundQuad(center core.Vec3, size float64, material int) []geometry.Triangle {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u × v = (0,0,size) × (size,0,0) points along +Y
	return QuadTriangles(corner, core.NewVec3(0, 0, size), core.NewVec3(size, 0, 0), material)
}

// BoxTriangles returns the twelve triangles of an axis-aligned box
func BoxTriangles(min, max core.Vec3, material int) []geometry.Triangle {
	dx := core.NewVec3(max.X-min.X, 0, 0)
	dy := core.NewVec3(0, max.Y-min.Y, 0)
	dz := core.NewVec3(0, 0, max.Z-min.Z)

	var tris []geometry.Triangle
	tris = append(tris, QuadTriangles(min, dx, dy, material)...)
	tris = append(tris, QuadTriangles(min.Add(dz), dy, dx, material)...)
	tris = append(tris, QuadTriangles(min, dy, dz, material)...)
	tris = append(tris, QuadTriangles(min.Add(dx), dz, dy, material)...)
	tris = append(tris, QuadTriangles(min, dz, dx, material)...)
	tris = append(tris, QuadTriangles(min.Add(dy), dx, dz, material)...)
	return tris
}
