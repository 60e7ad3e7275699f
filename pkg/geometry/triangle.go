package geometry

import (
	"github.com/df07/go-photon-tracer/pkg/core"
)

// Triangle is a mesh primitive: three vertex positions, a shading normal,
// per-vertex texture coordinates and an index into the scene material table
type Triangle struct {
	V0, V1, V2 core.Vec3
	Normal     core.Vec3
	UV         [3]core.Vec2
	Material   int
}

// NewTriangle creates a triangle whose shading normal is the geometric normal
func NewTriangle(v0, v1, v2 core.Vec3, material int) Triangle {
	t := Triangle{V0: v0, V1: v1, V2: v2, Material: material}
	t.Normal = t.GeometricNormal()
	return t
}

// NewTriangleWithUV creates a triangle with texture coordinates
func NewTriangleWithUV(v0, v1, v2 core.Vec3, uv0, uv1, uv2 core.Vec2, material int) Triangle {
	t := NewTriangle(v0, v1, v2, material)
	t.UV = [3]core.Vec2{uv0, uv1, uv2}
	return t
}

// GeometricNormal returns the normalized cross product of the two edges
func (t Triangle) GeometricNormal() core.Vec3 {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	return edge1.Cross(edge2).Normalize()
}

// Bounds returns the triangle's bounding box
func (t Triangle) Bounds() core.AABB {
	return core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

// Centroid returns the average of the three vertices
func (t Triangle) Centroid() core.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Multiply(1.0 / 3.0)
}

// Area returns the triangle's surface area
func (t Triangle) Area() float64 {
	return t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Length() * 0.5
}

// Intersect returns the hit distance along ray, or +Inf
func (t Triangle) Intersect(ray core.Ray) float64 {
	return IntersectTriangle(ray, t.V0, t.V1, t.V2)
}

// Barycentric returns the weights (w0, w1, w2) of point p with respect to
// the three vertices. Degenerate triangles return (1, 0, 0).
func (t Triangle) Barycentric(p core.Vec3) (w0, w1, w2 float64) {
	e0 := t.V1.Subtract(t.V0)
	e1 := t.V2.Subtract(t.V0)
	e2 := p.Subtract(t.V0)

	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d11 := e1.Dot(e1)
	d20 := e2.Dot(e0)
	d21 := e2.Dot(e1)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 1, 0, 0
	}
	w1 = (d11*d20 - d01*d21) / denom
	w2 = (d00*d21 - d01*d20) / denom
	return 1 - w1 - w2, w1, w2
}

// PointAt returns the point with barycentric weights w1, w2 (w0 = 1-w1-w2)
func (t Triangle) PointAt(w1, w2 float64) core.Vec3 {
	return t.V0.Multiply(1 - w1 - w2).Add(t.V1.Multiply(w1)).Add(t.V2.Multiply(w2))
}

// UVAt interpolates the vertex texture coordinates at point p
func (t Triangle) UVAt(p core.Vec3) core.Vec2 {
	w0, w1, w2 := t.Barycentric(p)
	return core.NewVec2(
		w0*t.UV[0].X+w1*t.UV[1].X+w2*t.UV[2].X,
		w0*t.UV[0].Y+w1*t.UV[1].Y+w2*t.UV[2].Y,
	)
}
