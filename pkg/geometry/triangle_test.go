package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-photon-tracer/pkg/core"
)

func TestTriangle_BoundsAndCentroid(t *testing.T) {
	tri := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(3, 0, 0), core.NewVec3(0, 3, -3), 2)

	bounds := tri.Bounds()
	if bounds.Min != core.NewVec3(0, 0, -3) || bounds.Max != core.NewVec3(3, 3, 0) {
		t.Errorf("Unexpected bounds %+v", bounds)
	}
	if c := tri.Centroid(); !c.Equals(core.NewVec3(1, 1, -1), 1e-12) {
		t.Errorf("Expected centroid (1,1,-1), got %v", c)
	}
	if tri.Material != 2 {
		t.Errorf("Expected material index 2, got %d", tri.Material)
	}
}

func TestTriangle_Normal(t *testing.T) {
	tri := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), 0)
	if !tri.Normal.Equals(core.NewVec3(0, 0, 1), 1e-12) {
		t.Errorf("Expected normal (0,0,1), got %v", tri.Normal)
	}
}

func TestTriangle_Barycentric(t *testing.T) {
	tri := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), 0)

	tests := []struct {
		name  string
		point core.Vec3
		w     [3]float64
	}{
		{"Vertex 0", core.NewVec3(0, 0, 0), [3]float64{1, 0, 0}},
		{"Vertex 1", core.NewVec3(1, 0, 0), [3]float64{0, 1, 0}},
		{"Vertex 2", core.NewVec3(0, 1, 0), [3]float64{0, 0, 1}},
		{"Edge midpoint", core.NewVec3(0.5, 0.5, 0), [3]float64{0, 0.5, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w0, w1, w2 := tri.Barycentric(tt.point)
			got := [3]float64{w0, w1, w2}
			for i := range got {
				if math.Abs(got[i]-tt.w[i]) > 1e-12 {
					t.Errorf("Expected weights %v, got %v", tt.w, got)
					break
				}
			}
		})
	}
}

func TestTriangle_UVAt(t *testing.T) {
	tri := NewTriangleWithUV(
		core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0),
		core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(0, 1),
		0,
	)

	uv := tri.UVAt(core.NewVec3(1, 0.5, 0))
	if math.Abs(uv.X-0.5) > 1e-12 || math.Abs(uv.Y-0.25) > 1e-12 {
		t.Errorf("Expected uv (0.5, 0.25), got %+v", uv)
	}
}

func TestTriangle_DegenerateNeverHits(t *testing.T) {
	// Collinear vertices
	tri := NewTriangle(core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 1), core.NewVec3(2, 0, 1), 0)
	ray := core.NewRay(core.NewVec3(0.5, 0, 0), core.NewVec3(0, 0, 1))

	if got := tri.Intersect(ray); !math.IsInf(got, 1) {
		t.Errorf("Expected no hit on a zero-area triangle, got %v", got)
	}
	if tri.Area() != 0 {
		t.Errorf("Expected zero area, got %v", tri.Area())
	}
}
