package lights

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-photon-tracer/pkg/core"
)

func TestPointLight_Illuminate(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 4, 0), core.NewVec3(16, 16, 16))

	tests := []struct {
		name     string
		point    core.Vec3
		distance float64
		radiance float64
	}{
		{"Directly below", core.NewVec3(0, 0, 0), 4, 1},
		{"Twice as far", core.NewVec3(0, -4, 0), 8, 0.25},
		{"Off axis", core.NewVec3(3, 0, 0), 5, 16.0 / 25.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := light.Illuminate(tt.point)
			if math.Abs(sample.Distance-tt.distance) > 1e-12 {
				t.Errorf("Expected distance %v, got %v", tt.distance, sample.Distance)
			}
			if math.Abs(sample.Radiance.X-tt.radiance) > 1e-12 {
				t.Errorf("Expected radiance %v, got %v", tt.radiance, sample.Radiance.X)
			}
			expectedDir := light.Position.Subtract(tt.point).Normalize()
			if !sample.Direction.Equals(expectedDir, 1e-12) {
				t.Errorf("Expected direction %v, got %v", expectedDir, sample.Direction)
			}
		})
	}
}

func TestPointLight_IlluminateAtLight(t *testing.T) {
	light := NewPointLight(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1))
	sample := light.Illuminate(core.NewVec3(1, 1, 1))
	if !sample.Radiance.IsZero() || sample.Radiance.HasNaN() {
		t.Errorf("Expected zero radiance at the light position, got %v", sample.Radiance)
	}
}

func TestDirectionalLight_NoFalloff(t *testing.T) {
	light := NewDirectionalLight(core.NewVec3(0, -2, 0), core.NewVec3(0.5, 0.5, 0.5))

	near := light.Illuminate(core.NewVec3(0, 0, 0))
	far := light.Illuminate(core.NewVec3(100, -100, 100))

	if near.Radiance != far.Radiance {
		t.Errorf("Expected identical radiance, got %v and %v", near.Radiance, far.Radiance)
	}
	if !math.IsInf(near.Distance, 1) {
		t.Errorf("Expected infinite shadow distance, got %v", near.Distance)
	}
	if !near.Direction.Equals(core.NewVec3(0, 1, 0), 1e-12) {
		t.Errorf("Expected direction toward the light (0,1,0), got %v", near.Direction)
	}
	if light.Type() != LightTypeDirectional {
		t.Errorf("Expected directional type, got %v", light.Type())
	}
}

func TestPointLight_EmitPhoton(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 5, 0), core.NewVec3(2, 2, 2))
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	var _ PhotonEmitter = light
	for i := 0; i < 100; i++ {
		ray, power := light.EmitPhoton(sampler.Get3D())
		if ray.Origin != light.Position {
			t.Fatalf("Expected photon to leave from the light, got %v", ray.Origin)
		}
		if math.Abs(ray.Direction.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit direction, got %v", ray.Direction)
		}
		if power != light.Radiance {
			t.Fatalf("Expected power %v, got %v", light.Radiance, power)
		}
	}
}
