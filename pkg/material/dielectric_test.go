package material

import (
	"math"
	"testing"

	"github.com/df07/go-photon-tracer/pkg/core"
)

func TestReflect(t *testing.T) {
	in := core.NewVec3(1, -1, 0).Normalize()
	normal := core.NewVec3(0, 1, 0)

	got := Reflect(in, normal)
	expected := core.NewVec3(1, 1, 0).Normalize()
	if !got.Equals(expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestFresnel_NormalIncidence(t *testing.T) {
	// ((n1-n2)/(n1+n2))^2 = 0.04 for glass
	in := core.NewVec3(0, -1, 0)
	normal := core.NewVec3(0, 1, 0)

	kr := Fresnel(in, normal, 1.5)
	if math.Abs(kr-0.04) > 1e-12 {
		t.Errorf("Expected 0.04, got %v", kr)
	}

	// Leaving the medium at normal incidence gives the same reflectance
	kr = Fresnel(core.NewVec3(0, 1, 0), normal, 1.5)
	if math.Abs(kr-0.04) > 1e-12 {
		t.Errorf("Expected 0.04 when exiting, got %v", kr)
	}
}

func TestFresnel_GrazingApproachesOne(t *testing.T) {
	normal := core.NewVec3(0, 1, 0)
	previous := 0.0
	for _, angle := range []float64{0, 0.3, 0.6, 0.9, 1.2, 1.5} {
		in := core.NewVec3(math.Sin(angle), -math.Cos(angle), 0)
		kr := Fresnel(in, normal, 1.5)
		if kr < previous {
			t.Errorf("Expected reflectance to grow with angle, %v < %v at %v", kr, previous, angle)
		}
		if kr < 0 || kr > 1 {
			t.Errorf("Reflectance %v out of range at %v", kr, angle)
		}
		previous = kr
	}
	if previous < 0.5 {
		t.Errorf("Expected strong reflection at grazing angles, got %v", previous)
	}
}

func TestFresnel_CriticalAngle(t *testing.T) {
	const ior = 1.5
	critical := CriticalAngle(ior)
	normal := core.NewVec3(0, 1, 0)

	tests := []struct {
		name      string
		angle     float64
		expectTIR bool
	}{
		{"Well below critical", critical - 0.2, false},
		{"Just below critical", critical - 1e-6, false},
		{"Just above critical", critical + 1e-6, true},
		{"Well above critical", critical + 0.2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Inside the medium travelling outward: direction agrees with the normal
			in := core.NewVec3(math.Sin(tt.angle), math.Cos(tt.angle), 0)

			kr := Fresnel(in, normal, ior)
			_, ok := Refract(in, normal, ior)

			if tt.expectTIR {
				if kr != 1 {
					t.Errorf("Expected kr == 1 beyond the critical angle, got %v", kr)
				}
				if ok {
					t.Error("Expected refraction to fail beyond the critical angle")
				}
				return
			}
			if kr >= 1 {
				t.Errorf("Expected partial reflection below the critical angle, got %v", kr)
			}
			if !ok {
				t.Error("Expected refraction below the critical angle")
			}
		})
	}
}

func TestRefract_Snell(t *testing.T) {
	const ior = 1.5
	normal := core.NewVec3(0, 1, 0)
	theta1 := 0.5
	in := core.NewVec3(math.Sin(theta1), -math.Cos(theta1), 0)

	out, ok := Refract(in, normal, ior)
	if !ok {
		t.Fatal("Expected refraction when entering glass")
	}
	if math.Abs(out.Length()-1) > 1e-9 {
		t.Errorf("Expected unit refracted direction, got length %v", out.Length())
	}
	if out.Y >= 0 {
		t.Errorf("Expected refracted ray to continue into the surface, got %v", out)
	}

	// n1 sin θ1 = n2 sin θ2
	sin2 := math.Sqrt(out.X*out.X + out.Z*out.Z)
	if math.Abs(math.Sin(theta1)-ior*sin2) > 1e-9 {
		t.Errorf("Snell's law violated: sin1=%v, ior*sin2=%v", math.Sin(theta1), ior*sin2)
	}

	// Straight through at normal incidence
	out, _ = Refract(core.NewVec3(0, -1, 0), normal, ior)
	if !out.Equals(core.NewVec3(0, -1, 0), 1e-12) {
		t.Errorf("Expected undeviated ray at normal incidence, got %v", out)
	}
}
