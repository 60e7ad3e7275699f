package scene

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to linear RGB clamped to [0, 1]
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS, then cube
	lc := l + 0.3963377774*a + 0.2158037573*b
	mc := l - 0.1055613458*a - 0.0638541728*b
	sc := l - 0.0894841775*a - 1.2914855480*b
	lc, mc, sc = lc*lc*lc, mc*mc*mc, sc*sc*sc

	rgb := core.NewVec3(
		+4.0767416621*lc-3.3077115913*mc+0.2309699292*sc,
		-1.2684380046*lc+2.6097574011*mc-0.3413193965*sc,
		-0.0041960863*lc-0.7034186147*mc+1.7076147010*sc,
	)
	return rgb.Clamp(0, 1)
}

// NewSphereGridScene creates a grid of spheres on a ground quad. Hue varies
// along X; every third sphere is a mirror and the diagonal is glass.
func NewSphereGridScene(logger core.Logger) (*Scene, error) {
	s := New("spheres", logger)
	s.Camera = CameraConfig{
		Center:      core.NewVec3(4.5, 6, 18),
		LookAt:      core.NewVec3(4.5, 0.8, 4.5),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40.0,
		AspectRatio: 16.0 / 9.0,
	}
	s.Background = core.NewVec3(0.5, 0.7, 1.0)

	ground := s.AddMaterial(material.NewMatte(core.NewVec3(0.5, 0.5, 0.5)))
	mirror := s.AddMaterial(material.NewMirror(core.NewVec3(0.85, 0.85, 0.85)))
	glass := s.AddMaterial(material.NewGlass(1.5))

	if err := s.AddMesh(NewGroundQuad(core.NewVec3(4.5, 0, 4.5), 30, ground)); err != nil {
		return nil, err
	}

	const gridSize = 8
	const targetArea = 9.0
	spacing := targetArea / float64(gridSize-1)
	radius := spacing * 0.35

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			var mat int
			switch {
			case i == j:
				mat = glass
			case (i+j)%3 == 0:
				mat = mirror
			default:
				hue := float64(i) / float64(gridSize-1) * 360.0
				chroma := 0.05 + float64(j)/float64(gridSize-1)*0.2
				mat = s.AddMaterial(material.NewMatte(oklchToRGB(0.65, chroma, hue)))
			}
			s.AddSphere(geometry.NewSphere(core.NewVec3(x, radius, z), radius, mat))
		}
	}

	s.SetLights([]lights.Light{
		lights.NewPointLight(core.NewVec3(10, 12, 10), core.NewVec3(150, 145, 130)),
		lights.NewDirectionalLight(core.NewVec3(-0.3, -1, -0.4), core.NewVec3(0.3, 0.3, 0.35)),
	})
	return s, nil
}
