package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// NewCornellScene creates a Cornell box with a mirror sphere, a glass sphere
// and a point light below the ceiling
func NewCornellScene(logger core.Logger) (*Scene, error) {
	s := New("cornell", logger)
	s.Camera = CameraConfig{
		Center:      core.NewVec3(5, 5, -13.5), // Outside the open front of the box
		LookAt:      core.NewVec3(5, 5, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40.0,
		AspectRatio: 1.0,
	}

	white := s.AddMaterial(material.NewMatte(core.NewVec3(0.73, 0.73, 0.73)))
	red := s.AddMaterial(material.NewMatte(core.NewVec3(0.65, 0.05, 0.05)))
	green := s.AddMaterial(material.NewMatte(core.NewVec3(0.12, 0.45, 0.15)))
	mirror := s.AddMaterial(material.NewMirror(core.NewVec3(0.9, 0.9, 0.9)))
	glass := s.AddMaterial(material.NewGlass(1.5))

	const boxSize = 10.0
	x := core.NewVec3(boxSize, 0, 0)
	y := core.NewVec3(0, boxSize, 0)
	z := core.NewVec3(0, 0, boxSize)
	origin := core.NewVec3(0, 0, 0)

	// Floor, ceiling, back, left (red), right (green), then a tall block
	var walls []geometry.Triangle
	walls = append(walls, QuadTriangles(origin, x, z, white)...)
	walls = append(walls, QuadTriangles(y, z, x, white)...)
	walls = append(walls, QuadTriangles(z, y, x, white)...)
	walls = append(walls, QuadTriangles(origin, y, z, red)...)
	walls = append(walls, QuadTriangles(x, z, y, green)...)
	walls = append(walls, BoxTriangles(core.NewVec3(5.8, 0, 5.5), core.NewVec3(8.2, 4, 7.9), white)...)

	if err := s.AddMesh(walls); err != nil {
		return nil, err
	}

	s.AddSphere(geometry.NewSphere(core.NewVec3(3, 1.8, 6.5), 1.8, mirror))
	s.AddSphere(geometry.NewSphere(core.NewVec3(6, 1.5, 2.5), 1.5, glass))

	s.SetLights([]lights.Light{
		lights.NewPointLight(core.NewVec3(5, 9.5, 5), core.NewVec3(40, 40, 40)),
	})
	return s, nil
}
