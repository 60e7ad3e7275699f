package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// NewCausticGlassScene creates a glass sphere above a matte floor, lit from
// above so that refracted light gathers into a caustic below it
func NewCausticGlassScene(logger core.Logger) (*Scene, error) {
	s := New("caustics", logger)
	s.Camera = CameraConfig{
		Center:      core.NewVec3(0, 4, -8),
		LookAt:      core.NewVec3(0, 0.5, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40.0,
		AspectRatio: 4.0 / 3.0,
	}
	s.Background = core.NewVec3(0.2, 0.2, 0.2)

	floor := s.AddMaterial(material.NewMatte(core.NewVec3(0.8, 0.8, 0.8)))
	backdrop := s.AddMaterial(material.NewMatte(core.NewVec3(0.3, 0.4, 0.6)))
	glass := s.AddMaterial(material.NewGlass(1.5))
	red := s.AddMaterial(material.NewMatte(core.NewVec3(0.7, 0.1, 0.1)))

	var tris []geometry.Triangle
	tris = append(tris, NewGroundQuad(core.NewVec3(0, 0, 0), 12, floor)...)
	tris = append(tris, QuadTriangles(
		core.NewVec3(-6, 0, 4), core.NewVec3(0, 6, 0), core.NewVec3(12, 0, 0), backdrop)...)
	if err := s.AddMesh(tris); err != nil {
		return nil, err
	}

	s.AddSphere(geometry.NewSphere(core.NewVec3(0, 1.2, 0), 1.0, glass))
	s.AddSphere(geometry.NewSphere(core.NewVec3(-2.2, 0.6, 1.5), 0.6, red))

	s.SetLights([]lights.Light{
		lights.NewPointLight(core.NewVec3(0.5, 5, -0.5), core.NewVec3(30, 30, 30)),
	})
	return s, nil
}
