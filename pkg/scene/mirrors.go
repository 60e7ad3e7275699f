package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// NewMirrorChainScene places two parallel mirrors at z=-5 and z=5 facing each
// other, with a matte sphere and a point light between them. A camera at the
// origin looking slightly off axis sees the sphere only through reflections.
func NewMirrorChainScene(logger core.Logger) (*Scene, error) {
	s := New("mirrors", logger)
	s.Camera = CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0.2, 0, 1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        50.0,
		AspectRatio: 1.0,
	}
	s.Background = core.NewVec3(0.05, 0.05, 0.08)

	mirror := s.AddMaterial(material.NewMirror(core.NewVec3(0.9, 0.9, 0.9)))
	matte := s.AddMaterial(material.NewMatte(core.NewVec3(0.8, 0.2, 0.2)))

	const half = 20.0
	var tris []geometry.Triangle
	tris = append(tris, QuadTriangles(
		core.NewVec3(-half, -half, 5), core.NewVec3(2*half, 0, 0), core.NewVec3(0, 2*half, 0), mirror)...)
	tris = append(tris, QuadTriangles(
		core.NewVec3(-half, -half, -5), core.NewVec3(0, 2*half, 0), core.NewVec3(2*half, 0, 0), mirror)...)
	if err := s.AddMesh(tris); err != nil {
		return nil, err
	}

	s.AddSphere(geometry.NewSphere(core.NewVec3(2, 0, 0), 0.5, matte))
	s.SetLights([]lights.Light{
		lights.NewPointLight(core.NewVec3(2, 0, 3), core.NewVec3(5, 5, 5)),
	})
	return s, nil
}
