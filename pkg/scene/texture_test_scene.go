package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// NewTextureTestScene lays out procedurally textured quads in a row on a checkered floor
func NewTextureTestScene(logger core.Logger) (*Scene, error) {
	s := New("textured", logger)
	s.Camera = CameraConfig{
		Center:      core.NewVec3(0, 2, -10),
		LookAt:      core.NewVec3(0, 1, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        50.0,
		AspectRatio: 16.0 / 9.0,
	}
	s.Background = core.NewVec3(0.1, 0.1, 0.1)

	s.SetTextures([]*material.Texture{
		material.NewCheckerboardTexture(256, 256, 32,
			core.NewVec3(0.9, 0.9, 0.9), core.NewVec3(0.2, 0.2, 0.8)),
		material.NewGradientTexture(256, 256,
			core.NewVec3(1.0, 0.2, 0.2), core.NewVec3(0.2, 1.0, 0.2)),
		material.NewUVDebugTexture(256, 256),
	})

	checker := s.AddMaterial(material.NewTexturedMatte(0))
	gradient := s.AddMaterial(material.NewTexturedMatte(1))
	uvDebug := s.AddMaterial(material.NewTexturedMatte(2))

	var tris []geometry.Triangle
	tris = append(tris, NewGroundQuad(core.NewVec3(0, 0, 0), 20, checker)...)
	for i, mat := range []int{gradient, uvDebug, checker} {
		corner := core.NewVec3(-4.5+float64(i)*3.5, 0.2, 1)
		tris = append(tris, QuadTriangles(corner, core.NewVec3(2.5, 0, 0), core.NewVec3(0, 2.5, 0), mat)...)
	}
	if err := s.AddMesh(tris); err != nil {
		return nil, err
	}

	s.SetLights([]lights.Light{
		lights.NewPointLight(core.NewVec3(0, 8, -4), core.NewVec3(60, 60, 60)),
	})
	return s, nil
}
