package loaders

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

const testSceneYAML = `
name: yaml-test
camera:
  center: [0, 2, -8]
  look_at: [0, 0.5, 0]
  vfov: 45
background: [0.1, 0.2, 0.3]
textures:
  - checkerboard: {width: 8, height: 8, check_size: 2, color1: [1, 1, 1], color2: [0, 0, 0]}
  - file: tex.png
materials:
  - {name: floor, type: matte, texture: 0}
  - {name: chrome, type: mirror, color: [0.9, 0.9, 0.9]}
  - {name: crystal, type: glass, ior: 1.33}
  - {name: legacy, specular: 1.0, color: [0.5, 0.5, 0.5]}
  - {name: plain}
meshes:
  - material: floor
    ground: {center: [0, 0, 0], size: 10}
  - material: plain
    boxes:
      - {min: [1, 0, 1], max: [2, 1, 2]}
    quads:
      - {corner: [-3, 0, 3], u: [1, 0, 0], v: [0, 1, 0]}
    triangles:
      - {v0: [-1, 0, 4], v1: [1, 0, 4], v2: [0, 1, 4]}
spheres:
  - {center: [0, 1, 0], radius: 1, material: crystal}
  - {center: [2, 1, 0], radius: 0.5, material: chrome}
lights:
  - {type: point, position: [0, 5, 0], radiance: [20, 20, 20]}
  - {type: directional, direction: [0, -1, 0], radiance: [0.2, 0.2, 0.2]}
`

func writeScene(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}
	return path
}

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "tex.png"))
	path := writeScene(t, dir, testSceneYAML)

	s, err := LoadScene(path, nil)
	if err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}

	if s.Name != "yaml-test" {
		t.Errorf("Expected name yaml-test, got %q", s.Name)
	}
	if s.Camera.VFov != 45 || s.Camera.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Unexpected camera %+v", s.Camera)
	}
	if s.Background != core.NewVec3(0.1, 0.2, 0.3) {
		t.Errorf("Unexpected background %v", s.Background)
	}
	if len(s.Textures) != 2 || s.Textures[1].Width != 2 {
		t.Errorf("Expected two textures with the file texture second, got %d", len(s.Textures))
	}

	kinds := []material.Kind{material.Matte, material.Mirror, material.Glass, material.Mirror, material.Matte}
	if len(s.Materials) != len(kinds) {
		t.Fatalf("Expected %d materials, got %d", len(kinds), len(s.Materials))
	}
	for i, kind := range kinds {
		if s.Materials[i].Kind != kind {
			t.Errorf("Material %d: expected %v, got %v", i, kind, s.Materials[i].Kind)
		}
	}
	if s.Materials[0].TextureID != 0 || s.Materials[4].HasTexture() {
		t.Error("Expected only the floor to be textured")
	}
	if s.Materials[2].IOR != 1.33 {
		t.Errorf("Expected IOR 1.33, got %v", s.Materials[2].IOR)
	}

	// Ground (2) + box (12) + quad (2) + triangle (1)
	if s.TriangleCount() != 17 || len(s.Meshes) != 2 {
		t.Errorf("Expected 17 triangles in 2 meshes, got %d in %d", s.TriangleCount(), len(s.Meshes))
	}
	if len(s.Spheres) != 2 || s.Spheres[0].Material != 2 {
		t.Errorf("Unexpected spheres %+v", s.Spheres)
	}
	if len(s.Lights) != 2 || s.Lights[1].Type() != lights.LightTypeDirectional {
		t.Errorf("Unexpected lights %+v", s.Lights)
	}
}

func TestLoadScene_NameFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bare.yml")
	content := "camera: {center: [0, 0, 0], look_at: [0, 0, 1]}\nmaterials: []\nlights: []\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	s, err := LoadScene(path, nil)
	if err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}
	if s.Name != "bare" {
		t.Errorf("Expected name from file, got %q", s.Name)
	}
}

func TestLoadScene_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected error
	}{
		{
			name: "Unknown material reference",
			content: `
materials: [{name: a}]
spheres: [{center: [0, 0, 0], radius: 1, material: b}]
lights: [{type: point, position: [0, 1, 0], radiance: [1, 1, 1]}]
`,
			expected: ErrUnknownMaterial,
		},
		{
			name: "Duplicate material",
			content: `
materials: [{name: a}, {name: a}]
lights: [{type: point, position: [0, 1, 0], radiance: [1, 1, 1]}]
`,
			expected: ErrDuplicateName,
		},
		{
			name: "Unknown light",
			content: `
materials: [{name: a}]
lights: [{type: area, radiance: [1, 1, 1]}]
`,
			expected: ErrUnknownLightType,
		},
		{
			name: "Texture with two sources",
			content: `
textures: [{file: a.png, uv_debug: {width: 4, height: 4}}]
materials: []
lights: []
`,
			expected: ErrTextureSource,
		},
		{
			name: "Matte without lights",
			content: `
materials: [{name: a}]
lights: []
`,
			expected: scene.ErrNoLights,
		},
		{
			name: "Texture index out of range",
			content: `
materials: [{name: a, texture: 3}]
lights: [{type: point, position: [0, 1, 0], radiance: [1, 1, 1]}]
`,
			expected: scene.ErrTextureIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScene(t, t.TempDir(), tt.content)
			_, err := LoadScene(path, nil)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestParseSceneFile_RejectsUnknownFields(t *testing.T) {
	if _, err := ParseSceneFile([]byte("materials: []\nshininess: 3\n")); err == nil {
		t.Error("Expected an error for an unknown field")
	}
}

func TestLoadScene_MissingFile(t *testing.T) {
	if _, err := LoadScene(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestLoadScene_PLYMesh(t *testing.T) {
	dir := t.TempDir()
	ply := "ply\nformat ascii 1.0\nelement vertex 4\nproperty float x\nproperty float y\nproperty float z\n" +
		"element face 1\nproperty list uchar int vertex_indices\nend_header\n" +
		"-1 0 -1\n1 0 -1\n1 0 1\n-1 0 1\n4 0 1 2 3\n"
	if err := os.WriteFile(filepath.Join(dir, "floor.ply"), []byte(ply), 0644); err != nil {
		t.Fatalf("Failed to write PLY: %v", err)
	}
	path := writeScene(t, dir, `
materials: [{name: floor}]
meshes: [{material: floor, ply: floor.ply}]
lights: [{type: point, position: [0, 1, 0], radiance: [1, 1, 1]}]
`)

	s, err := LoadScene(path, nil)
	if err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}
	if s.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles from the PLY quad, got %d", s.TriangleCount())
	}

	missing := writeScene(t, t.TempDir(), `
materials: [{name: floor}]
meshes: [{material: floor, ply: nowhere.ply}]
lights: [{type: point, position: [0, 1, 0], radiance: [1, 1, 1]}]
`)
	if _, err := LoadScene(missing, nil); err == nil {
		t.Error("Expected an error for a missing PLY file")
	}
}
