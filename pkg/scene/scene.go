package scene

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
)

var (
	ErrVertexCount   = errors.New("vertex count is not a multiple of 3")
	ErrTriangleCount = errors.New("triangle count does not match vertex count / 3")
	ErrMeshIndex     = errors.New("mesh index out of range")
	ErrNoLights      = errors.New("scene has matte materials but no lights")
	ErrMaterialIndex = errors.New("material index out of range")
	ErrTextureIndex  = errors.New("texture index out of range")
	ErrSkySize       = errors.New("sky pixel count does not match dimensions")
)

// CameraConfig describes the default viewpoint of a scene
type CameraConfig struct {
	Center      core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera looks at
	Up          core.Vec3 // Up direction
	VFov        float64   // Vertical field of view in degrees
	AspectRatio float64   // Width / height
}

// Mesh is an owned copy of host geometry plus its hierarchy
type Mesh struct {
	Vertices []core.Vec3
	BVH      *geometry.BVH
}

// Scene owns the flat tables the tracer reads: meshes, analytic spheres,
// materials, lights, textures and the sky. Tables are written before
// rendering and read-only afterwards.
type Scene struct {
	Name        string
	Camera      CameraConfig
	Meshes      []Mesh
	Spheres     []geometry.Sphere
	Materials   []material.Material
	Lights      []lights.Light
	Textures    []*material.Texture
	Sky         *Sky
	Background  core.Vec3
	BuildConfig geometry.BuildConfig

	BVHBuildTime time.Duration

	logger core.Logger
}

// New creates an empty scene
func New(name string, logger core.Logger) *Scene {
	return &Scene{
		Name:        name,
		BuildConfig: geometry.DefaultBuildConfig(),
		Camera: CameraConfig{
			Center:      core.NewVec3(0, 0, 0),
			LookAt:      core.NewVec3(0, 0, 1),
			Up:          core.NewVec3(0, 1, 0),
			VFov:        60,
			AspectRatio: 1,
		},
		logger: core.LoggerOrNop(logger),
	}
}

// SetLogger replaces the scene's logger
func (s *Scene) SetLogger(logger core.Logger) {
	s.logger = core.LoggerOrNop(logger)
}

// SetGeometry copies a mesh's vertices and triangles into the scene and
// builds its hierarchy. meshIndex may replace an existing mesh or append
// one past the end.
func (s *Scene) SetGeometry(meshIndex int, vertices []core.Vec3, triangles []geometry.Triangle) error {
	if len(vertices)%3 != 0 {
		return fmt.Errorf("mesh %d: %d vertices: %w", meshIndex, len(vertices), ErrVertexCount)
	}
	if len(triangles) != len(vertices)/3 {
		return fmt.Errorf("mesh %d: %d triangles for %d vertices: %w", meshIndex, len(triangles), len(vertices), ErrTriangleCount)
	}
	if meshIndex < 0 || meshIndex > len(s.Meshes) {
		return fmt.Errorf("mesh %d of %d: %w", meshIndex, len(s.Meshes), ErrMeshIndex)
	}

	mesh := Mesh{Vertices: make([]core.Vec3, len(vertices))}
	copy(mesh.Vertices, vertices)

	bvh, err := geometry.Build(triangles, s.BuildConfig)
	if err != nil && !errors.Is(err, geometry.ErrNoPrimitives) {
		return fmt.Errorf("mesh %d: %w", meshIndex, err)
	}
	mesh.BVH = bvh
	s.BVHBuildTime += bvh.BuildTime

	stats := bvh.Stats()
	s.logger.Debugf("mesh %d: %d triangles, %d nodes, %d leaves, depth %d, built in %v",
		meshIndex, len(triangles), stats.Nodes, stats.Leaves, stats.MaxDepth, bvh.BuildTime)

	if meshIndex == len(s.Meshes) {
		s.Meshes = append(s.Meshes, mesh)
	} else {
		s.Meshes[meshIndex] = mesh
	}
	return nil
}

// AddMesh appends a mesh built from triangles, deriving the vertex buffer
func (s *Scene) AddMesh(triangles []geometry.Triangle) error {
	vertices := make([]core.Vec3, 0, len(triangles)*3)
	for _, tri := range triangles {
		vertices = append(vertices, tri.V0, tri.V1, tri.V2)
	}
	return s.SetGeometry(len(s.Meshes), vertices, triangles)
}

// AddSphere appends an analytic sphere
func (s *Scene) AddSphere(sphere geometry.Sphere) {
	s.Spheres = append(s.Spheres, sphere)
}

// AddMaterial appends a material and returns its index
func (s *Scene) AddMaterial(m material.Material) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// SetMaterials replaces the material table with a copy of materials
func (s *Scene) SetMaterials(materials []material.Material) {
	s.Materials = append([]material.Material(nil), materials...)
}

// SetLights replaces the light list with a copy of ls
func (s *Scene) SetLights(ls []lights.Light) {
	s.Lights = append([]lights.Light(nil), ls...)
}

// SetTextures replaces the texture table with a copy of textures
func (s *Scene) SetTextures(textures []*material.Texture) {
	s.Textures = append([]*material.Texture(nil), textures...)
}

// SetSkyData installs an equirectangular sky table
func (s *Scene) SetSkyData(pixels []core.Vec3, width, height int) error {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return fmt.Errorf("sky %dx%d with %d pixels: %w", width, height, len(pixels), ErrSkySize)
	}
	s.Sky = NewSky(width, height, append([]core.Vec3(nil), pixels...))
	return nil
}

// TriangleCount returns the number of triangles across all meshes
func (s *Scene) TriangleCount() int {
	count := 0
	for _, mesh := range s.Meshes {
		if mesh.BVH != nil {
			count += len(mesh.BVH.Primitives)
		}
	}
	return count
}

// Validate checks the cross references between tables
func (s *Scene) Validate() error {
	checkMaterial := func(what string, idx int) error {
		if idx < 0 || idx >= len(s.Materials) {
			return fmt.Errorf("%s uses material %d of %d: %w", what, idx, len(s.Materials), ErrMaterialIndex)
		}
		return nil
	}

	for m, mesh := range s.Meshes {
		if mesh.BVH == nil {
			continue
		}
		for i, tri := range mesh.BVH.Primitives {
			if err := checkMaterial(fmt.Sprintf("mesh %d triangle %d", m, i), tri.Material); err != nil {
				return err
			}
		}
	}
	for i, sphere := range s.Spheres {
		if err := checkMaterial(fmt.Sprintf("sphere %d", i), sphere.Material); err != nil {
			return err
		}
	}

	hasMatte := false
	for i, m := range s.Materials {
		if m.HasTexture() && m.TextureID >= len(s.Textures) {
			return fmt.Errorf("material %d uses texture %d of %d: %w", i, m.TextureID, len(s.Textures), ErrTextureIndex)
		}
		if m.Kind == material.Matte {
			hasMatte = true
		}
	}
	if hasMatte && len(s.Lights) == 0 {
		return ErrNoLights
	}
	return nil
}

// Hit describes the closest intersection along a ray
type Hit struct {
	T        float64
	Point    core.Vec3
	Normal   core.Vec3 // Shading normal, not flipped toward the ray
	Material int
	Mesh     int // -1 for spheres
	Triangle int // Index into the mesh primitives, -1 for spheres
	Sphere   int // -1 for triangles
}

// Intersect finds the closest hit over all meshes and spheres
func (s *Scene) Intersect(ray core.Ray) (Hit, bool) {
	hit := Hit{T: math.Inf(1), Mesh: -1, Triangle: -1, Sphere: -1}

	for m, mesh := range s.Meshes {
		t, idx := mesh.BVH.Closest(ray, hit.T)
		if idx >= 0 && t < hit.T {
			hit.T = t
			hit.Mesh = m
			hit.Triangle = idx
		}
	}
	for i, sphere := range s.Spheres {
		if t := sphere.Intersect(ray); t < hit.T {
			hit.T = t
			hit.Sphere = i
			hit.Mesh = -1
			hit.Triangle = -1
		}
	}

	if math.IsInf(hit.T, 1) {
		return hit, false
	}

	hit.Point = ray.At(hit.T)
	if hit.Sphere >= 0 {
		sphere := s.Spheres[hit.Sphere]
		hit.Normal = sphere.NormalAt(hit.Point)
		hit.Material = sphere.Material
	} else {
		tri := s.Meshes[hit.Mesh].BVH.Primitives[hit.Triangle]
		hit.Normal = tri.Normal
		hit.Material = tri.Material
	}
	return hit, true
}

// Occluded reports whether anything blocks ray before maxDist
func (s *Scene) Occluded(ray core.Ray, maxDist float64) bool {
	for _, mesh := range s.Meshes {
		if mesh.BVH.Occluded(ray, maxDist) {
			return true
		}
	}
	for _, sphere := range s.Spheres {
		if sphere.Intersect(ray) < maxDist {
			return true
		}
	}
	return false
}

// Material returns the material of a hit
func (s *Scene) Material(hit Hit) material.Material {
	return s.Materials[hit.Material]
}

// SurfaceColor returns the base color at a hit, looking textured materials
// up through the triangle's barycentric UVs
func (s *Scene) SurfaceColor(hit Hit) core.Vec3 {
	m := s.Materials[hit.Material]
	if !m.HasTexture() || hit.Triangle < 0 || m.TextureID >= len(s.Textures) {
		return m.Color
	}
	tri := s.Meshes[hit.Mesh].BVH.Primitives[hit.Triangle]
	return s.Textures[m.TextureID].Sample(tri.UVAt(hit.Point)).MultiplyVec(m.Color)
}

// Miss returns the sky sample for a direction, or the background color
func (s *Scene) Miss(direction core.Vec3) core.Vec3 {
	if s.Sky != nil {
		return s.Sky.Sample(direction)
	}
	return s.Background
}
