package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

var (
	ErrUnknownMaterial  = errors.New("unknown material")
	ErrDuplicateName    = errors.New("duplicate material name")
	ErrUnknownLightType = errors.New("unknown light type")
	ErrTextureSource    = errors.New("texture needs exactly one of file, checkerboard, gradient or uv_debug")
)

// Vec3 is a YAML [x, y, z] triple
type Vec3 [3]float64

func (v Vec3) vec() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// SceneFile is the on-disk YAML scene description
type SceneFile struct {
	Name       string         `yaml:"name"`
	Camera     CameraFile     `yaml:"camera"`
	Background *Vec3          `yaml:"background,omitempty"`
	Sky        string         `yaml:"sky,omitempty"`
	Textures   []TextureFile  `yaml:"textures,omitempty"`
	Materials  []MaterialFile `yaml:"materials"`
	Meshes     []MeshFile     `yaml:"meshes,omitempty"`
	Spheres    []SphereFile   `yaml:"spheres,omitempty"`
	Lights     []LightFile    `yaml:"lights"`
}

// CameraFile mirrors scene.CameraConfig
type CameraFile struct {
	Center      Vec3    `yaml:"center"`
	LookAt      Vec3    `yaml:"look_at"`
	Up          *Vec3   `yaml:"up,omitempty"`
	VFov        float64 `yaml:"vfov"`
	AspectRatio float64 `yaml:"aspect_ratio"`
}

// TextureFile is an image on disk or a procedural texture
type TextureFile struct {
	File         string            `yaml:"file,omitempty"`
	Checkerboard *CheckerboardFile `yaml:"checkerboard,omitempty"`
	Gradient     *GradientFile     `yaml:"gradient,omitempty"`
	UVDebug      *SizeFile         `yaml:"uv_debug,omitempty"`
}

type SizeFile struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CheckerboardFile struct {
	SizeFile  `yaml:",inline"`
	CheckSize int  `yaml:"check_size"`
	Color1    Vec3 `yaml:"color1"`
	Color2    Vec3 `yaml:"color2"`
}

type GradientFile struct {
	SizeFile `yaml:",inline"`
	Color1   Vec3 `yaml:"color1"`
	Color2   Vec3 `yaml:"color2"`
}

// MaterialFile describes one material. Type is matte, mirror or glass; when
// Type is empty and Specular is set the material is classified from it.
type MaterialFile struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type,omitempty"`
	Color    *Vec3    `yaml:"color,omitempty"`
	Texture  *int     `yaml:"texture,omitempty"`
	IOR      float64  `yaml:"ior,omitempty"`
	Specular *float64 `yaml:"specular,omitempty"`
}

// MeshFile groups shapes that share a material into one hierarchy
type MeshFile struct {
	Material  string         `yaml:"material"`
	Triangles []TriangleFile `yaml:"triangles,omitempty"`
	Quads     []QuadFile     `yaml:"quads,omitempty"`
	Boxes     []BoxFile      `yaml:"boxes,omitempty"`
	Ground    *GroundFile    `yaml:"ground,omitempty"`
	PLY       string         `yaml:"ply,omitempty"` // Path to a PLY file, relative to the scene
}

type TriangleFile struct {
	V0 Vec3 `yaml:"v0"`
	V1 Vec3 `yaml:"v1"`
	V2 Vec3 `yaml:"v2"`
}

type QuadFile struct {
	Corner Vec3 `yaml:"corner"`
	U      Vec3 `yaml:"u"`
	V      Vec3 `yaml:"v"`
}

type BoxFile struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

type GroundFile struct {
	Center Vec3    `yaml:"center"`
	Size   float64 `yaml:"size"`
}

type SphereFile struct {
	Center   Vec3    `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Material string  `yaml:"material"`
}

// LightFile is a point light (position) or a directional light (direction)
type LightFile struct {
	Type      string `yaml:"type"`
	Position  Vec3   `yaml:"position,omitempty"`
	Direction Vec3   `yaml:"direction,omitempty"`
	Radiance  Vec3   `yaml:"radiance"`
}

// ParseSceneFile decodes a YAML scene, rejecting unknown fields
func ParseSceneFile(data []byte) (*SceneFile, error) {
	var sf SceneFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	return &sf, nil
}

// LoadScene reads a YAML scene file and builds it with the default BVH
// settings. Relative texture and sky paths resolve against the file's directory.
func LoadScene(path string, logger core.Logger) (*scene.Scene, error) {
	return LoadSceneWith(path, geometry.DefaultBuildConfig(), logger)
}

// LoadSceneWith is LoadScene with explicit BVH builder settings
func LoadSceneWith(path string, bvh geometry.BuildConfig, logger core.Logger) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	sf, err := ParseSceneFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sf.Name == "" {
		sf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s, err := sf.Build(filepath.Dir(path), bvh, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Build turns the description into a scene. baseDir resolves relative paths.
func (sf *SceneFile) Build(baseDir string, bvh geometry.BuildConfig, logger core.Logger) (*scene.Scene, error) {
	s := scene.New(sf.Name, logger)
	s.BuildConfig = bvh

	s.Camera.Center = sf.Camera.Center.vec()
	s.Camera.LookAt = sf.Camera.LookAt.vec()
	if sf.Camera.Up != nil {
		s.Camera.Up = sf.Camera.Up.vec()
	}
	if sf.Camera.VFov > 0 {
		s.Camera.VFov = sf.Camera.VFov
	}
	if sf.Camera.AspectRatio > 0 {
		s.Camera.AspectRatio = sf.Camera.AspectRatio
	}
	if sf.Background != nil {
		s.Background = sf.Background.vec()
	}

	if sf.Sky != "" {
		if err := LoadSky(s, resolve(baseDir, sf.Sky)); err != nil {
			return nil, fmt.Errorf("sky: %w", err)
		}
	}

	textures := make([]*material.Texture, 0, len(sf.Textures))
	for i, tf := range sf.Textures {
		tex, err := tf.build(baseDir)
		if err != nil {
			return nil, fmt.Errorf("texture %d: %w", i, err)
		}
		textures = append(textures, tex)
	}
	s.SetTextures(textures)

	names := make(map[string]int, len(sf.Materials))
	for i, mf := range sf.Materials {
		if _, dup := names[mf.Name]; dup {
			return nil, fmt.Errorf("material %d %q: %w", i, mf.Name, ErrDuplicateName)
		}
		m, err := mf.build()
		if err != nil {
			return nil, fmt.Errorf("material %d %q: %w", i, mf.Name, err)
		}
		names[mf.Name] = s.AddMaterial(m)
	}
	lookup := func(name string) (int, error) {
		idx, ok := names[name]
		if !ok {
			return 0, fmt.Errorf("%q: %w", name, ErrUnknownMaterial)
		}
		return idx, nil
	}

	for i, mesh := range sf.Meshes {
		mat, err := lookup(mesh.Material)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		tris, err := mesh.triangles(baseDir, mat, logger)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		if err := s.AddMesh(tris); err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
	}

	for i, sp := range sf.Spheres {
		mat, err := lookup(sp.Material)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		s.AddSphere(geometry.NewSphere(sp.Center.vec(), sp.Radius, mat))
	}

	ls := make([]lights.Light, 0, len(sf.Lights))
	for i, lf := range sf.Lights {
		light, err := lf.build()
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		ls = append(ls, light)
	}
	s.SetLights(ls)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

func (tf TextureFile) build(baseDir string) (*material.Texture, error) {
	sources := 0
	for _, set := range []bool{tf.File != "", tf.Checkerboard != nil, tf.Gradient != nil, tf.UVDebug != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, ErrTextureSource
	}

	switch {
	case tf.File != "":
		return LoadTexture(resolve(baseDir, tf.File))
	case tf.Checkerboard != nil:
		c := tf.Checkerboard
		return material.NewCheckerboardTexture(c.Width, c.Height, c.CheckSize, c.Color1.vec(), c.Color2.vec()), nil
	case tf.Gradient != nil:
		g := tf.Gradient
		return material.NewGradientTexture(g.Width, g.Height, g.Color1.vec(), g.Color2.vec()), nil
	default:
		return material.NewUVDebugTexture(tf.UVDebug.Width, tf.UVDebug.Height), nil
	}
}

func (mf MaterialFile) build() (material.Material, error) {
	color := core.NewVec3(1, 1, 1)
	if mf.Color != nil {
		color = mf.Color.vec()
	}
	textureID := material.NoTexture
	if mf.Texture != nil {
		textureID = *mf.Texture
	}

	if mf.Type == "" {
		if mf.Specular != nil {
			return material.Classify(color, textureID, *mf.Specular), nil
		}
		mf.Type = "matte"
	}

	kind, err := material.ParseKind(mf.Type)
	if err != nil {
		return material.Material{}, err
	}
	switch kind {
	case material.Mirror:
		return material.NewMirror(color), nil
	case material.Glass:
		return material.NewGlass(mf.IOR), nil
	default:
		m := material.NewMatte(color)
		m.TextureID = textureID
		return m, nil
	}
}

func (mesh MeshFile) triangles(baseDir string, mat int, logger core.Logger) ([]geometry.Triangle, error) {
	var tris []geometry.Triangle
	if mesh.PLY != "" {
		ply, err := LoadPLY(resolve(baseDir, mesh.PLY), logger)
		if err != nil {
			return nil, err
		}
		tris = append(tris, ply.Triangles(mat)...)
	}
	for _, t := range mesh.Triangles {
		tris = append(tris, geometry.NewTriangle(t.V0.vec(), t.V1.vec(), t.V2.vec(), mat))
	}
	for _, q := range mesh.Quads {
		tris = append(tris, scene.QuadTriangles(q.Corner.vec(), q.U.vec(), q.V.vec(), mat)...)
	}
	for _, b := range mesh.Boxes {
		tris = append(tris, scene.BoxTriangles(b.Min.vec(), b.Max.vec(), mat)...)
	}
	if mesh.Ground != nil {
		tris = append(tris, scene.NewGroundQuad(mesh.Ground.Center.vec(), mesh.Ground.Size, mat)...)
	}
	return tris, nil
}

func (lf LightFile) build() (lights.Light, error) {
	switch lights.LightType(lf.Type) {
	case lights.LightTypePoint:
		return lights.NewPointLight(lf.Position.vec(), lf.Radiance.vec()), nil
	case lights.LightTypeDirectional:
		return lights.NewDirectionalLight(lf.Direction.vec(), lf.Radiance.vec()), nil
	}
	return nil, fmt.Errorf("%q: %w", lf.Type, ErrUnknownLightType)
}
