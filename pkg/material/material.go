package material

import (
	"fmt"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Kind tags the shading model of a material
type Kind int

const (
	Matte  Kind = iota // Diffuse, direct light plus photon gather
	Mirror             // Perfect specular reflection
	Glass              // Dielectric, reflects and refracts
)

// String returns the kind name used in scene files
func (k Kind) String() string {
	switch k {
	case Matte:
		return "matte"
	case Mirror:
		return "mirror"
	case Glass:
		return "glass"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a scene file name into a Kind
func ParseKind(name string) (Kind, error) {
	switch name {
	case "matte", "diffuse":
		return Matte, nil
	case "mirror":
		return Mirror, nil
	case "glass", "dielectric":
		return Glass, nil
	}
	return Matte, fmt.Errorf("unknown material kind %q", name)
}

// NoTexture marks a material without a texture lookup
const NoTexture = -1

// DefaultGlassIOR is the index of refraction used when none is given
const DefaultGlassIOR = 1.5

// Material is an entry in the scene's flat material table
type Material struct {
	Kind      Kind
	Color     core.Vec3 // Reflectance for matte, tint for mirror
	TextureID int       // Index into the scene texture table, or NoTexture
	IOR       float64   // Index of refraction for glass
}

// NewMatte creates a diffuse material
func NewMatte(color core.Vec3) Material {
	return Material{Kind: Matte, Color: color, TextureID: NoTexture}
}

// NewTexturedMatte creates a diffuse material whose color comes from a texture
func NewTexturedMatte(textureID int) Material {
	return Material{Kind: Matte, Color: core.NewVec3(1, 1, 1), TextureID: textureID}
}

// NewMirror creates a perfect mirror with the given tint
func NewMirror(tint core.Vec3) Material {
	return Material{Kind: Mirror, Color: tint, TextureID: NoTexture}
}

// NewGlass creates a clear dielectric
func NewGlass(ior float64) Material {
	if ior <= 0 {
		ior = DefaultGlassIOR
	}
	return Material{Kind: Glass, Color: core.NewVec3(1, 1, 1), TextureID: NoTexture, IOR: ior}
}

// HasTexture reports whether the material looks its color up in a texture
func (m Material) HasTexture() bool {
	return m.TextureID > NoTexture
}

// Classify derives a material from a host material record that only carries
// a specular value. Anything above 0.99 is a mirror, everything else is matte.
func Classify(color core.Vec3, textureID int, specular float64) Material {
	m := Material{Kind: Matte, Color: color, TextureID: textureID}
	if specular > 0.99 {
		m.Kind = Mirror
	}
	return m
}
