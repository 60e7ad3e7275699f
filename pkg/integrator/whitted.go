package integrator

import (
	"fmt"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// LightAccumulation selects how matte shading combines multiple lights
type LightAccumulation string

const (
	AccumulateSum     LightAccumulation = "sum"
	AccumulateAverage LightAccumulation = "average"
)

// ParseLightAccumulation converts a config string into a LightAccumulation
func ParseLightAccumulation(s string) (LightAccumulation, error) {
	switch LightAccumulation(s) {
	case AccumulateSum, "":
		return AccumulateSum, nil
	case AccumulateAverage:
		return AccumulateAverage, nil
	}
	return "", fmt.Errorf("unknown light accumulation %q", s)
}

// Config controls the recursive evaluator
type Config struct {
	MaxDepth          int               // Recursion cap; deeper hits return their base color
	Bias              float64           // Offset along the normal for secondary ray origins
	LightAccumulation LightAccumulation // Sum or average over lights
}

// DefaultConfig returns the reference evaluator settings
func DefaultConfig() Config {
	return Config{
		MaxDepth:          4,
		Bias:              1e-4,
		LightAccumulation: AccumulateSum,
	}
}

// PhotonGatherer supplies indirect light at matte hits
type PhotonGatherer interface {
	GatherPhotonEnergy(position, normal core.Vec3, materialIndex int) core.Vec3
}

// Whitted is a recursive ray tracer: hard-shadowed direct light on matte
// surfaces, perfect reflection on mirrors, Fresnel-weighted reflection and
// refraction on glass. It holds no per-ray state and is safe for concurrent use.
type Whitted struct {
	scene    *scene.Scene
	config   Config
	gatherer PhotonGatherer
}

// NewWhitted creates an evaluator over a built scene
func NewWhitted(s *scene.Scene, config Config) *Whitted {
	if config.Bias <= 0 {
		config.Bias = DefaultConfig().Bias
	}
	if config.MaxDepth < 0 {
		config.MaxDepth = 0
	}
	return &Whitted{scene: s, config: config}
}

// SetGatherer attaches a photon map; nil disables indirect light
func (w *Whitted) SetGatherer(g PhotonGatherer) {
	w.gatherer = g
}

// Config returns the evaluator settings
func (w *Whitted) Config() Config {
	return w.config
}

// Trace returns the radiance along a camera ray
func (w *Whitted) Trace(ray core.Ray) core.Vec3 {
	return w.TraceDepth(ray, 0)
}

// TraceDepth evaluates a ray that is already depth bounces deep
func (w *Whitted) TraceDepth(ray core.Ray, depth int) core.Vec3 {
	hit, ok := w.scene.Intersect(ray)
	if !ok {
		return w.scene.Miss(ray.Direction)
	}

	color := w.scene.SurfaceColor(hit)
	if depth > w.config.MaxDepth {
		return color
	}

	mat := w.scene.Material(hit)
	switch mat.Kind {
	case material.Mirror:
		return w.shadeMirror(ray, hit, mat, depth)
	case material.Glass:
		return w.shadeGlass(ray, hit, mat, depth)
	default:
		return w.shadeMatte(ray, hit, color)
	}
}

// shadeMatte sums hard-shadowed Lambert terms over all lights, plus the
// photon estimate when a gatherer is attached
func (w *Whitted) shadeMatte(ray core.Ray, hit scene.Hit, color core.Vec3) core.Vec3 {
	normal := hit.Normal
	if normal.Dot(ray.Direction) > 0 {
		normal = normal.Negate()
	}
	origin := hit.Point.Add(normal.Multiply(w.config.Bias))

	direct := core.Vec3{}
	for _, light := range w.scene.Lights {
		sample := light.Illuminate(hit.Point)
		if sample.Radiance.IsZero() {
			continue
		}
		cosine := normal.Dot(sample.Direction)
		if cosine <= 0 {
			continue
		}
		if w.scene.Occluded(core.NewRay(origin, sample.Direction), sample.Distance) {
			continue
		}
		direct = direct.Add(sample.Radiance.Multiply(cosine))
	}
	if w.config.LightAccumulation == AccumulateAverage && len(w.scene.Lights) > 0 {
		direct = direct.Multiply(1 / float64(len(w.scene.Lights)))
	}

	result := direct.MultiplyVec(color)
	if w.gatherer != nil {
		indirect := w.gatherer.GatherPhotonEnergy(hit.Point, hit.Normal, hit.Material)
		result = result.Add(indirect.MultiplyVec(color))
	}
	return result
}

func (w *Whitted) shadeMirror(ray core.Ray, hit scene.Hit, mat material.Material, depth int) core.Vec3 {
	normal := hit.Normal
	if normal.Dot(ray.Direction) > 0 {
		normal = normal.Negate()
	}
	reflected := core.NewRay(
		hit.Point.Add(normal.Multiply(w.config.Bias)),
		material.Reflect(ray.Direction, normal).Normalize(),
	)
	return w.TraceDepth(reflected, depth+1).MultiplyVec(mat.Color)
}

// shadeGlass blends the reflected and refracted branches by the Fresnel
// reflectance. Total internal reflection keeps only the reflected branch.
func (w *Whitted) shadeGlass(ray core.Ray, hit scene.Hit, mat material.Material, depth int) core.Vec3 {
	normal := hit.Normal
	bias := normal.Multiply(w.config.Bias)
	outside := ray.Direction.Dot(normal) < 0

	kr, refracts := Reflectance(ray.Direction, normal, mat.IOR)

	refraction := core.Vec3{}
	if refracts {
		dir, _ := material.Refract(ray.Direction, normal, mat.IOR)
		origin := hit.Point.Add(bias)
		if outside {
			origin = hit.Point.Subtract(bias)
		}
		refraction = w.TraceDepth(core.NewRay(origin, dir.Normalize()), depth+1)
	}

	origin := hit.Point.Subtract(bias)
	if outside {
		origin = hit.Point.Add(bias)
	}
	reflection := w.TraceDepth(core.NewRay(origin, material.Reflect(ray.Direction, normal).Normalize()), depth+1)

	return reflection.Multiply(kr).Add(refraction.Multiply(1 - kr))
}

// Reflectance returns the reflected weight at a dielectric boundary and
// whether a refracted branch exists. Total internal reflection gives (1, false).
func Reflectance(direction, normal core.Vec3, ior float64) (kr float64, refracts bool) {
	kr = material.Fresnel(direction, normal, ior)
	if kr >= 1 {
		return 1, false
	}
	if _, ok := material.Refract(direction, normal, ior); !ok {
		return 1, false
	}
	return kr, true
}
