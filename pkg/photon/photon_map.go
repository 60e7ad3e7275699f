package photon

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// Photon is a packet of light energy that landed on a matte surface
type Photon struct {
	Position  core.Vec3 // World space landing point
	Direction core.Vec3 // Incident direction (travelling toward the surface)
	Power     core.Vec3
}

// Config controls seeding and gathering
type Config struct {
	PhotonsPerLight     int     // Photons emitted per light in the general pass
	CausticMultiplier   int     // Caustic pass emits PhotonsPerLight * CausticMultiplier
	MaxDepth            int     // Bounces before a photon walk stops
	GatherRadiusSquared float64 // Squared search radius for gathering
	EnergyScale         float64 // Multiplier applied to gathered energy
	Bias                float64 // Offset for secondary photon origins
	ShadowPhotons       bool    // Deposit negative photons behind the first matte hit
	Workers             int     // Seeding goroutines; <= 0 uses every CPU
	Seed                int64
}

// DefaultConfig returns the reference photon settings
func DefaultConfig() Config {
	return Config{
		PhotonsPerLight:     10000,
		CausticMultiplier:   3,
		MaxDepth:            4,
		GatherRadiusSquared: 1.0,
		EnergyScale:         1,
		Bias:                1e-4,
		Workers:             0,
		Seed:                42,
	}
}

// shadowPower is the energy removed by a shadow photon
const shadowPower = 0.25

// buckets maps a material index to the photons that landed on it
type buckets map[int][]Photon

func (b buckets) add(materialIndex int, p Photon) {
	b[materialIndex] = append(b[materialIndex], p)
}

// Map stores general and caustic photons per material. It is append-only
// while seeding and read-only afterwards; gathering is safe for concurrent use
// once Seed has returned.
type Map struct {
	config   Config
	photons  buckets
	caustics buckets
	logger   core.Logger

	SeedTime time.Duration
}

// NewMap creates an empty photon map
func NewMap(config Config, logger core.Logger) *Map {
	def := DefaultConfig()
	if config.CausticMultiplier < 0 {
		config.CausticMultiplier = 0
	}
	if config.GatherRadiusSquared <= 0 {
		config.GatherRadiusSquared = def.GatherRadiusSquared
	}
	if config.Bias <= 0 {
		config.Bias = def.Bias
	}
	if config.EnergyScale == 0 {
		config.EnergyScale = def.EnergyScale
	}
	return &Map{
		config:   config,
		photons:  make(buckets),
		caustics: make(buckets),
		logger:   core.LoggerOrNop(logger),
	}
}

// Config returns the map settings
func (m *Map) Config() Config {
	return m.config
}

// Deposit appends a general photon to a material's bucket
func (m *Map) Deposit(materialIndex int, p Photon) {
	m.photons.add(materialIndex, p)
}

// DepositCaustic appends a caustic photon to a material's bucket
func (m *Map) DepositCaustic(materialIndex int, p Photon) {
	m.caustics.add(materialIndex, p)
}

// Photons returns the general photons stored for a material
func (m *Map) Photons(materialIndex int) []Photon {
	return m.photons[materialIndex]
}

// Caustics returns the caustic photons stored for a material
func (m *Map) Caustics(materialIndex int) []Photon {
	return m.caustics[materialIndex]
}

// Counts returns the number of general and caustic photons stored
func (m *Map) Counts() (photons, caustics int) {
	for _, b := range m.photons {
		photons += len(b)
	}
	for _, b := range m.caustics {
		caustics += len(b)
	}
	return photons, caustics
}

// GatherPhotonEnergy estimates indirect light at a matte point from the
// photons stored under its material. Each photon inside the gather radius
// contributes max(0, -N·L) * (1 - distance) of its power. General and caustic
// photons are averaged over their own in-radius counts and summed; a bucket
// with nothing in range contributes zero.
func (m *Map) GatherPhotonEnergy(position, normal core.Vec3, materialIndex int) core.Vec3 {
	energy := gather(m.photons[materialIndex], position, normal, m.config.GatherRadiusSquared)
	energy = energy.Add(gather(m.caustics[materialIndex], position, normal, m.config.GatherRadiusSquared))
	return energy.Multiply(m.config.EnergyScale)
}

func gather(photons []Photon, position, normal core.Vec3, radiusSquared float64) core.Vec3 {
	energy := core.Vec3{}
	count := 0
	for _, p := range photons {
		d2 := position.Subtract(p.Position).LengthSquared()
		if d2 >= radiusSquared {
			continue
		}
		weight := math.Max(0, -normal.Dot(p.Direction)) * (1 - math.Sqrt(d2))
		energy = energy.Add(p.Power.Multiply(weight))
		count++
	}
	if count == 0 {
		return core.Vec3{}
	}
	return energy.Multiply(1 / float64(count))
}

// pass identifies the seeding pass a photon walk belongs to
type pass int

const (
	generalPass pass = iota
	causticPass
)

// walker traces photon paths for one worker into its local buckets
type walker struct {
	scene    *scene.Scene
	config   Config
	rng      *rand.Rand
	photons  buckets
	caustics buckets
}

// Seed emits photons from every light in the scene and traces them through
// it, replacing any photons already stored. Work is split across workers with
// their own random streams and buckets, merged in worker order, so the result
// is deterministic for a given seed and worker count.
func (m *Map) Seed(s *scene.Scene) error {
	start := time.Now()

	var emitters []lights.PhotonEmitter
	for _, light := range s.Lights {
		if e, ok := light.(lights.PhotonEmitter); ok {
			emitters = append(emitters, e)
		}
	}
	if len(s.Lights) == 0 {
		return fmt.Errorf("photon seeding: %w", scene.ErrNoLights)
	}
	if len(emitters) == 0 {
		// Directional lights only: direct lighting still works, there is
		// just no indirect estimate
		m.photons = make(buckets)
		m.caustics = make(buckets)
		m.SeedTime = time.Since(start)
		m.logger.Warnf("photon map: none of %d lights emits photons, map left empty", len(s.Lights))
		return nil
	}

	workers := m.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	general := m.config.PhotonsPerLight
	caustic := m.config.PhotonsPerLight * m.config.CausticMultiplier

	locals := make([]*walker, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		locals[w] = &walker{
			scene:    s,
			config:   m.config,
			rng:      rand.New(rand.NewSource(m.config.Seed + int64(w))),
			photons:  make(buckets),
			caustics: make(buckets),
		}

		// Worker w takes every workers-th emission, starting at w
		go func(wk *walker, wid int) {
			defer wg.Done()
			for _, e := range emitters {
				for i := wid; i < general; i += workers {
					wk.emit(e, generalPass)
				}
				for i := wid; i < caustic; i += workers {
					wk.emit(e, causticPass)
				}
			}
		}(locals[w], w)
	}
	wg.Wait()

	m.photons = make(buckets)
	m.caustics = make(buckets)
	for _, wk := range locals {
		for idx, ps := range wk.photons {
			m.photons[idx] = append(m.photons[idx], ps...)
		}
		for idx, ps := range wk.caustics {
			m.caustics[idx] = append(m.caustics[idx], ps...)
		}
	}

	m.SeedTime = time.Since(start)
	photons, caustics := m.Counts()
	m.logger.Infof("photon map: %d lights, %d photons, %d caustics, %d workers, seeded in %v",
		len(emitters), photons, caustics, workers, m.SeedTime)
	return nil
}

func (wk *walker) sample3D() core.Vec3 {
	return core.NewVec3(wk.rng.Float64(), wk.rng.Float64(), wk.rng.Float64())
}

func (wk *walker) emit(e lights.PhotonEmitter, p pass) {
	ray, power := e.EmitPhoton(wk.sample3D())
	wk.trace(ray, power, 0, p, false)
}

// trace follows one photon path. viaGlass records whether a glass surface
// has redirected the photon since it left the light.
func (wk *walker) trace(ray core.Ray, power core.Vec3, depth int, p pass, viaGlass bool) {
	if depth > wk.config.MaxDepth || power.IsZero() {
		return
	}
	hit, ok := wk.scene.Intersect(ray)
	if !ok {
		return
	}

	mat := wk.scene.Material(hit)
	bias := wk.config.Bias

	switch mat.Kind {
	case material.Matte:
		color := wk.scene.SurfaceColor(hit)
		deposited := Photon{
			Position:  hit.Point,
			Direction: ray.Direction.Normalize(),
			Power:     power.MultiplyVec(color).Multiply(1 / math.Sqrt(float64(depth+1))),
		}

		if p == causticPass {
			if viaGlass {
				wk.caustics.add(hit.Material, deposited)
			}
			return
		}
		wk.photons.add(hit.Material, deposited)

		if wk.config.ShadowPhotons && depth == 0 {
			wk.traceShadow(core.NewRay(hit.Point.Add(ray.Direction.Multiply(bias)), ray.Direction))
		}

		normal := hit.Normal
		if normal.Dot(ray.Direction) > 0 {
			normal = normal.Negate()
		}
		bounce := core.NewRay(hit.Point.Add(normal.Multiply(bias)), core.SampleCubeHemisphere(normal, wk.sample3D()))
		wk.trace(bounce, power.MultiplyVec(color), depth+1, p, viaGlass)

	case material.Mirror:
		normal := hit.Normal
		if normal.Dot(ray.Direction) > 0 {
			normal = normal.Negate()
		}
		reflected := core.NewRay(hit.Point.Add(normal.Multiply(bias)), material.Reflect(ray.Direction, normal).Normalize())
		wk.trace(reflected, power.MultiplyVec(mat.Color), depth+1, p, viaGlass)

	case material.Glass:
		normal := hit.Normal
		offset := normal.Multiply(bias)
		outside := ray.Direction.Dot(normal) < 0

		kr := material.Fresnel(ray.Direction, normal, mat.IOR)
		if kr < 1 {
			if dir, ok := material.Refract(ray.Direction, normal, mat.IOR); ok {
				origin := hit.Point.Add(offset)
				if outside {
					origin = hit.Point.Subtract(offset)
				}
				wk.trace(core.NewRay(origin, dir.Normalize()), power.Multiply(1-kr), depth+1, p, true)
			} else {
				kr = 1
			}
		}

		origin := hit.Point.Subtract(offset)
		if outside {
			origin = hit.Point.Add(offset)
		}
		wk.trace(core.NewRay(origin, material.Reflect(ray.Direction, normal).Normalize()), power.Multiply(kr), depth+1, p, true)
	}
}

// traceShadow continues a photon straight through its first matte hit and
// records negative energy at the next matte surface it reaches
func (wk *walker) traceShadow(ray core.Ray) {
	hit, ok := wk.scene.Intersect(ray)
	if !ok || wk.scene.Material(hit).Kind != material.Matte {
		return
	}
	wk.photons.add(hit.Material, Photon{
		Position:  hit.Point,
		Direction: ray.Direction.Normalize(),
		Power:     core.NewVec3(-shadowPower, -shadowPower, -shadowPower),
	})
}
