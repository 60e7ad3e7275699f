// Package config handles tracer configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/df07/go-photon-tracer/internal/logger"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/integrator"
	"github.com/df07/go-photon-tracer/pkg/photon"
	"github.com/df07/go-photon-tracer/pkg/renderer"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all tracer settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	BVH     BVHConfig     `yaml:"bvh"`
	Photons PhotonConfig  `yaml:"photons"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// RenderConfig holds image and evaluator settings.
type RenderConfig struct {
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	TileSize          int     `yaml:"tile_size"`
	Workers           int     `yaml:"workers"` // 0 = every logical CPU
	MaxDepth          int     `yaml:"max_depth"`
	Bias              float64 `yaml:"bias"`
	LightAccumulation string  `yaml:"light_accumulation"` // sum or average
	PhotonMapping     bool    `yaml:"photon_mapping"`
}

// BVHConfig holds the hierarchy builder settings.
type BVHConfig struct {
	Bins          int `yaml:"bins"`
	LeafThreshold int `yaml:"leaf_threshold"`
	MinSplitCount int `yaml:"min_split_count"`
}

// PhotonConfig holds photon seeding and gathering settings.
type PhotonConfig struct {
	PerLight            int     `yaml:"per_light"`
	CausticMultiplier   int     `yaml:"caustic_multiplier"`
	MaxDepth            int     `yaml:"max_depth"`
	GatherRadiusSquared float64 `yaml:"gather_radius_squared"`
	EnergyScale         float64 `yaml:"energy_scale"`
	ShadowPhotons       bool    `yaml:"shadow_photons"`
	Workers             int     `yaml:"workers"`
	Seed                int64   `yaml:"seed"`
}

// ServerConfig holds the HTTP front end settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	ScenesDir string `yaml:"scenes_dir"`
	MaxPixels int    `yaml:"max_pixels"` // Largest width*height a request may ask for
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// OutputConfig holds where rendered images are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	rc := renderer.DefaultConfig()
	bvh := geometry.DefaultBuildConfig()
	pc := photon.DefaultConfig()

	return &Config{
		Render: RenderConfig{
			Width:             rc.Width,
			Height:            rc.Height,
			TileSize:          rc.TileSize,
			Workers:           rc.NumWorkers,
			MaxDepth:          rc.Integrator.MaxDepth,
			Bias:              rc.Integrator.Bias,
			LightAccumulation: string(rc.Integrator.LightAccumulation),
			PhotonMapping:     rc.PhotonMapping,
		},
		BVH: BVHConfig{
			Bins:          bvh.Bins,
			LeafThreshold: bvh.LeafThreshold,
			MinSplitCount: bvh.MinSplitCount,
		},
		Photons: PhotonConfig{
			PerLight:            pc.PhotonsPerLight,
			CausticMultiplier:   pc.CausticMultiplier,
			MaxDepth:            pc.MaxDepth,
			GatherRadiusSquared: pc.GatherRadiusSquared,
			EnergyScale:         pc.EnergyScale,
			ShadowPhotons:       pc.ShadowPhotons,
			Workers:             pc.Workers,
			Seed:                pc.Seed,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			ScenesDir: "scenes",
			MaxPixels: 2048 * 2048,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Output: OutputConfig{
			Dir: "output",
		},
	}
}

// Validate checks the settings that cannot be sanitized silently.
func (c *Config) Validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("%w: render size %dx%d", ErrInvalid, c.Render.Width, c.Render.Height)
	}
	if c.Render.MaxDepth < 0 {
		return fmt.Errorf("%w: render max_depth %d", ErrInvalid, c.Render.MaxDepth)
	}
	if _, err := integrator.ParseLightAccumulation(c.Render.LightAccumulation); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.BVH.Bins < 2 {
		return fmt.Errorf("%w: bvh bins %d", ErrInvalid, c.BVH.Bins)
	}
	if c.Photons.PerLight < 0 || c.Photons.CausticMultiplier < 0 {
		return fmt.Errorf("%w: photon counts must not be negative", ErrInvalid)
	}
	if c.Photons.GatherRadiusSquared <= 0 {
		return fmt.Errorf("%w: gather_radius_squared %v", ErrInvalid, c.Photons.GatherRadiusSquared)
	}
	if c.Server.MaxPixels <= 0 {
		return fmt.Errorf("%w: server max_pixels %d", ErrInvalid, c.Server.MaxPixels)
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// RendererConfig maps the settings onto renderer.Config.
func (c *Config) RendererConfig() renderer.Config {
	accumulation, err := integrator.ParseLightAccumulation(c.Render.LightAccumulation)
	if err != nil {
		accumulation = integrator.AccumulateSum
	}
	return renderer.Config{
		Width:         c.Render.Width,
		Height:        c.Render.Height,
		TileSize:      c.Render.TileSize,
		NumWorkers:    c.Render.Workers,
		PhotonMapping: c.Render.PhotonMapping,
		Integrator: integrator.Config{
			MaxDepth:          c.Render.MaxDepth,
			Bias:              c.Render.Bias,
			LightAccumulation: accumulation,
		},
		Photons: c.PhotonConfig(),
	}
}

// PhotonConfig maps the settings onto photon.Config.
func (c *Config) PhotonConfig() photon.Config {
	return photon.Config{
		PhotonsPerLight:     c.Photons.PerLight,
		CausticMultiplier:   c.Photons.CausticMultiplier,
		MaxDepth:            c.Photons.MaxDepth,
		GatherRadiusSquared: c.Photons.GatherRadiusSquared,
		EnergyScale:         c.Photons.EnergyScale,
		Bias:                c.Render.Bias,
		ShadowPhotons:       c.Photons.ShadowPhotons,
		Workers:             c.Photons.Workers,
		Seed:                c.Photons.Seed,
	}
}

// BuildConfig maps the settings onto geometry.BuildConfig.
func (c *Config) BuildConfig() geometry.BuildConfig {
	return geometry.BuildConfig{
		Bins:          c.BVH.Bins,
		LeafThreshold: c.BVH.LeafThreshold,
		MinSplitCount: c.BVH.MinSplitCount,
	}
}
