package renderer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/integrator"
	"github.com/df07/go-photon-tracer/pkg/photon"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// ErrImageSize is returned for a frame with no pixels
var ErrImageSize = errors.New("image dimensions must be positive")

// Config contains rendering configuration
type Config struct {
	Width         int
	Height        int
	TileSize      int  // Size of each tile (32x32 recommended)
	NumWorkers    int  // Number of parallel workers (0 = use CPU count)
	PhotonMapping bool // Seed a photon map and gather at matte hits
	Integrator    integrator.Config
	Photons       photon.Config
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:         400,
		Height:        300,
		TileSize:      32,
		NumWorkers:    0,
		PhotonMapping: true,
		Integrator:    integrator.DefaultConfig(),
		Photons:       photon.DefaultConfig(),
	}
}

// Renderer turns a scene into frames. The scene must not change once the
// first frame has been rendered.
type Renderer struct {
	scene      *scene.Scene
	config     Config
	integrator integrator.Integrator
	photons    *photon.Map
	logger     core.Logger

	prepareOnce sync.Once
	prepareErr  error

	mu        sync.Mutex
	stats     CoreStats
	lastFrame RenderStats
}

// NewRenderer creates a renderer over a built scene
func NewRenderer(s *scene.Scene, config Config, logger core.Logger) *Renderer {
	logger = core.LoggerOrNop(logger)
	whitted := integrator.NewWhitted(s, config.Integrator)

	// Photon seeding runs on the same number of goroutines as the tiles
	if config.Photons.Workers <= 0 {
		config.Photons.Workers = config.NumWorkers
		if config.Photons.Workers <= 0 {
			config.Photons.Workers = DefaultWorkerCount()
		}
	}

	r := &Renderer{
		scene:      s,
		config:     config,
		integrator: whitted,
		logger:     logger,
	}
	if config.PhotonMapping {
		r.photons = photon.NewMap(config.Photons, logger)
		whitted.SetGatherer(r.photons)
	}
	return r
}

// Prepare validates the scene and seeds the photon map. Render calls it on
// first use; calling it earlier moves the cost out of the first frame.
func (r *Renderer) Prepare() error {
	r.prepareOnce.Do(func() {
		if err := r.scene.Validate(); err != nil {
			r.prepareErr = fmt.Errorf("scene %q: %w", r.scene.Name, err)
			return
		}
		if r.photons == nil {
			return
		}
		if len(r.scene.Lights) == 0 {
			r.logger.Warnf("scene %q has no lights, skipping photon map", r.scene.Name)
			return
		}
		if err := r.photons.Seed(r.scene); err != nil {
			r.prepareErr = fmt.Errorf("scene %q: %w", r.scene.Name, err)
			return
		}

		photons, caustics := r.photons.Counts()
		r.mu.Lock()
		r.stats.PhotonTime = r.photons.SeedTime
		r.stats.PhotonCount = photons
		r.stats.CausticCount = caustics
		r.mu.Unlock()
	})
	return r.prepareErr
}

// Render traces one frame from view at the configured resolution
func (r *Renderer) Render(view View) (*PixelBuffer, error) {
	width, height := r.config.Width, r.config.Height
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrImageSize)
	}
	if err := r.Prepare(); err != nil {
		return nil, err
	}

	start := time.Now()
	buffer := NewPixelBuffer(width, height)
	tiles := NewTileGrid(width, height, r.config.TileSize)

	pool := NewWorkerPool(NewTileRenderer(r.integrator, view), len(tiles), r.config.NumWorkers)
	pool.Start()
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i, Buffer: buffer})
	}

	frame := RenderStats{Width: width, Height: height, Tiles: len(tiles), Workers: pool.GetNumWorkers()}
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			r.logger.Warnf("render %q: %v", r.scene.Name, result.Error)
		}
		frame.add(result)
	}
	pool.Stop()

	elapsed := time.Since(start)
	r.mu.Lock()
	r.stats.RenderTime = elapsed
	r.lastFrame = frame
	r.mu.Unlock()

	r.logger.Infof("render %q: %dx%d, %d tiles on %d workers in %v",
		r.scene.Name, width, height, frame.Tiles, frame.Workers, elapsed)
	return buffer, nil
}

// RenderDefault renders from the scene's own camera
func (r *Renderer) RenderDefault() (*PixelBuffer, error) {
	return r.Render(NewView(r.scene.Camera, r.config.Width, r.config.Height))
}

// GetCoreStats returns timings and counts for the last render
func (r *Renderer) GetCoreStats() CoreStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := r.stats
	stats.BVHBuildTime = r.scene.BVHBuildTime
	stats.TriangleCount = r.scene.TriangleCount()
	return stats
}

// LastFrameStats returns the tile summary of the last render
func (r *Renderer) LastFrameStats() RenderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFrame
}

// Config returns the renderer settings
func (r *Renderer) Config() Config {
	return r.config
}
