package server

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/loaders"
	"github.com/df07/go-photon-tracer/pkg/renderer"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

const (
	maxDimension   = 2000
	maxPhotons     = 1000000
	defaultSceneID = "cornell"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene         string `json:"scene"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	MaxDepth      int    `json:"maxDepth"`
	Photons       int    `json:"photons"` // Photons per light
	PhotonMapping bool   `json:"photonMapping"`
}

// Stats mirrors renderer.CoreStats in milliseconds
type Stats struct {
	RenderMs      float64 `json:"renderMs"`
	BVHBuildMs    float64 `json:"bvhBuildMs"`
	PhotonMs      float64 `json:"photonMs"`
	TriangleCount int     `json:"triangleCount"`
	PhotonCount   int     `json:"photonCount"`
	CausticCount  int     `json:"causticCount"`
}

// RenderSummary is what /api/stats reports about the last render
type RenderSummary struct {
	Request     RenderRequest    `json:"request"`
	Stats       Stats            `json:"stats"`
	Tiles       int              `json:"tiles"`
	FailedTiles int              `json:"failedTiles"`
	Workers     int              `json:"workers"`
	Console     []ConsoleMessage `json:"console"`
	FinishedAt  time.Time        `json:"finishedAt"`
}

func newStats(cs renderer.CoreStats) Stats {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return Stats{
		RenderMs:      ms(cs.RenderTime),
		BVHBuildMs:    ms(cs.BVHBuildTime),
		PhotonMs:      ms(cs.PhotonTime),
		TriangleCount: cs.TriangleCount,
		PhotonCount:   cs.PhotonCount,
		CausticCount:  cs.CausticCount,
	}
}

// parseRenderRequest parses request parameters, defaulting to the server config
func (s *Server) parseRenderRequest(c echo.Context) (*RenderRequest, error) {
	query := c.QueryParams()
	defaults := s.config.Render

	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = defaultSceneID
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", defaults.Width, 1, maxDimension); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", defaults.Height, 1, maxDimension); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", defaults.MaxDepth, 0, 64); err != nil {
		return nil, err
	}
	if req.Photons, err = parseIntParam(query, "photons", s.config.Photons.PerLight, 0, maxPhotons); err != nil {
		return nil, err
	}
	if req.PhotonMapping, err = parseBoolParam(query, "photonMapping", defaults.PhotonMapping); err != nil {
		return nil, err
	}

	if req.Width*req.Height > s.config.Server.MaxPixels {
		return nil, fmt.Errorf("%dx%d exceeds the %d pixel limit", req.Width, req.Height, s.config.Server.MaxPixels)
	}
	return req, nil
}

// loadScene resolves a built-in id or a yaml-<name> id from the scenes directory
func (s *Server) loadScene(id string, logger core.Logger) (*scene.Scene, error) {
	if !strings.HasPrefix(id, "yaml-") {
		return scene.NewBuiltinScene(id, logger)
	}

	files, err := scene.ListSceneFiles(s.config.Server.ScenesDir)
	if err != nil {
		return nil, err
	}
	for _, info := range files {
		if info.ID == id {
			return loaders.LoadSceneWith(info.FilePath, s.config.BuildConfig(), logger)
		}
	}
	return nil, fmt.Errorf("%q: %w", id, scene.ErrUnknownScene)
}

// handleRender renders one frame and returns it as a PNG
func (s *Server) handleRender(c echo.Context) error {
	req, err := s.parseRenderRequest(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	// A client that already went away does not get a render started for it
	if err := c.Request().Context().Err(); err != nil {
		s.log.Debug("render request cancelled before start", zap.String("scene", req.Scene))
		return errorJSON(c, http.StatusServiceUnavailable, "request cancelled")
	}

	renderID := "render-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	consoleChan := make(chan ConsoleMessage, 64)
	webLogger := NewWebLogger(renderID, consoleChan, s.log.Sugar())

	sceneObj, err := s.loadScene(req.Scene, webLogger)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, scene.ErrUnknownScene) {
			status = http.StatusNotFound
		}
		return errorJSON(c, status, err.Error())
	}

	cfg := s.config.RendererConfig()
	cfg.Width = req.Width
	cfg.Height = req.Height
	cfg.Integrator.MaxDepth = req.MaxDepth
	cfg.Photons.PhotonsPerLight = req.Photons
	cfg.PhotonMapping = req.PhotonMapping

	r := renderer.NewRenderer(sceneObj, cfg, webLogger)
	buffer, err := r.RenderDefault()
	if err != nil {
		s.log.Warn("render failed", zap.String("scene", req.Scene), zap.Error(err))
		return errorJSON(c, http.StatusUnprocessableEntity, err.Error())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, buffer.Image()); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to encode image")
	}

	frame := r.LastFrameStats()
	summary := &RenderSummary{
		Request:     *req,
		Stats:       newStats(r.GetCoreStats()),
		Tiles:       frame.Tiles,
		FailedTiles: frame.FailedTiles,
		Workers:     frame.Workers,
		Console:     drainConsole(consoleChan),
		FinishedAt:  time.Now(),
	}
	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()

	s.log.Info("rendered",
		zap.String("scene", req.Scene),
		zap.Int("width", req.Width),
		zap.Int("height", req.Height),
		zap.Float64("render_ms", summary.Stats.RenderMs),
		zap.Int("failed_tiles", frame.FailedTiles))

	c.Response().Header().Set("X-Render-Time-Ms", strconv.FormatFloat(summary.Stats.RenderMs, 'f', 2, 64))
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// handleStats returns the summary of the last successful render
func (s *Server) handleStats(c echo.Context) error {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		return errorJSON(c, http.StatusNotFound, "no render yet")
	}
	return c.JSON(http.StatusOK, last)
}
