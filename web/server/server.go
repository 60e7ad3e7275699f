package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/df07/go-photon-tracer/internal/config"
	"github.com/df07/go-photon-tracer/pkg/renderer"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// Server handles web requests for the photon tracer
type Server struct {
	config *config.Config
	echo   *echo.Echo
	log    *zap.Logger

	mu   sync.Mutex
	last *RenderSummary
}

// NewServer creates a new web server and registers its routes
func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{config: cfg, echo: e, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(corsMiddleware)

	api := s.echo.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/scenes", s.handleScenes)
	api.GET("/render", s.handleRender)
	api.GET("/stats", s.handleStats)
	api.GET("/inspect", s.handleInspect)
	api.GET("/system", s.handleSystem)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.Info("starting web server", zap.String("addr", s.config.Server.Addr))
	if err := s.echo.Start(s.config.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes followed by YAML files in the scenes directory
func (s *Server) handleScenes(c echo.Context) error {
	scenes := scene.ListBuiltinScenes()
	files, err := scene.ListSceneFiles(s.config.Server.ScenesDir)
	if err != nil {
		s.log.Warn("listing scene files", zap.String("dir", s.config.Server.ScenesDir), zap.Error(err))
	}
	return c.JSON(http.StatusOK, append(scenes, files...))
}

// SystemInfo describes the host the renderer runs on
type SystemInfo struct {
	CPUModel       string  `json:"cpuModel,omitempty"`
	LogicalCores   int     `json:"logicalCores"`
	PhysicalCores  int     `json:"physicalCores,omitempty"`
	MemoryTotalMB  uint64  `json:"memoryTotalMB,omitempty"`
	MemoryUsedPct  float64 `json:"memoryUsedPercent,omitempty"`
	DefaultWorkers int     `json:"defaultWorkers"`
	GoVersion      string  `json:"goVersion"`
}

// handleSystem reports CPU and memory details. Fields gopsutil cannot read
// on this platform are left out.
func (s *Server) handleSystem(c echo.Context) error {
	info := SystemInfo{
		LogicalCores:   runtime.NumCPU(),
		DefaultWorkers: renderer.DefaultWorkerCount(),
		GoVersion:      runtime.Version(),
	}

	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if n, err := cpu.Counts(false); err == nil {
		info.PhysicalCores = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotalMB = vm.Total / (1024 * 1024)
		info.MemoryUsedPct = vm.UsedPercent
	} else {
		s.log.Debug("reading memory info", zap.Error(err))
	}

	return c.JSON(http.StatusOK, info)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}
