package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-photon-tracer/internal/config"
	"github.com/df07/go-photon-tracer/internal/logger"
	"github.com/df07/go-photon-tracer/pkg/loaders"
	"github.com/df07/go-photon-tracer/pkg/renderer"
	"github.com/df07/go-photon-tracer/pkg/scene"
	"github.com/df07/go-photon-tracer/web/server"
)

var errMissingScene = errors.New("missing scene argument")

// loadConfig applies defaults < config file < global flags, validates the
// result and starts logging
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	if level := ctx.GlobalString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if ctx.GlobalBool("verbose") {
		cfg.Logging.Level = "debug"
	}
	if file := ctx.GlobalString("log-file"); file != "" {
		cfg.Logging.LogFile = file
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyRenderFlags overrides config values with the flags actually given
func applyRenderFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("width") {
		cfg.Render.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Render.Height = ctx.Int("height")
	}
	if ctx.IsSet("workers") {
		cfg.Render.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("tile-size") {
		cfg.Render.TileSize = ctx.Int("tile-size")
	}
	if ctx.IsSet("max-depth") {
		cfg.Render.MaxDepth = ctx.Int("max-depth")
	}
	if ctx.IsSet("photons") {
		cfg.Photons.PerLight = ctx.Int("photons")
	}
	if ctx.Bool("no-photons") {
		cfg.Render.PhotonMapping = false
	}
	if ctx.Bool("shadow-photons") {
		cfg.Photons.ShadowPhotons = true
	}
}

// createScene resolves a YAML path, a built-in id, or a YAML file named id
// in the scenes directory, in that order
func createScene(id string, cfg *config.Config) (*scene.Scene, error) {
	if id == "" {
		return nil, errMissingScene
	}

	if isSceneFile(id) {
		return loaders.LoadSceneWith(id, cfg.BuildConfig(), logger.Sugar)
	}

	s, err := scene.NewBuiltinScene(id, logger.Sugar)
	if err == nil || !errors.Is(err, scene.ErrUnknownScene) {
		return s, err
	}

	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(cfg.Server.ScenesDir, id+ext)
		if _, statErr := os.Stat(path); statErr == nil {
			return loaders.LoadSceneWith(path, cfg.BuildConfig(), logger.Sugar)
		}
	}
	return nil, err
}

func isSceneFile(id string) bool {
	ext := strings.ToLower(filepath.Ext(id))
	return ext == ".yaml" || ext == ".yml"
}

// createOutputDir returns the per-scene directory under the output root
func createOutputDir(root, sceneName string) string {
	base := strings.TrimSuffix(filepath.Base(sceneName), filepath.Ext(sceneName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "scene"
	}
	return filepath.Join(root, base)
}

func writePNG(path string, buffer *renderer.PixelBuffer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, buffer.Image()); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}

func renderCommand(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	applyRenderFlags(ctx, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errMissingScene
	}
	s, err := createScene(ctx.Args().First(), cfg)
	if err != nil {
		return err
	}

	r := renderer.NewRenderer(s, cfg.RendererConfig(), logger.Sugar)
	buffer, err := r.RenderDefault()
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if out == "" {
		timestamp := time.Now().Format("20060102_150405")
		out = filepath.Join(createOutputDir(cfg.Output.Dir, s.Name), fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := writePNG(out, buffer); err != nil {
		return err
	}

	writeStatsTable(ctx.App.Writer, s.Name, r.GetCoreStats(), r.LastFrameStats())
	logger.Info("render saved", zap.String("scene", s.Name), zap.String("file", out))
	return nil
}

func scenesCommand(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	dir := cfg.Server.ScenesDir
	if ctx.IsSet("dir") {
		dir = ctx.String("dir")
	}
	files, err := scene.ListSceneFiles(dir)
	if err != nil {
		return err
	}

	writeScenesTable(ctx.App.Writer, append(scene.ListBuiltinScenes(), files...))
	return nil
}

func serveCommand(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.IsSet("addr") {
		cfg.Server.Addr = ctx.String("addr")
	}
	if ctx.IsSet("scenes-dir") {
		cfg.Server.ScenesDir = ctx.String("scenes-dir")
	}

	srv := server.NewServer(cfg, logger.Log)

	stop, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-stop.Done():
	}

	logger.Info("shutting down web server")
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}

func writeStatsTable(w io.Writer, sceneName string, stats renderer.CoreStats, frame renderer.RenderStats) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stage", "Count", "Time"})
	table.Append([]string{"BVH build", fmt.Sprintf("%d triangles", stats.TriangleCount), stats.BVHBuildTime.String()})
	table.Append([]string{"Photon map", fmt.Sprintf("%d + %d caustic", stats.PhotonCount, stats.CausticCount), stats.PhotonTime.String()})
	table.Append([]string{"Render", fmt.Sprintf("%d tiles, %d failed", frame.Tiles, frame.FailedTiles), stats.RenderTime.String()})
	table.SetFooter([]string{sceneName, fmt.Sprintf("%dx%d", frame.Width, frame.Height), fmt.Sprintf("%d workers", frame.Workers)})
	table.Render()
}

func writeScenesTable(w io.Writer, scenes []scene.SceneInfo) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"ID", "Name", "Type", "Description"})
	for _, info := range scenes {
		description := info.Description
		if info.Type == "yaml" {
			description = info.FilePath
		}
		table.Append([]string{info.ID, info.DisplayName, info.Type, description})
	}
	table.Render()
}
