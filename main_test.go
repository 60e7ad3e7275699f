package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-photon-tracer/internal/config"
	"github.com/df07/go-photon-tracer/pkg/renderer"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

const floorSceneYAML = `
camera: {center: [0, 1, -5], look_at: [0, 1, 0]}
materials: [{name: floor, color: [0.8, 0.8, 0.8]}]
meshes: [{material: floor, ground: {center: [0, 0, 0], size: 10}}]
lights: [{type: point, position: [0, 4, 0], radiance: [10, 10, 10]}]
`

func writeFloorScene(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(floorSceneYAML), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}
	return path
}

func TestCreateScene(t *testing.T) {
	dir := t.TempDir()
	scenePath := writeFloorScene(t, dir, "floor.yaml")
	writeFloorScene(t, dir, "named.yml")

	cfg := config.Default()
	cfg.Server.ScenesDir = dir

	tests := []struct {
		name        string
		sceneType   string
		expectError bool
		expectName  string
	}{
		// Built-in scenes
		{"cornell scene", "cornell", false, "cornell"},
		{"mirror chain", "mirrors", false, "mirrors"},
		{"caustics", "caustics", false, "caustics"},
		{"sphere grid", "spheres", false, "spheres"},
		{"textured", "textured", false, "textured"},
		{"empty", "empty", false, "empty"},

		// YAML scenes
		{"YAML path", scenePath, false, "floor"},
		{"YAML name in scenes dir", "named", false, "named"},

		// Invalid scenes
		{"unknown scene", "nonexistent", true, ""},
		{"missing YAML path", filepath.Join(dir, "missing.yaml"), true, ""},
		{"empty scene name", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := createScene(tt.sceneType, cfg)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if s != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if s.Name != tt.expectName {
				t.Errorf("Expected scene name %q, got %q", tt.expectName, s.Name)
			}
			if s.Camera.VFov <= 0 {
				t.Errorf("Scene camera vfov should be positive, got %v", s.Camera.VFov)
			}
		})
	}
}

func TestCreateScene_UnknownIsWrapped(t *testing.T) {
	_, err := createScene("nonexistent", config.Default())
	if !errors.Is(err, scene.ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
	if _, err := createScene("", config.Default()); !errors.Is(err, errMissingScene) {
		t.Errorf("Expected errMissingScene, got %v", err)
	}
}

func TestCreateOutputDir(t *testing.T) {
	tests := []struct {
		name      string
		sceneName string
		expected  string
	}{
		{"built-in", "cornell", filepath.Join("output", "cornell")},
		{"file name", "floor.yaml", filepath.Join("output", "floor")},
		{"nested path", filepath.Join("scenes", "sub", "my-scene.yml"), filepath.Join("output", "my-scene")},
		{"empty name", "", filepath.Join("output", "scene")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := createOutputDir("output", tt.sceneName); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestWriteStatsTable(t *testing.T) {
	var buf bytes.Buffer
	stats := renderer.CoreStats{
		RenderTime:    1500 * time.Millisecond,
		BVHBuildTime:  2 * time.Millisecond,
		TriangleCount: 42,
		PhotonCount:   1000,
		CausticCount:  30,
	}
	frame := renderer.RenderStats{Width: 64, Height: 48, Tiles: 6, Workers: 4}
	writeStatsTable(&buf, "cornell", stats, frame)

	out := buf.String()
	for _, want := range []string{"42 triangles", "1000 + 30 caustic", "1.5s", "64x48", "4 workers", "cornell"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in table:\n%s", want, out)
		}
	}
}

func TestWriteScenesTable(t *testing.T) {
	var buf bytes.Buffer
	writeScenesTable(&buf, []scene.SceneInfo{
		{ID: "cornell", DisplayName: "Cornell Box", Type: "builtin", Description: "box"},
		{ID: "yaml-floor", DisplayName: "Floor", Type: "yaml", FilePath: "scenes/floor.yaml"},
	})

	out := buf.String()
	for _, want := range []string{"cornell", "Cornell Box", "yaml-floor", "scenes/floor.yaml"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in table:\n%s", want, out)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tracer.yaml")
	logFile := filepath.Join(dir, "tracer.log")
	if err := os.WriteFile(cfgPath, []byte("render:\n  workers: 2\nphotons:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	out := filepath.Join(dir, "frames", "cornell.png")

	app := newApp()
	var stdout bytes.Buffer
	app.Writer = &stdout

	args := []string{"photon-tracer", "--config", cfgPath, "--log-level", "warn", "--log-file", logFile,
		"render", "--width", "16", "--height", "12", "--photons", "100", "-o", out, "cornell"}
	if err := app.Run(args); err != nil {
		t.Fatalf("render command failed: %v", err)
	}

	file, err := os.Open(out)
	if err != nil {
		t.Fatalf("Expected output PNG: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("Expected 16x12 image, got %v", b)
	}
	if !strings.Contains(stdout.String(), "16x12") {
		t.Errorf("Expected stats table on stdout, got:\n%s", stdout.String())
	}
}

func TestRenderCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing scene", []string{"photon-tracer", "render", "--width", "8", "--height", "8"}},
		{"unknown scene", []string{"photon-tracer", "render", "--width", "8", "--height", "8", "nonexistent"}},
		{"zero width", []string{"photon-tracer", "render", "--width", "0", "empty"}},
		{"bad log level", []string{"photon-tracer", "--log-level", "loud", "render", "empty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Writer = &bytes.Buffer{}
			if err := app.Run(tt.args); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestScenesCommand(t *testing.T) {
	dir := t.TempDir()
	writeFloorScene(t, dir, "lit-floor.yaml")

	app := newApp()
	var stdout bytes.Buffer
	app.Writer = &stdout
	if err := app.Run([]string{"photon-tracer", "scenes", "--dir", dir}); err != nil {
		t.Fatalf("scenes command failed: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"cornell", "yaml-lit-floor", "Lit Floor"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		args   []string
		expect string
	}{
		{"verbose logging", []string{"photon-tracer", "--verbose", "scenes", "--dir", dir}, "cornell"},
		{"short version flag", []string{"photon-tracer", "-v"}, "0.1.0"},
		{"long version flag", []string{"photon-tracer", "--version"}, "0.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			var stdout bytes.Buffer
			app.Writer = &stdout
			if err := app.Run(tt.args); err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if !strings.Contains(stdout.String(), tt.expect) {
				t.Errorf("Expected %q in output:\n%s", tt.expect, stdout.String())
			}
		})
	}
}
