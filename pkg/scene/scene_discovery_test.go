package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFormatDisplayName(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"glass_spheres", "Glass Spheres"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := formatDisplayName(tc.input)
			if result != tc.expected {
				t.Errorf("formatDisplayName(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestListBuiltinScenes(t *testing.T) {
	scenes := ListBuiltinScenes()
	if len(scenes) != len(builtins) {
		t.Fatalf("Expected %d scenes, got %d", len(builtins), len(scenes))
	}
	for i, info := range scenes {
		if info.Type != "builtin" {
			t.Errorf("Scene %s: expected type builtin, got %s", info.ID, info.Type)
		}
		if i > 0 && scenes[i-1].ID >= info.ID {
			t.Errorf("Scenes not sorted: %s before %s", scenes[i-1].ID, info.ID)
		}
	}
}

func TestNewBuiltinScene(t *testing.T) {
	for _, info := range ListBuiltinScenes() {
		t.Run(info.ID, func(t *testing.T) {
			s, err := NewBuiltinScene(info.ID, nil)
			if err != nil {
				t.Fatalf("NewBuiltinScene(%q) failed: %v", info.ID, err)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Built-in scene %q does not validate: %v", info.ID, err)
			}
		})
	}

	if _, err := NewBuiltinScene("nope", nil); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestListSceneFiles(t *testing.T) {
	tempDir := t.TempDir()
	for _, name := range []string{"b-scene.yaml", "a_scene.yml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte("materials: []\n"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	scenes, err := ListSceneFiles(tempDir)
	if err != nil {
		t.Fatalf("ListSceneFiles failed: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d", len(scenes))
	}

	expected := []SceneInfo{
		{ID: "yaml-a_scene", DisplayName: "A Scene", Type: "yaml", FilePath: filepath.Join(tempDir, "a_scene.yml")},
		{ID: "yaml-b-scene", DisplayName: "B Scene", Type: "yaml", FilePath: filepath.Join(tempDir, "b-scene.yaml")},
	}
	for i, want := range expected {
		if scenes[i] != want {
			t.Errorf("Scene %d: expected %+v, got %+v", i, want, scenes[i])
		}
	}
}

func TestListSceneFiles_MissingDir(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Expected no error for a missing directory, got %v", err)
	}
	if len(scenes) != 0 {
		t.Errorf("Expected no scenes, got %d", len(scenes))
	}
}
