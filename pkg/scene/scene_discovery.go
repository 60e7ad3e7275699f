package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// ErrUnknownScene is returned for a scene id that is neither built in nor a file
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "yaml"
	FilePath    string `json:"filePath"`    // Path to the scene file (yaml type only)
}

type builtinScene struct {
	info  SceneInfo
	build func(logger core.Logger) (*Scene, error)
}

var builtins = map[string]builtinScene{
	"cornell": {
		info:  SceneInfo{ID: "cornell", DisplayName: "Cornell Box", Description: "Matte walls with a mirror and a glass sphere"},
		build: NewCornellScene,
	},
	"mirrors": {
		info:  SceneInfo{ID: "mirrors", DisplayName: "Mirror Chain", Description: "Two facing mirrors around a matte sphere"},
		build: NewMirrorChainScene,
	},
	"caustics": {
		info:  SceneInfo{ID: "caustics", DisplayName: "Glass Caustics", Description: "Glass sphere focusing a point light onto the floor"},
		build: NewCausticGlassScene,
	},
	"spheres": {
		info:  SceneInfo{ID: "spheres", DisplayName: "Sphere Grid", Description: "Grid of matte, mirror and glass spheres"},
		build: NewSphereGridScene,
	},
	"textured": {
		info:  SceneInfo{ID: "textured", DisplayName: "Textured Quads", Description: "Procedural textures on matte quads"},
		build: NewTextureTestScene,
	},
	"empty": {
		info:  SceneInfo{ID: "empty", DisplayName: "Empty", Description: "No geometry, background only"},
		build: NewEmptyScene,
	},
}

// ListBuiltinScenes returns the built-in scenes sorted by id
func ListBuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		info := b.info
		info.Type = "builtin"
		scenes = append(scenes, info)
	}
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].ID < scenes[j].ID })
	return scenes
}

// NewBuiltinScene builds a built-in scene by id
func NewBuiltinScene(id string, logger core.Logger) (*Scene, error) {
	b, ok := builtins[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownScene)
	}
	s, err := b.build(logger)
	if err != nil {
		return nil, fmt.Errorf("building scene %q: %w", id, err)
	}
	return s, nil
}

// ListSceneFiles scans dir for YAML scene descriptions. A missing
// directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	scenes := make([]SceneInfo, 0, len(files))
	for _, file := range files {
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		scenes = append(scenes, SceneInfo{
			ID:          "yaml-" + base,
			DisplayName: formatDisplayName(base),
			Type:        "yaml",
			FilePath:    file,
		})
	}
	return scenes, nil
}

// formatDisplayName turns "glass-spheres" into "Glass Spheres"
func formatDisplayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
