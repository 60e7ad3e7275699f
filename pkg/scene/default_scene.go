package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
)

// NewEmptyScene creates a scene with no geometry, lights or materials.
// Every ray misses and returns the background.
func NewEmptyScene(logger core.Logger) (*Scene, error) {
	s := New("empty", logger)
	s.Background = core.NewVec3(0.5, 0.7, 1.0)
	if err := s.SetGeometry(0, nil, nil); err != nil {
		return nil, err
	}
	return s, nil
}
