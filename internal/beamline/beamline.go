package beamline

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// ErrInvalidBeamline is returned for beamline files that cannot describe a monitor collection.
var ErrInvalidBeamline = errors.New("invalid beamline")

// Beamline is the controlled monitor collection and its display offset.
type Beamline struct {
	// Name labels the beamline in logs and plots.
	Name string
	// Offset is added to every monitor position when plotting.
	Offset float64
	// Monitors is ordered by position.
	Monitors []*domain.Monitor
}

// file mirrors the YAML layout.
type file struct {
	Name     string        `yaml:"name"`
	Offset   float64       `yaml:"offset"`
	Monitors []monitorFile `yaml:"monitors"`
}

type monitorFile struct {
	ID      string  `yaml:"id"`
	S       float64 `yaml:"s"`
	Enabled *bool   `yaml:"enabled"`
}

// Load reads a beamline description. Monitors are enabled unless stated otherwise.
func Load(path string) (*Beamline, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read beamline: %w", err)
	}

	return Parse(contents)
}

// Parse decodes a beamline description from YAML.
func Parse(contents []byte) (*Beamline, error) {
	var f file
	if err := yaml.Unmarshal(contents, &f); err != nil {
		return nil, fmt.Errorf("decode beamline: %w: %w", ErrInvalidBeamline, err)
	}

	if len(f.Monitors) == 0 {
		return nil, fmt.Errorf("no monitors: %w", ErrInvalidBeamline)
	}

	if !isFinite(f.Offset) {
		return nil, fmt.Errorf("offset %v: %w", f.Offset, ErrInvalidBeamline)
	}

	seen := make(map[string]struct{}, len(f.Monitors))
	monitors := make([]*domain.Monitor, 0, len(f.Monitors))

	for i, m := range f.Monitors {
		if m.ID == "" {
			return nil, fmt.Errorf("monitor %d has no id: %w", i, ErrInvalidBeamline)
		}

		if !isFinite(m.S) {
			return nil, fmt.Errorf("monitor %q has position %v: %w", m.ID, m.S, ErrInvalidBeamline)
		}

		if _, ok := seen[m.ID]; ok {
			return nil, fmt.Errorf("duplicate monitor %q: %w", m.ID, ErrInvalidBeamline)
		}

		if i > 0 && m.S < f.Monitors[i-1].S {
			return nil, fmt.Errorf("monitor %q is out of order: %w", m.ID, ErrInvalidBeamline)
		}

		seen[m.ID] = struct{}{}

		enabled := true
		if m.Enabled != nil {
			enabled = *m.Enabled
		}

		monitors = append(monitors, &domain.Monitor{
			ID:      m.ID,
			S:       m.S,
			Enabled: enabled,
		})
	}

	return &Beamline{
		Name:     f.Name,
		Offset:   f.Offset,
		Monitors: monitors,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
