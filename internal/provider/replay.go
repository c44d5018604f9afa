package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// Replay serves records from a YAML snapshot. The file is read on every call,
// so an operator can swap snapshots while the server runs.
//
//	reference:
//	  - {validity: valid, x: 1.0, y: 2.0, z: 10.0, id: BPMA.2430.T3}
//	gold: [...]
//	orbit: [...]
//
// validity accepts a status name or the numeric provider status. Only "valid",
// "ok" and 0 are usable; any other status marks the record invalid.
type Replay struct {
	path string
}

// NewReplay returns a provider backed by the snapshot at path.
func NewReplay(path string) *Replay {
	return &Replay{
		path: filepath.Clean(path),
	}
}

// snapshot mirrors the YAML layout.
type snapshot struct {
	Reference []record `yaml:"reference"`
	Gold      []record `yaml:"gold"`
	Orbit     []record `yaml:"orbit"`
}

type record struct {
	Validity validity `yaml:"validity"`
	X        float64  `yaml:"x"`
	Y        float64  `yaml:"y"`
	Z        float64  `yaml:"z"`
	ID       string   `yaml:"id"`
}

type validity domain.Validity

// UnmarshalYAML accepts a name or a numeric status.
func (v *validity) UnmarshalYAML(node *yaml.Node) error {
	var status int
	if err := node.Decode(&status); err == nil {
		if status == 0 {
			*v = validity(domain.Valid)
		} else {
			*v = validity(domain.Invalid)
		}

		return nil
	}

	var name string
	if err := node.Decode(&name); err != nil {
		return fmt.Errorf("decode validity: %w", err)
	}

	*v = validity(domain.ParseValidity(name))

	return nil
}

// ReadReference returns the reference section of the snapshot.
func (r *Replay) ReadReference(ctx context.Context) ([]domain.Reading, error) {
	return r.read(ctx, func(s *snapshot) []record { return s.Reference })
}

// ReadGold returns the gold section of the snapshot.
func (r *Replay) ReadGold(ctx context.Context) ([]domain.Reading, error) {
	return r.read(ctx, func(s *snapshot) []record { return s.Gold })
}

// ReadOrbit returns the orbit section of the snapshot.
func (r *Replay) ReadOrbit(ctx context.Context) ([]domain.Reading, error) {
	return r.read(ctx, func(s *snapshot) []record { return s.Orbit })
}

func (r *Replay) read(ctx context.Context, section func(*snapshot) []record) ([]domain.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	contents, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read snapshot: %w", ErrSourceUnavailable, err)
	}

	var s snapshot
	if err = yaml.Unmarshal(contents, &s); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %w", ErrSourceUnavailable, err)
	}

	records := section(&s)
	readings := make([]domain.Reading, 0, len(records))

	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrSourceUnavailable, i)
		}

		readings = append(readings, domain.Reading{
			Validity: domain.Validity(rec.Validity),
			XMM:      rec.X,
			YMM:      rec.Y,
			Z:        rec.Z,
			ID:       rec.ID,
		})
	}

	return readings, nil
}
