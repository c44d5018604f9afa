package provider

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// ErrSourceUnavailable is returned when a live source cannot be read or returns malformed data.
var ErrSourceUnavailable = errors.New("live source unavailable")

// Provider reads live monitor records. Coordinates are in millimeters.
type Provider interface {
	// ReadReference returns the reference orbit held by the control system.
	ReadReference(ctx context.Context) ([]domain.Reading, error)
	// ReadGold returns the golden orbit held by the control system.
	ReadGold(ctx context.Context) ([]domain.Reading, error)
	// ReadOrbit returns the current monitor readings.
	ReadOrbit(ctx context.Context) ([]domain.Reading, error)
}

// None is a Provider for setups without a live source. Every read fails.
type None struct{}

// ReadReference always fails with ErrSourceUnavailable.
func (None) ReadReference(context.Context) ([]domain.Reading, error) {
	return nil, errNotConfigured
}

// ReadGold always fails with ErrSourceUnavailable.
func (None) ReadGold(context.Context) ([]domain.Reading, error) {
	return nil, errNotConfigured
}

// ReadOrbit always fails with ErrSourceUnavailable.
func (None) ReadOrbit(context.Context) ([]domain.Reading, error) {
	return nil, errNotConfigured
}

// errNotConfigured wraps ErrSourceUnavailable for the None provider.
var errNotConfigured = fmt.Errorf("%w: no live provider configured", ErrSourceUnavailable)

// Static serves fixed records. It is meant for tests and dry runs.
type Static struct {
	// Reference is returned by ReadReference.
	Reference []domain.Reading
	// Gold is returned by ReadGold.
	Gold []domain.Reading
	// Orbit is returned by ReadOrbit.
	Orbit []domain.Reading
	// Err, when set, is returned by every read.
	Err error
}

// ReadReference returns a copy of Reference.
func (s *Static) ReadReference(context.Context) ([]domain.Reading, error) {
	return s.read(s.Reference)
}

// ReadGold returns a copy of Gold.
func (s *Static) ReadGold(context.Context) ([]domain.Reading, error) {
	return s.read(s.Gold)
}

// ReadOrbit returns a copy of Orbit.
func (s *Static) ReadOrbit(context.Context) ([]domain.Reading, error) {
	return s.read(s.Orbit)
}

func (s *Static) read(records []domain.Reading) ([]domain.Reading, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	return append([]domain.Reading(nil), records...), nil
}
