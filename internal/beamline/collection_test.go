package beamline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

func newTestCollection() (*Collection, []*domain.Monitor) {
	monitors := []*domain.Monitor{
		{ID: "A", S: 1, Enabled: true},
		{ID: "B", S: 2, Enabled: true},
		{ID: "C", S: 3, Enabled: false},
	}

	return NewCollection(monitors), monitors
}

// TestCollection_ApplyReadings converts valid readings and unmeasures the rest.
func TestCollection_ApplyReadings(t *testing.T) {
	t.Parallel()

	c, monitors := newTestCollection()
	monitors[1].X, monitors[1].Measured = 0.5, true
	monitors[2].X, monitors[2].Measured = 0.7, true

	measured, unknown := c.ApplyReadings([]domain.Reading{
		{Validity: domain.Valid, XMM: 1.5, YMM: -0.5, ID: "A"},
		{Validity: domain.Invalid, XMM: 7, YMM: 7, ID: "B"},
		{Validity: domain.Valid, XMM: math.NaN(), YMM: 1, ID: "C"},
		{Validity: domain.Valid, XMM: 3, YMM: 3, ID: "GHOST"},
	})
	require.Equal(t, 1, measured)
	require.Equal(t, []string{"GHOST"}, unknown)

	snapshot := c.Snapshot()
	require.True(t, snapshot[0].Measured)
	require.InDelta(t, 0.0015, snapshot[0].X, 1e-15)
	require.InDelta(t, -0.0005, snapshot[0].Y, 1e-15)
	require.False(t, snapshot[1].Measured)
	require.False(t, snapshot[2].Measured)

	// References are never touched by readings.
	require.Equal(t, domain.Zero, snapshot[0].Reference())
}

// TestCollection_SetReferences writes references only and hands out copies.
func TestCollection_SetReferences(t *testing.T) {
	t.Parallel()

	c, monitors := newTestCollection()
	monitors[0].X = 0.25

	c.SetReferences(domain.Table{
		"A":     {X: 0.001, Y: 0.002},
		"GHOST": {X: 9, Y: 9},
	})

	snapshot := c.Snapshot()
	require.Equal(t, domain.Coordinates{X: 0.001, Y: 0.002}, snapshot[0].Reference())
	require.InDelta(t, 0.25, snapshot[0].X, 0)
	require.Equal(t, domain.Zero, snapshot[1].Reference())
	require.Equal(t, 3, c.Len())

	snapshot[0].XRef = 42
	require.InDelta(t, 0.001, c.Snapshot()[0].XRef, 0)
}
