package orbit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/golden-orbit/internal/beamline"
	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// TestToggleDisplay_Scenario shows the overlay at s+offset in millimeters and removes it again.
func TestToggleDisplay_Scenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemoryRepository()
	repo.files["a.json"] = domain.Table{"A": {X: 0.001, Y: 0.002}}

	screen := &fakeDisplay{}
	monitors := []*domain.Monitor{{ID: "A", S: 5.0, Enabled: true}}
	m := NewManager(beamline.NewCollection(monitors), Options{Repository: repo, Display: screen, Offset: 100.0})

	_, err := m.LoadFile(ctx, "a.json")
	require.NoError(t, err)
	require.Equal(t, Hidden, m.DisplayState())
	require.Empty(t, screen.drain())

	require.Equal(t, Shown, m.ToggleDisplay(ctx))

	calls := screen.drain()
	require.Len(t, calls, 4)
	require.Equal(t, displayCall{op: "add", tag: CurveX}, calls[0])
	require.Equal(t, displayCall{op: "add", tag: CurveY}, calls[1])

	require.Equal(t, "set", calls[2].op)
	require.Equal(t, CurveX, calls[2].tag)
	require.Equal(t, []float64{105.0}, calls[2].xs)
	require.InDelta(t, 1.0, calls[2].ys[0], 1e-12)

	require.Equal(t, CurveY, calls[3].tag)
	require.Equal(t, []float64{105.0}, calls[3].xs)
	require.InDelta(t, 2.0, calls[3].ys[0], 1e-12)

	require.Equal(t, Hidden, m.ToggleDisplay(ctx))
	require.Equal(t, []displayCall{
		{op: "remove", tag: CurveX},
		{op: "remove", tag: CurveY},
	}, screen.drain())

	require.Equal(t, domain.Table{"A": {X: 0.001, Y: 0.002}}, m.Reference())
}

// TestBuildOverlay skips disabled monitors and monitors without an entry.
func TestBuildOverlay(t *testing.T) {
	t.Parallel()

	monitors := []*domain.Monitor{
		{ID: "A", S: 1, Enabled: true},
		{ID: "B", S: 2, Enabled: false},
		{ID: "C", S: 3, Enabled: true},
		{ID: "D", S: 4.5, Enabled: true},
	}

	table := domain.Table{
		"A": {X: 0.5, Y: -0.25},
		"B": {X: 1, Y: 1},
		"D": {X: -0.002, Y: 0},
	}

	overlay := BuildOverlay(monitors, table, 10)
	require.Equal(t, []float64{11, 14.5}, overlay.S)
	require.InDeltaSlice(t, []float64{500, -2}, overlay.X, 1e-9)
	require.InDeltaSlice(t, []float64{-250, 0}, overlay.Y, 1e-9)
	require.Equal(t, []string{"C"}, overlay.Skipped)

	require.Equal(t, Overlay{}, BuildOverlay(nil, table, 10))
}

// TestToggleDisplay_EmptyTable still switches state.
func TestToggleDisplay_EmptyTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	screen := &fakeDisplay{}
	m := NewManager(beamline.NewCollection(newMonitors("A")), Options{Display: screen})

	require.Equal(t, Shown, m.ToggleDisplay(ctx))
	require.Equal(t, "shown", m.DisplayState().String())

	calls := screen.drain()
	require.Len(t, calls, 4)
	require.Empty(t, calls[2].xs)

	require.Equal(t, Hidden, m.ToggleDisplay(ctx))
	require.Equal(t, "hidden", m.DisplayState().String())
}
