package orbit

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestTableClone verifies Clone copies entries and detaches the result.
func TestTableClone(t *testing.T) {
	t.Parallel()

	require.NotNil(t, Table(nil).Clone())

	src := Table{"BPM1": {X: 0.001, Y: -0.002}}
	dst := src.Clone()

	require.Empty(t, cmp.Diff(src, dst))

	dst["BPM1"] = Zero
	require.InDelta(t, 0.001, src["BPM1"].X, 0)
}

// TestTableIDs checks identifiers come back sorted.
func TestTableIDs(t *testing.T) {
	t.Parallel()

	table := Table{"C": Zero, "A": Zero, "B": Zero}
	require.Equal(t, []string{"A", "B", "C"}, table.IDs())
}

// TestBuilder_LastWriteWins asserts duplicates are overwritten and reported.
func TestBuilder_LastWriteWins(t *testing.T) {
	t.Parallel()

	b := NewBuilder(3)
	b.Set("A", Coordinates{X: 1, Y: 1})
	b.Set("B", Coordinates{X: 2, Y: 2})
	b.Set("A", Coordinates{X: 3, Y: 3})

	require.Equal(t, Table{
		"A": {X: 3, Y: 3},
		"B": {X: 2, Y: 2},
	}, b.Table())
	require.Equal(t, []string{"A"}, b.Duplicates())
	require.Empty(t, b.NonFinite())
}

// TestBuilder_DropsNonFinite never stores NaN or infinite coordinates.
func TestBuilder_DropsNonFinite(t *testing.T) {
	t.Parallel()

	b := NewBuilder(3)
	b.Set("A", Coordinates{X: 1, Y: 1})
	b.Set("A", Coordinates{X: math.NaN(), Y: 1})
	b.Set("B", Coordinates{X: 0, Y: math.Inf(1)})

	require.Equal(t, Table{"A": {X: 1, Y: 1}}, b.Table())
	require.Equal(t, []string{"A", "B"}, b.NonFinite())
	require.True(t, Coordinates{X: -1e300, Y: 5e-324}.IsFinite())
	require.False(t, Coordinates{X: math.Inf(-1)}.IsFinite())
}

// TestMonitorClone verifies Clone handles nil and returns a distinct copy.
func TestMonitorClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Monitor)(nil).Clone())

	m := &Monitor{ID: "BPM1", S: 5, XRef: 0.1, YRef: 0.2}
	c := m.Clone()

	require.Equal(t, m, c)
	require.NotSame(t, m, c)
	require.Equal(t, Coordinates{X: 0.1, Y: 0.2}, c.Reference())

	c.SetReference(Zero)
	require.Equal(t, Coordinates{X: 0.1, Y: 0.2}, m.Reference())
}
