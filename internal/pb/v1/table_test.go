package pb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// TestTableStructRoundtrip converts a table to a Struct and back.
func TestTableStructRoundtrip(t *testing.T) {
	t.Parallel()

	want := domain.Table{
		"BPM1":         {X: 0.001, Y: -0.002},
		"BPMA.2430.T3": {X: 1.25e-5, Y: 0},
	}

	got, err := TableFromStruct(TableToStruct(want))
	require.NoError(t, err)
	require.Equal(t, want, got)

	empty, err := TableFromStruct(nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

// TestTableFromStruct_Malformed rejects entries that are not two finite numbers.
func TestTableFromStruct_Malformed(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]any{
		"scalar":      {"A": 1.0},
		"short":       {"A": []any{1.0}},
		"long":        {"A": []any{1.0, 2.0, 3.0}},
		"string":      {"A": []any{"1", 2.0}},
		"nested list": {"A": []any{[]any{1.0}, 2.0}},
		"nan x":       {"A": []any{math.NaN(), 2.0}},
		"infinite y":  {"A": []any{1.0, math.Inf(-1)}},
	}

	for name, fields := range cases {
		s, err := structpb.NewStruct(fields)
		require.NoError(t, err, name)

		_, err = TableFromStruct(s)
		require.ErrorIs(t, err, ErrMalformedTable, name)
	}
}

// TestMonitorsStructRoundtrip keeps every field and orders by position.
func TestMonitorsStructRoundtrip(t *testing.T) {
	t.Parallel()

	monitors := []*domain.Monitor{
		{ID: "B", S: 2, X: 0.1, Y: 0.2, XRef: 0.3, YRef: 0.4, Enabled: true, Measured: true},
		{ID: "A", S: 1},
		{ID: "C", S: 2},
	}

	got := MonitorsFromStruct(MonitorsToStruct(monitors))

	require.Equal(t, []*domain.Monitor{monitors[1], monitors[0], monitors[2]}, got)
}
