package orbit

import (
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// TestStore_Merge only touches identifiers already in the table.
func TestStore_Merge(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Replace(domain.Table{
		"A": {X: 1, Y: 1},
		"B": {X: 2, Y: 2},
	})

	updated, ignored := s.Merge(domain.Table{"C": {X: 9, Y: 9}})
	require.Empty(t, updated)
	require.Equal(t, []string{"C"}, ignored)
	require.Equal(t, domain.Table{"A": {X: 1, Y: 1}, "B": {X: 2, Y: 2}}, s.Export())

	updated, ignored = s.Merge(domain.Table{"A": {X: 5, Y: 6}, "D": {X: 7, Y: 8}})
	require.Equal(t, []string{"A"}, updated)
	require.Equal(t, []string{"D"}, ignored)
	require.Equal(t, domain.Table{"A": {X: 5, Y: 6}, "B": {X: 2, Y: 2}}, s.Export())
}

// TestStore_SnapshotsAreIndependent keeps exported and replaced tables apart from the store.
func TestStore_SnapshotsAreIndependent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	require.Equal(t, domain.Table{}, s.Export())

	in := domain.Table{"A": {X: 1, Y: 2}}
	s.Replace(in)
	in["A"] = domain.Coordinates{X: 9, Y: 9}

	out := s.Export()
	out["B"] = domain.Coordinates{}

	s.Merge(domain.Table{"A": {X: 3, Y: 4}})

	require.Equal(t, domain.Table{"A": {X: 1, Y: 2}, "B": {}}, out)
	require.Equal(t, domain.Table{"A": {X: 3, Y: 4}}, s.Export())
	require.Equal(t, 1, s.Len())
}
