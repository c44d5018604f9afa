package orbit

import (
	"math"
	"sort"
)

// Coordinates is a horizontal/vertical pair in meters.
type Coordinates struct {
	// X is the horizontal coordinate.
	X float64
	// Y is the vertical coordinate.
	Y float64
}

// IsFinite reports whether both coordinates are neither NaN nor infinite.
// Only finite coordinates can be stored in a table.
func (c Coordinates) IsFinite() bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) && !math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}

// Zero is the reference applied to monitors without a known entry.
var Zero = Coordinates{} //nolint:gochecknoglobals // Immutable value.

// Table maps monitor identifiers to reference coordinates.
// A missing key means no reference is known for that monitor.
type Table map[string]Coordinates

// Clone returns a copy of the table. Clone of a nil table is an empty table.
func (t Table) Clone() Table {
	cloned := make(Table, len(t))
	for id, c := range t {
		cloned[id] = c
	}

	return cloned
}

// IDs returns the table identifiers in lexical order.
func (t Table) IDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Builder accumulates table entries and remembers identifiers written more than once.
// The last write for an identifier wins. Non-finite coordinates are dropped
// and their identifiers remembered, so a built table is always serializable.
type Builder struct {
	table      Table
	duplicates []string
	nonFinite  []string
}

// NewBuilder returns an empty builder with capacity for n entries.
func NewBuilder(n int) *Builder {
	return &Builder{
		table: make(Table, n),
	}
}

// Set stores c under id, overwriting any earlier value. A non-finite c is not stored.
func (b *Builder) Set(id string, c Coordinates) {
	if !c.IsFinite() {
		b.nonFinite = append(b.nonFinite, id)

		return
	}

	if _, ok := b.table[id]; ok {
		b.duplicates = append(b.duplicates, id)
	}

	b.table[id] = c
}

// Table returns the accumulated table.
func (b *Builder) Table() Table {
	return b.table
}

// Duplicates returns identifiers that were overwritten, in write order.
func (b *Builder) Duplicates() []string {
	return b.duplicates
}

// NonFinite returns identifiers whose coordinates were dropped, in write order.
func (b *Builder) NonFinite() []string {
	return b.nonFinite
}
