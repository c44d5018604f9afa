package orbit

import (
	"context"
	"sort"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	"github.com/oshokin/golden-orbit/internal/logger"
)

// Sides of an unknown-monitor warning.
const (
	// SideTable marks table identifiers with no monitor.
	SideTable = "table"
	// SideMonitor marks monitors with no table entry.
	SideMonitor = "monitor"
)

// Propagation summarises one propagation.
type Propagation struct {
	// Applied is the number of monitors that took a table value.
	Applied int
	// Zeroed lists monitors without a table entry, now at (0, 0).
	Zeroed []string
	// Unknown lists table identifiers with no monitor, sorted.
	Unknown []string
}

// propagateLocked sets every monitor reference to its table value, or to
// (0, 0) when the table has none. Identifiers missing on either side are
// reported as warnings and never stop the propagation.
func (m *Manager) propagateLocked(ctx context.Context) Propagation {
	table := m.store.Export()
	monitors := m.collection.Snapshot()
	refs := make(domain.Table, len(monitors))

	var result Propagation

	for _, monitor := range monitors {
		c, ok := table[monitor.ID]
		if !ok {
			c = domain.Zero
			result.Zeroed = append(result.Zeroed, monitor.ID)
		} else {
			result.Applied++
		}

		refs[monitor.ID] = c
	}

	m.collection.SetReferences(refs)

	for id := range table {
		if _, ok := m.known[id]; !ok {
			result.Unknown = append(result.Unknown, id)
		}
	}

	sort.Strings(result.Unknown)

	if len(result.Unknown) > 0 {
		logger.WarnKV(ctx, "Reference table names monitors outside the collection", "monitors", result.Unknown)
		m.recorder.MonitorsUnknown(SideTable, len(result.Unknown))
	}

	if len(result.Zeroed) > 0 {
		logger.WarnKV(ctx, "Monitors without a reference were set to zero", "monitors", result.Zeroed)
		m.recorder.MonitorsUnknown(SideMonitor, len(result.Zeroed))
	}

	logger.DebugKV(ctx, "Reference table propagated", "applied", result.Applied, "zeroed", len(result.Zeroed),
		"unknown", len(result.Unknown))

	return result
}
