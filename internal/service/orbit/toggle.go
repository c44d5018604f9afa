package orbit

import (
	"context"
	"slices"

	"gonum.org/v1/gonum/floats"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	"github.com/oshokin/golden-orbit/internal/logger"
)

// Curve tags of the reference overlay.
const (
	CurveX = "golden-orbit-x"
	CurveY = "golden-orbit-y"
)

// DisplayState tells whether the reference overlay is drawn.
type DisplayState int

const (
	// Hidden is the initial state.
	Hidden DisplayState = iota
	// Shown means both overlay curves are on the display.
	Shown
)

// String returns "hidden" or "shown".
func (s DisplayState) String() string {
	if s == Shown {
		return "shown"
	}

	return "hidden"
}

// Overlay is the reference overlay in display units.
type Overlay struct {
	// S holds monitor positions plus the display offset.
	S []float64
	// X holds horizontal references in millimeters.
	X []float64
	// Y holds vertical references in millimeters.
	Y []float64
	// Skipped lists enabled monitors without a table entry.
	Skipped []string
}

// DisplayState returns the current overlay state.
func (m *Manager) DisplayState() DisplayState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// ToggleDisplay shows the overlay when hidden and hides it when shown.
// It returns the new state. The table is never modified.
func (m *Manager) ToggleDisplay(ctx context.Context) DisplayState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Shown {
		m.display.RemoveCurve(ctx, CurveX)
		m.display.RemoveCurve(ctx, CurveY)

		m.state = Hidden

		logger.InfoKV(ctx, "Reference overlay hidden")

		return m.state
	}

	overlay := BuildOverlay(m.collection.Snapshot(), m.store.Export(), m.offset)
	if len(overlay.Skipped) > 0 {
		logger.WarnKV(ctx, "Enabled monitors without a reference are not drawn", "monitors", overlay.Skipped)
	}

	m.display.AddCurve(ctx, CurveX)
	m.display.AddCurve(ctx, CurveY)
	m.display.SetData(ctx, CurveX, overlay.S, overlay.X)
	m.display.SetData(ctx, CurveY, slices.Clone(overlay.S), overlay.Y)

	m.state = Shown

	logger.InfoKV(ctx, "Reference overlay shown", "points", len(overlay.S))

	return m.state
}

// BuildOverlay computes display points for every enabled monitor with a
// table entry, in collection order. Monitors without an entry are skipped.
func BuildOverlay(monitors []*domain.Monitor, table domain.Table, offset float64) Overlay {
	var overlay Overlay

	for _, monitor := range monitors {
		if !monitor.Enabled {
			continue
		}

		c, ok := table[monitor.ID]
		if !ok {
			overlay.Skipped = append(overlay.Skipped, monitor.ID)

			continue
		}

		overlay.S = append(overlay.S, monitor.S)
		overlay.X = append(overlay.X, c.X)
		overlay.Y = append(overlay.Y, c.Y)
	}

	floats.AddConst(offset, overlay.S)
	floats.Scale(domain.MillimetersPerMeter, overlay.X)
	floats.Scale(domain.MillimetersPerMeter, overlay.Y)

	return overlay
}
