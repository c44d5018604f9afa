package beamline

import (
	"sync"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// Collection owns the monitors of a beamline at run time. Current readings
// are written by ApplyReadings, references by SetReferences. Readers get
// copies.
type Collection struct {
	mu       sync.RWMutex
	monitors []*domain.Monitor
	index    map[string]*domain.Monitor
}

// NewCollection takes ownership of monitors, keeping their order.
func NewCollection(monitors []*domain.Monitor) *Collection {
	index := make(map[string]*domain.Monitor, len(monitors))
	for _, m := range monitors {
		index[m.ID] = m
	}

	return &Collection{
		monitors: monitors,
		index:    index,
	}
}

// Len returns the number of monitors.
func (c *Collection) Len() int {
	return len(c.monitors)
}

// Snapshot returns copies of the monitors in collection order.
func (c *Collection) Snapshot() []*domain.Monitor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Monitor, len(c.monitors))
	for i, m := range c.monitors {
		out[i] = m.Clone()
	}

	return out
}

// SetReferences writes the references of the monitors named in refs.
// Identifiers without a monitor are ignored.
func (c *Collection) SetReferences(refs domain.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, ref := range refs {
		if m, ok := c.index[id]; ok {
			m.SetReference(ref)
		}
	}
}

// ApplyReadings stores live orbit readings as the current readings of the
// monitors. An invalid or non-finite reading leaves its monitor unmeasured.
// Monitors absent from readings keep their last reading. It returns the
// identifiers with no monitor.
func (c *Collection) ApplyReadings(readings []domain.Reading) (measured int, unknown []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range readings {
		m, ok := c.index[r.ID]
		if !ok {
			unknown = append(unknown, r.ID)

			continue
		}

		current := domain.FromMillimeters(r.XMM, r.YMM)
		if r.Validity != domain.Valid || !current.IsFinite() {
			m.Measured = false

			continue
		}

		m.X, m.Y = current.X, current.Y
		m.Measured = true
		measured++
	}

	return measured, unknown
}
