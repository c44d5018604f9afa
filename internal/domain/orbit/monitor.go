package orbit

// Monitor is one beam-position sensor of the controlled collection.
// Only XRef and YRef are written by the reference orbit manager.
type Monitor struct {
	// ID is unique within a beamline.
	ID string
	// S is the longitudinal position along the beamline in meters.
	S float64
	// X is the current horizontal reading in meters.
	X float64
	// Y is the current vertical reading in meters.
	Y float64
	// XRef is the horizontal reference in meters.
	XRef float64
	// YRef is the vertical reference in meters.
	YRef float64
	// Enabled marks monitors selected for display.
	Enabled bool
	// Measured is set once the monitor has a valid current reading.
	Measured bool
}

// Reference returns the reference coordinates of the monitor.
func (m *Monitor) Reference() Coordinates {
	return Coordinates{X: m.XRef, Y: m.YRef}
}

// SetReference writes the reference coordinates of the monitor.
func (m *Monitor) SetReference(c Coordinates) {
	m.XRef = c.X
	m.YRef = c.Y
}

// Clone returns a copy of the monitor.
func (m *Monitor) Clone() *Monitor {
	if m == nil {
		return nil
	}

	cloned := *m

	return &cloned
}
