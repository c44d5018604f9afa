package orbit

// MillimetersPerMeter converts between provider units and table units.
const MillimetersPerMeter = 1000.0

// FromMillimeters converts a millimeter pair into table coordinates.
func FromMillimeters(xmm, ymm float64) Coordinates {
	return Coordinates{
		X: xmm / MillimetersPerMeter,
		Y: ymm / MillimetersPerMeter,
	}
}

// Millimeters returns c converted back to millimeters.
func (c Coordinates) Millimeters() (float64, float64) {
	return c.X * MillimetersPerMeter, c.Y * MillimetersPerMeter
}

// TableFromReadings keeps valid readings only and converts them to meters.
// Invalid readings are never normalized. When an identifier repeats, the later
// record wins and the identifier is reported in duplicates. Valid readings
// with non-finite coordinates are dropped and reported in nonFinite.
func TableFromReadings(readings []Reading) (table Table, duplicates, nonFinite []string) {
	b := NewBuilder(len(readings))

	for _, r := range readings {
		if r.Validity != Valid {
			continue
		}

		b.Set(r.ID, FromMillimeters(r.XMM, r.YMM))
	}

	return b.Table(), b.Duplicates(), b.NonFinite()
}
