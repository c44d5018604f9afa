package orbit

import (
	"fmt"
	"strings"
)

// Validity is the provider flag telling whether a live reading is usable.
// The zero value is valid, matching the provider convention of status 0 meaning OK.
// Providers may report more statuses than these two; every one of them other
// than valid maps to Invalid.
type Validity int

const (
	// Valid marks a usable reading.
	Valid Validity = iota
	// Invalid marks a reading the provider could not produce.
	Invalid
)

// String returns the lower-case name of the flag.
func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("validity(%d)", int(v))
	}
}

// ParseValidity maps a provider status name to a Validity. Only "valid" and
// "ok" are usable; "invalid", "stale", "timeout" or any other name is Invalid.
func ParseValidity(s string) Validity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "valid", "ok":
		return Valid
	default:
		return Invalid
	}
}

// Reading is a raw live record as delivered by a provider, before normalization.
type Reading struct {
	// Validity tells whether the record may be used.
	Validity Validity
	// XMM is the horizontal coordinate in millimeters.
	XMM float64
	// YMM is the vertical coordinate in millimeters.
	YMM float64
	// Z is the longitudinal position reported by the provider.
	Z float64
	// ID is the monitor identifier.
	ID string
}
