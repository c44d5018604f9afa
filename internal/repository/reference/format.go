package reference

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// ErrFileFormat is returned for missing, unreadable or malformed orbit files.
var ErrFileFormat = errors.New("unsupported orbit file")

// Format identifies an orbit file encoding.
type Format int

const (
	// FormatUnknown is an extension this package cannot read.
	FormatUnknown Format = iota
	// FormatJSON is the structured-text format in meters.
	FormatJSON
	// FormatMAT is the legacy matrix container in millimeters.
	FormatMAT
)

// Extensions of the supported formats.
const (
	ExtJSON = ".json"
	ExtMAT  = ".mat"
)

// String returns the short name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMAT:
		return "mat"
	default:
		return "unknown"
	}
}

// FormatFromPath selects the format from the file extension, case-insensitively.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtJSON:
		return FormatJSON, nil
	case ExtMAT:
		return FormatMAT, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: unknown extension of %q", ErrFileFormat, path)
	}
}

// decoded is what a format parser yields.
type decoded struct {
	table      domain.Table
	duplicates []string
	// nonFinite lists the identifiers dropped for NaN or infinite coordinates.
	nonFinite []string
}

// decode parses contents according to f.
func (f Format) decode(contents []byte) (*decoded, error) {
	switch f {
	case FormatJSON:
		table, err := decodeJSON(contents)
		if err != nil {
			return nil, err
		}

		return &decoded{table: table}, nil
	case FormatMAT:
		return decodeMATOrbit(contents)
	default:
		return nil, fmt.Errorf("%w: no decoder for %s", ErrFileFormat, f)
	}
}
