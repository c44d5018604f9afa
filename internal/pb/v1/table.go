package pb

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// ErrMalformedTable is returned when a Struct does not hold {id: [x, y]} entries.
var ErrMalformedTable = errors.New("malformed reference table")

// TableToStruct converts a reference table into a Struct of [x, y] lists.
func TableToStruct(table domain.Table) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(table))

	for id, c := range table {
		fields[id] = structpb.NewListValue(&structpb.ListValue{
			Values: []*structpb.Value{
				structpb.NewNumberValue(c.X),
				structpb.NewNumberValue(c.Y),
			},
		})
	}

	return &structpb.Struct{Fields: fields}
}

// TableFromStruct converts a Struct of [x, y] lists into a reference table.
func TableFromStruct(s *structpb.Struct) (domain.Table, error) {
	table := make(domain.Table, len(s.GetFields()))

	for id, value := range s.GetFields() {
		list := value.GetListValue()
		if list == nil || len(list.GetValues()) != 2 {
			return nil, fmt.Errorf("%w: %q is not a two-element list", ErrMalformedTable, id)
		}

		x, okX := number(list.GetValues()[0])
		y, okY := number(list.GetValues()[1])

		if !okX || !okY {
			return nil, fmt.Errorf("%w: %q holds a non-numeric coordinate", ErrMalformedTable, id)
		}

		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("%w: %q holds a non-finite coordinate", ErrMalformedTable, id)
		}

		table[id] = domain.Coordinates{X: x, Y: y}
	}

	return table, nil
}

func number(v *structpb.Value) (float64, bool) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}

	return n.NumberValue, true
}

// MonitorsToStruct converts monitors into {id: {s, x, y, x_ref, y_ref, enabled, measured}}.
func MonitorsToStruct(monitors []*domain.Monitor) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(monitors))

	for _, m := range monitors {
		fields[m.ID] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"s":        structpb.NewNumberValue(m.S),
				"x":        structpb.NewNumberValue(m.X),
				"y":        structpb.NewNumberValue(m.Y),
				"x_ref":    structpb.NewNumberValue(m.XRef),
				"y_ref":    structpb.NewNumberValue(m.YRef),
				"enabled":  structpb.NewBoolValue(m.Enabled),
				"measured": structpb.NewBoolValue(m.Measured),
			},
		})
	}

	return &structpb.Struct{Fields: fields}
}

// MonitorsFromStruct is the inverse of MonitorsToStruct. Monitors come back sorted by position, then identifier.
func MonitorsFromStruct(s *structpb.Struct) []*domain.Monitor {
	monitors := make([]*domain.Monitor, 0, len(s.GetFields()))

	for id, value := range s.GetFields() {
		f := value.GetStructValue().GetFields()

		monitors = append(monitors, &domain.Monitor{
			ID:       id,
			S:        f["s"].GetNumberValue(),
			X:        f["x"].GetNumberValue(),
			Y:        f["y"].GetNumberValue(),
			XRef:     f["x_ref"].GetNumberValue(),
			YRef:     f["y_ref"].GetNumberValue(),
			Enabled:  f["enabled"].GetBoolValue(),
			Measured: f["measured"].GetBoolValue(),
		})
	}

	sortMonitors(monitors)

	return monitors
}

func sortMonitors(monitors []*domain.Monitor) {
	slices.SortFunc(monitors, func(a, b *domain.Monitor) int {
		if c := cmp.Compare(a.S, b.S); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})
}
