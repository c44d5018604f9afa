package reference

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	pb "github.com/oshokin/golden-orbit/internal/pb/v1"
)

// decodeJSON reads {"ID": [x, y]} in meters.
func decodeJSON(contents []byte) (domain.Table, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(contents, &s); err != nil {
		return nil, fmt.Errorf("%w: decode json: %w", ErrFileFormat, err)
	}

	table, err := pb.TableFromStruct(&s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileFormat, err)
	}

	return table, nil
}

// encodeJSON writes the table as {"ID": [x, y]} in meters.
func encodeJSON(table domain.Table) ([]byte, error) {
	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(pb.TableToStruct(table))
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	return data, nil
}
