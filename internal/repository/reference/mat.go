package reference

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
)

// Layout of a MATLAB level-5 MAT file.
const (
	matHeaderSize    = 128
	matVersionOffset = 124
	matVersion5      = 0x0100
	matTagSize       = 8
	matAlignment     = 8
	matSmallMaxBytes = 4
)

// Data element types.
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16
	miUTF16      = 17
	miUTF32      = 18
)

// Array classes.
const (
	mxCELL   = 1
	mxSTRUCT = 2
	mxCHAR   = 4
	mxDOUBLE = 6
	mxUINT64 = 15

	mxComplexFlag = 0x0800
)

// Names of the variable and fields holding a legacy orbit.
const (
	matOrbitVariable = "data"
	matNamesField    = "names"
	matXField        = "x"
	matYField        = "y"
)

// matArray is one decoded miMATRIX element. Data is stored column-major.
type matArray struct {
	class  uint8
	dims   []int
	name   string
	values []float64
	chars  []rune
	cells  []*matArray
	fields []string
	// elements holds one field map per struct element.
	elements []map[string]*matArray
}

// maxMATElements bounds the element count of a single array.
const maxMATElements = math.MaxInt32

// count returns the number of elements implied by dims, failing when the
// product exceeds maxMATElements.
func (a *matArray) count() (int, error) {
	if len(a.dims) == 0 || slices.Contains(a.dims, 0) {
		return 0, nil
	}

	n := 1
	for _, d := range a.dims {
		if n > maxMATElements/d {
			return 0, fmt.Errorf("dimensions %v of %q hold too many elements", a.dims, a.name)
		}

		n *= d
	}

	return n, nil
}

// isVector reports whether the array has at most one non-singleton dimension.
func (a *matArray) isVector() bool {
	long := 0

	for _, d := range a.dims {
		if d > 1 {
			long++
		}
	}

	return long <= 1
}

// strings returns the rows of a char matrix, or the strings of a cell array of char matrices.
func (a *matArray) strings() ([]string, error) {
	switch a.class {
	case mxCHAR:
		if len(a.dims) != 2 {
			return nil, fmt.Errorf("char array %q has %d dimensions", a.name, len(a.dims))
		}

		rows, cols := a.dims[0], a.dims[1]
		out := make([]string, rows)

		for r := range rows {
			row := make([]rune, cols)
			for c := range cols {
				row[c] = a.chars[c*rows+r]
			}

			out[r] = string(row)
		}

		return out, nil
	case mxCELL:
		out := make([]string, 0, len(a.cells))

		for i, cell := range a.cells {
			if cell.class != mxCHAR {
				return nil, fmt.Errorf("cell %d of %q is not text", i, a.name)
			}

			rows, err := cell.strings()
			if err != nil {
				return nil, err
			}

			out = append(out, strings.Join(rows, ""))
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%q is neither a char matrix nor a cell array", a.name)
	}
}

// matDecoder walks data elements in the byte order announced by the file header.
type matDecoder struct {
	order binary.ByteOrder
}

// decodeMAT parses every top-level variable of a level-5 MAT file.
func decodeMAT(contents []byte) (map[string]*matArray, error) {
	if len(contents) < matHeaderSize {
		return nil, fmt.Errorf("file is shorter than the %d-byte header", matHeaderSize)
	}

	var d matDecoder

	switch string(contents[matHeaderSize-2 : matHeaderSize]) {
	case "IM":
		d.order = binary.LittleEndian
	case "MI":
		d.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("missing endian indicator, not a level-5 MAT file")
	}

	if v := d.order.Uint16(contents[matVersionOffset:]); v != matVersion5 {
		return nil, fmt.Errorf("unsupported MAT version 0x%04x", v)
	}

	vars := make(map[string]*matArray)
	if err := d.variables(contents[matHeaderSize:], vars); err != nil {
		return nil, err
	}

	return vars, nil
}

// variables decodes a run of top-level elements into vars.
func (d *matDecoder) variables(buf []byte, vars map[string]*matArray) error {
	for len(buf) > 0 {
		typ, payload, rest, err := d.element(buf)
		if err != nil {
			return err
		}

		buf = rest

		switch typ {
		case miCOMPRESSED:
			inflated, err := inflate(payload)
			if err != nil {
				return err
			}

			if err = d.variables(inflated, vars); err != nil {
				return err
			}
		case miMATRIX:
			array, err := d.matrix(payload)
			if err != nil {
				return err
			}

			vars[array.name] = array
		default:
			return fmt.Errorf("unexpected top-level element type %d", typ)
		}
	}

	return nil
}

// element splits the next data element off buf. Small elements pack the tag
// and up to four bytes of data into eight bytes.
func (d *matDecoder) element(buf []byte) (typ uint32, payload, rest []byte, err error) {
	if len(buf) < matTagSize {
		return 0, nil, nil, fmt.Errorf("truncated element tag")
	}

	first := d.order.Uint32(buf)
	if small := first >> 16; small != 0 {
		if small > matSmallMaxBytes {
			return 0, nil, nil, fmt.Errorf("small element claims %d bytes", small)
		}

		return first & 0xffff, buf[4 : 4+small], buf[matTagSize:], nil
	}

	size := uint64(d.order.Uint32(buf[4:]))
	if size > uint64(len(buf)-matTagSize) {
		return 0, nil, nil, fmt.Errorf("element of type %d needs %d bytes, %d left", first, size, len(buf)-matTagSize)
	}

	end := matTagSize + int(size)
	payload = buf[matTagSize:end]

	// Compressed elements are not padded.
	if first != miCOMPRESSED {
		end = min(align(end), len(buf))
	}

	return first, payload, buf[end:], nil
}

func align(n int) int {
	return (n + matAlignment - 1) / matAlignment * matAlignment
}

func inflate(payload []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open compressed element: %w", err)
	}

	defer func() {
		_ = r.Close()
	}()

	inflated, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate compressed element: %w", err)
	}

	return inflated, nil
}

// matrix decodes the payload of a miMATRIX element.
//
//nolint:cyclop,funlen // One switch over the array classes reads better than several helpers.
func (d *matDecoder) matrix(buf []byte) (*matArray, error) {
	// Empty cells are written as matrices without subelements.
	if len(buf) == 0 {
		return &matArray{dims: []int{0, 0}}, nil
	}

	_, flags, buf, err := d.element(buf)
	if err != nil {
		return nil, fmt.Errorf("array flags: %w", err)
	}

	if len(flags) < 4 {
		return nil, fmt.Errorf("array flags are %d bytes long", len(flags))
	}

	flagWord := d.order.Uint32(flags)

	array := &matArray{class: uint8(flagWord & 0xff)} //nolint:gosec // Class lives in the low byte.

	dimsType, dimsData, buf, err := d.element(buf)
	if err != nil {
		return nil, fmt.Errorf("dimensions: %w", err)
	}

	dims, err := d.numbers(dimsType, dimsData)
	if err != nil {
		return nil, fmt.Errorf("dimensions: %w", err)
	}

	for _, v := range dims {
		if v < 0 || v > maxMATElements || v != math.Trunc(v) {
			return nil, fmt.Errorf("invalid dimension %v", v)
		}

		array.dims = append(array.dims, int(v))
	}

	_, name, buf, err := d.element(buf)
	if err != nil {
		return nil, fmt.Errorf("array name: %w", err)
	}

	array.name = string(name)

	n, err := array.count()
	if err != nil {
		return nil, err
	}

	switch {
	case array.class == mxCELL:
		// Every cell is at least one tag long.
		if n > len(buf)/matTagSize {
			return nil, fmt.Errorf("cell array %q has %d cells in %d bytes", array.name, n, len(buf))
		}

		for i := range n {
			typ, payload, rest, err := d.element(buf)
			if err != nil {
				return nil, fmt.Errorf("cell %d of %q: %w", i, array.name, err)
			}

			if typ != miMATRIX {
				return nil, fmt.Errorf("cell %d of %q has element type %d", i, array.name, typ)
			}

			cell, err := d.matrix(payload)
			if err != nil {
				return nil, err
			}

			array.cells = append(array.cells, cell)
			buf = rest
		}
	case array.class == mxSTRUCT:
		if err = d.structure(array, buf, n); err != nil {
			return nil, err
		}
	case array.class == mxCHAR:
		typ, payload, _, err := d.element(buf)
		if err != nil {
			return nil, fmt.Errorf("text of %q: %w", array.name, err)
		}

		if array.chars, err = d.text(typ, payload); err != nil {
			return nil, fmt.Errorf("text of %q: %w", array.name, err)
		}

		if len(array.chars) != n {
			return nil, fmt.Errorf("text of %q has %d characters, dimensions need %d",
				array.name, len(array.chars), n)
		}
	case array.class >= mxDOUBLE && array.class <= mxUINT64:
		if flagWord&mxComplexFlag != 0 {
			return nil, fmt.Errorf("complex array %q", array.name)
		}

		typ, payload, _, err := d.element(buf)
		if err != nil {
			return nil, fmt.Errorf("values of %q: %w", array.name, err)
		}

		// Values are coerced to float64 whatever their storage type.
		if array.values, err = d.numbers(typ, payload); err != nil {
			return nil, fmt.Errorf("values of %q: %w", array.name, err)
		}

		if len(array.values) != n {
			return nil, fmt.Errorf("%q has %d values, dimensions need %d",
				array.name, len(array.values), n)
		}
	default:
		return nil, fmt.Errorf("array %q has unsupported class %d", array.name, array.class)
	}

	return array, nil
}

// structure decodes field names and the field values of n struct elements.
func (d *matDecoder) structure(array *matArray, buf []byte, n int) error {
	typ, payload, buf, err := d.element(buf)
	if err != nil {
		return fmt.Errorf("field name length of %q: %w", array.name, err)
	}

	lengths, err := d.numbers(typ, payload)
	if err != nil || len(lengths) != 1 || lengths[0] <= 0 {
		return fmt.Errorf("field name length of %q is invalid", array.name)
	}

	nameLength := int(lengths[0])

	_, names, buf, err := d.element(buf)
	if err != nil {
		return fmt.Errorf("field names of %q: %w", array.name, err)
	}

	if len(names)%nameLength != 0 {
		return fmt.Errorf("field names of %q are not a multiple of %d bytes", array.name, nameLength)
	}

	for i := 0; i < len(names); i += nameLength {
		array.fields = append(array.fields, string(bytes.TrimRight(names[i:i+nameLength], "\x00")))
	}

	if n > 0 && len(array.fields) == 0 {
		return fmt.Errorf("struct %q has %d elements and no fields", array.name, n)
	}

	// Every field value is at least one tag long.
	if len(array.fields) > 0 && n > len(buf)/matTagSize/len(array.fields) {
		return fmt.Errorf("struct %q has %d elements of %d fields in %d bytes",
			array.name, n, len(array.fields), len(buf))
	}

	for range n {
		values := make(map[string]*matArray, len(array.fields))

		for _, field := range array.fields {
			typ, payload, rest, err := d.element(buf)
			if err != nil {
				return fmt.Errorf("field %q of %q: %w", field, array.name, err)
			}

			if typ != miMATRIX {
				return fmt.Errorf("field %q of %q has element type %d", field, array.name, typ)
			}

			value, err := d.matrix(payload)
			if err != nil {
				return fmt.Errorf("field %q of %q: %w", field, array.name, err)
			}

			values[field] = value
			buf = rest
		}

		array.elements = append(array.elements, values)
	}

	return nil
}

// numbers converts a numeric data element to float64 values.
func (d *matDecoder) numbers(typ uint32, data []byte) ([]float64, error) {
	size, ok := numericSize(typ)
	if !ok {
		return nil, fmt.Errorf("element type %d is not numeric", typ)
	}

	if len(data)%size != 0 {
		return nil, fmt.Errorf("%d bytes do not hold whole values of type %d", len(data), typ)
	}

	out := make([]float64, 0, len(data)/size)

	for i := 0; i < len(data); i += size {
		b := data[i : i+size]

		var v float64

		switch typ {
		case miINT8:
			v = float64(int8(b[0]))
		case miUINT8:
			v = float64(b[0])
		case miINT16:
			v = float64(int16(d.order.Uint16(b))) //nolint:gosec // Reinterpreting the stored bits.
		case miUINT16:
			v = float64(d.order.Uint16(b))
		case miINT32:
			v = float64(int32(d.order.Uint32(b))) //nolint:gosec // Reinterpreting the stored bits.
		case miUINT32:
			v = float64(d.order.Uint32(b))
		case miSINGLE:
			v = float64(math.Float32frombits(d.order.Uint32(b)))
		case miDOUBLE:
			v = math.Float64frombits(d.order.Uint64(b))
		case miINT64:
			v = float64(int64(d.order.Uint64(b))) //nolint:gosec // Reinterpreting the stored bits.
		case miUINT64:
			v = float64(d.order.Uint64(b))
		}

		out = append(out, v)
	}

	return out, nil
}

func numericSize(typ uint32) (int, bool) {
	switch typ {
	case miINT8, miUINT8:
		return 1, true
	case miINT16, miUINT16:
		return 2, true
	case miINT32, miUINT32, miSINGLE:
		return 4, true
	case miDOUBLE, miINT64, miUINT64:
		return 8, true
	default:
		return 0, false
	}
}

// text decodes the character data of a char array.
func (d *matDecoder) text(typ uint32, data []byte) ([]rune, error) {
	switch typ {
	case miUTF8:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("invalid utf-8")
		}

		return []rune(string(data)), nil
	case miINT8, miUINT8:
		out := make([]rune, len(data))
		for i, b := range data {
			out[i] = rune(b)
		}

		return out, nil
	case miUINT16, miUTF16:
		if len(data)%2 != 0 {
			return nil, fmt.Errorf("odd utf-16 length %d", len(data))
		}

		units := make([]uint16, len(data)/2)
		for i := range units {
			units[i] = d.order.Uint16(data[2*i:])
		}

		// Char matrices store one code unit per cell.
		if typ == miUINT16 {
			out := make([]rune, len(units))
			for i, u := range units {
				out[i] = rune(u)
			}

			return out, nil
		}

		return utf16.Decode(units), nil
	case miUTF32, miINT32, miUINT32:
		if len(data)%4 != 0 {
			return nil, fmt.Errorf("utf-32 length %d", len(data))
		}

		out := make([]rune, len(data)/4)
		for i := range out {
			out[i] = rune(d.order.Uint32(data[4*i:])) //nolint:gosec // Code points fit in int32.
		}

		return out, nil
	default:
		return nil, fmt.Errorf("element type %d is not text", typ)
	}
}

// decodeMATOrbit reads data.names, data.x and data.y and converts them to a table.
// Names lose all whitespace; coordinates are divided by 1000.
func decodeMATOrbit(contents []byte) (*decoded, error) {
	vars, err := decodeMAT(contents)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileFormat, err)
	}

	data, ok := vars[matOrbitVariable]
	if !ok || data.class != mxSTRUCT || len(data.elements) == 0 {
		return nil, fmt.Errorf("%w: no %q struct", ErrFileFormat, matOrbitVariable)
	}

	fields := data.elements[0]

	names, err := stringField(fields, matNamesField)
	if err != nil {
		return nil, err
	}

	x, err := numericField(fields, matXField)
	if err != nil {
		return nil, err
	}

	y, err := numericField(fields, matYField)
	if err != nil {
		return nil, err
	}

	return orbitFromColumns(names, x, y)
}

// orbitFromColumns builds identifier[i] -> (x[i], y[i]) / 1000 from aligned columns.
func orbitFromColumns(names []string, x, y []float64) (*decoded, error) {
	if len(names) != len(x) || len(x) != len(y) {
		return nil, fmt.Errorf("%w: names, x and y have %d, %d and %d entries",
			ErrFileFormat, len(names), len(x), len(y))
	}

	b := domain.NewBuilder(len(names))

	for i, name := range names {
		id := stripSpace(name)
		if id == "" {
			return nil, fmt.Errorf("%w: name %d is blank", ErrFileFormat, i)
		}

		b.Set(id, domain.FromMillimeters(x[i], y[i]))
	}

	return &decoded{
		table:      b.Table(),
		duplicates: b.Duplicates(),
		nonFinite:  b.NonFinite(),
	}, nil
}

func stringField(fields map[string]*matArray, name string) ([]string, error) {
	field, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: field %q is missing", ErrFileFormat, name)
	}

	out, err := field.strings()
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %w", ErrFileFormat, name, err)
	}

	return out, nil
}

func numericField(fields map[string]*matArray, name string) ([]float64, error) {
	field, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: field %q is missing", ErrFileFormat, name)
	}

	if field.class < mxDOUBLE || field.class > mxUINT64 {
		return nil, fmt.Errorf("%w: field %q is not numeric", ErrFileFormat, name)
	}

	if !field.isVector() {
		return nil, fmt.Errorf("%w: field %q is not a vector", ErrFileFormat, name)
	}

	return field.values, nil
}

// stripSpace removes every whitespace and NUL character from s.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == 0 {
			return -1
		}

		return r
	}, s)
}
