package reference

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// matWriter produces level-5 MAT files for tests.
type matWriter struct {
	order binary.ByteOrder
}

func (w matWriter) u32(v uint32) []byte {
	b := make([]byte, 4)
	w.order.PutUint32(b, v)

	return b
}

// element encodes a tagged, padded data element.
func (w matWriter) element(typ uint32, payload []byte) []byte {
	var buf bytes.Buffer

	buf.Write(w.u32(typ))
	buf.Write(w.u32(uint32(len(payload)))) //nolint:gosec // Test payloads are small.
	buf.Write(payload)

	for buf.Len()%matAlignment != 0 {
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

// small encodes a small data element (at most four bytes of payload).
func (w matWriter) small(typ uint32, payload []byte) []byte {
	b := make([]byte, matTagSize)
	w.order.PutUint32(b, uint32(len(payload))<<16|typ) //nolint:gosec // Test payloads are small.
	copy(b[4:], payload)

	return b
}

func (w matWriter) name(name string) []byte {
	if len(name) <= matSmallMaxBytes {
		return w.small(miINT8, []byte(name))
	}

	return w.element(miINT8, []byte(name))
}

// matrix wraps a header and body into a miMATRIX element.
func (w matWriter) matrix(class uint8, dims []int32, name string, body ...[]byte) []byte {
	var payload bytes.Buffer

	payload.Write(w.element(miUINT32, append(w.u32(uint32(class)), 0, 0, 0, 0)))

	dimBytes := make([]byte, 0, 4*len(dims))
	for _, d := range dims {
		dimBytes = append(dimBytes, w.u32(uint32(d))...) //nolint:gosec // Test dimensions are small.
	}

	payload.Write(w.element(miINT32, dimBytes))
	payload.Write(w.name(name))

	for _, b := range body {
		payload.Write(b)
	}

	return w.element(miMATRIX, payload.Bytes())
}

// doubles encodes a 1xN double row stored as miDOUBLE.
func (w matWriter) doubles(name string, values []float64) []byte {
	data := make([]byte, 8*len(values))
	for i, v := range values {
		w.order.PutUint64(data[8*i:], math.Float64bits(v))
	}

	return w.matrix(mxDOUBLE, []int32{1, int32(len(values))}, name, w.element(miDOUBLE, data)) //nolint:gosec // Small.
}

// compactDoubles encodes a 1xN double row stored as miINT16, the way MATLAB shrinks integral doubles.
func (w matWriter) compactDoubles(name string, values []int16) []byte {
	data := make([]byte, 2*len(values))
	for i, v := range values {
		w.order.PutUint16(data[2*i:], uint16(v)) //nolint:gosec // Bit reinterpretation.
	}

	return w.matrix(mxDOUBLE, []int32{1, int32(len(values))}, name, w.element(miINT16, data)) //nolint:gosec // Small.
}

// chars encodes rows as a space-padded char matrix in column-major miUINT16.
func (w matWriter) chars(name string, rows []string) []byte {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	data := make([]byte, 0, 2*width*len(rows))

	for c := range width {
		for _, r := range rows {
			padded := r + strings.Repeat(" ", width-len(r))

			unit := make([]byte, 2)
			w.order.PutUint16(unit, uint16(padded[c]))
			data = append(data, unit...)
		}
	}

	return w.matrix(mxCHAR, []int32{int32(len(rows)), int32(width)}, name, w.element(miUINT16, data)) //nolint:gosec // Small.
}

// cellOfStrings encodes an Nx1 cell array of 1xL char rows.
func (w matWriter) cellOfStrings(name string, values []string) []byte {
	cells := make([][]byte, 0, len(values))
	for _, v := range values {
		cells = append(cells, w.chars("", []string{v}))
	}

	return w.matrix(mxCELL, []int32{int32(len(values)), 1}, name, cells...) //nolint:gosec // Small.
}

// structure encodes a 1x1 struct with the given fields in order.
func (w matWriter) structure(name string, fields []string, values ...[]byte) []byte {
	const nameLength = 32

	names := make([]byte, 0, nameLength*len(fields))
	for _, f := range fields {
		padded := make([]byte, nameLength)
		copy(padded, f)
		names = append(names, padded...)
	}

	body := [][]byte{
		w.small(miINT32, w.u32(nameLength)),
		w.element(miINT8, names),
	}
	body = append(body, values...)

	return w.matrix(mxSTRUCT, []int32{1, 1}, name, body...)
}

// file prepends the 128-byte header and optionally compresses each variable.
func (w matWriter) file(t *testing.T, compress bool, variables ...[]byte) []byte {
	t.Helper()

	header := make([]byte, matHeaderSize)
	copy(header, bytes.Repeat([]byte(" "), matVersionOffset-8))
	copy(header, "MATLAB 5.0 MAT-file, Platform: GLNXA64, Created on: Mon Jan 14 10:00:00 2019")

	w.order.PutUint16(header[matVersionOffset:], matVersion5)
	w.order.PutUint16(header[matHeaderSize-2:], 'M'<<8|'I')

	var buf bytes.Buffer

	buf.Write(header)

	for _, v := range variables {
		if !compress {
			buf.Write(v)

			continue
		}

		var z bytes.Buffer

		zw := zlib.NewWriter(&z)
		_, err := zw.Write(v)
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		buf.Write(w.u32(miCOMPRESSED))
		buf.Write(w.u32(uint32(z.Len()))) //nolint:gosec // Small.
		buf.Write(z.Bytes())
	}

	return buf.Bytes()
}

// orbitFile builds the legacy container holding data.names, data.x and data.y.
func (w matWriter) orbitFile(t *testing.T, compress bool, names, x, y []byte) []byte {
	t.Helper()

	data := w.structure(matOrbitVariable, []string{matNamesField, matXField, matYField}, names, x, y)

	return w.file(t, compress, data)
}
