package ply

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// WriteOptions controls Write.
type WriteOptions struct {
	Format   Format
	Comments []string
	// Types maps a column name to its stored type. Unlisted columns are
	// written as float.
	Types map[string]ScalarType
}

// Write encodes t as the vertex element of a PLY file, columns in
// t.Fields() order.
func Write(w io.Writer, t *Table, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	fields := t.Fields()
	types := make([]ScalarType, len(fields))
	for i, name := range fields {
		types[i] = Float32
		if st, ok := opts.Types[name]; ok {
			types[i] = st
		}
	}

	fmt.Fprintf(bw, "ply\nformat %s 1.0\n", opts.Format)
	for _, c := range opts.Comments {
		fmt.Fprintf(bw, "comment %s\n", c)
	}
	fmt.Fprintf(bw, "element %s %d\n", VertexElement, t.Len())
	for i, name := range fields {
		fmt.Fprintf(bw, "property %s %s\n", types[i], name)
	}
	bw.WriteString("end_header\n")

	cols := make([][]float64, len(fields))
	for i, name := range fields {
		cols[i], _ = t.Column(name)
	}

	var order binary.AppendByteOrder = binary.LittleEndian
	if opts.Format == FormatBinaryBigEndian {
		order = binary.BigEndian
	}
	var buf []byte
	for row := 0; row < t.Len(); row++ {
		buf = buf[:0]
		for i, st := range types {
			v := cols[i][row]
			if opts.Format == FormatASCII {
				if i > 0 {
					buf = append(buf, ' ')
				}
				buf = appendASCII(buf, st, v)
			} else {
				buf = appendBinary(buf, order, st, v)
			}
		}
		if opts.Format == FormatASCII {
			buf = append(buf, '\n')
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func appendASCII(dst []byte, t ScalarType, v float64) []byte {
	switch t {
	case Float32:
		return strconv.AppendFloat(dst, v, 'g', -1, 32)
	case Float64:
		return strconv.AppendFloat(dst, v, 'g', -1, 64)
	default:
		return strconv.AppendInt(dst, int64(v), 10)
	}
}

func appendBinary(dst []byte, order binary.AppendByteOrder, t ScalarType, v float64) []byte {
	switch t {
	case Int8:
		return append(dst, byte(int8(v)))
	case Uint8:
		return append(dst, uint8(v))
	case Int16:
		return order.AppendUint16(dst, uint16(int16(v)))
	case Uint16:
		return order.AppendUint16(dst, uint16(v))
	case Int32:
		return order.AppendUint32(dst, uint32(int32(v)))
	case Uint32:
		return order.AppendUint32(dst, uint32(v))
	case Float32:
		return order.AppendUint32(dst, math.Float32bits(float32(v)))
	default:
		return order.AppendUint64(dst, math.Float64bits(v))
	}
}
