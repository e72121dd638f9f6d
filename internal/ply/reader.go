package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// File is a decoded PLY file: its header and the vertex table.
type File struct {
	Header   *Header
	Vertices *Table
}

// Read decodes a PLY file and keeps every scalar vertex property.
func Read(r io.Reader) (*File, error) {
	return ReadFields(r, nil)
}

// ReadFields decodes a PLY file keeping only the named scalar vertex
// properties; a nil fields slice keeps all of them. Names that are not in
// the file are ignored, so callers can ask for optional fields. Reading
// stops once the vertex element has been consumed.
func ReadFields(r io.Reader, fields []string) (*File, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	if _, ok := h.Element(VertexElement); !ok {
		return nil, ErrNoVertexElement
	}
	diagf("header: format=%s %s, %d elements", h.Format, h.Version, len(h.Elements))

	var keep map[string]bool
	if fields != nil {
		keep = make(map[string]bool, len(fields))
		for _, f := range fields {
			keep[f] = true
		}
	}

	body := newBodyReader(h.Format, br)
	for _, el := range h.Elements {
		if el.Name == VertexElement {
			t, err := readElement(body, el, keep)
			if err != nil {
				return nil, err
			}
			return &File{Header: h, Vertices: t}, nil
		}
		diagf("skipping element %q (%d rows)", el.Name, el.Count)
		if _, err := readElement(body, el, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return nil, ErrNoVertexElement
}

// maxPrealloc caps how many rows are allocated up front. Columns grow as
// rows arrive, so a header claiming more rows than the body holds fails
// with ErrTruncated instead of allocating the claimed size.
const maxPrealloc = 1 << 16

// readElement reads el.Count rows. Scalar properties accepted by keep
// (all of them when keep is nil) become columns; the rest are skipped.
func readElement(body bodyReader, el Element, keep map[string]bool) (*Table, error) {
	capacity := min(el.Count, maxPrealloc)
	cols := make([][]float64, len(el.Properties))
	seen := make(map[string]bool, len(el.Properties))
	for j, p := range el.Properties {
		if p.List {
			if el.Name == VertexElement {
				opsf("ignoring list property %q on %s", p.Name, el.Name)
			}
			continue
		}
		if keep != nil && !keep[p.Name] {
			continue
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: duplicate property %q", ErrInvalidHeader, p.Name)
		}
		seen[p.Name] = true
		cols[j] = make([]float64, 0, capacity)
	}

	// A row with no properties consumes no input, so there is nothing to read.
	if len(el.Properties) > 0 {
		for row := 0; row < el.Count; row++ {
			for j, p := range el.Properties {
				switch {
				case p.List:
					body.skipList(p)
				case cols[j] != nil:
					cols[j] = append(cols[j], body.readScalar(p.Type))
				default:
					body.skipScalar(p.Type)
				}
			}
			if err := body.Error(); err != nil {
				return nil, fmt.Errorf("element %q row %d: %w", el.Name, row, err)
			}
		}
	}

	t := NewTable(el.Count)
	for j, p := range el.Properties {
		if cols[j] == nil {
			continue
		}
		if err := t.Set(p.Name, cols[j]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// bodyReader decodes property values. Errors are sticky: after the first
// failure every read returns zero and Error reports the failure.
type bodyReader interface {
	readScalar(t ScalarType) float64
	skipScalar(t ScalarType)
	skipList(p Property)
	Error() error
}

func newBodyReader(f Format, r *bufio.Reader) bodyReader {
	switch f {
	case FormatBinaryLittleEndian:
		return &binaryReader{r: r, order: binary.LittleEndian}
	case FormatBinaryBigEndian:
		return &binaryReader{r: r, order: binary.BigEndian}
	default:
		s := bufio.NewScanner(r)
		s.Split(bufio.ScanWords)
		return &asciiReader{s: s}
	}
}

type binaryReader struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
	err   error
}

func (br *binaryReader) Error() error { return br.err }

func (br *binaryReader) fail(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrTruncated
	}
	br.err = err
}

func (br *binaryReader) readScalar(t ScalarType) float64 {
	if br.err != nil {
		return 0
	}
	b := br.buf[:t.Size()]
	if _, err := io.ReadFull(br.r, b); err != nil {
		br.fail(err)
		return 0
	}
	switch t {
	case Int8:
		return float64(int8(b[0]))
	case Uint8:
		return float64(b[0])
	case Int16:
		return float64(int16(br.order.Uint16(b)))
	case Uint16:
		return float64(br.order.Uint16(b))
	case Int32:
		return float64(int32(br.order.Uint32(b)))
	case Uint32:
		return float64(br.order.Uint32(b))
	case Float32:
		return float64(math.Float32frombits(br.order.Uint32(b)))
	default:
		return math.Float64frombits(br.order.Uint64(b))
	}
}

func (br *binaryReader) skipScalar(t ScalarType) {
	br.skip(t.Size())
}

func (br *binaryReader) skipList(p Property) {
	n := br.readScalar(p.CountType)
	if br.err != nil {
		return
	}
	if n < 0 {
		br.err = fmt.Errorf("negative list length %v for %q", n, p.Name)
		return
	}
	br.skip(int(n) * p.Type.Size())
}

func (br *binaryReader) skip(n int) {
	if br.err != nil {
		return
	}
	if _, err := br.r.Discard(n); err != nil {
		br.fail(err)
	}
}

type asciiReader struct {
	s   *bufio.Scanner
	err error
}

func (ar *asciiReader) Error() error { return ar.err }

func (ar *asciiReader) next() string {
	if ar.err != nil {
		return ""
	}
	if !ar.s.Scan() {
		if err := ar.s.Err(); err != nil {
			ar.err = err
		} else {
			ar.err = ErrTruncated
		}
		return ""
	}
	return ar.s.Text()
}

func (ar *asciiReader) readScalar(t ScalarType) float64 {
	tok := ar.next()
	if ar.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		ar.err = fmt.Errorf("bad %s value %q", t, tok)
		return 0
	}
	return v
}

func (ar *asciiReader) skipScalar(ScalarType) {
	ar.next()
}

func (ar *asciiReader) skipList(p Property) {
	n := ar.readScalar(p.CountType)
	if ar.err != nil {
		return
	}
	if n < 0 || n != math.Trunc(n) {
		ar.err = fmt.Errorf("bad list length %v for %q", n, p.Name)
		return
	}
	for i := 0; i < int(n) && ar.err == nil; i++ {
		ar.next()
	}
}
