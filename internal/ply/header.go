// Package ply reads and writes Stanford PLY point-cloud files.
//
// Only the "vertex" element is materialised; its scalar properties are
// exposed as float64 columns through Table. Other elements and list
// properties are parsed past and discarded.
package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrNotPLY is returned when the input does not start with the "ply" magic line.
	ErrNotPLY = errors.New("not a PLY file")
	// ErrInvalidHeader is returned for a header that cannot be parsed.
	ErrInvalidHeader = errors.New("invalid PLY header")
	// ErrNoVertexElement is returned when the header declares no vertex element.
	ErrNoVertexElement = errors.New("PLY file has no vertex element")
	// ErrTruncated is returned when the body ends before all declared rows are read.
	ErrTruncated = errors.New("PLY body truncated")
)

// maxHeaderLines bounds header parsing so a binary blob without
// end_header is rejected quickly.
const maxHeaderLines = 4096

// VertexElement is the element name holding per-point data.
const VertexElement = "vertex"

// Format is the body encoding declared in the header.
type Format int

const (
	FormatASCII Format = iota
	FormatBinaryLittleEndian
	FormatBinaryBigEndian
)

func (f Format) String() string {
	switch f {
	case FormatBinaryLittleEndian:
		return "binary_little_endian"
	case FormatBinaryBigEndian:
		return "binary_big_endian"
	default:
		return "ascii"
	}
}

func parseFormat(s string) (Format, error) {
	switch s {
	case "ascii":
		return FormatASCII, nil
	case "binary_little_endian":
		return FormatBinaryLittleEndian, nil
	case "binary_big_endian":
		return FormatBinaryBigEndian, nil
	}
	return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidHeader, s)
}

// ScalarType is the storage type of a property value.
type ScalarType int

const (
	Int8 ScalarType = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

var scalarNames = map[string]ScalarType{
	"char": Int8, "int8": Int8,
	"uchar": Uint8, "uint8": Uint8,
	"short": Int16, "int16": Int16,
	"ushort": Uint16, "uint16": Uint16,
	"int": Int32, "int32": Int32,
	"uint": Uint32, "uint32": Uint32,
	"float": Float32, "float32": Float32,
	"double": Float64, "float64": Float64,
}

// Size returns the encoded width in bytes.
func (t ScalarType) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	default:
		return 8
	}
}

// String returns the classic PLY type name.
func (t ScalarType) String() string {
	return [...]string{"char", "uchar", "short", "ushort", "int", "uint", "float", "double"}[t]
}

func parseScalarType(s string) (ScalarType, error) {
	t, ok := scalarNames[s]
	if !ok {
		return 0, fmt.Errorf("%w: unknown scalar type %q", ErrInvalidHeader, s)
	}
	return t, nil
}

// Property is one column of an element. List properties carry a count
// type and are skipped when reading.
type Property struct {
	Name      string
	Type      ScalarType
	List      bool
	CountType ScalarType
}

// Element is a named group of rows sharing a property layout.
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// Header is the parsed PLY header.
type Header struct {
	Format   Format
	Version  string
	Comments []string
	ObjInfo  []string
	Elements []Element
}

// Element returns the element with the given name.
func (h *Header) Element(name string) (*Element, bool) {
	for i := range h.Elements {
		if h.Elements[i].Name == name {
			return &h.Elements[i], true
		}
	}
	return nil, false
}

// readHeader consumes the header through end_header, leaving r at the
// first byte of the body.
func readHeader(r *bufio.Reader) (*Header, error) {
	magic, err := readLine(r)
	if err != nil || magic != "ply" {
		return nil, ErrNotPLY
	}

	h := &Header{}
	sawFormat := false
	for n := 0; ; n++ {
		if n >= maxHeaderLines {
			return nil, fmt.Errorf("%w: no end_header after %d lines", ErrInvalidHeader, maxHeaderLines)
		}
		line, err := readLine(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
		keyword, rest, _ := strings.Cut(line, " ")
		fields := strings.Fields(rest)
		switch keyword {
		case "":
			continue
		case "end_header":
			if !sawFormat {
				return nil, fmt.Errorf("%w: missing format line", ErrInvalidHeader)
			}
			return h, nil
		case "comment":
			h.Comments = append(h.Comments, strings.TrimSpace(rest))
		case "obj_info":
			h.ObjInfo = append(h.ObjInfo, strings.TrimSpace(rest))
		case "format":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: format line %q", ErrInvalidHeader, line)
			}
			if h.Format, err = parseFormat(fields[0]); err != nil {
				return nil, err
			}
			h.Version = fields[1]
			sawFormat = true
		case "element":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: element line %q", ErrInvalidHeader, line)
			}
			count, err := strconv.Atoi(fields[1])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: element count %q", ErrInvalidHeader, fields[1])
			}
			h.Elements = append(h.Elements, Element{Name: fields[0], Count: count})
		case "property":
			if len(h.Elements) == 0 {
				return nil, fmt.Errorf("%w: property before any element", ErrInvalidHeader)
			}
			p, err := parseProperty(fields)
			if err != nil {
				return nil, err
			}
			el := &h.Elements[len(h.Elements)-1]
			el.Properties = append(el.Properties, p)
		default:
			return nil, fmt.Errorf("%w: unknown keyword %q", ErrInvalidHeader, keyword)
		}
	}
}

func parseProperty(fields []string) (Property, error) {
	if len(fields) >= 1 && fields[0] == "list" {
		if len(fields) != 4 {
			return Property{}, fmt.Errorf("%w: list property %v", ErrInvalidHeader, fields)
		}
		ct, err := parseScalarType(fields[1])
		if err != nil {
			return Property{}, err
		}
		vt, err := parseScalarType(fields[2])
		if err != nil {
			return Property{}, err
		}
		return Property{Name: fields[3], Type: vt, List: true, CountType: ct}, nil
	}
	if len(fields) != 2 {
		return Property{}, fmt.Errorf("%w: property %v", ErrInvalidHeader, fields)
	}
	t, err := parseScalarType(fields[0])
	if err != nil {
		return Property{}, err
	}
	return Property{Name: fields[1], Type: t}, nil
}

// readLine returns the next header line without its terminator,
// accepting both "\n" and "\r\n".
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
