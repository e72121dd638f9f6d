package ply

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

func TestReadHeader(t *testing.T) {
	src := "ply\r\n" +
		"format binary_little_endian 1.0\r\n" +
		"comment made by a scanner\r\n" +
		"obj_info num_cols 640\r\n" +
		"element vertex 12\r\n" +
		"property float x\r\n" +
		"property double y\r\n" +
		"property uchar red\r\n" +
		"element face 3\r\n" +
		"property list uchar int vertex_indices\r\n" +
		"end_header\r\n"
	h, err := readHeader(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if h.Format != FormatBinaryLittleEndian || h.Version != "1.0" {
		t.Errorf("format = %v %q", h.Format, h.Version)
	}
	if len(h.Comments) != 1 || h.Comments[0] != "made by a scanner" {
		t.Errorf("comments = %q", h.Comments)
	}
	if len(h.ObjInfo) != 1 {
		t.Errorf("obj_info = %q", h.ObjInfo)
	}
	v, ok := h.Element("vertex")
	if !ok || v.Count != 12 || len(v.Properties) != 3 {
		t.Fatalf("vertex element = %+v", v)
	}
	if v.Properties[1].Type != Float64 || v.Properties[2].Type != Uint8 {
		t.Errorf("property types = %+v", v.Properties)
	}
	f, _ := h.Element("face")
	p := f.Properties[0]
	if !p.List || p.CountType != Uint8 || p.Type != Int32 || p.Name != "vertex_indices" {
		t.Errorf("list property = %+v", p)
	}
}

func TestReadHeader_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"empty", "", ErrNotPLY},
		{"wrong magic", "obj\n", ErrNotPLY},
		{"no format", "ply\nelement vertex 1\nend_header\n", ErrInvalidHeader},
		{"bad format", "ply\nformat utf8 1.0\nend_header\n", ErrInvalidHeader},
		{"bad count", "ply\nformat ascii 1.0\nelement vertex -1\nend_header\n", ErrInvalidHeader},
		{"orphan property", "ply\nformat ascii 1.0\nproperty float x\nend_header\n", ErrInvalidHeader},
		{"bad type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty half x\nend_header\n", ErrInvalidHeader},
		{"unknown keyword", "ply\nformat ascii 1.0\nvertex 1\nend_header\n", ErrInvalidHeader},
		{"no end", "ply\nformat ascii 1.0\nelement vertex 1\n", ErrInvalidHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readHeader(bufio.NewReader(strings.NewReader(tt.src)))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestScalarType(t *testing.T) {
	for name, want := range map[string]int{"char": 1, "uint8": 1, "short": 2, "ushort": 2, "int": 4, "float32": 4, "double": 8} {
		st, err := parseScalarType(name)
		if err != nil {
			t.Fatalf("parseScalarType(%q): %v", name, err)
		}
		if st.Size() != want {
			t.Errorf("%s size = %d, want %d", name, st.Size(), want)
		}
	}
	if Float32.String() != "float" || Uint8.String() != "uchar" {
		t.Errorf("unexpected type names %s %s", Float32, Uint8)
	}
}
