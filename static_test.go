package fastfx

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

func testShape() *Shape {
	return &Shape{
		Vertices: []vec3d.T{
			{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 10, 0},
		},
		Faces: []Face{
			{Indices: []int{0, 1, 2, 3}, Color: 23, Kind: Polygon},
			{Indices: []int{0, 2}, Color: 5, Kind: Edge},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := testShape()
	var buf bytes.Buffer
	if err := s.Write3DG1(&buf, WriteOptions{Policy: NoSort}); err != nil {
		t.Fatalf("Write3DG1() error: %v", err)
	}

	got, d, err := ReadShape(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadShape() error: %v", err)
	}
	if d != DialectInteger {
		t.Errorf("ReadShape() dialect = %v, want %v", d, DialectInteger)
	}
	if len(got.Vertices) != len(s.Vertices) {
		t.Fatalf("round trip vertex count = %d, want %d", len(got.Vertices), len(s.Vertices))
	}
	for i := range s.Vertices {
		if got.Vertices[i] != s.Vertices[i] {
			t.Errorf("vertex %d = %v, want %v", i, got.Vertices[i], s.Vertices[i])
		}
	}
	if len(got.Faces) != len(s.Faces) {
		t.Fatalf("round trip face count = %d, want %d", len(got.Faces), len(s.Faces))
	}
	for i := range s.Faces {
		g, w := got.Faces[i], s.Faces[i]
		if g.Color != w.Color || g.Kind != w.Kind || len(g.Indices) != len(w.Indices) {
			t.Errorf("face %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestWriteRoundsHalfAwayFromZero(t *testing.T) {
	s := &Shape{
		Vertices: []vec3d.T{{1.5, -1.5, 0.4}, {0, 0, 0}, {1, 0, 0}},
		Faces:    []Face{{Indices: []int{0, 1, 2}, Color: 0, Kind: Polygon}},
	}
	var buf bytes.Buffer
	if err := s.Write3DG1(&buf, WriteOptions{Policy: NoSort}); err != nil {
		t.Fatalf("Write3DG1() error: %v", err)
	}
	if !strings.Contains(buf.String(), "2 -2 0\n") {
		t.Errorf("output missing rounded point, got:\n%s", buf.String())
	}
}

func TestReadFloatDialect(t *testing.T) {
	data := "3DG1\n3\n1.25 2.0 3.75\n0.0 0.0 0.0\n1.0 1.0 1.0\n1\n3 0 1 2 7\n"
	var s Shape
	if err := s.Read3DG1(strings.NewReader(data), DialectFloat); err != nil {
		t.Fatalf("Read3DG1() error: %v", err)
	}
	want := vec3d.T{1.25, 2.0, 3.75}
	if s.Vertices[0] != want {
		t.Errorf("vertex 0 = %v, want %v", s.Vertices[0], want)
	}
}

func TestReadBGRHexColor(t *testing.T) {
	// 0x153A is BGR555 for roughly #D04828, closest to FX23 bright red.
	data := "3\n1.0 0.0 0.0\n0.0 1.0 0.0\n0.0 0.0 1.0\n1\n3 0 1 2 0x153A\n"
	var s Shape
	if err := s.Read3DG1(strings.NewReader(data), DialectBGRHex); err != nil {
		t.Fatalf("Read3DG1() error: %v", err)
	}
	if s.Faces[0].Color != 23 {
		t.Errorf("face color = %d, want 23", s.Faces[0].Color)
	}
}

func TestReadMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{"short point list", "3DG1\n4\n1 2 3\n", ErrMalformedRecord},
		{"face token count", "3DG1\n3\n1 2 3\n4 5 6\n7 8 9\n1\n3 0 1 5\n", ErrMalformedRecord},
		{"index out of range", "3DG1\n3\n1 2 3\n4 5 6\n7 8 9\n1\n3 0 1 9 5\n", ErrIndexOutOfRange},
		{"animated magic", "3DAN\n1\n1 2 3\n0\n0\n", ErrUnsupportedFeature},
	}
	for _, c := range cases {
		var s Shape
		err := s.Read3DG1(strings.NewReader(c.data), DialectInteger)
		if !errors.Is(err, c.want) {
			t.Errorf("%s: Read3DG1() = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestWriteEdgeOnlyFails(t *testing.T) {
	s := &Shape{
		Vertices: []vec3d.T{{0, 0, 0}, {1, 0, 0}},
		Faces:    []Face{{Indices: []int{0, 1}, Color: 5, Kind: Edge}},
	}
	var buf bytes.Buffer
	if err := s.Write3DG1(&buf, WriteOptions{}); !errors.Is(err, ErrUnsupportedFeature) {
		t.Fatalf("Write3DG1() = %v, want ErrUnsupportedFeature", err)
	}

	s.AddFillerFace()
	if err := s.Write3DG1(&buf, WriteOptions{}); err != nil {
		t.Errorf("Write3DG1() after AddFillerFace error: %v", err)
	}
	if s.Faces[len(s.Faces)-1].Color != TransparentColor {
		t.Errorf("filler color = %d, want %d", s.Faces[len(s.Faces)-1].Color, TransparentColor)
	}
}

func TestCoordinateRange(t *testing.T) {
	s := &Shape{
		Vertices: []vec3d.T{{40000, 0, 0}, {0, 0, 0}, {1, 0, 0}},
		Faces:    []Face{{Indices: []int{0, 1, 2}, Color: 0, Kind: Polygon}},
	}
	var buf bytes.Buffer
	if err := s.Write3DG1(&buf, WriteOptions{}); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("Write3DG1() = %v, want ErrMalformedRecord", err)
	}
}
