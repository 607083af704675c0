package fastfx

import (
	"errors"
	"testing"

	tin "github.com/flywave/go-tin"
	vec3d "github.com/flywave/go3d/float64/vec3"
)

func TestRoundIdempotent(t *testing.T) {
	s := &Shape{Vertices: []vec3d.T{{1.5, -1.5, 0.25}, {-0.5, 2.49, -2.5}}}
	s.Round()
	want := []vec3d.T{{2, -2, 0}, {-1, 2, -3}}
	for i := range want {
		if s.Vertices[i] != want[i] {
			t.Errorf("Round() vertex %d = %v, want %v", i, s.Vertices[i], want[i])
		}
	}
	before := append([]vec3d.T(nil), s.Vertices...)
	s.Round()
	for i := range before {
		if s.Vertices[i] != before[i] {
			t.Errorf("second Round() changed vertex %d", i)
		}
	}
}

func TestTruncateIdempotent(t *testing.T) {
	s := &Shape{Vertices: []vec3d.T{{1.9, -1.9, 0.1}}}
	s.Truncate()
	if s.Vertices[0] != (vec3d.T{1, -1, 0}) {
		t.Errorf("Truncate() = %v, want {1 -1 0}", s.Vertices[0])
	}
	s.Truncate()
	if s.Vertices[0] != (vec3d.T{1, -1, 0}) {
		t.Errorf("second Truncate() = %v, want {1 -1 0}", s.Vertices[0])
	}
}

func TestValidate(t *testing.T) {
	s := testShape()
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	bad := &Shape{
		Vertices: []vec3d.T{{0, 0, 0}},
		Faces:    []Face{{Indices: []int{0, 2, 0}, Kind: Polygon}},
	}
	if err := bad.Validate(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Validate() = %v, want ErrIndexOutOfRange", err)
	}
}

func TestFromTinMesh(t *testing.T) {
	s := FromTinMesh(&tin.Mesh{}, 5)
	if len(s.Vertices) != 0 || len(s.Faces) != 0 {
		t.Errorf("FromTinMesh(empty) = %d vertices %d faces", len(s.Vertices), len(s.Faces))
	}
}
