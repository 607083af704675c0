package fastfx

import (
	"math"
	"unsafe"

	tin "github.com/flywave/go-tin"
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/pkg/errors"
)

const (
	// TransparentColor is the palette index the engine treats as
	// invisible. An edge-only shape must carry at least one degenerate
	// polygon with this color or the engine renderer crashes.
	TransparentColor = 47

	// MaxFrames is the hard frame ceiling of the animation pipeline,
	// reference frame included. The downstream conversion tool corrupts
	// shapes that exceed it.
	MaxFrames = 16
)

type FaceKind uint8

const (
	Polygon FaceKind = iota
	Edge
)

// Face is an ordered loop of indices into the owning shape's vertex
// list. Two indices make an Edge, three or more a Polygon. Color is an
// index into the engine palette.
type Face struct {
	Indices []int
	Color   int
	Kind    FaceKind
}

// Shape is a vertex list plus a face list. Face order is draw order:
// the target renderer has no depth buffer and paints faces in list
// order, so the last face in the list ends up frontmost.
type Shape struct {
	Vertices []vec3d.T
	Faces    []Face
}

// ShapeHeader carries the per-shape metadata the GZS/BSP assembler
// formats require. Label fields hold "0" for none. Scale is a
// shift-left bit count, the engine's fixed point convention.
type ShapeHeader struct {
	ZSort      int
	Scale      int
	Colbox     string
	Palette    string
	Shadow     string
	Near       string
	Mid        string
	Far        string
	Simplified bool
}

// AnimatedShape is a reference shape plus extra vertex-only frames.
// Frame 0 is the shape itself; Frames holds frames 1..n, each the same
// length as Shape.Vertices. Faces exist only on the reference frame.
type AnimatedShape struct {
	Shape
	Frames [][]vec3d.T
}

// FrameCount counts the reference frame plus the extra frames.
func (a *AnimatedShape) FrameCount() int {
	return 1 + len(a.Frames)
}

type RotAxis uint8

const (
	RotNone RotAxis = iota
	RotX
	RotY
	RotZ
)

// ColboxRecord is one collision volume. Records chain through Next,
// which names another record's Label or is "0" at the tail. Scale is
// the same shift-left convention as ShapeHeader.Scale.
type ColboxRecord struct {
	Label  string
	Next   string
	Offset [3]int
	Rot    RotAxis
	Dims   [3]int
	Clear  uint8
	Set    uint8
	Scale  int
}

// ScaledDims returns the dimensions with the scale shift applied.
func (c *ColboxRecord) ScaledDims() [3]int {
	return [3]int{c.Dims[0] << c.Scale, c.Dims[1] << c.Scale, c.Dims[2] << c.Scale}
}

// ScaledOffset returns the offset with the scale shift applied.
func (c *ColboxRecord) ScaledOffset() [3]int {
	return [3]int{c.Offset[0] << c.Scale, c.Offset[1] << c.Scale, c.Offset[2] << c.Scale}
}

// Round snaps every vertex component to the nearest integer, halves
// away from zero (math.Round). Rounding an already integral shape is a
// no-op.
func (s *Shape) Round() {
	for i := range s.Vertices {
		s.Vertices[i][0] = math.Round(s.Vertices[i][0])
		s.Vertices[i][1] = math.Round(s.Vertices[i][1])
		s.Vertices[i][2] = math.Round(s.Vertices[i][2])
	}
}

// Truncate drops the fractional part of every vertex component.
func (s *Shape) Truncate() {
	for i := range s.Vertices {
		s.Vertices[i][0] = math.Trunc(s.Vertices[i][0])
		s.Vertices[i][1] = math.Trunc(s.Vertices[i][1])
		s.Vertices[i][2] = math.Trunc(s.Vertices[i][2])
	}
}

// AddFillerFace appends the degenerate transparent polygon an edge-only
// shape needs to render. It reuses the first edge's endpoints, so the
// polygon has zero area.
func (s *Shape) AddFillerFace() {
	for _, f := range s.Faces {
		if f.Kind == Edge && len(f.Indices) == 2 {
			s.Faces = append(s.Faces, Face{
				Indices: []int{f.Indices[0], f.Indices[1], f.Indices[0]},
				Color:   TransparentColor,
				Kind:    Polygon,
			})
			return
		}
	}
}

// Validate checks the engine-level constraints a file-format parse
// cannot: coordinates inside the fixed-point range, face indices in
// range and, for shapes that have faces at all, the presence of at
// least one polygon. An edge-only shape hard-crashes the engine unless
// a transparent filler polygon is present, so that case fails here
// rather than at render time. The exporters validate before emitting
// anything, so a failed encode produces no partial output.
func (s *Shape) Validate() error {
	for i, v := range s.Vertices {
		for c := 0; c < 3; c++ {
			if r := math.Round(v[c]); r < -CoordinateLimit || r > CoordinateLimit {
				return errors.Wrapf(ErrMalformedRecord, "vertex %d coordinate %g outside engine range", i, v[c])
			}
		}
	}
	polygons := 0
	for i, f := range s.Faces {
		if len(f.Indices) < 2 {
			return errors.Wrapf(ErrMalformedRecord, "face %d has %d indices", i, len(f.Indices))
		}
		for _, idx := range f.Indices {
			if idx < 0 || idx >= len(s.Vertices) {
				return errors.Wrapf(ErrIndexOutOfRange, "face %d references vertex %d of %d", i, idx, len(s.Vertices))
			}
		}
		if f.Kind == Polygon {
			polygons++
		}
	}
	if len(s.Faces) > 0 && polygons == 0 {
		return errors.Wrap(ErrUnsupportedFeature, "edge-only shape needs a transparent filler polygon (color 47)")
	}
	return nil
}

// FromTinMesh converts a triangulated mesh into a Shape, assigning
// every face the given palette color. This is the entry point for
// terrain or generated geometry headed for 3DG1/GZS export.
func FromTinMesh(mesh *tin.Mesh, color int) *Shape {
	s := &Shape{}
	vts := *(*[][3]float64)(unsafe.Pointer(&mesh.Vertices))
	s.Vertices = make([]vec3d.T, len(vts))
	for i, v := range vts {
		s.Vertices[i] = vec3d.T(v)
	}
	for _, f := range mesh.Faces {
		s.Faces = append(s.Faces, Face{
			Indices: []int{int(f[0]), int(f[1]), int(f[2])},
			Color:   color,
			Kind:    Polygon,
		})
	}
	return s
}
