package fastfx

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/pkg/errors"
)

// CoordinateLimit bounds serialized coordinates; the engine stores
// shape coordinates in 16 bit fixed point.
const CoordinateLimit = 32767

// WriteOptions controls the static exporters.
type WriteOptions struct {
	Policy SortPolicy
	// Materials lists FX material names in caller order; consulted by
	// the MaterialOrder policy only.
	Materials []string
}

// shapeParser walks a line-split shape file. The dialect fixes the
// numeric grammar of point and color tokens.
type shapeParser struct {
	lines   []textLine
	pos     int
	dialect Dialect
}

// next returns the next non-blank line.
func (p *shapeParser) next() (textLine, bool) {
	for p.pos < len(p.lines) {
		l := p.lines[p.pos]
		p.pos++
		if l.text != "" {
			return l, true
		}
	}
	return textLine{}, false
}

func (p *shapeParser) magic(want ...string) (string, bool) {
	mark := p.pos
	l, ok := p.next()
	if !ok {
		return "", false
	}
	for _, w := range want {
		if l.text == w {
			return w, true
		}
	}
	p.pos = mark
	return l.text, false
}

func (p *shapeParser) count(what string) (int, error) {
	l, ok := p.next()
	if !ok {
		return 0, errors.Wrapf(ErrMalformedRecord, "missing %s count", what)
	}
	n, err := strconv.Atoi(strings.TrimSpace(l.text))
	if err != nil || n < 0 {
		return 0, recordErr(ErrMalformedRecord, l.no, l.text)
	}
	return n, nil
}

func (p *shapeParser) coordinate(tok string, l textLine) (float64, error) {
	if p.dialect == DialectInteger {
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return 0, recordErr(ErrMalformedRecord, l.no, l.text)
		}
		return float64(v), nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, recordErr(ErrMalformedRecord, l.no, l.text)
	}
	return v, nil
}

func (p *shapeParser) points(n int) ([]vec3d.T, error) {
	pts := make([]vec3d.T, 0, n)
	for i := 0; i < n; i++ {
		l, ok := p.next()
		if !ok {
			return nil, errors.Wrapf(ErrMalformedRecord, "point list ends after %d of %d points", i, n)
		}
		toks := strings.Fields(l.text)
		if len(toks) != 3 {
			return nil, recordErr(ErrMalformedRecord, l.no, l.text)
		}
		var v vec3d.T
		for c, tok := range toks {
			f, err := p.coordinate(tok, l)
			if err != nil {
				return nil, err
			}
			v[c] = f
		}
		pts = append(pts, v)
	}
	return pts, nil
}

func (p *shapeParser) color(tok string, l textLine) (int, error) {
	if p.dialect == DialectBGRHex && isHexToken(tok) {
		v, err := strconv.ParseUint(tok[2:], 16, 16)
		if err != nil {
			return 0, recordErr(ErrMalformedRecord, l.no, l.text)
		}
		r, g, b := splitBGR555(uint16(v))
		return NearestColorIndex(r, g, b), nil
	}
	c, err := strconv.Atoi(tok)
	if err != nil || c < 0 {
		return 0, recordErr(ErrMalformedRecord, l.no, l.text)
	}
	return c, nil
}

func (p *shapeParser) faces(n, pointCount int) ([]Face, error) {
	faces := make([]Face, 0, n)
	for i := 0; i < n; i++ {
		l, ok := p.next()
		if !ok {
			return nil, errors.Wrapf(ErrMalformedRecord, "face list ends after %d of %d faces", i, n)
		}
		toks := strings.Fields(l.text)
		if len(toks) < 2 {
			return nil, recordErr(ErrMalformedRecord, l.no, l.text)
		}
		verts, err := strconv.Atoi(toks[0])
		if err != nil || verts < 2 {
			return nil, recordErr(ErrMalformedRecord, l.no, l.text)
		}
		if len(toks) != verts+2 {
			return nil, recordErr(ErrMalformedRecord, l.no, l.text)
		}
		f := Face{Indices: make([]int, verts), Kind: Polygon}
		if verts == 2 {
			f.Kind = Edge
		}
		for j := 0; j < verts; j++ {
			idx, err := strconv.Atoi(toks[1+j])
			if err != nil {
				return nil, recordErr(ErrMalformedRecord, l.no, l.text)
			}
			if idx < 0 || idx >= pointCount {
				return nil, recordErr(ErrIndexOutOfRange, l.no, l.text)
			}
			f.Indices[j] = idx
		}
		if f.Color, err = p.color(toks[verts+1], l); err != nil {
			return nil, err
		}
		faces = append(faces, f)
	}
	return faces, nil
}

// Read3DG1 decodes a static shape in the given dialect. Use Sniff (or
// ReadShape) when the dialect is not known up front. Any malformed
// record aborts the decode: the data is positional and skipping a
// record would corrupt everything after it.
func (s *Shape) Read3DG1(r io.Reader, dialect Dialect) error {
	lines, err := splitLines(r)
	if err != nil {
		return err
	}
	p := &shapeParser{lines: lines, dialect: dialect}
	if got, ok := p.magic("3DG1"); !ok && (got == "3DAN" || got == "3DGI") {
		return errors.Wrap(ErrUnsupportedFeature, "animated shape, decode with AnimatedShape")
	}
	pointCount, err := p.count("point")
	if err != nil {
		return err
	}
	pts, err := p.points(pointCount)
	if err != nil {
		return err
	}
	faceCount, err := p.count("face")
	if err != nil {
		return err
	}
	faces, err := p.faces(faceCount, pointCount)
	if err != nil {
		return err
	}
	s.Vertices = pts
	s.Faces = faces
	return nil
}

// ReadShape sniffs the dialect and decodes a static shape in one step.
func ReadShape(data []byte) (*Shape, Dialect, error) {
	dialect, err := Sniff(data)
	if err != nil {
		return nil, DialectUnknown, err
	}
	s := new(Shape)
	if err := s.Read3DG1(bytes.NewReader(data), dialect); err != nil {
		return nil, dialect, err
	}
	return s, dialect, nil
}

func roundCoord(v float64) (int, error) {
	r := int(math.Round(v))
	if r < -CoordinateLimit || r > CoordinateLimit {
		return 0, errors.Wrapf(ErrMalformedRecord, "coordinate %g outside engine range", v)
	}
	return r, nil
}

// Write3DG1 encodes the shape as Fundoshi-kun integer text: magic,
// point count, rounded points, face count, faces in sorter order, DOS
// EOF marker. Coordinates round half away from zero so the output is
// always integral.
func (s *Shape) Write3DG1(w io.Writer, opt WriteOptions) error {
	if err := s.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	bw.WriteString("3DG1\n")
	perm := SortFaces(s, opt.Policy, opt.Materials)
	if err := writeShapeBody(bw, s, perm); err != nil {
		return err
	}
	bw.WriteByte(eofMarker)
	return bw.Flush()
}

func writePointRow(bw *bufio.Writer, v vec3d.T) error {
	x, err := roundCoord(v[0])
	if err != nil {
		return err
	}
	y, err := roundCoord(v[1])
	if err != nil {
		return err
	}
	z, err := roundCoord(v[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(bw, "%d %d %d\n", x, y, z)
	return nil
}

func writeShapeBody(bw *bufio.Writer, s *Shape, perm []int) error {
	fmt.Fprintf(bw, "%d\n", len(s.Vertices))
	for _, v := range s.Vertices {
		if err := writePointRow(bw, v); err != nil {
			return err
		}
	}
	fmt.Fprintf(bw, "%d\n", len(s.Faces))
	for _, i := range perm {
		f := &s.Faces[i]
		fmt.Fprintf(bw, "%d", len(f.Indices))
		for _, idx := range f.Indices {
			fmt.Fprintf(bw, " %d", idx)
		}
		fmt.Fprintf(bw, " %d\n", f.Color)
	}
	return nil
}
