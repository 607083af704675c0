package fastfx

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/pkg/errors"
)

// GZSShape is a static shape plus the header record the GZS/BSP
// assembler formats attach to it. Labels are opaque assembler symbols;
// the codec never resolves them against other files.
//
// The textual grammar here is the reverse-engineered subset: one
// ShapeHdr (or simplified ShapeHdrS) invocation, one PointList block
// of pnt rows, one FaceList block of face rows. BSP tree and animation
// directives are recognized and rejected, never decoded.
type GZSShape struct {
	Name        string
	Hdr         ShapeHeader
	Mesh        Shape
	PointsLabel string
	FacesLabel  string
}

// Macro words whose presence means the file needs a decoder this
// package deliberately does not have.
var unsupportedMacros = map[string]string{
	"animhdr":  "shape animation",
	"animdata": "shape animation",
	"anim":     "shape animation",
	"bsptree":  "bsp tree",
	"bspnode":  "bsp tree",
	"node":     "bsp tree",
	"split":    "bsp tree",
}

func stripComment(text string) string {
	if i := strings.IndexByte(text, ';'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimRight(text, " \t")
}

func splitArgs(args string) []string {
	parts := strings.Split(args, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func argInt(parts []string, i int, l textLine) (int, error) {
	v, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0, recordErr(ErrMalformedRecord, l.no, l.text)
	}
	return v, nil
}

func (g *GZSShape) readHeader(parts []string, simplified bool, l textLine) error {
	want := 10
	if simplified {
		want = 6
	}
	if len(parts) != want {
		return recordErr(ErrMalformedRecord, l.no, l.text)
	}
	var err error
	if g.Hdr.ZSort, err = argInt(parts, 0, l); err != nil {
		return err
	}
	if g.Hdr.Scale, err = argInt(parts, 1, l); err != nil {
		return err
	}
	g.Hdr.Colbox = parts[2]
	g.Hdr.Palette = parts[3]
	g.Hdr.Simplified = simplified
	if simplified {
		g.Hdr.Shadow, g.Hdr.Near, g.Hdr.Mid, g.Hdr.Far = "0", "0", "0", "0"
		g.PointsLabel = parts[4]
		g.FacesLabel = parts[5]
		return nil
	}
	g.Hdr.Shadow = parts[4]
	g.Hdr.Near = parts[5]
	g.Hdr.Mid = parts[6]
	g.Hdr.Far = parts[7]
	g.PointsLabel = parts[8]
	g.FacesLabel = parts[9]
	return nil
}

// Read decodes one assembler-text shape. Import is the fully supported
// direction for this format.
func (g *GZSShape) Read(r io.Reader) error {
	lines, err := splitLines(r)
	if err != nil {
		return err
	}
	sawHeader := false
	inPoints, inFaces := false, false
	for _, l := range lines {
		text := stripComment(l.text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Fields(text)

		// A row inside a block has no leading label.
		if inPoints || inFaces {
			macro := strings.ToLower(fields[0])
			switch macro {
			case "endpointlist", "endpnt":
				inPoints = false
				continue
			case "endfacelist", "endface":
				inFaces = false
				continue
			}
			if len(fields) < 2 {
				return recordErr(ErrMalformedRecord, l.no, l.text)
			}
			parts := splitArgs(strings.Join(fields[1:], " "))
			if inPoints {
				if macro != "pnt" || len(parts) != 3 {
					return recordErr(ErrMalformedRecord, l.no, l.text)
				}
				var v vec3d.T
				for c := 0; c < 3; c++ {
					n, err := argInt(parts, c, l)
					if err != nil {
						return err
					}
					v[c] = float64(n)
				}
				g.Mesh.Vertices = append(g.Mesh.Vertices, v)
				continue
			}
			if macro != "face" || len(parts) < 2 {
				return recordErr(ErrMalformedRecord, l.no, l.text)
			}
			color, err := argInt(parts, 0, l)
			if err != nil {
				return err
			}
			verts, err := argInt(parts, 1, l)
			if err != nil {
				return err
			}
			if verts < 2 || len(parts) != verts+2 {
				return recordErr(ErrMalformedRecord, l.no, l.text)
			}
			f := Face{Indices: make([]int, verts), Color: color, Kind: Polygon}
			if verts == 2 {
				f.Kind = Edge
			}
			for j := 0; j < verts; j++ {
				if f.Indices[j], err = argInt(parts, 2+j, l); err != nil {
					return err
				}
			}
			g.Mesh.Faces = append(g.Mesh.Faces, f)
			continue
		}

		// Top level: <label> <macro> [args].
		if len(fields) < 2 {
			return recordErr(ErrMalformedRecord, l.no, l.text)
		}
		label, macro := fields[0], strings.ToLower(fields[1])
		if reason, bad := unsupportedMacros[macro]; bad {
			return errors.Wrapf(ErrUnsupportedFeature, "line %d: %s directive", l.no, reason)
		}
		switch macro {
		case "shapehdr", "shapehdrs":
			if sawHeader {
				return errors.Wrapf(ErrUnsupportedFeature, "line %d: multiple shape headers", l.no)
			}
			sawHeader = true
			g.Name = strings.TrimSuffix(label, "_hdr")
			if len(fields) < 3 {
				return recordErr(ErrMalformedRecord, l.no, l.text)
			}
			if err := g.readHeader(splitArgs(strings.Join(fields[2:], " ")), macro == "shapehdrs", l); err != nil {
				return err
			}
		case "pointlist":
			inPoints = true
		case "facelist":
			inFaces = true
		default:
			return recordErr(ErrMalformedRecord, l.no, l.text)
		}
	}
	if !sawHeader {
		return errors.Wrap(ErrMalformedRecord, "no ShapeHdr record")
	}
	for i, f := range g.Mesh.Faces {
		for _, idx := range f.Indices {
			if idx < 0 || idx >= len(g.Mesh.Vertices) {
				return errors.Wrapf(ErrIndexOutOfRange, "face %d references vertex %d of %d",
					i, idx, len(g.Mesh.Vertices))
			}
		}
	}
	return nil
}

// Write encodes the shape as treeless assembler text: header, point
// table, face table. Faces come out in sorter order. Only static
// shapes are exported; there is no BSP tree emission.
func (g *GZSShape) Write(w io.Writer, opt WriteOptions) error {
	if err := g.Mesh.Validate(); err != nil {
		return err
	}
	name := g.Name
	if name == "" {
		name = "shape"
	}
	pl, fl := name+"_pnt", name+"_fce"

	bw := bufio.NewWriter(w)
	orZero := func(s string) string {
		if s == "" {
			return "0"
		}
		return s
	}
	if g.Hdr.Simplified {
		fmt.Fprintf(bw, "%s_hdr\tShapeHdrS\t%d,%d,%s,%s,%s,%s\n",
			name, g.Hdr.ZSort, g.Hdr.Scale, orZero(g.Hdr.Colbox), orZero(g.Hdr.Palette), pl, fl)
	} else {
		fmt.Fprintf(bw, "%s_hdr\tShapeHdr\t%d,%d,%s,%s,%s,%s,%s,%s,%s,%s\n",
			name, g.Hdr.ZSort, g.Hdr.Scale, orZero(g.Hdr.Colbox), orZero(g.Hdr.Palette),
			orZero(g.Hdr.Shadow), orZero(g.Hdr.Near), orZero(g.Hdr.Mid), orZero(g.Hdr.Far), pl, fl)
	}

	fmt.Fprintf(bw, "\n%s\tPointList\n", pl)
	for _, v := range g.Mesh.Vertices {
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
		fmt.Fprintf(bw, "\tpnt\t%d,%d,%d\n", x, y, z)
	}
	bw.WriteString("\tEndPointList\n")

	perm := SortFaces(&g.Mesh, opt.Policy, opt.Materials)
	fmt.Fprintf(bw, "\n%s\tFaceList\n", fl)
	for _, i := range perm {
		f := &g.Mesh.Faces[i]
		fmt.Fprintf(bw, "\tface\t%d,%d", f.Color, len(f.Indices))
		for _, idx := range f.Indices {
			fmt.Fprintf(bw, ",%d", idx)
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("\tEndFaceList\n")
	return bw.Flush()
}
