package fastfx

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/pkg/errors"
)

func parseRot(field string) (RotAxis, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "0", "":
		return RotNone, nil
	case "x":
		return RotX, nil
	case "y":
		return RotY, nil
	case "z":
		return RotZ, nil
	}
	return RotNone, errors.Wrapf(ErrMalformedRecord, "bad rotation axis %q", field)
}

func formatRot(r RotAxis) string {
	switch r {
	case RotX:
		return "x"
	case RotY:
		return "y"
	case RotZ:
		return "z"
	}
	return "0"
}

// ReadColboxes decodes a sanitized block of colbox lines:
//
//	<label> colbox <next>,<offx>,<offy>,<offz>,<rot>,<dimx>,<dimy>,<dimz>,<clear>,<set>[,<scale>]
//
// and returns the records in discovered chain order, heads first in
// input order. A next label that does not resolve within the input is
// ErrBrokenChain, as is a cycle: the traversal is bounded by the record
// count, so a malformed loop cannot hang the decoder.
func ReadColboxes(r io.Reader) ([]ColboxRecord, error) {
	lines, err := splitLines(r)
	if err != nil {
		return nil, err
	}
	var records []ColboxRecord
	byLabel := make(map[string]int)
	for _, l := range lines {
		text := stripComment(l.text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 3 || strings.ToLower(fields[1]) != "colbox" {
			return nil, recordErr(ErrMalformedRecord, l.no, l.text)
		}
		parts := splitArgs(strings.Join(fields[2:], " "))
		if len(parts) != 10 && len(parts) != 11 {
			return nil, recordErr(ErrMalformedRecord, l.no, l.text)
		}
		rec := ColboxRecord{Label: fields[0], Next: parts[0]}
		for i := 0; i < 3; i++ {
			if rec.Offset[i], err = argInt(parts, 1+i, l); err != nil {
				return nil, err
			}
		}
		if rec.Rot, err = parseRot(parts[4]); err != nil {
			return nil, err
		}
		for i := 0; i < 3; i++ {
			if rec.Dims[i], err = argInt(parts, 5+i, l); err != nil {
				return nil, err
			}
		}
		if rec.Clear, err = ParseFlags(parts[8]); err != nil {
			return nil, err
		}
		if rec.Set, err = ParseFlags(parts[9]); err != nil {
			return nil, err
		}
		if len(parts) == 11 {
			if rec.Scale, err = argInt(parts, 10, l); err != nil {
				return nil, err
			}
		}
		if _, dup := byLabel[rec.Label]; dup {
			return nil, recordErr(ErrMalformedRecord, l.no, l.text)
		}
		byLabel[rec.Label] = len(records)
		records = append(records, rec)
	}

	// Resolve every link before walking, so a dangling tail reports as
	// BrokenChain rather than a short result.
	referenced := make(map[string]bool)
	for _, rec := range records {
		if rec.Next == "0" {
			continue
		}
		if _, ok := byLabel[rec.Next]; !ok {
			return nil, errors.Wrapf(ErrBrokenChain, "%s -> %s unresolved", rec.Label, rec.Next)
		}
		referenced[rec.Next] = true
	}

	ordered := make([]ColboxRecord, 0, len(records))
	visited := make([]bool, len(records))
	for _, rec := range records {
		if referenced[rec.Label] {
			continue // not a chain head
		}
		idx := byLabel[rec.Label]
		for steps := 0; ; steps++ {
			if steps > len(records) || visited[idx] {
				return nil, errors.Wrapf(ErrBrokenChain, "cycle through %s", records[idx].Label)
			}
			visited[idx] = true
			ordered = append(ordered, records[idx])
			next := records[idx].Next
			if next == "0" {
				break
			}
			idx = byLabel[next]
		}
	}
	for i, rec := range records {
		if !visited[i] {
			return nil, errors.Wrapf(ErrBrokenChain, "cycle through %s", rec.Label)
		}
	}
	return ordered, nil
}

// WriteColboxes emits one line per record, exactly in caller order.
// The target assembler resolves forward references only when labels
// appear head first, so this codec never reorders. The scale field is
// written only when set.
func WriteColboxes(w io.Writer, records []ColboxRecord) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		next := rec.Next
		if next == "" {
			next = "0"
		}
		fmt.Fprintf(bw, "%s\tcolbox\t%s,%d,%d,%d,%s,%d,%d,%d,%s,%s",
			rec.Label, next,
			rec.Offset[0], rec.Offset[1], rec.Offset[2],
			formatRot(rec.Rot),
			rec.Dims[0], rec.Dims[1], rec.Dims[2],
			FormatFlags(rec.Clear), FormatFlags(rec.Set))
		if rec.Scale != 0 {
			fmt.Fprintf(bw, ",%d", rec.Scale)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// colboxDimLimit is the widest dimension a record can carry before the
// scale shift has to absorb the excess; colbox dimensions are byte
// sized on the engine side.
const colboxDimLimit = 255

// FitColbox fits an axis-aligned collision box around the shape. The
// box offset is the bounding-box center and the dimensions are the
// half extents, shifted down into byte range with the scale exponent
// when the shape is too large.
func FitColbox(s *Shape, label string) ColboxRecord {
	min, max := vec3d.MaxVal, vec3d.MinVal
	for i := range s.Vertices {
		min = vec3d.Min(&min, &s.Vertices[i])
		max = vec3d.Max(&max, &s.Vertices[i])
	}
	rec := ColboxRecord{Label: label, Next: "0"}
	if len(s.Vertices) == 0 {
		return rec
	}
	var dims [3]int
	for c := 0; c < 3; c++ {
		rec.Offset[c] = int(math.Round((max[c] + min[c]) / 2))
		dims[c] = int(math.Ceil((max[c] - min[c]) / 2))
	}
	for dims[0]>>uint(rec.Scale) > colboxDimLimit ||
		dims[1]>>uint(rec.Scale) > colboxDimLimit ||
		dims[2]>>uint(rec.Scale) > colboxDimLimit {
		rec.Scale++
	}
	for c := 0; c < 3; c++ {
		rec.Dims[c] = dims[c] >> uint(rec.Scale)
	}
	return rec
}
