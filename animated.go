package fastfx

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Read decodes a 3DAN/3DGI animated shape: a 3DG1 body as the
// reference frame, an extra-frame count, then that many vertex-only
// frames matching the reference vertex count. Faces live only on the
// reference frame.
func (a *AnimatedShape) Read(r io.Reader, dialect Dialect) error {
	lines, err := splitLines(r)
	if err != nil {
		return err
	}
	p := &shapeParser{lines: lines, dialect: dialect}
	p.magic("3DAN", "3DGI")
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
	extra, err := p.count("frame")
	if err != nil {
		return err
	}
	if 1+extra > MaxFrames {
		return errors.Wrapf(ErrFrameCountExceeded, "%d frames, limit %d", 1+extra, MaxFrames)
	}
	a.Frames = nil
	for i := 0; i < extra; i++ {
		frame, err := p.points(pointCount)
		if err != nil {
			return err
		}
		a.Frames = append(a.Frames, frame)
	}
	a.Vertices = pts
	a.Faces = faces
	return nil
}

// Write encodes the animated shape. The reference frame is written as
// a 3DG1 body with no face re-sorting: by the time a shape enters the
// animation pipeline its faces are assumed to be draw-ordered already.
// More than MaxFrames frames is a hard error, not a warning, because
// the downstream conversion tool silently corrupts the excess.
func (a *AnimatedShape) Write(w io.Writer) error {
	if a.FrameCount() > MaxFrames {
		return errors.Wrapf(ErrFrameCountExceeded, "%d frames, limit %d", a.FrameCount(), MaxFrames)
	}
	if err := a.Validate(); err != nil {
		return err
	}
	for i, frame := range a.Frames {
		if len(frame) != len(a.Vertices) {
			return errors.Wrapf(ErrMalformedRecord, "frame %d has %d vertices, reference has %d",
				i+1, len(frame), len(a.Vertices))
		}
	}
	bw := bufio.NewWriter(w)
	bw.WriteString("3DAN\n")
	if err := writeShapeBody(bw, &a.Shape, SortFaces(&a.Shape, NoSort, nil)); err != nil {
		return err
	}
	fmt.Fprintf(bw, "%d\n", len(a.Frames))
	for _, frame := range a.Frames {
		for _, v := range frame {
			if err := writePointRow(bw, v); err != nil {
				return err
			}
		}
	}
	bw.WriteByte(eofMarker)
	return bw.Flush()
}
