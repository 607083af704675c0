package fastfx

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnrecognizedDialect is returned by Sniff when the input matches
	// none of the supported 3DG1 text encodings.
	ErrUnrecognizedDialect = errors.New("unrecognized 3dg1 dialect")

	// ErrMalformedRecord is returned when a record's token or count
	// structure disagrees with the surrounding file.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrIndexOutOfRange is returned when a face references a vertex
	// index beyond the point list.
	ErrIndexOutOfRange = errors.New("vertex index out of range")

	// ErrFrameCountExceeded is returned when an animated shape holds more
	// than MaxFrames frames.
	ErrFrameCountExceeded = errors.New("frame count exceeded")

	// ErrBrokenChain is returned when a colbox next-label does not
	// resolve inside the same input.
	ErrBrokenChain = errors.New("broken colbox chain")

	// ErrUnsupportedFeature is returned for recognized but unimplemented
	// constructs, such as BSP tree or animation directives.
	ErrUnsupportedFeature = errors.New("unsupported feature")
)

// recordErr wraps a sentinel with the position and raw text of the
// offending record. Decode never skips a bad record: shape data is
// positional, so the whole decode aborts.
func recordErr(sentinel error, line int, raw string) error {
	return errors.Wrapf(sentinel, "line %d: %q", line, raw)
}
