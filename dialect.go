package fastfx

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Dialect identifies one of the textual encodings of a static shape.
// None of the source tools write a version tag, so the dialect is
// recovered by structural sniffing of the numeric tokens.
type Dialect uint8

const (
	DialectUnknown Dialect = iota
	DialectInteger         // Fundoshi-kun, integer coordinates
	DialectFloat           // ModelToFX, float coordinates, decimal colors
	DialectBGRHex          // Blender 2.4 script, float coordinates, BGR555 hex colors
)

func (d Dialect) String() string {
	switch d {
	case DialectInteger:
		return "fundoshi-kun"
	case DialectFloat:
		return "modeltofx"
	case DialectBGRHex:
		return "blender24-bgrhex"
	}
	return "unknown"
}

const eofMarker = 0x1A

// textLine is one raw input line with its 1-based position, kept for
// error reporting.
type textLine struct {
	no   int
	text string
}

// splitLines breaks the input into trimmed lines, dropping the DOS EOF
// marker. Blank lines are kept: their placement is a sniffing signal.
func splitLines(r io.Reader) ([]textLine, error) {
	var lines []textLine
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	no := 0
	for sc.Scan() {
		no++
		text := strings.TrimRight(sc.Text(), "\r \t")
		text = strings.Trim(text, string(rune(eofMarker)))
		lines = append(lines, textLine{no: no, text: text})
	}
	return lines, sc.Err()
}

func isIntToken(tok string) bool {
	_, err := strconv.ParseInt(tok, 10, 64)
	return err == nil
}

func isFloatToken(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func isHexToken(tok string) bool {
	if len(tok) < 3 || (tok[:2] != "0x" && tok[:2] != "0X") {
		return false
	}
	_, err := strconv.ParseUint(tok[2:], 16, 16)
	return err == nil
}

// Sniff classifies raw static-shape text as one of the supported
// dialects. The point list's numeric form is the primary signal:
// all-integer coordinates mean Fundoshi-kun, floats mean one of the two
// float encodings, and a hex color field picks the Blender sub-variant.
// Blank lines between face records break the tie toward the Blender
// script, which double-spaces its face list. Token shapes matching no
// grammar fail closed with ErrUnrecognizedDialect.
func Sniff(data []byte) (Dialect, error) {
	lines, err := splitLines(bytes.NewReader(data))
	if err != nil {
		return DialectUnknown, err
	}

	// Optional magic line, then the point count.
	i := 0
	for i < len(lines) && lines[i].text == "" {
		i++
	}
	if i < len(lines) && (lines[i].text == "3DG1" || lines[i].text == "3DAN" || lines[i].text == "3DGI") {
		i++
	}
	for i < len(lines) && lines[i].text == "" {
		i++
	}
	if i >= len(lines) {
		return DialectUnknown, errors.Wrap(ErrUnrecognizedDialect, "empty input")
	}
	pointCount, err := strconv.Atoi(strings.TrimSpace(lines[i].text))
	if err != nil || pointCount < 0 {
		return DialectUnknown, recordErr(ErrUnrecognizedDialect, lines[i].no, lines[i].text)
	}
	i++

	// Point list: every coordinate must read as an integer or a float.
	float := false
	seen := 0
	for ; i < len(lines) && seen < pointCount; i++ {
		if lines[i].text == "" {
			continue
		}
		seen++
		for _, tok := range strings.Fields(lines[i].text) {
			switch {
			case isIntToken(tok):
			case isFloatToken(tok):
				float = true
			default:
				return DialectUnknown, recordErr(ErrUnrecognizedDialect, lines[i].no, lines[i].text)
			}
		}
	}

	// Face list: the color field and record spacing separate the two
	// float variants.
	hex := false
	blankBetween := false
	faceSeen := false
	pendingBlank := false
	countSkipped := false
	for ; i < len(lines); i++ {
		if lines[i].text == "" {
			pendingBlank = faceSeen
			continue
		}
		toks := strings.Fields(lines[i].text)
		if !countSkipped && len(toks) == 1 {
			countSkipped = true
			continue
		}
		if pendingBlank {
			blankBetween = true
		}
		faceSeen = true
		color := toks[len(toks)-1]
		switch {
		case isHexToken(color):
			hex = true
		case isIntToken(color):
		default:
			return DialectUnknown, recordErr(ErrUnrecognizedDialect, lines[i].no, lines[i].text)
		}
	}

	if !float {
		if hex {
			// Integer points never carry hex colors in any known tool.
			return DialectUnknown, errors.Wrap(ErrUnrecognizedDialect, "integer points with hex colors")
		}
		return DialectInteger, nil
	}
	if hex || blankBetween {
		return DialectBGRHex, nil
	}
	return DialectFloat, nil
}
