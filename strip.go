package strips

import (
	"errors"
	"fmt"
)

// StripHeight is the height of a strip in pixels. The alpha buffer stores
// StripHeight coverage bytes per column, and one RGBA32Uint texel channel
// packs exactly one column of StripHeight rows.
const StripHeight = 4

// Strip encoding errors. These indicate encoder bugs, not runtime
// conditions: strips reaching a compositor must already be valid.
var (
	// ErrDenseWidthRange is returned when DenseWidth exceeds Width.
	ErrDenseWidthRange = errors.New("strips: dense width exceeds strip width")

	// ErrColumnOutOfRange is returned when a strip's dense columns extend
	// past the allocated alpha buffer.
	ErrColumnOutOfRange = errors.New("strips: alpha column index out of range")

	// ErrStripOverlap is returned when strips on one row overlap or are
	// out of ascending-x order.
	ErrStripOverlap = errors.New("strips: overlapping or unordered strips in row")
)

// Strip is one quad of rendering work covering
// [X, X+Width) x [Y, Y+StripHeight).
//
// The first DenseWidth columns are antialiased: each reads StripHeight
// coverage bytes from the alpha buffer starting at column ColIdx. The
// remaining Width-DenseWidth columns are solid (coverage 1.0). A strip with
// DenseWidth == 0 never touches the alpha buffer.
type Strip struct {
	// X, Y are the pixel origin of the strip.
	X, Y uint16

	// Width is the total horizontal extent in pixels.
	Width uint16

	// DenseWidth is the antialiased prefix length, always <= Width.
	DenseWidth uint16

	// ColIdx is the starting column in the alpha buffer for the dense
	// prefix.
	ColIdx uint32

	// Paint selects how fragment color is derived.
	Paint Paint

	// Payload is interpreted per Paint: packed RGBA for solid paints,
	// a packed sample origin for image/gradient paints, and a slot index
	// for slot-sourced paints.
	Payload uint32
}

// XY returns the packed origin word: y in the high 16 bits, x in the low.
func (s Strip) XY() uint32 {
	return uint32(s.X) | uint32(s.Y)<<16
}

// Widths returns the packed width word: dense width high, total width low.
func (s Strip) Widths() uint32 {
	return uint32(s.Width) | uint32(s.DenseWidth)<<16
}

// UnpackXY is the inverse of XY.
func UnpackXY(xy uint32) (x, y uint16) {
	return uint16(xy & 0xFFFF), uint16(xy >> 16)
}

// UnpackWidths is the inverse of Widths.
func UnpackWidths(widths uint32) (width, dense uint16) {
	return uint16(widths & 0xFFFF), uint16(widths >> 16)
}

// End returns the X coordinate of the pixel just past the strip.
func (s Strip) End() uint32 {
	return uint32(s.X) + uint32(s.Width)
}

// Validate checks the strip against the alpha buffer length (in columns).
// A failure is a fatal encoding bug: the strip generator produced indices
// it had no storage for.
func (s Strip) Validate(alphaColumns uint32) error {
	if s.DenseWidth > s.Width {
		return fmt.Errorf("%w: dense %d, width %d", ErrDenseWidthRange, s.DenseWidth, s.Width)
	}
	if s.ColIdx+uint32(s.DenseWidth) > alphaColumns {
		return fmt.Errorf("%w: col %d + dense %d > %d columns",
			ErrColumnOutOfRange, s.ColIdx, s.DenseWidth, alphaColumns)
	}
	return nil
}

// ValidateRow checks that strips sharing a row group are in ascending-x
// order and do not overlap in [X, X+Width). The slice must contain only
// strips with equal Y.
func ValidateRow(row []Strip) error {
	for i := 1; i < len(row); i++ {
		if uint32(row[i].X) < row[i-1].End() {
			return fmt.Errorf("%w: strip %d at x=%d follows end %d",
				ErrStripOverlap, i, row[i].X, row[i-1].End())
		}
	}
	return nil
}

// InstanceWords is the number of 32-bit words in one packed strip instance.
const InstanceWords = 5

// PackInstance writes the per-instance GPU record for s into dst, which
// must have room for InstanceWords words:
//
//	xy, widths, col_idx, payload, paint
//
// The same layout is read back by UnpackInstance and by the vertex stage of
// the render shader.
func (s Strip) PackInstance(dst []uint32) {
	dst[0] = s.XY()
	dst[1] = s.Widths()
	dst[2] = s.ColIdx
	dst[3] = s.Payload
	dst[4] = s.Paint.Bits()
}

// UnpackInstance reconstructs a Strip from its packed instance words.
func UnpackInstance(src []uint32) Strip {
	x, y := UnpackXY(src[0])
	width, dense := UnpackWidths(src[1])
	return Strip{
		X:          x,
		Y:          y,
		Width:      width,
		DenseWidth: dense,
		ColIdx:     src[2],
		Payload:    src[3],
		Paint:      Paint(src[4]),
	}
}
