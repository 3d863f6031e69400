package strips

import (
	"errors"
	"fmt"
)

// Paint encoding errors.
var (
	// ErrPaintIndexRange is returned when a paint table index does not fit
	// the 29-bit index field.
	ErrPaintIndexRange = errors.New("strips: paint table index exceeds 29 bits")
)

// PaintKind identifies how a strip derives its color when the paint is
// payload-sourced.
type PaintKind uint32

const (
	// PaintSolid reads a packed RGBA color directly from the payload.
	PaintSolid PaintKind = 0

	// PaintImage samples the paint atlas; the payload carries the
	// scene-space sample origin and the paint field carries the table index.
	PaintImage PaintKind = 1

	// PaintGradient evaluates a gradient; encoded like an image paint with
	// a ramp entry in the paint table.
	PaintGradient PaintKind = 2
)

// String returns a human-readable name for the paint kind.
func (k PaintKind) String() string {
	switch k {
	case PaintSolid:
		return "Solid"
	case PaintImage:
		return "Image"
	case PaintGradient:
		return "Gradient"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(k))
	}
}

// Paint is the bit-packed 32-bit paint field carried by every strip.
//
// Layout:
//
//	bit  31     color source: 0 = payload-sourced, 1 = clip slot texture
//	bits 29-30  paint kind (payload-sourced only): 0 solid, 1 image, 2 gradient
//	bits 0-28   paint table index (image/gradient)
//	bits 0-7    opacity byte (slot-sourced; remaining bits reserved)
//
// The same layout is unpacked by the WGSL shader in package gpu; the encode
// and decode halves live side by side here so the contract cannot drift.
type Paint uint32

const (
	paintSlotBit   = 1 << 31
	paintKindShift = 29
	paintKindMask  = 0x3 << paintKindShift
	paintIndexMask = (1 << 29) - 1
)

// SolidPaint returns a payload-sourced solid paint. The color itself
// travels in the strip payload, so no table entry is needed.
func SolidPaint() Paint {
	return Paint(uint32(PaintSolid) << paintKindShift)
}

// ImagePaint returns a payload-sourced image paint referencing the paint
// table entry at index.
func ImagePaint(index uint32) (Paint, error) {
	if index > paintIndexMask {
		return 0, fmt.Errorf("%w: %d", ErrPaintIndexRange, index)
	}
	return Paint(uint32(PaintImage)<<paintKindShift | index), nil
}

// GradientPaint returns a payload-sourced gradient paint referencing the
// paint table entry at index.
func GradientPaint(index uint32) (Paint, error) {
	if index > paintIndexMask {
		return 0, fmt.Errorf("%w: %d", ErrPaintIndexRange, index)
	}
	return Paint(uint32(PaintGradient)<<paintKindShift | index), nil
}

// SlotPaint returns a slot-sourced paint: the fragment color is fetched
// from the clip-input store and multiplied by opacity (0-255).
func SlotPaint(opacity uint8) Paint {
	return Paint(paintSlotBit | uint32(opacity))
}

// IsSlot reports whether the paint sources color from a clip slot.
func (p Paint) IsSlot() bool {
	return p&paintSlotBit != 0
}

// Kind returns the paint kind. Only meaningful for payload-sourced paints.
func (p Paint) Kind() PaintKind {
	return PaintKind((uint32(p) & paintKindMask) >> paintKindShift)
}

// TableIndex returns the paint table index for image and gradient paints.
func (p Paint) TableIndex() uint32 {
	return uint32(p) & paintIndexMask
}

// Opacity returns the opacity byte for slot-sourced paints.
func (p Paint) Opacity() uint8 {
	return uint8(p)
}

// Bits returns the raw 32-bit encoding, as uploaded per instance.
func (p Paint) Bits() uint32 {
	return uint32(p)
}

// PackImageOrigin packs a scene-space sample origin into an image paint
// payload: x in the low 16 bits, y in the high 16.
func PackImageOrigin(x, y uint16) uint32 {
	return uint32(x) | uint32(y)<<16
}

// UnpackImageOrigin is the inverse of PackImageOrigin.
func UnpackImageOrigin(payload uint32) (x, y uint16) {
	return uint16(payload & 0xFFFF), uint16(payload >> 16)
}
