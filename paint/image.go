package paint

import (
	"math"

	"github.com/gogpu/strips"
)

// Entry layout constants. One table entry is three RGBA32Uint texels:
//
//	texel 0: flags, packed size, packed offset, 0
//	texel 1: transform a, b, c, d (float bits)
//	texel 2: translation tx, ty (float bits), 0, 0
const (
	// EntryTexels is the number of RGBA32Uint texels per table entry.
	EntryTexels = 3

	// EntryWords is the number of 32-bit words per table entry.
	EntryWords = EntryTexels * 4
)

// flag bit layout inside the entry's first word.
const (
	flagQualityMask  = 0x3
	flagExtendXShift = 2
	flagExtendYShift = 4
	flagExtendMask   = 0x3

	// flagRadialBit marks a radial gradient ramp entry. Samplers derive the
	// ramp coordinate from Center and Radius instead of the affine transform.
	flagRadialBit = 1 << 6
)

// EncodedImage is a paint-table entry for an image or gradient-ramp paint:
// where its pixels live in the atlas, how to sample them, and the affine
// transform from scene coordinates to atlas sample coordinates.
type EncodedImage struct {
	// Quality selects the resampling tier.
	Quality strips.ImageQuality

	// ExtendX, ExtendY remap out-of-range sample coordinates per axis.
	ExtendX, ExtendY strips.ExtendMode

	// Width, Height are the image extent in atlas pixels.
	Width, Height uint16

	// OffsetX, OffsetY place the image inside the atlas.
	OffsetX, OffsetY uint16

	// Transform maps scene coordinates to image-local sample coordinates
	// (before the atlas offset is applied).
	Transform strips.Affine

	// Radial gradient parameters, meaningful only when Radial is set. They
	// occupy the entry's spare texel words; distance from Center over Radius
	// is the ramp parameter, which no affine transform can express.
	Radial bool
	Center [2]float32
	Radius float32
}

// flags packs the quality tier, extend modes, and the radial bit into the
// entry's first word.
func (e EncodedImage) flags() uint32 {
	f := uint32(e.Quality)&flagQualityMask |
		(uint32(e.ExtendX)&flagExtendMask)<<flagExtendXShift |
		(uint32(e.ExtendY)&flagExtendMask)<<flagExtendYShift
	if e.Radial {
		f |= flagRadialBit
	}
	return f
}

// appendWords appends the entry's EntryWords texel words to dst.
func (e EncodedImage) appendWords(dst []uint32) []uint32 {
	return append(dst,
		e.flags(),
		uint32(e.Width)|uint32(e.Height)<<16,
		uint32(e.OffsetX)|uint32(e.OffsetY)<<16,
		math.Float32bits(e.Radius),
		math.Float32bits(e.Transform.A),
		math.Float32bits(e.Transform.B),
		math.Float32bits(e.Transform.D),
		math.Float32bits(e.Transform.E),
		math.Float32bits(e.Transform.C),
		math.Float32bits(e.Transform.F),
		math.Float32bits(e.Center[0]),
		math.Float32bits(e.Center[1]),
	)
}

// decodeImage reconstructs an EncodedImage from its EntryWords texel words.
func decodeImage(words []uint32) EncodedImage {
	flags := words[0]
	return EncodedImage{
		Quality: strips.ImageQuality(flags & flagQualityMask),
		ExtendX: strips.ExtendMode((flags >> flagExtendXShift) & flagExtendMask),
		ExtendY: strips.ExtendMode((flags >> flagExtendYShift) & flagExtendMask),
		Width:   uint16(words[1] & 0xFFFF),
		Height:  uint16(words[1] >> 16),
		OffsetX: uint16(words[2] & 0xFFFF),
		OffsetY: uint16(words[2] >> 16),
		Transform: strips.Affine{
			A: math.Float32frombits(words[4]),
			B: math.Float32frombits(words[5]),
			D: math.Float32frombits(words[6]),
			E: math.Float32frombits(words[7]),
			C: math.Float32frombits(words[8]),
			F: math.Float32frombits(words[9]),
		},
		Radial: flags&flagRadialBit != 0,
		Radius: math.Float32frombits(words[3]),
		Center: [2]float32{
			math.Float32frombits(words[10]),
			math.Float32frombits(words[11]),
		},
	}
}
