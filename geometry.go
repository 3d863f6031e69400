package strips

import "math"

// FillRule represents the fill rule for paths.
type FillRule uint32

const (
	// FillNonZero uses the non-zero winding rule.
	FillNonZero FillRule = 0
	// FillEvenOdd uses the even-odd rule.
	FillEvenOdd FillRule = 1
)

// String returns a human-readable name for the fill rule.
func (r FillRule) String() string {
	switch r {
	case FillNonZero:
		return "NonZero"
	case FillEvenOdd:
		return "EvenOdd"
	default:
		return "Unknown"
	}
}

// Line is a monotonic line segment in pixel coordinates, the upstream input
// of the tiler. Flattening guarantees Y0 <= Y1; Winding records the original
// direction (+1 downward, -1 upward) before the endpoints were normalized.
type Line struct {
	X0, Y0 float32
	X1, Y1 float32
	Winding int8
}

// Reversed reports whether the segment originally pointed upward.
func (l Line) Reversed() bool {
	return l.Winding < 0
}

// Affine represents a 2D affine transformation matrix.
// The matrix is stored in row-major order as:
//
//	| A  B  C |
//	| D  E  F |
//
// Where a point (x, y) is transformed to:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Affine struct {
	A, B, C float32
	D, E, F float32
}

// IdentityAffine returns the identity transformation.
func IdentityAffine() Affine {
	return Affine{A: 1, B: 0, C: 0, D: 0, E: 1, F: 0}
}

// TranslateAffine creates a translation transformation.
func TranslateAffine(x, y float32) Affine {
	return Affine{A: 1, B: 0, C: x, D: 0, E: 1, F: y}
}

// ScaleAffine creates a scaling transformation.
func ScaleAffine(x, y float32) Affine {
	return Affine{A: x, B: 0, C: 0, D: 0, E: y, F: 0}
}

// RotateAffine creates a rotation transformation (angle in radians).
func RotateAffine(angle float32) Affine {
	cos := float32(math.Cos(float64(angle)))
	sin := float32(math.Sin(float64(angle)))
	return Affine{A: cos, B: -sin, C: 0, D: sin, E: cos, F: 0}
}

// Multiply returns the product of two affine transformations.
func (a Affine) Multiply(b Affine) Affine {
	return Affine{
		A: a.A*b.A + a.B*b.D,
		B: a.A*b.B + a.B*b.E,
		C: a.A*b.C + a.B*b.F + a.C,
		D: a.D*b.A + a.E*b.D,
		E: a.D*b.B + a.E*b.E,
		F: a.D*b.C + a.E*b.F + a.F,
	}
}

// TransformPoint transforms a point by the affine matrix.
func (a Affine) TransformPoint(x, y float32) (float32, float32) {
	return a.A*x + a.B*y + a.C, a.D*x + a.E*y + a.F
}

// IsIdentity returns true if this is the identity transformation.
func (a Affine) IsIdentity() bool {
	return a.A == 1 && a.B == 0 && a.C == 0 &&
		a.D == 0 && a.E == 1 && a.F == 0
}

// Determinant returns the determinant of the 2x2 linear part.
// A zero determinant means the transform is degenerate (collapses area).
func (a Affine) Determinant() float32 {
	return a.A*a.E - a.B*a.D
}

// Invert returns the inverse transformation. The second return value is
// false when the transform is degenerate; callers encoding image paints use
// it to reject transforms before any render-time division can occur.
func (a Affine) Invert() (Affine, bool) {
	det := a.Determinant()
	if det == 0 || float32(math.Abs(float64(det))) < 1e-12 {
		return IdentityAffine(), false
	}
	inv := 1.0 / det
	return Affine{
		A: a.E * inv,
		B: -a.B * inv,
		C: (a.B*a.F - a.E*a.C) * inv,
		D: -a.D * inv,
		E: a.A * inv,
		F: (a.D*a.C - a.A*a.F) * inv,
	}, true
}

// RGBA is a premultiplied 8-bit color in RGBA channel order.
type RGBA struct {
	R, G, B, A uint8
}

// PackRGBA packs a premultiplied color into a strip payload word,
// little-endian channel order (R in the low byte).
func PackRGBA(c RGBA) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// UnpackRGBA is the inverse of PackRGBA.
func UnpackRGBA(v uint32) RGBA {
	return RGBA{
		R: uint8(v),
		G: uint8(v >> 8),
		B: uint8(v >> 16),
		A: uint8(v >> 24),
	}
}
