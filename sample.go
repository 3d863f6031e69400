package strips

import "math"

// ImageQuality selects the resampling tier for image paints.
type ImageQuality uint8

const (
	// QualityLow selects nearest-texel sampling.
	QualityLow ImageQuality = iota

	// QualityMedium selects bilinear filtering (4 texels).
	QualityMedium

	// QualityHigh selects bicubic filtering (16 texels, Mitchell-Netravali).
	QualityHigh
)

// String returns a human-readable name for the quality tier.
func (q ImageQuality) String() string {
	switch q {
	case QualityLow:
		return "Low"
	case QualityMedium:
		return "Medium"
	case QualityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// ExtendMode is the policy for mapping out-of-range sample coordinates back
// into an image's domain.
type ExtendMode uint8

const (
	// ExtendPad clamps to the edge texel.
	ExtendPad ExtendMode = iota

	// ExtendRepeat wraps fractionally (tiling).
	ExtendRepeat

	// ExtendReflect folds with a triangle wave (mirrored tiling).
	ExtendReflect
)

// String returns a human-readable name for the extend mode.
func (m ExtendMode) String() string {
	switch m {
	case ExtendPad:
		return "Pad"
	case ExtendRepeat:
		return "Repeat"
	case ExtendReflect:
		return "Reflect"
	default:
		return "Unknown"
	}
}

// extendEpsilon keeps the clamp maximum strictly below the image dimension
// so a remapped coordinate never floors to an out-of-range texel, and keeps
// divisions well-defined for zero-sized images.
const extendEpsilon = 1e-4

// ExtendNormalized remaps the sample coordinate t into [0, size) according
// to the extend mode. The remap happens per axis, before sampling, on both
// backends; the WGSL extend_mode() function mirrors this exactly.
func ExtendNormalized(t, size float32, mode ExtendMode) float32 {
	maxCoord := size - extendEpsilon
	if maxCoord < 0 {
		maxCoord = 0
	}

	switch mode {
	case ExtendRepeat:
		n := t / maxf32(size, extendEpsilon)
		n -= floorf32(n)
		return minf32(n*size, maxCoord)

	case ExtendReflect:
		n := t / maxf32(size, extendEpsilon)
		// Triangle wave: |n - 2*round(0.5*n)| folds every other period.
		folded := absf32(n - 2*roundf32(0.5*n))
		return minf32(folded*size, maxCoord)

	default: // ExtendPad
		return clampf32(t, 0, maxCoord)
	}
}

// CubicWeights returns the four Mitchell-Netravali filter weights
// (B = C = 1/3) for taps at distances t+1, t, 1-t, 2-t, with t the
// fractional sample offset in [0, 1).
//
// Each weight is the Horner form w(t) = t*(t*(t*d + c) + b) + a of the
// kernel restricted to its tap; the coefficient sets below are fixed by
// the kernel and the weights sum to 1 for all t. The WGSL cubic_weights()
// function carries the same constants.
func CubicWeights(t float32) [4]float32 {
	const (
		// tap p(-1): kernel segment 1 <= |x| < 2 at x = t+1
		a0, b0, c0, d0 = 1.0 / 18.0, -0.5, 5.0 / 6.0, -7.0 / 18.0
		// tap p(0): kernel segment |x| < 1 at x = t
		a1, b1, c1, d1 = 8.0 / 9.0, 0.0, -2.0, 7.0 / 6.0
		// tap p(1): kernel segment |x| < 1 at x = 1-t
		a2, b2, c2, d2 = 1.0 / 18.0, 0.5, 3.0 / 2.0, -7.0 / 6.0
		// tap p(2): kernel segment 1 <= |x| < 2 at x = 2-t
		a3, b3, c3, d3 = 0.0, 0.0, -1.0 / 3.0, 7.0 / 18.0
	)
	return [4]float32{
		t*(t*(t*d0+c0)+b0) + a0,
		t*(t*(t*d1+c1)+b1) + a1,
		t*(t*(t*d2+c2)+b2) + a2,
		t*(t*(t*d3+c3)+b3) + a3,
	}
}

// BilinearFract splits a continuous sample coordinate into the base texel
// and the fractional interpolation weight, after the half-texel alignment
// adjustment (texel centers sit at integer + 0.5).
func BilinearFract(coord float32) (base int32, frac float32) {
	f := coord - 0.5
	fl := floorf32(f)
	return int32(fl), f - fl
}

// float32 helpers shared by the sampling math and the rasterizer.

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clampf32(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

func floorf32(v float32) float32 {
	return float32(math.Floor(float64(v)))
}

func roundf32(v float32) float32 {
	return float32(math.Round(float64(v)))
}
