package cpu

import (
	"github.com/gogpu/strips"
	"github.com/gogpu/strips/paint"
)

// sampler resolves image and gradient paints to premultiplied colors. It
// wraps the atlas with the shared resampling math; the WGSL fragment stage
// implements the identical tier selection and tap arithmetic.
type sampler struct {
	atlas *paint.Atlas
}

// extendTexel remaps an integer tap coordinate into [0, size) per the
// extend mode. Bilinear and bicubic taps step outside the remapped sample
// coordinate by up to two texels, so each tap folds again.
func extendTexel(t, size int, mode strips.ExtendMode) int {
	if size <= 1 {
		return 0
	}
	switch mode {
	case strips.ExtendRepeat:
		t %= size
		if t < 0 {
			t += size
		}
		return t
	case strips.ExtendReflect:
		period := 2 * size
		t %= period
		if t < 0 {
			t += period
		}
		if t >= size {
			t = period - 1 - t
		}
		return t
	default: // pad
		if t < 0 {
			return 0
		}
		if t >= size {
			return size - 1
		}
		return t
	}
}

// fetch reads one image-local texel, folding the tap per axis.
func (s *sampler) fetch(img *paint.EncodedImage, tx, ty int) [4]float32 {
	tx = extendTexel(tx, int(img.Width), img.ExtendX)
	ty = extendTexel(ty, int(img.Height), img.ExtendY)
	return s.atlas.Sample(int(img.OffsetX)+tx, int(img.OffsetY)+ty)
}

// sample resolves an image-paint fragment at scene coordinates. The
// transform maps to image-local coordinates, each axis is remapped by its
// extend mode, then the quality tier picks the tap pattern.
func (s *sampler) sample(img *paint.EncodedImage, sceneX, sceneY float32) [4]float32 {
	lx, ly := img.Transform.TransformPoint(sceneX, sceneY)
	u := strips.ExtendNormalized(lx, float32(img.Width), img.ExtendX)
	v := strips.ExtendNormalized(ly, float32(img.Height), img.ExtendY)

	switch img.Quality {
	case strips.QualityMedium:
		return s.sampleBilinear(img, u, v)
	case strips.QualityHigh:
		return s.sampleBicubic(img, u, v)
	default:
		return s.fetch(img, int(u), int(v))
	}
}

// sampleBilinear averages the four taps around the sample point, weighted
// by the fractional offsets after half-texel alignment.
func (s *sampler) sampleBilinear(img *paint.EncodedImage, u, v float32) [4]float32 {
	bx, fx := strips.BilinearFract(u)
	by, fy := strips.BilinearFract(v)

	var out [4]float32
	for j := 0; j < 2; j++ {
		wy := 1 - fy
		if j == 1 {
			wy = fy
		}
		for i := 0; i < 2; i++ {
			wx := 1 - fx
			if i == 1 {
				wx = fx
			}
			c := s.fetch(img, int(bx)+i, int(by)+j)
			w := wx * wy
			out[0] += c[0] * w
			out[1] += c[1] * w
			out[2] += c[2] * w
			out[3] += c[3] * w
		}
	}
	return out
}

// sampleBicubic runs the 16-tap Mitchell-Netravali filter. Negative lobes
// can push channels outside [0, 1] or above the alpha channel, so the
// result is clamped back into premultiplied range.
func (s *sampler) sampleBicubic(img *paint.EncodedImage, u, v float32) [4]float32 {
	bx, fx := strips.BilinearFract(u)
	by, fy := strips.BilinearFract(v)
	wx := strips.CubicWeights(fx)
	wy := strips.CubicWeights(fy)

	var out [4]float32
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			c := s.fetch(img, int(bx)+i-1, int(by)+j-1)
			w := wx[i] * wy[j]
			out[0] += c[0] * w
			out[1] += c[1] * w
			out[2] += c[2] * w
			out[3] += c[3] * w
		}
	}

	for k := range out {
		if out[k] < 0 {
			out[k] = 0
		} else if out[k] > 1 {
			out[k] = 1
		}
	}
	// Premultiplied consistency: no color channel may exceed alpha.
	for k := 0; k < 3; k++ {
		if out[k] > out[3] {
			out[k] = out[3]
		}
	}
	return out
}

// sampleGradient resolves a gradient-paint fragment. Linear gradients with
// stops evaluate analytically, exact at any scale; anything else samples
// the pre-rasterized ramp through the regular image path.
//
// The GPU shader always samples the 256-texel ramp, so for linear gradients
// whose stops are spaced more tightly than the ramp resolution the two
// backends can differ by more than one quantization step near those stops.
// Ramp-sampled gradients stay within one step everywhere.
func (s *sampler) sampleGradient(entry *paint.Entry, sceneX, sceneY float32) [4]float32 {
	g := entry.Gradient
	if g != nil && g.Kind == paint.GradientLinear {
		t := g.Parameter(sceneX, sceneY)
		t = strips.ExtendNormalized(t, 1, g.Extend)
		return g.ColorAt(t)
	}
	if g != nil && g.Kind == paint.GradientRadial {
		t := g.Parameter(sceneX, sceneY)
		t = strips.ExtendNormalized(t, 1, g.Extend)
		// Radial distance is not affine; bypass the entry transform and
		// index the ramp row directly.
		img := &entry.Image
		x := t * float32(img.Width)
		return s.fetch(img, int(x), 0)
	}
	return s.sample(&entry.Image, sceneX, sceneY)
}
