package paint

import (
	"errors"
	"math"

	"github.com/gogpu/strips"
)

// Gradient errors.
var (
	// ErrNoStops is returned for gradients without color stops.
	ErrNoStops = errors.New("paint: gradient has no color stops")
)

// DefaultRampSize is the texel count of a sampled gradient ramp.
const DefaultRampSize = 256

// GradientKind selects the gradient geometry.
type GradientKind uint8

const (
	// GradientLinear interpolates along the segment from Start to End.
	GradientLinear GradientKind = iota

	// GradientRadial interpolates by distance from Start; Radius scales
	// the unit parameter.
	GradientRadial
)

// Stop is one color stop at a normalized offset in [0, 1].
type Stop struct {
	Offset float32
	Color  strips.RGBA
}

// Gradient describes a color ramp over scene space. The encoder turns it
// into a sampled ramp row in the atlas plus a transform entry; the CPU
// compositor evaluates linear gradients analytically from the stops instead
// of sampling, which is exact at any scale.
type Gradient struct {
	Kind   GradientKind
	Start  [2]float32
	End    [2]float32
	Radius float32
	Stops  []Stop
	Extend strips.ExtendMode
}

// ColorAt evaluates the ramp at parameter t in [0, 1], interpolating
// between adjacent stops and returning premultiplied RGBA in [0, 1].
// Out-of-range t is clamped; extend-mode folding happens before this call.
func (g *Gradient) ColorAt(t float32) [4]float32 {
	if len(g.Stops) == 0 {
		return [4]float32{}
	}
	if t <= g.Stops[0].Offset {
		return colorToFloat(g.Stops[0].Color)
	}
	last := g.Stops[len(g.Stops)-1]
	if t >= last.Offset {
		return colorToFloat(last.Color)
	}

	for i := 1; i < len(g.Stops); i++ {
		s0, s1 := g.Stops[i-1], g.Stops[i]
		if t > s1.Offset {
			continue
		}
		span := s1.Offset - s0.Offset
		var f float32
		if span > 0 {
			f = (t - s0.Offset) / span
		}
		c0 := colorToFloat(s0.Color)
		c1 := colorToFloat(s1.Color)
		return [4]float32{
			c0[0] + (c1[0]-c0[0])*f,
			c0[1] + (c1[1]-c0[1])*f,
			c0[2] + (c1[2]-c0[2])*f,
			c0[3] + (c1[3]-c0[3])*f,
		}
	}
	return colorToFloat(last.Color)
}

// Ramp samples the gradient into n texels for atlas storage. Texel centers
// sit at (i + 0.5) / n, matching how the samplers read the row back.
func (g *Gradient) Ramp(n int) [][4]float32 {
	if n <= 0 {
		n = DefaultRampSize
	}
	ramp := make([][4]float32, n)
	for i := range ramp {
		ramp[i] = g.ColorAt((float32(i) + 0.5) / float32(n))
	}
	return ramp
}

// Parameter maps a scene-space point onto the gradient's unit parameter,
// before extend-mode folding.
func (g *Gradient) Parameter(x, y float32) float32 {
	switch g.Kind {
	case GradientRadial:
		dx := x - g.Start[0]
		dy := y - g.Start[1]
		r := g.Radius
		if r <= 0 {
			return 0
		}
		return sqrtf32(dx*dx+dy*dy) / r
	default:
		dx := g.End[0] - g.Start[0]
		dy := g.End[1] - g.Start[1]
		len2 := dx*dx + dy*dy
		if len2 <= 0 {
			return 0
		}
		return ((x-g.Start[0])*dx + (y-g.Start[1])*dy) / len2
	}
}

// rampTransform builds the scene-to-ramp affine for a ramp of n texels
// placed in the atlas: x' picks the ramp texel for the gradient parameter,
// y' is constant at the ramp row. The entry stores image-local coordinates,
// so no atlas offset appears here.
func (g *Gradient) rampTransform(n int) strips.Affine {
	fn := float32(n)
	switch g.Kind {
	case GradientRadial:
		// Radial parameters need a distance, which no affine expresses;
		// the samplers special-case radial entries and only use the
		// translation row. Kept identity-scaled for decode symmetry.
		return strips.Affine{A: fn, E: 1}
	default:
		dx := g.End[0] - g.Start[0]
		dy := g.End[1] - g.Start[1]
		len2 := dx*dx + dy*dy
		if len2 <= 0 {
			return strips.Affine{E: 1, F: 0.5}
		}
		sx := dx / len2 * fn
		sy := dy / len2 * fn
		return strips.Affine{
			A: sx,
			B: sy,
			C: -(g.Start[0]*sx + g.Start[1]*sy),
			D: 0,
			E: 0,
			F: 0.5,
		}
	}
}

func colorToFloat(c strips.RGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255.0,
		float32(c.G) / 255.0,
		float32(c.B) / 255.0,
		float32(c.A) / 255.0,
	}
}

func sqrtf32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}
