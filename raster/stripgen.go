package raster

import (
	"github.com/gogpu/strips"
	"github.com/gogpu/strips/internal/wide"
)

// column run classification during the band sweep.
const (
	runEmpty = iota // all four coverage bytes are 0
	runSolid        // all four coverage bytes are 255
	runDense        // fractional coverage somewhere in the column
)

// Generator sweeps tiled coverage bands into ordered strip records and
// alpha-buffer columns. A dense run starts wherever coverage is fractional
// and ends where it becomes constant for the full strip height; constant
// runs extend adjacent strips instead of producing records of their own.
type Generator struct {
	fillRule strips.FillRule
}

// NewGenerator creates a generator with the given fill rule.
func NewGenerator(rule strips.FillRule) *Generator {
	return &Generator{fillRule: rule}
}

// SetFillRule sets the fill rule for coverage interpretation.
func (g *Generator) SetFillRule(rule strips.FillRule) {
	g.fillRule = rule
}

// FillRule returns the current fill rule.
func (g *Generator) FillRule() strips.FillRule {
	return g.fillRule
}

// quantize converts eight winding values to 8-bit coverage under the
// generator's fill rule. The sweep packs the four sub-rows of two adjacent
// columns into one vector, so quantization runs all lanes at once.
// Rounding rather than truncating keeps edge antialiasing from darkening
// systematically.
func (g *Generator) quantize(w wide.F32x8) [2 * strips.StripHeight]uint8 {
	var c wide.F32x8
	switch g.fillRule {
	case strips.FillEvenOdd:
		// Even-odd: fold |winding| into [0, 1] with period 2.
		aw := w.Abs()
		for i := range aw {
			im1 := float32(int32(aw[i]*0.5 + 0.5))
			c[i] = aw[i] - 2.0*im1
		}
		c = c.Abs().Clamp(0, 1)
	default:
		// Non-zero: coverage = |winding|.
		c = w.Abs().Clamp(0, 1)
	}

	var out [2 * strips.StripHeight]uint8
	for i := range c {
		out[i] = uint8(c[i]*255.0 + 0.5)
	}
	return out
}

// covLanes extracts one column's coverage bytes from a quantized pair.
func covLanes(c [2 * strips.StripHeight]uint8, off int) [strips.StripHeight]uint8 {
	return [strips.StripHeight]uint8{c[off], c[off+1], c[off+2], c[off+3]}
}

func classify(cov [strips.StripHeight]uint8) int {
	solid := true
	empty := true
	for _, a := range cov {
		if a != 255 {
			solid = false
		}
		if a != 0 {
			empty = false
		}
	}
	switch {
	case empty:
		return runEmpty
	case solid:
		return runSolid
	default:
		return runDense
	}
}

// bandEmitter appends classified columns to a strip list, extending the
// open strip where the run rules allow it.
type bandEmitter struct {
	dst     []strips.Strip
	open    int // index into dst of the strip still accepting columns
	pixelY  uint16
	paint   strips.Paint
	payload uint32
	alphas  *strips.AlphaBuffer
}

func (e *bandEmitter) column(x int, cov [strips.StripHeight]uint8) {
	switch classify(cov) {
	case runEmpty:
		e.open = -1

	case runSolid:
		if e.open >= 0 {
			e.dst[e.open].Width++
		} else {
			e.dst = append(e.dst, strips.Strip{
				X:       uint16(x), //nolint:gosec // bounded by viewport
				Y:       e.pixelY,
				Width:   1,
				Paint:   e.paint,
				Payload: e.payload,
			})
			e.open = len(e.dst) - 1
		}

	case runDense:
		// A strip accepts dense columns only while its dense prefix is
		// still growing; once a solid suffix exists the next dense column
		// starts a new record.
		if e.open >= 0 && e.dst[e.open].Width == e.dst[e.open].DenseWidth {
			e.alphas.PushColumn(cov)
			e.dst[e.open].Width++
			e.dst[e.open].DenseWidth++
		} else {
			col := e.alphas.PushColumn(cov)
			e.dst = append(e.dst, strips.Strip{
				X:          uint16(x), //nolint:gosec // bounded by viewport
				Y:          e.pixelY,
				Width:      1,
				DenseWidth: 1,
				ColIdx:     col,
				Paint:      e.paint,
				Payload:    e.payload,
			})
			e.open = len(e.dst) - 1
		}
	}
}

// GenerateBand sweeps one band and appends its strips to dst, pushing dense
// coverage columns to alphas. Strips come out in ascending x with no
// overlap; ColIdx values index into alphas as passed in, so per-band private
// buffers need rebasing when merged.
func (g *Generator) GenerateBand(
	band *Band,
	paint strips.Paint,
	payload uint32,
	alphas *strips.AlphaBuffer,
	dst []strips.Strip,
) []strips.Strip {
	if band.Empty() {
		return dst
	}

	//nolint:gosec // strip coordinates bounded by the 16-bit viewport limit
	pixelY := uint16(band.PixelY())

	em := bandEmitter{
		dst:     dst,
		open:    -1,
		pixelY:  pixelY,
		paint:   paint,
		payload: payload,
		alphas:  alphas,
	}

	acc := band.baseline
	startX := 0
	if !band.hasBaseline() {
		startX = band.minX
	}
	endX := band.maxX

	x := startX
	for ; x+1 <= endX; x += 2 {
		var w wide.F32x8
		for r := 0; r < strips.StripHeight; r++ {
			idx := r*band.width + x
			w[r] = acc[r] + band.area[idx]
			acc[r] += band.delta[idx]
		}
		for r := 0; r < strips.StripHeight; r++ {
			idx := r*band.width + x + 1
			w[strips.StripHeight+r] = acc[r] + band.area[idx]
			acc[r] += band.delta[idx]
		}
		cov := g.quantize(w)
		em.column(x, covLanes(cov, 0))
		em.column(x+1, covLanes(cov, strips.StripHeight))
	}
	if x <= endX {
		var w wide.F32x8
		for r := 0; r < strips.StripHeight; r++ {
			idx := r*band.width + x
			w[r] = acc[r] + band.area[idx]
			acc[r] += band.delta[idx]
		}
		em.column(x, covLanes(g.quantize(w), 0))
	}

	// Right of the last touched column the winding is constant; the area
	// term is zero there, so the accumulator alone classifies the tail.
	trailStart := endX + 1
	if trailStart < startX {
		trailStart = startX
	}
	if trailStart >= band.width {
		return em.dst
	}

	var w wide.F32x8
	for r := 0; r < strips.StripHeight; r++ {
		w[r] = acc[r]
	}
	tail := covLanes(g.quantize(w), 0)

	switch classify(tail) {
	case runEmpty:
		// nothing to emit

	case runSolid:
		n := band.width - trailStart
		if em.open >= 0 {
			em.dst[em.open].Width += uint16(n) //nolint:gosec // bounded by viewport
		} else {
			em.dst = append(em.dst, strips.Strip{
				X:       uint16(trailStart), //nolint:gosec // bounded by viewport
				Y:       pixelY,
				Width:   uint16(n), //nolint:gosec // bounded by viewport
				Paint:   paint,
				Payload: payload,
			})
		}

	case runDense:
		// Constant fractional coverage reaching the viewport edge, seen
		// with geometry clipped at the right boundary.
		for tx := trailStart; tx < band.width; tx++ {
			em.column(tx, tail)
		}
	}

	return em.dst
}

// Generate sweeps every band of the tiler serially into a single strip list
// and alpha buffer.
func (g *Generator) Generate(
	t *Tiler,
	paint strips.Paint,
	payload uint32,
	alphas *strips.AlphaBuffer,
) []strips.Strip {
	var out []strips.Strip
	for i := 0; i < t.NumBands(); i++ {
		out = g.GenerateBand(t.Band(i), paint, payload, alphas, out)
	}
	return out
}
