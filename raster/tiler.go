package raster

import (
	"math"

	"github.com/gogpu/strips"
)

// Band accumulates signed coverage for one strip row of the viewport,
// covering pixel rows [y*StripHeight, (y+1)*StripHeight).
//
// For every pixel the tiler stores two values per sub-row: area, the
// trapezoid area enclosed between crossing segments and the pixel's right
// edge, and delta, the signed height of segment crossings inside the pixel.
// The winding number at column x is then
//
//	baseline + sum(delta[0..x)) + area[x]
//
// which the strip generator resolves with a single left-to-right prefix
// sweep. Bands never share state, so they tile and sweep in parallel.
type Band struct {
	y     uint16
	width int

	// area and delta are row-major: index r*width + x for sub-row r.
	area  []float32
	delta []float32

	// baseline is the winding entering column 0 per sub-row, contributed
	// by segments clipped off the left viewport edge.
	baseline [strips.StripHeight]float32

	// minX..maxX is the touched column range; minX > maxX means no
	// segment crossed this band.
	minX, maxX int
}

func newBand(y uint16, width int) *Band {
	return &Band{
		y:     y,
		width: width,
		area:  make([]float32, strips.StripHeight*width),
		delta: make([]float32, strips.StripHeight*width),
		minX:  width,
		maxX:  -1,
	}
}

// Y returns the strip row index of the band.
func (b *Band) Y() uint16 {
	return b.y
}

// PixelY returns the pixel Y coordinate of the band's top row.
func (b *Band) PixelY() uint32 {
	return uint32(b.y) * strips.StripHeight
}

// Empty reports whether no segment touched the band and no winding enters
// from the left.
func (b *Band) Empty() bool {
	return b.minX > b.maxX && !b.hasBaseline()
}

func (b *Band) hasBaseline() bool {
	for _, w := range b.baseline {
		if w != 0 {
			return true
		}
	}
	return false
}

func (b *Band) reset() {
	if b.minX <= b.maxX {
		for r := 0; r < strips.StripHeight; r++ {
			row := r * b.width
			for x := b.minX; x <= b.maxX; x++ {
				b.area[row+x] = 0
				b.delta[row+x] = 0
			}
		}
	}
	b.baseline = [strips.StripHeight]float32{}
	b.minX = b.width
	b.maxX = -1
}

// addLine accumulates one monotonic segment, given in coordinates relative
// to the band's top-left corner. y0 < y1 is required; sign carries the
// winding direction.
func (b *Band) addLine(x0, y0, x1, y1, sign float32) {
	dy := y1 - y0
	dx := x1 - x0

	var ySlope float32
	if dx == 0 {
		// Vertical segment: large slope stands in for infinity, its
		// reciprocal is effectively zero.
		ySlope = 1e10
	} else {
		ySlope = dy / dx
	}
	xSlope := 1.0 / ySlope

	for r := 0; r < strips.StripHeight; r++ {
		rowTop := float32(r)
		rowBottom := rowTop + 1.0

		// Clamp segment Y range to this pixel row.
		yMin := maxf32(y0, rowTop)
		yMax := minf32(y1, rowBottom)
		if yMin >= yMax {
			continue
		}
		h := yMax - yMin

		// Column span of the segment within this row.
		xAtMin := x0 + (yMin-y0)*xSlope
		xAtMax := x0 + (yMax-y0)*xSlope
		segMinX := minf32(xAtMin, xAtMax)
		segMaxX := maxf32(xAtMin, xAtMax)
		xStart := int(floorf32(segMinX))
		xEnd := int(floorf32(segMaxX))

		if xStart >= b.width {
			// Entirely right of the viewport: affects nothing visible.
			continue
		}
		if xEnd < 0 {
			// Entirely left of the viewport: full height enters at
			// column 0.
			b.baseline[r] += h * sign
			continue
		}

		row := r * b.width
		for x := xStart; x <= xEnd; x++ {
			pxLeft := float32(x)
			pxRight := pxLeft + 1.0

			// Y coordinates where the segment crosses the pixel's
			// left and right edges, clamped to its range in this row.
			leftY := clampf32(y0+(pxLeft-x0)*ySlope, yMin, yMax)
			rightY := clampf32(y0+(pxRight-x0)*ySlope, yMin, yMax)

			// X coordinates at the clamped Y values.
			leftX := x0 + (leftY-y0)*xSlope
			rightX := x0 + (rightY-y0)*xSlope

			// Segment height within this pixel, and the trapezoid
			// area between the segment and the pixel's right edge.
			pixelH := absf32(rightY - leftY)
			area := 0.5 * pixelH * (2*pxRight - rightX - leftX)

			if x < 0 {
				b.baseline[r] += pixelH * sign
				continue
			}
			if x >= b.width {
				break
			}
			b.area[row+x] += area * sign
			b.delta[row+x] += pixelH * sign
		}

		clampedStart := xStart
		if clampedStart < 0 {
			clampedStart = 0
		}
		clampedEnd := xEnd
		if clampedEnd >= b.width {
			clampedEnd = b.width - 1
		}
		if clampedStart < b.minX {
			b.minX = clampedStart
		}
		if clampedEnd > b.maxX {
			b.maxX = clampedEnd
		}
	}
}

// Tiler partitions flattened path edges into strip-height bands and
// accumulates per-column coverage. Feed it the monotonic segments of one
// path, then hand the bands to a Generator; Reset between paths.
type Tiler struct {
	width  int
	height int
	bands  []*Band
}

// NewTiler creates a tiler for the given viewport.
func NewTiler(width, height uint32) *Tiler {
	numBands := (int(height) + strips.StripHeight - 1) / strips.StripHeight
	bands := make([]*Band, numBands)
	for i := range bands {
		bands[i] = newBand(uint16(i), int(width)) //nolint:gosec // band count bounded by viewport
	}
	return &Tiler{
		width:  int(width),
		height: int(height),
		bands:  bands,
	}
}

// Reset clears all bands for the next path without deallocating.
func (t *Tiler) Reset() {
	for _, b := range t.bands {
		b.reset()
	}
}

// NumBands returns the number of strip rows covering the viewport.
func (t *Tiler) NumBands() int {
	return len(t.bands)
}

// Band returns the band for strip row i.
func (t *Tiler) Band(i int) *Band {
	return t.bands[i]
}

// AddLine accumulates one monotonic segment into every band it crosses.
// Horizontal segments contribute no winding and are skipped.
func (t *Tiler) AddLine(line strips.Line) {
	x0, y0 := line.X0, line.Y0
	x1, y1 := line.X1, line.Y1
	sign := float32(line.Winding)
	if y0 > y1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
		sign = -sign
	}
	if y0 == y1 {
		return
	}
	if y1 <= 0 || y0 >= float32(t.height) {
		return
	}

	b0 := int(floorf32(y0)) / strips.StripHeight
	if b0 < 0 {
		b0 = 0
	}
	b1 := (int(math.Ceil(float64(y1))) - 1) / strips.StripHeight
	if b1 >= len(t.bands) {
		b1 = len(t.bands) - 1
	}

	for bi := b0; bi <= b1; bi++ {
		top := float32(bi * strips.StripHeight)
		t.bands[bi].addLine(x0, y0-top, x1, y1-top, sign)
	}
}

// AddLines accumulates a batch of segments.
func (t *Tiler) AddLines(lines []strips.Line) {
	for _, line := range lines {
		t.AddLine(line)
	}
}

// float32 helpers, duplicated locally to keep the hot loop free of
// cross-package calls.

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
