package cpu

import (
	"github.com/gogpu/strips"
	"github.com/gogpu/strips/internal/wide"
	"github.com/gogpu/strips/paint"
)

// Compositor renders strip lists into premultiplied RGBA pixel buffers.
//
// Strips are walked in submission order, which the encoder guarantees is
// back-to-front; the compositor never reorders. Every index it touches
// (alpha columns, paint table ids, slot indices) was validated at encode
// time, so compositing itself cannot fail.
type Compositor struct {
	config  strips.RenderConfig
	table   *paint.Table
	slots   *SlotStore
	sampler sampler
}

// NewCompositor creates a compositor over the shared paint table, atlas,
// and clip-slot store.
func NewCompositor(config strips.RenderConfig, table *paint.Table, atlas *paint.Atlas, slots *SlotStore) *Compositor {
	return &Compositor{
		config:  config,
		table:   table,
		slots:   slots,
		sampler: sampler{atlas: atlas},
	}
}

// Slots returns the clip-slot store.
func (c *Compositor) Slots() *SlotStore {
	return c.slots
}

// Composite blends every strip of the frame into dst, a premultiplied RGBA
// buffer with the given stride in bytes per row.
func (c *Compositor) Composite(frame *strips.Frame, dst []uint8, stride int) {
	for i := range frame.Strips {
		c.renderStrip(&frame.Strips[i], frame.Alphas, dst, stride)
	}
}

// CompositeSlot blends a clip layer's strips into a slot instead of the
// framebuffer. Parent strips sourcing from the slot read the result back
// through the slot-paint path.
func (c *Compositor) CompositeSlot(frame *strips.Frame, slot uint32) {
	for i := range frame.Strips {
		c.renderStripToSlot(&frame.Strips[i], frame.Alphas, slot)
	}
}

// stripPaint is the per-strip resolution state hoisted out of the fragment
// loop: the decision tree branches once per strip, not once per pixel.
type stripPaint struct {
	slot      bool
	slotIndex uint32
	opacity   float32
	kind      strips.PaintKind
	solid     [4]float32
	entry     *paint.Entry

	// origin is the scene-space sample position of the strip's first
	// fragment, from the payload of image and gradient paints.
	originX, originY float32
}

func (c *Compositor) resolvePaint(s *strips.Strip) (stripPaint, bool) {
	var sp stripPaint
	if s.Paint.IsSlot() {
		sp.slot = true
		sp.slotIndex = s.Payload
		sp.opacity = float32(s.Paint.Opacity()) / 255.0
		return sp, true
	}
	sp.kind = s.Paint.Kind()
	switch sp.kind {
	case strips.PaintSolid:
		col := strips.UnpackRGBA(s.Payload)
		sp.solid = [4]float32{
			float32(col.R) / 255.0,
			float32(col.G) / 255.0,
			float32(col.B) / 255.0,
			float32(col.A) / 255.0,
		}
	case strips.PaintImage, strips.PaintGradient:
		entry, err := c.table.Entry(s.Paint.TableIndex())
		if err != nil {
			// Unreachable with a correct encoder; dropping the strip
			// beats corrupting the framebuffer.
			strips.Logger().Error("strip references unknown paint",
				"index", s.Paint.TableIndex(), "err", err)
			return sp, false
		}
		sp.entry = entry
		ox, oy := strips.UnpackImageOrigin(s.Payload)
		sp.originX = float32(ox)
		sp.originY = float32(oy)
	}
	return sp, true
}

// fragment resolves the premultiplied source color for one pixel. px, py
// are framebuffer coordinates; lx, ly are strip-local offsets.
func (c *Compositor) fragment(sp *stripPaint, px, py, lx, ly int) [4]float32 {
	if sp.slot {
		col := c.slots.Sample(sp.slotIndex, px, py)
		return [4]float32{
			col[0] * sp.opacity,
			col[1] * sp.opacity,
			col[2] * sp.opacity,
			col[3] * sp.opacity,
		}
	}
	switch sp.kind {
	case strips.PaintImage:
		// Sample at the fragment center.
		sx := sp.originX + float32(lx) + 0.5
		sy := sp.originY + float32(ly) + 0.5
		return c.sampler.sample(&sp.entry.Image, sx, sy)
	case strips.PaintGradient:
		sx := sp.originX + float32(lx) + 0.5
		sy := sp.originY + float32(ly) + 0.5
		return c.sampler.sampleGradient(sp.entry, sx, sy)
	default:
		return sp.solid
	}
}

// renderStrip blends one strip into the framebuffer, one quad of four
// columns by four rows per step so the wide ops vectorize.
func (c *Compositor) renderStrip(s *strips.Strip, alphas *strips.AlphaBuffer, dst []uint8, stride int) {
	sp, ok := c.resolvePaint(s)
	if !ok {
		return
	}

	width := int(s.Width)
	fbWidth := int(c.config.Width)
	fbHeight := int(c.config.Height)

	for q := 0; q < width; q += 4 {
		var srcR, srcG, srcB, srcA, cov wide.U16x16
		var dstR, dstG, dstB, dstA wide.U16x16
		var idx [16]int

		for k := 0; k < 4; k++ {
			col := q + k
			px := int(s.X) + col
			for r := 0; r < strips.StripHeight; r++ {
				e := k*strips.StripHeight + r
				idx[e] = -1
				if col >= width || px >= fbWidth {
					continue
				}
				py := int(s.Y) + r
				if py >= fbHeight {
					continue
				}
				i := py*stride + px*4
				idx[e] = i

				if col < int(s.DenseWidth) {
					cov[e] = uint16(alphas.At(s.ColIdx+uint32(col), r)) //nolint:gosec // col < DenseWidth
				} else {
					cov[e] = 255
				}

				src := c.fragment(&sp, px, py, col, r)
				srcR[e] = quantize(src[0])
				srcG[e] = quantize(src[1])
				srcB[e] = quantize(src[2])
				srcA[e] = quantize(src[3])

				dstR[e] = uint16(dst[i])
				dstG[e] = uint16(dst[i+1])
				dstB[e] = uint16(dst[i+2])
				dstA[e] = uint16(dst[i+3])
			}
		}

		// Source-over with coverage folded into the source:
		// out = src*cov/255 + dst*(255 - a_src*cov/255)/255
		scaledR := srcR.MulDiv255(cov)
		scaledG := srcG.MulDiv255(cov)
		scaledB := srcB.MulDiv255(cov)
		scaledA := srcA.MulDiv255(cov)
		inv := scaledA.Inv()

		outR := scaledR.Add(dstR.MulDiv255(inv))
		outG := scaledG.Add(dstG.MulDiv255(inv))
		outB := scaledB.Add(dstB.MulDiv255(inv))
		outA := scaledA.Add(dstA.MulDiv255(inv))

		for e, i := range idx {
			if i < 0 {
				continue
			}
			dst[i] = uint8(outR[e])   //nolint:gosec // bounded 0-255
			dst[i+1] = uint8(outG[e]) //nolint:gosec // bounded 0-255
			dst[i+2] = uint8(outB[e]) //nolint:gosec // bounded 0-255
			dst[i+3] = uint8(outA[e]) //nolint:gosec // bounded 0-255
		}
	}
}

// renderStripToSlot is the scalar float path for clip-layer content; the
// slot store keeps float pixels so nested layers lose no precision.
func (c *Compositor) renderStripToSlot(s *strips.Strip, alphas *strips.AlphaBuffer, slot uint32) {
	sp, ok := c.resolvePaint(s)
	if !ok {
		return
	}

	for col := 0; col < int(s.Width); col++ {
		px := int(s.X) + col
		for r := 0; r < strips.StripHeight; r++ {
			py := int(s.Y) + r

			var coverage float32 = 1
			if col < int(s.DenseWidth) {
				coverage = alphas.AlphaAt(s.ColIdx+uint32(col), r) //nolint:gosec // col < DenseWidth
			}

			src := c.fragment(&sp, px, py, col, r)
			d := c.slots.Sample(slot, px, py)
			a := src[3] * coverage
			c.slots.Write(slot, px, py, [4]float32{
				src[0]*coverage + d[0]*(1-a),
				src[1]*coverage + d[1]*(1-a),
				src[2]*coverage + d[2]*(1-a),
				a + d[3]*(1-a),
			})
		}
	}
}

// quantize converts a [0, 1] channel to 8 bits by rounding.
func quantize(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint16(v*255.0 + 0.5)
}
