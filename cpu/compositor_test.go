package cpu

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/strips"
	"github.com/gogpu/strips/paint"
)

func newTestCompositor(w, h uint32) (*Compositor, *paint.Table, *paint.Atlas) {
	atlas := paint.NewAtlas(256, 256)
	table := paint.NewTable(0)
	return NewCompositor(strips.DefaultRenderConfig(w, h), table, atlas, NewSlotStore(8)), table, atlas
}

func pixelAt(dst []uint8, stride, x, y int) [4]uint8 {
	i := y*stride + x*4
	return [4]uint8{dst[i], dst[i+1], dst[i+2], dst[i+3]}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestCompositeSolidRect(t *testing.T) {
	c, _, _ := newTestCompositor(16, 8)
	red := strips.PackRGBA(strips.RGBA{R: 255, A: 255})
	frame := &strips.Frame{
		Strips: []strips.Strip{
			{X: 2, Y: 0, Width: 10, Paint: strips.SolidPaint(), Payload: red},
			{X: 2, Y: 4, Width: 10, Paint: strips.SolidPaint(), Payload: red},
		},
		Alphas: &strips.AlphaBuffer{},
	}

	dst := make([]uint8, 16*8*4)
	c.Composite(frame, dst, 16*4)

	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			var want [4]uint8
			if x >= 2 && x < 12 {
				want = [4]uint8{255, 0, 0, 255}
			}
			if got := pixelAt(dst, 16*4, x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestCompositeOverlappingPathsDrawOrder(t *testing.T) {
	// Strips from two paths overlap in [4, 8); the later strip wins.
	c, _, _ := newTestCompositor(16, 4)
	red := strips.PackRGBA(strips.RGBA{R: 255, A: 255})
	green := strips.PackRGBA(strips.RGBA{G: 255, A: 255})
	frame := &strips.Frame{
		Strips: []strips.Strip{
			{X: 0, Y: 0, Width: 8, Paint: strips.SolidPaint(), Payload: red},
			{X: 4, Y: 0, Width: 8, Paint: strips.SolidPaint(), Payload: green},
		},
		Alphas: &strips.AlphaBuffer{},
	}

	dst := make([]uint8, 16*4*4)
	c.Composite(frame, dst, 16*4)

	for x := 0; x < 16; x++ {
		var want [4]uint8
		switch {
		case x < 4:
			want = [4]uint8{255, 0, 0, 255}
		case x < 12:
			want = [4]uint8{0, 255, 0, 255}
		}
		if got := pixelAt(dst, 16*4, x, 0); got != want {
			t.Errorf("pixel (%d,0) = %v, want %v", x, got, want)
		}
	}
}

func TestCompositeHalfCoverageOverBlue(t *testing.T) {
	c, _, _ := newTestCompositor(8, 4)

	alphas := &strips.AlphaBuffer{}
	col := alphas.PushColumn([4]uint8{128, 128, 128, 128})
	frame := &strips.Frame{
		Strips: []strips.Strip{{
			X: 3, Width: 1, DenseWidth: 1, ColIdx: col,
			Paint:   strips.SolidPaint(),
			Payload: strips.PackRGBA(strips.RGBA{R: 255, A: 255}),
		}},
		Alphas: alphas,
	}

	dst := make([]uint8, 8*4*4)
	for i := 0; i < len(dst); i += 4 {
		dst[i+2] = 255
		dst[i+3] = 255
	}
	c.Composite(frame, dst, 8*4)

	for r := 0; r < strips.StripHeight; r++ {
		got := pixelAt(dst, 8*4, 3, r)
		want := [4]uint8{128, 0, 127, 255}
		if got != want {
			t.Errorf("row %d = %v, want %v", r, got, want)
		}
	}
	if got := pixelAt(dst, 8*4, 4, 0); got != [4]uint8{0, 0, 255, 255} {
		t.Errorf("untouched pixel = %v, want blue", got)
	}
}

func TestCompositeClampsToViewport(t *testing.T) {
	c, _, _ := newTestCompositor(8, 6)
	white := strips.PackRGBA(strips.RGBA{R: 255, G: 255, B: 255, A: 255})
	frame := &strips.Frame{
		Strips: []strips.Strip{
			{X: 6, Y: 4, Width: 4, Paint: strips.SolidPaint(), Payload: white},
		},
		Alphas: &strips.AlphaBuffer{},
	}

	dst := make([]uint8, 8*6*4)
	c.Composite(frame, dst, 8*4)

	for _, p := range [][2]int{{6, 4}, {7, 4}, {6, 5}, {7, 5}} {
		if got := pixelAt(dst, 8*4, p[0], p[1]); got != [4]uint8{255, 255, 255, 255} {
			t.Errorf("pixel %v = %v, want white", p, got)
		}
	}
	if got := pixelAt(dst, 8*4, 5, 4); got != [4]uint8{} {
		t.Errorf("pixel left of strip = %v, want zero", got)
	}
}

func TestCompositeImagePadSamplesEdgeTexel(t *testing.T) {
	c, table, atlas := newTestCompositor(8, 4)

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				src.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				src.Set(x, y, color.NRGBA{G: 255, A: 255})
			}
		}
	}

	tests := []struct {
		name  string
		shift float32
		want  [4]uint8
	}{
		{"left of image", -10, [4]uint8{255, 0, 0, 255}},
		{"right of image", 10, [4]uint8{0, 255, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := strips.IdentityAffine()
			tf.C = tt.shift
			p, err := table.AddImage(atlas, src, strips.QualityLow,
				strips.ExtendPad, strips.ExtendPad, tf)
			if err != nil {
				t.Fatalf("AddImage: %v", err)
			}

			frame := &strips.Frame{
				Strips: []strips.Strip{
					{Width: 4, Paint: p, Payload: strips.PackImageOrigin(0, 0)},
				},
				Alphas: &strips.AlphaBuffer{},
			}
			dst := make([]uint8, 8*4*4)
			c.Composite(frame, dst, 8*4)

			for x := 0; x < 4; x++ {
				if got := pixelAt(dst, 8*4, x, 0); got != tt.want {
					t.Errorf("pixel (%d,0) = %v, want %v", x, got, tt.want)
				}
			}
		})
	}
}

func TestCompositeSlotOpacityStacks(t *testing.T) {
	c, _, _ := newTestCompositor(8, 4)
	slot, err := c.Slots().Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for y := 0; y < strips.StripHeight; y++ {
		for x := 0; x < 4; x++ {
			c.Slots().Write(slot, x, y, [4]float32{1, 1, 1, 1})
		}
	}

	frame := &strips.Frame{
		Strips: []strips.Strip{
			{Width: 4, Paint: strips.SlotPaint(128), Payload: slot},
			{Width: 4, Paint: strips.SlotPaint(64), Payload: slot},
		},
		Alphas: &strips.AlphaBuffer{},
	}
	dst := make([]uint8, 8*4*4)
	c.Composite(frame, dst, 8*4)

	// 1 - (1 - 128/255)(1 - 64/255) = 0.6270, which rounds to 160.
	got := pixelAt(dst, 8*4, 0, 0)
	for k := 0; k < 4; k++ {
		if d := absInt(int(got[k]) - 160); d > 1 {
			t.Errorf("channel %d = %d, want 160 within 1", k, got[k])
		}
	}
}

func TestCompositeSlotRoundTrip(t *testing.T) {
	c, _, _ := newTestCompositor(8, 4)
	slot, err := c.Slots().Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	layer := &strips.Frame{
		Strips: []strips.Strip{{
			Width:   4,
			Paint:   strips.SolidPaint(),
			Payload: strips.PackRGBA(strips.RGBA{R: 255, A: 255}),
		}},
		Alphas: &strips.AlphaBuffer{},
	}
	c.CompositeSlot(layer, slot)

	frame := &strips.Frame{
		Strips: []strips.Strip{
			{Width: 4, Paint: strips.SlotPaint(255), Payload: slot},
		},
		Alphas: &strips.AlphaBuffer{},
	}
	dst := make([]uint8, 8*4*4)
	c.Composite(frame, dst, 8*4)

	for x := 0; x < 4; x++ {
		if got := pixelAt(dst, 8*4, x, 0); got != [4]uint8{255, 0, 0, 255} {
			t.Errorf("pixel (%d,0) = %v, want red", x, got)
		}
	}
}

// refBlend is the scalar float reference for source-over with coverage.
func refBlend(src strips.RGBA, cov uint8, dst [4]uint8) [4]float32 {
	c := float32(cov) / 255
	s := [4]float32{
		float32(src.R) / 255,
		float32(src.G) / 255,
		float32(src.B) / 255,
		float32(src.A) / 255,
	}
	inv := 1 - s[3]*c
	var out [4]float32
	for k := 0; k < 4; k++ {
		out[k] = s[k]*c + float32(dst[k])/255*inv
	}
	return out
}

func TestCompositeMatchesScalarReference(t *testing.T) {
	c, _, _ := newTestCompositor(16, 4)

	src := strips.RGBA{R: 200, G: 100, B: 50, A: 230}
	covs := []uint8{0, 13, 37, 90, 128, 201, 254, 255}
	alphas := &strips.AlphaBuffer{}
	for _, cov := range covs {
		alphas.PushColumn([4]uint8{cov, cov, cov, cov})
	}

	frame := &strips.Frame{
		Strips: []strips.Strip{{
			X: 1, Width: 10, DenseWidth: uint16(len(covs)), ColIdx: 0,
			Paint:   strips.SolidPaint(),
			Payload: strips.PackRGBA(src),
		}},
		Alphas: alphas,
	}

	bg := [4]uint8{30, 20, 10, 255}
	dst := make([]uint8, 16*4*4)
	for i := 0; i < len(dst); i += 4 {
		copy(dst[i:i+4], bg[:])
	}
	c.Composite(frame, dst, 16*4)

	for col := 0; col < 10; col++ {
		cov := uint8(255)
		if col < len(covs) {
			cov = covs[col]
		}
		ref := refBlend(src, cov, bg)
		got := pixelAt(dst, 16*4, 1+col, 0)
		for k := 0; k < 4; k++ {
			if d := absInt(int(got[k]) - int(ref[k]*255+0.5)); d > 2 {
				t.Errorf("col %d channel %d = %d, want %.1f within 2",
					col, k, got[k], ref[k]*255)
			}
		}
	}
}
