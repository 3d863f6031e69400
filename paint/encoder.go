package paint

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/strips"
)

// Table errors.
var (
	// ErrTableFull is returned when the table's entry capacity is
	// exhausted. Recoverable: the encoder evicts or degrades.
	ErrTableFull = errors.New("paint: paint table is full")

	// ErrUnknownPaint is returned for a table index no entry was published
	// under. Seeing it means an encoder bug: compositors never probe ids.
	ErrUnknownPaint = errors.New("paint: unknown paint table index")

	// ErrDegenerateTransform is returned when an image paint's transform
	// cannot be inverted for sampling.
	ErrDegenerateTransform = errors.New("paint: degenerate image transform")
)

// DefaultTableCapacity is the default number of table entries per frame.
const DefaultTableCapacity = 4096

// Entry is one published paint-table entry. Image holds the texel-encoded
// fields; Gradient is non-nil for gradient paints, giving the CPU
// compositor the stops for analytic evaluation.
type Entry struct {
	Image    EncodedImage
	Gradient *Gradient
}

// Table assigns frame-scoped ids to image and gradient paints and builds
// the RGBA32Uint texel words the GPU backend uploads. Entries are immutable
// once published: ids are never reused mid-frame, only Reset (at a frame
// boundary) reclaims them.
type Table struct {
	entries  []Entry
	words    []uint32
	capacity int
}

// NewTable creates a table holding up to capacity entries. Zero or negative
// capacity selects DefaultTableCapacity.
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultTableCapacity
	}
	return &Table{
		entries:  make([]Entry, 0, 64),
		words:    make([]uint32, 0, 64*EntryWords),
		capacity: capacity,
	}
}

// Reset clears the table at a frame boundary without deallocating.
func (t *Table) Reset() {
	t.entries = t.entries[:0]
	t.words = t.words[:0]
}

// Len returns the number of published entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Words returns the raw texel words of all entries, EntryWords per entry.
func (t *Table) Words() []uint32 {
	return t.words
}

// Entry returns the published entry at index.
func (t *Table) Entry(index uint32) (*Entry, error) {
	if int(index) >= len(t.entries) {
		return nil, fmt.Errorf("%w: %d of %d", ErrUnknownPaint, index, len(t.entries))
	}
	return &t.entries[index], nil
}

// publish appends an entry and returns its id.
func (t *Table) publish(e Entry) (uint32, error) {
	if len(t.entries) >= t.capacity {
		return 0, fmt.Errorf("%w: capacity %d", ErrTableFull, t.capacity)
	}
	id := uint32(len(t.entries)) //nolint:gosec // bounded by capacity
	t.entries = append(t.entries, e)
	t.words = e.Image.appendWords(t.words)
	return id, nil
}

// AddEncoded publishes an already-placed image entry and returns its paint.
func (t *Table) AddEncoded(img EncodedImage) (strips.Paint, error) {
	id, err := t.publish(Entry{Image: img})
	if err != nil {
		return 0, err
	}
	return strips.ImagePaint(id)
}

// AddImage uploads src into the atlas and publishes an image entry for it.
// transform maps scene coordinates to source-image coordinates; a degenerate
// transform is rejected here so sampling never divides by zero.
//
// When the atlas cannot take the image at full size it is downscaled to fit
// and, if quality was QualityHigh, sampling degrades to QualityLow: a
// blurrier paint instead of a failed frame.
func (t *Table) AddImage(
	atlas *Atlas,
	src image.Image,
	quality strips.ImageQuality,
	extendX, extendY strips.ExtendMode,
	transform strips.Affine,
) (strips.Paint, error) {
	if _, ok := transform.Invert(); !ok {
		return 0, ErrDegenerateTransform
	}

	bounds := src.Bounds()
	region, err := atlas.Add(src)
	if errors.Is(err, ErrAtlasFull) {
		region, err = atlas.AddFit(src)
		if err == nil {
			// Downscaled content: compose the scale into the transform
			// and drop to nearest sampling, the cheap tier for content
			// that already lost its detail.
			sx := float32(region.Width) / float32(bounds.Dx())
			sy := float32(region.Height) / float32(bounds.Dy())
			transform = strips.ScaleAffine(sx, sy).Multiply(transform)
			if quality == strips.QualityHigh {
				quality = strips.QualityLow
			}
		}
	}
	if err != nil {
		return 0, err
	}

	img := EncodedImage{
		Quality: quality,
		ExtendX: extendX,
		ExtendY: extendY,
		//nolint:gosec // atlas dimensions bounded by 16-bit texture limits
		Width: uint16(region.Width),
		//nolint:gosec // atlas dimensions bounded by 16-bit texture limits
		Height: uint16(region.Height),
		//nolint:gosec // atlas dimensions bounded by 16-bit texture limits
		OffsetX: uint16(region.X),
		//nolint:gosec // atlas dimensions bounded by 16-bit texture limits
		OffsetY:   uint16(region.Y),
		Transform: transform,
	}
	return t.AddEncoded(img)
}

// AddGradient samples the gradient into an atlas ramp row and publishes a
// gradient entry. The entry keeps the stops so the CPU compositor can
// evaluate linear gradients analytically instead of sampling the ramp.
func (t *Table) AddGradient(atlas *Atlas, g *Gradient) (strips.Paint, error) {
	if len(g.Stops) == 0 {
		return 0, ErrNoStops
	}

	ramp := g.Ramp(DefaultRampSize)
	region, err := atlas.AddRamp(ramp)
	if err != nil {
		return 0, err
	}

	img := EncodedImage{
		Quality: strips.QualityMedium,
		ExtendX: g.Extend,
		ExtendY: strips.ExtendPad,
		//nolint:gosec // ramp size bounded by DefaultRampSize
		Width:  uint16(region.Width),
		Height: 1,
		//nolint:gosec // atlas dimensions bounded by 16-bit texture limits
		OffsetX: uint16(region.X),
		//nolint:gosec // atlas dimensions bounded by 16-bit texture limits
		OffsetY:   uint16(region.Y),
		Transform: g.rampTransform(region.Width),
	}
	if g.Kind == GradientRadial {
		img.Radial = true
		img.Center = g.Start
		img.Radius = g.Radius
	}

	id, err := t.publish(Entry{Image: img, Gradient: g})
	if err != nil {
		return 0, err
	}
	return strips.GradientPaint(id)
}

// PackTexels returns the table as RGBA32Uint texels padded to whole texture
// rows of 1<<widthBits texels, the upload format of the encoded-paint
// texture. Entry i starts at texel i*EntryTexels.
func (t *Table) PackTexels(widthBits uint32) []uint32 {
	texWidth := 1 << widthBits
	texels := len(t.words) / 4
	rows := (texels + texWidth - 1) / texWidth
	if rows == 0 {
		rows = 1
	}
	out := make([]uint32, rows*texWidth*4)
	copy(out, t.words)
	return out
}
