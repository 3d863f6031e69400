package paint

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/strips"
)

// Atlas errors.
var (
	// ErrAtlasFull is returned when the atlas cannot fit the requested
	// region. Recoverable: callers downscale or degrade quality.
	ErrAtlasFull = errors.New("paint: atlas is full")

	// ErrEmptyImage is returned for zero-sized source images.
	ErrEmptyImage = errors.New("paint: empty source image")
)

// Default atlas settings.
const (
	// DefaultAtlasSize is the default atlas dimension in pixels.
	DefaultAtlasSize = 2048

	// MinAtlasSize is the minimum atlas dimension in pixels.
	MinAtlasSize = 256

	// shelfPadding is the spacing between packed regions, keeping bilinear
	// and bicubic taps of one image out of its neighbors.
	shelfPadding = 1
)

// Region is a rectangular placement inside the atlas.
type Region struct {
	X, Y          int
	Width, Height int
}

// IsValid returns true if the region has a positive extent.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// shelf is one horizontal row of the shelf-packing allocator.
type shelf struct {
	y      int // top Y coordinate
	height int // height of the tallest item so far
	nextX  int // next available X position
}

// rectAllocator packs rectangles into a fixed area using horizontal
// shelves: each rectangle goes on the first shelf with room, or a new shelf
// opens below. The owning Atlas serializes access.
type rectAllocator struct {
	width, height int
	padding       int
	shelves       []shelf
}

func newRectAllocator(width, height, padding int) *rectAllocator {
	return &rectAllocator{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

func (a *rectAllocator) allocate(width, height int) Region {
	if width <= 0 || height <= 0 {
		return Region{}
	}
	paddedW := width + a.padding
	paddedH := height + a.padding
	if paddedW > a.width || paddedH > a.height {
		return Region{}
	}

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+paddedW > a.width {
			continue
		}
		// A shelf cannot grow taller once items sit on it.
		if paddedH > s.height && s.nextX > 0 {
			continue
		}
		region := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
		s.nextX += paddedW
		if paddedH > s.height {
			s.height = paddedH
		}
		return region
	}

	// Open a new shelf below the last one.
	newY := 0
	if n := len(a.shelves); n > 0 {
		newY = a.shelves[n-1].y + a.shelves[n-1].height
	}
	if newY+paddedH > a.height {
		return Region{}
	}
	a.shelves = append(a.shelves, shelf{y: newY, height: paddedH, nextX: paddedW})
	return Region{X: 0, Y: newY, Width: width, Height: height}
}

func (a *rectAllocator) reset() {
	a.shelves = a.shelves[:0]
}

// Atlas is the shared pixel store for sampled paint content: image paints
// and gradient ramps. Pixels are premultiplied RGBA float32 in [0, 1], the
// format the CPU compositor samples directly and the GPU backend uploads as
// an RGBA float texture.
//
// Atlas is safe for concurrent use.
type Atlas struct {
	mu        sync.Mutex
	width     int
	height    int
	pixels    []float32 // 4 floats per pixel, row-major
	allocator *rectAllocator
}

// NewAtlas creates an atlas of the given dimensions, clamped to MinAtlasSize.
func NewAtlas(width, height int) *Atlas {
	if width < MinAtlasSize {
		width = MinAtlasSize
	}
	if height < MinAtlasSize {
		height = MinAtlasSize
	}
	return &Atlas{
		width:     width,
		height:    height,
		pixels:    make([]float32, width*height*4),
		allocator: newRectAllocator(width, height, shelfPadding),
	}
}

// Width returns the atlas width in pixels.
func (a *Atlas) Width() int { return a.width }

// Height returns the atlas height in pixels.
func (a *Atlas) Height() int { return a.height }

// Pixels returns the raw premultiplied RGBA float store, row-major.
func (a *Atlas) Pixels() []float32 {
	return a.pixels
}

// Reset clears all allocations. Pixel data is left in place; regions are
// overwritten by the next frame's uploads.
func (a *Atlas) Reset() {
	a.mu.Lock()
	a.allocator.reset()
	a.mu.Unlock()
}

// Sample returns the premultiplied RGBA value of one atlas texel. Callers
// pass coordinates already remapped by extend-mode math; the clamp here only
// guards the last fractional step at the atlas boundary.
func (a *Atlas) Sample(x, y int) [4]float32 {
	if x < 0 {
		x = 0
	} else if x >= a.width {
		x = a.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= a.height {
		y = a.height - 1
	}
	i := (y*a.width + x) * 4
	return [4]float32{a.pixels[i], a.pixels[i+1], a.pixels[i+2], a.pixels[i+3]}
}

// Add uploads a source image into the atlas and returns its placement.
// Returns ErrAtlasFull when no shelf can take it.
func (a *Atlas) Add(src image.Image) (Region, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Region{}, ErrEmptyImage
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	region := a.allocator.allocate(w, h)
	if !region.IsValid() {
		return Region{}, fmt.Errorf("%w: %dx%d does not fit", ErrAtlasFull, w, h)
	}
	a.upload(region, src)
	return region, nil
}

// AddFit uploads a source image, downscaling it with bilinear filtering
// until it fits when the atlas is too full for the original size. This is
// the degrade path for atlas exhaustion: lower fidelity instead of failure.
// Only a source too large at 1x1 still returns ErrAtlasFull.
func (a *Atlas) AddFit(src image.Image) (Region, error) {
	region, err := a.Add(src)
	if err == nil || !errors.Is(err, ErrAtlasFull) {
		return region, err
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	for w > 1 || h > 1 {
		w = (w + 1) / 2
		h = (h + 1) / 2

		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(scaled, scaled.Bounds(), src, bounds, draw.Src, nil)

		region, err = a.Add(scaled)
		if err == nil {
			strips.Logger().Debug("atlas image downscaled to fit",
				"original", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
				"fitted", fmt.Sprintf("%dx%d", w, h))
			return region, nil
		}
		if !errors.Is(err, ErrAtlasFull) {
			return Region{}, err
		}
	}
	return Region{}, fmt.Errorf("%w: source cannot be downscaled to fit", ErrAtlasFull)
}

// upload converts source pixels to premultiplied float and writes them into
// the region. Caller holds the lock.
func (a *Atlas) upload(region Region, src image.Image) {
	bounds := src.Bounds()
	for y := 0; y < region.Height; y++ {
		for x := 0; x < region.Width; x++ {
			// RGBA() returns premultiplied 16-bit channels.
			r, g, b, alpha := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := ((region.Y+y)*a.width + region.X + x) * 4
			a.pixels[i] = float32(r) / 65535.0
			a.pixels[i+1] = float32(g) / 65535.0
			a.pixels[i+2] = float32(b) / 65535.0
			a.pixels[i+3] = float32(alpha) / 65535.0
		}
	}
}

// AddRamp writes a single-row pixel ramp (premultiplied RGBA float) into the
// atlas and returns its placement. Gradient encoding uses this for sampled
// ramps.
func (a *Atlas) AddRamp(ramp [][4]float32) (Region, error) {
	if len(ramp) == 0 {
		return Region{}, ErrEmptyImage
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	region := a.allocator.allocate(len(ramp), 1)
	if !region.IsValid() {
		return Region{}, fmt.Errorf("%w: ramp of %d texels does not fit", ErrAtlasFull, len(ramp))
	}
	base := (region.Y*a.width + region.X) * 4
	for x, c := range ramp {
		i := base + x*4
		a.pixels[i] = c[0]
		a.pixels[i+1] = c[1]
		a.pixels[i+2] = c[2]
		a.pixels[i+3] = c[3]
	}
	return region, nil
}
