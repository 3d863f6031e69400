package strips

// AlphaBuffer is the packed per-pixel coverage store shared by all strips
// of a frame. Storage is column-major: each column holds StripHeight
// coverage bytes (one per strip row), so a strip's dense prefix of n columns
// occupies n*StripHeight consecutive bytes starting at ColIdx*StripHeight.
//
// The buffer is a reusable arena: Reset keeps capacity, and the backing
// slice only grows across frames, never shrinks below current need.
type AlphaBuffer struct {
	data []uint8
}

// NewAlphaBuffer creates an alpha buffer with capacity for the given number
// of columns.
func NewAlphaBuffer(columns int) *AlphaBuffer {
	return &AlphaBuffer{
		data: make([]uint8, 0, columns*StripHeight),
	}
}

// Reset clears the buffer for the next frame without deallocating.
func (b *AlphaBuffer) Reset() {
	b.data = b.data[:0]
}

// Columns returns the number of columns currently stored.
func (b *AlphaBuffer) Columns() uint32 {
	return uint32(len(b.data) / StripHeight)
}

// Len returns the number of coverage bytes stored.
func (b *AlphaBuffer) Len() int {
	return len(b.data)
}

// PushColumn appends one column of StripHeight coverage bytes and returns
// its column index.
func (b *AlphaBuffer) PushColumn(col [StripHeight]uint8) uint32 {
	idx := b.Columns()
	b.data = append(b.data, col[:]...)
	return idx
}

// Append appends raw column-major coverage bytes. The length must be a
// multiple of StripHeight; the return value is the column index of the
// first appended column.
func (b *AlphaBuffer) Append(cols []uint8) uint32 {
	idx := b.Columns()
	b.data = append(b.data, cols...)
	return idx
}

// At returns the coverage byte for the given column and row.
func (b *AlphaBuffer) At(column uint32, row int) uint8 {
	return b.data[int(column)*StripHeight+row]
}

// Bytes returns the raw column-major coverage bytes.
func (b *AlphaBuffer) Bytes() []uint8 {
	return b.data
}

// PackTexels packs the buffer into RGBA32Uint texels for GPU upload.
//
// One texel carries four columns: channel c holds column (texel*4 + c),
// with the column's StripHeight rows packed as bytes inside the u32 (row r
// at bit offset r*8). widthBits is log2 of the texture row width in texels;
// the returned slice is padded to whole texture rows so the upload height
// is len/4 >> widthBits. The fragment shader reverses this addressing with
// shifts and masks only, since some GPU targets lack a hardware bit-scan.
func (b *AlphaBuffer) PackTexels(widthBits uint32) []uint32 {
	texWidth := 1 << widthBits
	columns := int(b.Columns())
	texels := (columns + 3) / 4
	rows := (texels + texWidth - 1) / texWidth
	if rows == 0 {
		rows = 1
	}
	out := make([]uint32, rows*texWidth*4)

	for col := 0; col < columns; col++ {
		var word uint32
		for row := 0; row < StripHeight; row++ {
			word |= uint32(b.data[col*StripHeight+row]) << (row * 8)
		}
		// texel index col/4, channel col%4
		out[(col/4)*4+col%4] = word
	}
	return out
}

// AlphaAt resolves a fragment coverage value the way both compositors do:
// column is the absolute alpha column (ColIdx + c) and row the strip-local
// pixel row. Returns coverage scaled to [0, 1].
func (b *AlphaBuffer) AlphaAt(column uint32, row int) float32 {
	return float32(b.At(column, row)) / 255.0
}
