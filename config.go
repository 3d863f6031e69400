package strips

// DefaultAlphaTextureWidthBits is log2 of the default alpha texture row
// width in texels (256 texels = 1024 columns per row).
const DefaultAlphaTextureWidthBits = 8

// RenderConfig is the uniform configuration shared by both compositors.
// The GPU backend uploads it verbatim as the shader uniform block;
// the CPU backend reads the same fields, so addressing math agrees.
//
// AlphaTextureWidthBits is the log2 of the alpha texture's row width in
// texels. The shader derives texel coordinates with shifts and masks
// because some GPU targets lack a hardware bit-scan op.
type RenderConfig struct {
	Width                 uint32
	Height                uint32
	StripHeight           uint32
	AlphaTextureWidthBits uint32
}

// DefaultRenderConfig returns the canonical configuration for a viewport.
func DefaultRenderConfig(width, height uint32) RenderConfig {
	return RenderConfig{
		Width:                 width,
		Height:                height,
		StripHeight:           StripHeight,
		AlphaTextureWidthBits: DefaultAlphaTextureWidthBits,
	}
}

// AlphaTexelsPerRow returns the alpha texture row width in texels.
func (c RenderConfig) AlphaTexelsPerRow() uint32 {
	return 1 << c.AlphaTextureWidthBits
}

// Pack returns the uniform block as 32-bit words in declaration order.
func (c RenderConfig) Pack() [4]uint32 {
	return [4]uint32{c.Width, c.Height, c.StripHeight, c.AlphaTextureWidthBits}
}
