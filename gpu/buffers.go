package gpu

import (
	"github.com/gogpu/strips"
)

// instanceStride is the byte stride of one packed strip instance:
// InstanceWords little-endian 32-bit words.
const instanceStride = strips.InstanceWords * 4

// uniformSize is the byte size of the shader Config uniform block:
// width, height, strip_height, alpha_tex_width_bits.
const uniformSize = 16

// texelBytes is the byte size of one RGBA32Uint texel.
const texelBytes = 16

func writeUint32(buf []byte, offset int, val uint32) {
	buf[offset] = byte(val)
	buf[offset+1] = byte(val >> 8)
	buf[offset+2] = byte(val >> 16)
	buf[offset+3] = byte(val >> 24)
}

// instancesToBytes serializes strips into per-instance vertex data,
// instanceStride bytes each, in the layout the vertex stage unpacks.
func instancesToBytes(list []strips.Strip) []byte {
	buf := make([]byte, len(list)*instanceStride)
	var words [strips.InstanceWords]uint32
	for i := range list {
		list[i].PackInstance(words[:])
		off := i * instanceStride
		for w, v := range words {
			writeUint32(buf, off+w*4, v)
		}
	}
	return buf
}

// wordsToBytes serializes packed texel words for a WriteTexture upload.
func wordsToBytes(words []uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		writeUint32(buf, i*4, w)
	}
	return buf
}

// uniformBytes serializes the render configuration uniform block.
func uniformBytes(config strips.RenderConfig) []byte {
	packed := config.Pack()
	buf := make([]byte, uniformSize)
	for i, w := range packed {
		writeUint32(buf, i*4, w)
	}
	return buf
}

// floatsToRGBA8 quantizes premultiplied float pixels to RGBA8 bytes for
// texture upload. The render target is 8-bit, so atlas and clip content
// lose nothing visible by matching it.
func floatsToRGBA8(pixels []float32) []byte {
	buf := make([]byte, len(pixels))
	for i, v := range pixels {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		buf[i] = uint8(v*255.0 + 0.5)
	}
	return buf
}
