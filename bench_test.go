package strips

import "testing"

// BenchmarkPackTexels benchmarks coverage packing for a frame's worth of
// dense columns.
func BenchmarkPackTexels(b *testing.B) {
	buf := NewAlphaBuffer(4096 * StripHeight)
	buf.Append(make([]uint8, 4096*StripHeight))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = buf.PackTexels(DefaultAlphaTextureWidthBits)
	}
}

// BenchmarkPackInstance benchmarks strip-to-instance word packing.
func BenchmarkPackInstance(b *testing.B) {
	s := Strip{X: 10, Y: 4, Width: 200, DenseWidth: 16, ColIdx: 42, Paint: SolidPaint(), Payload: 0xFF0000FF}
	var dst [InstanceWords]uint32

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.PackInstance(dst[:])
	}
}
