package raster

import (
	"testing"

	"github.com/gogpu/strips"
)

func benchLines() []strips.Line {
	// A fan of near-vertical edges so every band carries fractional
	// coverage and the generator emits dense columns.
	lines := make([]strips.Line, 0, 128)
	for i := 0; i < 64; i++ {
		x := float32(i) * 4
		lines = append(lines,
			strips.Line{X0: x + 0.3, Y0: 0, X1: x + 1.7, Y1: 64, Winding: 1},
			strips.Line{X0: x + 2.3, Y0: 0, X1: x + 3.7, Y1: 64, Winding: -1},
		)
	}
	return lines
}

// BenchmarkGenerateSerial benchmarks single-threaded strip generation.
func BenchmarkGenerateSerial(b *testing.B) {
	lines := benchLines()
	gen := NewGenerator(strips.FillNonZero)
	paint, payload := strips.SolidPaint(), strips.PackRGBA(strips.RGBA{R: 255, A: 255})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tiler := NewTiler(256, 64)
		tiler.AddLines(lines)
		if _, err := GenerateFrame(nil, tiler, gen, paint, payload, nil, 0); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkGenerateParallel benchmarks banded generation on a worker pool.
func BenchmarkGenerateParallel(b *testing.B) {
	lines := benchLines()
	gen := NewGenerator(strips.FillNonZero)
	paint, payload := strips.SolidPaint(), strips.PackRGBA(strips.RGBA{R: 255, A: 255})
	pool := NewWorkerPool(4)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tiler := NewTiler(256, 64)
		tiler.AddLines(lines)
		if _, err := GenerateFrame(pool, tiler, gen, paint, payload, nil, 0); err != nil {
			b.Fatal(err)
		}
	}
}
