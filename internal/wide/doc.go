// Package wide provides SIMD-friendly wide types for batch pixel processing.
//
// This package implements wide types (U16x16, F32x8) that are designed to
// enable Go compiler auto-vectorization. By using fixed-size arrays and
// simple loops, these types allow the compiler to generate SIMD instructions
// on supported architectures (SSE, AVX, NEON).
//
// # Wide Types
//
// U16x16: 16 uint16 values for integer operations (alpha blending, color
// channels), one full strip quad of four columns by four rows at a time.
// F32x8: 8 float32 values for floating-point operations (winding to
// coverage quantization in the strip generator, two columns per vector).
//
// # Design Philosophy
//
//   - Use simple loops over fixed-size arrays for auto-vectorization
//   - Avoid unsafe and assembly - rely on compiler optimization
//   - Keep functions small and inlineable
package wide
