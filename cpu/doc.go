// Package cpu is the CPU compositor: it consumes strip records, the alpha
// buffer, and the paint table, and produces final premultiplied pixels.
//
// The math here is the parity contract with the GPU backend. Coverage
// lookup, the paint decision tree, the three resampling tiers, and extend
// remapping all call the same shared functions (or mirror the same WGSL),
// so both compositors produce identical output for the same frame.
//
// Blending runs on internal/wide batch types, one strip quad of four
// columns by four rows per step, which the compiler auto-vectorizes.
package cpu
