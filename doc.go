// Package strips implements a sparse-strip vector rasterization and
// compositing engine.
//
// The pipeline converts flattened path geometry (monotonic line segments)
// into pixels through four stages:
//
//  1. Tiling: edges are partitioned into strip-height row bands with
//     per-column winding/coverage deltas (package raster).
//  2. Strip generation: band coverage is swept into ordered, non-overlapping
//     strip records plus a packed alpha buffer (package raster).
//  3. Paint encoding: solid, image, and gradient paints are serialized into
//     a compact texture-backed table (package paint).
//  4. Compositing: strip records, the paint table, and the alpha buffer are
//     resolved into final premultiplied pixels, either on the CPU (package
//     cpu) or on the GPU (package gpu).
//
// A strip is a horizontal quad of rendering work: a "dense" prefix covered
// by per-pixel alpha (antialiased edges) followed by a solid remainder.
// Fully covered or fully empty spans cost O(1) strip records regardless of
// width, which is the core density optimization.
//
// This root package holds the protocol shared between the CPU and GPU
// backends: the strip record and its packed instance layout, the bit-packed
// paint field, the alpha buffer packing, and the sampling math (extend
// modes, bilinear alignment, bicubic weights). Both backends consume these
// definitions so the bit contract cannot drift; the WGSL shader in package
// gpu mirrors them function by function.
//
// Inputs are assumed to be produced upstream: path flattening, font shaping,
// and scene construction are external collaborators, not part of this
// module.
package strips
