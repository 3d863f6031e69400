// Package raster turns flattened path geometry into sparse strips.
//
// The pipeline has two stages. The Tiler accumulates per-column signed
// coverage (trapezoid areas plus winding deltas) into fixed-height horizontal
// bands, one band per strip row. The Generator then sweeps each band left to
// right, applies the fill rule, quantizes coverage to 8 bits, and emits
// ordered non-overlapping strip records plus alpha-buffer columns for the
// antialiased runs. Fully covered and fully empty spans never produce
// per-pixel alpha, only constant strip extents.
//
// Bands are independent, so generation parallelizes as a fork-join over the
// band range with per-band private output merged in ascending row order.
package raster
