// Package paint encodes paints into the compact texture-backed table that
// both compositors consume.
//
// Solid paints never enter the table: their color travels directly in the
// strip payload. Image and gradient paints get a frame-scoped table id and a
// three-texel entry holding sampling flags, atlas placement, and the affine
// transform from scene coordinates to atlas sample coordinates. Sampled
// pixel content (images, gradient ramps) lives in a shared shelf-packed
// Atlas.
//
// All contract validation happens here, at encode time. Compositors assume
// every table id, atlas offset, and slot index they see is valid.
package paint
