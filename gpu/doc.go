// Package gpu implements the GPU strip compositor. Each strip is drawn as
// one instanced quad by an embedded WGSL shader; coverage, encoded paints,
// atlas content, and clip layers reach the shader through textures whose
// packing is defined by the root strips package.
//
// The shader reproduces the CPU compositor's sampling and blending math so
// both backends resolve identical colors from the same frame.
package gpu
