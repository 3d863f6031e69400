package cpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/strips"
)

// ErrSlotDepthExceeded is returned when every clip slot is in use.
// Recoverable: the encoder flattens or reorders layers instead of crashing.
var ErrSlotDepthExceeded = errors.New("cpu: clip slot depth exceeded")

// SlotWidth is the pixel width of one clip slot row. Slot-sourced fragments
// address the store at (x mod SlotWidth, slot*StripHeight + y mod StripHeight),
// the same layout as the GPU clip-input texture.
const SlotWidth = 256

// DefaultSlotDepth is the number of clip slots allocated by default.
const DefaultSlotDepth = 64

// SlotStore is the clip-layer store of the CPU compositor: a stack of
// intermediate composited layers, each occupying one slot of
// SlotWidth x StripHeight premultiplied RGBA float pixels. Slots hand out
// through a free list so nested clips reuse rows released by finished
// layers.
type SlotStore struct {
	depth  int
	pixels []float32 // 4 floats per pixel, row-major over depth*StripHeight rows
	free   []uint32
}

// NewSlotStore creates a store with the given slot depth. Zero or negative
// depth selects DefaultSlotDepth.
func NewSlotStore(depth int) *SlotStore {
	if depth <= 0 {
		depth = DefaultSlotDepth
	}
	s := &SlotStore{
		depth:  depth,
		pixels: make([]float32, depth*strips.StripHeight*SlotWidth*4),
		free:   make([]uint32, 0, depth),
	}
	s.Reset()
	return s
}

// Depth returns the total number of slots.
func (s *SlotStore) Depth() int {
	return s.depth
}

// Reset returns every slot to the free list. Pixel content is left in
// place; slots are cleared on allocation.
func (s *SlotStore) Reset() {
	s.free = s.free[:0]
	for i := s.depth - 1; i >= 0; i-- {
		s.free = append(s.free, uint32(i)) //nolint:gosec // depth is small and positive
	}
}

// Allocate takes a free slot and clears it. Returns ErrSlotDepthExceeded
// when the clip nesting is deeper than the store.
func (s *SlotStore) Allocate() (uint32, error) {
	if len(s.free) == 0 {
		return 0, fmt.Errorf("%w: depth %d", ErrSlotDepthExceeded, s.depth)
	}
	slot := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]

	base := int(slot) * strips.StripHeight * SlotWidth * 4
	clear(s.pixels[base : base+strips.StripHeight*SlotWidth*4])
	return slot, nil
}

// Release returns a slot to the free list. The slot must have come from
// Allocate; releasing twice is an encoder bug.
func (s *SlotStore) Release(slot uint32) {
	s.free = append(s.free, slot)
}

// index resolves a fragment position to the slot store pixel offset.
func (s *SlotStore) index(slot uint32, x, y int) int {
	lx := x % SlotWidth
	ly := int(slot)*strips.StripHeight + y%strips.StripHeight
	return (ly*SlotWidth + lx) * 4
}

// Write stores one premultiplied pixel into a slot. Compositing a clip
// layer renders its content here before the layer's slot-sourced strips
// read it back.
func (s *SlotStore) Write(slot uint32, x, y int, c [4]float32) {
	i := s.index(slot, x, y)
	s.pixels[i] = c[0]
	s.pixels[i+1] = c[1]
	s.pixels[i+2] = c[2]
	s.pixels[i+3] = c[3]
}

// Sample reads one premultiplied pixel from a slot, addressed exactly as
// the GPU clip-input texture fetch.
func (s *SlotStore) Sample(slot uint32, x, y int) [4]float32 {
	i := s.index(slot, x, y)
	return [4]float32{s.pixels[i], s.pixels[i+1], s.pixels[i+2], s.pixels[i+3]}
}
