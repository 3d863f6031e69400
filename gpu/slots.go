package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/strips"
)

// ErrSlotDepthExceeded is returned when every clip slot is in use.
// Recoverable: the encoder flattens or reorders layers instead of crashing.
var ErrSlotDepthExceeded = errors.New("gpu: clip slot depth exceeded")

// SlotWidth is the pixel width of one clip slot row. Slot-sourced fragments
// read the clip texture at (x mod SlotWidth, slot*StripHeight + y mod
// StripHeight), the same layout as the CPU slot store.
const SlotWidth = 256

// DefaultSlotDepth is the number of clip slots allocated by default.
const DefaultSlotDepth = 64

// SlotAllocator hands out clip-texture rows through a free list so nested
// clip layers reuse slots released by finished layers. It only tracks
// ownership; pixel content lives in the renderer's clip texture.
type SlotAllocator struct {
	depth int
	free  []uint32
}

// NewSlotAllocator creates an allocator with the given slot depth. Zero or
// negative depth selects DefaultSlotDepth.
func NewSlotAllocator(depth int) *SlotAllocator {
	if depth <= 0 {
		depth = DefaultSlotDepth
	}
	a := &SlotAllocator{
		depth: depth,
		free:  make([]uint32, 0, depth),
	}
	a.Reset()
	return a
}

// Depth returns the total number of slots.
func (a *SlotAllocator) Depth() int {
	return a.depth
}

// Reset returns every slot to the free list.
func (a *SlotAllocator) Reset() {
	a.free = a.free[:0]
	for i := a.depth - 1; i >= 0; i-- {
		a.free = append(a.free, uint32(i)) //nolint:gosec // depth is small and positive
	}
}

// Allocate takes a free slot. Returns ErrSlotDepthExceeded when the clip
// nesting is deeper than the store.
func (a *SlotAllocator) Allocate() (uint32, error) {
	if len(a.free) == 0 {
		return 0, fmt.Errorf("%w: depth %d", ErrSlotDepthExceeded, a.depth)
	}
	slot := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	return slot, nil
}

// Release returns a slot to the free list. The slot must have come from
// Allocate; releasing twice is an encoder bug.
func (a *SlotAllocator) Release(slot uint32) {
	a.free = append(a.free, slot)
}

// slotPixelCount is the number of float values in one slot of content.
const slotPixelCount = SlotWidth * strips.StripHeight * 4
