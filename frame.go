package strips

import (
	"sync"
	"sync/atomic"
)

// Frame is the per-frame product of the encoding pipeline: the ordered
// strip list and the alpha buffer feeding the compositors. Strips are
// produced once per frame, consumed read-only, and discarded at the start
// of the next frame; draw order within the list is submission order
// (back-to-front), established here by the encoder, never reordered by a
// compositor.
type Frame struct {
	Strips     []Strip
	Alphas     *AlphaBuffer
	Generation uint64
}

// Validate checks every strip against the frame's alpha buffer and the
// per-row ordering invariant. Encoders call this before publishing a frame;
// a non-nil error is a bug in strip generation, not a runtime condition.
//
// The non-overlap check applies to generator output for a single path. A
// frame holding several back-to-front paths legitimately carries overlapping
// strips (the compositors resolve them by draw order); validate such frames
// per path, before concatenation.
func (f *Frame) Validate() error {
	columns := f.Alphas.Columns()
	rowStart := 0
	for i := range f.Strips {
		if err := f.Strips[i].Validate(columns); err != nil {
			return err
		}
		if i > 0 && f.Strips[i].Y != f.Strips[i-1].Y {
			if err := ValidateRow(f.Strips[rowStart:i]); err != nil {
				return err
			}
			rowStart = i
		}
	}
	return ValidateRow(f.Strips[rowStart:])
}

// FrameFence coordinates buffer reuse between the single per-frame writer
// (the encoder) and its readers (compositor passes). Frame N's buffers must
// not be mutated until every consumer of frame N has released; the fence
// enforces that with a generation counter and a reader count rather than
// fine-grained locks.
type FrameFence struct {
	mu         sync.Mutex
	cond       *sync.Cond
	generation atomic.Uint64
	readers    int
}

// NewFrameFence creates a fence starting at generation zero.
func NewFrameFence() *FrameFence {
	f := &FrameFence{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Generation returns the current frame generation.
func (f *FrameFence) Generation() uint64 {
	return f.generation.Load()
}

// Acquire registers a reader of the current generation and returns it.
// Readers that observe a stale generation on completion discard their
// output: a superseded frame's strips are never partially applied.
func (f *FrameFence) Acquire() uint64 {
	f.mu.Lock()
	f.readers++
	gen := f.generation.Load()
	f.mu.Unlock()
	return gen
}

// Release drops a reader registration.
func (f *FrameFence) Release() {
	f.mu.Lock()
	f.readers--
	if f.readers == 0 {
		f.cond.Broadcast()
	}
	f.mu.Unlock()
}

// Advance waits for all readers of the current generation to release, then
// bumps the generation and returns it. The encoder calls this before
// resetting or rewriting frame buffers.
func (f *FrameFence) Advance() uint64 {
	f.mu.Lock()
	for f.readers > 0 {
		f.cond.Wait()
	}
	gen := f.generation.Add(1)
	f.mu.Unlock()
	return gen
}

// Superseded reports whether gen is no longer the current generation.
func (f *FrameFence) Superseded(gen uint64) bool {
	return f.generation.Load() != gen
}
