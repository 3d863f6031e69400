package gpu

import (
	"errors"
	"testing"
)

func TestSlotAllocatorAllocateRelease(t *testing.T) {
	a := NewSlotAllocator(2)

	s1, err := a.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	s2, err := a.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if s1 == s2 {
		t.Errorf("Allocate returned duplicate slot %d", s1)
	}

	if _, err := a.Allocate(); !errors.Is(err, ErrSlotDepthExceeded) {
		t.Errorf("Allocate on full allocator = %v, want ErrSlotDepthExceeded", err)
	}

	a.Release(s1)
	if _, err := a.Allocate(); err != nil {
		t.Errorf("Allocate after Release = %v, want nil", err)
	}
}

func TestSlotAllocatorReset(t *testing.T) {
	a := NewSlotAllocator(3)
	for i := 0; i < 3; i++ {
		if _, err := a.Allocate(); err != nil {
			t.Fatalf("Allocate %d: %v", i, err)
		}
	}

	a.Reset()
	for i := 0; i < 3; i++ {
		if _, err := a.Allocate(); err != nil {
			t.Errorf("Allocate %d after Reset = %v, want nil", i, err)
		}
	}
}

func TestSlotAllocatorDefaultDepth(t *testing.T) {
	if got := NewSlotAllocator(0).Depth(); got != DefaultSlotDepth {
		t.Errorf("Depth() = %d, want %d", got, DefaultSlotDepth)
	}
}
