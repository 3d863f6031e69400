package cpu

import (
	"errors"
	"testing"
)

func TestSlotStoreAllocateRelease(t *testing.T) {
	s := NewSlotStore(2)

	a, err := s.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	b, err := s.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if a == b {
		t.Errorf("Allocate returned duplicate slot %d", a)
	}

	if _, err := s.Allocate(); !errors.Is(err, ErrSlotDepthExceeded) {
		t.Errorf("Allocate on full store = %v, want ErrSlotDepthExceeded", err)
	}

	s.Release(a)
	if _, err := s.Allocate(); err != nil {
		t.Errorf("Allocate after Release = %v, want nil", err)
	}
}

func TestSlotStoreClearsOnAllocate(t *testing.T) {
	s := NewSlotStore(1)
	slot, err := s.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	s.Write(slot, 3, 1, [4]float32{1, 0.5, 0.25, 1})

	s.Release(slot)
	slot, err = s.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got := s.Sample(slot, 3, 1); got != [4]float32{} {
		t.Errorf("Sample after reallocation = %v, want zero", got)
	}
}

func TestSlotStoreAddressWraps(t *testing.T) {
	s := NewSlotStore(4)
	slot, err := s.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	want := [4]float32{0.25, 0.5, 0.75, 1}
	s.Write(slot, 3, 1, want)

	// x wraps mod SlotWidth, y wraps mod StripHeight.
	if got := s.Sample(slot, SlotWidth+3, 5); got != want {
		t.Errorf("wrapped Sample = %v, want %v", got, want)
	}
}

func TestSlotStoreDefaultDepth(t *testing.T) {
	if got := NewSlotStore(0).Depth(); got != DefaultSlotDepth {
		t.Errorf("Depth() = %d, want %d", got, DefaultSlotDepth)
	}
}
