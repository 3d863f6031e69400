package strips

import (
	"math"
	"testing"
)

func TestCubicWeightsSumToOne(t *testing.T) {
	for i := 0; i < 100; i++ {
		frac := float32(i) / 100.0
		w := CubicWeights(frac)
		sum := w[0] + w[1] + w[2] + w[3]
		if math.Abs(float64(sum)-1.0) > 1e-5 {
			t.Errorf("CubicWeights(%v) sum = %v, want 1", frac, sum)
		}
	}
}

func TestCubicWeightsAtZero(t *testing.T) {
	w := CubicWeights(0)
	want := [4]float32{1.0 / 18.0, 8.0 / 9.0, 1.0 / 18.0, 0}
	for i := range w {
		if math.Abs(float64(w[i]-want[i])) > 1e-6 {
			t.Errorf("CubicWeights(0)[%d] = %v, want %v", i, w[i], want[i])
		}
	}
}

func TestExtendNormalized(t *testing.T) {
	tests := []struct {
		name string
		t    float32
		size float32
		mode ExtendMode
		want float32
	}{
		{"pad inside", 3.5, 10, ExtendPad, 3.5},
		{"pad below", -2, 10, ExtendPad, 0},
		{"pad above", 15, 10, ExtendPad, 10 - extendEpsilon},
		{"repeat inside", 3.5, 10, ExtendRepeat, 3.5},
		{"repeat wraps", 12.5, 10, ExtendRepeat, 2.5},
		{"repeat negative", -2.5, 10, ExtendRepeat, 7.5},
		{"reflect inside", 3.5, 10, ExtendReflect, 3.5},
		{"reflect folds", 12.5, 10, ExtendReflect, 7.5},
		{"reflect second period", 22.5, 10, ExtendReflect, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtendNormalized(tt.t, tt.size, tt.mode)
			if math.Abs(float64(got-tt.want)) > 1e-3 {
				t.Errorf("ExtendNormalized(%v, %v, %v) = %v, want %v",
					tt.t, tt.size, tt.mode, got, tt.want)
			}
		})
	}
}

func TestExtendReflectSymmetry(t *testing.T) {
	// Reflection is even around zero: f(-t) == f(t).
	for _, coord := range []float32{0.25, 1.5, 4.75, 9.5, 13.25} {
		pos := ExtendNormalized(coord, 10, ExtendReflect)
		neg := ExtendNormalized(-coord, 10, ExtendReflect)
		if math.Abs(float64(pos-neg)) > 1e-3 {
			t.Errorf("reflect(%v) = %v, reflect(%v) = %v, want equal",
				coord, pos, -coord, neg)
		}
	}
}

func TestExtendNormalizedZeroSize(t *testing.T) {
	// Zero-sized images never divide by zero and always resolve texel 0.
	for _, mode := range []ExtendMode{ExtendPad, ExtendRepeat, ExtendReflect} {
		if got := ExtendNormalized(5, 0, mode); got != 0 {
			t.Errorf("ExtendNormalized(5, 0, %v) = %v, want 0", mode, got)
		}
	}
}

func TestBilinearFract(t *testing.T) {
	tests := []struct {
		coord    float32
		wantBase int32
		wantFrac float32
	}{
		{0.5, 0, 0},
		{1.0, 0, 0.5},
		{1.5, 1, 0},
		{0.25, -1, 0.75},
		{3.75, 3, 0.25},
	}
	for _, tt := range tests {
		base, frac := BilinearFract(tt.coord)
		if base != tt.wantBase || math.Abs(float64(frac-tt.wantFrac)) > 1e-6 {
			t.Errorf("BilinearFract(%v) = (%d, %v), want (%d, %v)",
				tt.coord, base, frac, tt.wantBase, tt.wantFrac)
		}
	}
}
