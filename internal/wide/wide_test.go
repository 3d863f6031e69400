package wide

import "testing"

func TestSplatU16(t *testing.T) {
	tests := []struct {
		name  string
		value uint16
	}{
		{"zero", 0},
		{"max", 255},
		{"mid", 128},
		{"one", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SplatU16(tt.value)
			for i, v := range result {
				if v != tt.value {
					t.Errorf("element %d = %d, want %d", i, v, tt.value)
				}
			}
		})
	}
}

func TestU16x16_Add(t *testing.T) {
	tests := []struct {
		name string
		a    U16x16
		b    U16x16
		want U16x16
	}{
		{
			name: "zeros",
			a:    SplatU16(0),
			b:    SplatU16(0),
			want: SplatU16(0),
		},
		{
			name: "ones",
			a:    SplatU16(1),
			b:    SplatU16(1),
			want: SplatU16(2),
		},
		{
			name: "mixed",
			a:    SplatU16(100),
			b:    SplatU16(50),
			want: SplatU16(150),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Add(tt.b)
			if got != tt.want {
				t.Errorf("Add() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestU16x16_Inv(t *testing.T) {
	tests := []struct {
		name string
		v    U16x16
		want U16x16
	}{
		{"zero", SplatU16(0), SplatU16(255)},
		{"full", SplatU16(255), SplatU16(0)},
		{"mid", SplatU16(100), SplatU16(155)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Inv()
			if got != tt.want {
				t.Errorf("Inv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestU16x16_MulDiv255 verifies the fast division matches exact rounding
// for every operand pair that alpha blending produces.
func TestU16x16_MulDiv255(t *testing.T) {
	for a := 0; a <= 255; a += 5 {
		for b := 0; b <= 255; b += 5 {
			got := SplatU16(uint16(a)).MulDiv255(SplatU16(uint16(b)))
			x := uint32(a) * uint32(b)
			want := uint16((x + 1 + (x >> 8)) >> 8)
			// Exact division differs by at most 1 from the approximation.
			exact := uint16((x + 127) / 255)
			if got[0] != want {
				t.Fatalf("MulDiv255(%d, %d) = %d, want %d", a, b, got[0], want)
			}
			d := int(got[0]) - int(exact)
			if d < -1 || d > 1 {
				t.Errorf("MulDiv255(%d, %d) = %d, exact %d (diff > 1)", a, b, got[0], exact)
			}
		}
	}
}

func TestU16x16_MulDiv255_Identity(t *testing.T) {
	// Multiplying by 255 must be the identity on [0, 255].
	full := SplatU16(255)
	for v := 0; v <= 255; v++ {
		got := SplatU16(uint16(v)).MulDiv255(full)
		if got[0] != uint16(v) {
			t.Errorf("MulDiv255(%d, 255) = %d, want %d", v, got[0], v)
		}
	}
}

func TestF32x8_Abs(t *testing.T) {
	v := F32x8{-1, 1, -0.5, 0, 2, -2, -3.25, 3.25}
	want := F32x8{1, 1, 0.5, 0, 2, 2, 3.25, 3.25}
	if got := v.Abs(); got != want {
		t.Errorf("Abs() = %v, want %v", got, want)
	}
}

func TestF32x8_Clamp(t *testing.T) {
	v := F32x8{-1, 0, 0.5, 1, 1.5, 2, -0.25, 0.75}
	want := F32x8{0, 0, 0.5, 1, 1, 1, 0, 0.75}
	if got := v.Clamp(0, 1); got != want {
		t.Errorf("Clamp(0, 1) = %v, want %v", got, want)
	}
}
