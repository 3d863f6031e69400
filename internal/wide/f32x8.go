package wide

// F32x8 represents 8 float32 values for SIMD-style operations.
// Designed for Go compiler auto-vectorization with fixed-size arrays.
// The strip generator quantizes winding to coverage with it, two
// four-row columns per vector.
type F32x8 [8]float32

// Abs computes the absolute value of each element.
// Returns a new F32x8 with |v[i]| for each element.
func (v F32x8) Abs() F32x8 {
	var result F32x8
	for i := range v {
		if v[i] < 0 {
			result[i] = -v[i]
		} else {
			result[i] = v[i]
		}
	}
	return result
}

// Clamp clamps each element to [minVal, maxVal].
// Any value less than minVal is set to minVal, any value greater than
// maxVal is set to maxVal.
func (v F32x8) Clamp(minVal, maxVal float32) F32x8 {
	var result F32x8
	for i := range v {
		switch {
		case v[i] < minVal:
			result[i] = minVal
		case v[i] > maxVal:
			result[i] = maxVal
		default:
			result[i] = v[i]
		}
	}
	return result
}
