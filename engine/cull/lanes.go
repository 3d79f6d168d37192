package cull

import (
	"math"
	"math/bits"
)

// Width is the lane count of every 4-wide kernel.
const Width = 4

// F32x4 is a 4-lane float32 vector. Operations are element-wise loops the compiler can keep in
// registers; products are explicitly rounded to float32 so results never depend on FMA fusion.
type F32x4 [Width]float32

// Mask4 holds one visibility bit per lane in its low 4 bits.
type Mask4 uint8

// MaskAll is the mask with every lane set.
const MaskAll Mask4 = 1<<Width - 1

// Splat broadcasts v into every lane.
func Splat(v float32) F32x4 {
	return F32x4{v, v, v, v}
}

// Load4 loads s[i:i+4] into a vector.
func Load4(s []float32, i int) F32x4 {
	s = s[i : i+Width : i+Width]
	return F32x4{s[0], s[1], s[2], s[3]}
}

// Add returns a + b.
func (a F32x4) Add(b F32x4) F32x4 {
	for i := range a {
		a[i] += b[i]
	}
	return a
}

// Mul returns a * b with every product rounded to float32.
func (a F32x4) Mul(b F32x4) F32x4 {
	for i := range a {
		a[i] = float32(a[i] * b[i])
	}
	return a
}

// Abs returns |a|.
func (a F32x4) Abs() F32x4 {
	for i := range a {
		a[i] = float32(math.Abs(float64(a[i])))
	}
	return a
}

// GreaterThanZero returns the mask of lanes holding a value strictly greater than zero.
func (a F32x4) GreaterThanZero() Mask4 {
	var m Mask4
	for i := range a {
		if a[i] > 0 {
			m |= 1 << i
		}
	}
	return m
}

// Has reports whether lane is set.
func (m Mask4) Has(lane int) bool {
	return m&(1<<lane) != 0
}

func popcount(m Mask4) int {
	return bits.OnesCount8(uint8(m))
}
