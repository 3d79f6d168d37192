package cull

import "github.com/Carmen-Shannon/oxy-cull/common"

// The explicit-intrinsic kernels are written against the instruction vocabulary of one target:
// each helper below maps to a single SSE2 or NEON instruction and keeps its lane semantics
// (comparisons yield all-ones / all-zeros lanes, masks are extracted the way the target does).
// Kernels using them only run when the host reports the instruction set.

func init() {
	register(VariantSSE, cullSSE)
	register(VariantNeon, cullNeon)
	register(VariantAABBNeon, cullAABBNeon)
}

// m128 is an SSE packed-single register.
type m128 [Width]float32

// m128i is an SSE register holding a lane-wise comparison result.
type m128i [Width]uint32

// _mm_set1_ps
func mmSet1PS(v float32) m128 {
	return m128{v, v, v, v}
}

// _mm_loadu_ps
func mmLoadUPS(s []float32, i int) m128 {
	return m128(Load4(s, i))
}

// _mm_mul_ps
func mmMulPS(a, b m128) m128 {
	return m128(F32x4(a).Mul(F32x4(b)))
}

// _mm_add_ps
func mmAddPS(a, b m128) m128 {
	return m128(F32x4(a).Add(F32x4(b)))
}

// _mm_cmpgt_ps
func mmCmpGtPS(a, b m128) m128i {
	var r m128i
	for i := range a {
		if a[i] > b[i] {
			r[i] = ^uint32(0)
		}
	}
	return r
}

// _mm_and_ps
func mmAndPS(a, b m128i) m128i {
	for i := range a {
		a[i] &= b[i]
	}
	return a
}

// _mm_movemask_ps
func mmMovemaskPS(a m128i) Mask4 {
	var m Mask4
	for i := range a {
		m |= Mask4(a[i]>>31) << i
	}
	return m
}

// cullSSE is the SoA sphere kernel expressed as an SSE2 instruction sequence.
func cullSSE(ctx *cullContext, start, end int, scratch []int) []int {
	checkLaneAligned(start)
	s := ctx.store
	radius := mmSet1PS(s.Radius)
	zero := mmSet1PS(0)
	body := start + common.AlignDown(end-start, Width)

	for i := start; i < body; i += Width {
		xs, ys, zs := mmLoadUPS(s.Xs, i), mmLoadUPS(s.Ys, i), mmLoadUPS(s.Zs, i)
		visible := m128i{^uint32(0), ^uint32(0), ^uint32(0), ^uint32(0)}
		for p := range ctx.planes {
			pl := &ctx.planes[p]
			dist := mmAddPS(mmMulPS(mmSet1PS(pl.Normal[0]), xs), mmMulPS(mmSet1PS(pl.Normal[1]), ys))
			dist = mmAddPS(dist, mmMulPS(mmSet1PS(pl.Normal[2]), zs))
			dist = mmAddPS(dist, mmSet1PS(pl.Distance))
			dist = mmAddPS(dist, radius)
			visible = mmAndPS(visible, mmCmpGtPS(dist, zero))
		}
		ctx.emitMask(i, mmMovemaskPS(visible))
	}

	ctx.cullTail(body, end)
	return scratch
}

// float32x4 is a NEON quad-word float register.
type float32x4 [Width]float32

// uint32x4 is a NEON quad-word unsigned register.
type uint32x4 [Width]uint32

// laneWeights turns an all-ones comparison result into a bitmask through vandq + vaddvq.
var laneWeights = uint32x4{1, 2, 4, 8}

// vdupq_n_f32
func vdupqNF32(v float32) float32x4 {
	return float32x4{v, v, v, v}
}

// vld1q_f32
func vld1qF32(s []float32, i int) float32x4 {
	return float32x4(Load4(s, i))
}

// vmulq_f32
func vmulqF32(a, b float32x4) float32x4 {
	return float32x4(F32x4(a).Mul(F32x4(b)))
}

// vaddq_f32
func vaddqF32(a, b float32x4) float32x4 {
	return float32x4(F32x4(a).Add(F32x4(b)))
}

// vabsq_f32
func vabsqF32(a float32x4) float32x4 {
	return float32x4(F32x4(a).Abs())
}

// vcgtq_f32
func vcgtqF32(a, b float32x4) uint32x4 {
	var r uint32x4
	for i := range a {
		if a[i] > b[i] {
			r[i] = ^uint32(0)
		}
	}
	return r
}

// vandq_u32
func vandqU32(a, b uint32x4) uint32x4 {
	for i := range a {
		a[i] &= b[i]
	}
	return a
}

// vaddvq_u32
func vaddvqU32(a uint32x4) uint32 {
	return a[0] + a[1] + a[2] + a[3]
}

func neonMask(v uint32x4) Mask4 {
	return Mask4(vaddvqU32(vandqU32(v, laneWeights)))
}

// cullNeon is the SoA sphere kernel expressed as a NEON instruction sequence.
func cullNeon(ctx *cullContext, start, end int, scratch []int) []int {
	checkLaneAligned(start)
	s := ctx.store
	radius := vdupqNF32(s.Radius)
	zero := vdupqNF32(0)
	body := start + common.AlignDown(end-start, Width)

	for i := start; i < body; i += Width {
		xs, ys, zs := vld1qF32(s.Xs, i), vld1qF32(s.Ys, i), vld1qF32(s.Zs, i)
		visible := uint32x4{^uint32(0), ^uint32(0), ^uint32(0), ^uint32(0)}
		for p := range ctx.planes {
			pl := &ctx.planes[p]
			dist := vaddqF32(vmulqF32(vdupqNF32(pl.Normal[0]), xs), vmulqF32(vdupqNF32(pl.Normal[1]), ys))
			dist = vaddqF32(dist, vmulqF32(vdupqNF32(pl.Normal[2]), zs))
			dist = vaddqF32(dist, vdupqNF32(pl.Distance))
			dist = vaddqF32(dist, radius)
			visible = vandqU32(visible, vcgtqF32(dist, zero))
		}
		ctx.emitMask(i, neonMask(visible))
	}

	ctx.cullTail(body, end)
	return scratch
}

// cullAABBNeon is the SoA box kernel expressed as a NEON instruction sequence.
func cullAABBNeon(ctx *cullContext, start, end int, scratch []int) []int {
	checkLaneAligned(start)
	s := ctx.store
	zero := vdupqNF32(0)
	body := start + common.AlignDown(end-start, Width)

	for i := start; i < body; i += Width {
		xs, ys, zs := vld1qF32(s.Xs, i), vld1qF32(s.Ys, i), vld1qF32(s.Zs, i)
		exs, eys, ezs := vld1qF32(s.Exs, i), vld1qF32(s.Eys, i), vld1qF32(s.Ezs, i)
		visible := uint32x4{^uint32(0), ^uint32(0), ^uint32(0), ^uint32(0)}
		for p := range ctx.planes {
			pl := &ctx.planes[p]
			nx, ny, nz := vdupqNF32(pl.Normal[0]), vdupqNF32(pl.Normal[1]), vdupqNF32(pl.Normal[2])

			margin := vaddqF32(vmulqF32(vabsqF32(nx), exs), vmulqF32(vabsqF32(ny), eys))
			margin = vaddqF32(margin, vmulqF32(vabsqF32(nz), ezs))

			dist := vaddqF32(vmulqF32(nx, xs), vmulqF32(ny, ys))
			dist = vaddqF32(dist, vmulqF32(nz, zs))
			dist = vaddqF32(dist, vdupqNF32(pl.Distance))
			dist = vaddqF32(dist, margin)
			visible = vandqU32(visible, vcgtqF32(dist, zero))
		}
		ctx.emitMask(i, neonMask(visible))
	}

	ctx.cullTail(body, end)
	return scratch
}
