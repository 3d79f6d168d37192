package cull

import "github.com/Carmen-Shannon/oxy-cull/common"

func init() {
	register(VariantPacked, cullPacked)
	register(VariantSoA, cullSoA)
	register(VariantAABBPacked, cullAABBPacked)
	register(VariantAABBSoA, cullAABBSoA)
}

// cullPacked broadcasts each sphere's center into 4 lanes and tests it against both plane packets
// at once. The sentinel lanes of the second packet always pass.
func cullPacked(ctx *cullContext, start, end int, scratch []int) []int {
	spheres := ctx.store.Spheres[start:end]
	for i := range spheres {
		s := &spheres[i]
		x, y, z, r := Splat(s.Center[0]), Splat(s.Center[1]), Splat(s.Center[2]), Splat(s.Radius)
		mask := ctx.packets[0].distance(x, y, z).Add(r).GreaterThanZero() &
			ctx.packets[1].distance(x, y, z).Add(r).GreaterThanZero()
		if mask == MaskAll {
			ctx.out.Append(ctx.store.Transform(start + i))
		}
	}
	return scratch
}

// cullAABBPacked does the same for boxes: the margin of each plane lane is the box's half extents
// projected onto the absolute plane normal.
func cullAABBPacked(ctx *cullContext, start, end int, scratch []int) []int {
	boxes := ctx.store.Boxes[start:end]
	for i := range boxes {
		b := &boxes[i]
		x, y, z := Splat(b.Center[0]), Splat(b.Center[1]), Splat(b.Center[2])
		ex, ey, ez := Splat(b.Extents[0]), Splat(b.Extents[1]), Splat(b.Extents[2])

		mask := MaskAll
		for p := range ctx.packets {
			abs := &ctx.absPackets[p]
			margin := abs.Xs.Mul(ex).Add(abs.Ys.Mul(ey)).Add(abs.Zs.Mul(ez))
			mask &= ctx.packets[p].distance(x, y, z).Add(margin).GreaterThanZero()
		}
		if mask == MaskAll {
			ctx.out.Append(ctx.store.Transform(start + i))
		}
	}
	return scratch
}

// cullSoA loads four consecutive spheres per iteration and tests each plane against all four,
// AND-ing the per-plane masks. Objects past the last full group of four go through the scalar
// reference test.
func cullSoA(ctx *cullContext, start, end int, scratch []int) []int {
	checkLaneAligned(start)
	s := ctx.store
	r := Splat(s.Radius)
	body := start + common.AlignDown(end-start, Width)

	for i := start; i < body; i += Width {
		xs, ys, zs := Load4(s.Xs, i), Load4(s.Ys, i), Load4(s.Zs, i)
		mask := MaskAll
		for p := range ctx.planes {
			pl := &ctx.planes[p]
			dist := Splat(pl.Normal[0]).Mul(xs).
				Add(Splat(pl.Normal[1]).Mul(ys)).
				Add(Splat(pl.Normal[2]).Mul(zs)).
				Add(Splat(pl.Distance)).
				Add(r)
			mask &= dist.GreaterThanZero()
		}
		ctx.emitMask(i, mask)
	}

	ctx.cullTail(body, end)
	return scratch
}

func cullAABBSoA(ctx *cullContext, start, end int, scratch []int) []int {
	checkLaneAligned(start)
	s := ctx.store
	body := start + common.AlignDown(end-start, Width)

	for i := start; i < body; i += Width {
		xs, ys, zs := Load4(s.Xs, i), Load4(s.Ys, i), Load4(s.Zs, i)
		exs, eys, ezs := Load4(s.Exs, i), Load4(s.Eys, i), Load4(s.Ezs, i)
		mask := MaskAll
		for p := range ctx.planes {
			pl := &ctx.planes[p]
			margin := Splat(abs32(pl.Normal[0])).Mul(exs).
				Add(Splat(abs32(pl.Normal[1])).Mul(eys)).
				Add(Splat(abs32(pl.Normal[2])).Mul(ezs))
			dist := Splat(pl.Normal[0]).Mul(xs).
				Add(Splat(pl.Normal[1]).Mul(ys)).
				Add(Splat(pl.Normal[2]).Mul(zs)).
				Add(Splat(pl.Distance)).
				Add(margin)
			mask &= dist.GreaterThanZero()
		}
		ctx.emitMask(i, mask)
	}

	ctx.cullTail(body, end)
	return scratch
}

// cullTail runs the scalar reference test over [start, end), used for the last partial group of a
// 4-wide batch.
func (c *cullContext) cullTail(start, end int) {
	for i := start; i < end; i++ {
		if c.store.Visible(&c.planes, i) {
			c.out.Append(c.store.Transform(i))
		}
	}
}
