package cull

func init() {
	register(VariantNoCull, cullNone)
	register(VariantSequential, cullScalar)
	register(VariantSequentialBranchless, cullScalarBranchless)
	register(VariantSingleWorker, cullScalar)
	register(VariantParallel, cullScalar)
	register(VariantParallelBranchless, cullScalarBranchless)
	register(VariantBatchedBranchless, cullBatchedBranchless)
}

// cullNone emits every object of the batch.
func cullNone(ctx *cullContext, start, end int, scratch []int) []int {
	if end <= start {
		return scratch
	}
	offset := ctx.out.Reserve(end - start)
	for i := start; i < end; i++ {
		ctx.out.Write(offset+i-start, ctx.store.Transform(i))
	}
	return scratch
}

// cullScalar tests one sphere at a time, leaving the plane loop at the first failing plane.
func cullScalar(ctx *cullContext, start, end int, scratch []int) []int {
	spheres := ctx.store.Spheres[start:end]
	for i := range spheres {
		s := &spheres[i]
		if SphereVisible(&ctx.planes, s.Center, s.Radius) {
			ctx.out.Append(ctx.store.Transform(start + i))
		}
	}
	return scratch
}

func cullScalarBranchless(ctx *cullContext, start, end int, scratch []int) []int {
	spheres := ctx.store.Spheres[start:end]
	for i := range spheres {
		s := &spheres[i]
		if sphereVisibleBranchless(&ctx.planes, s.Center[0], s.Center[1], s.Center[2], s.Radius) {
			ctx.out.Append(ctx.store.Transform(start + i))
		}
	}
	return scratch
}

// cullBatchedBranchless collects the survivors of a batch in task-local scratch and publishes them
// with one reservation.
func cullBatchedBranchless(ctx *cullContext, start, end int, scratch []int) []int {
	spheres := ctx.store.Spheres[start:end]
	for i := range spheres {
		s := &spheres[i]
		if sphereVisibleBranchless(&ctx.planes, s.Center[0], s.Center[1], s.Center[2], s.Radius) {
			scratch = append(scratch, start+i)
		}
	}
	if len(scratch) == 0 {
		return scratch
	}

	offset := ctx.out.Reserve(len(scratch))
	for j, idx := range scratch {
		ctx.out.Write(offset+j, ctx.store.Transform(idx))
	}
	return scratch
}
