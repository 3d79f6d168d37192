package cmd

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
)

func TestBenchVariantsAgree(t *testing.T) {
	pop := population{count: 2_003, spawnRadius: 1_500, batch: 8, workers: 3}
	const frames = 6
	d := pop.newDispatcher()
	defer d.Close()

	var results []benchResult
	for _, v := range []cull.Variant{cull.VariantSequential, cull.VariantParallel, cull.VariantSoA, cull.VariantAABBPacked, cull.VariantAABBSoA, cull.VariantNoCull} {
		r := benchVariant(v, pop, d, frames)
		if r.skipped {
			t.Fatalf("%s: unexpectedly skipped", v)
		}
		if len(r.visible) != frames {
			t.Fatalf("%s: expected %d measured passes; got %d", v, frames, len(r.visible))
		}
		if r.min > r.avg() || r.avg() > r.max {
			t.Fatalf("%s: expected min <= avg <= max; got %s, %s, %s", v, r.min, r.avg(), r.max)
		}
		results = append(results, r)
	}

	if err := checkAgreement(results); err != nil {
		t.Fatalf("expected agreement; got %v", err)
	}
	if results[0].totalVisible() == 0 {
		t.Fatal("expected some volumes inside the frustum")
	}
	for _, n := range results[len(results)-1].visible {
		if n != pop.count {
			t.Fatalf("no-cull: expected %d transforms per pass; got %d", pop.count, n)
		}
	}
}

func TestCheckAgreement(t *testing.T) {
	type spec struct {
		results []benchResult
		err     error
	}

	taskErr := errors.New("boom")
	specs := []spec{
		{nil, nil},
		{[]benchResult{
			{variant: cull.VariantSequential, visible: []int{1, 2}},
			{variant: cull.VariantSSE, skipped: true},
			{variant: cull.VariantNoCull, visible: []int{9, 9}},
			{variant: cull.VariantSoA, visible: []int{1, 2}},
		}, nil},
		{[]benchResult{
			{variant: cull.VariantSequential, visible: []int{1, 2}},
			{variant: cull.VariantSoA, visible: []int{1, 3}},
		}, ErrVisibleMismatch},
		{[]benchResult{
			{variant: cull.VariantSequential, visible: []int{1, 2}},
			{variant: cull.VariantSoA, visible: []int{1}},
		}, ErrVisibleMismatch},
		{[]benchResult{
			{variant: cull.VariantSequential, visible: []int{1, 2}},
			{variant: cull.VariantAABBPacked, visible: []int{4, 5}},
			{variant: cull.VariantAABBSoA, visible: []int{4, 5}},
		}, nil},
		{[]benchResult{
			{variant: cull.VariantAABBPacked, visible: []int{4, 5}},
			{variant: cull.VariantAABBSoA, visible: []int{4, 6}},
		}, ErrVisibleMismatch},
		{[]benchResult{
			{variant: cull.VariantParallel, visible: []int{0}, err: taskErr},
		}, taskErr},
	}

	for index, s := range specs {
		err := checkAgreement(s.results)
		if s.err == nil && err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if s.err != nil && !errors.Is(err, s.err) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.err, err)
		}
	}
}

func TestVariantTableListsEveryVariant(t *testing.T) {
	out := variantTable(cull.Variants())
	for _, v := range cull.Variants() {
		if !strings.Contains(out, v.String()) {
			t.Fatalf("expected the table to list %s:\n%s", v, out)
		}
	}
}

func TestBenchSharesOneWorkerPool(t *testing.T) {
	pop := population{count: 256, spawnRadius: 500, workers: 4}
	d := pop.newDispatcher()
	defer d.Close()

	benchVariant(cull.VariantParallel, pop, d, 2)
	baseline := runtime.NumGoroutine()

	for _, v := range cull.Variants() {
		benchVariant(v, pop, d, 2)
	}
	if got := runtime.NumGoroutine(); got > baseline {
		t.Fatalf("expected every variant to reuse the benchmark's workers; goroutines grew from %d to %d", baseline, got)
	}
}
