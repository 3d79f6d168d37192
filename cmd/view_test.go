package cmd

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
)

func TestViewerControls(t *testing.T) {
	type spec struct {
		key     uint32
		variant cull.Variant
		count   int
		changed bool
	}

	all := cull.Variants()
	c := newViewerControls(cull.VariantSoA, 100)
	if c.variant() != cull.VariantSoA {
		t.Fatalf("expected initial variant %s; got %s", cull.VariantSoA, c.variant())
	}

	specs := []spec{
		{common.Key1, all[0], 100, true},
		{common.Key1, all[0], 100, false},
		{common.Key9, all[8], 100, true},
		{common.Key0, all[9], 100, true},
		{common.KeyMinus, all[10], 100, true},
		{common.KeyEqual, all[11], 100, true},
		{common.KeyRight, all[12], 100, true},
		{common.KeyRight, all[13], 100, true},
		{common.KeyRight, all[0], 100, true},
		{common.KeyLeft, all[13], 100, true},
		{common.KeyUp, all[13], 200, true},
		{common.KeyDown, all[13], 100, true},
		{common.KeyDown, all[13], 50, true},
		{common.KeyR, all[13], 100, true},
		{common.KeySpace, all[13], 100, false},
	}

	for index, s := range specs {
		changed := c.handleKey(s.key)
		if changed != s.changed || c.variant() != s.variant || c.count != s.count {
			t.Fatalf("[spec %d] expected (%s, %d, %t); got (%s, %d, %t)",
				index, s.variant, s.count, s.changed, c.variant(), c.count, changed)
		}
	}
	if c.orbit {
		t.Fatal("expected space to stop the orbit")
	}
}

func TestViewerControlsCountFromZero(t *testing.T) {
	c := newViewerControls(cull.VariantSequential, 1)
	c.handleKey(common.KeyDown)
	if c.count != 0 {
		t.Fatalf("expected count 0; got %d", c.count)
	}
	c.handleKey(common.KeyUp)
	if c.count != minViewCount {
		t.Fatalf("expected count %d; got %d", minViewCount, c.count)
	}
}
