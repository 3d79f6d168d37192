package cull

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/go-gl/mathgl/mgl32"
)

func TestPackPlanesLanes(t *testing.T) {
	planes := headOnPlanes()
	packets := PackPlanes(planes)

	for i := 0; i < PacketCount*Width; i++ {
		packet, lane := packets[i/Width], i%Width
		got := common.Plane{
			Normal:   mgl32.Vec3{packet.Xs[lane], packet.Ys[lane], packet.Zs[lane]},
			Distance: packet.Distances[lane],
		}
		exp := SentinelPlane
		if i < common.PlaneCount {
			exp = planes[i]
		}
		if got != exp {
			t.Errorf("lane %d: expected %v; got %v", i, exp, got)
		}
	}

	if PackPlanes(planes) != packets {
		t.Fatal("expected PackPlanes to be deterministic")
	}
}

func TestSentinelLanesNeverReject(t *testing.T) {
	var planes [common.PlaneCount]common.Plane
	for i := range planes {
		planes[i] = SentinelPlane
	}
	packet := PackPlanes(planes)[1]

	for _, c := range randomCenters(500, 1e6, 11) {
		x, y, z := Splat(c[0]), Splat(c[1]), Splat(c[2])
		if mask := packet.distance(x, y, z).GreaterThanZero(); mask != MaskAll {
			t.Fatalf("sentinel lanes rejected %v (mask %04b)", c, mask)
		}
	}
}

func TestPackedMatchesDirectSixPlaneTest(t *testing.T) {
	planes := headOnPlanes()
	packets := PackPlanes(planes)
	r := Splat(SphereRadius)

	for _, c := range randomCenters(2000, 1200, 5) {
		x, y, z := Splat(c[0]), Splat(c[1]), Splat(c[2])
		mask := packets[0].distance(x, y, z).Add(r).GreaterThanZero() &
			packets[1].distance(x, y, z).Add(r).GreaterThanZero()
		if (mask == MaskAll) != SphereVisible(&planes, c, SphereRadius) {
			t.Fatalf("packed and scalar tests disagree for %v", c)
		}
	}
}

func TestMaskHelpers(t *testing.T) {
	v := F32x4{1, -1, 0, 2}
	if got := v.GreaterThanZero(); got != 0b1001 {
		t.Fatalf("expected mask 1001; got %04b", got)
	}
	if popcount(MaskAll) != Width {
		t.Fatalf("expected %d set lanes; got %d", Width, popcount(MaskAll))
	}
	if got := mmMovemaskPS(mmCmpGtPS(m128(v), mmSet1PS(0))); got != 0b1001 {
		t.Fatalf("expected movemask 1001; got %04b", got)
	}
	if got := neonMask(vcgtqF32(float32x4(v), vdupqNF32(0))); got != 0b1001 {
		t.Fatalf("expected neon mask 1001; got %04b", got)
	}
}
