package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testFrustum() Frustum {
	viewProj := ViewProjection(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 0, -1},
		mgl32.Vec3{0, 1, 0},
		mgl32.DegToRad(90), 1, 1, 100,
	)
	return ExtractFrustumFromMatrix(viewProj)
}

func TestExtractFrustumPlanesAreNormalized(t *testing.T) {
	f := testFrustum()
	for i, p := range f.Planes {
		if l := p.Normal.Len(); math.Abs(float64(l)-1) > 1e-5 {
			t.Fatalf("[plane %d] expected unit normal; got length %f", i, l)
		}
	}
}

func TestExtractFrustumNearFar(t *testing.T) {
	f := testFrustum()

	near := f.Planes[FrustumNear]
	if !near.Normal.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Fatalf("expected near normal to be (0,0,-1); got %v", near.Normal)
	}
	if math.Abs(float64(near.Distance)+1) > 1e-4 {
		t.Fatalf("expected near distance to be -1; got %f", near.Distance)
	}

	far := f.Planes[FrustumFar]
	if !far.Normal.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-5) {
		t.Fatalf("expected far normal to be (0,0,1); got %v", far.Normal)
	}
	if math.Abs(float64(far.Distance)-100) > 1e-2 {
		t.Fatalf("expected far distance to be 100; got %f", far.Distance)
	}

	left := f.Planes[FrustumLeft]
	exp := mgl32.Vec3{1, 0, -1}.Normalize()
	if !left.Normal.ApproxEqualThreshold(exp, 1e-5) {
		t.Fatalf("expected left normal to be %v; got %v", exp, left.Normal)
	}
}

func TestFrustumContains(t *testing.T) {
	f := testFrustum()

	specs := []struct {
		point  mgl32.Vec3
		inside bool
	}{
		{mgl32.Vec3{0, 0, -10}, true},
		{mgl32.Vec3{5, 5, -10}, true},
		{mgl32.Vec3{0, 0, 10}, false},
		{mgl32.Vec3{0, 0, -0.5}, false},
		{mgl32.Vec3{0, 0, -200}, false},
		{mgl32.Vec3{20, 0, -10}, false},
		{mgl32.Vec3{0, -20, -10}, false},
	}

	for specIndex, spec := range specs {
		if got := f.Contains(spec.point); got != spec.inside {
			t.Errorf("[spec %d] expected Contains(%v) to be %t; got %t", specIndex, spec.point, spec.inside, got)
		}
	}
}

func TestAlignHelpers(t *testing.T) {
	specs := []struct {
		n, down, up, chunks int
	}{
		{0, 0, 0, 0},
		{1, 0, 4, 1},
		{4, 4, 4, 1},
		{7, 4, 8, 2},
		{13, 12, 16, 4},
	}

	for specIndex, spec := range specs {
		if got := AlignDown(spec.n, 4); got != spec.down {
			t.Errorf("[spec %d] expected AlignDown(%d, 4) = %d; got %d", specIndex, spec.n, spec.down, got)
		}
		if got := AlignUp(spec.n, 4); got != spec.up {
			t.Errorf("[spec %d] expected AlignUp(%d, 4) = %d; got %d", specIndex, spec.n, spec.up, got)
		}
		if got := CeilDiv(spec.n, 4); got != spec.chunks {
			t.Errorf("[spec %d] expected CeilDiv(%d, 4) = %d; got %d", specIndex, spec.n, spec.chunks, got)
		}
	}
}

func TestInstanceTransform(t *testing.T) {
	center := mgl32.Vec3{1.5, -2, 3}
	m := InstanceTransform(center)
	if got := TransformTranslation(m); got != center {
		t.Fatalf("expected translation %v; got %v", center, got)
	}
	if got := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3(); got != center {
		t.Fatalf("expected origin to map to %v; got %v", center, got)
	}
	if got := len(TransformsToBytes([]mgl32.Mat4{m, m})); got != 128 {
		t.Fatalf("expected 128 bytes for two transforms; got %d", got)
	}
}
