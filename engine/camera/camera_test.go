package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestControllerSphericalPosition(t *testing.T) {
	cc := NewCameraController(WithRadius(100), WithElevation(0), WithAzimuth(0))
	if got := cc.Position(); !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, 100}, 1e-4) {
		t.Fatalf("expected position (0, 0, 100); got %v", got)
	}

	cc = NewCameraController(WithRadius(100), WithElevation(0), WithAzimuth(float32(math.Pi/2)), WithTarget(mgl32.Vec3{1, 2, 3}))
	if got := cc.Position(); !got.ApproxEqualThreshold(mgl32.Vec3{101, 2, 3}, 1e-3) {
		t.Fatalf("expected position (101, 2, 3); got %v", got)
	}
}

func TestControllerClampsRadiusAndElevation(t *testing.T) {
	cc := NewCameraController(WithRadiusLimits(10, 50), WithRadius(30))

	cc.SetRadius(1000)
	if cc.Radius() != 50 {
		t.Fatalf("expected radius clamped to 50; got %f", cc.Radius())
	}
	cc.Zoom(1000)
	if cc.Radius() != 10 {
		t.Fatalf("expected radius clamped to 10; got %f", cc.Radius())
	}

	for range 200 {
		cc.OrbitUp()
	}
	if e := cc.Elevation(); e >= math.Pi/2 {
		t.Fatalf("expected elevation below the pole; got %f", e)
	}
}

func TestControllerAdvanceKeepsRadius(t *testing.T) {
	cc := NewCameraController(WithRadius(75), WithAngularVelocity(1))
	start := cc.Azimuth()
	cc.Advance(0.5)
	if got := cc.Azimuth() - start; math.Abs(float64(got)-0.5) > 1e-5 {
		t.Fatalf("expected azimuth to advance by 0.5; got %f", got)
	}
	if l := cc.Position().Sub(cc.Target()).Len(); math.Abs(float64(l)-75) > 1e-3 {
		t.Fatalf("expected distance 75 to the target; got %f", l)
	}
}

func TestCameraFrustumContainsTarget(t *testing.T) {
	cc := NewCameraController(WithRadius(40), WithTarget(mgl32.Vec3{5, 5, 5}))
	cam := NewCamera(WithController(cc), WithClip(0.1, 100))

	f := cam.Frustum()
	if !f.Contains(cc.Target()) {
		t.Fatal("expected the orbit target to be inside the frustum")
	}
	behind := cc.Position().Add(cc.Position().Sub(cc.Target()))
	if f.Contains(behind) {
		t.Fatal("expected a point behind the camera to be outside the frustum")
	}

	cc.Advance(math.Pi)
	cam.Update()
	if !cam.Frustum().Contains(cc.Target()) {
		t.Fatal("expected the target to stay visible after orbiting")
	}
}
