package cull

import (
	"math"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/go-gl/mathgl/mgl32"
)

// planeDistance evaluates ((nx*x + ny*y) + nz*z) + d. Every kernel sums in this order with
// products rounded to float32 so that all variants classify a volume identically.
func planeDistance(p *common.Plane, x, y, z float32) float32 {
	return float32(p.Normal[0]*x) + float32(p.Normal[1]*y) + float32(p.Normal[2]*z) + p.Distance
}

// boxMargin projects the half extents of a box onto the plane normal.
func boxMargin(p *common.Plane, ex, ey, ez float32) float32 {
	return float32(abs32(p.Normal[0])*ex) + float32(abs32(p.Normal[1])*ey) + float32(abs32(p.Normal[2])*ez)
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// SphereVisible is the scalar reference test: the sphere survives iff it lies strictly on the
// inside of every plane once its radius is added. Touching a plane counts as outside.
//
// Parameters:
//   - planes: the frustum planes
//   - center: sphere center
//   - radius: sphere radius
//
// Returns:
//   - bool: true if the sphere is at least partially inside the frustum
func SphereVisible(planes *[common.PlaneCount]common.Plane, center mgl32.Vec3, radius float32) bool {
	for i := range planes {
		if planeDistance(&planes[i], center[0], center[1], center[2])+radius <= 0 {
			return false
		}
	}
	return true
}

// AABBVisible is the scalar reference test for boxes, using the projected half extents as margin.
//
// Parameters:
//   - planes: the frustum planes
//   - center: box center
//   - extents: box half extents
//
// Returns:
//   - bool: true if the box is at least partially inside the frustum
func AABBVisible(planes *[common.PlaneCount]common.Plane, center, extents mgl32.Vec3) bool {
	for i := range planes {
		p := &planes[i]
		margin := boxMargin(p, extents[0], extents[1], extents[2])
		if planeDistance(p, center[0], center[1], center[2])+margin <= 0 {
			return false
		}
	}
	return true
}

// sphereVisibleBranchless evaluates all six planes and reduces them with a bitwise AND before the
// single branch taken by the caller.
func sphereVisibleBranchless(planes *[common.PlaneCount]common.Plane, x, y, z, radius float32) bool {
	v := bit(planeDistance(&planes[0], x, y, z)+radius > 0) &
		bit(planeDistance(&planes[1], x, y, z)+radius > 0) &
		bit(planeDistance(&planes[2], x, y, z)+radius > 0) &
		bit(planeDistance(&planes[3], x, y, z)+radius > 0) &
		bit(planeDistance(&planes[4], x, y, z)+radius > 0) &
		bit(planeDistance(&planes[5], x, y, z)+radius > 0)
	return v != 0
}

func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
