package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PlaneCount is the number of half-space planes bounding a view frustum.
const PlaneCount = 6

// Plane represents a half-space in 3D space using the equation: n·p + d = 0
// where n is the unit normal and d is the signed distance from the plane to the origin
// along n. Points with n·p + d > 0 lie on the inside.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [PlaneCount]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// NewPlane builds a plane from a (not necessarily unit) normal and a distance, normalizing both
// so the normal ends up unit-length.
//
// Parameters:
//   - normal: the plane normal pointing towards the inside half-space
//   - distance: signed distance term for the unnormalized normal
//
// Returns:
//   - Plane: the normalized plane
func NewPlane(normal mgl32.Vec3, distance float32) Plane {
	p := Plane{Normal: normal, Distance: distance}
	p.normalize()
	return p
}

// SignedDistance returns n·point + d for the plane.
//
// Parameters:
//   - point: the point to evaluate
//
// Returns:
//   - float32: positive inside, negative outside, zero on the plane
func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix (column-major, as produced by mgl32).
// Uses the Gribb/Hartmann method for plane extraction with OpenGL clip space (z in [-1, 1]).
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined view-projection matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	r0, r1, r2, r3 := viewProj.Rows()

	// Left: row3 + row0, Right: row3 - row0
	f.Planes[FrustumLeft] = NewPlane(r3.Add(r0).Vec3(), r3[3]+r0[3])
	f.Planes[FrustumRight] = NewPlane(r3.Sub(r0).Vec3(), r3[3]-r0[3])

	// Bottom: row3 + row1, Top: row3 - row1
	f.Planes[FrustumBottom] = NewPlane(r3.Add(r1).Vec3(), r3[3]+r1[3])
	f.Planes[FrustumTop] = NewPlane(r3.Sub(r1).Vec3(), r3[3]-r1[3])

	// Near: row3 + row2, Far: row3 - row2
	f.Planes[FrustumNear] = NewPlane(r3.Add(r2).Vec3(), r3[3]+r2[3])
	f.Planes[FrustumFar] = NewPlane(r3.Sub(r2).Vec3(), r3[3]-r2[3])

	return f
}

// Contains reports whether point lies strictly inside every plane of the frustum.
//
// Parameters:
//   - point: the point to test
//
// Returns:
//   - bool: true if the point is inside all six half-spaces
func (f Frustum) Contains(point mgl32.Vec3) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(point) <= 0 {
			return false
		}
	}
	return true
}

// normalize rescales the plane so that the normal has unit length.
func (p *Plane) normalize() {
	length := p.Normal.Len()
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
}
