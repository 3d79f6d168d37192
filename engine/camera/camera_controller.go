package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController orbits a camera around a target on a sphere of configurable radius.
// Position is derived from the target plus spherical coordinates (radius, azimuth, elevation).
type CameraController interface {
	// Position returns the camera's world position.
	Position() mgl32.Vec3

	// Target returns the look-at point.
	Target() mgl32.Vec3

	// SetTarget moves the look-at point, keeping the spherical offset.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target mgl32.Vec3)

	// Zoom moves the camera toward (positive) or away from (negative) the target, clamped to the
	// radius limits.
	//
	// Parameters:
	//   - delta: scroll delta
	Zoom(delta float32)

	// OrbitLeft rotates the camera left around the target by the orbit speed.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by the orbit speed.
	OrbitRight()

	// OrbitUp raises the camera by the orbit speed, clamped to the elevation limits.
	OrbitUp()

	// OrbitDown lowers the camera by the orbit speed, clamped to the elevation limits.
	OrbitDown()

	// Drag rotates the camera by a mouse movement scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx: horizontal movement in pixels
	//   - dy: vertical movement in pixels
	Drag(dx, dy float32)

	// Advance rotates the camera around the target at a constant angular speed.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)

	// Radius returns the orbit radius.
	Radius() float32

	// SetRadius sets the orbit radius, clamped to the radius limits.
	//
	// Parameters:
	//   - radius: distance from the target
	SetRadius(radius float32)

	// Azimuth returns the horizontal angle in radians.
	Azimuth() float32

	// Elevation returns the vertical angle in radians.
	Elevation() float32
}
