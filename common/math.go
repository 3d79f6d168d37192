package common

import (
	"github.com/go-gl/mathgl/mgl32"
	"honnef.co/go/safeish"
)

// InstanceTransform builds the per-instance output record for a surviving volume: a pure translation
// to the volume's center with identity rotation and unit scale.
//
// Parameters:
//   - center: world-space center of the volume
//
// Returns:
//   - mgl32.Mat4: column-major translation matrix
func InstanceTransform(center mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(center[0], center[1], center[2])
}

// TransformTranslation returns the translation column of an instance transform.
func TransformTranslation(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}

// TransformsToBytes reinterprets a slice of transforms as raw bytes for GPU uploads and dumps.
// The returned slice shares memory with the input.
//
// Parameters:
//   - transforms: column-major matrices, 64 bytes each
//
// Returns:
//   - []byte: byte view of the input data, or nil if input is empty
func TransformsToBytes(transforms []mgl32.Mat4) []byte {
	if len(transforms) == 0 {
		return nil
	}
	return safeish.SliceCast[[]byte](transforms)
}

// ViewProjection returns Projection * View for a perspective camera looking from eye to target.
//
// Parameters:
//   - eye: camera position
//   - target: point the camera looks at
//   - up: world up vector
//   - fovY: vertical field of view in radians
//   - aspect: viewport width / height
//   - near: near clip distance
//   - far: far clip distance
//
// Returns:
//   - mgl32.Mat4: combined view-projection matrix (OpenGL clip conventions)
func ViewProjection(eye, target, up mgl32.Vec3, fovY, aspect, near, far float32) mgl32.Mat4 {
	proj := mgl32.Perspective(fovY, aspect, near, far)
	view := mgl32.LookAtV(eye, target, up)
	return proj.Mul4(view)
}
