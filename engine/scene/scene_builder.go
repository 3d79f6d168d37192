package scene

import (
	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/Carmen-Shannon/oxy-cull/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithVariant sets the initial culling strategy.
//
// Parameters:
//   - v: the variant
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithVariant(v cull.Variant) SceneBuilderOption {
	return func(s *scene) {
		s.cfg.Variant = v
	}
}

// WithCount sets the initial object count. Zero starts the scene paused.
//
// Parameters:
//   - n: the object count
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCount(n int) SceneBuilderOption {
	return func(s *scene) {
		s.cfg.Count = max(n, 0)
	}
}

// WithSpawnRadius sets the radius of the ball volumes are spawned in.
//
// Parameters:
//   - r: the radius
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSpawnRadius(r float32) SceneBuilderOption {
	return func(s *scene) {
		s.cfg.SpawnRadius = r
	}
}

// WithVolumeSize sets the sphere radius and box half extents of every spawned volume.
//
// Parameters:
//   - radius: the bounding sphere radius
//   - extents: the box half extents
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithVolumeSize(radius float32, extents mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.cfg.Radius = radius
		s.cfg.Extents = extents
	}
}

// WithBatchSize sets the per-task batch size of the scene's own dispatcher. Ignored when
// WithDispatcher is used.
//
// Parameters:
//   - n: objects per batch
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBatchSize(n int) SceneBuilderOption {
	return func(s *scene) {
		s.batchSize = n
	}
}

// WithWorkers sets the worker count of the scene's own dispatcher. Ignored when WithDispatcher is
// used.
//
// Parameters:
//   - n: the number of worker tasks per pass
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.workers = n
	}
}

// WithDispatcher shares an existing dispatcher, e.g. between scenes of a benchmark. The caller
// keeps ownership: Close leaves it running.
//
// Parameters:
//   - d: the dispatcher
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDispatcher(d cull.Dispatcher) SceneBuilderOption {
	return func(s *scene) {
		s.dispatcher = d
	}
}

// WithSink sets the consumer of every transform buffer. Defaults to a renderer.CountingSink.
//
// Parameters:
//   - sink: the sink
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSink(sink renderer.Sink) SceneBuilderOption {
	return func(s *scene) {
		s.sink = sink
	}
}
