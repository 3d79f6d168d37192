package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/Carmen-Shannon/oxy-cull/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cull/log"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("scene")

const (
	// DefaultVariant is the culling strategy selected when none is configured.
	DefaultVariant = cull.VariantBatchedBranchless

	// DefaultCount is the number of volumes spawned when none is configured.
	DefaultCount = 10_000

	// DefaultSpawnRadius is the radius of the ball volumes are spawned in.
	DefaultSpawnRadius float32 = 100_000
)

// Config is the requested population and strategy. Changes take effect at the next Tick.
type Config struct {
	Variant     cull.Variant
	Count       int
	SpawnRadius float32
	Radius      float32
	Extents     mgl32.Vec3
}

// Scene owns a spawned population, the kernel that culls it and every transform buffer the kernel
// produces. Each Tick consumes the previous pass, applies configuration changes and issues one new
// pass, so culling and consumption run one frame apart. Synchronous variants are consumed in the
// frame that issued them.
//
// Thread-safe for concurrent access.
type Scene interface {
	// Tick runs one frame against the given planes.
	//
	// Parameters:
	//   - planes: the six frustum planes for this frame
	//
	// Returns:
	//   - FrameStats: what happened during the frame
	Tick(planes [common.PlaneCount]common.Plane) FrameStats

	// Flush consumes the in-flight pass, if any.
	//
	// Returns:
	//   - FrameStats: the consumed pass's statistics (Consumed is false when nothing was in flight)
	Flush() FrameStats

	// Close flushes and drops the population, returning to StateUninitialized. Workers of a
	// dispatcher the scene built itself are stopped; a later Tick builds a new one.
	Close()

	// State returns the lifecycle state.
	State() State

	// Config returns the requested configuration.
	Config() Config

	// SpawnedVariant returns the variant of the current population, or VariantUninitialized.
	SpawnedVariant() cull.Variant

	// SpawnedCount returns the object count of the current population.
	SpawnedCount() int

	// SetVariant requests a different culling strategy.
	//
	// Parameters:
	//   - v: the variant; an invalid one panics at the next Tick
	SetVariant(v cull.Variant)

	// SetCount requests a different object count. Zero pauses the frame loop.
	//
	// Parameters:
	//   - n: the object count
	SetCount(n int)

	// SetSpawnRadius requests a different spawn radius.
	//
	// Parameters:
	//   - r: the radius
	SetSpawnRadius(r float32)

	// Store returns the current volume store, or nil.
	Store() *cull.VolumeStore
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	cfg        Config
	sink       renderer.Sink
	dispatcher cull.Dispatcher
	batchSize  int
	workers    int

	// ownsDispatcher is set when the scene built dispatcher itself and must close it.
	ownsDispatcher bool

	state    State
	spawned  Config
	store    *cull.VolumeStore
	kernel   cull.Kernel
	inFlight *cull.Pass
	frame    uint64
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a Scene in StateUninitialized. Volumes are spawned by the first Tick.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu: &sync.Mutex{},
		cfg: Config{
			Variant:     DefaultVariant,
			Count:       DefaultCount,
			SpawnRadius: DefaultSpawnRadius,
			Radius:      cull.SphereRadius,
			Extents:     cull.DefaultExtents,
		},
		state: StateUninitialized,
	}

	for _, option := range options {
		option(s)
	}

	if s.sink == nil {
		s.sink = renderer.NewCountingSink()
	}

	return s
}

// ensureDispatcher builds the scene's own dispatcher on first use, or again after Close.
func (s *scene) ensureDispatcher() {
	if s.dispatcher != nil {
		return
	}
	var opts []cull.DispatcherBuilderOption
	if s.batchSize > 0 {
		opts = append(opts, cull.WithBatchSize(s.batchSize))
	}
	if s.workers > 0 {
		opts = append(opts, cull.WithWorkers(s.workers))
	}
	s.dispatcher = cull.NewDispatcher(opts...)
	s.ownsDispatcher = true
}

func (s *scene) Tick(planes [common.PlaneCount]common.Plane) FrameStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame++
	stats := FrameStats{Frame: s.frame}

	// The previous pass must be consumed and released before anything it reads is replaced.
	if s.inFlight != nil {
		s.consume(s.inFlight, &stats)
		s.inFlight = nil
	}

	if s.cfg.Count <= 0 {
		stats.Skipped = true
		return stats
	}

	if s.needsRespawn() {
		s.respawn()
		stats.Respawned = true
	}

	pass := s.kernel.Cull(planes)
	stats.Variant = s.spawned.Variant
	stats.Objects = s.store.Len()

	if s.kernel.Synchronous() {
		s.consume(pass, &stats)
	} else {
		s.inFlight = pass
	}

	return stats
}

func (s *scene) needsRespawn() bool {
	return s.state == StateUninitialized || s.cfg != s.spawned
}

// respawn rebuilds the population for the requested configuration. Callers guarantee no pass is
// in flight.
func (s *scene) respawn() {
	if !s.cfg.Variant.Valid() {
		panic(fmt.Sprintf("scene: cannot spawn with variant %s", s.cfg.Variant))
	}

	if !s.cfg.Variant.Synchronous() {
		s.ensureDispatcher()
	}
	kernel := cull.NewKernel(s.cfg.Variant, s.dispatcher)
	centers := Spawn(s.cfg.Count, s.cfg.SpawnRadius, Seed)
	store := cull.NewVolumeStore(kernel.Layout(), centers,
		cull.WithRadius(s.cfg.Radius),
		cull.WithExtents(s.cfg.Extents),
	)
	kernel.Prepare(store)

	logger.Infof("spawned %d volumes for %s (layout %s, spawn radius %.0f)",
		s.cfg.Count, s.cfg.Variant, kernel.Layout(), s.cfg.SpawnRadius)
	if !s.cfg.Variant.Supported() {
		logger.Warningf("%s needs %s, which this host lacks; passes will be empty",
			s.cfg.Variant, s.cfg.Variant.InstructionSet())
	}

	s.kernel = kernel
	s.store = store
	s.spawned = s.cfg
	s.state = StateSpawned
}

// consume waits for pass, hands its buffer to the sink and releases it.
func (s *scene) consume(pass *cull.Pass, stats *FrameStats) {
	buf := pass.Await()
	defer buf.Release()

	stats.Consumed = true
	stats.ConsumedVariant = pass.Variant()
	stats.CullTime = pass.Elapsed()
	stats.Err = pass.Err()
	stats.Visible = buf.Len()

	s.sink.Consume(buf.Transforms())
}

func (s *scene) Flush() FrameStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := FrameStats{Frame: s.frame}
	if s.inFlight != nil {
		s.consume(s.inFlight, &stats)
		s.inFlight = nil
	}
	return stats
}

func (s *scene) Close() {
	s.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = nil
	s.kernel = nil
	s.spawned = Config{}
	s.state = StateUninitialized

	// A dispatcher passed in with WithDispatcher belongs to the caller.
	if s.ownsDispatcher {
		s.dispatcher.Close()
		s.dispatcher = nil
		s.ownsDispatcher = false
	}
}

func (s *scene) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *scene) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *scene) SpawnedVariant() cull.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawned.Variant
}

func (s *scene) SpawnedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawned.Count
}

func (s *scene) SetVariant(v cull.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Variant = v
}

func (s *scene) SetCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Count = max(n, 0)
}

func (s *scene) SetSpawnRadius(r float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.SpawnRadius = r
}

func (s *scene) Store() *cull.VolumeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}
