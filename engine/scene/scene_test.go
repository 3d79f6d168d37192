package scene

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/go-gl/mathgl/mgl32"
)

type recordingSink struct {
	mu     sync.Mutex
	frames [][]mgl32.Vec3
}

func (r *recordingSink) Consume(transforms []mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	frame := make([]mgl32.Vec3, len(transforms))
	for i, m := range transforms {
		frame[i] = common.TransformTranslation(m)
	}
	r.frames = append(r.frames, frame)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func testPlanes() [common.PlaneCount]common.Plane {
	viewProj := common.ViewProjection(
		mgl32.Vec3{0, 0, 50},
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 1, 0},
		mgl32.DegToRad(60), 1, 0.1, 150,
	)
	return common.ExtractFrustumFromMatrix(viewProj).Planes
}

func referenceVisible(store *cull.VolumeStore, planes [common.PlaneCount]common.Plane) int {
	n := 0
	for i := 0; i < store.Len(); i++ {
		if store.Visible(&planes, i) {
			n++
		}
	}
	return n
}

func TestTickPipelinesParallelVariants(t *testing.T) {
	sink := &recordingSink{}
	s := NewScene(
		WithVariant(cull.VariantParallel),
		WithCount(500),
		WithSpawnRadius(200),
		WithWorkers(4),
		WithSink(sink),
	)
	defer s.Close()
	planes := testPlanes()

	if s.State() != StateUninitialized {
		t.Fatalf("expected a new scene to be uninitialized; got %s", s.State())
	}

	first := s.Tick(planes)
	if !first.Respawned || first.Consumed {
		t.Fatalf("expected the first frame to spawn and issue without consuming; got %+v", first)
	}
	if first.Objects != 500 || s.State() != StateSpawned || s.SpawnedVariant() != cull.VariantParallel {
		t.Fatalf("unexpected state after first frame: %+v (%s)", first, s.State())
	}
	if sink.count() != 0 {
		t.Fatalf("expected the sink to be untouched; got %d buffers", sink.count())
	}

	second := s.Tick(planes)
	if !second.Consumed || second.Respawned {
		t.Fatalf("expected the second frame to consume the first pass; got %+v", second)
	}
	want := referenceVisible(s.Store(), planes)
	if second.Visible != want {
		t.Fatalf("expected %d visible; got %d", want, second.Visible)
	}
	if sink.count() != 1 || len(sink.frames[0]) != want {
		t.Fatalf("expected one buffer of %d transforms in the sink", want)
	}

	final := s.Flush()
	if !final.Consumed || final.Visible != want {
		t.Fatalf("expected Flush to consume the second pass; got %+v", final)
	}
	if again := s.Flush(); again.Consumed {
		t.Fatal("expected nothing left to flush")
	}
}

func TestTickConsumesSynchronousVariantsSameFrame(t *testing.T) {
	for _, v := range []cull.Variant{cull.VariantNoCull, cull.VariantSequential, cull.VariantSequentialBranchless} {
		sink := &recordingSink{}
		s := NewScene(WithVariant(v), WithCount(64), WithSpawnRadius(100), WithSink(sink))
		defer s.Close()
		stats := s.Tick(testPlanes())
		if !stats.Consumed || stats.ConsumedVariant != v {
			t.Errorf("%s: expected the pass to be consumed in the same frame; got %+v", v, stats)
		}
		if sink.count() != 1 {
			t.Errorf("%s: expected one buffer; got %d", v, sink.count())
		}
		if s.Flush().Consumed {
			t.Errorf("%s: expected nothing in flight", v)
		}
	}
}

func TestVariantChangeRespawnsAfterConsumingStalePass(t *testing.T) {
	sink := &recordingSink{}
	s := NewScene(WithVariant(cull.VariantBatchedBranchless), WithCount(1003), WithSpawnRadius(150), WithSink(sink))
	defer s.Close()
	planes := testPlanes()

	s.Tick(planes)
	s.SetVariant(cull.VariantSoA)
	if s.SpawnedVariant() != cull.VariantBatchedBranchless {
		t.Fatal("expected SetVariant to be deferred to the next frame")
	}

	stats := s.Tick(planes)
	if !stats.Consumed || stats.ConsumedVariant != cull.VariantBatchedBranchless {
		t.Fatalf("expected the stale pass to be consumed first; got %+v", stats)
	}
	if !stats.Respawned || stats.Variant != cull.VariantSoA || s.Store().Layout() != cull.LayoutSphereSoA {
		t.Fatalf("expected a respawn into the SoA layout; got %+v", stats)
	}

	soa := s.Flush()
	if soa.Visible != stats.Visible {
		t.Fatalf("expected both strategies to see %d volumes of the same population; got %d", stats.Visible, soa.Visible)
	}
}

func TestCountChangeRespawns(t *testing.T) {
	s := NewScene(WithVariant(cull.VariantSequential), WithCount(10), WithSpawnRadius(10))
	defer s.Close()
	s.Tick(testPlanes())

	s.SetCount(25)
	stats := s.Tick(testPlanes())
	if !stats.Respawned || stats.Objects != 25 || s.SpawnedCount() != 25 {
		t.Fatalf("expected a respawn with 25 objects; got %+v", stats)
	}

	s.SetSpawnRadius(20)
	if stats := s.Tick(testPlanes()); !stats.Respawned {
		t.Fatal("expected a spawn radius change to respawn")
	}
	if stats := s.Tick(testPlanes()); stats.Respawned {
		t.Fatal("expected an unchanged configuration to keep the population")
	}
}

func TestZeroCountSkipsFrames(t *testing.T) {
	sink := &recordingSink{}
	s := NewScene(WithVariant(cull.VariantParallel), WithCount(100), WithSpawnRadius(100), WithSink(sink))
	defer s.Close()
	s.Tick(testPlanes())

	s.SetCount(0)
	stats := s.Tick(testPlanes())
	if !stats.Skipped || !stats.Consumed {
		t.Fatalf("expected the in-flight pass to be consumed and the frame skipped; got %+v", stats)
	}
	if s.Flush().Consumed {
		t.Fatal("expected no pass to be issued while the count is zero")
	}

	s.SetCount(100)
	if stats := s.Tick(testPlanes()); stats.Skipped || stats.Respawned {
		t.Fatalf("expected the existing population to resume; got %+v", stats)
	}
}

func TestInvalidVariantPanics(t *testing.T) {
	s := NewScene(WithVariant(cull.VariantUninitialized), WithCount(1))
	defer func() {
		if recover() == nil {
			t.Fatal("expected Tick to panic for an uninitialized variant")
		}
	}()
	s.Tick(testPlanes())
}

func TestCloseReturnsToUninitialized(t *testing.T) {
	sink := &recordingSink{}
	s := NewScene(WithVariant(cull.VariantSoA), WithCount(40), WithSink(sink))
	s.Tick(testPlanes())
	s.Close()

	if s.State() != StateUninitialized || s.Store() != nil {
		t.Fatalf("expected an empty uninitialized scene; got %s", s.State())
	}
	if sink.count() != 1 {
		t.Fatalf("expected Close to consume the in-flight pass; got %d buffers", sink.count())
	}
	if stats := s.Tick(testPlanes()); !stats.Respawned {
		t.Fatal("expected the next frame to respawn")
	}
	s.Close()
}

// waitForGoroutines polls until the goroutine count drops to at most baseline.
func waitForGoroutines(t *testing.T, baseline int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > baseline {
		if time.Now().After(deadline) {
			t.Fatalf("expected at most %d goroutines; got %d", baseline, runtime.NumGoroutine())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCloseStopsOwnWorkers(t *testing.T) {
	baseline := runtime.NumGoroutine()

	for _, v := range cull.Variants() {
		if !v.Supported() {
			continue
		}
		s := NewScene(WithVariant(v), WithCount(64), WithSpawnRadius(50), WithWorkers(8))
		s.Tick(testPlanes())
		s.Tick(testPlanes())
		s.Close()
	}

	waitForGoroutines(t, baseline)
}

func TestCloseLeavesSharedDispatcherRunning(t *testing.T) {
	d := cull.NewDispatcher(cull.WithWorkers(2))
	defer d.Close()

	a := NewScene(WithVariant(cull.VariantParallel), WithCount(64), WithSpawnRadius(50), WithDispatcher(d))
	a.Tick(testPlanes())
	a.Close()

	// Dispatching on a closed dispatcher panics, so a second scene proves it is still open.
	sink := &recordingSink{}
	b := NewScene(WithVariant(cull.VariantSoA), WithCount(64), WithSpawnRadius(50), WithDispatcher(d), WithSink(sink))
	b.Tick(testPlanes())
	b.Close()
	if sink.count() != 1 {
		t.Fatalf("expected one consumed buffer; got %d", sink.count())
	}
}

func TestSpawnIsDeterministicAndBounded(t *testing.T) {
	a := Spawn(1000, 250, Seed)
	b := Spawn(1000, 250, Seed)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("center %d differs between runs: %v vs %v", i, a[i], b[i])
		}
		if l := a[i].Len(); l > 250.001 {
			t.Fatalf("center %d lies outside the spawn radius: %f", i, l)
		}
	}
	if c := Spawn(1000, 250, Seed+1); c[0] == a[0] {
		t.Fatal("expected a different seed to produce a different population")
	}
	if len(Spawn(0, 10, Seed)) != 0 {
		t.Fatal("expected no centers for a zero count")
	}
}
