package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/Carmen-Shannon/oxy-cull/engine/profiler"
	"github.com/Carmen-Shannon/oxy-cull/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cull/engine/scene"
)

func TestRunFramesConsumesEveryPass(t *testing.T) {
	counter := renderer.NewCountingSink()
	pop := population{count: 500, spawnRadius: 800}
	sc := scene.NewScene(pop.sceneOptions(cull.VariantParallelBranchless, counter, nil)...)
	defer sc.Close()

	stats := runFrames(context.Background(), sc, profiler.NewProfiler(profiler.WithInterval(time.Hour)), 5)
	if stats.Frame != 5 {
		t.Fatalf("expected 5 frames; got %d", stats.Frame)
	}
	if !stats.Consumed || stats.ConsumedVariant != cull.VariantParallelBranchless {
		t.Fatalf("expected the last pass to be consumed; got %+v", stats)
	}
	if counter.Frames() != 5 {
		t.Fatalf("expected 5 consumed buffers; got %d", counter.Frames())
	}
	if counter.Last() != stats.Visible {
		t.Fatalf("expected the sink to see %d transforms; got %d", stats.Visible, counter.Last())
	}
}

func TestRunFramesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := scene.NewScene(population{count: 16, spawnRadius: 10}.sceneOptions(cull.VariantSequential, renderer.NewCountingSink(), nil)...)
	defer sc.Close()

	stats := runFrames(ctx, sc, profiler.NewProfiler(), 0)
	if stats.Frame != 0 || stats.Consumed {
		t.Fatalf("expected no frames after cancellation; got %+v", stats)
	}
}

func TestWriteDump(t *testing.T) {
	dump := renderer.NewDumpSink()
	sc := scene.NewScene(population{count: 64, spawnRadius: 5}.sceneOptions(cull.VariantNoCull, dump, nil)...)
	cam := newOrbitCamera(1)
	sc.Tick(cam.Frustum().Planes)
	sc.Close()

	path := filepath.Join(t.TempDir(), "visible.bin")
	if err := writeDump(path, dump); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 64*64 {
		t.Fatalf("expected %d bytes; got %d", 64*64, len(data))
	}

	var want bytes.Buffer
	dump.WriteTo(&want)
	if !bytes.Equal(data, want.Bytes()) {
		t.Fatal("expected the file to match the dump")
	}
}
