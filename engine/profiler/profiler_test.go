package profiler

import (
	"runtime"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/Carmen-Shannon/oxy-cull/engine/scene"
)

func TestProfilerReportsOncePerInterval(t *testing.T) {
	p := NewProfiler(WithInterval(time.Second))
	start := p.lastTime

	frame := func(i int, elapsed time.Duration) scene.FrameStats {
		return scene.FrameStats{
			Frame:           uint64(i),
			Variant:         cullVariant,
			Objects:         1000,
			Consumed:        true,
			ConsumedVariant: cullVariant,
			Visible:         100 + i,
			CullTime:        elapsed,
		}
	}

	for i := range 9 {
		if p.tickAt(frame(i, time.Millisecond), start.Add(time.Duration(i)*100*time.Millisecond)) {
			t.Fatalf("unexpected report at frame %d", i)
		}
	}
	if !p.tickAt(frame(9, 3*time.Millisecond), start.Add(time.Second)) {
		t.Fatal("expected a report once the interval elapsed")
	}

	r := p.Report()
	if r.FPS != 10 {
		t.Errorf("expected 10 FPS; got %f", r.FPS)
	}
	if r.Visible != 109 || r.Objects != 1000 || r.Variant != cullVariant {
		t.Errorf("unexpected frame summary: %+v", r)
	}
	if exp := 1200 * time.Microsecond; r.AvgCullTime != exp {
		t.Errorf("expected average cull time %s; got %s", exp, r.AvgCullTime)
	}
	if r.MaxCullTime != 3*time.Millisecond {
		t.Errorf("expected max cull time 3ms; got %s", r.MaxCullTime)
	}
}

const cullVariant = cull.VariantSoA

func TestFirstReportExcludesEarlierAllocations(t *testing.T) {
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	// 64 MB allocated before the profiler starts must not show up in its first report.
	sink := make([][]byte, 0, 64)
	for range 64 {
		sink = append(sink, make([]byte, 1<<20))
	}

	p := NewProfiler(WithInterval(time.Second))
	if p.lastTotalAlloc < before.TotalAlloc+64<<20 {
		t.Fatalf("expected the allocation baseline to include earlier allocations; got %d", p.lastTotalAlloc)
	}

	if !p.tickAt(scene.FrameStats{}, p.lastTime.Add(time.Second)) {
		t.Fatal("expected a report once the interval elapsed")
	}
	if r := p.Report(); r.AllocRateMB >= 64 {
		t.Fatalf("expected the first alloc rate to exclude earlier allocations; got %.2f MB/s", r.AllocRateMB)
	}
	runtime.KeepAlive(sink)
}
