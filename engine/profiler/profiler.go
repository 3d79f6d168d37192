package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/Carmen-Shannon/oxy-cull/engine/scene"
	"github.com/Carmen-Shannon/oxy-cull/log"
)

var logger = log.New("profiler")

// Report is the summary of one profiling interval.
type Report struct {
	FPS         float64
	Variant     cull.Variant
	Objects     int
	Visible     int
	AvgCullTime time.Duration
	MaxCullTime time.Duration
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate, culling time and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	consumed       int
	cullTotal      time.Duration
	cullMax        time.Duration
	last           scene.FrameStats
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	report         Report
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often a report is produced.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}

	// Rates in the first report cover only the first interval, not everything since process start.
	runtime.ReadMemStats(&p.memStats)
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return p
}

// Tick should be called once per frame with the frame's statistics.
// Logs a report when the update interval has elapsed.
//
// Parameters:
//   - stats: the frame statistics returned by the scene
//
// Returns:
//   - bool: true if a report was produced this tick, false otherwise
func (p *Profiler) Tick(stats scene.FrameStats) bool {
	return p.tickAt(stats, time.Now())
}

func (p *Profiler) tickAt(stats scene.FrameStats, now time.Time) bool {
	p.frameCount++
	if stats.Consumed {
		p.consumed++
		p.cullTotal += stats.CullTime
		p.cullMax = max(p.cullMax, stats.CullTime)
		p.last = stats
	}
	if stats.Objects > 0 {
		p.last.Objects = stats.Objects
		p.last.Variant = stats.Variant
	}

	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: bytes of allocated heap objects (live memory)
	// TotalAlloc: cumulative bytes allocated for heap objects (tracks churn)
	// Sys: total bytes of memory obtained from the OS
	r := Report{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		Variant:     p.last.Variant,
		Objects:     p.last.Objects,
		Visible:     p.last.Visible,
		MaxCullTime: p.cullMax,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:     p.memStats.NumGC,
	}
	if p.consumed > 0 {
		r.AvgCullTime = p.cullTotal / time.Duration(p.consumed)
	}
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	logger.Noticef("FPS: %.2f | %s | Visible: %d/%d | Cull: avg %s, max %s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		r.FPS, r.Variant, r.Visible, r.Objects, r.AvgCullTime, r.MaxCullTime,
		r.HeapMB, r.AllocRateMB, r.GCCount, r.LastPauseUs, r.MaxPauseUs, r.SysMB)

	p.report = r
	p.frameCount = 0
	p.consumed = 0
	p.cullTotal = 0
	p.cullMax = 0
	p.lastTime = now
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Report returns the most recent report.
func (p *Profiler) Report() Report {
	return p.report
}
