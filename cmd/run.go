package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/Carmen-Shannon/oxy-cull/engine/profiler"
	"github.com/Carmen-Shannon/oxy-cull/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cull/engine/scene"
	"github.com/urfave/cli"
)

// Run drives one variant headlessly with profiler output until the frame budget is spent or the
// process is interrupted.
func Run(ctx *cli.Context) error {
	setupLogging(ctx)

	pop, err := populationFromContext(ctx)
	if err != nil {
		return err
	}
	v, err := cull.ParseVariant(ctx.String("variant"))
	if err != nil {
		return err
	}
	frames := ctx.Int("frames")
	if frames < 0 {
		return fmt.Errorf("frames must not be negative; got %d", frames)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	counter := renderer.NewCountingSink()
	dump := renderer.NewDumpSink()
	var sink renderer.Sink = counter
	out := ctx.String("out")
	if out != "" {
		sink = renderer.Tee(counter, dump)
	}

	sc := scene.NewScene(pop.sceneOptions(v, sink, nil)...)
	prof := profiler.NewProfiler(profiler.WithInterval(ctx.Duration("interval")))
	stats := runFrames(runCtx, sc, prof, frames)
	sc.Close()

	logger.Noticef("%s: %d frames, %s transforms consumed, last pass %s visible in %s",
		v, stats.Frame, printer.Sprintf("%d", counter.Total()), printer.Sprintf("%d", counter.Last()), stats.CullTime)

	if out != "" {
		return writeDump(out, dump)
	}
	return nil
}

// runFrames ticks sc until frames ticks ran (0 = unbounded) or ctx is done, then flushes the
// in-flight pass. The returned stats describe the last consumed pass with the final frame index.
func runFrames(ctx context.Context, sc scene.Scene, prof *profiler.Profiler, frames int) scene.FrameStats {
	cam := newOrbitCamera(16.0 / 9.0)
	var last scene.FrameStats
	warned := false

	prev := time.Now()
	for frame := 0; frames == 0 || frame < frames; frame++ {
		if ctx.Err() != nil {
			logger.Notice("interrupted")
			break
		}

		now := time.Now()
		cam.Controller().Advance(float32(now.Sub(prev).Seconds()))
		prev = now
		cam.Update()

		stats := sc.Tick(cam.Frustum().Planes)
		if stats.Err != nil && !warned {
			logger.Warningf("frame %d: %v", stats.Frame, stats.Err)
			warned = true
		}
		prof.Tick(stats)
		last = merge(last, stats)
	}

	return merge(last, sc.Flush())
}

// merge keeps the frame index of the newest tick and the pass details of the newest consumption.
func merge(last, stats scene.FrameStats) scene.FrameStats {
	frame := max(last.Frame, stats.Frame)
	if stats.Consumed {
		last = stats
	}
	last.Frame = frame
	return last
}

func writeDump(path string, dump *renderer.DumpSink) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := dump.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Noticef("wrote %d transforms (%s bytes) to %s", dump.Len(), printer.Sprintf("%d", n), path)
	return nil
}
