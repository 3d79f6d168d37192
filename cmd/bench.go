package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/Carmen-Shannon/oxy-cull/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cull/engine/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ErrVisibleMismatch is returned by Bench when two variants disagree on a frame's visible count.
var ErrVisibleMismatch = errors.New("variants disagree on visible counts")

// benchResult holds the per-variant outcome of a benchmark run.
type benchResult struct {
	variant cull.Variant
	skipped bool

	// visible is the visible count of every consumed pass, in issue order.
	visible []int
	min     time.Duration
	max     time.Duration
	total   time.Duration
	err     error
}

func (r benchResult) avg() time.Duration {
	if len(r.visible) == 0 {
		return 0
	}
	return r.total / time.Duration(len(r.visible))
}

func (r benchResult) totalVisible() int {
	sum := 0
	for _, n := range r.visible {
		sum += n
	}
	return sum
}

// Bench culls the same orbiting camera path with every selected variant and reports timings.
func Bench(ctx *cli.Context) error {
	setupLogging(ctx)

	pop, err := populationFromContext(ctx)
	if err != nil {
		return err
	}
	variants, err := parseVariants(ctx.StringSlice("variant"))
	if err != nil {
		return err
	}
	frames := ctx.Int("frames")
	if frames <= 0 {
		return fmt.Errorf("bench needs a positive frame count; got %d", frames)
	}

	logger.Noticef("benchmarking %d variant(s) over %s objects, %d frames",
		len(variants), printer.Sprintf("%d", pop.count), frames)

	// One pool serves every variant, so workers are started once per benchmark.
	d := pop.newDispatcher()
	defer d.Close()

	results := make([]benchResult, 0, len(variants))
	for _, v := range variants {
		r := benchVariant(v, pop, d, frames)
		if r.skipped {
			logger.Warningf("skipping %s: host lacks %s", v, v.InstructionSet())
		}
		results = append(results, r)
	}

	displayBenchResults(results, frames)
	return checkAgreement(results)
}

// benchVariant runs frames ticks of one variant and flushes the final pass, so every issued pass is
// measured exactly once.
func benchVariant(v cull.Variant, pop population, d cull.Dispatcher, frames int) benchResult {
	r := benchResult{variant: v}
	if !v.Supported() {
		r.skipped = true
		return r
	}

	sink := renderer.NewCountingSink()
	sc := scene.NewScene(pop.sceneOptions(v, sink, d)...)
	defer sc.Close()
	cam := newOrbitCamera(16.0 / 9.0)

	record := func(stats scene.FrameStats) {
		if !stats.Consumed {
			return
		}
		if stats.Err != nil && r.err == nil {
			r.err = stats.Err
		}
		if len(r.visible) == 0 || stats.CullTime < r.min {
			r.min = stats.CullTime
		}
		r.max = max(r.max, stats.CullTime)
		r.total += stats.CullTime
		r.visible = append(r.visible, stats.Visible)
	}

	for range frames {
		cam.Controller().Advance(frameDelta)
		cam.Update()
		record(sc.Tick(cam.Frustum().Planes))
	}
	record(sc.Flush())

	logger.Infof("%s: %d passes, avg %s", v, len(r.visible), r.avg())
	return r
}

// checkAgreement compares every measured variant's per-frame visible counts against the first
// variant testing the same volume kind. Sphere and box variants are compared separately; the no-cull
// variant emits every object and is left out.
func checkAgreement(results []benchResult) error {
	refs := make(map[bool]*benchResult)
	for i := range results {
		r := &results[i]
		if r.skipped {
			continue
		}
		if r.err != nil {
			return fmt.Errorf("%s: %w", r.variant, r.err)
		}
		if r.variant == cull.VariantNoCull {
			continue
		}

		boxes := r.variant.Layout().IsAABB()
		ref, ok := refs[boxes]
		if !ok {
			refs[boxes] = r
			continue
		}
		if len(r.visible) != len(ref.visible) {
			return fmt.Errorf("%w: %s measured %d passes, %s measured %d",
				ErrVisibleMismatch, ref.variant, len(ref.visible), r.variant, len(r.visible))
		}
		for frame := range r.visible {
			if r.visible[frame] != ref.visible[frame] {
				return fmt.Errorf("%w: frame %d: %s saw %d, %s saw %d",
					ErrVisibleMismatch, frame+1, ref.variant, ref.visible[frame], r.variant, r.visible[frame])
			}
		}
	}
	return nil
}

func displayBenchResults(results []benchResult, frames int) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Variant", "Layout", "Execution", "Min", "Avg", "Max", "Visible/frame"})
	for _, r := range results {
		if r.skipped {
			table.Append([]string{r.variant.String(), r.variant.Layout().String(), r.variant.Execution(), "-", "-", "-", "unsupported"})
			continue
		}
		table.Append([]string{
			r.variant.String(),
			r.variant.Layout().String(),
			r.variant.Execution(),
			r.min.String(),
			r.avg().String(),
			r.max.String(),
			printer.Sprintf("%d", r.totalVisible()/max(len(r.visible), 1)),
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "FRAMES", fmt.Sprintf("%d", frames)})

	table.Render()
	logger.Noticef("cull statistics\n%s", buf.String())
}
