package cmd

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/Carmen-Shannon/oxy-cull/engine/profiler"
	"github.com/Carmen-Shannon/oxy-cull/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cull/engine/scene"
	"github.com/Carmen-Shannon/oxy-cull/engine/window"
	"github.com/urfave/cli"
)

// minViewCount is the count restored by the up arrow after the population was scaled to zero.
const minViewCount = 1_000

// viewerControls maps key presses to scene configuration.
//
// Keys 1..9, 0, - and = select the first twelve variants; left and right cycle through all of them.
// Up doubles the object count, down halves it (reaching zero pauses the frame loop). Space toggles
// the automatic orbit and R restores the initial count.
type viewerControls struct {
	variants     []cull.Variant
	index        int
	count        int
	initialCount int
	orbit        bool
}

func newViewerControls(v cull.Variant, count int) *viewerControls {
	c := &viewerControls{
		variants:     cull.Variants(),
		count:        count,
		initialCount: count,
		orbit:        true,
	}
	for i, candidate := range c.variants {
		if candidate == v {
			c.index = i
		}
	}
	return c
}

func (c *viewerControls) variant() cull.Variant {
	return c.variants[c.index]
}

// handleKey applies one key press.
//
// Returns:
//   - bool: true if the variant or count changed
func (c *viewerControls) handleKey(key uint32) bool {
	prevIndex, prevCount := c.index, c.count

	switch {
	case key >= common.Key1 && key <= common.Key9:
		c.selectIndex(int(key - common.Key1))
	case key == common.Key0:
		c.selectIndex(9)
	case key == common.KeyMinus:
		c.selectIndex(10)
	case key == common.KeyEqual:
		c.selectIndex(11)
	case key == common.KeyRight:
		c.index = (c.index + 1) % len(c.variants)
	case key == common.KeyLeft:
		c.index = (c.index + len(c.variants) - 1) % len(c.variants)
	case key == common.KeyUp:
		if c.count == 0 {
			c.count = minViewCount
		} else {
			c.count *= 2
		}
	case key == common.KeyDown:
		c.count /= 2
	case key == common.KeyR:
		c.count = c.initialCount
	case key == common.KeySpace:
		c.orbit = !c.orbit
	}

	return c.index != prevIndex || c.count != prevCount
}

func (c *viewerControls) selectIndex(i int) {
	if i < len(c.variants) {
		c.index = i
	}
}

// View opens an interactive window, culls every frame and uploads the visible transforms to the GPU.
func View(ctx *cli.Context) error {
	setupLogging(ctx)

	pop, err := populationFromContext(ctx)
	if err != nil {
		return err
	}
	v, err := cull.ParseVariant(ctx.String("variant"))
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle("oxy-cull"),
		window.WithWidth(ctx.Int("width")),
		window.WithHeight(ctx.Int("height")),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	presentMode := renderer.PresentModeUncapped
	if ctx.Bool("vsync") {
		presentMode = renderer.PresentModeVSync
	}
	sink, err := renderer.NewGPUSink(win.SurfaceDescriptor(),
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(ctx.Bool("software")),
		renderer.WithInitialCapacity(pop.count),
	)
	if err != nil {
		return err
	}
	defer sink.Release()
	sink.ConfigureSurface(win.Width(), win.Height())

	cam := newOrbitCamera(float32(win.Width()) / float32(max(win.Height(), 1)))
	sc := scene.NewScene(pop.sceneOptions(v, sink, nil)...)
	defer sc.Close()

	controls := newViewerControls(v, pop.count)
	prof := profiler.NewProfiler()

	win.SetResizeCallback(func(width, height int) {
		sink.ConfigureSurface(width, height)
		if height > 0 {
			cam.SetAspect(float32(width) / float32(height))
		}
	})
	win.SetScrollCallback(func(delta float32) {
		cam.Controller().Zoom(delta)
	})
	win.SetDragCallback(func(dx, dy float32) {
		cam.Controller().Drag(dx, dy)
	})
	win.SetKeyDownCallback(func(keyCode uint32) {
		if controls.handleKey(keyCode) {
			sc.SetVariant(controls.variant())
			sc.SetCount(controls.count)
			logger.Infof("selected %s with %s objects", controls.variant(), printer.Sprintf("%d", controls.count))
		}
	})

	prev := time.Now()
	win.SetUpdateCallback(func() {
		now := time.Now()
		if controls.orbit {
			cam.Controller().Advance(float32(now.Sub(prev).Seconds()))
		}
		prev = now
		cam.Update()

		stats := sc.Tick(cam.Frustum().Planes)
		if prof.Tick(stats) {
			win.SetTitle(viewerTitle(prof.Report()))
		}

		shade := 0.0
		if stats.Consumed && stats.Objects > 0 {
			shade = float64(stats.Visible) / float64(stats.Objects)
		}
		if err := sink.Present(shade); err != nil {
			logger.Debugf("present: %v", err)
		}
	})

	win.ProcessMessages()
	return nil
}

func viewerTitle(r profiler.Report) string {
	return fmt.Sprintf("oxy-cull | %s | visible %s / %s | cull %s | %.0f FPS",
		r.Variant, printer.Sprintf("%d", r.Visible), printer.Sprintf("%d", r.Objects), r.AvgCullTime, r.FPS)
}
