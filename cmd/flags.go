package cmd

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-cull/engine/camera"
	"github.com/Carmen-Shannon/oxy-cull/engine/cull"
	"github.com/Carmen-Shannon/oxy-cull/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cull/engine/scene"
	"github.com/urfave/cli"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// frameDelta is the simulated frame time used to advance the orbit camera in headless runs.
const frameDelta float32 = 1.0 / 60

// printer formats counts with thousands separators in reports.
var printer = message.NewPrinter(language.English)

// PopulationFlags are the flags shared by every command that spawns a scene.
var PopulationFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "count, n",
		Value: scene.DefaultCount,
		Usage: "number of bounding volumes to spawn",
	},
	cli.Float64Flag{
		Name:  "spawn-radius",
		Value: float64(scene.DefaultSpawnRadius),
		Usage: "radius of the ball volumes are spawned in",
	},
	cli.IntFlag{
		Name:  "batch",
		Value: cull.DefaultBatchSize,
		Usage: "objects per worker batch (rounded up to a multiple of 4)",
	},
	cli.IntFlag{
		Name:  "workers",
		Value: 0,
		Usage: "worker count for parallel variants (0 = one per CPU)",
	},
}

// population is the parsed form of PopulationFlags.
type population struct {
	count       int
	spawnRadius float32
	batch       int
	workers     int
}

func populationFromContext(ctx *cli.Context) (population, error) {
	p := population{
		count:       ctx.Int("count"),
		spawnRadius: float32(ctx.Float64("spawn-radius")),
		batch:       ctx.Int("batch"),
		workers:     ctx.Int("workers"),
	}
	if p.count < 0 {
		return p, fmt.Errorf("count must not be negative; got %d", p.count)
	}
	if p.spawnRadius <= 0 {
		return p, fmt.Errorf("spawn radius must be positive; got %g", p.spawnRadius)
	}
	if p.batch < 0 || p.workers < 0 {
		return p, fmt.Errorf("batch and workers must not be negative")
	}
	return p, nil
}

// newDispatcher builds a dispatcher from the batch and worker flags. The caller closes it.
func (p population) newDispatcher() cull.Dispatcher {
	var opts []cull.DispatcherBuilderOption
	if p.batch > 0 {
		opts = append(opts, cull.WithBatchSize(p.batch))
	}
	if p.workers > 0 {
		opts = append(opts, cull.WithWorkers(p.workers))
	}
	return cull.NewDispatcher(opts...)
}

// sceneOptions builds the scene configuration for one variant. With a nil d the scene builds and
// owns a dispatcher from the batch and worker flags.
func (p population) sceneOptions(v cull.Variant, sink renderer.Sink, d cull.Dispatcher) []scene.SceneBuilderOption {
	opts := []scene.SceneBuilderOption{
		scene.WithVariant(v),
		scene.WithCount(p.count),
		scene.WithSpawnRadius(p.spawnRadius),
		scene.WithSink(sink),
	}
	if d != nil {
		return append(opts, scene.WithDispatcher(d))
	}
	if p.batch > 0 {
		opts = append(opts, scene.WithBatchSize(p.batch))
	}
	if p.workers > 0 {
		opts = append(opts, scene.WithWorkers(p.workers))
	}
	return opts
}

// parseVariants resolves a list of variant names. An empty list or "all" selects every variant.
// Duplicates are dropped, the first occurrence keeps its position.
func parseVariants(names []string) ([]cull.Variant, error) {
	var split []string
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			if part = strings.TrimSpace(part); part != "" {
				split = append(split, part)
			}
		}
	}

	if len(split) == 0 {
		return cull.Variants(), nil
	}

	seen := make(map[cull.Variant]bool)
	variants := make([]cull.Variant, 0, len(split))
	for _, name := range split {
		if strings.EqualFold(name, "all") {
			return cull.Variants(), nil
		}
		v, err := cull.ParseVariant(name)
		if err != nil {
			return nil, err
		}
		if !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}
	return variants, nil
}

// newOrbitCamera returns a camera orbiting the origin, matching the viewer's starting pose.
func newOrbitCamera(aspect float32) camera.Camera {
	return camera.NewCamera(
		camera.WithAspect(aspect),
		camera.WithController(camera.NewCameraController()),
	)
}
