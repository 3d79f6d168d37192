package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-cull/cmd"
	"github.com/Carmen-Shannon/oxy-cull/engine/scene"
	"github.com/urfave/cli"
)

// glfw must be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	variantFlag := cli.StringFlag{
		Name:  "variant",
		Value: scene.DefaultVariant.String(),
		Usage: "culling variant (see the variants command)",
	}

	app := cli.NewApp()
	app.Name = "oxy-cull"
	app.Usage = "benchmark frustum culling strategies"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "variants",
			Usage:  "list culling variants and host support",
			Action: cmd.ListVariants,
		},
		{
			Name:  "bench",
			Usage: "compare culling variants on the same camera path",
			Description: `
Spawn the requested population once per variant, orbit the camera for the given
number of frames and report min/avg/max cull time per variant.

Every culling variant must report the same visible count on every frame; the
command fails if two variants disagree. Variants needing an instruction set the
host lacks are listed but skipped.`,
			Flags: append([]cli.Flag{
				cli.StringSliceFlag{
					Name:  "variant",
					Value: &cli.StringSlice{},
					Usage: "variant to benchmark; repeat or comma-separate, default all",
				},
				cli.IntFlag{
					Name:  "frames, f",
					Value: 120,
					Usage: "frames per variant",
				},
			}, cmd.PopulationFlags...),
			Action: cmd.Bench,
		},
		{
			Name:  "run",
			Usage: "cull headlessly with one variant and log profiler statistics",
			Flags: append([]cli.Flag{
				variantFlag,
				cli.IntFlag{
					Name:  "frames, f",
					Value: 0,
					Usage: "frames to run, 0 runs until interrupted",
				},
				cli.DurationFlag{
					Name:  "interval",
					Value: time.Second,
					Usage: "profiler reporting interval",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "",
					Usage: "file receiving the last visible transform buffer as raw float32 data",
				},
			}, cmd.PopulationFlags...),
			Action: cmd.Run,
		},
		{
			Name:  "view",
			Usage: "interactive orbit view with GPU upload of the visible set",
			Description: `
Drag with the left mouse button to orbit and scroll to zoom. Keys 1-9, 0, - and =
select variants, left/right cycle through all of them, up/down scale the object
count, space toggles the automatic orbit and R restores the initial count.`,
			Flags: append([]cli.Flag{
				variantFlag,
				cli.IntFlag{
					Name:  "width",
					Value: 1280,
					Usage: "window width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 720,
					Usage: "window height",
				},
				cli.BoolFlag{
					Name:  "vsync",
					Usage: "wait for vertical blank when presenting",
				},
				cli.BoolFlag{
					Name:  "software",
					Usage: "force the software fallback adapter",
				},
			}, cmd.PopulationFlags...),
			Action: cmd.View,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
