package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-photon-tracer/internal/logger"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "photon-tracer"
	app.Usage = "render triangle and sphere scenes with a Whitted tracer and photon map"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML config file (default: ./tracer.yaml or the user config dir)",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to this file, rotated",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to a PNG file",
			Description: `
Render a built-in scene by id, or a YAML scene file by path. The photon map is
seeded once before the frame is traced. Timings are printed as a table.`,
			ArgsUsage: "scene",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "width", Usage: "frame width"},
				cli.IntFlag{Name: "height", Usage: "frame height"},
				cli.IntFlag{Name: "workers", Usage: "render goroutines, 0 for every CPU"},
				cli.IntFlag{Name: "tile-size", Usage: "tile edge in pixels"},
				cli.IntFlag{Name: "max-depth", Usage: "mirror and glass recursion cap"},
				cli.IntFlag{Name: "photons", Usage: "photons per light"},
				cli.BoolFlag{Name: "no-photons", Usage: "skip the photon map"},
				cli.BoolFlag{Name: "shadow-photons", Usage: "deposit shadow photons behind first hits"},
				cli.StringFlag{Name: "out, o", Usage: "output PNG (default: <output dir>/<scene>/render_<time>.png)"},
			},
			Action: renderCommand,
		},
		{
			Name:  "scenes",
			Usage: "list built-in scenes and YAML scenes in a directory",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "dir", Usage: "scenes directory (default from config)"},
			},
			Action: scenesCommand,
		},
		{
			Name:  "serve",
			Usage: "serve the HTTP render API",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "addr", Usage: "listen address (default from config)"},
				cli.StringFlag{Name: "scenes-dir", Usage: "directory of YAML scenes to expose"},
			},
			Action: serveCommand,
		},
	}
	return app
}

func main() {
	err := newApp().Run(os.Args)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
