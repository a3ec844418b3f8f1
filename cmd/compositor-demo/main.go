// Command compositor-demo composites a few windows with the built-in
// effects and shows the result as PNG frames, in a terminal, or as a
// mirror of a running X11 desktop.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend"
	"github.com/gogpu/compositor/config"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("compositor-demo failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "compositor-demo"
	app.Usage = "composite demo windows with effects"
	app.Version = compositor.Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "Path to the YAML configuration (default: ~/.config/compositor/config.yaml)",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Output backend, overriding the configuration",
		},
		cli.StringSliceFlag{
			Name:  "effect, e",
			Usage: "Load an extra effect (repeatable)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "Write logs to this file instead of stderr",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "headless",
			Usage: "Render the demo scenario to PNG files",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "frames", Usage: "Number of frames to render", Value: 120},
				cli.IntFlag{Name: "every", Usage: "Save every Nth painted frame", Value: 10},
				cli.StringFlag{Name: "out", Usage: "Output directory (default: a temp directory)"},
			},
			Action: runHeadless,
		},
		{
			Name:   "terminal",
			Usage:  "Show the demo scenario in the terminal (q to quit)",
			Action: runTerminal,
		},
		{
			Name:  "x11",
			Usage: "Mirror the windows of the running X11 desktop in the terminal",
			Flags: []cli.Flag{
				cli.DurationFlag{Name: "poll", Usage: "Snapshot interval besides property changes (0 = off)"},
			},
			Action: runX11,
		},
		{
			Name:   "backends",
			Usage:  "List the registered output backends",
			Action: listBackends,
		},
		{
			Name:   "config",
			Usage:  "Print the effective configuration",
			Action: printConfig,
		},
	}
	return app
}

// setup loads the configuration and installs the logger.
func setup(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if b := c.GlobalString("backend"); b != "" {
		cfg.Output.Backend = b
	}
	for _, name := range c.GlobalStringSlice("effect") {
		cfg.Effects.Load = append(cfg.Effects.Load, config.EffectEntry{Name: name})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.Level()
	if c.GlobalBool("debug") {
		level = slog.LevelDebug
	}
	var out io.Writer = os.Stderr
	if path := c.GlobalString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	compositor.SetLogger(logger)
	return cfg, nil
}

func listBackends(c *cli.Context) error {
	for _, name := range backend.Available() {
		c.App.Writer.Write([]byte(name + "\n"))
	}
	return nil
}

func printConfig(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}
