package main

import (
	"context"
	"time"

	"github.com/urfave/cli"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/present/terminal"
)

func runTerminal(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	term, err := terminal.Open()
	if err != nil {
		return err
	}
	comp, err := compositor.New(cfg.Display(), append(cfg.Options(), compositor.WithPresenter(term))...)
	if err != nil {
		term.Close()
		return err
	}
	defer comp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go term.Watch(ctx, cancel, comp.AddRepaintFull)

	wins := cfg.Windows
	if len(wins) == 0 {
		wins = defaultWindows(cfg.Display())
	}
	sc := newScenario(comp, wins, 1500*time.Millisecond)

	start := time.Now()
	tick := time.NewTicker(cfg.Frame.Interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
		sc.advance(time.Since(start))
		comp.Composite()
	}
}
