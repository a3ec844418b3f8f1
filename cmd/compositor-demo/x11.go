package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/platform/x11"
	"github.com/gogpu/compositor/present/terminal"
)

func runX11(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	conn, err := x11.Open()
	if err != nil {
		return err
	}
	defer conn.Close()

	snap, err := conn.Snapshot()
	if err != nil {
		return err
	}
	term, err := terminal.Open()
	if err != nil {
		return err
	}
	comp, err := compositor.New(snap.Screen, append(cfg.Options(), compositor.WithPresenter(term))...)
	if err != nil {
		term.Close()
		return err
	}
	defer comp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go term.Watch(ctx, cancel, comp.AddRepaintFull)

	changed := make(chan struct{}, 1)
	go func() {
		err := conn.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			slog.Warn("x11 watch stopped", "error", err)
		}
	}()
	mirror := x11.NewMirror(comp.Space())
	go mirror.Run(ctx, conn, changed, c.Duration("poll"))

	if err := comp.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
