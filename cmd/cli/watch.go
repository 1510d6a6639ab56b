package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type WatchCmd struct {
	Profile string        `arg:"" type:"existingfile" help:"YAML profile to watch."`
	Ease    float64       `short:"e" default:"-1" help:"Ease in cm. Defaults to the profile's, or ${default_ease}."`
	Out     string        `short:"o" required:"" help:"SVG file rewritten on every change."`
	Size    size          `short:"s" default:"900x900" help:"Canvas size in pixels, as wxh."`
	Settle  time.Duration `default:"200ms" help:"Wait this long after the last change before drafting."`
}

func (c *WatchCmd) Run(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.watch(ctx, a)
}

// watch drafts once, then again after every burst of writes to the
// profile, until ctx is done. Editors that replace the file on save are
// handled by watching its directory.
func (c *WatchCmd) watch(ctx context.Context, a *app) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "watcher")
	}
	defer w.Close()

	profile, err := filepath.Abs(c.Profile)
	if err != nil {
		return errors.Wrap(err, "profile path")
	}
	if err := w.Add(filepath.Dir(profile)); err != nil {
		return errors.Wrap(err, "watch profile directory")
	}

	redraw := func() {
		o := drawOptions{size: c.Size, out: c.Out}
		if err := a.drawProfile(profile, c.Ease, o); err != nil {
			a.p.Fprintf(a.stdout, "%s: %v\n", c.Profile, err)
			return
		}
		a.p.Fprintf(a.stdout, "%s -> %s\n", c.Profile, c.Out)
	}
	redraw()

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != profile {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				settle = time.After(c.Settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watch error", zap.Error(err))
		case <-settle:
			settle = nil
			redraw()
		}
	}
}
