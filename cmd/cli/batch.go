package main

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type BatchCmd struct {
	Pattern string  `arg:"" help:"Glob of YAML profiles, ** allowed, e.g. profiles/**/*.yaml."`
	Ease    float64 `short:"e" default:"-1" help:"Ease in cm for every profile. Defaults to each profile's, or ${default_ease}."`
	OutDir  string  `short:"d" default:"." type:"path" help:"Directory the SVG files go to."`
	Size    size    `short:"s" default:"900x900" help:"Canvas size in pixels, as wxh."`
}

func (c *BatchCmd) Run(a *app) error {
	matches, err := doublestar.FilepathGlob(c.Pattern)
	if err != nil {
		return errors.Wrap(err, "glob")
	}
	if len(matches) == 0 {
		return errors.Errorf("no profile matches %s", c.Pattern)
	}

	failed := 0
	for _, path := range matches {
		out := filepath.Join(c.OutDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".svg")
		if err := a.drawProfile(path, c.Ease, drawOptions{size: c.Size, out: out}); err != nil {
			failed++
			a.p.Fprintf(a.stdout, "%s: %v\n", path, err)
			a.log.Warn("profile not drawn", zap.String("profile", path), zap.Error(err))
			continue
		}
		a.p.Fprintf(a.stdout, "%s -> %s\n", path, out)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d profiles failed", failed, len(matches))
	}
	return nil
}

func (a *app) drawProfile(path string, ease float64, o drawOptions) error {
	s := source{Profile: path, Ease: ease}
	m, e, err := s.load()
	if err != nil {
		return err
	}
	return a.draw(m, e, o)
}
