package main

import (
	"io"

	"github.com/innermond/sloper"
	"go.uber.org/zap"
)

type DrawCmd struct {
	source

	Size          size    `short:"s" default:"900x900" help:"Canvas size in pixels, as wxh."`
	Out           string  `short:"o" default:"-" help:"SVG file to write; - for stdout."`
	SeamAllowance float64 `help:"Seam allowance in cm drawn around every piece."`
	Inkscape      bool    `help:"Write pieces as inkscape layers."`
	Labels        bool    `help:"Label the outline points."`
}

func (c *DrawCmd) Run(a *app) error {
	m, ease, err := c.load()
	if err != nil {
		return err
	}
	return a.draw(m, ease, drawOptions{
		size:      c.Size,
		out:       c.Out,
		allowance: c.SeamAllowance,
		inkscape:  c.Inkscape,
		labels:    c.Labels,
	})
}

type drawOptions struct {
	size             size
	out              string
	allowance        float64
	inkscape, labels bool
}

func (a *app) draw(m sloper.Measurements, ease sloper.Ease, o drawOptions) error {
	b, err := a.drafter.NewBase(m, ease, sloper.WithSeamAllowance(o.allowance))
	if err != nil {
		return err
	}
	w, h := o.size.ints()
	svg := sloper.NewSVG(w, h).Appearance(!o.inkscape, o.labels)
	if err := b.Draw(svg, w, h); err != nil {
		return err
	}
	a.log.Info("drew base", zap.Stringer("base", b), zap.String("out", o.out))
	return writeOut(a.stdout, o.out, func(w io.Writer) error {
		_, err := svg.WriteTo(w)
		return err
	})
}
