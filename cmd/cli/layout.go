package main

import (
	"encoding/json"

	"github.com/innermond/sloper"
	"github.com/pkg/errors"
)

type LayoutCmd struct {
	source

	Fabric        size    `short:"f" default:"150x300" help:"Fabric width and sheet length in cm, as wxh."`
	Gap           float64 `default:"1" help:"Space between pieces in cm."`
	Copies        int     `short:"c" default:"1" help:"How many times each piece is cut."`
	NoRotate      bool    `help:"Keep pieces upright, for fabrics with a nap or a print direction."`
	SeamAllowance float64 `help:"Seam allowance in cm around every piece."`
	Outname       string  `short:"o" help:"Write each marker sheet to outname.N.strategy.svg."`
	Inkscape      bool    `help:"Write sheets with inkscape layers."`
	Showdim       bool    `help:"Add a layer with the size of every frame."`
	JSON          bool    `help:"Print the report as JSON."`
}

func (c *LayoutCmd) Run(a *app) error {
	m, ease, err := c.load()
	if err != nil {
		return err
	}
	b, err := a.drafter.NewBase(m, ease, sloper.WithSeamAllowance(c.SeamAllowance))
	if err != nil {
		return err
	}

	rep, outs, err := sloper.NewLayout(b, c.Fabric[0], c.Fabric[1]).
		Gap(c.Gap).
		Copies(c.Copies).
		Rotate(!c.NoRotate).
		Outname(c.Outname).
		Appearance(!c.Inkscape, c.Showdim).
		Fit()
	if err != nil {
		return err
	}

	if c.JSON {
		b, err := json.Marshal(rep)
		if err != nil {
			return errors.Wrap(err, "encode report")
		}
		a.p.Fprintf(a.stdout, "%s\n", b)
	} else {
		a.report(rep, c.Fabric[0])
	}

	if len(c.Outname) > 0 {
		if errs := writeFiles(outs); len(errs) > 0 {
			return errors.WithMessagef(errs[0], "%d marker files not written", len(errs))
		}
	}
	return nil
}

func (a *app) report(rep *sloper.Report, width float64) {
	p := a.p
	p.Fprintf(a.stdout, "strategy      %s\n", rep.WinningStrategy)
	p.Fprintf(a.stdout, "sheets        %d\n", rep.NumSheetUsed)
	p.Fprintf(a.stdout, "fabric        %.1f cm x %.1f cm\n", width, rep.UsedLength)
	p.Fprintf(a.stdout, "pieces area   %.1f cm²\n", rep.PiecesArea)
	p.Fprintf(a.stdout, "lost area     %.1f cm²\n", rep.LostArea)
	p.Fprintf(a.stdout, "efficiency    %.1f%%\n", rep.Efficiency)
	for _, pl := range rep.Placements {
		rotated := ""
		if pl.Rotated {
			rotated = " rotated"
		}
		p.Fprintf(a.stdout, "  %s #%d on sheet %d at %.1f, %.1f%s\n", pl.Piece, pl.Copy, pl.Sheet, pl.X, pl.Y, rotated)
	}
	if rep.UnfitLen > 0 {
		p.Fprintf(a.stdout, "unfit         %d (%s)\n", rep.UnfitLen, rep.UnfitCode)
	}
}
