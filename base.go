package sloper

import (
	"fmt"
	"math"
	"strings"

	"github.com/innermond/sloper/internal/geom"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Renderer draws path elements on a canvas. A drafting point p lands on
// the canvas at Project(p, scale, offset): y grows downwards there.
type Renderer interface {
	Render(elements []PathElement, scale float64, offset geom.Vec) error
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(elements []PathElement, scale float64, offset geom.Vec) error

func (f RenderFunc) Render(elements []PathElement, scale float64, offset geom.Vec) error {
	return f(elements, scale, offset)
}

// Project maps a drafting point to canvas coordinates.
func Project(p geom.Vec, scale float64, offset geom.Vec) geom.Vec {
	return geom.V(p.X*scale+offset.X, offset.Y-p.Y*scale)
}

// Base is a drafted sloper: the measurements and ease it came from and the
// geometry built once from them.
type Base struct {
	m         Measurements
	ease      Ease
	values    Values
	geometry  *Geometry
	margin    float64
	allowance float64
}

type baseOptions struct {
	allowance float64
}

type BaseOption func(*baseOptions)

// WithSeamAllowance adds a seam allowance of cm around every piece.
func WithSeamAllowance(cm float64) BaseOption {
	return func(o *baseOptions) {
		o.allowance = cm
	}
}

// NewBase computes the construction values and the geometry of a sloper.
// Nothing is recomputed afterwards; draft again for other inputs.
func (d *Drafter) NewBase(m Measurements, ease Ease, opts ...BaseOption) (*Base, error) {
	o := baseOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if math.IsNaN(o.allowance) || o.allowance < 0 {
		return nil, invalid("seam_allowance", "must not be negative, got %g", o.allowance)
	}

	v, err := d.ComputeValues(m, ease)
	if err != nil {
		return nil, err
	}
	g, err := d.BuildGeometry(v)
	if err != nil {
		return nil, err
	}
	if o.allowance > 0 {
		for i, p := range g.Pieces {
			poly, err := g.Polygon(p)
			if err != nil {
				return nil, err
			}
			g.Pieces[i].Allowance = geom.Offset(geom.Dedupe(poly, geom.Eps), o.allowance)
		}
	}

	b := &Base{
		m:         m,
		ease:      ease,
		values:    v,
		geometry:  g,
		margin:    d.rules.CanvasMarginRatio,
		allowance: o.allowance,
	}
	d.log.Debug("drafted base", zap.Stringer("base", b))
	return b, nil
}

func (b *Base) Measurements() Measurements { return b.m }
func (b *Base) Ease() Ease                 { return b.ease }
func (b *Base) Values() Values             { return b.values }
func (b *Base) SeamAllowance() float64     { return b.allowance }

// Geometry returns a copy of the drafted geometry.
func (b *Base) Geometry() *Geometry {
	return b.geometry.clone()
}

func (b *Base) Bounds() geom.Rect {
	return b.geometry.Bounds()
}

// PathElements lists what Draw hands to the renderer, in drafting units.
func (b *Base) PathElements() []PathElement {
	return b.geometry.PathElements()
}

// Fit returns the uniform scale and the offset that centre the pattern on
// a width×height canvas, keeping a margin on every side.
func (b *Base) Fit(width, height float64) (scale float64, offset geom.Vec, err error) {
	if !(width > 0) || !(height > 0) {
		return 0, geom.Vec{}, invalid("canvas", "must be positive, got %gx%g", width, height)
	}
	bb := b.Bounds()
	if bb.Empty() || bb.Width() <= 0 || bb.Height() <= 0 {
		return 0, geom.Vec{}, infeasible("", "pattern has no extent")
	}

	margin := b.margin * math.Min(width, height)
	aw, ah := width-2*margin, height-2*margin
	scale = math.Min(aw/bb.Width(), ah/bb.Height())
	offset = geom.V(
		margin+(aw-bb.Width()*scale)/2-bb.Min.X*scale,
		margin+(ah-bb.Height()*scale)/2+bb.Max.Y*scale,
	)
	return scale, offset, nil
}

// Draw renders the pattern on a width×height canvas with a single call to
// r. It can be called any number of times.
func (b *Base) Draw(r Renderer, width, height int) error {
	if r == nil {
		return errors.New("draw: nil renderer")
	}
	scale, offset, err := b.Fit(float64(width), float64(height))
	if err != nil {
		return err
	}
	return errors.WithMessage(r.Render(b.geometry.PathElements(), scale, offset), "render")
}

// PieceSummary describes one piece for logs and reports.
type PieceSummary struct {
	Name     string  `json:"name"`
	Points   int     `json:"points"`
	Elements int     `json:"elements"`
	Darts    int     `json:"darts"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

func (b *Base) Summary() []PieceSummary {
	g := b.geometry
	return lo.Map(g.Pieces, func(p Piece, _ int) PieceSummary {
		bb := g.PieceBounds(p)
		return PieceSummary{
			Name:     p.Name,
			Points:   len(g.Labels(p.Name)),
			Elements: len(p.Outline),
			Darts:    len(p.Darts),
			Width:    bb.Width(),
			Height:   bb.Height(),
		}
	})
}

func (b *Base) String() string {
	parts := lo.Map(b.Summary(), func(s PieceSummary, _ int) string {
		return fmt.Sprintf("%s %d points", s.Name, s.Points)
	})
	return fmt.Sprintf("base(ease %g): %s", float64(b.ease), strings.Join(parts, ", "))
}
