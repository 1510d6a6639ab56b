// Package svg writes SVG documents as strings: a header, layers, paths,
// rectangles and text. Layers become inkscape layers unless plain is set.
package svg

import (
	"fmt"
	"strings"

	"github.com/innermond/sloper/internal/geom"
)

const (
	svgtop = `<?xml version="1.0"?>
<svg`
	svginitfmt = `%s width="%s%s" height="%s%s"`
	svgns      = `
     xmlns="http://www.w3.org/2000/svg"
     xmlns:xlink="http://www.w3.org/1999/xlink"`
	svgnsinkscape = `
   xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"
   xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape"`
	vbfmt = `viewBox="0 0 %s %s"`
)

// Start opens a document of w×h user units, each one unit long.
func Start(w float64, h float64, unit string, plain bool) string {
	s := fmt.Sprintf(svginitfmt, svgtop, num(w), unit, num(h), unit) + " " +
		fmt.Sprintf(vbfmt, num(w), num(h)) + svgns
	if !plain {
		s += svgnsinkscape
	}
	s += ">"
	return s
}

func End(s string) string {
	return s + "\n</svg>\n"
}

func GroupStart(ss ...string) string {
	return fmt.Sprintf("\n<g %s>", strings.Join(ss, " "))
}

func GroupEnd(g string) string {
	return g + "\n</g>"
}

// Layer opens a group named id.
func Layer(id string, plain bool) string {
	if plain {
		return GroupStart(attr("id", id))
	}
	return GroupStart(attr("id", id), attr("inkscape:label", id), `inkscape:groupmode="layer"`)
}

func Rect(x float64, y float64, w float64, h float64, s string) string {
	return fmt.Sprintf(`
<rect x="%s" y="%s" width="%s" height="%s" style="%s" />`, num(x), num(y), num(w), num(h), s)
}

func Text(x float64, y float64, transform, txt string, s string) string {
	return fmt.Sprintf(`
<text x="%s" y="%s" %s style="%s">%s</text>`, num(x), num(y), transform, s, escape(txt))
}

// Path draws the path data d. id may be empty.
func Path(id, d, s string) string {
	if id != "" {
		return fmt.Sprintf(`
<path id="%s" d="%s" style="%s" />`, escape(id), d, s)
	}
	return fmt.Sprintf(`
<path d="%s" style="%s" />`, d, s)
}

func Circle(c geom.Vec, r float64, s string) string {
	return fmt.Sprintf(`
<circle cx="%s" cy="%s" r="%s" style="%s" />`, num(c.X), num(c.Y), num(r), s)
}

// PathData builds the d attribute of a path.
type PathData struct {
	b strings.Builder
}

func (p *PathData) MoveTo(v geom.Vec) *PathData {
	return p.cmd("M", v)
}

func (p *PathData) LineTo(v geom.Vec) *PathData {
	return p.cmd("L", v)
}

// CurveTo continues the path with a Bézier curve given by its control
// points and end point. Quadratic and cubic curves are written as such,
// higher degrees are flattened.
func (p *PathData) CurveTo(ctrl []geom.Vec, end geom.Vec, from geom.Vec) *PathData {
	switch len(ctrl) {
	case 0:
		return p.LineTo(end)
	case 1:
		return p.cmd("Q", ctrl[0], end)
	case 2:
		return p.cmd("C", ctrl[0], ctrl[1], end)
	}
	pts := append(append([]geom.Vec{from}, ctrl...), end)
	for _, v := range geom.NewBezier(pts...).Flatten(geom.FlattenSteps)[1:] {
		p.LineTo(v)
	}
	return p
}

func (p *PathData) Close() *PathData {
	p.sep()
	p.b.WriteString("Z")
	return p
}

func (p *PathData) String() string {
	return p.b.String()
}

func (p *PathData) cmd(c string, vs ...geom.Vec) *PathData {
	p.sep()
	p.b.WriteString(c)
	for _, v := range vs {
		p.b.WriteString(" " + num(v.X) + "," + num(v.Y))
	}
	return p
}

func (p *PathData) sep() {
	if p.b.Len() > 0 {
		p.b.WriteByte(' ')
	}
}

func attr(k, v string) string {
	return fmt.Sprintf(`%s="%s"`, k, escape(v))
}

// num prints n with at most three decimals and no trailing zeros.
func num(n float64) string {
	s := fmt.Sprintf("%.3f", n)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

var escaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

func escape(s string) string {
	return escaper.Replace(s)
}
