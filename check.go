package sloper

import (
	"sort"
	"strings"

	"github.com/innermond/sloper/internal/geom"
)

// minAnchorGap is the distance under which two anchors of a piece count as
// the same point.
const minAnchorGap = 1e-3

// Validate checks every piece of g: references resolve, the outline is one
// closed loop that does not cross itself, anchors are distinct, waist points
// run left to right, and darts touch the outline at their two legs only,
// with the apex inside and no leg crossing anything else. Construction
// lines are not checked for crossings.
func (g *Geometry) Validate() error {
	if len(g.Pieces) == 0 {
		return infeasible("", "no pieces")
	}
	for _, p := range g.Pieces {
		if err := g.validatePiece(p); err != nil {
			return err
		}
	}
	return nil
}

func (g *Geometry) validatePiece(p Piece) error {
	if len(p.Outline) < 3 {
		return infeasible(p.Name, "outline has %d elements", len(p.Outline))
	}
	all := append(append([]Element{}, p.Outline...), p.Guides...)
	for _, d := range p.Darts {
		all = append(all, Element{Kind: Polyline, Refs: []string{d.Left, d.Apex, d.Right}})
	}
	for _, e := range all {
		if len(e.Refs) < 2 {
			return infeasible(p.Name, "element with %d points", len(e.Refs))
		}
		if _, err := g.resolve(e.Refs); err != nil {
			return err
		}
	}

	for i, e := range p.Outline {
		next := p.Outline[(i+1)%len(p.Outline)]
		if e.End() != next.Start() {
			return infeasible(p.Name, "outline is not closed: %s does not meet %s", e.End(), next.Start())
		}
	}

	if err := g.distinctAnchors(p); err != nil {
		return err
	}

	poly, err := g.Polygon(p)
	if err != nil {
		return err
	}
	poly = geom.Dedupe(poly, geom.Eps)
	if len(poly) < 3 {
		return infeasible(p.Name, "outline is degenerate")
	}
	if geom.SelfIntersects(poly) {
		return infeasible(p.Name, "outline crosses itself")
	}
	if geom.SignedArea(poly) <= 0 {
		return infeasible(p.Name, "outline is not counter-clockwise")
	}

	if err := g.waistOrder(p); err != nil {
		return err
	}
	return g.checkDarts(p, poly)
}

// anchors are the labels elements start or end on, and dart points.
func (p Piece) anchors() []string {
	seen := map[string]bool{}
	var out []string
	add := func(l string) {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	for _, e := range append(append([]Element{}, p.Outline...), p.Guides...) {
		add(e.Start())
		add(e.End())
	}
	for _, d := range p.Darts {
		add(d.Left)
		add(d.Apex)
		add(d.Right)
	}
	sort.Strings(out)
	return out
}

func (g *Geometry) distinctAnchors(p Piece) error {
	labels := p.anchors()
	for i := range labels {
		for j := i + 1; j < len(labels); j++ {
			a, b := g.Points[labels[i]], g.Points[labels[j]]
			if a.Equal(b, minAnchorGap) {
				return infeasible(p.Name, "%s and %s coincide at %v", labels[i], labels[j], a)
			}
		}
	}
	return nil
}

// waistOrder checks that outline anchors lying on the waist line (y = 0)
// come in increasing x as the loop is walked from its first element.
func (g *Geometry) waistOrder(p Piece) error {
	prev, prevLabel := 0.0, ""
	for _, e := range p.Outline {
		l := e.Start()
		q := g.Points[l]
		if q.Y < -minAnchorGap || q.Y > minAnchorGap {
			continue
		}
		if prevLabel != "" && q.X <= prev {
			return infeasible(p.Name, "waist points out of order: %s before %s", prevLabel, l)
		}
		prev, prevLabel = q.X, l
	}
	return nil
}

func (g *Geometry) checkDarts(p Piece, poly []geom.Vec) error {
	onOutline := map[string]bool{}
	for _, e := range p.Outline {
		onOutline[e.Start()] = true
		onOutline[e.End()] = true
	}
	closed := append(append([]geom.Vec{}, poly...), poly[0])

	legs := make([][][]geom.Vec, len(p.Darts))
	for i, d := range p.Darts {
		if !onOutline[d.Left] || !onOutline[d.Right] {
			return infeasible(p.Name, "dart %s does not start on the outline", d.Name)
		}
		if onOutline[d.Apex] {
			return infeasible(p.Name, "dart %s apex lies on the outline", d.Name)
		}
		apex := g.Points[d.Apex]
		if !geom.PointInPolygon(apex, poly) {
			return infeasible(p.Name, "dart %s apex is outside the piece", d.Name)
		}
		for _, end := range []string{d.Left, d.Right} {
			// trimmed where the leg meets the outline
			from := g.Points[end].Towards(apex, 1e-4)
			leg := []geom.Vec{from, apex}
			if geom.PolylineCrosses(leg, closed) {
				return infeasible(p.Name, "dart %s leg from %s crosses the outline", d.Name, strings.TrimPrefix(end, p.Name+"."))
			}
			legs[i] = append(legs[i], leg)
		}
	}

	for i := range legs {
		for j := i + 1; j < len(legs); j++ {
			for _, a := range legs[i] {
				for _, b := range legs[j] {
					if geom.PolylineCrosses(a, b) {
						return infeasible(p.Name, "darts %s and %s cross", p.Darts[i].Name, p.Darts[j].Name)
					}
				}
			}
		}
	}
	return nil
}
