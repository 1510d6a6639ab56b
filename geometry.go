package sloper

import (
	"sort"
	"strings"

	"github.com/innermond/sloper/internal/geom"
	"github.com/samber/lo"
)

// Kind tells how the points of an element are joined.
type Kind int

const (
	// Segment is a straight line between two points.
	Segment Kind = iota
	// Curve is a Bézier curve: start, control points, end.
	Curve
	// Polyline joins its points in order with straight lines.
	Polyline
)

func (k Kind) String() string {
	switch k {
	case Segment:
		return "segment"
	case Curve:
		return "curve"
	case Polyline:
		return "polyline"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Role is what a path element stands for on the pattern.
type Role int

const (
	RoleOutline Role = iota
	RoleDart
	RoleGuide
	RoleAllowance
)

func (r Role) String() string {
	switch r {
	case RoleOutline:
		return "outline"
	case RoleDart:
		return "dart"
	case RoleGuide:
		return "guide"
	case RoleAllowance:
		return "allowance"
	}
	return "unknown"
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Element joins named points of a Geometry.
type Element struct {
	Kind Kind     `json:"kind"`
	Refs []string `json:"refs"`
}

func (e Element) Start() string {
	return e.Refs[0]
}

func (e Element) End() string {
	return e.Refs[len(e.Refs)-1]
}

// Dart is a triangular intake: two legs from the outline to the apex.
type Dart struct {
	Name  string `json:"name"`
	Left  string `json:"left"`
	Apex  string `json:"apex"`
	Right string `json:"right"`
}

// Piece is one pattern piece: a closed outline walked counter-clockwise,
// its darts and its construction lines.
type Piece struct {
	Name    string    `json:"name"`
	Outline []Element `json:"outline"`
	Darts   []Dart    `json:"darts,omitempty"`
	Guides  []Element `json:"guides,omitempty"`
	// seam allowance polygon, nil when none was asked for
	Allowance []geom.Vec `json:"allowance,omitempty"`
}

// Geometry is the drafted pattern: every named point and the pieces built
// on them. It is not modified once built.
type Geometry struct {
	Points map[string]geom.Vec `json:"points"`
	Pieces []Piece             `json:"pieces"`
}

func (g *Geometry) Point(label string) (geom.Vec, bool) {
	p, ok := g.Points[label]
	return p, ok
}

func (g *Geometry) Piece(name string) (Piece, bool) {
	return lo.Find(g.Pieces, func(p Piece) bool {
		return p.Name == name
	})
}

// Labels returns the sorted labels of the points that belong to piece.
func (g *Geometry) Labels(piece string) []string {
	prefix := piece + "."
	labels := lo.Filter(lo.Keys(g.Points), func(l string, _ int) bool {
		return strings.HasPrefix(l, prefix)
	})
	sort.Strings(labels)
	return labels
}

func (g *Geometry) resolve(refs []string) ([]geom.Vec, error) {
	pts := make([]geom.Vec, len(refs))
	for i, ref := range refs {
		p, ok := g.Points[ref]
		if !ok {
			return nil, infeasible(pieceOf(ref), "unknown point %q", ref)
		}
		pts[i] = p
	}
	return pts, nil
}

// Flatten returns the points the element passes through, curves being
// approximated with geom.FlattenSteps chords.
func (g *Geometry) Flatten(e Element) ([]geom.Vec, error) {
	pts, err := g.resolve(e.Refs)
	if err != nil {
		return nil, err
	}
	if e.Kind == Curve {
		return geom.NewBezier(pts...).Flatten(geom.FlattenSteps), nil
	}
	return pts, nil
}

// Polygon returns the flattened closed outline of p, without repeating the
// first point.
func (g *Geometry) Polygon(p Piece) ([]geom.Vec, error) {
	var poly []geom.Vec
	for _, e := range p.Outline {
		pts, err := g.Flatten(e)
		if err != nil {
			return nil, err
		}
		poly = append(poly, pts[:len(pts)-1]...)
	}
	return poly, nil
}

// Length is the arc length of the element.
func (g *Geometry) Length(e Element) float64 {
	pts, err := g.Flatten(e)
	if err != nil {
		return 0
	}
	return geom.PolylineLength(pts)
}

// Bounds covers every drawn point: outlines, darts, guides and seam
// allowances. Bézier control points are left out.
func (g *Geometry) Bounds() geom.Rect {
	var r geom.Rect
	for _, p := range g.Pieces {
		r = r.Union(g.PieceBounds(p))
	}
	return r
}

func (g *Geometry) PieceBounds(p Piece) geom.Rect {
	var r geom.Rect
	poly, _ := g.Polygon(p)
	r = r.Union(geom.Bounds(poly...))
	r = r.Union(geom.Bounds(p.Allowance...))
	for _, d := range p.Darts {
		if apex, ok := g.Points[d.Apex]; ok {
			r = r.Extend(apex)
		}
	}
	for _, e := range p.Guides {
		pts, _ := g.Flatten(e)
		r = r.Union(geom.Bounds(pts...))
	}
	return r
}

// PathElement is an element handed to a Renderer, with its points resolved
// in drafting units.
type PathElement struct {
	Piece  string     `json:"piece"`
	Role   Role       `json:"role"`
	Kind   Kind       `json:"kind"`
	Refs   []string   `json:"refs,omitempty"`
	Points []geom.Vec `json:"points"`
}

// PathElements lists everything to draw, piece by piece: outline, darts,
// guides, then the seam allowance.
func (g *Geometry) PathElements() []PathElement {
	var out []PathElement
	for _, p := range g.Pieces {
		add := func(role Role, e Element) {
			pts, err := g.resolve(e.Refs)
			if err != nil {
				return
			}
			out = append(out, PathElement{
				Piece:  p.Name,
				Role:   role,
				Kind:   e.Kind,
				Refs:   append([]string(nil), e.Refs...),
				Points: pts,
			})
		}
		for _, e := range p.Outline {
			add(RoleOutline, e)
		}
		for _, d := range p.Darts {
			add(RoleDart, Element{Kind: Polyline, Refs: []string{d.Left, d.Apex, d.Right}})
		}
		for _, e := range p.Guides {
			add(RoleGuide, e)
		}
		if len(p.Allowance) > 0 {
			pts := append(append([]geom.Vec{}, p.Allowance...), p.Allowance[0])
			out = append(out, PathElement{Piece: p.Name, Role: RoleAllowance, Kind: Polyline, Points: pts})
		}
	}
	return out
}

func pieceOf(label string) string {
	if i := strings.IndexByte(label, '.'); i > 0 {
		return label[:i]
	}
	return ""
}

func (g *Geometry) clone() *Geometry {
	c := &Geometry{Points: make(map[string]geom.Vec, len(g.Points))}
	for l, p := range g.Points {
		c.Points[l] = p
	}
	for _, p := range g.Pieces {
		q := Piece{Name: p.Name}
		q.Outline = cloneElements(p.Outline)
		q.Guides = cloneElements(p.Guides)
		q.Darts = append([]Dart(nil), p.Darts...)
		q.Allowance = append([]geom.Vec(nil), p.Allowance...)
		c.Pieces = append(c.Pieces, q)
	}
	return c
}

func cloneElements(es []Element) []Element {
	if es == nil {
		return nil
	}
	out := make([]Element, len(es))
	for i, e := range es {
		out[i] = Element{Kind: e.Kind, Refs: append([]string(nil), e.Refs...)}
	}
	return out
}
