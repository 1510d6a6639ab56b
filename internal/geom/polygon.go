package geom

import "math"

// Rect is an axis aligned bounding box. The zero Rect is empty.
type Rect struct {
	Min, Max Vec
	set      bool
}

func (r Rect) Empty() bool {
	return !r.set
}

// Extend grows r to contain p.
func (r Rect) Extend(p Vec) Rect {
	if !r.set {
		return Rect{Min: p, Max: p, set: true}
	}
	r.Min = Vec{math.Min(r.Min.X, p.X), math.Min(r.Min.Y, p.Y)}
	r.Max = Vec{math.Max(r.Max.X, p.X), math.Max(r.Max.Y, p.Y)}
	return r
}

func (r Rect) Union(o Rect) Rect {
	if o.Empty() {
		return r
	}
	return r.Extend(o.Min).Extend(o.Max)
}

func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Contains reports whether p lies inside r, borders included, with eps slack.
func (r Rect) Contains(p Vec, eps float64) bool {
	return !r.Empty() &&
		p.X >= r.Min.X-eps && p.X <= r.Max.X+eps &&
		p.Y >= r.Min.Y-eps && p.Y <= r.Max.Y+eps
}

func Bounds(pts ...Vec) Rect {
	var r Rect
	for _, p := range pts {
		r = r.Extend(p)
	}
	return r
}

func PolylineLength(pts []Vec) float64 {
	l := 0.0
	for i := 1; i < len(pts); i++ {
		l += pts[i-1].Dist(pts[i])
	}
	return l
}

// SignedArea is positive for counter-clockwise polygons.
func SignedArea(poly []Vec) float64 {
	a := 0.0
	n := len(poly)
	for i := 0; i < n; i++ {
		a += poly[i].Cross(poly[(i+1)%n])
	}
	return a / 2
}

// Dedupe drops consecutive points closer than eps, including a last point
// repeating the first one.
func Dedupe(poly []Vec, eps float64) []Vec {
	out := make([]Vec, 0, len(poly))
	for _, p := range poly {
		if len(out) > 0 && out[len(out)-1].Equal(p, eps) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1].Equal(out[0], eps) {
		out = out[:len(out)-1]
	}
	return out
}

// SelfIntersects reports whether two non adjacent edges of the closed
// polygon touch or cross.
func SelfIntersects(poly []Vec) bool {
	n := len(poly)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				// closing edge is adjacent to the first one
				continue
			}
			c, d := poly[j], poly[(j+1)%n]
			if SegmentsIntersect(a, b, c, d) {
				return true
			}
		}
	}
	return false
}

// PolylineCrosses reports whether any edge of the open polyline p meets any
// edge of the open polyline q.
func PolylineCrosses(p, q []Vec) bool {
	for i := 1; i < len(p); i++ {
		for j := 1; j < len(q); j++ {
			if SegmentsIntersect(p[i-1], p[i], q[j-1], q[j]) {
				return true
			}
		}
	}
	return false
}

// Offset returns the closed polygon moved outwards by d. Vertices are mitred;
// nearly straight joints and very sharp ones fall back to the vertex normal.
func Offset(poly []Vec, d float64) []Vec {
	poly = Dedupe(poly, Eps)
	n := len(poly)
	if n < 3 || d == 0 {
		return poly
	}
	// outwards is to the right of a counter-clockwise walk
	sign := -1.0
	if SignedArea(poly) < 0 {
		sign = 1.0
	}
	edges := make([]Line, n)
	normals := make([]Vec, n)
	for i := 0; i < n; i++ {
		e := Line{poly[i], poly[(i+1)%n]}
		normals[i] = e.B.Sub(e.A).Unit().Perp().Scale(sign)
		edges[i] = e.Offset(sign * d)
	}

	out := make([]Vec, n)
	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		avg := normals[prev].Add(normals[i]).Unit()
		fallback := poly[i].Add(avg.Scale(d))
		p, ok := edges[prev].Intersection(edges[i])
		if !ok || p.Dist(poly[i]) > 4*math.Abs(d) {
			out[i] = fallback
			continue
		}
		out[i] = p
	}
	return out
}

// PointInPolygon reports whether p lies strictly inside the closed polygon,
// using the even-odd rule.
func PointInPolygon(p Vec, poly []Vec) bool {
	in := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}
