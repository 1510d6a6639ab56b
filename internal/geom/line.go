package geom

import "math"

// Line is a straight segment from A to B.
type Line struct {
	A, B Vec
}

func L(a, b Vec) Line {
	return Line{A: a, B: b}
}

func (l Line) Len() float64 {
	return l.A.Dist(l.B)
}

// At returns (1-t)·A + t·B.
func (l Line) At(t float64) Vec {
	return l.A.Lerp(l.B, t)
}

func (l Line) Mid() Vec {
	return l.At(0.5)
}

// AtX returns the point of the (infinite) line with the given x.
// A vertical line returns A.
func (l Line) AtX(x float64) Vec {
	dx := l.B.X - l.A.X
	if dx == 0 {
		return l.A
	}
	return l.At((x - l.A.X) / dx)
}

// AtY returns the point of the (infinite) line with the given y.
// A horizontal line returns A.
func (l Line) AtY(y float64) Vec {
	dy := l.B.Y - l.A.Y
	if dy == 0 {
		return l.A
	}
	return l.At((y - l.A.Y) / dy)
}

// FromA returns the point at distance length from A towards B.
func (l Line) FromA(length float64) Vec {
	return l.A.Towards(l.B, length)
}

// FromB returns the point at distance length from B towards A.
func (l Line) FromB(length float64) Vec {
	return l.B.Towards(l.A, length)
}

// Offset shifts the line by d along its left normal.
// For a counter-clockwise loop the left normal points inwards, so a
// negative d moves the line outwards.
func (l Line) Offset(d float64) Line {
	n := l.B.Sub(l.A).Unit().Perp().Scale(d)
	return Line{l.A.Add(n), l.B.Add(n)}
}

func (l Line) Reverse() Line {
	return Line{l.B, l.A}
}

// Intersection returns the crossing point of the two infinite lines.
// ok is false for parallel lines.
func (l Line) Intersection(m Line) (p Vec, ok bool) {
	r := l.B.Sub(l.A)
	s := m.B.Sub(m.A)
	den := r.Cross(s)
	if math.Abs(den) < 1e-12 {
		return Vec{}, false
	}
	t := m.A.Sub(l.A).Cross(s) / den
	return l.At(t), true
}

// SegmentsIntersect reports whether segments ab and cd share a point.
// Touching at an endpoint counts as intersecting.
func SegmentsIntersect(a, b, c, d Vec) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(c, d, a):
		return true
	case d2 == 0 && onSegment(c, d, b):
		return true
	case d3 == 0 && onSegment(a, b, c):
		return true
	case d4 == 0 && onSegment(a, b, d):
		return true
	}
	return false
}

func orient(a, b, c Vec) float64 {
	v := b.Sub(a).Cross(c.Sub(a))
	if math.Abs(v) < 1e-12 {
		return 0
	}
	return v
}

func onSegment(a, b, p Vec) bool {
	return math.Min(a.X, b.X)-1e-12 <= p.X && p.X <= math.Max(a.X, b.X)+1e-12 &&
		math.Min(a.Y, b.Y)-1e-12 <= p.Y && p.Y <= math.Max(a.Y, b.Y)+1e-12
}
