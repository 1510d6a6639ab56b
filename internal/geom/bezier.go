package geom

import (
	"github.com/pkg/errors"
)

// FlattenSteps is the number of chords used to approximate a curve when
// measuring or intersecting it.
const FlattenSteps = 64

// Bezier is a Bézier curve of degree len(P)-1. P[0] and P[len(P)-1] are the
// end points, the others are control points.
type Bezier struct {
	P []Vec
}

func NewBezier(p ...Vec) Bezier {
	cp := make([]Vec, len(p))
	copy(cp, p)
	return Bezier{P: cp}
}

func (b Bezier) Degree() int {
	return len(b.P) - 1
}

func (b Bezier) Start() Vec {
	return b.P[0]
}

func (b Bezier) End() Vec {
	return b.P[len(b.P)-1]
}

// At evaluates the curve with de Casteljau's algorithm.
func (b Bezier) At(t float64) Vec {
	tmp := make([]Vec, len(b.P))
	copy(tmp, b.P)
	for n := len(tmp) - 1; n > 0; n-- {
		for i := 0; i < n; i++ {
			tmp[i] = tmp[i].Lerp(tmp[i+1], t)
		}
	}
	return tmp[0]
}

// Split cuts the curve at t and returns both halves. The two halves
// describe exactly the same points as the original curve.
func (b Bezier) Split(t float64) (Bezier, Bezier) {
	n := len(b.P)
	left := make([]Vec, n)
	right := make([]Vec, n)
	tmp := make([]Vec, n)
	copy(tmp, b.P)
	for k := 0; k < n; k++ {
		left[k] = tmp[0]
		right[n-1-k] = tmp[n-1-k]
		for i := 0; i < n-1-k; i++ {
			tmp[i] = tmp[i].Lerp(tmp[i+1], t)
		}
	}
	return Bezier{P: left}, Bezier{P: right}
}

func (b Bezier) Reverse() Bezier {
	n := len(b.P)
	p := make([]Vec, n)
	for i := range b.P {
		p[n-1-i] = b.P[i]
	}
	return Bezier{P: p}
}

// Flatten returns steps+1 points evenly spaced in t, end points included.
func (b Bezier) Flatten(steps int) []Vec {
	if steps < 1 {
		steps = 1
	}
	pts := make([]Vec, 0, steps+1)
	for i := 0; i <= steps; i++ {
		pts = append(pts, b.At(float64(i)/float64(steps)))
	}
	// avoid rounding drift on the end points
	pts[0] = b.Start()
	pts[steps] = b.End()
	return pts
}

// Length approximates the arc length with FlattenSteps chords.
func (b Bezier) Length() float64 {
	return PolylineLength(b.Flatten(FlattenSteps))
}

func (b Bezier) Translate(d Vec) Bezier {
	p := make([]Vec, len(b.P))
	for i, v := range b.P {
		p[i] = v.Add(d)
	}
	return Bezier{P: p}
}

// Through builds the curve of degree len(points)-1 that passes through
// points[i] at parameter ts[i]. ts must start at 0, end at 1 and increase
// strictly. The interior control points are solved with a linear system.
func Through(points []Vec, ts []float64) (Bezier, error) {
	n := len(points)
	if n < 2 {
		return Bezier{}, errors.New("a curve needs at least two points")
	}
	if len(ts) != n {
		return Bezier{}, errors.Errorf("got %d parameters for %d points", len(ts), n)
	}
	if ts[0] != 0 || ts[n-1] != 1 {
		return Bezier{}, errors.New("parameters must start at 0 and end at 1")
	}
	for i := 1; i < n; i++ {
		if ts[i] <= ts[i-1] {
			return Bezier{}, errors.New("parameters must increase strictly")
		}
	}
	if n == 2 {
		return NewBezier(points[0], points[1]), nil
	}

	deg := n - 1
	m := n - 2
	a := make([][]float64, m)
	bx := make([]float64, m)
	by := make([]float64, m)
	p0, pn := points[0], points[deg]
	for i := 1; i <= m; i++ {
		t := ts[i]
		row := make([]float64, m)
		for k := 1; k <= m; k++ {
			row[k-1] = Bernstein(deg, k, t)
		}
		a[i-1] = row
		rhs := points[i].Sub(p0.Scale(Bernstein(deg, 0, t))).Sub(pn.Scale(Bernstein(deg, deg, t)))
		bx[i-1] = rhs.X
		by[i-1] = rhs.Y
	}

	xs, err := Solve(a, bx)
	if err != nil {
		return Bezier{}, errors.Wrap(err, "fit curve")
	}
	ys, err := Solve(a, by)
	if err != nil {
		return Bezier{}, errors.Wrap(err, "fit curve")
	}

	p := make([]Vec, 0, n)
	p = append(p, p0)
	for i := 0; i < m; i++ {
		p = append(p, Vec{xs[i], ys[i]})
	}
	p = append(p, pn)
	return Bezier{P: p}, nil
}

// ThroughUniform is Through with evenly spaced parameters.
func ThroughUniform(points ...Vec) (Bezier, error) {
	n := len(points)
	ts := make([]float64, n)
	for i := range ts {
		if n > 1 {
			ts[i] = float64(i) / float64(n-1)
		}
	}
	if n > 1 {
		ts[n-1] = 1
	}
	return Through(points, ts)
}

// Bernstein returns the k-th Bernstein basis polynomial of degree n at t.
func Bernstein(n, k int, t float64) float64 {
	return float64(Binomial(n, k)) * ipow(t, k) * ipow(1-t, n-k)
}

func Binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := int64(1)
	for i := 1; i <= k; i++ {
		r = r * int64(n-k+i) / int64(i)
	}
	return r
}

func ipow(x float64, k int) float64 {
	r := 1.0
	for i := 0; i < k; i++ {
		r *= x
	}
	return r
}
