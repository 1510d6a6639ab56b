// Package geom holds the 2D primitives the drafting code is built on:
// vectors, segments, Bézier curves of any degree and simple polygons.
//
// Coordinates are plain float64 values in whatever unit the caller uses;
// the sloper works in centimetres with the y axis pointing up.
package geom

import (
	"fmt"
	"math"
)

// Eps is the distance under which two points are considered the same.
const Eps = 1e-6

type Vec struct {
	X, Y float64
}

func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

func (v Vec) Add(w Vec) Vec {
	return Vec{v.X + w.X, v.Y + w.Y}
}

func (v Vec) Sub(w Vec) Vec {
	return Vec{v.X - w.X, v.Y - w.Y}
}

func (v Vec) Scale(k float64) Vec {
	return Vec{v.X * k, v.Y * k}
}

// To returns the point moved by (dx, dy).
func (v Vec) To(dx, dy float64) Vec {
	return Vec{v.X + dx, v.Y + dy}
}

func (v Vec) Dot(w Vec) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross is the z component of the 3D cross product.
func (v Vec) Cross(w Vec) float64 {
	return v.X*w.Y - v.Y*w.X
}

func (v Vec) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec) Dist(w Vec) float64 {
	return w.Sub(v).Norm()
}

// Unit returns v scaled to length 1. The zero vector is returned unchanged.
func (v Vec) Unit() Vec {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Perp is v rotated by +90 degrees.
func (v Vec) Perp() Vec {
	return Vec{-v.Y, v.X}
}

// Lerp returns (1-t)·v + t·w.
func (v Vec) Lerp(w Vec, t float64) Vec {
	return Vec{(1-t)*v.X + t*w.X, (1-t)*v.Y + t*w.Y}
}

func (v Vec) Mid(w Vec) Vec {
	return v.Lerp(w, 0.5)
}

// Towards returns the point at distance length from v in the direction of w.
// A negative length walks away from w.
func (v Vec) Towards(w Vec, length float64) Vec {
	return v.Add(w.Sub(v).Unit().Scale(length))
}

// Polar returns the point at distance length from v along angle degrees,
// measured counter-clockwise from the positive x axis.
func (v Vec) Polar(angle, length float64) Vec {
	theta := Radians(angle)
	return Vec{v.X + length*math.Cos(theta), v.Y + length*math.Sin(theta)}
}

// Rotate rotates v around origin by angle degrees counter-clockwise.
func (v Vec) Rotate(angle float64, origin Vec) Vec {
	theta := Radians(angle)
	sin, cos := math.Sincos(theta)
	p := v.Sub(origin)
	return Vec{cos*p.X - sin*p.Y, sin*p.X + cos*p.Y}.Add(origin)
}

// Equal reports whether v and w are closer than eps.
func (v Vec) Equal(w Vec, eps float64) bool {
	return v.Dist(w) <= eps
}

func (v Vec) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y)
}

func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Finite reports whether both coordinates are neither NaN nor infinite.
func (v Vec) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
