// Package point provides an immutable 2D point value type and the vector
// arithmetic used to build and compare planar feature vectors.
package point

import (
	"math"
	"strconv"
)

// Point is an immutable 2D coordinate.
type Point struct {
	x float64
	y float64
}

// New creates a point.
func New(x, y float64) Point {
	return Point{x: x, y: y}
}

// Origin returns the point (0, 0).
func Origin() Point { return Point{} }

// X returns the horizontal coordinate.
func (p Point) X() float64 { return p.x }

// Y returns the vertical coordinate.
func (p Point) Y() float64 { return p.y }

// WithX returns a copy of p with x replaced.
func (p Point) WithX(x float64) Point { return Point{x: x, y: p.y} }

// WithY returns a copy of p with y replaced.
func (p Point) WithY(y float64) Point { return Point{x: p.x, y: y} }

// PlusX returns a copy of p shifted horizontally by dx.
func (p Point) PlusX(dx float64) Point { return Point{x: p.x + dx, y: p.y} }

// PlusY returns a copy of p shifted vertically by dy.
func (p Point) PlusY(dy float64) Point { return Point{x: p.x, y: p.y + dy} }

// Equal reports whether both coordinates match exactly.
func (p Point) Equal(o Point) bool { return p.x == o.x && p.y == o.y }

// String formats the point as "(x, y)".
func (p Point) String() string {
	return "(" + strconv.FormatFloat(p.x, 'g', -1, 64) + ", " + strconv.FormatFloat(p.y, 'g', -1, 64) + ")"
}

// Add returns a + b.
func Add(a, b Point) Point { return Point{x: a.x + b.x, y: a.y + b.y} }

// Subtract returns a - b.
func Subtract(a, b Point) Point { return Point{x: a.x - b.x, y: a.y - b.y} }

// Scale multiplies both coordinates by f.
func Scale(p Point, f float64) Point { return Point{x: p.x * f, y: p.y * f} }

// Divide divides both coordinates by d. Division by zero follows IEEE 754.
func Divide(p Point, d float64) Point { return Point{x: p.x / d, y: p.y / d} }

// DotProduct returns a.x*b.x + a.y*b.y.
func DotProduct(a, b Point) float64 { return a.x*b.x + a.y*b.y }

// Length returns the Euclidean norm of p.
func Length(p Point) float64 { return math.Hypot(p.x, p.y) }

// IsOrigin reports whether p is (0, 0).
func IsOrigin(p Point) bool { return p.x == 0 && p.y == 0 }

// Transpose swaps the coordinates.
func Transpose(p Point) Point { return Point{x: p.y, y: p.x} }

// IsLeftTurn reports whether the path a -> b -> c turns counter-clockwise
// or is collinear.
func IsLeftTurn(a, b, c Point) bool {
	u := Subtract(b, a)
	v := Subtract(c, b)
	return u.x*v.y-u.y*v.x >= 0
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	dx := b.x - a.x
	dy := b.y - a.y
	return math.Sqrt(dx*dx + dy*dy)
}
