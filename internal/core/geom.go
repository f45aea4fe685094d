// Package core provides the shared primitives of the danmaku engine: viewport
// geometry, the character screen buffer and canvas projection, colors, and
// input keys. It has no dependencies on the terminal layer so simulation code
// stays pure and testable.
package core

import (
	"math"
	"math/cmplx"
)

// Vec is a point or direction in viewport units.
// The real part is x (rightwards), the imaginary part is y (downwards).
type Vec = complex128

// V builds a vector from its components.
func V(x, y float64) Vec {
	return complex(x, y)
}

// Dir returns the unit vector pointing at angle (radians).
func Dir(angle float64) Vec {
	return complex(math.Cos(angle), math.Sin(angle))
}

// Length returns the magnitude of v.
func Length(v Vec) float64 {
	return cmplx.Abs(v)
}

// Angle returns the direction of v in radians.
func Angle(v Vec) float64 {
	return cmplx.Phase(v)
}

// Normalize returns v scaled to unit length, or zero for the zero vector.
func Normalize(v Vec) Vec {
	l := cmplx.Abs(v)
	if l == 0 {
		return 0
	}
	return v / complex(l, 0)
}

// Scale multiplies v by a real factor.
func Scale(v Vec, f float64) Vec {
	return v * complex(f, 0)
}

// Lerp interpolates between a and b.
func Lerp(a, b Vec, t float64) Vec {
	return a + Scale(b-a, t)
}

// Approach moves v towards target by at most step.
func Approach(v, target, step float64) float64 {
	if v < target {
		return math.Min(v+step, target)
	}
	return math.Max(v-step, target)
}

// Rect represents an axis-aligned box in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// InViewport reports whether p lies inside a w×h viewport grown by margin
// on every side. Edges are inclusive.
func InViewport(p Vec, w, h, margin float64) bool {
	return real(p) >= -margin && real(p) <= w+margin &&
		imag(p) >= -margin && imag(p) <= h+margin
}

// SegmentDistance returns the distance from p to the segment [a, b].
func SegmentDistance(p, a, b Vec) float64 {
	ab := b - a
	l2 := real(ab)*real(ab) + imag(ab)*imag(ab)
	if l2 == 0 {
		return cmplx.Abs(p - a)
	}
	ap := p - a
	t := (real(ap)*real(ab) + imag(ap)*imag(ab)) / l2
	t = ClampF(t, 0, 1)
	return cmplx.Abs(p - (a + Scale(ab, t)))
}

// Circle is a disc in viewport units.
type Circle struct {
	Center Vec
	Radius float64
}

// ContainsPoint reports whether p is strictly inside the circle.
func (c Circle) ContainsPoint(p Vec) bool {
	return cmplx.Abs(p-c.Center) < c.Radius
}

// IntersectsSegment reports whether a segment of the given width touches the circle.
func (c Circle) IntersectsSegment(a, b Vec, width float64) bool {
	return SegmentDistance(c.Center, a, b) < c.Radius+width/2
}

// Ellipse is an ellipse with semi-axes Axes (real = along its own x axis,
// imag = along its own y axis) rotated by Angle radians.
type Ellipse struct {
	Center Vec
	Axes   Vec
	Angle  float64
}

// local maps p into the space where the ellipse is the unit circle.
func (e Ellipse) local(p Vec) Vec {
	d := (p - e.Center) * Dir(-e.Angle)
	return complex(real(d)/real(e.Axes), imag(d)/imag(e.Axes))
}

// ContainsPoint reports whether p is inside the ellipse.
func (e Ellipse) ContainsPoint(p Vec) bool {
	if real(e.Axes) <= 0 || imag(e.Axes) <= 0 {
		return false
	}
	l := e.local(p)
	return real(l)*real(l)+imag(l)*imag(l) <= 1
}

// Grow widens both semi-axes by d.
func (e Ellipse) Grow(d float64) Ellipse {
	e.Axes += complex(d, d)
	return e
}

// IntersectsSegment reports whether the segment [a, b] crosses the ellipse.
// Affine maps keep segments straight, so the test runs against the unit
// circle in ellipse-local space.
func (e Ellipse) IntersectsSegment(a, b Vec) bool {
	if real(e.Axes) <= 0 || imag(e.Axes) <= 0 {
		return false
	}
	return SegmentDistance(0, e.local(a), e.local(b)) <= 1
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
