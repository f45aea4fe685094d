package core

import "math"

// Canvas projects viewport coordinates onto a region of a Screen.
// Draw hooks only receive a Canvas, so the simulation never sees the terminal.
type Canvas struct {
	screen *Screen
	area   Rect
	viewW  float64
	viewH  float64
}

// NewCanvas maps a viewW×viewH viewport onto area of s.
func NewCanvas(s *Screen, area Rect, viewW, viewH float64) *Canvas {
	return &Canvas{screen: s, area: area, viewW: viewW, viewH: viewH}
}

// Area returns the screen region the viewport is mapped to.
func (c *Canvas) Area() Rect {
	return c.area
}

// Project converts a viewport position to screen cell coordinates.
// ok is false when the position falls outside the mapped area.
func (c *Canvas) Project(p Vec) (x, y int, ok bool) {
	if c.viewW <= 0 || c.viewH <= 0 || c.area.W <= 0 || c.area.H <= 0 {
		return 0, 0, false
	}
	fx := real(p) / c.viewW * float64(c.area.W)
	fy := imag(p) / c.viewH * float64(c.area.H)
	x = c.area.X + int(math.Floor(fx))
	y = c.area.Y + int(math.Floor(fy))
	return x, y, c.area.Contains(x, y)
}

// Plot draws r at viewport position p.
func (c *Canvas) Plot(p Vec, r rune, col Color) {
	if x, y, ok := c.Project(p); ok {
		c.screen.SetCell(x, y, r, col)
	}
}

// Line plots r along the segment [a, b], one sample per crossed cell.
func (c *Canvas) Line(a, b Vec, r rune, col Color) {
	cellW := c.viewW / float64(Max(c.area.W, 1))
	cellH := c.viewH / float64(Max(c.area.H, 1))
	d := b - a
	steps := int(math.Max(math.Abs(real(d))/cellW, math.Abs(imag(d))/cellH)) + 1
	for i := 0; i <= steps; i++ {
		c.Plot(Lerp(a, b, float64(i)/float64(steps)), r, col)
	}
}

// Text writes s starting at viewport position p, clipped to the area.
func (c *Canvas) Text(p Vec, s string, col Color) {
	x, y, _ := c.Project(p)
	i := 0
	for _, r := range s {
		if c.area.Contains(x+i, y) {
			c.screen.SetCell(x+i, y, r, col)
		}
		i++
	}
}
