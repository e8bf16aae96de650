// seehuhn.de/go/radar - nearest-aircraft display for colour e-paper
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package raster

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// canvas collects emitted coverage into a w×h buffer.
type canvas struct {
	w, h int
	pix  []float32
	bad  []string
}

func newCanvas(w, h int) *canvas {
	return &canvas{w: w, h: h, pix: make([]float32, w*h)}
}

func (c *canvas) emit(y, xMin int, coverage []float32) {
	if y < 0 || y >= c.h || xMin < 0 || xMin+len(coverage) > c.w {
		c.bad = append(c.bad, "row outside clip")
		return
	}
	for i, v := range coverage {
		if v < 0 || v > 1 {
			c.bad = append(c.bad, "coverage outside [0,1]")
		}
		c.pix[y*c.w+xMin+i] = v
	}
}

func (c *canvas) at(x, y int) float32 {
	return c.pix[y*c.w+x]
}

func (c *canvas) sum() float64 {
	var s float64
	for _, v := range c.pix {
		s += float64(v)
	}
	return s
}

func (c *canvas) check(t *testing.T) {
	t.Helper()
	for _, msg := range c.bad {
		t.Error(msg)
	}
}

func clipRect(w, h int) rect.Rect {
	return rect.Rect{LLx: 0, LLy: 0, URx: float64(w), URy: float64(h)}
}

func box(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: x0, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y1}).
		LineTo(vec.Vec2{X: x0, Y: y1}).
		Close()
}

// TestTriangleCoverage verifies exact coverage values for a simple triangle.
// The triangle (0,0)→(10,0)→(10,1)→close has a diagonal edge y = x/10.
// Each pixel X should have coverage (2X+1)/20: 0.05, 0.15, ..., 0.95.
func TestTriangleCoverage(t *testing.T) {
	triangle := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 1}).
		Close()

	c := newCanvas(10, 1)
	r := NewRasterizer(clipRect(10, 1))
	r.FillNonZero(triangle, c.emit)
	c.check(t)

	const epsilon = 1e-6
	for x := range 10 {
		want := float32(2*x+1) / 20
		if got := c.at(x, 0); math.Abs(float64(got-want)) > epsilon {
			t.Errorf("pixel %d: expected coverage %.4f, got %.4f", x, want, got)
		}
	}
}

func TestRectangleCoverage(t *testing.T) {
	c := newCanvas(10, 10)
	r := NewRasterizer(clipRect(10, 10))
	r.FillNonZero(box(2, 3, 7.5, 8), c.emit)
	c.check(t)

	for y := range 10 {
		for x := range 10 {
			var want float32
			switch {
			case y < 3 || y >= 8 || x < 2 || x > 7:
				want = 0
			case x == 7:
				want = 0.5
			default:
				want = 1
			}
			if got := c.at(x, y); math.Abs(float64(got-want)) > 1e-6 {
				t.Errorf("pixel (%d,%d): got %.4f, want %.4f", x, y, got, want)
			}
		}
	}
}

func TestFillRules(t *testing.T) {
	// two nested squares with the same orientation
	p := box(2, 2, 18, 18)
	inner := box(6, 6, 14, 14)
	p.Cmds = append(p.Cmds, inner.Cmds...)
	p.Coords = append(p.Coords, inner.Coords...)

	r := NewRasterizer(clipRect(20, 20))

	nz := newCanvas(20, 20)
	r.FillNonZero(p, nz.emit)
	nz.check(t)
	if got := nz.at(10, 10); got != 1 {
		t.Errorf("nonzero: centre coverage %.3f, want 1", got)
	}
	if got := nz.sum(); math.Abs(got-256) > 1e-3 {
		t.Errorf("nonzero: total coverage %.3f, want 256", got)
	}

	eo := newCanvas(20, 20)
	r.FillEvenOdd(p, eo.emit)
	eo.check(t)
	if got := eo.at(10, 10); got != 0 {
		t.Errorf("even-odd: centre coverage %.3f, want 0", got)
	}
	if got := eo.at(4, 4); got != 1 {
		t.Errorf("even-odd: ring coverage %.3f, want 1", got)
	}
	if got := eo.sum(); math.Abs(got-(256-64)) > 1e-3 {
		t.Errorf("even-odd: total coverage %.3f, want 192", got)
	}
}

func TestCurveArea(t *testing.T) {
	// a disc made of four cubic arcs
	const k = 0.5522847498
	cx, cy, rad := 20.0, 20.0, 15.0
	p := (&path.Data{}).
		MoveTo(vec.Vec2{X: cx + rad, Y: cy}).
		CubeTo(vec.Vec2{X: cx + rad, Y: cy + k*rad}, vec.Vec2{X: cx + k*rad, Y: cy + rad}, vec.Vec2{X: cx, Y: cy + rad}).
		CubeTo(vec.Vec2{X: cx - k*rad, Y: cy + rad}, vec.Vec2{X: cx - rad, Y: cy + k*rad}, vec.Vec2{X: cx - rad, Y: cy}).
		CubeTo(vec.Vec2{X: cx - rad, Y: cy - k*rad}, vec.Vec2{X: cx - k*rad, Y: cy - rad}, vec.Vec2{X: cx, Y: cy - rad}).
		CubeTo(vec.Vec2{X: cx + k*rad, Y: cy - rad}, vec.Vec2{X: cx + rad, Y: cy - k*rad}, vec.Vec2{X: cx + rad, Y: cy}).
		Close()

	c := newCanvas(40, 40)
	NewRasterizer(clipRect(40, 40)).FillNonZero(p, c.emit)
	c.check(t)

	want := math.Pi * rad * rad
	if got := c.sum(); math.Abs(got-want)/want > 0.03 {
		t.Errorf("disc area %.2f, want %.2f", got, want)
	}
}

func TestClip(t *testing.T) {
	c := newCanvas(10, 10)
	r := NewRasterizer(clipRect(10, 10))
	r.FillNonZero(box(-5, -5, 5, 25), c.emit)
	c.check(t)
	if got := c.sum(); math.Abs(got-50) > 1e-3 {
		t.Errorf("clipped area %.3f, want 50", got)
	}

	// entirely outside
	out := newCanvas(10, 10)
	r.FillNonZero(box(20, 20, 30, 30), out.emit)
	if got := out.sum(); got != 0 {
		t.Errorf("coverage %.3f for a shape outside the clip", got)
	}
}

func TestCTM(t *testing.T) {
	c := newCanvas(40, 40)
	r := NewRasterizer(clipRect(40, 40))
	r.CTM = matrix.Matrix{10, 0, 0, 10, 5, 5}
	r.FillNonZero(box(0, 0, 2, 3), c.emit)
	c.check(t)

	if got := c.sum(); math.Abs(got-600) > 1e-3 {
		t.Errorf("scaled area %.3f, want 600", got)
	}
	if c.at(4, 4) != 0 || c.at(5, 5) != 1 || c.at(24, 34) != 1 || c.at(25, 35) != 0 {
		t.Error("scaled rectangle has the wrong position")
	}
}

func TestStrokeCaps(t *testing.T) {
	line := (&path.Data{}).
		MoveTo(vec.Vec2{X: 4, Y: 10}).
		LineTo(vec.Vec2{X: 20, Y: 10})

	cases := []struct {
		cap  graphics.LineCapStyle
		want float64
		tol  float64
	}{
		{graphics.LineCapButt, 16 * 4, 1e-3},
		{graphics.LineCapSquare, 20 * 4, 1e-3},
		{graphics.LineCapRound, 16*4 + math.Pi*4, 2},
	}
	for _, tc := range cases {
		t.Run(tc.cap.String(), func(t *testing.T) {
			c := newCanvas(30, 20)
			r := NewRasterizer(clipRect(30, 20))
			r.Width = 4
			r.Cap = tc.cap
			r.Stroke(line, c.emit)
			c.check(t)
			if got := c.sum(); math.Abs(got-tc.want) > tc.tol {
				t.Errorf("stroke area %.3f, want %.3f", got, tc.want)
			}
		})
	}
}

func TestStrokeJoins(t *testing.T) {
	corner := (&path.Data{}).
		MoveTo(vec.Vec2{X: 10, Y: 30}).
		LineTo(vec.Vec2{X: 30, Y: 30}).
		LineTo(vec.Vec2{X: 30, Y: 10})

	area := func(join graphics.LineJoinStyle) float64 {
		c := newCanvas(40, 40)
		r := NewRasterizer(clipRect(40, 40))
		r.Width = 6
		r.Join = join
		r.Stroke(corner, c.emit)
		c.check(t)
		return c.sum()
	}

	// Two 20×6 bars overlap in a 3×3 square; the outer 3×3 corner is
	// what the join adds.
	base := 2*20*6 - 9.0
	miter := area(graphics.LineJoinMiter)
	round := area(graphics.LineJoinRound)
	bevel := area(graphics.LineJoinBevel)

	if math.Abs(miter-(base+9)) > 1e-3 {
		t.Errorf("miter area %.3f, want %.3f", miter, base+9)
	}
	if math.Abs(bevel-(base+4.5)) > 1e-3 {
		t.Errorf("bevel area %.3f, want %.3f", bevel, base+4.5)
	}
	if !(bevel < round && round < miter) {
		t.Errorf("want bevel < round < miter, got %.3f, %.3f, %.3f", bevel, round, miter)
	}
}

func TestStrokeMiterLimit(t *testing.T) {
	// a very sharp corner
	spike := (&path.Data{}).
		MoveTo(vec.Vec2{X: 5, Y: 35}).
		LineTo(vec.Vec2{X: 20, Y: 5}).
		LineTo(vec.Vec2{X: 35, Y: 35})

	area := func(limit float64) float64 {
		c := newCanvas(40, 40)
		r := NewRasterizer(clipRect(40, 40))
		r.Width = 4
		r.MiterLimit = limit
		r.Stroke(spike, c.emit)
		return c.sum()
	}
	if long, short := area(10), area(1); !(long > short) {
		t.Errorf("miter limit has no effect: %.3f vs %.3f", long, short)
	}
}

func TestStrokeClosed(t *testing.T) {
	c := newCanvas(30, 30)
	r := NewRasterizer(clipRect(30, 30))
	r.Width = 2
	r.Stroke(box(5, 5, 25, 25), c.emit)
	c.check(t)

	// a 22×22 square minus an 18×18 hole
	if got := c.sum(); math.Abs(got-(22*22-18*18)) > 1e-3 {
		t.Errorf("outline area %.3f, want %d", got, 22*22-18*18)
	}
	if c.at(15, 15) != 0 {
		t.Error("closed stroke filled its interior")
	}
}

func TestStrokeDot(t *testing.T) {
	dot := (&path.Data{}).MoveTo(vec.Vec2{X: 10, Y: 10}).Close()

	for _, cap := range []graphics.LineCapStyle{graphics.LineCapButt, graphics.LineCapRound} {
		c := newCanvas(20, 20)
		r := NewRasterizer(clipRect(20, 20))
		r.Width = 6
		r.Cap = cap
		r.Stroke(dot, c.emit)

		got := c.sum()
		if cap == graphics.LineCapButt && got != 0 {
			t.Errorf("butt cap dot painted %.3f", got)
		}
		if cap == graphics.LineCapRound && math.Abs(got-9*math.Pi) > 3 {
			t.Errorf("round cap dot area %.3f, want about %.3f", got, 9*math.Pi)
		}
	}
}

func TestReset(t *testing.T) {
	r := NewRasterizer(clipRect(5, 5))
	r.Width = 7
	r.CTM = matrix.Matrix{2, 0, 0, 2, 0, 0}
	r.Reset(clipRect(8, 8))
	if r.Width != 1 || r.CTM != matrix.Identity || r.Clip.URx != 8 {
		t.Errorf("Reset left state behind: %+v", r)
	}
}
