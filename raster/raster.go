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

// Package raster converts vector paths into anti-aliased coverage values.
//
// Coverage is computed exactly for polygons (curves are flattened first):
// each pixel receives the fraction of its area covered by the shape. The
// result is delivered one scanline at a time through an emit callback, so
// that the caller decides how coverage is composited.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// EmitFunc receives the coverage of one scanline. Coverage[i] belongs to
// pixel (xMin+i, y). The slice is only valid during the call.
type EmitFunc func(y, xMin int, coverage []float32)

// edge is a non-horizontal line segment in device space, stored with
// y0 < y1. dir records the original direction: +1 for downwards, -1 for
// upwards.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
	dir    float32
}

// Rasterizer turns paths into coverage values. Buffers are kept between
// calls, so a single Rasterizer should be reused for all shapes of an
// image.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	// CTM maps user space to device space (pixels, y pointing down).
	CTM matrix.Matrix

	// Clip limits output to this device rectangle.
	// The coordinates must be integers.
	Clip rect.Rect

	// Flatness is the maximum distance in device pixels between a curve
	// and its polygonal approximation.
	Flatness float64

	// Width is the stroke width in user space units.
	Width float64

	// Cap is the shape drawn at the ends of open subpaths.
	Cap graphics.LineCapStyle

	// Join is the shape drawn where two segments of a stroke meet.
	Join graphics.LineJoinStyle

	// MiterLimit bounds the length of miter joins, relative to the
	// stroke width. Longer miters are drawn as bevels.
	MiterLimit float64

	cover  []float32 // per-pixel cover of the current scanline; reused as output
	area   []float32 // per-pixel area of the current scanline
	edges  []edge    // device space edges of the current shape
	active []int     // indices of edges crossing the current scanline

	// device space bounding box of edges
	bboxEmpty    bool
	bxMin, bxMax float64
	byMin, byMax float64

	// stroke outlines
	stroke        []vec.Vec2 // all polygons, contiguous
	strokeOffsets []int      // start of each polygon in stroke

	// flattened stroke input
	segs             []strokeSegment // segments of all subpaths, contiguous
	segsOffsets      []int           // start of each subpath in segs
	subpathClosed    []bool          // whether each subpath is closed
	degeneratePoints []vec.Vec2      // subpaths without any length
}

// NewRasterizer returns a Rasterizer for the given clip rectangle, with an
// identity CTM and a one unit wide stroke.
func NewRasterizer(clip rect.Rect) *Rasterizer {
	return &Rasterizer{
		CTM:        matrix.Identity,
		Clip:       clip,
		Flatness:   defaultFlatness,
		Width:      1,
		Cap:        graphics.LineCapButt,
		Join:       graphics.LineJoinMiter,
		MiterLimit: defaultMiterLimit,
	}
}

// Reset restores the default parameters and sets a new clip rectangle.
// Internal buffers are kept.
func (r *Rasterizer) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.Width = 1
	r.Cap = graphics.LineCapButt
	r.Join = graphics.LineJoinMiter
	r.MiterLimit = defaultMiterLimit
}

// FillNonZero fills p using the nonzero winding rule.
func (r *Rasterizer) FillNonZero(p *path.Data, emit EmitFunc) {
	r.beginEdges()
	r.walkPath(p, r.addEdge)
	r.sweep(fillNonZero, emit)
}

// FillEvenOdd fills p using the even-odd rule.
func (r *Rasterizer) FillEvenOdd(p *path.Data, emit EmitFunc) {
	r.beginEdges()
	r.walkPath(p, r.addEdge)
	r.sweep(fillEvenOdd, emit)
}

type fillRule int

const (
	fillNonZero fillRule = iota
	fillEvenOdd
)

// walkPath flattens p into line segments in user space. Open subpaths are
// closed implicitly, as required for filling.
func (r *Rasterizer) walkPath(p *path.Data, line func(a, b vec.Vec2)) {
	if p == nil {
		return
	}
	var cur, start vec.Vec2
	open := false
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			if open && cur != start {
				line(cur, start)
			}
			cur = p.Coords[k]
			start = cur
			open = true
			k++
		case path.CmdLineTo:
			line(cur, p.Coords[k])
			cur = p.Coords[k]
			k++
		case path.CmdQuadTo:
			r.flattenQuadratic(cur, p.Coords[k], p.Coords[k+1], line)
			cur = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			r.flattenCubic(cur, p.Coords[k], p.Coords[k+1], p.Coords[k+2], line)
			cur = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if cur != start {
				line(cur, start)
			}
			cur = start
			open = false
		}
	}
	if open && cur != start {
		line(cur, start)
	}
}

// linear applies the linear part of the CTM to v.
func (r *Rasterizer) linear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y,
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y,
	}
}

// flattenQuadratic splits the quadratic Bézier p0, p1, p2 into line
// segments, using enough segments that the device space error stays below
// Flatness.
func (r *Rasterizer) flattenQuadratic(p0, p1, p2 vec.Vec2, line func(a, b vec.Vec2)) {
	dev := r.linear(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)).Length()
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		q := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		line(prev, q)
		prev = q
	}
}

// flattenCubic splits a cubic Bézier into line segments. The segment
// count follows Wang's formula.
func (r *Rasterizer) flattenCubic(p0, p1, p2, p3 vec.Vec2, line func(a, b vec.Vec2)) {
	d1 := r.linear(p0.Sub(p1.Mul(2)).Add(p2)).Length()
	d2 := r.linear(p1.Sub(p2.Mul(2)).Add(p3)).Length()
	n := 1
	if m := max(d1, d2); m > 0 {
		n = max(1, int(math.Ceil(math.Sqrt(3*m/(4*r.Flatness)))))
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		q := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		line(prev, q)
		prev = q
	}
}

func (r *Rasterizer) beginEdges() {
	r.edges = r.edges[:0]
	r.bboxEmpty = true
}

// addEdge transforms a user space segment to device space and records it.
func (r *Rasterizer) addEdge(a, b vec.Vec2) {
	m := r.CTM
	x0 := m[0]*a.X + m[2]*a.Y + m[4]
	y0 := m[1]*a.X + m[3]*a.Y + m[5]
	x1 := m[0]*b.X + m[2]*b.Y + m[4]
	y1 := m[1]*b.X + m[3]*b.Y + m[5]

	if math.Abs(y1-y0) < horizontalEdgeThreshold {
		return
	}

	dir := float32(1)
	if y1 < y0 {
		x0, y0, x1, y1 = x1, y1, x0, y0
		dir = -1
	}
	r.edges = append(r.edges, edge{
		x0: x0, y0: y0,
		x1: x1, y1: y1,
		dxdy: (x1 - x0) / (y1 - y0),
		dir:  dir,
	})

	xl, xr := min(x0, x1), max(x0, x1)
	if r.bboxEmpty {
		r.bxMin, r.bxMax, r.byMin, r.byMax = xl, xr, y0, y1
		r.bboxEmpty = false
		return
	}
	r.bxMin = min(r.bxMin, xl)
	r.bxMax = max(r.bxMax, xr)
	r.byMin = min(r.byMin, y0)
	r.byMax = max(r.byMax, y1)
}

// bounds returns the pixel range touched by the collected edges, clipped
// to Clip.
func (r *Rasterizer) bounds() (xMin, xMax, yMin, yMax int, ok bool) {
	if r.bboxEmpty {
		return 0, 0, 0, 0, false
	}
	xMin = max(int(math.Floor(r.bxMin)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(r.bxMax))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(r.byMin)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(r.byMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

// sweep scans the collected edges from top to bottom, keeping a list of
// the edges which intersect the current scanline.
//
// For every pixel two values are accumulated: cover, the signed height of
// all edge pieces inside the pixel column, and area, the part of that
// height which lies to the right of the edge within the pixel. The
// coverage of pixel i is then area[i] plus the sum of cover[j] for j < i.
func (r *Rasterizer) sweep(rule fillRule, emit EmitFunc) {
	xMin, xMax, yMin, yMax, ok := r.bounds()
	if !ok {
		return
	}
	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.y0, b.y0)
	})

	r.active = r.active[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		top, bot := float64(y), float64(y+1)

		for next < len(r.edges) && r.edges[next].y0 < bot {
			r.active = append(r.active, next)
			next++
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if e.y1 <= top {
				r.active[i] = r.active[len(r.active)-1]
				r.active = r.active[:len(r.active)-1]
				continue
			}
			if r.accumulate(e, top, bot, xMin, xMax) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		integrate(r.cover, r.area, rule)
		if row, offs := trimZeros(r.cover); row != nil {
			emit(y, xMin+offs, row)
		}
	}
}

// accumulate adds the part of e between the scanlines top and bot to the
// cover and area buffers. It reports whether anything was added.
func (r *Rasterizer) accumulate(e *edge, top, bot float64, xMin, xMax int) bool {
	top = max(top, e.y0)
	bot = min(bot, e.y1)
	if bot <= top {
		return false
	}

	xa := e.x0 + e.dxdy*(top-e.y0)
	xb := e.x0 + e.dxdy*(bot-e.y0)
	if xa > xb {
		xa, xb = xb, xa
	}
	h := bot - top

	if math.Floor(xa) == math.Floor(xb) {
		r.deposit(int(math.Floor(xa)), e.dir*float32(h), (xa+xb)/2, xMin, xMax)
		return true
	}

	// Split the piece at pixel column boundaries.
	dydx := h / (xb - xa)
	for xl := xa; xl < xb; {
		c := math.Floor(xl)
		xr := min(c+1, xb)
		r.deposit(int(c), e.dir*float32((xr-xl)*dydx), (xl+xr)/2, xMin, xMax)
		xl = xr
	}
	return true
}

// deposit records a piece of edge of signed height h in pixel column c,
// crossing the column at mean position xMid.
func (r *Rasterizer) deposit(c int, h float32, xMid float64, xMin, xMax int) {
	switch {
	case c >= xMax:
		return
	case c < xMin:
		r.cover[0] += h
		r.area[0] += h
	default:
		i := c - xMin
		r.cover[i] += h
		r.area[i] += h * float32(float64(c+1)-xMid)
	}
}

// integrate turns the cover and area of one scanline into coverage values,
// stored in place in cover.
func integrate(cover, area []float32, rule fillRule) {
	var acc float32
	for i := range cover {
		w := acc + area[i]
		acc += cover[i]
		if w < 0 {
			w = -w
		}
		if rule == fillEvenOdd {
			w = float32(math.Mod(float64(w), 2))
			if w > 1 {
				w = 2 - w
			}
		} else if w > 1 {
			w = 1
		}
		cover[i] = w
	}
}

// trimZeros strips zero coverage from both ends of row.
// It returns nil if the whole row is zero.
func trimZeros(row []float32) ([]float32, int) {
	lo, hi := 0, len(row)
	for lo < hi && row[lo] == 0 {
		lo++
	}
	if lo == hi {
		return nil, 0
	}
	for row[hi-1] == 0 {
		hi--
	}
	return row[lo:hi], lo
}

const (
	// defaultFlatness is the curve tolerance in device pixels.
	defaultFlatness = 0.25

	// defaultMiterLimit converts joins with an interior angle below about
	// 11.5 degrees to bevels.
	defaultMiterLimit = 10.0

	// horizontalEdgeThreshold is the smallest vertical extent of an edge
	// which can contribute coverage.
	horizontalEdgeThreshold = 1e-10

	// zeroLengthThreshold is the shortest stroke segment which is drawn.
	zeroLengthThreshold = 1e-10

	// collinearityThreshold is the sine of the smallest turn which gets a
	// join.
	collinearityThreshold = 1e-6
)
