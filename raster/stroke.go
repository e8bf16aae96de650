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

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// strokeSegment is a flattened piece of a stroked path, in user space.
type strokeSegment struct {
	A, B vec.Vec2 // end points
	T    vec.Vec2 // unit tangent from A to B
	N    vec.Vec2 // unit normal, T rotated by 90° counter-clockwise
}

// Stroke draws the outline of p using Width, Cap, Join and MiterLimit.
//
// The stroke is assembled from convex pieces: one quadrilateral per
// segment, plus polygons for caps and joins. All pieces are given the same
// orientation and filled together with the nonzero rule, so that their
// union is painted exactly once.
func (r *Rasterizer) Stroke(p *path.Data, emit EmitFunc) {
	if r.Width <= 0 {
		return
	}
	r.flattenStroke(p)

	r.stroke = r.stroke[:0]
	r.strokeOffsets = r.strokeOffsets[:0]

	d := r.Width / 2
	if r.Cap == graphics.LineCapRound {
		for _, pt := range r.degeneratePoints {
			r.addCircle(pt, d)
		}
	}
	for i := range r.segsOffsets {
		r.strokeSubpath(r.subpathSegments(i), r.subpathClosed[i], d)
	}

	r.beginEdges()
	for i, start := range r.strokeOffsets {
		end := len(r.stroke)
		if i+1 < len(r.strokeOffsets) {
			end = r.strokeOffsets[i+1]
		}
		poly := r.stroke[start:end]
		for j := range poly {
			r.addEdge(poly[j], poly[(j+1)%len(poly)])
		}
	}
	r.sweep(fillNonZero, emit)
}

// flattenStroke splits p into subpaths of straight segments.
func (r *Rasterizer) flattenStroke(p *path.Data) {
	r.segs = r.segs[:0]
	r.segsOffsets = r.segsOffsets[:0]
	r.subpathClosed = r.subpathClosed[:0]
	r.degeneratePoints = r.degeneratePoints[:0]
	if p == nil {
		return
	}

	var cur, start vec.Vec2
	first := 0
	open := false
	drawn := false

	finish := func(closed bool) {
		if !open || !drawn && !closed {
			return
		}
		if len(r.segs) == first {
			r.degeneratePoints = append(r.degeneratePoints, start)
		} else {
			r.segsOffsets = append(r.segsOffsets, first)
			r.subpathClosed = append(r.subpathClosed, closed)
		}
	}

	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			finish(false)
			cur = p.Coords[k]
			start = cur
			first = len(r.segs)
			open = true
			drawn = false
			k++
		case path.CmdLineTo:
			r.addStrokeSegment(cur, p.Coords[k])
			cur = p.Coords[k]
			drawn = true
			k++
		case path.CmdQuadTo:
			r.flattenQuadratic(cur, p.Coords[k], p.Coords[k+1], r.addStrokeSegment)
			cur = p.Coords[k+1]
			drawn = true
			k += 2
		case path.CmdCubeTo:
			r.flattenCubic(cur, p.Coords[k], p.Coords[k+1], p.Coords[k+2], r.addStrokeSegment)
			cur = p.Coords[k+2]
			drawn = true
			k += 3
		case path.CmdClose:
			if cur != start {
				r.addStrokeSegment(cur, start)
			}
			finish(true)
			cur = start
			first = len(r.segs)
			open = false
		}
	}
	finish(false)
}

func (r *Rasterizer) addStrokeSegment(a, b vec.Vec2) {
	d := b.Sub(a)
	l := d.Length()
	if l < zeroLengthThreshold {
		return
	}
	t := d.Mul(1 / l)
	r.segs = append(r.segs, strokeSegment{A: a, B: b, T: t, N: vec.Vec2{X: -t.Y, Y: t.X}})
}

func (r *Rasterizer) subpathSegments(i int) []strokeSegment {
	end := len(r.segs)
	if i+1 < len(r.segsOffsets) {
		end = r.segsOffsets[i+1]
	}
	return r.segs[r.segsOffsets[i]:end]
}

// strokeSubpath adds the polygons covering one subpath. d is half the
// stroke width.
func (r *Rasterizer) strokeSubpath(segs []strokeSegment, closed bool, d float64) {
	n := len(segs)
	for i := range segs {
		s := &segs[i]
		a, b := s.A, s.B
		if !closed && r.Cap == graphics.LineCapSquare {
			if i == 0 {
				a = a.Sub(s.T.Mul(d))
			}
			if i == n-1 {
				b = b.Add(s.T.Mul(d))
			}
		}
		off := s.N.Mul(d)
		r.addPolygon(a.Add(off), b.Add(off), b.Sub(off), a.Sub(off))
	}

	for i := range n - 1 {
		r.addJoin(&segs[i], &segs[i+1], d)
	}
	if closed {
		r.addJoin(&segs[n-1], &segs[0], d)
	} else if r.Cap == graphics.LineCapRound {
		r.addCircle(segs[0].A, d)
		r.addCircle(segs[n-1].B, d)
	}
}

// addJoin fills the wedge on the outer side of the corner where s1 ends
// and s2 begins.
func (r *Rasterizer) addJoin(s1, s2 *strokeSegment, d float64) {
	sin := s1.T.X*s2.T.Y - s1.T.Y*s2.T.X
	cos := s1.T.X*s2.T.X + s1.T.Y*s2.T.Y
	if math.Abs(sin) < collinearityThreshold && cos > 0 {
		return
	}

	p := s1.B
	if r.Join == graphics.LineJoinRound {
		r.addCircle(p, d)
		return
	}

	// A left turn (sin > 0) has its outer side along -N.
	side := 1.0
	if sin > 0 {
		side = -1
	}
	o1 := p.Add(s1.N.Mul(side * d))
	o2 := p.Add(s2.N.Mul(side * d))

	if r.Join == graphics.LineJoinMiter {
		// The miter length relative to the width is 1/cos(θ/2), where θ
		// is the angle between the two tangents.
		cosHalf := math.Sqrt(max(0, (1+cos)/2))
		if cosHalf > 0 && 1/cosHalf <= r.MiterLimit+1e-10 {
			bis := s1.N.Add(s2.N)
			if l := bis.Length(); l > zeroLengthThreshold {
				tip := p.Add(bis.Mul(side * d / (cosHalf * l)))
				r.addPolygon(p, o1, tip, o2)
				return
			}
		}
	}
	r.addPolygon(p, o1, o2)
}

// addCircle adds a disc of radius rad around c, approximated to within
// Flatness in device space.
func (r *Rasterizer) addCircle(c vec.Vec2, rad float64) {
	devRad := max(
		r.linear(vec.Vec2{X: rad}).Length(),
		r.linear(vec.Vec2{Y: rad}).Length())

	n := 8
	if devRad > r.Flatness {
		step := 2 * math.Acos(1-r.Flatness/devRad)
		n = max(n, int(math.Ceil(2*math.Pi/step)))
	}

	start := len(r.stroke)
	for i := range n {
		phi := 2 * math.Pi * float64(i) / float64(n)
		r.stroke = append(r.stroke, vec.Vec2{
			X: c.X + rad*math.Cos(phi),
			Y: c.Y + rad*math.Sin(phi),
		})
	}
	r.strokeOffsets = append(r.strokeOffsets, start)
}

// addPolygon appends a polygon with positive orientation, reversing the
// vertex order if necessary. Degenerate polygons are dropped.
func (r *Rasterizer) addPolygon(pts ...vec.Vec2) {
	var area2 float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		area2 += p.X*q.Y - q.X*p.Y
	}
	if math.Abs(area2) < zeroLengthThreshold {
		return
	}

	start := len(r.stroke)
	if area2 > 0 {
		r.stroke = append(r.stroke, pts...)
	} else {
		for i := len(pts) - 1; i >= 0; i-- {
			r.stroke = append(r.stroke, pts[i])
		}
	}
	r.strokeOffsets = append(r.strokeOffsets, start)
}
