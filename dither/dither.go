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

// Package dither reduces a raster image to the colours of an e-paper panel.
package dither

import (
	"image"
	"image/color"
)

// NumColors is the number of colours in a [Palette].
const NumColors = 6

// A Palette lists the colours a panel can show. Indices into the palette
// are what a quantized [Image] stores.
type Palette [NumColors]color.RGBA

// EPaper is the palette of the six-colour panel.
var EPaper = Palette{
	{0, 0, 0, 255},       // black
	{255, 255, 255, 255}, // white
	{255, 255, 0, 255},   // yellow
	{255, 0, 0, 255},     // red
	{0, 0, 255, 255},     // blue
	{0, 255, 0, 255},     // green
}

// Image is a quantized image. Pix holds one palette index per pixel, in
// row-major order.
type Image struct {
	Width, Height int
	Pix           []uint8
	Palette       Palette
}

// At returns the palette index of the pixel at (x, y).
func (img *Image) At(x, y int) uint8 {
	return img.Pix[y*img.Width+x]
}

// Color returns the colour of the pixel at (x, y).
func (img *Image) Color(x, y int) color.RGBA {
	return img.Palette[img.At(x, y)]
}

// Paletted converts img into an [image.Paletted], suitable for PNG output.
func (img *Image) Paletted() *image.Paletted {
	pal := make(color.Palette, len(img.Palette))
	for i, c := range img.Palette {
		pal[i] = c
	}
	out := image.NewPaletted(image.Rect(0, 0, img.Width, img.Height), pal)
	for y := range img.Height {
		copy(out.Pix[y*out.Stride:], img.Pix[y*img.Width:(y+1)*img.Width])
	}
	return out
}

// Quantize maps every pixel of src to a palette entry using Floyd-Steinberg
// error diffusion. Pixels are visited in row-major order. The quantization
// error of a pixel is distributed to its unvisited neighbours with weights
// 7/16 (right), 3/16 (below left), 5/16 (below) and 1/16 (below right);
// error which would fall outside the image is dropped. The alpha channel
// is ignored.
//
// The result only depends on the pixel values of src, so equal inputs give
// byte-identical outputs.
func Quantize(src *image.RGBA, p Palette) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &Image{
		Width:   w,
		Height:  h,
		Pix:     make([]uint8, w*h),
		Palette: p,
	}
	if w == 0 || h == 0 {
		return out
	}

	var pal [NumColors][3]float32
	for i, c := range p {
		pal[i] = [3]float32{float32(c.R), float32(c.G), float32(c.B)}
	}

	// accumulated error for the current and the next row
	cur := make([][3]float32, w)
	next := make([][3]float32, w)

	for y := range h {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := range w {
			var v [3]float32
			for c := range 3 {
				v[c] = clamp(float32(row[4*x+c]) + cur[x][c])
			}

			k := nearest(&pal, v)
			out.Pix[y*w+x] = uint8(k)

			var e [3]float32
			for c := range 3 {
				e[c] = v[c] - pal[k][c]
			}
			if x+1 < w {
				spread(&cur[x+1], e, 7.0/16)
				spread(&next[x+1], e, 1.0/16)
			}
			if x > 0 {
				spread(&next[x-1], e, 3.0/16)
			}
			spread(&next[x], e, 5.0/16)
		}

		cur, next = next, cur
		clear(next)
	}
	return out
}

// nearest returns the index of the palette entry closest to v in squared
// RGB distance. Ties go to the lower index.
func nearest(pal *[NumColors][3]float32, v [3]float32) int {
	best := 0
	bestDist := float32(-1)
	for i, c := range pal {
		dr := v[0] - c[0]
		dg := v[1] - c[1]
		db := v[2] - c[2]
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func spread(dst *[3]float32, e [3]float32, weight float32) {
	dst[0] += e[0] * weight
	dst[1] += e[1] * weight
	dst[2] += e[2] * weight
}

func clamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
