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

// Package render turns a scene into pixels.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp" // register WebP decoder
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/radar/raster"
	"seehuhn.de/go/radar/scene"
)

// RenderError reports an element of a scene which could not be drawn.
type RenderError struct {
	Element int // index into Scene.Elements, or -1 for the scene itself

	// Optional is set if the rest of the scene was drawn and the image
	// can be used without the failing element.
	Optional bool

	Err error
}

func (e *RenderError) Error() string {
	if e.Element < 0 {
		return fmt.Sprintf("render: %v", e.Err)
	}
	return fmt.Sprintf("render: element %d: %v", e.Element, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Rasterize draws s onto an opaque white canvas of size s.Width × s.Height.
//
// Embedded images are optional: if one cannot be decoded, Rasterize still
// returns the image, together with a *RenderError with Optional set. Any
// other failure returns a nil image and a *RenderError.
//
// fonts is only read, so concurrent calls may share it.
func Rasterize(s *scene.Scene, fonts *FontCollection) (*image.RGBA, error) {
	if s == nil || s.Width <= 0 || s.Height <= 0 {
		return nil, &RenderError{Element: -1, Err: fmt.Errorf("invalid canvas")}
	}

	bounds := image.Rect(0, 0, s.Width, s.Height)
	img := image.NewRGBA(bounds)
	xdraw.Draw(img, bounds, image.White, image.Point{}, xdraw.Src)

	p := &painter{
		img:   img,
		fonts: fonts,
		r: raster.NewRasterizer(rect.Rect{
			URx: float64(s.Width),
			URy: float64(s.Height),
		}),
	}

	var optional error
	for i, e := range s.Elements {
		var err error
		switch e := e.(type) {
		case scene.Rect:
			p.rect(e)
		case scene.Path:
			err = p.path(e)
		case scene.Text:
			err = p.text(e)
		case scene.Image:
			if err := p.image(e); err != nil && optional == nil {
				optional = &RenderError{Element: i, Optional: true, Err: err}
			}
		default:
			err = fmt.Errorf("unsupported element type %T", e)
		}
		if err != nil {
			return nil, &RenderError{Element: i, Err: err}
		}
	}
	return img, optional
}

// painter holds the per-call drawing state.
type painter struct {
	img   *image.RGBA
	fonts *FontCollection
	r     *raster.Rasterizer
}

func (p *painter) rect(e scene.Rect) {
	if e.W <= 0 || e.H <= 0 {
		return
	}
	box := (&path.Data{}).
		MoveTo(vec.Vec2{X: e.X, Y: e.Y}).
		LineTo(vec.Vec2{X: e.X + e.W, Y: e.Y}).
		LineTo(vec.Vec2{X: e.X + e.W, Y: e.Y + e.H}).
		LineTo(vec.Vec2{X: e.X, Y: e.Y + e.H}).
		Close()
	p.r.FillNonZero(box, p.blend(e.Fill))
}

func (p *painter) path(e scene.Path) error {
	if e.Data == nil {
		return fmt.Errorf("path without data")
	}
	if e.Fill != nil {
		if e.Rule == scene.EvenOdd {
			p.r.FillEvenOdd(e.Data, p.blend(*e.Fill))
		} else {
			p.r.FillNonZero(e.Data, p.blend(*e.Fill))
		}
	}
	if st := e.Stroke; st != nil {
		p.r.Width = st.Width
		p.r.Cap = st.Cap
		p.r.Join = st.Join
		p.r.Stroke(e.Data, p.blend(st.Color))
	}
	return nil
}

// blend returns an emit function which paints c with the given coverage.
func (p *painter) blend(c color.RGBA) raster.EmitFunc {
	sa := float32(c.A) / 255
	cr, cg, cb, ca := float32(c.R), float32(c.G), float32(c.B), float32(c.A)
	return func(y, xMin int, coverage []float32) {
		off := p.img.PixOffset(xMin, y)
		row := p.img.Pix[off : off+4*len(coverage)]
		for i, v := range coverage {
			if v <= 0 {
				continue
			}
			keep := 1 - v*sa
			px := row[4*i : 4*i+4 : 4*i+4]
			px[0] = uint8(cr*v + float32(px[0])*keep + 0.5)
			px[1] = uint8(cg*v + float32(px[1])*keep + 0.5)
			px[2] = uint8(cb*v + float32(px[2])*keep + 0.5)
			px[3] = uint8(ca*v + float32(px[3])*keep + 0.5)
		}
	}
}

func (p *painter) text(e scene.Text) error {
	if e.Content == "" {
		return nil
	}
	if e.Size <= 0 {
		return fmt.Errorf("text %q has size %g", e.Content, e.Size)
	}
	if p.fonts == nil {
		return fmt.Errorf("no fonts loaded")
	}
	f, err := p.fonts.Lookup(e.Family, e.Bold)
	if err != nil {
		return err
	}

	// Faces cache glyph data and must not be shared between renders.
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    e.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return err
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(e.Fill),
		Face: face,
	}
	x := fixed.Int26_6(e.X * 64)
	switch e.Anchor {
	case scene.Middle:
		x -= d.MeasureString(e.Content) / 2
	case scene.End:
		x -= d.MeasureString(e.Content)
	}
	d.Dot = fixed.Point26_6{X: x, Y: fixed.Int26_6(e.Y * 64)}
	d.DrawString(e.Content)
	return nil
}

// MaxImagePixels limits the size of embedded images after decoding.
// Larger images are rejected before any pixel data is allocated.
const MaxImagePixels = 1 << 24

// image decodes e and scales it to fit its box, centred.
func (p *painter) image(e scene.Image) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(e.Data))
	if err != nil {
		return fmt.Errorf("decoding %s image: %w", e.MIME, err)
	}
	if cfg.Width < 0 || cfg.Height < 0 ||
		int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return fmt.Errorf("%s image too large (%dx%d)", e.MIME, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(e.Data))
	if err != nil {
		return fmt.Errorf("decoding %s image: %w", e.MIME, err)
	}
	sb := src.Bounds()
	if sb.Empty() || e.W <= 0 || e.H <= 0 {
		return nil
	}

	scale := min(e.W/float64(sb.Dx()), e.H/float64(sb.Dy()))
	w := float64(sb.Dx()) * scale
	h := float64(sb.Dy()) * scale
	x0 := e.X + (e.W-w)/2
	y0 := e.Y + (e.H-h)/2
	dst := image.Rect(int(x0+0.5), int(y0+0.5), int(x0+w+0.5), int(y0+h+0.5))

	xdraw.CatmullRom.Scale(p.img, dst, src, sb, xdraw.Over, nil)
	return nil
}
