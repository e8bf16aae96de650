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

package scene

import (
	"bufio"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf/graphics"
)

// WriteSVG writes s as a standalone SVG 1.1 document.
func WriteSVG(w io.Writer, s *Scene) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		s.Width, s.Height, s.Width, s.Height)

	for i, e := range s.Elements {
		var err error
		switch e := e.(type) {
		case Rect:
			fmt.Fprintf(bw, `<rect x="%s" y="%s" width="%s" height="%s"%s/>`+"\n",
				num(e.X), num(e.Y), num(e.W), num(e.H), paint("fill", e.Fill))
		case Path:
			err = writePath(bw, e)
		case Text:
			writeText(bw, e)
		case Image:
			fmt.Fprintf(bw, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid meet" xlink:href="data:%s;base64,%s"/>`+"\n",
				num(e.X), num(e.Y), num(e.W), num(e.H),
				attr(e.MIME), base64.StdEncoding.EncodeToString(e.Data))
		default:
			err = fmt.Errorf("unsupported element type %T", e)
		}
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}

func writePath(w io.Writer, p Path) error {
	d, err := pathData(p.Data)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<path d="%s"`, d)
	if p.Fill != nil {
		b.WriteString(paint("fill", *p.Fill))
		if p.Rule == EvenOdd {
			b.WriteString(` fill-rule="evenodd"`)
		}
	} else {
		b.WriteString(` fill="none"`)
	}
	if st := p.Stroke; st != nil {
		b.WriteString(paint("stroke", st.Color))
		fmt.Fprintf(&b, ` stroke-width="%s" stroke-linecap="%s" stroke-linejoin="%s"`,
			num(st.Width), capName(st.Cap), joinName(st.Join))
	}
	b.WriteString("/>\n")
	_, err = io.WriteString(w, b.String())
	return err
}

// pathData converts p to the SVG path mini-language.
func pathData(p *path.Data) (string, error) {
	if p == nil {
		return "", fmt.Errorf("path without data")
	}
	var b strings.Builder
	k := 0
	pt := func(n int) error {
		if k+n > len(p.Coords) {
			return fmt.Errorf("path has %d coordinates, more needed", len(p.Coords))
		}
		for i := range n {
			c := p.Coords[k+i]
			fmt.Fprintf(&b, " %s %s", num(c.X), num(c.Y))
		}
		k += n
		return nil
	}

	for _, cmd := range p.Cmds {
		var err error
		switch cmd {
		case path.CmdMoveTo:
			b.WriteString(" M")
			err = pt(1)
		case path.CmdLineTo:
			b.WriteString(" L")
			err = pt(1)
		case path.CmdQuadTo:
			b.WriteString(" Q")
			err = pt(2)
		case path.CmdCubeTo:
			b.WriteString(" C")
			err = pt(3)
		case path.CmdClose:
			b.WriteString(" Z")
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func writeText(w io.Writer, t Text) {
	weight := ""
	if t.Bold {
		weight = ` font-weight="bold"`
	}
	anchor := ""
	switch t.Anchor {
	case Middle:
		anchor = ` text-anchor="middle"`
	case End:
		anchor = ` text-anchor="end"`
	}
	fmt.Fprintf(w, `<text x="%s" y="%s" font-family="%s" font-size="%s"%s%s%s>`,
		num(t.X), num(t.Y), attr(t.Family), num(t.Size), weight, anchor, paint("fill", t.Fill))
	xml.EscapeText(w, []byte(t.Content))
	io.WriteString(w, "</text>\n")
}

// paint formats a colour attribute, with an opacity attribute for
// translucent colours.
func paint(name string, c color.RGBA) string {
	s := fmt.Sprintf(` %s="#%02x%02x%02x"`, name, c.R, c.G, c.B)
	if c.A != 255 {
		s += fmt.Sprintf(` %s-opacity="%s"`, name, num(float64(c.A)/255))
	}
	return s
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func attr(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func capName(c graphics.LineCapStyle) string {
	switch c {
	case graphics.LineCapRound:
		return "round"
	case graphics.LineCapSquare:
		return "square"
	default:
		return "butt"
	}
}

func joinName(j graphics.LineJoinStyle) string {
	switch j {
	case graphics.LineJoinRound:
		return "round"
	case graphics.LineJoinBevel:
		return "bevel"
	default:
		return "miter"
	}
}
