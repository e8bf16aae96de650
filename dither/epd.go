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

package dither

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
)

// Geometry of the panel in its native portrait orientation. The controller
// drives the panel as two strips of StripWidth columns each.
const (
	PanelWidth  = 1200
	PanelHeight = 1600
	StripWidth  = PanelWidth / 2
)

// EPDSize is the length of the output of [EncodeEPD].
const EPDSize = PanelWidth * PanelHeight / 2

// EncodeEPD writes img in the frame buffer format of the panel controller.
//
// The landscape image must be PanelHeight × PanelWidth pixels. It is turned
// by 90° clockwise, so that image row 0 becomes the rightmost panel column.
// The left strip is written first, then the right strip. Within a strip
// pixels are packed row by row, two per byte, with the even pixel in the
// high nibble.
func EncodeEPD(w io.Writer, img *Image) error {
	if img.Width != PanelHeight || img.Height != PanelWidth {
		return fmt.Errorf("dither: image is %dx%d, panel needs %dx%d",
			img.Width, img.Height, PanelHeight, PanelWidth)
	}

	var codes [NumColors]byte
	for i, c := range img.Palette {
		codes[i] = epdCode(c)
	}

	bw := bufio.NewWriterSize(w, StripWidth/2)
	for _, x0 := range []int{0, StripWidth} {
		for py := range PanelHeight {
			for px := x0; px < x0+StripWidth; px += 2 {
				hi := codes[img.At(py, img.Height-1-px)]
				lo := codes[img.At(py, img.Height-2-px)]
				if err := bw.WriteByte(hi<<4 | lo); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

// epdCode returns the controller code for a palette colour. Colours the
// panel cannot show are mapped to white.
func epdCode(c color.RGBA) byte {
	switch [3]uint8{c.R, c.G, c.B} {
	case [3]uint8{0, 0, 0}:
		return 0
	case [3]uint8{255, 255, 255}:
		return 1
	case [3]uint8{255, 255, 0}:
		return 2
	case [3]uint8{255, 0, 0}:
		return 3
	case [3]uint8{0, 0, 255}:
		return 5
	case [3]uint8{0, 255, 0}:
		return 6
	default:
		return 1
	}
}
