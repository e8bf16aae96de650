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

// Command export renders every test case as SVG, PNG and dithered PNG.
// Run from the module root directory; the files go to testdata/out/.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/radar/dither"
	"seehuhn.de/go/radar/render"
	"seehuhn.de/go/radar/scene"
	"seehuhn.de/go/radar/testcases"
)

func main() {
	outDir := flag.String("out", filepath.Join("testdata", "out"), "output directory")
	systemFonts := flag.Bool("system-fonts", false, "use the fonts installed on this machine")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("export: ")

	var fonts *render.FontCollection
	var err error
	if *systemFonts {
		fonts, err = render.LoadFonts(render.DefaultFontDirs()...)
	} else {
		fonts, err = render.BuiltinFonts()
	}
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			if err := export(filepath.Join(*outDir, name), tc.Scene(), fonts); err != nil {
				log.Fatalf("%s: %v", name, err)
			}
			fmt.Println(name)
		}
	}
}

func export(base string, s *scene.Scene, fonts *render.FontCollection) error {
	if err := writeFile(base+".svg", func(f *os.File) error {
		return scene.WriteSVG(f, s)
	}); err != nil {
		return err
	}

	img, err := render.Rasterize(s, fonts)
	var rErr *render.RenderError
	if errors.As(err, &rErr) && rErr.Optional {
		log.Printf("%s: %v", filepath.Base(base), err)
	} else if err != nil {
		return err
	}
	if err := writePNG(base+".png", img); err != nil {
		return err
	}

	q := dither.Quantize(img, dither.EPaper)
	return writePNG(base+"_dithered.png", q.Paletted())
}

func writePNG(fname string, img image.Image) error {
	return writeFile(fname, func(f *os.File) error {
		return png.Encode(f, img)
	})
}

func writeFile(fname string, write func(*os.File) error) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
