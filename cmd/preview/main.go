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

// Command preview prints the display image to a colour terminal.
//
// By default the current situation is fetched from the live services,
// using the same configuration file as the radar server. With -case, one
// of the built-in test cases is shown instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	radar "seehuhn.de/go/radar"
	"seehuhn.de/go/radar/config"
	"seehuhn.de/go/radar/dither"
	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/render"
	"seehuhn.de/go/radar/scene"
	"seehuhn.de/go/radar/testcases"
	"seehuhn.de/go/radar/upstream/adsbdb"
	"seehuhn.de/go/radar/upstream/opensky"
	"seehuhn.de/go/radar/upstream/planespotters"
)

func main() {
	configFile := flag.String("config", "radar.json", "configuration file")
	caseName := flag.String("case", "", "show a test case, e.g. selected_full")
	list := flag.Bool("list", false, "list the test cases and exit")
	cols := flag.Int("cols", 100, "width of the preview in terminal columns")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("preview: ")

	if *list {
		for _, name := range caseNames() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	fonts, err := render.LoadFonts(append(cfg.Fonts.Dirs, render.DefaultFontDirs()...)...)
	if err != nil {
		log.Fatal(err)
	}

	var s *scene.Scene
	if *caseName != "" {
		tc, ok := findCase(*caseName)
		if !ok {
			log.Fatalf("unknown test case %q, try -list", *caseName)
		}
		s = tc.Scene()
	} else {
		s, err = liveScene(cfg, fonts)
		if err != nil {
			log.Fatal(err)
		}
	}

	img, err := render.Rasterize(s, fonts)
	var rErr *render.RenderError
	if errors.As(err, &rErr) && rErr.Optional {
		log.Print(err)
	} else if err != nil {
		log.Fatal(err)
	}
	q, err := radar.Quantize(img, s)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(Preview(q, *cols))
}

func caseNames() []string {
	var names []string
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			names = append(names, category+"_"+tc.Name)
		}
	}
	return names
}

func findCase(name string) (testcases.TestCase, bool) {
	for category, cases := range testcases.All {
		for _, tc := range cases {
			if category+"_"+tc.Name == name {
				return tc, true
			}
		}
	}
	return testcases.TestCase{}, false
}

func liveScene(cfg *config.Config, fonts *render.FontCollection) (*scene.Scene, error) {
	db := adsbdb.New(adsbdb.Config{BaseURL: cfg.ADSBDB.BaseURL})
	src := radar.Sources{
		Positions: opensky.New(opensky.Config{
			ClientID:     cfg.OpenSky.ClientID,
			ClientSecret: cfg.OpenSky.ClientSecret,
			BaseURL:      cfg.OpenSky.BaseURL,
			TokenURL:     cfg.OpenSky.TokenURL,
		}),
		Routes: db,
		Types:  db,
	}
	if cfg.Planespotters.Enabled {
		src.Photos = planespotters.New(planespotters.Config{
			BaseURL:   cfg.Planespotters.BaseURL,
			UserAgent: cfg.Planespotters.UserAgent,
		})
	}

	p := radar.New(radar.Options{
		Center:   cfg.Center(),
		RadiusKm: cfg.Location.RadiusKm,
		Filter: flight.Filter{
			MaxDistanceKm: cfg.Filter.MaxDistanceKm,
			MaxAltitude:   cfg.Filter.MaxAltitudeM,
		},
		Family: cfg.Display.Family,
		Logger: log.New(os.Stderr, "preview: ", 0),
	}, fonts, src)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if sel, ok := snap.Selection.(flight.Selected); ok {
		log.Printf("%s at %.1f km", sel.Record.Ident(), sel.DistanceKm)
	}
	return snap.Scene, nil
}

// Preview renders q as rows of half-block characters, cols characters
// wide. Every character shows two vertically stacked cells; each cell
// takes the most frequent colour of the pixels it covers.
func Preview(q *dither.Image, cols int) string {
	if cols <= 0 || q.Width == 0 || q.Height == 0 {
		return ""
	}
	cols = min(cols, q.Width)
	cell := float64(q.Width) / float64(cols)
	rows := int(float64(q.Height)/(2*cell) + 0.5)
	rows = max(rows, 1)

	var styles [dither.NumColors][dither.NumColors]lipgloss.Style
	for fg, fc := range q.Palette {
		for bg, bc := range q.Palette {
			styles[fg][bg] = lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(fc.R, fc.G, fc.B))).
				Background(lipgloss.Color(hex(bc.R, bc.G, bc.B)))
		}
	}

	b := &strings.Builder{}
	for row := range rows {
		for col := range cols {
			x0, x1 := span(col, cell, q.Width)
			top0, top1 := span(2*row, cell, q.Height)
			bot0, bot1 := span(2*row+1, cell, q.Height)
			fg := majority(q, x0, x1, top0, top1)
			bg := majority(q, x0, x1, bot0, bot1)
			b.WriteString(styles[fg][bg].Render("▀"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// span returns the pixel range covered by cell i, clipped to n.
func span(i int, cell float64, n int) (int, int) {
	lo := min(int(float64(i)*cell), n)
	hi := min(int(float64(i+1)*cell), n)
	if hi <= lo && lo < n {
		hi = lo + 1
	}
	return lo, hi
}

func majority(q *dither.Image, x0, x1, y0, y1 int) int {
	var count [dither.NumColors]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			count[q.At(x, y)]++
		}
	}
	best := 1 // white, for cells outside the image
	for i, n := range count {
		if n > count[best] {
			best = i
		}
	}
	return best
}

func hex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
