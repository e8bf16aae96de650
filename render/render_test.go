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

package render

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/geo"
	"seehuhn.de/go/radar/scene"
)

func builtin(t testing.TB) *FontCollection {
	t.Helper()
	fc, err := BuiltinFonts()
	if err != nil {
		t.Fatal(err)
	}
	return fc
}

func isWhite(c color.RGBA) bool {
	return c.R == 255 && c.G == 255 && c.B == 255
}

func TestLookup(t *testing.T) {
	fc := builtin(t)
	for _, families := range []string{"Go", "go", "Google Sans, sans-serif", "'Missing', Go", "serif"} {
		for _, bold := range []bool{false, true} {
			if f, err := fc.Lookup(families, bold); err != nil || f == nil {
				t.Errorf("Lookup(%q, %t) = %v, %v", families, bold, f, err)
			}
		}
	}
	if _, err := fc.Lookup("Missing Family", false); err == nil {
		t.Error("unknown family resolved")
	}
	if _, err := fc.Lookup("", false); err == nil {
		t.Error("empty family list resolved")
	}

	regular, _ := fc.Lookup("Go", false)
	bold, _ := fc.Lookup("Go", true)
	if regular == bold {
		t.Error("bold and regular are the same face")
	}
}

func TestLoadFonts(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "mono")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		filepath.Join(sub, "GoMono.ttf"):     gomono.TTF,
		filepath.Join(sub, "GoMonoBold.TTF"): gomonobold.TTF,
		filepath.Join(dir, "broken.otf"):     []byte("not a font"),
		filepath.Join(dir, "README"):         goregular.TTF,
	}
	for name, data := range files {
		if err := os.WriteFile(name, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fc, err := LoadFonts(dir, filepath.Join(dir, "does-not-exist"))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Go", "Go Mono"}
	got := fc.Families()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Families() = %q, want %q", got, want)
	}

	var buf sfnt.Buffer
	for _, bold := range []bool{false, true} {
		f, err := fc.Lookup("Go Mono, sans-serif", bold)
		if err != nil {
			t.Fatal(err)
		}
		sub, err := f.Name(&buf, sfnt.NameIDSubfamily)
		if err != nil {
			t.Fatal(err)
		}
		wantSub := "Regular"
		if bold {
			wantSub = "Bold"
		}
		if sub != wantSub {
			t.Errorf("bold=%t: got subfamily %q, want %q", bold, sub, wantSub)
		}
	}
}

func TestRasterizePlaceholder(t *testing.T) {
	s := scene.Placeholder(scene.Options{Center: geo.Point{Lat: 47.4197, Lon: 8.4344}})
	img, err := Rasterize(s, builtin(t))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != scene.Width || b.Dy() != scene.Height {
		t.Fatalf("got %v, want %dx%d", b, scene.Width, scene.Height)
	}
	if !isWhite(img.RGBAAt(5, 5)) {
		t.Errorf("corner is %v, want white", img.RGBAAt(5, 5))
	}

	// the headline must have left some ink
	ink := 0
	for y := 620; y < 720; y++ {
		for x := 0; x < scene.Width; x++ {
			if !isWhite(img.RGBAAt(x, y)) {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Error("no text was drawn")
	}
}

func TestRasterizeRect(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	s := &scene.Scene{
		Width:  40,
		Height: 30,
		Elements: []scene.Element{
			scene.Rect{X: 10, Y: 5, W: 20, H: 10, Fill: red},
		},
	}
	img, err := Rasterize(s, builtin(t))
	if err != nil {
		t.Fatal(err)
	}
	for y := range 30 {
		for x := range 40 {
			inside := x >= 10 && x < 30 && y >= 5 && y < 15
			got := img.RGBAAt(x, y)
			if inside && got != red {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, red)
			} else if !inside && !isWhite(got) {
				t.Fatalf("pixel (%d,%d) = %v, want white", x, y, got)
			}
		}
	}
}

func TestRasterizeHalfCoverage(t *testing.T) {
	black := color.RGBA{A: 255}
	s := &scene.Scene{
		Width:    4,
		Height:   4,
		Elements: []scene.Element{scene.Rect{X: 0, Y: 0, W: 1.5, H: 4, Fill: black}},
	}
	img, err := Rasterize(s, builtin(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 2); got != black {
		t.Errorf("full pixel = %v", got)
	}
	if got := img.RGBAAt(1, 2).R; got < 126 || got > 129 {
		t.Errorf("half pixel red = %d, want about 128", got)
	}
	if got := img.RGBAAt(2, 2); !isWhite(got) {
		t.Errorf("empty pixel = %v", got)
	}
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			src.Set(x, y, c)
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, src); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func photoScene(photo *flight.Photo) *scene.Scene {
	sel := flight.Selected{
		Record: flight.Record{
			ICAO24:   "4b1814",
			Callsign: "SWR318",
			Altitude: flight.Float(11000),
		},
		DistanceKm: 4.2,
	}
	return scene.Compose(sel, nil, photo, scene.Options{})
}

func TestRasterizePhoto(t *testing.T) {
	green := color.RGBA{G: 255, A: 255}
	photo := &flight.Photo{Data: pngBytes(t, 100, 50, green), MIME: "image/png"}
	img, err := Rasterize(photoScene(photo), builtin(t))
	if err != nil {
		t.Fatal(err)
	}

	// A 2:1 photo in a 1600x760 box is 1520 pixels wide and centred.
	if got := img.RGBAAt(800, 540); got.G < 250 || got.R > 5 || got.B > 5 {
		t.Errorf("photo centre = %v, want %v", got, green)
	}
	if got := img.RGBAAt(10, 540); !isWhite(got) {
		t.Errorf("letterbox = %v, want white", got)
	}
}

func TestRasterizeBadPhoto(t *testing.T) {
	photo := &flight.Photo{Data: []byte("<html>not an image</html>"), MIME: "image/jpeg"}
	img, err := Rasterize(photoScene(photo), builtin(t))

	var rErr *RenderError
	if !errors.As(err, &rErr) {
		t.Fatalf("got error %v, want *RenderError", err)
	}
	if !rErr.Optional {
		t.Error("photo failure is not optional")
	}
	if img == nil {
		t.Fatal("no image returned")
	}
	if got := img.RGBAAt(800, 540); !isWhite(got) {
		t.Errorf("photo region = %v, want white", got)
	}
}

// hugePNG returns a small PNG file whose header claims w×h pixels.
func hugePNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngBytes(t, 1, 1, color.White)
	// signature (8), IHDR length (4), "IHDR" (4), width, height, ..., CRC
	ihdr := data[12:29]
	binary.BigEndian.PutUint32(ihdr[4:8], w)
	binary.BigEndian.PutUint32(ihdr[8:12], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(ihdr))
	return data
}

func TestRasterizeHugePhoto(t *testing.T) {
	data := hugePNG(t, 20000, 20000)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width != 20000 || cfg.Height != 20000 {
		t.Fatalf("bad test image: %v %v", cfg, err)
	}

	photo := &flight.Photo{Data: data, MIME: "image/png"}
	img, err := Rasterize(photoScene(photo), builtin(t))

	var rErr *RenderError
	if !errors.As(err, &rErr) {
		t.Fatalf("got error %v, want *RenderError", err)
	}
	if !rErr.Optional {
		t.Error("oversized photo is not optional")
	}
	if img == nil {
		t.Fatal("no image returned")
	}
	if got := img.RGBAAt(800, 540); !isWhite(got) {
		t.Errorf("photo region = %v, want white", got)
	}
}

func TestRasterizeFatal(t *testing.T) {
	type testCase struct {
		name string
		s    *scene.Scene
	}
	cases := []testCase{
		{"nil scene", nil},
		{"empty canvas", &scene.Scene{}},
		{"missing font", &scene.Scene{
			Width: 10, Height: 10,
			Elements: []scene.Element{
				scene.Text{X: 1, Y: 5, Content: "x", Size: 5, Family: "No Such Font"},
			},
		}},
		{"zero text size", &scene.Scene{
			Width: 10, Height: 10,
			Elements: []scene.Element{
				scene.Text{X: 1, Y: 5, Content: "x", Family: "Go"},
			},
		}},
		{"empty path", &scene.Scene{
			Width: 10, Height: 10,
			Elements: []scene.Element{scene.Path{}},
		}},
	}
	fc := builtin(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img, err := Rasterize(tc.s, fc)
			if img != nil {
				t.Error("image returned")
			}
			var rErr *RenderError
			if !errors.As(err, &rErr) {
				t.Fatalf("got %v, want *RenderError", err)
			}
			if rErr.Optional {
				t.Error("error marked optional")
			}
		})
	}
}

func TestRasterizeConcurrent(t *testing.T) {
	fc := builtin(t)
	s := photoScene(nil)
	want, err := Rasterize(s, fc)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]*image.RGBA, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = Rasterize(s, fc)
		}()
	}
	wg.Wait()

	for i, img := range results {
		if errs[i] != nil {
			t.Fatal(errs[i])
		}
		if !bytes.Equal(img.Pix, want.Pix) {
			t.Errorf("render %d differs", i)
		}
	}
}
