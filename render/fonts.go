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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontCollection maps font family names to parsed fonts.
//
// A FontCollection is built once, before the first render, and is never
// modified afterwards. It is safe for concurrent use by any number of
// renders.
type FontCollection struct {
	families map[string]*family
	fallback *family
}

type family struct {
	name    string
	regular *opentype.Font
	bold    *opentype.Font
}

func (f *family) pick(bold bool) *opentype.Font {
	if bold && f.bold != nil || f.regular == nil {
		return f.bold
	}
	return f.regular
}

// generic family names which match the fallback fonts
var genericFamilies = []string{"sans-serif", "serif", "monospace", "system-ui"}

// BuiltinFonts returns a collection holding only the Go fonts. They are
// registered as family "Go" and also serve as the fallback.
func BuiltinFonts() (*FontCollection, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing Go Regular: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing Go Bold: %w", err)
	}
	goFamily := &family{name: "Go", regular: regular, bold: bold}
	return &FontCollection{
		families: map[string]*family{"go": goFamily},
		fallback: goFamily,
	}, nil
}

// LoadFonts scans the given directories recursively for TrueType and
// OpenType fonts and adds them to the built-in Go fonts. Directories which
// do not exist are skipped, as are files which cannot be parsed. Italic
// faces are ignored.
func LoadFonts(dirs ...string) (*FontCollection, error) {
	fc, err := BuiltinFonts()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(p)) {
			case ".ttf", ".otf", ".ttc", ".otc":
				fc.addFile(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning fonts in %s: %w", dir, err)
		}
	}
	return fc, nil
}

// addFile adds all fonts from one file.
func (fc *FontCollection) addFile(fname string) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return
	}
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return
	}
	for i := range coll.NumFonts() {
		f, err := coll.Font(i)
		if err != nil {
			continue
		}
		fc.add(f)
	}
}

// add registers f under its family name. The first face found for each
// family and weight wins.
func (fc *FontCollection) add(f *opentype.Font) {
	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil || name == "" {
		return
	}
	sub, _ := f.Name(&buf, sfnt.NameIDSubfamily)
	sub = strings.ToLower(sub)
	if strings.Contains(sub, "italic") || strings.Contains(sub, "oblique") {
		return
	}

	key := strings.ToLower(name)
	fam := fc.families[key]
	if fam == nil {
		fam = &family{name: name}
		fc.families[key] = fam
	}
	switch {
	case strings.Contains(sub, "bold"):
		if fam.bold == nil {
			fam.bold = f
		}
	case sub == "" || sub == "regular" || sub == "normal" || sub == "book" || sub == "roman":
		if fam.regular == nil {
			fam.regular = f
		}
	}
}

// Lookup returns the font for a comma-separated list of family names.
// The first family which is present wins; generic families such as
// "sans-serif" match the fallback fonts. If bold is set but a family has
// no bold face, its regular face is used and vice versa.
func (fc *FontCollection) Lookup(families string, bold bool) (*opentype.Font, error) {
	for _, name := range strings.Split(families, ",") {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
		if name == "" {
			continue
		}
		if fam, ok := fc.families[name]; ok {
			if f := fam.pick(bold); f != nil {
				return f, nil
			}
		}
		if slices.Contains(genericFamilies, name) && fc.fallback != nil {
			return fc.fallback.pick(bold), nil
		}
	}
	return nil, fmt.Errorf("no font for family %q", families)
}

// Families returns the names of all families in the collection, sorted.
func (fc *FontCollection) Families() []string {
	var names []string
	for _, fam := range fc.families {
		if fam.regular != nil || fam.bold != nil {
			names = append(names, fam.name)
		}
	}
	slices.Sort(names)
	return names
}

// DefaultFontDirs returns the usual font directories of the host system.
func DefaultFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		return []string{filepath.Join(windir, "Fonts")}
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs,
				filepath.Join(home, ".local", "share", "fonts"),
				filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}
