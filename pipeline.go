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

// Package radar renders a picture of the aircraft closest to a fixed point,
// for display on a six-colour e-paper panel.
//
// Every call of a [Pipeline] method is one independent run: positions are
// fetched, the nearest aircraft is selected and enriched with route, type
// and photo, and the result is composed into a [scene.Scene]. The scene
// can then be rasterized, quantized to the panel palette, and packed for
// the panel controller.
package radar

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/radar/dither"
	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/geo"
	"seehuhn.de/go/radar/render"
	"seehuhn.de/go/radar/scene"
)

// ErrCanvasMismatch is returned when a raster image does not have the size
// of the scene it was drawn from.
var ErrCanvasMismatch = errors.New("raster does not match the canvas")

// NoticeUnavailable is shown on the placeholder when positions could not be
// fetched.
const NoticeUnavailable = "Position data unavailable"

// A PositionSource reports the aircraft currently inside a bounding box.
type PositionSource interface {
	StatesInBox(ctx context.Context, box geo.BoundingBox) ([]flight.Record, error)
}

// A RouteSource looks up the route flown under a callsign. A nil route and
// nil error mean that the route is not known.
type RouteSource interface {
	Route(ctx context.Context, callsign string) (*flight.Route, error)
}

// A TypeSource looks up the aircraft type for an ICAO 24-bit address. An
// empty string and nil error mean that the type is not known.
type TypeSource interface {
	AircraftType(ctx context.Context, icao24 string) (string, error)
}

// A PhotoSource finds a photo of an aircraft. A nil photo and nil error
// mean that no photo is available.
type PhotoSource interface {
	Photo(ctx context.Context, icao24 string) (*flight.Photo, error)
}

// Sources collects the collaborators of a pipeline. Positions is required,
// the other sources may be nil.
type Sources struct {
	Positions PositionSource
	Routes    RouteSource
	Types     TypeSource
	Photos    PhotoSource
}

// Options configures a [Pipeline].
type Options struct {
	Center   geo.Point
	RadiusKm float64 // half the side length of the query box
	Filter   flight.Filter

	// Family is the font family list used for all text. If empty,
	// scene.DefaultFamily is used.
	Family string

	// Logger receives reports about upstream failures which were absorbed.
	// If nil, log.Default() is used.
	Logger *log.Logger
}

// Pipeline turns upstream data into display images.
// A Pipeline is safe for concurrent use.
type Pipeline struct {
	opts  Options
	fonts *render.FontCollection
	src   Sources
	log   *log.Logger
}

// New returns a pipeline. The font collection must not be modified after
// this call.
func New(opts Options, fonts *render.FontCollection, src Sources) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		opts:  opts,
		fonts: fonts,
		src:   src,
		log:   logger,
	}
}

// Snapshot is the outcome of one fetch and selection run.
type Snapshot struct {
	Selection flight.Selection
	Route     *flight.Route
	Photo     *flight.Photo
	Notice    string // shown on the placeholder, if set
	Scene     *scene.Scene
}

// Snapshot fetches the current positions, selects the nearest aircraft,
// looks up the optional data for it and composes the scene.
//
// Failures of the upstream services do not cause an error. If positions
// cannot be fetched, the placeholder scene carries a notice. If optional
// data cannot be fetched, it is left out. An error is only returned if ctx
// is done.
func (p *Pipeline) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Selection: flight.NoAircraft{}}

	box := geo.BoxAround(p.opts.Center, p.opts.RadiusKm)
	var records []flight.Record
	var err error
	if p.src.Positions == nil {
		err = errors.New("no position source")
	} else {
		records, err = p.src.Positions.StatesInBox(ctx, box)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		p.log.Printf("fetching positions: %v", err)
		snap.Notice = NoticeUnavailable
	} else {
		records = p.opts.Filter.Apply(records, p.opts.Center)
		snap.Selection = flight.Select(records, p.opts.Center)
	}

	if sel, ok := snap.Selection.(flight.Selected); ok {
		p.enrich(ctx, &sel.Record, snap)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		sel.Record.Route = snap.Route
		snap.Selection = sel
	}

	snap.Scene = scene.Compose(snap.Selection, snap.Route, snap.Photo, scene.Options{
		Center: p.opts.Center,
		Notice: snap.Notice,
		Family: p.opts.Family,
	})
	return snap, nil
}

// enrich runs the optional lookups for rec concurrently. Failures are
// logged and leave the corresponding field empty.
func (p *Pipeline) enrich(ctx context.Context, rec *flight.Record, snap *Snapshot) {
	g, ctx := errgroup.WithContext(ctx)

	if p.src.Routes != nil && rec.Callsign != "" {
		g.Go(func() error {
			route, err := p.src.Routes.Route(ctx, rec.Callsign)
			if err != nil {
				p.log.Printf("route for %s: %v", rec.Callsign, err)
				return nil
			}
			snap.Route = route
			return nil
		})
	}

	aircraftType := rec.AircraftType
	if p.src.Types != nil && aircraftType == "" {
		g.Go(func() error {
			t, err := p.src.Types.AircraftType(ctx, rec.ICAO24)
			if err != nil {
				p.log.Printf("type of %s: %v", rec.ICAO24, err)
				return nil
			}
			aircraftType = t
			return nil
		})
	}

	if p.src.Photos != nil {
		g.Go(func() error {
			photo, err := p.src.Photos.Photo(ctx, rec.ICAO24)
			if err != nil {
				p.log.Printf("photo of %s: %v", rec.ICAO24, err)
				return nil
			}
			snap.Photo = photo
			return nil
		})
	}

	g.Wait()
	rec.AircraftType = aircraftType
	if snap.Photo != nil && rec.PhotoURL == "" {
		rec.PhotoURL = snap.Photo.Source
	}
}

// Scene returns the scene for the current situation.
func (p *Pipeline) Scene(ctx context.Context) (*scene.Scene, error) {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Scene, nil
}

// Raster returns the current situation as an RGBA image.
// If an optional element of the scene cannot be drawn, the failure is
// logged and the image without that element is returned.
func (p *Pipeline) Raster(ctx context.Context) (*image.RGBA, error) {
	s, err := p.Scene(ctx)
	if err != nil {
		return nil, err
	}
	return p.rasterize(s)
}

func (p *Pipeline) rasterize(s *scene.Scene) (*image.RGBA, error) {
	img, err := render.Rasterize(s, p.fonts)
	var rErr *render.RenderError
	if errors.As(err, &rErr) && rErr.Optional && img != nil {
		p.log.Printf("degraded image: %v", err)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Dithered returns the current situation reduced to the panel palette.
func (p *Pipeline) Dithered(ctx context.Context) (*dither.Image, error) {
	s, err := p.Scene(ctx)
	if err != nil {
		return nil, err
	}
	img, err := p.rasterize(s)
	if err != nil {
		return nil, err
	}
	return Quantize(img, s)
}

// EPD writes the current situation in the frame buffer format of the
// panel controller.
func (p *Pipeline) EPD(ctx context.Context, w io.Writer) error {
	q, err := p.Dithered(ctx)
	if err != nil {
		return err
	}
	return dither.EncodeEPD(w, q)
}

// Quantize reduces img, which must have been drawn from s, to the panel
// palette.
func Quantize(img *image.RGBA, s *scene.Scene) (*dither.Image, error) {
	b := img.Bounds()
	if b.Dx() != s.Width || b.Dy() != s.Height {
		return nil, fmt.Errorf("%w: image is %dx%d, scene is %dx%d",
			ErrCanvasMismatch, b.Dx(), b.Dy(), s.Width, s.Height)
	}
	return dither.Quantize(img, dither.EPaper), nil
}
