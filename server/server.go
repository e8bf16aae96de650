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

// Package server exposes the rendered images over HTTP.
package server

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"seehuhn.de/go/radar/dither"
	"seehuhn.de/go/radar/scene"
)

// Renderer produces the images served. Every call renders the current
// situation from scratch.
type Renderer interface {
	Scene(ctx context.Context) (*scene.Scene, error)
	Raster(ctx context.Context) (*image.RGBA, error)
	Dithered(ctx context.Context) (*dither.Image, error)
	EPD(ctx context.Context, w io.Writer) error
}

// Config configures a [Server].
type Config struct {
	// RequestTimeout bounds the time spent on one request. Zero means no
	// limit.
	RequestTimeout time.Duration

	// CORSOrigins lists the origins which may fetch images from a browser.
	// Empty means any origin.
	CORSOrigins []string

	// Logger receives render failures. If nil, log.Default() is used.
	Logger *log.Logger
}

// Server serves the images produced by a Renderer.
type Server struct {
	r   Renderer
	cfg Config
	log *log.Logger
}

// New returns a server for r.
func New(r Renderer, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{r: r, cfg: cfg, log: logger}
}

const index = `Nearest aircraft display

/image.svg           vector image
/image.png           raster image
/image_dithered.png  raster image in the six panel colours
/image.bin           frame buffer for the e-paper panel
`

// Router returns the HTTP handler for all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	r.Use(middleware.Compress(5, "text/plain", "image/svg+xml"))

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/image.svg", s.handleSVG)
	r.Get("/image.png", s.handlePNG)
	r.Get("/image_dithered.png", s.handleDitheredPNG)
	r.Get("/image.bin", s.handleEPD)

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, index)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "image/svg+xml", func(ctx context.Context, buf *bytes.Buffer) error {
		sc, err := s.r.Scene(ctx)
		if err != nil {
			return err
		}
		return scene.WriteSVG(buf, sc)
	})
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "image/png", func(ctx context.Context, buf *bytes.Buffer) error {
		img, err := s.r.Raster(ctx)
		if err != nil {
			return err
		}
		return png.Encode(buf, img)
	})
}

func (s *Server) handleDitheredPNG(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "image/png", func(ctx context.Context, buf *bytes.Buffer) error {
		q, err := s.r.Dithered(ctx)
		if err != nil {
			return err
		}
		return png.Encode(buf, q.Paletted())
	})
}

func (s *Server) handleEPD(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "application/octet-stream", func(ctx context.Context, buf *bytes.Buffer) error {
		return s.r.EPD(ctx, buf)
	})
}

// serve renders into a buffer, so that a failure can still be reported
// with a proper status code.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, contentType string, render func(context.Context, *bytes.Buffer) error) {
	buf := &bytes.Buffer{}
	if err := render(r.Context(), buf); err != nil {
		s.log.Printf("[%s] %s: %v", middleware.GetReqID(r.Context()), r.URL.Path, err)
		http.Error(w, "failed to render image", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
