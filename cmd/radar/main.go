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

// Command radar serves a picture of the aircraft closest to a fixed point,
// for a six-colour e-paper display.
//
// Usage:
//
//	radar [-config radar.json] [-write-config]
//
// The images are served at /image.svg, /image.png, /image_dithered.png and
// /image.bin.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	radar "seehuhn.de/go/radar"
	"seehuhn.de/go/radar/config"
	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/render"
	"seehuhn.de/go/radar/server"
	"seehuhn.de/go/radar/upstream"
	"seehuhn.de/go/radar/upstream/adsbdb"
	"seehuhn.de/go/radar/upstream/opensky"
	"seehuhn.de/go/radar/upstream/planespotters"
)

func main() {
	configFile := flag.String("config", "radar.json", "configuration file")
	writeConfig := flag.Bool("write-config", false, "write the effective configuration and exit")
	flag.Parse()

	log.SetPrefix("radar: ")
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if *writeConfig {
		if err := cfg.Save(*configFile); err != nil {
			log.Fatal(err)
		}
		log.Printf("configuration written to %s", *configFile)
		return
	}

	fontDirs := cfg.Fonts.Dirs
	if !cfg.Fonts.SkipSystem {
		fontDirs = append(fontDirs, render.DefaultFontDirs()...)
	}
	fonts, err := render.LoadFonts(fontDirs...)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d font families available", len(fonts.Families()))
	if _, err := fonts.Lookup(cfg.Display.Family, false); err != nil {
		log.Fatal(err)
	}

	pipeline := radar.New(radar.Options{
		Center:   cfg.Center(),
		RadiusKm: cfg.Location.RadiusKm,
		Filter: flight.Filter{
			MaxDistanceKm: cfg.Filter.MaxDistanceKm,
			MaxAltitude:   cfg.Filter.MaxAltitudeM,
		},
		Family: cfg.Display.Family,
	}, fonts, newSources(cfg))

	srv := server.New(pipeline, server.Config{
		RequestTimeout: cfg.RequestTimeout(),
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("listening on %s, watching %v", httpServer.Addr, cfg.Center())
		if cfg.OpenSky.ClientID == "" {
			log.Print("no OpenSky credentials, using anonymous access")
		}
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Print("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
}

func newSources(cfg *config.Config) radar.Sources {
	retry := func(n int) upstream.RetryConfig {
		r := upstream.DefaultRetryConfig()
		r.MaxRetries = n
		return r
	}

	src := radar.Sources{
		Positions: opensky.New(opensky.Config{
			ClientID:          cfg.OpenSky.ClientID,
			ClientSecret:      cfg.OpenSky.ClientSecret,
			BaseURL:           cfg.OpenSky.BaseURL,
			TokenURL:          cfg.OpenSky.TokenURL,
			Timeout:           cfg.OpenSky.Timeout(),
			RequestsPerSecond: cfg.OpenSky.RequestsPerSecond,
			Retry:             retry(cfg.OpenSky.MaxRetries),
		}),
	}

	db := adsbdb.New(adsbdb.Config{
		BaseURL:           cfg.ADSBDB.BaseURL,
		Timeout:           cfg.ADSBDB.Timeout(),
		RequestsPerSecond: cfg.ADSBDB.RequestsPerSecond,
		Retry:             retry(cfg.ADSBDB.MaxRetries),
	})
	src.Routes = db
	src.Types = db

	if cfg.Planespotters.Enabled {
		src.Photos = planespotters.New(planespotters.Config{
			BaseURL:           cfg.Planespotters.BaseURL,
			Timeout:           cfg.Planespotters.Timeout(),
			RequestsPerSecond: cfg.Planespotters.RequestsPerSecond,
			Retry:             retry(cfg.Planespotters.MaxRetries),
			UserAgent:         cfg.Planespotters.UserAgent,
		})
	}
	return src
}
