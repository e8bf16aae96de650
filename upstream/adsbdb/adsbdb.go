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

// Package adsbdb looks up routes and aircraft types on adsbdb.com.
package adsbdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/upstream"
)

// BaseURL is the root of the adsbdb API.
const BaseURL = "https://api.adsbdb.com/v0"

// Config configures a [Client].
type Config struct {
	BaseURL           string // defaults to BaseURL
	Timeout           time.Duration
	RequestsPerSecond float64
	Retry             upstream.RetryConfig
}

// Client is an adsbdb client. It is safe for concurrent use.
type Client struct {
	up      *upstream.Client
	baseURL string
}

// New returns a new client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	opts := upstream.Options{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Retry:             cfg.Retry,
	}
	if cfg.Timeout > 0 {
		opts.HTTP = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		up:      upstream.NewClient(opts),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// envelope is the common shape of all responses. For unknown items the
// service sends a string such as "unknown callsign" instead of an object.
type envelope struct {
	Response json.RawMessage `json:"response"`
}

type airport struct {
	IATACode     string `json:"iata_code"`
	ICAOCode     string `json:"icao_code"`
	Name         string `json:"name"`
	Municipality string `json:"municipality"`
}

type flightRoute struct {
	Callsign     string  `json:"callsign"`
	CallsignIATA string  `json:"callsign_iata"`
	Origin       airport `json:"origin"`
	Destination  airport `json:"destination"`
}

type aircraft struct {
	Type         string `json:"type"`
	ICAOType     string `json:"icao_type"`
	Manufacturer string `json:"manufacturer"`
	Registration string `json:"registration"`
}

// get fetches path and decodes the payload into v. It reports false if the
// service does not know the item.
func (c *Client) get(ctx context.Context, path string, v any) (bool, error) {
	var env envelope
	err := c.up.GetJSON(ctx, c.baseURL+path, &env)
	if errors.Is(err, upstream.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("adsbdb: %w", err)
	}

	if len(env.Response) == 0 || env.Response[0] != '{' {
		return false, nil
	}
	if err := json.Unmarshal(env.Response, v); err != nil {
		return false, fmt.Errorf("adsbdb: decoding %s: %w", path, err)
	}
	return true, nil
}

// Route returns the route flown under callsign, or nil if it is unknown.
func (c *Client) Route(ctx context.Context, callsign string) (*flight.Route, error) {
	callsign = strings.TrimSpace(callsign)
	if callsign == "" {
		return nil, nil
	}
	var data struct {
		FlightRoute *flightRoute `json:"flightroute"`
	}
	ok, err := c.get(ctx, "/callsign/"+url.PathEscape(callsign), &data)
	if err != nil || !ok || data.FlightRoute == nil {
		return nil, err
	}

	fr := data.FlightRoute
	return &flight.Route{
		Origin:       toAirport(fr.Origin),
		Destination:  toAirport(fr.Destination),
		FlightNumber: fr.CallsignIATA,
	}, nil
}

func toAirport(a airport) flight.Airport {
	name := a.Municipality
	if name == "" {
		name = a.Name
	}
	return flight.Airport{IATA: a.IATACode, Name: name}
}

// AircraftType returns the model of the aircraft with the given transponder
// address, or "" if it is unknown.
func (c *Client) AircraftType(ctx context.Context, icao24 string) (string, error) {
	icao24 = strings.ToLower(strings.TrimSpace(icao24))
	if icao24 == "" {
		return "", nil
	}
	var data struct {
		Aircraft *aircraft `json:"aircraft"`
	}
	ok, err := c.get(ctx, "/aircraft/"+url.PathEscape(icao24), &data)
	if err != nil || !ok || data.Aircraft == nil {
		return "", err
	}

	a := data.Aircraft
	switch {
	case a.Type == "":
		return a.ICAOType, nil
	case a.Manufacturer != "" && !strings.HasPrefix(a.Type, a.Manufacturer):
		return a.Manufacturer + " " + a.Type, nil
	default:
		return a.Type, nil
	}
}
