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

// Package opensky queries aircraft positions from the OpenSky Network.
//
// See https://openskynetwork.github.io/opensky-api/rest.html for the API.
package opensky

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/geo"
	"seehuhn.de/go/radar/upstream"
)

const (
	// BaseURL is the root of the OpenSky REST API.
	BaseURL = "https://opensky-network.org/api"

	// TokenURL is the OAuth2 token endpoint for API clients.
	TokenURL = "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token"

	// tokens are renewed this long before they expire
	tokenEarlyExpiry = 60 * time.Second
)

// ErrUnauthorized is returned when OpenSky rejects the credentials.
var ErrUnauthorized = errors.New("opensky: unauthorized")

// Config configures a [Client]. Without credentials the client makes
// anonymous requests, which OpenSky serves with a lower quota.
type Config struct {
	ClientID     string
	ClientSecret string

	BaseURL  string // defaults to BaseURL
	TokenURL string // defaults to TokenURL

	Timeout           time.Duration
	RequestsPerSecond float64
	Retry             upstream.RetryConfig
}

// Client fetches state vectors. It is safe for concurrent use.
type Client struct {
	up      *upstream.Client
	baseURL string
}

// New returns a client for the given configuration.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = TokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = upstream.DefaultTimeout
	}

	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		src := oauth2.ReuseTokenSourceWithExpiry(nil, cc.TokenSource(tokenCtx), tokenEarlyExpiry)
		hc = oauth2.NewClient(tokenCtx, src)
		hc.Timeout = cfg.Timeout
	}

	return &Client{
		up: upstream.NewClient(upstream.Options{
			HTTP:              hc,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Retry:             cfg.Retry,
		}),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// stateResponse is the body of /states/all.
type stateResponse struct {
	Time   int64   `json:"time"`
	States [][]any `json:"states"`
}

// column indices of a state vector
const (
	colICAO24       = 0
	colCallsign     = 1
	colLongitude    = 5
	colLatitude     = 6
	colBaroAltitude = 7
	colVelocity     = 9
	colTrueTrack    = 10
	colGeoAltitude  = 13
)

// StatesInBox returns the aircraft currently reported inside box.
// Aircraft without a position are left out.
func (c *Client) StatesInBox(ctx context.Context, box geo.BoundingBox) ([]flight.Record, error) {
	q := url.Values{}
	q.Set("lamin", strconv.FormatFloat(box.MinLat, 'f', -1, 64))
	q.Set("lomin", strconv.FormatFloat(box.MinLon, 'f', -1, 64))
	q.Set("lamax", strconv.FormatFloat(box.MaxLat, 'f', -1, 64))
	q.Set("lomax", strconv.FormatFloat(box.MaxLon, 'f', -1, 64))

	var resp stateResponse
	err := c.up.GetJSON(ctx, c.baseURL+"/states/all?"+q.Encode(), &resp)
	if err != nil {
		var se *upstream.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
			return nil, ErrUnauthorized
		}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, re)
		}
		return nil, fmt.Errorf("opensky: %w", err)
	}

	records := make([]flight.Record, 0, len(resp.States))
	for _, s := range resp.States {
		if r, ok := decodeState(s); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

func decodeState(s []any) (flight.Record, bool) {
	lat := number(s, colLatitude)
	lon := number(s, colLongitude)
	if lat == nil || lon == nil {
		return flight.Record{}, false
	}
	r := flight.Record{
		ICAO24:      strings.ToLower(strings.TrimSpace(text(s, colICAO24))),
		Callsign:    strings.TrimSpace(text(s, colCallsign)),
		Position:    geo.Point{Lat: *lat, Lon: *lon},
		Altitude:    number(s, colBaroAltitude),
		GroundSpeed: number(s, colVelocity),
		Heading:     number(s, colTrueTrack),
	}
	if r.Altitude == nil {
		r.Altitude = number(s, colGeoAltitude)
	}
	return r, r.ICAO24 != ""
}

func text(s []any, i int) string {
	if i >= len(s) {
		return ""
	}
	v, _ := s[i].(string)
	return v
}

func number(s []any, i int) *float64 {
	if i >= len(s) {
		return nil
	}
	if v, ok := s[i].(float64); ok {
		return &v
	}
	return nil
}
