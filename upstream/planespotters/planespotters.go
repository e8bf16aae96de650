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

// Package planespotters finds aircraft photos on planespotters.net.
package planespotters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/upstream"
)

// BaseURL is the root of the public planespotters API.
const BaseURL = "https://api.planespotters.net/pub"

// MaxPhotoSize limits the size of a downloaded photo.
const MaxPhotoSize = 4 << 20

// Config configures a [Client].
type Config struct {
	BaseURL           string // defaults to BaseURL
	Timeout           time.Duration
	RequestsPerSecond float64
	Retry             upstream.RetryConfig

	// UserAgent is sent with every request; planespotters asks API users
	// to identify themselves.
	UserAgent string
}

// Client is a planespotters client. It is safe for concurrent use.
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
		UserAgent:         cfg.UserAgent,
	}
	if cfg.Timeout > 0 {
		opts.HTTP = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		up:      upstream.NewClient(opts),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

type thumbnail struct {
	Src  string `json:"src"`
	Size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"size"`
}

type photo struct {
	ID             string    `json:"id"`
	Thumbnail      thumbnail `json:"thumbnail"`
	ThumbnailLarge thumbnail `json:"thumbnail_large"`
	Link           string    `json:"link"`
	Photographer   string    `json:"photographer"`
}

type photosResponse struct {
	Photos []photo `json:"photos"`
}

// lookup returns the first photo of the given airframe which has a
// thumbnail, or nil. A missing large thumbnail is replaced by the small one.
func (c *Client) lookup(ctx context.Context, icao24 string) (*photo, error) {
	icao24 = strings.ToLower(strings.TrimSpace(icao24))
	if icao24 == "" {
		return nil, nil
	}

	var resp photosResponse
	err := c.up.GetJSON(ctx, c.baseURL+"/photos/hex/"+url.PathEscape(icao24), &resp)
	if errors.Is(err, upstream.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("planespotters: %w", err)
	}

	for i := range resp.Photos {
		p := &resp.Photos[i]
		if p.ThumbnailLarge.Src == "" {
			p.ThumbnailLarge = p.Thumbnail
		}
		if p.ThumbnailLarge.Src != "" {
			return p, nil
		}
	}
	return nil, nil
}

// Photo downloads a photo of the given airframe. It returns nil if
// planespotters has no photo.
func (c *Client) Photo(ctx context.Context, icao24 string) (*flight.Photo, error) {
	p, err := c.lookup(ctx, icao24)
	if err != nil || p == nil {
		return nil, err
	}

	src := p.ThumbnailLarge.Src
	data, mime, err := c.up.Download(ctx, src, MaxPhotoSize)
	if err != nil {
		return nil, fmt.Errorf("planespotters: downloading %s: %w", src, err)
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("planespotters: %s is %s, not an image", src, mime)
	}
	return &flight.Photo{
		Data:   data,
		MIME:   mime,
		Source: src,
		Credit: p.Photographer,
	}, nil
}
