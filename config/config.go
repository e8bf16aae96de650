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

// Package config holds the settings of the radar service.
//
// Settings are read from a JSON file and can be overridden by environment
// variables. A missing file is not an error: the defaults are used.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"seehuhn.de/go/radar/geo"
	"seehuhn.de/go/radar/scene"
)

// Config is the complete service configuration.
type Config struct {
	Server        ServerConfig        `json:"server"`
	Location      LocationConfig      `json:"location"`
	Filter        FilterConfig        `json:"filter"`
	OpenSky       OpenSkyConfig       `json:"opensky"`
	ADSBDB        ServiceConfig       `json:"adsbdb"`
	Planespotters PlanespottersConfig `json:"planespotters"`
	Fonts         FontsConfig         `json:"fonts"`
	Display       DisplayConfig       `json:"display"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `json:"host"`
	Port string `json:"port"`

	// RequestTimeoutSeconds bounds the time spent on one request,
	// including all upstream lookups.
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`

	// CORSOrigins lists origins allowed to fetch the images from a
	// browser. Empty means any origin.
	CORSOrigins []string `json:"cors_origins"`
}

// LocationConfig is the reference point of the display.
type LocationConfig struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// RadiusKm is half the side length of the box queried for aircraft.
	RadiusKm float64 `json:"radius_km"`
}

// FilterConfig restricts which aircraft can be selected.
// Zero disables a limit.
type FilterConfig struct {
	MaxDistanceKm float64 `json:"max_distance_km"`
	MaxAltitudeM  float64 `json:"max_altitude_m"`
}

// ServiceConfig holds the settings common to all upstream services.
type ServiceConfig struct {
	BaseURL           string  `json:"base_url,omitempty"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	MaxRetries        int     `json:"max_retries"`
}

// Timeout returns the request timeout as a duration.
func (s ServiceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// OpenSkyConfig configures the position source. Without client
// credentials, anonymous access is used.
type OpenSkyConfig struct {
	ServiceConfig
	TokenURL     string `json:"token_url,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// PlanespottersConfig configures the photo source.
type PlanespottersConfig struct {
	ServiceConfig
	Enabled   bool   `json:"enabled"`
	UserAgent string `json:"user_agent"`
}

// FontsConfig says where fonts are found.
type FontsConfig struct {
	// Dirs are scanned for font files in addition to the system
	// directories.
	Dirs []string `json:"dirs"`

	// SkipSystem disables scanning the system font directories.
	SkipSystem bool `json:"skip_system"`
}

// DisplayConfig controls the appearance of the rendered images.
type DisplayConfig struct {
	// Family is a comma-separated list of font families, as in CSS.
	Family string `json:"family"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                  "0.0.0.0",
			Port:                  "3000",
			RequestTimeoutSeconds: 30,
		},
		Location: LocationConfig{
			Latitude:  47.4197,
			Longitude: 8.4344,
			RadiusKm:  25,
		},
		OpenSky: OpenSkyConfig{
			ServiceConfig: ServiceConfig{TimeoutSeconds: 10, MaxRetries: 2},
		},
		ADSBDB: ServiceConfig{TimeoutSeconds: 5, RequestsPerSecond: 2},
		Planespotters: PlanespottersConfig{
			ServiceConfig: ServiceConfig{TimeoutSeconds: 10, RequestsPerSecond: 1},
			Enabled:       true,
			UserAgent:     "seehuhn.de/go/radar",
		},
		Display: DisplayConfig{
			Family: scene.DefaultFamily,
		},
	}
}

// Load reads the configuration from path and applies the environment
// overrides. Settings not mentioned in the file keep their default values.
// If the file does not exist, the defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// use defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as indented JSON.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// the file may hold client secrets
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if id := os.Getenv("OPENSKY_CLIENT_ID"); id != "" {
		c.OpenSky.ClientID = id
	}
	if secret := os.Getenv("OPENSKY_CLIENT_SECRET"); secret != "" {
		c.OpenSky.ClientSecret = secret
	}
	for _, v := range []struct {
		name string
		dst  *float64
	}{
		{"RADAR_LAT", &c.Location.Latitude},
		{"RADAR_LON", &c.Location.Longitude},
		{"RADAR_RADIUS_KM", &c.Location.RadiusKm},
	} {
		s := os.Getenv(v.name)
		if s == "" {
			continue
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", v.name, s, err)
		}
		*v.dst = x
	}
	if dirs := os.Getenv("RADAR_FONT_DIRS"); dirs != "" {
		c.Fonts.Dirs = append(c.Fonts.Dirs, filepath.SplitList(dirs)...)
	}
	return nil
}

// Validate checks that all settings are in range.
func (c *Config) Validate() error {
	var errs []error
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("server.port %q is not a valid port", c.Server.Port))
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("server.request_timeout_seconds must be positive"))
	}
	if !c.Center().Valid() {
		errs = append(errs, fmt.Errorf("location %v is out of range", c.Center()))
	}
	if !(c.Location.RadiusKm > 0) || math.IsInf(c.Location.RadiusKm, 0) {
		errs = append(errs, errors.New("location.radius_km must be positive"))
	}
	if c.Filter.MaxDistanceKm < 0 || c.Filter.MaxAltitudeM < 0 {
		errs = append(errs, errors.New("filter limits must not be negative"))
	}
	if (c.OpenSky.ClientID == "") != (c.OpenSky.ClientSecret == "") {
		errs = append(errs, errors.New("opensky needs both client_id and client_secret"))
	}
	for name, s := range map[string]ServiceConfig{
		"opensky":       c.OpenSky.ServiceConfig,
		"adsbdb":        c.ADSBDB,
		"planespotters": c.Planespotters.ServiceConfig,
	} {
		if s.TimeoutSeconds < 0 || s.RequestsPerSecond < 0 || s.MaxRetries < 0 {
			errs = append(errs, fmt.Errorf("%s: settings must not be negative", name))
		}
	}
	return errors.Join(errs...)
}

// Center returns the reference point.
func (c *Config) Center() geo.Point {
	return geo.Point{Lat: c.Location.Latitude, Lon: c.Location.Longitude}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// RequestTimeout returns the per-request time limit.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
