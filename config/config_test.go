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

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// clearEnv makes sure the overrides from the developer's shell do not leak
// into the tests.
func clearEnv(t *testing.T) {
	for _, name := range []string{
		"PORT", "OPENSKY_CLIENT_ID", "OPENSKY_CLIENT_SECRET",
		"RADAR_LAT", "RADAR_LON", "RADAR_RADIUS_KM", "RADAR_FONT_DIRS",
	} {
		t.Setenv(name, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != "3000" {
		t.Errorf("port %q, want 3000", cfg.Server.Port)
	}
	if cfg.Location.RadiusKm != 25 {
		t.Errorf("radius %g, want 25", cfg.Location.RadiusKm)
	}
	if cfg.Filter != (FilterConfig{}) {
		t.Errorf("filter %+v, want disabled", cfg.Filter)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadPartial(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "radar.json")
	data := `{
		"location": {"latitude": 51.47, "longitude": -0.4543},
		"filter": {"max_altitude_m": 6096},
		"opensky": {"client_id": "me", "client_secret": "s3cret", "max_retries": 4}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Location.Latitude != 51.47 || cfg.Location.Longitude != -0.4543 {
		t.Errorf("location %+v", cfg.Location)
	}
	if cfg.Location.RadiusKm != 25 {
		t.Errorf("radius %g, want default 25", cfg.Location.RadiusKm)
	}
	if cfg.Filter.MaxAltitudeM != 6096 {
		t.Errorf("filter %+v", cfg.Filter)
	}
	if cfg.OpenSky.ClientID != "me" || cfg.OpenSky.MaxRetries != 4 {
		t.Errorf("opensky %+v", cfg.OpenSky)
	}
	if cfg.OpenSky.TimeoutSeconds != 10 {
		t.Errorf("opensky timeout %d, want default 10", cfg.OpenSky.TimeoutSeconds)
	}
}

func TestLoadBadJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "radar.json")
	if err := os.WriteFile(path, []byte(`{"server": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("broken file accepted")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("OPENSKY_CLIENT_ID", "id")
	t.Setenv("OPENSKY_CLIENT_SECRET", "secret")
	t.Setenv("RADAR_LAT", " 46.2381 ")
	t.Setenv("RADAR_LON", "6.1089")
	t.Setenv("RADAR_FONT_DIRS", "/a"+string(os.PathListSeparator)+"/b")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" || cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("port %q", cfg.Server.Port)
	}
	if cfg.OpenSky.ClientID != "id" || cfg.OpenSky.ClientSecret != "secret" {
		t.Errorf("credentials %+v", cfg.OpenSky)
	}
	if c := cfg.Center(); c.Lat != 46.2381 || c.Lon != 6.1089 {
		t.Errorf("center %v", c)
	}
	if !reflect.DeepEqual(cfg.Fonts.Dirs, []string{"/a", "/b"}) {
		t.Errorf("font dirs %q", cfg.Fonts.Dirs)
	}

	t.Setenv("RADAR_LAT", "north")
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("invalid latitude accepted")
	}
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name   string
		modify func(*Config)
		want   string
	}
	cases := []testCase{
		{"port", func(c *Config) { c.Server.Port = "http" }, "server.port"},
		{"latitude", func(c *Config) { c.Location.Latitude = 91 }, "location"},
		{"radius", func(c *Config) { c.Location.RadiusKm = 0 }, "radius_km"},
		{"filter", func(c *Config) { c.Filter.MaxDistanceKm = -1 }, "filter"},
		{"credentials", func(c *Config) { c.OpenSky.ClientID = "id" }, "client_secret"},
		{"retries", func(c *Config) { c.ADSBDB.MaxRetries = -1 }, "adsbdb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("got %v, want error mentioning %q", err, tc.want)
			}
		})
	}
}

func TestSave(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "radar.json")
	cfg := Default()
	cfg.Fonts.Dirs = []string{"/usr/share/fonts/google"}
	cfg.Filter.MaxDistanceKm = 8

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("config file is readable by others: %v", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("got %+v, want %+v", loaded, cfg)
	}
}
