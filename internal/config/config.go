// Package config loads the YAML configuration: observatory sites, named
// visibility presets, ephemeris and population settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/ephem"
	"github.com/litescript/ls-visibility/internal/logging"
	"github.com/litescript/ls-visibility/internal/visibility"
)

// Errors returned by lookups and validation.
var (
	ErrUnknownSite   = errors.New("unknown site")
	ErrUnknownPreset = errors.New("unknown visibility preset")
	ErrInvalid       = errors.New("invalid configuration")
)

// Config is the whole configuration file.
type Config struct {
	Observatory string                         `yaml:"observatory"`
	Sites       map[string]map[string]SiteSpec `yaml:"sites"`
	Visibility  map[string]visibility.Config   `yaml:"visibility"`
	Ephemeris   EphemerisConfig                `yaml:"ephemeris"`
	Population  PopulationConfig               `yaml:"population"`
	LogLevel    string                         `yaml:"log_level"`
}

// SiteSpec locates a site either by geocentric coordinates (metres) or by
// geodetic latitude, longitude (degrees) and height (metres).
type SiteSpec struct {
	Geocentric []float64 `yaml:"geocentric,omitempty"`
	Lat        float64   `yaml:"lat,omitempty"`
	Lon        float64   `yaml:"lon,omitempty"`
	Height     float64   `yaml:"height,omitempty"`
}

// Site converts the spec to an astro.Site named name.
func (s SiteSpec) Site(name string) (astro.Site, error) {
	if len(s.Geocentric) > 0 {
		if len(s.Geocentric) != 3 {
			return astro.Site{}, fmt.Errorf("%w: site %s: geocentric needs 3 values, got %d",
				ErrInvalid, name, len(s.Geocentric))
		}
		return astro.SiteFromGeocentric(name, s.Geocentric[0], s.Geocentric[1], s.Geocentric[2]), nil
	}
	return astro.SiteFromGeodetic(name, s.Lat, s.Lon, s.Height), nil
}

// EphemerisConfig tunes the event search.
type EphemerisConfig struct {
	GridPoints int           `yaml:"grid_points"`
	SearchSpan time.Duration `yaml:"search_span"`
	Tolerance  time.Duration `yaml:"tolerance"`
	Twilight   float64       `yaml:"twilight"`
}

// Options returns the ephem options for these settings.
func (e EphemerisConfig) Options() []ephem.Option {
	return []ephem.Option{
		ephem.WithGridPoints(e.GridPoints),
		ephem.WithSearchSpan(e.SearchSpan),
		ephem.WithTolerance(e.Tolerance),
		ephem.WithTwilightAltitude(e.Twilight),
	}
}

// PopulationConfig drives population runs.
type PopulationConfig struct {
	Workers     int           `yaml:"workers"` // <= 0 means one per CPU
	UnitTimeout time.Duration `yaml:"unit_timeout"`
	Seed        int64         `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Observatory: "CTA",
		Sites: map[string]map[string]SiteSpec{
			"CTA": {
				"North": {Geocentric: []float64{5327448.9957829, -1718665.73869569, 3051566.90295403}},
				"South": {Geocentric: []float64{1946404.34103884, -5467644.29079852, -2642728.20144425}},
			},
			// HESS North is a virtual site at CTA North.
			"HESS": {
				"North": {Geocentric: []float64{5327448.9957829, -1718665.73869569, 3051566.90295403}},
				"South": {Lat: -23.271667, Lon: 16.5, Height: 1800},
			},
		},
		Visibility: map[string]visibility.Config{
			"default": visibility.DefaultConfig(),
			"strictmoonveto": {
				AltMin: 24, MoonMaxAlt: -0.25, MoonMinDist: 30, MoonMaxLight: 0.6, Depth: 3,
			},
			"nomoonveto": {
				AltMin: 24, MoonMaxAlt: 90, MoonMinDist: 0, MoonMaxLight: 1, Depth: 3,
			},
		},
		Ephemeris: EphemerisConfig{
			GridPoints: ephem.DefaultGridPoints,
			SearchSpan: ephem.DefaultSearchSpan,
			Tolerance:  ephem.DefaultTolerance,
			Twilight:   astro.AstronomicalTwilight,
		},
		Population: PopulationConfig{
			UnitTimeout: 2 * time.Minute,
			Seed:        2022,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults. A site group or preset present in the
// file replaces the built-in one of the same name. LOG_LEVEL overrides
// log_level.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.LogLevel = logging.LevelFromEnv(cfg.LogLevel)
}

// Validate checks the observatory, every site and every preset.
func (c *Config) Validate() error {
	if _, ok := c.Sites[c.Observatory]; !ok {
		return fmt.Errorf("%w: observatory %q has no sites", ErrInvalid, c.Observatory)
	}
	for obs, locs := range c.Sites {
		for loc, spec := range locs {
			site, err := spec.Site(loc)
			if err != nil {
				return err
			}
			if err := site.Validate(); err != nil {
				return fmt.Errorf("%w: site %s/%s: %v", ErrInvalid, obs, loc, err)
			}
		}
	}
	for key, v := range c.Visibility {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", key, err)
		}
	}
	if c.Ephemeris.GridPoints < 2 {
		return fmt.Errorf("%w: ephemeris grid_points %d < 2", ErrInvalid, c.Ephemeris.GridPoints)
	}
	if c.Ephemeris.SearchSpan <= 0 || c.Ephemeris.Tolerance <= 0 {
		return fmt.Errorf("%w: ephemeris search_span and tolerance must be positive", ErrInvalid)
	}
	if c.Population.UnitTimeout < 0 {
		return fmt.Errorf("%w: population unit_timeout is negative", ErrInvalid)
	}
	return nil
}

// Site returns the site loc of observatory obs. An empty obs selects the
// configured observatory.
func (c *Config) Site(obs, loc string) (astro.Site, error) {
	if obs == "" {
		obs = c.Observatory
	}
	spec, ok := c.Sites[obs][loc]
	if !ok {
		return astro.Site{}, fmt.Errorf("%w: %s/%s", ErrUnknownSite, obs, loc)
	}
	return spec.Site(loc)
}

// Locations returns the sorted site names of observatory obs.
func (c *Config) Locations(obs string) []string {
	if obs == "" {
		obs = c.Observatory
	}
	locs := make([]string, 0, len(c.Sites[obs]))
	for loc := range c.Sites[obs] {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	return locs
}

// Preset returns the visibility constraints stored under key.
func (c *Config) Preset(key string) (visibility.Config, error) {
	v, ok := c.Visibility[key]
	if !ok {
		return visibility.Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}
	return v, nil
}
