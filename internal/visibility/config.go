// Package visibility computes when a fixed celestial target can actually be
// observed from a ground site: during astronomical night, above a minimum
// altitude and outside Moon vetoes.
package visibility

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-visibility/internal/ephem"
)

// Errors returned by the visibility computation.
var (
	ErrNoNight       = errors.New("no night found")
	ErrInvalidConfig = errors.New("invalid visibility configuration")
	ErrInvalidSpan   = errors.New("data window stops before it starts")
)

// Config holds the visibility constraints. Angles are in degrees.
type Config struct {
	AltMin       float64 `yaml:"altmin" json:"altmin"`
	MoonMaxAlt   float64 `yaml:"altmoon" json:"altmoon"`
	MoonMinDist  float64 `yaml:"moondist" json:"moondist"`
	MoonMaxLight float64 `yaml:"moonlight" json:"moonlight"`

	// HaloThreshold, when positive, widens MoonMinDist to the distance at
	// which the Moon halo intensity falls to this fraction.
	HaloThreshold float64 `yaml:"halo_threshold,omitempty" json:"halo_threshold,omitempty"`

	Depth        float64 `yaml:"depth" json:"depth"` // days of data considered; <= 0 disables the cap
	Skip         int     `yaml:"skip" json:"skip"`   // leading nights ignored
	ForceVisible bool    `yaml:"force_visible" json:"force_visible"`
	Coalesce     bool    `yaml:"coalesce,omitempty" json:"coalesce,omitempty"`
}

// DefaultConfig returns the constraints used when none are given.
func DefaultConfig() Config {
	return Config{
		AltMin:       10,
		MoonMaxAlt:   0,
		MoonMinDist:  0,
		MoonMaxLight: 1,
		Depth:        3,
		Skip:         0,
	}
}

// Validate checks ranges.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"altmin":         c.AltMin,
		"altmoon":        c.MoonMaxAlt,
		"moondist":       c.MoonMinDist,
		"moonlight":      c.MoonMaxLight,
		"halo_threshold": c.HaloThreshold,
		"depth":          c.Depth,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, name)
		}
	}
	switch {
	case c.AltMin < -90 || c.AltMin > 90:
		return fmt.Errorf("%w: altmin %.2f out of [-90, 90]", ErrInvalidConfig, c.AltMin)
	case c.MoonMaxAlt < -90 || c.MoonMaxAlt > 90:
		return fmt.Errorf("%w: altmoon %.2f out of [-90, 90]", ErrInvalidConfig, c.MoonMaxAlt)
	case c.MoonMinDist < 0 || c.MoonMinDist > 180:
		return fmt.Errorf("%w: moondist %.2f out of [0, 180]", ErrInvalidConfig, c.MoonMinDist)
	case c.MoonMaxLight < 0 || c.MoonMaxLight > 1:
		return fmt.Errorf("%w: moonlight %.2f out of [0, 1]", ErrInvalidConfig, c.MoonMaxLight)
	case c.HaloThreshold < 0 || c.HaloThreshold >= 1:
		return fmt.Errorf("%w: halo_threshold %.2f out of [0, 1)", ErrInvalidConfig, c.HaloThreshold)
	case c.Skip < 0:
		return fmt.Errorf("%w: skip %d is negative", ErrInvalidConfig, c.Skip)
	}
	return nil
}

// DepthDuration returns the data window cap, or zero when uncapped.
func (c Config) DepthDuration() time.Duration {
	if c.Depth <= 0 {
		return 0
	}
	return time.Duration(c.Depth * 24 * float64(time.Hour))
}

// Target is a fixed sky position (ICRS, degrees).
type Target struct {
	Name   string  `yaml:"name" json:"name"`
	RADeg  float64 `yaml:"ra" json:"ra"`
	DecDeg float64 `yaml:"dec" json:"dec"`
}

// Validate checks the coordinates.
func (t Target) Validate() error {
	if err := ephem.ValidateTarget(t.RADeg, t.DecDeg); err != nil {
		return fmt.Errorf("target %q: %w", t.Name, err)
	}
	return nil
}
