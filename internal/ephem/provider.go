// Package ephem answers the astronomical event queries behind a visibility
// computation: twilight, target and Moon rise/set, Moon brightness and
// distance.
package ephem

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-visibility/internal/astro"
)

// Errors returned by Service implementations.
var (
	ErrInvalidSite   = astro.ErrInvalidSite
	ErrInvalidTarget = errors.New("invalid target coordinates")
)

// Direction selects the search sense of an event query.
type Direction int

const (
	Next     Direction = iota // first event after the reference instant
	Previous                  // last event before the reference instant
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Previous:
		return "previous"
	default:
		return "unknown"
	}
}

// Service defines the event queries the visibility finders rely on.
//
// Event queries return ok=false when no event exists within the search span
// (circumpolar target, polar day). An error means the query itself was
// invalid.
type Service interface {
	// IsDark reports whether the Sun is below the twilight altitude.
	IsDark(site astro.Site, t time.Time) (bool, error)

	// EveningTwilight finds the Sun crossing the twilight altitude downward.
	EveningTwilight(site astro.Site, t time.Time, dir Direction) (time.Time, bool, error)

	// MorningTwilight finds the Sun crossing the twilight altitude upward.
	MorningTwilight(site astro.Site, t time.Time, dir Direction) (time.Time, bool, error)

	TargetAltitude(site astro.Site, raDeg, decDeg float64, t time.Time) (float64, error)
	TargetRise(site astro.Site, raDeg, decDeg float64, t time.Time, altDeg float64, dir Direction) (time.Time, bool, error)
	TargetSet(site astro.Site, raDeg, decDeg float64, t time.Time, altDeg float64, dir Direction) (time.Time, bool, error)

	MoonAltitude(site astro.Site, t time.Time) (float64, error)
	MoonRise(site astro.Site, t time.Time, altDeg float64, dir Direction) (time.Time, bool, error)
	MoonSet(site astro.Site, t time.Time, altDeg float64, dir Direction) (time.Time, bool, error)

	// MoonIllumination returns the illuminated fraction in [0, 1].
	MoonIllumination(t time.Time) (float64, error)

	// MoonSeparation returns the target-Moon angle in degrees.
	MoonSeparation(site astro.Site, raDeg, decDeg float64, t time.Time) (float64, error)
}

// ValidateTarget checks equatorial coordinates in degrees.
func ValidateTarget(raDeg, decDeg float64) error {
	if !finite(raDeg) || !finite(decDeg) {
		return fmt.Errorf("%w: ra=%v dec=%v", ErrInvalidTarget, raDeg, decDeg)
	}
	if decDeg < -90 || decDeg > 90 {
		return fmt.Errorf("%w: declination %.4f out of range", ErrInvalidTarget, decDeg)
	}
	return nil
}
