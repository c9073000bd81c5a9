package ephem

import (
	"time"

	"github.com/litescript/ls-visibility/internal/astro"
)

// Defaults for Ephemeris.
const (
	DefaultGridPoints = 150
	DefaultSearchSpan = 24 * time.Hour
	DefaultTolerance  = time.Second

	// moonSpanMargin widens Moon searches past one lunar day (~24h50m).
	moonSpanMargin = 2 * time.Hour
)

// Ephemeris is a Service computed from the analytical Sun and Moon theories
// in package astro. It holds no mutable state and is safe for concurrent use.
type Ephemeris struct {
	grid     grid
	twilight float64
}

// Option configures an Ephemeris.
type Option func(*Ephemeris)

// WithGridPoints sets the number of samples used to bracket an event.
func WithGridPoints(n int) Option {
	return func(e *Ephemeris) {
		if n >= 2 {
			e.grid.points = n
		}
	}
}

// WithSearchSpan sets how far before or after the reference instant events
// are searched.
func WithSearchSpan(d time.Duration) Option {
	return func(e *Ephemeris) {
		if d > 0 {
			e.grid.span = d
		}
	}
}

// WithTolerance sets the bisection stopping width.
func WithTolerance(d time.Duration) Option {
	return func(e *Ephemeris) {
		if d > 0 {
			e.grid.tolerance = d
		}
	}
}

// WithTwilightAltitude sets the solar altitude that separates day and night.
func WithTwilightAltitude(deg float64) Option {
	return func(e *Ephemeris) { e.twilight = deg }
}

// New creates an Ephemeris. Without options it searches ±24h on a
// 150-point grid with 1s resolution and uses astronomical twilight.
func New(opts ...Option) *Ephemeris {
	e := &Ephemeris{
		grid: grid{
			points:    DefaultGridPoints,
			span:      DefaultSearchSpan,
			tolerance: DefaultTolerance,
		},
		twilight: astro.AstronomicalTwilight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TwilightAltitude returns the configured solar altitude for night.
func (e *Ephemeris) TwilightAltitude() float64 {
	return e.twilight
}

func (e *Ephemeris) moonGrid() grid {
	g := e.grid
	g.span += moonSpanMargin
	return g
}

func (e *Ephemeris) IsDark(site astro.Site, t time.Time) (bool, error) {
	if err := site.Validate(); err != nil {
		return false, err
	}
	return astro.SunAltitude(site, t) < e.twilight, nil
}

func (e *Ephemeris) EveningTwilight(site astro.Site, t time.Time, dir Direction) (time.Time, bool, error) {
	return e.sunEvent(site, t, downward, dir)
}

func (e *Ephemeris) MorningTwilight(site astro.Site, t time.Time, dir Direction) (time.Time, bool, error) {
	return e.sunEvent(site, t, upward, dir)
}

func (e *Ephemeris) sunEvent(site astro.Site, t time.Time, sense crossing, dir Direction) (time.Time, bool, error) {
	if err := site.Validate(); err != nil {
		return time.Time{}, false, err
	}
	f := func(t time.Time) float64 { return astro.SunAltitude(site, t) }
	at, ok := e.grid.find(f, t, e.twilight, sense, dir)
	return at, ok, nil
}

func (e *Ephemeris) TargetAltitude(site astro.Site, raDeg, decDeg float64, t time.Time) (float64, error) {
	if err := validate(site, raDeg, decDeg); err != nil {
		return 0, err
	}
	return astro.Altitude(raDeg, decDeg, site, t), nil
}

func (e *Ephemeris) TargetRise(site astro.Site, raDeg, decDeg float64, t time.Time, altDeg float64, dir Direction) (time.Time, bool, error) {
	return e.targetEvent(site, raDeg, decDeg, t, altDeg, upward, dir)
}

func (e *Ephemeris) TargetSet(site astro.Site, raDeg, decDeg float64, t time.Time, altDeg float64, dir Direction) (time.Time, bool, error) {
	return e.targetEvent(site, raDeg, decDeg, t, altDeg, downward, dir)
}

func (e *Ephemeris) targetEvent(site astro.Site, raDeg, decDeg float64, t time.Time, altDeg float64, sense crossing, dir Direction) (time.Time, bool, error) {
	if err := validate(site, raDeg, decDeg); err != nil {
		return time.Time{}, false, err
	}
	f := func(t time.Time) float64 { return astro.Altitude(raDeg, decDeg, site, t) }
	at, ok := e.grid.find(f, t, altDeg, sense, dir)
	return at, ok, nil
}

func (e *Ephemeris) MoonAltitude(site astro.Site, t time.Time) (float64, error) {
	if err := site.Validate(); err != nil {
		return 0, err
	}
	return astro.MoonAltitude(site, t), nil
}

func (e *Ephemeris) MoonRise(site astro.Site, t time.Time, altDeg float64, dir Direction) (time.Time, bool, error) {
	return e.moonEvent(site, t, altDeg, upward, dir)
}

func (e *Ephemeris) MoonSet(site astro.Site, t time.Time, altDeg float64, dir Direction) (time.Time, bool, error) {
	return e.moonEvent(site, t, altDeg, downward, dir)
}

func (e *Ephemeris) moonEvent(site astro.Site, t time.Time, altDeg float64, sense crossing, dir Direction) (time.Time, bool, error) {
	if err := site.Validate(); err != nil {
		return time.Time{}, false, err
	}
	f := func(t time.Time) float64 { return astro.MoonAltitude(site, t) }
	at, ok := e.moonGrid().find(f, t, altDeg, sense, dir)
	return at, ok, nil
}

func (e *Ephemeris) MoonIllumination(t time.Time) (float64, error) {
	return astro.MoonIllumination(t), nil
}

func (e *Ephemeris) MoonSeparation(site astro.Site, raDeg, decDeg float64, t time.Time) (float64, error) {
	if err := validate(site, raDeg, decDeg); err != nil {
		return 0, err
	}
	return astro.MoonSeparation(raDeg, decDeg, site, t), nil
}

func validate(site astro.Site, raDeg, decDeg float64) error {
	if err := site.Validate(); err != nil {
		return err
	}
	return ValidateTarget(raDeg, decDeg)
}

var _ Service = (*Ephemeris)(nil)
