package visibility

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/ephem"
	"github.com/litescript/ls-visibility/internal/timeline"
)

// MoonPeriod is a span with the Moon above its altitude threshold and the
// verdicts sampled at its endpoints.
type MoonPeriod struct {
	Window    timeline.Window
	TooBright bool
	TooClose  bool
}

// Vetoed reports whether the period blocks observation.
func (p MoonPeriod) Vetoed() bool {
	return p.TooBright || p.TooClose
}

// MoonPeriods is an ordered list of Moon periods.
type MoonPeriods []MoonPeriod

// Windows returns every altitude candidate.
func (ps MoonPeriods) Windows() timeline.Windows {
	var ws timeline.Windows
	for _, p := range ps {
		ws = append(ws, p.Window)
	}
	return ws
}

// Vetoes returns the confirmed veto windows.
func (ps MoonPeriods) Vetoes() timeline.Windows {
	var ws timeline.Windows
	for _, p := range ps {
		if p.Vetoed() {
			ws = append(ws, p.Window)
		}
	}
	return ws
}

// Clone returns a copy that shares no storage with ps.
func (ps MoonPeriods) Clone() MoonPeriods {
	if len(ps) == 0 {
		return nil
	}
	out := make(MoonPeriods, len(ps))
	copy(out, ps)
	return out
}

// MoonCriteria are the Moon veto thresholds.
type MoonCriteria struct {
	MaxAlt        float64 // degrees
	MinDist       float64 // degrees
	MaxLight      float64 // illuminated fraction
	HaloThreshold float64 // halo intensity fraction, 0 disables
}

// FindMoonVeto returns the periods in which the Moon is above MaxAlt, from
// the one containing or following tstart until a set reaches tstop. Each
// period is too bright if the illumination at either endpoint is at least
// MaxLight, and too close if the target-Moon distance at either endpoint is
// at most the minimum distance.
func FindMoonVeto(svc ephem.Service, site astro.Site, target Target, tstart, tstop time.Time, c MoonCriteria) (MoonPeriods, error) {
	alt, err := svc.MoonAltitude(site, tstart)
	if err != nil {
		return nil, fmt.Errorf("moon altitude: %w", err)
	}

	dir := ephem.Next
	if alt > c.MaxAlt {
		dir = ephem.Previous
	}
	rise, ok, err := svc.MoonRise(site, tstart, c.MaxAlt, dir)
	if err != nil {
		return nil, fmt.Errorf("first moon rise: %w", err)
	}
	if !ok {
		return nil, nil
	}

	setAfter := func(t time.Time) (time.Time, bool, error) {
		return svc.MoonSet(site, t, c.MaxAlt, ephem.Next)
	}
	riseAfter := func(t time.Time) (time.Time, bool, error) {
		return svc.MoonRise(site, t, c.MaxAlt, ephem.Next)
	}
	candidates, err := riseSetWindows(rise, tstop, setAfter, riseAfter)
	if err != nil {
		return nil, fmt.Errorf("moon rise/set: %w", err)
	}

	periods := make(MoonPeriods, 0, len(candidates))
	for _, w := range candidates {
		p := MoonPeriod{Window: w}
		for _, t := range endpoints(w) {
			bright, near, err := moonVerdict(svc, site, target, t, c)
			if err != nil {
				return nil, err
			}
			p.TooBright = p.TooBright || bright
			p.TooClose = p.TooClose || near
		}
		periods = append(periods, p)
	}
	return periods, nil
}

func moonVerdict(svc ephem.Service, site astro.Site, target Target, t time.Time, c MoonCriteria) (tooBright, tooClose bool, err error) {
	light, err := svc.MoonIllumination(t)
	if err != nil {
		return false, false, fmt.Errorf("moon illumination: %w", err)
	}
	dist, err := svc.MoonSeparation(site, target.RADeg, target.DecDeg, t)
	if err != nil {
		return false, false, fmt.Errorf("moon separation: %w", err)
	}

	minDist := c.MinDist
	if c.HaloThreshold > 0 {
		minDist = math.Max(minDist, MoonHaloDistance(light, c.HaloThreshold))
	}
	return light >= c.MaxLight, dist <= minDist, nil
}

// endpoints returns the bounded endpoints of w.
func endpoints(w timeline.Window) []time.Time {
	var ts []time.Time
	if !w.OpenStart {
		ts = append(ts, w.Start)
	}
	if !w.OpenEnd {
		ts = append(ts, w.End)
	}
	return ts
}

// Moon halo model: intensity q0 inside the disk radius haloR0, falling as
// 1/r² to haloEpsilon·q0 at haloRc (degrees).
const (
	haloR0      = 0.5
	haloRc      = 30.0
	haloEpsilon = 0.1
)

// MoonHalo returns the halo intensity at x degrees from the Moon centre for
// a Moon of intensity q0.
func MoonHalo(x, q0 float64) float64 {
	a := (1 - haloEpsilon) / (q0 * haloEpsilon) / ((haloRc - haloR0) * (haloRc - haloR0))
	d := x - haloR0
	return 1 / (a*d*d + 1/q0)
}

// MoonHaloDistance returns the distance in degrees at which the halo of a
// Moon of intensity q0 falls to threshold. It is zero when the Moon itself
// is not brighter than threshold.
func MoonHaloDistance(q0, threshold float64) float64 {
	if q0 <= threshold || threshold <= 0 {
		return 0
	}
	a := (1 - haloEpsilon) / haloEpsilon / q0 / ((haloRc - haloR0) * (haloRc - haloR0))
	return haloR0 + math.Sqrt((1/threshold-1/q0)/a)
}
