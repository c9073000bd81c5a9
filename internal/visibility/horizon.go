package visibility

import (
	"fmt"
	"time"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/ephem"
	"github.com/litescript/ls-visibility/internal/timeline"
)

// eventFunc finds the next event after t.
type eventFunc func(t time.Time) (time.Time, bool, error)

// FindAboveHorizon returns whether the target is above altMin at tstart and
// the [rise, set] windows from the one containing or following tstart until
// a set reaches tstop. A target that never crosses altMin yields
// [[tstart, tstop]] when above and the empty list when below.
func FindAboveHorizon(svc ephem.Service, site astro.Site, target Target, tstart, tstop time.Time, altMin float64) (bool, timeline.Windows, error) {
	alt, err := svc.TargetAltitude(site, target.RADeg, target.DecDeg, tstart)
	if err != nil {
		return false, nil, fmt.Errorf("target altitude: %w", err)
	}
	above := alt > altMin

	dir := ephem.Next
	if above {
		dir = ephem.Previous
	}
	rise, ok, err := svc.TargetRise(site, target.RADeg, target.DecDeg, tstart, altMin, dir)
	if err != nil {
		return above, nil, fmt.Errorf("first rise: %w", err)
	}
	if !ok {
		if above {
			return true, timeline.Single(tstart, tstop), nil
		}
		return false, nil, nil
	}

	setAfter := func(t time.Time) (time.Time, bool, error) {
		return svc.TargetSet(site, target.RADeg, target.DecDeg, t, altMin, ephem.Next)
	}
	riseAfter := func(t time.Time) (time.Time, bool, error) {
		return svc.TargetRise(site, target.RADeg, target.DecDeg, t, altMin, ephem.Next)
	}
	windows, err := riseSetWindows(rise, tstop, setAfter, riseAfter)
	if err != nil {
		return above, nil, fmt.Errorf("target rise/set: %w", err)
	}
	return above, windows, nil
}

// riseSetWindows chains rise -> set -> rise ... from firstRise. It stops once
// a set reaches tstop, a rise falls past tstop or an event is missing. A
// missing set leaves the last window open-ended.
func riseSetWindows(firstRise, tstop time.Time, setAfter, riseAfter eventFunc) (timeline.Windows, error) {
	var windows timeline.Windows
	rise := firstRise
	for n := 0; n < maxIterations; n++ {
		set, ok, err := setAfter(rise)
		if err != nil {
			return nil, err
		}
		if !ok {
			return append(windows, timeline.From(rise)), nil
		}
		windows = append(windows, timeline.Bounded(rise, set))
		if !set.Before(tstop) {
			break
		}

		rise, ok, err = riseAfter(set)
		if err != nil {
			return nil, err
		}
		if !ok || rise.After(tstop) {
			break
		}
	}
	return windows, nil
}
