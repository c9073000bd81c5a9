package visibility

import (
	"fmt"
	"time"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/ephem"
	"github.com/litescript/ls-visibility/internal/timeline"
)

// maxIterations bounds every event loop against an ephemeris that fails to
// advance.
const maxIterations = 1000

// FindNights returns whether tstart falls in a night and the [dusk, dawn]
// windows from the night around or after tstart up to the first night
// starting past tstop. The first skip nights are dropped. An empty result is
// ErrNoNight.
func FindNights(svc ephem.Service, site astro.Site, tstart, tstop time.Time, skip int) (bool, timeline.Windows, error) {
	dark, err := svc.IsDark(site, tstart)
	if err != nil {
		return false, nil, fmt.Errorf("night at start: %w", err)
	}

	dir := ephem.Next
	if dark {
		dir = ephem.Previous
	}

	var nights timeline.Windows
	dusk, ok, err := svc.EveningTwilight(site, tstart, dir)
	if err != nil {
		return dark, nil, fmt.Errorf("first dusk: %w", err)
	}
	if ok {
		dawn, found, err := svc.MorningTwilight(site, dusk, ephem.Next)
		if err != nil {
			return dark, nil, fmt.Errorf("first dawn: %w", err)
		}
		ok = found
		if ok && skip == 0 {
			nights = append(nights, timeline.Bounded(dusk, dawn))
		}

		for n := 1; ok && dusk.Before(tstop) && n < maxIterations; n++ {
			dusk, ok, err = svc.EveningTwilight(site, dawn, ephem.Next)
			if err != nil {
				return dark, nil, fmt.Errorf("dusk after %s: %w", dawn.Format(time.RFC3339), err)
			}
			if !ok {
				break
			}
			dawn, ok, err = svc.MorningTwilight(site, dusk, ephem.Next)
			if err != nil {
				return dark, nil, fmt.Errorf("dawn after %s: %w", dusk.Format(time.RFC3339), err)
			}
			if ok && n >= skip {
				nights = append(nights, timeline.Bounded(dusk, dawn))
			}
		}
	}

	if nights.Empty() {
		return dark, nil, fmt.Errorf("%w at %s between %s and %s (skip %d)",
			ErrNoNight, site.Name, tstart.Format(time.RFC3339), tstop.Format(time.RFC3339), skip)
	}
	return dark, nights, nil
}
