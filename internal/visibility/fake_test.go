package visibility

import (
	"time"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/ephem"
	"github.com/litescript/ls-visibility/internal/timeline"
)

var t0 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// h returns t0 plus x hours.
func h(x float64) time.Time {
	return t0.Add(time.Duration(x * float64(time.Hour)))
}

func hw(a, b float64) timeline.Window {
	return timeline.Bounded(h(a), h(b))
}

var testSite = astro.SiteFromGeodetic("Test", -23.271667, 16.5, 1800)

// scriptedSky is an ephem.Service whose events are fixed lists. Next finds
// the first event strictly after t, Previous the last one at or before t.
// Altitude thresholds are ignored: the windows already encode them.
type scriptedSky struct {
	nights      timeline.Windows
	above       timeline.Windows
	alwaysAbove bool
	moon        timeline.Windows

	light func(time.Time) float64
	sep   func(time.Time) float64

	targetErr error
}

var _ ephem.Service = (*scriptedSky)(nil)

func starts(ws timeline.Windows) []time.Time {
	var ts []time.Time
	for _, w := range ws {
		if !w.OpenStart {
			ts = append(ts, w.Start)
		}
	}
	return ts
}

func ends(ws timeline.Windows) []time.Time {
	var ts []time.Time
	for _, w := range ws {
		if !w.OpenEnd {
			ts = append(ts, w.End)
		}
	}
	return ts
}

func find(ts []time.Time, t time.Time, dir ephem.Direction) (time.Time, bool, error) {
	if dir == ephem.Previous {
		for i := len(ts) - 1; i >= 0; i-- {
			if !ts[i].After(t) {
				return ts[i], true, nil
			}
		}
		return time.Time{}, false, nil
	}
	for _, e := range ts {
		if e.After(t) {
			return e, true, nil
		}
	}
	return time.Time{}, false, nil
}

// inside reports whether t is strictly inside a window.
func inside(ws timeline.Windows, t time.Time) bool {
	for _, w := range ws {
		if (w.OpenStart || t.After(w.Start)) && (w.OpenEnd || t.Before(w.End)) {
			return true
		}
	}
	return false
}

func (s *scriptedSky) IsDark(_ astro.Site, t time.Time) (bool, error) {
	return inside(s.nights, t), nil
}

func (s *scriptedSky) EveningTwilight(_ astro.Site, t time.Time, dir ephem.Direction) (time.Time, bool, error) {
	return find(starts(s.nights), t, dir)
}

func (s *scriptedSky) MorningTwilight(_ astro.Site, t time.Time, dir ephem.Direction) (time.Time, bool, error) {
	return find(ends(s.nights), t, dir)
}

func (s *scriptedSky) TargetAltitude(_ astro.Site, _, _ float64, t time.Time) (float64, error) {
	if s.targetErr != nil {
		return 0, s.targetErr
	}
	if s.alwaysAbove || inside(s.above, t) {
		return 45, nil
	}
	return -45, nil
}

func (s *scriptedSky) TargetRise(_ astro.Site, _, _ float64, t time.Time, _ float64, dir ephem.Direction) (time.Time, bool, error) {
	return find(starts(s.above), t, dir)
}

func (s *scriptedSky) TargetSet(_ astro.Site, _, _ float64, t time.Time, _ float64, dir ephem.Direction) (time.Time, bool, error) {
	return find(ends(s.above), t, dir)
}

func (s *scriptedSky) MoonAltitude(_ astro.Site, t time.Time) (float64, error) {
	if inside(s.moon, t) {
		return 20, nil
	}
	return -20, nil
}

func (s *scriptedSky) MoonRise(_ astro.Site, t time.Time, _ float64, dir ephem.Direction) (time.Time, bool, error) {
	return find(starts(s.moon), t, dir)
}

func (s *scriptedSky) MoonSet(_ astro.Site, t time.Time, _ float64, dir ephem.Direction) (time.Time, bool, error) {
	return find(ends(s.moon), t, dir)
}

func (s *scriptedSky) MoonIllumination(t time.Time) (float64, error) {
	if s.light == nil {
		return 0.5, nil
	}
	return s.light(t), nil
}

func (s *scriptedSky) MoonSeparation(_ astro.Site, _, _ float64, t time.Time) (float64, error) {
	if s.sep == nil {
		return 90, nil
	}
	return s.sep(t), nil
}

// threeNights is a sky with nights from 18:00 to 06:00, the target up from
// 22:00 to 10:00 and three Moon periods, the first of them too close to the
// target.
func threeNights() *scriptedSky {
	return &scriptedSky{
		nights: timeline.Windows{hw(6, 18), hw(30, 42), hw(54, 66), hw(78, 90)},
		above:  timeline.Windows{hw(10, 22), hw(34, 46), hw(58, 70), hw(82, 94)},
		moon:   timeline.Windows{hw(14, 20), hw(39, 45), hw(63, 69)},
		sep: func(t time.Time) float64 {
			if t.Before(h(30)) {
				return 20
			}
			return 60
		},
	}
}

func testRequest() Request {
	cfg := DefaultConfig()
	cfg.MoonMinDist = 30
	cfg.MoonMaxLight = 0.6
	return Request{
		Site:   testSite,
		Target: Target{Name: "GRB1", RADeg: 120, DecDeg: -30},
		Start:  h(0),
		Stop:   h(72),
		Config: cfg,
	}
}
