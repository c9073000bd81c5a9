package astro

import (
	"math"
	"testing"
	"time"
)

func TestMoonIllumination(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		min, max float64
	}{
		{"new moon 2024-01-11", time.Date(2024, 1, 11, 11, 57, 0, 0, time.UTC), 0, 0.01},
		{"full moon 2024-01-25", time.Date(2024, 1, 25, 17, 54, 0, 0, time.UTC), 0.99, 1},
		{"first quarter 2024-01-18", time.Date(2024, 1, 18, 3, 53, 0, 0, time.UTC), 0.45, 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoonIllumination(tt.time)
			if got < tt.min || got > tt.max {
				t.Errorf("MoonIllumination() = %.4f, want in [%.2f, %.2f]", got, tt.min, tt.max)
			}
		})
	}
}

func TestMoonPositionDistance(t *testing.T) {
	for day := 0; day < 30; day += 3 {
		tm := time.Date(2024, 2, 1+day, 0, 0, 0, 0, time.UTC)
		m := MoonPosition(tm)
		if m.RangeKm < 356000 || m.RangeKm > 407000 {
			t.Errorf("%s: RangeKm = %.0f, want lunar distance", tm.Format(time.DateOnly), m.RangeKm)
		}
		if math.Abs(m.DecDeg) > 29 {
			t.Errorf("%s: DecDeg = %.2f, beyond the lunar standstill limit", tm.Format(time.DateOnly), m.DecDeg)
		}
	}
}

func TestMoonParallaxLowersAltitude(t *testing.T) {
	site := SiteFromGeodetic("hess", -23.271667, 16.5, 1800)

	for h := 0; h < 24; h += 2 {
		tm := time.Date(2024, 3, 1, h, 0, 0, 0, time.UTC)
		geo := MoonPosition(tm)
		geoAlt := Altitude(geo.RAdeg, geo.DecDeg, site, tm)
		topoAlt := MoonAltitude(site, tm)

		diff := geoAlt - topoAlt
		// Horizontal parallax is under 1.02°; it vanishes at the zenith.
		if diff < -1e-6 || diff > 1.05 {
			t.Errorf("hour %d: geocentric - topocentric altitude = %.4f°, want in [0, 1.05]", h, diff)
		}
	}
}

func TestMoonSeparationOfMoonItself(t *testing.T) {
	site := SiteFromGeodetic("lapalma", 28.76, -17.88, 2200)
	tm := time.Date(2024, 5, 5, 2, 0, 0, 0, time.UTC)

	m := MoonTopocentric(site, tm)
	if sep := MoonSeparation(m.RAdeg, m.DecDeg, site, tm); sep > 1e-6 {
		t.Errorf("MoonSeparation() of the Moon's own position = %v°, want 0", sep)
	}

	// A geocentric target is offset by at most the horizontal parallax.
	geo := MoonPosition(tm)
	if sep := MoonSeparation(geo.RAdeg, geo.DecDeg, site, tm); sep > 1.05 {
		t.Errorf("MoonSeparation() of the geocentric position = %v°, want <= 1.05", sep)
	}
}
