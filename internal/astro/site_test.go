package astro

import (
	"errors"
	"math"
	"testing"
)

func TestSiteFromGeocentric(t *testing.T) {
	tests := []struct {
		name            string
		x, y, z         float64
		wantLat, wantLon float64
		minH, maxH      float64
	}{
		{
			name:    "La Palma",
			x:       5327448.9957829,
			y:       -1718665.73869569,
			z:       3051566.90295403,
			wantLat: 28.76, wantLon: -17.88,
			minH: 1500, maxH: 3000,
		},
		{
			name:    "Paranal",
			x:       1946404.34103884,
			y:       -5467644.29079852,
			z:       -2642728.20144425,
			wantLat: -24.63, wantLon: -70.40,
			minH: 1500, maxH: 3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SiteFromGeocentric(tt.name, tt.x, tt.y, tt.z)
			if math.Abs(s.LatDeg-tt.wantLat) > 0.05 {
				t.Errorf("LatDeg = %.4f, want ~%.2f", s.LatDeg, tt.wantLat)
			}
			if math.Abs(s.LonDeg-tt.wantLon) > 0.05 {
				t.Errorf("LonDeg = %.4f, want ~%.2f", s.LonDeg, tt.wantLon)
			}
			if s.HeightM < tt.minH || s.HeightM > tt.maxH {
				t.Errorf("HeightM = %.1f, want in [%.0f, %.0f]", s.HeightM, tt.minH, tt.maxH)
			}
		})
	}
}

func TestSiteGeocentricRoundTrip(t *testing.T) {
	sites := []Site{
		SiteFromGeodetic("hess", -23.271667, 16.5, 1800),
		SiteFromGeodetic("pole", 89.5, 0, 2800),
		SiteFromGeodetic("sea", 0, -120, 0),
	}

	for _, want := range sites {
		x, y, z := want.Geocentric()
		got := SiteFromGeocentric(want.Name, x, y, z)

		if math.Abs(got.LatDeg-want.LatDeg) > 1e-7 {
			t.Errorf("%s: LatDeg = %v, want %v", want.Name, got.LatDeg, want.LatDeg)
		}
		if math.Abs(got.LonDeg-want.LonDeg) > 1e-7 {
			t.Errorf("%s: LonDeg = %v, want %v", want.Name, got.LonDeg, want.LonDeg)
		}
		if math.Abs(got.HeightM-want.HeightM) > 1e-3 {
			t.Errorf("%s: HeightM = %v, want %v", want.Name, got.HeightM, want.HeightM)
		}
	}
}

func TestSiteValidate(t *testing.T) {
	tests := []struct {
		name    string
		site    Site
		wantErr bool
	}{
		{"valid", Site{Name: "ok", LatDeg: 28.7, LonDeg: -17.9, HeightM: 2200}, false},
		{"latitude too high", Site{Name: "bad", LatDeg: 91}, true},
		{"nan", Site{Name: "nan", LatDeg: math.NaN()}, true},
		{"inf height", Site{Name: "inf", HeightM: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.site.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidSite) {
				t.Errorf("Validate() = %v, want ErrInvalidSite", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestParallaxConstants(t *testing.T) {
	s := SiteFromGeodetic("equator", 0, 0, 0)
	rhoSin, rhoCos := s.parallaxConstants()
	if math.Abs(rhoSin) > 1e-12 || math.Abs(rhoCos-1) > 1e-12 {
		t.Errorf("parallaxConstants() at equator = (%v, %v), want (0, 1)", rhoSin, rhoCos)
	}
}
