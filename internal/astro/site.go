package astro

import (
	"errors"
	"fmt"
	"math"
)

// WGS84 ellipsoid.
const (
	wgs84A  = 6378137.0
	wgs84F  = 1 / 298.257223563
	wgs84B  = wgs84A * (1 - wgs84F)
	wgs84E2 = wgs84F * (2 - wgs84F)
)

// ErrInvalidSite is returned for sites with out-of-range or non-finite
// coordinates.
var ErrInvalidSite = errors.New("invalid site")

// Site is a ground observatory location (geodetic, WGS84).
type Site struct {
	Name    string
	LatDeg  float64 // north positive
	LonDeg  float64 // east positive
	HeightM float64 // above the ellipsoid
}

// SiteFromGeodetic builds a site from latitude, longitude (degrees) and height (m).
func SiteFromGeodetic(name string, latDeg, lonDeg, heightM float64) Site {
	return Site{Name: name, LatDeg: latDeg, LonDeg: lonDeg, HeightM: heightM}
}

// SiteFromGeocentric converts Earth-centred Cartesian coordinates in metres
// to a geodetic site.
func SiteFromGeocentric(name string, x, y, z float64) Site {
	lon := math.Atan2(y, x)
	p := math.Hypot(x, y)

	lat := math.Atan2(z, p*(1-wgs84E2))
	var h float64
	for i := 0; i < 10; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		h = p/math.Cos(lat) - n
		next := math.Atan2(z, p*(1-wgs84E2*n/(n+h)))
		if math.Abs(next-lat) < 1e-13 {
			lat = next
			break
		}
		lat = next
	}

	return Site{
		Name:    name,
		LatDeg:  radToDeg(lat),
		LonDeg:  radToDeg(lon),
		HeightM: h,
	}
}

// Geocentric returns the Earth-centred Cartesian coordinates in metres.
func (s Site) Geocentric() (x, y, z float64) {
	lat := degToRad(s.LatDeg)
	lon := degToRad(s.LonDeg)
	sinLat := math.Sin(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	x = (n + s.HeightM) * math.Cos(lat) * math.Cos(lon)
	y = (n + s.HeightM) * math.Cos(lat) * math.Sin(lon)
	z = (n*(1-wgs84E2) + s.HeightM) * sinLat
	return x, y, z
}

// parallaxConstants returns ρ·sin φ' and ρ·cos φ', the site position in
// units of the equatorial radius.
func (s Site) parallaxConstants() (rhoSin, rhoCos float64) {
	lat := degToRad(s.LatDeg)
	u := math.Atan(wgs84B / wgs84A * math.Tan(lat))
	hr := s.HeightM / wgs84A
	rhoSin = wgs84B/wgs84A*math.Sin(u) + hr*math.Sin(lat)
	rhoCos = math.Cos(u) + hr*math.Cos(lat)
	return rhoSin, rhoCos
}

// Validate checks that the coordinates are finite and in range.
func (s Site) Validate() error {
	for _, v := range []float64{s.LatDeg, s.LonDeg, s.HeightM} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %q has non-finite coordinates", ErrInvalidSite, s.Name)
		}
	}
	if s.LatDeg < -90 || s.LatDeg > 90 {
		return fmt.Errorf("%w: %q latitude %.4f out of range", ErrInvalidSite, s.Name, s.LatDeg)
	}
	if s.LonDeg < -360 || s.LonDeg > 360 {
		return fmt.Errorf("%w: %q longitude %.4f out of range", ErrInvalidSite, s.Name, s.LonDeg)
	}
	return nil
}

func (s Site) String() string {
	return fmt.Sprintf("%s (%.4f°, %.4f°, %.0f m)", s.Name, s.LatDeg, s.LonDeg, s.HeightM)
}
