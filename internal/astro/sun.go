package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/solar"
)

// Standard solar altitudes in degrees.
const (
	AstronomicalTwilight = -18.0
	NauticalTwilight     = -12.0
	CivilTwilight        = -6.0
)

// SunPosition returns the apparent geocentric equatorial coordinates of the
// Sun in degrees (Meeus ch. 25, low accuracy).
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	ra, dec := solar.ApparentEquatorial(julianDate(t))
	return normalizeAngle360(radToDeg(ra.Rad())), radToDeg(dec.Rad())
}

// SunAltitude returns the altitude of the Sun in degrees seen from site at t.
func SunAltitude(site Site, t time.Time) float64 {
	ra, dec := SunPosition(t)
	return Altitude(ra, dec, site, t)
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := degToRad(ra1)
	dec1Rad := degToRad(dec1)
	ra2Rad := degToRad(ra2)
	dec2Rad := degToRad(dec2)

	// Haversine formula for angular separation
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	if a > 1 {
		a = 1
	}

	return radToDeg(2 * math.Asin(math.Sqrt(a)))
}

// normalizeAngle360 normalizes an angle to 0-360 degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
