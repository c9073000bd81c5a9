// Package astro provides astronomical coordinate transformations and sky math.
package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (site-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)

	// Distance (optional, for solar-system bodies)
	RangeKm float64
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/El) for a given site and time.
//
// The function preserves the input RA/Dec values and populates Az/El.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
//
// No refraction is applied.
func EquatorialToHorizontal(eq SkyCoord, site Site, t time.Time) SkyCoord {
	lat := degToRad(site.LatDeg)
	dec := degToRad(eq.DecDeg)
	ha := hourAngle(eq.RAdeg, site.LonDeg, t)

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clamp(sinAlt))

	// Azimuth measured from north through east
	az := math.Atan2(-math.Cos(dec)*math.Sin(ha),
		math.Sin(dec)*math.Cos(lat)-math.Cos(dec)*math.Sin(lat)*math.Cos(ha))

	return SkyCoord{
		RAdeg:   eq.RAdeg,
		DecDeg:  eq.DecDeg,
		AzDeg:   normalizeAngle360(radToDeg(az)),
		ElDeg:   radToDeg(alt),
		RangeKm: eq.RangeKm,
	}
}

// Altitude returns the geometric altitude in degrees of a fixed equatorial
// position seen from site at t.
func Altitude(raDeg, decDeg float64, site Site, t time.Time) float64 {
	return EquatorialToHorizontal(SkyCoord{RAdeg: raDeg, DecDeg: decDeg}, site, t).ElDeg
}

// LocalSiderealTime returns the apparent local sidereal time in degrees
// (0-360) for a UTC time and east-positive longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	gast := radToDeg(sidereal.Apparent(julianDate(t)).Rad())
	return normalizeAngle360(gast + lonDeg)
}

// hourAngle returns LST - RA in radians.
func hourAngle(raDeg, lonDeg float64, t time.Time) float64 {
	return degToRad(LocalSiderealTime(t, lonDeg) - raDeg)
}

// julianDate returns the Julian Date of t (UTC).
func julianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
