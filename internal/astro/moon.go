package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
)

const (
	earthRadiusKm = 6378.14
	auKm          = 149597870.7
)

// MoonPosition returns the apparent geocentric equatorial position of the
// Moon with its distance in kilometres (Meeus ch. 47).
func MoonPosition(t time.Time) SkyCoord {
	jde := julianDate(t)
	lon, lat, dist := moonposition.Position(jde)
	dPsi, dEps := nutation.Nutation(jde)

	eps := nutation.MeanObliquity(jde).Rad() + dEps.Rad()
	l := lon.Rad() + dPsi.Rad()
	b := lat.Rad()

	ra := math.Atan2(math.Sin(l)*math.Cos(eps)-math.Tan(b)*math.Sin(eps), math.Cos(l))
	dec := math.Asin(clamp(math.Sin(b)*math.Cos(eps) + math.Cos(b)*math.Sin(eps)*math.Sin(l)))

	return SkyCoord{
		RAdeg:   normalizeAngle360(radToDeg(ra)),
		DecDeg:  radToDeg(dec),
		RangeKm: dist,
	}
}

// MoonTopocentric returns the Moon as seen from site: equatorial position
// corrected for parallax (Meeus ch. 40) and the matching Az/El.
func MoonTopocentric(site Site, t time.Time) SkyCoord {
	geo := MoonPosition(t)
	rhoSin, rhoCos := site.parallaxConstants()

	sinPi := earthRadiusKm / geo.RangeKm
	ha := hourAngle(geo.RAdeg, site.LonDeg, t)
	dec := degToRad(geo.DecDeg)

	den := math.Cos(dec) - rhoCos*sinPi*math.Cos(ha)
	dRA := math.Atan2(-rhoCos*sinPi*math.Sin(ha), den)
	topoDec := math.Atan2((math.Sin(dec)-rhoSin*sinPi)*math.Cos(dRA), den)

	topo := SkyCoord{
		RAdeg:   normalizeAngle360(geo.RAdeg + radToDeg(dRA)),
		DecDeg:  radToDeg(topoDec),
		RangeKm: geo.RangeKm,
	}
	return EquatorialToHorizontal(topo, site, t)
}

// MoonAltitude returns the topocentric altitude of the Moon in degrees.
func MoonAltitude(site Site, t time.Time) float64 {
	return MoonTopocentric(site, t).ElDeg
}

// MoonIllumination returns the illuminated fraction of the lunar disk in
// [0, 1] (Meeus ch. 48, from the geocentric Sun-Moon elongation).
func MoonIllumination(t time.Time) float64 {
	moon := MoonPosition(t)
	sunRA, sunDec := SunPosition(t)

	psi := degToRad(AngularSeparation(sunRA, sunDec, moon.RAdeg, moon.DecDeg))
	phase := math.Atan2(auKm*math.Sin(psi), moon.RangeKm-auKm*math.Cos(psi))
	return (1 + math.Cos(phase)) / 2
}

// MoonSeparation returns the angle in degrees between a fixed equatorial
// position and the Moon seen from site.
func MoonSeparation(raDeg, decDeg float64, site Site, t time.Time) float64 {
	moon := MoonTopocentric(site, t)
	return AngularSeparation(raDeg, decDeg, moon.RAdeg, moon.DecDeg)
}
