// Package sunpath computes solar positions for building daylight work.
// Positions are derived from the NOAA solar geometry formulas on a Julian
// day timebase. Accuracy is within a few hundredths of a degree, far inside
// what sun-disc placement for a lighting simulation needs.
package sunpath

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/spatial/r3"
)

// referenceYear anchors hour-of-year sampling. Any non-leap year works; the
// solar geometry repeats closely enough year to year for daylight purposes.
const referenceYear = 2017

// Sun is the computed solar position for a single moment.
type Sun struct {
	AltitudeDeg float64 // degrees above the horizon, negative when the sun is down
	AzimuthDeg  float64 // degrees clockwise from scene north
}

// Vector returns the unit direction of travel of sunlight: from the sun into
// the scene, in Radiance scene coordinates (x east, y north, z up). Z is
// negative whenever the sun is above the horizon.
func (s Sun) Vector() r3.Vec {
	alt := unit.AngleFromDeg(s.AltitudeDeg).Rad()
	az := unit.AngleFromDeg(s.AzimuthDeg).Rad()
	return r3.Vec{
		X: -math.Sin(az) * math.Cos(alt),
		Y: -math.Cos(az) * math.Cos(alt),
		Z: -math.Sin(alt),
	}
}

// Sunpath computes solar positions for a fixed site.
type Sunpath struct {
	latitude  float64
	longitude float64 // east positive
	timezone  float64 // hours offset from UTC
	northDeg  float64
}

// New creates a sun path for a site. Latitude and longitude are in degrees
// with east-positive longitude, timezone is the site's offset from UTC in
// hours, and northDeg is the angle between true north and scene +Y measured
// clockwise in degrees (0 leaves the scene aligned with true north).
func New(latitude, longitude, timezone, northDeg float64) *Sunpath {
	return &Sunpath{
		latitude:  latitude,
		longitude: longitude,
		timezone:  timezone,
		northDeg:  northDeg,
	}
}

func fixAngle(a float64) float64 { return a - 360.0*math.Floor(a/360.0) }

// clamp1 keeps trig arguments inside acos/asin domain against rounding.
func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Position computes the solar position for a local standard time given as a
// 1-based calendar month and day plus a fractional hour (10.5 samples the
// middle of the 10:00 hour).
func (sp *Sunpath) Position(month, day int, hour float64) Sun {
	// Local standard time to UTC on the reference year's timebase.
	t := time.Date(referenceYear, time.Month(month), day, 0, 0, 0, 0, time.UTC).
		Add(time.Duration((hour - sp.timezone) * float64(time.Hour)))

	jd := julian.TimeToJD(t)
	T := (jd - 2451545.0) / 36525.0

	// Solar coordinates (degrees unless noted).
	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032)) // mean longitude
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))  // mean anomaly
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)       // orbital eccentricity
	C := math.Sin(unit.AngleFromDeg(M).Rad())*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(unit.AngleFromDeg(2*M).Rad())*(0.019993-T*0.000101) +
		math.Sin(unit.AngleFromDeg(3*M).Rad())*0.000289
	sunLong := L0 + C
	omega := 125.04 - 1934.136*T
	lambda := sunLong - 0.00569 - 0.00478*math.Sin(unit.AngleFromDeg(omega).Rad())
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	declRad := math.Asin(clamp1(math.Sin(unit.AngleFromDeg(eps0).Rad()) * math.Sin(unit.AngleFromDeg(lambda).Rad())))

	// Equation of time in minutes.
	y := math.Tan(unit.AngleFromDeg(eps0).Rad()/2) * math.Tan(unit.AngleFromDeg(eps0).Rad()/2)
	eqTimeMin := unit.Angle(y*math.Sin(unit.AngleFromDeg(2*L0).Rad())-
		2*e*math.Sin(unit.AngleFromDeg(M).Rad())+
		4*e*y*math.Sin(unit.AngleFromDeg(M).Rad())*math.Cos(unit.AngleFromDeg(2*L0).Rad())-
		0.5*y*y*math.Sin(unit.AngleFromDeg(4*L0).Rad())-
		1.25*e*e*math.Sin(unit.AngleFromDeg(2*M).Rad())).Deg() * 4

	// Hour angle from true solar time.
	utcMin := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0
	tst := utcMin + 4*sp.longitude + eqTimeMin
	haRad := unit.AngleFromDeg(tst/4 - 180).Rad()

	latRad := unit.AngleFromDeg(sp.latitude).Rad()
	cosZen := clamp1(math.Sin(latRad)*math.Sin(declRad) + math.Cos(latRad)*math.Cos(declRad)*math.Cos(haRad))
	zenRad := math.Acos(cosZen)
	altDeg := 90 - unit.Angle(zenRad).Deg()

	// Azimuth measured clockwise from true north.
	var azDeg float64
	azDen := math.Cos(latRad) * math.Sin(zenRad)
	if azDen != 0 {
		azDeg = unit.Angle(math.Acos(clamp1((math.Sin(declRad) - math.Sin(latRad)*cosZen) / azDen))).Deg()
		if haRad > 0 {
			azDeg = 360 - azDeg
		}
	}

	return Sun{
		AltitudeDeg: altDeg,
		AzimuthDeg:  fixAngle(azDeg - sp.northDeg),
	}
}
