// Package gendaylit estimates the direct solar radiance used to source the
// sun disc in a Radiance scene, following the same irradiance-to-radiance
// conversion the Radiance gendaylit program performs when driven with
// measured direct-normal and diffuse-horizontal values.
package gendaylit

import (
	"fmt"
	"math"
)

const (
	// solarConstant is the mean extraterrestrial normal irradiance in W/m².
	solarConstant = 1361.0

	// sunSolidAngle is the solid angle in steradians of the 0.533 degree
	// solar disc: 2*pi*(1-cos(0.2665 degrees)).
	sunSolidAngle = 6.7967e-5
)

// SolarRadiance converts a measured direct-normal irradiance into the
// radiance of the solar disc for the given moment. altitudeDeg is the solar
// altitude in degrees, month/day/hour identify the sample (hour is local
// standard time, fractional), dnr and dhr are the direct-normal and
// diffuse-horizontal irradiance in W/m².
//
// The direct-normal value is capped at the extraterrestrial normal
// irradiance for the day, matching gendaylit's clamping of physically
// impossible inputs.
func SolarRadiance(altitudeDeg float64, month, day int, hour, dnr, dhr float64) (float64, error) {
	if altitudeDeg <= 0 {
		return 0, fmt.Errorf("solar altitude %.2f is not above the horizon", altitudeDeg)
	}
	if dnr < 0 {
		return 0, fmt.Errorf("direct normal irradiance %.1f is negative", dnr)
	}
	if dhr < 0 {
		return 0, fmt.Errorf("diffuse horizontal irradiance %.1f is negative", dhr)
	}
	if dnr == 0 {
		return 0, nil
	}

	// Extraterrestrial normal irradiance, corrected for Earth-Sun distance.
	n := dayOfYear(month, day)
	g0 := solarConstant * (1 + 0.033*math.Cos(2*math.Pi*float64(n-3)/365.0))
	if dnr > g0 {
		dnr = g0
	}

	return dnr / sunSolidAngle, nil
}

var cumulativeDays = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

func dayOfYear(month, day int) int {
	if month < 1 || month > 12 {
		return 1
	}
	return cumulativeDays[month-1] + day
}
