// Package wea holds annual weather series data for daylight simulation:
// a site location plus hourly direct-normal and diffuse-horizontal solar
// radiation read from an EnergyPlus EPW file.
package wea

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// HoursPerYear is the number of hourly records a weather series carries.
const HoursPerYear = 8760

// Location describes the weather station site.
type Location struct {
	StationID string  `json:"station_id" msgpack:"station_id"`
	City      string  `json:"city" msgpack:"city"`
	Country   string  `json:"country" msgpack:"country"`
	Latitude  float64 `json:"latitude" msgpack:"latitude"`
	Longitude float64 `json:"longitude" msgpack:"longitude"` // east positive
	TimeZone  float64 `json:"timezone" msgpack:"timezone"`   // hours offset from UTC
	Elevation float64 `json:"elevation" msgpack:"elevation"` // meters
}

// Wea is an annual weather series: one direct-normal and one
// diffuse-horizontal radiation value (W/m²) per hour of a non-leap year.
type Wea struct {
	Location          Location  `msgpack:"location"`
	DirectNormal      []float64 `msgpack:"direct_normal"`
	DiffuseHorizontal []float64 `msgpack:"diffuse_horizontal"`
}

// Site returns the weather station location.
func (w *Wea) Site() Location { return w.Location }

// DirectNormalAt returns the direct-normal radiation for an hour-of-year index.
func (w *Wea) DirectNormalAt(hoy int) (float64, error) {
	if hoy < 0 || hoy >= len(w.DirectNormal) {
		return 0, fmt.Errorf("hour of year %d out of range [0, %d)", hoy, len(w.DirectNormal))
	}
	return w.DirectNormal[hoy], nil
}

// DiffuseHorizontalAt returns the diffuse-horizontal radiation for an
// hour-of-year index.
func (w *Wea) DiffuseHorizontalAt(hoy int) (float64, error) {
	if hoy < 0 || hoy >= len(w.DiffuseHorizontal) {
		return 0, fmt.Errorf("hour of year %d out of range [0, %d)", hoy, len(w.DiffuseHorizontal))
	}
	return w.DiffuseHorizontal[hoy], nil
}

// Fingerprint returns a stable textual identity for the series, used as part
// of cache keys. It hashes the station identity and the radiation data, so
// two weather files sharing a station and coordinates but carrying different
// measurements never fingerprint alike.
func (w *Wea) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(w.Location.StationID))
	binary.Write(h, binary.LittleEndian, w.Location.Latitude)
	binary.Write(h, binary.LittleEndian, w.Location.Longitude)
	binary.Write(h, binary.LittleEndian, w.DirectNormal)
	binary.Write(h, binary.LittleEndian, w.DiffuseHorizontal)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
