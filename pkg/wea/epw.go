package wea

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// EPW column layout, per the EnergyPlus weather file specification.
const (
	epwHeaderLines = 8 // LOCATION through DATA PERIODS

	// LOCATION header fields.
	epwLocCity      = 1
	epwLocCountry   = 3
	epwLocStationID = 5
	epwLocLatitude  = 6
	epwLocLongitude = 7
	epwLocTimeZone  = 8
	epwLocElevation = 9

	// Data row fields.
	epwColDirectNormal      = 14
	epwColDiffuseHorizontal = 15
)

// ReadEPW parses an EnergyPlus EPW weather file. The file must carry a full
// non-leap year of hourly records.
func ReadEPW(path string) (*Wea, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening EPW file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading EPW LOCATION header: %w", err)
	}
	loc, err := parseLocation(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Skip the remaining header lines.
	for i := 1; i < epwHeaderLines; i++ {
		if _, err := r.Read(); err != nil {
			return nil, fmt.Errorf("reading EPW header line %d: %w", i+1, err)
		}
	}

	w := &Wea{
		Location:          loc,
		DirectNormal:      make([]float64, 0, HoursPerYear),
		DiffuseHorizontal: make([]float64, 0, HoursPerYear),
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading EPW data row %d: %w", len(w.DirectNormal)+1, err)
		}
		if len(row) <= epwColDiffuseHorizontal {
			return nil, fmt.Errorf("EPW data row %d has %d fields, want at least %d",
				len(w.DirectNormal)+1, len(row), epwColDiffuseHorizontal+1)
		}
		dnr, err := strconv.ParseFloat(row[epwColDirectNormal], 64)
		if err != nil {
			return nil, fmt.Errorf("EPW data row %d: bad direct normal radiation %q: %w",
				len(w.DirectNormal)+1, row[epwColDirectNormal], err)
		}
		dhr, err := strconv.ParseFloat(row[epwColDiffuseHorizontal], 64)
		if err != nil {
			return nil, fmt.Errorf("EPW data row %d: bad diffuse horizontal radiation %q: %w",
				len(w.DiffuseHorizontal)+1, row[epwColDiffuseHorizontal], err)
		}
		w.DirectNormal = append(w.DirectNormal, dnr)
		w.DiffuseHorizontal = append(w.DiffuseHorizontal, dhr)
	}

	if len(w.DirectNormal) != HoursPerYear {
		return nil, fmt.Errorf("EPW file has %d hourly records, want %d", len(w.DirectNormal), HoursPerYear)
	}
	return w, nil
}

func parseLocation(header []string) (Location, error) {
	if len(header) <= epwLocElevation || header[0] != "LOCATION" {
		return Location{}, fmt.Errorf("malformed LOCATION header (%d fields)", len(header))
	}
	lat, err := strconv.ParseFloat(header[epwLocLatitude], 64)
	if err != nil {
		return Location{}, fmt.Errorf("bad latitude %q: %w", header[epwLocLatitude], err)
	}
	lon, err := strconv.ParseFloat(header[epwLocLongitude], 64)
	if err != nil {
		return Location{}, fmt.Errorf("bad longitude %q: %w", header[epwLocLongitude], err)
	}
	tz, err := strconv.ParseFloat(header[epwLocTimeZone], 64)
	if err != nil {
		return Location{}, fmt.Errorf("bad timezone %q: %w", header[epwLocTimeZone], err)
	}
	elev, err := strconv.ParseFloat(header[epwLocElevation], 64)
	if err != nil {
		return Location{}, fmt.Errorf("bad elevation %q: %w", header[epwLocElevation], err)
	}
	return Location{
		StationID: header[epwLocStationID],
		City:      header[epwLocCity],
		Country:   header[epwLocCountry],
		Latitude:  lat,
		Longitude: lon,
		TimeZone:  tz,
		Elevation: elev,
	}, nil
}
