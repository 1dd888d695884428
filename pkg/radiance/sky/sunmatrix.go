// Package sky generates Radiance sky descriptions from annual weather data.
// The sun matrix (analemma) workflow emits one sun light source per sunlit
// hour plus the matrix of per-hour direct radiance contributions consumed by
// daylight-coefficient simulations.
package sky

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/radsky/radsky/pkg/sunpath"
	"github.com/radsky/radsky/pkg/wea"
)

// sunSolidAngleDeg is the angular diameter of the sun disc in degrees, the
// value Radiance uses for solar sources.
const sunSolidAngleDeg = 0.533

// SunModel is the astronomy and daylight-coefficient collaborator the
// generator delegates to. Production code composes pkg/sunpath and
// pkg/gendaylit; tests substitute deterministic stubs.
type SunModel interface {
	// Position returns the solar altitude in degrees and the unit direction
	// of travel of sunlight for a calendar moment in local standard time.
	Position(month, day int, hour float64) (altitudeDeg float64, dir r3.Vec)

	// Radiance returns the radiance of the solar disc for a sunlit moment
	// given measured direct-normal and diffuse-horizontal irradiance.
	Radiance(altitudeDeg float64, month, day int, hour, dnr, dhr float64) (float64, error)
}

// WeatherSeries is the read-only weather input the generator consumes.
// *wea.Wea satisfies it.
type WeatherSeries interface {
	Site() wea.Location
	DirectNormalAt(hoy int) (float64, error)
	DiffuseHorizontalAt(hoy int) (float64, error)
	Fingerprint() string
}

// Artifacts holds the three output paths of a sun matrix run.
type Artifacts struct {
	Analemma string // .ann: one light+source pair per sunlit hour
	SunList  string // .sun: one identifier per sunlit hour
	Matrix   string // .mtx: per-hour direct radiance contribution matrix
}

// SunMatrix generates the analemma, sun list and sun matrix files for a
// weather series. It is a value object: weather, north and hours are fixed
// at construction.
//
// Concurrent Execute calls against the same output directory are not safe:
// there is no locking or atomic rename, so a concurrent reader could observe
// a partially written matrix. Callers parallelizing batch runs must give
// each generator its own output directory.
type SunMatrix struct {
	weather WeatherSeries
	model   SunModel
	north   float64
	hoys    []int
	logger  *zap.SugaredLogger
}

// NewSunMatrix creates a generator. A NaN north normalizes to 0; nil or
// empty hoys defaults to every hour of a non-leap year. The hour slice is
// copied.
func NewSunMatrix(weather WeatherSeries, model SunModel, north float64, hoys []int, logger *zap.SugaredLogger) *SunMatrix {
	if math.IsNaN(north) {
		north = 0
	}
	if len(hoys) == 0 {
		hoys = sunpath.AllHours()
	} else {
		hoys = append([]int(nil), hoys...)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SunMatrix{
		weather: weather,
		model:   model,
		north:   north,
		hoys:    hoys,
		logger:  logger,
	}
}

// Name returns the deterministic base name all artifacts derive from.
func (m *SunMatrix) Name() string {
	site := m.weather.Site()
	return fmt.Sprintf("sunmtx_r%s_%s_%s_%s",
		site.StationID,
		formatFloat(site.Latitude),
		formatFloat(site.Longitude),
		formatFloat(m.north))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// signature renders the cache fingerprint persisted in the .hrs file. It
// covers the weather identity and north angle as well as the literal hour
// sequence, so two requests differing in any of the three never share
// artifacts.
func (m *SunMatrix) signature() string {
	hours := make([]string, len(m.hoys))
	for i, h := range m.hoys {
		hours[i] = strconv.Itoa(h)
	}
	return fmt.Sprintf("wea=%s;north=%s;hours=%s\n",
		m.weather.Fingerprint(), formatFloat(m.north), strings.Join(hours, ","))
}

// sunEntry is one surviving (sunlit) hour.
type sunEntry struct {
	pos      int // position within the requested hour sequence
	radiance int
	dir      r3.Vec
}

// Execute generates the sun matrix into outputDir. When reuse is true and
// the persisted signature matches this request with all three outputs
// present, the existing artifacts are returned without any computation.
func (m *SunMatrix) Execute(outputDir string, reuse bool) (Artifacts, error) {
	name := m.Name()
	arts := Artifacts{
		Analemma: filepath.Join(outputDir, name+".ann"),
		SunList:  filepath.Join(outputDir, name+".sun"),
		Matrix:   filepath.Join(outputDir, name+".mtx"),
	}
	hrsFile := filepath.Join(outputDir, name+".hrs")

	if reuse && m.signatureMatches(hrsFile) && allExist(arts.Analemma, arts.SunList, arts.Matrix) {
		m.logger.Infow("reusing sun matrix", "matrix", arts.Matrix)
		return arts, nil
	}

	entries, err := m.collectSunUpHours()
	if err != nil {
		return Artifacts{}, err
	}
	m.logger.Infow("calculated sun positions and radiation values",
		"requested_hours", len(m.hoys), "sun_up_hours", len(entries))

	if err := m.writeAnalemma(arts.Analemma, entries); err != nil {
		return Artifacts{}, err
	}
	if err := m.writeSunList(arts.SunList, entries); err != nil {
		return Artifacts{}, err
	}
	if err := m.writeMatrix(arts.Matrix, entries); err != nil {
		return Artifacts{}, err
	}

	// The signature is written only after all three outputs are flushed, so
	// an interrupted run can never leave a matching signature over stale
	// artifacts.
	if err := os.WriteFile(hrsFile, []byte(m.signature()), 0o644); err != nil {
		return Artifacts{}, fmt.Errorf("writing hours signature: %w", err)
	}

	return arts, nil
}

// signatureMatches reports whether the persisted signature file is
// byte-for-byte equal to this request's signature. It reads one small file
// and does no computation beyond a string compare.
func (m *SunMatrix) signatureMatches(hrsFile string) bool {
	data, err := os.ReadFile(hrsFile)
	if err != nil {
		return false
	}
	return string(data) == m.signature()
}

func allExist(paths ...string) bool {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

// collectSunUpHours scans the requested hours in order, filtering out hours
// with zero direct-normal radiation or the sun below the horizon. Surviving
// hours get dense 1-based identifiers in request order.
func (m *SunMatrix) collectSunUpHours() ([]sunEntry, error) {
	entries := make([]sunEntry, 0, len(m.hoys))
	for pos, hoy := range m.hoys {
		month, day, wholeHour, err := sunpath.CalendarForHOY(hoy)
		if err != nil {
			return nil, err
		}
		hour := float64(wholeHour) + 0.5 // sample mid-hour

		dnr, err := m.weather.DirectNormalAt(hoy)
		if err != nil {
			return nil, fmt.Errorf("hour %d: %w", hoy, err)
		}
		dhr, err := m.weather.DiffuseHorizontalAt(hoy)
		if err != nil {
			return nil, fmt.Errorf("hour %d: %w", hoy, err)
		}
		if dnr == 0 {
			continue
		}

		altitude, dir := m.model.Position(month, day, hour)
		if altitude < 0 {
			continue
		}

		radiance, err := m.model.Radiance(altitude, month, day, hour, dnr, dhr)
		if err != nil {
			return nil, fmt.Errorf("solar radiance for hour %d: %w", hoy, err)
		}

		entries = append(entries, sunEntry{
			pos:      pos,
			radiance: int(radiance),
			dir:      r3.Scale(-1, dir),
		})
	}
	return entries, nil
}

// writeAnalemma emits one light+source pair per sunlit hour. The identifier
// index is the dense 1-based counter, not the hour of year.
func (m *SunMatrix) writeAnalemma(path string, entries []sunEntry) error {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "void light solar%d 0 0 3 %d %d %d solar%d source sun 0 0 4 %.6f %.6f %.6f %v\n",
			i+1, e.radiance, e.radiance, e.radiance, i+1,
			e.dir.X, e.dir.Y, e.dir.Z, sunSolidAngleDeg)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing analemma: %w", err)
	}
	return nil
}

func (m *SunMatrix) writeSunList(path string, entries []sunEntry) error {
	var b strings.Builder
	for i := range entries {
		fmt.Fprintf(&b, "solar%d\n", i+1)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing sun list: %w", err)
	}
	return nil
}

// writeMatrix emits the radiance contribution matrix: NROWS sunlit hours by
// NCOLS requested hours, each row zero except at the row's original position
// within the requested sequence.
func (m *SunMatrix) writeMatrix(path string, entries []sunEntry) error {
	site := m.weather.Site()

	var b strings.Builder
	b.WriteString("#?RADIANCE\n")
	b.WriteString("Sun matrix created by radsky\n")
	fmt.Fprintf(&b, "LATLONG= %s %s\n", formatFloat(site.Latitude), formatFloat(site.Longitude))
	fmt.Fprintf(&b, "NROWS=%d\n", len(entries))
	fmt.Fprintf(&b, "NCOLS=%d\n", len(m.hoys))
	b.WriteString("NCOMP=3\n")
	b.WriteString("FORMAT=ascii\n")
	b.WriteString("\n")

	for _, e := range entries {
		for pos := range m.hoys {
			if pos == e.pos {
				fmt.Fprintf(&b, "%d %d %d\n", e.radiance, e.radiance, e.radiance)
			} else {
				b.WriteString("0 0 0\n")
			}
		}
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing sun matrix: %w", err)
	}
	return nil
}
