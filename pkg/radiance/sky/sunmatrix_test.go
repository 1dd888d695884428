package sky

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/radsky/radsky/pkg/wea"
)

// stubWeather is a WeatherSeries with per-hour values set directly.
type stubWeather struct {
	site        wea.Location
	dnr         map[int]float64
	dhr         map[int]float64
	fingerprint string
}

func (s *stubWeather) Site() wea.Location { return s.site }

func (s *stubWeather) DirectNormalAt(hoy int) (float64, error) { return s.dnr[hoy], nil }

func (s *stubWeather) DiffuseHorizontalAt(hoy int) (float64, error) { return s.dhr[hoy], nil }

func (s *stubWeather) Fingerprint() string { return s.fingerprint }

// stubModel returns canned altitudes keyed by the sampled fractional hour
// and a fixed radiance, counting calls so tests can prove the cache-hit path
// performs no computation.
type stubModel struct {
	altitudeByHour map[float64]float64
	radiance       float64
	positionCalls  int
	radianceCalls  int
}

func (s *stubModel) Position(month, day int, hour float64) (float64, r3.Vec) {
	s.positionCalls++
	// Sunlight heading mostly downward, slightly north-east.
	return s.altitudeByHour[hour], r3.Vec{X: -0.1, Y: -0.2, Z: -0.974679}
}

func (s *stubModel) Radiance(altitudeDeg float64, month, day int, hour, dnr, dhr float64) (float64, error) {
	s.radianceCalls++
	return s.radiance, nil
}

func testSite() wea.Location {
	return wea.Location{StationID: "724940", Latitude: 37.62, Longitude: -122.4, TimeZone: -8}
}

// scenarioMatrix requests three hours where hour 2 has no direct radiation,
// hour 5 is sunlit and hour 9 has the sun below the horizon, so exactly one
// hour survives filtering.
func scenarioMatrix() (*SunMatrix, *stubModel) {
	weather := &stubWeather{
		site:        testSite(),
		dnr:         map[int]float64{2: 0, 5: 500, 9: 300},
		dhr:         map[int]float64{2: 0, 5: 100, 9: 80},
		fingerprint: "weather-a",
	}
	model := &stubModel{
		altitudeByHour: map[float64]float64{2.5: -40, 5.5: 25, 9.5: -10},
		radiance:       7356594,
	}
	return NewSunMatrix(weather, model, 0, []int{2, 5, 9}, nil), model
}

func TestExecuteScenario(t *testing.T) {
	dir := t.TempDir()
	m, model := scenarioMatrix()

	arts, err := m.Execute(dir, true)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Only the dnr>0 hours reach the position check; only the sunlit one is
	// priced.
	if model.positionCalls != 2 {
		t.Errorf("position calls = %d, want 2 (hour with dnr=0 skipped first)", model.positionCalls)
	}
	if model.radianceCalls != 1 {
		t.Errorf("radiance calls = %d, want 1", model.radianceCalls)
	}

	sunList := readFile(t, arts.SunList)
	if sunList != "solar1\n" {
		t.Errorf("sun list = %q, want exactly solar1", sunList)
	}

	ann := readFile(t, arts.Analemma)
	annLines := strings.Split(strings.TrimRight(ann, "\n"), "\n")
	if len(annLines) != 1 {
		t.Fatalf("analemma has %d lines, want 1:\n%s", len(annLines), ann)
	}
	want := "void light solar1 0 0 3 7356594 7356594 7356594 solar1 source sun 0 0 4 0.100000 0.200000 0.974679 0.533"
	if annLines[0] != want {
		t.Errorf("analemma line:\n got %q\nwant %q", annLines[0], want)
	}

	header, rows := parseMatrix(t, arts.Matrix)
	if header["NROWS"] != "1" || header["NCOLS"] != "3" || header["NCOMP"] != "3" {
		t.Errorf("header = %v, want NROWS=1 NCOLS=3 NCOMP=3", header)
	}
	if header["FORMAT"] != "ascii" {
		t.Errorf("FORMAT = %q, want ascii", header["FORMAT"])
	}
	if len(rows) != 1 {
		t.Fatalf("matrix has %d row blocks, want 1", len(rows))
	}
	wantRow := []string{"0 0 0", "7356594 7356594 7356594", "0 0 0"}
	if len(rows[0]) != 3 {
		t.Fatalf("row block has %d cells, want 3", len(rows[0]))
	}
	for i, cell := range rows[0] {
		if cell != wantRow[i] {
			t.Errorf("cell %d = %q, want %q", i, cell, wantRow[i])
		}
	}

	// The file ends with the single blank line that separates row blocks.
	mtx := readFile(t, arts.Matrix)
	if !strings.HasSuffix(mtx, "0 0 0\n\n") || strings.HasSuffix(mtx, "\n\n\n") {
		t.Errorf("matrix tail = %q, want one blank line after the last block", mtx[len(mtx)-8:])
	}
}

func TestExecuteReuseSkipsComputation(t *testing.T) {
	dir := t.TempDir()
	m, model := scenarioMatrix()

	first, err := m.Execute(dir, true)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	positions, radiances := model.positionCalls, model.radianceCalls

	second, err := m.Execute(dir, true)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	if second != first {
		t.Errorf("artifact paths changed across reuse: %+v vs %+v", second, first)
	}
	if model.positionCalls != positions || model.radianceCalls != radiances {
		t.Errorf("cache hit recomputed: positions %d->%d, radiances %d->%d",
			positions, model.positionCalls, radiances, model.radianceCalls)
	}

	// reuse=false always regenerates.
	if _, err := m.Execute(dir, false); err != nil {
		t.Fatalf("forced Execute: %v", err)
	}
	if model.radianceCalls == radiances {
		t.Error("reuse=false did not regenerate")
	}
}

func TestExecuteSignatureIsExactString(t *testing.T) {
	dir := t.TempDir()

	weather := &stubWeather{
		site:        testSite(),
		dnr:         map[int]float64{2: 500, 5: 500, 9: 500, 10: 500},
		dhr:         map[int]float64{},
		fingerprint: "weather-a",
	}
	model := &stubModel{
		altitudeByHour: map[float64]float64{2.5: 10, 5.5: 10, 9.5: 10, 10.5: 10},
		radiance:       1000,
	}

	first := NewSunMatrix(weather, model, 0, []int{2, 5, 9}, nil)
	if _, err := first.Execute(dir, true); err != nil {
		t.Fatal(err)
	}
	calls := model.radianceCalls

	// Same length, one differing element: must regenerate.
	second := NewSunMatrix(weather, model, 0, []int{2, 5, 10}, nil)
	if _, err := second.Execute(dir, true); err != nil {
		t.Fatal(err)
	}
	if model.radianceCalls == calls {
		t.Error("hour set [2,5,10] reused artifacts generated for [2,5,9]")
	}
	calls = model.radianceCalls

	// Back to the original set: the signature file now encodes [2,5,10], so
	// this regenerates too.
	if _, err := first.Execute(dir, true); err != nil {
		t.Fatal(err)
	}
	if model.radianceCalls == calls {
		t.Error("signature comparison is not exact-string")
	}
}

func TestExecuteDifferentWeatherRegenerates(t *testing.T) {
	dir := t.TempDir()

	model := &stubModel{
		altitudeByHour: map[float64]float64{5.5: 25},
		radiance:       1000,
	}
	build := func(fingerprint string) *SunMatrix {
		weather := &stubWeather{
			site:        testSite(), // same site: same artifact base name
			dnr:         map[int]float64{5: 500},
			dhr:         map[int]float64{5: 100},
			fingerprint: fingerprint,
		}
		return NewSunMatrix(weather, model, 0, []int{5}, nil)
	}

	if _, err := build("weather-a").Execute(dir, true); err != nil {
		t.Fatal(err)
	}
	calls := model.radianceCalls

	// A weather series with identical station and coordinates but different
	// content would have silently reused the artifacts under the original
	// hour-only signature.
	if _, err := build("weather-b").Execute(dir, true); err != nil {
		t.Fatal(err)
	}
	if model.radianceCalls == calls {
		t.Error("different weather fingerprint reused stale artifacts")
	}
}

func TestExecuteMissingOutputForcesRegeneration(t *testing.T) {
	for _, missing := range []string{"ann", "sun", "mtx"} {
		t.Run(missing, func(t *testing.T) {
			dir := t.TempDir()
			m, model := scenarioMatrix()

			arts, err := m.Execute(dir, true)
			if err != nil {
				t.Fatal(err)
			}
			calls := model.radianceCalls

			var path string
			switch missing {
			case "ann":
				path = arts.Analemma
			case "sun":
				path = arts.SunList
			case "mtx":
				path = arts.Matrix
			}
			if err := os.Remove(path); err != nil {
				t.Fatal(err)
			}

			// The signature file still matches; existence of all three
			// outputs must be required as well.
			if _, err := m.Execute(dir, true); err != nil {
				t.Fatal(err)
			}
			if model.radianceCalls == calls {
				t.Errorf("deleting %s did not force regeneration", missing)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("%s not rewritten: %v", missing, err)
			}
		})
	}
}

func TestExecuteAllFilteredHours(t *testing.T) {
	dir := t.TempDir()
	weather := &stubWeather{
		site:        testSite(),
		dnr:         map[int]float64{0: 0, 1: 0, 2: 0},
		dhr:         map[int]float64{},
		fingerprint: "weather-a",
	}
	model := &stubModel{altitudeByHour: map[float64]float64{}, radiance: 1000}
	m := NewSunMatrix(weather, model, 0, []int{0, 1, 2}, nil)

	arts, err := m.Execute(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, arts.SunList); got != "" {
		t.Errorf("sun list = %q, want empty", got)
	}
	header, rows := parseMatrix(t, arts.Matrix)
	if header["NROWS"] != "0" || header["NCOLS"] != "3" {
		t.Errorf("header = %v, want NROWS=0 NCOLS=3", header)
	}
	if len(rows) != 0 {
		t.Errorf("matrix has %d row blocks, want 0", len(rows))
	}
}

func TestExecuteMatrixShape(t *testing.T) {
	dir := t.TempDir()

	// 10 requested hours, every other one sunlit.
	hoys := make([]int, 10)
	dnr := map[int]float64{}
	alts := map[float64]float64{}
	for i := range hoys {
		hoys[i] = i
		if i%2 == 1 {
			dnr[i] = 400
		}
		alts[float64(i)+0.5] = 15
	}
	weather := &stubWeather{site: testSite(), dnr: dnr, dhr: map[int]float64{}, fingerprint: "w"}
	model := &stubModel{altitudeByHour: alts, radiance: 2500}
	m := NewSunMatrix(weather, model, 0, hoys, nil)

	arts, err := m.Execute(dir, true)
	if err != nil {
		t.Fatal(err)
	}

	header, rows := parseMatrix(t, arts.Matrix)
	nrows, _ := strconv.Atoi(header["NROWS"])
	ncols, _ := strconv.Atoi(header["NCOLS"])
	if nrows != 5 || ncols != 10 {
		t.Fatalf("matrix %dx%d, want 5x10", nrows, ncols)
	}
	if len(rows) != nrows {
		t.Fatalf("found %d row blocks, header says %d", len(rows), nrows)
	}

	for r, row := range rows {
		if len(row) != ncols {
			t.Fatalf("row %d has %d cells, want %d", r, len(row), ncols)
		}
		nonZero := -1
		for c, cell := range row {
			if cell == "0 0 0" {
				continue
			}
			if nonZero != -1 {
				t.Fatalf("row %d has more than one non-zero cell", r)
			}
			nonZero = c
			parts := strings.Fields(cell)
			if len(parts) != 3 || parts[0] != parts[1] || parts[1] != parts[2] {
				t.Errorf("row %d cell %d = %q, want three equal values", r, c, cell)
			}
		}
		// Sunlit hours are the odd positions, in order.
		if want := 2*r + 1; nonZero != want {
			t.Errorf("row %d non-zero cell at %d, want %d", r, nonZero, want)
		}
	}

	// Sun list parallels the rows.
	sunLines := strings.Split(strings.TrimRight(readFile(t, arts.SunList), "\n"), "\n")
	if len(sunLines) != nrows {
		t.Fatalf("sun list has %d entries, want %d", len(sunLines), nrows)
	}
	for i, line := range sunLines {
		if line != fmt.Sprintf("solar%d", i+1) {
			t.Errorf("sun list line %d = %q, want solar%d", i, line, i+1)
		}
	}
}

func TestName(t *testing.T) {
	m, _ := scenarioMatrix()
	if got, want := m.Name(), "sunmtx_r724940_37.62_-122.4_0"; got != want {
		t.Errorf("Name = %q, want %q", got, want)
	}
}

func TestDefaultHours(t *testing.T) {
	weather := &stubWeather{site: testSite(), dnr: map[int]float64{}, dhr: map[int]float64{}}
	m := NewSunMatrix(weather, &stubModel{}, 0, nil, nil)
	if len(m.hoys) != 8760 {
		t.Errorf("default hour count = %d, want 8760", len(m.hoys))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// parseMatrix splits a .mtx file into its header map and row blocks.
func parseMatrix(t *testing.T, path string) (map[string]string, [][]string) {
	t.Helper()
	content := readFile(t, path)

	lines := strings.Split(content, "\n")
	if lines[0] != "#?RADIANCE" {
		t.Fatalf("matrix magic marker = %q", lines[0])
	}

	header := map[string]string{}
	i := 1
	for ; i < len(lines) && lines[i] != ""; i++ {
		if k, v, ok := strings.Cut(lines[i], "="); ok {
			header[k] = strings.TrimSpace(v)
		}
	}
	i++ // skip the blank line after the header

	var rows [][]string
	var current []string
	for ; i < len(lines); i++ {
		if lines[i] == "" {
			if len(current) > 0 {
				rows = append(rows, current)
				current = nil
			}
			continue
		}
		current = append(current, lines[i])
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return header, rows
}
