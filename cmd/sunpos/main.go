package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/radsky/radsky/pkg/sunpath"
)

func main() {
	var (
		lat     = flag.Float64("lat", 0, "Site latitude in degrees")
		lon     = flag.Float64("lon", 0, "Site longitude in degrees, east positive")
		tz      = flag.Float64("tz", 0, "Timezone offset from UTC in hours")
		north   = flag.Float64("north", 0, "Scene north rotation in degrees clockwise from true north")
		timeStr = flag.String("time", "", "Local standard time (RFC3339 format, e.g. 2024-06-21T12:30:00Z; date part selects month/day)")
	)
	flag.Parse()

	var t time.Time
	if *timeStr == "" {
		t = time.Now().UTC()
	} else {
		var err error
		t, err = time.Parse(time.RFC3339, *timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}

	hour := float64(t.Hour()) + float64(t.Minute())/60.0
	sp := sunpath.New(*lat, *lon, *tz, *north)
	sun := sp.Position(int(t.Month()), t.Day(), hour)
	v := sun.Vector()

	fmt.Printf("Sun position for %d/%d %05.2fh at (%.4f, %.4f)\n",
		t.Month(), t.Day(), hour, *lat, *lon)
	fmt.Printf("  Altitude:  %.2f°\n", sun.AltitudeDeg)
	fmt.Printf("  Azimuth:   %.2f° (clockwise from north)\n", sun.AzimuthDeg)
	fmt.Printf("  Direction: (%.6f, %.6f, %.6f)\n", v.X, v.Y, v.Z)
	if sun.AltitudeDeg < 0 {
		fmt.Println("  Sun is below the horizon")
	}
}
