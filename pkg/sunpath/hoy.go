package sunpath

import "fmt"

// HoursPerYear is the number of hours in a non-leap year. Hour-of-year
// indices run 0 through HoursPerYear-1.
const HoursPerYear = 8760

// monthDays holds day counts for a non-leap year, January first.
var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// CalendarForHOY resolves an hour-of-year index to a calendar month, day and
// hour. Month and day are 1-based; hour is the whole hour 0-23 (callers
// sampling mid-hour add their own 0.5 offset).
func CalendarForHOY(hoy int) (month, day, hour int, err error) {
	if hoy < 0 || hoy >= HoursPerYear {
		return 0, 0, 0, fmt.Errorf("hour of year %d out of range [0, %d)", hoy, HoursPerYear)
	}
	hour = hoy % 24
	doy := hoy / 24
	month = 1
	for doy >= monthDays[month-1] {
		doy -= monthDays[month-1]
		month++
	}
	return month, doy + 1, hour, nil
}

// HOYForCalendar is the inverse of CalendarForHOY.
func HOYForCalendar(month, day, hour int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("month %d out of range [1, 12]", month)
	}
	if day < 1 || day > monthDays[month-1] {
		return 0, fmt.Errorf("day %d out of range for month %d", day, month)
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour %d out of range [0, 23]", hour)
	}
	doy := day - 1
	for m := 1; m < month; m++ {
		doy += monthDays[m-1]
	}
	return doy*24 + hour, nil
}

// AllHours returns the default hour set: every hour of a non-leap year.
func AllHours() []int {
	hoys := make([]int, HoursPerYear)
	for i := range hoys {
		hoys[i] = i
	}
	return hoys
}
