// Package timewindow resolves the hour-long observation window an ingestion
// run operates on and derives the calendar keys shared by the remote file
// layout and every aggregate table.
package timewindow

import (
	"strconv"
	"time"
)

const hourKeyLayout = "06010215"

// Window is the observation window exactly one hour behind the run.
// All keys are derived from the same instant and stay mutually consistent:
// decomposing HourKey reproduces DayInt's date and HourInt.
type Window struct {
	// Start is the beginning of the window hour, minute zero.
	Start time.Time
	// HourKey is the yymmddhh form that names the remote CSV file.
	HourKey string
	// DayInt is the YYYYMMDD day key.
	DayInt int
	// HourInt is the hour of day, 0-23.
	HourInt int
	// MonthInt is the YYYYMM month key.
	MonthInt int
	// Year is the four-digit year, as used in the remote directory path.
	Year string
}

// Resolve computes the window for the hour preceding now.
// The century is inferred by prefixing "20" to the two-digit year of the
// hour key, matching the remote naming convention. This holds only for
// dates in 2000-2099.
func Resolve(now time.Time) Window {
	oneHourAgo := now.Add(-time.Hour)

	hourKey := oneHourAgo.Format(hourKeyLayout)
	year := mustAtoi("20" + hourKey[0:2])
	month := mustAtoi(hourKey[2:4])
	day := mustAtoi(hourKey[4:6])
	hour := mustAtoi(hourKey[6:8])

	return Window{
		Start:    time.Date(year, time.Month(month), day, hour, 0, 0, 0, now.Location()),
		HourKey:  hourKey,
		DayInt:   year*10000 + month*100 + day,
		HourInt:  hour,
		MonthInt: year*100 + month,
		Year:     strconv.Itoa(year),
	}
}

// Filename is the remote CSV file name for this window.
func (w Window) Filename() string {
	return w.HourKey + ".CSV"
}

// RemoteDir is the remote directory holding this window's file.
func (w Window) RemoteDir(baseDir string) string {
	return baseDir + "/" + w.Year
}

// ObservedAt places a reading taken at the given minute inside the window.
func (w Window) ObservedAt(minute int) time.Time {
	return w.Start.Add(time.Duration(minute) * time.Minute)
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		// hourKeyLayout only emits decimal digits.
		panic(err)
	}
	return n
}
