package analytics

import "errors"

var (
	// ErrNoReadings is returned when an hour has no rows to aggregate.
	ErrNoReadings = errors.New("analytics: no readings for hour")
	// ErrNoHourlyRecords is returned when a day rollup finds no hours.
	ErrNoHourlyRecords = errors.New("analytics: no hourly records for day")
	// ErrNoDailyRecords is returned when a month rollup finds no days.
	ErrNoDailyRecords = errors.New("analytics: no daily records for month")
)
