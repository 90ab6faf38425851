// Package analytics models the hourly, daily and monthly aggregate records
// rolled up from raw solar readings, and the rules that derive them.
package analytics

import (
	"context"
	"time"
)

// ActiveChannels is the number of channels included in aggregation.
// The raw table stores eight channels; the eighth is excluded here.
const ActiveChannels = 7

// ChannelMean holds the per-channel arithmetic means over one hour.
type ChannelMean struct {
	Current float64
	Voltage float64
	// GenerationKWh is the mean of cumulative generation converted from
	// watt-hours to kilowatt-hours.
	GenerationKWh float64
}

// HourlyRecord is the one-row summary of an observed hour.
// Key: (DateInt, HourInt).
type HourlyRecord struct {
	DateInt  int
	HourInt  int
	Channels [ActiveChannels]ChannelMean
	// Irradiance and Temperature are hour means.
	Irradiance  float64
	Temperature float64
	// ExportDeltaKWh is the cumulative export gained during the hour.
	ExportDeltaKWh float64
	// ExportKWh is the cumulative export at the end of the hour.
	ExportKWh  float64
	ObservedAt time.Time
}

// DailyRecord is the per-day export summary. Key: DateInt.
type DailyRecord struct {
	DateInt        int
	ExportDeltaKWh float64
	// ExportStartKWh is the cumulative export at the day's first
	// recorded hour; ExportEndKWh at its last.
	ExportStartKWh float64
	ExportEndKWh   float64
}

// MonthlyRecord is the per-month export summary. Key: MonthInt.
type MonthlyRecord struct {
	MonthInt       int
	ExportDeltaKWh float64
}

// HourlyRepository persists hourly records.
type HourlyRepository interface {
	Upsert(ctx context.Context, record HourlyRecord) error
	ListByDay(ctx context.Context, dateInt int) ([]HourlyRecord, error)
}

// DailyRepository persists daily records.
type DailyRepository interface {
	Upsert(ctx context.Context, record DailyRecord) error
	ListByMonth(ctx context.Context, monthInt int) ([]DailyRecord, error)
}

// MonthlyRepository persists monthly records.
type MonthlyRepository interface {
	Upsert(ctx context.Context, record MonthlyRecord) error
	ListByYear(ctx context.Context, year int) ([]MonthlyRecord, error)
}
