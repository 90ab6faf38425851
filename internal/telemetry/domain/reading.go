// Package telemetry holds the raw solar reading model and the CSV parser
// that produces it.
package telemetry

import (
	"context"
	"strconv"
	"time"
)

// ChannelCount is the number of measurement channels a logger row carries.
// Channels 1-7 feed the aggregates; channel 8 is persisted but excluded
// from aggregation (decommissioned string).
const ChannelCount = 8

// ChannelSample is one PV string's instantaneous sample.
type ChannelSample struct {
	Current float64
	Voltage float64
	// GenerationWh is the cumulative generation in watt-hours, the unit
	// the logger reports. Conversion to kWh happens only at aggregation.
	GenerationWh float64
}

// Reading is one typed row of the hourly telemetry CSV.
// Natural key: (SiteCode, DateInt, TimeInt).
type Reading struct {
	SiteCode    int
	DateInt     int
	TimeInt     int
	Channels    [ChannelCount]ChannelSample
	Irradiance  float64
	Temperature float64
	ErrorCode   int
	ExportKWh   float64
}

// Minute extracts the minute from the time field. The logger encodes the
// minute as the last two decimal digits of the field; a field shorter than
// two digits is taken whole (time 530 -> 30, time 5 -> 5).
func (r Reading) Minute() int {
	s := strconv.Itoa(r.TimeInt)
	if len(s) > 2 {
		s = s[len(s)-2:]
	}
	minute, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return minute
}

// ReadingRepository reconciles raw readings into storage.
type ReadingRepository interface {
	Reconcile(ctx context.Context, reading Reading, observedAt time.Time) error
}
