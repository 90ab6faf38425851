package analytics

import (
	"math"
	"time"

	telemetry "solar-telemetry/internal/telemetry/domain"
)

// BuildHourly reduces one run's readings into the hourly record for the
// resolved window. All readings belong to the same hour by construction;
// arrival order is preserved for the export delta (last minus first), which
// is zero when the hour holds a single row.
//
// Means are rounded to four decimals, half away from zero. Generation means
// are converted from watt-hours to kilowatt-hours before rounding.
func BuildHourly(readings []telemetry.Reading, dateInt, hourInt int, observedAt time.Time) (HourlyRecord, error) {
	if len(readings) == 0 {
		return HourlyRecord{}, ErrNoReadings
	}

	record := HourlyRecord{
		DateInt:    dateInt,
		HourInt:    hourInt,
		ObservedAt: observedAt,
	}

	n := float64(len(readings))
	var irradiance, temperature float64
	var sums [ActiveChannels]ChannelMean
	for _, reading := range readings {
		for ch := 0; ch < ActiveChannels; ch++ {
			sums[ch].Current += reading.Channels[ch].Current
			sums[ch].Voltage += reading.Channels[ch].Voltage
			sums[ch].GenerationKWh += reading.Channels[ch].GenerationWh
		}
		irradiance += reading.Irradiance
		temperature += reading.Temperature
	}

	for ch := 0; ch < ActiveChannels; ch++ {
		record.Channels[ch] = ChannelMean{
			Current:       round4(sums[ch].Current / n),
			Voltage:       round4(sums[ch].Voltage / n),
			GenerationKWh: round4(sums[ch].GenerationKWh / n / 1000),
		}
	}
	record.Irradiance = round4(irradiance / n)
	record.Temperature = round4(temperature / n)

	first := readings[0]
	last := readings[len(readings)-1]
	record.ExportDeltaKWh = last.ExportKWh - first.ExportKWh
	record.ExportKWh = last.ExportKWh

	return record, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
