package analytics

// RollupDay reduces a day's persisted hourly records into its daily record.
// The day's export starts at the cumulative value of the earliest recorded
// hour and ends at the latest; with a single hour the delta is zero.
func RollupDay(dateInt int, hours []HourlyRecord) (DailyRecord, error) {
	if len(hours) == 0 {
		return DailyRecord{}, ErrNoHourlyRecords
	}

	first := hours[0]
	last := hours[0]
	for _, hour := range hours[1:] {
		if hour.HourInt < first.HourInt {
			first = hour
		}
		if hour.HourInt > last.HourInt {
			last = hour
		}
	}

	return DailyRecord{
		DateInt:        dateInt,
		ExportStartKWh: first.ExportKWh,
		ExportEndKWh:   last.ExportKWh,
		ExportDeltaKWh: last.ExportKWh - first.ExportKWh,
	}, nil
}

// RollupMonth reduces a month's persisted daily records into its monthly
// record: the latest day's closing export minus the earliest day's opening
// export.
func RollupMonth(monthInt int, days []DailyRecord) (MonthlyRecord, error) {
	if len(days) == 0 {
		return MonthlyRecord{}, ErrNoDailyRecords
	}

	first := days[0]
	last := days[0]
	for _, day := range days[1:] {
		if day.DateInt < first.DateInt {
			first = day
		}
		if day.DateInt > last.DateInt {
			last = day
		}
	}

	return MonthlyRecord{
		MonthInt:       monthInt,
		ExportDeltaKWh: last.ExportEndKWh - first.ExportStartKWh,
	}, nil
}
