package analytics

import (
	"errors"
	"testing"
)

func TestRollupDayBoundaries(t *testing.T) {
	hours := []HourlyRecord{
		{DateInt: 20260315, HourInt: 12, ExportKWh: 65.0},
		{DateInt: 20260315, HourInt: 0, ExportKWh: 50.0},
		{DateInt: 20260315, HourInt: 23, ExportKWh: 80.0},
	}
	record, err := RollupDay(20260315, hours)
	if err != nil {
		t.Fatalf("rollup day: %v", err)
	}
	if record.ExportStartKWh != 50.0 || record.ExportEndKWh != 80.0 {
		t.Fatalf("boundaries: got %v..%v, want 50..80", record.ExportStartKWh, record.ExportEndKWh)
	}
	if record.ExportDeltaKWh != 30.0 {
		t.Fatalf("day delta: got %v, want 30", record.ExportDeltaKWh)
	}
}

func TestRollupDaySingleHour(t *testing.T) {
	record, err := RollupDay(20260315, []HourlyRecord{{DateInt: 20260315, HourInt: 9, ExportKWh: 12.5}})
	if err != nil {
		t.Fatalf("rollup day: %v", err)
	}
	if record.ExportDeltaKWh != 0 {
		t.Fatalf("single-hour delta: got %v, want 0", record.ExportDeltaKWh)
	}
	if record.ExportStartKWh != 12.5 || record.ExportEndKWh != 12.5 {
		t.Fatalf("single-hour boundaries: got %v..%v", record.ExportStartKWh, record.ExportEndKWh)
	}
}

func TestRollupDayEmpty(t *testing.T) {
	if _, err := RollupDay(20260315, nil); !errors.Is(err, ErrNoHourlyRecords) {
		t.Fatalf("want ErrNoHourlyRecords, got %v", err)
	}
}

func TestRollupMonth(t *testing.T) {
	days := []DailyRecord{
		{DateInt: 20260310, ExportStartKWh: 120.0, ExportEndKWh: 130.0},
		{DateInt: 20260301, ExportStartKWh: 100.0, ExportEndKWh: 110.0},
		{DateInt: 20260331, ExportStartKWh: 190.0, ExportEndKWh: 200.0},
	}
	record, err := RollupMonth(202603, days)
	if err != nil {
		t.Fatalf("rollup month: %v", err)
	}
	// latest day's end minus earliest day's start
	if record.ExportDeltaKWh != 100.0 {
		t.Fatalf("month delta: got %v, want 100", record.ExportDeltaKWh)
	}
	if record.MonthInt != 202603 {
		t.Fatalf("month key: got %d", record.MonthInt)
	}
}

func TestRollupMonthSingleDay(t *testing.T) {
	record, err := RollupMonth(202603, []DailyRecord{{DateInt: 20260301, ExportStartKWh: 10, ExportEndKWh: 14}})
	if err != nil {
		t.Fatalf("rollup month: %v", err)
	}
	if record.ExportDeltaKWh != 4 {
		t.Fatalf("single-day month delta: got %v, want 4", record.ExportDeltaKWh)
	}
}

func TestRollupMonthEmpty(t *testing.T) {
	if _, err := RollupMonth(202603, nil); !errors.Is(err, ErrNoDailyRecords) {
		t.Fatalf("want ErrNoDailyRecords, got %v", err)
	}
}
