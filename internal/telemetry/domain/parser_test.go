package telemetry

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func sampleRow(timeField string) []string {
	fields := []string{"101", "20260315", timeField}
	for ch := 1; ch <= ChannelCount; ch++ {
		fields = append(fields,
			fmt.Sprintf("%d.5", ch),      // current
			fmt.Sprintf("%d00.0", ch),    // voltage
			fmt.Sprintf("%d000.0", ch*2), // generation Wh
		)
	}
	fields = append(fields, "812.3", "24.6", "0", "101.25")
	return fields
}

func TestParseRow(t *testing.T) {
	reading, err := ParseRow(sampleRow("1330"))
	if err != nil {
		t.Fatalf("parse row: %v", err)
	}

	if reading.SiteCode != 101 || reading.DateInt != 20260315 || reading.TimeInt != 1330 {
		t.Fatalf("key fields: got %+v", reading)
	}
	if reading.Channels[0].Current != 1.5 || reading.Channels[0].Voltage != 100.0 || reading.Channels[0].GenerationWh != 2000.0 {
		t.Fatalf("channel 1: got %+v", reading.Channels[0])
	}
	if reading.Channels[7].GenerationWh != 16000.0 {
		t.Fatalf("channel 8 generation: got %v", reading.Channels[7].GenerationWh)
	}
	if reading.Irradiance != 812.3 || reading.Temperature != 24.6 {
		t.Fatalf("environment fields: got %+v", reading)
	}
	if reading.ErrorCode != 0 || reading.ExportKWh != 101.25 {
		t.Fatalf("tail fields: got %+v", reading)
	}
}

func TestMinuteExtraction(t *testing.T) {
	cases := []struct {
		timeField string
		want      int
	}{
		{"1330", 30},
		{"530", 30},
		{"5", 5},
		{"0", 0},
		{"2359", 59},
	}
	for _, tc := range cases {
		reading, err := ParseRow(sampleRow(tc.timeField))
		if err != nil {
			t.Fatalf("parse row time=%s: %v", tc.timeField, err)
		}
		if got := reading.Minute(); got != tc.want {
			t.Fatalf("minute of %s: got %d, want %d", tc.timeField, got, tc.want)
		}
	}
}

func TestParseRowFieldCount(t *testing.T) {
	_, err := ParseRow(sampleRow("1330")[:30])
	if !errors.Is(err, ErrFieldCount) {
		t.Fatalf("want ErrFieldCount, got %v", err)
	}
}

func TestParseRowMalformedNumber(t *testing.T) {
	fields := sampleRow("1330")
	fields[27] = "n/a"
	if _, err := ParseRow(fields); err == nil {
		t.Fatal("want error for malformed irradiance")
	}
}

func TestParsePreservesRowOrder(t *testing.T) {
	rows := []string{
		strings.Join(sampleRow("1300"), ","),
		strings.Join(sampleRow("1330"), ","),
		strings.Join(sampleRow("1345"), ","),
	}
	readings, err := Parse(strings.NewReader(strings.Join(rows, "\n") + "\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(readings) != 3 {
		t.Fatalf("got %d readings, want 3", len(readings))
	}
	if readings[0].TimeInt != 1300 || readings[2].TimeInt != 1345 {
		t.Fatalf("row order not preserved: %d, %d", readings[0].TimeInt, readings[2].TimeInt)
	}
}

func TestParseFailsFastOnCorruptRow(t *testing.T) {
	good := strings.Join(sampleRow("1300"), ",")
	bad := strings.Join(sampleRow("1330")[:12], ",")
	_, err := Parse(strings.NewReader(good + "\n" + bad + "\n"))
	if err == nil {
		t.Fatal("want error for corrupt second row")
	}
}
