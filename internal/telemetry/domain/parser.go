package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// fieldCount is the fixed positional layout of a logger row:
// 0 site code, 1 date, 2 time, 3..26 eight channel triples
// (current, voltage, cumulative generation Wh), 27 irradiance,
// 28 temperature, 29 error code, 30 cumulative export kWh.
const fieldCount = 31

// ErrFieldCount is returned when a row does not have the expected layout.
var ErrFieldCount = errors.New("telemetry: unexpected field count")

// ParseRow turns one positional CSV row into a typed reading.
// Fields are not range-validated; a malformed numeric field is an error so
// that a corrupt file never partially commits.
func ParseRow(fields []string) (Reading, error) {
	if len(fields) != fieldCount {
		return Reading{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), fieldCount)
	}

	var reading Reading
	var err error

	if reading.SiteCode, err = parseInt(fields[0], "site code"); err != nil {
		return Reading{}, err
	}
	if reading.DateInt, err = parseInt(fields[1], "date"); err != nil {
		return Reading{}, err
	}
	if reading.TimeInt, err = parseInt(fields[2], "time"); err != nil {
		return Reading{}, err
	}

	for ch := 0; ch < ChannelCount; ch++ {
		base := 3 + ch*3
		sample := &reading.Channels[ch]
		if sample.Current, err = parseFloat(fields[base], fmt.Sprintf("channel %d current", ch+1)); err != nil {
			return Reading{}, err
		}
		if sample.Voltage, err = parseFloat(fields[base+1], fmt.Sprintf("channel %d voltage", ch+1)); err != nil {
			return Reading{}, err
		}
		if sample.GenerationWh, err = parseFloat(fields[base+2], fmt.Sprintf("channel %d generation", ch+1)); err != nil {
			return Reading{}, err
		}
	}

	if reading.Irradiance, err = parseFloat(fields[27], "irradiance"); err != nil {
		return Reading{}, err
	}
	if reading.Temperature, err = parseFloat(fields[28], "temperature"); err != nil {
		return Reading{}, err
	}
	if reading.ErrorCode, err = parseInt(fields[29], "error code"); err != nil {
		return Reading{}, err
	}
	if reading.ExportKWh, err = parseFloat(fields[30], "export"); err != nil {
		return Reading{}, err
	}

	return reading, nil
}

// Parse reads a headerless CSV stream into readings, preserving row order.
func Parse(r io.Reader) ([]Reading, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var readings []Reading
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("telemetry: read row %d: %w", row, err)
		}
		reading, err := ParseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("telemetry: parse row %d: %w", row, err)
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// ParseFile parses a downloaded CSV file.
func ParseFile(path string) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

func parseInt(s, field string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("telemetry: invalid %s %q: %w", field, s, err)
	}
	return v, nil
}

func parseFloat(s, field string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("telemetry: invalid %s %q: %w", field, s, err)
	}
	return v, nil
}
