// Package postgres persists the hourly, daily and monthly aggregate tables.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	analytics "solar-telemetry/internal/analytics/domain"
)

const defaultHourlyTable = "solar_hourly"

// HourlyRepository is a Postgres implementation for hourly records,
// keyed by (date_int, hour_int).
type HourlyRepository struct {
	db     *sql.DB
	table  string
	logger *log.Logger
}

// NewHourlyRepository constructs a repository with the default table name.
func NewHourlyRepository(db *sql.DB, opts ...HourlyOption) *HourlyRepository {
	repo := &HourlyRepository{db: db, table: defaultHourlyTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// HourlyOption configures the repository.
type HourlyOption func(*HourlyRepository)

// WithHourlyTable overrides the default table name.
func WithHourlyTable(table string) HourlyOption {
	return func(repo *HourlyRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// WithHourlyLogger sets the audit logger.
func WithHourlyLogger(logger *log.Logger) HourlyOption {
	return func(repo *HourlyRepository) {
		repo.logger = logger
	}
}

// Table returns the configured table name.
func (r *HourlyRepository) Table() string { return r.table }

// Upsert writes the record with count-then-insert-or-update semantics.
func (r *HourlyRepository) Upsert(ctx context.Context, record analytics.HourlyRecord) error {
	if r == nil || r.db == nil {
		return errors.New("hourly repo: nil db")
	}

	countQuery := fmt.Sprintf(`
SELECT COUNT(*)
FROM %s
WHERE date_int = $1 AND hour_int = $2`, r.table)

	var count int
	if err := r.db.QueryRowContext(ctx, countQuery, record.DateInt, record.HourInt).Scan(&count); err != nil {
		return fmt.Errorf("hourly repo: count: %w", err)
	}

	if count == 0 {
		if err := r.insert(ctx, record); err != nil {
			return fmt.Errorf("hourly repo: insert: %w", err)
		}
		r.logf("inserted into %s: date=%d hour=%d export_delta=%v", r.table, record.DateInt, record.HourInt, record.ExportDeltaKWh)
		return nil
	}

	if err := r.update(ctx, record); err != nil {
		return fmt.Errorf("hourly repo: update: %w", err)
	}
	r.logf("updated %s: date=%d hour=%d export_delta=%v", r.table, record.DateInt, record.HourInt, record.ExportDeltaKWh)
	return nil
}

func (r *HourlyRepository) insert(ctx context.Context, record analytics.HourlyRecord) error {
	query := fmt.Sprintf(`
INSERT INTO %s (
	date_int, hour_int,
	current_01, voltage_01, generation_kwh_01,
	current_02, voltage_02, generation_kwh_02,
	current_03, voltage_03, generation_kwh_03,
	current_04, voltage_04, generation_kwh_04,
	current_05, voltage_05, generation_kwh_05,
	current_06, voltage_06, generation_kwh_06,
	current_07, voltage_07, generation_kwh_07,
	irradiance_avg, temperature_avg,
	export_delta_kwh, export_kwh,
	observed_at, updated_at
) VALUES (
	$1, $2,
	$3, $4, $5,
	$6, $7, $8,
	$9, $10, $11,
	$12, $13, $14,
	$15, $16, $17,
	$18, $19, $20,
	$21, $22, $23,
	$24, $25,
	$26, $27,
	$28, NOW()
)`, r.table)

	args := make([]any, 0, 28)
	args = append(args, record.DateInt, record.HourInt)
	args = appendMeanArgs(args, record)
	args = append(args,
		record.Irradiance, record.Temperature,
		record.ExportDeltaKWh, record.ExportKWh,
		record.ObservedAt,
	)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *HourlyRepository) update(ctx context.Context, record analytics.HourlyRecord) error {
	query := fmt.Sprintf(`
UPDATE %s
SET
	current_01 = $1, voltage_01 = $2, generation_kwh_01 = $3,
	current_02 = $4, voltage_02 = $5, generation_kwh_02 = $6,
	current_03 = $7, voltage_03 = $8, generation_kwh_03 = $9,
	current_04 = $10, voltage_04 = $11, generation_kwh_04 = $12,
	current_05 = $13, voltage_05 = $14, generation_kwh_05 = $15,
	current_06 = $16, voltage_06 = $17, generation_kwh_06 = $18,
	current_07 = $19, voltage_07 = $20, generation_kwh_07 = $21,
	irradiance_avg = $22, temperature_avg = $23,
	export_delta_kwh = $24, export_kwh = $25,
	observed_at = $26, updated_at = NOW()
WHERE date_int = $27 AND hour_int = $28`, r.table)

	args := make([]any, 0, 28)
	args = appendMeanArgs(args, record)
	args = append(args,
		record.Irradiance, record.Temperature,
		record.ExportDeltaKWh, record.ExportKWh,
		record.ObservedAt,
		record.DateInt, record.HourInt,
	)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListByDay returns the day's hourly records ordered by hour.
func (r *HourlyRepository) ListByDay(ctx context.Context, dateInt int) ([]analytics.HourlyRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("hourly repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT
	date_int, hour_int,
	current_01, voltage_01, generation_kwh_01,
	current_02, voltage_02, generation_kwh_02,
	current_03, voltage_03, generation_kwh_03,
	current_04, voltage_04, generation_kwh_04,
	current_05, voltage_05, generation_kwh_05,
	current_06, voltage_06, generation_kwh_06,
	current_07, voltage_07, generation_kwh_07,
	irradiance_avg, temperature_avg,
	export_delta_kwh, export_kwh,
	observed_at
FROM %s
WHERE date_int = $1
ORDER BY hour_int ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, dateInt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []analytics.HourlyRecord
	for rows.Next() {
		var record analytics.HourlyRecord
		dest := make([]any, 0, 28)
		dest = append(dest, &record.DateInt, &record.HourInt)
		for ch := 0; ch < analytics.ActiveChannels; ch++ {
			mean := &record.Channels[ch]
			dest = append(dest, &mean.Current, &mean.Voltage, &mean.GenerationKWh)
		}
		dest = append(dest,
			&record.Irradiance, &record.Temperature,
			&record.ExportDeltaKWh, &record.ExportKWh,
			&record.ObservedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func appendMeanArgs(args []any, record analytics.HourlyRecord) []any {
	for ch := 0; ch < analytics.ActiveChannels; ch++ {
		mean := record.Channels[ch]
		args = append(args, mean.Current, mean.Voltage, mean.GenerationKWh)
	}
	return args
}

func (r *HourlyRepository) logf(format string, v ...any) {
	if r.logger != nil {
		r.logger.Printf(format, v...)
	}
}
