// Package postgres persists raw solar readings.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	telemetry "solar-telemetry/internal/telemetry/domain"
)

const defaultReadingsTable = "solar_readings"

// ReadingRepository is a Postgres implementation for raw readings.
// Reconciliation is count-then-insert-or-update on the natural key
// (site_code, date_int, time_int); key columns are never updated.
type ReadingRepository struct {
	db     *sql.DB
	table  string
	logger *log.Logger
}

// NewReadingRepository constructs a repository with the default table name.
func NewReadingRepository(db *sql.DB, opts ...RepositoryOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RepositoryOption configures the repository.
type RepositoryOption func(*ReadingRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// WithLogger sets the audit logger for insert/update lines.
func WithLogger(logger *log.Logger) RepositoryOption {
	return func(repo *ReadingRepository) {
		repo.logger = logger
	}
}

// Table returns the configured table name.
func (r *ReadingRepository) Table() string { return r.table }

// Reconcile upserts one reading. Zero existing rows at the key inserts the
// full row; one row updates every measurement column plus the timestamps.
// More than one row violates the key contract: it is logged as a warning
// and the update is applied anyway rather than failing the run.
func (r *ReadingRepository) Reconcile(ctx context.Context, reading telemetry.Reading, observedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}

	count, err := r.countByKey(ctx, reading)
	if err != nil {
		return fmt.Errorf("reading repo: count: %w", err)
	}

	if count == 0 {
		if err := r.insert(ctx, reading, observedAt); err != nil {
			return fmt.Errorf("reading repo: insert: %w", err)
		}
		r.logf("inserted into %s: %+v", r.table, reading)
		return nil
	}

	if count > 1 {
		r.logf("warning: %d rows in %s share key site=%d date=%d time=%d, updating anyway",
			count, r.table, reading.SiteCode, reading.DateInt, reading.TimeInt)
	}
	if err := r.update(ctx, reading, observedAt); err != nil {
		return fmt.Errorf("reading repo: update: %w", err)
	}
	r.logf("updated %s: %+v", r.table, reading)
	return nil
}

func (r *ReadingRepository) countByKey(ctx context.Context, reading telemetry.Reading) (int, error) {
	query := fmt.Sprintf(`
SELECT COUNT(*)
FROM %s
WHERE site_code = $1 AND date_int = $2 AND time_int = $3`, r.table)

	var count int
	row := r.db.QueryRowContext(ctx, query, reading.SiteCode, reading.DateInt, reading.TimeInt)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ReadingRepository) insert(ctx context.Context, reading telemetry.Reading, observedAt time.Time) error {
	query := fmt.Sprintf(`
INSERT INTO %s (
	site_code, date_int, time_int,
	current_01, voltage_01, generation_wh_01,
	current_02, voltage_02, generation_wh_02,
	current_03, voltage_03, generation_wh_03,
	current_04, voltage_04, generation_wh_04,
	current_05, voltage_05, generation_wh_05,
	current_06, voltage_06, generation_wh_06,
	current_07, voltage_07, generation_wh_07,
	current_08, voltage_08, generation_wh_08,
	irradiance, temperature, error_code, export_kwh,
	observed_at, updated_at
) VALUES (
	$1, $2, $3,
	$4, $5, $6,
	$7, $8, $9,
	$10, $11, $12,
	$13, $14, $15,
	$16, $17, $18,
	$19, $20, $21,
	$22, $23, $24,
	$25, $26, $27,
	$28, $29, $30, $31,
	$32, NOW()
)`, r.table)

	args := make([]any, 0, 32)
	args = append(args, reading.SiteCode, reading.DateInt, reading.TimeInt)
	args = appendChannelArgs(args, reading)
	args = append(args, reading.Irradiance, reading.Temperature, reading.ErrorCode, reading.ExportKWh, observedAt)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *ReadingRepository) update(ctx context.Context, reading telemetry.Reading, observedAt time.Time) error {
	query := fmt.Sprintf(`
UPDATE %s
SET
	current_01 = $1, voltage_01 = $2, generation_wh_01 = $3,
	current_02 = $4, voltage_02 = $5, generation_wh_02 = $6,
	current_03 = $7, voltage_03 = $8, generation_wh_03 = $9,
	current_04 = $10, voltage_04 = $11, generation_wh_04 = $12,
	current_05 = $13, voltage_05 = $14, generation_wh_05 = $15,
	current_06 = $16, voltage_06 = $17, generation_wh_06 = $18,
	current_07 = $19, voltage_07 = $20, generation_wh_07 = $21,
	current_08 = $22, voltage_08 = $23, generation_wh_08 = $24,
	irradiance = $25, temperature = $26, error_code = $27, export_kwh = $28,
	observed_at = $29, updated_at = NOW()
WHERE site_code = $30 AND date_int = $31 AND time_int = $32`, r.table)

	args := make([]any, 0, 32)
	args = appendChannelArgs(args, reading)
	args = append(args,
		reading.Irradiance, reading.Temperature, reading.ErrorCode, reading.ExportKWh,
		observedAt,
		reading.SiteCode, reading.DateInt, reading.TimeInt,
	)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func appendChannelArgs(args []any, reading telemetry.Reading) []any {
	for ch := 0; ch < telemetry.ChannelCount; ch++ {
		sample := reading.Channels[ch]
		args = append(args, sample.Current, sample.Voltage, sample.GenerationWh)
	}
	return args
}

func (r *ReadingRepository) logf(format string, v ...any) {
	if r.logger != nil {
		r.logger.Printf(format, v...)
	}
}
