package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	analytics "solar-telemetry/internal/analytics/domain"
)

const defaultDailyTable = "solar_daily"

// DailyRepository is a Postgres implementation for daily records,
// keyed by date_int.
type DailyRepository struct {
	db     *sql.DB
	table  string
	logger *log.Logger
}

// NewDailyRepository constructs a repository with the default table name.
func NewDailyRepository(db *sql.DB, opts ...DailyOption) *DailyRepository {
	repo := &DailyRepository{db: db, table: defaultDailyTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// DailyOption configures the repository.
type DailyOption func(*DailyRepository)

// WithDailyTable overrides the default table name.
func WithDailyTable(table string) DailyOption {
	return func(repo *DailyRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// WithDailyLogger sets the audit logger.
func WithDailyLogger(logger *log.Logger) DailyOption {
	return func(repo *DailyRepository) {
		repo.logger = logger
	}
}

// Table returns the configured table name.
func (r *DailyRepository) Table() string { return r.table }

// Upsert writes the record with count-then-insert-or-update semantics.
func (r *DailyRepository) Upsert(ctx context.Context, record analytics.DailyRecord) error {
	if r == nil || r.db == nil {
		return errors.New("daily repo: nil db")
	}

	countQuery := fmt.Sprintf(`
SELECT COUNT(*)
FROM %s
WHERE date_int = $1`, r.table)

	var count int
	if err := r.db.QueryRowContext(ctx, countQuery, record.DateInt).Scan(&count); err != nil {
		return fmt.Errorf("daily repo: count: %w", err)
	}

	if count == 0 {
		query := fmt.Sprintf(`
INSERT INTO %s (
	date_int, export_delta_kwh, export_start_kwh, export_end_kwh, updated_at
) VALUES (
	$1, $2, $3, $4, NOW()
)`, r.table)
		if _, err := r.db.ExecContext(ctx, query,
			record.DateInt, record.ExportDeltaKWh, record.ExportStartKWh, record.ExportEndKWh,
		); err != nil {
			return fmt.Errorf("daily repo: insert: %w", err)
		}
		r.logf("inserted into %s: %+v", r.table, record)
		return nil
	}

	query := fmt.Sprintf(`
UPDATE %s
SET
	export_delta_kwh = $1,
	export_start_kwh = $2,
	export_end_kwh = $3,
	updated_at = NOW()
WHERE date_int = $4`, r.table)
	if _, err := r.db.ExecContext(ctx, query,
		record.ExportDeltaKWh, record.ExportStartKWh, record.ExportEndKWh, record.DateInt,
	); err != nil {
		return fmt.Errorf("daily repo: update: %w", err)
	}
	r.logf("updated %s: %+v", r.table, record)
	return nil
}

// ListByMonth returns the month's daily records ordered by date.
// Month membership is decided numerically on the YYYYMMDD key, not by
// string extraction from a formatted date.
func (r *DailyRepository) ListByMonth(ctx context.Context, monthInt int) ([]analytics.DailyRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("daily repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT date_int, export_delta_kwh, export_start_kwh, export_end_kwh
FROM %s
WHERE date_int >= $1 AND date_int <= $2
ORDER BY date_int ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, monthInt*100+1, monthInt*100+31)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []analytics.DailyRecord
	for rows.Next() {
		var record analytics.DailyRecord
		if err := rows.Scan(&record.DateInt, &record.ExportDeltaKWh, &record.ExportStartKWh, &record.ExportEndKWh); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *DailyRepository) logf(format string, v ...any) {
	if r.logger != nil {
		r.logger.Printf(format, v...)
	}
}
