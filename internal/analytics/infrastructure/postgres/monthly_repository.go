package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	analytics "solar-telemetry/internal/analytics/domain"
)

const defaultMonthlyTable = "solar_monthly"

// MonthlyRepository is a Postgres implementation for monthly records,
// keyed by month_int.
type MonthlyRepository struct {
	db     *sql.DB
	table  string
	logger *log.Logger
}

// NewMonthlyRepository constructs a repository with the default table name.
func NewMonthlyRepository(db *sql.DB, opts ...MonthlyOption) *MonthlyRepository {
	repo := &MonthlyRepository{db: db, table: defaultMonthlyTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// MonthlyOption configures the repository.
type MonthlyOption func(*MonthlyRepository)

// WithMonthlyTable overrides the default table name.
func WithMonthlyTable(table string) MonthlyOption {
	return func(repo *MonthlyRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// WithMonthlyLogger sets the audit logger.
func WithMonthlyLogger(logger *log.Logger) MonthlyOption {
	return func(repo *MonthlyRepository) {
		repo.logger = logger
	}
}

// Table returns the configured table name.
func (r *MonthlyRepository) Table() string { return r.table }

// Upsert writes the record with count-then-insert-or-update semantics.
func (r *MonthlyRepository) Upsert(ctx context.Context, record analytics.MonthlyRecord) error {
	if r == nil || r.db == nil {
		return errors.New("monthly repo: nil db")
	}

	countQuery := fmt.Sprintf(`
SELECT COUNT(*)
FROM %s
WHERE month_int = $1`, r.table)

	var count int
	if err := r.db.QueryRowContext(ctx, countQuery, record.MonthInt).Scan(&count); err != nil {
		return fmt.Errorf("monthly repo: count: %w", err)
	}

	if count == 0 {
		query := fmt.Sprintf(`
INSERT INTO %s (
	month_int, export_delta_kwh, updated_at
) VALUES (
	$1, $2, NOW()
)`, r.table)
		if _, err := r.db.ExecContext(ctx, query, record.MonthInt, record.ExportDeltaKWh); err != nil {
			return fmt.Errorf("monthly repo: insert: %w", err)
		}
		r.logf("inserted into %s: %+v", r.table, record)
		return nil
	}

	query := fmt.Sprintf(`
UPDATE %s
SET export_delta_kwh = $1, updated_at = NOW()
WHERE month_int = $2`, r.table)
	if _, err := r.db.ExecContext(ctx, query, record.ExportDeltaKWh, record.MonthInt); err != nil {
		return fmt.Errorf("monthly repo: update: %w", err)
	}
	r.logf("updated %s: %+v", r.table, record)
	return nil
}

// ListByYear returns the year's monthly records ordered by month.
func (r *MonthlyRepository) ListByYear(ctx context.Context, year int) ([]analytics.MonthlyRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("monthly repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT month_int, export_delta_kwh
FROM %s
WHERE month_int >= $1 AND month_int <= $2
ORDER BY month_int ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, year*100+1, year*100+12)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []analytics.MonthlyRecord
	for rows.Next() {
		var record analytics.MonthlyRecord
		if err := rows.Scan(&record.MonthInt, &record.ExportDeltaKWh); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *MonthlyRepository) logf(format string, v ...any) {
	if r.logger != nil {
		r.logger.Printf(format, v...)
	}
}
