package integration_test

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	telemetry "solar-telemetry/internal/telemetry/domain"
	telemetrypostgres "solar-telemetry/internal/telemetry/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const readingsTable = "solar_readings_it"

func TestReadingReconcile_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	createReadingsTable(t, db)
	defer func() { _, _ = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+readingsTable) }()

	var logBuf bytes.Buffer
	repo := telemetrypostgres.NewReadingRepository(db,
		telemetrypostgres.WithTable(readingsTable),
		telemetrypostgres.WithLogger(log.New(&logBuf, "", 0)),
	)

	reading := sampleReading(101, 20260315, 1330)
	reading.ExportKWh = 100.5
	observedAt := time.Date(2026, 3, 15, 13, 30, 0, 0, time.UTC)

	// Zero rows at the key: reconcile inserts.
	if err := repo.Reconcile(ctx, reading, observedAt); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	if got := countByKey(t, db, reading); got != 1 {
		t.Fatalf("rows after insert: got %d, want 1", got)
	}
	if got := exportByKey(t, db, reading); got != 100.5 {
		t.Fatalf("export after insert: got %v, want 100.5", got)
	}

	// One row at the key: reconcile updates in place, key unchanged.
	reading.ExportKWh = 101.2
	if err := repo.Reconcile(ctx, reading, observedAt); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if got := countByKey(t, db, reading); got != 1 {
		t.Fatalf("rows after update: got %d, want 1", got)
	}
	if got := exportByKey(t, db, reading); got != 101.2 {
		t.Fatalf("export after update: got %v, want 101.2", got)
	}

	// A second row sharing the key violates the contract: the reconcile
	// still succeeds, warns, and updates every matching row.
	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (site_code, date_int, time_int, export_kwh) VALUES ($1, $2, $3, $4)",
		readingsTable), reading.SiteCode, reading.DateInt, reading.TimeInt, 0.0); err != nil {
		t.Fatalf("seed duplicate: %v", err)
	}
	reading.ExportKWh = 102.0
	if err := repo.Reconcile(ctx, reading, observedAt); err != nil {
		t.Fatalf("duplicate reconcile: %v", err)
	}
	var updated int
	if err := db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE site_code = $1 AND date_int = $2 AND time_int = $3 AND export_kwh = $4",
		readingsTable), reading.SiteCode, reading.DateInt, reading.TimeInt, 102.0).Scan(&updated); err != nil {
		t.Fatalf("count updated duplicates: %v", err)
	}
	if updated != 2 {
		t.Fatalf("updated duplicate rows: got %d, want 2", updated)
	}
	if !strings.Contains(logBuf.String(), "warning") {
		t.Fatalf("expected duplicate-key warning in log, got: %s", logBuf.String())
	}
}

func createReadingsTable(t *testing.T, db *sql.DB) {
	t.Helper()
	var b strings.Builder
	b.WriteString("CREATE TABLE " + readingsTable + " (\n")
	b.WriteString("site_code INT NOT NULL,\ndate_int INT NOT NULL,\ntime_int INT NOT NULL,\n")
	for ch := 1; ch <= telemetry.ChannelCount; ch++ {
		fmt.Fprintf(&b, "current_%02d DOUBLE PRECISION,\nvoltage_%02d DOUBLE PRECISION,\ngeneration_wh_%02d DOUBLE PRECISION,\n", ch, ch, ch)
	}
	b.WriteString("irradiance DOUBLE PRECISION,\ntemperature DOUBLE PRECISION,\nerror_code INT,\nexport_kwh DOUBLE PRECISION,\n")
	b.WriteString("observed_at TIMESTAMPTZ,\nupdated_at TIMESTAMPTZ\n)")

	if _, err := db.Exec("DROP TABLE IF EXISTS " + readingsTable); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if _, err := db.Exec(b.String()); err != nil {
		t.Fatalf("create table: %v", err)
	}
}

func sampleReading(siteCode, dateInt, timeInt int) telemetry.Reading {
	r := telemetry.Reading{SiteCode: siteCode, DateInt: dateInt, TimeInt: timeInt}
	for ch := 0; ch < telemetry.ChannelCount; ch++ {
		r.Channels[ch] = telemetry.ChannelSample{Current: 1.5, Voltage: 310, GenerationWh: 2500}
	}
	r.Irradiance = 820
	r.Temperature = 31.5
	return r
}

func countByKey(t *testing.T, db *sql.DB, reading telemetry.Reading) int {
	t.Helper()
	var count int
	err := db.QueryRow(fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE site_code = $1 AND date_int = $2 AND time_int = $3",
		readingsTable), reading.SiteCode, reading.DateInt, reading.TimeInt).Scan(&count)
	if err != nil {
		t.Fatalf("count by key: %v", err)
	}
	return count
}

func exportByKey(t *testing.T, db *sql.DB, reading telemetry.Reading) float64 {
	t.Helper()
	var export float64
	err := db.QueryRow(fmt.Sprintf(
		"SELECT export_kwh FROM %s WHERE site_code = $1 AND date_int = $2 AND time_int = $3",
		readingsTable), reading.SiteCode, reading.DateInt, reading.TimeInt).Scan(&export)
	if err != nil {
		t.Fatalf("export by key: %v", err)
	}
	return export
}
