package integration_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	analytics "solar-telemetry/internal/analytics/domain"
	analyticspostgres "solar-telemetry/internal/analytics/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func recreateTable(t *testing.T, db *sql.DB, name, ddl string) {
	t.Helper()
	if _, err := db.Exec("DROP TABLE IF EXISTS " + name); err != nil {
		t.Fatalf("drop %s: %v", name, err)
	}
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	t.Cleanup(func() { _, _ = db.Exec("DROP TABLE IF EXISTS " + name) })
}

func TestHourlyUpsert_Postgres(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	table := "solar_hourly_it"
	var b strings.Builder
	b.WriteString("CREATE TABLE " + table + " (\ndate_int INT NOT NULL,\nhour_int INT NOT NULL,\n")
	for ch := 1; ch <= analytics.ActiveChannels; ch++ {
		fmt.Fprintf(&b, "current_%02d DOUBLE PRECISION,\nvoltage_%02d DOUBLE PRECISION,\ngeneration_kwh_%02d DOUBLE PRECISION,\n", ch, ch, ch)
	}
	b.WriteString("irradiance_avg DOUBLE PRECISION,\ntemperature_avg DOUBLE PRECISION,\n")
	b.WriteString("export_delta_kwh DOUBLE PRECISION,\nexport_kwh DOUBLE PRECISION,\n")
	b.WriteString("observed_at TIMESTAMPTZ,\nupdated_at TIMESTAMPTZ\n)")
	recreateTable(t, db, table, b.String())

	repo := analyticspostgres.NewHourlyRepository(db, analyticspostgres.WithHourlyTable(table))
	ctx := context.Background()

	record := analytics.HourlyRecord{
		DateInt:        20260315,
		HourInt:        13,
		Irradiance:     820.5,
		Temperature:    31.2,
		ExportDeltaKWh: 1.2,
		ExportKWh:      101.2,
		ObservedAt:     time.Date(2026, 3, 15, 13, 0, 0, 0, time.UTC),
	}
	for ch := 0; ch < analytics.ActiveChannels; ch++ {
		record.Channels[ch] = analytics.ChannelMean{Current: 1.5, Voltage: 310.25, GenerationKWh: 2.5}
	}

	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	got, err := repo.ListByDay(ctx, record.DateInt)
	if err != nil {
		t.Fatalf("list by day: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows after insert: got %d, want 1", len(got))
	}
	if got[0].ExportKWh != 101.2 || got[0].Channels[0].Voltage != 310.25 {
		t.Fatalf("inserted record mismatch: %+v", got[0])
	}

	record.ExportDeltaKWh = 1.9
	record.ExportKWh = 101.9
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = repo.ListByDay(ctx, record.DateInt)
	if err != nil {
		t.Fatalf("list after update: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows after update: got %d, want 1", len(got))
	}
	if got[0].ExportDeltaKWh != 1.9 || got[0].ExportKWh != 101.9 {
		t.Fatalf("updated record mismatch: %+v", got[0])
	}
}

func TestDailyUpsert_Postgres(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	table := "solar_daily_it"
	recreateTable(t, db, table, `CREATE TABLE `+table+` (
date_int INT NOT NULL,
export_delta_kwh DOUBLE PRECISION,
export_start_kwh DOUBLE PRECISION,
export_end_kwh DOUBLE PRECISION,
updated_at TIMESTAMPTZ
)`)

	repo := analyticspostgres.NewDailyRepository(db, analyticspostgres.WithDailyTable(table))
	ctx := context.Background()

	record := analytics.DailyRecord{DateInt: 20260315, ExportDeltaKWh: 30, ExportStartKWh: 50, ExportEndKWh: 80}
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	record.ExportDeltaKWh = 35
	record.ExportEndKWh = 85
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	// A neighbouring month's day must not leak into the listing.
	if err := repo.Upsert(ctx, analytics.DailyRecord{DateInt: 20260401, ExportDeltaKWh: 10}); err != nil {
		t.Fatalf("seed next month: %v", err)
	}

	got, err := repo.ListByMonth(ctx, 202603)
	if err != nil {
		t.Fatalf("list by month: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows for month: got %d, want 1", len(got))
	}
	if got[0].ExportDeltaKWh != 35 || got[0].ExportEndKWh != 85 {
		t.Fatalf("updated record mismatch: %+v", got[0])
	}
}

func TestMonthlyUpsert_Postgres(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	table := "solar_monthly_it"
	recreateTable(t, db, table, `CREATE TABLE `+table+` (
month_int INT NOT NULL,
export_delta_kwh DOUBLE PRECISION,
updated_at TIMESTAMPTZ
)`)

	repo := analyticspostgres.NewMonthlyRepository(db, analyticspostgres.WithMonthlyTable(table))
	ctx := context.Background()

	record := analytics.MonthlyRecord{MonthInt: 202603, ExportDeltaKWh: 500}
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	record.ExportDeltaKWh = 512.25
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	// The previous year stays out of the listing.
	if err := repo.Upsert(ctx, analytics.MonthlyRecord{MonthInt: 202512, ExportDeltaKWh: 90}); err != nil {
		t.Fatalf("seed previous year: %v", err)
	}

	got, err := repo.ListByYear(ctx, 2026)
	if err != nil {
		t.Fatalf("list by year: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows for year: got %d, want 1", len(got))
	}
	if got[0].ExportDeltaKWh != 512.25 {
		t.Fatalf("updated record mismatch: %+v", got[0])
	}
}
