// Command backfill re-runs ingestion for a past hour, e.g. after an FTP
// outage left gaps. Aggregates are recomputed from whatever the store
// holds, so running hours out of order is safe.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	analyticsrepo "solar-telemetry/internal/analytics/infrastructure/postgres"
	"solar-telemetry/internal/ingest/application"
	telemetryrepo "solar-telemetry/internal/telemetry/infrastructure/postgres"
	"solar-telemetry/internal/transfer"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const hourLayout = "2006-01-02T15"

// fixedClock makes the pipeline resolve the requested hour instead of the
// previous wall-clock hour.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func main() {
	var hourArg string
	flag.StringVar(&hourArg, "hour", "", "hour to backfill, local time, format 2006-01-02T15")
	flag.Parse()

	if hourArg == "" {
		fmt.Fprintln(os.Stderr, "usage: backfill -hour 2026-03-15T13")
		os.Exit(2)
	}
	hour, err := time.ParseInLocation(hourLayout, hourArg, time.Local)
	if err != nil {
		log.Fatalf("invalid -hour %q: %v", hourArg, err)
	}

	cfg, err := application.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	ftpClient := transfer.NewFTPClient(transfer.Config{
		Host:     cfg.FTP.Host,
		Port:     cfg.FTP.Port,
		Username: cfg.FTP.Username,
		Password: cfg.FTP.Password,
		Timeout:  cfg.FTP.Timeout(),
	}, logger)

	pipeline, err := application.NewPipelineService(
		ftpClient,
		telemetryrepo.NewReadingRepository(db, telemetryrepo.WithLogger(logger)),
		analyticsrepo.NewHourlyRepository(db, analyticsrepo.WithHourlyLogger(logger)),
		analyticsrepo.NewDailyRepository(db, analyticsrepo.WithDailyLogger(logger)),
		analyticsrepo.NewMonthlyRepository(db, analyticsrepo.WithMonthlyLogger(logger)),
		cfg.FTP.BaseDir,
		cfg.LocalCSVDir,
		fixedClock{now: hour.Add(time.Hour)},
		logger,
	)
	if err != nil {
		logger.Fatalf("pipeline error: %v", err)
	}

	if err := pipeline.Run(context.Background()); err != nil {
		logger.Fatalf("backfill %s failed: %v", hourArg, err)
	}
	logger.Printf("backfill %s done", hourArg)
}
