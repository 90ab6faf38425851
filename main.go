package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	analyticsrepo "solar-telemetry/internal/analytics/infrastructure/postgres"
	apihttp "solar-telemetry/internal/api/http"
	"solar-telemetry/internal/audit"
	"solar-telemetry/internal/auth"
	"solar-telemetry/internal/ingest/application"
	"solar-telemetry/internal/logsink"
	"solar-telemetry/internal/observability/metrics"
	telemetryrepo "solar-telemetry/internal/telemetry/infrastructure/postgres"
	"solar-telemetry/internal/transfer"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := application.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	sink, err := logsink.New(cfg.Log.Dir, cfg.Log.MaxFiles)
	if err != nil {
		log.Fatalf("log sink error: %v", err)
	}
	logger := log.New(io.MultiWriter(os.Stdout, sink), "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	readingRepo := telemetryrepo.NewReadingRepository(db, telemetryrepo.WithLogger(logger))
	hourlyRepo := analyticsrepo.NewHourlyRepository(db, analyticsrepo.WithHourlyLogger(logger))
	dailyRepo := analyticsrepo.NewDailyRepository(db, analyticsrepo.WithDailyLogger(logger))
	monthlyRepo := analyticsrepo.NewMonthlyRepository(db, analyticsrepo.WithMonthlyLogger(logger))

	metrics.Init(db, logger, metrics.TableNames{
		Readings: readingRepo.Table(),
		Hourly:   hourlyRepo.Table(),
		Daily:    dailyRepo.Table(),
		Monthly:  monthlyRepo.Table(),
	})

	ftpClient := transfer.NewFTPClient(transfer.Config{
		Host:     cfg.FTP.Host,
		Port:     cfg.FTP.Port,
		Username: cfg.FTP.Username,
		Password: cfg.FTP.Password,
		Timeout:  cfg.FTP.Timeout(),
	}, logger)

	pipeline, err := application.NewPipelineService(
		ftpClient,
		readingRepo,
		hourlyRepo,
		dailyRepo,
		monthlyRepo,
		cfg.FTP.BaseDir,
		cfg.LocalCSVDir,
		application.SystemClock{},
		logger,
	)
	if err != nil {
		logger.Fatalf("pipeline error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Schedule.Enabled {
		if err := pipeline.Run(ctx); err != nil {
			logger.Fatalf("run error: %v", err)
		}
		return
	}

	scheduler := application.NewScheduler(pipeline, cfg.Schedule.MinuteOfHour, logger)
	go scheduler.Start(ctx)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.HTTP.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/v1/hourly", apihttp.NewHourlyHandler(hourlyRepo))
	mux.Handle("/v1/daily", apihttp.NewDailyHandler(dailyRepo))
	mux.Handle("/v1/monthly", apihttp.NewMonthlyHandler(monthlyRepo))
	mux.Handle("/v1/report", apihttp.NewReportHandler(dailyRepo, monthlyRepo, audit.NewRepository(db)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", apihttp.HealthzHandler{})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Printf("http listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http server error: %v", err)
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
