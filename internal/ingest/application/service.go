// Package application orchestrates one ingestion run: fetch the hour's CSV,
// reconcile raw rows, then roll the persisted state up hour -> day -> month.
package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	analytics "solar-telemetry/internal/analytics/domain"
	"solar-telemetry/internal/observability/metrics"
	telemetry "solar-telemetry/internal/telemetry/domain"
	"solar-telemetry/internal/timewindow"
)

// Stage names used in logs and metrics.
const (
	StageFetch   = "fetch"
	StageParse   = "parse"
	StageRaw     = "raw"
	StageHourly  = "hourly"
	StageDaily   = "daily"
	StageMonthly = "monthly"
)

// Transfer fetches the remote CSV and disposes of the local copy.
type Transfer interface {
	Fetch(ctx context.Context, remoteDir, filename, localDir string) (string, error)
	RemoveLocal(path string)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }

// PipelineService runs the ETL pipeline. Stages are strictly sequential
// and each aggregation stage reads the committed state of the previous
// one, never in-memory results, so a day or month stays correct even when
// earlier hours were ingested by other runs.
type PipelineService struct {
	transfer Transfer
	parse    func(path string) ([]telemetry.Reading, error)
	readings telemetry.ReadingRepository
	hourly   analytics.HourlyRepository
	daily    analytics.DailyRepository
	monthly  analytics.MonthlyRepository

	remoteBaseDir string
	localDir      string
	clock         Clock
	logger        *log.Logger
}

// NewPipelineService wires a pipeline.
func NewPipelineService(
	transfer Transfer,
	readings telemetry.ReadingRepository,
	hourly analytics.HourlyRepository,
	daily analytics.DailyRepository,
	monthly analytics.MonthlyRepository,
	remoteBaseDir string,
	localDir string,
	clock Clock,
	logger *log.Logger,
) (*PipelineService, error) {
	if transfer == nil || readings == nil || hourly == nil || daily == nil || monthly == nil {
		return nil, errors.New("pipeline: nil dependency")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &PipelineService{
		transfer:      transfer,
		parse:         telemetry.ParseFile,
		readings:      readings,
		hourly:        hourly,
		daily:         daily,
		monthly:       monthly,
		remoteBaseDir: remoteBaseDir,
		localDir:      localDir,
		clock:         clock,
		logger:        logger,
	}, nil
}

// Run executes one full ingestion for the hour preceding now.
// A transfer or parse failure aborts the run before any write; a store
// failure aborts the remaining stages so downstream aggregates are never
// derived from missing upstream state.
func (s *PipelineService) Run(ctx context.Context) error {
	started := s.clock.Now()
	win := timewindow.Resolve(started)
	s.logf("run started: window=%s", win.HourKey)

	err := s.run(ctx, win)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		s.logf("run failed: window=%s err=%v", win.HourKey, err)
	} else {
		s.logf("run finished: window=%s", win.HourKey)
	}
	metrics.ObserveRun(result, s.clock.Now().Sub(started))
	return err
}

func (s *PipelineService) run(ctx context.Context, win timewindow.Window) error {
	localPath, err := s.fetch(ctx, win)
	if err != nil {
		metrics.IncTransferFailure()
		return fmt.Errorf("%s: %w", StageFetch, err)
	}

	readings, err := s.stageParse(localPath)
	if err != nil {
		return fmt.Errorf("%s: %w", StageParse, err)
	}

	if err := s.reconcileRaw(ctx, win, readings); err != nil {
		return fmt.Errorf("%s: %w", StageRaw, err)
	}
	if err := s.aggregateHourly(ctx, win, readings); err != nil {
		return fmt.Errorf("%s: %w", StageHourly, err)
	}
	if err := s.aggregateDaily(ctx, win); err != nil {
		return fmt.Errorf("%s: %w", StageDaily, err)
	}
	if err := s.aggregateMonthly(ctx, win); err != nil {
		return fmt.Errorf("%s: %w", StageMonthly, err)
	}

	s.transfer.RemoveLocal(localPath)
	return nil
}

func (s *PipelineService) fetch(ctx context.Context, win timewindow.Window) (string, error) {
	started := s.clock.Now()
	localPath, err := s.transfer.Fetch(ctx, win.RemoteDir(s.remoteBaseDir), win.Filename(), s.localDir)
	s.observeStage(StageFetch, started, err)
	return localPath, err
}

func (s *PipelineService) stageParse(localPath string) ([]telemetry.Reading, error) {
	started := s.clock.Now()
	readings, err := s.parse(localPath)
	if err == nil && len(readings) == 0 {
		err = errors.New("empty csv file")
	}
	s.observeStage(StageParse, started, err)
	return readings, err
}

func (s *PipelineService) reconcileRaw(ctx context.Context, win timewindow.Window, readings []telemetry.Reading) error {
	started := s.clock.Now()
	var err error
	for _, reading := range readings {
		if err = s.readings.Reconcile(ctx, reading, win.ObservedAt(reading.Minute())); err != nil {
			break
		}
		metrics.AddRowsReconciled(1)
	}
	s.observeStage(StageRaw, started, err)
	return err
}

func (s *PipelineService) aggregateHourly(ctx context.Context, win timewindow.Window, readings []telemetry.Reading) error {
	started := s.clock.Now()
	err := func() error {
		record, err := analytics.BuildHourly(readings, win.DayInt, win.HourInt, win.Start)
		if err != nil {
			return err
		}
		return s.hourly.Upsert(ctx, record)
	}()
	s.observeStage(StageHourly, started, err)
	return err
}

func (s *PipelineService) aggregateDaily(ctx context.Context, win timewindow.Window) error {
	started := s.clock.Now()
	err := func() error {
		hours, err := s.hourly.ListByDay(ctx, win.DayInt)
		if err != nil {
			return err
		}
		record, err := analytics.RollupDay(win.DayInt, hours)
		if err != nil {
			return err
		}
		return s.daily.Upsert(ctx, record)
	}()
	s.observeStage(StageDaily, started, err)
	return err
}

func (s *PipelineService) aggregateMonthly(ctx context.Context, win timewindow.Window) error {
	started := s.clock.Now()
	err := func() error {
		days, err := s.daily.ListByMonth(ctx, win.MonthInt)
		if err != nil {
			return err
		}
		record, err := analytics.RollupMonth(win.MonthInt, days)
		if err != nil {
			return err
		}
		return s.monthly.Upsert(ctx, record)
	}()
	s.observeStage(StageMonthly, started, err)
	return err
}

func (s *PipelineService) observeStage(stage string, started time.Time, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveStage(stage, result, s.clock.Now().Sub(started))
}

func (s *PipelineService) logf(format string, v ...any) {
	if s.logger != nil {
		s.logger.Printf(format, v...)
	}
}
