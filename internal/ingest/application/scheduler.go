package application

import (
	"context"
	"log"
	"time"
)

// Scheduler triggers one ingestion run at a fixed minute past every hour.
// Runs execute inline in the loop, so a slow run delays the next trigger
// instead of overlapping it.
type Scheduler struct {
	service      *PipelineService
	minuteOfHour int
	logger       *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(service *PipelineService, minuteOfHour int, logger *log.Logger) *Scheduler {
	return &Scheduler{
		service:      service,
		minuteOfHour: minuteOfHour,
		logger:       logger,
	}
}

// Start begins the scheduler loop and blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.service == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	var lastRun time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Minute() != s.minuteOfHour {
				continue
			}
			if now.Sub(lastRun) < time.Hour-time.Minute {
				continue
			}
			lastRun = now
			if err := s.service.Run(ctx); err != nil && s.logger != nil {
				s.logger.Printf("scheduled run error: %v", err)
			}
		}
	}
}
