package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor purges stale import sessions on a cron schedule.
type Janitor struct {
	mu sync.Mutex

	service *Service
	logger  *slog.Logger

	// cron parser for validating/parsing the purge schedule
	parser cron.Parser

	schedule string
	maxAge   time.Duration

	// How often the loop checks whether the schedule is due.
	checkInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJanitor creates a janitor that removes sessions idle longer than
// maxAge whenever the cron schedule fires.
func NewJanitor(service *Service, schedule string, maxAge time.Duration) *Janitor {
	return &Janitor{
		service:       service,
		logger:        slog.Default(),
		parser:        cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		schedule:      schedule,
		maxAge:        maxAge,
		checkInterval: time.Minute,
	}
}

// WithLogger sets a custom logger.
func (j *Janitor) WithLogger(logger *slog.Logger) *Janitor {
	j.logger = logger
	return j
}

// Start begins the janitor's background loop.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.ctx != nil {
		return fmt.Errorf("janitor already started")
	}

	if _, err := j.parser.Parse(j.schedule); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", j.schedule, err)
	}

	j.ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.loop()

	j.logger.Info("session janitor started",
		slog.String("schedule", j.schedule),
		slog.Duration("session_ttl", j.maxAge))

	return nil
}

// Stop stops the janitor.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.mu.Unlock()

	j.wg.Wait()

	j.mu.Lock()
	j.ctx = nil
	j.cancel = nil
	j.mu.Unlock()

	j.logger.Info("session janitor stopped")
}

func (j *Janitor) loop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			if j.isDue() {
				// PurgeStale logs its own result.
				j.service.PurgeStale(j.maxAge)
			}
		}
	}
}

// isDue checks if the purge schedule is due for execution.
// The schedule is due if the next run time falls within the check interval.
func (j *Janitor) isDue() bool {
	schedule, err := j.parser.Parse(j.schedule)
	if err != nil {
		j.logger.Warn("invalid cron expression", slog.String("cron", j.schedule), slog.Any("error", err))
		return false
	}

	now := time.Now()
	next := schedule.Next(now.Add(-j.checkInterval))

	return next.Before(now) || next.Equal(now)
}
