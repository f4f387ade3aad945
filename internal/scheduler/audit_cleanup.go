package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AuditEventCleaner provides the ability to delete old audit events.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditCleanupConfig holds the schedule and how long events are kept.
type AuditCleanupConfig struct {
	Schedule      string
	RetentionDays int
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a 5-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// AuditCleanupScheduler periodically prunes audit events past retention.
type AuditCleanupScheduler struct {
	cleaner AuditEventCleaner
	config  AuditCleanupConfig
	logger  *zap.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewAuditCleanupScheduler(cleaner AuditEventCleaner, cfg AuditCleanupConfig, logger *zap.Logger) *AuditCleanupScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditCleanupScheduler{
		cleaner: cleaner,
		config:  cfg,
		logger:  logger,
		cron:    cron.New(cron.WithParser(cronParser)),
	}
}

// Start schedules the cleanup job. A non-positive retention keeps events forever
// and leaves the scheduler idle. The scheduler stops when ctx is cancelled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.config.RetentionDays <= 0 {
		s.logger.Info("audit cleanup disabled: retention is unlimited")
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("audit cleanup scheduled",
		zap.String("schedule", s.config.Schedule),
		zap.Int("retention_days", s.config.RetentionDays),
	)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	s.logger.Info("audit cleanup stopped")
}

// RunNow prunes expired events immediately and returns how many were removed.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) (int64, error) {
	retention := time.Duration(s.config.RetentionDays) * 24 * time.Hour

	deleted, err := s.cleaner.DeleteOldEvents(ctx, retention)
	if err != nil {
		s.logger.Error("audit cleanup failed", zap.Error(err))
		return 0, fmt.Errorf("cleanup audit events: %w", err)
	}

	s.logger.Info("audit cleanup finished",
		zap.Int64("deleted", deleted),
		zap.Int("retention_days", s.config.RetentionDays),
	)
	return deleted, nil
}

// IsRunning returns whether the scheduler is active
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next cleanup will occur
func (s *AuditCleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
