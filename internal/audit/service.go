// Package audit records authentication attempts and prunes them on a schedule.
package audit

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mrlokans/authgate/internal/auth"
	"github.com/mrlokans/authgate/internal/database/audit"
	"github.com/mrlokans/authgate/internal/entities"
)

const writeTimeout = 5 * time.Second

// Options tunes failure reporting. Zero values disable it.
type Options struct {
	FailureThreshold int
	FailureWindow    time.Duration
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger *zap.Logger
	opts   Options
	wg     sync.WaitGroup
	now    func() time.Time
}

var _ auth.AttemptObserver = (*Service)(nil)

func NewService(repo *audit.Repository, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, opts: opts, now: time.Now}
}

// Log records an audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
// The write outlives the request context.
func (s *Service) LogAsync(ctx context.Context, event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()

		if err := s.repo.LogEvent(writeCtx, event); err != nil {
			s.logger.Error("failed to log audit event", zap.String("request_id", event.RequestID), zap.Error(err))
			return
		}
		if event.EventType == entities.AuditEventLogin && event.Status != entities.AuditStatusSuccess {
			s.checkFailures(writeCtx, event.Username)
		}
	}()
}

// Wait blocks until pending background writes finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// ObserveAttempt turns a finished authentication attempt into an audit event.
func (s *Service) ObserveAttempt(ctx context.Context, a auth.Attempt) {
	event := &entities.AuditEvent{
		Username:  a.Username,
		EventType: eventType(a.Strategy),
		Strategy:  a.Strategy,
		RequestID: a.RequestID,
		IPAddress: a.ClientIP,
		UserAgent: truncate(a.UserAgent, 500),
		CreatedAt: s.now(),
	}

	switch a.Outcome.Kind {
	case auth.OutcomeSuccess:
		event.Status = entities.AuditStatusSuccess
		if a.Outcome.User != nil {
			event.UserID = a.Outcome.User.ID
		}
	case auth.OutcomeRejected:
		event.Status = entities.AuditStatusRejected
		event.Reason = truncate(a.Outcome.Reason, 200)
	default:
		event.Status = entities.AuditStatusFailed
		if a.Outcome.Err != nil {
			event.ErrorMsg = truncate(a.Outcome.Err.Error(), 500)
		}
	}

	s.LogAsync(ctx, event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(ctx, s.now().Add(-retention))
}

func (s *Service) checkFailures(ctx context.Context, username string) {
	if s.opts.FailureThreshold <= 0 || username == "" {
		return
	}

	count, err := s.repo.CountRecentFailures(ctx, username, s.now().Add(-s.opts.FailureWindow))
	if err != nil {
		s.logger.Error("failed to count login failures", zap.String("username", username), zap.Error(err))
		return
	}
	if count >= int64(s.opts.FailureThreshold) {
		s.logger.Warn("repeated login failures",
			zap.String("username", username),
			zap.Int64("failures", count),
			zap.Duration("window", s.opts.FailureWindow),
		)
	}
}

func eventType(strategy string) entities.AuditEventType {
	if strategy == auth.StrategyJWT {
		return entities.AuditEventToken
	}
	return entities.AuditEventLogin
}

// truncate shortens a string to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
