// File: internal/services/usage/service.go
package usage

import (
	"context"
	"time"

	"github.com/coreframe-ai/coreframe-server/internal/repository/user"
)

// Logger defines the logging interface used by the usage gate.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Service is the admission-control gate consulted before any completion call.
// Counter updates are read-then-increment, so concurrent requests from one
// user can under-count; acceptable for an approximate rate limit, not for a
// billing-grade counter.
type Service struct {
	config   *Config
	userRepo user.UserRepository
	logger   Logger
	now      func() time.Time
}

func NewService(config *Config, userRepo user.UserRepository, logger Logger) *Service {
	return &Service{
		config:   config,
		userRepo: userRepo,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Check raises a LimitExceededError when the caller has no remaining quota
// for the model's tier. A failing counter read fails open: the request is
// admitted and the failure logged, favoring availability.
func (s *Service) Check(ctx context.Context, userID, model string, isAuthenticated bool) error {
	if s.config.IsRestricted(model) {
		if !isAuthenticated {
			return NewAuthRequiredError(userID, model)
		}
		return s.checkRestricted(ctx, userID, model)
	}
	return s.checkStandard(ctx, userID, model, isAuthenticated)
}

// Increment records one admitted message against the caller's tier quota.
// Failures are logged and swallowed; counting must never break a chat.
func (s *Service) Increment(ctx context.Context, userID, model string, isAuthenticated bool) {
	if s.config.IsRestricted(model) {
		if !isAuthenticated {
			return
		}
		if err := s.userRepo.IncrementProUsage(ctx, userID); err != nil {
			s.logger.Warn("failed to increment restricted usage", "user_id", userID, "error", err)
		}
		return
	}
	if err := s.userRepo.IncrementMessageUsage(ctx, userID); err != nil {
		s.logger.Warn("failed to increment usage", "user_id", userID, "error", err)
	}
}

// CheckMemory gates memory creation against the daily memory quota.
func (s *Service) CheckMemory(ctx context.Context, userID string) error {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("memory usage check failed open", "user_id", userID, "error", err)
		return nil
	}

	count := u.DailyMemoryCount
	if s.isNewDay(u.DailyMemoryReset) {
		count = 0
		if err := s.userRepo.ResetDailyMemoryUsage(ctx, userID, s.now()); err != nil {
			s.logger.Warn("could not reset daily memory count", "user_id", userID, "error", err)
		}
	}

	if count >= s.config.DailyMemoryLimit {
		return NewLimitExceededError(userID, "", "Daily memory limit reached.")
	}
	return nil
}

// IncrementMemory records one created memory against the daily memory quota.
func (s *Service) IncrementMemory(ctx context.Context, userID string) {
	if err := s.userRepo.IncrementMemoryUsage(ctx, userID); err != nil {
		s.logger.Warn("failed to increment memory usage", "user_id", userID, "error", err)
	}
}

func (s *Service) checkStandard(ctx context.Context, userID, model string, isAuthenticated bool) error {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("usage check failed open", "user_id", userID, "error", err)
		return nil
	}

	dailyLimit := s.config.AuthenticatedDailyLimit
	if u.Anonymous || !isAuthenticated {
		dailyLimit = s.config.AnonymousDailyLimit
	}

	count := u.DailyMessageCount
	if s.isNewDay(u.DailyReset) {
		count = 0
		if err := s.userRepo.ResetDailyUsage(ctx, userID, s.now()); err != nil {
			s.logger.Warn("could not reset daily count", "user_id", userID, "error", err)
		}
	}

	if count >= dailyLimit {
		return NewLimitExceededError(userID, model, "Daily message limit reached.")
	}
	return nil
}

func (s *Service) checkRestricted(ctx context.Context, userID, model string) error {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("restricted usage check failed open", "user_id", userID, "error", err)
		return nil
	}

	count := u.DailyProMsgCount
	if s.isNewDay(u.DailyProReset) {
		count = 0
		if err := s.userRepo.ResetDailyProUsage(ctx, userID, s.now()); err != nil {
			s.logger.Warn("could not reset restricted daily count", "user_id", userID, "error", err)
		}
	}

	if count >= s.config.RestrictedDailyLimit {
		return NewLimitExceededError(userID, model, "Daily limit for this model reached.")
	}
	return nil
}

// isNewDay reports whether the UTC calendar day has rolled over since the
// last recorded reset.
func (s *Service) isNewDay(lastReset *time.Time) bool {
	if lastReset == nil {
		return true
	}
	now := s.now()
	last := lastReset.UTC()
	return now.Year() != last.Year() || now.Month() != last.Month() || now.Day() != last.Day()
}
