// File: internal/services/usage/service_test.go
package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
)

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

type fakeUserRepo struct {
	user    *domain.User
	findErr error

	resets           int
	proResets        int
	memoryResets     int
	increments       int
	proIncrements    int
	memoryIncrements int
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}
func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.user, nil
}
func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return f.user, nil
}
func (f *fakeUserRepo) ResetDailyUsage(ctx context.Context, userID string, now time.Time) error {
	f.resets++
	return nil
}
func (f *fakeUserRepo) ResetDailyProUsage(ctx context.Context, userID string, now time.Time) error {
	f.proResets++
	return nil
}
func (f *fakeUserRepo) ResetDailyMemoryUsage(ctx context.Context, userID string, now time.Time) error {
	f.memoryResets++
	return nil
}
func (f *fakeUserRepo) IncrementMessageUsage(ctx context.Context, userID string) error {
	f.increments++
	return nil
}
func (f *fakeUserRepo) IncrementProUsage(ctx context.Context, userID string) error {
	f.proIncrements++
	return nil
}
func (f *fakeUserRepo) IncrementMemoryUsage(ctx context.Context, userID string) error {
	f.memoryIncrements++
	return nil
}

func newTestService(repo *fakeUserRepo, now time.Time) *Service {
	svc := NewService(DefaultConfig(), repo, noopLogger{})
	svc.now = func() time.Time { return now }
	return svc
}

func TestRestrictedModelRequiresAuthentication(t *testing.T) {
	repo := &fakeUserRepo{user: &domain.User{ID: "u1"}}
	svc := newTestService(repo, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	err := svc.Check(context.Background(), "u1", "gpt-4o", false)

	require.Error(t, err)
	var limitErr *LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, ErrTypeAuthRequired, limitErr.Type)
}

func TestAnonymousLimitLowerThanAuthenticated(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reset := now.Add(-time.Hour)

	repo := &fakeUserRepo{user: &domain.User{
		ID:                "u1",
		Anonymous:         true,
		DailyMessageCount: DefaultConfig().AnonymousDailyLimit,
		DailyReset:        &reset,
	}}
	svc := newTestService(repo, now)

	err := svc.Check(context.Background(), "u1", "gpt-4o-mini", false)
	assert.True(t, IsLimitExceeded(err))

	// The same count is fine for an authenticated account.
	repo.user.Anonymous = false
	assert.NoError(t, svc.Check(context.Background(), "u1", "gpt-4o-mini", true))
}

func TestQuotaResetsOnUTCCalendarRollover(t *testing.T) {
	// 23:30 on June 1st, counter exhausted.
	lastReset := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	repo := &fakeUserRepo{user: &domain.User{
		ID:                "u1",
		DailyMessageCount: DefaultConfig().AuthenticatedDailyLimit,
		DailyReset:        &lastReset,
	}}

	// Still the same UTC day: rejected.
	svc := newTestService(repo, time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC))
	assert.True(t, IsLimitExceeded(svc.Check(context.Background(), "u1", "gpt-4o-mini", true)))
	assert.Zero(t, repo.resets)

	// One minute past midnight UTC: the day rolled over, the count resets.
	svc = newTestService(repo, time.Date(2025, 6, 2, 0, 1, 0, 0, time.UTC))
	assert.NoError(t, svc.Check(context.Background(), "u1", "gpt-4o-mini", true))
	assert.Equal(t, 1, repo.resets)
}

func TestNilResetTimestampCountsAsNewDay(t *testing.T) {
	repo := &fakeUserRepo{user: &domain.User{
		ID:                "u1",
		DailyMessageCount: 9999,
		DailyReset:        nil,
	}}
	svc := newTestService(repo, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	assert.NoError(t, svc.Check(context.Background(), "u1", "gpt-4o-mini", true))
	assert.Equal(t, 1, repo.resets)
}

func TestRestrictedTierHasItsOwnQuota(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reset := now.Add(-time.Hour)

	repo := &fakeUserRepo{user: &domain.User{
		ID:               "u1",
		DailyProMsgCount: DefaultConfig().RestrictedDailyLimit,
		DailyProReset:    &reset,
	}}
	svc := newTestService(repo, now)

	// Restricted quota exhausted.
	assert.True(t, IsLimitExceeded(svc.Check(context.Background(), "u1", "gpt-4o", true)))

	// Standard tier is unaffected.
	assert.NoError(t, svc.Check(context.Background(), "u1", "gpt-4o-mini", true))
}

func TestCheckFailsOpenOnRepositoryError(t *testing.T) {
	repo := &fakeUserRepo{findErr: errors.New("database error finding user")}
	svc := newTestService(repo, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	assert.NoError(t, svc.Check(context.Background(), "u1", "gpt-4o-mini", true))
	assert.NoError(t, svc.Check(context.Background(), "u1", "gpt-4o", true))
}

func TestIncrementRoutesByTier(t *testing.T) {
	repo := &fakeUserRepo{user: &domain.User{ID: "u1"}}
	svc := newTestService(repo, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc.Increment(context.Background(), "u1", "gpt-4o-mini", true)
	svc.Increment(context.Background(), "u1", "gpt-4o", true)
	svc.Increment(context.Background(), "u1", "gpt-4o", false)

	assert.Equal(t, 1, repo.increments)
	assert.Equal(t, 1, repo.proIncrements, "unauthenticated restricted traffic is never counted")
}

func TestMemoryQuota(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reset := now.Add(-time.Hour)

	repo := &fakeUserRepo{user: &domain.User{
		ID:               "u1",
		DailyMemoryCount: DefaultConfig().DailyMemoryLimit,
		DailyMemoryReset: &reset,
	}}
	svc := newTestService(repo, now)

	assert.True(t, IsLimitExceeded(svc.CheckMemory(context.Background(), "u1")))

	repo.user.DailyMemoryCount = 0
	assert.NoError(t, svc.CheckMemory(context.Background(), "u1"))

	svc.IncrementMemory(context.Background(), "u1")
	assert.Equal(t, 1, repo.memoryIncrements)
}
