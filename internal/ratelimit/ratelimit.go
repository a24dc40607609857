// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds rate limiting configuration for one endpoint class.
type Config struct {
	WindowSize    time.Duration
	MaxAttempts   int
	CleanupPeriod time.Duration
	BanDuration   time.Duration
}

// DefaultAuthConfig returns the limits applied to login and registration.
func DefaultAuthConfig() *Config {
	return &Config{
		WindowSize:    15 * time.Minute,
		MaxAttempts:   5,
		CleanupPeriod: 30 * time.Minute,
		BanDuration:   30 * time.Minute,
	}
}

type attemptRecord struct {
	count     int
	firstSeen time.Time
	bannedAt  *time.Time
}

// Status describes the outcome of one admission check.
type Status struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// MemoryRateLimiter tracks attempts per identifier in memory. Exceeding the
// window limit bans the identifier for BanDuration.
type MemoryRateLimiter struct {
	config   *Config
	attempts map[string]*attemptRecord
	mu       sync.Mutex
	stopCh   chan struct{}
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:   config,
		attempts: make(map[string]*attemptRecord),
		stopCh:   make(chan struct{}),
	}
	go limiter.cleanupLoop()
	return limiter
}

// Allow records one attempt for the identifier and reports whether it may
// proceed.
func (rl *MemoryRateLimiter) Allow(identifier string) Status {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	record, exists := rl.attempts[identifier]
	if !exists {
		rl.attempts[identifier] = &attemptRecord{count: 1, firstSeen: now}
		return Status{Allowed: true, Remaining: rl.config.MaxAttempts - 1}
	}

	if record.bannedAt != nil {
		elapsed := now.Sub(*record.bannedAt)
		if elapsed < rl.config.BanDuration {
			return Status{Allowed: false, RetryAfter: rl.config.BanDuration - elapsed}
		}
	}

	if now.Sub(record.firstSeen) > rl.config.WindowSize {
		record.count = 1
		record.firstSeen = now
		record.bannedAt = nil
		return Status{Allowed: true, Remaining: rl.config.MaxAttempts - 1}
	}

	record.count++
	if record.count > rl.config.MaxAttempts {
		banTime := now
		record.bannedAt = &banTime
		return Status{Allowed: false, RetryAfter: rl.config.BanDuration}
	}

	return Status{Allowed: true, Remaining: rl.config.MaxAttempts - record.count}
}

// RecordSuccess clears the identifier's attempt history after a successful
// authentication.
func (rl *MemoryRateLimiter) RecordSuccess(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, identifier)
}

// Close stops the cleanup goroutine.
func (rl *MemoryRateLimiter) Close() {
	close(rl.stopCh)
}

func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for identifier, record := range rl.attempts {
		windowExpired := now.Sub(record.firstSeen) > rl.config.WindowSize
		banExpired := record.bannedAt != nil && now.Sub(*record.bannedAt) > rl.config.BanDuration
		if (windowExpired && record.bannedAt == nil) || banExpired {
			delete(rl.attempts, identifier)
		}
	}
}

// GetClientIP extracts the real client IP, honoring proxy headers.
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
