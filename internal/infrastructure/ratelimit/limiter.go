// Package ratelimit provides per-key request limiting for onboarding
// operations. Payment verification and document upload each get their own
// limiter instance with independent limits and windows.
package ratelimit

import (
	"sync"
	"time"

	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
)

// WindowLimiter is an in-memory fixed-window limiter. The window for a key
// opens at its first request; once the limit is reached every further
// request is refused until the window elapses.
type WindowLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	now     func() time.Time

	stopChan  chan struct{}
	closeOnce sync.Once
}

type client struct {
	tokens    int
	lastReset time.Time
}

// Option configures a WindowLimiter
type Option func(*WindowLimiter)

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(l *WindowLimiter) {
		l.now = now
	}
}

// NewWindowLimiter creates a limiter allowing limit requests per window per key
func NewWindowLimiter(limit int, window time.Duration, opts ...Option) *WindowLimiter {
	l := &WindowLimiter{
		clients:  make(map[string]*client),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.cleanupLoop()
	return l
}

// Allow consumes one token for the key and reports whether the request may
// proceed. It never blocks; a refused caller is expected to fail fast.
func (l *WindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, exists := l.clients[key]

	if !exists {
		l.clients[key] = &client{
			tokens:    l.limit - 1,
			lastReset: now,
		}
		return true
	}

	if now.Sub(c.lastReset) >= l.window {
		c.tokens = l.limit - 1
		c.lastReset = now
		return true
	}

	if c.tokens > 0 {
		c.tokens--
		return true
	}

	return false
}

// Remaining returns the number of requests the key has left in its window
func (l *WindowLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, exists := l.clients[key]
	if !exists {
		return l.limit
	}

	if l.now().Sub(c.lastReset) >= l.window {
		return l.limit
	}

	return c.tokens
}

// Limit returns the configured per-window limit
func (l *WindowLimiter) Limit() int {
	return l.limit
}

// Stop halts the background cleanup goroutine. Safe to call more than once.
func (l *WindowLimiter) Stop() {
	l.closeOnce.Do(func() {
		close(l.stopChan)
	})
}

// cleanupLoop drops keys whose window elapsed long ago so idle vendors do
// not accumulate forever.
func (l *WindowLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, c := range l.clients {
				if now.Sub(c.lastReset) > l.window*2 {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		case <-l.stopChan:
			return
		}
	}
}

// Ensure WindowLimiter satisfies the application port
var _ onboardingapp.RateLimiter = (*WindowLimiter)(nil)
