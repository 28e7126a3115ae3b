// Package session tracks live-subscription handles for activated vendors.
// Every attached handle is released exactly once: on replacement, on explicit
// release, by the idle sweeper, or at shutdown.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"go.uber.org/zap"
)

// ResourceManager owns per-vendor session handles and their idle timers
type ResourceManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	idleTimeout   time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	logger        *zap.Logger

	stopChan  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type session struct {
	release    func()
	lastActive time.Time
}

// Option configures a ResourceManager
type Option func(*ResourceManager)

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(m *ResourceManager) {
		m.now = now
	}
}

// WithoutSweeper disables the background idle sweep. Tests drive the sweep
// explicitly through SweepIdle.
func WithoutSweeper() Option {
	return func(m *ResourceManager) {
		m.sweepInterval = 0
	}
}

// NewResourceManager creates a session manager. Idle sessions are released
// by a background sweep every sweepInterval.
func NewResourceManager(idleTimeout, sweepInterval time.Duration, logger *zap.Logger, opts ...Option) *ResourceManager {
	m := &ResourceManager{
		sessions:      make(map[uuid.UUID]*session),
		idleTimeout:   idleTimeout,
		sweepInterval: sweepInterval,
		now:           time.Now,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sweepInterval > 0 {
		m.wg.Add(1)
		go m.sweepLoop()
	}
	return m
}

// Attach registers the release handle for a vendor. An existing handle for
// the same vendor is released first so the old subscription cannot leak.
func (m *ResourceManager) Attach(vendorID uuid.UUID, release func()) {
	m.mu.Lock()
	prior, hadPrior := m.sessions[vendorID]
	m.sessions[vendorID] = &session{
		release:    release,
		lastActive: m.now(),
	}
	m.mu.Unlock()

	if hadPrior {
		m.invoke(vendorID, prior.release, "replaced")
	}

	m.logger.Debug("session attached",
		zap.String("vendor_id", vendorID.String()),
	)
}

// Release tears down the vendor's session. Releasing a vendor with no
// session is a no-op, so callers need not track attachment state.
func (m *ResourceManager) Release(vendorID uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[vendorID]
	if ok {
		delete(m.sessions, vendorID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	m.invoke(vendorID, s.release, "released")
}

// Touch refreshes the vendor's activity timestamp so the idle sweep does
// not reclaim a session that is still in use.
func (m *ResourceManager) Touch(vendorID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[vendorID]; ok {
		s.lastActive = m.now()
	}
}

// Count returns the number of live sessions
func (m *ResourceManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SweepIdle releases every session idle longer than the configured timeout
// and returns how many were reclaimed.
func (m *ResourceManager) SweepIdle() int {
	m.mu.Lock()
	now := m.now()
	expired := make(map[uuid.UUID]func())
	for vendorID, s := range m.sessions {
		if now.Sub(s.lastActive) >= m.idleTimeout {
			expired[vendorID] = s.release
			delete(m.sessions, vendorID)
		}
	}
	m.mu.Unlock()

	for vendorID, release := range expired {
		m.invoke(vendorID, release, "idle timeout")
	}
	return len(expired)
}

// Shutdown stops the sweeper and releases every remaining session
func (m *ResourceManager) Shutdown() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
	})
	m.wg.Wait()

	m.mu.Lock()
	remaining := make(map[uuid.UUID]func())
	for vendorID, s := range m.sessions {
		remaining[vendorID] = s.release
	}
	m.sessions = make(map[uuid.UUID]*session)
	m.mu.Unlock()

	for vendorID, release := range remaining {
		m.invoke(vendorID, release, "shutdown")
	}
}

func (m *ResourceManager) sweepLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.SweepIdle(); n > 0 {
				m.logger.Info("idle sessions reclaimed", zap.Int("count", n))
			}
		case <-m.stopChan:
			return
		}
	}
}

// invoke runs a release handle, containing any panic so one broken handle
// cannot take down the sweep or shutdown path.
func (m *ResourceManager) invoke(vendorID uuid.UUID, release func(), reason string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("session release panicked",
				zap.String("vendor_id", vendorID.String()),
				zap.Any("panic", r),
			)
		}
	}()

	if release != nil {
		release()
	}
	m.logger.Debug("session torn down",
		zap.String("vendor_id", vendorID.String()),
		zap.String("reason", reason),
	)
}

// Ensure ResourceManager satisfies the application port
var _ onboardingapp.SessionManager = (*ResourceManager)(nil)
