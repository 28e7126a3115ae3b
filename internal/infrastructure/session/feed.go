package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const feedBuffer = 16

// FeedHub fans onboarding events out to per-vendor live feeds. It is
// registered on the event bus as a handler and hands out subscriptions
// through OpenFeed; the release function returned there is what the
// session manager holds on to.
type FeedHub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*feedSub
	logger *zap.Logger
}

type feedSub struct {
	ch   chan shared.DomainEvent
	once sync.Once
}

func (s *feedSub) close() {
	s.once.Do(func() {
		close(s.ch)
	})
}

// NewFeedHub creates a feed hub
func NewFeedHub(logger *zap.Logger) *FeedHub {
	return &FeedHub{
		subs:   make(map[uuid.UUID]*feedSub),
		logger: logger,
	}
}

// OpenFeed opens the live feed for a vendor and returns its release
// function. A second open for the same vendor replaces the first; the old
// channel is closed.
func (h *FeedHub) OpenFeed(ctx context.Context, vendorID uuid.UUID) (func(), error) {
	sub := &feedSub{ch: make(chan shared.DomainEvent, feedBuffer)}

	h.mu.Lock()
	prior := h.subs[vendorID]
	h.subs[vendorID] = sub
	h.mu.Unlock()

	if prior != nil {
		prior.close()
	}

	release := func() {
		h.mu.Lock()
		if h.subs[vendorID] == sub {
			delete(h.subs, vendorID)
		}
		h.mu.Unlock()
		sub.close()
	}
	return release, nil
}

// Events returns the vendor's feed channel, or nil when no feed is open
func (h *FeedHub) Events(vendorID uuid.UUID) <-chan shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[vendorID]; ok {
		return sub.ch
	}
	return nil
}

// EventTypes returns the event types the hub relays
func (h *FeedHub) EventTypes() []string {
	return []string{
		onboarding.EventTypeApplicationStateChanged,
		onboarding.EventTypePaymentVerified,
		onboarding.EventTypeRiskAssessed,
	}
}

// Handle routes an event to its vendor's feed. A full feed drops the
// event rather than blocking the publisher.
func (h *FeedHub) Handle(ctx context.Context, event shared.DomainEvent) error {
	vendorID, ok := vendorOf(event)
	if !ok {
		return nil
	}

	h.mu.Lock()
	sub, found := h.subs[vendorID]
	h.mu.Unlock()
	if !found {
		return nil
	}

	select {
	case sub.ch <- event:
	default:
		h.logger.Warn("live feed full, event dropped",
			zap.String("vendor_id", vendorID.String()),
			zap.String("event_type", event.EventType()),
		)
	}
	return nil
}

func vendorOf(event shared.DomainEvent) (uuid.UUID, bool) {
	var raw string
	switch e := event.(type) {
	case *onboarding.ApplicationStateChangedEvent:
		raw = e.VendorID
	case *onboarding.PaymentVerifiedEvent:
		raw = e.VendorID
	case *onboarding.RiskAssessedEvent:
		raw = e.VendorID
	default:
		return uuid.Nil, false
	}

	vendorID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return vendorID, true
}

// Ensure FeedHub satisfies both the feed port and the bus handler contract
var (
	_ onboardingapp.LiveFeedSource = (*FeedHub)(nil)
	_ shared.EventHandler          = (*FeedHub)(nil)
)
