package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/souqly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DedupMetrics tracks delivery deduplication statistics
type DedupMetrics struct {
	EventsProcessed atomic.Int64
	EventsDuplicate atomic.Int64
	EventsFailed    atomic.Int64
}

// DedupStats is a snapshot of deduplication metrics
type DedupStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// Stats returns a snapshot of the current metrics
func (m *DedupMetrics) Stats() DedupStats {
	return DedupStats{
		EventsProcessed: m.EventsProcessed.Load(),
		EventsDuplicate: m.EventsDuplicate.Load(),
		EventsFailed:    m.EventsFailed.Load(),
	}
}

// DedupHandler wraps an EventHandler so each event ID is handled at most once
// within the retention window. Processed IDs are recorded in an
// IdempotencyStore after the wrapped handler succeeds.
type DedupHandler struct {
	handler   shared.EventHandler
	store     shared.IdempotencyStore
	retention time.Duration
	logger    *zap.Logger
	metrics   *DedupMetrics
}

// DedupHandlerOption is a functional option for DedupHandler
type DedupHandlerOption func(*DedupHandler)

// WithDedupRetention sets how long processed event IDs are remembered
func WithDedupRetention(retention time.Duration) DedupHandlerOption {
	return func(h *DedupHandler) {
		h.retention = retention
	}
}

// WithDedupMetrics sets the metrics collector
func WithDedupMetrics(metrics *DedupMetrics) DedupHandlerOption {
	return func(h *DedupHandler) {
		h.metrics = metrics
	}
}

// NewDedupHandler creates a deduplicating handler wrapper
func NewDedupHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...DedupHandlerOption,
) *DedupHandler {
	h := &DedupHandler{
		handler:   handler,
		store:     store,
		retention: 24 * time.Hour,
		logger:    logger,
		metrics:   &DedupMetrics{},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// EventTypes returns the event types the wrapped handler is interested in
func (h *DedupHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless its ID was already handled.
// A store lookup failure is logged and the event is processed anyway;
// a duplicate delivery is less harmful than a dropped one.
func (h *DedupHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	eventID := event.EventID().String()

	_, found, err := h.store.Get(ctx, dedupKey(eventID))
	if err != nil {
		h.logger.Warn("dedup lookup failed, processing anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if found {
		h.metrics.EventsDuplicate.Add(1)
		h.logger.Debug("duplicate event detected, skipping",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.metrics.EventsFailed.Add(1)
		h.logger.Error("event handler failed",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		// The ID is not recorded on failure so a redelivery gets a retry
		return err
	}

	if err := h.store.Put(ctx, dedupKey(eventID), []byte(event.EventType()), h.retention); err != nil {
		h.logger.Warn("failed to record processed event",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}

	h.metrics.EventsProcessed.Add(1)
	return nil
}

// GetMetrics returns the metrics for this handler
func (h *DedupHandler) GetMetrics() *DedupMetrics {
	return h.metrics
}

func dedupKey(eventID string) string {
	return "event:" + eventID
}

// Ensure DedupHandler implements EventHandler
var _ shared.EventHandler = (*DedupHandler)(nil)
