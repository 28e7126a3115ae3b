package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/souqly/backend/internal/domain/shared"
	"github.com/souqly/backend/internal/infrastructure/event"
	"github.com/souqly/backend/internal/infrastructure/session"
	"go.uber.org/zap"
)

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// FeedHandler streams onboarding lifecycle events to the authenticated
// vendor over Server-Sent Events. Each vendor holds at most one live feed;
// the session manager owns the release handle so idle feeds are reclaimed.
type FeedHandler struct {
	BaseHandler
	hub        *session.FeedHub
	sessions   *session.ResourceManager
	serializer *event.EventSerializer
	logger     *zap.Logger
	heartbeat  time.Duration
	maxClients int
}

// FeedOption is a functional option for configuring the handler
type FeedOption func(*FeedHandler)

// WithFeedLogger sets the logger for the handler
func WithFeedLogger(logger *zap.Logger) FeedOption {
	return func(h *FeedHandler) {
		h.logger = logger
	}
}

// WithFeedHeartbeat sets the heartbeat interval
func WithFeedHeartbeat(interval time.Duration) FeedOption {
	return func(h *FeedHandler) {
		h.heartbeat = interval
	}
}

// WithFeedMaxClients sets the maximum number of concurrent feeds
func WithFeedMaxClients(max int) FeedOption {
	return func(h *FeedHandler) {
		h.maxClients = max
	}
}

// NewFeedHandler creates a new live feed handler. Events are encoded with
// the serializer so the stream carries the same wire format as every other
// consumer of the event registry.
func NewFeedHandler(hub *session.FeedHub, sessions *session.ResourceManager, serializer *event.EventSerializer, opts ...FeedOption) *FeedHandler {
	h := &FeedHandler{
		hub:        hub,
		sessions:   sessions,
		serializer: serializer,
		logger:     zap.NewNop(),
		heartbeat:  30 * time.Second,
		maxClients: 10000,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Stream godoc
//
//	@Summary		Subscribe to application updates via SSE
//	@Description	Establishes a Server-Sent Events connection streaming the vendor's onboarding events
//	@Tags			onboarding
//	@Produce		text/event-stream
//	@Success		200	{string}	string	"SSE stream"
//	@Failure		401	{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure		503	{object}	dto.Response{error=dto.ErrorInfo}
//	@Security		BearerAuth
//	@Router			/applications/feed [get]
func (h *FeedHandler) Stream(c *gin.Context) {
	vendorID, err := getVendorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if h.maxClients > 0 && h.sessions.Count() >= h.maxClients {
		c.JSON(503, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MAX_CONNECTIONS_REACHED",
				"message": "Maximum number of live feeds reached",
			},
		})
		return
	}

	// Set SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	release, err := h.hub.OpenFeed(c.Request.Context(), vendorID)
	if err != nil {
		h.InternalError(c, "Failed to open feed")
		return
	}

	// The session manager owns the release handle from here on. Opening a
	// second feed for the same vendor replaces this one, closing its channel.
	h.sessions.Attach(vendorID, release)
	events := h.hub.Events(vendorID)

	defer h.sessions.Release(vendorID)

	h.logger.Info("live feed connected",
		zap.String("vendor_id", vendorID.String()),
	)

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"vendor_id":%q,"timestamp":%d}`, vendorID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("live feed disconnected",
				zap.String("vendor_id", vendorID.String()))
			return
		case <-ticker.C:
			h.sessions.Touch(vendorID)
			h.sendEvent(c.Writer, SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
			c.Writer.Flush()
		case evt, ok := <-events:
			if !ok {
				// Feed replaced or released elsewhere
				h.logger.Info("live feed closed",
					zap.String("vendor_id", vendorID.String()))
				return
			}
			h.sessions.Touch(vendorID)
			msg, err := h.toSSEMessage(evt)
			if err != nil {
				h.logger.Error("failed to encode feed event",
					zap.String("event_type", evt.EventType()),
					zap.Error(err))
				continue
			}
			h.sendEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// toSSEMessage converts a domain event to an SSE message
func (h *FeedHandler) toSSEMessage(evt shared.DomainEvent) (SSEMessage, error) {
	data, err := h.serializer.Serialize(evt)
	if err != nil {
		return SSEMessage{}, err
	}
	return SSEMessage{
		Event: evt.EventType(),
		Data:  string(data),
		ID:    evt.EventID().String(),
	}, nil
}

// sendEvent writes an SSE event to the response writer
func (h *FeedHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
