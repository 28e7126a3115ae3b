package notification

import (
	"context"
	"fmt"

	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SecurityAlertHandler escalates security violation events to the
// operations team. Spoofed signatures and malware hits must reach a human
// even when the offending request was already rejected.
type SecurityAlertHandler struct {
	notifier onboardingapp.Notifier
	logger   *zap.Logger
}

// NewSecurityAlertHandler creates the handler
func NewSecurityAlertHandler(notifier onboardingapp.Notifier, logger *zap.Logger) *SecurityAlertHandler {
	return &SecurityAlertHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *SecurityAlertHandler) EventTypes() []string {
	return []string{onboarding.EventTypeSecurityViolation}
}

// Handle forwards the violation to the admin channel
func (h *SecurityAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	violation, ok := event.(*onboarding.SecurityViolationEvent)
	if !ok {
		h.logger.Warn("unexpected event payload",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	subject := fmt.Sprintf("Security violation: %s", violation.Kind)
	body := fmt.Sprintf("Vendor %s: %s", violation.VendorID, violation.Detail)
	return h.notifier.NotifyAdmins(ctx, subject, body)
}

// Ensure SecurityAlertHandler implements EventHandler
var _ shared.EventHandler = (*SecurityAlertHandler)(nil)
