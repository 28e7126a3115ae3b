// Package notification delivers out-of-band messages to vendors and the
// operations team. Delivery is best effort; the onboarding flow never
// depends on a notification having been sent.
package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"
	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the structured log. It stands in for
// the email/SMS channel in development and keeps a bounded in-memory tail
// so the admin API can show recent deliveries.
type LogNotifier struct {
	logger *zap.Logger

	mu     sync.Mutex
	recent []Delivery
	limit  int
}

// Delivery is one recorded notification
type Delivery struct {
	VendorID string `json:"vendor_id,omitempty"`
	Audience string `json:"audience"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// NewLogNotifier creates a log-backed notifier keeping the last limit
// deliveries in memory.
func NewLogNotifier(logger *zap.Logger, limit int) *LogNotifier {
	if limit <= 0 {
		limit = 100
	}
	return &LogNotifier{
		logger: logger,
		limit:  limit,
	}
}

// NotifyVendor records a message addressed to one vendor
func (n *LogNotifier) NotifyVendor(ctx context.Context, vendorID uuid.UUID, subject, body string) error {
	n.logger.Info("vendor notification",
		zap.String("vendor_id", vendorID.String()),
		zap.String("subject", subject),
	)
	n.record(Delivery{
		VendorID: vendorID.String(),
		Audience: "vendor",
		Subject:  subject,
		Body:     body,
	})
	return nil
}

// NotifyAdmins records a message addressed to the operations team
func (n *LogNotifier) NotifyAdmins(ctx context.Context, subject, body string) error {
	n.logger.Warn("admin notification",
		zap.String("subject", subject),
	)
	n.record(Delivery{
		Audience: "admins",
		Subject:  subject,
		Body:     body,
	})
	return nil
}

// Recent returns the most recent deliveries, newest last
func (n *LogNotifier) Recent() []Delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Delivery(nil), n.recent...)
}

func (n *LogNotifier) record(d Delivery) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recent = append(n.recent, d)
	if len(n.recent) > n.limit {
		n.recent = n.recent[len(n.recent)-n.limit:]
	}
}

// Ensure LogNotifier satisfies the application port
var _ onboardingapp.Notifier = (*LogNotifier)(nil)
