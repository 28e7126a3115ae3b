package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogNotifier_NotifyVendor(t *testing.T) {
	n := NewLogNotifier(zap.NewNop(), 10)
	vendorID := uuid.New()

	err := n.NotifyVendor(context.Background(), vendorID, "Application approved", "Welcome to Souqly")
	require.NoError(t, err)

	recent := n.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, vendorID.String(), recent[0].VendorID)
	assert.Equal(t, "vendor", recent[0].Audience)
	assert.Equal(t, "Application approved", recent[0].Subject)
}

func TestLogNotifier_NotifyAdmins(t *testing.T) {
	n := NewLogNotifier(zap.NewNop(), 10)

	err := n.NotifyAdmins(context.Background(), "Manual review required", "Risk score 75")
	require.NoError(t, err)

	recent := n.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "admins", recent[0].Audience)
	assert.Empty(t, recent[0].VendorID)
}

func TestLogNotifier_RecentIsBounded(t *testing.T) {
	n := NewLogNotifier(zap.NewNop(), 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, n.NotifyAdmins(context.Background(), fmt.Sprintf("subject %d", i), ""))
	}

	recent := n.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "subject 2", recent[0].Subject)
	assert.Equal(t, "subject 4", recent[2].Subject)
}

func TestSecurityAlertHandler(t *testing.T) {
	n := NewLogNotifier(zap.NewNop(), 10)
	handler := NewSecurityAlertHandler(n, zap.NewNop())

	assert.Equal(t, []string{onboarding.EventTypeSecurityViolation}, handler.EventTypes())

	t.Run("escalates violations to admins", func(t *testing.T) {
		vendorID := uuid.New()
		event := onboarding.NewSecurityViolationEvent(vendorID, onboarding.AuditMalwareDetected, "malware in registration.pdf")

		err := handler.Handle(context.Background(), event)
		require.NoError(t, err)

		recent := n.Recent()
		require.Len(t, recent, 1)
		assert.Equal(t, "admins", recent[0].Audience)
		assert.Contains(t, recent[0].Subject, onboarding.AuditMalwareDetected)
		assert.Contains(t, recent[0].Body, vendorID.String())
	})

	t.Run("ignores unexpected payloads", func(t *testing.T) {
		app := &onboarding.ApplicationCreatedEvent{}
		err := handler.Handle(context.Background(), app)
		require.NoError(t, err)
	})
}
