package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stateChanged(vendorID uuid.UUID) *onboarding.ApplicationStateChangedEvent {
	return &onboarding.ApplicationStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			onboarding.EventTypeApplicationStateChanged, "VendorApplication", uuid.New()),
		VendorID: vendorID.String(),
		From:     "pending_payment",
		To:       "pending_review",
	}
}

func TestFeedHub_RoutesEventsToVendorFeed(t *testing.T) {
	hub := NewFeedHub(zap.NewNop())
	vendorID := uuid.New()

	release, err := hub.OpenFeed(context.Background(), vendorID)
	require.NoError(t, err)
	defer release()

	event := stateChanged(vendorID)
	require.NoError(t, hub.Handle(context.Background(), event))

	select {
	case got := <-hub.Events(vendorID):
		assert.Equal(t, event, got)
	default:
		t.Fatal("expected event on the vendor feed")
	}
}

func TestFeedHub_IgnoresOtherVendors(t *testing.T) {
	hub := NewFeedHub(zap.NewNop())
	vendorID := uuid.New()

	release, err := hub.OpenFeed(context.Background(), vendorID)
	require.NoError(t, err)
	defer release()

	require.NoError(t, hub.Handle(context.Background(), stateChanged(uuid.New())))

	select {
	case <-hub.Events(vendorID):
		t.Fatal("event for another vendor leaked into this feed")
	default:
	}
}

func TestFeedHub_ReleaseClosesFeed(t *testing.T) {
	hub := NewFeedHub(zap.NewNop())
	vendorID := uuid.New()

	release, err := hub.OpenFeed(context.Background(), vendorID)
	require.NoError(t, err)

	ch := hub.Events(vendorID)
	release()

	_, open := <-ch
	assert.False(t, open)
	assert.Nil(t, hub.Events(vendorID))

	// Release is safe to call twice
	release()
}

func TestFeedHub_ReopenReplacesFeed(t *testing.T) {
	hub := NewFeedHub(zap.NewNop())
	vendorID := uuid.New()

	_, err := hub.OpenFeed(context.Background(), vendorID)
	require.NoError(t, err)
	first := hub.Events(vendorID)

	release2, err := hub.OpenFeed(context.Background(), vendorID)
	require.NoError(t, err)
	defer release2()

	// The first channel is closed, the second receives events
	_, open := <-first
	assert.False(t, open)

	require.NoError(t, hub.Handle(context.Background(), stateChanged(vendorID)))
	select {
	case <-hub.Events(vendorID):
	default:
		t.Fatal("expected event on the replacement feed")
	}
}

func TestFeedHub_FullFeedDropsEvents(t *testing.T) {
	hub := NewFeedHub(zap.NewNop())
	vendorID := uuid.New()

	release, err := hub.OpenFeed(context.Background(), vendorID)
	require.NoError(t, err)
	defer release()

	// Handle never blocks, even past the buffer size
	for i := 0; i < feedBuffer+5; i++ {
		require.NoError(t, hub.Handle(context.Background(), stateChanged(vendorID)))
	}

	count := 0
	for {
		select {
		case <-hub.Events(vendorID):
			count++
			continue
		default:
		}
		break
	}
	assert.Equal(t, feedBuffer, count)
}

func TestFeedHub_UnscopedEventIsIgnored(t *testing.T) {
	hub := NewFeedHub(zap.NewNop())
	event := &onboarding.SecurityViolationEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			onboarding.EventTypeSecurityViolation, "VendorApplication", uuid.New()),
	}
	require.NoError(t, hub.Handle(context.Background(), event))
}
