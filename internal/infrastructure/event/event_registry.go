package event

import (
	"github.com/souqly/backend/internal/domain/onboarding"
)

// RegisterAllEvents registers every domain event type with the serializer
// so consumers can deserialize relayed event payloads by type name.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(onboarding.EventTypeApplicationCreated, &onboarding.ApplicationCreatedEvent{})
	serializer.Register(onboarding.EventTypeApplicationStateChanged, &onboarding.ApplicationStateChangedEvent{})
	serializer.Register(onboarding.EventTypeRiskAssessed, &onboarding.RiskAssessedEvent{})
	serializer.Register(onboarding.EventTypePaymentVerified, &onboarding.PaymentVerifiedEvent{})
	serializer.Register(onboarding.EventTypeSecurityViolation, &onboarding.SecurityViolationEvent{})
}
