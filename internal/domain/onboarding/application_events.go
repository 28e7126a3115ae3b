package onboarding

import (
	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/shared"
)

// Event types for the onboarding aggregate
const (
	EventTypeApplicationCreated      = "onboarding.application.created"
	EventTypeApplicationStateChanged = "onboarding.application.state_changed"
	EventTypeRiskAssessed            = "onboarding.application.risk_assessed"
	EventTypePaymentVerified         = "onboarding.payment.verified"
	EventTypeSecurityViolation       = "onboarding.security.violation"
)

const aggregateTypeApplication = "VendorApplication"

// ApplicationCreatedEvent is emitted when a vendor starts an onboarding attempt
type ApplicationCreatedEvent struct {
	shared.BaseDomainEvent
	VendorID string `json:"vendor_id"`
	Plan     string `json:"plan"`
}

// NewApplicationCreatedEvent creates an ApplicationCreatedEvent
func NewApplicationCreatedEvent(app *VendorApplication) *ApplicationCreatedEvent {
	return &ApplicationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplicationCreated, aggregateTypeApplication, app.ID),
		VendorID:        app.VendorID.String(),
		Plan:            string(app.Plan),
	}
}

// ApplicationStateChangedEvent is emitted on every successful transition.
// Intents carry the declarative side effects the caller must execute.
type ApplicationStateChangedEvent struct {
	shared.BaseDomainEvent
	VendorID string   `json:"vendor_id"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Intents  []Intent `json:"intents"`
}

// NewApplicationStateChangedEvent creates an ApplicationStateChangedEvent
func NewApplicationStateChangedEvent(app *VendorApplication, from, to ApplicationState, intents []Intent) *ApplicationStateChangedEvent {
	return &ApplicationStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplicationStateChanged, aggregateTypeApplication, app.ID),
		VendorID:        app.VendorID.String(),
		From:            string(from),
		To:              string(to),
		Intents:         intents,
	}
}

// RiskAssessedEvent is emitted when a risk assessment is recorded
type RiskAssessedEvent struct {
	shared.BaseDomainEvent
	VendorID     string   `json:"vendor_id"`
	Score        int      `json:"score"`
	Contributors []Signal `json:"contributors"`
}

// NewRiskAssessedEvent creates a RiskAssessedEvent
func NewRiskAssessedEvent(app *VendorApplication, assessment RiskAssessment) *RiskAssessedEvent {
	return &RiskAssessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRiskAssessed, aggregateTypeApplication, app.ID),
		VendorID:        app.VendorID.String(),
		Score:           assessment.Score,
		Contributors:    assessment.Contributors,
	}
}

// PaymentVerifiedEvent is emitted after payment evidence is verified and
// the ledger record is committed.
type PaymentVerifiedEvent struct {
	shared.BaseDomainEvent
	VendorID      string `json:"vendor_id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
}

// SecurityViolationEvent is emitted when an upload trips a security check,
// a spoofed file signature or a positive malware scan.
type SecurityViolationEvent struct {
	shared.BaseDomainEvent
	VendorID string `json:"vendor_id"`
	Kind     string `json:"kind"`
	Detail   string `json:"detail"`
}

// NewSecurityViolationEvent creates a SecurityViolationEvent
func NewSecurityViolationEvent(vendorID uuid.UUID, kind, detail string) *SecurityViolationEvent {
	return &SecurityViolationEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSecurityViolation, aggregateTypeApplication, vendorID),
		VendorID:        vendorID.String(),
		Kind:            kind,
		Detail:          detail,
	}
}

// NewPaymentVerifiedEvent creates a PaymentVerifiedEvent
func NewPaymentVerifiedEvent(app *VendorApplication, evidence *PaymentEvidence) *PaymentVerifiedEvent {
	return &PaymentVerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentVerified, aggregateTypeApplication, app.ID),
		VendorID:        app.VendorID.String(),
		TransactionID:   evidence.TransactionID,
		Amount:          evidence.ReportedAmount.StringFixed(2),
		Currency:        evidence.Currency,
	}
}
