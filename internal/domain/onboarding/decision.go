package onboarding

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/shared"
)

// Decision is a terminal admin ruling on an application review cycle
type Decision string

const (
	DecisionApprove     Decision = "approve"
	DecisionReject      Decision = "reject"
	DecisionRequestInfo Decision = "request_info"
)

// ValidateDecision checks the decision against the known set
func ValidateDecision(d Decision) error {
	switch d {
	case DecisionApprove, DecisionReject, DecisionRequestInfo:
		return nil
	default:
		return shared.NewValidationError("Unknown review decision")
	}
}

// TransitionEvent maps the decision to its state machine event
func (d Decision) TransitionEvent() TransitionEvent {
	switch d {
	case DecisionApprove:
		return EventApproved
	case DecisionReject:
		return EventRejected
	default:
		return EventInfoRequested
	}
}

// AdminDecision records one admin ruling. Created once per review cycle;
// a request-info decision cycles the application back to form-pending and a
// later cycle gets a fresh decision record.
type AdminDecision struct {
	shared.BaseEntity
	ApplicationID uuid.UUID
	Decision      Decision
	DecidedBy     uuid.UUID
	DecidedAt     time.Time
	Notes         string
	Conditions    string
}

// NewAdminDecision creates an admin decision record
func NewAdminDecision(applicationID, decidedBy uuid.UUID, decision Decision, notes, conditions string) (*AdminDecision, error) {
	if applicationID == uuid.Nil {
		return nil, shared.NewValidationError("Application ID is required")
	}
	if decidedBy == uuid.Nil {
		return nil, shared.NewValidationError("Reviewer ID is required")
	}
	if err := ValidateDecision(decision); err != nil {
		return nil, err
	}
	if decision == DecisionReject && strings.TrimSpace(notes) == "" {
		return nil, shared.NewValidationError("Rejection requires notes")
	}

	return &AdminDecision{
		BaseEntity:    shared.NewBaseEntity(),
		ApplicationID: applicationID,
		Decision:      decision,
		DecidedBy:     decidedBy,
		DecidedAt:     time.Now(),
		Notes:         notes,
		Conditions:    conditions,
	}, nil
}

// AuditRecord is an immutable security audit trail entry. Security-class
// failures are always persisted regardless of whether the triggering call
// is retried.
type AuditRecord struct {
	shared.BaseEntity
	VendorID  uuid.UUID
	Kind      string
	Detail    string
	OccurredAt time.Time
}

// NewAuditRecord creates an audit trail entry
func NewAuditRecord(vendorID uuid.UUID, kind, detail string) *AuditRecord {
	return &AuditRecord{
		BaseEntity: shared.NewBaseEntity(),
		VendorID:   vendorID,
		Kind:       kind,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
}

// Audit record kinds
const (
	AuditMalwareDetected   = "malware_detected"
	AuditSignatureSpoof    = "file_signature_spoof"
	AuditRiskThreshold     = "risk_threshold_crossed"
	AuditSecurityViolation = "security_violation"
)
