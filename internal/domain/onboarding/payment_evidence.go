package onboarding

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/souqly/backend/internal/domain/shared"
)

// VerificationStatus is the outcome recorded on payment evidence
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// PaymentEvidence is a payment transaction reported by the applicant.
// Once verified it is immutable; a rejected evidence is superseded by a new
// submission rather than edited.
type PaymentEvidence struct {
	shared.BaseEntity
	ApplicationID   uuid.UUID
	TransactionID   string
	ReportedAmount  decimal.Decimal
	Currency        string
	ReceiverAddress string
	ReportedAt      time.Time
	Status          VerificationStatus
	RejectionCode   string
}

// NewPaymentEvidence creates pending evidence from an applicant's report
func NewPaymentEvidence(applicationID uuid.UUID, transactionID string, amount decimal.Decimal, currency, receiver string, reportedAt time.Time) (*PaymentEvidence, error) {
	if applicationID == uuid.Nil {
		return nil, shared.NewValidationError("Application ID is required")
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, shared.NewValidationError("Transaction ID is required")
	}
	if len(transactionID) > 100 {
		return nil, shared.NewValidationError("Transaction ID cannot exceed 100 characters")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewValidationError("Reported amount must be positive")
	}
	if currency == "" {
		return nil, shared.NewValidationError("Currency is required")
	}
	if strings.TrimSpace(receiver) == "" {
		return nil, shared.NewValidationError("Receiver address is required")
	}
	if reportedAt.IsZero() {
		return nil, shared.NewValidationError("Report time is required")
	}

	return &PaymentEvidence{
		BaseEntity:      shared.NewBaseEntity(),
		ApplicationID:   applicationID,
		TransactionID:   transactionID,
		ReportedAmount:  amount,
		Currency:        strings.ToUpper(currency),
		ReceiverAddress: strings.TrimSpace(receiver),
		ReportedAt:      reportedAt,
		Status:          VerificationPending,
	}, nil
}

// MarkVerified transitions the evidence to verified exactly once
func (e *PaymentEvidence) MarkVerified() error {
	if e.Status == VerificationVerified {
		return shared.NewDomainError(shared.ErrStateConflict.Code, "Evidence is already verified")
	}
	e.Status = VerificationVerified
	e.UpdatedAt = time.Now()
	return nil
}

// MarkRejected records the rejection code on the evidence
func (e *PaymentEvidence) MarkRejected(code string) {
	e.Status = VerificationRejected
	e.RejectionCode = code
	e.UpdatedAt = time.Now()
}

// IsExpired reports whether the evidence is older than the verification window
func (e *PaymentEvidence) IsExpired(window time.Duration, now time.Time) bool {
	return now.Sub(e.ReportedAt) > window
}

// PaymentLedgerEntry is the immutable record persisted for a verified payment,
// keyed by the provider transaction ID.
type PaymentLedgerEntry struct {
	shared.BaseEntity
	ApplicationID   uuid.UUID
	VendorID        uuid.UUID
	TransactionID   string
	Amount          decimal.Decimal
	Currency        string
	ConfirmationRef string
	VerifiedAt      time.Time
}

// NewPaymentLedgerEntry creates a ledger entry for verified evidence
func NewPaymentLedgerEntry(app *VendorApplication, evidence *PaymentEvidence, confirmationRef string) *PaymentLedgerEntry {
	return &PaymentLedgerEntry{
		BaseEntity:      shared.NewBaseEntity(),
		ApplicationID:   app.ID,
		VendorID:        app.VendorID,
		TransactionID:   evidence.TransactionID,
		Amount:          evidence.ReportedAmount,
		Currency:        evidence.Currency,
		ConfirmationRef: confirmationRef,
		VerifiedAt:      time.Now(),
	}
}
