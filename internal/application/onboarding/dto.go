package onboarding

import (
	"time"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
)

// SignupInput is the prospective seller's signup profile
type SignupInput struct {
	Email       string
	Phone       string
	NationalID  string
	DisplayName string
	Plan        onboarding.Plan
	Cycle       onboarding.BillingCycle

	// Fraud signals observed by the edge at signup time
	ProxyOrVPN             bool
	KnownBadDevice         bool
	SignupVelocityExceeded bool
}

// SignupResult reports the created application
type SignupResult struct {
	ApplicationID uuid.UUID `json:"application_id"`
	VendorID      uuid.UUID `json:"vendor_id"`
	RiskScore     int       `json:"risk_score"`
}

// SubmitInput carries the application form
type SubmitInput struct {
	ShopName    string
	Description string
	Address     string
	NationalID  string
	Phone       string
	DocumentIDs []uuid.UUID
}

// EvidenceInput is the applicant's reported payment transaction
type EvidenceInput struct {
	TransactionID   string
	ReportedAmount  string
	Currency        string
	ReceiverAddress string
	ReportedAt      time.Time

	// BillingName is compared against the applicant identity as a fraud signal
	BillingName string
}

// VerificationOutcome is the result of a payment verification attempt. It is
// the unit cached under an idempotency key: a replayed key returns the same
// outcome without re-verification or duplicate side effects.
type VerificationOutcome struct {
	Verified        bool      `json:"verified"`
	RejectionCode   string    `json:"rejection_code,omitempty"`
	ConfirmationRef string    `json:"confirmation_ref,omitempty"`
	TransactionID   string    `json:"transaction_id"`
	VerifiedAt      time.Time `json:"verified_at,omitempty"`
}

// UploadInput is one document upload request
type UploadInput struct {
	Type                onboarding.DocumentType
	Filename            string
	DeclaredContentType string
	Content             []byte
}

// DocumentResult reports an accepted upload with its time-boxed access URL
type DocumentResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ReviewInput is an admin ruling request
type ReviewInput struct {
	ReviewerID uuid.UUID
	Decision   onboarding.Decision
	Notes      string
	Conditions string
}

// ReviewResult reports the settled decision
type ReviewResult struct {
	ApplicationID uuid.UUID                   `json:"application_id"`
	State         onboarding.ApplicationState `json:"state"`
	DecidedAt     time.Time                   `json:"decided_at"`
}
