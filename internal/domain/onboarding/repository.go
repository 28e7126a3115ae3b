package onboarding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/shared"
)

// ApplicationRepository persists vendor applications
type ApplicationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*VendorApplication, error)
	// FindActiveByVendor returns the vendor's single non-terminal application,
	// or shared.ErrNotFound when none is in flight.
	FindActiveByVendor(ctx context.Context, vendorID uuid.UUID) (*VendorApplication, error)
	// FindLastRejectedByVendor returns the most recent rejected application,
	// used to enforce the reapplication cooldown.
	FindLastRejectedByVendor(ctx context.Context, vendorID uuid.UUID) (*VendorApplication, error)
	FindByState(ctx context.Context, state ApplicationState, filter shared.Filter) ([]VendorApplication, error)
	// Save persists the aggregate guarded by its optimistic version; a stale
	// version fails with shared.ErrConcurrentModification.
	Save(ctx context.Context, app *VendorApplication) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// EvidenceRepository persists payment evidence submissions
type EvidenceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentEvidence, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*PaymentEvidence, error)
	FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]PaymentEvidence, error)
	Save(ctx context.Context, evidence *PaymentEvidence) error
}

// LedgerRepository persists verified payment ledger entries keyed by
// transaction ID. Duplicate transaction IDs fail with shared.ErrAlreadyExists.
type LedgerRepository interface {
	FindByTransactionID(ctx context.Context, transactionID string) (*PaymentLedgerEntry, error)
	Save(ctx context.Context, entry *PaymentLedgerEntry) error
	CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error)
}

// DocumentRepository persists uploaded document records
type DocumentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DocumentRecord, error)
	FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]DocumentRecord, error)
	CountByVendorSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (int64, error)
	Save(ctx context.Context, doc *DocumentRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DecisionRepository persists admin decisions
type DecisionRepository interface {
	FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]AdminDecision, error)
	Save(ctx context.Context, decision *AdminDecision) error
}

// AuditRepository persists the security audit trail. Writes must succeed
// independently of the failing operation that triggered them.
type AuditRepository interface {
	Save(ctx context.Context, record *AuditRecord) error
	FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]AuditRecord, error)
}
