package onboarding

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. Services take it explicitly so tests can
// pin it; production wiring passes time.Now.
type Clock func() time.Time

// IdentityProvider is the external account system
type IdentityProvider interface {
	// CreateAccount provisions a login for the vendor and returns its ID
	CreateAccount(ctx context.Context, email, phone, displayName string) (uuid.UUID, error)
	// SendVerificationEmail delivers the email ownership challenge
	SendVerificationEmail(ctx context.Context, accountID uuid.UUID) error
	// IsEmailVerified reports whether the challenge was completed
	IsEmailVerified(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// BankVerifier confirms reported payment transactions with the payment
// provider. Implementations must honor the context deadline; a timeout is a
// verification failure, not a hang.
type BankVerifier interface {
	// Confirm returns whether the provider recognizes the transaction and a
	// confirmation reference when it does.
	Confirm(ctx context.Context, transactionID, receiverAddress, amount, currency string) (confirmed bool, confirmationRef string, err error)
}

// MalwareScanner checks uploaded blobs before they are stored
type MalwareScanner interface {
	// Scan returns true when the content is infected
	Scan(ctx context.Context, content []byte) (infected bool, signature string, err error)
}

// ObjectStorage stores uploaded documents and hands out time-boxed signed URLs
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (url string, expiresAt time.Time, err error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// Notifier delivers out-of-band messages. Best effort: failures are logged
// by the caller and never affect a committed state transition.
type Notifier interface {
	NotifyVendor(ctx context.Context, vendorID uuid.UUID, subject, body string) error
	NotifyAdmins(ctx context.Context, subject, body string) error
}

// RateLimiter bounds per-key operation frequency. Consulted before any
// state or I/O is touched, so it is synchronized independently of the main
// transition path.
type RateLimiter interface {
	Allow(key string) bool
}

// VendorProvisioner mutates the per-vendor record sets that approval creates
// and rejection must leave absent. Each method touches exactly one logical
// record set so the commit coordinator can compensate precisely.
type VendorProvisioner interface {
	SetVendorRole(ctx context.Context, vendorID uuid.UUID) error
	RevertVendorRole(ctx context.Context, vendorID uuid.UUID) error
	CreateDashboard(ctx context.Context, vendorID uuid.UUID) error
	DeleteDashboard(ctx context.Context, vendorID uuid.UUID) error
	CreateAnalytics(ctx context.Context, vendorID uuid.UUID) error
	DeleteAnalytics(ctx context.Context, vendorID uuid.UUID) error
	CreatePaymentAccount(ctx context.Context, vendorID uuid.UUID) error
	DeletePaymentAccount(ctx context.Context, vendorID uuid.UUID) error
}

// SessionManager owns live-subscription handles and session timers for
// active vendors. Used by the review service to provision or tear down
// monitoring after a decision settles.
type SessionManager interface {
	Attach(vendorID uuid.UUID, release func())
	Release(vendorID uuid.UUID)
}

// LiveFeedSource opens the live-update subscription for an activated
// vendor. The returned release function must be invoked exactly once; the
// session manager owns that guarantee.
type LiveFeedSource interface {
	OpenFeed(ctx context.Context, vendorID uuid.UUID) (release func(), err error)
}

// TxRunner executes a function inside a single atomic unit when the
// underlying store supports multi-record atomicity. A nil TxRunner switches
// the coordinator to best-effort forward execution with compensation.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
