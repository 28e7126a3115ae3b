package onboarding

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/souqly/backend/internal/domain/onboarding"
)

// Policy bundles the tunable onboarding business constants. The tolerance,
// thresholds, windows, and cooldown are operational policy, not fixed law;
// production values come from configuration.
type Policy struct {
	// AmountTolerance is the maximum allowed |expected - reported| difference
	AmountTolerance decimal.Decimal
	// VerificationWindow bounds how old payment evidence may be
	VerificationWindow time.Duration
	// IdempotencyRetention is how long verification outcomes are cached
	IdempotencyRetention time.Duration
	// ReapplyCooldown gates a new application after a rejection
	ReapplyCooldown time.Duration
	// MaxUploadBytes caps document uploads
	MaxUploadBytes int64
	// SignedURLExpiry bounds document access URLs
	SignedURLExpiry time.Duration
	// ReceiverAddress is the platform's registered instant payment address
	ReceiverAddress string
	// Currency is the platform billing currency
	Currency string
	// BankTimeout bounds the external confirmation call
	BankTimeout time.Duration
	// ScanTimeout bounds the malware scan call
	ScanTimeout time.Duration
	// Risk holds the scoring weights and thresholds
	Risk onboarding.RiskPolicy
	// RetryMax and RetryBackoff shape the workflow-step retry for transient
	// infrastructure errors. Validation and security failures never retry.
	RetryMax     int
	RetryBackoff time.Duration
}

// DefaultPolicy returns the platform defaults
func DefaultPolicy() Policy {
	return Policy{
		AmountTolerance:      decimal.RequireFromString("0.01"),
		VerificationWindow:   30 * time.Minute,
		IdempotencyRetention: time.Hour,
		ReapplyCooldown:      30 * 24 * time.Hour,
		MaxUploadBytes:       10 << 20,
		SignedURLExpiry:      time.Hour,
		Currency:             "EGP",
		BankTimeout:          10 * time.Second,
		ScanTimeout:          15 * time.Second,
		Risk:                 onboarding.DefaultRiskPolicy(),
		RetryMax:             3,
		RetryBackoff:         200 * time.Millisecond,
	}
}
