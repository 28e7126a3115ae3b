package gateway

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
)

// StubBankVerifier confirms every transaction with a generated reference.
// Use this for development and tests until the InstaPay credentials are
// configured; never wire it in production.
type StubBankVerifier struct{}

// NewStubBankVerifier creates a new StubBankVerifier
func NewStubBankVerifier() *StubBankVerifier {
	return &StubBankVerifier{}
}

// Confirm reports every transaction as confirmed
func (v *StubBankVerifier) Confirm(ctx context.Context, transactionID, receiverAddress, amount, currency string) (bool, string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return false, "", err
	}
	return true, "stub-" + hex.EncodeToString(buf), nil
}

// StubMalwareScanner reports every blob as clean. Development stand-in for
// the scanning service.
type StubMalwareScanner struct{}

// NewStubMalwareScanner creates a new StubMalwareScanner
func NewStubMalwareScanner() *StubMalwareScanner {
	return &StubMalwareScanner{}
}

// Scan reports the content as clean
func (s *StubMalwareScanner) Scan(ctx context.Context, content []byte) (bool, string, error) {
	return false, "", nil
}

// Ensure the stubs satisfy the application ports
var (
	_ onboardingapp.BankVerifier   = (*StubBankVerifier)(nil)
	_ onboardingapp.MalwareScanner = (*StubMalwareScanner)(nil)
)
