package onboarding

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentService reconciles reported payment evidence against the expected
// plan price. All amount arithmetic is decimal; float comparison can mask or
// invent piaster-level differences and is not used anywhere on this path.
type PaymentService struct {
	apps        onboarding.ApplicationRepository
	evidence    onboarding.EvidenceRepository
	ledger      onboarding.LedgerRepository
	idempotency shared.IdempotencyStore
	limiter     RateLimiter
	bank        BankVerifier
	coordinator *CommitCoordinator
	events      shared.EventPublisher
	prices      onboarding.PriceTable
	policy      Policy
	clock       Clock
	logger      *zap.Logger
}

// NewPaymentService creates a payment verification service
func NewPaymentService(
	apps onboarding.ApplicationRepository,
	evidence onboarding.EvidenceRepository,
	ledger onboarding.LedgerRepository,
	idempotency shared.IdempotencyStore,
	limiter RateLimiter,
	bank BankVerifier,
	coordinator *CommitCoordinator,
	events shared.EventPublisher,
	prices onboarding.PriceTable,
	policy Policy,
	clock Clock,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		apps:        apps,
		evidence:    evidence,
		ledger:      ledger,
		idempotency: idempotency,
		limiter:     limiter,
		bank:        bank,
		coordinator: coordinator,
		events:      events,
		prices:      prices,
		policy:      policy,
		clock:       clock,
		logger:      logger,
	}
}

// Verify reconciles one payment evidence submission. An idempotency key seen
// within the retention window short-circuits to the cached outcome: no
// re-verification, no duplicate ledger entries, no repeated side effects.
func (s *PaymentService) Verify(ctx context.Context, applicationID uuid.UUID, input EvidenceInput, idempotencyKey string) (*VerificationOutcome, error) {
	if idempotencyKey != "" {
		if cached, err := s.cachedOutcome(ctx, idempotencyKey); err != nil {
			return nil, err
		} else if cached != nil {
			return cached, nil
		}
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	// Rate limit precedes evidence inspection entirely
	if !s.limiter.Allow(app.VendorID.String()) {
		return nil, shared.ErrRateLimitExceeded
	}

	outcome, err := s.verifyEvidence(ctx, app, input)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		s.cacheOutcome(ctx, idempotencyKey, outcome)
	}

	return outcome, nil
}

// verifyEvidence runs the ordered reconciliation checks and commits the
// success path atomically.
func (s *PaymentService) verifyEvidence(ctx context.Context, app *onboarding.VendorApplication, input EvidenceInput) (*VerificationOutcome, error) {
	now := s.clock()

	amount, err := decimal.NewFromString(input.ReportedAmount)
	if err != nil {
		return nil, shared.NewValidationError("Reported amount is not a valid decimal")
	}

	evidence, err := onboarding.NewPaymentEvidence(app.ID, input.TransactionID, amount,
		input.Currency, input.ReceiverAddress, input.ReportedAt)
	if err != nil {
		return nil, err
	}

	// Risk is recomputed on payment submission; a threshold crossing is
	// recorded on the assessment and survives regardless of the outcome.
	assessment := onboarding.ScoreSignals(onboarding.SignalSet{
		BillingIdentityMismatch: billingIdentityMismatch(input.BillingName, app),
	}, s.policy.Risk)
	app.RecordRiskAssessment(assessment, s.policy.Risk.ManualReviewScore)

	if evidence.IsExpired(s.policy.VerificationWindow, now) {
		return s.reject(ctx, app, evidence, shared.ErrVerificationWindowExpired.Code)
	}

	expected, err := s.prices.ExpectedAmount(app.Plan, app.BillingCycle)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(evidence.Currency, s.policy.Currency) {
		return s.reject(ctx, app, evidence, shared.ErrAmountMismatch.Code)
	}
	if expected.Sub(evidence.ReportedAmount).Abs().GreaterThan(s.policy.AmountTolerance) {
		return s.reject(ctx, app, evidence, shared.ErrAmountMismatch.Code)
	}

	// Literal equality; normalization could hide a redirected receiver
	if evidence.ReceiverAddress != s.policy.ReceiverAddress {
		return s.reject(ctx, app, evidence, shared.ErrInvalidReceiver.Code)
	}

	bankCtx, cancel := context.WithTimeout(ctx, s.policy.BankTimeout)
	defer cancel()
	confirmed, confirmationRef, err := s.bank.Confirm(bankCtx, evidence.TransactionID,
		evidence.ReceiverAddress, evidence.ReportedAmount.StringFixed(2), evidence.Currency)
	if err != nil {
		if bankCtx.Err() != nil {
			return nil, shared.ErrTimeout
		}
		return nil, err
	}
	if !confirmed {
		return s.reject(ctx, app, evidence, shared.ErrBankVerificationFailed.Code)
	}

	if err := s.commitVerified(ctx, app, evidence, confirmationRef); err != nil {
		return nil, err
	}

	s.publish(ctx, app)

	s.logger.Info("payment verified",
		zap.String("application_id", app.ID.String()),
		zap.String("transaction_id", evidence.TransactionID),
		zap.String("amount", evidence.ReportedAmount.StringFixed(2)),
	)

	return &VerificationOutcome{
		Verified:        true,
		ConfirmationRef: confirmationRef,
		TransactionID:   evidence.TransactionID,
		VerifiedAt:      now,
	}, nil
}

// commitVerified marks the evidence, advances the application, and writes
// the ledger entry as one atomic unit.
func (s *PaymentService) commitVerified(ctx context.Context, app *onboarding.VendorApplication, evidence *onboarding.PaymentEvidence, confirmationRef string) error {
	if err := evidence.MarkVerified(); err != nil {
		return err
	}
	if _, err := app.Advance(onboarding.EventPaymentVerified, app.Version); err != nil {
		return err
	}
	app.AddDomainEvent(onboarding.NewPaymentVerifiedEvent(app, evidence))
	entry := onboarding.NewPaymentLedgerEntry(app, evidence, confirmationRef)

	steps := []Step{
		{
			Name:    "save_evidence",
			Execute: func(ctx context.Context) error { return s.evidence.Save(ctx, evidence) },
		},
		{
			Name:    "advance_application",
			Execute: func(ctx context.Context) error { return s.apps.Save(ctx, app) },
		},
		{
			Name:    "write_ledger",
			Execute: func(ctx context.Context) error { return s.ledger.Save(ctx, entry) },
		},
	}

	return withRetry(ctx, s.policy.RetryMax, s.policy.RetryBackoff, func(ctx context.Context) error {
		_, err := s.coordinator.Commit(ctx, steps)
		return err
	})
}

// reject records the rejection on the evidence and returns the resubmittable
// outcome. Rejections never advance the application state.
func (s *PaymentService) reject(ctx context.Context, app *onboarding.VendorApplication, evidence *onboarding.PaymentEvidence, code string) (*VerificationOutcome, error) {
	evidence.MarkRejected(code)
	if err := s.evidence.Save(ctx, evidence); err != nil {
		s.logger.Warn("rejected evidence save failed",
			zap.String("transaction_id", evidence.TransactionID),
			zap.Error(err),
		)
	}
	if err := s.apps.Save(ctx, app); err != nil {
		s.logger.Warn("risk assessment save failed",
			zap.String("application_id", app.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("payment rejected",
		zap.String("application_id", app.ID.String()),
		zap.String("transaction_id", evidence.TransactionID),
		zap.String("code", code),
	)

	return &VerificationOutcome{
		Verified:      false,
		RejectionCode: code,
		TransactionID: evidence.TransactionID,
	}, nil
}

// cachedOutcome loads a previously recorded outcome for the key
func (s *PaymentService) cachedOutcome(ctx context.Context, key string) (*VerificationOutcome, error) {
	payload, found, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var outcome VerificationOutcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		return nil, err
	}
	s.logger.Debug("idempotent replay served from cache", zap.String("key", key))
	return &outcome, nil
}

// cacheOutcome stores the outcome under the key for the retention window.
// Failure to cache is logged, not surfaced: the verification itself settled.
func (s *PaymentService) cacheOutcome(ctx context.Context, key string, outcome *VerificationOutcome) {
	payload, err := json.Marshal(outcome)
	if err != nil {
		s.logger.Error("outcome marshal failed", zap.Error(err))
		return
	}
	if err := s.idempotency.Put(ctx, key, payload, s.policy.IdempotencyRetention); err != nil {
		s.logger.Warn("idempotency cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *PaymentService) publish(ctx context.Context, app *onboarding.VendorApplication) {
	events := app.GetDomainEvents()
	app.ClearDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
}

// billingIdentityMismatch compares the billing name against the applicant
// identity. A blank billing name is treated as matching: not every provider
// reports one.
func billingIdentityMismatch(billingName string, app *onboarding.VendorApplication) bool {
	billingName = strings.TrimSpace(billingName)
	if billingName == "" {
		return false
	}
	return !strings.EqualFold(billingName, app.VendorName)
}
