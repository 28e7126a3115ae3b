package onboarding

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SignupService drives the front half of the onboarding lifecycle: account
// creation, email verification, and form submission.
type SignupService struct {
	apps     onboarding.ApplicationRepository
	docs     onboarding.DocumentRepository
	identity IdentityProvider
	events   shared.EventPublisher
	policy   Policy
	clock    Clock
	logger   *zap.Logger
}

// NewSignupService creates a signup service
func NewSignupService(
	apps onboarding.ApplicationRepository,
	docs onboarding.DocumentRepository,
	identity IdentityProvider,
	events shared.EventPublisher,
	policy Policy,
	clock Clock,
	logger *zap.Logger,
) *SignupService {
	return &SignupService{
		apps:     apps,
		docs:     docs,
		identity: identity,
		events:   events,
		policy:   policy,
		clock:    clock,
		logger:   logger,
	}
}

// SignupVendor validates the profile, provisions an account, and creates the
// application. Exactly one non-terminal application may exist per vendor;
// a rejected vendor must wait out the reapplication cooldown.
func (s *SignupService) SignupVendor(ctx context.Context, input SignupInput) (*SignupResult, error) {
	now := s.clock()

	if err := validateSignupProfile(input, s.clock); err != nil {
		return nil, err
	}

	vendorID, err := s.identity.CreateAccount(ctx, input.Email, input.Phone, input.DisplayName)
	if err != nil {
		return nil, err
	}

	if _, err := s.apps.FindActiveByVendor(ctx, vendorID); err == nil {
		return nil, shared.NewValidationError("An application is already in progress for this vendor")
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	if last, err := s.apps.FindLastRejectedByVendor(ctx, vendorID); err == nil {
		availableAt := last.ReapplyAvailableAt(s.policy.ReapplyCooldown)
		if now.Before(availableAt) {
			return nil, shared.NewValidationError("Reapplication is not allowed until the cooldown has elapsed")
		}
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	app, err := onboarding.NewVendorApplication(vendorID, strings.TrimSpace(input.DisplayName), input.Plan, input.Cycle)
	if err != nil {
		return nil, err
	}

	assessment := onboarding.ScoreSignals(onboarding.SignalSet{
		DisposableEmailDomain:  onboarding.IsDisposableEmailDomain(input.Email),
		ProxyOrVPN:             input.ProxyOrVPN,
		KnownBadDevice:         input.KnownBadDevice,
		SignupVelocityExceeded: input.SignupVelocityExceeded,
	}, s.policy.Risk)
	app.RecordRiskAssessment(assessment, s.policy.Risk.ManualReviewScore)

	intents, err := app.Advance(onboarding.EventVerificationEmailSent, app.Version)
	if err != nil {
		return nil, err
	}

	if err := withRetry(ctx, s.policy.RetryMax, s.policy.RetryBackoff, func(ctx context.Context) error {
		return s.apps.Save(ctx, app)
	}); err != nil {
		return nil, err
	}

	s.executeIntents(ctx, app, intents)
	s.publish(ctx, app)

	s.logger.Info("vendor application created",
		zap.String("application_id", app.ID.String()),
		zap.String("vendor_id", vendorID.String()),
		zap.Int("risk_score", app.RiskScore),
	)

	return &SignupResult{
		ApplicationID: app.ID,
		VendorID:      vendorID,
		RiskScore:     app.RiskScore,
	}, nil
}

// ConfirmEmail moves the application forward once the identity provider
// reports the email challenge complete.
func (s *SignupService) ConfirmEmail(ctx context.Context, applicationID uuid.UUID) error {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return err
	}

	verified, err := s.identity.IsEmailVerified(ctx, app.VendorID)
	if err != nil {
		return err
	}
	if !verified {
		return shared.NewValidationError("Email is not verified yet")
	}

	if _, err := app.Advance(onboarding.EventEmailVerified, app.Version); err != nil {
		return err
	}

	if err := withRetry(ctx, s.policy.RetryMax, s.policy.RetryBackoff, func(ctx context.Context) error {
		return s.apps.Save(ctx, app)
	}); err != nil {
		return err
	}

	s.publish(ctx, app)
	return nil
}

// SubmitApplication accepts the vendor's form and referenced documents and
// moves the application to pending payment.
func (s *SignupService) SubmitApplication(ctx context.Context, applicationID uuid.UUID, input SubmitInput) error {
	if err := validateForm(input, s.clock); err != nil {
		return err
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return err
	}

	// The form must reference at least one previously accepted document
	docs, err := s.docs.FindByApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	accepted := make(map[uuid.UUID]bool, len(docs))
	for _, doc := range docs {
		accepted[doc.ID] = true
	}
	if len(input.DocumentIDs) == 0 {
		return shared.NewValidationError("At least one supporting document is required")
	}
	for _, id := range input.DocumentIDs {
		if !accepted[id] {
			return shared.NewValidationError("Referenced document was not uploaded for this application")
		}
	}

	event := onboarding.EventFormSubmitted
	if app.State == onboarding.StateAdditionalInfoRequired {
		// The request-more-info loop re-enters through its own edge
		if _, err := app.Advance(onboarding.EventInfoProvided, app.Version); err != nil {
			return err
		}
	}
	if _, err := app.Advance(event, app.Version); err != nil {
		return err
	}

	if err := withRetry(ctx, s.policy.RetryMax, s.policy.RetryBackoff, func(ctx context.Context) error {
		return s.apps.Save(ctx, app)
	}); err != nil {
		return err
	}

	s.publish(ctx, app)
	return nil
}

// executeIntents performs the declarative side effects of a settled
// transition. Failures are logged and never reopen the transition.
func (s *SignupService) executeIntents(ctx context.Context, app *onboarding.VendorApplication, intents []onboarding.Intent) {
	for _, intent := range intents {
		if intent != onboarding.IntentSendVerificationEmail {
			continue
		}
		if err := s.identity.SendVerificationEmail(ctx, app.VendorID); err != nil {
			s.logger.Warn("verification email dispatch failed",
				zap.String("vendor_id", app.VendorID.String()),
				zap.Error(err),
			)
		}
	}
}

// publish flushes the aggregate's pending domain events after commit
func (s *SignupService) publish(ctx context.Context, app *onboarding.VendorApplication) {
	events := app.GetDomainEvents()
	app.ClearDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
}

func validateSignupProfile(input SignupInput, clock Clock) error {
	if strings.TrimSpace(input.DisplayName) == "" {
		return shared.NewValidationError("Display name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email[1:], "@") {
		return shared.NewValidationError("A valid email address is required")
	}
	if err := onboarding.ValidatePhone(input.Phone); err != nil {
		return err
	}
	if err := onboarding.ValidateNationalID(input.NationalID, clock()); err != nil {
		return err
	}
	if err := onboarding.ValidatePlan(input.Plan); err != nil {
		return err
	}
	return onboarding.ValidateBillingCycle(input.Cycle)
}

func validateForm(input SubmitInput, clock Clock) error {
	if strings.TrimSpace(input.ShopName) == "" {
		return shared.NewValidationError("Shop name is required")
	}
	if len(input.ShopName) > 200 {
		return shared.NewValidationError("Shop name cannot exceed 200 characters")
	}
	if err := onboarding.ValidateNationalID(input.NationalID, clock()); err != nil {
		return err
	}
	return onboarding.ValidatePhone(input.Phone)
}
