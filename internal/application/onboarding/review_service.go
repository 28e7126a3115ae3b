package onboarding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReviewService executes admin decisions. Approval and rejection are
// multi-record state changes that settle through the commit coordinator;
// notifications and session provisioning happen only after the commit (or
// its rollback) has fully settled.
type ReviewService struct {
	apps        onboarding.ApplicationRepository
	decisions   onboarding.DecisionRepository
	provisioner VendorProvisioner
	coordinator *CommitCoordinator
	sessions    SessionManager
	feed        LiveFeedSource
	notifier    Notifier
	events      shared.EventPublisher
	policy      Policy
	clock       Clock
	logger      *zap.Logger
}

// NewReviewService creates a review service
func NewReviewService(
	apps onboarding.ApplicationRepository,
	decisions onboarding.DecisionRepository,
	provisioner VendorProvisioner,
	coordinator *CommitCoordinator,
	sessions SessionManager,
	feed LiveFeedSource,
	notifier Notifier,
	events shared.EventPublisher,
	policy Policy,
	clock Clock,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		apps:        apps,
		decisions:   decisions,
		provisioner: provisioner,
		coordinator: coordinator,
		sessions:    sessions,
		feed:        feed,
		notifier:    notifier,
		events:      events,
		policy:      policy,
		clock:       clock,
		logger:      logger,
	}
}

// Review applies an admin ruling to an application in pending review. The
// state machine rejects rulings in any other state.
func (s *ReviewService) Review(ctx context.Context, applicationID uuid.UUID, input ReviewInput) (*ReviewResult, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	decision, err := onboarding.NewAdminDecision(app.ID, input.ReviewerID, input.Decision, input.Notes, input.Conditions)
	if err != nil {
		return nil, err
	}

	if input.Decision == onboarding.DecisionReject {
		app.SetRejectionReason(input.Notes)
	}
	if _, err := app.Advance(input.Decision.TransitionEvent(), app.Version); err != nil {
		return nil, err
	}

	steps := s.decisionSteps(app, decision, input.Decision)
	if err := withRetry(ctx, s.policy.RetryMax, s.policy.RetryBackoff, func(ctx context.Context) error {
		_, err := s.coordinator.Commit(ctx, steps)
		return err
	}); err != nil {
		return nil, err
	}

	// Everything below is post-settle: best effort, never reopens the commit
	s.provisionSession(ctx, app, input.Decision)
	s.notify(ctx, app, input.Decision)
	s.publish(ctx, app)

	s.logger.Info("application reviewed",
		zap.String("application_id", app.ID.String()),
		zap.String("decision", string(input.Decision)),
		zap.String("reviewer", input.ReviewerID.String()),
	)

	return &ReviewResult{
		ApplicationID: app.ID,
		State:         app.State,
		DecidedAt:     decision.DecidedAt,
	}, nil
}

// decisionSteps builds the ordered record mutations for the ruling. Each
// step touches one logical record set; approval failing midway must leave
// no scaffold behind and the vendor role reverted.
func (s *ReviewService) decisionSteps(app *onboarding.VendorApplication, decision *onboarding.AdminDecision, ruling onboarding.Decision) []Step {
	vendorID := app.VendorID

	steps := []Step{}
	if ruling == onboarding.DecisionApprove {
		steps = append(steps,
			Step{
				Name:       "flip_vendor_role",
				Execute:    func(ctx context.Context) error { return s.provisioner.SetVendorRole(ctx, vendorID) },
				Compensate: func(ctx context.Context) error { return s.provisioner.RevertVendorRole(ctx, vendorID) },
			},
			Step{
				Name:       "create_dashboard",
				Execute:    func(ctx context.Context) error { return s.provisioner.CreateDashboard(ctx, vendorID) },
				Compensate: func(ctx context.Context) error { return s.provisioner.DeleteDashboard(ctx, vendorID) },
			},
			Step{
				Name:       "create_analytics",
				Execute:    func(ctx context.Context) error { return s.provisioner.CreateAnalytics(ctx, vendorID) },
				Compensate: func(ctx context.Context) error { return s.provisioner.DeleteAnalytics(ctx, vendorID) },
			},
			Step{
				Name:       "create_payment_account",
				Execute:    func(ctx context.Context) error { return s.provisioner.CreatePaymentAccount(ctx, vendorID) },
				Compensate: func(ctx context.Context) error { return s.provisioner.DeletePaymentAccount(ctx, vendorID) },
			},
		)
	}

	steps = append(steps,
		Step{
			Name:    "update_application_status",
			Execute: func(ctx context.Context) error { return s.apps.Save(ctx, app) },
		},
		Step{
			Name:    "record_decision",
			Execute: func(ctx context.Context) error { return s.decisions.Save(ctx, decision) },
		},
	)

	return steps
}

// provisionSession attaches live monitoring for an approved vendor and
// tears it down for a rejected one.
func (s *ReviewService) provisionSession(ctx context.Context, app *onboarding.VendorApplication, ruling onboarding.Decision) {
	switch ruling {
	case onboarding.DecisionApprove:
		release, err := s.feed.OpenFeed(ctx, app.VendorID)
		if err != nil {
			s.logger.Warn("live feed open failed",
				zap.String("vendor_id", app.VendorID.String()),
				zap.Error(err),
			)
			return
		}
		s.sessions.Attach(app.VendorID, release)
	case onboarding.DecisionReject:
		s.sessions.Release(app.VendorID)
	}
}

// notify delivers decision notifications out of band. Failure is logged and
// surfaced separately; it never retries the state transition.
func (s *ReviewService) notify(ctx context.Context, app *onboarding.VendorApplication, ruling onboarding.Decision) {
	var subject, body string
	switch ruling {
	case onboarding.DecisionApprove:
		subject = "Application approved"
		body = "Your vendor account is now active."
	case onboarding.DecisionReject:
		subject = "Application rejected"
		body = fmt.Sprintf("Your application was rejected: %s", app.RejectionReason)
	default:
		subject = "More information required"
		body = "Please update your application form and resubmit."
	}

	if err := s.notifier.NotifyVendor(ctx, app.VendorID, subject, body); err != nil {
		s.logger.Warn("vendor notification failed",
			zap.String("vendor_id", app.VendorID.String()),
			zap.Error(err),
		)
	}
}

func (s *ReviewService) publish(ctx context.Context, app *onboarding.VendorApplication) {
	events := app.GetDomainEvents()
	app.ClearDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
}
