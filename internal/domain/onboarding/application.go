package onboarding

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/shared"
)

// ApplicationState represents the lifecycle state of a vendor application
type ApplicationState string

const (
	StateSignupPending            ApplicationState = "signup_pending"
	StateEmailVerificationPending ApplicationState = "email_verification_pending"
	StateFormPending              ApplicationState = "form_pending"
	StatePendingPayment           ApplicationState = "pending_payment"
	StatePendingReview            ApplicationState = "pending_review"
	StateApproved                 ApplicationState = "approved"
	StateRejected                 ApplicationState = "rejected"
	StateAdditionalInfoRequired   ApplicationState = "additional_info_required"
)

// IsTerminal returns true for states that end the application lifecycle
func (s ApplicationState) IsTerminal() bool {
	return s == StateApproved || s == StateRejected
}

// TransitionEvent drives the application state machine
type TransitionEvent string

const (
	EventVerificationEmailSent TransitionEvent = "verification_email_sent"
	EventEmailVerified         TransitionEvent = "email_verified"
	EventFormSubmitted         TransitionEvent = "form_submitted"
	EventPaymentVerified       TransitionEvent = "payment_verified"
	EventApproved              TransitionEvent = "approved"
	EventRejected              TransitionEvent = "rejected"
	EventInfoRequested         TransitionEvent = "info_requested"
	EventInfoProvided          TransitionEvent = "info_provided"
)

// Intent is a declarative side effect emitted by a transition. The state
// machine never calls collaborators; callers execute intents after the
// transition has been persisted.
type Intent string

const (
	IntentSendVerificationEmail Intent = "send_verification_email"
	IntentNotifyAdmin           Intent = "notify_admin"
	IntentNotifyVendor          Intent = "notify_vendor"
	IntentInitDashboard         Intent = "init_dashboard"
	IntentReleaseSession        Intent = "release_session"
)

// transition describes one legal edge of the state machine
type transition struct {
	next    ApplicationState
	intents []Intent
}

// transitions is the authoritative state machine table. Backward movement is
// forbidden except the explicit request-more-info loop.
var transitions = map[ApplicationState]map[TransitionEvent]transition{
	StateSignupPending: {
		EventVerificationEmailSent: {StateEmailVerificationPending, []Intent{IntentSendVerificationEmail}},
	},
	StateEmailVerificationPending: {
		EventEmailVerified: {StateFormPending, []Intent{IntentNotifyVendor}},
	},
	StateFormPending: {
		EventFormSubmitted: {StatePendingPayment, []Intent{IntentNotifyVendor}},
	},
	StatePendingPayment: {
		EventPaymentVerified: {StatePendingReview, []Intent{IntentNotifyAdmin}},
	},
	StatePendingReview: {
		EventApproved:      {StateApproved, []Intent{IntentInitDashboard, IntentNotifyVendor}},
		EventRejected:      {StateRejected, []Intent{IntentNotifyVendor, IntentReleaseSession}},
		EventInfoRequested: {StateAdditionalInfoRequired, []Intent{IntentNotifyVendor}},
	},
	StateAdditionalInfoRequired: {
		EventInfoProvided: {StateFormPending, []Intent{}},
	},
}

// Timeline records when each onboarding milestone was reached
type Timeline struct {
	SignedUpAt        time.Time  `json:"signed_up_at"`
	EmailVerifiedAt   *time.Time `json:"email_verified_at,omitempty"`
	FormSubmittedAt   *time.Time `json:"form_submitted_at,omitempty"`
	PaymentVerifiedAt *time.Time `json:"payment_verified_at,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
}

// VendorApplication is the aggregate root for one onboarding attempt.
// All state mutation goes through Advance; collaborating engines report
// outcomes into it but never bypass the state machine.
type VendorApplication struct {
	shared.BaseAggregateRoot
	VendorID             uuid.UUID
	VendorName           string
	State                ApplicationState
	Plan                 Plan
	BillingCycle         BillingCycle
	RiskScore            int
	ManualReviewRequired bool
	Timeline             Timeline
	RejectionReason      string
}

// NewVendorApplication creates a fresh application in SignupPending
func NewVendorApplication(vendorID uuid.UUID, vendorName string, plan Plan, cycle BillingCycle) (*VendorApplication, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("Vendor ID is required")
	}
	if vendorName == "" {
		return nil, shared.NewValidationError("Vendor name is required")
	}
	if err := ValidatePlan(plan); err != nil {
		return nil, err
	}
	if err := ValidateBillingCycle(cycle); err != nil {
		return nil, err
	}

	app := &VendorApplication{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VendorID:          vendorID,
		VendorName:        vendorName,
		State:             StateSignupPending,
		Plan:              plan,
		BillingCycle:      cycle,
		Timeline:          Timeline{SignedUpAt: time.Now()},
	}

	app.AddDomainEvent(NewApplicationCreatedEvent(app))

	return app, nil
}

// Advance applies a transition event to the application. The caller supplies
// the last state version it observed; a mismatch fails with
// CONCURRENT_MODIFICATION and an illegal event fails with STATE_CONFLICT.
// On failure the aggregate is untouched.
func (a *VendorApplication) Advance(event TransitionEvent, expectedVersion int) ([]Intent, error) {
	if a.Version != expectedVersion {
		return nil, shared.ErrConcurrentModification
	}

	edges, ok := transitions[a.State]
	if !ok {
		return nil, shared.NewDomainError(shared.ErrStateConflict.Code,
			fmt.Sprintf("Application in terminal state %q cannot transition", a.State))
	}
	edge, ok := edges[event]
	if !ok {
		return nil, shared.NewDomainError(shared.ErrStateConflict.Code,
			fmt.Sprintf("Event %q is not legal in state %q", event, a.State))
	}

	from := a.State
	a.State = edge.next
	a.markMilestone(event)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewApplicationStateChangedEvent(a, from, edge.next, edge.intents))

	return edge.intents, nil
}

// markMilestone stamps the timeline entry for the applied event
func (a *VendorApplication) markMilestone(event TransitionEvent) {
	now := time.Now()
	switch event {
	case EventEmailVerified:
		a.Timeline.EmailVerifiedAt = &now
	case EventFormSubmitted, EventInfoProvided:
		a.Timeline.FormSubmittedAt = &now
	case EventPaymentVerified:
		a.Timeline.PaymentVerifiedAt = &now
	case EventApproved, EventRejected, EventInfoRequested:
		a.Timeline.ReviewedAt = &now
	}
}

// RecordRiskAssessment stores the latest risk score. A score crossing the
// manual-review threshold is sticky: it is never silently cleared by a
// later, lower score.
func (a *VendorApplication) RecordRiskAssessment(assessment RiskAssessment, reviewThreshold int) {
	a.RiskScore = assessment.Score
	if assessment.Score > reviewThreshold {
		a.ManualReviewRequired = true
	}
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewRiskAssessedEvent(a, assessment))
}

// Reject records the rejection reason alongside the terminal transition
func (a *VendorApplication) SetRejectionReason(reason string) {
	a.RejectionReason = reason
}

// ReapplyAvailableAt returns when a new application may be created after a
// rejection. Zero time for non-rejected applications.
func (a *VendorApplication) ReapplyAvailableAt(cooldown time.Duration) time.Time {
	if a.State != StateRejected || a.Timeline.ReviewedAt == nil {
		return time.Time{}
	}
	return a.Timeline.ReviewedAt.Add(cooldown)
}

// IsActive returns true while the application is still in flight
func (a *VendorApplication) IsActive() bool {
	return !a.State.IsTerminal()
}
