package handler

import (
	"time"

	"github.com/google/uuid"
)

// SignupRequest opens a vendor onboarding application
// @name HandlerSignupRequest
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"required"`
	NationalID  string `json:"national_id" binding:"required"`
	DisplayName string `json:"display_name" binding:"required,min=2,max=120"`
	Plan        string `json:"plan" binding:"required,oneof=starter professional enterprise"`
	BillingCycle string `json:"billing_cycle" binding:"required,oneof=monthly quarterly semi_annual annual"`
}

// SignupResponse returns the created application and the vendor's first
// token pair
// @name HandlerSignupResponse
type SignupResponse struct {
	ApplicationID uuid.UUID     `json:"application_id"`
	VendorID      uuid.UUID     `json:"vendor_id"`
	RiskScore     int           `json:"risk_score"`
	Token         TokenResponse `json:"token"`
}

// ConfirmEmailRequest redeems an email verification for an application
// @name HandlerConfirmEmailRequest
type ConfirmEmailRequest struct {
	ApplicationID string `json:"application_id" binding:"required,uuid"`
}

// SubmitApplicationRequest carries the vendor's application form
// @name HandlerSubmitApplicationRequest
type SubmitApplicationRequest struct {
	ShopName    string   `json:"shop_name" binding:"required,min=2,max=120"`
	Description string   `json:"description" binding:"max=2000"`
	Address     string   `json:"address" binding:"required"`
	NationalID  string   `json:"national_id" binding:"required"`
	Phone       string   `json:"phone" binding:"required"`
	DocumentIDs []string `json:"document_ids" binding:"dive,uuid"`
}

// PaymentEvidenceRequest reports an instant payment transfer for verification
// @name HandlerPaymentEvidenceRequest
type PaymentEvidenceRequest struct {
	TransactionID   string    `json:"transaction_id" binding:"required"`
	ReportedAmount  string    `json:"reported_amount" binding:"required"`
	Currency        string    `json:"currency" binding:"required,len=3"`
	ReceiverAddress string    `json:"receiver_address" binding:"required"`
	ReportedAt      time.Time `json:"reported_at" binding:"required"`
	BillingName     string    `json:"billing_name"`
}

// ReviewRequest records an admin ruling on a pending application
// @name HandlerReviewRequest
type ReviewRequest struct {
	Decision   string `json:"decision" binding:"required,oneof=approve reject request_info"`
	Notes      string `json:"notes" binding:"max=2000"`
	Conditions string `json:"conditions" binding:"max=2000"`
}

// ApplicationResponse is the read model for one application
// @name HandlerApplicationResponse
type ApplicationResponse struct {
	ID                   uuid.UUID  `json:"id"`
	VendorID             uuid.UUID  `json:"vendor_id"`
	VendorName           string     `json:"vendor_name"`
	State                string     `json:"state"`
	Plan                 string     `json:"plan"`
	BillingCycle         string     `json:"billing_cycle"`
	RiskScore            int        `json:"risk_score"`
	ManualReviewRequired bool       `json:"manual_review_required"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	SignedUpAt           time.Time  `json:"signed_up_at"`
	EmailVerifiedAt      *time.Time `json:"email_verified_at,omitempty"`
	FormSubmittedAt      *time.Time `json:"form_submitted_at,omitempty"`
	PaymentVerifiedAt    *time.Time `json:"payment_verified_at,omitempty"`
	ReviewedAt           *time.Time `json:"reviewed_at,omitempty"`
}
