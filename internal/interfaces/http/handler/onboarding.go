package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/infrastructure/auth"
	"github.com/souqly/backend/internal/interfaces/http/middleware"
)

// OnboardingHandler exposes the vendor side of the onboarding lifecycle:
// signup, email confirmation, form submission, payment verification, and
// application status.
type OnboardingHandler struct {
	BaseHandler
	signup     *onboardingapp.SignupService
	payments   *onboardingapp.PaymentService
	apps       onboarding.ApplicationRepository
	jwtService *auth.JWTService
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(
	signup *onboardingapp.SignupService,
	payments *onboardingapp.PaymentService,
	apps onboarding.ApplicationRepository,
	jwtService *auth.JWTService,
) *OnboardingHandler {
	return &OnboardingHandler{
		signup:     signup,
		payments:   payments,
		apps:       apps,
		jwtService: jwtService,
	}
}

// signalHeader reads an edge fraud-signal header. The edge proxy sets these
// from its own device and network intelligence; absent means not observed.
func signalHeader(c *gin.Context, name string) bool {
	v := c.GetHeader(name)
	return v == "1" || v == "true"
}

// Signup godoc
// @Summary      Vendor signup
// @Description  Opens an onboarding application and issues the vendor's first token pair
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup profile"
// @Success      201 {object} dto.Response{data=SignupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /vendors/signup [post]
func (h *OnboardingHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.signup.SignupVendor(c.Request.Context(), onboardingapp.SignupInput{
		Email:       req.Email,
		Phone:       req.Phone,
		NationalID:  req.NationalID,
		DisplayName: req.DisplayName,
		Plan:        onboarding.Plan(req.Plan),
		Cycle:       onboarding.BillingCycle(req.BillingCycle),

		ProxyOrVPN:             signalHeader(c, "X-Signal-Proxy"),
		KnownBadDevice:         signalHeader(c, "X-Signal-Bad-Device"),
		SignupVelocityExceeded: signalHeader(c, "X-Signal-Velocity"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(result.VendorID, auth.RoleVendor)
	if err != nil {
		h.InternalError(c, "Failed to issue tokens")
		return
	}

	h.Created(c, SignupResponse{
		ApplicationID: result.ApplicationID,
		VendorID:      result.VendorID,
		RiskScore:     result.RiskScore,
		Token: TokenResponse{
			AccessToken:           pair.AccessToken,
			RefreshToken:          pair.RefreshToken,
			AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
			TokenType:             pair.TokenType,
		},
	})
}

// ConfirmEmail godoc
// @Summary      Confirm vendor email
// @Description  Advances the application after the verification email was redeemed
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request body ConfirmEmailRequest true "Application reference"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /vendors/confirm-email [post]
func (h *OnboardingHandler) ConfirmEmail(c *gin.Context) {
	var req ConfirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	applicationID, err := uuid.Parse(req.ApplicationID)
	if err != nil {
		h.BadRequest(c, "Invalid application ID")
		return
	}

	if err := h.signup.ConfirmEmail(c.Request.Context(), applicationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Email confirmed"})
}

// SubmitApplication godoc
// @Summary      Submit application form
// @Description  Files the shop profile and moves the application to pending payment
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Application ID"
// @Param        request body SubmitApplicationRequest true "Application form"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /applications/{id}/submit [post]
func (h *OnboardingHandler) SubmitApplication(c *gin.Context) {
	applicationID, ok := h.applicationID(c)
	if !ok {
		return
	}
	if !h.ownApplication(c, applicationID) {
		return
	}

	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	documentIDs := make([]uuid.UUID, 0, len(req.DocumentIDs))
	for _, raw := range req.DocumentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid document ID")
			return
		}
		documentIDs = append(documentIDs, id)
	}

	err := h.signup.SubmitApplication(c.Request.Context(), applicationID, onboardingapp.SubmitInput{
		ShopName:    req.ShopName,
		Description: req.Description,
		Address:     req.Address,
		NationalID:  req.NationalID,
		Phone:       req.Phone,
		DocumentIDs: documentIDs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Application submitted"})
}

// VerifyPayment godoc
// @Summary      Verify a subscription payment
// @Description  Checks reported payment evidence against the plan price and the payment provider
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        id              path   string                 true  "Application ID"
// @Param        Idempotency-Key header string                 false "Idempotency key for safe retries"
// @Param        request         body   PaymentEvidenceRequest true  "Payment evidence"
// @Success      200 {object} dto.Response{data=onboardingapp.VerificationOutcome}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /applications/{id}/payment [post]
func (h *OnboardingHandler) VerifyPayment(c *gin.Context) {
	applicationID, ok := h.applicationID(c)
	if !ok {
		return
	}
	if !h.ownApplication(c, applicationID) {
		return
	}

	var req PaymentEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	outcome, err := h.payments.Verify(c.Request.Context(), applicationID, onboardingapp.EvidenceInput{
		TransactionID:   req.TransactionID,
		ReportedAmount:  req.ReportedAmount,
		Currency:        req.Currency,
		ReceiverAddress: req.ReceiverAddress,
		ReportedAt:      req.ReportedAt,
		BillingName:     req.BillingName,
	}, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, outcome)
}

// GetApplication godoc
// @Summary      Get application status
// @Description  Returns the application with its lifecycle timeline
// @Tags         onboarding
// @Produce      json
// @Param        id path string true "Application ID"
// @Success      200 {object} dto.Response{data=ApplicationResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /applications/{id} [get]
func (h *OnboardingHandler) GetApplication(c *gin.Context) {
	applicationID, ok := h.applicationID(c)
	if !ok {
		return
	}

	app, err := h.apps.FindByID(c.Request.Context(), applicationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Vendors only see their own application; admins see all
	claims := middleware.GetJWTClaims(c)
	if claims != nil && !claims.IsAdmin() && claims.Subject != app.VendorID.String() {
		h.Forbidden(c, "Not your application")
		return
	}

	h.Success(c, toApplicationResponse(app))
}

// ownApplication verifies the caller may act on the application. Vendors
// may only touch their own application; admins may touch any. Responds with
// 403 (or the lookup error) and returns false when the caller may not.
func (h *OnboardingHandler) ownApplication(c *gin.Context, applicationID uuid.UUID) bool {
	app, err := h.apps.FindByID(c.Request.Context(), applicationID)
	if err != nil {
		h.HandleError(c, err)
		return false
	}

	claims := middleware.GetJWTClaims(c)
	if claims != nil && !claims.IsAdmin() && claims.Subject != app.VendorID.String() {
		h.Forbidden(c, "Not your application")
		return false
	}
	return true
}

// applicationID parses the application ID path parameter, responding with
// 400 on failure
func (h *OnboardingHandler) applicationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid application ID")
		return uuid.Nil, false
	}
	return id, true
}

func toApplicationResponse(app *onboarding.VendorApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:                   app.ID,
		VendorID:             app.VendorID,
		VendorName:           app.VendorName,
		State:                string(app.State),
		Plan:                 string(app.Plan),
		BillingCycle:         string(app.BillingCycle),
		RiskScore:            app.RiskScore,
		ManualReviewRequired: app.ManualReviewRequired,
		RejectionReason:      app.RejectionReason,
		SignedUpAt:           app.Timeline.SignedUpAt,
		EmailVerifiedAt:      app.Timeline.EmailVerifiedAt,
		FormSubmittedAt:      app.Timeline.FormSubmittedAt,
		PaymentVerifiedAt:    app.Timeline.PaymentVerifiedAt,
		ReviewedAt:           app.Timeline.ReviewedAt,
	}
}
