package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"github.com/souqly/backend/internal/interfaces/http/dto"
	"github.com/souqly/backend/internal/interfaces/http/middleware"
)

// ReviewHandler exposes the admin review surface
type ReviewHandler struct {
	BaseHandler
	reviews *onboardingapp.ReviewService
	apps    onboarding.ApplicationRepository
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *onboardingapp.ReviewService, apps onboarding.ApplicationRepository) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		apps:    apps,
	}
}

// ListPending godoc
// @Summary      List applications pending review
// @Description  Returns pending applications ordered by submission time
// @Tags         review
// @Produce      json
// @Param        page      query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]ApplicationResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/applications [get]
func (h *ReviewHandler) ListPending(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}

	apps, err := h.apps.FindByState(c.Request.Context(), onboarding.StatePendingReview, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		responses = append(responses, toApplicationResponse(&apps[i]))
	}

	h.Success(c, responses)
}

// Review godoc
// @Summary      Rule on an application
// @Description  Approves, rejects, or requests more information for a pending application
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        id      path string        true "Application ID"
// @Param        request body ReviewRequest true "Ruling"
// @Success      200 {object} dto.Response{data=onboardingapp.ReviewResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/applications/{id}/review [post]
func (h *ReviewHandler) Review(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid application ID")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	reviewerID, err := uuid.Parse(middleware.GetJWTSubject(c))
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.reviews.Review(c.Request.Context(), applicationID, onboardingapp.ReviewInput{
		ReviewerID: reviewerID,
		Decision:   onboarding.Decision(req.Decision),
		Notes:      req.Notes,
		Conditions: req.Conditions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
