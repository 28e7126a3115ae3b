package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentHandler exposes document intake and retrieval
type DocumentHandler struct {
	BaseHandler
	documents *onboardingapp.DocumentService
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *onboardingapp.DocumentService, events shared.EventPublisher, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		events:    events,
		logger:    logger,
	}
}

// Upload godoc
// @Summary      Upload a supporting document
// @Description  Accepts a PDF, JPEG, or PNG validated by content signature, scanned, and stored
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     string true "Application ID"
// @Param        type formData string true "Document type"
// @Param        file formData file   true "Document file"
// @Success      201 {object} dto.Response{data=onboardingapp.DocumentResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /applications/{id}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid application ID")
		return
	}

	vendorID, err := getVendorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Unreadable file")
		return
	}

	result, err := h.documents.Upload(c.Request.Context(), vendorID, applicationID, onboardingapp.UploadInput{
		Type:                onboarding.DocumentType(c.PostForm("type")),
		Filename:            fileHeader.Filename,
		DeclaredContentType: fileHeader.Header.Get("Content-Type"),
		Content:             content,
	})
	if err != nil {
		// Security failures are escalated beyond the HTTP response
		if shared.IsSecurityError(err) {
			h.publishViolation(c, vendorID, err.Error())
		}
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// AccessURL godoc
// @Summary      Get a document download URL
// @Description  Returns a fresh time-boxed signed URL for a stored document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} dto.Response{data=onboardingapp.DocumentResult}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /documents/{id}/url [get]
func (h *DocumentHandler) AccessURL(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	result, err := h.documents.AccessURL(c.Request.Context(), documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *DocumentHandler) publishViolation(c *gin.Context, vendorID uuid.UUID, detail string) {
	if h.events == nil {
		return
	}
	event := onboarding.NewSecurityViolationEvent(vendorID, onboarding.AuditSecurityViolation, detail)
	if err := h.events.Publish(c.Request.Context(), event); err != nil {
		h.logger.Error("security violation publish failed",
			zap.String("vendor_id", vendorID.String()),
			zap.Error(err),
		)
	}
}
