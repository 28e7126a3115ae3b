package onboarding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentService validates and stores uploaded supporting files. Validation
// trusts content, never labels: the declared MIME type plays no part in
// format detection.
type DocumentService struct {
	docs    onboarding.DocumentRepository
	audit   onboarding.AuditRepository
	storage ObjectStorage
	scanner MalwareScanner
	limiter RateLimiter
	policy  Policy
	clock   Clock
	logger  *zap.Logger
}

// NewDocumentService creates a document service
func NewDocumentService(
	docs onboarding.DocumentRepository,
	audit onboarding.AuditRepository,
	storage ObjectStorage,
	scanner MalwareScanner,
	limiter RateLimiter,
	policy Policy,
	clock Clock,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		docs:    docs,
		audit:   audit,
		storage: storage,
		scanner: scanner,
		limiter: limiter,
		policy:  policy,
		clock:   clock,
		logger:  logger,
	}
}

// Upload validates and stores one document. Order matters: the rate limit
// is checked before any I/O, size before content inspection, signature
// before the scan, and nothing touches object storage until all checks pass.
func (s *DocumentService) Upload(ctx context.Context, vendorID, applicationID uuid.UUID, input UploadInput) (*DocumentResult, error) {
	if !s.limiter.Allow(vendorID.String()) {
		return nil, shared.ErrRateLimitExceeded
	}

	if err := onboarding.ValidateDocumentType(input.Type); err != nil {
		return nil, err
	}
	if int64(len(input.Content)) > s.policy.MaxUploadBytes {
		return nil, shared.ErrFileTooLarge
	}
	if len(input.Content) == 0 {
		return nil, shared.NewValidationError("File content is empty")
	}

	format := onboarding.DetectFileFormat(input.Content)
	if format == onboarding.FormatUnknown {
		// A well-formed declared type with mismatched content is a spoof
		// attempt; record it even though the rejection itself is not fatal.
		if allowedDeclaredType(input.DeclaredContentType) {
			s.recordAudit(ctx, vendorID, onboarding.AuditSignatureSpoof,
				fmt.Sprintf("declared %q, content signature unknown", input.DeclaredContentType))
		}
		return nil, shared.ErrInvalidFileSignature
	}

	scanCtx, cancel := context.WithTimeout(ctx, s.policy.ScanTimeout)
	defer cancel()
	infected, signature, err := s.scanner.Scan(scanCtx, input.Content)
	if err != nil {
		if scanCtx.Err() != nil {
			return nil, shared.ErrTimeout
		}
		return nil, err
	}
	if infected {
		// Fatal: escalated as a security event, not merely a rejected upload
		s.recordAudit(ctx, vendorID, onboarding.AuditMalwareDetected,
			fmt.Sprintf("malware %q in %q", signature, input.Filename))
		return nil, shared.NewSecurityError("Uploaded file failed the malware scan")
	}

	// Stored under a generated random name; the original filename is never
	// used as a storage key.
	storageKey := fmt.Sprintf("documents/%s/%s.%s", vendorID, uuid.New(), format)
	hash := sha256.Sum256(input.Content)

	if err := s.storage.Upload(ctx, storageKey, input.Content, format.ContentType()); err != nil {
		return nil, err
	}

	doc, err := onboarding.NewDocumentRecord(vendorID, applicationID, input.Type, format,
		storageKey, hex.EncodeToString(hash[:]), int64(len(input.Content)))
	if err != nil {
		s.deleteBlob(ctx, storageKey)
		return nil, err
	}

	if err := withRetry(ctx, s.policy.RetryMax, s.policy.RetryBackoff, func(ctx context.Context) error {
		return s.docs.Save(ctx, doc)
	}); err != nil {
		// The blob must not outlive a failed record write
		s.deleteBlob(ctx, storageKey)
		return nil, err
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, storageKey, s.policy.SignedURLExpiry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document accepted",
		zap.String("vendor_id", vendorID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("format", string(format)),
	)

	return &DocumentResult{
		DocumentID: doc.ID,
		URL:        url,
		ExpiresAt:  expiresAt,
	}, nil
}

// AccessURL returns a fresh time-boxed signed URL for a stored document
func (s *DocumentService) AccessURL(ctx context.Context, documentID uuid.UUID) (*DocumentResult, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey, s.policy.SignedURLExpiry)
	if err != nil {
		return nil, err
	}

	return &DocumentResult{
		DocumentID: doc.ID,
		URL:        url,
		ExpiresAt:  expiresAt,
	}, nil
}

// recordAudit writes the security trail entry. Audit writes must not be
// lost silently; a failing write is an error-level event.
func (s *DocumentService) recordAudit(ctx context.Context, vendorID uuid.UUID, kind, detail string) {
	if err := s.audit.Save(ctx, onboarding.NewAuditRecord(vendorID, kind, detail)); err != nil {
		s.logger.Error("audit write failed",
			zap.String("kind", kind),
			zap.String("vendor_id", vendorID.String()),
			zap.Error(err),
		)
	}
}

func (s *DocumentService) deleteBlob(ctx context.Context, storageKey string) {
	if err := s.storage.DeleteObject(ctx, storageKey); err != nil {
		s.logger.Warn("orphaned blob cleanup failed",
			zap.String("storage_key", storageKey),
			zap.Error(err),
		)
	}
}

// allowedDeclaredType reports whether the declared MIME type is one the
// platform accepts. Used only for audit classification, never for validation.
func allowedDeclaredType(contentType string) bool {
	switch contentType {
	case "application/pdf", "image/jpeg", "image/png":
		return true
	default:
		return false
	}
}
