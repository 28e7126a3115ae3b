package onboarding

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/shared"
)

// DocumentType classifies an uploaded supporting file
type DocumentType string

const (
	DocumentNationalID      DocumentType = "national_id"
	DocumentCommercialReg   DocumentType = "commercial_registration"
	DocumentTaxCard         DocumentType = "tax_card"
	DocumentBankStatement   DocumentType = "bank_statement"
	DocumentOther           DocumentType = "other"
)

// ValidateDocumentType checks the document type against the known set
func ValidateDocumentType(t DocumentType) error {
	switch t {
	case DocumentNationalID, DocumentCommercialReg, DocumentTaxCard, DocumentBankStatement, DocumentOther:
		return nil
	default:
		return shared.NewValidationError("Unknown document type")
	}
}

// FileFormat identifies the true format of an uploaded file by its leading
// bytes, independent of any caller-declared content type.
type FileFormat string

const (
	FormatPDF     FileFormat = "pdf"
	FormatJPEG    FileFormat = "jpeg"
	FormatPNG     FileFormat = "png"
	FormatUnknown FileFormat = "unknown"
)

// Magic-byte signatures of the allowed upload formats
var fileSignatures = []struct {
	format FileFormat
	magic  []byte
}{
	{FormatPDF, []byte{0x25, 0x50, 0x44, 0x46}},
	{FormatJPEG, []byte{0xFF, 0xD8, 0xFF}},
	{FormatPNG, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
}

// DetectFileFormat inspects the leading bytes of content. The declared MIME
// type is irrelevant: a mismatch between label and content is treated as a
// signature violation by the intake validator.
func DetectFileFormat(content []byte) FileFormat {
	for _, sig := range fileSignatures {
		if len(content) >= len(sig.magic) && bytes.Equal(content[:len(sig.magic)], sig.magic) {
			return sig.format
		}
	}
	return FormatUnknown
}

// ContentType returns the canonical MIME type for the format
func (f FileFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// DocumentRecord is an uploaded supporting file. The original filename is
// never used as a storage key; files live under generated random names and
// are exposed only through time-boxed signed URLs.
type DocumentRecord struct {
	shared.BaseEntity
	VendorID          uuid.UUID
	ApplicationID     uuid.UUID
	Type              DocumentType
	Format            FileFormat
	StorageKey        string
	FileSignatureHash string
	SizeBytes         int64
	Verified          bool
}

// NewDocumentRecord creates a record for an accepted upload
func NewDocumentRecord(vendorID, applicationID uuid.UUID, docType DocumentType, format FileFormat, storageKey, signatureHash string, size int64) (*DocumentRecord, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("Vendor ID is required")
	}
	if err := ValidateDocumentType(docType); err != nil {
		return nil, err
	}
	if storageKey == "" {
		return nil, shared.NewValidationError("Storage key is required")
	}

	return &DocumentRecord{
		BaseEntity:        shared.NewBaseEntity(),
		VendorID:          vendorID,
		ApplicationID:     applicationID,
		Type:              docType,
		Format:            format,
		StorageKey:        storageKey,
		FileSignatureHash: signatureHash,
		SizeBytes:         size,
	}, nil
}

// MarkVerified flags the document as reviewed. Only manual or automated
// review sets this; uploads always start unverified.
func (d *DocumentRecord) MarkVerified() {
	d.Verified = true
	d.UpdatedAt = time.Now()
}
