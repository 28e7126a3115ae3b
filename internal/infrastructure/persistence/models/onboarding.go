package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/souqly/backend/internal/domain/onboarding"
)

// ApplicationModel maps VendorApplication to the vendor_applications table
type ApplicationModel struct {
	AggregateModel
	VendorID             uuid.UUID  `gorm:"type:uuid;not null;index"`
	VendorName           string     `gorm:"size:255;not null"`
	State                string     `gorm:"size:50;not null;index"`
	Plan                 string     `gorm:"size:50;not null"`
	BillingCycle         string     `gorm:"size:20;not null"`
	RiskScore            int        `gorm:"not null;default:0"`
	ManualReviewRequired bool       `gorm:"not null;default:false"`
	RejectionReason      string     `gorm:"type:text"`
	SignedUpAt           time.Time  `gorm:"not null"`
	EmailVerifiedAt      *time.Time
	FormSubmittedAt      *time.Time
	PaymentVerifiedAt    *time.Time
	ReviewedAt           *time.Time
}

// TableName returns the table name
func (ApplicationModel) TableName() string {
	return "vendor_applications"
}

// ToDomain converts the model to the domain aggregate
func (m *ApplicationModel) ToDomain() *onboarding.VendorApplication {
	app := &onboarding.VendorApplication{
		VendorID:             m.VendorID,
		VendorName:           m.VendorName,
		State:                onboarding.ApplicationState(m.State),
		Plan:                 onboarding.Plan(m.Plan),
		BillingCycle:         onboarding.BillingCycle(m.BillingCycle),
		RiskScore:            m.RiskScore,
		ManualReviewRequired: m.ManualReviewRequired,
		RejectionReason:      m.RejectionReason,
		Timeline: onboarding.Timeline{
			SignedUpAt:        m.SignedUpAt,
			EmailVerifiedAt:   m.EmailVerifiedAt,
			FormSubmittedAt:   m.FormSubmittedAt,
			PaymentVerifiedAt: m.PaymentVerifiedAt,
			ReviewedAt:        m.ReviewedAt,
		},
	}
	m.PopulateAggregateRoot(&app.BaseAggregateRoot)
	return app
}

// ApplicationModelFromDomain converts the domain aggregate to the model
func ApplicationModelFromDomain(app *onboarding.VendorApplication) *ApplicationModel {
	m := &ApplicationModel{
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
	m.FromDomainAggregateRoot(app.BaseAggregateRoot)
	return m
}

// PaymentEvidenceModel maps PaymentEvidence to the payment_evidence table
type PaymentEvidenceModel struct {
	BaseModel
	ApplicationID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID   string          `gorm:"size:100;not null;index"`
	ReportedAmount  decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Currency        string          `gorm:"size:3;not null"`
	ReceiverAddress string          `gorm:"size:255;not null"`
	ReportedAt      time.Time       `gorm:"not null"`
	Status          string          `gorm:"size:20;not null"`
	RejectionCode   string          `gorm:"size:50"`
}

// TableName returns the table name
func (PaymentEvidenceModel) TableName() string {
	return "payment_evidence"
}

// ToDomain converts the model to the domain entity
func (m *PaymentEvidenceModel) ToDomain() *onboarding.PaymentEvidence {
	return &onboarding.PaymentEvidence{
		BaseEntity:      m.BaseModel.ToDomain(),
		ApplicationID:   m.ApplicationID,
		TransactionID:   m.TransactionID,
		ReportedAmount:  m.ReportedAmount,
		Currency:        m.Currency,
		ReceiverAddress: m.ReceiverAddress,
		ReportedAt:      m.ReportedAt,
		Status:          onboarding.VerificationStatus(m.Status),
		RejectionCode:   m.RejectionCode,
	}
}

// PaymentEvidenceModelFromDomain converts the domain entity to the model
func PaymentEvidenceModelFromDomain(e *onboarding.PaymentEvidence) *PaymentEvidenceModel {
	m := &PaymentEvidenceModel{
		ApplicationID:   e.ApplicationID,
		TransactionID:   e.TransactionID,
		ReportedAmount:  e.ReportedAmount,
		Currency:        e.Currency,
		ReceiverAddress: e.ReceiverAddress,
		ReportedAt:      e.ReportedAt,
		Status:          string(e.Status),
		RejectionCode:   e.RejectionCode,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// PaymentLedgerEntryModel maps PaymentLedgerEntry to the payment_ledger table.
// The unique index on transaction_id is what makes verification idempotent
// at the storage layer.
type PaymentLedgerEntryModel struct {
	BaseModel
	ApplicationID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendorID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID   string          `gorm:"size:100;not null;uniqueIndex"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Currency        string          `gorm:"size:3;not null"`
	ConfirmationRef string          `gorm:"size:100"`
	VerifiedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name
func (PaymentLedgerEntryModel) TableName() string {
	return "payment_ledger"
}

// ToDomain converts the model to the domain entity
func (m *PaymentLedgerEntryModel) ToDomain() *onboarding.PaymentLedgerEntry {
	return &onboarding.PaymentLedgerEntry{
		BaseEntity:      m.BaseModel.ToDomain(),
		ApplicationID:   m.ApplicationID,
		VendorID:        m.VendorID,
		TransactionID:   m.TransactionID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		ConfirmationRef: m.ConfirmationRef,
		VerifiedAt:      m.VerifiedAt,
	}
}

// PaymentLedgerEntryModelFromDomain converts the domain entity to the model
func PaymentLedgerEntryModelFromDomain(e *onboarding.PaymentLedgerEntry) *PaymentLedgerEntryModel {
	m := &PaymentLedgerEntryModel{
		ApplicationID:   e.ApplicationID,
		VendorID:        e.VendorID,
		TransactionID:   e.TransactionID,
		Amount:          e.Amount,
		Currency:        e.Currency,
		ConfirmationRef: e.ConfirmationRef,
		VerifiedAt:      e.VerifiedAt,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// DocumentModel maps DocumentRecord to the vendor_documents table
type DocumentModel struct {
	BaseModel
	VendorID          uuid.UUID `gorm:"type:uuid;not null;index"`
	ApplicationID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Type              string    `gorm:"size:50;not null"`
	Format            string    `gorm:"size:10;not null"`
	StorageKey        string    `gorm:"size:512;not null;uniqueIndex"`
	FileSignatureHash string    `gorm:"size:64;not null"`
	SizeBytes         int64     `gorm:"not null"`
	Verified          bool      `gorm:"not null;default:false"`
}

// TableName returns the table name
func (DocumentModel) TableName() string {
	return "vendor_documents"
}

// ToDomain converts the model to the domain entity
func (m *DocumentModel) ToDomain() *onboarding.DocumentRecord {
	return &onboarding.DocumentRecord{
		BaseEntity:        m.BaseModel.ToDomain(),
		VendorID:          m.VendorID,
		ApplicationID:     m.ApplicationID,
		Type:              onboarding.DocumentType(m.Type),
		Format:            onboarding.FileFormat(m.Format),
		StorageKey:        m.StorageKey,
		FileSignatureHash: m.FileSignatureHash,
		SizeBytes:         m.SizeBytes,
		Verified:          m.Verified,
	}
}

// DocumentModelFromDomain converts the domain entity to the model
func DocumentModelFromDomain(d *onboarding.DocumentRecord) *DocumentModel {
	m := &DocumentModel{
		VendorID:          d.VendorID,
		ApplicationID:     d.ApplicationID,
		Type:              string(d.Type),
		Format:            string(d.Format),
		StorageKey:        d.StorageKey,
		FileSignatureHash: d.FileSignatureHash,
		SizeBytes:         d.SizeBytes,
		Verified:          d.Verified,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}

// AdminDecisionModel maps AdminDecision to the admin_decisions table
type AdminDecisionModel struct {
	BaseModel
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Decision      string    `gorm:"size:20;not null"`
	DecidedBy     uuid.UUID `gorm:"type:uuid;not null"`
	DecidedAt     time.Time `gorm:"not null"`
	Notes         string    `gorm:"type:text"`
	Conditions    string    `gorm:"type:text"`
}

// TableName returns the table name
func (AdminDecisionModel) TableName() string {
	return "admin_decisions"
}

// ToDomain converts the model to the domain entity
func (m *AdminDecisionModel) ToDomain() *onboarding.AdminDecision {
	return &onboarding.AdminDecision{
		BaseEntity:    m.BaseModel.ToDomain(),
		ApplicationID: m.ApplicationID,
		Decision:      onboarding.Decision(m.Decision),
		DecidedBy:     m.DecidedBy,
		DecidedAt:     m.DecidedAt,
		Notes:         m.Notes,
		Conditions:    m.Conditions,
	}
}

// AdminDecisionModelFromDomain converts the domain entity to the model
func AdminDecisionModelFromDomain(d *onboarding.AdminDecision) *AdminDecisionModel {
	m := &AdminDecisionModel{
		ApplicationID: d.ApplicationID,
		Decision:      string(d.Decision),
		DecidedBy:     d.DecidedBy,
		DecidedAt:     d.DecidedAt,
		Notes:         d.Notes,
		Conditions:    d.Conditions,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}

// AuditRecordModel maps AuditRecord to the security_audit_log table
type AuditRecordModel struct {
	BaseModel
	VendorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind       string    `gorm:"size:50;not null;index"`
	Detail     string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null"`
}

// TableName returns the table name
func (AuditRecordModel) TableName() string {
	return "security_audit_log"
}

// ToDomain converts the model to the domain entity
func (m *AuditRecordModel) ToDomain() *onboarding.AuditRecord {
	return &onboarding.AuditRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		VendorID:   m.VendorID,
		Kind:       m.Kind,
		Detail:     m.Detail,
		OccurredAt: m.OccurredAt,
	}
}

// AuditRecordModelFromDomain converts the domain entity to the model
func AuditRecordModelFromDomain(r *onboarding.AuditRecord) *AuditRecordModel {
	m := &AuditRecordModel{
		VendorID:   r.VendorID,
		Kind:       r.Kind,
		Detail:     r.Detail,
		OccurredAt: r.OccurredAt,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
