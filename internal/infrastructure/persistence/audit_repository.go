package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"github.com/souqly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements AuditRepository using GORM. Audit writes
// deliberately bypass any active transaction: a security event must survive
// the rollback of the operation that triggered it.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Save inserts an audit record outside any active transaction
func (r *GormAuditRepository) Save(ctx context.Context, record *onboarding.AuditRecord) error {
	model := models.AuditRecordModelFromDomain(record)
	return persistenceError(r.db.WithContext(ctx).Create(model).Error)
}

// FindByVendor lists audit records for a vendor, newest first
func (r *GormAuditRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]onboarding.AuditRecord, error) {
	query := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("occurred_at DESC")

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}

	var modelList []models.AuditRecordModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, persistenceError(err)
	}

	records := make([]onboarding.AuditRecord, 0, len(modelList))
	for i := range modelList {
		records = append(records, *modelList[i].ToDomain())
	}
	return records, nil
}

// Ensure GormAuditRepository implements AuditRepository
var _ onboarding.AuditRepository = (*GormAuditRepository)(nil)
