package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"github.com/souqly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document record by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.DocumentRecord, error) {
	var model models.DocumentModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, persistenceError(err)
	}
	return model.ToDomain(), nil
}

// FindByApplication lists documents uploaded for an application
func (r *GormDocumentRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]onboarding.DocumentRecord, error) {
	var modelList []models.DocumentModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, persistenceError(err)
	}

	docs := make([]onboarding.DocumentRecord, 0, len(modelList))
	for i := range modelList {
		docs = append(docs, *modelList[i].ToDomain())
	}
	return docs, nil
}

// CountByVendorSince counts documents a vendor uploaded after the given time
func (r *GormDocumentRepository) CountByVendorSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("vendor_id = ? AND created_at >= ?", vendorID, since).
		Count(&count).Error; err != nil {
		return 0, persistenceError(err)
	}
	return count, nil
}

// Save creates or updates a document record
func (r *GormDocumentRepository) Save(ctx context.Context, doc *onboarding.DocumentRecord) error {
	model := models.DocumentModelFromDomain(doc)
	return persistenceError(dbFrom(ctx, r.db).WithContext(ctx).Save(model).Error)
}

// Delete removes a document record
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.DocumentModel{}, "id = ?", id)
	if result.Error != nil {
		return persistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ onboarding.DocumentRepository = (*GormDocumentRepository)(nil)
