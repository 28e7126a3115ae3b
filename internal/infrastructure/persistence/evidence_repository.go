package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"github.com/souqly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEvidenceRepository implements EvidenceRepository using GORM
type GormEvidenceRepository struct {
	db *gorm.DB
}

// NewGormEvidenceRepository creates a new GormEvidenceRepository
func NewGormEvidenceRepository(db *gorm.DB) *GormEvidenceRepository {
	return &GormEvidenceRepository{db: db}
}

// FindByID finds payment evidence by its ID
func (r *GormEvidenceRepository) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.PaymentEvidence, error) {
	var model models.PaymentEvidenceModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, persistenceError(err)
	}
	return model.ToDomain(), nil
}

// FindByTransactionID finds the latest evidence reported for a transaction
func (r *GormEvidenceRepository) FindByTransactionID(ctx context.Context, transactionID string) (*onboarding.PaymentEvidence, error) {
	var model models.PaymentEvidenceModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, persistenceError(err)
	}
	return model.ToDomain(), nil
}

// FindByApplication lists evidence submitted for an application
func (r *GormEvidenceRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]onboarding.PaymentEvidence, error) {
	var modelList []models.PaymentEvidenceModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, persistenceError(err)
	}

	evidence := make([]onboarding.PaymentEvidence, 0, len(modelList))
	for i := range modelList {
		evidence = append(evidence, *modelList[i].ToDomain())
	}
	return evidence, nil
}

// Save creates or updates payment evidence
func (r *GormEvidenceRepository) Save(ctx context.Context, evidence *onboarding.PaymentEvidence) error {
	model := models.PaymentEvidenceModelFromDomain(evidence)
	return persistenceError(dbFrom(ctx, r.db).WithContext(ctx).Save(model).Error)
}

// Ensure GormEvidenceRepository implements EvidenceRepository
var _ onboarding.EvidenceRepository = (*GormEvidenceRepository)(nil)
