package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDecisionRepository implements DecisionRepository using GORM
type GormDecisionRepository struct {
	db *gorm.DB
}

// NewGormDecisionRepository creates a new GormDecisionRepository
func NewGormDecisionRepository(db *gorm.DB) *GormDecisionRepository {
	return &GormDecisionRepository{db: db}
}

// FindByApplication lists decisions recorded for an application
func (r *GormDecisionRepository) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]onboarding.AdminDecision, error) {
	var modelList []models.AdminDecisionModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("decided_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, persistenceError(err)
	}

	decisions := make([]onboarding.AdminDecision, 0, len(modelList))
	for i := range modelList {
		decisions = append(decisions, *modelList[i].ToDomain())
	}
	return decisions, nil
}

// Save inserts a decision record. Decisions are immutable once recorded.
func (r *GormDecisionRepository) Save(ctx context.Context, decision *onboarding.AdminDecision) error {
	model := models.AdminDecisionModelFromDomain(decision)
	return persistenceError(dbFrom(ctx, r.db).WithContext(ctx).Create(model).Error)
}

// Ensure GormDecisionRepository implements DecisionRepository
var _ onboarding.DecisionRepository = (*GormDecisionRepository)(nil)
