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

// GormApplicationRepository implements ApplicationRepository using GORM
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewGormApplicationRepository creates a new GormApplicationRepository
func NewGormApplicationRepository(db *gorm.DB) *GormApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// FindByID finds an application by its ID
func (r *GormApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.VendorApplication, error) {
	var model models.ApplicationModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, persistenceError(err)
	}
	return model.ToDomain(), nil
}

// FindActiveByVendor returns the vendor's single non-terminal application
func (r *GormApplicationRepository) FindActiveByVendor(ctx context.Context, vendorID uuid.UUID) (*onboarding.VendorApplication, error) {
	var model models.ApplicationModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("vendor_id = ? AND state NOT IN ?", vendorID,
			[]string{string(onboarding.StateApproved), string(onboarding.StateRejected)}).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, persistenceError(err)
	}
	return model.ToDomain(), nil
}

// FindLastRejectedByVendor returns the most recent rejected application
func (r *GormApplicationRepository) FindLastRejectedByVendor(ctx context.Context, vendorID uuid.UUID) (*onboarding.VendorApplication, error) {
	var model models.ApplicationModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("vendor_id = ? AND state = ?", vendorID, string(onboarding.StateRejected)).
		Order("updated_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, persistenceError(err)
	}
	return model.ToDomain(), nil
}

// FindByState lists applications in a given state
func (r *GormApplicationRepository) FindByState(ctx context.Context, state onboarding.ApplicationState, filter shared.Filter) ([]onboarding.VendorApplication, error) {
	var modelList []models.ApplicationModel
	query := dbFrom(ctx, r.db).WithContext(ctx).
		Where("state = ?", string(state)).
		Order("created_at ASC")

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}

	if err := query.Find(&modelList).Error; err != nil {
		return nil, persistenceError(err)
	}

	apps := make([]onboarding.VendorApplication, 0, len(modelList))
	for i := range modelList {
		apps = append(apps, *modelList[i].ToDomain())
	}
	return apps, nil
}

// Save persists the aggregate guarded by its optimistic version. A fresh
// aggregate is inserted; an existing one is updated only when the stored
// version still equals the version the aggregate was loaded at. Operations
// may increment the version more than once, so guarding against the loaded
// version is what makes two writers of the same snapshot mutually exclusive.
func (r *GormApplicationRepository) Save(ctx context.Context, app *onboarding.VendorApplication) error {
	model := models.ApplicationModelFromDomain(app)
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var count int64
	if err := db.Model(&models.ApplicationModel{}).
		Where("id = ?", app.ID).
		Count(&count).Error; err != nil {
		return persistenceError(err)
	}

	if count == 0 {
		if err := db.Create(model).Error; err != nil {
			if isDuplicateKey(err) {
				return shared.ErrAlreadyExists
			}
			return persistenceError(err)
		}
		app.MarkPersisted()
		return nil
	}

	result := db.Model(&models.ApplicationModel{}).
		Where("id = ? AND version = ?", app.ID, app.LoadedVersion()).
		Updates(map[string]interface{}{
			"state":                  model.State,
			"risk_score":             model.RiskScore,
			"manual_review_required": model.ManualReviewRequired,
			"rejection_reason":       model.RejectionReason,
			"email_verified_at":      model.EmailVerifiedAt,
			"form_submitted_at":      model.FormSubmittedAt,
			"payment_verified_at":    model.PaymentVerifiedAt,
			"reviewed_at":            model.ReviewedAt,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})
	if result.Error != nil {
		return persistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	app.MarkPersisted()
	return nil
}

// Count returns the number of applications matching the filter
func (r *GormApplicationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.ApplicationModel{})
	if filter.Search != "" {
		query = query.Where("state = ?", filter.Search)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, persistenceError(err)
	}
	return count, nil
}

// Ensure GormApplicationRepository implements ApplicationRepository
var _ onboarding.ApplicationRepository = (*GormApplicationRepository)(nil)
