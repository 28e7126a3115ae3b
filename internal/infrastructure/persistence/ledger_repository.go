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

// GormLedgerRepository implements LedgerRepository using GORM. The unique
// index on transaction_id makes the repository the last line of defense
// against double-recording a verified payment.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByTransactionID finds a ledger entry by its provider transaction ID
func (r *GormLedgerRepository) FindByTransactionID(ctx context.Context, transactionID string) (*onboarding.PaymentLedgerEntry, error) {
	var model models.PaymentLedgerEntryModel
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, persistenceError(err)
	}
	return model.ToDomain(), nil
}

// Save inserts a ledger entry. Entries are immutable; a duplicate
// transaction ID fails with shared.ErrAlreadyExists.
func (r *GormLedgerRepository) Save(ctx context.Context, entry *onboarding.PaymentLedgerEntry) error {
	model := models.PaymentLedgerEntryModelFromDomain(entry)
	if err := dbFrom(ctx, r.db).WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrAlreadyExists
		}
		return persistenceError(err)
	}
	return nil
}

// CountByVendor returns the number of ledger entries for a vendor
func (r *GormLedgerRepository) CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&models.PaymentLedgerEntryModel{}).
		Where("vendor_id = ?", vendorID).
		Count(&count).Error; err != nil {
		return 0, persistenceError(err)
	}
	return count, nil
}

// Ensure GormLedgerRepository implements LedgerRepository
var _ onboarding.LedgerRepository = (*GormLedgerRepository)(nil)
