package persistence

import (
	"context"

	"github.com/google/uuid"
	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"github.com/souqly/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resource names for provisioned vendor record sets
const (
	ResourceVendorRole     = "role"
	ResourceDashboard      = "dashboard"
	ResourceAnalytics      = "analytics"
	ResourcePaymentAccount = "payment_account"
)

// GormVendorProvisioner creates and removes the per-vendor record sets that
// approval provisions. Each resource is a row in vendor_provisions, so the
// commit coordinator can compensate one record set without touching the
// others. Creates and deletes are idempotent: re-creating an existing
// resource or deleting a missing one is not an error, which lets a retried
// commit or a compensation pass run safely over partial state.
type GormVendorProvisioner struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormVendorProvisioner creates a new GormVendorProvisioner
func NewGormVendorProvisioner(db *gorm.DB, logger *zap.Logger) *GormVendorProvisioner {
	return &GormVendorProvisioner{db: db, logger: logger}
}

// SetVendorRole grants the vendor role record
func (p *GormVendorProvisioner) SetVendorRole(ctx context.Context, vendorID uuid.UUID) error {
	return p.create(ctx, vendorID, ResourceVendorRole)
}

// RevertVendorRole removes the vendor role record
func (p *GormVendorProvisioner) RevertVendorRole(ctx context.Context, vendorID uuid.UUID) error {
	return p.remove(ctx, vendorID, ResourceVendorRole)
}

// CreateDashboard provisions the vendor dashboard record set
func (p *GormVendorProvisioner) CreateDashboard(ctx context.Context, vendorID uuid.UUID) error {
	return p.create(ctx, vendorID, ResourceDashboard)
}

// DeleteDashboard removes the vendor dashboard record set
func (p *GormVendorProvisioner) DeleteDashboard(ctx context.Context, vendorID uuid.UUID) error {
	return p.remove(ctx, vendorID, ResourceDashboard)
}

// CreateAnalytics provisions the vendor analytics record set
func (p *GormVendorProvisioner) CreateAnalytics(ctx context.Context, vendorID uuid.UUID) error {
	return p.create(ctx, vendorID, ResourceAnalytics)
}

// DeleteAnalytics removes the vendor analytics record set
func (p *GormVendorProvisioner) DeleteAnalytics(ctx context.Context, vendorID uuid.UUID) error {
	return p.remove(ctx, vendorID, ResourceAnalytics)
}

// CreatePaymentAccount provisions the vendor payment account record
func (p *GormVendorProvisioner) CreatePaymentAccount(ctx context.Context, vendorID uuid.UUID) error {
	return p.create(ctx, vendorID, ResourcePaymentAccount)
}

// DeletePaymentAccount removes the vendor payment account record
func (p *GormVendorProvisioner) DeletePaymentAccount(ctx context.Context, vendorID uuid.UUID) error {
	return p.remove(ctx, vendorID, ResourcePaymentAccount)
}

// IsProvisioned reports whether the resource exists for the vendor
func (p *GormVendorProvisioner) IsProvisioned(ctx context.Context, vendorID uuid.UUID, resource string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, p.db).WithContext(ctx).
		Model(&models.VendorProvisionModel{}).
		Where("vendor_id = ? AND resource = ?", vendorID, resource).
		Count(&count).Error; err != nil {
		return false, persistenceError(err)
	}
	return count > 0, nil
}

func (p *GormVendorProvisioner) create(ctx context.Context, vendorID uuid.UUID, resource string) error {
	model := &models.VendorProvisionModel{
		ID:       uuid.New(),
		VendorID: vendorID,
		Resource: resource,
	}
	if err := dbFrom(ctx, p.db).WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			p.logger.Debug("vendor resource already provisioned",
				zap.String("vendor_id", vendorID.String()),
				zap.String("resource", resource))
			return nil
		}
		return persistenceError(err)
	}
	return nil
}

func (p *GormVendorProvisioner) remove(ctx context.Context, vendorID uuid.UUID, resource string) error {
	return persistenceError(dbFrom(ctx, p.db).WithContext(ctx).
		Where("vendor_id = ? AND resource = ?", vendorID, resource).
		Delete(&models.VendorProvisionModel{}).Error)
}

// Ensure GormVendorProvisioner implements VendorProvisioner
var _ onboardingapp.VendorProvisioner = (*GormVendorProvisioner)(nil)
