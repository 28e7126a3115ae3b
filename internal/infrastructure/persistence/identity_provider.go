package persistence

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"github.com/souqly/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormIdentityProvider manages vendor login accounts in the vendor_accounts
// table. Email verification is challenge based: SendVerificationEmail mints
// a one-time token and ConfirmEmail redeems it.
type GormIdentityProvider struct {
	db       *gorm.DB
	notifier onboardingapp.Notifier
	logger   *zap.Logger
}

// NewGormIdentityProvider creates a new GormIdentityProvider
func NewGormIdentityProvider(db *gorm.DB, notifier onboardingapp.Notifier, logger *zap.Logger) *GormIdentityProvider {
	return &GormIdentityProvider{db: db, notifier: notifier, logger: logger}
}

// CreateAccount provisions a login account for the vendor
func (p *GormIdentityProvider) CreateAccount(ctx context.Context, email, phone, displayName string) (uuid.UUID, error) {
	model := &models.VendorAccountModel{
		Email:       email,
		Phone:       phone,
		DisplayName: displayName,
	}
	model.ID = uuid.New()

	if err := dbFrom(ctx, p.db).WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return uuid.Nil, shared.ErrAlreadyExists
		}
		return uuid.Nil, persistenceError(err)
	}
	return model.ID, nil
}

// SendVerificationEmail mints a fresh verification token and delivers the
// challenge. Re-sending replaces any previous token.
func (p *GormIdentityProvider) SendVerificationEmail(ctx context.Context, accountID uuid.UUID) error {
	token, err := newVerificationToken()
	if err != nil {
		return err
	}

	result := dbFrom(ctx, p.db).WithContext(ctx).
		Model(&models.VendorAccountModel{}).
		Where("id = ?", accountID).
		Update("verification_token", token)
	if result.Error != nil {
		return persistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}

	body := fmt.Sprintf("Confirm your email address using token %s", token)
	if err := p.notifier.NotifyVendor(ctx, accountID, "Verify your Souqly account", body); err != nil {
		p.logger.Warn("verification email delivery failed",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
	}
	return nil
}

// IsEmailVerified reports whether the account completed the email challenge
func (p *GormIdentityProvider) IsEmailVerified(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var model models.VendorAccountModel
	if err := dbFrom(ctx, p.db).WithContext(ctx).
		Select("email_verified").
		First(&model, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, shared.ErrNotFound
		}
		return false, persistenceError(err)
	}
	return model.EmailVerified, nil
}

// ConfirmEmail redeems a verification token. The token is single use: the
// update clears it in the same statement that marks the account verified.
func (p *GormIdentityProvider) ConfirmEmail(ctx context.Context, accountID uuid.UUID, token string) error {
	if token == "" {
		return shared.NewValidationError("verification token is required")
	}

	result := dbFrom(ctx, p.db).WithContext(ctx).
		Model(&models.VendorAccountModel{}).
		Where("id = ? AND verification_token = ? AND email_verified = ?", accountID, token, false).
		Updates(map[string]interface{}{
			"email_verified":     true,
			"verification_token": "",
			"verified_at":        gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return persistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewValidationError("invalid or expired verification token")
	}
	return nil
}

func newVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Ensure GormIdentityProvider implements IdentityProvider
var _ onboardingapp.IdentityProvider = (*GormIdentityProvider)(nil)
