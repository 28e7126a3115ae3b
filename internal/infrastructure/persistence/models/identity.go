package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorAccountModel maps vendor login accounts to the vendor_accounts table
type VendorAccountModel struct {
	BaseModel
	Email             string `gorm:"size:255;not null;uniqueIndex"`
	Phone             string `gorm:"size:20;not null"`
	DisplayName       string `gorm:"size:255;not null"`
	EmailVerified     bool   `gorm:"not null;default:false"`
	VerificationToken string `gorm:"size:64;index"`
	VerifiedAt        *time.Time
}

// TableName returns the table name
func (VendorAccountModel) TableName() string {
	return "vendor_accounts"
}

// VendorProvisionModel is one provisioned record for an approved vendor.
// Role, dashboard, analytics and payment account records all live in this
// table distinguished by resource, so the commit coordinator can create and
// compensate each record set independently.
type VendorProvisionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	VendorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_resource"`
	Resource  string    `gorm:"size:50;not null;uniqueIndex:idx_vendor_resource"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name
func (VendorProvisionModel) TableName() string {
	return "vendor_provisions"
}
