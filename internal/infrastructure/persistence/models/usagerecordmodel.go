package models

import (
	"time"
)

// UsageRecordModel represents the database persistence model for the download
// ledger. Rows are inserted once and never updated; there is no soft delete.
type UsageRecordModel struct {
	ID             uint    `gorm:"primarykey"`
	SID            string  `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: usg_xxx"`
	UserID         uint    `gorm:"not null;index:idx_user_file,priority:1;index:idx_user_subscription_issued,priority:1"`
	SubscriptionID *uint   `gorm:"index:idx_user_subscription_issued,priority:2;comment:null for free and order downloads"`
	OrderSID       *string `gorm:"size:50;index:idx_order"`
	FileID         uint    `gorm:"not null;index:idx_user_file,priority:2"`
	ByteSize       uint64  `gorm:"not null;comment:file size snapshot at issuance"`
	Token          string  `gorm:"uniqueIndex;not null;size:64"`
	IssuedAt       time.Time `gorm:"not null;index:idx_user_subscription_issued,priority:3"`
	ExpiresAt      time.Time `gorm:"not null"`
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (UsageRecordModel) TableName() string {
	return "usage_records"
}
