package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionModel represents the database persistence model for
// subscriptions. The trusted device list is embedded as a JSON document so a
// subscription and its devices load and store in one row.
type SubscriptionModel struct {
	ID                uint   `gorm:"primarykey"`
	SID               string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: sub_xxx"`
	UserID            uint   `gorm:"not null;index:idx_user_subscription"`
	PackageID         uint   `gorm:"not null;index:idx_package_subscription"`
	LifetimeBandwidth uint64 `gorm:"not null;default:0;comment:0 means unlimited"`
	LifetimeFiles     uint64 `gorm:"not null;default:0;comment:0 means unlimited"`
	DailyBandwidth    uint64 `gorm:"not null;default:0;comment:0 means unlimited"`
	DailyFiles        uint64 `gorm:"not null;default:0;comment:0 means unlimited"`
	MaxDevices        int    `gorm:"not null;default:0"`
	Active            bool   `gorm:"not null;default:true;index:idx_subscriptions_active"`
	Current           bool   `gorm:"not null;default:false;index:idx_user_current"`
	ExpiresAt         time.Time
	Devices           datatypes.JSON
	Version           int `gorm:"not null;default:1"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
