// Package models holds the GORM persistence models. They are the
// anti-corruption layer between the domain entities and the database schema.
package models

import (
	"time"

	"gorm.io/gorm"
)

// FileModel represents the database persistence model for catalog files.
type FileModel struct {
	ID            uint   `gorm:"primarykey"`
	SID           string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: file_xxx"`
	Title         string `gorm:"not null;size:255"`
	ByteSize      uint64 `gorm:"not null"`
	Reference     string `gorm:"not null;size:1024;comment:opaque storage locator"`
	Eligibility   string `gorm:"not null;size:20;index:idx_eligibility"`
	Active        bool   `gorm:"not null;default:true;index:idx_files_active"`
	DownloadCount uint64 `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (FileModel) TableName() string {
	return "files"
}
