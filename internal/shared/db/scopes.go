package db

import (
	"time"

	"gorm.io/gorm"
)

// NotDeleted filters out soft-deleted records. Use with Table() queries that
// bypass gorm's automatic soft-delete handling.
func NotDeleted() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("deleted_at IS NULL")
	}
}

// IssuedBetween bounds a query on the usage ledger's issued_at column. Pass
// zero times to leave a bound open.
func IssuedBetween(since, until time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !since.IsZero() {
			db = db.Where("issued_at >= ?", since)
		}
		if !until.IsZero() {
			db = db.Where("issued_at <= ?", until)
		}
		return db
	}
}
