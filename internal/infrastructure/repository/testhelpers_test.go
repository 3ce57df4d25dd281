package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/filemart-io/filemart/internal/infrastructure/persistence/models"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.FileModel{}, &models.SubscriptionModel{}, &models.UsageRecordModel{})
	require.NoError(t, err)

	return db
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any)            {}
func (noopLogger) Info(string, ...any)             {}
func (noopLogger) Warn(string, ...any)             {}
func (noopLogger) Error(string, ...any)            {}
func (l noopLogger) With(...any) logger.Interface  { return l }
func (l noopLogger) Named(string) logger.Interface { return l }
func (noopLogger) Debugw(string, ...interface{})   {}
func (noopLogger) Infow(string, ...interface{})    {}
func (noopLogger) Warnw(string, ...interface{})    {}
func (noopLogger) Errorw(string, ...interface{})   {}

// The three models share one database, so their index names must not
// collide. SQLite treats index names as global, unlike MySQL.
func TestSetupMigratesAllModels(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"files", "subscriptions", "usage_records"} {
		require.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
}
