// Package database owns the process-wide gorm handle. Init runs once from
// the CLI entrypoints; everything else reaches the pool through Get.
package database

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/filemart-io/filemart/internal/shared/config"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

var (
	handle *gorm.DB
	mu     sync.RWMutex
)

// Init opens the MySQL pool described by cfg and verifies it with a ping.
func Init(cfg *config.DatabaseConfig) error {
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		DSN: dsn(cfg),
		// The version probe on connect is one more line the log writer
		// would have to suppress.
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:      newQueryLogger(),
		PrepareStmt: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	mu.Lock()
	handle = gormDB
	mu.Unlock()

	logger.Info("database connection established", "database", cfg.Database)
	return nil
}

// dsn renders the driver string. loc=Local parses stored timestamps in the
// server's timezone; quota-window math normalizes to UTC in biztime.
func dsn(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
}

// Get returns the shared handle. Nil before Init.
func Get() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return handle
}

// Close tears the pool down. Safe to call before Init or twice.
func Close() error {
	mu.Lock()
	gormDB := handle
	handle = nil
	mu.Unlock()

	if gormDB == nil {
		return nil
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	logger.Info("database connection closed")
	return nil
}

// newQueryLogger adapts gorm's logging to the slog facade. Info level keeps
// per-query lines flowing; the writer demotes them to debug.
func newQueryLogger() gormlogger.Interface {
	return gormlogger.New(queryLogWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Info,
		IgnoreRecordNotFoundError: true,
	})
}

// queryLogWriter routes gorm's printf output to slog, classifying each line
// by severity and dropping connect-time introspection chatter.
type queryLogWriter struct{}

func (queryLogWriter) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	lower := strings.ToLower(msg)

	if strings.Contains(lower, "information_schema.schemata") ||
		strings.Contains(lower, "select version()") {
		return
	}

	switch {
	case strings.Contains(lower, "error"):
		logger.Error("database error", "details", msg)
	case strings.Contains(lower, "slow sql"):
		logger.Warn("slow query", "details", msg)
	default:
		logger.Debug("database query", "details", msg)
	}
}
