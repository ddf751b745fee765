package database

import (
	"fmt"
	"strings"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xbpneus/authgate/internal/infrastructure/repositories"
)

// Open creates a new database connection. logLevel is one of silent,
// error, warn or info. Driver errors are translated, so unique violations
// surface as gorm.ErrDuplicatedKey.
func Open(dsn, logLevel string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:         logger.Default.LogMode(parseLogLevel(logLevel)),
		TranslateError: true,
	}

	return gorm.Open(postgres.Open(dsn), config)
}

// AutoMigrate creates the credential store tables and the casbin_rule table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&repositories.DBPrincipal{}, &repositories.DBRoleProfile{}); err != nil {
		return fmt.Errorf("failed to migrate credential tables: %w", err)
	}

	// The adapter creates casbin_rule on construction.
	if _, err := gormadapter.NewAdapterByDB(db); err != nil {
		return fmt.Errorf("failed to initialize Casbin GORM adapter: %w", err)
	}

	return nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
