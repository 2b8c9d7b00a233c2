package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"huts4u-backend/config"
	"huts4u-backend/internal/model"
)

// Models lists every persisted model in migration order.
var Models = []any{
	&model.Hotel{},
	&model.Room{},
	&model.MealPlan{},
	&model.Coupon{},
	&model.InventoryDay{},
	&model.PushSubscription{},
}

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig, log *zap.SugaredLogger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(LogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Info("Running database migrations...")
	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if cfg.EnforceInventoryChecks {
		log.Info("Applying inventory CHECK constraints...")
		if err := applyInventoryChecks(db); err != nil {
			log.Warnf("failed to apply some inventory constraints: %v. Continuing without them.", err)
		}
	}

	log.Info("Database initialization complete.")
	return db, nil
}

// LogLevel maps a config string onto gorm's logger levels. Unknown values
// mean warn.
func LogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	}
	return logger.Warn
}

var inventoryCounters = []string{
	"three_hour_available", "three_hour_booked",
	"six_hour_available", "six_hour_booked",
	"twelve_hour_available", "twelve_hour_booked",
	"overnight_available", "overnight_booked",
}

// inventoryCheckDDL returns the postgres statements that keep inventory
// counters non-negative. Each statement is idempotent.
func inventoryCheckDDL() []string {
	ddls := make([]string, 0, len(inventoryCounters))
	for _, col := range inventoryCounters {
		name := "inventory_days_" + col + "_nonneg"
		ddls = append(ddls, fmt.Sprintf(
			"DO $$ BEGIN "+
				"IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN "+
				"ALTER TABLE inventory_days ADD CONSTRAINT %s CHECK (%s >= 0); "+
				"END IF; END $$;",
			name, name, col))
	}
	return ddls
}

func applyInventoryChecks(db *gorm.DB) error {
	for _, ddl := range inventoryCheckDDL() {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
