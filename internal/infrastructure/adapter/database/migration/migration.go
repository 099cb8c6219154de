package migration

import (
	"context"
	"errors"
	"fmt"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

const (
	// CurrentSchemaVersion represents the current database schema version
	CurrentSchemaVersion = "1.1.0"

	driverPostgres = "postgres"
)

// MigrationManager manages database migrations
type MigrationManager struct {
	db               *gorm.DB
	logger           coreport.Logger
	timeProvider     coreport.TimeProvider
	driver           string
	advancedIndexMgr *AdvancedIndexManager
}

// NewMigrationManager creates a new migration manager for the given driver
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider, driver string) *MigrationManager {
	return &MigrationManager{
		db:               db,
		logger:           logger,
		timeProvider:     timeProvider,
		driver:           driver,
		advancedIndexMgr: NewAdvancedIndexManager(db, logger),
	}
}

// MigrateAll brings the schema to CurrentSchemaVersion
func (m *MigrationManager) MigrateAll(ctx context.Context) error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion,
		"driver":         m.driver,
	})

	db := m.db.WithContext(ctx)

	if err := db.AutoMigrate(&model.SchemaVersion{}); err != nil {
		return m.fail("Failed to create migration version table", err)
	}

	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return m.fail("Failed to check current schema version", err)
	}

	if currentVersion == CurrentSchemaVersion {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": currentVersion,
		})
		return nil
	}

	m.logger.Info("Current database version", map[string]any{
		"version": currentVersion,
	})

	if err := m.autoMigrateModels(db); err != nil {
		return m.fail("Failed to auto-migrate models", err)
	}

	if err := m.runVersionedMigrations(db, currentVersion); err != nil {
		m.logger.Error("Failed to run versioned migrations", map[string]any{
			"error":           err.Error(),
			"current_version": currentVersion,
			"target_version":  CurrentSchemaVersion,
		})
		return err
	}

	if err := m.createIndexes(db); err != nil {
		return m.fail("Failed to create indexes", err)
	}

	if m.driver == driverPostgres {
		if err := m.advancedIndexMgr.CreateAdvancedIndexes(ctx); err != nil {
			return m.fail("Failed to create advanced indexes", err)
		}
		m.advancedIndexMgr.CreatePerformanceTweaks(ctx)
	}

	if err := m.setVersion(ctx, CurrentSchemaVersion, "Payment schema migration"); err != nil {
		m.logger.Error("Failed to update schema version", map[string]any{
			"error":   err.Error(),
			"version": CurrentSchemaVersion,
		})
		return err
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": CurrentSchemaVersion,
	})
	return nil
}

func (m *MigrationManager) fail(msg string, err error) error {
	m.logger.Error(msg, map[string]any{"error": err.Error()})
	return fmt.Errorf("%s: %w", msg, err)
}

// GetCurrentVersion gets the current migration version, empty for a fresh database
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var version model.SchemaVersion
	result := m.db.WithContext(ctx).Order("applied_at desc").Order("id desc").First(&version)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}

	return version.Version, nil
}

// setVersion records a new migration version
func (m *MigrationManager) setVersion(ctx context.Context, version string, details string) error {
	row := model.SchemaVersion{
		Version:     version,
		Driver:      m.driver,
		Description: details,
		AppliedAt:   m.timeProvider.Now(),
	}

	return m.db.WithContext(ctx).Create(&row).Error
}

// autoMigrateModels auto-migrates database models
func (m *MigrationManager) autoMigrateModels(db *gorm.DB) error {
	m.logger.Info("Auto-migrating database models", nil)

	return db.AutoMigrate(
		&model.Transaction{},
		&model.AuditEntry{},
		&model.Order{},
	)
}

// runVersionedMigrations runs migrations specific to version transitions
func (m *MigrationManager) runVersionedMigrations(db *gorm.DB, currentVersion string) error {
	m.logger.Info("Running versioned migrations", map[string]any{
		"from": currentVersion,
		"to":   CurrentSchemaVersion,
	})

	switch currentVersion {
	case "":
		return nil
	case "1.0.0":
		return m.migrateFrom1_0_0To1_1_0(db)
	default:
		return fmt.Errorf("no migration path from schema version %q", currentVersion)
	}
}

// migrateFrom1_0_0To1_1_0 backfills the delivery_rated guard column introduced in 1.1.0
func (m *MigrationManager) migrateFrom1_0_0To1_1_0(db *gorm.DB) error {
	m.logger.Info("Migrating from v1.0.0 to v1.1.0", nil)

	result := db.Exec(`UPDATE payment_transactions SET delivery_rated = ? WHERE delivery_details LIKE ?`,
		true, `%"satisfaction":{%`)
	if result.Error != nil {
		return result.Error
	}

	m.logger.Info("Backfilled delivery ratings", map[string]any{
		"rows": result.RowsAffected,
	})
	return nil
}

// createIndexes creates indexes shared by every driver
func (m *MigrationManager) createIndexes(db *gorm.DB) error {
	m.logger.Info("Creating database indexes", nil)

	statements := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_transactions_shop_process_id ON payment_transactions (shop_process_id)",
		"CREATE INDEX IF NOT EXISTS idx_payment_transactions_created_by_created_at ON payment_transactions (created_by, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_payment_audit_entries_tx_created ON payment_audit_entries (transaction_id, created_at)",
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
