package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager manages PostgreSQL-specific indexes and table settings
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

type indexStatement struct {
	name string
	sql  string
}

// CreateAdvancedIndexes creates partial and BRIN indexes
func (m *AdvancedIndexManager) CreateAdvancedIndexes(ctx context.Context) error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	statements := []indexStatement{
		{
			// reconciler lookups only ever touch transactions still awaiting a confirmation
			name: "idx_payment_transactions_open",
			sql: `CREATE INDEX IF NOT EXISTS idx_payment_transactions_open
				ON payment_transactions (shop_process_id)
				WHERE status IN ('pending', 'processing', 'requires_3ds')`,
		},
		{
			name: "idx_payment_transactions_approved_delivery",
			sql: `CREATE INDEX IF NOT EXISTS idx_payment_transactions_approved_delivery
				ON payment_transactions (delivery_status, updated_at)
				WHERE status = 'approved'`,
		},
		{
			name: "idx_payment_transactions_created_at_brin",
			sql: `CREATE INDEX IF NOT EXISTS idx_payment_transactions_created_at_brin
				ON payment_transactions USING BRIN (created_at)
				WITH (pages_per_range = 32)`,
		},
		{
			name: "idx_payment_audit_entries_created_at_brin",
			sql: `CREATE INDEX IF NOT EXISTS idx_payment_audit_entries_created_at_brin
				ON payment_audit_entries USING BRIN (created_at)`,
		},
	}

	for _, stmt := range statements {
		if err := m.db.WithContext(ctx).Exec(stmt.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": stmt.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", nil)
	return nil
}

// CreatePerformanceTweaks applies table settings. Failures are logged, not returned.
func (m *AdvancedIndexManager) CreatePerformanceTweaks(ctx context.Context) {
	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	// rows are updated in place several times during their lifecycle
	if err := m.db.WithContext(ctx).Exec(`ALTER TABLE payment_transactions SET (fillfactor = 85)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for payment_transactions", map[string]any{
			"error": err.Error(),
		})
	}

	if err := m.db.WithContext(ctx).Exec(`ALTER TABLE payment_transactions ALTER COLUMN created_by SET STATISTICS 500`).Error; err != nil {
		m.logger.Warn("Failed to set statistics target for created_by", map[string]any{
			"error": err.Error(),
		})
	}
}
