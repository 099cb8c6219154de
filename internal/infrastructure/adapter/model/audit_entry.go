package model

import "time"

// AuditEntry is an append-only audit record of a payment transaction
type AuditEntry struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	TransactionID string    `gorm:"not null;size:36;index"`
	Event         string    `gorm:"not null;size:40;index"`
	Actor         string    `gorm:"size:64"`
	Details       string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for AuditEntry
func (AuditEntry) TableName() string {
	return "payment_audit_entries"
}
