package model

import "time"

// SchemaVersion is one applied step of the payment schema. The newest row is the current version.
type SchemaVersion struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Version     string    `gorm:"type:varchar(20);not null;index"`
	Driver      string    `gorm:"type:varchar(16);not null"`
	Description string    `gorm:"type:text"`
	AppliedAt   time.Time `gorm:"not null"`
}

func (SchemaVersion) TableName() string {
	return "payment_schema_versions"
}
