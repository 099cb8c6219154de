package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents the database model for payment transactions.
// Nested snapshots are stored as JSON text so the schema works on PostgreSQL and SQLite alike.
type Transaction struct {
	ID               string          `gorm:"primaryKey;size:36"`
	ShopProcessID    string          `gorm:"uniqueIndex;not null;size:32"`
	GatewayProcessID string          `gorm:"size:64"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency         string          `gorm:"not null;size:3"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NumberOfPayments int             `gorm:"not null;default:1"`
	Description      string          `gorm:"size:255"`
	IsTokenPayment   bool            `gorm:"not null;default:false"`
	AliasToken       string          `gorm:"size:128"`
	PaymentMethod    string          `gorm:"not null;size:20"`
	Status           string          `gorm:"not null;size:20;index"`

	Response                    string `gorm:"size:1"`
	ResponseCode                string `gorm:"size:8"`
	ResponseDescription         string `gorm:"size:255"`
	ExtendedResponseDescription string `gorm:"type:text"`
	ResponseDetails             string `gorm:"size:255"`
	AuthorizationNumber         string `gorm:"size:64"`
	TicketNumber                string `gorm:"size:64"`
	IVAAmount                   string `gorm:"size:32"`
	IVATicketNumber             string `gorm:"size:64"`
	SecurityInformation         string `gorm:"type:text"`
	ConfirmationDate            *time.Time

	Customer string `gorm:"type:text"`
	Items    string `gorm:"type:text"`

	DeliveryStatus  string `gorm:"size:20;index"`
	DeliveryRated   bool   `gorm:"not null;default:false"`
	DeliveryDetails string `gorm:"type:text"`

	IsRolledBack   bool `gorm:"not null;default:false"`
	RollbackDate   *time.Time
	RollbackReason string `gorm:"type:text"`
	RollbackBy     string `gorm:"size:64"`

	SaleID    string    `gorm:"size:64;index"`
	CreatedBy string    `gorm:"size:64;index"`
	Version   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "payment_transactions"
}
