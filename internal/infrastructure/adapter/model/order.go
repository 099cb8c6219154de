package model

import "time"

// Order is the storefront sale a payment may be linked to.
// Only the payment columns are owned by this service.
type Order struct {
	ID                  string `gorm:"primaryKey;size:64"`
	PaymentStatus       string `gorm:"size:20;index"`
	ShopProcessID       string `gorm:"size:32"`
	AuthorizationNumber string `gorm:"size:64"`
	TicketNumber        string `gorm:"size:64"`
	PaymentDescription  string `gorm:"size:255"`
	PaidAt              *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}
