package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
)

// Event is the payload handed to every sink
type Event struct {
	ID             string                    `json:"id"`
	Kind           external.NotificationKind `json:"kind"`
	OccurredAt     time.Time                 `json:"occurred_at"`
	TransactionID  string                    `json:"transaction_id"`
	ShopProcessID  string                    `json:"shop_process_id"`
	Status         entity.TransactionStatus  `json:"status"`
	Amount         string                    `json:"amount"`
	Currency       entity.Currency           `json:"currency"`
	ResponseCode   string                    `json:"response_code,omitempty"`
	DeliveryStatus entity.DeliveryStatus     `json:"delivery_status,omitempty"`
	Rating         int                       `json:"rating,omitempty"`
	CustomerEmail  string                    `json:"customer_email,omitempty"`
	OrderID        string                    `json:"order_id,omitempty"`
}

// NewEvent snapshots the fields a recipient needs from a transaction
func NewEvent(snapshot entity.Transaction, kind external.NotificationKind, at time.Time) Event {
	ev := Event{
		ID:            uuid.NewString(),
		Kind:          kind,
		OccurredAt:    at,
		TransactionID: snapshot.ID,
		ShopProcessID: snapshot.ShopProcessID,
		Status:        snapshot.Status,
		Amount:        entity.FormatAmount(snapshot.Amount),
		Currency:      snapshot.Currency,
		ResponseCode:  snapshot.Gateway.ResponseCode,
		CustomerEmail: snapshot.Customer.Email,
		OrderID:       snapshot.SaleID,
	}
	if snapshot.Status == entity.StatusApproved {
		ev.DeliveryStatus = snapshot.Delivery.CurrentStatus()
	}
	if snapshot.Delivery.Satisfaction != nil {
		ev.Rating = snapshot.Delivery.Satisfaction.Rating
	}
	return ev
}
