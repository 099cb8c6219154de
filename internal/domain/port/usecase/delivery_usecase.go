package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
)

// DeliveryMetadata accompanies a delivery status change
type DeliveryMetadata struct {
	Notes                 string     `json:"notes"`
	TrackingNumber        string     `json:"trackingNumber"`
	Carrier               string     `json:"carrier"`
	EstimatedDeliveryDate *time.Time `json:"estimatedDeliveryDate"`
}

// DeliveryUseCase tracks fulfilment of approved transactions
type DeliveryUseCase interface {
	// Get returns the delivery state. Owner or admin.
	Get(ctx context.Context, actor, transactionID string) (*entity.DeliveryState, error)

	// Advance moves the delivery forward. Admin only.
	Advance(ctx context.Context, actor, transactionID string, status string, metadata DeliveryMetadata) (*entity.Transaction, error)

	// RecordAttempt appends a delivery attempt. A successful attempt marks the delivery delivered. Admin only.
	RecordAttempt(ctx context.Context, actor, transactionID string, status string, notes string, nextAttemptDate *time.Time) (*entity.Transaction, error)

	// Rate stores the customer's satisfaction once the goods are delivered. Owner or admin, exactly once.
	Rate(ctx context.Context, actor, transactionID string, rating int, feedback string) (*entity.Transaction, error)
}
