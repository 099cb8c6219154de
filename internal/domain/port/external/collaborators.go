package external

import (
	"context"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
)

// OrderPaymentStatus is the payment state mirrored onto a linked order
type OrderPaymentStatus string

// Order payment statuses
const (
	OrderPaid       OrderPaymentStatus = "paid"
	OrderFailed     OrderPaymentStatus = "failed"
	OrderRolledBack OrderPaymentStatus = "rolled_back"
)

// OrderPaymentExtra carries gateway references stamped on the order
type OrderPaymentExtra struct {
	ShopProcessID       string
	AuthorizationNumber string
	TicketNumber        string
	ResponseDescription string
}

// OrderUpdater keeps a linked order in lockstep with its payment
type OrderUpdater interface {
	// SetPaymentStatus returns ErrOrderNotFound when the order does not exist
	SetPaymentStatus(ctx context.Context, orderID string, status OrderPaymentStatus, extra OrderPaymentExtra) error
}

// NotificationKind names the event a customer is notified about
type NotificationKind string

// Notification kinds
const (
	NotifyPaymentApproved   NotificationKind = "payment_approved"
	NotifyPaymentRejected   NotificationKind = "payment_rejected"
	NotifyPaymentRolledBack NotificationKind = "payment_rolled_back"
	NotifyDeliveryUpdated   NotificationKind = "delivery_updated"
	NotifyDeliveryAttempt   NotificationKind = "delivery_attempt"
	NotifyDeliveryRated     NotificationKind = "delivery_rated"
)

// Notifier is fire-and-forget. Notify must not block on delivery and its failure
// never affects the state transition that triggered it.
type Notifier interface {
	Notify(ctx context.Context, snapshot entity.Transaction, kind NotificationKind)
}

// Authorizer is the administrative capability oracle
type Authorizer interface {
	IsAdmin(ctx context.Context, userID string) bool
}
