package entity

import "time"

// DeliveryStatus is a step of physical fulfilment
type DeliveryStatus string

// Delivery statuses in forward order, plus the orthogonal problem state
const (
	DeliveryPaymentConfirmed DeliveryStatus = "payment_confirmed"
	DeliveryPreparingOrder   DeliveryStatus = "preparing_order"
	DeliveryInTransit        DeliveryStatus = "in_transit"
	DeliveryDelivered        DeliveryStatus = "delivered"
	DeliveryProblem          DeliveryStatus = "problem"
)

var deliveryOrder = map[DeliveryStatus]int{
	DeliveryPaymentConfirmed: 0,
	DeliveryPreparingOrder:   1,
	DeliveryInTransit:        2,
	DeliveryDelivered:        3,
}

// AttemptStatus is the outcome of one delivery attempt
type AttemptStatus string

// Attempt outcomes
const (
	AttemptSuccessful       AttemptStatus = "successful"
	AttemptFailed           AttemptStatus = "failed"
	AttemptRescheduled      AttemptStatus = "rescheduled"
	AttemptCustomerAbsent   AttemptStatus = "customer_absent"
	AttemptAddressIncorrect AttemptStatus = "address_incorrect"
)

// Rating bounds for customer satisfaction
const (
	MinRating = 1
	MaxRating = 5
)

// DeliveryAttempt is one entry of the append-only attempts log
type DeliveryAttempt struct {
	Status          AttemptStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
	NextAttemptDate *time.Time    `json:"next_attempt_date,omitempty"`
}

// DeliveryHistoryEntry records one status change
type DeliveryHistoryEntry struct {
	Status    DeliveryStatus `json:"status"`
	Notes     string         `json:"notes,omitempty"`
	UpdatedBy string         `json:"updated_by,omitempty"`
	At        time.Time      `json:"at"`
}

// CustomerSatisfaction is the single rating a customer may leave
type CustomerSatisfaction struct {
	Rating      int       `json:"rating"`
	Feedback    string    `json:"feedback,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// DeliveryState tracks fulfilment of an approved transaction
type DeliveryState struct {
	Status                DeliveryStatus
	TrackingNumber        string
	Carrier               string
	EstimatedDeliveryDate *time.Time
	ActualDeliveryDate    *time.Time
	Attempts              []DeliveryAttempt
	History               []DeliveryHistoryEntry
	Satisfaction          *CustomerSatisfaction
}

// CurrentStatus treats an unset status as payment_confirmed
func (d DeliveryState) CurrentStatus() DeliveryStatus {
	if d.Status == "" {
		return DeliveryPaymentConfirmed
	}
	return d.Status
}

// IsDelivered reports whether the goods reached the customer
func (d DeliveryState) IsDelivered() bool {
	return d.Status == DeliveryDelivered
}

// IsRated reports whether a satisfaction rating exists
func (d DeliveryState) IsRated() bool {
	return d.Satisfaction != nil
}

// IsClosed reports whether the delivery reached a terminal status
func (d DeliveryState) IsClosed() bool {
	s := d.CurrentStatus()
	return s == DeliveryDelivered || s == DeliveryProblem
}

// CanAdvanceTo checks the forward-only ordering.
// problem is reachable from any open status; delivered and problem are final.
func (s DeliveryStatus) CanAdvanceTo(next DeliveryStatus) bool {
	if s == DeliveryDelivered || s == DeliveryProblem {
		return false
	}
	if next == DeliveryProblem {
		return true
	}
	from, ok := deliveryOrder[s]
	if !ok {
		return false
	}
	to, ok := deliveryOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// IsValidDeliveryStatus validates if the delivery status is recognized
func IsValidDeliveryStatus(status string) bool {
	if DeliveryStatus(status) == DeliveryProblem {
		return true
	}
	_, ok := deliveryOrder[DeliveryStatus(status)]
	return ok
}

// IsValidAttemptStatus validates if the attempt status is recognized
func IsValidAttemptStatus(status string) bool {
	switch AttemptStatus(status) {
	case AttemptSuccessful, AttemptFailed, AttemptRescheduled, AttemptCustomerAbsent, AttemptAddressIncorrect:
		return true
	default:
		return false
	}
}

// OpenDeliveryStatuses are the statuses from which fulfilment can still progress
var OpenDeliveryStatuses = []DeliveryStatus{DeliveryPaymentConfirmed, DeliveryPreparingOrder, DeliveryInTransit}
