package dto

import (
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
)

// AdvanceDeliveryRequest moves a delivery to a new status
type AdvanceDeliveryRequest struct {
	Status                string     `json:"status" binding:"required"`
	Notes                 string     `json:"notes" binding:"max=1000"`
	TrackingNumber        string     `json:"trackingNumber" binding:"max=100"`
	Carrier               string     `json:"carrier" binding:"max=100"`
	EstimatedDeliveryDate *time.Time `json:"estimatedDeliveryDate"`
}

// DeliveryAttemptRequest records one delivery attempt
type DeliveryAttemptRequest struct {
	Status          string     `json:"status" binding:"required"`
	Notes           string     `json:"notes" binding:"max=1000"`
	NextAttemptDate *time.Time `json:"nextAttemptDate"`
}

// RateDeliveryRequest is the customer's satisfaction rating
type RateDeliveryRequest struct {
	Rating   int    `json:"rating" binding:"required"`
	Feedback string `json:"feedback"`
}

// DeliveryAttemptResponse is one attempt log entry
type DeliveryAttemptResponse struct {
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	Timestamp       time.Time  `json:"timestamp"`
	NextAttemptDate *time.Time `json:"nextAttemptDate,omitempty"`
}

// DeliveryHistoryResponse is one status change
type DeliveryHistoryResponse struct {
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
	At        time.Time `json:"at"`
}

// SatisfactionResponse is the stored rating
type SatisfactionResponse struct {
	Rating      int       `json:"rating"`
	Feedback    string    `json:"feedback,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// DeliveryResponse represents the fulfilment state of a transaction
type DeliveryResponse struct {
	Status                string                    `json:"status"`
	TrackingNumber        string                    `json:"trackingNumber,omitempty"`
	Carrier               string                    `json:"carrier,omitempty"`
	EstimatedDeliveryDate *time.Time                `json:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    *time.Time                `json:"actualDeliveryDate,omitempty"`
	Attempts              []DeliveryAttemptResponse `json:"attempts"`
	History               []DeliveryHistoryResponse `json:"history"`
	Satisfaction          *SatisfactionResponse     `json:"customerSatisfaction,omitempty"`
}

// NewDeliveryResponse maps a delivery state
func NewDeliveryResponse(d entity.DeliveryState) DeliveryResponse {
	resp := DeliveryResponse{
		Status:                string(d.CurrentStatus()),
		TrackingNumber:        d.TrackingNumber,
		Carrier:               d.Carrier,
		EstimatedDeliveryDate: d.EstimatedDeliveryDate,
		ActualDeliveryDate:    d.ActualDeliveryDate,
		Attempts:              make([]DeliveryAttemptResponse, 0, len(d.Attempts)),
		History:               make([]DeliveryHistoryResponse, 0, len(d.History)),
	}
	for _, a := range d.Attempts {
		resp.Attempts = append(resp.Attempts, DeliveryAttemptResponse{
			Status:          string(a.Status),
			Notes:           a.Notes,
			Timestamp:       a.Timestamp,
			NextAttemptDate: a.NextAttemptDate,
		})
	}
	for _, h := range d.History {
		resp.History = append(resp.History, DeliveryHistoryResponse{
			Status:    string(h.Status),
			Notes:     h.Notes,
			UpdatedBy: h.UpdatedBy,
			At:        h.At,
		})
	}
	if d.Satisfaction != nil {
		resp.Satisfaction = &SatisfactionResponse{
			Rating:      d.Satisfaction.Rating,
			Feedback:    d.Satisfaction.Feedback,
			SubmittedAt: d.Satisfaction.SubmittedAt,
		}
	}
	return resp
}
