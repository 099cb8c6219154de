package dto

import "github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"

// ConfirmationRequest is the structured callback body posted by the gateway
type ConfirmationRequest struct {
	Operation *usecase.CallbackOperation `json:"operation"`
}

// ConfirmationAck acknowledges a callback. Status is always "success".
type ConfirmationAck struct {
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url,omitempty"`
}
