package usecase

import (
	"context"
	"encoding/json"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
)

// CallbackOperation is the structured callback body under the operation key
type CallbackOperation struct {
	Token                       string                     `json:"token"`
	ShopProcessID               string                     `json:"shop_process_id"`
	Response                    string                     `json:"response"`
	ResponseDetails             string                     `json:"response_details"`
	Amount                      string                     `json:"amount"`
	Currency                    string                     `json:"currency"`
	AuthorizationNumber         string                     `json:"authorization_number"`
	TicketNumber                string                     `json:"ticket_number"`
	ResponseCode                string                     `json:"response_code"`
	ResponseDescription         string                     `json:"response_description"`
	ExtendedResponseDescription string                     `json:"extended_response_description"`
	SecurityInformation         entity.SecurityInformation `json:"security_information"`
	IVAAmount                   string                     `json:"iva_amount"`
	IVATicketNumber             string                     `json:"iva_ticket_number"`
}

type callbackSecurityWire struct {
	CustomerIP  entity.FlexString `json:"customer_ip"`
	CardSource  entity.FlexString `json:"card_source"`
	CardCountry entity.FlexString `json:"card_country"`
	RiskIndex   entity.FlexString `json:"risk_index"`
	Version     entity.FlexString `json:"version"`
}

type callbackOperationWire struct {
	Token                       entity.FlexString    `json:"token"`
	ShopProcessID               entity.FlexString    `json:"shop_process_id"`
	Response                    entity.FlexString    `json:"response"`
	ResponseDetails             entity.FlexString    `json:"response_details"`
	Amount                      entity.FlexString    `json:"amount"`
	Currency                    entity.FlexString    `json:"currency"`
	AuthorizationNumber         entity.FlexString    `json:"authorization_number"`
	TicketNumber                entity.FlexString    `json:"ticket_number"`
	ResponseCode                entity.FlexString    `json:"response_code"`
	ResponseDescription         entity.FlexString    `json:"response_description"`
	ExtendedResponseDescription entity.FlexString    `json:"extended_response_description"`
	SecurityInformation         callbackSecurityWire `json:"security_information"`
	IVAAmount                   entity.FlexString    `json:"iva_amount"`
	IVATicketNumber             entity.FlexString    `json:"iva_ticket_number"`
}

// UnmarshalJSON accepts ids, amounts and codes sent as JSON numbers
func (o *CallbackOperation) UnmarshalJSON(b []byte) error {
	var w callbackOperationWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*o = CallbackOperation{
		Token:                       string(w.Token),
		ShopProcessID:               string(w.ShopProcessID),
		Response:                    string(w.Response),
		ResponseDetails:             string(w.ResponseDetails),
		Amount:                      string(w.Amount),
		Currency:                    string(w.Currency),
		AuthorizationNumber:         string(w.AuthorizationNumber),
		TicketNumber:                string(w.TicketNumber),
		ResponseCode:                string(w.ResponseCode),
		ResponseDescription:         string(w.ResponseDescription),
		ExtendedResponseDescription: string(w.ExtendedResponseDescription),
		SecurityInformation: entity.SecurityInformation{
			CustomerIP:  string(w.SecurityInformation.CustomerIP),
			CardSource:  string(w.SecurityInformation.CardSource),
			CardCountry: string(w.SecurityInformation.CardCountry),
			RiskIndex:   string(w.SecurityInformation.RiskIndex),
			Version:     string(w.SecurityInformation.Version),
		},
		IVAAmount:       string(w.IVAAmount),
		IVATicketNumber: string(w.IVATicketNumber),
	}
	return nil
}

// CallbackInput is an inbound confirmation in either shape.
// Operation is nil when no structured body was sent; Query holds flat parameters.
type CallbackInput struct {
	Operation *CallbackOperation
	Query     map[string]string
}

// OutcomeKind classifies what the reconciler did with a callback
type OutcomeKind string

// Outcome kinds
const (
	OutcomeApplied           OutcomeKind = "applied"
	OutcomeAlreadyProcessed  OutcomeKind = "already_processed"
	OutcomeAnomaly           OutcomeKind = "anomaly"
	OutcomeUncorrelated      OutcomeKind = "uncorrelated"
	OutcomeUnroutable        OutcomeKind = "unroutable"
	OutcomePersistenceFailed OutcomeKind = "persistence_failed"
)

// AckStatus is the body status the gateway expects as acknowledgment
const AckStatus = "success"

// Outcome is the result of reconciling one callback.
// The gateway is always acknowledged; RedirectURL is where the user agent goes.
type Outcome struct {
	Kind           OutcomeKind
	Success        bool
	Confirmation   entity.Confirmation
	Transaction    *entity.Transaction
	SignatureValid *bool
	RedirectURL    string
	Err            error
}

// ConfirmationUseCase reconciles gateway confirmations onto transactions
type ConfirmationUseCase interface {
	// Reconcile never fails towards the gateway. Problems are reported in Outcome.Kind and Outcome.Err.
	Reconcile(ctx context.Context, input CallbackInput) Outcome

	// Apply reconciles an already normalized confirmation, as returned by a status query
	Apply(ctx context.Context, confirmation entity.Confirmation) Outcome
}
