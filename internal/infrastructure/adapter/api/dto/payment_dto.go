package dto

import (
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
)

// GatewayResponse mirrors the confirmation fields stamped on a transaction
type GatewayResponse struct {
	Response                    string `json:"response,omitempty"`
	ResponseCode                string `json:"responseCode,omitempty"`
	ResponseDescription         string `json:"responseDescription,omitempty"`
	ExtendedResponseDescription string `json:"extendedResponseDescription,omitempty"`
	AuthorizationNumber         string `json:"authorizationNumber,omitempty"`
	TicketNumber                string `json:"ticketNumber,omitempty"`
	CardSource                  string `json:"cardSource,omitempty"`
	CardCountry                 string `json:"cardCountry,omitempty"`
	RiskIndex                   string `json:"riskIndex,omitempty"`
}

// ItemResponse is one purchased line
type ItemResponse struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
}

// RollbackResponse describes a voided transaction
type RollbackResponse struct {
	IsRolledBack bool       `json:"isRolledBack"`
	Date         *time.Time `json:"date,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	By           string     `json:"by,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID               string            `json:"id"`
	ShopProcessID    string            `json:"shopProcessId"`
	GatewayProcessID string            `json:"processId,omitempty"`
	Amount           string            `json:"amount"`
	Currency         string            `json:"currency"`
	TaxAmount        string            `json:"taxAmount,omitempty"`
	NumberOfPayments int               `json:"numberOfPayments"`
	Description      string            `json:"description"`
	PaymentMethod    string            `json:"paymentMethod"`
	IsTokenPayment   bool              `json:"isTokenPayment"`
	Status           string            `json:"status"`
	Gateway          *GatewayResponse  `json:"gateway,omitempty"`
	ConfirmationDate *time.Time        `json:"confirmationDate,omitempty"`
	Items            []ItemResponse    `json:"items,omitempty"`
	Delivery         *DeliveryResponse `json:"delivery,omitempty"`
	Rollback         *RollbackResponse `json:"rollback,omitempty"`
	SaleID           string            `json:"saleId,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// NewTransactionResponse maps a transaction to its API representation
func NewTransactionResponse(tx *entity.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:               tx.ID,
		ShopProcessID:    tx.ShopProcessID,
		GatewayProcessID: tx.GatewayProcessID,
		Amount:           entity.FormatAmount(tx.Amount),
		Currency:         string(tx.Currency),
		NumberOfPayments: tx.NumberOfPayments,
		Description:      tx.Description,
		PaymentMethod:    string(tx.PaymentMethod),
		IsTokenPayment:   tx.IsTokenPayment,
		Status:           string(tx.Status),
		ConfirmationDate: tx.ConfirmationDate,
		SaleID:           tx.SaleID,
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
	if !tx.TaxAmount.IsZero() {
		resp.TaxAmount = entity.FormatAmount(tx.TaxAmount)
	}
	if tx.Gateway.ResponseCode != "" || tx.Gateway.Response != "" || tx.Gateway.ResponseDescription != "" {
		resp.Gateway = &GatewayResponse{
			Response:                    tx.Gateway.Response,
			ResponseCode:                tx.Gateway.ResponseCode,
			ResponseDescription:         tx.Gateway.ResponseDescription,
			ExtendedResponseDescription: tx.Gateway.ExtendedResponseDescription,
			AuthorizationNumber:         tx.Gateway.AuthorizationNumber,
			TicketNumber:                tx.Gateway.TicketNumber,
			CardSource:                  tx.Gateway.SecurityInformation.CardSource,
			CardCountry:                 tx.Gateway.SecurityInformation.CardCountry,
			RiskIndex:                   tx.Gateway.SecurityInformation.RiskIndex,
		}
	}
	for _, it := range tx.Items {
		resp.Items = append(resp.Items, ItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   entity.FormatAmount(it.UnitPrice),
		})
	}
	if tx.Status == entity.StatusApproved {
		d := NewDeliveryResponse(tx.Delivery)
		resp.Delivery = &d
	}
	if tx.Rollback.IsRolledBack {
		resp.Rollback = &RollbackResponse{
			IsRolledBack: true,
			Date:         tx.Rollback.Date,
			Reason:       tx.Rollback.Reason,
			By:           tx.Rollback.By,
		}
	}
	return resp
}

// SessionResponse is returned after a checkout session was opened
type SessionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	ProcessID   string              `json:"processId"`
	CheckoutURL string              `json:"checkoutUrl"`
}

// TransactionListResponse is a page of transactions
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// RollbackRequest carries the reason for voiding a transaction
type RollbackRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// CatalogCardResponse carries the process id of the card registration iframe
type CatalogCardResponse struct {
	ProcessID string `json:"processId"`
}

// StatsResponse summarizes the transaction store
type StatsResponse struct {
	Total            int64            `json:"total"`
	ByStatus         map[string]int64 `json:"byStatus"`
	ByDeliveryStatus map[string]int64 `json:"byDeliveryStatus"`
}

// NewStatsResponse maps store statistics
func NewStatsResponse(s *persistence.TransactionStats) StatsResponse {
	resp := StatsResponse{
		Total:            s.Total,
		ByStatus:         make(map[string]int64, len(s.ByStatus)),
		ByDeliveryStatus: make(map[string]int64, len(s.ByDeliveryStatus)),
	}
	for k, v := range s.ByStatus {
		resp.ByStatus[string(k)] = v
	}
	for k, v := range s.ByDeliveryStatus {
		resp.ByDeliveryStatus[string(k)] = v
	}
	return resp
}

// AuditEntryResponse is one audit trail entry
type AuditEntryResponse struct {
	Event     string            `json:"event"`
	Actor     string            `json:"actor,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewAuditTrailResponse maps audit entries
func NewAuditTrailResponse(entries []*entity.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			Event:     string(e.Event),
			Actor:     e.Actor,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
