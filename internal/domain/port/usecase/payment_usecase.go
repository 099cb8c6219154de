package usecase

import (
	"context"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
)

// ItemRequest is one purchased line as sent by the storefront
type ItemRequest struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
}

// CustomerRequest is the customer contact snapshot
type CustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
	Address  string `json:"address"`
}

// CreateSessionRequest opens a checkout session for a new card payment
type CreateSessionRequest struct {
	Amount           string          `json:"amount"`
	Currency         string          `json:"currency"`
	TaxAmount        string          `json:"taxAmount"`
	NumberOfPayments int             `json:"numberOfPayments"`
	Description      string          `json:"description"`
	AdditionalData   string          `json:"additionalData"`
	Customer         CustomerRequest `json:"customer"`
	Items            []ItemRequest   `json:"items"`
	SaleID           string          `json:"saleId"`
	UserID           string          `json:"-"`
}

// SessionResult is returned after the gateway accepted a checkout session
type SessionResult struct {
	Transaction *entity.Transaction
	ProcessID   string
	CheckoutURL string
}

// ChargeRequest charges a saved card token
type ChargeRequest struct {
	CreateSessionRequest
	AliasToken string `json:"aliasToken"`
}

// CatalogCardRequest starts card registration for the caller
type CatalogCardRequest struct {
	CardID        int64  `json:"cardId"`
	UserCellPhone string `json:"userCellPhone"`
	UserMail      string `json:"userMail"`
	ReturnURL     string `json:"returnUrl"`
	UserID        string `json:"-"`
}

// RollbackRequest voids an approved transaction
type RollbackRequest struct {
	TransactionID string `json:"-"`
	Reason        string `json:"reason"`
	Actor         string `json:"-"`
}

// PaymentUseCase defines the payment operations exposed to the API
type PaymentUseCase interface {
	// CreateSession persists a pending transaction and opens a gateway checkout session.
	// A transient gateway error is returned together with the pending transaction.
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResult, error)

	// ChargeToken charges a saved card and applies the synchronous result
	ChargeToken(ctx context.Context, req ChargeRequest) (*entity.Transaction, error)

	// CatalogCard starts card registration
	CatalogCard(ctx context.Context, req CatalogCardRequest) (*gateway.CatalogCardResult, error)

	// ListCards lists the caller's saved cards
	ListCards(ctx context.Context, userID string) ([]gateway.Card, error)

	// DeleteCard removes a saved card
	DeleteCard(ctx context.Context, userID, aliasToken string) error

	// QueryStatus asks the gateway for the confirmation of a transaction and reconciles it
	QueryStatus(ctx context.Context, actor, shopProcessID string) (*entity.Transaction, error)

	// Rollback voids an approved transaction. Admin only.
	Rollback(ctx context.Context, req RollbackRequest) (*entity.Transaction, error)

	// Get returns a transaction visible to the actor
	Get(ctx context.Context, actor, id string) (*entity.Transaction, error)

	// ListForUser returns the user's transactions and the total count
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, int64, error)

	// Stats returns store statistics. Admin only.
	Stats(ctx context.Context, actor string) (*persistence.TransactionStats, error)

	// AuditTrail returns the audit entries of a transaction. Admin only.
	AuditTrail(ctx context.Context, actor, id string) ([]*entity.AuditEntry, error)
}
