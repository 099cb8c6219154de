package gateway

import (
	"context"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
)

// SingleBuyRequest opens a checkout session for a new card payment
type SingleBuyRequest struct {
	ShopProcessID  string
	Amount         string
	Currency       string
	Description    string
	AdditionalData string
	ReturnURL      string
	CancelURL      string
}

// SingleBuyResult carries the gateway's process id for the checkout page
type SingleBuyResult struct {
	ProcessID string
}

// CatalogCardRequest starts the card registration flow for a user
type CatalogCardRequest struct {
	CardID        int64
	UserID        int64
	UserCellPhone string
	UserMail      string
	ReturnURL     string
}

// CatalogCardResult carries the process id of the registration iframe
type CatalogCardResult struct {
	ProcessID string
}

// Card is a tokenized card as listed by the gateway
type Card struct {
	AliasToken       string `json:"alias_token"`
	CardMaskedNumber string `json:"card_masked_number"`
	ExpirationDate   string `json:"expiration_date"`
	CardBrand        string `json:"card_brand"`
	CardID           int64  `json:"card_id"`
	CardType         string `json:"card_type"`
}

// ChargeRequest charges a saved card token
type ChargeRequest struct {
	ShopProcessID    string
	Amount           string
	Currency         string
	NumberOfPayments int
	Description      string
	AdditionalData   string
	AliasToken       string
}

// ChargeResult is the synchronous charge outcome.
// Confirmation is nil when the gateway asks for a 3-D Secure challenge instead.
type ChargeResult struct {
	Confirmation *entity.Confirmation
	Requires3DS  bool
	ProcessID    string
}

// ConfirmationResult is the status of a single buy as known by the gateway
type ConfirmationResult struct {
	Confirmation *entity.Confirmation
}

// RollbackResult carries the gateway messages of a successful rollback
type RollbackResult struct {
	Messages []string
}

// Client sends signed requests to the payment gateway.
// Every method validates configuration before any network call and returns
// ConfigurationError, GatewayError (transient or business rejection) or a result.
type Client interface {
	CreateSingleBuy(ctx context.Context, req SingleBuyRequest) (*SingleBuyResult, error)
	CatalogCard(ctx context.Context, req CatalogCardRequest) (*CatalogCardResult, error)
	ListCards(ctx context.Context, userID int64) ([]Card, error)
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	DeleteCard(ctx context.Context, userID int64, aliasToken string) error
	GetConfirmation(ctx context.Context, shopProcessID string) (*ConfirmationResult, error)
	Rollback(ctx context.Context, shopProcessID string) (*RollbackResult, error)
	// ValidateConfig checks credentials without contacting the gateway
	ValidateConfig() error
}
