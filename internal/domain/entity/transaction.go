package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	tport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// TransactionStatus defines possible status values for a transaction
type TransactionStatus string

// TransactionStatus constants
const (
	StatusPending     TransactionStatus = "pending"
	StatusApproved    TransactionStatus = "approved"
	StatusRejected    TransactionStatus = "rejected"
	StatusRolledBack  TransactionStatus = "rolled_back"
	StatusFailed      TransactionStatus = "failed"
	StatusRequires3DS TransactionStatus = "requires_3ds"
	StatusProcessing  TransactionStatus = "processing"
	StatusCancelled   TransactionStatus = "cancelled"
)

// AllStatuses lists every transaction status
var AllStatuses = []TransactionStatus{
	StatusPending, StatusApproved, StatusRejected, StatusRolledBack,
	StatusFailed, StatusRequires3DS, StatusProcessing, StatusCancelled,
}

// Currency is an ISO currency code accepted by the gateway
type Currency string

// Supported currencies
const (
	CurrencyPYG Currency = "PYG"
	CurrencyUSD Currency = "USD"
)

// PaymentMethod classifies how the customer pays
type PaymentMethod string

// Payment methods
const (
	PaymentMethodNewCard   PaymentMethod = "new_card"
	PaymentMethodSavedCard PaymentMethod = "saved_card"
	PaymentMethodOthers    PaymentMethod = "others"
)

// SecurityInformation is the risk data the gateway attaches to a confirmation
type SecurityInformation struct {
	CustomerIP  string `json:"customer_ip,omitempty"`
	CardSource  string `json:"card_source,omitempty"`
	CardCountry string `json:"card_country,omitempty"`
	RiskIndex   string `json:"risk_index,omitempty"`
	Version     string `json:"version,omitempty"`
}

// GatewayResponse holds the fields stamped from a gateway confirmation
type GatewayResponse struct {
	Response                    string
	ResponseCode                string
	ResponseDescription         string
	ExtendedResponseDescription string
	ResponseDetails             string
	AuthorizationNumber         string
	TicketNumber                string
	IVAAmount                   string
	IVATicketNumber             string
	SecurityInformation         SecurityInformation
}

// Customer is the contact snapshot captured when the payment is created
type Customer struct {
	Name     string
	Email    string
	Phone    string
	Document string
	Address  string
}

// Item is one purchased line
type Item struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Total returns quantity times unit price
func (i Item) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// RollbackState records a void of an approved transaction
type RollbackState struct {
	IsRolledBack bool
	Date         *time.Time
	Reason       string
	By           string
}

// Transaction is one payment attempt against the gateway
type Transaction struct {
	ID               string            // Internal identifier
	ShopProcessID    string            // Correlation id sent to the gateway, unique and immutable
	GatewayProcessID string            // Assigned by the gateway once the session exists
	Amount           decimal.Decimal   // Immutable, part of every signature
	Currency         Currency          // PYG by default
	TaxAmount        decimal.Decimal   // Informational tax amount
	NumberOfPayments int               // Installments, at least 1
	Description      string            // Shown on the gateway checkout page
	IsTokenPayment   bool              // Charged with a saved card
	AliasToken       string            // Saved card reference for token payments
	PaymentMethod    PaymentMethod     // How the customer pays
	Status           TransactionStatus // Lifecycle status
	Gateway          GatewayResponse   // Stamped from confirmations
	ConfirmationDate *time.Time        // When the final outcome was recorded
	Customer         Customer          // Immutable snapshot
	Items            []Item            // Immutable snapshot
	Delivery         DeliveryState     // Fulfilment progress, meaningful once approved
	Rollback         RollbackState     // Void metadata
	SaleID           string            // Linked order, optional
	CreatedBy        string            // Creating user, optional
	Version          int64             // Incremented on every stored update
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTransactionParams carries the caller supplied data for a new transaction
type NewTransactionParams struct {
	ShopProcessID    string
	Amount           decimal.Decimal
	Currency         Currency
	TaxAmount        decimal.Decimal
	NumberOfPayments int
	Description      string
	AliasToken       string
	PaymentMethod    PaymentMethod
	Customer         Customer
	Items            []Item
	SaleID           string
	CreatedBy        string
}

// NewTransaction creates a pending transaction after validating its invariants
func NewTransaction(params NewTransactionParams, timeProvider tport.TimeProvider) (*Transaction, error) {
	if strings.TrimSpace(params.ShopProcessID) == "" {
		return nil, errs.NewValidationError("shop_process_id", "cannot be empty")
	}
	if params.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount cannot be negative", errs.ErrInvalidAmount)
	}
	if params.TaxAmount.IsNegative() {
		return nil, fmt.Errorf("%w: tax amount cannot be negative", errs.ErrInvalidAmount)
	}

	currency := params.Currency
	if currency == "" {
		currency = CurrencyPYG
	}
	if !IsValidCurrency(string(currency)) {
		return nil, errs.NewValidationError("currency", fmt.Sprintf("unsupported currency %q", currency))
	}

	payments := params.NumberOfPayments
	if payments == 0 {
		payments = 1
	}
	if payments < 1 {
		return nil, errs.NewValidationError("number_of_payments", "must be at least 1")
	}

	method := params.PaymentMethod
	if method == "" {
		method = PaymentMethodNewCard
		if params.AliasToken != "" {
			method = PaymentMethodSavedCard
		}
	}
	if !IsValidPaymentMethod(string(method)) {
		return nil, errs.NewValidationError("payment_method", fmt.Sprintf("unsupported payment method %q", method))
	}

	for i, item := range params.Items {
		if item.Quantity < 1 {
			return nil, errs.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			return nil, errs.NewValidationError(fmt.Sprintf("items[%d].unit_price", i), "cannot be negative")
		}
	}

	now := timeProvider.Now()
	return &Transaction{
		ShopProcessID:    params.ShopProcessID,
		Amount:           params.Amount.Round(MaxDecimalPlaces),
		Currency:         currency,
		TaxAmount:        params.TaxAmount.Round(MaxDecimalPlaces),
		NumberOfPayments: payments,
		Description:      params.Description,
		IsTokenPayment:   params.AliasToken != "",
		AliasToken:       params.AliasToken,
		PaymentMethod:    method,
		Status:           StatusPending,
		Customer:         params.Customer,
		Items:            params.Items,
		SaleID:           params.SaleID,
		CreatedBy:        params.CreatedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// FormattedAmount returns the amount as sent to the gateway
func (t *Transaction) FormattedAmount() string {
	return FormatAmount(t.Amount)
}

// IsTerminal reports whether no further confirmation can change the status
func (t *Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// CanRollback reports whether the transaction may be voided
func (t *Transaction) CanRollback() bool {
	return t.Status == StatusApproved && !t.Rollback.IsRolledBack
}

// IsTerminal reports whether the status is final for confirmation purposes
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusRolledBack, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsSuccessful reports whether the status records money taken from the customer at some point
func (s TransactionStatus) IsSuccessful() bool {
	return s == StatusApproved || s == StatusRolledBack
}

// CanTransitionTo checks the one-directional lifecycle.
// Non-terminal statuses may move anywhere except back to pending; approved may only be rolled back.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case StatusPending:
		return next != StatusRolledBack
	case StatusProcessing, StatusRequires3DS:
		return next != StatusPending && next != StatusRolledBack
	case StatusApproved:
		return next == StatusRolledBack
	default:
		return false
	}
}

// ConfirmableStatuses are the statuses a confirmation may finalize
var ConfirmableStatuses = []TransactionStatus{StatusPending, StatusProcessing, StatusRequires3DS}

// IsValidCurrency validates if the currency is supported
func IsValidCurrency(currency string) bool {
	return currency == string(CurrencyPYG) || currency == string(CurrencyUSD)
}

// IsValidPaymentMethod validates if the payment method is allowed
func IsValidPaymentMethod(method string) bool {
	switch PaymentMethod(method) {
	case PaymentMethodNewCard, PaymentMethodSavedCard, PaymentMethodOthers:
		return true
	default:
		return false
	}
}

// IsValidStatus validates if the status is known
func IsValidStatus(status string) bool {
	for _, s := range AllStatuses {
		if string(s) == status {
			return true
		}
	}
	return false
}
