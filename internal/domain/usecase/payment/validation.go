package payment

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	"github.com/shopspring/decimal"
)

const (
	maxDescriptionLength    = 255
	maxAdditionalDataLength = 100
	maxItems                = 100
)

// RequestValidator checks caller input before anything is stored or sent to the gateway
type RequestValidator struct{}

// NewRequestValidator creates a new RequestValidator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// ValidateSession validates a checkout request and converts it into transaction parameters
func (v *RequestValidator) ValidateSession(req usecase.CreateSessionRequest) (entity.NewTransactionParams, error) {
	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		return entity.NewTransactionParams{}, err
	}

	tax := decimal.Zero
	if strings.TrimSpace(req.TaxAmount) != "" {
		if tax, err = entity.ParseAmount(req.TaxAmount); err != nil {
			return entity.NewTransactionParams{}, fmt.Errorf("tax amount: %w", err)
		}
	}

	currency := entity.Currency(strings.ToUpper(strings.TrimSpace(req.Currency)))
	if currency == "" {
		currency = entity.CurrencyPYG
	}
	if !entity.IsValidCurrency(string(currency)) {
		return entity.NewTransactionParams{}, errs.NewValidationError("currency", fmt.Sprintf("unsupported currency %q", req.Currency))
	}

	if req.NumberOfPayments < 0 {
		return entity.NewTransactionParams{}, errs.NewValidationError("numberOfPayments", "must be at least 1")
	}
	if utf8.RuneCountInString(req.Description) > maxDescriptionLength {
		return entity.NewTransactionParams{}, errs.NewValidationError("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLength))
	}
	if len(req.AdditionalData) > maxAdditionalDataLength {
		return entity.NewTransactionParams{}, errs.NewValidationError("additionalData", fmt.Sprintf("must be at most %d characters", maxAdditionalDataLength))
	}

	items, err := v.validateItems(req.Items)
	if err != nil {
		return entity.NewTransactionParams{}, err
	}
	if err := v.validateCustomer(req.Customer); err != nil {
		return entity.NewTransactionParams{}, err
	}

	return entity.NewTransactionParams{
		Amount:           amount,
		Currency:         currency,
		TaxAmount:        tax,
		NumberOfPayments: req.NumberOfPayments,
		Description:      strings.TrimSpace(req.Description),
		Customer: entity.Customer{
			Name:     strings.TrimSpace(req.Customer.Name),
			Email:    strings.TrimSpace(req.Customer.Email),
			Phone:    strings.TrimSpace(req.Customer.Phone),
			Document: strings.TrimSpace(req.Customer.Document),
			Address:  strings.TrimSpace(req.Customer.Address),
		},
		Items:     items,
		SaleID:    strings.TrimSpace(req.SaleID),
		CreatedBy: req.UserID,
	}, nil
}

// ValidateCharge validates a token payment request
func (v *RequestValidator) ValidateCharge(req usecase.ChargeRequest) (entity.NewTransactionParams, error) {
	if strings.TrimSpace(req.AliasToken) == "" {
		return entity.NewTransactionParams{}, errs.NewValidationError("aliasToken", "is required")
	}
	params, err := v.ValidateSession(req.CreateSessionRequest)
	if err != nil {
		return entity.NewTransactionParams{}, err
	}
	params.AliasToken = strings.TrimSpace(req.AliasToken)
	params.PaymentMethod = entity.PaymentMethodSavedCard
	return params, nil
}

// ValidateCatalogCard validates a card registration request
func (v *RequestValidator) ValidateCatalogCard(req usecase.CatalogCardRequest) error {
	if req.CardID <= 0 {
		return errs.NewValidationError("cardId", "must be positive")
	}
	if strings.TrimSpace(req.UserCellPhone) == "" {
		return errs.NewValidationError("userCellPhone", "is required")
	}
	if _, err := mail.ParseAddress(req.UserMail); err != nil {
		return errs.NewValidationError("userMail", "is not a valid email address")
	}
	return nil
}

// ParseGatewayUserID converts a caller id into the numeric user id the gateway expects
func (v *RequestValidator) ParseGatewayUserID(userID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(userID), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewValidationError("user_id", "must be a positive integer for card operations")
	}
	return id, nil
}

func (v *RequestValidator) validateItems(reqs []usecase.ItemRequest) ([]entity.Item, error) {
	if len(reqs) > maxItems {
		return nil, errs.NewValidationError("items", fmt.Sprintf("at most %d items allowed", maxItems))
	}

	items := make([]entity.Item, 0, len(reqs))
	for i, item := range reqs {
		if strings.TrimSpace(item.Description) == "" {
			return nil, errs.NewValidationError(fmt.Sprintf("items[%d].description", i), "cannot be empty")
		}
		if item.Quantity < 1 {
			return nil, errs.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		price, err := entity.ParseAmount(item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("items[%d].unitPrice: %w", i, err)
		}
		items = append(items, entity.Item{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   price,
		})
	}
	return items, nil
}

func (v *RequestValidator) validateCustomer(c usecase.CustomerRequest) error {
	if email := strings.TrimSpace(c.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return errs.NewValidationError("customer.email", "is not a valid email address")
		}
	}
	return nil
}
