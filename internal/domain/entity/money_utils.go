package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// RollbackAmount is the literal amount used when signing rollback requests
const RollbackAmount = "0.00"

// ParseAmount validates a caller supplied amount string.
// The amount must be a plain non-negative decimal with at most two decimal places.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return decimal.Zero, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}
	if strings.HasPrefix(amount, "-") {
		return decimal.Zero, fmt.Errorf("%w: amount cannot be negative", errs.ErrInvalidAmount)
	}
	if strings.ContainsAny(amount, "eE,$ ") {
		return decimal.Zero, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}
	if value.Exponent() < -MaxDecimalPlaces && !value.Equal(value.Round(MaxDecimalPlaces)) {
		return decimal.Zero, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}
	return value.Round(MaxDecimalPlaces), nil
}

// FormatAmount renders an amount with exactly two decimal places.
// Values with more precision are rounded half away from zero, so 99.999 becomes "100.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(MaxDecimalPlaces)
}

// NormalizeAmountString re-renders a gateway supplied amount with two decimal places.
// Unparseable input is returned unchanged so it can still be compared and logged.
func NormalizeAmountString(amount string) string {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return ""
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	return FormatAmount(value)
}

// AmountsEqual compares two amounts at two decimal places
func AmountsEqual(a, b decimal.Decimal) bool {
	return a.Round(MaxDecimalPlaces).Equal(b.Round(MaxDecimalPlaces))
}
