package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/payment-processor/mocks/port/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(fixedTime).Maybe()

	t.Run("Valid transaction creation", func(t *testing.T) {
		tx, err := NewTransaction(NewTransactionParams{
			ShopProcessID: "123",
			Amount:        decimal.NewFromInt(10000),
			Items: []Item{
				{Description: "Pizza", Quantity: 2, UnitPrice: decimal.NewFromInt(5000)},
			},
			SaleID:    "sale-1",
			CreatedBy: "7",
		}, mockTime)

		require.NoError(t, err)
		assert.Equal(t, "123", tx.ShopProcessID)
		assert.Equal(t, "10000.00", tx.FormattedAmount())
		assert.Equal(t, CurrencyPYG, tx.Currency)
		assert.Equal(t, 1, tx.NumberOfPayments)
		assert.Equal(t, PaymentMethodNewCard, tx.PaymentMethod)
		assert.False(t, tx.IsTokenPayment)
		assert.Equal(t, StatusPending, tx.Status)
		assert.Equal(t, fixedTime, tx.CreatedAt)
		assert.Equal(t, "10000", tx.Items[0].Total().String())
	})

	t.Run("Token payment defaults to saved card", func(t *testing.T) {
		tx, err := NewTransaction(NewTransactionParams{
			ShopProcessID: "124",
			Amount:        decimal.NewFromInt(10),
			AliasToken:    "alias-1",
		}, mockTime)

		require.NoError(t, err)
		assert.True(t, tx.IsTokenPayment)
		assert.Equal(t, PaymentMethodSavedCard, tx.PaymentMethod)
	})

	t.Run("Validation failures", func(t *testing.T) {
		tests := []struct {
			name   string
			params NewTransactionParams
			err    error
		}{
			{"Empty process id", NewTransactionParams{Amount: decimal.NewFromInt(1)}, errs.ErrValidation},
			{"Negative amount", NewTransactionParams{ShopProcessID: "1", Amount: decimal.NewFromInt(-1)}, errs.ErrInvalidAmount},
			{"Bad currency", NewTransactionParams{ShopProcessID: "1", Currency: "EUR"}, errs.ErrValidation},
			{"Negative payments", NewTransactionParams{ShopProcessID: "1", NumberOfPayments: -2}, errs.ErrValidation},
			{"Zero quantity", NewTransactionParams{ShopProcessID: "1", Items: []Item{{Quantity: 0}}}, errs.ErrValidation},
			{"Negative price", NewTransactionParams{ShopProcessID: "1", Items: []Item{{Quantity: 1, UnitPrice: decimal.NewFromInt(-5)}}}, errs.ErrValidation},
			{"Bad method", NewTransactionParams{ShopProcessID: "1", PaymentMethod: "cash"}, errs.ErrValidation},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tx, err := NewTransaction(tt.params, mockTime)
				assert.Nil(t, tx)
				assert.ErrorIs(t, err, tt.err)
			})
		}
	})
}

func TestTransactionStatusTransitions(t *testing.T) {
	tests := []struct {
		from     TransactionStatus
		to       TransactionStatus
		expected bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusRolledBack, false},
		{StatusProcessing, StatusApproved, true},
		{StatusProcessing, StatusPending, false},
		{StatusRequires3DS, StatusRejected, true},
		{StatusApproved, StatusRolledBack, true},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusRolledBack, StatusApproved, false},
		{StatusCancelled, StatusPending, false},
		{StatusFailed, StatusApproved, false},
		{StatusApproved, StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransactionCanRollback(t *testing.T) {
	assert.True(t, (&Transaction{Status: StatusApproved}).CanRollback())
	assert.False(t, (&Transaction{Status: StatusRejected}).CanRollback())
	assert.False(t, (&Transaction{Status: StatusApproved, Rollback: RollbackState{IsRolledBack: true}}).CanRollback())
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, IsValidStatus("requires_3ds"))
	assert.False(t, IsValidStatus("completed"))
	assert.True(t, IsValidCurrency("USD"))
	assert.False(t, IsValidCurrency("usd"))
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
}
