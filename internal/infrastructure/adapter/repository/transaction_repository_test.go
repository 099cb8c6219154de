package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepositories(t *testing.T) (*TransactionRepository, *OrderRepository, *database.TestDBManager) {
	t.Helper()
	log := logger.NewNoopLogger()
	testDB := database.NewTestDBManager(t, log)
	collector := database.NewMetricsCollector(log, testDB.TimeProvider, nil)
	return NewTransactionRepository(testDB.DB(), testDB.TimeProvider, log, collector),
		NewOrderRepository(testDB.DB(), testDB.TimeProvider, log, collector),
		testDB
}

func newPendingTransaction(t *testing.T, shopProcessID string) *entity.Transaction {
	t.Helper()
	tx := &entity.Transaction{
		ShopProcessID:    shopProcessID,
		Amount:           decimal.RequireFromString("150000.50"),
		Currency:         entity.CurrencyPYG,
		NumberOfPayments: 1,
		Description:      "Order 42",
		PaymentMethod:    entity.PaymentMethodNewCard,
		Status:           entity.StatusPending,
		Customer:         entity.Customer{Name: "Ana", Email: "ana@example.com"},
		Items: []entity.Item{
			{Description: "Chair", Quantity: 2, UnitPrice: decimal.RequireFromString("75000.25")},
		},
		SaleID:    "order-1",
		CreatedBy: "17",
	}
	return tx
}

func statusPtr(s entity.TransactionStatus) *entity.TransactionStatus { return &s }

func TestTransactionRepository_CreateAndGet(t *testing.T) {
	repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	tx := newPendingTransaction(t, "123456789012345678")
	require.NoError(t, repo.Create(ctx, tx))
	assert.NotEmpty(t, tx.ID)
	assert.False(t, tx.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ShopProcessID, byID.ShopProcessID)
	assert.Equal(t, "150000.50", byID.FormattedAmount())
	assert.Equal(t, entity.StatusPending, byID.Status)
	assert.Equal(t, "Ana", byID.Customer.Name)
	require.Len(t, byID.Items, 1)
	assert.Equal(t, 2, byID.Items[0].Quantity)
	assert.True(t, byID.Items[0].UnitPrice.Equal(decimal.RequireFromString("75000.25")))
	assert.Equal(t, entity.DeliveryPaymentConfirmed, byID.Delivery.CurrentStatus())

	bySPID, err := repo.GetByShopProcessID(ctx, tx.ShopProcessID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, bySPID.ID)
}

func TestTransactionRepository_DuplicateShopProcessID(t *testing.T) {
	repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPendingTransaction(t, "111111111111111111")))

	err := repo.Create(ctx, newPendingTransaction(t, "111111111111111111"))
	require.Error(t, err)
	assert.True(t, errs.IsRetryableConflict(err))
	assert.True(t, errors.Is(err, errs.ErrDuplicateProcessID))
	assert.Equal(t, errs.CodeDuplicateProcessID, errs.ErrorCode(err))
}

func TestTransactionRepository_NotFound(t *testing.T) {
	repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)

	_, err = repo.GetByShopProcessID(ctx, "999")
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)

	_, err = repo.Update(ctx, "missing", persistence.TransactionUpdate{Status: statusPtr(entity.StatusApproved)})
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
}

func TestTransactionRepository_GuardedStatusUpdate(t *testing.T) {
	repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	tx := newPendingTransaction(t, "222222222222222222")
	require.NoError(t, repo.Create(ctx, tx))

	confirmedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	approved, err := repo.Update(ctx, tx.ID, persistence.TransactionUpdate{
		Status: statusPtr(entity.StatusApproved),
		Gateway: &entity.GatewayResponse{
			Response:            entity.ResponseYes,
			ResponseCode:        entity.ResponseCodeOK,
			AuthorizationNumber: "123456",
			TicketNumber:        "123456789123456",
			SecurityInformation: entity.SecurityInformation{CustomerIP: "10.0.0.1", RiskIndex: "0"},
		},
		ConfirmationDate: &confirmedAt,
		ExpectStatuses:   entity.ConfirmableStatuses,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, approved.Status)
	assert.Equal(t, "123456", approved.Gateway.AuthorizationNumber)
	assert.Equal(t, "10.0.0.1", approved.Gateway.SecurityInformation.CustomerIP)
	require.NotNil(t, approved.ConfirmationDate)
	assert.True(t, confirmedAt.Equal(*approved.ConfirmationDate))
	assert.Equal(t, tx.Version+1, approved.Version)

	// a second confirmation finds the row no longer confirmable
	_, err = repo.Update(ctx, tx.ID, persistence.TransactionUpdate{
		Status:         statusPtr(entity.StatusRejected),
		ExpectStatuses: entity.ConfirmableStatuses,
	})
	assert.ErrorIs(t, err, errs.ErrStaleTransaction)
	assert.Equal(t, errs.KindConflict, errs.ErrorKind(err))

	stored, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, stored.Status)
	assert.True(t, stored.Amount.Equal(tx.Amount))
}

func TestTransactionRepository_VersionAndRatingGuards(t *testing.T) {
	repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	tx := newPendingTransaction(t, "333333333333333333")
	require.NoError(t, repo.Create(ctx, tx))

	delivered := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	state := entity.DeliveryState{
		Status:             entity.DeliveryDelivered,
		ActualDeliveryDate: &delivered,
		History: []entity.DeliveryHistoryEntry{
			{Status: entity.DeliveryDelivered, UpdatedBy: "admin", At: delivered},
		},
	}
	version := tx.Version
	updated, err := repo.Update(ctx, tx.ID, persistence.TransactionUpdate{Delivery: &state, ExpectVersion: &version})
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryDelivered, updated.Delivery.Status)
	require.Len(t, updated.Delivery.History, 1)

	// the stale version no longer matches
	_, err = repo.Update(ctx, tx.ID, persistence.TransactionUpdate{Delivery: &state, ExpectVersion: &version})
	assert.ErrorIs(t, err, errs.ErrStaleTransaction)

	rated := updated.Delivery
	rated.Satisfaction = &entity.CustomerSatisfaction{Rating: 5, Feedback: "great", SubmittedAt: delivered}
	_, err = repo.Update(ctx, tx.ID, persistence.TransactionUpdate{Delivery: &rated, ExpectUnrated: true})
	require.NoError(t, err)

	again := rated
	again.Satisfaction = &entity.CustomerSatisfaction{Rating: 1, SubmittedAt: delivered}
	_, err = repo.Update(ctx, tx.ID, persistence.TransactionUpdate{Delivery: &again, ExpectUnrated: true})
	assert.ErrorIs(t, err, errs.ErrStaleTransaction)

	stored, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Delivery.Satisfaction)
	assert.Equal(t, 5, stored.Delivery.Satisfaction.Rating)
}

func TestTransactionRepository_ListByUserAndStats(t *testing.T) {
	repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	ids := []string{"400000000000000001", "400000000000000002", "400000000000000003"}
	for _, id := range ids {
		require.NoError(t, repo.Create(ctx, newPendingTransaction(t, id)))
	}
	other := newPendingTransaction(t, "400000000000000004")
	other.CreatedBy = "99"
	require.NoError(t, repo.Create(ctx, other))

	_, err := repo.Update(ctx, other.ID, persistence.TransactionUpdate{Status: statusPtr(entity.StatusApproved)})
	require.NoError(t, err)

	page, total, err := repo.ListByUser(ctx, "17", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	rest, _, err := repo.ListByUser(ctx, "17", 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(3), stats.ByStatus[entity.StatusPending])
	assert.Equal(t, int64(1), stats.ByStatus[entity.StatusApproved])
	assert.Equal(t, int64(1), stats.ByDeliveryStatus[entity.DeliveryPaymentConfirmed])
}

func TestTransactionRepository_Audit(t *testing.T) {
	repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	tx := newPendingTransaction(t, "500000000000000000")
	require.NoError(t, repo.Create(ctx, tx))

	first := entity.NewAuditEntry(tx.ID, entity.AuditCreated, "17", nil)
	second := entity.NewAuditEntry(tx.ID, entity.AuditConfirmedApproved, entity.ActorGateway, map[string]string{
		entity.DetailResponseCode:        "00",
		entity.DetailAuthorizationNumber: "654321",
	})
	require.NoError(t, repo.AppendAudit(ctx, first))
	require.NoError(t, repo.AppendAudit(ctx, second))
	assert.NotZero(t, second.ID)

	trail, err := repo.ListAudit(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, entity.AuditCreated, trail[0].Event)
	assert.Empty(t, trail[0].Details)
	assert.Equal(t, entity.AuditConfirmedApproved, trail[1].Event)
	assert.Equal(t, "654321", trail[1].Details[entity.DetailAuthorizationNumber])
}

func TestOrderRepository_SetPaymentStatus(t *testing.T) {
	_, orders, testDB := setupRepositories(t)
	ctx := context.Background()

	require.NoError(t, testDB.DB().Create(&model.Order{ID: "order-1"}).Error)

	err := orders.SetPaymentStatus(ctx, "order-1", external.OrderPaid, external.OrderPaymentExtra{
		ShopProcessID:       "600000000000000000",
		AuthorizationNumber: "111",
		TicketNumber:        "222",
		ResponseDescription: "Transaccion aprobada",
	})
	require.NoError(t, err)

	var stored model.Order
	require.NoError(t, testDB.DB().First(&stored, "id = ?", "order-1").Error)
	assert.Equal(t, "paid", stored.PaymentStatus)
	assert.Equal(t, "111", stored.AuthorizationNumber)
	assert.NotNil(t, stored.PaidAt)

	err = orders.SetPaymentStatus(ctx, "missing", external.OrderFailed, external.OrderPaymentExtra{})
	assert.ErrorIs(t, err, errs.ErrOrderNotFound)
}

func TestErrorClassifier(t *testing.T) {
	c := NewErrorClassifier()

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ""},
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)`), DuplicateKeyError},
		{"sqlite duplicate", errors.New("constraint failed: UNIQUE constraint failed: payment_transactions.shop_process_id (2067)"), DuplicateKeyError},
		{"deadlock", errors.New("deadlock detected"), LockError},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), TransientError},
		{"dial", errors.New("dial tcp 127.0.0.1:5432"), ConnectionError},
		{"not null", errors.New("NOT NULL constraint failed: payment_transactions.currency"), ConstraintError},
		{"other", errors.New("syntax error"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.err))
		})
	}
}
