package usecase

import (
	context "context"

	entity "github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	gateway "github.com/amirhossein-jamali/payment-processor/internal/domain/port/gateway"
	persistence "github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
	usecase "github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	mock "github.com/stretchr/testify/mock"
)

// MockPaymentUseCase is a mock type for the PaymentUseCase type
type MockPaymentUseCase struct {
	mock.Mock
}

func transactionOrNil(v interface{}) *entity.Transaction {
	if v == nil {
		return nil
	}
	return v.(*entity.Transaction)
}

// CreateSession provides a mock function with given fields: ctx, req
func (_m *MockPaymentUseCase) CreateSession(ctx context.Context, req usecase.CreateSessionRequest) (*usecase.SessionResult, error) {
	ret := _m.Called(ctx, req)
	var r0 *usecase.SessionResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*usecase.SessionResult)
	}
	return r0, ret.Error(1)
}

// ChargeToken provides a mock function with given fields: ctx, req
func (_m *MockPaymentUseCase) ChargeToken(ctx context.Context, req usecase.ChargeRequest) (*entity.Transaction, error) {
	ret := _m.Called(ctx, req)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

// CatalogCard provides a mock function with given fields: ctx, req
func (_m *MockPaymentUseCase) CatalogCard(ctx context.Context, req usecase.CatalogCardRequest) (*gateway.CatalogCardResult, error) {
	ret := _m.Called(ctx, req)
	var r0 *gateway.CatalogCardResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*gateway.CatalogCardResult)
	}
	return r0, ret.Error(1)
}

// ListCards provides a mock function with given fields: ctx, userID
func (_m *MockPaymentUseCase) ListCards(ctx context.Context, userID string) ([]gateway.Card, error) {
	ret := _m.Called(ctx, userID)
	var r0 []gateway.Card
	if v := ret.Get(0); v != nil {
		r0 = v.([]gateway.Card)
	}
	return r0, ret.Error(1)
}

// DeleteCard provides a mock function with given fields: ctx, userID, aliasToken
func (_m *MockPaymentUseCase) DeleteCard(ctx context.Context, userID string, aliasToken string) error {
	ret := _m.Called(ctx, userID, aliasToken)
	return ret.Error(0)
}

// QueryStatus provides a mock function with given fields: ctx, actor, shopProcessID
func (_m *MockPaymentUseCase) QueryStatus(ctx context.Context, actor string, shopProcessID string) (*entity.Transaction, error) {
	ret := _m.Called(ctx, actor, shopProcessID)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

// Rollback provides a mock function with given fields: ctx, req
func (_m *MockPaymentUseCase) Rollback(ctx context.Context, req usecase.RollbackRequest) (*entity.Transaction, error) {
	ret := _m.Called(ctx, req)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

// Get provides a mock function with given fields: ctx, actor, id
func (_m *MockPaymentUseCase) Get(ctx context.Context, actor string, id string) (*entity.Transaction, error) {
	ret := _m.Called(ctx, actor, id)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

// ListForUser provides a mock function with given fields: ctx, userID, limit, offset
func (_m *MockPaymentUseCase) ListForUser(ctx context.Context, userID string, limit int, offset int) ([]*entity.Transaction, int64, error) {
	ret := _m.Called(ctx, userID, limit, offset)
	var r0 []*entity.Transaction
	if v := ret.Get(0); v != nil {
		r0 = v.([]*entity.Transaction)
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

// Stats provides a mock function with given fields: ctx, actor
func (_m *MockPaymentUseCase) Stats(ctx context.Context, actor string) (*persistence.TransactionStats, error) {
	ret := _m.Called(ctx, actor)
	var r0 *persistence.TransactionStats
	if v := ret.Get(0); v != nil {
		r0 = v.(*persistence.TransactionStats)
	}
	return r0, ret.Error(1)
}

// AuditTrail provides a mock function with given fields: ctx, actor, id
func (_m *MockPaymentUseCase) AuditTrail(ctx context.Context, actor string, id string) ([]*entity.AuditEntry, error) {
	ret := _m.Called(ctx, actor, id)
	var r0 []*entity.AuditEntry
	if v := ret.Get(0); v != nil {
		r0 = v.([]*entity.AuditEntry)
	}
	return r0, ret.Error(1)
}

// NewMockPaymentUseCase creates a new instance of MockPaymentUseCase. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockPaymentUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPaymentUseCase {
	m := &MockPaymentUseCase{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
