package persistence

import (
	context "context"

	entity "github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	persistence "github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
	mock "github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock type for the TransactionRepository type
type MockTransactionRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, transaction
func (_m *MockTransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	ret := _m.Called(ctx, transaction)
	if rf, ok := ret.Get(0).(func(context.Context, *entity.Transaction) error); ok {
		return rf(ctx, transaction)
	}
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	ret := _m.Called(ctx, id)
	var r0 *entity.Transaction
	if v := ret.Get(0); v != nil {
		r0 = v.(*entity.Transaction)
	}
	return r0, ret.Error(1)
}

// GetByShopProcessID provides a mock function with given fields: ctx, shopProcessID
func (_m *MockTransactionRepository) GetByShopProcessID(ctx context.Context, shopProcessID string) (*entity.Transaction, error) {
	ret := _m.Called(ctx, shopProcessID)
	var r0 *entity.Transaction
	if v := ret.Get(0); v != nil {
		r0 = v.(*entity.Transaction)
	}
	return r0, ret.Error(1)
}

// Update provides a mock function with given fields: ctx, id, update
func (_m *MockTransactionRepository) Update(ctx context.Context, id string, update persistence.TransactionUpdate) (*entity.Transaction, error) {
	ret := _m.Called(ctx, id, update)
	if rf, ok := ret.Get(0).(func(context.Context, string, persistence.TransactionUpdate) (*entity.Transaction, error)); ok {
		return rf(ctx, id, update)
	}
	var r0 *entity.Transaction
	if v := ret.Get(0); v != nil {
		r0 = v.(*entity.Transaction)
	}
	return r0, ret.Error(1)
}

// ListByUser provides a mock function with given fields: ctx, userID, limit, offset
func (_m *MockTransactionRepository) ListByUser(ctx context.Context, userID string, limit int, offset int) ([]*entity.Transaction, int64, error) {
	ret := _m.Called(ctx, userID, limit, offset)
	var r0 []*entity.Transaction
	if v := ret.Get(0); v != nil {
		r0 = v.([]*entity.Transaction)
	}
	return r0, ret.Get(1).(int64), ret.Error(2)
}

// Stats provides a mock function with given fields: ctx
func (_m *MockTransactionRepository) Stats(ctx context.Context) (*persistence.TransactionStats, error) {
	ret := _m.Called(ctx)
	var r0 *persistence.TransactionStats
	if v := ret.Get(0); v != nil {
		r0 = v.(*persistence.TransactionStats)
	}
	return r0, ret.Error(1)
}

// AppendAudit provides a mock function with given fields: ctx, entry
func (_m *MockTransactionRepository) AppendAudit(ctx context.Context, entry *entity.AuditEntry) error {
	ret := _m.Called(ctx, entry)
	return ret.Error(0)
}

// ListAudit provides a mock function with given fields: ctx, transactionID
func (_m *MockTransactionRepository) ListAudit(ctx context.Context, transactionID string) ([]*entity.AuditEntry, error) {
	ret := _m.Called(ctx, transactionID)
	var r0 []*entity.AuditEntry
	if v := ret.Get(0); v != nil {
		r0 = v.([]*entity.AuditEntry)
	}
	return r0, ret.Error(1)
}

// NewMockTransactionRepository creates a new instance of MockTransactionRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTransactionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
