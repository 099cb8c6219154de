package usecase

import (
	context "context"
	time "time"

	entity "github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	usecase "github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	mock "github.com/stretchr/testify/mock"
)

// MockDeliveryUseCase is a mock type for the DeliveryUseCase type
type MockDeliveryUseCase struct {
	mock.Mock
}

// Get provides a mock function with given fields: ctx, actor, transactionID
func (_m *MockDeliveryUseCase) Get(ctx context.Context, actor string, transactionID string) (*entity.DeliveryState, error) {
	ret := _m.Called(ctx, actor, transactionID)
	var r0 *entity.DeliveryState
	if v := ret.Get(0); v != nil {
		r0 = v.(*entity.DeliveryState)
	}
	return r0, ret.Error(1)
}

// Advance provides a mock function with given fields: ctx, actor, transactionID, status, metadata
func (_m *MockDeliveryUseCase) Advance(ctx context.Context, actor string, transactionID string, status string, metadata usecase.DeliveryMetadata) (*entity.Transaction, error) {
	ret := _m.Called(ctx, actor, transactionID, status, metadata)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

// RecordAttempt provides a mock function with given fields: ctx, actor, transactionID, status, notes, nextAttemptDate
func (_m *MockDeliveryUseCase) RecordAttempt(ctx context.Context, actor string, transactionID string, status string, notes string, nextAttemptDate *time.Time) (*entity.Transaction, error) {
	ret := _m.Called(ctx, actor, transactionID, status, notes, nextAttemptDate)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

// Rate provides a mock function with given fields: ctx, actor, transactionID, rating, feedback
func (_m *MockDeliveryUseCase) Rate(ctx context.Context, actor string, transactionID string, rating int, feedback string) (*entity.Transaction, error) {
	ret := _m.Called(ctx, actor, transactionID, rating, feedback)
	return transactionOrNil(ret.Get(0)), ret.Error(1)
}

// NewMockDeliveryUseCase creates a new instance of MockDeliveryUseCase. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockDeliveryUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockDeliveryUseCase {
	m := &MockDeliveryUseCase{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
