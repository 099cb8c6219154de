package usecase

import (
	context "context"

	entity "github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	usecase "github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	mock "github.com/stretchr/testify/mock"
)

// MockConfirmationUseCase is a mock type for the ConfirmationUseCase type
type MockConfirmationUseCase struct {
	mock.Mock
}

// Reconcile provides a mock function with given fields: ctx, input
func (_m *MockConfirmationUseCase) Reconcile(ctx context.Context, input usecase.CallbackInput) usecase.Outcome {
	ret := _m.Called(ctx, input)
	if rf, ok := ret.Get(0).(func(context.Context, usecase.CallbackInput) usecase.Outcome); ok {
		return rf(ctx, input)
	}
	return ret.Get(0).(usecase.Outcome)
}

// Apply provides a mock function with given fields: ctx, confirmation
func (_m *MockConfirmationUseCase) Apply(ctx context.Context, confirmation entity.Confirmation) usecase.Outcome {
	ret := _m.Called(ctx, confirmation)
	if rf, ok := ret.Get(0).(func(context.Context, entity.Confirmation) usecase.Outcome); ok {
		return rf(ctx, confirmation)
	}
	return ret.Get(0).(usecase.Outcome)
}

// NewMockConfirmationUseCase creates a new instance of MockConfirmationUseCase. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockConfirmationUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockConfirmationUseCase {
	m := &MockConfirmationUseCase{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
