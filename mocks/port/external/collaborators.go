package external

import (
	context "context"

	entity "github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	external "github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
	mock "github.com/stretchr/testify/mock"
)

// MockOrderUpdater is a mock type for the OrderUpdater type
type MockOrderUpdater struct {
	mock.Mock
}

// SetPaymentStatus provides a mock function with given fields: ctx, orderID, status, extra
func (_m *MockOrderUpdater) SetPaymentStatus(ctx context.Context, orderID string, status external.OrderPaymentStatus, extra external.OrderPaymentExtra) error {
	ret := _m.Called(ctx, orderID, status, extra)
	return ret.Error(0)
}

// NewMockOrderUpdater creates a new instance of MockOrderUpdater. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockOrderUpdater(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrderUpdater {
	m := &MockOrderUpdater{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockNotifier is a mock type for the Notifier type
type MockNotifier struct {
	mock.Mock
}

// Notify provides a mock function with given fields: ctx, snapshot, kind
func (_m *MockNotifier) Notify(ctx context.Context, snapshot entity.Transaction, kind external.NotificationKind) {
	_m.Called(ctx, snapshot, kind)
}

// NewMockNotifier creates a new instance of MockNotifier. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockAuthorizer is a mock type for the Authorizer type
type MockAuthorizer struct {
	mock.Mock
}

// IsAdmin provides a mock function with given fields: ctx, userID
func (_m *MockAuthorizer) IsAdmin(ctx context.Context, userID string) bool {
	ret := _m.Called(ctx, userID)
	return ret.Bool(0)
}

// NewMockAuthorizer creates a new instance of MockAuthorizer. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockAuthorizer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuthorizer {
	m := &MockAuthorizer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
