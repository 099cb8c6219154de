package core

import mock "github.com/stretchr/testify/mock"

// MockMetricsRecorder is a mock type for the MetricsRecorder type
type MockMetricsRecorder struct {
	mock.Mock
}

// ConfirmationProcessed provides a mock function with given fields: outcome
func (_m *MockMetricsRecorder) ConfirmationProcessed(outcome string) {
	_m.Called(outcome)
}

// SignatureMismatch provides a mock function with no fields
func (_m *MockMetricsRecorder) SignatureMismatch() {
	_m.Called()
}

// StoreFailure provides a mock function with given fields: operation
func (_m *MockMetricsRecorder) StoreFailure(operation string) {
	_m.Called(operation)
}

// PaymentStatusChanged provides a mock function with given fields: status
func (_m *MockMetricsRecorder) PaymentStatusChanged(status string) {
	_m.Called(status)
}

// NewMockMetricsRecorder creates a new instance of MockMetricsRecorder. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockMetricsRecorder(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMetricsRecorder {
	m := &MockMetricsRecorder{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
