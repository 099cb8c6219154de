package core

import (
	core "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	mock "github.com/stretchr/testify/mock"
)

// MockLogger is a mock type for the Logger type
type MockLogger struct {
	mock.Mock
}

type MockLogger_Expecter struct {
	mock *mock.Mock
}

func (_m *MockLogger) EXPECT() *MockLogger_Expecter {
	return &MockLogger_Expecter{mock: &_m.Mock}
}

// Debug provides a mock function with given fields: message, fields
func (_m *MockLogger) Debug(message string, fields map[string]any) {
	_m.Called(message, fields)
}

// Info provides a mock function with given fields: message, fields
func (_m *MockLogger) Info(message string, fields map[string]any) {
	_m.Called(message, fields)
}

// Warn provides a mock function with given fields: message, fields
func (_m *MockLogger) Warn(message string, fields map[string]any) {
	_m.Called(message, fields)
}

// Error provides a mock function with given fields: message, fields
func (_m *MockLogger) Error(message string, fields map[string]any) {
	_m.Called(message, fields)
}

// MockLogger_Log_Call is a *mock.Call for the logging methods
type MockLogger_Log_Call struct {
	*mock.Call
}

// Debug is a helper method to define mock.On call
func (_e *MockLogger_Expecter) Debug(message interface{}, fields interface{}) *MockLogger_Log_Call {
	return &MockLogger_Log_Call{Call: _e.mock.On("Debug", message, fields)}
}

// Info is a helper method to define mock.On call
func (_e *MockLogger_Expecter) Info(message interface{}, fields interface{}) *MockLogger_Log_Call {
	return &MockLogger_Log_Call{Call: _e.mock.On("Info", message, fields)}
}

// Warn is a helper method to define mock.On call
func (_e *MockLogger_Expecter) Warn(message interface{}, fields interface{}) *MockLogger_Log_Call {
	return &MockLogger_Log_Call{Call: _e.mock.On("Warn", message, fields)}
}

// Error is a helper method to define mock.On call
func (_e *MockLogger_Expecter) Error(message interface{}, fields interface{}) *MockLogger_Log_Call {
	return &MockLogger_Log_Call{Call: _e.mock.On("Error", message, fields)}
}

func (_c *MockLogger_Log_Call) Return() *MockLogger_Log_Call {
	_c.Call.Return()
	return _c
}

// Flush provides a mock function with no fields
func (_m *MockLogger) Flush() error {
	ret := _m.Called()
	return ret.Error(0)
}

// GetLevel provides a mock function with no fields
func (_m *MockLogger) GetLevel() core.LogLevel {
	ret := _m.Called()
	return ret.Get(0).(core.LogLevel)
}

// SetLevel provides a mock function with given fields: level
func (_m *MockLogger) SetLevel(level core.LogLevel) {
	_m.Called(level)
}

// NewMockLogger creates a new instance of MockLogger. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockLogger(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLogger {
	m := &MockLogger{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
