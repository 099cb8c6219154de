package core

import mock "github.com/stretchr/testify/mock"

// MockProcessIDGenerator is a mock type for the ProcessIDGenerator type
type MockProcessIDGenerator struct {
	mock.Mock
}

// Next provides a mock function with no fields
func (_m *MockProcessIDGenerator) Next() string {
	ret := _m.Called()
	return ret.String(0)
}

// NewMockProcessIDGenerator creates a new instance of MockProcessIDGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockProcessIDGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProcessIDGenerator {
	m := &MockProcessIDGenerator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
