package core

import (
	time "time"

	mock "github.com/stretchr/testify/mock"
)

// MockTimeProvider is a mock type for the TimeProvider type
type MockTimeProvider struct {
	mock.Mock
}

type MockTimeProvider_Expecter struct {
	mock *mock.Mock
}

func (_m *MockTimeProvider) EXPECT() *MockTimeProvider_Expecter {
	return &MockTimeProvider_Expecter{mock: &_m.Mock}
}

// Now provides a mock function with no fields
func (_m *MockTimeProvider) Now() time.Time {
	ret := _m.Called()

	var r0 time.Time
	if rf, ok := ret.Get(0).(func() time.Time); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(time.Time)
	}
	return r0
}

// MockTimeProvider_Now_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Now'
type MockTimeProvider_Now_Call struct {
	*mock.Call
}

// Now is a helper method to define mock.On call
func (_e *MockTimeProvider_Expecter) Now() *MockTimeProvider_Now_Call {
	return &MockTimeProvider_Now_Call{Call: _e.mock.On("Now")}
}

func (_c *MockTimeProvider_Now_Call) Return(_a0 time.Time) *MockTimeProvider_Now_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockTimeProvider_Now_Call) RunAndReturn(run func() time.Time) *MockTimeProvider_Now_Call {
	_c.Call.Return(run)
	return _c
}

// Since provides a mock function with given fields: t
func (_m *MockTimeProvider) Since(t time.Time) time.Duration {
	ret := _m.Called(t)

	if rf, ok := ret.Get(0).(func(time.Time) time.Duration); ok {
		return rf(t)
	}
	return ret.Get(0).(time.Duration)
}

// MockTimeProvider_Since_Call is a *mock.Call for method 'Since'
type MockTimeProvider_Since_Call struct {
	*mock.Call
}

// Since is a helper method to define mock.On call
func (_e *MockTimeProvider_Expecter) Since(t interface{}) *MockTimeProvider_Since_Call {
	return &MockTimeProvider_Since_Call{Call: _e.mock.On("Since", t)}
}

func (_c *MockTimeProvider_Since_Call) Return(_a0 time.Duration) *MockTimeProvider_Since_Call {
	_c.Call.Return(_a0)
	return _c
}

// Sleep provides a mock function with given fields: d
func (_m *MockTimeProvider) Sleep(d time.Duration) {
	_m.Called(d)
}

// MockTimeProvider_Sleep_Call is a *mock.Call for method 'Sleep'
type MockTimeProvider_Sleep_Call struct {
	*mock.Call
}

// Sleep is a helper method to define mock.On call
func (_e *MockTimeProvider_Expecter) Sleep(d interface{}) *MockTimeProvider_Sleep_Call {
	return &MockTimeProvider_Sleep_Call{Call: _e.mock.On("Sleep", d)}
}

func (_c *MockTimeProvider_Sleep_Call) Return() *MockTimeProvider_Sleep_Call {
	_c.Call.Return()
	return _c
}

// NewMockTimeProvider creates a new instance of MockTimeProvider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTimeProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTimeProvider {
	m := &MockTimeProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
