package gateway

import (
	context "context"

	gateway "github.com/amirhossein-jamali/payment-processor/internal/domain/port/gateway"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client type
type MockClient struct {
	mock.Mock
}

// CreateSingleBuy provides a mock function with given fields: ctx, req
func (_m *MockClient) CreateSingleBuy(ctx context.Context, req gateway.SingleBuyRequest) (*gateway.SingleBuyResult, error) {
	ret := _m.Called(ctx, req)
	var r0 *gateway.SingleBuyResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*gateway.SingleBuyResult)
	}
	return r0, ret.Error(1)
}

// CatalogCard provides a mock function with given fields: ctx, req
func (_m *MockClient) CatalogCard(ctx context.Context, req gateway.CatalogCardRequest) (*gateway.CatalogCardResult, error) {
	ret := _m.Called(ctx, req)
	var r0 *gateway.CatalogCardResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*gateway.CatalogCardResult)
	}
	return r0, ret.Error(1)
}

// ListCards provides a mock function with given fields: ctx, userID
func (_m *MockClient) ListCards(ctx context.Context, userID int64) ([]gateway.Card, error) {
	ret := _m.Called(ctx, userID)
	var r0 []gateway.Card
	if v := ret.Get(0); v != nil {
		r0 = v.([]gateway.Card)
	}
	return r0, ret.Error(1)
}

// Charge provides a mock function with given fields: ctx, req
func (_m *MockClient) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	ret := _m.Called(ctx, req)
	var r0 *gateway.ChargeResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*gateway.ChargeResult)
	}
	return r0, ret.Error(1)
}

// DeleteCard provides a mock function with given fields: ctx, userID, aliasToken
func (_m *MockClient) DeleteCard(ctx context.Context, userID int64, aliasToken string) error {
	ret := _m.Called(ctx, userID, aliasToken)
	return ret.Error(0)
}

// GetConfirmation provides a mock function with given fields: ctx, shopProcessID
func (_m *MockClient) GetConfirmation(ctx context.Context, shopProcessID string) (*gateway.ConfirmationResult, error) {
	ret := _m.Called(ctx, shopProcessID)
	var r0 *gateway.ConfirmationResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*gateway.ConfirmationResult)
	}
	return r0, ret.Error(1)
}

// Rollback provides a mock function with given fields: ctx, shopProcessID
func (_m *MockClient) Rollback(ctx context.Context, shopProcessID string) (*gateway.RollbackResult, error) {
	ret := _m.Called(ctx, shopProcessID)
	var r0 *gateway.RollbackResult
	if v := ret.Get(0); v != nil {
		r0 = v.(*gateway.RollbackResult)
	}
	return r0, ret.Error(1)
}

// ValidateConfig provides a mock function with no fields
func (_m *MockClient) ValidateConfig() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockClient creates a new instance of MockClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
