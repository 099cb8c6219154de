package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/auth"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/logger"
	timeadapter "github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/time"
	musecase "github.com/amirhossein-jamali/payment-processor/mocks/port/usecase"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type apiFixture struct {
	router        *gin.Engine
	tokens        *auth.TokenService
	payments      *musecase.MockPaymentUseCase
	delivery      *musecase.MockDeliveryUseCase
	confirmations *musecase.MockConfirmationUseCase
}

func newAPIFixture(t *testing.T, db fakePinger) *apiFixture {
	gin.SetMode(gin.TestMode)
	log := logger.NewNoopLogger()

	f := &apiFixture{
		router:        gin.New(),
		tokens:        auth.NewTokenService("test-secret", "payment-processor", time.Hour),
		payments:      musecase.NewMockPaymentUseCase(t),
		delivery:      musecase.NewMockDeliveryUseCase(t),
		confirmations: musecase.NewMockConfirmationUseCase(t),
	}

	SetupMiddlewares(f.router, log)
	SetupRoutes(f.router, Handlers{
		Payment:      handler.NewPaymentHandler(f.payments, log),
		Card:         handler.NewCardHandler(f.payments, log),
		Delivery:     handler.NewDeliveryHandler(f.delivery, log),
		Confirmation: handler.NewConfirmationHandler(f.confirmations, log),
		Health:       handler.NewHealthHandler(db, timeadapter.NewRealTimeProvider(), log),
		Metrics:      http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) }),
	}, f.tokens, log)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body, user string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		token, err := f.tokens.GenerateToken(user, "")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleTransaction() *entity.Transaction {
	return &entity.Transaction{
		ID:            "tx-1",
		ShopProcessID: "100000000000000001",
		Amount:        decimal.RequireFromString("150000"),
		Currency:      entity.CurrencyPYG,
		Status:        entity.StatusApproved,
		CreatedBy:     "42",
	}
}

func TestConfirmationPostAlwaysAcknowledges(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	f.confirmations.On("Reconcile", mock.Anything, mock.MatchedBy(func(in usecase.CallbackInput) bool {
		return in.Operation != nil && in.Operation.ShopProcessID == "100000000000000001" && in.Operation.Response == "S"
	})).Return(usecase.Outcome{
		Kind:        usecase.OutcomeUncorrelated,
		RedirectURL: "https://shop.example/fail?status=error",
		Err:         errs.ErrCorrelation,
	}).Once()

	w := f.do(t, http.MethodPost, "/payments/confirm",
		`{"operation":{"shop_process_id":"100000000000000001","response":"S","amount":"150000.00"}}`, "")

	require.Equal(t, http.StatusOK, w.Code)
	var ack dto.ConfirmationAck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.Equal(t, "success", ack.Status)
	assert.Equal(t, "https://shop.example/fail?status=error", ack.RedirectURL)
}

func TestConfirmationPostGarbageStillAcknowledges(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	f.confirmations.On("Reconcile", mock.Anything, mock.MatchedBy(func(in usecase.CallbackInput) bool {
		return in.Operation == nil
	})).Return(usecase.Outcome{Kind: usecase.OutcomeUnroutable, Err: errs.ErrCorrelation}).Once()

	w := f.do(t, http.MethodPost, "/payments/confirm", `{not json`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}

func TestConfirmationPostNumericFields(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	f.confirmations.On("Reconcile", mock.Anything, mock.MatchedBy(func(in usecase.CallbackInput) bool {
		op := in.Operation
		return op != nil &&
			op.ShopProcessID == "123" &&
			op.Amount == "10000.00" &&
			op.ResponseCode == "00" &&
			op.SecurityInformation.RiskIndex == "0"
	})).Return(usecase.Outcome{Kind: usecase.OutcomeApplied, Success: true}).Once()

	w := f.do(t, http.MethodPost, "/payments/confirm",
		`{"operation":{"shop_process_id":123,"response":"S","response_code":"00","amount":10000.00,"currency":"PYG","security_information":{"risk_index":0}}}`, "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConfirmationPostFlatJSONNumericFields(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	f.confirmations.On("Reconcile", mock.Anything, mock.MatchedBy(func(in usecase.CallbackInput) bool {
		return in.Operation == nil &&
			in.Query["shop_process_id"] == "456" &&
			in.Query["status"] == "success" &&
			in.Query["amount"] == "5000.50" &&
			in.Query["security_information.risk_index"] == "1"
	})).Return(usecase.Outcome{Kind: usecase.OutcomeApplied, Success: true}).Once()

	w := f.do(t, http.MethodPost, "/payments/confirm",
		`{"shop_process_id":456,"status":"success","amount":5000.50,"security_information":{"risk_index":1}}`, "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConfirmationGetRedirects(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	f.confirmations.On("Reconcile", mock.Anything, mock.MatchedBy(func(in usecase.CallbackInput) bool {
		return in.Operation == nil && in.Query["status"] == "success" && in.Query["shop_process_id"] == "100000000000000001"
	})).Return(usecase.Outcome{
		Kind:        usecase.OutcomeApplied,
		Success:     true,
		RedirectURL: "https://shop.example/ok?status=success",
	}).Once()

	w := f.do(t, http.MethodGet, "/payments/confirm?status=success&shop_process_id=100000000000000001", "", "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://shop.example/ok?status=success", w.Header().Get("Location"))
}

func TestAuthenticationRequired(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})

	w := f.do(t, http.MethodGet, "/payments/tx-1", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/payments/tx-1", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSession(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	tx := sampleTransaction()
	tx.Status = entity.StatusPending
	f.payments.On("CreateSession", mock.Anything, mock.MatchedBy(func(req usecase.CreateSessionRequest) bool {
		return req.UserID == "42" && req.Amount == "150000" && len(req.Items) == 1
	})).Return(&usecase.SessionResult{
		Transaction: tx,
		ProcessID:   "proc-1",
		CheckoutURL: "https://vpos.example/payment/single_buy?process_id=proc-1",
	}, nil).Once()

	w := f.do(t, http.MethodPost, "/payments",
		`{"amount":"150000","description":"order","items":[{"description":"mate","quantity":1,"unitPrice":"150000"}]}`, "42")

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "proc-1", resp.ProcessID)
	assert.Equal(t, "150000.00", resp.Transaction.Amount)
	assert.Equal(t, "pending", resp.Transaction.Status)
	assert.Nil(t, resp.Transaction.Delivery)
}

func TestErrorMapping(t *testing.T) {
	rejection := &errs.GatewayError{
		Operation:  "rollback",
		StatusCode: 400,
		Messages:   []errs.GatewayMessage{{Key: "TransactionAlreadyConfirmed", Level: "error", Description: "settled"}},
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		check      func(t *testing.T, resp dto.ErrorResponse)
	}{
		{
			name:       "manual reversal",
			err:        &errs.ManualReversalRequiredError{ShopProcessID: "100000000000000001", Gateway: rejection},
			wantStatus: http.StatusConflict,
			wantKind:   errs.KindGatewayRejection,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				assert.Equal(t, errs.CodeManualReversalRequired, resp.Code)
				assert.Equal(t, true, resp.Diagnostics["requiresManualReversal"])
			},
		},
		{
			name:       "precondition",
			err:        errs.NewConflictError("transaction", "only approved transactions can be rolled back"),
			wantStatus: http.StatusConflict,
			wantKind:   errs.KindConflict,
		},
		{
			name:       "transient",
			err:        errs.NewGatewayTransientError("rollback", 0, errors.New("timeout")),
			wantStatus: http.StatusBadGateway,
			wantKind:   errs.KindGatewayTransient,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				assert.Equal(t, true, resp.Diagnostics["transient"])
			},
		},
		{
			name:       "forbidden",
			err:        errs.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantKind:   errs.KindForbidden,
		},
		{
			name:       "internal error is masked",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantKind:   errs.KindInternal,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				assert.Equal(t, "Internal server error", resp.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t, fakePinger{})
			f.payments.On("Rollback", mock.Anything, usecase.RollbackRequest{
				TransactionID: "tx-1",
				Reason:        "customer request",
				Actor:         "1",
			}).Return(sampleTransaction(), tt.err).Once()

			w := f.do(t, http.MethodPost, "/payments/tx-1/rollback", `{"reason":"customer request"}`, "1")

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantKind, resp.Kind)
			if tt.check != nil {
				tt.check(t, resp)
			}
		})
	}
}

func TestInvalidBodyIsValidationError(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	w := f.do(t, http.MethodPost, "/payments/charge", `{"amount":`, "42")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errs.KindValidation, decodeError(t, w).Kind)
}

func TestListPaymentsClampsPaging(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	f.payments.On("ListForUser", mock.Anything, "42", 20, 0).
		Return([]*entity.Transaction{sampleTransaction()}, int64(1), nil).Once()

	w := f.do(t, http.MethodGet, "/payments?limit=1000&offset=-3", "", "42")

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.TransactionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Transactions, 1)
	require.NotNil(t, resp.Transactions[0].Delivery)
	assert.Equal(t, "payment_confirmed", resp.Transactions[0].Delivery.Status)
}

func TestDeliveryRating(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newAPIFixture(t, fakePinger{})
		rated := sampleTransaction()
		rated.Delivery = entity.DeliveryState{
			Status:       entity.DeliveryDelivered,
			Satisfaction: &entity.CustomerSatisfaction{Rating: 5, Feedback: "great"},
		}
		f.delivery.On("Rate", mock.Anything, "42", "tx-1", 5, "great").Return(rated, nil).Once()

		w := f.do(t, http.MethodPost, "/payments/tx-1/delivery/rating", `{"rating":5,"feedback":"great"}`, "42")

		require.Equal(t, http.StatusCreated, w.Code)
		var resp dto.DeliveryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Satisfaction)
		assert.Equal(t, 5, resp.Satisfaction.Rating)
	})

	t.Run("second rating conflicts", func(t *testing.T) {
		f := newAPIFixture(t, fakePinger{})
		f.delivery.On("Rate", mock.Anything, "42", "tx-1", 5, "great").
			Return(nil, errs.NewConflictError("delivery", "transaction tx-1 was already rated")).Once()

		w := f.do(t, http.MethodPost, "/payments/tx-1/delivery/rating", `{"rating":5,"feedback":"great"}`, "42")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, errs.KindConflict, decodeError(t, w).Kind)
	})
}

func TestAdvanceDelivery(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	tx := sampleTransaction()
	tx.Delivery = entity.DeliveryState{Status: entity.DeliveryInTransit, TrackingNumber: "TRK-1"}
	f.delivery.On("Advance", mock.Anything, "1", "tx-1", "in_transit", mock.MatchedBy(func(m usecase.DeliveryMetadata) bool {
		return m.TrackingNumber == "TRK-1"
	})).Return(tx, nil).Once()

	w := f.do(t, http.MethodPut, "/payments/tx-1/delivery/status", `{"status":"in_transit","trackingNumber":"TRK-1"}`, "1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"trackingNumber":"TRK-1"`)
}

func TestCards(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	f.payments.On("DeleteCard", mock.Anything, "42", "alias-1").Return(nil).Once()

	w := f.do(t, http.MethodDelete, "/cards/alias-1", "", "42")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHealth(t *testing.T) {
	assert.Equal(t, http.StatusOK, newAPIFixture(t, fakePinger{}).do(t, http.MethodGet, "/health", "", "").Code)

	w := newAPIFixture(t, fakePinger{err: errors.New("down")}).do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"down"`)
}

func TestPanicRecovery(t *testing.T) {
	f := newAPIFixture(t, fakePinger{})
	f.payments.On("Get", mock.Anything, "42", "tx-1").Run(func(mock.Arguments) { panic("boom") }).Once()

	w := f.do(t, http.MethodGet, "/payments/tx-1", "", "42")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errs.KindInternal, decodeError(t, w).Kind)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
