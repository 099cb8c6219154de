package bancard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/signature"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPublicKey  = "abcdefghijabcdefghijabcdefghij12"
	testPrivateKey = "0123456789012345678901234567890123456789"
)

type capturedRequest struct {
	Method    string
	Path      string
	PublicKey string
	Operation map[string]any
}

func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var env struct {
			PublicKey string         `json:"public_key"`
			Operation map[string]any `json:"operation"`
		}
		require.NoError(t, json.Unmarshal(raw, &env))

		if captured != nil {
			*captured = capturedRequest{Method: r.Method, Path: r.URL.Path, PublicKey: env.PublicKey, Operation: env.Operation}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func testConfig(baseURL string) Config {
	return Config{
		PublicKey:       testPublicKey,
		PrivateKey:      testPrivateKey,
		Environment:     EnvironmentStaging,
		ConfirmationURL: "https://shop.example.com/payments/confirm",
		ReturnURL:       "https://shop.example.com/return",
		BaseURL:         baseURL,
		Timeout:         2 * time.Second,
	}
}

func TestConfigValidate(t *testing.T) {
	valid := testConfig("")

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing public key", func(c *Config) { c.PublicKey = "" }, "public_key"},
		{"short public key", func(c *Config) { c.PublicKey = "abc" }, "public_key"},
		{"missing private key", func(c *Config) { c.PrivateKey = "" }, "private_key"},
		{"short private key", func(c *Config) { c.PrivateKey = strings.Repeat("x", 39) }, "private_key"},
		{"missing confirmation url", func(c *Config) { c.ConfirmationURL = "" }, "confirmation_url"},
		{"bad environment", func(c *Config) { c.Environment = "sandbox" }, "environment"},
	}

	assert.NoError(t, valid.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()

			var ce *errs.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.ErrorIs(t, err, errs.ErrConfiguration)
		})
	}
}

func TestConfigBaseURL(t *testing.T) {
	assert.Equal(t, StagingBaseURL, Config{Environment: EnvironmentStaging}.ResolvedBaseURL())
	assert.Equal(t, ProductionBaseURL, Config{Environment: EnvironmentProduction}.ResolvedBaseURL())
	assert.Equal(t, "http://localhost:1", Config{BaseURL: "http://localhost:1/"}.ResolvedBaseURL())
	assert.True(t, Config{Environment: EnvironmentStaging}.IsTestMode())
	assert.False(t, Config{Environment: EnvironmentProduction}.IsTestMode())
}

func TestInvalidConfigMakesNoNetworkCall(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.PrivateKey = "short"
	client := NewClient(cfg, nil, logger.NewNoopLogger())

	_, err := client.CreateSingleBuy(context.Background(), gateway.SingleBuyRequest{ShopProcessID: "123", Amount: "10.00", Currency: "PYG"})
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	_, err = client.Rollback(context.Background(), "123")
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	_, err = client.ListCards(context.Background(), 1)
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestCreateSingleBuy(t *testing.T) {
	var captured capturedRequest
	server := newTestServer(t, http.StatusOK, `{"status":"success","process_id":"i5fn*lx6niQel0QzWK1g"}`, &captured)
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
	result, err := client.CreateSingleBuy(context.Background(), gateway.SingleBuyRequest{
		ShopProcessID: "123",
		Amount:        "10000.00",
		Currency:      "PYG",
		Description:   "Order 123",
	})

	require.NoError(t, err)
	assert.Equal(t, "i5fn*lx6niQel0QzWK1g", result.ProcessID)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/vpos/api/0.3/single_buy", captured.Path)
	assert.Equal(t, testPublicKey, captured.PublicKey)
	assert.Equal(t, signature.SingleBuy(testPrivateKey, "123", "10000.00", "PYG"), captured.Operation["token"])
	assert.Equal(t, float64(123), captured.Operation["shop_process_id"])
	assert.Equal(t, "10000.00", captured.Operation["amount"])
	assert.Equal(t, "https://shop.example.com/return", captured.Operation["return_url"])
}

func TestBusinessRejectionPreservesMessages(t *testing.T) {
	body := `{"status":"error","messages":[{"key":"InvalidPublicKeyError","level":"error","dsc":"Invalid public key."}]}`
	server := newTestServer(t, http.StatusUnauthorized, body, nil)
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
	_, err := client.CreateSingleBuy(context.Background(), gateway.SingleBuyRequest{ShopProcessID: "123", Amount: "1.00", Currency: "PYG"})

	require.ErrorIs(t, err, errs.ErrGatewayRejected)
	ge, ok := errs.AsGatewayError(err)
	require.True(t, ok)
	assert.False(t, ge.Transient)
	assert.Equal(t, http.StatusUnauthorized, ge.StatusCode)
	assert.True(t, ge.HasMessageKey("InvalidPublicKeyError"))
	assert.Equal(t, "Invalid public key.", ge.Messages[0].Description)
	assert.Equal(t, body, ge.RawBody)
}

func TestErrorStatusWith200IsRejection(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"status":"error","messages":[{"key":"PaymentNotFoundError","level":"error","dsc":"not found"}]}`, nil)
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
	_, err := client.GetConfirmation(context.Background(), "123")

	assert.ErrorIs(t, err, errs.ErrGatewayRejected)
}

func TestTransientFailures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server := newTestServer(t, http.StatusBadGateway, `bad gateway`, nil)
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
		_, err := client.Rollback(context.Background(), "123")
		assert.ErrorIs(t, err, errs.ErrGatewayTransient)
	})

	t.Run("undecodable body", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK, `<html>`, nil)
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
		_, err := client.Rollback(context.Background(), "123")
		assert.ErrorIs(t, err, errs.ErrGatewayTransient)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		cfg.Timeout = 20 * time.Millisecond
		client := NewClient(cfg, nil, logger.NewNoopLogger())
		_, err := client.GetConfirmation(context.Background(), "123")
		assert.ErrorIs(t, err, errs.ErrGatewayTransient)
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client := NewClient(testConfig(url), nil, logger.NewNoopLogger())
		_, err := client.Rollback(context.Background(), "123")
		assert.True(t, errs.IsGatewayTransient(err))
	})
}

func TestRollbackSignsZeroAmount(t *testing.T) {
	var captured capturedRequest
	server := newTestServer(t, http.StatusOK, `{"status":"success","messages":[{"key":"RollbackSuccessful","level":"info","dsc":"ok"}]}`, &captured)
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
	result, err := client.Rollback(context.Background(), "123")

	require.NoError(t, err)
	assert.Equal(t, []string{"RollbackSuccessful"}, result.Messages)
	assert.Equal(t, "/vpos/api/0.3/single_buy/rollback", captured.Path)
	assert.Equal(t, signature.Rollback(testPrivateKey, "123"), captured.Operation["token"])
}

func TestRollbackAlreadyConfirmed(t *testing.T) {
	body := `{"status":"error","messages":[{"key":"TransactionAlreadyConfirmed","level":"error","dsc":"La transaccion ya fue confirmada."}]}`
	server := newTestServer(t, http.StatusBadRequest, body, nil)
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
	_, err := client.Rollback(context.Background(), "123")

	ge, ok := errs.AsGatewayError(err)
	require.True(t, ok)
	assert.True(t, ge.HasMessageKey("TransactionAlreadyConfirmed"))
}

func TestGetConfirmation(t *testing.T) {
	body := `{"status":"success","confirmation":{"token":"abc","shop_process_id":123,"response":"S","response_details":"Procesado Satisfactoriamente","amount":"10000.00","currency":"PYG","authorization_number":"123456","ticket_number":"123456789123456","response_code":"00","response_description":"Transaccion aprobada","security_information":{"customer_ip":"123.123.123.123","card_source":"I","card_country":"Croacia","version":"0.3","risk_index":"0"}}}`
	var captured capturedRequest
	server := newTestServer(t, http.StatusOK, body, &captured)
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
	result, err := client.GetConfirmation(context.Background(), "123")

	require.NoError(t, err)
	require.NotNil(t, result.Confirmation)
	assert.Equal(t, "123", result.Confirmation.ShopProcessID)
	assert.Equal(t, "S", result.Confirmation.Response)
	assert.Equal(t, "123456", result.Confirmation.AuthorizationNumber)
	assert.Equal(t, "I", result.Confirmation.SecurityInformation.CardSource)
	assert.True(t, result.Confirmation.IsApproved())
	assert.Equal(t, signature.GetConfirmation(testPrivateKey, "123"), captured.Operation["token"])
}

func TestCharge(t *testing.T) {
	t.Run("synchronous confirmation", func(t *testing.T) {
		body := `{"status":"success","confirmation":{"shop_process_id":"555","response":"S","response_code":"00","authorization_number":"A9","ticket_number":"T9","amount":"150.00","currency":"PYG"}}`
		var captured capturedRequest
		server := newTestServer(t, http.StatusOK, body, &captured)
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
		result, err := client.Charge(context.Background(), gateway.ChargeRequest{
			ShopProcessID: "555", Amount: "150.00", Currency: "PYG", AliasToken: "alias-1",
		})

		require.NoError(t, err)
		assert.False(t, result.Requires3DS)
		assert.Equal(t, "A9", result.Confirmation.AuthorizationNumber)
		assert.Equal(t, signature.Charge(testPrivateKey, "555", "150.00", "PYG", "alias-1"), captured.Operation["token"])
		assert.Equal(t, float64(1), captured.Operation["number_of_payments"])
	})

	t.Run("3ds challenge", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK, `{"status":"success","process_id":"3ds-process"}`, nil)
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
		result, err := client.Charge(context.Background(), gateway.ChargeRequest{
			ShopProcessID: "556", Amount: "150.00", Currency: "PYG", AliasToken: "alias-1",
		})

		require.NoError(t, err)
		assert.True(t, result.Requires3DS)
		assert.Equal(t, "3ds-process", result.ProcessID)
	})

	t.Run("missing alias token", func(t *testing.T) {
		client := NewClient(testConfig("http://127.0.0.1:1"), nil, logger.NewNoopLogger())
		_, err := client.Charge(context.Background(), gateway.ChargeRequest{ShopProcessID: "1", Amount: "1.00", Currency: "PYG"})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestCards(t *testing.T) {
	t.Run("catalog", func(t *testing.T) {
		var captured capturedRequest
		server := newTestServer(t, http.StatusOK, `{"status":"success","process_id":"card-process"}`, &captured)
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
		result, err := client.CatalogCard(context.Background(), gateway.CatalogCardRequest{CardID: 1, UserID: 42})

		require.NoError(t, err)
		assert.Equal(t, "card-process", result.ProcessID)
		assert.Equal(t, "/vpos/api/0.3/cards/new", captured.Path)
		assert.Equal(t, signature.CatalogCard(testPrivateKey, "1", "42"), captured.Operation["token"])
	})

	t.Run("list", func(t *testing.T) {
		body := `{"status":"success","cards":[{"alias_token":"alias-1","card_masked_number":"541863******1234","expiration_date":"08/26","card_brand":"Mastercard","card_id":1,"card_type":"credit"}]}`
		var captured capturedRequest
		server := newTestServer(t, http.StatusOK, body, &captured)
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
		cards, err := client.ListCards(context.Background(), 42)

		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "alias-1", cards[0].AliasToken)
		assert.Equal(t, "/vpos/api/0.3/users/42/cards", captured.Path)
		assert.Equal(t, signature.ListCards(testPrivateKey, "42"), captured.Operation["token"])
	})

	t.Run("delete", func(t *testing.T) {
		var captured capturedRequest
		server := newTestServer(t, http.StatusOK, `{"status":"success"}`, &captured)
		defer server.Close()

		client := NewClient(testConfig(server.URL), nil, logger.NewNoopLogger())
		err := client.DeleteCard(context.Background(), 42, "alias-1")

		require.NoError(t, err)
		assert.Equal(t, http.MethodDelete, captured.Method)
		assert.Equal(t, signature.DeleteCard(testPrivateKey, "42", "alias-1"), captured.Operation["token"])
	})
}

func TestNonNumericProcessID(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"), nil, logger.NewNoopLogger())
	_, err := client.GetConfirmation(context.Background(), "abc")
	assert.True(t, errors.Is(err, errs.ErrValidation))
}
