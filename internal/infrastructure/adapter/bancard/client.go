package bancard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/signature"
)

// vPOS 0.3 endpoint paths
const (
	pathSingleBuy       = "/vpos/api/0.3/single_buy"
	pathCardsNew        = "/vpos/api/0.3/cards/new"
	pathUserCards       = "/vpos/api/0.3/users/%d/cards"
	pathCharge          = "/vpos/api/0.3/charge"
	pathConfirmations   = "/vpos/api/0.3/single_buy/confirmations"
	pathRollback        = "/vpos/api/0.3/single_buy/rollback"
	maxResponseBodySize = 1 << 20
)

// Operation names used in logs and errors
const (
	OpSingleBuy       = "single_buy"
	OpCatalogCard     = "catalog_card"
	OpListCards       = "list_cards"
	OpCharge          = "charge"
	OpDeleteCard      = "delete_card"
	OpGetConfirmation = "get_confirmation"
	OpRollback        = "rollback"
)

// Client talks to the vPOS API. It holds no per-call state.
type Client struct {
	config     Config
	baseURL    string
	httpClient *http.Client
	logger     core.Logger
}

var _ gateway.Client = (*Client)(nil)

// NewClient creates a client. transport may be nil to use http.DefaultTransport.
func NewClient(config Config, transport http.RoundTripper, logger core.Logger) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		config:  config,
		baseURL: config.ResolvedBaseURL(),
		httpClient: &http.Client{
			Timeout:   config.timeout(),
			Transport: transport,
		},
		logger: logger,
	}
}

// ValidateConfig checks credentials without contacting the gateway
func (c *Client) ValidateConfig() error {
	return c.config.Validate()
}

// CreateSingleBuy opens a checkout session
func (c *Client) CreateSingleBuy(ctx context.Context, req gateway.SingleBuyRequest) (*gateway.SingleBuyResult, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	id, err := parseProcessID(req.ShopProcessID)
	if err != nil {
		return nil, err
	}

	returnURL := firstNonEmpty(req.ReturnURL, c.config.ReturnURL, c.config.ConfirmationURL)
	op := singleBuyOperation{
		Token:          signature.SingleBuy(c.config.PrivateKey, req.ShopProcessID, req.Amount, req.Currency),
		ShopProcessID:  id,
		Amount:         req.Amount,
		Currency:       req.Currency,
		AdditionalData: req.AdditionalData,
		Description:    truncate(req.Description, 20),
		ReturnURL:      returnURL,
		CancelURL:      firstNonEmpty(req.CancelURL, c.config.CancelURL, returnURL),
	}

	resp, err := c.send(ctx, OpSingleBuy, http.MethodPost, pathSingleBuy, op)
	if err != nil {
		return nil, err
	}
	if resp.ProcessID == "" {
		return nil, errs.NewGatewayTransientError(OpSingleBuy, http.StatusOK, fmt.Errorf("response without process_id"))
	}
	return &gateway.SingleBuyResult{ProcessID: string(resp.ProcessID)}, nil
}

// CatalogCard starts a card registration
func (c *Client) CatalogCard(ctx context.Context, req gateway.CatalogCardRequest) (*gateway.CatalogCardResult, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if req.CardID <= 0 || req.UserID <= 0 {
		return nil, errs.NewValidationError("card_id", "card and user ids must be positive")
	}

	cardID := strconv.FormatInt(req.CardID, 10)
	userID := strconv.FormatInt(req.UserID, 10)
	op := catalogCardOperation{
		Token:         signature.CatalogCard(c.config.PrivateKey, cardID, userID),
		CardID:        req.CardID,
		UserID:        req.UserID,
		UserCellPhone: req.UserCellPhone,
		UserMail:      req.UserMail,
		ReturnURL:     firstNonEmpty(req.ReturnURL, c.config.ReturnURL, c.config.ConfirmationURL),
	}

	resp, err := c.send(ctx, OpCatalogCard, http.MethodPost, pathCardsNew, op)
	if err != nil {
		return nil, err
	}
	return &gateway.CatalogCardResult{ProcessID: string(resp.ProcessID)}, nil
}

// ListCards returns the saved cards of a user
func (c *Client) ListCards(ctx context.Context, userID int64) ([]gateway.Card, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if userID <= 0 {
		return nil, errs.NewValidationError("user_id", "must be positive")
	}

	op := tokenOperation{Token: signature.ListCards(c.config.PrivateKey, strconv.FormatInt(userID, 10))}
	resp, err := c.send(ctx, OpListCards, http.MethodPost, fmt.Sprintf(pathUserCards, userID), op)
	if err != nil {
		return nil, err
	}
	if resp.Cards == nil {
		return []gateway.Card{}, nil
	}
	return resp.Cards, nil
}

// Charge pays with a saved card token
func (c *Client) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	id, err := parseProcessID(req.ShopProcessID)
	if err != nil {
		return nil, err
	}
	if req.AliasToken == "" {
		return nil, errs.NewValidationError("alias_token", "is required")
	}

	payments := req.NumberOfPayments
	if payments < 1 {
		payments = 1
	}
	op := chargeOperation{
		Token:            signature.Charge(c.config.PrivateKey, req.ShopProcessID, req.Amount, req.Currency, req.AliasToken),
		ShopProcessID:    id,
		Amount:           req.Amount,
		NumberOfPayments: payments,
		Currency:         req.Currency,
		AdditionalData:   req.AdditionalData,
		Description:      truncate(req.Description, 20),
		AliasToken:       req.AliasToken,
	}

	resp, err := c.send(ctx, OpCharge, http.MethodPost, pathCharge, op)
	if err != nil {
		return nil, err
	}

	result := &gateway.ChargeResult{ProcessID: string(resp.ProcessID)}
	switch {
	case resp.Confirmation != nil:
		result.Confirmation = resp.Confirmation.toEntity()
	case resp.Operation != nil:
		result.Confirmation = resp.Operation.toEntity()
	case resp.ProcessID != "":
		result.Requires3DS = true
	default:
		return nil, errs.NewGatewayTransientError(OpCharge, http.StatusOK, fmt.Errorf("response without confirmation"))
	}
	if result.Confirmation != nil && result.Confirmation.ShopProcessID == "" {
		result.Confirmation.ShopProcessID = req.ShopProcessID
	}
	return result, nil
}

// DeleteCard removes a saved card
func (c *Client) DeleteCard(ctx context.Context, userID int64, aliasToken string) error {
	if err := c.config.Validate(); err != nil {
		return err
	}
	if userID <= 0 {
		return errs.NewValidationError("user_id", "must be positive")
	}
	if aliasToken == "" {
		return errs.NewValidationError("alias_token", "is required")
	}

	op := deleteCardOperation{
		Token:      signature.DeleteCard(c.config.PrivateKey, strconv.FormatInt(userID, 10), aliasToken),
		AliasToken: aliasToken,
	}
	_, err := c.send(ctx, OpDeleteCard, http.MethodDelete, fmt.Sprintf(pathUserCards, userID), op)
	return err
}

// GetConfirmation asks the gateway for the outcome of a single buy
func (c *Client) GetConfirmation(ctx context.Context, shopProcessID string) (*gateway.ConfirmationResult, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	id, err := parseProcessID(shopProcessID)
	if err != nil {
		return nil, err
	}

	op := processOperation{
		Token:         signature.GetConfirmation(c.config.PrivateKey, shopProcessID),
		ShopProcessID: id,
	}
	resp, err := c.send(ctx, OpGetConfirmation, http.MethodPost, pathConfirmations, op)
	if err != nil {
		return nil, err
	}

	result := &gateway.ConfirmationResult{}
	if resp.Confirmation != nil {
		result.Confirmation = resp.Confirmation.toEntity()
		if result.Confirmation.ShopProcessID == "" {
			result.Confirmation.ShopProcessID = shopProcessID
		}
	}
	return result, nil
}

// Rollback voids an approved single buy. The token always signs "0.00".
func (c *Client) Rollback(ctx context.Context, shopProcessID string) (*gateway.RollbackResult, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	id, err := parseProcessID(shopProcessID)
	if err != nil {
		return nil, err
	}

	op := processOperation{
		Token:         signature.Rollback(c.config.PrivateKey, shopProcessID),
		ShopProcessID: id,
	}
	resp, err := c.send(ctx, OpRollback, http.MethodPost, pathRollback, op)
	if err != nil {
		return nil, err
	}
	return &gateway.RollbackResult{Messages: resp.messageKeys()}, nil
}

// send posts the signed envelope and classifies the reply
func (c *Client) send(ctx context.Context, operation, method, path string, op any) (*apiResponse, error) {
	body, err := json.Marshal(envelope{PublicKey: c.config.PublicKey, Operation: op})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errs.NewConfigurationError("base_url", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Sending gateway request", map[string]any{
		"operation": operation,
		"method":    method,
		"path":      path,
	})

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Gateway request failed", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
		return nil, errs.NewGatewayTransientError(operation, 0, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodySize))
	if err != nil {
		return nil, errs.NewGatewayTransientError(operation, httpResp.StatusCode, fmt.Errorf("reading response: %w", err))
	}

	return c.classify(operation, httpResp.StatusCode, raw)
}

func (c *Client) classify(operation string, status int, raw []byte) (*apiResponse, error) {
	if status >= http.StatusInternalServerError {
		c.logger.Warn("Gateway server error", map[string]any{
			"operation":   operation,
			"status_code": status,
		})
		return nil, errs.NewGatewayTransientError(operation, status, fmt.Errorf("gateway returned HTTP %d", status))
	}

	var resp apiResponse
	decodeErr := json.Unmarshal(raw, &resp)

	if status >= http.StatusBadRequest || (decodeErr == nil && strings.EqualFold(resp.Status, entity.CallbackStatusError)) {
		err := errs.NewGatewayRejection(operation, status, resp.Messages, string(raw))
		c.logger.Warn("Gateway rejected request", map[string]any{
			"operation":   operation,
			"status_code": status,
			"messages":    strings.Join(resp.messageKeys(), ","),
		})
		return nil, err
	}

	if decodeErr != nil {
		return nil, errs.NewGatewayTransientError(operation, status, fmt.Errorf("undecodable response: %w", decodeErr))
	}

	c.logger.Debug("Gateway request succeeded", map[string]any{
		"operation":   operation,
		"status_code": status,
	})
	return &resp, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
