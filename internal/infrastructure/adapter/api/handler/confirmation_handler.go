package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

const maxCallbackBody = 64 << 10

// ConfirmationHandler receives gateway confirmations. It is unauthenticated and
// always acknowledges, whatever the reconciliation outcome.
type ConfirmationHandler struct {
	confirmations usecase.ConfirmationUseCase
	logger        coreport.Logger
}

// NewConfirmationHandler creates a new confirmation handler instance
func NewConfirmationHandler(confirmations usecase.ConfirmationUseCase, logger coreport.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{confirmations: confirmations, logger: logger}
}

// Post handles POST /payments/confirm sent server to server by the gateway
func (h *ConfirmationHandler) Post(c *gin.Context) {
	input := usecase.CallbackInput{Query: flatten(c.Request.URL.Query())}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		h.logger.Warn("Failed to read confirmation body", map[string]any{
			"request_id": c.GetString(middleware.RequestIDKey),
			"error":      err.Error(),
		})
	}
	body = bytes.TrimSpace(body)

	switch {
	case len(body) > 0 && body[0] == '{':
		var req dto.ConfirmationRequest
		if err := json.Unmarshal(body, &req); err != nil {
			h.logger.Warn("Malformed confirmation body", map[string]any{
				"request_id": c.GetString(middleware.RequestIDKey),
				"error":      err.Error(),
			})
		}
		input.Operation = req.Operation
		if req.Operation == nil {
			// flat JSON body
			dec := json.NewDecoder(bytes.NewReader(body))
			dec.UseNumber()
			var flat map[string]any
			if dec.Decode(&flat) == nil {
				flattenJSON("", flat, input.Query)
			}
		}
	case len(body) > 0:
		if form, err := url.ParseQuery(string(body)); err == nil {
			for k, v := range flatten(form) {
				input.Query[k] = v
			}
		}
	}

	outcome := h.confirmations.Reconcile(c.Request.Context(), input)
	h.logOutcome(c, outcome)

	c.JSON(http.StatusOK, dto.ConfirmationAck{
		Status:      usecase.AckStatus,
		RedirectURL: outcome.RedirectURL,
	})
}

// Get handles GET /payments/confirm, the user agent return with flat parameters
func (h *ConfirmationHandler) Get(c *gin.Context) {
	outcome := h.confirmations.Reconcile(c.Request.Context(), usecase.CallbackInput{
		Query: flatten(c.Request.URL.Query()),
	})
	h.logOutcome(c, outcome)

	if outcome.RedirectURL == "" {
		c.JSON(http.StatusOK, dto.ConfirmationAck{Status: usecase.AckStatus})
		return
	}
	c.Redirect(http.StatusFound, outcome.RedirectURL)
}

func (h *ConfirmationHandler) logOutcome(c *gin.Context, outcome usecase.Outcome) {
	fields := map[string]any{
		"request_id":      c.GetString(middleware.RequestIDKey),
		"outcome":         outcome.Kind,
		"shop_process_id": outcome.Confirmation.ShopProcessID,
		"success":         outcome.Success,
	}
	if outcome.Err != nil {
		fields["error"] = outcome.Err.Error()
		h.logger.Warn("Confirmation acknowledged with problem", fields)
		return
	}
	h.logger.Debug("Confirmation acknowledged", fields)
}

// flattenJSON copies scalar values into out. Nested objects become dotted keys,
// so security_information.risk_index reaches the normalizer.
func flattenJSON(prefix string, values map[string]any, out map[string]string) {
	for k, v := range values {
		if prefix != "" {
			k = prefix + "." + k
		}
		switch v := v.(type) {
		case string:
			out[k] = v
		case json.Number:
			out[k] = v.String()
		case bool:
			out[k] = strconv.FormatBool(v)
		case map[string]any:
			flattenJSON(k, v, out)
		}
	}
}

func flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
