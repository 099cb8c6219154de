package middleware

import (
	"errors"
	"net/http"

	domainerr "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware recovers from panics and returns appropriate error responses
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"error":      err,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": c.GetString(RequestIDKey),
					"user_agent": c.Request.UserAgent(),
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Code:    domainerr.ErrorCode(domainerr.ErrInternalServer),
					Kind:    domainerr.KindInternal,
					Message: "Internal server error",
				})
			}
		}()

		c.Next()
	}
}

// HTTPStatus maps a domain error to its HTTP status
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrValidation), errors.Is(err, domainerr.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domainerr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainerr.ErrTransactionNotFound), errors.Is(err, domainerr.ErrOrderNotFound),
		errors.Is(err, domainerr.ErrCorrelation):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrManualReversalRequired),
		errors.Is(err, domainerr.ErrConflict), errors.Is(err, domainerr.ErrStaleTransaction):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrGatewayRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainerr.ErrGatewayTransient):
		return http.StatusBadGateway
	case errors.Is(err, domainerr.ErrDatabaseConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the structured failure payload for err.
// Internal errors never leak their message.
func NewErrorResponse(err error) dto.ErrorResponse {
	resp := dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Kind:    domainerr.ErrorKind(err),
		Message: err.Error(),
	}

	var (
		manual     *domainerr.ManualReversalRequiredError
		gatewayErr *domainerr.GatewayError
		validation *domainerr.ValidationError
		conflict   *domainerr.ConflictError
		config     *domainerr.ConfigurationError
	)
	switch {
	case errors.As(err, &manual):
		resp.Diagnostics = map[string]any{
			"requiresManualReversal": true,
			"shopProcessId":          manual.ShopProcessID,
			"messages":               manual.Gateway.Messages,
		}
	case errors.As(err, &gatewayErr):
		resp.Diagnostics = map[string]any{
			"operation":  gatewayErr.Operation,
			"statusCode": gatewayErr.StatusCode,
			"transient":  gatewayErr.Transient,
		}
		if len(gatewayErr.Messages) > 0 {
			resp.Diagnostics["messages"] = gatewayErr.Messages
		}
	case errors.As(err, &validation):
		if validation.Field != "" {
			resp.Diagnostics = map[string]any{"field": validation.Field}
		}
	case errors.As(err, &conflict):
		resp.Diagnostics = map[string]any{"resource": conflict.Resource, "retryable": conflict.Retryable}
	case errors.As(err, &config):
		resp.Message = "Payment gateway is not configured"
		resp.Diagnostics = map[string]any{"field": config.Field}
	}

	if resp.Kind == domainerr.KindInternal || errors.Is(err, domainerr.ErrDatabaseConnection) {
		resp.Message = "Internal server error"
	}
	return resp
}

// AbortWithError writes the structured failure payload and logs server side failures
func AbortWithError(c *gin.Context, logger coreport.Logger, err error) {
	status := HTTPStatus(err)
	fields := map[string]any{
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"status":     status,
		"request_id": c.GetString(RequestIDKey),
		"error":      err.Error(),
		"error_code": domainerr.ErrorCode(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields)
	} else {
		logger.Debug("Request rejected", fields)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, NewErrorResponse(err))
}
