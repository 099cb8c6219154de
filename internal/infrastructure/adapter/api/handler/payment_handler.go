package handler

import (
	"net/http"
	"strconv"

	domainerr "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	payments usecase.PaymentUseCase
	logger   coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(payments usecase.PaymentUseCase, logger coreport.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		logger:   logger,
	}
}

// CreateSession handles POST /payments
func (h *PaymentHandler) CreateSession(c *gin.Context) {
	var req usecase.CreateSessionRequest
	if !h.bind(c, &req) {
		return
	}
	req.UserID = actor(c)

	result, err := h.payments.CreateSession(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SessionResponse{
		Transaction: dto.NewTransactionResponse(result.Transaction),
		ProcessID:   result.ProcessID,
		CheckoutURL: result.CheckoutURL,
	})
}

// ChargeToken handles POST /payments/charge
func (h *PaymentHandler) ChargeToken(c *gin.Context) {
	var req usecase.ChargeRequest
	if !h.bind(c, &req) {
		return
	}
	req.UserID = actor(c)

	tx, err := h.payments.ChargeToken(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	tx, err := h.payments.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		h.fail(c, err)
		return
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	txs, total, err := h.payments.ListForUser(c.Request.Context(), actor(c), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(txs)),
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, dto.NewTransactionResponse(tx))
	}
	c.JSON(http.StatusOK, resp)
}

// QueryStatus handles POST /payments/:id/status where :id is the shop process id
func (h *PaymentHandler) QueryStatus(c *gin.Context) {
	tx, err := h.payments.QueryStatus(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// Rollback handles POST /payments/:id/rollback
func (h *PaymentHandler) Rollback(c *gin.Context) {
	var req dto.RollbackRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	tx, err := h.payments.Rollback(c.Request.Context(), usecase.RollbackRequest{
		TransactionID: c.Param("id"),
		Reason:        req.Reason,
		Actor:         actor(c),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

// AuditTrail handles GET /admin/payments/:id/audit
func (h *PaymentHandler) AuditTrail(c *gin.Context) {
	entries, err := h.payments.AuditTrail(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuditTrailResponse(entries))
}

// Stats handles GET /admin/payments/stats
func (h *PaymentHandler) Stats(c *gin.Context) {
	stats, err := h.payments.Stats(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStatsResponse(stats))
}

func (h *PaymentHandler) bind(c *gin.Context, v any) bool {
	return bindJSON(c, h.logger, v)
}

func (h *PaymentHandler) fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, h.logger, err)
}

// actor returns the authenticated user id
func actor(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

func bindJSON(c *gin.Context, logger coreport.Logger, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		logger.Debug("Invalid request body", map[string]any{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		middleware.AbortWithError(c, logger, &domainerr.ValidationError{
			Reason: "invalid request body: " + err.Error(),
			Err:    err,
		})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainerr.NewValidationError(key, "must be an integer")
	}
	return n, nil
}
