package handler

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// CardHandler handles saved card requests for the authenticated user
type CardHandler struct {
	payments usecase.PaymentUseCase
	logger   coreport.Logger
}

// NewCardHandler creates a new card handler instance
func NewCardHandler(payments usecase.PaymentUseCase, logger coreport.Logger) *CardHandler {
	return &CardHandler{payments: payments, logger: logger}
}

// Catalog handles POST /cards
func (h *CardHandler) Catalog(c *gin.Context) {
	var req usecase.CatalogCardRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	req.UserID = actor(c)

	result, err := h.payments.CatalogCard(c.Request.Context(), req)
	if err != nil {
		middleware.AbortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CatalogCardResponse{ProcessID: result.ProcessID})
}

// List handles GET /cards
func (h *CardHandler) List(c *gin.Context) {
	cards, err := h.payments.ListCards(c.Request.Context(), actor(c))
	if err != nil {
		middleware.AbortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// Delete handles DELETE /cards/:aliasToken
func (h *CardHandler) Delete(c *gin.Context) {
	if err := h.payments.DeleteCard(c.Request.Context(), actor(c), c.Param("aliasToken")); err != nil {
		middleware.AbortWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
