package handler

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// DeliveryHandler handles fulfilment tracking requests
type DeliveryHandler struct {
	delivery usecase.DeliveryUseCase
	logger   coreport.Logger
}

// NewDeliveryHandler creates a new delivery handler instance
func NewDeliveryHandler(delivery usecase.DeliveryUseCase, logger coreport.Logger) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery, logger: logger}
}

// Get handles GET /payments/:id/delivery
func (h *DeliveryHandler) Get(c *gin.Context) {
	state, err := h.delivery.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDeliveryResponse(*state))
}

// Advance handles PUT /payments/:id/delivery/status
func (h *DeliveryHandler) Advance(c *gin.Context) {
	var req dto.AdvanceDeliveryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tx, err := h.delivery.Advance(c.Request.Context(), actor(c), c.Param("id"), req.Status, usecase.DeliveryMetadata{
		Notes:                 req.Notes,
		TrackingNumber:        req.TrackingNumber,
		Carrier:               req.Carrier,
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
	})
	if err != nil {
		middleware.AbortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDeliveryResponse(tx.Delivery))
}

// RecordAttempt handles POST /payments/:id/delivery/attempts
func (h *DeliveryHandler) RecordAttempt(c *gin.Context) {
	var req dto.DeliveryAttemptRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tx, err := h.delivery.RecordAttempt(c.Request.Context(), actor(c), c.Param("id"), req.Status, req.Notes, req.NextAttemptDate)
	if err != nil {
		middleware.AbortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewDeliveryResponse(tx.Delivery))
}

// Rate handles POST /payments/:id/delivery/rating
func (h *DeliveryHandler) Rate(c *gin.Context) {
	var req dto.RateDeliveryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tx, err := h.delivery.Rate(c.Request.Context(), actor(c), c.Param("id"), req.Rating, req.Feedback)
	if err != nil {
		middleware.AbortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewDeliveryResponse(tx.Delivery))
}
