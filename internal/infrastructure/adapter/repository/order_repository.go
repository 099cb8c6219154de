package repository

import (
	"context"

	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// OrderRepository mirrors payment outcomes onto the orders table
type OrderRepository struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	collector    *database.MetricsCollector
}

var _ external.OrderUpdater = (*OrderRepository)(nil)

// NewOrderRepository creates a new OrderRepository instance
func NewOrderRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger, collector *database.MetricsCollector) *OrderRepository {
	return &OrderRepository{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		collector:    collector,
	}
}

// SetPaymentStatus stamps the payment outcome and gateway references on an order
func (r *OrderRepository) SetPaymentStatus(ctx context.Context, orderID string, status external.OrderPaymentStatus, extra external.OrderPaymentExtra) error {
	now := r.timeProvider.Now()
	values := map[string]any{
		"payment_status":      string(status),
		"shop_process_id":     extra.ShopProcessID,
		"payment_description": extra.ResponseDescription,
		"updated_at":          now,
	}
	if status == external.OrderPaid {
		values["authorization_number"] = extra.AuthorizationNumber
		values["ticket_number"] = extra.TicketNumber
		values["paid_at"] = now
	}

	metrics, err := r.collector.MeasureQuery(ctx, "order_set_payment_status", func() (int64, error) {
		result := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Updates(values)
		return result.RowsAffected, result.Error
	})
	if err != nil {
		r.logger.Error("Failed to update order payment status", map[string]any{
			"order_id": orderID,
			"status":   status,
			"error":    err.Error(),
		})
		return wrapDatabaseError("update order", err)
	}

	if metrics.RowsAffected == 0 {
		r.logger.Warn("Order not found during payment status update", map[string]any{
			"order_id": orderID,
		})
		return errs.ErrOrderNotFound
	}

	r.logger.Info("Order payment status updated", map[string]any{
		"order_id":        orderID,
		"status":          status,
		"shop_process_id": extra.ShopProcessID,
	})
	return nil
}
