package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
)

// Gateway message keys meaning the transaction is settled and can no longer be voided
var alreadySettledKeys = []string{"TransactionAlreadyConfirmed", "AlreadyConfirmed", "TransactionAlreadySettled"}

// Rollback voids an approved transaction.
// A settled transaction yields ManualReversalRequiredError and keeps its status.
func (s *Service) Rollback(ctx context.Context, req usecase.RollbackRequest) (*entity.Transaction, error) {
	if err := s.requireAdmin(ctx, req.Actor, "rollback"); err != nil {
		return nil, err
	}

	transaction, err := s.repo.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if !transaction.CanRollback() {
		s.logger.Warn("Rollback refused by precondition", map[string]any{
			"transaction_id": transaction.ID,
			"status":         transaction.Status,
			"is_rolled_back": transaction.Rollback.IsRolledBack,
		})
		return nil, errs.NewConflictError("transaction",
			fmt.Sprintf("only approved transactions can be rolled back, current status is %s", transaction.Status))
	}

	if _, err := s.gateway.Rollback(ctx, transaction.ShopProcessID); err != nil {
		return transaction, s.rollbackFailed(ctx, transaction, req.Actor, err)
	}

	now := s.timeProvider.Now()
	status := entity.StatusRolledBack
	updated, err := s.repo.Update(ctx, transaction.ID, persistence.TransactionUpdate{
		Status: &status,
		Rollback: &entity.RollbackState{
			IsRolledBack: true,
			Date:         &now,
			Reason:       strings.TrimSpace(req.Reason),
			By:           req.Actor,
		},
		ExpectStatuses: []entity.TransactionStatus{entity.StatusApproved},
	})
	if err != nil {
		s.logger.Error("Gateway rolled back transaction but store update failed", map[string]any{
			"transaction_id":  transaction.ID,
			"shop_process_id": transaction.ShopProcessID,
			"error":           err.Error(),
		})
		s.metrics.StoreFailure("rollback")
		s.audit(ctx, transaction.ID, entity.AuditStoreUpdateFailed, req.Actor, map[string]string{
			entity.DetailToStatus: string(status),
			entity.DetailError:    err.Error(),
		})
		return transaction, err
	}

	s.audit(ctx, updated.ID, entity.AuditRolledBack, req.Actor, map[string]string{
		entity.DetailFromStatus: string(entity.StatusApproved),
		entity.DetailToStatus:   string(status),
		entity.DetailReason:     req.Reason,
	})
	s.metrics.PaymentStatusChanged(string(status))
	s.logger.Info("Transaction rolled back", map[string]any{
		"transaction_id":  updated.ID,
		"shop_process_id": updated.ShopProcessID,
		"actor":           req.Actor,
	})

	if updated.SaleID != "" {
		err := s.orders.SetPaymentStatus(ctx, updated.SaleID, external.OrderRolledBack, external.OrderPaymentExtra{
			ShopProcessID:       updated.ShopProcessID,
			ResponseDescription: req.Reason,
		})
		if err != nil {
			s.logger.Warn("Failed to update linked order after rollback", map[string]any{
				"transaction_id": updated.ID,
				"order_id":       updated.SaleID,
				"error":          err.Error(),
			})
		}
	}
	s.notifier.Notify(ctx, *updated, external.NotifyPaymentRolledBack)

	return updated, nil
}

func (s *Service) rollbackFailed(ctx context.Context, transaction *entity.Transaction, actor string, gatewayErr error) error {
	fields := logFields(gatewayErr)
	fields["transaction_id"] = transaction.ID
	fields["shop_process_id"] = transaction.ShopProcessID

	ge, ok := errs.AsGatewayError(gatewayErr)
	if !ok || ge.Transient {
		s.logger.Warn("Rollback outcome unknown", fields)
		s.audit(ctx, transaction.ID, entity.AuditGatewayUnknownOutcome, actor, gatewayDetails(gatewayErr))
		return gatewayErr
	}

	details := gatewayDetails(gatewayErr)
	if isAlreadySettled(ge) {
		manual := &errs.ManualReversalRequiredError{ShopProcessID: transaction.ShopProcessID, Gateway: ge}
		s.logger.Error("Rollback impossible, transaction settled, manual reversal required", manual.LogFields())
		details[entity.DetailReason] = "manual reversal required"
		s.audit(ctx, transaction.ID, entity.AuditRollbackRejected, actor, details)
		return manual
	}

	s.logger.Warn("Gateway rejected rollback", fields)
	s.audit(ctx, transaction.ID, entity.AuditRollbackRejected, actor, details)
	return gatewayErr
}

func isAlreadySettled(ge *errs.GatewayError) bool {
	for _, key := range alreadySettledKeys {
		if ge.HasMessageKey(key) {
			return true
		}
	}
	for _, m := range ge.Messages {
		key := strings.ToLower(m.Key)
		if strings.Contains(key, "alreadyconfirmed") || strings.Contains(key, "settled") {
			return true
		}
	}
	return false
}
