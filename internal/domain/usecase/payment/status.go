package payment

import (
	"context"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
)

// QueryStatus asks the gateway for the outcome of a transaction and reconciles the answer.
// It resolves transactions left open by a gateway timeout.
func (s *Service) QueryStatus(ctx context.Context, actor, shopProcessID string) (*entity.Transaction, error) {
	transaction, err := s.repo.GetByShopProcessID(ctx, shopProcessID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, actor, transaction); err != nil {
		return nil, err
	}

	result, err := s.gateway.GetConfirmation(ctx, shopProcessID)
	if err != nil {
		fields := logFields(err)
		fields["transaction_id"] = transaction.ID
		fields["shop_process_id"] = shopProcessID
		s.logger.Warn("Status query failed", fields)
		return transaction, err
	}

	details := map[string]string{entity.DetailFromStatus: string(transaction.Status)}
	if result.Confirmation != nil {
		details[entity.DetailResponseCode] = result.Confirmation.ResponseCode
	}
	s.audit(ctx, transaction.ID, entity.AuditStatusQueried, actor, details)

	if result.Confirmation == nil {
		s.logger.Info("Gateway has no confirmation yet", map[string]any{
			"transaction_id":  transaction.ID,
			"shop_process_id": shopProcessID,
			"status":          transaction.Status,
		})
		return transaction, nil
	}

	outcome := s.confirmation.Apply(ctx, *result.Confirmation)
	if outcome.Transaction != nil {
		transaction = outcome.Transaction
	}
	switch outcome.Kind {
	case usecase.OutcomeApplied, usecase.OutcomeAlreadyProcessed:
		return transaction, nil
	default:
		return transaction, outcome.Err
	}
}
