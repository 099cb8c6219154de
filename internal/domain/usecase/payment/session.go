package payment

import (
	"context"
	"errors"
	"net/url"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
)

// CreateSession persists a pending transaction and opens a gateway checkout session
func (s *Service) CreateSession(ctx context.Context, req usecase.CreateSessionRequest) (*usecase.SessionResult, error) {
	params, err := s.validator.ValidateSession(req)
	if err != nil {
		return nil, err
	}
	if err := s.gateway.ValidateConfig(); err != nil {
		s.logger.Error("Gateway configuration invalid, session not created", logFields(err))
		return nil, err
	}

	transaction, err := s.createWithFreshID(ctx, params, entity.StatusPending)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.CreateSingleBuy(ctx, gateway.SingleBuyRequest{
		ShopProcessID:  transaction.ShopProcessID,
		Amount:         transaction.FormattedAmount(),
		Currency:       string(transaction.Currency),
		Description:    transaction.Description,
		AdditionalData: req.AdditionalData,
	})
	if err != nil {
		transaction = s.handleGatewayFailure(ctx, transaction, err, entity.StatusPending)
		return &usecase.SessionResult{Transaction: transaction}, err
	}

	processID := result.ProcessID
	updated, err := s.repo.Update(ctx, transaction.ID, persistence.TransactionUpdate{
		GatewayProcessID: &processID,
	})
	if err != nil {
		s.logger.Error("Gateway session opened but process id not stored", map[string]any{
			"transaction_id":  transaction.ID,
			"shop_process_id": transaction.ShopProcessID,
			"process_id":      processID,
			"error":           err.Error(),
		})
		s.metrics.StoreFailure("session_process_id")
		updated = transaction
		updated.GatewayProcessID = processID
	}

	s.audit(ctx, updated.ID, entity.AuditSessionCreated, req.UserID, nil)
	s.logger.Info("Checkout session created", map[string]any{
		"transaction_id":  updated.ID,
		"shop_process_id": updated.ShopProcessID,
		"process_id":      processID,
		"amount":          updated.FormattedAmount(),
	})

	return &usecase.SessionResult{
		Transaction: updated,
		ProcessID:   processID,
		CheckoutURL: s.checkoutURL(processID),
	}, nil
}

// ChargeToken charges a saved card and applies the synchronous result
func (s *Service) ChargeToken(ctx context.Context, req usecase.ChargeRequest) (*entity.Transaction, error) {
	params, err := s.validator.ValidateCharge(req)
	if err != nil {
		return nil, err
	}
	if err := s.gateway.ValidateConfig(); err != nil {
		s.logger.Error("Gateway configuration invalid, charge not attempted", logFields(err))
		return nil, err
	}

	transaction, err := s.createWithFreshID(ctx, params, entity.StatusProcessing)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Charge(ctx, gateway.ChargeRequest{
		ShopProcessID:    transaction.ShopProcessID,
		Amount:           transaction.FormattedAmount(),
		Currency:         string(transaction.Currency),
		NumberOfPayments: transaction.NumberOfPayments,
		Description:      transaction.Description,
		AdditionalData:   req.AdditionalData,
		AliasToken:       transaction.AliasToken,
	})
	if err != nil {
		return s.handleGatewayFailure(ctx, transaction, err, entity.StatusProcessing), err
	}

	if result.Requires3DS || result.Confirmation == nil {
		return s.markRequires3DS(ctx, transaction, result.ProcessID), nil
	}

	confirmation := *result.Confirmation
	if confirmation.ShopProcessID == "" {
		confirmation.ShopProcessID = transaction.ShopProcessID
	}
	outcome := s.confirmation.Apply(ctx, confirmation)
	switch outcome.Kind {
	case usecase.OutcomeApplied, usecase.OutcomeAlreadyProcessed:
		return outcome.Transaction, nil
	default:
		if outcome.Transaction != nil {
			transaction = outcome.Transaction
		}
		return transaction, outcome.Err
	}
}

// createWithFreshID stores a new transaction, drawing a new shop process id after a collision
func (s *Service) createWithFreshID(ctx context.Context, params entity.NewTransactionParams, status entity.TransactionStatus) (*entity.Transaction, error) {
	var lastErr error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		params.ShopProcessID = s.idGenerator.Next()
		transaction, err := entity.NewTransaction(params, s.timeProvider)
		if err != nil {
			return nil, err
		}
		transaction.Status = status

		err = s.repo.Create(ctx, transaction)
		if err == nil {
			s.audit(ctx, transaction.ID, entity.AuditCreated, params.CreatedBy, map[string]string{
				entity.DetailToStatus: string(status),
			})
			s.metrics.PaymentStatusChanged(string(status))
			return transaction, nil
		}
		if !errs.IsRetryableConflict(err) {
			s.logger.Error("Failed to create transaction", map[string]any{
				"shop_process_id": params.ShopProcessID,
				"error":           err.Error(),
			})
			return nil, err
		}

		s.logger.Warn("Shop process id collision, generating a new one", map[string]any{
			"shop_process_id": params.ShopProcessID,
			"attempt":         attempt,
		})
		lastErr = err
	}
	return nil, lastErr
}

// handleGatewayFailure keeps the transaction open on a transient error and fails it otherwise
func (s *Service) handleGatewayFailure(ctx context.Context, transaction *entity.Transaction, gatewayErr error, current entity.TransactionStatus) *entity.Transaction {
	fields := logFields(gatewayErr)
	fields["transaction_id"] = transaction.ID
	fields["shop_process_id"] = transaction.ShopProcessID

	if errs.IsGatewayTransient(gatewayErr) {
		s.logger.Warn("Gateway outcome unknown, transaction left open for confirmation", fields)
		s.audit(ctx, transaction.ID, entity.AuditGatewayUnknownOutcome, entity.ActorSystem, gatewayDetails(gatewayErr))
		return transaction
	}

	s.logger.Warn("Gateway rejected request, failing transaction", fields)
	failed := entity.StatusFailed
	details := gatewayDetails(gatewayErr)
	details[entity.DetailFromStatus] = string(current)
	details[entity.DetailToStatus] = string(failed)
	s.audit(ctx, transaction.ID, entity.AuditGatewayRejected, entity.ActorGateway, details)

	update := persistence.TransactionUpdate{
		Status:         &failed,
		ExpectStatuses: []entity.TransactionStatus{current},
	}
	if ge, ok := errs.AsGatewayError(gatewayErr); ok {
		update.Gateway = &entity.GatewayResponse{
			Response:            entity.ResponseNo,
			ResponseDescription: ge.MessageSummary(),
		}
	}
	updated, err := s.repo.Update(ctx, transaction.ID, update)
	if err != nil {
		if !errors.Is(err, errs.ErrStaleTransaction) {
			s.metrics.StoreFailure("mark_failed")
		}
		s.logger.Error("Failed to mark transaction failed", map[string]any{
			"transaction_id": transaction.ID,
			"error":          err.Error(),
		})
		return transaction
	}
	s.metrics.PaymentStatusChanged(string(failed))
	return updated
}

func (s *Service) markRequires3DS(ctx context.Context, transaction *entity.Transaction, processID string) *entity.Transaction {
	status := entity.StatusRequires3DS
	update := persistence.TransactionUpdate{
		Status:         &status,
		ExpectStatuses: []entity.TransactionStatus{entity.StatusProcessing},
	}
	if processID != "" {
		update.GatewayProcessID = &processID
	}

	updated, err := s.repo.Update(ctx, transaction.ID, update)
	if err != nil {
		s.logger.Error("Failed to record 3-D Secure requirement", map[string]any{
			"transaction_id": transaction.ID,
			"error":          err.Error(),
		})
		s.metrics.StoreFailure("mark_requires_3ds")
		return transaction
	}

	s.metrics.PaymentStatusChanged(string(status))
	s.logger.Info("Charge requires 3-D Secure challenge", map[string]any{
		"transaction_id":  updated.ID,
		"shop_process_id": updated.ShopProcessID,
		"process_id":      processID,
	})
	return updated
}

func (s *Service) checkoutURL(processID string) string {
	if s.config.CheckoutBaseURL == "" || processID == "" {
		return ""
	}
	return s.config.CheckoutBaseURL + "?process_id=" + url.QueryEscape(processID)
}
