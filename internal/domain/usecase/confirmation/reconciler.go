package confirmation

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/signature"
)

// Config holds what the reconciler needs from the gateway settings
type Config struct {
	PrivateKey string
	SuccessURL string
	FailureURL string
	TestMode   bool
}

// Reconciler applies gateway confirmations to stored transactions.
//
// Signature verification is best-effort: a mismatch is logged, audited and counted but
// processing continues. The gateway omits token, amount or currency on some callback
// shapes, so rejecting on mismatch would drop legitimate confirmations. Switching to
// strict rejection is a hardening option once every callback path carries a token.
type Reconciler struct {
	config       Config
	repo         persistence.TransactionRepository
	orders       external.OrderUpdater
	notifier     external.Notifier
	metrics      coreport.MetricsRecorder
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.ConfirmationUseCase = (*Reconciler)(nil)

// NewReconciler creates a new confirmation reconciler
func NewReconciler(
	config Config,
	repo persistence.TransactionRepository,
	orders external.OrderUpdater,
	notifier external.Notifier,
	metrics coreport.MetricsRecorder,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Reconciler {
	return &Reconciler{
		config:       config,
		repo:         repo,
		orders:       orders,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Reconcile normalizes an inbound callback and applies it
func (r *Reconciler) Reconcile(ctx context.Context, input usecase.CallbackInput) usecase.Outcome {
	shape := "flat"
	if input.Operation != nil {
		shape = "structured"
	}
	confirmation := Normalize(input)

	r.logger.Info("Confirmation callback received", map[string]any{
		"shop_process_id": confirmation.ShopProcessID,
		"shape":           shape,
		"response":        confirmation.Response,
		"response_code":   confirmation.ResponseCode,
	})
	return r.Apply(ctx, confirmation)
}

// Apply correlates, verifies, classifies and persists one confirmation.
// Status query and charge results arrive here without passing Normalize.
func (r *Reconciler) Apply(ctx context.Context, confirmation entity.Confirmation) usecase.Outcome {
	confirmation = withResponseDefault(confirmation)
	outcome := r.apply(ctx, confirmation)
	outcome.Confirmation = confirmation
	outcome.RedirectURL = r.redirectFor(outcome)
	r.metrics.ConfirmationProcessed(string(outcome.Kind))
	return outcome
}

func (r *Reconciler) apply(ctx context.Context, confirmation entity.Confirmation) usecase.Outcome {
	if confirmation.ShopProcessID == "" {
		r.logger.Warn("Confirmation without shop_process_id cannot be routed", map[string]any{
			"response":      confirmation.Response,
			"response_code": confirmation.ResponseCode,
		})
		return usecase.Outcome{
			Kind: usecase.OutcomeUnroutable,
			Err:  fmt.Errorf("%w: missing shop_process_id", errs.ErrCorrelation),
		}
	}

	transaction, err := r.repo.GetByShopProcessID(ctx, confirmation.ShopProcessID)
	if err != nil {
		if errs.IsNotFoundError(err) {
			r.logger.Warn("Confirmation for unknown transaction acknowledged without changes", map[string]any{
				"shop_process_id": confirmation.ShopProcessID,
				"response":        confirmation.Response,
			})
			return usecase.Outcome{
				Kind: usecase.OutcomeUncorrelated,
				Err:  fmt.Errorf("%w: %s", errs.ErrCorrelation, confirmation.ShopProcessID),
			}
		}
		r.logger.Error("Failed to load transaction for confirmation", map[string]any{
			"shop_process_id": confirmation.ShopProcessID,
			"error":           err.Error(),
		})
		r.metrics.StoreFailure("confirmation_lookup")
		return usecase.Outcome{
			Kind:    usecase.OutcomePersistenceFailed,
			Success: confirmation.IsApproved(),
			Err:     err,
		}
	}

	signatureValid := r.verify(ctx, transaction, confirmation)
	target := confirmation.Outcome()

	if transaction.IsTerminal() {
		outcome := r.resolveTerminal(ctx, transaction, confirmation, target)
		outcome.SignatureValid = signatureValid
		return outcome
	}

	outcome := r.transition(ctx, transaction, confirmation, target)
	outcome.SignatureValid = signatureValid
	return outcome
}

// transition moves a non-terminal transaction to its confirmed status
func (r *Reconciler) transition(ctx context.Context, transaction *entity.Transaction, confirmation entity.Confirmation, target entity.TransactionStatus) usecase.Outcome {
	now := r.timeProvider.Now()
	gatewayResponse := confirmation.ToGatewayResponse()
	update := persistence.TransactionUpdate{
		Status:           &target,
		Gateway:          &gatewayResponse,
		ConfirmationDate: &now,
		ExpectStatuses:   entity.ConfirmableStatuses,
	}
	if target == entity.StatusApproved {
		update.Delivery = &entity.DeliveryState{
			Status: entity.DeliveryPaymentConfirmed,
			History: []entity.DeliveryHistoryEntry{{
				Status:    entity.DeliveryPaymentConfirmed,
				Notes:     "payment approved by gateway",
				UpdatedBy: entity.ActorGateway,
				At:        now,
			}},
		}
	}

	updated, err := r.repo.Update(ctx, transaction.ID, update)
	if err != nil {
		if errors.Is(err, errs.ErrStaleTransaction) {
			// another callback finalized it first
			current, getErr := r.repo.GetByID(ctx, transaction.ID)
			if getErr == nil {
				return r.resolveTerminal(ctx, current, confirmation, target)
			}
			err = getErr
		}

		r.logger.Error("Failed to persist confirmation, gateway acknowledged anyway", map[string]any{
			"transaction_id":  transaction.ID,
			"shop_process_id": transaction.ShopProcessID,
			"target_status":   target,
			"error":           err.Error(),
		})
		r.metrics.StoreFailure("confirmation_apply")
		r.audit(ctx, transaction.ID, entity.AuditStoreUpdateFailed, map[string]string{
			entity.DetailToStatus:     string(target),
			entity.DetailResponseCode: confirmation.ResponseCode,
			entity.DetailError:        err.Error(),
		})
		return usecase.Outcome{
			Kind:        usecase.OutcomePersistenceFailed,
			Success:     target == entity.StatusApproved,
			Transaction: transaction,
			Err:         err,
		}
	}

	event := entity.AuditConfirmedRejected
	if target == entity.StatusApproved {
		event = entity.AuditConfirmedApproved
	}
	r.audit(ctx, updated.ID, event, map[string]string{
		entity.DetailFromStatus:          string(transaction.Status),
		entity.DetailToStatus:            string(target),
		entity.DetailResponseCode:        confirmation.ResponseCode,
		entity.DetailAuthorizationNumber: confirmation.AuthorizationNumber,
		entity.DetailTicketNumber:        confirmation.TicketNumber,
	})
	r.metrics.PaymentStatusChanged(string(target))

	r.logger.Info("Confirmation applied", map[string]any{
		"transaction_id":       updated.ID,
		"shop_process_id":      updated.ShopProcessID,
		"from_status":          transaction.Status,
		"to_status":            target,
		"authorization_number": confirmation.AuthorizationNumber,
	})

	r.syncOrder(ctx, updated, confirmation)

	kind := external.NotifyPaymentRejected
	if target == entity.StatusApproved {
		kind = external.NotifyPaymentApproved
	}
	r.notifier.Notify(ctx, *updated, kind)

	return usecase.Outcome{
		Kind:        usecase.OutcomeApplied,
		Success:     target == entity.StatusApproved,
		Transaction: updated,
	}
}

// resolveTerminal handles a confirmation for a transaction that is already final
func (r *Reconciler) resolveTerminal(ctx context.Context, transaction *entity.Transaction, confirmation entity.Confirmation, target entity.TransactionStatus) usecase.Outcome {
	if agrees(transaction.Status, target) {
		r.logger.Info("Duplicate confirmation ignored", map[string]any{
			"transaction_id":  transaction.ID,
			"shop_process_id": transaction.ShopProcessID,
			"status":          transaction.Status,
		})
		r.audit(ctx, transaction.ID, entity.AuditConfirmationDuplicate, map[string]string{
			entity.DetailToStatus:     string(target),
			entity.DetailResponseCode: confirmation.ResponseCode,
		})
		return usecase.Outcome{
			Kind:        usecase.OutcomeAlreadyProcessed,
			Success:     transaction.Status.IsSuccessful(),
			Transaction: transaction,
		}
	}

	r.logger.Error("Confirmation contradicts finalized transaction, manual review required", map[string]any{
		"transaction_id":  transaction.ID,
		"shop_process_id": transaction.ShopProcessID,
		"stored_status":   transaction.Status,
		"incoming_status": target,
		"response_code":   confirmation.ResponseCode,
	})
	r.audit(ctx, transaction.ID, entity.AuditConfirmationAnomaly, map[string]string{
		entity.DetailFromStatus:          string(transaction.Status),
		entity.DetailToStatus:            string(target),
		entity.DetailResponseCode:        confirmation.ResponseCode,
		entity.DetailAuthorizationNumber: confirmation.AuthorizationNumber,
		entity.DetailTicketNumber:        confirmation.TicketNumber,
	})
	return usecase.Outcome{
		Kind:        usecase.OutcomeAnomaly,
		Success:     transaction.Status.IsSuccessful(),
		Transaction: transaction,
		Err: errs.NewConflictError("transaction",
			fmt.Sprintf("confirmation %s contradicts stored status %s", target, transaction.Status)),
	}
}

// agrees reports whether a stored terminal status already reflects the incoming outcome.
// A rolled back transaction was approved before, so a late approval is a duplicate.
func agrees(stored, incoming entity.TransactionStatus) bool {
	if stored == incoming {
		return true
	}
	return stored == entity.StatusRolledBack && incoming == entity.StatusApproved
}

// verify returns nil when the callback lacks the fields needed to check its token
func (r *Reconciler) verify(ctx context.Context, transaction *entity.Transaction, c entity.Confirmation) *bool {
	if c.Token == "" || c.Amount == "" || c.Currency == "" || r.config.PrivateKey == "" {
		return nil
	}

	amount := entity.NormalizeAmountString(c.Amount)
	valid := signature.VerifyConfirm(c.Token, r.config.PrivateKey, c.ShopProcessID, amount, c.Currency)
	if !valid {
		r.logger.Warn("Confirmation signature mismatch, processing continues", map[string]any{
			"transaction_id":  transaction.ID,
			"shop_process_id": c.ShopProcessID,
			"amount":          amount,
			"stored_amount":   transaction.FormattedAmount(),
		})
		r.metrics.SignatureMismatch()
		r.audit(ctx, transaction.ID, entity.AuditSignatureMismatch, map[string]string{
			entity.DetailResponseCode: c.ResponseCode,
			entity.DetailReason:       "confirm token does not match",
		})
	}
	return &valid
}

// syncOrder mirrors the outcome onto the linked order. Failures are logged only.
func (r *Reconciler) syncOrder(ctx context.Context, transaction *entity.Transaction, c entity.Confirmation) {
	if transaction.SaleID == "" {
		return
	}

	status := external.OrderFailed
	if transaction.Status == entity.StatusApproved {
		status = external.OrderPaid
	}
	err := r.orders.SetPaymentStatus(ctx, transaction.SaleID, status, external.OrderPaymentExtra{
		ShopProcessID:       transaction.ShopProcessID,
		AuthorizationNumber: c.AuthorizationNumber,
		TicketNumber:        c.TicketNumber,
		ResponseDescription: c.ResponseDescription,
	})
	if err != nil {
		r.logger.Warn("Failed to update linked order", map[string]any{
			"transaction_id": transaction.ID,
			"order_id":       transaction.SaleID,
			"status":         status,
			"error":          err.Error(),
		})
	}
}

func (r *Reconciler) audit(ctx context.Context, transactionID string, event entity.AuditEvent, details map[string]string) {
	entry := entity.NewAuditEntry(transactionID, event, entity.ActorGateway, details)
	if err := r.repo.AppendAudit(ctx, entry); err != nil {
		r.logger.Error("Failed to append audit entry", map[string]any{
			"transaction_id": transactionID,
			"event":          event,
			"error":          err.Error(),
		})
	}
}

func (r *Reconciler) redirectFor(outcome usecase.Outcome) string {
	base := r.config.FailureURL
	if outcome.Success {
		base = r.config.SuccessURL
	}
	return RedirectURL(base, outcome.Confirmation, outcome.Success, r.config.TestMode)
}
