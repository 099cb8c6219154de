package delivery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
)

const maxFeedbackLength = 1000

// Tracker moves approved transactions through physical fulfilment
type Tracker struct {
	repo         persistence.TransactionRepository
	authorizer   external.Authorizer
	notifier     external.Notifier
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.DeliveryUseCase = (*Tracker)(nil)

// NewTracker creates a new delivery tracker
func NewTracker(
	repo persistence.TransactionRepository,
	authorizer external.Authorizer,
	notifier external.Notifier,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Tracker {
	return &Tracker{
		repo:         repo,
		authorizer:   authorizer,
		notifier:     notifier,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Get returns the delivery state of a transaction
func (t *Tracker) Get(ctx context.Context, actor, transactionID string) (*entity.DeliveryState, error) {
	transaction, err := t.repo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := t.requireOwnerOrAdmin(ctx, actor, transaction); err != nil {
		return nil, err
	}

	state := transaction.Delivery
	if transaction.Status == entity.StatusApproved {
		state.Status = state.CurrentStatus()
	}
	return &state, nil
}

// Advance moves the delivery forward along its fixed order, or into problem
func (t *Tracker) Advance(ctx context.Context, actor, transactionID string, status string, metadata usecase.DeliveryMetadata) (*entity.Transaction, error) {
	if err := t.requireAdmin(ctx, actor, "advance_delivery"); err != nil {
		return nil, err
	}
	if !entity.IsValidDeliveryStatus(status) {
		return nil, errs.NewValidationError("status", fmt.Sprintf("unknown delivery status %q", status))
	}
	next := entity.DeliveryStatus(status)

	transaction, err := t.loadApproved(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	current := transaction.Delivery.CurrentStatus()
	if !current.CanAdvanceTo(next) {
		return nil, errs.NewConflictError("delivery",
			fmt.Sprintf("cannot move delivery from %s to %s", current, next))
	}

	now := t.timeProvider.Now()
	state := cloneState(transaction.Delivery)
	state.Status = next
	if metadata.TrackingNumber != "" {
		state.TrackingNumber = strings.TrimSpace(metadata.TrackingNumber)
	}
	if metadata.Carrier != "" {
		state.Carrier = strings.TrimSpace(metadata.Carrier)
	}
	if metadata.EstimatedDeliveryDate != nil {
		state.EstimatedDeliveryDate = metadata.EstimatedDeliveryDate
	}
	if next == entity.DeliveryDelivered {
		state.ActualDeliveryDate = &now
	}
	state.History = append(state.History, entity.DeliveryHistoryEntry{
		Status:    next,
		Notes:     strings.TrimSpace(metadata.Notes),
		UpdatedBy: actor,
		At:        now,
	})

	updated, err := t.store(ctx, transaction, state, false)
	if err != nil {
		return nil, err
	}

	t.audit(ctx, updated.ID, entity.AuditDeliveryAdvanced, actor, map[string]string{
		entity.DetailFromStatus:     string(current),
		entity.DetailDeliveryStatus: string(next),
		entity.DetailReason:         metadata.Notes,
	})
	t.logger.Info("Delivery advanced", map[string]any{
		"transaction_id": updated.ID,
		"from_status":    current,
		"to_status":      next,
		"actor":          actor,
	})
	t.notifier.Notify(ctx, *updated, external.NotifyDeliveryUpdated)
	return updated, nil
}

// RecordAttempt appends a delivery attempt. A successful attempt marks the goods delivered.
func (t *Tracker) RecordAttempt(ctx context.Context, actor, transactionID string, status string, notes string, nextAttemptDate *time.Time) (*entity.Transaction, error) {
	if err := t.requireAdmin(ctx, actor, "record_delivery_attempt"); err != nil {
		return nil, err
	}
	if !entity.IsValidAttemptStatus(status) {
		return nil, errs.NewValidationError("status", fmt.Sprintf("unknown attempt status %q", status))
	}
	attemptStatus := entity.AttemptStatus(status)

	transaction, err := t.loadApproved(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Delivery.IsClosed() {
		return nil, errs.NewConflictError("delivery",
			fmt.Sprintf("delivery already %s", transaction.Delivery.CurrentStatus()))
	}

	now := t.timeProvider.Now()
	state := cloneState(transaction.Delivery)
	state.Status = state.CurrentStatus()
	state.Attempts = append(state.Attempts, entity.DeliveryAttempt{
		Status:          attemptStatus,
		Notes:           strings.TrimSpace(notes),
		Timestamp:       now,
		NextAttemptDate: nextAttemptDate,
	})
	if attemptStatus == entity.AttemptSuccessful {
		state.Status = entity.DeliveryDelivered
		state.ActualDeliveryDate = &now
		state.History = append(state.History, entity.DeliveryHistoryEntry{
			Status:    entity.DeliveryDelivered,
			Notes:     "successful delivery attempt",
			UpdatedBy: actor,
			At:        now,
		})
	}

	updated, err := t.store(ctx, transaction, state, false)
	if err != nil {
		return nil, err
	}

	t.audit(ctx, updated.ID, entity.AuditDeliveryAttempt, actor, map[string]string{
		entity.DetailAttemptStatus:  string(attemptStatus),
		entity.DetailDeliveryStatus: string(updated.Delivery.CurrentStatus()),
	})
	t.logger.Info("Delivery attempt recorded", map[string]any{
		"transaction_id":  updated.ID,
		"attempt_status":  attemptStatus,
		"delivery_status": updated.Delivery.CurrentStatus(),
		"attempts":        len(updated.Delivery.Attempts),
	})
	t.notifier.Notify(ctx, *updated, external.NotifyDeliveryAttempt)
	return updated, nil
}

// Rate stores the customer's single satisfaction rating for a delivered transaction
func (t *Tracker) Rate(ctx context.Context, actor, transactionID string, rating int, feedback string) (*entity.Transaction, error) {
	if rating < entity.MinRating || rating > entity.MaxRating {
		return nil, errs.NewValidationError("rating", fmt.Sprintf("must be between %d and %d", entity.MinRating, entity.MaxRating))
	}
	feedback = strings.TrimSpace(feedback)
	if utf8.RuneCountInString(feedback) > maxFeedbackLength {
		return nil, errs.NewValidationError("feedback", fmt.Sprintf("must be at most %d characters", maxFeedbackLength))
	}

	transaction, err := t.repo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := t.requireOwnerOrAdmin(ctx, actor, transaction); err != nil {
		return nil, err
	}
	if transaction.Status != entity.StatusApproved || !transaction.Delivery.IsDelivered() {
		return nil, errs.NewValidationError("delivery", "can only be rated once delivered")
	}
	if transaction.Delivery.IsRated() {
		return nil, alreadyRated(transaction.ID)
	}

	state := cloneState(transaction.Delivery)
	state.Satisfaction = &entity.CustomerSatisfaction{
		Rating:      rating,
		Feedback:    feedback,
		SubmittedAt: t.timeProvider.Now(),
	}

	updated, err := t.store(ctx, transaction, state, true)
	if err != nil {
		return nil, err
	}

	t.audit(ctx, updated.ID, entity.AuditDeliveryRated, actor, map[string]string{
		entity.DetailRating: strconv.Itoa(rating),
	})
	t.logger.Info("Delivery rated", map[string]any{
		"transaction_id": updated.ID,
		"rating":         rating,
	})
	t.notifier.Notify(ctx, *updated, external.NotifyDeliveryRated)
	return updated, nil
}

// store writes the new delivery state guarded by the version that was read
func (t *Tracker) store(ctx context.Context, transaction *entity.Transaction, state entity.DeliveryState, rating bool) (*entity.Transaction, error) {
	version := transaction.Version
	updated, err := t.repo.Update(ctx, transaction.ID, persistence.TransactionUpdate{
		Delivery:       &state,
		ExpectStatuses: []entity.TransactionStatus{entity.StatusApproved},
		ExpectVersion:  &version,
		ExpectUnrated:  rating,
	})
	if err == nil {
		return updated, nil
	}

	if errors.Is(err, errs.ErrStaleTransaction) {
		t.logger.Warn("Delivery changed concurrently", map[string]any{
			"transaction_id": transaction.ID,
			"version":        version,
		})
		if rating {
			return nil, alreadyRated(transaction.ID)
		}
		return nil, &errs.ConflictError{
			Resource:  "delivery",
			Reason:    "delivery was updated concurrently, reload and retry",
			Retryable: true,
			Err:       err,
		}
	}

	t.logger.Error("Failed to store delivery state", map[string]any{
		"transaction_id": transaction.ID,
		"error":          err.Error(),
	})
	return nil, err
}

func (t *Tracker) loadApproved(ctx context.Context, transactionID string) (*entity.Transaction, error) {
	transaction, err := t.repo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Status != entity.StatusApproved {
		return nil, errs.NewConflictError("delivery",
			fmt.Sprintf("delivery requires an approved transaction, status is %s", transaction.Status))
	}
	return transaction, nil
}

func (t *Tracker) requireAdmin(ctx context.Context, actor, operation string) error {
	if t.authorizer.IsAdmin(ctx, actor) {
		return nil
	}
	t.logger.Warn("Administrative delivery operation denied", map[string]any{
		"operation": operation,
		"actor":     actor,
	})
	return fmt.Errorf("%w: %s requires administrator", errs.ErrForbidden, operation)
}

func (t *Tracker) requireOwnerOrAdmin(ctx context.Context, actor string, transaction *entity.Transaction) error {
	if actor != "" && actor == transaction.CreatedBy {
		return nil
	}
	if t.authorizer.IsAdmin(ctx, actor) {
		return nil
	}
	return fmt.Errorf("%w: transaction %s", errs.ErrForbidden, transaction.ID)
}

func (t *Tracker) audit(ctx context.Context, transactionID string, event entity.AuditEvent, actor string, details map[string]string) {
	if err := t.repo.AppendAudit(ctx, entity.NewAuditEntry(transactionID, event, actor, details)); err != nil {
		t.logger.Error("Failed to append audit entry", map[string]any{
			"transaction_id": transactionID,
			"event":          event,
			"error":          err.Error(),
		})
	}
}

func alreadyRated(transactionID string) error {
	return errs.NewConflictError("delivery", "transaction "+transactionID+" was already rated")
}

// cloneState copies the append-only slices so the stored snapshot is never aliased
func cloneState(s entity.DeliveryState) entity.DeliveryState {
	out := s
	out.Attempts = append([]entity.DeliveryAttempt(nil), s.Attempts...)
	out.History = append([]entity.DeliveryHistoryEntry(nil), s.History...)
	return out
}
