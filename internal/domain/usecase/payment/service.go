package payment

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
)

const (
	// maxCreateAttempts bounds retries after a shop process id collision
	maxCreateAttempts = 3

	defaultPageSize = 20
	maxPageSize     = 100
)

// Config carries settings the service needs from the gateway configuration
type Config struct {
	// CheckoutBaseURL is the gateway page the customer is sent to, process_id is appended
	CheckoutBaseURL string
}

// Dependencies groups the collaborators of the payment service
type Dependencies struct {
	Repository   persistence.TransactionRepository
	Gateway      gateway.Client
	Confirmation usecase.ConfirmationUseCase
	IDGenerator  coreport.ProcessIDGenerator
	Authorizer   external.Authorizer
	Orders       external.OrderUpdater
	Notifier     external.Notifier
	Metrics      coreport.MetricsRecorder
	TimeProvider coreport.TimeProvider
	Logger       coreport.Logger
}

// Service implements the payment operations on top of the gateway and the store
type Service struct {
	config       Config
	repo         persistence.TransactionRepository
	gateway      gateway.Client
	confirmation usecase.ConfirmationUseCase
	idGenerator  coreport.ProcessIDGenerator
	authorizer   external.Authorizer
	orders       external.OrderUpdater
	notifier     external.Notifier
	metrics      coreport.MetricsRecorder
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	validator    *RequestValidator
}

var _ usecase.PaymentUseCase = (*Service)(nil)

// NewService creates a new payment service
func NewService(config Config, deps Dependencies) *Service {
	return &Service{
		config:       config,
		repo:         deps.Repository,
		gateway:      deps.Gateway,
		confirmation: deps.Confirmation,
		idGenerator:  deps.IDGenerator,
		authorizer:   deps.Authorizer,
		orders:       deps.Orders,
		notifier:     deps.Notifier,
		metrics:      deps.Metrics,
		timeProvider: deps.TimeProvider,
		logger:       deps.Logger,
		validator:    NewRequestValidator(),
	}
}

// Get returns a transaction owned by the actor, or any transaction for an admin
func (s *Service) Get(ctx context.Context, actor, id string) (*entity.Transaction, error) {
	transaction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, actor, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// ListForUser returns the user's transactions, newest first
func (s *Service) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, int64, error) {
	if userID == "" {
		return nil, 0, errs.NewValidationError("user_id", "cannot be empty")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// Stats returns store statistics
func (s *Service) Stats(ctx context.Context, actor string) (*persistence.TransactionStats, error) {
	if err := s.requireAdmin(ctx, actor, "stats"); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx)
}

// AuditTrail returns the audit entries of a transaction
func (s *Service) AuditTrail(ctx context.Context, actor, id string) ([]*entity.AuditEntry, error) {
	if err := s.requireAdmin(ctx, actor, "audit_trail"); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListAudit(ctx, id)
}

func (s *Service) checkAccess(ctx context.Context, actor string, transaction *entity.Transaction) error {
	if actor != "" && transaction.CreatedBy == actor {
		return nil
	}
	if s.authorizer.IsAdmin(ctx, actor) {
		return nil
	}
	s.logger.Warn("Access to transaction denied", map[string]any{
		"transaction_id": transaction.ID,
		"actor":          actor,
	})
	return fmt.Errorf("%w: transaction %s", errs.ErrForbidden, transaction.ID)
}

func (s *Service) requireAdmin(ctx context.Context, actor, operation string) error {
	if s.authorizer.IsAdmin(ctx, actor) {
		return nil
	}
	s.logger.Warn("Administrative operation denied", map[string]any{
		"operation": operation,
		"actor":     actor,
	})
	return fmt.Errorf("%w: %s requires administrator", errs.ErrForbidden, operation)
}

// audit appends an entry; a failure is logged and never fails the operation
func (s *Service) audit(ctx context.Context, transactionID string, event entity.AuditEvent, actor string, details map[string]string) {
	entry := entity.NewAuditEntry(transactionID, event, actor, details)
	if err := s.repo.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("Failed to append audit entry", map[string]any{
			"transaction_id": transactionID,
			"event":          event,
			"error":          err.Error(),
		})
	}
}

// gatewayDetails extracts audit details from a gateway error
func gatewayDetails(err error) map[string]string {
	details := map[string]string{entity.DetailError: err.Error()}
	if ge, ok := errs.AsGatewayError(err); ok {
		details[entity.DetailGatewayMessage] = ge.MessageSummary()
	}
	return details
}

func logFields(err error) map[string]any {
	type logFielder interface{ LogFields() map[string]any }
	if lf, ok := err.(logFielder); ok {
		return lf.LogFields()
	}
	if ge, ok := errs.AsGatewayError(err); ok {
		return ge.LogFields()
	}
	return map[string]any{"error": err.Error()}
}
