package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionRepository implements persistence.TransactionRepository using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	timeProvider    coreport.TimeProvider
	collector       *database.MetricsCollector
	errorClassifier *ErrorClassifier
	retryConfig     database.RetryConfig
}

var _ persistence.TransactionRepository = (*TransactionRepository)(nil)

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(
	db *gorm.DB,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	collector *database.MetricsCollector,
) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		timeProvider:    timeProvider,
		collector:       collector,
		errorClassifier: NewErrorClassifier(),
		retryConfig:     database.DefaultRetryConfig(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(tx *entity.Transaction) (*model.Transaction, error) {
	security, err := encodeSecurity(tx.Gateway.SecurityInformation)
	if err != nil {
		return nil, err
	}
	customer, err := encodeCustomer(tx.Customer)
	if err != nil {
		return nil, err
	}
	items, err := encodeItems(tx.Items)
	if err != nil {
		return nil, err
	}
	delivery, err := encodeDelivery(tx.Delivery)
	if err != nil {
		return nil, err
	}

	return &model.Transaction{
		ID:                          tx.ID,
		ShopProcessID:               tx.ShopProcessID,
		GatewayProcessID:            tx.GatewayProcessID,
		Amount:                      tx.Amount,
		Currency:                    string(tx.Currency),
		TaxAmount:                   tx.TaxAmount,
		NumberOfPayments:            tx.NumberOfPayments,
		Description:                 tx.Description,
		IsTokenPayment:              tx.IsTokenPayment,
		AliasToken:                  tx.AliasToken,
		PaymentMethod:               string(tx.PaymentMethod),
		Status:                      string(tx.Status),
		Response:                    tx.Gateway.Response,
		ResponseCode:                tx.Gateway.ResponseCode,
		ResponseDescription:         tx.Gateway.ResponseDescription,
		ExtendedResponseDescription: tx.Gateway.ExtendedResponseDescription,
		ResponseDetails:             tx.Gateway.ResponseDetails,
		AuthorizationNumber:         tx.Gateway.AuthorizationNumber,
		TicketNumber:                tx.Gateway.TicketNumber,
		IVAAmount:                   tx.Gateway.IVAAmount,
		IVATicketNumber:             tx.Gateway.IVATicketNumber,
		SecurityInformation:         security,
		ConfirmationDate:            tx.ConfirmationDate,
		Customer:                    customer,
		Items:                       items,
		DeliveryStatus:              string(tx.Delivery.Status),
		DeliveryRated:               tx.Delivery.IsRated(),
		DeliveryDetails:             delivery,
		IsRolledBack:                tx.Rollback.IsRolledBack,
		RollbackDate:                tx.Rollback.Date,
		RollbackReason:              tx.Rollback.Reason,
		RollbackBy:                  tx.Rollback.By,
		SaleID:                      tx.SaleID,
		CreatedBy:                   tx.CreatedBy,
		Version:                     tx.Version,
		CreatedAt:                   tx.CreatedAt,
		UpdatedAt:                   tx.UpdatedAt,
	}, nil
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) (*entity.Transaction, error) {
	security, err := decodeSecurity(m.SecurityInformation)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt security information on %s: %s", errs.ErrInternalServer, m.ID, err)
	}
	customer, err := decodeCustomer(m.Customer)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt customer on %s: %s", errs.ErrInternalServer, m.ID, err)
	}
	items, err := decodeItems(m.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt items on %s: %s", errs.ErrInternalServer, m.ID, err)
	}
	delivery, err := decodeDelivery(m.DeliveryStatus, m.DeliveryDetails)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt delivery on %s: %s", errs.ErrInternalServer, m.ID, err)
	}

	return &entity.Transaction{
		ID:               m.ID,
		ShopProcessID:    m.ShopProcessID,
		GatewayProcessID: m.GatewayProcessID,
		Amount:           m.Amount,
		Currency:         entity.Currency(m.Currency),
		TaxAmount:        m.TaxAmount,
		NumberOfPayments: m.NumberOfPayments,
		Description:      m.Description,
		IsTokenPayment:   m.IsTokenPayment,
		AliasToken:       m.AliasToken,
		PaymentMethod:    entity.PaymentMethod(m.PaymentMethod),
		Status:           entity.TransactionStatus(m.Status),
		Gateway: entity.GatewayResponse{
			Response:                    m.Response,
			ResponseCode:                m.ResponseCode,
			ResponseDescription:         m.ResponseDescription,
			ExtendedResponseDescription: m.ExtendedResponseDescription,
			ResponseDetails:             m.ResponseDetails,
			AuthorizationNumber:         m.AuthorizationNumber,
			TicketNumber:                m.TicketNumber,
			IVAAmount:                   m.IVAAmount,
			IVATicketNumber:             m.IVATicketNumber,
			SecurityInformation:         security,
		},
		ConfirmationDate: m.ConfirmationDate,
		Customer:         customer,
		Items:            items,
		Delivery:         delivery,
		Rollback: entity.RollbackState{
			IsRolledBack: m.IsRolledBack,
			Date:         m.RollbackDate,
			Reason:       m.RollbackReason,
			By:           m.RollbackBy,
		},
		SaleID:    m.SaleID,
		CreatedBy: m.CreatedBy,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// Create saves a new transaction and assigns its internal ID
func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"shop_process_id": tx.ShopProcessID,
		"created_by":      tx.CreatedBy,
	})

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := r.timeProvider.Now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	transactionModel, err := r.entityToModel(tx)
	if err != nil {
		return fmt.Errorf("%w: encode transaction: %s", errs.ErrInternalServer, err)
	}

	_, err = r.collector.MeasureQuery(ctx, "transaction_create", func() (int64, error) {
		result := r.db.WithContext(ctx).Create(transactionModel)
		return result.RowsAffected, result.Error
	})
	if err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate shop process id detected", map[string]any{
				"shop_process_id": tx.ShopProcessID,
			})
			return errs.NewDuplicateProcessIDError(tx.ShopProcessID)
		}

		r.logger.Error("Failed to create transaction", map[string]any{
			"shop_process_id": tx.ShopProcessID,
			"error":           err.Error(),
		})
		return wrapDatabaseError("create transaction", err)
	}

	r.logger.Info("Transaction created successfully", map[string]any{
		"transaction_id":  tx.ID,
		"shop_process_id": tx.ShopProcessID,
	})
	return nil
}

// GetByID retrieves a transaction by its internal ID
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.getOne(ctx, "transaction_get_by_id", "id = ?", id)
}

// GetByShopProcessID retrieves a transaction by its gateway correlation id
func (r *TransactionRepository) GetByShopProcessID(ctx context.Context, shopProcessID string) (*entity.Transaction, error) {
	return r.getOne(ctx, "transaction_get_by_shop_process_id", "shop_process_id = ?", shopProcessID)
}

func (r *TransactionRepository) getOne(ctx context.Context, operation, condition, key string) (*entity.Transaction, error) {
	var transactionModel model.Transaction

	err := database.RetryOnTransientError(ctx, r.retryConfig, func() error {
		_, err := r.collector.MeasureQuery(ctx, operation, func() (int64, error) {
			result := r.db.WithContext(ctx).Where(condition, key).First(&transactionModel)
			return result.RowsAffected, result.Error
		})
		return err
	}, r.errorClassifier.IsTransientError, r.logger)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debug("Transaction not found", map[string]any{
				"lookup": condition,
				"key":    key,
			})
			return nil, errs.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction", map[string]any{
			"lookup": condition,
			"key":    key,
			"error":  err.Error(),
		})
		return nil, wrapDatabaseError(operation, err)
	}

	return r.modelToEntity(&transactionModel)
}

// updateValues turns a partial update into a column map
func (r *TransactionRepository) updateValues(update persistence.TransactionUpdate) (map[string]any, error) {
	values := map[string]any{}

	if update.Status != nil {
		values["status"] = string(*update.Status)
	}
	if update.GatewayProcessID != nil {
		values["gateway_process_id"] = *update.GatewayProcessID
	}
	if update.Gateway != nil {
		security, err := encodeSecurity(update.Gateway.SecurityInformation)
		if err != nil {
			return nil, err
		}
		values["response"] = update.Gateway.Response
		values["response_code"] = update.Gateway.ResponseCode
		values["response_description"] = update.Gateway.ResponseDescription
		values["extended_response_description"] = update.Gateway.ExtendedResponseDescription
		values["response_details"] = update.Gateway.ResponseDetails
		values["authorization_number"] = update.Gateway.AuthorizationNumber
		values["ticket_number"] = update.Gateway.TicketNumber
		values["iva_amount"] = update.Gateway.IVAAmount
		values["iva_ticket_number"] = update.Gateway.IVATicketNumber
		values["security_information"] = security
	}
	if update.ConfirmationDate != nil {
		values["confirmation_date"] = *update.ConfirmationDate
	}
	if update.Delivery != nil {
		details, err := encodeDelivery(*update.Delivery)
		if err != nil {
			return nil, err
		}
		values["delivery_status"] = string(update.Delivery.Status)
		values["delivery_rated"] = update.Delivery.IsRated()
		values["delivery_details"] = details
	}
	if update.Rollback != nil {
		values["is_rolled_back"] = update.Rollback.IsRolledBack
		values["rollback_date"] = update.Rollback.Date
		values["rollback_reason"] = update.Rollback.Reason
		values["rollback_by"] = update.Rollback.By
	}

	return values, nil
}

// Update applies a partial update as a single guarded statement and returns the stored result
func (r *TransactionRepository) Update(ctx context.Context, id string, update persistence.TransactionUpdate) (*entity.Transaction, error) {
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	values, err := r.updateValues(update)
	if err != nil {
		return nil, fmt.Errorf("%w: encode update: %s", errs.ErrInternalServer, err)
	}
	values["version"] = gorm.Expr("version + 1")
	values["updated_at"] = r.timeProvider.Now()

	fields := map[string]any{"transaction_id": id}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	r.logger.Debug("Updating transaction", fields)

	rows, err := r.collector.MeasureQuery(ctx, "transaction_update", func() (int64, error) {
		query := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("id = ?", id)
		if len(update.ExpectStatuses) > 0 {
			statuses := make([]string, len(update.ExpectStatuses))
			for i, s := range update.ExpectStatuses {
				statuses[i] = string(s)
			}
			query = query.Where("status IN ?", statuses)
		}
		if update.ExpectVersion != nil {
			query = query.Where("version = ?", *update.ExpectVersion)
		}
		if update.ExpectUnrated {
			query = query.Where("delivery_rated = ?", false)
		}
		result := query.Updates(values)
		return result.RowsAffected, result.Error
	})
	if err != nil {
		r.logger.Error("Failed to update transaction", map[string]any{
			"transaction_id": id,
			"error":          err.Error(),
		})
		return nil, wrapDatabaseError("update transaction", err)
	}

	if rows.RowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			if errors.Is(getErr, errs.ErrTransactionNotFound) {
				r.logger.Warn("Transaction not found during update", map[string]any{
					"transaction_id": id,
				})
			}
			return nil, getErr
		}
		r.logger.Info("Guarded update did not apply", map[string]any{
			"transaction_id": id,
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStaleTransaction, id)
	}

	return r.GetByID(ctx, id)
}

// ListByUser returns the transactions created by a user, newest first, and the total count
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, int64, error) {
	var (
		total  int64
		models []model.Transaction
	)

	_, err := r.collector.MeasureQuery(ctx, "transaction_list_by_user", func() (int64, error) {
		base := func() *gorm.DB {
			return r.db.WithContext(ctx).Model(&model.Transaction{}).Where("created_by = ?", userID)
		}
		if err := base().Count(&total).Error; err != nil {
			return 0, err
		}
		result := base().Order("created_at desc").Order("id desc").Limit(limit).Offset(offset).Find(&models)
		return result.RowsAffected, result.Error
	})
	if err != nil {
		r.logger.Error("Failed to list transactions", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, 0, wrapDatabaseError("list transactions", err)
	}

	transactions := make([]*entity.Transaction, 0, len(models))
	for i := range models {
		tx, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, total, nil
}

type groupCount struct {
	GroupKey string
	Count    int64
}

// Stats returns counts per status and, for approved transactions, per delivery status
func (r *TransactionRepository) Stats(ctx context.Context) (*persistence.TransactionStats, error) {
	var byStatus, byDelivery []groupCount

	_, err := r.collector.MeasureQuery(ctx, "transaction_stats", func() (int64, error) {
		if err := r.db.WithContext(ctx).Model(&model.Transaction{}).Select("status AS group_key, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
			return 0, err
		}
		err := r.db.WithContext(ctx).Model(&model.Transaction{}).
			Select("delivery_status AS group_key, COUNT(*) AS count").
			Where("status = ?", string(entity.StatusApproved)).
			Group("delivery_status").
			Scan(&byDelivery).Error
		return int64(len(byStatus) + len(byDelivery)), err
	})
	if err != nil {
		r.logger.Error("Failed to compute transaction stats", map[string]any{
			"error": err.Error(),
		})
		return nil, wrapDatabaseError("transaction stats", err)
	}

	stats := &persistence.TransactionStats{
		ByStatus:         make(map[entity.TransactionStatus]int64, len(byStatus)),
		ByDeliveryStatus: make(map[entity.DeliveryStatus]int64, len(byDelivery)),
	}
	for _, row := range byStatus {
		stats.ByStatus[entity.TransactionStatus(row.GroupKey)] = row.Count
		stats.Total += row.Count
	}
	for _, row := range byDelivery {
		status := entity.DeliveryStatus(row.GroupKey)
		if status == "" {
			status = entity.DeliveryPaymentConfirmed
		}
		stats.ByDeliveryStatus[status] += row.Count
	}
	return stats, nil
}

// AppendAudit adds an audit entry
func (r *TransactionRepository) AppendAudit(ctx context.Context, entry *entity.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.timeProvider.Now()
	}

	details, err := encodeJSON(entry.Details)
	if err != nil {
		return fmt.Errorf("%w: encode audit details: %s", errs.ErrInternalServer, err)
	}
	auditModel := model.AuditEntry{
		TransactionID: entry.TransactionID,
		Event:         string(entry.Event),
		Actor:         entry.Actor,
		Details:       details,
		CreatedAt:     entry.CreatedAt,
	}

	_, err = r.collector.MeasureQuery(ctx, "audit_append", func() (int64, error) {
		result := r.db.WithContext(ctx).Create(&auditModel)
		return result.RowsAffected, result.Error
	})
	if err != nil {
		r.logger.Error("Failed to append audit entry", map[string]any{
			"transaction_id": entry.TransactionID,
			"event":          entry.Event,
			"error":          err.Error(),
		})
		return wrapDatabaseError("append audit", err)
	}

	entry.ID = auditModel.ID
	return nil
}

// ListAudit returns the audit trail of a transaction, oldest first
func (r *TransactionRepository) ListAudit(ctx context.Context, transactionID string) ([]*entity.AuditEntry, error) {
	var models []model.AuditEntry

	_, err := r.collector.MeasureQuery(ctx, "audit_list", func() (int64, error) {
		result := r.db.WithContext(ctx).
			Where("transaction_id = ?", transactionID).
			Order("created_at asc").Order("id asc").
			Find(&models)
		return result.RowsAffected, result.Error
	})
	if err != nil {
		r.logger.Error("Failed to list audit entries", map[string]any{
			"transaction_id": transactionID,
			"error":          err.Error(),
		})
		return nil, wrapDatabaseError("list audit", err)
	}

	entries := make([]*entity.AuditEntry, 0, len(models))
	for _, m := range models {
		details := map[string]string{}
		if err := decodeJSON(m.Details, &details); err != nil {
			return nil, fmt.Errorf("%w: corrupt audit details on %d: %s", errs.ErrInternalServer, m.ID, err)
		}
		if details == nil {
			details = map[string]string{}
		}
		entries = append(entries, &entity.AuditEntry{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			Event:         entity.AuditEvent(m.Event),
			Actor:         m.Actor,
			Details:       details,
			CreatedAt:     m.CreatedAt,
		})
	}
	return entries, nil
}
