package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
)

// TransactionUpdate is a partial field set applied by Update.
// Nil fields are left untouched. ShopProcessID and Amount are never updatable.
// The Expect* guards turn the update into a compare-and-set: when the stored row does
// not match every guard the update is not applied and ErrStaleTransaction is returned.
type TransactionUpdate struct {
	Status           *entity.TransactionStatus
	GatewayProcessID *string
	Gateway          *entity.GatewayResponse
	ConfirmationDate *time.Time
	Delivery         *entity.DeliveryState
	Rollback         *entity.RollbackState

	ExpectStatuses []entity.TransactionStatus
	ExpectVersion  *int64
	ExpectUnrated  bool
}

// IsEmpty reports whether the update would change nothing
func (u TransactionUpdate) IsEmpty() bool {
	return u.Status == nil && u.GatewayProcessID == nil && u.Gateway == nil &&
		u.ConfirmationDate == nil && u.Delivery == nil && u.Rollback == nil
}

// TransactionStats summarizes the store for administrators
type TransactionStats struct {
	Total            int64
	ByStatus         map[entity.TransactionStatus]int64
	ByDeliveryStatus map[entity.DeliveryStatus]int64
}

// TransactionRepository defines essential methods to interact with transaction data
type TransactionRepository interface {
	// Create saves a new transaction and assigns its internal ID
	//
	// Possible errors:
	// - ConflictError (retryable, wraps ErrDuplicateProcessID): shop process id already taken
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// GetByID retrieves a transaction by its internal ID
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)

	// GetByShopProcessID retrieves a transaction by its gateway correlation id
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByShopProcessID(ctx context.Context, shopProcessID string) (*entity.Transaction, error)

	// Update applies a partial update by internal ID and returns the stored result
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrStaleTransaction: If a guard did not hold
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, id string, update TransactionUpdate) (*entity.Transaction, error)

	// ListByUser returns the transactions created by a user, newest first, and the total count
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, int64, error)

	// Stats returns counts per status and per delivery status
	Stats(ctx context.Context) (*TransactionStats, error)

	// AppendAudit adds an audit entry
	AppendAudit(ctx context.Context, entry *entity.AuditEntry) error

	// ListAudit returns the audit trail of a transaction, oldest first
	ListAudit(ctx context.Context, transactionID string) ([]*entity.AuditEntry, error)
}
