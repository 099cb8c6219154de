package error

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeValidation             = 4001
	CodeInvalidAmount          = 4002
	CodeForbidden              = 4003
	CodeConflict               = 4009
	CodeDuplicateProcessID     = 4010
	CodeManualReversalRequired = 4011
	CodeStaleTransaction       = 4012
	CodeTransactionNotFound    = 4040
	CodeCorrelation            = 4041
	CodeGatewayRejected        = 4220

	// 5xxx - Server errors
	CodeInternalServer   = 5000
	CodeConfiguration    = 5001
	CodeDatabase         = 5030
	CodeGatewayTransient = 5040
)

// Error kinds reported in structured failure payloads
const (
	KindConfiguration    = "configuration_error"
	KindValidation       = "validation_error"
	KindGatewayTransient = "gateway_transient_error"
	KindGatewayRejection = "gateway_business_rejection"
	KindCorrelation      = "correlation_error"
	KindConflict         = "conflict_error"
	KindNotFound         = "not_found"
	KindForbidden        = "forbidden"
	KindInternal         = "internal_error"
)

// Base error types
var (
	// ErrConfiguration is returned when gateway credentials or settings are missing or malformed
	ErrConfiguration = errors.New("invalid gateway configuration")

	// ErrValidation is returned when caller input is malformed
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned when an amount is negative or badly formatted
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrGatewayTransient is returned when the gateway could not be reached or timed out.
	// The outcome of the operation is unknown.
	ErrGatewayTransient = errors.New("gateway unavailable")

	// ErrGatewayRejected is returned when the gateway explicitly declined the request
	ErrGatewayRejected = errors.New("gateway rejected the request")

	// ErrManualReversalRequired is returned when a rollback is no longer possible automatically
	ErrManualReversalRequired = errors.New("transaction already settled, manual reversal required")

	// ErrCorrelation is returned when a callback references an unknown transaction
	ErrCorrelation = errors.New("callback does not match any transaction")

	// ErrConflict is returned when an operation conflicts with the current state
	ErrConflict = errors.New("conflict with current state")

	// ErrDuplicateProcessID is returned when a shop process id is already taken
	ErrDuplicateProcessID = errors.New("shop process id already exists")

	// ErrStaleTransaction is returned when a guarded update did not match the stored state
	ErrStaleTransaction = errors.New("transaction changed concurrently")

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrOrderNotFound is returned when a linked order doesn't exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrForbidden is returned when the caller lacks the capability for an operation
	ErrForbidden = errors.New("operation not permitted")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrManualReversalRequired):
		return CodeManualReversalRequired
	case errors.Is(err, ErrDuplicateProcessID):
		return CodeDuplicateProcessID
	case errors.Is(err, ErrStaleTransaction):
		return CodeStaleTransaction
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrCorrelation):
		return CodeCorrelation
	case errors.Is(err, ErrGatewayRejected):
		return CodeGatewayRejected
	case errors.Is(err, ErrGatewayTransient):
		return CodeGatewayTransient
	case errors.Is(err, ErrConfiguration):
		return CodeConfiguration
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabase
	default:
		return CodeInternalServer
	}
}

// ErrorKind returns the taxonomy kind used in structured failure payloads
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAmount):
		return KindValidation
	case errors.Is(err, ErrGatewayTransient):
		return KindGatewayTransient
	case errors.Is(err, ErrGatewayRejected):
		return KindGatewayRejection
	case errors.Is(err, ErrCorrelation):
		return KindCorrelation
	case errors.Is(err, ErrConflict), errors.Is(err, ErrStaleTransaction):
		return KindConflict
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrOrderNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}

// ConfigurationError describes a missing or malformed gateway setting
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid gateway configuration: %s %s", e.Field, e.Reason)
}

// Is reports ErrConfiguration
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// LogFields returns a map of fields for structured logging
func (e *ConfigurationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": KindConfiguration,
		"field":      e.Field,
		"reason":     e.Reason,
		"error_code": CodeConfiguration,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, reason string) error {
	return &ConfigurationError{Field: field, Reason: reason}
}

// ValidationError describes malformed caller input
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Is reports ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap returns the underlying error
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ValidationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": KindValidation,
		"field":      e.Field,
		"reason":     e.Reason,
		"error_code": CodeValidation,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// GatewayMessage is one entry of the gateway's structured error list
type GatewayMessage struct {
	Key         string `json:"key"`
	Level       string `json:"level"`
	Description string `json:"dsc"`
}

// GatewayError is returned by the gateway client for transient failures and business rejections
type GatewayError struct {
	Operation  string
	Transient  bool
	StatusCode int
	Messages   []GatewayMessage
	RawBody    string
	Err        error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Transient {
		return fmt.Sprintf("gateway %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s rejected (status %d): %s", e.Operation, e.StatusCode, e.MessageSummary())
}

// Is reports ErrGatewayTransient or ErrGatewayRejected depending on the kind
func (e *GatewayError) Is(target error) bool {
	if e.Transient {
		return target == ErrGatewayTransient
	}
	return target == ErrGatewayRejected
}

// Unwrap returns the underlying error
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HasMessageKey reports whether the gateway returned a message with the given key
func (e *GatewayError) HasMessageKey(key string) bool {
	for _, m := range e.Messages {
		if strings.EqualFold(m.Key, key) {
			return true
		}
	}
	return false
}

// MessageSummary joins the gateway messages for diagnostics
func (e *GatewayError) MessageSummary() string {
	if len(e.Messages) == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return "no message"
	}
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		parts = append(parts, m.Key+": "+m.Description)
	}
	return strings.Join(parts, "; ")
}

// LogFields returns a map of fields for structured logging
func (e *GatewayError) LogFields() map[string]any {
	kind := KindGatewayRejection
	if e.Transient {
		kind = KindGatewayTransient
	}
	fields := map[string]any{
		"error_type":  kind,
		"operation":   e.Operation,
		"status_code": e.StatusCode,
		"messages":    e.MessageSummary(),
		"error_code":  ErrorCode(e),
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// NewGatewayTransientError creates an error for a call whose outcome is unknown
func NewGatewayTransientError(operation string, statusCode int, err error) error {
	return &GatewayError{Operation: operation, Transient: true, StatusCode: statusCode, Err: err}
}

// NewGatewayRejection creates an error for an explicit gateway decline
func NewGatewayRejection(operation string, statusCode int, messages []GatewayMessage, rawBody string) error {
	return &GatewayError{Operation: operation, StatusCode: statusCode, Messages: messages, RawBody: rawBody}
}

// ManualReversalRequiredError is returned when the gateway refuses a rollback because the
// transaction is already settled
type ManualReversalRequiredError struct {
	ShopProcessID string
	Gateway       *GatewayError
}

// Error implements the error interface
func (e *ManualReversalRequiredError) Error() string {
	return fmt.Sprintf("rollback of %s refused by gateway (%s): manual reversal required",
		e.ShopProcessID, e.Gateway.MessageSummary())
}

// Is reports ErrManualReversalRequired
func (e *ManualReversalRequiredError) Is(target error) bool {
	return target == ErrManualReversalRequired
}

// Unwrap returns the gateway rejection
func (e *ManualReversalRequiredError) Unwrap() error {
	return e.Gateway
}

// RequiresManualReversal is always true for this error
func (e *ManualReversalRequiredError) RequiresManualReversal() bool {
	return true
}

// LogFields returns a map of fields for structured logging
func (e *ManualReversalRequiredError) LogFields() map[string]any {
	return map[string]any{
		"error_type":               KindGatewayRejection,
		"shop_process_id":          e.ShopProcessID,
		"messages":                 e.Gateway.MessageSummary(),
		"requires_manual_reversal": true,
		"error_code":               CodeManualReversalRequired,
	}
}

// ConflictError describes an operation that is incompatible with the stored state
type ConflictError struct {
	Resource  string
	Reason    string
	Retryable bool
	Err       error
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Reason)
}

// Is reports ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Unwrap returns the underlying error
func (e *ConflictError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ConflictError) LogFields() map[string]any {
	return map[string]any{
		"error_type": KindConflict,
		"resource":   e.Resource,
		"reason":     e.Reason,
		"retryable":  e.Retryable,
		"error_code": ErrorCode(e),
	}
}

// NewConflictError creates a non-retryable conflict
func NewConflictError(resource, reason string) error {
	return &ConflictError{Resource: resource, Reason: reason}
}

// NewDuplicateProcessIDError creates the retryable conflict raised on a shop process id collision
func NewDuplicateProcessIDError(shopProcessID string) error {
	return &ConflictError{
		Resource:  "transaction",
		Reason:    "shop process id " + shopProcessID + " already exists, generate a new id",
		Retryable: true,
		Err:       ErrDuplicateProcessID,
	}
}

// IsRetryableConflict reports whether err is a conflict the caller may retry with new input
func IsRetryableConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Retryable
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) || errors.Is(err, ErrOrderNotFound)
}

// IsGatewayTransient checks if the error leaves the gateway outcome unknown
func IsGatewayTransient(err error) bool {
	return errors.Is(err, ErrGatewayTransient)
}

// AsGatewayError extracts a GatewayError from err
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
