package entity

import "time"

// AuditEvent names what happened to a transaction
type AuditEvent string

// Audit events
const (
	AuditCreated               AuditEvent = "created"
	AuditSessionCreated        AuditEvent = "session_created"
	AuditGatewayRejected       AuditEvent = "gateway_rejected"
	AuditGatewayUnknownOutcome AuditEvent = "gateway_unknown_outcome"
	AuditConfirmedApproved     AuditEvent = "confirmed_approved"
	AuditConfirmedRejected     AuditEvent = "confirmed_rejected"
	AuditConfirmationDuplicate AuditEvent = "confirmation_duplicate"
	AuditConfirmationAnomaly   AuditEvent = "confirmation_anomaly"
	AuditSignatureMismatch     AuditEvent = "signature_mismatch"
	AuditRolledBack            AuditEvent = "rolled_back"
	AuditRollbackRejected      AuditEvent = "rollback_rejected"
	AuditDeliveryAdvanced      AuditEvent = "delivery_advanced"
	AuditDeliveryAttempt       AuditEvent = "delivery_attempt"
	AuditDeliveryRated         AuditEvent = "delivery_rated"
	AuditStoreUpdateFailed     AuditEvent = "store_update_failed"
	AuditStatusQueried         AuditEvent = "status_queried"
)

// Audit detail keys. Details maps only use these keys.
const (
	DetailResponseCode        = "response_code"
	DetailAuthorizationNumber = "authorization_number"
	DetailTicketNumber        = "ticket_number"
	DetailReason              = "reason"
	DetailFromStatus          = "from_status"
	DetailToStatus            = "to_status"
	DetailDeliveryStatus      = "delivery_status"
	DetailAttemptStatus       = "attempt_status"
	DetailRating              = "rating"
	DetailGatewayMessage      = "gateway_message"
	DetailError               = "error"
)

var detailKeys = map[string]struct{}{
	DetailResponseCode: {}, DetailAuthorizationNumber: {}, DetailTicketNumber: {},
	DetailReason: {}, DetailFromStatus: {}, DetailToStatus: {}, DetailDeliveryStatus: {},
	DetailAttemptStatus: {}, DetailRating: {}, DetailGatewayMessage: {}, DetailError: {},
}

// AuditEntry is one append-only audit record
type AuditEntry struct {
	ID            uint64
	TransactionID string
	Event         AuditEvent
	Actor         string
	Details       map[string]string
	CreatedAt     time.Time
}

// NewAuditEntry builds an entry, dropping empty values and keys outside the documented namespace
func NewAuditEntry(transactionID string, event AuditEvent, actor string, details map[string]string) *AuditEntry {
	clean := make(map[string]string, len(details))
	for k, v := range details {
		if v == "" {
			continue
		}
		if _, ok := detailKeys[k]; ok {
			clean[k] = v
		}
	}
	return &AuditEntry{
		TransactionID: transactionID,
		Event:         event,
		Actor:         actor,
		Details:       clean,
	}
}

// IsValidDetailKey reports whether key belongs to the audit namespace
func IsValidDetailKey(key string) bool {
	_, ok := detailKeys[key]
	return ok
}

// Actors used by system driven changes
const (
	ActorGateway = "gateway"
	ActorSystem  = "system"
)
