package core

// MetricsRecorder receives domain level observations
type MetricsRecorder interface {
	// ConfirmationProcessed counts a reconciled callback by outcome
	ConfirmationProcessed(outcome string)
	// SignatureMismatch counts a callback whose token did not verify
	SignatureMismatch()
	// StoreFailure counts a store write that failed after the gateway already acted
	StoreFailure(operation string)
	// PaymentStatusChanged counts transitions into a status
	PaymentStatusChanged(status string)
}
