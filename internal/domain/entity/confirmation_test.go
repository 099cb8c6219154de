package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationIsApproved(t *testing.T) {
	tests := []struct {
		name     string
		c        Confirmation
		expected bool
	}{
		{"Response S with code 00", Confirmation{Response: "S", ResponseCode: "00"}, true},
		{"Response S with other code", Confirmation{Response: "S", ResponseCode: "05"}, false},
		{"Status success only", Confirmation{Status: "success"}, true},
		{"Authorization and ticket", Confirmation{AuthorizationNumber: "A1", TicketNumber: "T1"}, true},
		{"Authorization only", Confirmation{AuthorizationNumber: "A1"}, false},
		{"Response N", Confirmation{Response: "N", ResponseCode: "12"}, false},
		{"Empty", Confirmation{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.c.IsApproved())
		})
	}
}

func TestConfirmationOutcome(t *testing.T) {
	assert.Equal(t, StatusApproved, Confirmation{Status: "success"}.Outcome())
	assert.Equal(t, StatusRejected, Confirmation{Response: "N"}.Outcome())
}

func TestNewAuditEntry(t *testing.T) {
	entry := NewAuditEntry("tx-1", AuditConfirmedApproved, ActorGateway, map[string]string{
		DetailAuthorizationNumber: "A1",
		DetailTicketNumber:        "",
		"unknown_key":             "x",
	})

	assert.Equal(t, "tx-1", entry.TransactionID)
	assert.Equal(t, AuditConfirmedApproved, entry.Event)
	assert.Equal(t, map[string]string{DetailAuthorizationNumber: "A1"}, entry.Details)
}
