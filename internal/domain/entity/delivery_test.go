package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryStatusCanAdvanceTo(t *testing.T) {
	tests := []struct {
		from     DeliveryStatus
		to       DeliveryStatus
		expected bool
	}{
		{DeliveryPaymentConfirmed, DeliveryPreparingOrder, true},
		{DeliveryPaymentConfirmed, DeliveryDelivered, true},
		{DeliveryPreparingOrder, DeliveryInTransit, true},
		{DeliveryInTransit, DeliveryDelivered, true},
		{DeliveryInTransit, DeliveryPreparingOrder, false},
		{DeliveryPreparingOrder, DeliveryPreparingOrder, false},
		{DeliveryPaymentConfirmed, DeliveryProblem, true},
		{DeliveryInTransit, DeliveryProblem, true},
		{DeliveryDelivered, DeliveryProblem, false},
		{DeliveryProblem, DeliveryInTransit, false},
		{DeliveryDelivered, DeliveryInTransit, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestDeliveryState(t *testing.T) {
	var d DeliveryState
	assert.Equal(t, DeliveryPaymentConfirmed, d.CurrentStatus())
	assert.False(t, d.IsDelivered())
	assert.False(t, d.IsClosed())
	assert.False(t, d.IsRated())

	d.Status = DeliveryDelivered
	d.Satisfaction = &CustomerSatisfaction{Rating: 5}
	assert.True(t, d.IsDelivered())
	assert.True(t, d.IsClosed())
	assert.True(t, d.IsRated())
}

func TestDeliveryValidation(t *testing.T) {
	assert.True(t, IsValidDeliveryStatus("in_transit"))
	assert.True(t, IsValidDeliveryStatus("problem"))
	assert.False(t, IsValidDeliveryStatus("lost"))
	assert.True(t, IsValidAttemptStatus("successful"))
	assert.False(t, IsValidAttemptStatus("delivered"))
}
