package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected FlexString
	}{
		{"Quoted", `"123"`, "123"},
		{"Integer", `123`, "123"},
		{"Decimal keeps its digits", `10000.00`, "10000.00"},
		{"Large id", `100000000000000001`, "100000000000000001"},
		{"Boolean", `true`, "true"},
		{"Null", `null`, ""},
		{"Escaped", `"a\"b"`, `a"b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				V FlexString `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"v":`+tt.raw+`}`), &got))
			assert.Equal(t, tt.expected, got.V)
			assert.Equal(t, string(tt.expected), got.V.String())
		})
	}
}
