package entity

import (
	"encoding/json"
	"strings"
)

// FlexString decodes a JSON string, number or boolean into its text.
// The gateway sends ids and amounts either quoted or bare.
type FlexString string

// UnmarshalJSON keeps numbers verbatim, so 10000.00 stays "10000.00"
func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexString(v)
	default:
		*f = FlexString(s)
	}
	return nil
}

// String returns the decoded text
func (f FlexString) String() string { return string(f) }
