package dto

// ErrorResponse represents a standardized error response for the API
type ErrorResponse struct {
	Code        int            `json:"code"`
	Kind        string         `json:"kind"`
	Message     string         `json:"message"`
	Diagnostics map[string]any `json:"diagnostics,omitempty"`
}
