package confirmation

import (
	"strings"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	"github.com/google/go-querystring/query"
)

// redirectParams are the normalized fields handed to the storefront
type redirectParams struct {
	ShopProcessID               string `url:"shop_process_id,omitempty"`
	Status                      string `url:"status"`
	Response                    string `url:"response,omitempty"`
	ResponseCode                string `url:"response_code,omitempty"`
	ResponseDescription         string `url:"response_description,omitempty"`
	ExtendedResponseDescription string `url:"extended_response_description,omitempty"`
	AuthorizationNumber         string `url:"authorization_number,omitempty"`
	TicketNumber                string `url:"ticket_number,omitempty"`
	Amount                      string `url:"amount,omitempty"`
	Currency                    string `url:"currency,omitempty"`
	TestMode                    bool   `url:"test_mode"`
}

// RedirectURL builds <base>?<fields>&test_mode=<bool>. An empty base yields an empty URL.
func RedirectURL(base string, c entity.Confirmation, success, testMode bool) string {
	if base == "" {
		return ""
	}

	status := entity.CallbackStatusError
	if success {
		status = entity.CallbackStatusOK
	}
	values, err := query.Values(redirectParams{
		ShopProcessID:               c.ShopProcessID,
		Status:                      status,
		Response:                    c.Response,
		ResponseCode:                c.ResponseCode,
		ResponseDescription:         c.ResponseDescription,
		ExtendedResponseDescription: c.ExtendedResponseDescription,
		AuthorizationNumber:         c.AuthorizationNumber,
		TicketNumber:                c.TicketNumber,
		Amount:                      entity.NormalizeAmountString(c.Amount),
		Currency:                    c.Currency,
		TestMode:                    testMode,
	})
	if err != nil {
		return base
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + values.Encode()
}
