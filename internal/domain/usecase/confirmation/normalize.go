package confirmation

import (
	"strings"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/usecase"
)

// Normalize merges both callback shapes into one canonical confirmation.
// A structured field wins over the flat parameter of the same name.
func Normalize(input usecase.CallbackInput) entity.Confirmation {
	op := input.Operation
	if op == nil {
		op = &usecase.CallbackOperation{}
	}
	q := flatParams(input.Query)

	c := entity.Confirmation{
		Token:                       pick(op.Token, q.get("token")),
		ShopProcessID:               pick(op.ShopProcessID, q.get("shop_process_id")),
		Status:                      strings.ToLower(q.get("status")),
		Response:                    strings.ToUpper(pick(op.Response, q.get("response"))),
		ResponseDetails:             pick(op.ResponseDetails, q.get("response_details")),
		Amount:                      pick(op.Amount, q.get("amount")),
		Currency:                    strings.ToUpper(pick(op.Currency, q.get("currency"))),
		AuthorizationNumber:         pick(op.AuthorizationNumber, q.get("authorization_number")),
		TicketNumber:                pick(op.TicketNumber, q.get("ticket_number")),
		ResponseCode:                pick(op.ResponseCode, q.get("response_code")),
		ResponseDescription:         pick(op.ResponseDescription, q.get("response_description")),
		ExtendedResponseDescription: pick(op.ExtendedResponseDescription, q.get("extended_response_description")),
		IVAAmount:                   pick(op.IVAAmount, q.get("iva_amount")),
		IVATicketNumber:             pick(op.IVATicketNumber, q.get("iva_ticket_number")),
		SecurityInformation: entity.SecurityInformation{
			CustomerIP:  pick(op.SecurityInformation.CustomerIP, q.security("customer_ip")),
			CardSource:  pick(op.SecurityInformation.CardSource, q.security("card_source")),
			CardCountry: pick(op.SecurityInformation.CardCountry, q.security("card_country")),
			RiskIndex:   pick(op.SecurityInformation.RiskIndex, q.security("risk_index")),
			Version:     pick(op.SecurityInformation.Version, q.security("version")),
		},
	}

	return withResponseDefault(c)
}

// withResponseDefault derives a missing response flag from the status:
// S for a success status, N otherwise.
func withResponseDefault(c entity.Confirmation) entity.Confirmation {
	c.Response = strings.ToUpper(strings.TrimSpace(c.Response))
	c.Status = strings.ToLower(strings.TrimSpace(c.Status))
	if c.Response == "" {
		c.Response = entity.ResponseNo
		if c.Status == entity.CallbackStatusOK {
			c.Response = entity.ResponseYes
		}
	}
	return c
}

type flatParams map[string]string

func (f flatParams) get(key string) string {
	return strings.TrimSpace(f[key])
}

// security accepts security_information[key], security_information.key and the bare key
func (f flatParams) security(key string) string {
	return pick(
		f.get("security_information["+key+"]"),
		f.get("security_information."+key),
		f.get(key),
	)
}

func pick(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
