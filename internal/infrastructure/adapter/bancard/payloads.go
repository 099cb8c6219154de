package bancard

import (
	"strconv"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/gateway"
)

type envelope struct {
	PublicKey string `json:"public_key"`
	Operation any    `json:"operation"`
}

type singleBuyOperation struct {
	Token          string `json:"token"`
	ShopProcessID  int64  `json:"shop_process_id"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	AdditionalData string `json:"additional_data"`
	Description    string `json:"description"`
	ReturnURL      string `json:"return_url"`
	CancelURL      string `json:"cancel_url"`
}

type catalogCardOperation struct {
	Token         string `json:"token"`
	CardID        int64  `json:"card_id"`
	UserID        int64  `json:"user_id"`
	UserCellPhone string `json:"user_cell_phone"`
	UserMail      string `json:"user_mail"`
	ReturnURL     string `json:"return_url"`
}

type tokenOperation struct {
	Token string `json:"token"`
}

type chargeOperation struct {
	Token            string `json:"token"`
	ShopProcessID    int64  `json:"shop_process_id"`
	Amount           string `json:"amount"`
	NumberOfPayments int    `json:"number_of_payments"`
	Currency         string `json:"currency"`
	AdditionalData   string `json:"additional_data"`
	Description      string `json:"description"`
	AliasToken       string `json:"alias_token"`
}

type deleteCardOperation struct {
	Token      string `json:"token"`
	AliasToken string `json:"alias_token"`
}

type processOperation struct {
	Token         string `json:"token"`
	ShopProcessID int64  `json:"shop_process_id"`
}

type confirmationPayload struct {
	Token                       entity.FlexString          `json:"token"`
	ShopProcessID               entity.FlexString          `json:"shop_process_id"`
	Response                    entity.FlexString          `json:"response"`
	ResponseDetails             entity.FlexString          `json:"response_details"`
	Amount                      entity.FlexString          `json:"amount"`
	Currency                    entity.FlexString          `json:"currency"`
	AuthorizationNumber         entity.FlexString          `json:"authorization_number"`
	TicketNumber                entity.FlexString          `json:"ticket_number"`
	ResponseCode                entity.FlexString          `json:"response_code"`
	ResponseDescription         entity.FlexString          `json:"response_description"`
	ExtendedResponseDescription entity.FlexString          `json:"extended_response_description"`
	SecurityInformation         entity.SecurityInformation `json:"security_information"`
	IVAAmount                   entity.FlexString          `json:"iva_amount"`
	IVATicketNumber             entity.FlexString          `json:"iva_ticket_number"`
}

func (p confirmationPayload) toEntity() *entity.Confirmation {
	return &entity.Confirmation{
		Token:                       string(p.Token),
		ShopProcessID:               string(p.ShopProcessID),
		Response:                    string(p.Response),
		ResponseDetails:             string(p.ResponseDetails),
		Amount:                      string(p.Amount),
		Currency:                    string(p.Currency),
		AuthorizationNumber:         string(p.AuthorizationNumber),
		TicketNumber:                string(p.TicketNumber),
		ResponseCode:                string(p.ResponseCode),
		ResponseDescription:         string(p.ResponseDescription),
		ExtendedResponseDescription: string(p.ExtendedResponseDescription),
		SecurityInformation:         p.SecurityInformation,
		IVAAmount:                   string(p.IVAAmount),
		IVATicketNumber:             string(p.IVATicketNumber),
	}
}

type apiResponse struct {
	Status       string                `json:"status"`
	ProcessID    entity.FlexString     `json:"process_id"`
	Messages     []errs.GatewayMessage `json:"messages"`
	Cards        []gateway.Card        `json:"cards"`
	Confirmation *confirmationPayload  `json:"confirmation"`
	Operation    *confirmationPayload  `json:"operation"`
}

func (r apiResponse) messageKeys() []string {
	keys := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		keys = append(keys, m.Key)
	}
	return keys
}

// parseProcessID converts the shop process id to the integer the gateway expects
func parseProcessID(shopProcessID string) (int64, error) {
	id, err := strconv.ParseInt(shopProcessID, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewValidationError("shop_process_id", "must be a positive integer")
	}
	return id, nil
}
