package entity

// Confirmation is the canonical form of a gateway confirmation, whatever shape it arrived in
type Confirmation struct {
	Token                       string
	ShopProcessID               string
	Status                      string
	Response                    string
	ResponseDetails             string
	Amount                      string
	Currency                    string
	AuthorizationNumber         string
	TicketNumber                string
	ResponseCode                string
	ResponseDescription         string
	ExtendedResponseDescription string
	SecurityInformation         SecurityInformation
	IVAAmount                   string
	IVATicketNumber             string
}

// Gateway response indicators
const (
	ResponseYes         = "S"
	ResponseNo          = "N"
	ResponseCodeOK      = "00"
	CallbackStatusOK    = "success"
	CallbackStatusError = "error"
)

// ToGatewayResponse copies the confirmation fields stamped onto a transaction
func (c Confirmation) ToGatewayResponse() GatewayResponse {
	return GatewayResponse{
		Response:                    c.Response,
		ResponseCode:                c.ResponseCode,
		ResponseDescription:         c.ResponseDescription,
		ExtendedResponseDescription: c.ExtendedResponseDescription,
		ResponseDetails:             c.ResponseDetails,
		AuthorizationNumber:         c.AuthorizationNumber,
		TicketNumber:                c.TicketNumber,
		IVAAmount:                   c.IVAAmount,
		IVATicketNumber:             c.IVATicketNumber,
		SecurityInformation:         c.SecurityInformation,
	}
}

// IsApproved classifies the confirmation. Any one condition suffices:
// response S with code 00, a success status, or both authorization and ticket numbers.
func (c Confirmation) IsApproved() bool {
	if c.Response == ResponseYes && c.ResponseCode == ResponseCodeOK {
		return true
	}
	if c.Status == CallbackStatusOK {
		return true
	}
	return c.AuthorizationNumber != "" && c.TicketNumber != ""
}

// Outcome returns the terminal status this confirmation maps to
func (c Confirmation) Outcome() TransactionStatus {
	if c.IsApproved() {
		return StatusApproved
	}
	return StatusRejected
}
