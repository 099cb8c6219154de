// Package signature builds and verifies the keyed digests the payment gateway requires on
// every request. The scheme is MD5 over the private key followed by operation specific
// parts in a fixed order; order and literal suffixes are part of the gateway contract.
package signature

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Literal parts appended by individual operations
const (
	opConfirm         = "confirm"
	opRequestNewCard  = "request_new_card"
	opRequestCards    = "request_user_cards"
	opCharge          = "charge"
	opDeleteCard      = "delete_card"
	opGetConfirmation = "get_confirmation"
	opRollback        = "rollback"

	// RollbackAmount is signed instead of the transaction amount on rollback
	RollbackAmount = "0.00"
)

// Sign returns the lower-case hex MD5 of secret followed by parts
func Sign(secret string, parts ...string) string {
	var b strings.Builder
	b.WriteString(secret)
	for _, p := range parts {
		b.WriteString(p)
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest and compares it with candidate in constant time.
// Hex case is ignored.
func Verify(candidate, secret string, parts ...string) bool {
	if candidate == "" {
		return false
	}
	expected := Sign(secret, parts...)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(candidate)), []byte(expected)) == 1
}

// SingleBuy signs a checkout session request. amount must already be formatted with two decimals.
func SingleBuy(secret, shopProcessID, amount, currency string) string {
	return Sign(secret, shopProcessID, amount, currency)
}

// Confirm computes the token the gateway sends with a confirmation
func Confirm(secret, shopProcessID, amount, currency string) string {
	return Sign(secret, shopProcessID, opConfirm, amount, currency)
}

// CatalogCard signs a card registration request
func CatalogCard(secret, cardID, userID string) string {
	return Sign(secret, cardID, userID, opRequestNewCard)
}

// ListCards signs a request for a user's saved cards
func ListCards(secret, userID string) string {
	return Sign(secret, userID, opRequestCards)
}

// Charge signs a token payment
func Charge(secret, shopProcessID, amount, currency, aliasToken string) string {
	return Sign(secret, shopProcessID, opCharge, amount, currency, aliasToken)
}

// DeleteCard signs a saved card removal
func DeleteCard(secret, userID, aliasToken string) string {
	return Sign(secret, opDeleteCard, userID, aliasToken)
}

// GetConfirmation signs a status query
func GetConfirmation(secret, shopProcessID string) string {
	return Sign(secret, shopProcessID, opGetConfirmation)
}

// Rollback signs a void request. The amount part is always "0.00".
func Rollback(secret, shopProcessID string) string {
	return Sign(secret, shopProcessID, opRollback, RollbackAmount)
}

// VerifyConfirm checks a confirmation token
func VerifyConfirm(candidate, secret, shopProcessID, amount, currency string) bool {
	return Verify(candidate, secret, shopProcessID, opConfirm, amount, currency)
}
