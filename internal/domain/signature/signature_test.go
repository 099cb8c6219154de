package signature

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "0123456789abcdef0123456789abcdef01234567"

func md5Of(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestSign(t *testing.T) {
	t.Run("Known digest", func(t *testing.T) {
		assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", Sign("a", "b", "c"))
		assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Sign(""))
	})

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, Sign(testSecret, "123", "10000.00", "PYG"), Sign(testSecret, "123", "10000.00", "PYG"))
	})

	t.Run("Part change or reorder changes digest", func(t *testing.T) {
		base := Sign(testSecret, "123", "10000.00", "PYG")
		assert.NotEqual(t, base, Sign(testSecret, "124", "10000.00", "PYG"))
		assert.NotEqual(t, base, Sign(testSecret, "123", "10000.0", "PYG"))
		assert.NotEqual(t, base, Sign(testSecret, "123", "PYG", "10000.00"))
		assert.NotEqual(t, base, Sign(testSecret+"x", "123", "10000.00", "PYG"))
	})

	t.Run("Lower case hex", func(t *testing.T) {
		d := Sign(testSecret, "x")
		assert.Len(t, d, 32)
		assert.Equal(t, strings.ToLower(d), d)
	})
}

func TestOperationBuilders(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"single buy", SingleBuy(testSecret, "123", "10000.00", "PYG"), md5Of(testSecret + "123" + "10000.00" + "PYG")},
		{"confirm", Confirm(testSecret, "123", "10000.00", "PYG"), md5Of(testSecret + "123" + "confirm" + "10000.00" + "PYG")},
		{"catalog card", CatalogCard(testSecret, "1", "42"), md5Of(testSecret + "1" + "42" + "request_new_card")},
		{"list cards", ListCards(testSecret, "42"), md5Of(testSecret + "42" + "request_user_cards")},
		{"charge", Charge(testSecret, "123", "10.50", "PYG", "alias"), md5Of(testSecret + "123" + "charge" + "10.50" + "PYG" + "alias")},
		{"delete card", DeleteCard(testSecret, "42", "alias"), md5Of(testSecret + "delete_card" + "42" + "alias")},
		{"get confirmation", GetConfirmation(testSecret, "123"), md5Of(testSecret + "123" + "get_confirmation")},
		{"rollback", Rollback(testSecret, "123"), md5Of(testSecret + "123" + "rollback" + "0.00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestVerify(t *testing.T) {
	token := Confirm(testSecret, "123", "10000.00", "PYG")

	t.Run("Matching parts", func(t *testing.T) {
		assert.True(t, VerifyConfirm(token, testSecret, "123", "10000.00", "PYG"))
		assert.True(t, VerifyConfirm(strings.ToUpper(token), testSecret, "123", "10000.00", "PYG"))
	})

	t.Run("Single mutations fail", func(t *testing.T) {
		assert.False(t, VerifyConfirm(token, testSecret[:len(testSecret)-1]+"8", "123", "10000.00", "PYG"))
		assert.False(t, VerifyConfirm(token, testSecret, "123", "10000", "PYG"))
		assert.False(t, VerifyConfirm(token, testSecret, "123", "10000.0", "PYG"))
		assert.False(t, Verify(token, testSecret, "confirm", "123", "10000.00", "PYG"))
	})

	t.Run("Empty candidate", func(t *testing.T) {
		assert.False(t, Verify("", testSecret, "123"))
	})
}
