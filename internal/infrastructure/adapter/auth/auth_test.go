package auth

import (
	"context"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret-key", "payment-processor", time.Hour)

	token, err := svc.GenerateToken("42", RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewTokenService("secret-key", "payment-processor", time.Hour)
	valid, err := svc.GenerateToken("42", "")
	require.NoError(t, err)

	expired := NewTokenService("secret-key", "payment-processor", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.GenerateToken("42", "")
	require.NoError(t, err)

	otherKey, err := NewTokenService("other-key", "payment-processor", time.Hour).GenerateToken("42", "")
	require.NoError(t, err)

	otherIssuer, err := NewTokenService("secret-key", "someone-else", time.Hour).GenerateToken("42", "")
	require.NoError(t, err)

	none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{"sub": "42"}).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"expired":        expiredToken,
		"wrong key":      otherKey,
		"wrong issuer":   otherIssuer,
		"none algorithm": none,
		"tampered":       valid + "x",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthorizer(t *testing.T) {
	a := NewAuthorizer([]string{" 1 ", "", "2"})
	ctx := context.Background()

	assert.True(t, a.IsAdmin(ctx, "1"))
	assert.True(t, a.IsAdmin(ctx, "2"))
	assert.False(t, a.IsAdmin(ctx, "3"))
	assert.False(t, a.IsAdmin(ctx, ""))

	roleCtx := WithIdentity(ctx, Identity{UserID: "3", Role: RoleAdmin})
	assert.True(t, a.IsAdmin(roleCtx, "3"))
	assert.False(t, a.IsAdmin(roleCtx, "4"))

	id, ok := IdentityFromContext(roleCtx)
	require.True(t, ok)
	assert.Equal(t, "3", id.UserID)
}
