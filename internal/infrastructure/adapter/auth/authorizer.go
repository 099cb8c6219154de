package auth

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/external"
)

// Identity is the authenticated caller attached to a request context
type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

// WithIdentity returns a context carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller stored by WithIdentity
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Authorizer grants admin to configured user ids and to tokens carrying the admin role
type Authorizer struct {
	admins map[string]struct{}
}

var _ external.Authorizer = (*Authorizer)(nil)

// NewAuthorizer creates an authorizer from the configured admin user ids
func NewAuthorizer(adminUserIDs []string) *Authorizer {
	admins := make(map[string]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &Authorizer{admins: admins}
}

// IsAdmin reports whether userID may run administrative operations
func (a *Authorizer) IsAdmin(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	if _, ok := a.admins[userID]; ok {
		return true
	}
	id, ok := IdentityFromContext(ctx)
	return ok && id.UserID == userID && id.Role == RoleAdmin
}
