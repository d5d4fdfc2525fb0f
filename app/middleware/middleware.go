package appMiddleware

import (
	"context"

	"github.com/FACorreiaa/medibook-api/internal/types"
)

type contextKey string

const UserIDKey contextKey = "userID"
const UserRoleKey contextKey = "userRole"

// TokenVerifier checks a bearer token's signature and expiry and returns its
// claims.
type TokenVerifier interface {
	Verify(token string) (*types.Claims, error)
}

// WithIdentity stores the identity reference and role on ctx.
func WithIdentity(ctx context.Context, userID string, role types.Role) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserRoleKey, role)
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetUserRoleFromContext(ctx context.Context) (types.Role, bool) {
	role, ok := ctx.Value(UserRoleKey).(types.Role)
	return role, ok
}
