package appMiddleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/medibook-api/internal/api"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

// Authenticate extracts the bearer token, verifies it and adds the identity
// reference and role to the request context.
func Authenticate(logger *slog.Logger, verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Fields(authHeader)
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			claims, err := verifier.Verify(headerParts[1])
			if err != nil {
				l.WarnContext(ctx, "Token validation failed", slog.Any("error", err))
				errMsg := "Invalid or expired token"
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					errMsg = "Token has expired"
				case errors.Is(err, jwt.ErrTokenMalformed):
					errMsg = "Malformed token"
				case errors.Is(err, jwt.ErrTokenSignatureInvalid):
					errMsg = "Invalid token signature"
				case errors.Is(err, jwt.ErrTokenInvalidIssuer):
					errMsg = "Invalid token issuer"
				case errors.Is(err, jwt.ErrTokenInvalidAudience):
					errMsg = "Invalid token audience"
				}
				api.ErrorResponse(w, r, http.StatusUnauthorized, errMsg)
				return
			}

			ctx = WithIdentity(ctx, claims.UserID, claims.Role)
			l.DebugContext(ctx, "Authentication successful", slog.String("userID", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole runs after Authenticate and rejects callers whose role is not
// one of roles.
func RequireRole(logger *slog.Logger, roles ...types.Role) func(next http.Handler) http.Handler {
	allowed := make(map[types.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role, ok := GetUserRoleFromContext(ctx)
			if !ok {
				logger.ErrorContext(ctx, "Role missing from context; is Authenticate mounted?")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			if _, permitted := allowed[role]; !permitted {
				logger.WarnContext(ctx, "Role check failed", slog.String("role", string(role)))
				api.ErrorResponse(w, r, http.StatusForbidden, "Access denied for your role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
