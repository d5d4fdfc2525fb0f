package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a session credential.
type Claims struct {
	UserID string `json:"uid"`
	Role   Role   `json:"rol"`
	jwt.RegisteredClaims
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	IdentityID  uuid.UUID `json:"id"`
	Role        Role      `json:"role"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Response is the generic API envelope for simple success/error messages.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Operation successful"`
	Error   string `json:"error,omitempty" example:"Resource not found"`
}
