package types

import "errors"

var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrValidation      = errors.New("invalid input")
)

// Auth flow errors. ErrInvalidCredentials covers both an unknown email
// and a wrong password.
var (
	ErrDuplicateIdentity   = errors.New("an account with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrPendingVerification = errors.New("account is pending verification")
	ErrInvalidTransition   = errors.New("invalid identity state transition")
	ErrPersistence         = errors.New("persistence failure")
	ErrTokenSigning        = errors.New("token signing failure")
)
