package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleNurse   Role = "nurse"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleNurse, RoleAdmin:
		return true
	}
	return false
}

// IsProfessional reports whether accounts with this role need administrative
// verification before they can log in.
func (r Role) IsProfessional() bool {
	return r == RoleDoctor || r == RoleNurse
}

// ParseRole maps an empty string to RolePatient.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RolePatient, nil
	}
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
	return r, nil
}

// NormalizeEmail is applied to every email before it reaches the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Profile holds the descriptive fields of an identity. None of them take
// part in authentication.
type Profile struct {
	Name          string  `json:"name"`
	Specialty     *string `json:"specialty,omitempty"`
	City          *string `json:"city,omitempty"`
	Experience    *int    `json:"experience,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
	GovernmentID  *string `json:"government_id,omitempty"`
}

// Identity is one account: patient, doctor, nurse or admin.
type Identity struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Verified     bool      `json:"verified"`
	Profile
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// VerificationStatus is the state of an identity in the professional
// verification lifecycle.
type VerificationStatus string

const (
	StatusUnverified    VerificationStatus = "unverified"
	StatusVerified      VerificationStatus = "verified"
	StatusNotApplicable VerificationStatus = "not_applicable"
)

// Status reports where the identity sits in the verification lifecycle.
func (i *Identity) Status() VerificationStatus {
	if !i.Role.IsProfessional() {
		return StatusNotApplicable
	}
	if i.Verified {
		return StatusVerified
	}
	return StatusUnverified
}

// CheckLoginEligible returns ErrPendingVerification for professionals that
// have not been verified yet.
func (i *Identity) CheckLoginEligible() error {
	if i.Status() == StatusUnverified {
		return ErrPendingVerification
	}
	return nil
}

// InitialVerified is the verification flag a new identity starts with.
func InitialVerified(role Role) bool {
	return !role.IsProfessional()
}

// CreateIdentityParams carries the registration fields the store persists.
type CreateIdentityParams struct {
	Email    string
	Role     Role
	Verified bool
	Profile
}

// PublicProfessional is the directory view of a verified doctor or nurse.
type PublicProfessional struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Specialty  *string   `json:"specialty,omitempty"`
	City       *string   `json:"city,omitempty"`
	Experience *int      `json:"experience,omitempty"`
}

// ProfessionalFilter narrows directory and pending-verification listings.
type ProfessionalFilter struct {
	Role      Role
	City      string
	Specialty string
	Limit     int
	Offset    int
}
