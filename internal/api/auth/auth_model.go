package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/FACorreiaa/medibook-api/internal/types"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// RegisterRequest is the JSON body of POST /auth/register.
type RegisterRequest struct {
	Email         string  `json:"email" example:"a@x.com"`
	Password      string  `json:"password" example:"Str0ngP@ss"`
	Role          string  `json:"role,omitempty" example:"patient"`
	Name          string  `json:"name,omitempty" example:"Jane Doe"`
	Specialty     *string `json:"specialty,omitempty" example:"cardiology"`
	City          *string `json:"city,omitempty" example:"Lisbon"`
	Experience    *int    `json:"experience,omitempty" example:"7"`
	LicenseNumber *string `json:"license_number,omitempty"`
	GovernmentID  *string `json:"government_id,omitempty"`
}

// Validate checks the shape of the request only; license numbers and other
// profile data are stored as given.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email, validation.Length(3, 254)),
		validation.Field(&r.Password, validation.Required, validation.Length(0, maxPasswordBytes)),
		validation.Field(&r.Role, validation.In(
			string(types.RolePatient), string(types.RoleDoctor), string(types.RoleNurse), string(types.RoleAdmin),
		)),
		validation.Field(&r.Name, validation.Length(0, 100)),
		validation.Field(&r.Experience, validation.Min(0), validation.Max(80)),
	)
}

func (r RegisterRequest) profile() types.Profile {
	return types.Profile{
		Name:          r.Name,
		Specialty:     r.Specialty,
		City:          r.City,
		Experience:    r.Experience,
		LicenseNumber: r.LicenseNumber,
		GovernmentID:  r.GovernmentID,
	}
}

// LoginRequest is the JSON body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"Str0ngP@ss"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	types.AuthResult
	Message string `json:"message,omitempty" example:"Login successful"`
}
