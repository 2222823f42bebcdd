package auth

import "time"

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleMover     Role = "mover"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// User is the domain representation of an account.
// It mirrors the users table and should not include JSON annotations so it
// can be reused by different presentation layers.
type User struct {
	ID                    string
	Name                  string
	Email                 string
	Phone                 string
	Role                  Role
	PasswordHash          string
	IsActive              bool
	IsEmailVerified       bool
	IsPhoneVerified       bool
	IsApproved            bool
	EmailVerificationCode *string
	PhoneVerificationCode *string
	BannedUntil           *time.Time
	CompanyName           *string
	CompanyDescription    *string
	CompanyImages         []string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Identity is the authenticated principal every domain operation receives.
type Identity struct {
	UserID string
	Role   Role
}

// RegisterRequest contains account registration data supplied by callers.
type RegisterRequest struct {
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	Role               Role    `json:"user_type"`
	Password           string  `json:"password"`
	CompanyName        *string `json:"company_name,omitempty"`
	CompanyDescription *string `json:"company_description,omitempty"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerificationType names the contact channel a code verifies.
type VerificationType string

const (
	VerifyEmail VerificationType = "email"
	VerifyPhone VerificationType = "phone"
)

// VerifyRequest carries a registration code back to the server.
type VerifyRequest struct {
	Email string           `json:"email"`
	Code  string           `json:"verification_code"`
	Type  VerificationType `json:"verification_type"`
}

// ValidRole reports whether role is a member of the closed enumeration.
// It is checked once at the boundary (registration, token verification,
// role change); downstream code trusts the Identity it receives.
func ValidRole(role Role) bool {
	switch role {
	case RoleCustomer, RoleMover, RoleAdmin, RoleModerator:
		return true
	default:
		return false
	}
}
