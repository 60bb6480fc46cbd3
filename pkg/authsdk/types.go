package authsdk

import "github.com/aussiebroadwan/kelas/pkg/jwtx"

// Status values of every response envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the error envelope. Message is set for general failures,
// Errors for field validation failures.
type ErrorResponse struct {
	Status  string              `json:"status" example:"error"`
	Message string              `json:"message,omitempty" example:"Invalid token"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// MessageResponse is a success envelope with only a message.
type MessageResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"User logged out successfully"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenPair holds a signed access and refresh token.
type TokenPair struct {
	Access  string `json:"access" example:"eyJhbGciOiJFZERTQSIsImtpZCI6ImtlbGFzLS4uLiJ9..."`
	Refresh string `json:"refresh" example:"eyJhbGciOiJFZERTQSIsImtpZCI6ImtlbGFzLS4uLiJ9..."`
}

// RefreshRequest is the body of POST /token/refresh and POST /logout.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokensResponse is returned by POST /token/refresh.
type TokensResponse struct {
	Status string    `json:"status" example:"success"`
	Tokens TokenPair `json:"tokens"`
}

// ============================================================================
// Registration and Login Types
// ============================================================================

// RegisterRequest is the body of POST /register. Keahlian is required when
// Role is "instructor".
type RegisterRequest struct {
	Username  string `json:"username" example:"alice"`
	Password  string `json:"password" example:"Str0ngP@ss!"`
	Password2 string `json:"password2" example:"Str0ngP@ss!"`
	Email     string `json:"email" example:"a@x.com"`
	FirstName string `json:"first_name" example:"A"`
	LastName  string `json:"last_name" example:"B"`
	Role      string `json:"role" example:"student" enums:"student,instructor"`
	Keahlian  *int   `json:"keahlian,omitempty" example:"7"`
}

// RegisteredUser is the user object of a registration response.
type RegisteredUser struct {
	ID           string `json:"id" example:"8f14e45f-ceea-467f-a0e6-1b2c3d4e5f60"`
	Username     string `json:"username" example:"alice"`
	Email        string `json:"email" example:"a@x.com"`
	Role         string `json:"role" example:"instructor"`
	InstructorID string `json:"instructor_id,omitempty" example:"1c9e3a0b-6b0e-4a57-9a47-3f3c7d2b8e11"`
	Keahlian     *int   `json:"keahlian,omitempty" example:"7"`
}

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	Status  string         `json:"status" example:"success"`
	Message string         `json:"message" example:"Instructor registered successfully"`
	User    RegisteredUser `json:"user"`
	Tokens  TokenPair      `json:"tokens"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"Str0ngP@ss!"`
}

// LoginUser is the user object of a login response.
type LoginUser struct {
	ID       string `json:"id" example:"8f14e45f-ceea-467f-a0e6-1b2c3d4e5f60"`
	Username string `json:"username" example:"alice"`
	Role     string `json:"role" example:"student"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Status string    `json:"status" example:"success"`
	User   LoginUser `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// ============================================================================
// Profile Types
// ============================================================================

// Profile is the caller's account. The admin and instructor fields are only
// present for those roles.
type Profile struct {
	ID        string `json:"id" example:"8f14e45f-ceea-467f-a0e6-1b2c3d4e5f60"`
	Username  string `json:"username" example:"alice"`
	Email     string `json:"email" example:"a@x.com"`
	FirstName string `json:"first_name" example:"A"`
	LastName  string `json:"last_name" example:"B"`
	Role      string `json:"role" example:"instructor"`
	IsActive  bool   `json:"is_active" example:"true"`

	AdminID     string `json:"admin_id,omitempty"`
	IsStaff     *bool  `json:"is_staff,omitempty"`
	IsSuperuser *bool  `json:"is_superuser,omitempty"`

	InstructorID string `json:"instructor_id,omitempty" example:"1c9e3a0b-6b0e-4a57-9a47-3f3c7d2b8e11"`
	Keahlian     *int   `json:"keahlian,omitempty" example:"7"`
}

// ProfileResponse is returned by GET and POST /profile.
type ProfileResponse struct {
	Status  string  `json:"status" example:"success"`
	Message string  `json:"message,omitempty" example:"Profile updated successfully"`
	Profile Profile `json:"profile"`
}

// ProfileUpdateRequest is the body of POST /profile. Nil fields are left
// unchanged. Keahlian is ignored for non-instructors.
type ProfileUpdateRequest struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Keahlian  *int    `json:"keahlian,omitempty"`
}

// PasswordChangeRequest is the body of POST /password/change.
type PasswordChangeRequest struct {
	OldPassword  string `json:"old_password"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}

// PasswordChangeResponse is returned by POST /password/change. Every
// refresh token issued before it is revoked.
type PasswordChangeResponse struct {
	Status  string    `json:"status" example:"success"`
	Message string    `json:"message" example:"Password changed successfully"`
	Tokens  TokenPair `json:"tokens"`
}

// ============================================================================
// Admin Types
// ============================================================================

// AdminCreateRequest is the body of POST /admin/accounts.
type AdminCreateRequest struct {
	Username  string `json:"username" example:"root"`
	Password  string `json:"password"`
	Email     string `json:"email" example:"root@kelas.test"`
	FirstName string `json:"first_name" example:"Root"`
	LastName  string `json:"last_name" example:"Admin"`
}

// AdminCreateResponse is returned by POST /admin/accounts.
type AdminCreateResponse struct {
	Status  string  `json:"status" example:"success"`
	Message string  `json:"message" example:"Admin created successfully"`
	User    Profile `json:"user"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz. Checks is only set by
// /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime,omitempty" example:"1h23m45s"`
	Version string        `json:"version,omitempty" example:"dev"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is the per dependency status of /readyz.
type HealthChecks struct {
	Database string `json:"database" example:"ok"`
	Signer   string `json:"signer" example:"ok"`

	// Cache is "disabled" when no revocation cache is configured.
	Cache string `json:"cache" example:"disabled"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse is the document served at /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS
