package domain

import "time"

// Role of an account. It is fixed when the account is created.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable reports whether the role may be chosen at /register.
func (r Role) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleInstructor
}

// Account is the single record every user has, whatever the role.
type Account struct {
	ID           string // UUID
	Username     string
	PasswordHash string // argon2id encoded
	Email        string
	FirstName    string
	LastName     string
	Role         Role
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountUpdate holds the mutable account fields. A nil field is left as is.
type AccountUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// Empty reports whether the update carries no change.
func (u AccountUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.FirstName == nil && u.LastName == nil
}
