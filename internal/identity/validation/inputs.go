package validation

// Decoded carries the field errors found while decoding a payload, such as
// a string sent for keahlian. Each Validator method reports them together
// with its own failures, and a decode error replaces any rule failure of
// the same field.
type Decoded struct {
	DecodeErrors Errors `json:"-"`
}

// SetDecodeErrors records the fields that could not be decoded.
func (d *Decoded) SetDecodeErrors(errs Errors) {
	d.DecodeErrors = errs
}

func (d *Decoded) merge(errs Errors) Errors {
	for field, msgs := range d.DecodeErrors {
		errs[field] = msgs
	}
	return errs
}

// RegisterInput is the body of POST /register.
type RegisterInput struct {
	Decoded

	Username  string `json:"username" validate:"required,max=150,username"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Role      string `json:"role" validate:"required,selfrole"`
	Keahlian  *int   `json:"keahlian,omitempty"`
}

// LoginInput is the body of POST /login.
type LoginInput struct {
	Decoded

	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput is the body of POST /token/refresh and POST /logout.
type RefreshInput struct {
	Decoded

	Refresh string `json:"refresh" validate:"required"`
}

// ProfileUpdateInput is the body of POST /profile. Absent fields are kept.
type ProfileUpdateInput struct {
	Decoded

	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Keahlian  *int    `json:"keahlian,omitempty"`
}

// PasswordChangeInput is the body of POST /password/change.
type PasswordChangeInput struct {
	Decoded

	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

// AdminCreateInput is the body of POST /admin/accounts.
type AdminCreateInput struct {
	Decoded

	Username  string `json:"username" validate:"required,max=150,username"`
	Password  string `json:"password" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
}
