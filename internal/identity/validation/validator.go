// Package validation checks and normalizes request payloads. Struct rules
// run through go-playground/validator; cross-field and role dependent rules
// are written out in each method. Every failure is collected into one
// Errors map, nothing short-circuits.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// Validator holds the struct validator and the password policy.
type Validator struct {
	v      *validator.Validate
	policy PasswordPolicy
}

// New returns a Validator using policy, or DefaultPasswordPolicy when nil.
func New(policy PasswordPolicy) *Validator {
	if policy == nil {
		policy = DefaultPasswordPolicy()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("selfrole", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).SelfRegistrable()
	})

	return &Validator{v: v, policy: policy}
}

// Register validates a registration payload in place, trimming the text
// fields and normalizing the email first.
func (val *Validator) Register(in *RegisterInput) Errors {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Role = strings.TrimSpace(in.Role)

	errs := val.structErrors(in)

	if in.Password != "" {
		for _, msg := range val.policy.Check(in.Password, UserAttributes{
			Username:  in.Username,
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
		}) {
			errs.Add("password", msg)
		}
	}

	if in.Password2 != "" && in.Password != in.Password2 {
		errs.Add("password2", MsgPasswordMismatch)
	}

	if domain.Role(in.Role) == domain.RoleInstructor {
		switch {
		case in.Keahlian == nil:
			errs.Add("keahlian", MsgKeahlianRequired)
		case !keahlianInRange(*in.Keahlian):
			errs.Add("keahlian", MsgKeahlianRange)
		}
	}

	return in.merge(errs)
}

// Login checks field presence only; credentials are checked by the service.
func (val *Validator) Login(in *LoginInput) Errors {
	in.Username = strings.TrimSpace(in.Username)
	return in.merge(val.structErrors(in))
}

// Refresh checks that a refresh token was supplied.
func (val *Validator) Refresh(in *RefreshInput) Errors {
	in.Refresh = strings.TrimSpace(in.Refresh)
	return in.merge(val.structErrors(in))
}

// ProfileUpdate validates the supplied fields of a profile update. keahlian
// is only considered for instructors and is dropped for other roles.
func (val *Validator) ProfileUpdate(in *ProfileUpdateInput, role domain.Role) Errors {
	errs := Errors{}

	if in.Username != nil {
		u := strings.TrimSpace(*in.Username)
		in.Username = &u
		switch {
		case u == "":
			errs.Add("username", MsgBlank)
		case utf8.RuneCountInString(u) > 150:
			errs.Add("username", MsgMaxLength)
		case !usernamePattern.MatchString(u):
			errs.Add("username", MsgInvalidUsername)
		}
	}

	if in.Email != nil {
		e := NormalizeEmail(*in.Email)
		in.Email = &e
		if e == "" {
			errs.Add("email", MsgBlank)
		} else if val.v.Var(e, "email") != nil {
			errs.Add("email", MsgInvalidEmail)
		}
	}

	for field, p := range map[string]*string{"first_name": in.FirstName, "last_name": in.LastName} {
		if p == nil {
			continue
		}
		*p = strings.TrimSpace(*p)
		if utf8.RuneCountInString(*p) > 150 {
			errs.Add(field, MsgMaxLength)
		}
	}

	if role != domain.RoleInstructor {
		in.Keahlian = nil
		delete(in.DecodeErrors, "keahlian")
	} else if in.Keahlian != nil && !keahlianInRange(*in.Keahlian) {
		errs.Add("keahlian", MsgKeahlianRange)
	}

	return in.merge(errs)
}

// PasswordChange validates the new password against the policy and the
// confirmation. The old password is verified by the service.
func (val *Validator) PasswordChange(in *PasswordChangeInput, user UserAttributes) Errors {
	errs := val.structErrors(in)

	if in.NewPassword != "" {
		for _, msg := range val.policy.Check(in.NewPassword, user) {
			errs.Add("new_password", msg)
		}
	}
	if in.NewPassword2 != "" && in.NewPassword != in.NewPassword2 {
		errs.Add("new_password2", MsgPasswordMismatch)
	}
	return in.merge(errs)
}

// AdminCreate validates an admin account payload.
func (val *Validator) AdminCreate(in *AdminCreateInput) Errors {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	errs := val.structErrors(in)
	if in.Password != "" {
		for _, msg := range val.policy.Check(in.Password, UserAttributes{
			Username:  in.Username,
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
		}) {
			errs.Add("password", msg)
		}
	}
	return in.merge(errs)
}

// structErrors runs the validate tags of s and maps each failure to its
// client message.
func (val *Validator) structErrors(s any) Errors {
	errs := Errors{}

	err := val.v.Struct(s)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add(NonFieldErrors, "Invalid input.")
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "max":
		return MsgMaxLength
	case "username":
		return MsgInvalidUsername
	case "selfrole":
		return MsgInvalidRole
	default:
		return "Invalid value."
	}
}

func keahlianInRange(k int) bool {
	return k >= domain.MinKeahlian && k <= domain.MaxKeahlian
}

// NormalizeEmail trims the address and lowercases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domainPart, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	return local + "@" + strings.ToLower(domainPart)
}
