package validation

// Client facing messages. The wording follows what Django REST framework
// clients of this API already expect.
const (
	MsgRequired          = "This field is required."
	MsgBlank             = "This field may not be blank."
	MsgInvalidEmail      = "Enter a valid email address."
	MsgMaxLength         = "Ensure this field has no more than 150 characters."
	MsgInvalidUsername   = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgInvalidRole       = "Role must be one of ['student', 'instructor']. Admin registration is not allowed through API."
	MsgPasswordMismatch  = "Password fields didn't match."
	MsgKeahlianRequired  = "This field is required for instructors."
	MsgKeahlianRange     = "Ensure this value is between 1 and 10."
	MsgInvalidInteger    = "A valid integer is required."
	MsgWrongOldPassword  = "Your old password was entered incorrectly. Please enter it again."
	MsgLoginFailed       = "Unable to log in with provided credentials."
	MsgAccountDisabled   = "User account is disabled."
	MsgPasswordTooShort  = "This password is too short. It must contain at least %d characters."
	MsgPasswordNumeric   = "This password is entirely numeric."
	MsgPasswordCommon    = "This password is too common."
	MsgPasswordSimilarTo = "The password is too similar to the %s."
	MsgNotObject         = "Invalid data. Expected a dictionary."
)
