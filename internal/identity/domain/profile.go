package domain

// Expertise bounds for InstructorProfile.Keahlian.
const (
	MinKeahlian = 1
	MaxKeahlian = 10
)

// InstructorProfile extends an account with role instructor.
type InstructorProfile struct {
	AccountID    string
	InstructorID string // UUID
	Keahlian     int    // expertise level, MinKeahlian..MaxKeahlian
}

// AdminProfile extends an account with role admin.
type AdminProfile struct {
	AccountID string
	AdminID   string // UUID
}

// Member is an account together with its role extension. At most one of
// Instructor and Admin is set, matching Account.Role. Students have neither.
type Member struct {
	Account
	Instructor *InstructorProfile
	Admin      *AdminProfile
}
