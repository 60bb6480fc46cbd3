package http

import (
	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/pkg/authsdk"
)

func tokenPair(p domain.TokenPair) authsdk.TokenPair {
	return authsdk.TokenPair{Access: p.Access, Refresh: p.Refresh}
}

func registeredUser(m domain.Member) authsdk.RegisteredUser {
	u := authsdk.RegisteredUser{
		ID:       m.ID,
		Username: m.Username,
		Email:    m.Email,
		Role:     string(m.Role),
	}
	if m.Instructor != nil {
		keahlian := m.Instructor.Keahlian
		u.InstructorID = m.Instructor.InstructorID
		u.Keahlian = &keahlian
	}
	return u
}

func profile(m domain.Member) authsdk.Profile {
	p := authsdk.Profile{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      string(m.Role),
		IsActive:  m.IsActive,
	}

	switch {
	case m.Admin != nil:
		staff, superuser := m.IsStaff, m.IsSuperuser
		p.AdminID = m.Admin.AdminID
		p.IsStaff = &staff
		p.IsSuperuser = &superuser
	case m.Instructor != nil:
		keahlian := m.Instructor.Keahlian
		p.InstructorID = m.Instructor.InstructorID
		p.Keahlian = &keahlian
	}
	return p
}
