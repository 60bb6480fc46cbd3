package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRole(t *testing.T) {
	tests := []struct {
		role        Role
		valid       bool
		registrable bool
	}{
		{RoleStudent, true, true},
		{RoleInstructor, true, true},
		{RoleAdmin, true, false},
		{Role("teacher"), false, false},
		{Role(""), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			require.Equal(t, tt.valid, tt.role.Valid())
			require.Equal(t, tt.registrable, tt.role.SelfRegistrable())
		})
	}
}

func TestOutstandingTokenUsable(t *testing.T) {
	now := time.Now()
	revoked := now.Add(-time.Minute)

	require.True(t, (&OutstandingToken{ExpiresAt: now.Add(time.Hour)}).Usable(now))
	require.False(t, (&OutstandingToken{ExpiresAt: now.Add(-time.Second)}).Usable(now))
	require.False(t, (&OutstandingToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}).Usable(now))
}

func TestAccountUpdateEmpty(t *testing.T) {
	require.True(t, AccountUpdate{}.Empty())

	email := "a@x.com"
	require.False(t, AccountUpdate{Email: &email}.Empty())
}
