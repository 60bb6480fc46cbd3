package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinLength(t *testing.T) {
	require.Nil(t, MinLength(8).Check("12345678", UserAttributes{}))
	require.Len(t, MinLength(8).Check("1234567", UserAttributes{}), 1)
	require.Nil(t, MinLength(3).Check("äöü", UserAttributes{}))
}

func TestNotNumeric(t *testing.T) {
	require.Equal(t, []string{MsgPasswordNumeric}, NotNumeric{}.Check("20240101", UserAttributes{}))
	require.Nil(t, NotNumeric{}.Check("2024o101", UserAttributes{}))
	require.Nil(t, NotNumeric{}.Check("", UserAttributes{}))
}

func TestNotCommon(t *testing.T) {
	require.Equal(t, []string{MsgPasswordCommon}, NotCommon{}.Check("Password123", UserAttributes{}))
	require.Equal(t, []string{MsgPasswordCommon}, NotCommon{}.Check("qwerty", UserAttributes{}))
	require.Nil(t, NotCommon{}.Check("Str0ngP@ss!", UserAttributes{}))
}

func TestNotSimilar(t *testing.T) {
	rule := NotSimilar{MaxSimilarity: 0.7}

	tests := []struct {
		name     string
		password string
		user     UserAttributes
		want     string
	}{
		{"username", "alice2024", UserAttributes{Username: "alice2024"}, "The password is too similar to the username."},
		{"reversed username", "ecila", UserAttributes{Username: "alice"}, "The password is too similar to the username."},
		{"anagram of username", "Caeli.lic", UserAttributes{Username: "alice"}, "The password is too similar to the username."},
		{"email local part", "budisantoso", UserAttributes{Email: "budi.santoso@kelas.test"}, "The password is too similar to the email address."},
		{"first name", "Siti.Nur", UserAttributes{FirstName: "siti nur"}, "The password is too similar to the first name."},
		{"unrelated", "Str0ngP@ss!", UserAttributes{Username: "alice", Email: "a@x.com", FirstName: "A", LastName: "B"}, ""},
		{"short parts skipped", "correcthorsebatterystaple", UserAttributes{LastName: "o"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rule.Check(tt.password, tt.user)
			if tt.want == "" {
				require.Empty(t, got)
				return
			}
			require.Equal(t, []string{tt.want}, got)
		})
	}
}

func TestQuickRatio(t *testing.T) {
	require.InDelta(t, 1.0, quickRatio("abc", "cba"), 1e-9)
	require.InDelta(t, 0.0, quickRatio("abc", "xyz"), 1e-9)
	require.InDelta(t, 0.5, quickRatio("ab", "ac"), 1e-9)
	require.InDelta(t, 1.0, quickRatio("", ""), 1e-9)
}
