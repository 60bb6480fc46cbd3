package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithPragmas(t *testing.T) {
	require.Equal(t,
		"identity.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate",
		withPragmas("identity.db"))

	require.Equal(t,
		"file:identity.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate",
		withPragmas("file:identity.db?mode=rwc"))
}
