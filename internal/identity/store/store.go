package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it. Sub-repositories are reached through methods so a
// Tx can hand out the same repositories bound to the transaction.
type Store interface {
	Accounts() Accounts
	Instructors() Instructors
	Admins() Admins
	OutstandingTokens() OutstandingTokens
	SigningKeys() SigningKeys

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction. It commits when fn returns nil and
	// rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// CreateAccount inserts a. A taken username returns ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateAccount applies the non-nil fields of u and bumps updated_at.
	UpdateAccount(ctx context.Context, id string, u domain.AccountUpdate, now time.Time) error

	UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error
	SetAccountActive(ctx context.Context, id string, active bool, now time.Time) error

	// DeleteAccount cascades to profiles and outstanding tokens.
	DeleteAccount(ctx context.Context, id string) error

	// HasAdmin reports whether any account with role admin exists.
	HasAdmin(ctx context.Context) (bool, error)
}

type Instructors interface {
	CreateInstructorProfile(ctx context.Context, p domain.InstructorProfile) error
	GetInstructorProfile(ctx context.Context, accountID string) (domain.InstructorProfile, error)
	UpdateKeahlian(ctx context.Context, accountID string, keahlian int) error
}

type Admins interface {
	CreateAdminProfile(ctx context.Context, p domain.AdminProfile) error
	GetAdminProfile(ctx context.Context, accountID string) (domain.AdminProfile, error)
}

type OutstandingTokens interface {
	CreateOutstandingToken(ctx context.Context, t domain.OutstandingToken) error
	GetOutstandingToken(ctx context.Context, jti string) (domain.OutstandingToken, error)

	// RevokeOutstandingToken sets revoked_at only if it is still unset.
	// A missing or already revoked token returns ErrNotFound, so of two
	// concurrent revocations exactly one succeeds.
	RevokeOutstandingToken(ctx context.Context, jti string, now time.Time) error

	// RevokeAllAccountTokens revokes every live token of the account and
	// returns how many were revoked.
	RevokeAllAccountTokens(ctx context.Context, accountID string, now time.Time) (int64, error)

	// DeleteExpiredOutstandingTokens removes rows past expires_at.
	DeleteExpiredOutstandingTokens(ctx context.Context, now time.Time) (int64, error)
}

type SigningKeys interface {
	CreateSigningKey(ctx context.Context, key domain.SigningKey) error

	// ListAllSigningKeys returns retired and active keys that have not
	// expired, newest first. They are all needed to verify.
	ListAllSigningKeys(ctx context.Context, now time.Time) ([]domain.SigningKey, error)

	// ListActiveSigningKeys returns keys usable for signing, newest first.
	ListActiveSigningKeys(ctx context.Context, now time.Time) ([]domain.SigningKey, error)

	DeleteExpiredSigningKeys(ctx context.Context, now time.Time) (int64, error)
}
