package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aussiebroadwan/kelas/internal/identity/domain"
	"github.com/aussiebroadwan/kelas/internal/identity/store"
	"github.com/aussiebroadwan/kelas/internal/identity/store/drivers/sqlite/gen"
)

// pragmas are applied by modernc to every pooled connection.
var pragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
}

type Store struct {
	db *sql.DB
	q  *gen.Queries
}

// NewStore opens the sqlite database at dsn, usually a file path.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, q: gen.New(db)}, nil
}

func withPragmas(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	// Transactions take the write lock on BEGIN and wait on busy_timeout.
	b.WriteString("&_txlock=immediate")
	return b.String()
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.q.WithTx(tx)), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Accounts() store.Accounts                   { return &accountsRepo{q: s.q} }
func (s *Store) Instructors() store.Instructors             { return &instructorsRepo{q: s.q} }
func (s *Store) Admins() store.Admins                       { return &adminsRepo{q: s.q} }
func (s *Store) OutstandingTokens() store.OutstandingTokens { return &outstandingTokensRepo{q: s.q} }
func (s *Store) SigningKeys() store.SigningKeys             { return &signingKeysRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns unique and primary key violations into
// store.ErrAlreadyExists.
func mapConstraint(err error) error {
	var serr *msqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.Join(store.ErrAlreadyExists, err)
		}
	}
	return err
}

// requireRow maps a zero-row update or delete to store.ErrNotFound.
func requireRow(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time.UTC()
	return &v
}

func mapAccount(row gen.Account) domain.Account {
	return domain.Account{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Role:         domain.Role(row.Role),
		IsActive:     row.IsActive,
		IsStaff:      row.IsStaff,
		IsSuperuser:  row.IsSuperuser,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func mapOutstandingToken(row gen.OutstandingToken) domain.OutstandingToken {
	return domain.OutstandingToken{
		JTI:       row.Jti,
		AccountID: row.AccountID,
		ExpiresAt: row.ExpiresAt.UTC(),
		RevokedAt: timePtr(row.RevokedAt),
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func mapSigningKey(row gen.SigningKey) domain.SigningKey {
	return domain.SigningKey{
		ID:                  row.ID,
		Kid:                 row.Kid,
		Algorithm:           row.Algorithm,
		PrivateKeyEncrypted: row.PrivateKeyEncrypted,
		CreatedAt:           row.CreatedAt.UTC(),
		RetiredAt:           timePtr(row.RetiredAt),
		ExpiresAt:           row.ExpiresAt.UTC(),
	}
}
