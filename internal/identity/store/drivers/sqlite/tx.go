package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/kelas/internal/identity/store"
	"github.com/aussiebroadwan/kelas/internal/identity/store/drivers/sqlite/gen"
)

type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

func newTx(tx *sql.Tx, q *gen.Queries) *txStore {
	return &txStore{tx: tx, q: q}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op, the outer DB stays open after commit or rollback.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Accounts() store.Accounts                   { return &accountsRepo{q: t.q} }
func (t *txStore) Instructors() store.Instructors             { return &instructorsRepo{q: t.q} }
func (t *txStore) Admins() store.Admins                       { return &adminsRepo{q: t.q} }
func (t *txStore) OutstandingTokens() store.OutstandingTokens { return &outstandingTokensRepo{q: t.q} }
func (t *txStore) SigningKeys() store.SigningKeys             { return &signingKeysRepo{q: t.q} }
