// Package postgres is the PostgreSQL store driver, built on a pgx/v5 pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aussiebroadwan/kelas/internal/identity/store"
)

// SQLSTATE codes mapped to store errors.
const (
	codeUniqueViolation = "23505"
	codeInvalidText     = "22P02"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// NewStore connects a pool and verifies it with a ping.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Accounts() store.Accounts                   { return &accountsRepo{q: s.pool} }
func (s *Store) Instructors() store.Instructors             { return &instructorsRepo{q: s.pool} }
func (s *Store) Admins() store.Admins                       { return &adminsRepo{q: s.pool} }
func (s *Store) OutstandingTokens() store.OutstandingTokens { return &outstandingTokensRepo{q: s.pool} }
func (s *Store) SigningKeys() store.SigningKeys             { return &signingKeysRepo{q: s.pool} }

// txStore binds the repositories to one pgx transaction. pgx has no
// context-free rollback, so Commit and Rollback use a background context.
type txStore struct {
	tx pgx.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit(context.Background()) }
func (t *txStore) Rollback() error { return t.tx.Rollback(context.Background()) }

func (t *txStore) Close() error               { return nil }
func (t *txStore) Ping(context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error     { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error {
	return pgx.ErrTxClosed
}

func (t *txStore) Accounts() store.Accounts                   { return &accountsRepo{q: t.tx} }
func (t *txStore) Instructors() store.Instructors             { return &instructorsRepo{q: t.tx} }
func (t *txStore) Admins() store.Admins                       { return &adminsRepo{q: t.tx} }
func (t *txStore) OutstandingTokens() store.OutstandingTokens { return &outstandingTokensRepo{q: t.tx} }
func (t *txStore) SigningKeys() store.SigningKeys             { return &signingKeysRepo{q: t.tx} }

// mapErr translates pgx errors into store errors. A malformed UUID can
// never match a row, so it reads as not found.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return errors.Join(store.ErrAlreadyExists, err)
		case codeInvalidText:
			return errors.Join(store.ErrNotFound, err)
		}
	}
	return err
}

// requireRow maps a zero-row command to store.ErrNotFound.
func requireRow(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
