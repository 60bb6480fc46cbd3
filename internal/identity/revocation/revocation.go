// Package revocation caches revoked refresh token ids in front of the
// outstanding_tokens table. The table stays authoritative; the cache only
// lets a refresh with a known revoked jti fail without a database read.
package revocation

import (
	"context"
	"time"
)

// Cache records revoked jtis until their token would have expired anyway.
type Cache interface {
	// MarkRevoked remembers jti as revoked for ttl. A non-positive ttl is a
	// no-op since the token is already expired.
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether jti was marked. A miss means unknown, not
	// valid.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

// Nop is the cache used when REDIS_ADDR is empty.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) MarkRevoked(context.Context, string, time.Duration) error { return nil }
func (Nop) IsRevoked(context.Context, string) (bool, error)          { return false, nil }
func (Nop) Ping(context.Context) error                               { return nil }
func (Nop) Close() error                                             { return nil }
