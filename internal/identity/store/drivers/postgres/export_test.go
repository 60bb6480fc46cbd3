package postgres

import "context"

// Truncate empties every table. Tests only.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE accounts, instructor_profiles, admin_profiles, outstanding_tokens, signing_keys`)
	return err
}
