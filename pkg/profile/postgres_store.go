package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads profiles from a `profiles` table via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the profiles table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id                   TEXT PRIMARY KEY,
			age                       INTEGER,
			parent_escalation_consent BOOLEAN,
			parent_contact            TEXT
		)`)
	if err != nil {
		return fmt.Errorf("profile schema: %w", err)
	}
	return nil
}

// Get returns the profile for a user. An absent row yields a zero Profile
// and no error, matching the Store contract.
func (s *PostgresStore) Get(ctx context.Context, userID string) (Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx,
		`SELECT age, parent_escalation_consent, parent_contact
		 FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.Age, &p.ParentEscalationConsent, &p.ParentContact)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("profile lookup %q: %w", userID, err)
	}
	return p, nil
}
