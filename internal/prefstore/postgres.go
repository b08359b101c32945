// Package prefstore loads user dietary preferences from Postgres. The
// relational store owns accounts and preference writes; this core only
// reads one row per request.
package prefstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
)

const selectPrefs = `
SELECT diet_type, allergies, dislikes
FROM user_prefs
WHERE user_id = $1
`

// Store reads preference rows through a pgx pool. Safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Connect creates the pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetPreferences returns the user's preference set, normalized. A user
// without a preference row yields domain.ErrPreferencesNotFound.
func (s *Store) GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error) {
	var prefs domain.Preferences
	err := s.pool.QueryRow(ctx, selectPrefs, userID).
		Scan(&prefs.DietType, &prefs.Allergies, &prefs.Dislikes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Preferences{}, fmt.Errorf("user %d: %w", userID, domain.ErrPreferencesNotFound)
		}
		return domain.Preferences{}, fmt.Errorf("select preferences for user %d: %w", userID, err)
	}
	return prefs.Normalized(), nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
