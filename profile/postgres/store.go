package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wellnesskit/wellness-agents/profile"
)

// Store implements profile.Store on Postgres via pgx.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// Expect table schema similar to:
// CREATE TABLE IF NOT EXISTS user_profiles (
//   user_id text PRIMARY KEY,
//   age int,
//   gender text,
//   health_conditions text[],
//   preferences jsonb
// );

// New creates a Postgres-backed profile store
func New(pool *pgxpool.Pool, table string) *Store {
	if table == "" {
		table = "user_profiles"
	}
	return &Store{pool: pool, table: table}
}

// Put implements profile.Store
func (s *Store) Put(ctx context.Context, p *profile.UserProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	_, err = s.pool.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s (user_id, age, gender, health_conditions, preferences) VALUES ($1,$2,$3,$4,$5) "+
			"ON CONFLICT (user_id) DO UPDATE SET age=excluded.age, gender=excluded.gender, "+
			"health_conditions=excluded.health_conditions, preferences=excluded.preferences", s.table),
		p.UserID, nullableInt(p.Age), nullableText(p.Gender), p.HealthConditions, prefs)
	return err
}

// Get implements profile.Store
func (s *Store) Get(ctx context.Context, userID string) (*profile.UserProfile, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(
		"SELECT user_id, COALESCE(age, 0), COALESCE(gender, ''), COALESCE(health_conditions, '{}'), preferences FROM %s WHERE user_id=$1", s.table),
		userID)

	var p profile.UserProfile
	var prefs []byte
	if err := row.Scan(&p.UserID, &p.Age, &p.Gender, &p.HealthConditions, &prefs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrNotFound
		}
		return nil, err
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &p.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshal preferences: %w", err)
		}
	}
	return &p, nil
}

// Delete implements profile.Store
func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_id=$1", s.table), userID)
	return err
}

func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

func nullableText(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

var _ profile.Store = (*Store)(nil)
