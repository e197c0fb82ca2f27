package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/starclock/starclock-api/internal/adapters/postgres"
	"github.com/starclock/starclock-api/internal/domain"
)

const hourFormatName = "hour_format"

// Store is a Postgres implementation of preference.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context) (domain.HourFormat, bool, error) {
	if s.pool == nil {
		return "", false, errors.New("nil postgres pool")
	}
	var v string
	err := s.pool.QueryRow(ctx, `
		SELECT value
		FROM display_preferences
		WHERE name = $1
	`, hourFormatName).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	f, err := domain.ParseHourFormat(v)
	if err != nil {
		return "", false, err
	}
	return f, true, nil
}

func (s *Store) Set(ctx context.Context, f domain.HourFormat) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO display_preferences (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`, hourFormatName, string(f), time.Now().UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.CheckViolationCode {
			return fmt.Errorf("invalid hour format %q: %w", f, err)
		}
		return err
	}
	return nil
}
