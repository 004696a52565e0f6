package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implementa UserStore sobre Postgres (pgx pool).
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPG abre el pool y verifica conectividad.
func NewPG(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store pg: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store pg ping: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Pool expone el pool (migraciones, métricas).
func (s *PGStore) Pool() *pgxpool.Pool { return s.pool }

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Key, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const selectByKey = `
SELECT id, key, email, first_name, last_name, created_at, updated_at
FROM app_user WHERE key = $1`

// FindOrCreate: INSERT .. ON CONFLICT DO NOTHING + relectura.
// Si dos callbacks concurrentes compiten por la misma key nueva, la
// constraint de unicidad resuelve al ganador y el perdedor relee.
func (s *PGStore) FindOrCreate(ctx context.Context, u User) (User, bool, error) {
	if got, err := scanUser(s.pool.QueryRow(ctx, selectByKey, u.Key)); err == nil {
		return got, false, nil
	} else if err != pgx.ErrNoRows {
		return User{}, false, fmt.Errorf("store pg: find: %w", err)
	}

	id := uuid.NewString()
	tag, err := s.pool.Exec(ctx, `
INSERT INTO app_user (id, key, email, first_name, last_name)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (key) DO NOTHING`,
		id, u.Key, u.Email, u.FirstName, u.LastName,
	)
	if err != nil {
		return User{}, false, fmt.Errorf("store pg: insert: %w", err)
	}
	created := tag.RowsAffected() == 1

	got, err := scanUser(s.pool.QueryRow(ctx, selectByKey, u.Key))
	if err != nil {
		return User{}, false, fmt.Errorf("store pg: reread: %w", err)
	}
	return got, created, nil
}

// Update parchea solo los campos recibidos; el SET se arma por columna para
// no tocar nada más (verificable con un spy en tests del reconciliador).
func (s *PGStore) Update(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for f := range fields {
		if f != FieldFirstName && f != FieldLastName {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		cols = append(cols, f)
	}
	sort.Strings(cols) // SQL determinístico

	set := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		set = append(set, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, fields[col])
	}
	set = append(set, "updated_at = now()")
	args = append(args, key)

	q := fmt.Sprintf("UPDATE app_user SET %s WHERE key = $%d", strings.Join(set, ", "), len(args))
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("store pg: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
