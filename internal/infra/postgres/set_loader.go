package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wordmatch-service/internal/domain"
)

// SetLoader loads matching set JSONB from Postgres.
type SetLoader struct {
	pool *pgxpool.Pool
}

func NewSetLoader(pool *pgxpool.Pool) *SetLoader {
	return &SetLoader{pool: pool}
}

func (l *SetLoader) LoadSet(ctx context.Context, setID string) (domain.MatchingSet, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM matching_sets WHERE id=$1`, setID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MatchingSet{}, domain.ErrSetNotFound
	}
	if err != nil {
		return domain.MatchingSet{}, fmt.Errorf("load set: %w", err)
	}
	var set domain.MatchingSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.MatchingSet{}, fmt.Errorf("unmarshal set: %w", err)
	}
	set.ID = setID
	return set, nil
}

// SaveSet inserts or replaces a set.
func (l *SetLoader) SaveSet(ctx context.Context, set domain.MatchingSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal set: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO matching_sets (id, title, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, data = EXCLUDED.data, updated_at = now()`,
		set.ID, set.Title, raw)
	if err != nil {
		return fmt.Errorf("save set %s: %w", set.ID, err)
	}
	return nil
}
