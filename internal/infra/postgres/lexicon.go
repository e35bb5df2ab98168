package postgres

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"wordmatch-service/internal/lookup"
)

// Lexicon searches the lexicon table. Rows are streamed and matched one at a
// time so a caller that stops after a few results does not read the table.
type Lexicon struct {
	pool *pgxpool.Pool
}

func NewLexicon(pool *pgxpool.Pool) *Lexicon {
	return &Lexicon{pool: pool}
}

func (l *Lexicon) Search(ctx context.Context, query, typeFilter string) iter.Seq2[lookup.Record, error] {
	m := lookup.NewMatcher(query, typeFilter)
	return func(yield func(lookup.Record, error) bool) {
		if m.Empty() {
			return
		}
		rows, err := l.pool.Query(ctx, `
			SELECT id, kind, text, pos, description, meaning, related, grade
			FROM lexicon
			WHERE kind = $1
			ORDER BY sort_order, id`, m.Kind())
		if err != nil {
			yield(lookup.Record{}, fmt.Errorf("query lexicon: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e       lookup.Entry
				related string
			)
			if err := rows.Scan(&e.ID, &e.Kind, &e.Text, &e.Pos, &e.Desc, &e.Meaning, &related, &e.Grade); err != nil {
				yield(lookup.Record{}, fmt.Errorf("scan lexicon row: %w", err))
				return
			}
			e.Related = lookup.SplitRelated(related)
			if !m.Match(e) {
				continue
			}
			if !yield(e.Record(), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(lookup.Record{}, fmt.Errorf("read lexicon: %w", err))
		}
	}
}

// InsertEntries appends entries to the lexicon, keeping their order.
func (l *Lexicon) InsertEntries(ctx context.Context, entries []lookup.Entry) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO lexicon (id, kind, text, pos, description, meaning, related, grade)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING`,
			e.ID, e.Kind, e.Text, e.Pos, e.Desc, e.Meaning, strings.Join(e.Related, ", "), e.Grade)
		if err != nil {
			return fmt.Errorf("insert lexicon entry %s: %w", e.ID, err)
		}
	}
	return tx.Commit(ctx)
}

