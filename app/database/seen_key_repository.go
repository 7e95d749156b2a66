package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-relay/app/dedup"
)

// SeenKeyRepository persists the dedup set in the seen_keys table
type SeenKeyRepository struct {
	db *DB
}

// NewSeenKeyRepository creates a new seen key repository
func NewSeenKeyRepository(db *DB) *SeenKeyRepository {
	return &SeenKeyRepository{db: db}
}

// Load reads every stored key
func (r *SeenKeyRepository) Load(ctx context.Context) (*dedup.Set, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, key FROM seen_keys`)
	if err != nil {
		return dedup.NewSet(), fmt.Errorf("failed to query seen keys: %w", err)
	}
	defer rows.Close()

	var links, titles []string
	for rows.Next() {
		var kind, key string
		if err := rows.Scan(&kind, &key); err != nil {
			return dedup.NewSet(), fmt.Errorf("failed to scan seen key row: %w", err)
		}
		switch kind {
		case keyKindLink:
			links = append(links, key)
		case keyKindTitle:
			titles = append(titles, key)
		}
	}

	if err := rows.Err(); err != nil {
		return dedup.NewSet(), fmt.Errorf("error iterating seen key rows: %w", err)
	}

	slog.Debug("Dedup store loaded", "backend", "sqlite", "links", len(links), "titles", len(titles))

	return dedup.NewSetFrom(links, titles), nil
}

// Persist replaces the stored keys with the given set in one transaction
func (r *SeenKeyRepository) Persist(ctx context.Context, set *dedup.Set) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_keys`); err != nil {
		return fmt.Errorf("failed to clear seen keys: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO seen_keys (kind, key) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for kind, keys := range map[string][]string{keyKindLink: set.Links(), keyKindTitle: set.Titles()} {
		for _, key := range keys {
			if _, err := stmt.ExecContext(ctx, kind, key); err != nil {
				return fmt.Errorf("failed to insert seen key: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen keys: %w", err)
	}

	links, titles := set.Len()
	slog.Info("Dedup store saved", "backend", "sqlite", "links", links, "titles", titles)

	return nil
}
