package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the wiki_records table and its indexes. Record ids
// are the canonical document ids (e.g. p_51_mustang_general_info), not
// surrogate keys, so direct fetch-by-id is a primary-key lookup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS wiki_records (
			id TEXT PRIMARY KEY,
			item_name TEXT NOT NULL DEFAULT '',
			entity_type TEXT NOT NULL DEFAULT '',
			info_type TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}',
			source_text TEXT NOT NULL DEFAULT '',
			embedding VECTOR(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dimension),
		"CREATE INDEX IF NOT EXISTS idx_wiki_records_item ON wiki_records(item_name)",
		"CREATE INDEX IF NOT EXISTS idx_wiki_records_embedding ON wiki_records USING ivfflat (embedding vector_l2_ops)",
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}
