package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresIndex is the self-hosted backend: wiki records in a single
// pgvector-backed table, metadata round-tripped through JSONB.
type PostgresIndex struct {
	pool *pgxpool.Pool
}

func NewPostgresIndex(pool *pgxpool.Pool) *PostgresIndex {
	return &PostgresIndex{pool: pool}
}

func (s *PostgresIndex) Query(ctx context.Context, embedding []float32, topK int) ([]Record, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is empty")
	}
	if topK <= 0 {
		topK = 5
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	probes := topK * 10
	if probes < 10 {
		probes = 10
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET ivfflat.probes = %d", probes)); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT
            id,
            item_name,
            entity_type,
            info_type,
            metadata,
            source_text,
            (embedding <-> $1::vector) AS distance
        FROM wiki_records
        ORDER BY embedding <-> $1::vector
        LIMIT $2
    `, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("query similar records: %w", err)
	}
	defer rows.Close()

	results := make([]Record, 0, topK)
	for rows.Next() {
		var (
			item     Record
			metaJSON []byte
			distance float64
		)
		if scanErr := rows.Scan(&item.ID, &item.ItemName, &item.EntityType, &item.InfoType, &metaJSON, &item.SourceText, &distance); scanErr != nil {
			return nil, fmt.Errorf("scan similar record: %w", scanErr)
		}
		if err := json.Unmarshal(metaJSON, &item.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", item.ID, err)
		}
		// L2 distance converted to a similarity in (0, 1].
		item.Score = 1 / (1 + distance)
		results = append(results, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return results, nil
}

func (s *PostgresIndex) Fetch(ctx context.Context, id string) (Record, error) {
	if s.pool == nil {
		return Record{}, fmt.Errorf("postgres pool is nil")
	}

	var (
		item     Record
		metaJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
        SELECT id, item_name, entity_type, info_type, metadata, source_text
        FROM wiki_records
        WHERE id = $1
    `, id).Scan(&item.ID, &item.ItemName, &item.EntityType, &item.InfoType, &metaJSON, &item.SourceText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, fmt.Errorf("fetch %s: %w", id, ErrNotFound)
		}
		return Record{}, fmt.Errorf("fetch %s: %w", id, err)
	}
	if err := json.Unmarshal(metaJSON, &item.Metadata); err != nil {
		return Record{}, fmt.Errorf("decode metadata for %s: %w", id, err)
	}

	return item, nil
}

func (s *PostgresIndex) Upsert(ctx context.Context, records []UpsertRecord) error {
	if s.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, rec := range records {
		meta := rec.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		metaJSON, marshalErr := json.Marshal(meta)
		if marshalErr != nil {
			err = fmt.Errorf("encode metadata for %s: %w", rec.ID, marshalErr)
			return err
		}

		if _, err = tx.Exec(ctx, `
            INSERT INTO wiki_records (id, item_name, entity_type, info_type, metadata, source_text, embedding, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
            ON CONFLICT (id) DO UPDATE SET
                item_name = EXCLUDED.item_name,
                entity_type = EXCLUDED.entity_type,
                info_type = EXCLUDED.info_type,
                metadata = EXCLUDED.metadata,
                source_text = EXCLUDED.source_text,
                embedding = EXCLUDED.embedding,
                updated_at = NOW()
        `, rec.ID, rec.ItemName, rec.EntityType, rec.InfoType, metaJSON, rec.SourceText, pgvector.NewVector(rec.Embedding)); err != nil {
			err = fmt.Errorf("upsert record %s: %w", rec.ID, err)
			return err
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return fmt.Errorf("commit transaction: %w", commitErr)
	}
	return nil
}

// Clear removes every ingested wiki record.
func (s *PostgresIndex) Clear(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if _, err := s.pool.Exec(ctx, "TRUNCATE wiki_records"); err != nil {
		return fmt.Errorf("truncate wiki_records: %w", err)
	}
	return nil
}

func (s *PostgresIndex) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

var _ Index = (*PostgresIndex)(nil)
