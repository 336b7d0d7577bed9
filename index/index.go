package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/wing9900/war-tycoon-oracle-bot/config"
	"github.com/wing9900/war-tycoon-oracle-bot/database"
)

// ErrNotFound is returned by Fetch when no record exists for the given id.
var ErrNotFound = errors.New("record not found")

// Record is a single retrieved wiki record. Score is a similarity in
// higher-is-better orientation; direct fetches carry a synthetic score
// assigned by the caller.
type Record struct {
	ID         string
	Score      float64
	ItemName   string
	EntityType string
	InfoType   string
	Metadata   map[string]any
	SourceText string
}

// UpsertRecord is a record together with its embedding, as written by
// the ingestion pipeline.
type UpsertRecord struct {
	ID         string
	ItemName   string
	EntityType string
	InfoType   string
	Metadata   map[string]any
	SourceText string
	Embedding  []float32
}

type Index interface {
	// Query returns the topK nearest records to the embedding, with
	// metadata included, ordered by descending similarity.
	Query(ctx context.Context, embedding []float32, topK int) ([]Record, error)

	// Fetch retrieves a single record by its canonical id. Returns
	// ErrNotFound when the id is absent.
	Fetch(ctx context.Context, id string) (Record, error)

	Upsert(ctx context.Context, records []UpsertRecord) error

	Close() error
}

// Wiper is implemented by backends that can drop all ingested data.
type Wiper interface {
	Clear(ctx context.Context) error
}

// New constructs the vector index backend selected by the configuration.
func New(ctx context.Context, cfg config.Config) (Index, error) {
	switch cfg.VectorProvider {
	case config.VectorPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres connection: %w", err)
		}
		if err := database.EnsureSchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return NewPostgresIndex(pool), nil
	case config.VectorQdrant:
		idx, err := NewQdrantIndex(cfg.QdrantAddr, cfg.QdrantCollection)
		if err != nil {
			return nil, err
		}
		if err := idx.EnsureCollection(ctx, cfg.Embeddings.Dimension); err != nil {
			idx.Close()
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown vector provider: %s", cfg.VectorProvider)
	}
}
