// Package oracle answers free-text questions about the game from the
// wiki vector index: embed, retrieve, format context, ask the model.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wing9900/war-tycoon-oracle-bot/catalog"
	"github.com/wing9900/war-tycoon-oracle-bot/embeddings"
	"github.com/wing9900/war-tycoon-oracle-bot/index"
	"github.com/wing9900/war-tycoon-oracle-bot/llm"
)

const (
	defaultTopK       = 4
	maxContextRecords = 10

	// Synthetic scores for directly fetched records: the summary record
	// must outrank everything, direct per-item fetches sit above any
	// metric similarity but below the summary.
	summaryScore     = 2.0
	directFetchScore = 1.5
)

const fallbackAnswer = "I couldn't come up with an answer for that. Try asking about a specific aircraft or its stats."

// ErrEmptyQuestion is returned before any upstream call when the
// question is empty or whitespace-only.
var ErrEmptyQuestion = errors.New("question cannot be empty")

type Options struct {
	TopK        int
	MaxTokens   int
	Temperature float32
}

type Service struct {
	index    index.Index
	embedder embeddings.Embedder
	llm      llm.Client
	catalog  *catalog.Catalog
	logger   *zap.Logger
	opts     Options
}

func NewService(idx index.Index, embedder embeddings.Embedder, llmClient llm.Client, cat *catalog.Catalog, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}

	return &Service{
		index:    idx,
		embedder: embedder,
		llm:      llmClient,
		catalog:  cat,
		logger:   logger,
		opts:     opts,
	}
}

// Ask answers a single question. Embedding, similarity search and the
// completion call are fatal on failure; individual direct fetches are
// not, the request degrades to whatever context was already gathered.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if s.embedder == nil {
		return "", fmt.Errorf("embedder is not configured")
	}
	if s.index == nil {
		return "", fmt.Errorf("vector index is not configured")
	}
	if s.llm == nil {
		return "", fmt.Errorf("llm client is not configured")
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	matches, err := s.index.Query(ctx, vector, s.opts.TopK)
	if err != nil {
		return "", fmt.Errorf("vector search: %w", err)
	}

	records := make([]ContextRecord, 0, len(matches)+3)

	intent := detectIntent(question)
	if intent.ListAll {
		if rec, ok := s.fetchDirect(ctx, catalog.SummaryRecordID, summaryScore); ok {
			records = append(records, rec)
		}
	}

	for _, match := range matches {
		records = append(records, ContextRecord{Record: match})
	}

	if !intent.ListAll {
		if item, ok := resolvePrimaryItem(s.catalog, question, matches); ok {
			s.logger.Debug("resolved primary item", zap.String("item", item.Name))
			for _, id := range docIDsForItem(item, intent) {
				if hasRecord(records, id) {
					continue
				}
				if rec, ok := s.fetchDirect(ctx, id, directFetchScore); ok {
					records = append(records, rec)
				}
			}
		}
	}

	merged := mergeRecords(records, maxContextRecords)
	contextText := FormatContext(merged)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: userPrompt(contextText, question)},
	}

	answer, err := s.llm.Generate(ctx, messages, llm.GenerateOptions{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fallbackAnswer, nil
	}
	return answer, nil
}

// fetchDirect looks up a record by id and assigns the synthetic score.
// Misses and fetch errors are logged and swallowed.
func (s *Service) fetchDirect(ctx context.Context, id string, score float64) (ContextRecord, bool) {
	rec, err := s.index.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, index.ErrNotFound) {
			s.logger.Debug("record unavailable", zap.String("id", id))
		} else {
			s.logger.Warn("direct fetch failed", zap.String("id", id), zap.Error(err))
		}
		return ContextRecord{}, false
	}
	rec.Score = score
	return ContextRecord{Record: rec, Direct: true}, true
}

// mergeRecords sorts by score descending, drops duplicate ids keeping
// the highest-scoring instance, and caps the list to bound prompt size.
func mergeRecords(records []ContextRecord, limit int) []ContextRecord {
	sorted := make([]ContextRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	seen := make(map[string]struct{}, len(sorted))
	merged := make([]ContextRecord, 0, len(sorted))
	for _, rec := range sorted {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
		if len(merged) == limit {
			break
		}
	}
	return merged
}

func hasRecord(records []ContextRecord, id string) bool {
	for _, rec := range records {
		if rec.ID == id {
			return true
		}
	}
	return false
}
