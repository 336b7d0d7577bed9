// Package ingestion populates the vector index from the curated data
// directory: structured record files, markdown lore pages, and PDF
// guide exports.
package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wing9900/war-tycoon-oracle-bot/catalog"
	"github.com/wing9900/war-tycoon-oracle-bot/embeddings"
	"github.com/wing9900/war-tycoon-oracle-bot/index"
)

type Service struct {
	index    index.Index
	embedder embeddings.Embedder
	catalog  *catalog.Catalog
	logger   *zap.Logger
}

func NewService(idx index.Index, embedder embeddings.Embedder, cat *catalog.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cat == nil {
		cat = catalog.Default()
	}

	return &Service{
		index:    idx,
		embedder: embedder,
		catalog:  cat,
		logger:   logger,
	}
}

// recordSpec is one curated wiki record as written in a YAML data file.
// The id is the canonical document id the orchestrator fetches by.
type recordSpec struct {
	ID         string         `yaml:"id"`
	ItemName   string         `yaml:"item_name"`
	EntityType string         `yaml:"entity_type"`
	InfoType   string         `yaml:"info_type"`
	Metadata   map[string]any `yaml:"metadata"`
	SourceText string         `yaml:"source_text"`
}

type recordFile struct {
	Records []recordSpec `yaml:"records"`
}

// IngestDirectory walks the data directory and ingests every supported
// file. A failing file is logged and skipped; the walk continues.
func (s *Service) IngestDirectory(ctx context.Context, dir string) error {
	if s.embedder == nil {
		return fmt.Errorf("embedder not configured")
	}
	if s.index == nil {
		return fmt.Errorf("vector index not configured")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("data directory: %w", err)
	}

	var paths []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".yaml", ".yml", ".md", ".pdf":
			paths = append(paths, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk data directory: %w", err)
	}

	if len(paths) == 0 {
		s.logger.Info("no ingestable files found", zap.String("dir", dir))
		return nil
	}

	for _, path := range paths {
		if err := s.ingestFile(ctx, path); err != nil {
			s.logger.Warn("ingest failed", zap.String("path", path), zap.Error(err))
		}
	}

	return nil
}

func (s *Service) ingestFile(ctx context.Context, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return s.ingestRecordFile(ctx, path)
	case ".md":
		return s.ingestMarkdown(ctx, path)
	case ".pdf":
		return s.ingestPDF(ctx, path)
	default:
		return fmt.Errorf("unsupported file type: %s", path)
	}
}

func (s *Service) ingestRecordFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var file recordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse record file: %w", err)
	}
	if len(file.Records) == 0 {
		s.logger.Info("record file is empty", zap.String("path", path))
		return nil
	}

	texts := make([]string, len(file.Records))
	for i, spec := range file.Records {
		if strings.TrimSpace(spec.ID) == "" {
			return fmt.Errorf("record %d has no id", i)
		}
		if strings.TrimSpace(spec.SourceText) == "" {
			return fmt.Errorf("record %s has no source text", spec.ID)
		}
		texts[i] = spec.SourceText
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed records: %w", err)
	}
	if len(vectors) != len(file.Records) {
		return fmt.Errorf("embedding count mismatch: have %d records, %d vectors", len(file.Records), len(vectors))
	}

	records := make([]index.UpsertRecord, len(file.Records))
	for i, spec := range file.Records {
		entityType := spec.EntityType
		if entityType == "" && spec.ID != catalog.SummaryRecordID {
			entityType = catalog.EntityAircraft
		}
		records[i] = index.UpsertRecord{
			ID:         spec.ID,
			ItemName:   spec.ItemName,
			EntityType: entityType,
			InfoType:   spec.InfoType,
			Metadata:   spec.Metadata,
			SourceText: spec.SourceText,
			Embedding:  vectors[i],
		}
	}

	if err := s.index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upsert records: %w", err)
	}

	s.logger.Info("ingested record file", zap.String("path", path), zap.Int("records", len(records)))
	return nil
}

func (s *Service) ingestMarkdown(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	content := string(data)
	title := ExtractTitle(content, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return s.ingestLore(ctx, path, title, content)
}

func (s *Service) ingestPDF(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}

	plain, err := doc.GetPlainText()
	if err != nil {
		return fmt.Errorf("extract pdf text: %w", err)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, plain); err != nil {
		return fmt.Errorf("read pdf text: %w", err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s.ingestLore(ctx, path, title, buf.String())
}

// ingestLore chunks free-form text and stores each chunk as a lore
// record. Chunk ids are deterministic so re-ingesting a document
// overwrites instead of duplicating.
func (s *Service) ingestLore(ctx context.Context, path, title, content string) error {
	chunks := ChunkText(content, defaultChunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		s.logger.Info("skip empty document", zap.String("path", path))
		return nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: have %d chunks, %d vectors", len(chunks), len(vectors))
	}

	itemName := ""
	entityType := ""
	if item, ok := s.catalog.MatchText(title); ok {
		itemName = item.Name
		entityType = item.EntityType
	}

	base := catalog.NormalizeID(title)
	records := make([]index.UpsertRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = index.UpsertRecord{
			ID:         fmt.Sprintf("%s_lore_%04d", base, i),
			ItemName:   itemName,
			EntityType: entityType,
			InfoType:   "lore",
			Metadata:   map[string]any{"title": title},
			SourceText: chunk,
			Embedding:  vectors[i],
		}
	}

	if err := s.index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}

	s.logger.Info("ingested document", zap.String("path", path), zap.Int("chunks", len(records)))
	return nil
}
