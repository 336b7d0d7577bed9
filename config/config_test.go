package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTPAddr:       ":8080",
		AllowedOrigin:  "*",
		VectorProvider: VectorPostgres,
		PostgresDSN:    "postgres://localhost:5432/oracle?sslmode=disable",
		Embeddings: EmbeddingsConfig{
			Provider:  ProviderOpenAI,
			Model:     "text-embedding-3-small",
			Dimension: 1536,
		},
		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			Model:    "gpt-4o-mini",
		},
		OpenAIAPIKey: "sk-test",
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiresOpenAIKey(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAIAPIKey = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestValidateRequiresPostgresDSN(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresDSN = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "POSTGRES_DSN") {
		t.Fatalf("expected missing dsn error, got %v", err)
	}
}

func TestValidateRequiresQdrantSettings(t *testing.T) {
	cfg := validConfig()
	cfg.VectorProvider = VectorQdrant
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "QDRANT_ADDR") {
		t.Fatalf("expected missing addr error, got %v", err)
	}

	cfg.QdrantAddr = "localhost:6334"
	cfg.QdrantCollection = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "QDRANT_COLLECTION") {
		t.Fatalf("expected missing collection error, got %v", err)
	}
}

func TestValidateRejectsUnknownProviders(t *testing.T) {
	cfg := validConfig()
	cfg.Embeddings.Provider = "claude"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown embedding provider")
	}

	cfg = validConfig()
	cfg.VectorProvider = "pinecone"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown vector provider")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("POSTGRES_DSN", "postgres://db:5432/x")
	t.Setenv("LLM_MAX_TOKENS", "256")
	t.Setenv("LLM_TEMPERATURE", "0.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-env" {
		t.Fatalf("unexpected api key: %q", cfg.OpenAIAPIKey)
	}
	if cfg.LLM.MaxTokens != 256 {
		t.Fatalf("unexpected max tokens: %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Temperature != 0.1 {
		t.Fatalf("unexpected temperature: %f", cfg.LLM.Temperature)
	}
}

func TestLoadFailsWithoutRequiredSettings(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("POSTGRES_DSN", "postgres://db:5432/x")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail without OPENAI_API_KEY")
	}
}
