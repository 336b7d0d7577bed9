package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	VectorPostgres = "pgvector"
	VectorQdrant   = "qdrant"
)

type EmbeddingsConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type LLMConfig struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float32
}

type Config struct {
	HTTPAddr      string
	AllowedOrigin string

	VectorProvider   string
	PostgresDSN      string
	QdrantAddr       string
	QdrantCollection string

	Embeddings EmbeddingsConfig
	LLM        LLMConfig

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaHost    string

	CatalogPath string
	DataDir     string
}

// Load reads configuration from the environment once at startup and
// validates it. A missing required variable is an error so the process
// refuses to serve with a misconfigured downstream client.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),

		VectorProvider:   getEnv("VECTOR_PROVIDER", VectorPostgres),
		PostgresDSN:      getEnv("POSTGRES_DSN", ""),
		QdrantAddr:       getEnv("QDRANT_ADDR", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "war_tycoon_wiki"),

		Embeddings: EmbeddingsConfig{
			Provider:  getEnv("EMBEDDING_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimension: getEnvInt("EMBEDDING_DIMENSION", 1536),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", ProviderOpenAI),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 500),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.2),
		},

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),

		CatalogPath: getEnv("CATALOG_PATH", ""),
		DataDir:     getEnv("DATA_DIR", "data"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Embeddings.Provider == ProviderOpenAI || c.LLM.Provider == ProviderOpenAI {
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
	}
	switch c.Embeddings.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown embedding provider: %s", c.Embeddings.Provider)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}
	switch c.VectorProvider {
	case VectorPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("pgvector provider selected but POSTGRES_DSN not set")
		}
	case VectorQdrant:
		if c.QdrantAddr == "" {
			return fmt.Errorf("qdrant provider selected but QDRANT_ADDR not set")
		}
		if c.QdrantCollection == "" {
			return fmt.Errorf("qdrant provider selected but QDRANT_COLLECTION not set")
		}
	default:
		return fmt.Errorf("unknown vector provider: %s", c.VectorProvider)
	}
	if c.Embeddings.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float32) float32 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(parsed)
		}
	}
	return fallback
}
