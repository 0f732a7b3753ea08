package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the techdocs tool. It is loaded once
// per process and treated as read-only afterwards.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Indexing IndexingConfig `yaml:"indexing"`
	RAG      RAGConfig      `yaml:"rag"`
	LLM      LLMConfig      `yaml:"llm"`
	Storage  StorageConfig  `yaml:"storage"`
	Pricing  PricingConfig  `yaml:"pricing"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `yaml:"name"`
	Debug bool   `yaml:"debug"`
}

// IndexingConfig holds chunking parameters, both counted in the same
// approximate token unit used for cost estimation.
type IndexingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RAGConfig holds query defaults.
type RAGConfig struct {
	DefaultTopK      int     `yaml:"default_top_k"`
	DefaultThreshold float64 `yaml:"default_threshold"`
	HyDEEnabled      bool    `yaml:"hyde_enabled"`
	RerankingEnabled bool    `yaml:"reranking_enabled"`
}

// LLMConfig selects the provider and models.
type LLMConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	RerankModel    string `yaml:"rerank_model"`
	APIKeyEnv      string `yaml:"api_key_env"`
}

// StorageConfig holds the vector store persistence layout.
type StorageConfig struct {
	PersistDir string `yaml:"persist_dir"`
	Collection string `yaml:"collection"`
}

// ModelPricing is a price table in USD per 1M tokens.
type ModelPricing struct {
	InputPer1M  float64 `yaml:"input_per_1m"`
	OutputPer1M float64 `yaml:"output_per_1m"`
}

// PricingConfig holds per-role price tables.
type PricingConfig struct {
	LLMModel       ModelPricing `yaml:"llm_model"`
	EmbeddingModel ModelPricing `yaml:"embedding_model"`
	RerankModel    ModelPricing `yaml:"rerank_model"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:  "Tech Docs Explorer",
			Debug: false,
		},
		Indexing: IndexingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		RAG: RAGConfig{
			DefaultTopK:      5,
			DefaultThreshold: 0.7,
			HyDEEnabled:      false,
			RerankingEnabled: false,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			RerankModel:    "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
		},
		Storage: StorageConfig{
			PersistDir: ".data/techdocs",
			Collection: "tech_docs",
		},
		Pricing: PricingConfig{
			LLMModel:       ModelPricing{InputPer1M: 0.15, OutputPer1M: 0.60},
			EmbeddingModel: ModelPricing{InputPer1M: 0.02},
			RerankModel:    ModelPricing{InputPer1M: 0.15, OutputPer1M: 0.60},
		},
	}
}

// Load loads configuration from a YAML file, merged over defaults.
// Environment variables are loaded from .env next to the config file
// when present.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for techdocs.yaml,
// then .techdocs/config.yaml). Returns defaults when neither exists.
func LoadFromDir(dir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	path := filepath.Join(dir, "techdocs.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".techdocs", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() error {
	if c.Indexing.ChunkSize <= 0 {
		return fmt.Errorf("indexing.chunk_size must be positive, got %d", c.Indexing.ChunkSize)
	}
	if c.Indexing.ChunkOverlap < 0 || c.Indexing.ChunkOverlap >= c.Indexing.ChunkSize {
		return fmt.Errorf("indexing.chunk_overlap must be in [0, chunk_size), got %d", c.Indexing.ChunkOverlap)
	}
	if c.RAG.DefaultTopK <= 0 {
		return fmt.Errorf("rag.default_top_k must be positive, got %d", c.RAG.DefaultTopK)
	}
	if c.RAG.DefaultThreshold < 0 || c.RAG.DefaultThreshold > 1 {
		return fmt.Errorf("rag.default_threshold must be in [0, 1], got %g", c.RAG.DefaultThreshold)
	}
	return nil
}

// APIKey resolves the provider API key from the configured environment
// variable. Empty when unset; providers that need it reject that case.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

// VectorDBPath returns the path of the vector store database file inside
// the persistence directory.
func VectorDBPath(persistDir string) string {
	return filepath.Join(persistDir, "vectors.db")
}

// EnsurePersistDir ensures the persistence directory exists.
func EnsurePersistDir(persistDir string) error {
	return os.MkdirAll(persistDir, 0755)
}
