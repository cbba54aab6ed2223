package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"secure-rag/internal/models"
)

type Config struct {
	LogLevel  string                 `yaml:"log_level"`
	DataDir   string                 `yaml:"data_dir" validate:"required"`
	Chunking  models.ChunkingPolicy  `yaml:"chunking"`
	Retrieval models.RetrievalPolicy `yaml:"retrieval"`
	Tables    []TableConfig          `yaml:"tables" validate:"dive"`
	VectorDB  VectorDBConfig         `yaml:"vectordb"`
	EmbedLLM  LLMConfig              `yaml:"embed_llm"`
	ChatLLM   LLMConfig              `yaml:"chat_llm"`
	Database  DatabaseConfig         `yaml:"database"`
	Users     []UserConfig           `yaml:"users" validate:"dive"`
	Server    ServerConfig           `yaml:"server"`
}

// TableConfig describes a tabular source. The access tier and the column
// roles are set by the operator, never detected.
type TableConfig struct {
	Path        string   `yaml:"path" validate:"required"`
	AccessTier  string   `yaml:"access_tier" validate:"required"`
	TextColumns []string `yaml:"text_columns" validate:"required,min=1"`
	IDColumn    string   `yaml:"id_column"`
	Sheet       string   `yaml:"sheet"`
}

type VectorDBConfig struct {
	Path          string `yaml:"path"`
	Collection    string `yaml:"collection" validate:"required"`
	InMemory      bool   `yaml:"in_memory"`
	Compress      bool   `yaml:"compress"`
	EncryptionKey string `yaml:"encryption_key" validate:"omitempty,len=32"`
	ExportPath    string `yaml:"export_path"`
	BatchSize     int    `yaml:"batch_size" validate:"gte=0"`
}

type LLMConfig struct {
	Provider string `yaml:"provider" validate:"omitempty,oneof=ollama openai"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type DatabaseConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver" validate:"omitempty,oneof=pgdriver pq"`
	Debug  bool   `yaml:"debug"`
}

// UserConfig is a statically provisioned login. PasswordHash is a bcrypt hash.
type UserConfig struct {
	Login        string `yaml:"login" validate:"required"`
	PasswordHash string `yaml:"password_hash" validate:"required"`
	Role         string `yaml:"role" validate:"required"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

const (
	defaultDataDir        = "./data"
	defaultVectorDBPath   = "./chromemdb"
	defaultCollection     = "rag"
	defaultBatchSize      = 256
	defaultServerAddr     = ":8000"
	defaultRequestTimeout = 60 * time.Second
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		DataDir:   defaultDataDir,
		Chunking:  models.DefaultChunkingPolicy(),
		Retrieval: models.DefaultRetrievalPolicy(),
		VectorDB: VectorDBConfig{
			Path:       defaultVectorDBPath,
			Collection: defaultCollection,
			BatchSize:  defaultBatchSize,
		},
		EmbedLLM: LLMConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434",
			Model:    "all-minilm",
		},
		ChatLLM: LLMConfig{
			Provider: "openai",
			BaseURL:  "https://api.openai.com/v1",
			Model:    "gpt-4.1-mini",
		},
		Database: DatabaseConfig{Driver: "pgdriver"},
		Server: ServerConfig{
			Addr:           defaultServerAddr,
			RequestTimeout: defaultRequestTimeout,
		},
	}
}

// LoadConfig reads the yaml file at path on top of the defaults. A missing
// file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RAG_LLM_KEY"); v != "" {
		c.ChatLLM.Key = v
	}
	if v := os.Getenv("RAG_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("RAG_VECTORDB_ENCRYPTION_KEY"); v != "" {
		c.VectorDB.EncryptionKey = v
	}
}

// applyDefaults fills zero values a partial yaml file left behind.
func (c *Config) applyDefaults() {
	if c.Chunking.Default.Size == 0 {
		c.Chunking.Default = models.DefaultChunkSize
	}
	if c.VectorDB.BatchSize == 0 {
		c.VectorDB.BatchSize = defaultBatchSize
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			var sb strings.Builder
			sb.WriteString("config validation failed:")
			for _, e := range errs {
				sb.WriteString(fmt.Sprintf(" %s failed '%s' (value: %v);", e.Namespace(), e.Tag(), e.Value()))
			}
			return errors.New(sb.String())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := c.Chunking.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if !c.VectorDB.InMemory && c.VectorDB.Path == "" {
		return errors.New("config validation failed: vectordb.path is required unless in_memory is set")
	}
	return nil
}
