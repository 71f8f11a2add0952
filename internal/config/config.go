package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xxxsen/common/logger"
)

const (
	defaultPort             = 8000
	defaultMaxUploadSize    = 20 * 1024 * 1024
	defaultChunkTargetSize  = 1000
	defaultChunkOverlap     = 200
	defaultRetrievalK       = 3
	defaultPromptCharBudget = 6000
	defaultCompletionSecs   = 30
	defaultCacheSize        = 1000
	defaultCacheTTLMinutes  = 120
	defaultExpiryCron       = "*/10 * * * *"
	defaultOpenRouterModel  = "meta-llama/llama-3.2-3b-instruct:free"
)

type Config struct {
	Port             int                  `json:"port"`
	LogConfig        logger.LogConfig     `json:"log_config"`
	CORSAllowlist    []string             `json:"cors_allowlist"`
	MaxUploadSize    int64                `json:"max_upload_size"`
	QueryRateLimitMs int                  `json:"query_rate_limit_ms"`
	RAG              RAGConfig            `json:"rag"`
	AI               AIConfig             `json:"ai"`
	FileStore        *FileStoreConfig     `json:"file_store"`
	DocumentExpiry   DocumentExpiryConfig `json:"document_expiry"`
}

type RAGConfig struct {
	ChunkTargetSize          int `json:"chunk_target_size"`
	ChunkOverlap             int `json:"chunk_overlap"`
	RetrievalK               int `json:"retrieval_k"`
	PromptCharBudget         int `json:"prompt_char_budget"`
	CompletionTimeoutSeconds int `json:"completion_timeout_seconds"`
	AnswerCacheSize          int `json:"answer_cache_size"`
	AnswerCacheTTLMinutes    int `json:"answer_cache_ttl_minutes"`
}

func (c RAGConfig) CompletionTimeout() time.Duration {
	return time.Duration(c.CompletionTimeoutSeconds) * time.Second
}

func (c RAGConfig) AnswerCacheTTL() time.Duration {
	return time.Duration(c.AnswerCacheTTLMinutes) * time.Minute
}

type AIConfig struct {
	Providers []AIProviderConfig `json:"providers"`
}

type AIProviderConfig struct {
	Name  string      `json:"name"`
	Model string      `json:"model"`
	Data  interface{} `json:"data"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type DocumentExpiryConfig struct {
	TTLHours int    `json:"ttl_hours"`
	Cron     string `json:"cron"`
}

func (c DocumentExpiryConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with every default filled and a single openrouter provider whose
// key comes from the environment.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.normalize()
	return cfg
}

func (c *Config) normalize() error {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = defaultMaxUploadSize
	}
	if c.QueryRateLimitMs < 0 {
		return fmt.Errorf("query_rate_limit_ms must not be negative")
	}
	if err := c.RAG.normalize(); err != nil {
		return err
	}
	if len(c.AI.Providers) == 0 {
		c.AI.Providers = []AIProviderConfig{{Name: "openrouter", Model: defaultOpenRouterModel}}
	}
	for i, p := range c.AI.Providers {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("ai.providers[%d].name is required", i)
		}
		if strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("ai.providers[%d].model is required", i)
		}
	}
	if c.FileStore != nil && strings.TrimSpace(c.FileStore.Type) == "" {
		c.FileStore.Type = "local"
	}
	if c.DocumentExpiry.TTLHours < 0 {
		return fmt.Errorf("document_expiry.ttl_hours must not be negative")
	}
	if c.DocumentExpiry.Cron == "" {
		c.DocumentExpiry.Cron = defaultExpiryCron
	}
	return nil
}

func (c *RAGConfig) normalize() error {
	if c.ChunkTargetSize == 0 {
		c.ChunkTargetSize = defaultChunkTargetSize
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = defaultChunkOverlap
	}
	if c.ChunkOverlap <= 0 || c.ChunkOverlap >= c.ChunkTargetSize {
		return fmt.Errorf("rag.chunk_overlap must be positive and smaller than rag.chunk_target_size")
	}
	if c.RetrievalK == 0 {
		c.RetrievalK = defaultRetrievalK
	}
	if c.RetrievalK < 0 {
		return fmt.Errorf("rag.retrieval_k must be positive")
	}
	if c.PromptCharBudget == 0 {
		c.PromptCharBudget = defaultPromptCharBudget
	}
	if c.PromptCharBudget < 0 {
		return fmt.Errorf("rag.prompt_char_budget must be positive")
	}
	if c.CompletionTimeoutSeconds == 0 {
		c.CompletionTimeoutSeconds = defaultCompletionSecs
	}
	if c.CompletionTimeoutSeconds < 0 {
		return fmt.Errorf("rag.completion_timeout_seconds must be positive")
	}
	if c.AnswerCacheSize == 0 {
		c.AnswerCacheSize = defaultCacheSize
	}
	if c.AnswerCacheTTLMinutes == 0 {
		c.AnswerCacheTTLMinutes = defaultCacheTTLMinutes
	}
	return nil
}
