package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, int64(20*1024*1024), cfg.MaxUploadSize)
	require.Equal(t, 1000, cfg.RAG.ChunkTargetSize)
	require.Equal(t, 200, cfg.RAG.ChunkOverlap)
	require.Equal(t, 3, cfg.RAG.RetrievalK)
	require.Equal(t, 6000, cfg.RAG.PromptCharBudget)
	require.Equal(t, 30*time.Second, cfg.RAG.CompletionTimeout())
	require.Equal(t, 2*time.Hour, cfg.RAG.AnswerCacheTTL())
	require.Len(t, cfg.AI.Providers, 1)
	require.Equal(t, "openrouter", cfg.AI.Providers[0].Name)
	require.Nil(t, cfg.FileStore)
	require.Zero(t, cfg.DocumentExpiry.TTL())
	require.Equal(t, "*/10 * * * *", cfg.DocumentExpiry.Cron)
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"port": 9000,
		"cors_allowlist": ["http://localhost:3000"],
		"rag": {"chunk_target_size": 400, "chunk_overlap": 50, "retrieval_k": 5},
		"ai": {"providers": [
			{"name": "openai", "model": "gpt-4o-mini", "data": {"api_key": "k"}},
			{"name": "gemini", "model": "gemini-2.0-flash"}
		]},
		"file_store": {"data": {"dir": "./uploads"}},
		"document_expiry": {"ttl_hours": 24}
	}`))
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowlist)
	require.Equal(t, 400, cfg.RAG.ChunkTargetSize)
	require.Equal(t, 50, cfg.RAG.ChunkOverlap)
	require.Equal(t, 5, cfg.RAG.RetrievalK)
	require.Len(t, cfg.AI.Providers, 2)
	require.Equal(t, map[string]interface{}{"api_key": "k"}, cfg.AI.Providers[0].Data)
	require.NotNil(t, cfg.FileStore)
	require.Equal(t, "local", cfg.FileStore.Type)
	require.Equal(t, 24*time.Hour, cfg.DocumentExpiry.TTL())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "overlap not below target", body: `{"rag": {"chunk_target_size": 100, "chunk_overlap": 100}}`},
		{name: "negative overlap", body: `{"rag": {"chunk_overlap": -1}}`},
		{name: "negative k", body: `{"rag": {"retrieval_k": -2}}`},
		{name: "negative timeout", body: `{"rag": {"completion_timeout_seconds": -1}}`},
		{name: "provider without model", body: `{"ai": {"providers": [{"name": "openai"}]}}`},
		{name: "bad port", body: `{"port": 70000}`},
		{name: "not json", body: `port=8000`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
