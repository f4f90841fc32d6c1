package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("app:\n  name: test\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Knowledge.ChunkSize != 1000 || cfg.Knowledge.Overlap != 200 {
		t.Errorf("chunking defaults = %d/%d", cfg.Knowledge.ChunkSize, cfg.Knowledge.Overlap)
	}
	if cfg.Knowledge.TopK != 5 || cfg.Knowledge.MinScore != 0.70 {
		t.Errorf("retrieval defaults = %d/%v", cfg.Knowledge.TopK, cfg.Knowledge.MinScore)
	}
	if cfg.Assistant.Temperature != 0.7 || cfg.Assistant.MaxTokens != 300 {
		t.Errorf("model defaults = %v/%d", cfg.Assistant.Temperature, cfg.Assistant.MaxTokens)
	}
	if cfg.Assistant.HistoryLimit != 10 || cfg.Assistant.HistoryWindow != 6 {
		t.Errorf("history defaults = %d/%d", cfg.Assistant.HistoryLimit, cfg.Assistant.HistoryWindow)
	}
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("dimension = %d", cfg.Embedding.Dimension)
	}
	if cfg.VectorStore.Backend != "memory" || cfg.Profile.Backend != "vector" {
		t.Errorf("backends = %s/%s", cfg.VectorStore.Backend, cfg.Profile.Backend)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
llm:
  provider: ollama
  ollama:
    model: llama3
embedding:
  provider: ollama
  dimension: 768
knowledge:
  chunkSize: 500
  overlap: 100
assistant:
  persona: legal
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Ollama.Model != "llama3" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Embedding.Dimension != 768 || cfg.Knowledge.ChunkSize != 500 {
		t.Errorf("embedding/knowledge not loaded: %d %d", cfg.Embedding.Dimension, cfg.Knowledge.ChunkSize)
	}
	if cfg.Assistant.Persona != "legal" {
		t.Errorf("persona = %s", cfg.Assistant.Persona)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	env := map[string]string{
		"OPENAI_API_KEY":      "sk-test",
		"OLLAMA_HOST":         "http://ollama:11434",
		"CONCIERGE_HTTP_ADDR": ":9090",
	}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.LLM.OpenAI.APIKey != "sk-test" || cfg.Embedding.OpenAI.APIKey != "sk-test" {
		t.Error("OPENAI_API_KEY not applied to both llm and embedding")
	}
	if cfg.LLM.Ollama.BaseURL != "http://ollama:11434" {
		t.Errorf("ollama host = %s", cfg.LLM.Ollama.BaseURL)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("address = %s", cfg.Server.Address)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"unknown provider", func(c *AppConfig) { c.LLM.Provider = "anthropic" }, "unknown llm provider"},
		{"overlap too large", func(c *AppConfig) { c.Knowledge.Overlap = c.Knowledge.ChunkSize }, "invalid chunking"},
		{"milvus without address", func(c *AppConfig) { c.VectorStore.Backend = "milvus" }, "databases.milvus.address"},
		{"redis without address", func(c *AppConfig) { c.Profile.Backend = "redis" }, "databases.redis.address"},
		{"bad persona", func(c *AppConfig) { c.Assistant.Persona = "pirate" }, "unknown persona"},
		{"negative dimension", func(c *AppConfig) { c.Embedding.Dimension = -1 }, "dimension must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &AppConfig{}
			cfg.ApplyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	if d := Duration("", time.Second); d != time.Second {
		t.Errorf("empty = %v", d)
	}
	if d := Duration("bogus", time.Second); d != time.Second {
		t.Errorf("bogus = %v", d)
	}
	if d := Duration("90s", time.Second); d != 90*time.Second {
		t.Errorf("90s = %v", d)
	}
}
