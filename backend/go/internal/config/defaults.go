package config

import (
	"errors"
	"fmt"
)

// Default values used when the YAML leaves a field empty.
const (
	DefaultChunkSize     = 1000
	DefaultOverlap       = 200
	DefaultTopK          = 5
	DefaultMinScore      = 0.70
	DefaultDimension     = 1536
	DefaultTemperature   = 0.7
	DefaultMaxTokens     = 300
	DefaultHistoryLimit  = 10
	DefaultHistoryWindow = 6
)

// ApplyDefaults fills zero values.
func (c *AppConfig) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "concierge"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = c.LLM.Provider
	}
	if c.Embedding.OpenAI.Model == "" {
		c.Embedding.OpenAI.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimension == 0 {
		c.Embedding.Dimension = DefaultDimension
	}
	if c.Embedding.Cache.Capacity == 0 {
		c.Embedding.Cache.Capacity = 1024
	}
	if c.VectorStore.Backend == "" {
		c.VectorStore.Backend = "memory"
	}

	k := &c.Knowledge
	if k.ChunkSize == 0 {
		k.ChunkSize = DefaultChunkSize
	}
	if k.Overlap == 0 {
		k.Overlap = DefaultOverlap
	}
	if k.TopK == 0 {
		k.TopK = DefaultTopK
	}
	if k.MinScore == 0 {
		k.MinScore = DefaultMinScore
	}
	if k.BatchSize == 0 {
		k.BatchSize = 16
	}
	if k.Concurrency == 0 {
		k.Concurrency = 4
	}

	a := &c.Assistant
	if a.Persona == "" {
		a.Persona = "agency"
	}
	if a.Temperature == 0 {
		a.Temperature = DefaultTemperature
	}
	if a.MaxTokens == 0 {
		a.MaxTokens = DefaultMaxTokens
	}
	if a.HistoryLimit == 0 {
		a.HistoryLimit = DefaultHistoryLimit
	}
	if a.HistoryWindow == 0 {
		a.HistoryWindow = DefaultHistoryWindow
	}

	if c.Profile.Backend == "" {
		c.Profile.Backend = "vector"
	}
	if c.Analytics.Topic == "" {
		c.Analytics.Topic = "assistant_interactions"
	}

	m := &c.Databases.Milvus.Schema
	if m.CollectionName == "" {
		m.CollectionName = "concierge_records"
	}
	if m.VectorField == "" {
		m.VectorField = "embedding"
	}
	if m.Index.FieldName == "" {
		m.Index.FieldName = m.VectorField
	}
	if m.Index.IndexType == "" {
		m.Index.IndexType = "HNSW"
	}
	if m.Index.MetricType == "" {
		m.Index.MetricType = "COSINE"
	}
	if c.Databases.MongoDB.Database == "" {
		c.Databases.MongoDB.Database = "concierge"
	}
	if c.Databases.MongoDB.Collection == "" {
		c.Databases.MongoDB.Collection = "leads"
	}
	if c.Databases.Redis.KeyPrefix == "" {
		c.Databases.Redis.KeyPrefix = "concierge:profile:"
	}

	rl := &c.Middleware.RateLimiter
	if rl.Algorithm == "" {
		rl.Algorithm = "tokenBucket"
	}
	if rl.MaxClients == 0 {
		rl.MaxClients = 10000
	}
	if rl.TokenBucket.Rate == 0 {
		rl.TokenBucket.Rate = 1
	}
	if rl.TokenBucket.Capacity == 0 {
		rl.TokenBucket.Capacity = 10
	}
	cb := &c.Middleware.CircuitBreaker
	if cb.FailureThreshold == 0 {
		cb.FailureThreshold = 5
	}
	if cb.SuccessThreshold == 0 {
		cb.SuccessThreshold = 2
	}
	if cb.Timeout == "" {
		cb.Timeout = "30s"
	}
}

// ApplyEnv overrides secrets and the listen address from the environment.
func (c *AppConfig) ApplyEnv(getenv func(string) string) {
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAI.APIKey = v
		c.Embedding.OpenAI.APIKey = v
	}
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.Gemini.APIKey = v
		c.Embedding.Gemini.APIKey = v
	}
	if v := getenv("OLLAMA_HOST"); v != "" {
		c.LLM.Ollama.BaseURL = v
		c.Embedding.Ollama.BaseURL = v
	}
	if v := getenv("CONCIERGE_HTTP_ADDR"); v != "" {
		c.Server.Address = v
	}
}

var knownProviders = map[string]bool{"openai": true, "ollama": true, "gemini": true}

// Validate rejects combinations the service cannot start with.
func (c *AppConfig) Validate() error {
	var errs []error
	if !knownProviders[c.LLM.Provider] {
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	if !knownProviders[c.Embedding.Provider] {
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider))
	}
	if c.Embedding.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("embedding dimension must be positive, got %d", c.Embedding.Dimension))
	}
	switch c.VectorStore.Backend {
	case "memory":
	case "milvus":
		if c.Databases.Milvus.Address == "" {
			errs = append(errs, errors.New("vectorStore.backend is milvus but databases.milvus.address is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown vector store backend %q", c.VectorStore.Backend))
	}
	switch c.Profile.Backend {
	case "vector":
	case "redis":
		if c.Databases.Redis.Address == "" {
			errs = append(errs, errors.New("profile.backend is redis but databases.redis.address is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown profile backend %q", c.Profile.Backend))
	}
	if c.Knowledge.ChunkSize <= 0 || c.Knowledge.Overlap < 0 || c.Knowledge.Overlap >= c.Knowledge.ChunkSize {
		errs = append(errs, fmt.Errorf("invalid chunking: chunkSize=%d overlap=%d", c.Knowledge.ChunkSize, c.Knowledge.Overlap))
	}
	if c.Assistant.Persona != "agency" && c.Assistant.Persona != "legal" {
		errs = append(errs, fmt.Errorf("unknown persona %q", c.Assistant.Persona))
	}
	if c.Leads.Enabled && c.Databases.MongoDB.Address == "" {
		errs = append(errs, errors.New("leads.enabled requires databases.mongodb.address"))
	}
	if c.Analytics.Publish && len(c.Databases.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("analytics.publish requires databases.kafka.brokers"))
	}
	switch c.Middleware.RateLimiter.Algorithm {
	case "tokenBucket", "fixedWindow":
	default:
		errs = append(errs, fmt.Errorf("unknown rate limiter algorithm %q", c.Middleware.RateLimiter.Algorithm))
	}
	return errors.Join(errs...)
}
