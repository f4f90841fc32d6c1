package embedding

import (
	"fmt"

	"Concierge/backend/go/internal/config"
)

// NewEmdModel 根据配置中的提供商创建 Embedding 模型实例。
// 开启缓存时，返回的模型会被 Cached 包装。
func NewEmdModel(cfg config.EmbeddingConfig) (Embedding, error) {
	var (
		model Embedding
		err   error
	)
	switch ModelType(cfg.Provider) {
	case Gemini:
		model, err = NewGoogleModel(cfg.Gemini.APIKey, cfg.Gemini.Model)
	case OpenAI:
		model, err = NewOpenAIModel(cfg.OpenAI, cfg.Dimension)
	case Ollama:
		model, err = NewOllamaModel(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("初始化 %s embedding 模型失败: %w", cfg.Provider, err)
	}

	if cfg.Cache.Enabled {
		return NewCached(model, cfg.Cache.Capacity, config.Duration(cfg.Cache.TTL, 0))
	}
	return model, nil
}
