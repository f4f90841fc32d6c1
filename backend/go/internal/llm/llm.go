package llm

import (
	"context"
	"fmt"
	"time"

	"Concierge/backend/go/internal/config"
	"Concierge/backend/go/internal/models"
)

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
}

// NewClient 根据配置中的提供商创建并返回一个实现了 LLM 接口的客户端。
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	case "openai":
		return NewOpenAI(cfg.OpenAI)
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// WithTimeout 为每次调用加上超时。d <= 0 时原样返回。
func WithTimeout(inner LLM, d time.Duration) LLM {
	if d <= 0 {
		return inner
	}
	return &timeoutLLM{inner: inner, timeout: d}
}

type timeoutLLM struct {
	inner   LLM
	timeout time.Duration
}

func (t *timeoutLLM) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.GenerateContent(ctx, req)
}

// roleOf 把内部角色映射为 OpenAI/Ollama 的角色名。
func roleOf(r models.SpeakerRole) string {
	switch r {
	case models.SpeakerModel, models.SpeakerAssistant:
		return "assistant"
	case models.SpeakerSystem:
		return "system"
	default:
		return "user"
	}
}

func textOf(c models.Content) string {
	var s string
	for _, p := range c.Parts {
		if p != nil {
			s += p.Text
		}
	}
	return s
}
