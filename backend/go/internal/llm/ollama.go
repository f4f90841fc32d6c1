package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"Concierge/backend/go/internal/models"

	olla "github.com/ollama/ollama/api"
)

// Ollama 是一个用于 Ollama API 的 LLM 客户端。
type Ollama struct {
	client *olla.Client
	model  string
}

// NewOllama 创建一个新的 Ollama 客户端。baseURL 为空时默认为 "http://localhost:11434"。
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	hc := &http.Client{Timeout: 120 * time.Second}
	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// GenerateContent 使用 Ollama Chat 接口生成内容（非流式）。
func (o *Ollama) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	stream := false
	var result *olla.ChatResponse
	err := o.client.Chat(ctx, o.toChatRequest(req, &stream), func(resp olla.ChatResponse) error {
		result = &resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("ollama returned no response")
	}
	return &models.GenerateContentResponse{
		Content:      []models.Content{models.NewTextContent(models.SpeakerModel, result.Message.Content)},
		CreateTime:   result.CreatedAt,
		ModelVersion: result.Model,
	}, nil
}

func (o *Ollama) toChatRequest(req *models.GenerateContentRequest, stream *bool) *olla.ChatRequest {
	messages := make([]olla.Message, 0, len(req.Content)+1)
	if req.SystemInstruction != "" {
		messages = append(messages, olla.Message{Role: "system", Content: req.SystemInstruction})
	}
	for _, c := range req.Content {
		messages = append(messages, olla.Message{Role: roleOf(c.Role), Content: textOf(c)})
	}
	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	return &olla.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   stream,
		Options:  options,
	}
}
