package llm

import (
	"context"
	"fmt"

	"Concierge/backend/go/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个实现了 LLM 接口的结构体，用于与 Gemini API 交互。
// 每次调用都会基于同一个 client 创建新的 GenerativeModel，采样参数与系统指令互不影响。
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini 创建一个新的 Gemini 客户端。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("无法创建 GenAI 客户端: %w", err)
	}
	return &Gemini{client: client, modelName: model}, nil
}

// GenerateContent 向 Gemini API 发送请求并返回响应。最后一条内容作为本轮消息，其余作为历史。
func (g *Gemini) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("gemini request has no content")
	}
	model := g.client.GenerativeModel(g.modelName)
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	session := model.StartChat()
	last := len(req.Content) - 1
	for _, c := range req.Content[:last] {
		session.History = append(session.History, toGenaiContent(c))
	}
	resp, err := session.SendMessage(ctx, toGenaiContent(req.Content[last]).Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content failed: %w", err)
	}
	return fromGenaiResponse(resp), nil
}

// Close 释放底层客户端。
func (g *Gemini) Close() error {
	return g.client.Close()
}

func toGenaiContent(c models.Content) *genai.Content {
	role := "user"
	if c.Role == models.SpeakerModel || c.Role == models.SpeakerAssistant {
		role = "model"
	}
	out := &genai.Content{Role: role}
	for _, p := range c.Parts {
		if p != nil && p.Text != "" {
			out.Parts = append(out.Parts, genai.Text(p.Text))
		}
	}
	return out
}

// fromGenaiResponse 只保留文本部分。
func fromGenaiResponse(resp *genai.GenerateContentResponse) *models.GenerateContentResponse {
	out := &models.GenerateContentResponse{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		content := models.Content{Role: models.SpeakerModel}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				content.Parts = append(content.Parts, &models.Part{Text: string(t)})
			}
		}
		out.Content = append(out.Content, content)
	}
	return out
}
