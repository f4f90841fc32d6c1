package models

import (
	"strings"
	"time"
)

// SpeakerRole 定义了消息发送者的角色。
type SpeakerRole string

const (
	SpeakerUser      SpeakerRole = "user"      // 用户角色。
	SpeakerAssistant SpeakerRole = "assistant" // 助手角色。
	SpeakerSystem    SpeakerRole = "system"    // 系统指令。
	SpeakerModel     SpeakerRole = "model"     // 模型角色。
)

// Content 包含了构成单个消息的多个部分。
type Content struct {
	// 可选。构成单个消息的部分列表。
	Parts []*Part `json:"parts,omitempty"`
	// 可选。内容的生产者。
	Role SpeakerRole `json:"role,omitempty"`
}

// Part 定义了消息的单个部分。这里只保留文本。
type Part struct {
	Text string `json:"text,omitempty"`
}

// NewTextContent 创建只包含一段文本的 Content。
func NewTextContent(role SpeakerRole, text string) Content {
	return Content{Role: role, Parts: []*Part{{Text: text}}}
}

// GenerateContentRequest 定义了生成内容的请求结构。
type GenerateContentRequest struct {
	SystemInstruction string    `json:"systemInstruction,omitempty"` // 系统指令。
	Content           []Content `json:"content,omitempty"`           // 请求的内容列表。
	Temperature       float32   `json:"temperature,omitempty"`       // 采样温度。
	MaxTokens         int       `json:"maxTokens,omitempty"`         // 最大输出 token 数。
}

// GenerateContentResponse 定义了生成内容的响应结构。
type GenerateContentResponse struct {
	Content      []Content `json:"content,omitempty"`      // 响应的内容列表。
	CreateTime   time.Time `json:"createTime,omitempty"`   // 响应创建时间。
	ResponseID   string    `json:"responseId,omitempty"`   // 响应ID。
	ModelVersion string    `json:"modelVersion,omitempty"` // 模型版本。
}

// Text 拼接第一个候选内容中的全部文本。
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Content[0].Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
