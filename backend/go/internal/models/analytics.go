package models

import "time"

// Outcome 表示一个会话的最终状态。
type Outcome string

const (
	OutcomeActive       Outcome = "active"
	OutcomeLeadCaptured Outcome = "lead_captured"
	OutcomeAbandoned    Outcome = "abandoned"
)

// InteractionType 表示一次交互事件的类型。
type InteractionType string

const (
	InteractionUserMessage InteractionType = "user_message"
	InteractionAIResponse  InteractionType = "ai_response"
	InteractionError       InteractionType = "error"
)

// InteractionEvent 是会话内的一次交互记录，内容最多保留 100 个字符。
type InteractionEvent struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"sessionId"`
	Type        InteractionType `json:"type"`
	Content     string          `json:"content"`
	Intent      string          `json:"intent"`
	LeadTrigger bool            `json:"leadTrigger"`
	Latency     time.Duration   `json:"latency,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// SessionRecord 只存在于进程内存中，进程重启后丢失。
type SessionRecord struct {
	SessionID        string             `json:"sessionId"`
	StartTime        time.Time          `json:"startTime"`
	LastActivity     time.Time          `json:"lastActivity"`
	InteractionCount int                `json:"interactions"`
	Events           []InteractionEvent `json:"events"`
	LeadScore        float64            `json:"leadScore"`
	Profile          Profile            `json:"profile"`
	Topics           []string           `json:"topics"`
	Outcome          Outcome            `json:"outcome"`
}

// DailyAnalytics 是某一天统计数据的快照。
type DailyAnalytics struct {
	Date           string         `json:"date"`
	TotalMessages  int            `json:"totalMessages"`
	TotalSessions  int            `json:"totalSessions"`
	LeadsGenerated int            `json:"leadsGenerated"`
	TopIntents     map[string]int `json:"topIntents"`
	ConversionRate string         `json:"conversionRate"`
}
