package models

import "time"

// ConversationTurn is one persisted message of a session.
type ConversationTurn struct {
	ID        string      `json:"id"`
	SessionID string      `json:"sessionId"`
	Role      SpeakerRole `json:"role"`
	Content   string      `json:"content"`
	Embedding []float32   `json:"-"`
	Timestamp time.Time   `json:"timestamp"`
}
