package models

import "time"

// Lead is a captured commercial signal, written when a turn trips the lead trigger.
type Lead struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"sessionId" bson:"session_id"`
	Intent    string    `json:"intent" bson:"intent"`
	Message   string    `json:"message" bson:"message"`
	Profile   Profile   `json:"profile,omitempty" bson:"profile,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
