// Package store persists per-session conversation turns and profile facts.
package store

import (
	"context"

	"Concierge/backend/go/internal/models"
)

const (
	// DefaultHistoryLimit is the number of turns returned by History when limit <= 0.
	DefaultHistoryLimit = 10
	// MaxProfileFacts bounds how many facts a profile read returns.
	MaxProfileFacts = 5

	candidateFactor = 5
	minCandidates   = 50
)

// ConversationMemory stores the turns of a session.
type ConversationMemory interface {
	// Append writes one turn. vector must match the backing index dimension.
	Append(ctx context.Context, sessionID string, role models.SpeakerRole, content string, vector []float32) error
	// History returns up to limit of the newest turns, oldest first.
	History(ctx context.Context, sessionID string, limit int) ([]models.ConversationTurn, error)
}

// ProfileRepository stores profile facts keyed by (session, key).
type ProfileRepository interface {
	// Upsert writes or overwrites a single fact.
	Upsert(ctx context.Context, sessionID, key, value string) error
	// Profile returns at most MaxProfileFacts facts of the session.
	Profile(ctx context.Context, sessionID string) (models.Profile, error)
}

// candidates is the number of records fetched before sorting by timestamp.
func candidates(limit int) int {
	return max(limit*candidateFactor, minCandidates)
}
