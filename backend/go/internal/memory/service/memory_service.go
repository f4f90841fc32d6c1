package service

import (
	"context"
	"fmt"

	"Concierge/backend/go/internal/embedding"
	"Concierge/backend/go/internal/memory/extractor"
	"Concierge/backend/go/internal/memory/store"
	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/pkg/logger"
)

// MemoryService reads and writes what the assistant remembers about a session.
// Reads degrade to empty results; write failures are logged and dropped unless the
// caller asks for the error.
type MemoryService struct {
	conversations store.ConversationMemory
	profiles      store.ProfileRepository
	embedder      embedding.Embedding
	logger        *logger.Logger
}

// NewMemoryService creates a new MemoryService.
func NewMemoryService(conversations store.ConversationMemory, profiles store.ProfileRepository, embedder embedding.Embedding, logger *logger.Logger) *MemoryService {
	return &MemoryService{
		conversations: conversations,
		profiles:      profiles,
		embedder:      embedder,
		logger:        logger,
	}
}

// History returns the newest turns of a session, or nil if they cannot be read.
func (s *MemoryService) History(ctx context.Context, sessionID string, limit int) []models.ConversationTurn {
	turns, err := s.conversations.History(ctx, sessionID, limit)
	if err != nil {
		s.logger.WithSession(sessionID).WithError(models.ErrorInfo{Message: err.Error()}).Warn("failed to load history")
		return nil
	}
	return turns
}

// Profile returns the stored facts of a session, or an empty profile if they cannot be read.
func (s *MemoryService) Profile(ctx context.Context, sessionID string) models.Profile {
	profile, err := s.profiles.Profile(ctx, sessionID)
	if err != nil {
		s.logger.WithSession(sessionID).WithError(models.ErrorInfo{Message: err.Error()}).Warn("failed to load profile")
		return models.Profile{}
	}
	return profile
}

// LearnProfile extracts facts from text and upserts each one. It returns the extracted
// facts whether or not they were stored.
func (s *MemoryService) LearnProfile(ctx context.Context, sessionID, text string) models.Profile {
	facts := extractor.Extract(text)
	for _, key := range facts.Keys() {
		if err := s.profiles.Upsert(ctx, sessionID, key, facts[key]); err != nil {
			s.logger.WithSession(sessionID).WithError(models.ErrorInfo{Message: err.Error()}).WithField("profile_key", key).Error("failed to store profile fact")
		}
	}
	return facts
}

// AddMemory embeds both sides of a turn and appends them, user first.
func (s *MemoryService) AddMemory(ctx context.Context, sessionID, userMessage, reply string) error {
	vectors, err := s.embedder.EmbedBatch(ctx, []string{userMessage, reply})
	if err != nil {
		return fmt.Errorf("failed to embed turn: %w", err)
	}
	if len(vectors) != 2 {
		return fmt.Errorf("failed to embed turn: got %d vectors", len(vectors))
	}
	if err := s.conversations.Append(ctx, sessionID, models.SpeakerUser, userMessage, vectors[0]); err != nil {
		return err
	}
	return s.conversations.Append(ctx, sessionID, models.SpeakerAssistant, reply, vectors[1])
}
