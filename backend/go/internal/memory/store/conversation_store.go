package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/internal/vectorstore"
)

// ConversationStore keeps turns as "conversation" records in the shared vector index.
type ConversationStore struct {
	vectors vectorstore.Store
	now     func() time.Time
}

// NewConversationStore creates a new ConversationStore.
func NewConversationStore(vectors vectorstore.Store) *ConversationStore {
	return &ConversationStore{vectors: vectors, now: time.Now}
}

// TurnID formats the record id of a turn.
func TurnID(sessionID string, ts time.Time, role models.SpeakerRole) string {
	return fmt.Sprintf("%s_%d_%s", sessionID, ts.UnixMilli(), role)
}

func (s *ConversationStore) Append(ctx context.Context, sessionID string, role models.SpeakerRole, content string, vector []float32) error {
	ts := s.now()
	rec := vectorstore.Record{
		ID:     TurnID(sessionID, ts, role),
		Vector: vector,
		Metadata: vectorstore.Metadata{
			Content:   content,
			Role:      string(role),
			SessionID: sessionID,
			Type:      string(models.RecordConversation),
			Timestamp: ts.UnixMilli(),
		},
	}
	if err := s.vectors.Upsert(ctx, []vectorstore.Record{rec}); err != nil {
		return fmt.Errorf("append %s turn: %w", role, err)
	}
	return nil
}

// History fetches a wide candidate set by metadata, orders it by timestamp and keeps
// the newest limit turns. A user turn sorts before an assistant turn with the same
// timestamp.
func (s *ConversationStore) History(ctx context.Context, sessionID string, limit int) ([]models.ConversationTurn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	records, err := s.vectors.Filter(ctx, vectorstore.Filter{
		vectorstore.FieldSessionID: sessionID,
		vectorstore.FieldType:      string(models.RecordConversation),
	}, candidates(limit))
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", sessionID, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Metadata, records[j].Metadata
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return roleOrder(a.Role) < roleOrder(b.Role)
	})
	if len(records) > limit {
		records = records[len(records)-limit:]
	}

	turns := make([]models.ConversationTurn, len(records))
	for i, r := range records {
		turns[i] = models.ConversationTurn{
			ID:        r.ID,
			SessionID: r.Metadata.SessionID,
			Role:      models.SpeakerRole(r.Metadata.Role),
			Content:   r.Metadata.Content,
			Timestamp: time.UnixMilli(r.Metadata.Timestamp),
		}
	}
	return turns, nil
}

func roleOrder(role string) int {
	if role == string(models.SpeakerUser) {
		return 0
	}
	return 1
}
