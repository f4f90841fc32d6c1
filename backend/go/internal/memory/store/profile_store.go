package store

import (
	"context"
	"fmt"
	"time"

	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/internal/vectorstore"
)

// ProfileStore keeps facts as "profile" records in the shared vector index. Lookups
// use metadata filtering only, so records carry a placeholder vector.
type ProfileStore struct {
	vectors vectorstore.Store
	now     func() time.Time
}

// NewProfileStore creates a new ProfileStore.
func NewProfileStore(vectors vectorstore.Store) *ProfileStore {
	return &ProfileStore{vectors: vectors, now: time.Now}
}

// ProfileID formats the record id of a fact. It is stable per (session, key), so an
// overwrite replaces the existing record.
func ProfileID(sessionID, key string) string {
	return fmt.Sprintf("%s_profile_%s", sessionID, key)
}

func (s *ProfileStore) Upsert(ctx context.Context, sessionID, key, value string) error {
	rec := vectorstore.Record{
		ID:     ProfileID(sessionID, key),
		Vector: vectorstore.PlaceholderVector(s.vectors.Dimension()),
		Metadata: vectorstore.Metadata{
			SessionID:    sessionID,
			Type:         string(models.RecordProfile),
			ProfileKey:   key,
			ProfileValue: value,
			Timestamp:    s.now().UnixMilli(),
		},
	}
	if err := s.vectors.Upsert(ctx, []vectorstore.Record{rec}); err != nil {
		return fmt.Errorf("upsert profile %s: %w", key, err)
	}
	return nil
}

func (s *ProfileStore) Profile(ctx context.Context, sessionID string) (models.Profile, error) {
	records, err := s.vectors.Filter(ctx, vectorstore.Filter{
		vectorstore.FieldSessionID: sessionID,
		vectorstore.FieldType:      string(models.RecordProfile),
	}, MaxProfileFacts)
	if err != nil {
		return nil, fmt.Errorf("profile of %s: %w", sessionID, err)
	}
	profile := make(models.Profile, len(records))
	for _, r := range records {
		profile[r.Metadata.ProfileKey] = r.Metadata.ProfileValue
	}
	return profile, nil
}
