// Package vectorstore is the storage boundary for every persisted record: knowledge
// chunks, conversation turns and profile facts share one index and are told apart by
// the "type" metadata field.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"Concierge/backend/go/internal/models"
)

var (
	// ErrDimensionMismatch is returned when a vector's length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrNotConfigured is returned by callers that were built without a store.
	ErrNotConfigured = errors.New("vector store not configured")
)

// Metadata field names. They are part of the persisted schema.
const (
	FieldContent      = "content"
	FieldRole         = "role"
	FieldSessionID    = "sessionId"
	FieldType         = "type"
	FieldProfileKey   = "profileKey"
	FieldProfileValue = "profileValue"
	FieldSource       = "source"
	FieldHasPortfolio = "hasPortfolio"
	FieldHasProcess   = "hasProcess"
	FieldHasPricing   = "hasPricing"
	FieldHasServices  = "hasServices"
	FieldTimestamp    = "timestamp"
)

// Metadata is the flat attribute set stored next to each vector.
type Metadata struct {
	Content      string `json:"content"`
	Role         string `json:"role,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	Type         string `json:"type"`
	ProfileKey   string `json:"profileKey,omitempty"`
	ProfileValue string `json:"profileValue,omitempty"`
	Source       string `json:"source,omitempty"`
	HasPortfolio bool   `json:"hasPortfolio,omitempty"`
	HasProcess   bool   `json:"hasProcess,omitempty"`
	HasPricing   bool   `json:"hasPricing,omitempty"`
	HasServices  bool   `json:"hasServices,omitempty"`
	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// Field returns the value of a metadata field by its persisted name.
func (m Metadata) Field(name string) (interface{}, bool) {
	switch name {
	case FieldContent:
		return m.Content, true
	case FieldRole:
		return m.Role, true
	case FieldSessionID:
		return m.SessionID, true
	case FieldType:
		return m.Type, true
	case FieldProfileKey:
		return m.ProfileKey, true
	case FieldProfileValue:
		return m.ProfileValue, true
	case FieldSource:
		return m.Source, true
	case FieldHasPortfolio:
		return m.HasPortfolio, true
	case FieldHasProcess:
		return m.HasProcess, true
	case FieldHasPricing:
		return m.HasPricing, true
	case FieldHasServices:
		return m.HasServices, true
	case FieldTimestamp:
		return m.Timestamp, true
	}
	return nil, false
}

// Matches reports whether every filter entry equals the corresponding field.
func (m Metadata) Matches(f Filter) bool {
	for k, want := range f {
		got, ok := m.Field(k)
		if !ok || !equal(got, want) {
			return false
		}
	}
	return true
}

func equal(got, want interface{}) bool {
	switch w := want.(type) {
	case models.RecordType:
		return got == string(w)
	case models.SpeakerRole:
		return got == string(w)
	case int:
		return got == int64(w)
	}
	return got == want
}

// Filter is an exact-match predicate over metadata fields.
type Filter map[string]interface{}

// Record is one vector with its metadata.
type Record struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// Match is a similarity query hit. Higher Score is more similar.
type Match struct {
	Record
	Score float32
}

// Store is implemented by every vector backend.
type Store interface {
	// Upsert inserts or replaces records by ID.
	Upsert(ctx context.Context, records []Record) error
	// Query returns up to topK records matching filter, ordered by descending similarity.
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error)
	// Filter returns up to limit records matching filter without a similarity ranking,
	// newest timestamp first. Vectors are not populated.
	Filter(ctx context.Context, filter Filter, limit int) ([]Record, error)
	// Dimension is the fixed vector length of the index.
	Dimension() int
}

// CheckDimension validates v against dim.
func CheckDimension(v []float32, dim int) error {
	if len(v) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), dim)
	}
	return nil
}

// PlaceholderVector returns a unit vector of length dim, used for records whose
// content is not meant to be searched by similarity.
func PlaceholderVector(dim int) []float32 {
	v := make([]float32, dim)
	if dim > 0 {
		v[0] = 1
	}
	return v
}

// NewestFirst orders records by descending timestamp, keeping the existing order of
// ties, and truncates to limit when limit > 0.
func NewestFirst(records []Record, limit int) []Record {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Metadata.Timestamp > records[j].Metadata.Timestamp
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
