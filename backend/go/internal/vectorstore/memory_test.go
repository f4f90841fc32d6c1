package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"Concierge/backend/go/internal/models"
)

func TestMemoryStoreQueryRanksByCosine(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	err := s.Upsert(ctx, []Record{
		{ID: "east", Vector: []float32{1, 0}, Metadata: Metadata{Type: "knowledge", Content: "east"}},
		{ID: "north", Vector: []float32{0, 1}, Metadata: Metadata{Type: "knowledge", Content: "north"}},
		{ID: "northeast", Vector: []float32{1, 1}, Metadata: Metadata{Type: "knowledge", Content: "ne"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	matches, err := s.Query(ctx, []float32{1, 0.1}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
	if matches[0].ID != "east" || matches[1].ID != "northeast" {
		t.Errorf("order = %s, %s", matches[0].ID, matches[1].ID)
	}
	if matches[0].Metadata.Content != "east" {
		t.Error("metadata not returned with match")
	}
}

func TestMemoryStoreFilterOnMetadata(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)
	s.Upsert(ctx, []Record{
		{ID: "a", Vector: []float32{1, 0}, Metadata: Metadata{Type: "knowledge", HasPricing: true}},
		{ID: "b", Vector: []float32{1, 0}, Metadata: Metadata{Type: "knowledge"}},
		{ID: "c", Vector: []float32{1, 0}, Metadata: Metadata{Type: "conversation", SessionID: "s1"}},
	})

	matches, _ := s.Query(ctx, []float32{1, 0}, 5, Filter{FieldType: models.RecordKnowledge, FieldHasPricing: true})
	if len(matches) != 1 || matches[0].ID != "a" {
		t.Errorf("filtered query = %+v", matches)
	}

	recs, err := s.Filter(ctx, Filter{FieldSessionID: "s1"}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ID != "c" {
		t.Errorf("Filter() = %+v", recs)
	}
	if recs[0].Vector != nil {
		t.Error("Filter should not return vectors")
	}
}

func TestMemoryStoreFilterLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(1)
	for i := 0; i < 7; i++ {
		s.Upsert(ctx, []Record{{ID: fmt.Sprintf("r%d", i), Vector: []float32{1}, Metadata: Metadata{Type: "profile"}}})
	}
	recs, _ := s.Filter(ctx, Filter{FieldType: "profile"}, 5)
	if len(recs) != 5 {
		t.Errorf("len = %d, want 5", len(recs))
	}
	if recs[0].ID != "r0" {
		t.Errorf("first = %s, want insertion order for equal timestamps", recs[0].ID)
	}
}

func TestMemoryStoreFilterNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(1)
	for i := 0; i < 60; i++ {
		s.Upsert(ctx, []Record{{ID: fmt.Sprintf("r%d", i), Vector: []float32{1}, Metadata: Metadata{SessionID: "s1", Timestamp: int64(1000 + i)}}})
	}
	recs, _ := s.Filter(ctx, Filter{FieldSessionID: "s1"}, 50)
	if len(recs) != 50 {
		t.Fatalf("len = %d, want 50", len(recs))
	}
	if recs[0].ID != "r59" || recs[49].ID != "r10" {
		t.Errorf("range = %s .. %s, want r59 .. r10", recs[0].ID, recs[49].ID)
	}
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(1)
	s.Upsert(ctx, []Record{{ID: "x", Vector: []float32{1}, Metadata: Metadata{ProfileValue: "old"}}})
	s.Upsert(ctx, []Record{{ID: "x", Vector: []float32{1}, Metadata: Metadata{ProfileValue: "new"}}})
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	recs, _ := s.Filter(ctx, nil, 0)
	if recs[0].Metadata.ProfileValue != "new" {
		t.Errorf("value = %s, want new", recs[0].Metadata.ProfileValue)
	}
}

func TestMemoryStoreDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	err := s.Upsert(ctx, []Record{
		{ID: "ok", Vector: []float32{1, 2, 3}},
		{ID: "bad", Vector: []float32{1, 2}},
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Upsert err = %v, want ErrDimensionMismatch", err)
	}
	if s.Len() != 0 {
		t.Error("a failed batch must not write any record")
	}
	if _, err := s.Query(ctx, []float32{1}, 1, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Query err = %v, want ErrDimensionMismatch", err)
	}
}

func TestMetadataMatchesIntTimestamp(t *testing.T) {
	m := Metadata{Timestamp: 42}
	if !m.Matches(Filter{FieldTimestamp: 42}) {
		t.Error("int filter should match int64 timestamp")
	}
	if m.Matches(Filter{"unknownField": "x"}) {
		t.Error("unknown field should never match")
	}
}

func TestPlaceholderVector(t *testing.T) {
	v := PlaceholderVector(4)
	if len(v) != 4 || v[0] != 1 || v[1] != 0 {
		t.Errorf("PlaceholderVector(4) = %v", v)
	}
}
