package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory and ranks by cosine similarity.
// Filter results come back newest first, ties in insertion order.
type MemoryStore struct {
	dim     int
	mu      sync.RWMutex
	records map[string]Record
	order   []string
}

// NewMemoryStore creates an empty store for vectors of length dim.
func NewMemoryStore(dim int) *MemoryStore {
	return &MemoryStore{dim: dim, records: make(map[string]Record)}
}

func (s *MemoryStore) Dimension() int { return s.dim }

func (s *MemoryStore) Upsert(ctx context.Context, records []Record) error {
	for _, r := range records {
		if err := CheckDimension(r.Vector, s.dim); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if _, ok := s.records[r.ID]; !ok {
			s.order = append(s.order, r.ID)
		}
		vec := make([]float32, len(r.Vector))
		copy(vec, r.Vector)
		r.Vector = vec
		s.records[r.ID] = r
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if err := CheckDimension(vector, s.dim); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	matches := make([]Match, 0, len(s.records))
	for _, id := range s.order {
		r := s.records[id]
		if !r.Metadata.Matches(filter) {
			continue
		}
		matches = append(matches, Match{Record: r, Score: cosine(vector, r.Vector)})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *MemoryStore) Filter(ctx context.Context, filter Filter, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, id := range s.order {
		r := s.records[id]
		if !r.Metadata.Matches(filter) {
			continue
		}
		r.Vector = nil
		out = append(out, r)
	}
	return NewestFirst(out, limit), nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
