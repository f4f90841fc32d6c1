package vectorstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"Concierge/backend/go/pkg/circuitbreaker"
)

type failingStore struct {
	*MemoryStore
	calls int
}

func (f *failingStore) Filter(ctx context.Context, filter Filter, limit int) ([]Record, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestGuardedOpensAfterFailures(t *testing.T) {
	inner := &failingStore{MemoryStore: NewMemoryStore(2)}
	g := NewGuarded(inner, circuitbreaker.New(2, 1, time.Minute))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := g.Filter(ctx, nil, 1); err == nil {
			t.Fatal("expected backend error")
		}
	}
	_, err := g.Filter(ctx, nil, 1)
	if !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if inner.calls != 2 {
		t.Errorf("backend called %d times, want 2", inner.calls)
	}
}

func TestGuardedDimensionMismatchDoesNotTrip(t *testing.T) {
	g := NewGuarded(NewMemoryStore(2), circuitbreaker.New(1, 1, time.Minute))
	ctx := context.Background()
	if _, err := g.Query(ctx, []float32{1}, 1, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v", err)
	}
	if err := g.Upsert(ctx, []Record{{ID: "a", Vector: []float32{1, 0}}}); err != nil {
		t.Fatalf("Upsert after mismatch: %v", err)
	}
}
