package vectorstore

import (
	"context"

	"Concierge/backend/go/pkg/circuitbreaker"
)

// Guarded fails fast with circuitbreaker.ErrCircuitOpen once the wrapped backend keeps failing.
// Dimension mismatches are caller errors and do not count against the breaker.
type Guarded struct {
	inner   Store
	breaker circuitbreaker.CircuitBreaker
}

// NewGuarded wraps inner with breaker.
func NewGuarded(inner Store, breaker circuitbreaker.CircuitBreaker) *Guarded {
	return &Guarded{inner: inner, breaker: breaker}
}

func (g *Guarded) Dimension() int { return g.inner.Dimension() }

func (g *Guarded) Upsert(ctx context.Context, records []Record) error {
	for _, r := range records {
		if err := CheckDimension(r.Vector, g.inner.Dimension()); err != nil {
			return err
		}
	}
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, g.inner.Upsert(ctx, records)
	})
	return err
}

func (g *Guarded) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if err := CheckDimension(vector, g.inner.Dimension()); err != nil {
		return nil, err
	}
	return circuitbreaker.Do(g.breaker, func() ([]Match, error) {
		return g.inner.Query(ctx, vector, topK, filter)
	})
}

func (g *Guarded) Filter(ctx context.Context, filter Filter, limit int) ([]Record, error) {
	return circuitbreaker.Do(g.breaker, func() ([]Record, error) {
		return g.inner.Filter(ctx, filter, limit)
	})
}
