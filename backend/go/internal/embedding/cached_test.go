package embedding

import (
	"context"
	"errors"
	"testing"
)

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text))}, nil
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := c.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func TestCachedEmbedReusesVectors(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCached(inner, 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := c.Embed(ctx, "pricing")
		if err != nil || len(v) != 1 || v[0] != 7 {
			t.Fatalf("Embed() = %v, %v", v, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}

	if _, err := c.EmbedBatch(ctx, []string{"pricing", "portfolio"}); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 3 {
		t.Errorf("batch should bypass the cache, inner calls = %d", inner.calls)
	}
}

func TestCachedEmbedDoesNotCacheErrors(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("quota")}
	c, _ := NewCached(inner, 8, 0)
	ctx := context.Background()
	c.Embed(ctx, "x")
	c.Embed(ctx, "x")
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestNewEmdModelRejectsUnknownProvider(t *testing.T) {
	if _, err := NewEmdModel(configFor("watson")); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
