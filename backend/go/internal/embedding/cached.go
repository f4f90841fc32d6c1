package embedding

import (
	"context"
	"fmt"
	"time"

	"Concierge/backend/go/pkg/util"
)

// Cached 为单文本 Embed 调用加上 LRU 缓存。EmbedBatch 直接透传。
type Cached struct {
	inner Embedding
	cache *util.LRUCache[string, []float32]
}

// NewCached 包装 inner。ttl 为 0 时条目不过期。
func NewCached(inner Embedding, capacity int, ttl time.Duration) (*Cached, error) {
	cache, err := util.NewLRU[string, []float32](util.CacheConfig{Capacity: capacity, TTL: ttl})
	if err != nil {
		return nil, fmt.Errorf("创建 embedding 缓存失败: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v, nil
	}
	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Put(text, v, 1)
	return v, nil
}

func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}
