package util

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// CacheConfig 用于配置LRU缓存的行为。
type CacheConfig struct {
	// Capacity 是缓存的最大元素数量。如果为0，则不限制数量。
	Capacity int
	// MaxWeight 是缓存中所有元素的最大权重总和。如果为0，则不限制权重。
	MaxWeight int
	// TTL 是元素的存活时间。如果为0，则元素永不过期。
	TTL time.Duration
	// Now 返回当前时间，为空时使用 time.Now。测试中可以注入固定时钟。
	Now func() time.Time
	// OnEvict 在元素因容量或权重被淘汰时调用（持锁调用，不能回调缓存）。
	OnEvict func(key any)
}

type lruEntry[K comparable, V any] struct {
	key        K
	value      V
	weight     int
	expiration time.Time
}

// LRUCache 是一个支持泛型、可配置且线程安全的LRU缓存。
type LRUCache[K comparable, V any] struct {
	config        CacheConfig
	ll            *list.List
	items         map[K]*list.Element
	currentWeight int
	mu            sync.Mutex
}

// NewLRU 使用指定的配置创建一个LRU缓存实例。
func NewLRU[K comparable, V any](config CacheConfig) (*LRUCache[K, V], error) {
	if config.Capacity <= 0 && config.MaxWeight <= 0 {
		return nil, fmt.Errorf("必须设置 Capacity 或 MaxWeight 中的至少一个")
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &LRUCache[K, V]{
		config: config,
		ll:     list.New(),
		items:  make(map[K]*list.Element),
	}, nil
}

// Get 根据键获取一个值，过期的元素在读取时被移除。
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*lruEntry[K, V])
	if c.expired(e) {
		c.removeElement(el)
		return zero, false
	}
	c.ll.MoveToFront(el)
	return e.value, true
}

// GetOrCreate 返回已有的值，不存在或已过期时调用 create 生成并以权重 1 存入。
// 整个过程持锁，保证同一个键只会被创建一次。
func (c *LRUCache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*lruEntry[K, V])
		if !c.expired(e) {
			c.ll.MoveToFront(el)
			return e.value
		}
		c.removeElement(el)
	}
	v := create()
	c.insert(key, v, 1)
	return v
}

// Put 向缓存中添加或更新一个键值对，并指定其权重。
// 如果使用基于容量的淘汰，可以为 weight 传入 1。
func (c *LRUCache[K, V]) Put(key K, value V, weight int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*lruEntry[K, V])
		c.currentWeight += weight - e.weight
		e.weight = weight
		e.value = value
		e.expiration = c.expiry()
		c.ll.MoveToFront(el)
		c.shrink()
		return
	}
	c.insert(key, value, weight)
}

// Remove 删除一个键，返回该键是否存在。
func (c *LRUCache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}
	return ok
}

// Len 返回当前缓存中的条目数量（包括尚未被动淘汰的过期条目）。
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Weight 返回当前缓存中所有元素的总权重。
func (c *LRUCache[K, V]) Weight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentWeight
}

func (c *LRUCache[K, V]) insert(key K, value V, weight int) {
	el := c.ll.PushFront(&lruEntry[K, V]{
		key:        key,
		value:      value,
		weight:     weight,
		expiration: c.expiry(),
	})
	c.items[key] = el
	c.currentWeight += weight
	c.shrink()
}

func (c *LRUCache[K, V]) expiry() time.Time {
	if c.config.TTL <= 0 {
		return time.Time{}
	}
	return c.config.Now().Add(c.config.TTL)
}

func (c *LRUCache[K, V]) expired(e *lruEntry[K, V]) bool {
	return c.config.TTL > 0 && c.config.Now().After(e.expiration)
}

// shrink 淘汰最久未使用的元素直到满足限制。一个大的新元素可能需要淘汰多个旧元素。
func (c *LRUCache[K, V]) shrink() {
	for c.overLimit() {
		back := c.ll.Back()
		if back == nil {
			return
		}
		key := back.Value.(*lruEntry[K, V]).key
		c.removeElement(back)
		if c.config.OnEvict != nil {
			c.config.OnEvict(key)
		}
	}
}

func (c *LRUCache[K, V]) overLimit() bool {
	if c.config.Capacity > 0 && c.ll.Len() > c.config.Capacity {
		return true
	}
	return c.config.MaxWeight > 0 && c.currentWeight > c.config.MaxWeight
}

func (c *LRUCache[K, V]) removeElement(el *list.Element) {
	c.ll.Remove(el)
	e := el.Value.(*lruEntry[K, V])
	delete(c.items, e.key)
	c.currentWeight -= e.weight
}
