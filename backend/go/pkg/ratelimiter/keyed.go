package ratelimiter

import (
	"container/list"
	"sync"
	"time"
)

// KeyedConfig configures a Keyed limiter.
type KeyedConfig struct {
	// Rate and Capacity size the token bucket handed to each key.
	Rate     float64
	Capacity int
	// MaxKeys bounds how many buckets are tracked; the least recently
	// used bucket is dropped first. Zero means unbounded.
	MaxKeys int
	// IdleTTL drops a bucket that has not been touched for this long.
	// Zero keeps buckets until they are evicted by MaxKeys.
	IdleTTL time.Duration
}

type bucketEntry struct {
	key      string
	bucket   *TokenBucket
	lastSeen time.Time
}

// Keyed hands out one token bucket per key (typically the client address).
// Buckets live in an LRU list so a flood of distinct keys cannot grow
// memory without bound.
type Keyed struct {
	cfg     KeyedConfig
	now     func() time.Time
	mu      sync.Mutex
	ll      *list.List
	buckets map[string]*list.Element
}

// NewKeyed creates a Keyed limiter.
func NewKeyed(cfg KeyedConfig) *Keyed {
	return &Keyed{
		cfg:     cfg,
		now:     time.Now,
		ll:      list.New(),
		buckets: make(map[string]*list.Element),
	}
}

// Allow consumes a token from the bucket for key.
func (k *Keyed) Allow(key string) bool {
	return k.bucketFor(key).Allow()
}

// For returns a RateLimiter bound to key.
func (k *Keyed) For(key string) RateLimiter {
	return k.bucketFor(key)
}

// Len returns the number of tracked buckets.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ll.Len()
}

func (k *Keyed) bucketFor(key string) *TokenBucket {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if el, ok := k.buckets[key]; ok {
		e := el.Value.(*bucketEntry)
		if k.cfg.IdleTTL <= 0 || now.Sub(e.lastSeen) < k.cfg.IdleTTL {
			e.lastSeen = now
			k.ll.MoveToFront(el)
			return e.bucket
		}
		// 闲置过久，重新发放满桶
		k.remove(el)
	}

	e := &bucketEntry{key: key, bucket: NewTokenBucket(k.cfg.Rate, k.cfg.Capacity), lastSeen: now}
	k.buckets[key] = k.ll.PushFront(e)
	k.sweep(now)
	return e.bucket
}

// sweep 淘汰超出数量上限或闲置过期的桶。调用方需持有锁。
func (k *Keyed) sweep(now time.Time) {
	for k.cfg.MaxKeys > 0 && k.ll.Len() > k.cfg.MaxKeys {
		k.remove(k.ll.Back())
	}
	if k.cfg.IdleTTL <= 0 {
		return
	}
	for back := k.ll.Back(); back != nil; back = k.ll.Back() {
		if now.Sub(back.Value.(*bucketEntry).lastSeen) < k.cfg.IdleTTL {
			return
		}
		k.remove(back)
	}
}

func (k *Keyed) remove(el *list.Element) {
	k.ll.Remove(el)
	delete(k.buckets, el.Value.(*bucketEntry).key)
}
