package uploads

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache deduplicates uploads by raw payload content. Implementations map a
// payload string to the remote URL a previous upload produced.
type Cache interface {
	Get(ctx context.Context, payload string) (string, bool)
	Set(ctx context.Context, payload, url string)
}

// MemoryCache is the default process-local cache. Entries are never evicted,
// matching the lifetime-of-the-process dedup contract; a restart re-uploads.
type MemoryCache struct {
	mu   sync.Mutex
	urls map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{urls: make(map[string]string)}
}

func (m *MemoryCache) Get(_ context.Context, payload string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url, ok := m.urls[payload]
	return url, ok
}

func (m *MemoryCache) Set(_ context.Context, payload, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[payload] = url
}

// RedisCache shares dedup state across processes. Keys are content-hashed by
// the client library caller side; any redis failure degrades to a cache miss,
// which costs a duplicate upload but never the request.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (r *RedisCache) Get(ctx context.Context, payload string) (string, bool) {
	url, err := r.client.Get(ctx, cacheKey(payload)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Println("[UPLOAD] [WARN] redis cache get failed:", err)
		return "", false
	}
	return url, true
}

func (r *RedisCache) Set(ctx context.Context, payload, url string) {
	if err := r.client.Set(ctx, cacheKey(payload), url, r.ttl).Err(); err != nil {
		log.Println("[UPLOAD] [WARN] redis cache set failed:", err)
	}
}

func cacheKey(payload string) string {
	return fmt.Sprintf("uploads:dedup:%x", hashPayload(payload))
}
