package keysource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goPoP "github.com/MrEthical07/goPoP"
	"github.com/redis/go-redis/v9"
)

const redisCacheKeyPrefix = "popks"

// storedRecord is the Redis envelope: the fetched record plus when it was
// stored, so freshness survives process restarts. Entries are written without
// expiry — an expired entry could not serve as a stale fallback.
type storedRecord struct {
	Record   Record `json:"record"`
	StoredAt int64  `json:"stored_at"`
}

// RedisCache wraps a Fetcher with a Redis-backed record cache shared across
// processes. A fresh cached record short-circuits the backend entirely; when
// the backend fails, the cached record is served regardless of age — stale
// material beats a failed issuance.
type RedisCache struct {
	redis  redis.UniversalClient
	fetch  Fetcher
	name   string
	prefix string
	ttl    time.Duration
}

// NewRedisCache builds a RedisCache. name distinguishes multiple cached
// configurations on one Redis; ttl is the freshness window for cached
// records.
func NewRedisCache(client redis.UniversalClient, name string, fetch Fetcher, ttl time.Duration) *RedisCache {
	return &RedisCache{
		redis:  client,
		fetch:  fetch,
		name:   name,
		prefix: redisCacheKeyPrefix,
		ttl:    ttl,
	}
}

func (s *RedisCache) key() string {
	return s.prefix + ":" + s.name
}

// Material implements goPoP.KeySource.
func (s *RedisCache) Material(ctx context.Context) (goPoP.SigningMaterial, error) {
	if s == nil || s.fetch == nil {
		return goPoP.SigningMaterial{}, ErrNoMaterial
	}

	cached := s.load(ctx)
	if cached != nil && s.fresh(cached) {
		return cached.Record.Material()
	}

	record, err := s.fetch(ctx)
	if err != nil {
		if cached != nil {
			// stale over failing outright
			return cached.Record.Material()
		}
		return goPoP.SigningMaterial{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	s.store(ctx, record)
	return record.Material()
}

func (s *RedisCache) fresh(sr *storedRecord) bool {
	if s.ttl <= 0 {
		return true
	}
	return time.Since(time.Unix(sr.StoredAt, 0)) < s.ttl
}

func (s *RedisCache) load(ctx context.Context) *storedRecord {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, s.key()).Bytes()
	if err != nil {
		return nil
	}
	var sr storedRecord
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil
	}
	return &sr
}

// store is best effort: a write failure falls back to fetch-per-call, it
// never fails the issuance.
func (s *RedisCache) store(ctx context.Context, record Record) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(storedRecord{Record: record, StoredAt: time.Now().Unix()})
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, s.key(), data, 0).Err()
}

var _ goPoP.KeySource = (*RedisCache)(nil)
