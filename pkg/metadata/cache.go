package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/specstash/specstash/pkg/observability"
)

// CachedStore layers a Redis read-through cache over another Store. Reads on
// the hot paths (latest record, version list, spec list) are cached; every
// write or delete for a spec invalidates the owner's cached entries.
//
// CountCustomerModels is deliberately not cached: admission decisions must
// never be made on stale data.
type CachedStore struct {
	next    Store
	client  *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewRedisClient connects to Redis using a redis:// URL.
func NewRedisClient(url, password string, db int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	if db >= 0 {
		opts.DB = db
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewCachedStore wraps next with a Redis cache. metrics may be nil, in which
// case hits and misses are not counted.
func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, metrics *observability.Metrics) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl, metrics: metrics}
}

// Cache key type labels for the hit and miss counters.
const (
	cacheKeyRecord   = "record"
	cacheKeyVersions = "versions"
	cacheKeyList     = "list"
)

func specKey(owner, specID string) string {
	return fmt.Sprintf("spec:%s:%s", owner, CanonicalID(specID))
}

func versionsKey(owner, specID string) string {
	return fmt.Sprintf("spec-versions:%s:%s", owner, CanonicalID(specID))
}

func listKey(owner string) string {
	return fmt.Sprintf("specs:%s", owner)
}

// getCached loads a cached JSON value into dest, reporting a hit. Cache
// errors are treated as misses so Redis outages degrade to the next store.
func (s *CachedStore) getCached(ctx context.Context, key, keyType string, dest interface{}) bool {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		s.countCacheRead(keyType, false)
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		s.client.Del(ctx, key)
		s.countCacheRead(keyType, false)
		return false
	}
	s.countCacheRead(keyType, true)
	return true
}

func (s *CachedStore) countCacheRead(keyType string, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues(keyType).Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues(keyType).Inc()
	}
}

func (s *CachedStore) setCached(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.client.Set(ctx, key, data, s.ttl)
}

func (s *CachedStore) invalidate(ctx context.Context, owner, specID string) {
	s.client.Del(ctx, specKey(owner, specID), versionsKey(owner, specID), listKey(owner))
}

// CreateUpdateSpec implements Store.CreateUpdateSpec.
func (s *CachedStore) CreateUpdateSpec(ctx context.Context, owner string, rec Record) error {
	if err := s.next.CreateUpdateSpec(ctx, owner, rec); err != nil {
		return err
	}
	s.invalidate(ctx, owner, rec.SpecID)
	return nil
}

// GetSpec implements Store.GetSpec.
func (s *CachedStore) GetSpec(ctx context.Context, owner, specID string) (*Record, error) {
	var cached Record
	if s.getCached(ctx, specKey(owner, specID), cacheKeyRecord, &cached) {
		return &cached, nil
	}

	rec, err := s.next.GetSpec(ctx, owner, specID)
	if err != nil {
		return nil, err
	}
	s.setCached(ctx, specKey(owner, specID), rec)
	return rec, nil
}

// GetSpecVersion implements Store.GetSpecVersion. Exact-version reads skip
// the cache, records are immutable for a given freshness token anyway.
func (s *CachedStore) GetSpecVersion(ctx context.Context, owner, specID, version string) (*Record, error) {
	return s.next.GetSpecVersion(ctx, owner, specID, version)
}

// GetLatestSpecVersion implements Store.GetLatestSpecVersion.
func (s *CachedStore) GetLatestSpecVersion(ctx context.Context, owner, specID string) (string, error) {
	rec, err := s.GetSpec(ctx, owner, specID)
	if err != nil {
		return "", err
	}
	return rec.Version, nil
}

// ListSpecs implements Store.ListSpecs.
func (s *CachedStore) ListSpecs(ctx context.Context, owner string) ([]Record, error) {
	var cached []Record
	if s.getCached(ctx, listKey(owner), cacheKeyList, &cached) {
		return cached, nil
	}

	specs, err := s.next.ListSpecs(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.setCached(ctx, listKey(owner), specs)
	return specs, nil
}

// ListSpecVersions implements Store.ListSpecVersions.
func (s *CachedStore) ListSpecVersions(ctx context.Context, owner, specID string) ([]Record, error) {
	var cached []Record
	if s.getCached(ctx, versionsKey(owner, specID), cacheKeyVersions, &cached) {
		return cached, nil
	}

	records, err := s.next.ListSpecVersions(ctx, owner, specID)
	if err != nil {
		return nil, err
	}
	s.setCached(ctx, versionsKey(owner, specID), records)
	return records, nil
}

// DeleteSpec implements Store.DeleteSpec.
func (s *CachedStore) DeleteSpec(ctx context.Context, owner, specID string) error {
	if err := s.next.DeleteSpec(ctx, owner, specID); err != nil {
		return err
	}
	s.invalidate(ctx, owner, specID)
	return nil
}

// DeleteSpecVersion implements Store.DeleteSpecVersion.
func (s *CachedStore) DeleteSpecVersion(ctx context.Context, owner, specID, version string) error {
	if err := s.next.DeleteSpecVersion(ctx, owner, specID, version); err != nil {
		return err
	}
	s.invalidate(ctx, owner, specID)
	return nil
}

// CountCustomerModels implements Store.CountCustomerModels, bypassing the
// cache.
func (s *CachedStore) CountCustomerModels(ctx context.Context, owner string) (int, error) {
	return s.next.CountCustomerModels(ctx, owner)
}

// HealthCheck implements Store.HealthCheck, requiring both the cache and the
// underlying store to be reachable.
func (s *CachedStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return s.next.HealthCheck(ctx)
}
