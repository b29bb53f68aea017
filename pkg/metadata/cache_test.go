package metadata

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specstash/specstash/pkg/observability"
)

// countingStore wraps InMemoryStore and counts reads that reach it.
type countingStore struct {
	*InMemoryStore
	getSpecCalls   int
	listSpecsCalls int
}

func (s *countingStore) GetSpec(ctx context.Context, owner, specID string) (*Record, error) {
	s.getSpecCalls++
	return s.InMemoryStore.GetSpec(ctx, owner, specID)
}

func (s *countingStore) ListSpecs(ctx context.Context, owner string) ([]Record, error) {
	s.listSpecsCalls++
	return s.InMemoryStore.ListSpecs(ctx, owner)
}

func newCacheFixture(t *testing.T) (*CachedStore, *countingStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	next := &countingStore{InMemoryStore: NewInMemoryStore()}
	return NewCachedStore(next, client, time.Minute, nil), next
}

func TestCachedStoreGetSpecReadThrough(t *testing.T) {
	cached, next := newCacheFixture(t)
	ctx := context.Background()

	require.NoError(t, cached.CreateUpdateSpec(ctx, "user 1", record("spec 1", "version 1", 1, time.Now())))

	first, err := cached.GetSpec(ctx, "user 1", "spec 1")
	require.NoError(t, err)
	second, err := cached.GetSpec(ctx, "user 1", "spec 1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.getSpecCalls)
}

func TestCachedStoreWriteInvalidates(t *testing.T) {
	cached, _ := newCacheFixture(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, cached.CreateUpdateSpec(ctx, "user 1", record("spec 1", "version 1", 1, now)))
	_, err := cached.GetSpec(ctx, "user 1", "spec 1")
	require.NoError(t, err)

	require.NoError(t, cached.CreateUpdateSpec(ctx, "user 1", record("spec 1", "version 2", 2, now.Add(time.Second))))

	rec, err := cached.GetSpec(ctx, "user 1", "spec 1")
	require.NoError(t, err)
	assert.Equal(t, "version 2", rec.Version)
}

func TestCachedStoreDeleteInvalidates(t *testing.T) {
	cached, _ := newCacheFixture(t)
	ctx := context.Background()

	require.NoError(t, cached.CreateUpdateSpec(ctx, "user 1", record("spec 1", "version 1", 1, time.Now())))
	specs, err := cached.ListSpecs(ctx, "user 1")
	require.NoError(t, err)
	require.Len(t, specs, 1)

	require.NoError(t, cached.DeleteSpec(ctx, "user 1", "spec 1"))

	specs, err = cached.ListSpecs(ctx, "user 1")
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestCachedStoreListSpecsCached(t *testing.T) {
	cached, next := newCacheFixture(t)
	ctx := context.Background()

	require.NoError(t, cached.CreateUpdateSpec(ctx, "user 1", record("spec 1", "version 1", 1, time.Now())))

	_, err := cached.ListSpecs(ctx, "user 1")
	require.NoError(t, err)
	_, err = cached.ListSpecs(ctx, "user 1")
	require.NoError(t, err)

	assert.Equal(t, 1, next.listSpecsCalls)
}

func TestCachedStoreNotFoundPassesThrough(t *testing.T) {
	cached, _ := newCacheFixture(t)

	_, err := cached.GetSpec(context.Background(), "user 1", "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedStoreCountsHitsAndMisses(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	cached := NewCachedStore(NewInMemoryStore(), client, time.Minute, metrics)
	ctx := context.Background()

	require.NoError(t, cached.CreateUpdateSpec(ctx, "user 1", record("spec 1", "version 1", 1, time.Now())))

	_, err := cached.GetSpec(ctx, "user 1", "spec 1")
	require.NoError(t, err)
	_, err = cached.GetSpec(ctx, "user 1", "spec 1")
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues("record")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("record")))
}

func TestCachedStoreCountBypassesCache(t *testing.T) {
	cached, _ := newCacheFixture(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, cached.CreateUpdateSpec(ctx, "user 1", record("spec 1", "version 1", 10, now)))
	total, err := cached.CountCustomerModels(ctx, "user 1")
	require.NoError(t, err)
	assert.Equal(t, 10, total)

	require.NoError(t, cached.CreateUpdateSpec(ctx, "user 1", record("spec 1", "version 2", 30, now.Add(time.Second))))
	total, err = cached.CountCustomerModels(ctx, "user 1")
	require.NoError(t, err)
	assert.Equal(t, 30, total)
}
