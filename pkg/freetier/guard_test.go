package freetier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specstash/specstash/pkg/metadata"
)

type fakeUsageStore struct {
	total    int
	totalErr error
	records  map[string]*metadata.Record
	getErr   error
}

func (s *fakeUsageStore) CountCustomerModels(ctx context.Context, owner string) (int, error) {
	return s.total, s.totalErr
}

func (s *fakeUsageStore) GetSpec(ctx context.Context, owner, specID string) (*metadata.Record, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	rec, ok := s.records[metadata.CanonicalID(specID)]
	if !ok {
		return nil, metadata.ErrNotFound
	}
	return rec, nil
}

func TestCheckWithinLimitAdmitsUnderLimit(t *testing.T) {
	guard := NewGuard(&fakeUsageStore{total: 99})

	result, err := guard.CheckWithinLimit(context.Background(), "user 1", "spec 1", 1)

	require.NoError(t, err)
	assert.True(t, result.Admitted)
	assert.Empty(t, result.Reason)
}

func TestCheckWithinLimitRejectsOverLimit(t *testing.T) {
	guard := NewGuard(&fakeUsageStore{total: 100})

	result, err := guard.CheckWithinLimit(context.Background(), "user 1", "spec 1", 1)

	require.NoError(t, err)
	assert.False(t, result.Admitted)
	assert.Contains(t, result.Reason, "exceeded")
	assert.Contains(t, result.Reason, ": 100,")
	assert.Contains(t, result.Reason, "spec: 1")
}

func TestCheckWithinLimitReplacementJudgedOnDelta(t *testing.T) {
	// The owner sits at the limit, but 50 of those models belong to the
	// spec being replaced.
	store := &fakeUsageStore{
		total: 100,
		records: map[string]*metadata.Record{
			"spec 1": {SpecID: "spec 1", ModelCount: 50},
		},
	}
	guard := NewGuard(store)

	result, err := guard.CheckWithinLimit(context.Background(), "user 1", "Spec 1", 50)
	require.NoError(t, err)
	assert.True(t, result.Admitted)

	result, err = guard.CheckWithinLimit(context.Background(), "user 1", "Spec 1", 51)
	require.NoError(t, err)
	assert.False(t, result.Admitted)
}

func TestCheckWithinLimitCountError(t *testing.T) {
	guard := NewGuard(&fakeUsageStore{totalErr: errors.New("connection reset")})

	_, err := guard.CheckWithinLimit(context.Background(), "user 1", "spec 1", 1)

	assert.Error(t, err)
}

func TestCheckWithinLimitGetSpecError(t *testing.T) {
	guard := NewGuard(&fakeUsageStore{getErr: errors.New("connection reset")})

	_, err := guard.CheckWithinLimit(context.Background(), "user 1", "spec 1", 1)

	assert.Error(t, err)
}
