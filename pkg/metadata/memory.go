package metadata

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore implements Store in process memory. It backs tests and
// single-node local development.
type InMemoryStore struct {
	mu sync.RWMutex
	// owner -> canonical id -> version -> record
	records map[string]map[string]map[string]Record
}

// NewInMemoryStore creates an empty in-memory metadata store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]map[string]map[string]Record),
	}
}

// CreateUpdateSpec implements Store.CreateUpdateSpec.
func (s *InMemoryStore) CreateUpdateSpec(ctx context.Context, owner string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cid := CanonicalID(rec.SpecID)
	if s.records[owner] == nil {
		s.records[owner] = make(map[string]map[string]Record)
	}
	if s.records[owner][cid] == nil {
		s.records[owner][cid] = make(map[string]Record)
	}
	if existing, ok := s.records[owner][cid][rec.Version]; ok && existing.UpdatedAt >= rec.UpdatedAt {
		return nil
	}
	s.records[owner][cid][rec.Version] = rec
	return nil
}

// latestLocked returns the record with the greatest freshness token.
func (s *InMemoryStore) latestLocked(owner, cid string) (Record, bool) {
	var latest Record
	found := false
	for _, rec := range s.records[owner][cid] {
		if !found || rec.UpdatedAt > latest.UpdatedAt {
			latest = rec
			found = true
		}
	}
	return latest, found
}

// GetSpec implements Store.GetSpec.
func (s *InMemoryStore) GetSpec(ctx context.Context, owner, specID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.latestLocked(owner, CanonicalID(specID))
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// GetSpecVersion implements Store.GetSpecVersion.
func (s *InMemoryStore) GetSpecVersion(ctx context.Context, owner, specID, version string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[owner][CanonicalID(specID)][version]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// GetLatestSpecVersion implements Store.GetLatestSpecVersion.
func (s *InMemoryStore) GetLatestSpecVersion(ctx context.Context, owner, specID string) (string, error) {
	rec, err := s.GetSpec(ctx, owner, specID)
	if err != nil {
		return "", err
	}
	return rec.Version, nil
}

// ListSpecs implements Store.ListSpecs.
func (s *InMemoryStore) ListSpecs(ctx context.Context, owner string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cids := make([]string, 0, len(s.records[owner]))
	for cid := range s.records[owner] {
		cids = append(cids, cid)
	}
	sort.Strings(cids)

	specs := []Record{}
	for _, cid := range cids {
		if rec, ok := s.latestLocked(owner, cid); ok {
			specs = append(specs, rec)
		}
	}
	return specs, nil
}

// ListSpecVersions implements Store.ListSpecVersions.
func (s *InMemoryStore) ListSpecVersions(ctx context.Context, owner, specID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.records[owner][CanonicalID(specID)]
	if len(versions) == 0 {
		return nil, ErrNotFound
	}

	records := make([]Record, 0, len(versions))
	for _, rec := range versions {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt > records[j].UpdatedAt
	})
	return records, nil
}

// DeleteSpec implements Store.DeleteSpec.
func (s *InMemoryStore) DeleteSpec(ctx context.Context, owner, specID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records[owner], CanonicalID(specID))
	return nil
}

// DeleteSpecVersion implements Store.DeleteSpecVersion.
func (s *InMemoryStore) DeleteSpecVersion(ctx context.Context, owner, specID, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cid := CanonicalID(specID)
	delete(s.records[owner][cid], version)
	if len(s.records[owner][cid]) == 0 {
		delete(s.records[owner], cid)
	}
	return nil
}

// CountCustomerModels implements Store.CountCustomerModels.
func (s *InMemoryStore) CountCustomerModels(ctx context.Context, owner string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for cid := range s.records[owner] {
		if rec, ok := s.latestLocked(owner, cid); ok {
			total += rec.ModelCount
		}
	}
	return total, nil
}

// HealthCheck implements Store.HealthCheck.
func (s *InMemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}
