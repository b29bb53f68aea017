package storage

import (
	"context"
	"strings"
	"sync"
)

// InMemoryFacade implements Facade in process memory. It backs tests and
// single-node local development.
type InMemoryFacade struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewInMemoryFacade creates an empty in-memory facade.
func NewInMemoryFacade() *InMemoryFacade {
	return &InMemoryFacade{objects: make(map[string][]byte)}
}

// CreateUpdateSpec implements Facade.CreateUpdateSpec.
func (f *InMemoryFacade) CreateUpdateSpec(ctx context.Context, owner, specID, version string, data []byte, updateLatest bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	f.objects[SpecKey(owner, specID, version)] = stored
	if updateLatest {
		f.objects[SpecKey(owner, specID, LatestAlias)] = stored
	}
	return nil
}

// GetSpec implements Facade.GetSpec.
func (f *InMemoryFacade) GetSpec(ctx context.Context, owner, specID, version string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, ok := f.objects[SpecKey(owner, specID, version)]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// DeleteSpecVersion implements Facade.DeleteSpecVersion.
func (f *InMemoryFacade) DeleteSpecVersion(ctx context.Context, owner, specID, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, SpecKey(owner, specID, version))
	return nil
}

// DeleteSpec implements Facade.DeleteSpec.
func (f *InMemoryFacade) DeleteSpec(ctx context.Context, owner, specID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := SpecKeyPrefix(owner, specID)
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			delete(f.objects, key)
		}
	}
	return nil
}

// HealthCheck implements Facade.HealthCheck.
func (f *InMemoryFacade) HealthCheck(ctx context.Context) error {
	return nil
}
