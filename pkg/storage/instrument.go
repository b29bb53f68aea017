package storage

import (
	"context"
	"errors"
	"time"

	"github.com/specstash/specstash/pkg/observability"
)

// InstrumentedFacade decorates a Facade with operation counters and duration
// histograms. The backend label distinguishes deployments that mix backends.
type InstrumentedFacade struct {
	next    Facade
	metrics *observability.Metrics
	backend string
}

// NewInstrumentedFacade wraps next so every operation is recorded against
// metrics under the given backend label.
func NewInstrumentedFacade(next Facade, metrics *observability.Metrics, backend string) *InstrumentedFacade {
	return &InstrumentedFacade{next: next, metrics: metrics, backend: backend}
}

func (f *InstrumentedFacade) record(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		errType := "backend"
		if errors.Is(err, ErrNotFound) {
			errType = "not_found"
		}
		f.metrics.StorageErrorsTotal.WithLabelValues(op, f.backend, errType).Inc()
	}
	f.metrics.StorageOperationsTotal.WithLabelValues(op, f.backend, status).Inc()
	f.metrics.StorageOperationDuration.WithLabelValues(op, f.backend).Observe(time.Since(start).Seconds())
}

// CreateUpdateSpec implements Facade.CreateUpdateSpec.
func (f *InstrumentedFacade) CreateUpdateSpec(ctx context.Context, owner, specID, version string, data []byte, updateLatest bool) error {
	start := time.Now()
	err := f.next.CreateUpdateSpec(ctx, owner, specID, version, data, updateLatest)
	f.record("create_update", start, err)
	return err
}

// GetSpec implements Facade.GetSpec.
func (f *InstrumentedFacade) GetSpec(ctx context.Context, owner, specID, version string) ([]byte, error) {
	start := time.Now()
	data, err := f.next.GetSpec(ctx, owner, specID, version)
	f.record("get", start, err)
	return data, err
}

// DeleteSpecVersion implements Facade.DeleteSpecVersion.
func (f *InstrumentedFacade) DeleteSpecVersion(ctx context.Context, owner, specID, version string) error {
	start := time.Now()
	err := f.next.DeleteSpecVersion(ctx, owner, specID, version)
	f.record("delete_version", start, err)
	return err
}

// DeleteSpec implements Facade.DeleteSpec.
func (f *InstrumentedFacade) DeleteSpec(ctx context.Context, owner, specID string) error {
	start := time.Now()
	err := f.next.DeleteSpec(ctx, owner, specID)
	f.record("delete", start, err)
	return err
}

// HealthCheck implements Facade.HealthCheck, passing through uncounted so
// probe traffic does not drown out request-driven operations.
func (f *InstrumentedFacade) HealthCheck(ctx context.Context) error {
	return f.next.HealthCheck(ctx)
}
