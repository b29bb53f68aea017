package freetier

import (
	"context"
	"errors"
	"fmt"

	"github.com/specstash/specstash/pkg/metadata"
)

// ModelLimit is the maximum total model count a free tier user may store
// across all owned specs.
const ModelLimit = 100

// UsageStore is the subset of the metadata store the guard reads.
type UsageStore interface {
	CountCustomerModels(ctx context.Context, owner string) (int, error)
	GetSpec(ctx context.Context, owner, specID string) (*metadata.Record, error)
}

// Result is an admission decision. Reason is only set on rejection.
type Result struct {
	Admitted bool
	Reason   string
}

// Guard checks proposed writes against the free tier quota.
type Guard struct {
	store UsageStore
}

// NewGuard creates a guard reading usage from store.
func NewGuard(store UsageStore) *Guard {
	return &Guard{store: store}
}

// CheckWithinLimit decides whether storing a spec with newModelCount models
// keeps the owner within the free tier. Models already consumed by the same
// spec id's latest version are excluded, so replacing a spec is judged
// against the delta. The check has no side effects; a metadata read failure
// is surfaced rather than guessed around.
func (g *Guard) CheckWithinLimit(ctx context.Context, owner, specID string, newModelCount int) (Result, error) {
	total, err := g.store.CountCustomerModels(ctx, owner)
	if err != nil {
		return Result{}, fmt.Errorf("failed to compute existing usage: %w", err)
	}

	current := 0
	rec, err := g.store.GetSpec(ctx, owner, specID)
	switch {
	case err == nil:
		current = rec.ModelCount
	case errors.Is(err, metadata.ErrNotFound):
		// First version of this spec id.
	default:
		return Result{}, fmt.Errorf("failed to read existing spec: %w", err)
	}

	existing := total - current
	if existing+newModelCount > ModelLimit {
		return Result{
			Admitted: false,
			Reason: fmt.Sprintf(
				"with this spec the maximum number of "+
					"models for the free tier would be exceeded, the free tier limit is: %d, "+
					"models already stored: %d, models in this spec: %d",
				ModelLimit, existing, newModelCount,
			),
		}, nil
	}
	return Result{Admitted: true}, nil
}
