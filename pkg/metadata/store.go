package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound indicates that no record exists for the requested spec or
// version. Backend I/O failures are returned as distinct wrapped errors.
var ErrNotFound = errors.New("spec not found")

// Record is the metadata stored for one version of a spec.
type Record struct {
	SpecID      string `json:"spec_id"`
	Version     string `json:"version"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ModelCount  int    `json:"model_count"`
	UpdatedAt   string `json:"updated_at"`
}

// Store is the metadata store contract. All keys are owner scoped; spec ids
// are compared case-insensitively but returned case-preserved.
type Store interface {
	// CreateUpdateSpec upserts the record for (owner, rec.SpecID,
	// rec.Version). An upsert only takes effect when the new record's
	// freshness token is greater than the stored one, which is the only
	// guard against out-of-order concurrent writes.
	CreateUpdateSpec(ctx context.Context, owner string, rec Record) error

	// GetSpec returns the latest record for the spec id.
	GetSpec(ctx context.Context, owner, specID string) (*Record, error)

	// GetSpecVersion returns the record for an exact version.
	GetSpecVersion(ctx context.Context, owner, specID, version string) (*Record, error)

	// GetLatestSpecVersion returns the version string of the latest record.
	GetLatestSpecVersion(ctx context.Context, owner, specID string) (string, error)

	// ListSpecs returns the latest record per spec id owned by owner.
	ListSpecs(ctx context.Context, owner string) ([]Record, error)

	// ListSpecVersions returns every version of a spec id, newest first.
	// Returns ErrNotFound when the spec id has no versions.
	ListSpecVersions(ctx context.Context, owner, specID string) ([]Record, error)

	// DeleteSpec removes every version of a spec id.
	DeleteSpec(ctx context.Context, owner, specID string) error

	// DeleteSpecVersion removes a single version. Removing the current
	// latest promotes the next-highest remaining version.
	DeleteSpecVersion(ctx context.Context, owner, specID, version string) error

	// CountCustomerModels sums the model count over the owner's latest
	// records.
	CountCustomerModels(ctx context.Context, owner string) (int, error)

	// HealthCheck verifies backend connectivity.
	HealthCheck(ctx context.Context) error
}

// CanonicalID returns the case-insensitive comparison form of a spec id.
func CanonicalID(specID string) string {
	return strings.ToLower(specID)
}

// NewFreshnessToken returns the ordering token for a write at t. Tokens are
// zero-padded so lexicographic and numeric ordering agree.
func NewFreshnessToken(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixMicro())
}
