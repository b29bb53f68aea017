package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that no artifact exists under the requested key.
// Backend I/O failures are returned as distinct wrapped errors.
var ErrNotFound = errors.New("spec artifact not found")

// LatestAlias is the pseudo-version under which the latest artifact copy is
// stored.
const LatestAlias = "latest"

// Facade is the object storage contract for spec artifacts.
type Facade interface {
	// CreateUpdateSpec writes the artifact under the versioned key. When
	// updateLatest is set the latest alias key is overwritten as well; the
	// two writes are not atomic, the metadata store stays the source of
	// truth for which version is latest.
	CreateUpdateSpec(ctx context.Context, owner, specID, version string, data []byte, updateLatest bool) error

	// GetSpec returns the artifact bytes for an exact version.
	GetSpec(ctx context.Context, owner, specID, version string) ([]byte, error)

	// DeleteSpecVersion removes the artifact for a single version.
	DeleteSpecVersion(ctx context.Context, owner, specID, version string) error

	// DeleteSpec removes every artifact for the spec id, the latest alias
	// included.
	DeleteSpec(ctx context.Context, owner, specID string) error

	// HealthCheck verifies backend connectivity.
	HealthCheck(ctx context.Context) error
}

// SpecKey returns the object key for a spec artifact. The downstream build
// worker parses keys of exactly this shape from storage notifications.
func SpecKey(owner, specID, version string) string {
	return fmt.Sprintf("%s/%s/%s-spec.json", owner, strings.ToLower(specID), version)
}

// SpecKeyPrefix returns the key prefix under which every artifact for a spec
// id lives.
func SpecKeyPrefix(owner, specID string) string {
	return fmt.Sprintf("%s/%s/", owner, strings.ToLower(specID))
}

// Config holds object storage backend configuration.
type Config struct {
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}
