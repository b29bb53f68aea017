package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to PostgreSQL and configures the connection pool.
func OpenPostgres(url string, maxConns, minConns int, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(minConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// NewPostgresStore creates a Postgres-backed metadata store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS spec_versions (
	owner        TEXT NOT NULL,
	canonical_id TEXT NOT NULL,
	spec_id      TEXT NOT NULL,
	version      TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	model_count  INTEGER NOT NULL,
	updated_at   TEXT NOT NULL,
	PRIMARY KEY (owner, canonical_id, version)
);
CREATE INDEX IF NOT EXISTS spec_versions_owner_updated
	ON spec_versions (owner, canonical_id, updated_at DESC);
`

// EnsureSchema creates the spec_versions table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateUpdateSpec implements Store.CreateUpdateSpec. The conditional update
// relies on the freshness token comparison to reject out-of-order writes.
func (s *PostgresStore) CreateUpdateSpec(ctx context.Context, owner string, rec Record) error {
	query := `
		INSERT INTO spec_versions (owner, canonical_id, spec_id, version, title, description, model_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner, canonical_id, version) DO UPDATE
		SET spec_id = EXCLUDED.spec_id,
		    title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    model_count = EXCLUDED.model_count,
		    updated_at = EXCLUDED.updated_at
		WHERE spec_versions.updated_at < EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		owner,
		CanonicalID(rec.SpecID),
		rec.SpecID,
		rec.Version,
		rec.Title,
		rec.Description,
		rec.ModelCount,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert spec record: %w", err)
	}
	return nil
}

const recordColumns = "spec_id, version, title, description, model_count, updated_at"

func scanRecord(row *sql.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.SpecID,
		&rec.Version,
		&rec.Title,
		&rec.Description,
		&rec.ModelCount,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read spec record: %w", err)
	}
	return &rec, nil
}

// GetSpec implements Store.GetSpec.
func (s *PostgresStore) GetSpec(ctx context.Context, owner, specID string) (*Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM spec_versions
		WHERE owner = $1 AND canonical_id = $2
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return scanRecord(s.db.QueryRowContext(ctx, query, owner, CanonicalID(specID)))
}

// GetSpecVersion implements Store.GetSpecVersion.
func (s *PostgresStore) GetSpecVersion(ctx context.Context, owner, specID, version string) (*Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM spec_versions
		WHERE owner = $1 AND canonical_id = $2 AND version = $3
	`
	return scanRecord(s.db.QueryRowContext(ctx, query, owner, CanonicalID(specID), version))
}

// GetLatestSpecVersion implements Store.GetLatestSpecVersion.
func (s *PostgresStore) GetLatestSpecVersion(ctx context.Context, owner, specID string) (string, error) {
	rec, err := s.GetSpec(ctx, owner, specID)
	if err != nil {
		return "", err
	}
	return rec.Version, nil
}

// ListSpecs implements Store.ListSpecs.
func (s *PostgresStore) ListSpecs(ctx context.Context, owner string) ([]Record, error) {
	query := `
		SELECT DISTINCT ON (canonical_id) ` + recordColumns + `
		FROM spec_versions
		WHERE owner = $1
		ORDER BY canonical_id, updated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list specs: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListSpecVersions implements Store.ListSpecVersions.
func (s *PostgresStore) ListSpecVersions(ctx context.Context, owner, specID string) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM spec_versions
		WHERE owner = $1 AND canonical_id = $2
		ORDER BY updated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, owner, CanonicalID(specID))
	if err != nil {
		return nil, fmt.Errorf("failed to list spec versions: %w", err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.SpecID,
			&rec.Version,
			&rec.Title,
			&rec.Description,
			&rec.ModelCount,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan spec record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read spec records: %w", err)
	}
	return records, nil
}

// DeleteSpec implements Store.DeleteSpec.
func (s *PostgresStore) DeleteSpec(ctx context.Context, owner, specID string) error {
	query := `DELETE FROM spec_versions WHERE owner = $1 AND canonical_id = $2`
	if _, err := s.db.ExecContext(ctx, query, owner, CanonicalID(specID)); err != nil {
		return fmt.Errorf("failed to delete spec records: %w", err)
	}
	return nil
}

// DeleteSpecVersion implements Store.DeleteSpecVersion. Latest is derived
// from the freshness token ordering, so removing the current latest promotes
// the next-highest remaining version without extra bookkeeping.
func (s *PostgresStore) DeleteSpecVersion(ctx context.Context, owner, specID, version string) error {
	query := `DELETE FROM spec_versions WHERE owner = $1 AND canonical_id = $2 AND version = $3`
	if _, err := s.db.ExecContext(ctx, query, owner, CanonicalID(specID), version); err != nil {
		return fmt.Errorf("failed to delete spec record: %w", err)
	}
	return nil
}

// CountCustomerModels implements Store.CountCustomerModels.
func (s *PostgresStore) CountCustomerModels(ctx context.Context, owner string) (int, error) {
	query := `
		SELECT COALESCE(SUM(model_count), 0) FROM (
			SELECT DISTINCT ON (canonical_id) model_count
			FROM spec_versions
			WHERE owner = $1
			ORDER BY canonical_id, updated_at DESC
		) latest
	`

	var total int
	if err := s.db.QueryRowContext(ctx, query, owner).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count models: %w", err)
	}
	return total, nil
}

// HealthCheck implements Store.HealthCheck.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}
