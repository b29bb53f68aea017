// Package metadata provides the queryable spec metadata store.
//
// One record exists per (owner, spec id, version). The latest version for a
// spec id is the record with the greatest freshness token, not the most
// recently inserted one; list and count operations work over the latest
// record per spec id.
//
// Two implementations are provided: PostgresStore for production and
// InMemoryStore for tests and local development. CachedStore layers a Redis
// read-through cache over either.
package metadata
