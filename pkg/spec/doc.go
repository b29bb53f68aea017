// Package spec parses, validates and normalizes OpenAPI documents submitted
// to the registry.
//
// Documents arrive as raw bytes in a declared language (JSON or YAML). Load
// parses them, Process additionally validates the OpenAPI shape the package
// builder depends on and produces the canonical artifact bytes that go to
// object storage, and Prepare renders stored artifact bytes back into a
// human-readable YAML document for read endpoints.
//
// The stored artifact keeps only the schema definitions: title, description
// and version live in the metadata record, not in the artifact. Serialization
// is canonical (sorted keys, compact JSON) so that logically identical
// documents produce byte-identical artifacts.
package spec
