// Package storage provides the object storage facade for spec artifacts.
//
// Artifacts are keyed by (owner, spec id, version) with an additional
// "latest" alias key per spec id. The alias exists so the artifact lands at a
// deterministic key that the downstream package build worker is notified
// about; read paths resolve latest through the metadata store rather than
// trusting the alias, which can lag behind after a crash mid-put.
//
// S3Facade is the production implementation; InMemoryFacade backs tests and
// local development.
package storage
