// Package api implements the HTTP surface of the spec registry: the
// unversioned endpoints acting on the latest version of a spec and the
// versioned endpoints addressing an explicit version. Handlers orchestrate
// validation, quota admission, object storage and the metadata store, in that
// order, and translate each failure stage into a distinct status code.
package api
