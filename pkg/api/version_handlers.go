package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/specstash/specstash/pkg/httputil"
	"github.com/specstash/specstash/pkg/metadata"
	"github.com/specstash/specstash/pkg/middleware"
	"github.com/specstash/specstash/pkg/observability"
	"github.com/specstash/specstash/pkg/spec"
	"github.com/specstash/specstash/pkg/storage"
)

// versionMismatchMessage names both the body's declared version and the path
// version so the client can see exactly which pair disagreed.
func versionMismatchMessage(bodyVersion, pathVersion string) string {
	return fmt.Sprintf(
		"the spec version (%s) does not match the version in the path (%s)",
		bodyVersion, pathVersion,
	)
}

// listSpecVersions handles GET /specs/{id}/versions
func (s *Server) listSpecVersions(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	specID := mux.Vars(r)["id"]

	records, err := s.metadata.ListSpecVersions(r.Context(), owner, specID)
	if errors.Is(err, metadata.ErrNotFound) {
		httputil.WriteNotFoundError(w, "spec not found")
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to list spec versions")
		httputil.WriteInternalError(w, "failed to list spec versions")
		return
	}

	httputil.WriteSuccess(w, records)
}

// getSpecVersion handles GET /specs/{id}/versions/{version}
func (s *Server) getSpecVersion(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	vars := mux.Vars(r)
	specID, version := vars["id"], vars["version"]
	log := observability.FromContext(r.Context())

	if _, err := s.metadata.GetSpecVersion(r.Context(), owner, specID, version); err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			httputil.WriteNotFoundError(w, "spec version not found")
			return
		}
		log.WithError(err).Error("failed to read spec metadata")
		httputil.WriteInternalError(w, "failed to read spec metadata")
		return
	}

	data, err := s.storage.GetSpec(r.Context(), owner, specID, version)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteNotFoundError(w, "spec version not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to read spec artifact")
		httputil.WriteInternalError(w, "failed to read spec artifact")
		return
	}

	value, err := spec.Prepare(data, version)
	if err != nil {
		log.WithError(err).Error("failed to render spec")
		httputil.WriteInternalError(w, "failed to render spec")
		return
	}

	httputil.WriteText(w, http.StatusOK, value)
}

// putSpecVersion handles PUT /specs/{id}/versions/{version}
func (s *Server) putSpecVersion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.storeSpec(w, r, vars["id"], vars["version"])
}

// deleteSpecVersion handles DELETE /specs/{id}/versions/{version}
//
// Best effort like the unversioned delete. When the deleted version was the
// latest, the next-highest remaining version is promoted by the metadata
// store; the latest alias is then rewritten to match, again best effort.
func (s *Server) deleteSpecVersion(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	vars := mux.Vars(r)
	specID, version := vars["id"], vars["version"]
	log := observability.FromContext(r.Context())

	if err := s.metadata.DeleteSpecVersion(r.Context(), owner, specID, version); err != nil {
		log.WithError(err).Warn("metadata delete failed, continuing")
	}
	if err := s.storage.DeleteSpecVersion(r.Context(), owner, specID, version); err != nil {
		log.WithError(err).Warn("storage delete failed, continuing")
	}

	s.refreshLatestAlias(r, owner, specID)

	httputil.WriteNoContent(w)
}

// refreshLatestAlias repoints the latest alias at the current latest version's
// artifact, or removes the alias when no version remains. Failures are logged
// and swallowed; the alias is only a build trigger landing key, reads resolve
// latest through the metadata store.
func (s *Server) refreshLatestAlias(r *http.Request, owner, specID string) {
	log := observability.FromContext(r.Context())

	version, err := s.metadata.GetLatestSpecVersion(r.Context(), owner, specID)
	if errors.Is(err, metadata.ErrNotFound) {
		// No versions remain; drop the alias so it cannot keep serving the
		// deleted bytes.
		if err := s.storage.DeleteSpecVersion(r.Context(), owner, specID, storage.LatestAlias); err != nil {
			log.WithError(err).Warn("failed to remove latest alias")
		}
		return
	}
	if err != nil {
		log.WithError(err).Warn("failed to resolve latest version for alias refresh")
		return
	}

	data, err := s.storage.GetSpec(r.Context(), owner, specID, version)
	if err != nil {
		log.WithError(err).Warn("failed to read latest artifact for alias refresh")
		return
	}

	if err := s.storage.CreateUpdateSpec(r.Context(), owner, specID, version, data, true); err != nil {
		log.WithError(err).Warn("failed to rewrite latest alias")
	}
}
