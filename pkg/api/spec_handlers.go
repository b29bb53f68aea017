package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/specstash/specstash/pkg/httputil"
	"github.com/specstash/specstash/pkg/metadata"
	"github.com/specstash/specstash/pkg/middleware"
	"github.com/specstash/specstash/pkg/observability"
	"github.com/specstash/specstash/pkg/spec"
	"github.com/specstash/specstash/pkg/storage"
)

// LanguageHeader declares the parse format of write bodies.
const LanguageHeader = "X-LANGUAGE"

// listSpecs handles GET /specs
func (s *Server) listSpecs(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)

	records, err := s.metadata.ListSpecs(r.Context(), owner)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to list specs")
		httputil.WriteInternalError(w, "failed to list specs")
		return
	}
	if records == nil {
		records = []metadata.Record{}
	}

	httputil.WriteSuccess(w, records)
}

// getSpec handles GET /specs/{id}
//
// Latest is always resolved through the metadata store and fetched by
// explicit version; the latest alias key is never read, so a stale alias
// cannot serve an outdated document.
func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	specID := mux.Vars(r)["id"]
	log := observability.FromContext(r.Context())

	rec, err := s.metadata.GetSpec(r.Context(), owner, specID)
	if errors.Is(err, metadata.ErrNotFound) {
		httputil.WriteNotFoundError(w, "spec not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to read spec metadata")
		httputil.WriteInternalError(w, "failed to read spec metadata")
		return
	}

	data, err := s.storage.GetSpec(r.Context(), owner, specID, rec.Version)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteNotFoundError(w, "spec not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to read spec artifact")
		httputil.WriteInternalError(w, "failed to read spec artifact")
		return
	}

	value, err := spec.Prepare(data, rec.Version)
	if err != nil {
		log.WithError(err).Error("failed to render spec")
		httputil.WriteInternalError(w, "failed to render spec")
		return
	}

	httputil.WriteSuccess(w, SpecResponse{Record: *rec, Value: value})
}

// putSpec handles PUT /specs/{id}
func (s *Server) putSpec(w http.ResponseWriter, r *http.Request) {
	specID := mux.Vars(r)["id"]
	s.storeSpec(w, r, specID, "")
}

// deleteSpec handles DELETE /specs/{id}
//
// Both backend deletes are best effort: each failure is swallowed
// independently so a partial delete still reports success.
func (s *Server) deleteSpec(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	specID := mux.Vars(r)["id"]
	log := observability.FromContext(r.Context())

	if err := s.metadata.DeleteSpec(r.Context(), owner, specID); err != nil {
		log.WithError(err).Warn("metadata delete failed, continuing")
	}
	if err := s.storage.DeleteSpec(r.Context(), owner, specID); err != nil {
		log.WithError(err).Warn("storage delete failed, continuing")
	}

	httputil.WriteNoContent(w)
}

// storeSpec runs the shared write pipeline: process, quota check, storage
// write, metadata write. pathVersion is empty for the unversioned endpoint;
// when set, the body's declared version must match it before anything is
// written. The storage write is not rolled back when the metadata write
// fails; the orphaned artifact is harmless because the metadata record is
// authoritative for listing and serving.
func (s *Server) storeSpec(w http.ResponseWriter, r *http.Request, specID, pathVersion string) {
	owner := middleware.GetOwner(r)
	language := r.Header.Get(LanguageHeader)
	log := observability.FromContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequest(w, "unable to read request body")
		return
	}

	processStart := time.Now()
	info, err := spec.Process(body, language)
	s.observeSpecProcess(language, time.Since(processStart))
	if err != nil {
		s.countValidationError(language)
		s.countSpecWrite(language, "invalid")
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if pathVersion != "" && info.Version != pathVersion {
		s.countSpecWrite(language, "invalid")
		httputil.WriteBadRequest(w, versionMismatchMessage(info.Version, pathVersion))
		return
	}

	result, err := s.guard.CheckWithinLimit(r.Context(), owner, specID, info.ModelCount)
	if err != nil {
		log.WithError(err).Error("failed to check free tier usage")
		httputil.WriteInternalError(w, "failed to check free tier usage")
		return
	}
	if !result.Admitted {
		s.countQuotaRejection()
		s.countSpecWrite(language, "quota")
		httputil.WritePaymentRequired(w, result.Reason)
		return
	}

	// The freshness token makes this write the new latest, so the alias is
	// refreshed in the same storage call.
	err = s.storage.CreateUpdateSpec(r.Context(), owner, specID, info.Version, info.Normalized, true)
	if err != nil {
		s.countSpecWrite(language, "error")
		log.WithError(err).Error("failed to write spec artifact")
		httputil.WriteInternalError(w, "failed to write spec artifact")
		return
	}

	rec := metadata.Record{
		SpecID:      specID,
		Version:     info.Version,
		Title:       info.Title,
		Description: info.Description,
		ModelCount:  info.ModelCount,
		UpdatedAt:   metadata.NewFreshnessToken(time.Now()),
	}
	if err := s.metadata.CreateUpdateSpec(r.Context(), owner, rec); err != nil {
		s.countSpecWrite(language, "error")
		log.WithError(err).Error("failed to write spec metadata")
		httputil.WriteInternalError(w, "failed to write spec metadata")
		return
	}

	s.countSpecWrite(language, "success")
	httputil.WriteNoContent(w)
}

func (s *Server) countSpecWrite(language, status string) {
	if s.metrics != nil {
		s.metrics.SpecWritesTotal.WithLabelValues(language, status).Inc()
	}
}

func (s *Server) countValidationError(language string) {
	if s.metrics != nil {
		s.metrics.SpecValidationErrors.WithLabelValues(language).Inc()
	}
}

func (s *Server) observeSpecProcess(language string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.SpecProcessDuration.WithLabelValues(language).Observe(elapsed.Seconds())
	}
}

func (s *Server) countQuotaRejection() {
	if s.metrics != nil {
		s.metrics.QuotaRejectionsTotal.Inc()
	}
}
