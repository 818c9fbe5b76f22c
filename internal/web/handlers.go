package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brightclass/dataimport/internal/csvio"
	"github.com/brightclass/dataimport/internal/importer"
	"github.com/brightclass/dataimport/internal/web/middleware"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTypes returns the registered import types with their field
// registries so a client can render upload and mapping screens.
func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Types())
}

// handleDownloadTemplate serves an import type's CSV template as a download.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	t := importer.ImportType(chi.URLParam(r, "importType"))

	fileName, content, err := s.service.Template(t)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Write([]byte(content))
}

type suggestRequest struct {
	ImportType importer.ImportType `json:"import_type"`
	Headers    []string            `json:"csv_headers"`
	RawCSV     string              `json:"raw_csv"`
}

// handleSuggestMapping proposes a column mapping. The client sends either
// the headers it already parsed or the raw CSV text; headers win when both
// are present.
func (s *Server) handleSuggestMapping(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	headers := req.Headers
	if len(headers) == 0 {
		parsed, err := csvio.Parse(req.RawCSV)
		if err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}
		headers = parsed.Headers
	}

	suggestions, err := s.service.Suggest(req.ImportType, headers)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

type validateRequest struct {
	ImportType importer.ImportType    `json:"import_type"`
	Mapping    importer.ColumnMapping `json:"column_mapping"`
	ParsedCSV  *csvio.ParsedCSV       `json:"parsed_csv"`
	RawCSV     string                 `json:"raw_csv"`
}

// parsedInput resolves the request's CSV payload: an already-parsed table if
// the client kept one from a previous stage, otherwise the raw text.
func (req *validateRequest) parsedInput() (*csvio.ParsedCSV, error) {
	if req.ParsedCSV != nil && len(req.ParsedCSV.Headers) > 0 {
		return req.ParsedCSV, nil
	}
	return csvio.Parse(req.RawCSV)
}

// handleValidate runs the validation pass and returns the row-by-row report.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	parsed, err := req.parsedInput()
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	result, err := s.service.ValidateCSV(r.Context(), middleware.TenantID(r.Context()), req.ImportType, parsed, req.Mapping)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type executeRequest struct {
	validateRequest
	FileName       string            `json:"file_name"`
	Metadata       map[string]string `json:"metadata"`
	SkipDuplicates bool              `json:"skip_duplicates"`
}

// handleExecute validates against a fresh snapshot and runs the import. The
// response carries the finished job, including per-row errors.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	parsed, err := req.parsedInput()
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	tenantID := middleware.TenantID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	result, err := s.service.ValidateCSV(ctx, tenantID, req.ImportType, parsed, req.Mapping)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	job, err := s.service.Execute(ctx, tenantID, importer.ExecuteParams{
		CreatedBy:      middleware.UserID(r.Context()),
		Type:           req.ImportType,
		FileName:       req.FileName,
		Mapping:        req.Mapping,
		Rows:           result.Rows,
		Metadata:       req.Metadata,
		SkipDuplicates: req.SkipDuplicates,
	})
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, job)
}

// handleHistory lists the tenant's import jobs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.service.History(r.Context(), middleware.TenantID(r.Context()), s.listLimit(r))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// handleJobDetail returns one job with its per-row records.
func (s *Server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.service.Job(r.Context(), middleware.TenantID(r.Context()), chi.URLParam(r, "jobID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// handleRollback reverts a finished import.
func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	reverted, err := s.service.Rollback(r.Context(), middleware.TenantID(r.Context()), jobID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "rolled_back_count": reverted})
}

// handleAuditLog lists the tenant's audit events, newest first.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	events, err := s.service.Audit(r.Context(), middleware.TenantID(r.Context()), s.listLimit(r))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": events})
}

// decode reads a JSON body with the configured size cap.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// listLimit reads the optional ?limit= parameter, capped by the configured
// history page size.
func (s *Server) listLimit(r *http.Request) int {
	limit := s.cfg.Import.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	return limit
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, importer.ErrNotFound):
		return http.StatusNotFound
	case importer.MapError(err).Code == "rollback_not_allowed":
		return http.StatusConflict
	case importer.MapError(err).Code == "unknown_import_type":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
