// Package server exposes the review and publish workflows over HTTP.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brahma-hq/datasheet-tracker/constants"
	"github.com/brahma-hq/datasheet-tracker/internal/async"
	"github.com/brahma-hq/datasheet-tracker/internal/common"
	"github.com/brahma-hq/datasheet-tracker/internal/export"
	"github.com/brahma-hq/datasheet-tracker/internal/publish"
	"github.com/brahma-hq/datasheet-tracker/internal/repository"
	"github.com/brahma-hq/datasheet-tracker/internal/review"
)

type Server struct {
	Logger    *slog.Logger
	Review    *review.Service
	Publisher *publish.Publisher
	Export    *export.Service
	Files     repository.DatasheetFileRepository
	Queue     async.Queue
	Cfg       common.ServerConfig
}

func New(logger *slog.Logger, rev *review.Service, pub *publish.Publisher, exp *export.Service,
	files repository.DatasheetFileRepository, queue async.Queue, cfg common.ServerConfig) *Server {
	return &Server{
		Logger:    logger,
		Review:    rev,
		Publisher: pub,
		Export:    exp,
		Files:     files,
		Queue:     queue,
		Cfg:       cfg,
	}
}

// Handler wires up the routes. Everything except the health probe sits
// behind basic auth.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /candidates", s.basicAuth(s.handleCandidates))
	mux.Handle("GET /candidate", s.basicAuth(s.handleCandidate))
	mux.Handle("POST /review", s.basicAuth(s.handleReview))
	mux.Handle("POST /process", s.basicAuth(s.handleProcess))
	mux.Handle("POST /publish", s.basicAuth(s.handlePublish))
	mux.Handle("GET /active", s.basicAuth(s.handleActive))
	mux.Handle("GET /export.xlsx", s.basicAuth(s.handleExport))
	return mux
}

func (s *Server) basicAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.Cfg.BasicUser)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.Cfg.BasicPass)) == 1
		if !ok || !userOK || !passOK {
			w.Header().Set("WWW-Authenticate", `Basic realm="datasheet-tracker"`)
			s.writeError(w, r, common.NewAppError("AUTH_REQUIRED", "authentication required", common.ErrUnauthorized))
			return
		}
		next(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	showAll := r.URL.Query().Get("all") == "1"
	paths, err := s.Review.ListPending(r.Context(), showAll)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"candidates": paths})
}

func (s *Server) handleCandidate(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if strings.TrimSpace(path) == "" {
		s.writeError(w, r, common.NewAppError("MISSING_PATH", "path query parameter is required", common.ErrInvalidInput))
		return
	}
	doc, err := s.Review.Candidate(r.Context(), path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req review.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.NewAppError("BAD_BODY", "invalid request body", common.ErrInvalidInput))
		return
	}
	if req.Reviewer == "" {
		if user, _, ok := r.BasicAuth(); ok {
			req.Reviewer = user
		}
	}
	out, err := s.Review.Review(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleProcess queues extraction. With a file_id in the body only that file
// is queued; otherwise every file still awaiting extraction (uploaded or
// previously failed to decode) is.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID string `json:"file_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, common.NewAppError("BAD_BODY", "invalid request body", common.ErrInvalidInput))
			return
		}
	}

	var ids []uuid.UUID
	if req.FileID != "" {
		id, err := uuid.Parse(req.FileID)
		if err != nil {
			s.writeError(w, r, common.NewAppError("BAD_FILE_ID", "file_id is not a valid UUID", common.ErrInvalidInput))
			return
		}
		if _, err := s.Files.GetByID(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		ids = append(ids, id)
	} else {
		files, err := s.Files.ListByStatus(r.Context(), constants.StatusUploaded, constants.StatusDecodeFailed)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		for _, f := range files {
			ids = append(ids, f.ID)
		}
	}

	traceID := uuid.NewString()
	queued := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := s.Queue.Enqueue(r.Context(), async.Job{
			FileID:      id,
			SubmittedAt: time.Now().UTC(),
			TraceID:     traceID,
		}); err != nil {
			s.writeError(w, r, err)
			return
		}
		queued = append(queued, id.String())
	}
	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"queued":   queued,
		"count":    len(queued),
		"trace_id": traceID,
	})
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes  string `json:"notes"`
		DryRun bool   `json:"dry_run"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, common.NewAppError("BAD_BODY", "invalid request body", common.ErrInvalidInput))
			return
		}
	}
	res, err := s.Publisher.Publish(r.Context(), req.Notes, req.DryRun)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	ptr, err := s.Publisher.Active(r.Context())
	if err != nil {
		s.writeError(w, r, common.NewAppError("NO_ACTIVE_RELEASE", "no active release", common.ErrNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, ptr)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.Export.ExportMasterXLSX(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="master_data.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.Logger.Error("http.export_write_failed", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("http.encode_failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	code := "INTERNAL"
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("http.request_failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.Logger.Warn("http.request_rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": code, "message": errMessage(err)})
}

func errMessage(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
