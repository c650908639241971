// Package chi exposes the classification service over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/knnvote/internal/domain"
	classifyuc "github.com/kailas-cloud/knnvote/internal/usecase/classify"
	healthuc "github.com/kailas-cloud/knnvote/internal/usecase/health"
)

// maxBodyBytes bounds classify request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	classify      *classifyuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(classify *classifyuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		classify: classify,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		preconditionHandler,
		sentinelHandler(domain.ErrDatasetNotFound, http.StatusNotFound, ErrorCodeDatasetNotFound),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, ErrorCodeDimensionMismatch),
		sentinelHandler(domain.ErrInvalidDataset, http.StatusBadRequest, ErrorCodeInvalidDataset),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
	}
	return s
}

// ListDatasets handles GET /datasets.
func (s *Server) ListDatasets(w http.ResponseWriter, _ *http.Request) {
	summaries := s.classify.List()
	items := make([]DatasetResponse, len(summaries))
	for i, sum := range summaries {
		items[i] = datasetToResponse(sum)
	}
	writeJSON(w, http.StatusOK, DatasetListResponse{Items: items})
}

// GetDataset handles GET /datasets/{dataset}.
func (s *Server) GetDataset(w http.ResponseWriter, r *http.Request) {
	sum, err := s.classify.Describe(chi.URLParam(r, "dataset"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, datasetToResponse(sum))
}

// Classify handles POST /datasets/{dataset}/classify.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.classify.Classify(r.Context(), chi.URLParam(r, "dataset"), classifyuc.Request{
		K:     req.K,
		Query: req.Query,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeToResponse(&out))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDatasetNotFound,
		domain.ErrDimensionMismatch,
		domain.ErrInvalidDataset,
		domain.ErrRateLimited,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// preconditionHandler reports the violated invariant; its detail only echoes caller input.
func preconditionHandler(w http.ResponseWriter, err error, _ string) bool {
	var pe *domain.PreconditionError
	if !errors.As(err, &pe) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:      ErrorCodePreconditionViolation,
		Message:   pe.Error(),
		Invariant: string(pe.Invariant),
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func datasetToResponse(s classifyuc.Summary) DatasetResponse {
	return DatasetResponse{
		Name:        s.Name,
		Classes:     s.Classes,
		ClassCounts: s.ClassCounts,
		Size:        s.Size,
		Dim:         s.Dim,
	}
}

func outcomeToResponse(o *classifyuc.Outcome) ClassifyResponse {
	votes := make([]VoteResponse, len(o.Votes))
	for i, v := range o.Votes {
		votes[i] = VoteResponse{Label: v.Label, Fraction: v.Fraction}
	}
	neighbors := make([]NeighborResponse, len(o.Neighbors))
	for i, n := range o.Neighbors {
		neighbors[i] = NeighborResponse{Index: n.Index, Label: n.Label, Distance: n.Distance}
	}
	return ClassifyResponse{
		Dataset:   o.Dataset,
		K:         o.K,
		Votes:     votes,
		Predicted: o.Predicted,
		Neighbors: neighbors,
		Cached:    o.Cached,
	}
}
