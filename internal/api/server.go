package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ajitpratap0/modaudit/internal/audit"
	"github.com/ajitpratap0/modaudit/internal/models"
)

// Auditor is the query surface of the audit engine.
type Auditor interface {
	Results() []*models.ClassificationResult
	Result(handle string) (*models.ClassificationResult, error)
	ResultByActor(actor int) (*models.ClassificationResult, error)
	Flagged() []*models.ClassificationResult
	RoomSummary() models.RoomSummary
	Summary() string
	Refresh() bool
}

// Dataset reports the state of the reference tables.
type Dataset interface {
	Loaded() bool
	Loading() bool
	Counts() models.DatasetCounts
}

// Server is an HTTP API server that exposes the classification cache.
type Server struct {
	auditor   Auditor
	dataset   Dataset
	gatherer  prometheus.Gatherer // nil = no /metrics route
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(aud Auditor, ds Dataset, gatherer prometheus.Gatherer, logger *slog.Logger, authToken string) *Server {
	return &Server{
		auditor:   aud,
		dataset:   ds,
		gatherer:  gatherer,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /v1/dataset", s.auth(s.handleDataset))
	mux.HandleFunc("POST /v1/dataset/refresh", s.auth(s.handleRefresh))
	mux.HandleFunc("GET /v1/participants", s.auth(s.handleParticipants))
	mux.HandleFunc("GET /v1/participants/{handle}", s.auth(s.handleParticipant))
	mux.HandleFunc("GET /v1/actors/{actor}", s.auth(s.handleActor))
	mux.HandleFunc("GET /v1/flagged", s.auth(s.handleFlagged))
	mux.HandleFunc("GET /v1/summary", s.auth(s.handleSummary))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// datasetResponse is returned by GET /v1/dataset.
type datasetResponse struct {
	Loaded  bool `json:"loaded"`
	Loading bool `json:"loading"`
	models.DatasetCounts
}

func (s *Server) handleDataset(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, datasetResponse{
		Loaded:        s.dataset.Loaded(),
		Loading:       s.dataset.Loading(),
		DatasetCounts: s.dataset.Counts(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	if !s.auditor.Refresh() {
		s.writeError(w, http.StatusConflict, "dataset fetch already in progress")
		return
	}
	s.logger.Info("dataset refresh requested via api")
	s.writeJSON(w, http.StatusAccepted, map[string]bool{"started": true})
}

// resultsResponse wraps a list of results.
type resultsResponse struct {
	Results []*models.ClassificationResult `json:"results"`
}

func (s *Server) handleParticipants(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, resultsResponse{Results: nonNil(s.auditor.Results())})
}

func (s *Server) handleParticipant(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	if handle == "" {
		s.writeError(w, http.StatusBadRequest, "handle is required")
		return
	}

	res, err := s.auditor.Result(handle)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleActor(w http.ResponseWriter, r *http.Request) {
	actor, err := strconv.Atoi(r.PathValue("actor"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "actor must be an integer")
		return
	}

	res, err := s.auditor.ResultByActor(actor)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFlagged(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, resultsResponse{Results: nonNil(s.auditor.Flagged())})
}

// summaryResponse is returned by GET /v1/summary.
type summaryResponse struct {
	Summary string `json:"summary"`
	models.RoomSummary
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, summaryResponse{
		Summary:     s.auditor.Summary(),
		RoomSummary: s.auditor.RoomSummary(),
	})
}

// --- helpers ---

func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, audit.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "participant not found")
		return
	}
	s.logger.Error("failed to look up participant", "error", err)
	s.writeError(w, http.StatusInternalServerError, "failed to look up participant")
}

func nonNil(rs []*models.ClassificationResult) []*models.ClassificationResult {
	if rs == nil {
		return []*models.ClassificationResult{}
	}
	return rs
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
