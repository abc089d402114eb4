// Package server exposes the comparison pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bizlens/competitor-insights/internal/comparison"
	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/model"
	"github.com/bizlens/competitor-insights/internal/provider"
	"github.com/bizlens/competitor-insights/internal/store"
)

// ComparisonService runs comparisons. Implemented by
// comparison.Orchestrator.
type ComparisonService interface {
	CreateComparison(ctx context.Context, req comparison.Request) (*model.ComparisonReport, error)
}

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins configures CORS. Empty allows any origin.
	AllowedOrigins []string
}

// Server holds the handler dependencies. Reports may be nil when
// persistence is disabled; the report endpoints then return 404.
type Server struct {
	comparisons ComparisonService
	data        provider.DataProvider
	reports     store.Store
}

// New creates a Server.
func New(comparisons ComparisonService, data provider.DataProvider, reports store.Store) *Server {
	return &Server{comparisons: comparisons, data: data, reports: reports}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router(opts Options) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/comparisons", s.handleCreateComparison)
	r.Get("/comparisons", s.handleListReports)
	r.Get("/comparisons/{reportID}", s.handleGetReport)
	r.Get("/businesses/search", s.handleSearch)

	return r
}

type comparisonRequest struct {
	UserIdentifier        string   `json:"user_business_identifier"`
	CompetitorIdentifiers []string `json:"competitor_identifiers"`
	Style                 string   `json:"report_style"`
}

func (s *Server) handleCreateComparison(w http.ResponseWriter, r *http.Request) {
	var req comparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &errs.InvalidInputError{Field: "body", Message: "malformed JSON"})
		return
	}

	report, err := s.comparisons.CreateComparison(r.Context(), comparison.Request{
		UserIdentifier:        req.UserIdentifier,
		CompetitorIdentifiers: req.CompetitorIdentifiers,
		Style:                 model.ReportStyle(req.Style),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	if s.reports == nil {
		writeError(w, &errs.NotFoundError{Identifier: reportID, Provider: "store"})
		return
	}

	report, err := s.reports.GetReport(r.Context(), reportID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeJSON(w, http.StatusOK, map[string]any{"reports": []model.ComparisonReport{}})
		return
	}

	filter := store.ReportFilter{
		UserBusiness: r.URL.Query().Get("user_business"),
		Limit:        queryInt(r, "limit"),
		Offset:       queryInt(r, "offset"),
	}
	reports, err := s.reports.ListReports(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if reports == nil {
		reports = []model.ComparisonReport{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, &errs.InvalidInputError{Field: "query", Message: "query parameter is required"})
		return
	}

	limit := queryInt(r, "limit")
	if limit <= 0 || limit > 20 {
		limit = 10
	}

	results, err := s.data.Search(r.Context(), query, r.URL.Query().Get("location"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []model.BusinessProfile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorEnvelope is the wire shape of every non-2xx response.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(errType string) int {
	switch errType {
	case errs.TypeInvalidInput:
		return http.StatusBadRequest
	case errs.TypeBusinessNotFound, errs.TypeNotFound:
		return http.StatusNotFound
	case errs.TypeLLMQuota:
		return http.StatusTooManyRequests
	case errs.TypeProviderDown, errs.TypeLLMDown:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	errType := errs.TypeOf(err)
	status := statusFor(errType)

	message := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
		message = "internal error"
	}

	writeJSON(w, status, errorEnvelope{Error: errorBody{Type: errType, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
