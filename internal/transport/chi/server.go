// Package chi exposes the retrieval engine over HTTP.
package chi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	logpkg "github.com/LorenaRaichle/AdvDB-FlavorNet/internal/logger"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/retrieval"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/version"
)

const minQueryLength = 2

// Limits bound the per-request result count and the request deadline.
type Limits struct {
	DefaultLimit   int
	MaxLimit       int
	RequestTimeout time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = 12
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = 50
	}
	if l.RequestTimeout <= 0 {
		l.RequestTimeout = 30 * time.Second
	}
	return l
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the retrieval API. Handlers log
// through the request-scoped logger the middleware puts on the context,
// so every line carries the request id.
type Server struct {
	service       *retrieval.Service
	limits        Limits
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(service *retrieval.Service, limits Limits) *Server {
	s := &Server{
		service: service,
		limits:  limits.withDefaults(),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrPreferencesNotFound, http.StatusNotFound, "preferences_not_found"),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, "empty_query"),
		sentinelHandler(domain.ErrEmbeddingUpstream, http.StatusInternalServerError, "embedding_failed"),
		sentinelHandler(domain.ErrVectorSearchUpstream, http.StatusBadGateway, "vector_search_failed"),
	}
	return s
}

// Routes mounts the API handlers on r.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/recipes/recommended", s.Recommended)
	r.Get("/recipes/search", s.Search)
	r.Get("/health", s.Health)
}

type listResponse struct {
	Data []domain.RecipeResult `json:"data"`
}

// Recommended handles GET /recipes/recommended.
func (s *Server) Recommended(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.parseUserID(w, r)
	if !ok {
		return
	}
	limit := s.parseLimit(r)
	cuisine := strings.TrimSpace(r.URL.Query().Get("cuisine"))

	ctx, cancel := context.WithTimeout(r.Context(), s.limits.RequestTimeout)
	defer cancel()

	results, err := s.service.Recommend(ctx, userID, limit, cuisine)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: results})
}

// Search handles GET /recipes/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.parseUserID(w, r)
	if !ok {
		return
	}
	limit := s.parseLimit(r)

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if len(query) < minQueryLength {
		writeError(w, http.StatusBadRequest, "invalid_query",
			"query must be at least "+strconv.Itoa(minQueryLength)+" characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.limits.RequestTimeout)
	defer cancel()

	results, err := s.service.Search(ctx, userID, query, limit)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: results})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_user_id", "user_id must be a positive integer")
		return 0, false
	}
	return userID, true
}

// parseLimit clamps the limit parameter into [1, MaxLimit]; absent or
// unparseable values fall back to the default.
func (s *Server) parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.limits.DefaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return s.limits.DefaultLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > s.limits.MaxLimit {
		return s.limits.MaxLimit
	}
	return limit
}

func (s *Server) handleDomainError(r *http.Request, w http.ResponseWriter, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrPreferencesNotFound,
		domain.ErrEmptyQuery,
		domain.ErrEmbeddingUpstream,
		domain.ErrVectorSearchUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
