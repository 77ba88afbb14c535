package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/washb22/gunghabnote/internal/auth"
	"github.com/washb22/gunghabnote/internal/community"
	"github.com/washb22/gunghabnote/internal/compat"
	"github.com/washb22/gunghabnote/internal/logger"
	"github.com/washb22/gunghabnote/internal/metrics"
	"github.com/washb22/gunghabnote/internal/mindreader"
)

const (
	maxBodyBytes = 64 << 10

	msgMethodNotAllowed = "Method not allowed"
	msgNotFound         = "Not found"
	msgBadJSON          = "잘못된 요청 형식입니다."
	msgInternal         = "요청 처리 중 오류가 발생했습니다."
)

// Analyzer runs the compatibility pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req compat.Request) (*compat.Result, error)
}

// Authenticator exchanges provider codes for identities.
type Authenticator interface {
	Supports(provider auth.Provider) bool
	RedirectURI(provider auth.Provider, origin string) string
	Exchange(ctx context.Context, provider auth.Provider, code, redirectURI string) (auth.Identity, error)
}

// Sessions stores logged-in users.
type Sessions interface {
	Create(ctx context.Context, user auth.Identity) (*auth.Session, error)
	Get(ctx context.Context, id string) (*auth.Session, error)
	Delete(ctx context.Context, id string) error
}

// Deps are the collaborators behind the HTTP surface. Auth and board routes
// are only mounted when their dependencies are set.
type Deps struct {
	Analyzer      Analyzer
	Reader        *mindreader.Reader
	Authenticator Authenticator
	Sessions      Sessions
	Board         *community.Service
	Metrics       *metrics.Collector
	Logger        *zap.Logger
}

// Handler provides HTTP API endpoints
type Handler struct {
	analyzer Analyzer
	reader   *mindreader.Reader
	oauth    Authenticator
	sessions Sessions
	board    *community.Service
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(deps Deps) *Handler {
	reader := deps.Reader
	if reader == nil {
		reader = mindreader.NewReader(nil, nil)
	}
	return &Handler{
		analyzer: deps.Analyzer,
		reader:   reader,
		oauth:    deps.Authenticator,
		sessions: deps.Sessions,
		board:    deps.Board,
		metrics:  deps.Metrics,
		logger:   logger.Component(deps.Logger, "api"),
	}
}

// Router builds the full router: every route is served at the root and
// again under /api. The alias strips the prefix and hands the request to the
// same routes, so method mismatches and preflights behave identically.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.withCORS, h.withRequestLog)
	h.setFallbackHandlers(r)

	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	}
	h.RegisterRoutes(r)

	root := mux.NewRouter()
	root.PathPrefix("/api/").Handler(http.StripPrefix("/api", r))
	root.NotFoundHandler = r

	return root
}

// setFallbackHandlers answers preflight requests on known paths and turns
// method and path misses into JSON. Middleware does not run for these
// handlers, so they set CORS themselves.
func (h *Handler) setFallbackHandlers(r *mux.Router) {
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		setCORS(w.Header())
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		respondError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		setCORS(w.Header())
		respondError(w, http.StatusNotFound, msgNotFound)
	})
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/analyze-love-style", h.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/mind-reading", h.handleMindReading).Methods(http.MethodPost)

	if h.oauth != nil && h.sessions != nil {
		r.HandleFunc("/auth/session", h.handleGetSession).Methods(http.MethodGet)
		r.HandleFunc("/auth/session", h.handleLogout).Methods(http.MethodDelete)
		r.HandleFunc("/auth/{provider}", h.handleLogin).Methods(http.MethodPost)
	}

	if h.board != nil && h.sessions != nil {
		r.HandleFunc("/posts", h.handleListPosts).Methods(http.MethodGet)
		r.HandleFunc("/posts", h.handleCreatePost).Methods(http.MethodPost)
		r.HandleFunc("/posts/{id}", h.handleGetPost).Methods(http.MethodGet)
		r.HandleFunc("/posts/{id}/like", h.handleToggleLike).Methods(http.MethodPost)
		r.HandleFunc("/posts/{id}/comments", h.handleAddComment).Methods(http.MethodPost)
	}
}

func setCORS(header http.Header) {
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func (h *Handler) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORS(w.Header())
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if h.metrics != nil {
			h.metrics.ObserveRequest(route, rec.status)
		}

		h.logger.Debug("request served",
			zap.String(logger.FieldRequestID, requestID),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(started)),
		)
	})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondErrorDetails(w http.ResponseWriter, status int, message, details string) {
	respondJSON(w, status, map[string]string{"error": message, "details": details})
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	respondError(w, http.StatusInternalServerError, msgInternal)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
