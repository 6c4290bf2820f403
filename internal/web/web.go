package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Joseda-hg/mindtask/internal/db"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	store    *db.Store
	logger   *zap.Logger
	cache    *cache.Cache
	now      func() time.Time
	validate *validator.Validate
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCacheTTL keeps query results for ttl. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl <= 0 {
			s.cache = nil
			return
		}
		s.cache = cache.New(ttl, 2*ttl)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func NewServer(store *db.Store, opts ...Option) *Server {
	s := &Server{
		store:    store,
		logger:   zap.NewNop(),
		cache:    cache.New(30*time.Second, time.Minute),
		now:      time.Now,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.tasksPageHandler)
	mux.HandleFunc("GET /notes", s.notesPageHandler)

	mux.HandleFunc("GET /api/notes", s.listNotesHandler)
	mux.HandleFunc("POST /api/notes", s.createNoteHandler)
	mux.HandleFunc("GET /api/notes/{id}", s.getNoteHandler)
	mux.HandleFunc("PUT /api/notes/{id}", s.updateNoteHandler)
	mux.HandleFunc("DELETE /api/notes/{id}", s.deleteNoteHandler)

	mux.HandleFunc("GET /api/tasks", s.listTasksHandler)
	mux.HandleFunc("GET /api/tasks/board", s.taskBoardHandler)
	mux.HandleFunc("POST /api/tasks", s.createTaskHandler)
	mux.HandleFunc("GET /api/tasks/{id}", s.getTaskHandler)
	mux.HandleFunc("PUT /api/tasks/{id}", s.updateTaskHandler)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.deleteTaskHandler)
	mux.HandleFunc("PUT /api/tasks/{id}/subtasks/{subtaskID}", s.updateSubtaskHandler)

	mux.HandleFunc("GET /api/views", s.listViewsHandler)
	mux.HandleFunc("POST /api/views", s.saveViewHandler)
	mux.HandleFunc("DELETE /api/views/{id}", s.deleteViewHandler)

	mux.HandleFunc("GET /api/searches/recent", s.recentSearchesHandler)
	mux.HandleFunc("DELETE /api/searches/recent", s.clearSearchesHandler)

	return s.withRequestLog(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// invalidate drops cached query results after a write.
func (s *Server) invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

func parseID(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	writeJSONStatus(w, http.StatusOK, payload)
}

func writeJSONStatus(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSONStatus(w, status, map[string]string{"error": err.Error()})
}

// writeStoreError maps store failures onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &validationErrs):
		writeError(w, http.StatusBadRequest, err)
	default:
		s.logger.Error("store failure",
			zap.String("request_id", w.Header().Get(requestIDHeader)),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
