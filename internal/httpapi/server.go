package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/domain"
	apimw "github.com/hamed0406/netcheck/internal/httpapi/middleware"
	"github.com/hamed0406/netcheck/internal/notify"
	"github.com/hamed0406/netcheck/internal/repo"
)

// RunFunc executes the battery once. A non-nil report with an error means
// the run completed and some probes faulted.
type RunFunc func(ctx context.Context) (*domain.Report, error)

const maxListLimit = 100

type Server struct {
	Logger   *zap.Logger
	Store    repo.ReportStore
	Run      RunFunc
	Notifier notify.Notifier

	// RunRPM and RunBurst limit POST /api/runs per client IP.
	RunRPM   int
	RunBurst int
	// TrustedProxies may set X-Forwarded-For for rate limiting.
	TrustedProxies []netip.Prefix

	running sync.Mutex
}

func NewServer(l *zap.Logger, store repo.ReportStore, run RunFunc) *Server {
	return &Server{Logger: l, Store: store, Run: run}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/runs", func(r chi.Router) {
		r.With(apimw.RateLimit(s.RunRPM, s.RunBurst, s.TrustedProxies...)).Post("/", s.handleCreateRun)
		r.Get("/", s.handleListRuns)
		r.Get("/latest", s.handleLatestRun)
		r.Get("/{id}", s.handleGetRun)
	})

	return r
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	if !s.running.TryLock() {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	defer s.running.Unlock()

	// The run outlives the request if the client goes away.
	ctx := context.WithoutCancel(r.Context())

	report, err := s.Run(ctx)
	if report == nil {
		s.Logger.Error("run_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "run failed")
		return
	}
	if err != nil {
		s.Logger.Warn("run_faults", zap.Error(err))
	}

	id, err := s.Store.Save(ctx, report)
	if err != nil {
		s.Logger.Error("save_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save report")
		return
	}

	if s.Notifier != nil {
		if _, err := notify.Report(ctx, s.Notifier, report); err != nil {
			s.Logger.Warn("notify_failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	s.Logger.Info("run_created",
		zap.Int64("id", id),
		zap.String("overall_status", string(report.OverallStatus)),
	)
	w.Header().Set("Location", "/api/runs/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, repo.Record{ID: id, Report: report})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := repo.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}
	recs, err := s.Store.List(r.Context(), limit)
	if err != nil {
		s.Logger.Error("list_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Store.Latest(r.Context())
	s.writeRecord(w, rec, err)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	rec, err := s.Store.Get(r.Context(), id)
	s.writeRecord(w, rec, err)
}

func (s *Server) writeRecord(w http.ResponseWriter, rec *repo.Record, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "run not found")
	case err != nil:
		s.Logger.Error("load_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load error")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
