package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"vouch/internal/audit"
	"vouch/internal/config"
	"vouch/internal/logging"
	"vouch/internal/modelselect"
	"vouch/internal/services"
)

const (
	sessionHeader     = "X-Session-ID"
	uploadField       = "video"
	ackField          = "acknowledged"
	multipartMemory   = 32 << 20
	multipartOverhead = 1 << 20
	auditWriteTimeout = 15 * time.Minute
)

// Auditor runs one audit.
type Auditor interface {
	RunAudit(ctx context.Context, upload audit.Upload) (*audit.Result, error)
}

// CandidateResolver resolves the candidate models.
type CandidateResolver interface {
	Resolve(ctx context.Context) []modelselect.Candidate
}

// HealthChecker verifies the remote service credentials.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Options configures the HTTP front door.
type Options struct {
	Bind                   string
	AllowedOrigins         []string
	RequireAcknowledgement bool
	MaxUploadBytes         int64
	ReadTimeout            time.Duration
}

// OptionsFromConfig extracts server options from the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Bind:                   cfg.Paths.APIBind,
		AllowedOrigins:         cfg.Server.AllowedOrigins,
		RequireAcknowledgement: cfg.Server.RequireAcknowledgement,
		MaxUploadBytes:         cfg.MaxUploadBytes(),
		ReadTimeout:            time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
	}
}

// Server exposes the audit pipeline over HTTP.
type Server struct {
	auditor  Auditor
	models   CandidateResolver
	health   HealthChecker
	opts     Options
	sessions *sessionGate
	logger   *slog.Logger

	listener net.Listener
	server   *http.Server
}

// NewServer constructs a Server. health may be nil.
func NewServer(auditor Auditor, models CandidateResolver, health HealthChecker, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 5 * time.Minute
	}
	s := &Server{
		auditor:  auditor,
		models:   models,
		health:   health,
		opts:     opts,
		sessions: newSessionGate(),
		logger:   logging.NewComponentLogger(logger, "api-server"),
	}
	s.server = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      auditWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", sessionHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/healthz", s.wrap(s.handleHealth))
	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/audits", s.wrap(s.handleAudit))
		rt.Get("/models", s.wrap(s.handleModels))
	})
	return mux
}

func (s *Server) allowedOrigins() []string {
	if len(s.opts.AllowedOrigins) == 0 {
		return []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return s.opts.AllowedOrigins
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.opts.Bind)
	if bind == "" {
		return services.Wrap(services.ErrConfiguration, "serve", "listen", "paths.api_bind is empty", nil)
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "api_listening"),
	)
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			status := StatusForError(err)
			if status >= http.StatusInternalServerError {
				s.logger.Warn("request failed",
					logging.String("path", r.URL.Path),
					logging.Int("status", status),
					logging.Error(err),
					logging.String(logging.FieldCorrelationID, middleware.GetReqID(r.Context())),
				)
			}
			s.writeJSON(w, status, FromError(err))
		}
	}
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) error {
	session := sessionKey(r)
	if !s.sessions.acquire(session) {
		s.writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: "An audit is already running for this session. Wait for it to finish.",
			Code:  "audit_in_progress",
		})
		return nil
	}
	defer s.sessions.release(session)

	if s.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return uploadError(err)
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if s.opts.RequireAcknowledgement && !strings.EqualFold(strings.TrimSpace(r.FormValue(ackField)), "true") {
		s.writeJSON(w, http.StatusPreconditionRequired, ErrorResponse{
			Error: "Confirm that you have the rights to audit this content before uploading.",
			Code:  "acknowledgement_required",
		})
		return nil
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return services.Wrap(services.ErrValidation, "upload", "form", "missing video field", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return uploadError(err)
	}

	ctx := services.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	result, err := s.auditor.RunAudit(ctx, audit.Upload{Name: header.Filename, Data: data})
	if err != nil {
		return err
	}
	s.writeJSON(w, http.StatusOK, FromResult(result))
	return nil
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) error {
	s.writeJSON(w, http.StatusOK, FromCandidates(s.models.Resolve(r.Context())))
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	deep := r.URL.Query().Get("deep")
	if s.health == nil || (deep != "1" && !strings.EqualFold(deep, "true")) {
		s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return nil
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := s.health.HealthCheck(ctx); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Detail: err.Error()})
		return nil
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Detail: "gemini reachable"})
	return nil
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return services.Wrap(services.ErrValidation, "upload", "read", fmt.Sprintf("body exceeds %d bytes", maxErr.Limit), errUploadTooLarge)
	}
	return services.Wrap(services.ErrValidation, "upload", "read", "", err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}
