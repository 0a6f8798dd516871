// Package httpapi exposes the credential service over HTTP. It is a thin
// transport: it decodes typed request bodies, enforces the identity
// assertion on mutating routes, and maps service errors onto status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/erisahalipaj/userauth/internal/logging"
	"github.com/erisahalipaj/userauth/internal/server/auth"
	"github.com/erisahalipaj/userauth/internal/server/services"
)

// CredentialService is the transport-facing contract of the business layer.
type CredentialService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*services.AuthResult, error)
	Authenticate(ctx context.Context, username, password string) (*services.AuthResult, error)
	Change(ctx context.Context, req services.ChangeRequest) error
	Delete(ctx context.Context, userID string) error
}

type Server struct {
	address string
	service CredentialService
	issuer  *auth.TokenIssuer
	logger  logging.Logger
	mux     *http.ServeMux
}

func NewServer(address string, service CredentialService, issuer *auth.TokenIssuer, logger logging.Logger) *Server {
	s := &Server{
		address: address,
		service: service,
		issuer:  issuer,
		logger:  logger.With("module", "httpapi"),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/change", s.handleChange)
	s.mux.HandleFunc("DELETE /api/auth/delete", s.handleDelete)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	s.logger.Info(r.Context(), "request handled",
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
