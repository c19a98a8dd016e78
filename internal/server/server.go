package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"blockvault/internal/auth"
	"blockvault/internal/services/legal"
	"blockvault/internal/services/vault"
	"blockvault/internal/services/zkml"
)

// Pinger is the database liveness check used by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prover is the proving-backend readiness check used by /health.
type Prover interface {
	HealthCheck() error
}

// Deps wires the services the server fronts.
type Deps struct {
	Log        *zap.Logger
	Auth       *auth.Service
	Vault      *vault.Service
	Legal      *legal.Service
	ZKML       *zkml.Service
	DB         Pinger
	Prover     Prover
	StorageDir string
	CORSOrigin string
}

// Server is the HTTP front of the vault.
type Server struct {
	log        *zap.Logger
	auth       *auth.Service
	vault      *vault.Service
	legal      *legal.Service
	zkml       *zkml.Service
	db         Pinger
	prover     Prover
	storageDir string
	corsOrigin string
	handler    http.Handler
}

// New assembles the route table and middleware chain.
func New(d Deps) *Server {
	s := &Server{
		log:        d.Log,
		auth:       d.Auth,
		vault:      d.Vault,
		legal:      d.Legal,
		zkml:       d.ZKML,
		db:         d.DB,
		prover:     d.Prover,
		storageDir: d.StorageDir,
		corsOrigin: d.CORSOrigin,
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/get_nonce", s.handleGetNonce)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /auth/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /users/profile", s.requireAuth(s.handleGetProfile))
	mux.HandleFunc("PUT /users/profile", s.requireAuth(s.handlePutProfile))

	mux.HandleFunc("POST /files", s.requirePerm(auth.PermFilesWrite, s.handleUpload))
	mux.HandleFunc("GET /files", s.requirePerm(auth.PermFilesRead, s.handleListFiles))
	mux.HandleFunc("GET /files/shared", s.requirePerm(auth.PermFilesRead, s.handleIncomingShares))
	mux.HandleFunc("GET /files/shares/outgoing", s.requirePerm(auth.PermFilesShare, s.handleOutgoingShares))
	mux.HandleFunc("DELETE /files/shares/{id}", s.requireAuth(s.handleRevokeShare))
	mux.HandleFunc("GET /files/{id}", s.requirePerm(auth.PermFilesRead, s.handleDownload))
	mux.HandleFunc("DELETE /files/{id}", s.requirePerm(auth.PermFilesWrite, s.handleDeleteFile))
	mux.HandleFunc("GET /files/{id}/verify", s.requirePerm(auth.PermFilesRead, s.handleVerifyFile))
	mux.HandleFunc("POST /files/{id}/share", s.requirePerm(auth.PermFilesShare, s.handleShare))
	mux.HandleFunc("POST /files/{id}/zkml-summary", s.requirePerm(auth.PermFilesRead, s.handleSummarize))

	mux.HandleFunc("POST /legal/notarize", s.requirePerm(auth.PermLegal, s.handleNotarize))
	mux.HandleFunc("GET /legal/documents", s.requirePerm(auth.PermLegal, s.handleListDocuments))
	mux.HandleFunc("GET /legal/documents/{id}", s.requireAuth(s.handleGetDocument))
	mux.HandleFunc("GET /legal/documents/{id}/verify", s.requireAuth(s.handleVerifyDocument))
	mux.HandleFunc("POST /legal/documents/{id}/esign", s.requirePerm(auth.PermLegal, s.handleRequestSignature))
	mux.HandleFunc("DELETE /legal/documents/{id}/esign", s.requirePerm(auth.PermLegal, s.handleCancelSignature))
	mux.HandleFunc("POST /legal/documents/{id}/revoke", s.requirePerm(auth.PermLegal, s.handleRevokeAccess))
	mux.HandleFunc("POST /legal/redact", s.requireAuth(s.handleRedact))

	s.handler = s.logRequests(s.recoverPanics(s.cors(mux)))
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	err := <-errCh
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "blockvault",
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]string{
		"db":      "ok",
		"storage": "ok",
		"prover":  "ok",
	}
	healthy := true
	if err := s.db.Ping(ctx); err != nil {
		components["db"] = err.Error()
		healthy = false
	}
	if _, err := os.Stat(s.storageDir); err != nil {
		components["storage"] = err.Error()
		healthy = false
	}
	if err := s.prover.HealthCheck(); err != nil {
		components["prover"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	respondJSON(w, status, map[string]any{
		"status":     state,
		"components": components,
	})
}
