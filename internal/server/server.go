// Package server provides the HTTP REST API for the email triage service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/floworx/triage-agent/internal/config"
	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/llm"
	"github.com/floworx/triage-agent/internal/oauth"
	"github.com/floworx/triage-agent/internal/pipeline"
	"github.com/floworx/triage-agent/internal/providers/gmail"
	"github.com/floworx/triage-agent/internal/providers/outlook"
	"github.com/floworx/triage-agent/internal/provision"
	"github.com/floworx/triage-agent/internal/server/middleware"
	"github.com/floworx/triage-agent/internal/server/ratelimit"
)

// mailClient is the full provider surface a connected mailbox exposes:
// label provisioning plus message triage. Gmail and Outlook clients both
// satisfy it.
type mailClient interface {
	provision.Provider
	pipeline.Mailer
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	app         *config.Config
	oauth       *oauth.Manager
	llm         llm.Client
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
}

// Config holds server configuration
type Config struct {
	Port int
	App  *config.Config
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("app configuration is required")
	}
	if cfg.App.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	database, err := db.Connect(context.Background(), cfg.App.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Server{
		db:    database,
		app:   cfg.App,
		oauth: oauth.NewManager(cfg.App, database),
	}

	// Gemini is only needed by triage and drafting endpoints; the CRUD and
	// provisioning surface works without it.
	if cfg.App.GeminiKey != "" {
		client, err := llm.NewClient(context.Background(), llm.DefaultGeminiConfig(), cfg.App.GeminiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		s.llm = client
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	mux := http.NewServeMux()
	s.routes(mux)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for triage runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes registers all API endpoints
func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", s.authHandler.Login)
	mux.Handle("GET /api/v1/auth/me", s.requireAuth(s.handleMe))
	mux.Handle("PUT /api/v1/auth/password", s.requireAuth(s.handleUpdatePassword))

	// Businesses
	mux.Handle("POST /api/v1/businesses", s.requireAuth(s.handleCreateBusiness))
	mux.Handle("GET /api/v1/businesses", s.requireAuth(s.handleListBusinesses))
	mux.Handle("GET /api/v1/businesses/{id}", s.requireAuth(s.handleGetBusiness))
	mux.Handle("DELETE /api/v1/businesses/{id}", s.requireAuth(s.handleDeleteBusiness))
	mux.Handle("PUT /api/v1/businesses/{id}/voice", s.requireAuth(s.handleUpdateVoice))
	mux.Handle("PUT /api/v1/businesses/{id}/categories", s.requireAuth(s.handleUpdateCategories))
	mux.Handle("GET /api/v1/businesses/{id}/taxonomy", s.requireAuth(s.handleGetTaxonomy))

	// Team roster
	mux.Handle("PUT /api/v1/businesses/{id}/managers", s.requireAuth(s.handleUpsertManager))
	mux.Handle("GET /api/v1/businesses/{id}/managers", s.requireAuth(s.handleListManagers))
	mux.Handle("DELETE /api/v1/businesses/{id}/managers/{name}", s.requireAuth(s.handleDeleteManager))
	mux.Handle("PUT /api/v1/businesses/{id}/suppliers", s.requireAuth(s.handleUpsertSupplier))
	mux.Handle("GET /api/v1/businesses/{id}/suppliers", s.requireAuth(s.handleListSuppliers))
	mux.Handle("DELETE /api/v1/businesses/{id}/suppliers/{name}", s.requireAuth(s.handleDeleteSupplier))

	// Mailboxes
	mux.Handle("POST /api/v1/businesses/{id}/mailboxes", s.requireAuth(s.handleConnectMailbox))
	mux.Handle("GET /api/v1/businesses/{id}/mailboxes", s.requireAuth(s.handleListMailboxes))
	mux.Handle("GET /api/v1/mailboxes/{id}", s.requireAuth(s.handleGetMailbox))
	mux.Handle("DELETE /api/v1/mailboxes/{id}", s.requireAuth(s.handleDisconnectMailbox))
	mux.Handle("GET /api/v1/mailboxes/{id}/labels", s.requireAuth(s.handleListLabels))
	mux.Handle("GET /api/v1/mailboxes/{id}/stats", s.requireAuth(s.handleMailboxStats))

	// Label provisioning
	mux.Handle("GET /api/v1/mailboxes/{id}/provision", s.requireAuth(s.handleProvisionPlan))
	mux.Handle("POST /api/v1/mailboxes/{id}/provision", s.requireAuth(s.handleProvisionApply))
	mux.Handle("POST /api/v1/mailboxes/{id}/verify", s.requireAuth(s.handleProvisionVerify))

	// Workflow deployment
	mux.Handle("POST /api/v1/mailboxes/{id}/deploy", s.requireAuth(s.handleDeployWorkflow))
	mux.Handle("GET /api/v1/mailboxes/{id}/deployment", s.requireAuth(s.handleGetDeployment))
	mux.Handle("GET /api/v1/businesses/{id}/deployments", s.requireAuth(s.handleListDeployments))

	// Triage runs
	mux.Handle("POST /api/v1/mailboxes/{id}/triage", s.requireAuth(s.handleTriage))
	mux.Handle("POST /api/v1/mailboxes/{id}/triage/stream", s.requireAuth(s.handleTriageStream))
	mux.Handle("GET /api/v1/businesses/{id}/runs", s.requireAuth(s.handleListRuns))
	mux.Handle("GET /api/v1/runs/{id}", s.requireAuth(s.handleGetRun))
	mux.Handle("GET /api/v1/runs/{id}/artifacts", s.requireAuth(s.handleListArtifacts))
	mux.Handle("GET /api/v1/runs/{id}/artifacts/{step}", s.requireAuth(s.handleGetArtifact))
	mux.Handle("GET /api/v1/runs/{id}/emails", s.requireAuth(s.handleListRunEmails))
	mux.Handle("GET /api/v1/steps", s.requireAuth(s.handleListSteps))
}

// requireAuth wraps a handler with bearer token validation
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(s.jwtService.AsTokenValidator())(next)
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llm != nil {
		s.llm.Close() //nolint:errcheck
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// mailClientFor builds a provider client for the mailbox using its stored
// OAuth token.
func (s *Server) mailClientFor(ctx context.Context, mailbox *db.Mailbox) (mailClient, error) {
	httpClient, err := s.oauth.ClientFor(ctx, mailbox)
	if err != nil {
		return nil, err
	}

	switch mailbox.Provider {
	case db.ProviderGmail:
		return gmail.NewClient(ctx, httpClient)
	case db.ProviderOutlook:
		return outlook.NewClient(httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", mailbox.Provider)
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMe returns the authenticated user's profile
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.authHandler.Me(w, r, userID)
}

// handleUpdatePassword handles password update requests
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.authHandler.UpdatePasswordWithUserID(w, r, userID)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For would need a trusted
// proxy list first.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
