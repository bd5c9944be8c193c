// Package api is the HTTP surface of the function-call agent service. It
// exposes health and introspection endpoints plus the chat endpoint that
// drives agent turns.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/daecheol96/funcagent/internal/agent"
	"github.com/daecheol96/funcagent/internal/conversation"
	"github.com/daecheol96/funcagent/internal/log"
	"github.com/daecheol96/funcagent/internal/session"
	"github.com/daecheol96/funcagent/internal/tools"
	"github.com/daecheol96/funcagent/internal/vllm"
)

const (
	// ReadHeaderTimeout bounds header reads to resist Slowloris-style abuse.
	ReadHeaderTimeout = 10 * time.Second
	ReadTimeout       = 30 * time.Second

	// WriteTimeout is generous because a chat turn waits on the inference
	// endpoint and possibly several tool rounds.
	WriteTimeout = 120 * time.Second
	IdleTimeout  = 120 * time.Second

	ShutdownTimeout = 10 * time.Second

	// maxRequestBody caps chat request bodies.
	maxRequestBody = 1 << 20
)

// ChatAgent is the slice of the agent the chat endpoint needs.
type ChatAgent interface {
	Chat(ctx context.Context, conv *conversation.Conversation, userMessage string) (agent.Result, error)
}

// InferenceClient is the slice of the model client the introspection and
// health endpoints need.
type InferenceClient interface {
	Models(ctx context.Context) ([]vllm.Model, error)
	ModelName() string
	UsesLegacyFunctions() bool
}

// ServerConfig assembles the API server.
type ServerConfig struct {
	Logger      log.Logger
	Agent       ChatAgent       // required
	Sessions    *session.Store  // required
	Registry    *tools.Registry // required
	Client      InferenceClient // required
	ServiceName string
	Version     string
	Environment string
	VLLMBaseURL string
	MaxRounds   int
	CORSOrigins []string
	TrustProxy  bool
	RateBurst   int // 0 = default 60
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
	logger  log.Logger
}

// NewServer creates the server with all routes and middleware configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Agent == nil {
		return nil, errors.New("agent is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if cfg.Client == nil {
		return nil, errors.New("inference client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	hh := &healthHandler{
		client:      cfg.Client,
		registry:    cfg.Registry,
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
	}
	ih := &infoHandler{
		client:      cfg.Client,
		registry:    cfg.Registry,
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		environment: cfg.Environment,
		baseURL:     cfg.VLLMBaseURL,
		maxRounds:   cfg.MaxRounds,
		logger:      logger,
	}
	th := &toolsHandler{registry: cfg.Registry}
	ch := &chatHandler{agent: cfg.Agent, sessions: cfg.Sessions, logger: logger}
	vh := &conversationHandler{sessions: cfg.Sessions, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", hh.health)
	mux.HandleFunc("GET /api/info", ih.info)
	mux.HandleFunc("GET /api/models", ih.models)
	mux.HandleFunc("GET /api/tools", th.list)
	mux.HandleFunc("POST /api/chat", ch.send)
	mux.HandleFunc("GET /api/conversation", vh.get)
	mux.HandleFunc("DELETE /api/conversation", vh.reset)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first:
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID precedes Logging so request_id shows in log attributes; CORS
	// precedes RateLimit so preflight OPTIONS gets CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{handler: handler, logger: logger}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is canceled, then drains connections within
// ShutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server ready", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
