// Command funcagent serves the vLLM function-call agent API: a chat endpoint
// backed by an OpenAI-compatible inference endpoint and a registry of
// callable tools.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/daecheol96/funcagent/api"
	"github.com/daecheol96/funcagent/internal/agent"
	"github.com/daecheol96/funcagent/internal/config"
	"github.com/daecheol96/funcagent/internal/log"
	"github.com/daecheol96/funcagent/internal/security"
	"github.com/daecheol96/funcagent/internal/session"
	"github.com/daecheol96/funcagent/internal/tools"
	"github.com/daecheol96/funcagent/internal/vllm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{
		Level: cfg.SlogLevel(),
		JSON:  cfg.IsProduction(),
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		"service", config.ServiceName,
		"version", config.Version,
		"env", cfg.Env,
		"model", cfg.VLLMModel,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := vllm.New(vllm.Config{
		BaseURL:     cfg.NormalizedVLLMBaseURL(),
		Model:       cfg.VLLMModel,
		APIKey:      cfg.VLLMAPIKey,
		MaxTokens:   cfg.VLLMMaxTokens,
		Temperature: cfg.VLLMTemperature,
		Timeout:     cfg.VLLMTimeout(),
	}, logger)

	registry := tools.NewRegistry(logger)
	validator := security.NewHTTP(logger)
	if err := tools.RegisterBuiltin(registry, validator, client, logger); err != nil {
		return err
	}
	logger.Info("tools registered", "count", registry.Len())

	ag, err := agent.New(agent.Config{
		Client:        client,
		Tools:         registry,
		MaxToolRounds: cfg.MaxToolRounds,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}

	sessions := session.NewStore(cfg.SystemPrompt)

	srv, err := api.NewServer(api.ServerConfig{
		Logger:      logger,
		Agent:       ag,
		Sessions:    sessions,
		Registry:    registry,
		Client:      client,
		ServiceName: config.ServiceName,
		Version:     config.Version,
		Environment: cfg.Env,
		VLLMBaseURL: cfg.NormalizedVLLMBaseURL(),
		MaxRounds:   cfg.MaxToolRounds,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
		RateBurst:   cfg.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	return srv.Run(ctx, cfg.Addr())
}
