package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel validation errors. Callers match them with errors.Is().
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingBaseURL indicates VLLM_BASE_URL is not set.
	ErrMissingBaseURL = errors.New("missing vLLM base URL")

	// ErrInvalidBaseURL indicates VLLM_BASE_URL is not a usable HTTP(S) URL.
	ErrInvalidBaseURL = errors.New("invalid vLLM base URL")

	// ErrMissingModel indicates VLLM_MODEL is not set.
	ErrMissingModel = errors.New("missing vLLM model name")

	// ErrInvalidTemperature indicates the sampling temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid vLLM timeout")

	// ErrInvalidMaxToolRounds indicates the tool-round bound is out of range.
	ErrInvalidMaxToolRounds = errors.New("invalid max tool rounds")

	// ErrInvalidPort indicates the HTTP port is out of range.
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidEnv indicates an unknown runtime environment name.
	ErrInvalidEnv = errors.New("invalid environment")

	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validation bounds.
const (
	MinMaxTokens = 1
	MaxMaxTokens = 32768

	MinTimeoutSecs = 1
	MaxTimeoutSecs = 600

	MinToolRounds = 1
	MaxToolRounds = 100
)

// Validate checks the full configuration and returns the first violation.
// Called by Load; exported so tests and tooling can validate constructed
// configurations directly.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch strings.ToLower(c.Env) {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidEnv, c.Env, EnvDevelopment, EnvProduction)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}

	if strings.TrimSpace(c.VLLMBaseURL) == "" {
		return fmt.Errorf("%w: set VLLM_BASE_URL", ErrMissingBaseURL)
	}
	if _, err := parseURL(c.VLLMBaseURL); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidBaseURL, c.VLLMBaseURL, err)
	}

	if strings.TrimSpace(c.VLLMModel) == "" {
		return fmt.Errorf("%w: set VLLM_MODEL", ErrMissingModel)
	}

	if c.VLLMTemperature < 0 || c.VLLMTemperature > 2 {
		return fmt.Errorf("%w: %.2f (want 0.0-2.0)", ErrInvalidTemperature, c.VLLMTemperature)
	}

	if c.VLLMMaxTokens < MinMaxTokens || c.VLLMMaxTokens > MaxMaxTokens {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidMaxTokens, c.VLLMMaxTokens, MinMaxTokens, MaxMaxTokens)
	}

	if c.VLLMTimeoutSecs < MinTimeoutSecs || c.VLLMTimeoutSecs > MaxTimeoutSecs {
		return fmt.Errorf("%w: %ds (want %d-%ds)", ErrInvalidTimeout, c.VLLMTimeoutSecs, MinTimeoutSecs, MaxTimeoutSecs)
	}

	if c.MaxToolRounds < MinToolRounds || c.MaxToolRounds > MaxToolRounds {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidMaxToolRounds, c.MaxToolRounds, MinToolRounds, MaxToolRounds)
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}
