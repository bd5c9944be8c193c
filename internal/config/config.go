// Package config provides environment-driven configuration for the agent
// service.
//
// Every value is supplied via process environment variables, validated at
// startup (fail-fast), and optional values fall back to sensible defaults.
// There are no defaults for secrets: VLLM_API_KEY is only used when set.
//
// Error handling uses sentinel errors so callers can test failures with
// errors.Is(), wrapped with context via fmt.Errorf("%w: details", ErrXxx).
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Service identity reported by /health and /api/info.
const (
	ServiceName = "vllm-function-call-agent"
	Version     = "0.3.0"
)

// DefaultSystemPrompt seeds every new conversation unless AGENT_SYSTEM_PROMPT
// overrides it.
const DefaultSystemPrompt = "You are a helpful AI assistant. Use the provided tools " +
	"to perform HTTP requests, look up the current time, evaluate math expressions, " +
	"and inspect available models. When a tool result arrives, use it to give the " +
	"user a clear and useful answer."

// Environment identifiers used in Config.Env.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config stores the full service configuration.
// SECURITY: sensitive fields are masked in MarshalJSON; update it when adding
// new secrets.
type Config struct {
	// Runtime environment: "development" or "production".
	Env string `mapstructure:"env" json:"env"`

	// HTTP server bind address.
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`

	// vLLM endpoint configuration. BaseURL and Model are required.
	VLLMBaseURL     string  `mapstructure:"vllm_base_url" json:"vllm_base_url"`
	VLLMModel       string  `mapstructure:"vllm_model" json:"vllm_model"`
	VLLMAPIKey      string  `mapstructure:"vllm_api_key" json:"vllm_api_key"` // SENSITIVE: masked in MarshalJSON
	VLLMMaxTokens   int     `mapstructure:"vllm_max_tokens" json:"vllm_max_tokens"`
	VLLMTemperature float64 `mapstructure:"vllm_temperature" json:"vllm_temperature"`
	VLLMTimeoutSecs int     `mapstructure:"vllm_timeout" json:"vllm_timeout"`

	// Agent loop configuration.
	MaxToolRounds int    `mapstructure:"agent_max_tool_rounds" json:"agent_max_tool_rounds"`
	SystemPrompt  string `mapstructure:"agent_system_prompt" json:"agent_system_prompt"`

	// Logging.
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	// API layer.
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	RateBurst   int      `mapstructure:"rate_burst" json:"rate_burst"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"`
}

// Load reads configuration from the environment, applies defaults, and
// validates the result. Returns a validation error immediately so a
// misconfigured process never starts serving.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// CORS_ORIGINS arrives as a comma-separated string from the environment.
	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		parts := strings.Split(cfg.CORSOrigins[0], ",")
		cfg.CORSOrigins = cfg.CORSOrigins[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, p)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)

	v.SetDefault("vllm_max_tokens", 1000)
	v.SetDefault("vllm_temperature", 0.7)
	v.SetDefault("vllm_timeout", 60)

	v.SetDefault("agent_max_tool_rounds", 10)
	v.SetDefault("agent_system_prompt", DefaultSystemPrompt)

	v.SetDefault("log_level", "info")

	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("rate_burst", 60)
	v.SetDefault("trust_proxy", false)
}

// bindEnvVariables binds each configuration key to its environment variable
// explicitly. Hardcoded keys cannot fail to bind; a bind error here is a bug,
// not a runtime condition.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("env", "ENV")
	mustBind("host", "HOST")
	mustBind("port", "PORT")

	mustBind("vllm_base_url", "VLLM_BASE_URL")
	mustBind("vllm_model", "VLLM_MODEL")
	mustBind("vllm_api_key", "VLLM_API_KEY")
	mustBind("vllm_max_tokens", "VLLM_MAX_TOKENS")
	mustBind("vllm_temperature", "VLLM_TEMPERATURE")
	mustBind("vllm_timeout", "VLLM_TIMEOUT")

	mustBind("agent_max_tool_rounds", "AGENT_MAX_TOOL_ROUNDS")
	mustBind("agent_system_prompt", "AGENT_SYSTEM_PROMPT")

	mustBind("log_level", "LOG_LEVEL")

	mustBind("cors_origins", "CORS_ORIGINS")
	mustBind("rate_burst", "RATE_BURST")
	mustBind("trust_proxy", "TRUST_PROXY")
}

// Addr returns the host:port bind address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// VLLMTimeout returns the per-request model timeout as a duration.
func (c *Config) VLLMTimeout() time.Duration {
	return time.Duration(c.VLLMTimeoutSecs) * time.Second
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// normalizedBaseURL strips a trailing slash so path joins stay predictable.
func normalizedBaseURL(raw string) string {
	return strings.TrimRight(raw, "/")
}

// NormalizedVLLMBaseURL returns the endpoint base URL without a trailing slash.
func (c *Config) NormalizedVLLMBaseURL() string {
	return normalizedBaseURL(c.VLLMBaseURL)
}

// maskedValue replaces secret content in logs and JSON output.
const maskedValue = "********"

// maskSecret masks a secret for safe logging. Short secrets are fully masked;
// longer ones keep the first and last two characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.VLLMAPIKey = maskSecret(a.VLLMAPIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// parseURL is split out so validation can report the scheme separately from
// unparseable input.
func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	return u, nil
}
