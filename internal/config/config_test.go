package config

import (
	"errors"
	"strings"
	"testing"
)

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	return &Config{
		Env:             EnvDevelopment,
		Host:            "0.0.0.0",
		Port:            8080,
		VLLMBaseURL:     "http://vllm.example.com:8000",
		VLLMModel:       "openai/gpt-oss-20b",
		VLLMMaxTokens:   1000,
		VLLMTemperature: 0.7,
		VLLMTimeoutSecs: 60,
		MaxToolRounds:   10,
		SystemPrompt:    DefaultSystemPrompt,
		LogLevel:        "info",
	}
}

func TestLoad_RequiresBaseURL(t *testing.T) {
	t.Setenv("VLLM_MODEL", "openai/gpt-oss-20b")

	_, err := Load()
	if !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("Load() error = %v, want ErrMissingBaseURL", err)
	}
}

func TestLoad_RequiresModel(t *testing.T) {
	t.Setenv("VLLM_BASE_URL", "http://vllm.example.com:8000")

	_, err := Load()
	if !errors.Is(err, ErrMissingModel) {
		t.Fatalf("Load() error = %v, want ErrMissingModel", err)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	t.Setenv("VLLM_BASE_URL", "http://vllm.example.com:8000")
	t.Setenv("VLLM_MODEL", "openai/gpt-oss-20b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.VLLMMaxTokens != 1000 {
		t.Errorf("VLLMMaxTokens = %d, want 1000", cfg.VLLMMaxTokens)
	}
	if cfg.VLLMTemperature != 0.7 {
		t.Errorf("VLLMTemperature = %v, want 0.7", cfg.VLLMTemperature)
	}
	if cfg.MaxToolRounds != 10 {
		t.Errorf("MaxToolRounds = %d, want 10", cfg.MaxToolRounds)
	}
	if cfg.SystemPrompt != DefaultSystemPrompt {
		t.Errorf("SystemPrompt not defaulted")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VLLM_BASE_URL", "http://vllm.example.com:8000/")
	t.Setenv("VLLM_MODEL", "openai/gpt-oss-20b")
	t.Setenv("PORT", "9090")
	t.Setenv("VLLM_TIMEOUT", "30")
	t.Setenv("AGENT_MAX_TOOL_ROUNDS", "3")
	t.Setenv("CORS_ORIGINS", "http://a.example.com, http://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.VLLMTimeoutSecs != 30 {
		t.Errorf("VLLMTimeoutSecs = %d, want 30", cfg.VLLMTimeoutSecs)
	}
	if cfg.MaxToolRounds != 3 {
		t.Errorf("MaxToolRounds = %d, want 3", cfg.MaxToolRounds)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "http://a.example.com" {
		t.Errorf("CORSOrigins = %v, want two parsed origins", cfg.CORSOrigins)
	}
	if got := cfg.NormalizedVLLMBaseURL(); strings.HasSuffix(got, "/") {
		t.Errorf("NormalizedVLLMBaseURL() = %q, trailing slash kept", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"bad scheme", func(c *Config) { c.VLLMBaseURL = "ftp://example.com" }, ErrInvalidBaseURL},
		{"temperature too high", func(c *Config) { c.VLLMTemperature = 2.5 }, ErrInvalidTemperature},
		{"temperature negative", func(c *Config) { c.VLLMTemperature = -0.1 }, ErrInvalidTemperature},
		{"zero max tokens", func(c *Config) { c.VLLMMaxTokens = 0 }, ErrInvalidMaxTokens},
		{"timeout too long", func(c *Config) { c.VLLMTimeoutSecs = 601 }, ErrInvalidTimeout},
		{"zero tool rounds", func(c *Config) { c.MaxToolRounds = 0 }, ErrInvalidMaxToolRounds},
		{"bad port", func(c *Config) { c.Port = 70000 }, ErrInvalidPort},
		{"bad env", func(c *Config) { c.Env = "staging" }, ErrInvalidEnv},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMarshalJSON_MasksAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.VLLMAPIKey = "sk-super-secret-token-123"

	out := cfg.String()
	if strings.Contains(out, "sk-super-secret-token-123") {
		t.Fatalf("String() leaked API key: %s", out)
	}
	if !strings.Contains(out, maskedValue) {
		t.Errorf("String() does not contain mask: %s", out)
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret(""); got != "" {
		t.Errorf("maskSecret(\"\") = %q, want empty", got)
	}
	if got := maskSecret("short"); got != maskedValue {
		t.Errorf("maskSecret(short) = %q, want fully masked", got)
	}
	got := maskSecret("sk-super-secret-token-123")
	if strings.Contains(got, "super-secret") {
		t.Errorf("maskSecret leaked middle: %q", got)
	}
	if !strings.HasPrefix(got, "sk") || !strings.HasSuffix(got, "23") {
		t.Errorf("maskSecret lost debug affixes: %q", got)
	}
}
