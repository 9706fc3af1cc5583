package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:3000"},
			},
			MinImageBytes: 1000,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 0,
				Burst:             10,
			},
		},
		Inference: InferenceConfig{
			Provider:         ProviderGemini,
			MaxRetryAttempts: 0,
			Timeout:          0,
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures: 0,
				Timeout:     30 * time.Second,
			},
		},
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Client: ClientConfig{
			RelayURL: "http://localhost:8080",
		},
		Canvas: CanvasConfig{
			Width:  800,
			Height: 600,
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"GEMINI_API_KEY", "GEMINI_MODEL", "OPENAI_API_KEY", "OPENAI_MODEL", "INKCALC_PROVIDER", "INKCALC_RELAY_URL"} {
		t.Setenv(env, "")
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "valid config file with custom values",
			configContent: `server:
  address: 127.0.0.1:9090
  min_image_bytes: 2048
  rate_limit:
    requests_per_minute: 30
    burst: 5
inference:
  provider: openai
  timeout: 45s
  circuit_breaker:
    max_failures: 3
openai:
  model: gpt-4o
  base_url: http://localhost:11434/v1
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Server.Address = "127.0.0.1:9090"
				cfg.Server.MinImageBytes = 2048
				cfg.Server.RateLimit = RateLimitConfig{RequestsPerMinute: 30, Burst: 5}
				cfg.Inference.Provider = ProviderOpenAI
				cfg.Inference.Timeout = 45 * time.Second
				cfg.Inference.CircuitBreaker.MaxFailures = 3
				cfg.OpenAI.Model = "gpt-4o"
				cfg.OpenAI.BaseURL = "http://localhost:11434/v1"
				return cfg
			},
		},
		{
			name: "credentials come from the environment",
			configContent: `gemini:
  model: gemini-2.0-flash
`,
			env: map[string]string{
				"GEMINI_API_KEY":    "gemini-key",
				"OPENAI_API_KEY":    "openai-key",
				"INKCALC_RELAY_URL": "http://relay.internal:8080",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Gemini.APIKey = "gemini-key"
				cfg.Gemini.Model = "gemini-2.0-flash"
				cfg.OpenAI.APIKey = "openai-key"
				cfg.Client.RelayURL = "http://relay.internal:8080"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `server:
  address: :8080
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown provider",
			configContent: `inference:
  provider: llama
`,
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "provider"},
		},
		{
			name: "negative canvas size",
			configContent: `canvas:
  width: -1
`,
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "width"},
		},
		{
			name: "missing TLS certificate file",
			configContent: `server:
  tls:
    cert_file: /does/not/exist.pem
`,
			wantErr:           true,
			wantErrorContains: []string{"cert_file must be an existing and readable file"},
		},
		{
			name: "CORS origin with a path",
			configContent: `server:
  cors:
    allowed_origins:
      - http://localhost:3000/app
`,
			wantErr:           true,
			wantErrorContains: []string{"allowed_origins[0]", "scheme://host origin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			tempDir := t.TempDir()

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "inkcalc.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yml"), []byte(tt.configContent), 0644))
				}
				t.Chdir(tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestInferenceConfig_APIKey(t *testing.T) {
	cfg := defaultConfig()
	cfg.Gemini.APIKey = "gemini-key"
	cfg.OpenAI.APIKey = "openai-key"

	assert.Equal(t, "gemini-key", cfg.Inference.APIKey(cfg))

	cfg.Inference.Provider = ProviderOpenAI
	assert.Equal(t, "openai-key", cfg.Inference.APIKey(cfg))
}

func TestTLSConfig_Enabled(t *testing.T) {
	assert.False(t, TLSConfig{}.Enabled())
	assert.False(t, TLSConfig{CertFile: "cert.pem"}.Enabled())
	assert.True(t, TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}.Enabled())
}

func TestValidOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "*", want: true},
		{origin: "http://localhost:3000", want: true},
		{origin: "https://example.com/", want: true},
		{origin: "https://example.com/app", want: false},
		{origin: "ftp://example.com", want: false},
		{origin: "localhost:3000", want: false},
		{origin: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, validOrigin(tt.origin))
		})
	}
}
