package config

import (
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Inference InferenceConfig `mapstructure:"inference"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Client    ClientConfig    `mapstructure:"client"`
	Canvas    CanvasConfig    `mapstructure:"canvas"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Address string     `mapstructure:"address" validate:"required"`
	CORS    CORSConfig `mapstructure:"cors"`
	// MinImageBytes is the decoded image size a submission must exceed
	MinImageBytes int             `mapstructure:"min_image_bytes" validate:"gte=0"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`
	TLS           TLSConfig       `mapstructure:"tls"`
}

// TLSConfig enables HTTPS when both files are set
type TLSConfig struct {
	CertFile string `mapstructure:"cert_file" validate:"omitempty,file"`
	KeyFile  string `mapstructure:"key_file" validate:"omitempty,file"`
}

func (cfg TLSConfig) Enabled() bool {
	return cfg.CertFile != "" && cfg.KeyFile != ""
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,origin"`
}

type RateLimitConfig struct {
	// RequestsPerMinute per client IP; 0 disables rate limiting
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gte=0"`
	Burst             int `mapstructure:"burst" validate:"gte=0"`
}

type InferenceConfig struct {
	Provider         string               `mapstructure:"provider" validate:"oneof=gemini openai"`
	MaxRetryAttempts uint                 `mapstructure:"max_retry_attempts"`
	Timeout          time.Duration        `mapstructure:"timeout" validate:"gte=0"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	// PromptTemplate replaces the built-in instruction; it receives .Variables
	PromptTemplate string `mapstructure:"prompt_template" validate:"omitempty,file"`
}

type CircuitBreakerConfig struct {
	// MaxFailures in a row before the circuit opens; 0 disables the breaker
	MaxFailures uint32        `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

type ClientConfig struct {
	RelayURL string `mapstructure:"relay_url" validate:"required,url"`
}

type CanvasConfig struct {
	Width  int `mapstructure:"width" validate:"gt=0"`
	Height int `mapstructure:"height" validate:"gt=0"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter" validate:"omitempty,oneof=stdout noop"`
}

// APIKey returns the credential of the configured provider
func (cfg InferenceConfig) APIKey(root *Config) string {
	if cfg.Provider == ProviderOpenAI {
		return root.OpenAI.APIKey
	}
	return root.Gemini.APIKey
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/inkcalc")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.min_image_bytes", 1000)
	v.SetDefault("server.rate_limit.requests_per_minute", 0)
	v.SetDefault("server.rate_limit.burst", 10)
	v.SetDefault("inference.provider", ProviderGemini)
	v.SetDefault("inference.max_retry_attempts", 0)
	v.SetDefault("inference.timeout", 0)
	v.SetDefault("inference.circuit_breaker.max_failures", 0)
	v.SetDefault("inference.circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("client.relay_url", "http://localhost:8080")
	v.SetDefault("canvas.width", 800)
	v.SetDefault("canvas.height", 600)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")

	// Credentials are bound to environment variables only (not from config file)
	envBindings := []struct {
		key string
		env string
	}{
		{key: "gemini.api_key", env: "GEMINI_API_KEY"},
		{key: "gemini.model", env: "GEMINI_MODEL"},
		{key: "openai.api_key", env: "OPENAI_API_KEY"},
		{key: "openai.model", env: "OPENAI_MODEL"},
		{key: "inference.provider", env: "INKCALC_PROVIDER"},
		{key: "client.relay_url", env: "INKCALC_RELAY_URL"},
	}
	for _, binding := range envBindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", binding.env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
