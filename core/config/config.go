package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	Port       string
	Line       LineConfig
	LLM        LLMConfig
	Store      StoreConfig
	CatProfile string
	OTel       OTelConfig
}

type LineConfig struct {
	ChannelSecret      string
	ChannelAccessToken string
	APIBaseURL         string
}

type LLMConfig struct {
	Provider  string // "openai" or "gemini"
	APIKey    string
	BaseURL   string // Optional: for custom endpoints
	Model     string
	MaxTokens int
}

type StoreConfig struct {
	Backend  string // "redis" or "memory"
	RedisURL string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Load loads configuration from environment variables.
// In development it also reads a .env file from the working directory.
func Load() (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	provider := getEnv("LLM_PROVIDER", "gemini")

	cfg := Config{
		Env:        getEnv("APP_ENV", "development"),
		Port:       getEnv("PORT", "3000"),
		CatProfile: getEnv("CAT_PROFILE_PATH", "configs/cat.yaml"),
		Line: LineConfig{
			ChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),
			ChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
			APIBaseURL:         getEnv("LINE_API_BASE_URL", "https://api.line.me"),
		},
		LLM: LLMConfig{
			Provider:  provider,
			APIKey:    providerAPIKey(provider),
			BaseURL:   getEnv("LLM_BASE_URL", ""),
			Model:     getEnv("LLM_MODEL", ""),
			MaxTokens: getEnvInt("LLM_MAX_TOKENS", 0),
		},
		Store: StoreConfig{
			Backend:  getEnv("STORE_BACKEND", "redis"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "linebot-genai"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
	}

	if cfg.Line.ChannelSecret == "" || cfg.Line.ChannelAccessToken == "" {
		return Config{}, fmt.Errorf("LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN are required")
	}

	if cfg.LLM.APIKey == "" {
		return Config{}, fmt.Errorf("API key is required for LLM provider %q", provider)
	}

	return cfg, nil
}

// providerAPIKey resolves the key for the configured provider, falling back
// to the generic LLM_API_KEY variable.
func providerAPIKey(provider string) string {
	if key := getEnv("LLM_API_KEY", ""); key != "" {
		return key
	}
	switch provider {
	case "openai":
		return getEnv("OPENAI_API_KEY", "")
	case "gemini":
		return getEnv("GOOGLE_API_KEY", "")
	}
	return ""
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
