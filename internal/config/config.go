package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the GD service.
// Environment variables are parsed with the GD_ prefix, e.g. GD_HTTP_PORT.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort        int    `envconfig:"HTTP_PORT" default:"8080"`
	CORSAllowOrigin string `envconfig:"CORS_ALLOW_ORIGIN" default:"*"`

	// Document store
	StoreDriver      string `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI         string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase    string `envconfig:"MONGO_DATABASE" default:"gd"`
	MongoCollection  string `envconfig:"MONGO_COLLECTION" default:"user_speech"`
	PostgresDSN      string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"data/gd.db"`
	MaxDocumentBytes int    `envconfig:"MAX_DOCUMENT_BYTES" default:"16777216"`

	// Turn state
	TurnStore   string        `envconfig:"TURN_STORE" default:"memory"`
	RedisAddr   string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPrefix string        `envconfig:"REDIS_PREFIX" default:"gd"`
	TurnTTL     time.Duration `envconfig:"TURN_TTL" default:"24h"`
	InitialTurn string        `envconfig:"INITIAL_TURN" default:"llm1"`
	// PeerURL, when set, forwards hand-offs over HTTP instead of in-process.
	PeerURL string `envconfig:"PEER_URL" default:""`

	// LLM
	LLMProvider       string        `envconfig:"LLM_PROVIDER" default:"openrouter"`
	OpenRouterAPIKey  string        `envconfig:"OPENROUTER_API_KEY" default:""`
	OpenRouterURL     string        `envconfig:"OPENROUTER_URL" default:"https://openrouter.ai/api/v1"`
	OpenRouterReferer string        `envconfig:"OPENROUTER_REFERER" default:"http://localhost:8080"`
	OpenRouterTitle   string        `envconfig:"OPENROUTER_TITLE" default:"Interactive GD"`
	GeminiAPIKey      string        `envconfig:"GEMINI_API_KEY" default:""`
	OllamaURL         string        `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	LLMTimeout        time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	Participant1Model string        `envconfig:"PARTICIPANT1_MODEL" default:"google/gemini-2.0-flash-lite-preview-02-05:free"`
	Participant2Model string        `envconfig:"PARTICIPANT2_MODEL" default:"meta-llama/llama-3.2-3b-instruct:free"`
	EvaluationModel   string        `envconfig:"EVALUATION_MODEL" default:"google/gemini-2.0-flash-lite-preview-02-05:free"`

	// TTS
	TTSProvider    string        `envconfig:"TTS_PROVIDER" default:"gtts"`
	AltTTSProvider string        `envconfig:"ALT_TTS_PROVIDER" default:"piper"`
	TTSLanguage    string        `envconfig:"TTS_LANGUAGE" default:"en"`
	TTSTLD         string        `envconfig:"TTS_TLD" default:"com.au"`
	OpenAIAPIKey   string        `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIURL      string        `envconfig:"OPENAI_URL" default:"https://api.openai.com/v1"`
	PiperURL       string        `envconfig:"PIPER_URL" default:"http://localhost:7071/tts"`
	TTSTimeout     time.Duration `envconfig:"TTS_TIMEOUT" default:"120s"`
	TTSAttempts    int           `envconfig:"TTS_ATTEMPTS" default:"1"`

	// Identity
	AuthMode       string `envconfig:"AUTH_MODE" default:"auto"`
	GoogleClientID string `envconfig:"GOOGLE_CLIENT_ID" default:""`

	// Health
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	StartupTimeoutSeconds     int `envconfig:"STARTUP_TIMEOUT_SECONDS" default:"60"`
}

// ResolveDefaults validates driver selections and derives AuthMode when set to "auto".
func (c *Config) ResolveDefaults() error {
	if err := oneOf("STORE_DRIVER", c.StoreDriver, "mongo", "postgres", "sqlite"); err != nil {
		return err
	}
	if c.StoreDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("GD_POSTGRES_DSN is required when STORE_DRIVER=postgres")
	}
	if err := oneOf("TURN_STORE", c.TurnStore, "memory", "redis"); err != nil {
		return err
	}
	if err := oneOf("INITIAL_TURN", c.InitialTurn, "llm1", "llm2"); err != nil {
		return err
	}
	if err := oneOf("LLM_PROVIDER", c.LLMProvider, "openrouter", "gemini", "ollama"); err != nil {
		return err
	}
	if err := oneOf("TTS_PROVIDER", c.TTSProvider, "gtts", "openai", "piper"); err != nil {
		return err
	}
	if err := oneOf("ALT_TTS_PROVIDER", c.AltTTSProvider, "gtts", "openai", "piper"); err != nil {
		return err
	}
	switch c.AuthMode {
	case "verify", "decode":
	case "", "auto":
		c.AuthMode = "decode"
		if c.GoogleClientID != "" {
			c.AuthMode = "verify"
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE: %s", c.AuthMode)
	}
	if c.MaxDocumentBytes <= 0 {
		return fmt.Errorf("MAX_DOCUMENT_BYTES must be positive")
	}
	return nil
}

func oneOf(name, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported %s: %s", name, v)
}

// New creates a new Config from a local .env file (if any) and GD_ prefixed environment variables.
// Example: GD_HTTP_PORT, GD_STORE_DRIVER
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("GD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("log_level", cfg.LogLevel).
		Int("port", cfg.HTTPPort).
		Str("store_driver", cfg.StoreDriver).
		Str("turn_store", cfg.TurnStore).
		Str("initial_turn", cfg.InitialTurn).
		Str("llm_provider", cfg.LLMProvider).
		Str("tts_provider", cfg.TTSProvider).
		Str("alt_tts_provider", cfg.AltTTSProvider).
		Str("auth_mode", cfg.AuthMode).
		Bool("openrouter_key_present", cfg.OpenRouterAPIKey != "").
		Bool("gemini_key_present", cfg.GeminiAPIKey != "").
		Bool("openai_key_present", cfg.OpenAIAPIKey != "").
		Bool("peer_url_present", cfg.PeerURL != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		LogLevel:                  "debug",
		HTTPPort:                  8080,
		CORSAllowOrigin:           "*",
		StoreDriver:               "sqlite",
		SQLitePath:                "data/gd-test.db",
		MongoDatabase:             "gd",
		MongoCollection:           "user_speech",
		MaxDocumentBytes:          16 * 1024 * 1024,
		TurnStore:                 "memory",
		RedisPrefix:               "gd",
		TurnTTL:                   time.Hour,
		InitialTurn:               "llm1",
		LLMProvider:               "openrouter",
		OpenRouterURL:             "http://localhost:0",
		LLMTimeout:                5 * time.Second,
		Participant1Model:         "test/participant-1",
		Participant2Model:         "test/participant-2",
		EvaluationModel:           "test/evaluator",
		TTSProvider:               "gtts",
		AltTTSProvider:            "piper",
		TTSLanguage:               "en",
		TTSTLD:                    "com.au",
		TTSTimeout:                5 * time.Second,
		TTSAttempts:               1,
		AuthMode:                  "decode",
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		StartupTimeoutSeconds:     5,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
