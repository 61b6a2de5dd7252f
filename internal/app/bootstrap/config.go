package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/viralforge/facility-assistant/internal/ports"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"

	GatewayUpstream = "upstream"
	GatewayProxy    = "proxy"
)

// Config is the resolved runtime configuration.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	StorageDriver string
	DatabaseURL   string
	RedisURL      string
	MaxDBConns    int

	GatewayDriver  string
	APIKey         string
	AIBaseURL      string
	AIModel        string
	AIMaxRetries   int
	ProxyURL       string
	GatewayTimeout time.Duration

	AdminCode      string
	PasswordScheme string
	BcryptCost     int

	VoiceDriver       string
	DefaultSpeechRate float64
	// Voices seeds each session's client voice list until the browser reports its own.
	Voices []ports.Voice

	SessionIdleTTL  time.Duration
	JanitorInterval time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	OutboxInProcess    bool
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Storage struct {
		Driver      string `yaml:"driver"`
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
		MaxDBConns  int    `yaml:"max_db_conns"`
	} `yaml:"storage"`
	Gateway struct {
		Driver         string `yaml:"driver"`
		BaseURL        string `yaml:"base_url"`
		Model          string `yaml:"model"`
		MaxRetries     *int   `yaml:"max_retries"`
		ProxyURL       string `yaml:"proxy_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gateway"`
	Auth struct {
		PasswordScheme string `yaml:"password_scheme"`
		BcryptRounds   int    `yaml:"bcrypt_rounds"`
	} `yaml:"auth"`
	Voice struct {
		Driver     string       `yaml:"driver"`
		SpeechRate float64      `yaml:"speech_rate"`
		Voices     []voiceEntry `yaml:"voices"`
	} `yaml:"voice"`
	Sessions struct {
		IdleMinutes    int `yaml:"idle_minutes"`
		JanitorSeconds int `yaml:"janitor_seconds"`
	} `yaml:"sessions"`
	Events struct {
		KafkaBrokers     []string `yaml:"kafka_brokers"`
		KafkaTopicPrefix string   `yaml:"kafka_topic_prefix"`
	} `yaml:"events"`
}

type voiceEntry struct {
	URI     string `yaml:"uri"`
	Name    string `yaml:"name"`
	Lang    string `yaml:"lang"`
	Default bool   `yaml:"default"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// A missing file is not an error; a malformed one is.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "facility-assistant",
		HTTPPort:           8080,
		GRPCPort:           9090,
		StorageDriver:      StorageMemory,
		MaxDBConns:         10,
		GatewayDriver:      GatewayUpstream,
		AIMaxRetries:       2,
		GatewayTimeout:     60 * time.Second,
		AdminCode:          "VMCC-ADMIN-2024",
		PasswordScheme:     "plaintext",
		BcryptCost:         12,
		VoiceDriver:        "client",
		DefaultSpeechRate:  1,
		SessionIdleTTL:     30 * time.Minute,
		JanitorInterval:    time.Minute,
		KafkaTopicPrefix:   "facility-assistant",
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
		OutboxClaimTTL:     30 * time.Second,
		OutboxMaxRetries:   5,
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := applyFile(&cfg, raw); err != nil {
			return Config{}, err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(envOrDefault("STORAGE_DRIVER", cfg.StorageDriver)))
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.MaxDBConns = envInt("DB_MAX_CONNS", cfg.MaxDBConns)

	cfg.GatewayDriver = strings.ToLower(strings.TrimSpace(envOrDefault("GATEWAY_DRIVER", cfg.GatewayDriver)))
	cfg.APIKey = envOrDefault("API_KEY", cfg.APIKey)
	cfg.AIBaseURL = envOrDefault("AI_BASE_URL", cfg.AIBaseURL)
	cfg.AIModel = envOrDefault("AI_MODEL", cfg.AIModel)
	cfg.AIMaxRetries = envInt("AI_MAX_RETRIES", cfg.AIMaxRetries)
	cfg.ProxyURL = envOrDefault("PROXY_URL", cfg.ProxyURL)
	cfg.GatewayTimeout = time.Duration(envInt("GATEWAY_TIMEOUT_SECONDS", int(cfg.GatewayTimeout.Seconds()))) * time.Second

	cfg.AdminCode = envOrDefault("ADMIN_CODE", cfg.AdminCode)
	cfg.PasswordScheme = strings.ToLower(strings.TrimSpace(envOrDefault("PASSWORD_SCHEME", cfg.PasswordScheme)))
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)

	cfg.VoiceDriver = strings.ToLower(strings.TrimSpace(envOrDefault("VOICE_DRIVER", cfg.VoiceDriver)))
	cfg.DefaultSpeechRate = envFloat("VOICE_SPEECH_RATE", cfg.DefaultSpeechRate)

	cfg.SessionIdleTTL = time.Duration(envInt("SESSION_IDLE_MINUTES", int(cfg.SessionIdleTTL.Minutes()))) * time.Minute
	cfg.JanitorInterval = time.Duration(envInt("SESSION_JANITOR_SECONDS", int(cfg.JanitorInterval.Seconds()))) * time.Second

	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicPrefix = envOrDefault("KAFKA_TOPIC_PREFIX", cfg.KafkaTopicPrefix)

	// Without postgres the outbox lives in the API process, so it must be drained there too.
	cfg.OutboxInProcess = envBool("OUTBOX_IN_PROCESS", cfg.StorageDriver != StoragePostgres)
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Storage.Driver != "" {
		cfg.StorageDriver = f.Storage.Driver
	}
	if f.Storage.PostgresURL != "" {
		cfg.DatabaseURL = f.Storage.PostgresURL
	}
	if f.Storage.RedisURL != "" {
		cfg.RedisURL = f.Storage.RedisURL
	}
	if f.Storage.MaxDBConns > 0 {
		cfg.MaxDBConns = f.Storage.MaxDBConns
	}
	if f.Gateway.Driver != "" {
		cfg.GatewayDriver = f.Gateway.Driver
	}
	if f.Gateway.BaseURL != "" {
		cfg.AIBaseURL = f.Gateway.BaseURL
	}
	if f.Gateway.Model != "" {
		cfg.AIModel = f.Gateway.Model
	}
	if f.Gateway.MaxRetries != nil {
		cfg.AIMaxRetries = *f.Gateway.MaxRetries
	}
	if f.Gateway.ProxyURL != "" {
		cfg.ProxyURL = f.Gateway.ProxyURL
	}
	if f.Gateway.TimeoutSeconds > 0 {
		cfg.GatewayTimeout = time.Duration(f.Gateway.TimeoutSeconds) * time.Second
	}
	if f.Auth.PasswordScheme != "" {
		cfg.PasswordScheme = f.Auth.PasswordScheme
	}
	if f.Auth.BcryptRounds > 0 {
		cfg.BcryptCost = f.Auth.BcryptRounds
	}
	if f.Voice.Driver != "" {
		cfg.VoiceDriver = f.Voice.Driver
	}
	if f.Voice.SpeechRate > 0 {
		cfg.DefaultSpeechRate = f.Voice.SpeechRate
	}
	for _, v := range f.Voice.Voices {
		name := v.Name
		if name == "" {
			name = v.URI
		}
		cfg.Voices = append(cfg.Voices, ports.Voice{URI: v.URI, Name: name, Lang: v.Lang, Default: v.Default})
	}
	if f.Sessions.IdleMinutes > 0 {
		cfg.SessionIdleTTL = time.Duration(f.Sessions.IdleMinutes) * time.Minute
	}
	if f.Sessions.JanitorSeconds > 0 {
		cfg.JanitorInterval = time.Duration(f.Sessions.JanitorSeconds) * time.Second
	}
	if len(f.Events.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = f.Events.KafkaBrokers
	}
	if f.Events.KafkaTopicPrefix != "" {
		cfg.KafkaTopicPrefix = f.Events.KafkaTopicPrefix
	}
	return nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("missing REDIS_URL for redis storage")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing DB_URL/POSTGRES_URL for postgres storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.GatewayDriver {
	case GatewayUpstream:
	case GatewayProxy:
		if c.ProxyURL == "" {
			return fmt.Errorf("missing PROXY_URL for proxy gateway")
		}
	default:
		return fmt.Errorf("unsupported GATEWAY_DRIVER %q", c.GatewayDriver)
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT_SECONDS must be positive")
	}
	if c.DefaultSpeechRate < 0.5 || c.DefaultSpeechRate > 2 {
		return fmt.Errorf("VOICE_SPEECH_RATE must be between 0.5 and 2.0")
	}
	if c.AIMaxRetries < 0 {
		return fmt.Errorf("AI_MAX_RETRIES must not be negative")
	}
	for i, v := range c.Voices {
		if strings.TrimSpace(v.URI) == "" {
			return fmt.Errorf("voice.voices[%d] needs a uri", i)
		}
	}
	return nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
