// Package config loads the engine configuration from YAML and the environment.
//
// Values are resolved in three steps: the YAML file, built-in defaults for
// everything left empty, then BOT_* environment variables. Secrets may also
// be read from a file named by the matching *_FILE variable, which takes
// precedence over the plain variable.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by the state, scenarios and tokens sections.
const (
	BackendRedis    = "redis"
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendStatic   = "static"
	BackendSSM      = "ssm"
)

// Config is the root configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	State      StateConfig      `yaml:"state"`
	Lock       LockConfig       `yaml:"lock"`
	Scenarios  ScenariosConfig  `yaml:"scenarios"`
	Tokens     TokensConfig     `yaml:"tokens"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	NATS       NATSConfig       `yaml:"nats"`
	Messages   MessagesConfig   `yaml:"messages"`
	Validation ValidationConfig `yaml:"validation"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// HandleTimeout bounds one update, delays included. Zero disables it.
	HandleTimeout time.Duration `yaml:"handle_timeout"`
}

type TelegramConfig struct {
	// Endpoint is the Bot API method URL template, "%s" twice for token and method.
	Endpoint    string `yaml:"endpoint"`
	SecretToken string `yaml:"secret_token"`
}

type StateConfig struct {
	Backend  string         `yaml:"backend"`
	TTL      time.Duration  `yaml:"ttl"`
	Dir      string         `yaml:"dir"`
	Redis    RedisConfig    `yaml:"redis"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	// EncryptionKey is a hex encoded AES-256 key. Empty stores plain state.
	EncryptionKey string `yaml:"encryption_key"`
	// FallbackKeys decrypt state sealed before a key rotation.
	FallbackKeys []string `yaml:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type DynamoDBConfig struct {
	Table  string `yaml:"table"`
	Region string `yaml:"region"`
}

type LockConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Prefix  string        `yaml:"prefix"`
}

type ScenariosConfig struct {
	Backend  string `yaml:"backend"`
	Manifest string `yaml:"manifest"`
	// MaxSteps caps the blocks visited per update; 0 means unbounded.
	MaxSteps int `yaml:"max_steps"`
}

type TokensConfig struct {
	Backend string `yaml:"backend"`
	// Static maps webhook tokens to bot tokens.
	Static    map[string]string `yaml:"static"`
	SSMPrefix string            `yaml:"ssm_prefix"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// MessagesConfig holds participant-visible texts. Empty values keep the built-in ones.
type MessagesConfig struct {
	StaleButton    string `yaml:"stale_button"`
	DefaultMessage string `yaml:"default_message"`
	DefaultMenu    string `yaml:"default_menu"`
	DeliveryFailed string `yaml:"delivery_failed"`
}

type ValidationConfig struct {
	YesWords []string `yaml:"yes_words"`
	NoWords  []string `yaml:"no_words"`
}

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration, ignoring the environment.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.State.Backend == "" {
		c.State.Backend = BackendRedis
	}
	if c.State.TTL == 0 {
		c.State.TTL = 24 * time.Hour
	}
	if c.State.Dir == "" {
		c.State.Dir = ".botengine/state"
	}
	if c.State.Redis.Addr == "" {
		c.State.Redis.Addr = "localhost:6379"
	}
	if c.State.Redis.Prefix == "" {
		c.State.Redis.Prefix = "user:"
	}
	if c.Lock.TTL == 0 {
		c.Lock.TTL = 30 * time.Second
	}
	if c.Lock.Prefix == "" {
		c.Lock.Prefix = "lock:participant:"
	}
	if c.Scenarios.Backend == "" {
		c.Scenarios.Backend = BackendPostgres
	}
	if c.Tokens.Backend == "" {
		c.Tokens.Backend = BackendStatic
	}
	if c.Tokens.SSMPrefix == "" {
		c.Tokens.SSMPrefix = "/botengine/tokens"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "botengine.fields.saved"
	}
	if len(c.Validation.YesWords) == 0 {
		c.Validation.YesWords = []string{"yes"}
	}
	if len(c.Validation.NoWords) == 0 {
		c.Validation.NoWords = []string{"no"}
	}
}

func (c *Config) applyEnvOverrides() error {
	setString(&c.Log.Level, "BOT_LOG_LEVEL")
	setString(&c.Log.Format, "BOT_LOG_FORMAT")
	setString(&c.Server.Addr, "BOT_SERVER_ADDR")
	setString(&c.Telegram.Endpoint, "BOT_TELEGRAM_ENDPOINT")
	setString(&c.State.Backend, "BOT_STATE_BACKEND")
	setString(&c.State.Dir, "BOT_STATE_DIR")
	setString(&c.State.Redis.Addr, "BOT_REDIS_ADDR")
	setString(&c.State.DynamoDB.Table, "BOT_DYNAMODB_TABLE")
	setString(&c.State.DynamoDB.Region, "BOT_DYNAMODB_REGION")
	setString(&c.Scenarios.Backend, "BOT_SCENARIOS_BACKEND")
	setString(&c.Scenarios.Manifest, "BOT_SCENARIOS_MANIFEST")
	setString(&c.Tokens.Backend, "BOT_TOKENS_BACKEND")
	setString(&c.Tokens.SSMPrefix, "BOT_SSM_PREFIX")
	setString(&c.NATS.URL, "BOT_NATS_URL")
	setString(&c.NATS.Subject, "BOT_NATS_SUBJECT")

	if v := strings.TrimSpace(os.Getenv("BOT_REDIS_DB")); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOT_REDIS_DB: %w", err)
		}
		c.State.Redis.DB = db
	}
	if v := strings.TrimSpace(os.Getenv("BOT_STATE_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BOT_STATE_TTL: %w", err)
		}
		c.State.TTL = ttl
	}
	if v := strings.TrimSpace(os.Getenv("BOT_LOCK_ENABLED")); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BOT_LOCK_ENABLED: %w", err)
		}
		c.Lock.Enabled = enabled
	}

	if v := readEnvOrFile("BOT_REDIS_PASSWORD"); v != "" {
		c.State.Redis.Password = v
	}
	if v := readEnvOrFile("BOT_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := readEnvOrFile("BOT_TELEGRAM_SECRET_TOKEN"); v != "" {
		c.Telegram.SecretToken = v
	}
	if v := readEnvOrFile("BOT_STATE_ENCRYPTION_KEY"); v != "" {
		c.State.EncryptionKey = v
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// readEnvOrFile prefers the file named by key_FILE over the key itself.
func readEnvOrFile(key string) string {
	if path := strings.TrimSpace(os.Getenv(key + "_FILE")); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return strings.TrimSpace(os.Getenv(key))
}

// Validate checks backend names and the settings each backend requires.
func (c *Config) Validate() error {
	switch c.State.Backend {
	case BackendRedis, BackendMemory, BackendFile:
	case BackendDynamoDB:
		if c.State.DynamoDB.Table == "" {
			return fmt.Errorf("state.dynamodb.table is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unknown state backend %q", c.State.Backend)
	}

	switch c.Scenarios.Backend {
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for the postgres scenarios backend")
		}
	case BackendFile:
		if c.Scenarios.Manifest == "" {
			return fmt.Errorf("scenarios.manifest is required for the file scenarios backend")
		}
	default:
		return fmt.Errorf("unknown scenarios backend %q", c.Scenarios.Backend)
	}
	if c.Scenarios.MaxSteps < 0 {
		return fmt.Errorf("scenarios.max_steps must not be negative")
	}

	switch c.Tokens.Backend {
	case BackendStatic, BackendSSM:
	default:
		return fmt.Errorf("unknown tokens backend %q", c.Tokens.Backend)
	}

	if c.Lock.Enabled && c.State.Backend != BackendRedis {
		return fmt.Errorf("lock requires the redis state backend")
	}

	if _, _, err := c.State.Keys(); err != nil {
		return err
	}
	return nil
}

// Keys decodes the active and fallback encryption keys. A nil active key
// means encryption is disabled.
func (s StateConfig) Keys() ([]byte, [][]byte, error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("state.fallback_keys set without state.encryption_key")
		}
		return nil, nil, nil
	}
	active, err := decodeKey(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("state.encryption_key: %w", err)
	}
	fallbacks := make([][]byte, 0, len(s.FallbackKeys))
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("state.fallback_keys[%d]: %w", i, err)
		}
		fallbacks = append(fallbacks, key)
	}
	return active, fallbacks, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}
