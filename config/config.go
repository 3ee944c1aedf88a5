package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings. It is built once at startup and
// handed to each component; nothing reads the environment after that.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Session   SessionConfig
	Access    AccessConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
}

// HTTPConfig contains server settings.
type HTTPConfig struct {
	Port       string
	TrustProxy bool // take the client address from X-Forwarded-For
}

// DatabaseConfig contains the primary store settings.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// CacheConfig selects the go-utils cache backend. Type "none" disables caching.
type CacheConfig struct {
	Type          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SessionConfig contains cookie session settings.
type SessionConfig struct {
	Secret        string
	CookieName    string
	TTL           time.Duration
	Store         string // "sql" or "redis"
	Secure        bool
	PruneInterval time.Duration
}

// AccessConfig contains the API key gate settings.
type AccessConfig struct {
	Header string
	Keys   map[string]string // key -> client name
}

// RateLimitConfig caps note requests per client address.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	Store  string // "memory" or "redis"
}

// KafkaConfig enables note-shared events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load reads configuration from the environment. SESSION_SECRET and API_KEYS
// have no defaults.
func Load() (*Config, error) {
	loadDotEnv()

	cfg, err := build("", "")
	if err != nil {
		return nil, err
	}
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is not set")
	}
	if len(cfg.Access.Keys) == 0 {
		return nil, fmt.Errorf("API_KEYS environment variable is not set")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but falls back to development secrets.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	loadDotEnv()
	return build("dev-session-secret-change-me", "dev:your-api-key")
}

// loadDotEnv loads an optional .env file; a missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

func build(defaultSecret, defaultKeys string) (*Config, error) {
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	rateMax, err := getEnvInt("RATE_LIMIT_MAX", 100)
	if err != nil {
		return nil, err
	}
	rateWindow, err := getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getEnvDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	pruneInterval, err := getEnvDuration("SESSION_PRUNE_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	keys, err := ParseAPIKeys(getEnv("API_KEYS", defaultKeys))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:       getEnv("PORT", "8080"),
			TrustProxy: getEnvBool("TRUST_PROXY"),
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    getEnv("DB_PATH", "./notes_service.db"),
		},
		Cache: CacheConfig{
			Type:          getEnv("CACHE_TYPE", "redis"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Session: SessionConfig{
			Secret:        getEnv("SESSION_SECRET", defaultSecret),
			CookieName:    getEnv("SESSION_COOKIE", "session_id"),
			TTL:           sessionTTL,
			Store:         getEnv("SESSION_STORE", "sql"),
			Secure:        getEnvBool("SESSION_SECURE"),
			PruneInterval: pruneInterval,
		},
		Access: AccessConfig{
			Header: getEnv("API_KEY_HEADER", "X-API-Key"),
			Keys:   keys,
		},
		RateLimit: RateLimitConfig{
			Max:    rateMax,
			Window: rateWindow,
			Store:  getEnv("RATE_LIMIT_STORE", "memory"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "notes.shared"),
		},
	}

	switch cfg.Session.Store {
	case "sql", "redis":
	default:
		return nil, fmt.Errorf("invalid SESSION_STORE %q", cfg.Session.Store)
	}
	switch cfg.RateLimit.Store {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("invalid RATE_LIMIT_STORE %q", cfg.RateLimit.Store)
	}
	if cfg.RateLimit.Max <= 0 || cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d per %s", cfg.RateLimit.Max, cfg.RateLimit.Window)
	}

	return cfg, nil
}

// ParseAPIKeys parses a comma separated list of "client:key" or bare "key"
// entries. Bare keys are attributed to client "default".
func ParseAPIKeys(raw string) (map[string]string, error) {
	keys := map[string]string{}
	for _, entry := range splitList(raw) {
		client, key := "default", entry
		if i := strings.Index(entry, ":"); i >= 0 {
			client, key = strings.TrimSpace(entry[:i]), strings.TrimSpace(entry[i+1:])
		}
		if key == "" || client == "" {
			return nil, fmt.Errorf("invalid API_KEYS entry %q", entry)
		}
		if _, dup := keys[key]; dup {
			return nil, fmt.Errorf("duplicate key in API_KEYS for client %q", client)
		}
		keys[key] = client
	}
	return keys, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

func getEnvBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	clients := make([]string, 0, len(c.Access.Keys))
	for _, client := range c.Access.Keys {
		clients = append(clients, client)
	}
	return fmt.Sprintf("Config{port: %s, db: %s, cache: %s, sessions: %s, api clients: %v, rate: %d/%s, secrets: *** (masked) ***}",
		c.HTTP.Port, c.Database.DSN, c.Cache.Type, c.Session.Store, clients, c.RateLimit.Max, c.RateLimit.Window)
}
