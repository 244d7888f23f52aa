package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full process configuration, one struct per concern.
type Config struct {
	Server    ServerConfig
	LeagueAuth LeagueAuthConfig
	Timeout   TimeoutConfig
	Store     StoreConfig
	Referee   RefereeConfig
	Schedule  ScheduleConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	CORS      CORSConfig
}

// ServerConfig configures the per-agent HTTP server.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LeagueAuthConfig configures deterministic auth-token derivation.
type LeagueAuthConfig struct {
	Secret string
}

// TimeoutConfig configures the transport and protocol-level deadlines.
type TimeoutConfig struct {
	Transport    time.Duration // per outbound HTTP call
	ChooseParity time.Duration // CHOOSE_PARITY response deadline
	Join         time.Duration // JOIN_GAME response deadline
	RetryBase    time.Duration // retry backoff initial delay
	RetryCap     time.Duration // retry backoff cap
	RetryCount   int           // max retry attempts
}

// StoreConfig selects and configures the repository backend.
type StoreConfig struct {
	Backend string // "memory", "redis", "postgres"

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	PostgresHost           string
	PostgresPort           int
	PostgresUser           string
	PostgresPassword       string
	PostgresName           string
	PostgresMaxConnections int
	PostgresMaxIdle        int
	PostgresMaxLifetime    time.Duration
}

// RedisAddress returns the host:port address of the Redis backend.
func (c StoreConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresDSN returns the key=value connection string for lib/pq.
func (c StoreConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresName,
	)
}

// PostgresDSNURL returns the URL-form connection string for golang-migrate.
func (c StoreConfig) PostgresDSNURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresName,
	)
}

// RefereeConfig configures a referee process.
type RefereeConfig struct {
	MaxConcurrentMatches  int
	ReportTechnicalLoss   bool // opt-in: synthesize TECHNICAL_LOSS on abandonment
}

// ScheduleConfig selects the round-robin packing algorithm.
type ScheduleConfig struct {
	Algorithm string // "reference" (default, bug preserved) or "circle"
}

// LoggingConfig configures the zap-backed logger.
type LoggingConfig struct {
	Level  string
	Format string
	Async  bool
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled   bool
	Port      int
	Path      string
	Namespace string
}

// CORSConfig configures go-chi/cors for the spectator-facing endpoints.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.RedisHost == "" {
			return fmt.Errorf("redis host is required when STORE_BACKEND=redis")
		}
		if c.Store.RedisPort < 1 || c.Store.RedisPort > 65535 {
			return fmt.Errorf("invalid redis port: %d", c.Store.RedisPort)
		}
	case "postgres":
		if c.Store.PostgresHost == "" {
			return fmt.Errorf("postgres host is required when STORE_BACKEND=postgres")
		}
		if c.Store.PostgresUser == "" {
			return fmt.Errorf("postgres user is required when STORE_BACKEND=postgres")
		}
		if c.Store.PostgresName == "" {
			return fmt.Errorf("postgres name is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}

	if c.LeagueAuth.Secret == "" {
		return fmt.Errorf("league auth secret is required")
	}

	if c.Timeout.RetryCount < 0 {
		return fmt.Errorf("retry_count must be non-negative")
	}

	switch c.Schedule.Algorithm {
	case "reference", "circle":
	default:
		return fmt.Errorf("unknown schedule algorithm: %s", c.Schedule.Algorithm)
	}

	if c.Referee.MaxConcurrentMatches < 1 {
		return fmt.Errorf("referee max_concurrent_matches must be positive")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	validLevel := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	return nil
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("AGENT_PORT", 8080),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		LeagueAuth: LeagueAuthConfig{
			Secret: getEnvOrFile("LEAGUE_AUTH_SECRET", "change-this-secret-in-production"),
		},
		Timeout: TimeoutConfig{
			Transport:    getEnvDuration("TRANSPORT_TIMEOUT", 10*time.Second),
			ChooseParity: getEnvDuration("CHOOSE_PARITY_TIMEOUT", 30*time.Second),
			Join:         getEnvDuration("JOIN_TIMEOUT", 30*time.Second),
			RetryBase:    getEnvDuration("RETRY_BASE_DELAY", 1*time.Second),
			RetryCap:     getEnvDuration("RETRY_CAP_DELAY", 10*time.Second),
			RetryCount:   getEnvInt("RETRY_COUNT", 3),
		},
		Store: StoreConfig{
			Backend:                getEnv("STORE_BACKEND", "memory"),
			RedisHost:              getEnv("REDIS_HOST", "localhost"),
			RedisPort:              getEnvInt("REDIS_PORT", 6379),
			RedisPassword:          getEnvOrFile("REDIS_PASSWORD", ""),
			RedisDB:                getEnvInt("REDIS_DB", 0),
			RedisPoolSize:          getEnvInt("REDIS_POOL_SIZE", 100),
			PostgresHost:           getEnv("DB_HOST", "localhost"),
			PostgresPort:           getEnvInt("DB_PORT", 5432),
			PostgresUser:           getEnv("DB_USER", "league"),
			PostgresPassword:       getEnvOrFile("DB_PASSWORD", "secret"),
			PostgresName:           getEnv("DB_NAME", "league"),
			PostgresMaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 50),
			PostgresMaxIdle:        getEnvInt("DB_MAX_IDLE", 10),
			PostgresMaxLifetime:    getEnvDuration("DB_MAX_LIFETIME", 1*time.Hour),
		},
		Referee: RefereeConfig{
			MaxConcurrentMatches: getEnvInt("REFEREE_MAX_CONCURRENT_MATCHES", 8),
			ReportTechnicalLoss:  getEnvBool("REFEREE_REPORT_TECHNICAL_LOSS", false),
		},
		Schedule: ScheduleConfig{
			Algorithm: getEnv("SCHEDULE_ALGORITHM", "reference"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Async:  getEnvBool("LOG_ASYNC", true),
		},
		Metrics: MetricsConfig{
			Enabled:   getEnvBool("METRICS_ENABLED", true),
			Port:      getEnvInt("METRICS_PORT", 9090),
			Path:      getEnv("METRICS_PATH", "/metrics"),
			Namespace: getEnv("METRICS_NAMESPACE", "league"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGINS", "*")},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         getEnvInt("CORS_MAX_AGE", 3600),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvOrFile reads KEY, falling back to the file named by KEY_FILE.
// This mirrors the Docker-secrets convention of mounting a secret file
// and pointing an env var at its path.
func getEnvOrFile(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	fileKey := key + "_FILE"
	if filePath := os.Getenv(fileKey); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return defaultValue
}
