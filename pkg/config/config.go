package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxConns        int32
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
	AcquireTimeout  time.Duration
	AutoSchema      bool
}

// DSN renders the libpq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	Store        string // memory or redis
	CookieName   string
	CookieSecure bool
	RedisPrefix  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	BcryptCost int
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	defaultSessionSecret = "dev-session-secret-change-me"
)

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same (Docker/K8s)
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	shutdownTimeout, _ := strconv.Atoi(getEnv("SERVER_SHUTDOWN_TIMEOUT", "10"))
	sessionTTL, _ := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	bcryptCost, _ := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	maxConns, _ := strconv.Atoi(getEnv("DB_POOL_MAX_CONNS", "20"))

	idleTime, err := getDuration("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}
	connectTimeout, err := getDuration("DB_CONNECT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	acquireTimeout, err := getDuration("DB_ACQUIRE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			ReadTimeout:     time.Duration(readTimeout) * time.Second,
			WriteTimeout:    time.Duration(writeTimeout) * time.Second,
			ShutdownTimeout: time.Duration(shutdownTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "financeiro_db"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConns:        int32(maxConns),
			MaxConnIdleTime: idleTime,
			ConnectTimeout:  connectTimeout,
			AcquireTimeout:  acquireTimeout,
			AutoSchema:      getBool("DB_AUTO_SCHEMA", true),
		},
		Session: SessionConfig{
			Secret:       getEnv("SESSION_SECRET", defaultSessionSecret),
			TTL:          time.Duration(sessionTTL) * time.Hour,
			Store:        strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "fintrack.sid"),
			CookieSecure: getBool("SESSION_COOKIE_SECURE", false),
			RedisPrefix:  getEnv("SESSION_REDIS_PREFIX", "fintrack:session"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			BcryptCost: bcryptCost,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsesDefaultSecret reports whether SESSION_SECRET was left unset.
func (c *Config) UsesDefaultSecret() bool {
	return c.Session.Secret == defaultSessionSecret
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("invalid SESSION_STORE %q: want %q or %q", c.Session.Store, SessionStoreMemory, SessionStoreRedis)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("DB_POOL_MAX_CONNS must be positive")
	}
	if c.Database.AcquireTimeout <= 0 {
		return fmt.Errorf("DB_ACQUIRE_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

// getDuration accepts Go durations ("30s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
