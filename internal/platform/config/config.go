package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration for the registrar backend.
// FromEnv builds it from environment variables so main stays lean.
type Config struct {
	Addr          string
	AdminToken    string
	JWTSigningKey string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	EPP      EPPConfig
}

// PostgresConfig holds database connection settings.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds cache connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds event stream settings for the notify publisher.
type KafkaConfig struct {
	SeedBrokers []string
	EmailTopic  string
	AuditTopic  string
}

// EPPConfig holds registry session settings. The client certificate and key
// authenticate the registrar to the registry; CommandTimeout bounds every
// round trip so a hung connection surfaces as a connection error instead of
// blocking the caller indefinitely.
type EPPConfig struct {
	Host           string
	Port           string
	ClientCertPath string
	ClientKeyPath  string
	LoginID        string
	LoginPassword  string
	CommandTimeout time.Duration
}

// DomainInfoCacheTTL enforces retention for cached registry domain data.
var DomainInfoCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envOr("REGISTRAR_ADDR", ":8080"),
		AdminToken:    os.Getenv("REGISTRAR_ADMIN_TOKEN"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 16),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			SeedBrokers: splitNonEmpty(os.Getenv("KAFKA_SEED_BROKERS")),
			EmailTopic:  envOr("KAFKA_EMAIL_TOPIC", "registrar.email-requests"),
			AuditTopic:  envOr("KAFKA_AUDIT_TOPIC", "registrar.audit"),
		},
		EPP: EPPConfig{
			Host:           os.Getenv("EPP_HOST"),
			Port:           envOr("EPP_PORT", "700"),
			ClientCertPath: os.Getenv("EPP_CLIENT_CERT"),
			ClientKeyPath:  os.Getenv("EPP_CLIENT_KEY"),
			LoginID:        os.Getenv("EPP_LOGIN_ID"),
			LoginPassword:  os.Getenv("EPP_LOGIN_PASSWORD"),
			CommandTimeout: envDuration("EPP_COMMAND_TIMEOUT", 15*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
