package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// StoreBackend selects where records are kept.
type StoreBackend string

const (
	StoreFile     StoreBackend = "file"
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
	StoreRedis    StoreBackend = "redis"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	DataFile       string
	Store          StoreBackend
	LogLevel       string
	AdminTokenHash string
	Redis          RedisConfig
	Postgres       PostgresConfig
	Kafka          KafkaConfig
}

// RedisConfig configures the Redis record backend.
type RedisConfig struct {
	URL          string
	Key          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the PostgreSQL record backend.
type PostgresConfig struct {
	DSN          string
	Table        string
	MaxOpenConns int
}

// KafkaConfig configures the audit event sink. Auditing stays in memory
// when Brokers is empty.
type KafkaConfig struct {
	Brokers     []string
	AuditTopic  string
	AuditBuffer int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           getEnv("REGISTRAR_ADDR", ":8080"),
		DataFile:       getEnv("REGISTRAR_DATA_FILE", "data.txt"),
		Store:          StoreBackend(strings.ToLower(getEnv("REGISTRAR_STORE", string(StoreFile)))),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Key:          getEnv("REDIS_RECORDS_KEY", "registrar:records"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:          os.Getenv("DATABASE_URL"),
			Table:        getEnv("POSTGRES_RECORDS_TABLE", "person_records"),
			MaxOpenConns: getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:  getEnv("AUDIT_TOPIC", "registrar.audit"),
			AuditBuffer: getEnvInt("AUDIT_BUFFER", 256),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// splitList splits a comma separated value, dropping blanks and repeats.
func splitList(v string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
