package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	MySQL   MySQLConfig
	Redis   RedisConfig
	Worker  WorkerConfig
	Catalog CatalogConfig
}

type ServerConfig struct {
	AppEnv          string
	HTTPPort        string
	GRPCPort        string
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	PoolSize       int
	Namespace      string
	IdempotencyTTL time.Duration
}

type WorkerConfig struct {
	Count     int
	QueueSize int
}

type CatalogConfig struct {
	CodePrefix      string
	SupplierID      string
	SupplierName    string
	DefaultCategory string
	DefaultMinStock int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:          getEnv("APP_ENV", "development"),
			HTTPPort:        normalizePort(getEnv("HTTP_PORT", ":8080")),
			GRPCPort:        normalizePort(getEnv("GRPC_PORT", ":50051")),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		MySQL: MySQLConfig{
			DSN:             getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/workshop?parseTime=true"),
			MaxOpenConns:    getEnvInt("MYSQL_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("MYSQL_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvDuration("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute),
			Migrate:         getEnvBool("MYSQL_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			PoolSize:       getEnvInt("REDIS_POOL_SIZE", 100),
			Namespace:      getEnv("REDIS_NAMESPACE", "workshop:"),
			IdempotencyTTL: getEnvDuration("REDIS_IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Worker: WorkerConfig{
			Count:     getEnvInt("WORKER_COUNT", 4),
			QueueSize: getEnvInt("WORKER_QUEUE_SIZE", 1000),
		},
		Catalog: CatalogConfig{
			CodePrefix:      getEnv("CATALOG_CODE_PREFIX", "EP"),
			SupplierID:      getEnv("CATALOG_SUPPLIER_ID", "ezyparts"),
			SupplierName:    getEnv("CATALOG_SUPPLIER_NAME", "EzyParts"),
			DefaultCategory: getEnv("CATALOG_DEFAULT_CATEGORY", "Auto Parts"),
			DefaultMinStock: getEnvInt("CATALOG_DEFAULT_MIN_STOCK", 5),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.AppEnv == "dev"
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
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

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
