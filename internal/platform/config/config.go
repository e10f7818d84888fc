// Pacote config centraliza o carregamento das variáveis de ambiente usadas pela API.
package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	StoreJSONFile = "jsonfile"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config agrega todos os parâmetros do binário da API.
type Config struct {
	HTTPAddress string

	// StoreDriver escolhe o backend de persistência da coleção de enquetes.
	StoreDriver string
	DataFile    string
	SQLiteDSN   string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitEnabled       bool
	RateLimitMaxActions    int
	RateLimitWindowSeconds int
	RateLimitKeyPrefix     string

	AutoMigrate bool
}

func Load() (Config, error) {
	// Defaults priorizam execução local; variáveis permitem sobrescrever em Docker/K8s.
	cfg := Config{
		HTTPAddress:      getEnv("HTTP_ADDRESS", ":3000"),
		StoreDriver:      getEnv("STORE_DRIVER", StoreJSONFile),
		DataFile:         getEnv("DATA_FILE", "data/polls.json"),
		SQLiteDSN:        getEnv("SQLITE_DSN", "data/enquetes.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "enquetes"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "enquetes"),
		PostgresDB:       getEnv("POSTGRES_DB", "enquetes"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		// Rate limit desligado por padrão: o contrato da API é "uma chamada,
		// um voto", sem identidade de eleitor.
		RateLimitEnabled:       getEnv("ANTIFRAUDE_RATE_LIMIT_ENABLED", "false") == "true",
		RateLimitMaxActions:    getEnvAsInt("ANTIFRAUDE_RATE_LIMIT_MAX", 30),
		RateLimitWindowSeconds: getEnvAsInt("ANTIFRAUDE_RATE_LIMIT_WINDOW", 60),
		RateLimitKeyPrefix:     getEnv("ANTIFRAUDE_RATE_LIMIT_PREFIX", "ratelimit"),
		AutoMigrate:            getEnvAsBool("DB_AUTO_MIGRATE", true),
	}

	switch cfg.StoreDriver {
	case StoreJSONFile, StoreSQLite, StorePostgres:
	default:
		return Config{}, fmt.Errorf("config: STORE_DRIVER invalido: %q", cfg.StoreDriver)
	}

	dbStr := getEnv("REDIS_DB", "0")
	dbInt, err := strconv.Atoi(dbStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: REDIS_DB invalido: %w", err)
	}
	cfg.RedisDB = dbInt

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	// Mantemos o formato DSN compatível com GORM e ferramentas de migração.
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}
