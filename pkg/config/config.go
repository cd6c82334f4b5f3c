package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Redis         RedisConfig
	Gemini        GeminiConfig
	OpenFoodFacts OpenFoodFactsConfig
	Pipeline      PipelineConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type GeminiConfig struct {
	ApiKey  string
	BaseUrl string
	Model   string
}

type OpenFoodFactsConfig struct {
	BaseUrl string
}

type PipelineConfig struct {
	EnrichmentBatchSize  int
	EnrichmentMaxRetries int
	EnrichmentRetryDelay int // seconds, grows linearly per attempt
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database number")
	}

	batchSize, err := strconv.Atoi(getEnv("ENRICHMENT_BATCH_SIZE", "20"))
	if err != nil {
		return nil, errors.New("invalid enrichment batch size")
	}

	maxRetries, err := strconv.Atoi(getEnv("ENRICHMENT_MAX_RETRIES", "3"))
	if err != nil {
		return nil, errors.New("invalid enrichment max retries")
	}

	retryDelay, err := strconv.Atoi(getEnv("ENRICHMENT_RETRY_DELAY", "2"))
	if err != nil {
		return nil, errors.New("invalid enrichment retry delay")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "PromoMarket API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "promo_market"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Gemini: GeminiConfig{
			ApiKey:  getEnv("GEMINI_API_KEY", ""),
			BaseUrl: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		OpenFoodFacts: OpenFoodFactsConfig{
			BaseUrl: getEnv("OPENFOODFACTS_BASE_URL", "https://world.openfoodfacts.org"),
		},
		Pipeline: PipelineConfig{
			EnrichmentBatchSize:  batchSize,
			EnrichmentMaxRetries: maxRetries,
			EnrichmentRetryDelay: retryDelay,
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Gemini.ApiKey == "" {
		return nil, errors.New("missing gemini api key")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
