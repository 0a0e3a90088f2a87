package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Transform TransformConfig
	Policy    PolicyConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port                  string
	Environment           string
	LogFilePath           string
	EditorLogFilePath     string
	CorsAllowedOrigins    string
	NatsURL               string
	RedisURL              string
	JwtSecret             string
	DocumentAnalysisTopic string
}

type DatabaseConfig struct {
	Connection string
}

type TransformConfig struct {
	MaxDepth     int
	NativeEmbeds bool
}

type PolicyConfig struct {
	FieldConfigPath string
	CacheTTLMinutes int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64
	Environment string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                  getEnv("APP_PORT", "3000"),
			Environment:           getEnv("GO_ENV", "development"),
			LogFilePath:           getEnv("LOG_FILE_PATH", "logs/app.log"),
			EditorLogFilePath:     getEnv("EDITOR_LOG_FILE_PATH", "logs/editor.log"),
			CorsAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:               getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:             getEnv("JWT_SECRET", ""),
			DocumentAnalysisTopic: getEnv("DOCUMENT_ANALYSIS_TOPIC", "DOCUMENT_ANALYSIS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Transform: TransformConfig{
			MaxDepth:     getEnvAsInt("TRANSFORM_MAX_DEPTH", 128),
			NativeEmbeds: getEnvAsBool("TRANSFORM_NATIVE_EMBEDS", false),
		},
		Policy: PolicyConfig{
			FieldConfigPath: getEnv("FIELD_CONFIG_PATH", ""),
			CacheTTLMinutes: getEnvAsInt("POLICY_CACHE_TTL_MINUTES", 60),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
			Environment: getEnv("GO_ENV", "development"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}
