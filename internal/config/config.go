package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию KidQuest-бота.
type Config struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9091"`

	// Настройки Telegram
	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`

	// Настройки AI (по умолчанию OpenRouter с бесплатной моделью qwen)
	AIClientType  string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIAPIKey      string        `envconfig:"AI_API_KEY"`
	AIBaseURL     string        `envconfig:"AI_BASE_URL" default:"https://openrouter.ai/api/v1"`
	AIModel       string        `envconfig:"AI_MODEL" default:"qwen/qwen3-4b:free"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"90s"`
	AIMaxAttempts int           `envconfig:"AI_MAX_ATTEMPTS" default:"3"`
	AIRetryDelay  time.Duration `envconfig:"AI_RETRY_DELAY" default:"1s"`

	// Настройки Redis (хранилище сессий)
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"72h"`

	// Настройки PostgreSQL (архив квестов; отключён, если DB_HOST пуст)
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"kidquest"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// ArchiveEnabled сообщает, настроен ли архив квестов в PostgreSQL.
func (c *Config) ArchiveEnabled() bool {
	return c.DBHost != ""
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if strings.ToLower(cfg.AIClientType) == "openai" && cfg.AIAPIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY не задан для AI_CLIENT_TYPE=openai")
	}
	return &cfg, nil
}
