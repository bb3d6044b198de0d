package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Session  SessionConfig
	Reviews  ReviewsConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки подключения к Redis (хранилище сессий)
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для событий отзывов
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SessionConfig - настройки пользовательских сессий
type SessionConfig struct {
	JWTSecret string
	TTL       time.Duration // Время жизни сессии (по умолчанию 24 часа)
}

// ReviewsConfig - настройки подсистемы отзывов
type ReviewsConfig struct {
	CacheTTL         time.Duration // Время жизни кеша сводок рейтинга
	CommentMaxLength int           // Максимальная длина комментария
	CommentMinLength int           // Минимальная длина непустого комментария (0 отключает проверку)
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("RATING_CACHE_TTL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATING_CACHE_TTL: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "farmershub"),
			Password: getEnv("DB_PASSWORD", "farmershub"),
			DBName:   getEnv("DB_NAME", "farmers_hub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "review_events"),
		},
		Session: SessionConfig{
			JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			TTL:       sessionTTL,
		},
		Reviews: ReviewsConfig{
			CacheTTL:         cacheTTL,
			CommentMaxLength: getEnvInt("REVIEW_COMMENT_MAX_LENGTH", 500),
			CommentMinLength: getEnvInt("REVIEW_COMMENT_MIN_LENGTH", 3),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает значение переменной окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
