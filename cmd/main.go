package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"farmershub/internal/app/hub/cache"
	"farmershub/internal/app/hub/config"
	"farmershub/internal/app/hub/entity"
	"farmershub/internal/app/hub/handler"
	"farmershub/internal/app/hub/infrastructure/messaging"
	"farmershub/internal/app/hub/repository"
	"farmershub/internal/app/hub/service"
	"farmershub/internal/app/hub/util"
	"farmershub/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("farmers-hub", os.Getenv("LOG_LEVEL"))

	// Подключаемся к базе данных PostgreSQL
	pool, err := connectDB(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	logger.Info().Msg("connected to PostgreSQL")

	// gorm поверх того же PostgreSQL для работы с таблицей отзывов
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open gorm connection")
	}

	// Подключаемся к Redis (хранилище сессий)
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	logger.Info().Msg("connected to Redis")

	// Kafka producer для событий отзывов
	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()

	// Инициализируем репозитории
	userRepo := repository.NewUserRepository(pool)
	reviewRepo := repository.NewReviewRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Session.TTL)

	tokenManager := util.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.TTL)
	validator := util.NewInputValidator()

	// Кеш сводок рейтинга с коротким TTL
	summaryCache := cache.NewTTLCache[uuid.UUID, *entity.RatingSummary](cfg.Reviews.CacheTTL)

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, sessionRepo, tokenManager, validator)
	ratingService := service.NewRatingService(reviewRepo, summaryCache)
	reviewService := service.NewReviewService(reviewRepo, ratingService, kafkaProducer, validator, cfg.Reviews)

	// Одноразовый перенос сессий старых форматов
	if _, err := authService.MigrateLegacySessions(context.Background()); err != nil {
		logger.Error().Err(err).Msg("legacy session migration failed")
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	reviewHandler := handler.NewReviewHandler(ratingService, reviewService)
	authMiddleware := handler.NewAuthMiddleware(tokenManager, authService)

	router := handler.SetupRoutes(authHandler, reviewHandler, authMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Ожидаем сигнала завершения (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя pgx connection pool
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// Пробуем подключиться с повторными попытками
	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
	}

	return pool, nil
}

// connectRedis создает и настраивает Redis клиент
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}
