package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kidquest-server/internal/bot"
	"kidquest-server/internal/config"
	"kidquest-server/internal/database"
	"kidquest-server/internal/repository"
	"kidquest-server/internal/service"
)

func main() {
	// .env опционален: в контейнере конфигурация приходит из окружения.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	aiClient, err := service.NewAIClient(cfg, logger)
	if err != nil {
		logger.Fatal("Ошибка создания AI клиента", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("Ошибка подключения к Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Подключение к Redis установлено", zap.String("addr", cfg.RedisAddr))

	sessions := repository.NewRedisSessionRepository(redisClient, cfg.SessionTTL, logger)

	var quests repository.QuestRepository
	if cfg.ArchiveEnabled() {
		pool, err := database.NewPool(ctx, cfg.GetDSN(), logger)
		if err != nil {
			logger.Fatal("Ошибка подключения к PostgreSQL", zap.Error(err))
		}
		defer pool.Close()
		if err := database.ApplyMigrations(pool); err != nil {
			logger.Fatal("Ошибка применения миграций", zap.Error(err))
		}
		quests = repository.NewPgQuestRepository(pool, logger)
	} else {
		logger.Info("Архив квестов отключён: DB_HOST не задан")
	}

	engine := service.NewQuestEngine(aiClient, logger, cfg.AIMaxAttempts, cfg.AIRetryDelay)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Ошибка подключения к Telegram API", zap.Error(err))
	}

	metricsServer := startMetricsServer(cfg.MetricsPort, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Ошибка остановки сервера метрик", zap.Error(err))
		}
	}()

	b := bot.New(api, engine, sessions, quests, logger)
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Бот завершился с ошибкой", zap.Error(err))
	}
	logger.Info("Завершение работы")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func startMetricsServer(port string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		logger.Info("Сервер метрик запущен", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ошибка сервера метрик", zap.Error(err))
			os.Exit(1)
		}
	}()
	return server
}
