// main.go — точка входа Bucket Gateway.
// Инициализация: config → logger → storage backend → адаптеры бакетов →
// сервисы (статистика, очистка, dephealth) → JWT → HTTP-сервер.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/api/handlers"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/api/middleware"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/api/openapi"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/buckets"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/config"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/server"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/service"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/backend"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Bucket Gateway запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Bucket Gateway остановлен")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// 3. Backend хранилища и адаптеры бакетов
	client, err := backend.Open(cfg, logger)
	if err != nil {
		return err
	}
	store := buckets.New(client, logger)

	// 4. Кэш статистики
	stats := service.NewStatsService(store, cfg.StatsCacheTTL, logger)

	// 5. Очистка email-логов
	if cfg.EmailRetention > 0 {
		retention := service.NewRetentionService(store.Emails, cfg.EmailRetention, cfg.RetentionInterval, logger)
		retention.Start(ctx)
		defer retention.Stop()
	} else {
		logger.Info("Очистка email-логов отключена (VS_EMAIL_RETENTION=0)")
	}

	// 6. Мониторинг зависимостей (только удалённое хранилище)
	if cfg.StorageBackend == config.BackendRemote {
		dh, err := service.NewDephealthService(service.DephealthConfig{
			ServiceID:     cfg.ServiceID,
			Group:         cfg.DephealthGroup,
			DepName:       "object-storage",
			TargetURL:     cfg.RemoteURL,
			HealthPath:    cfg.RemoteHealthPath,
			CheckInterval: cfg.DephealthCheckInterval,
		}, logger)
		if err != nil {
			return err
		}
		if err := dh.Start(ctx); err != nil {
			return err
		}
		defer dh.Stop()
	}

	// 7. JWT middleware
	var jwtAuth *middleware.JWTAuth
	if cfg.AuthEnabled() {
		jwtAuth, err = middleware.NewJWTAuth(ctx, middleware.JWTAuthConfig{
			JWKSURL:         cfg.JWKSURL,
			ClientTimeout:   cfg.JWKSClientTimeout,
			RefreshInterval: cfg.JWKSRefreshInterval,
			JWTLeeway:       cfg.JWTLeeway,
		}, logger)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("VS_JWKS_URL не задан: аутентификация отключена, владелец берётся из user_id")
	}

	// 8. OpenAPI-валидация запросов
	doc, err := openapi.Load()
	if err != nil {
		return err
	}
	validator, err := middleware.RequestValidator(doc, logger)
	if err != nil {
		return err
	}

	// 9. HTTP-сервер
	api := handlers.NewAPIHandler(store, stats, handlers.Options{
		AuthEnabled:   cfg.AuthEnabled(),
		MaxUploadSize: cfg.MaxUploadSize,
	}, logger)

	srv := server.New(cfg, logger, server.Deps{
		API:         api,
		Health:      handlers.NewHealthHandler(client, cfg.StorageBackend),
		JWTAuth:     jwtAuth,
		Validator:   validator,
		ServePublic: cfg.StorageBackend != config.BackendRemote,
	})

	// 10. Запуск сервера (блокирующий вызов с graceful shutdown)
	return srv.Run(ctx)
}
