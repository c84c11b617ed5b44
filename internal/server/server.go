// Пакет server — HTTP-сервер Bucket Gateway с graceful shutdown.
// TLS включается парой VS_TLS_CERT / VS_TLS_KEY.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apierrors "github.com/bigkaa/goartstore/bucket-gateway/internal/api/errors"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/api/handlers"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/api/middleware"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/config"
)

// Server — HTTP-сервер Bucket Gateway.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// Deps — компоненты, из которых собирается роутер.
type Deps struct {
	// API — обработчик бизнес-маршрутов
	API *handlers.APIHandler
	// Health — обработчик health endpoints
	Health *handlers.HealthHandler
	// JWTAuth — JWT middleware (nil — аутентификация отключена)
	JWTAuth *middleware.JWTAuth
	// Validator — OpenAPI-валидация запросов (nil — без валидации)
	Validator func(http.Handler) http.Handler
	// ServePublic — раздавать /public/* (backend local, memory)
	ServePublic bool
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, deps),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger.With(slog.String("component", "server")),
		cfg:        cfg,
	}
}

// NewRouter собирает chi-роутер. Вынесен отдельно для тестов.
func NewRouter(logger *slog.Logger, deps Deps) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.RequestID())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.NotFound(w, "Маршрут не найден")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.WriteError(w, http.StatusMethodNotAllowed, apierrors.CodeValidationError, "Метод не поддерживается")
	})

	// Публичные endpoints
	router.Get("/health/live", deps.Health.HealthLive)
	router.Get("/health/ready", deps.Health.HealthReady)
	router.Handle("/metrics", promhttp.Handler())
	if deps.ServePublic {
		deps.API.RegisterPublicRoutes(router)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if deps.Validator != nil {
			r.Use(deps.Validator)
		}
		if deps.JWTAuth != nil {
			r.Use(deps.JWTAuth.Middleware())
		}

		r.Group(func(r chi.Router) {
			r.Use(requireScope(deps.JWTAuth != nil, middleware.ScopeWrite))
			deps.API.RegisterUserRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireScope(deps.JWTAuth != nil, middleware.ScopeAdmin))
			deps.API.RegisterAdminRoutes(r)
		})
	})

	return router
}

// requireScope проверяет scope только при включённой аутентификации.
func requireScope(enabled bool, scope string) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RequireScope(scope)
}

// Run запускает сервер и блокируется до отмены ctx (сигнал завершения).
// После отмены выполняется graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
			slog.Bool("tls", s.cfg.TLSEnabled()),
		)

		var err error
		if s.cfg.TLSEnabled() {
			err = s.httpServer.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Получен сигнал завершения")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
