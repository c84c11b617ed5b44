// Пакет config — загрузка и валидация конфигурации Bucket Gateway
// из переменных окружения (префикс VS_).
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Допустимые значения VS_STORAGE_BACKEND.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
	BackendMemory = "memory"
)

// Config содержит все параметры конфигурации Bucket Gateway.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Идентификатор сервиса (имя вершины в топологии dephealth)
	ServiceID string
	// Путь к TLS сертификату (опционально, вместе с TLSKey)
	TLSCert string
	// Путь к TLS приватному ключу
	TLSKey string
	// Максимальный размер загружаемого файла в байтах
	MaxUploadSize int64

	// --- Хранилище ---

	// Тип backend-а: local, remote, memory
	StorageBackend string
	// Корневая директория данных (backend = local)
	DataDir string
	// Префикс публичных URL (backend = local, memory)
	PublicBaseURL string
	// URL управляемого хранилища (backend = remote)
	RemoteURL string
	// Service-role ключ управляемого хранилища
	RemoteServiceKey string
	// Путь к CA-сертификату управляемого хранилища (опционально)
	RemoteCACert string
	// Таймаут HTTP-запросов к хранилищу
	RemoteTimeout time.Duration
	// Путь health endpoint хранилища
	RemoteHealthPath string

	// --- JWT ---

	// URL JWKS endpoint (пустая строка — аутентификация отключена)
	JWKSURL string
	// Допуск расхождения часов при проверке exp/nbf
	JWTLeeway time.Duration
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration

	// --- Фоновые задачи и кэш ---

	// TTL кэша агрегированной статистики (0 — кэш отключён)
	StatsCacheTTL time.Duration
	// Срок хранения email-логов (0 — очистка отключена)
	EmailRetention time.Duration
	// Интервал запуска очистки email-логов
	RetentionInterval time.Duration

	// --- Dephealth ---

	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
	// Группа сервиса в топологии
	DephealthGroup string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера
	HTTPIdleTimeout time.Duration
	// Таймаут graceful shutdown
	ShutdownTimeout time.Duration

	// --- Логирование ---

	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
}

// AuthEnabled сообщает, включена ли JWT-аутентификация.
func (c *Config) AuthEnabled() bool {
	return c.JWKSURL != ""
}

// TLSEnabled сообщает, задана ли пара сертификат/ключ.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// VS_PORT — порт HTTP-сервера (по умолчанию 8020)
	cfg.Port, err = getEnvInt("VS_PORT", 8020)
	if err != nil {
		return nil, fmt.Errorf("VS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("VS_PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	// VS_SERVICE_ID — имя сервиса (по умолчанию bucket-gateway)
	cfg.ServiceID = getEnvDefault("VS_SERVICE_ID", "bucket-gateway")

	// VS_TLS_CERT / VS_TLS_KEY — задаются парой
	cfg.TLSCert = os.Getenv("VS_TLS_CERT")
	cfg.TLSKey = os.Getenv("VS_TLS_KEY")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("VS_TLS_CERT и VS_TLS_KEY должны задаваться вместе")
	}

	// VS_MAX_UPLOAD_SIZE — максимальный размер файла (по умолчанию 50 MB)
	cfg.MaxUploadSize, err = getEnvInt64("VS_MAX_UPLOAD_SIZE", 50<<20)
	if err != nil {
		return nil, fmt.Errorf("VS_MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("VS_MAX_UPLOAD_SIZE: значение должно быть > 0")
	}

	// --- Хранилище ---

	// VS_STORAGE_BACKEND — local (по умолчанию), remote, memory
	cfg.StorageBackend = strings.ToLower(getEnvDefault("VS_STORAGE_BACKEND", BackendLocal))
	switch cfg.StorageBackend {
	case BackendLocal, BackendRemote, BackendMemory:
	default:
		return nil, fmt.Errorf("VS_STORAGE_BACKEND: недопустимое значение %q, допустимые: local, remote, memory", cfg.StorageBackend)
	}

	cfg.DataDir = getEnvDefault("VS_DATA_DIR", "./data")
	cfg.PublicBaseURL = getEnvDefault("VS_PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d/public", cfg.Port))

	cfg.RemoteURL = os.Getenv("VS_REMOTE_URL")
	cfg.RemoteServiceKey = os.Getenv("VS_REMOTE_SERVICE_KEY")
	cfg.RemoteCACert = os.Getenv("VS_REMOTE_CA_CERT")
	cfg.RemoteHealthPath = getEnvDefault("VS_REMOTE_HEALTH_PATH", "/storage/v1/status")

	cfg.RemoteTimeout, err = getEnvDuration("VS_REMOTE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VS_REMOTE_TIMEOUT: %w", err)
	}

	if cfg.StorageBackend == BackendRemote {
		if cfg.RemoteURL, err = getEnvRequired("VS_REMOTE_URL"); err != nil {
			return nil, err
		}
		if _, err := url.ParseRequestURI(cfg.RemoteURL); err != nil {
			return nil, fmt.Errorf("VS_REMOTE_URL: некорректный URL: %w", err)
		}
		if cfg.RemoteServiceKey, err = getEnvRequired("VS_REMOTE_SERVICE_KEY"); err != nil {
			return nil, err
		}
	}

	// --- JWT ---

	cfg.JWKSURL = os.Getenv("VS_JWKS_URL")
	cfg.JWTLeeway, err = getEnvDuration("VS_JWT_LEEWAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VS_JWT_LEEWAY: %w", err)
	}
	cfg.JWKSClientTimeout, err = getEnvDuration("VS_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VS_JWKS_CLIENT_TIMEOUT: %w", err)
	}
	cfg.JWKSRefreshInterval, err = getEnvDuration("VS_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("VS_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// --- Фоновые задачи и кэш ---

	cfg.StatsCacheTTL, err = getEnvDuration("VS_STATS_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VS_STATS_CACHE_TTL: %w", err)
	}

	cfg.EmailRetention, err = getEnvDuration("VS_EMAIL_RETENTION", 0)
	if err != nil {
		return nil, fmt.Errorf("VS_EMAIL_RETENTION: %w", err)
	}

	cfg.RetentionInterval, err = getEnvDuration("VS_RETENTION_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("VS_RETENTION_INTERVAL: %w", err)
	}
	if cfg.RetentionInterval <= 0 {
		return nil, fmt.Errorf("VS_RETENTION_INTERVAL: значение должно быть > 0")
	}

	// --- Dephealth ---

	cfg.DephealthCheckInterval, err = getEnvDuration("VS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthGroup = getEnvDefault("VS_DEPHEALTH_GROUP", "ventaro")

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("VS_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VS_HTTP_READ_TIMEOUT: %w", err)
	}

	cfg.HTTPWriteTimeout, err = getEnvDuration("VS_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VS_HTTP_WRITE_TIMEOUT: %w", err)
	}

	cfg.HTTPIdleTimeout, err = getEnvDuration("VS_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VS_HTTP_IDLE_TIMEOUT: %w", err)
	}

	cfg.ShutdownTimeout, err = getEnvDuration("VS_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("VS_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Логирование ---

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("VS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("VS_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("VS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("VS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 из переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d < 0 {
		return 0, fmt.Errorf("длительность не может быть отрицательной: %q", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
