package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

// allKeys — все переменные окружения VS_*, которые читает Load.
var allKeys = []string{
	"VS_PORT", "VS_SERVICE_ID", "VS_TLS_CERT", "VS_TLS_KEY", "VS_MAX_UPLOAD_SIZE",
	"VS_STORAGE_BACKEND", "VS_DATA_DIR", "VS_PUBLIC_BASE_URL",
	"VS_REMOTE_URL", "VS_REMOTE_SERVICE_KEY", "VS_REMOTE_CA_CERT",
	"VS_REMOTE_TIMEOUT", "VS_REMOTE_HEALTH_PATH",
	"VS_JWKS_URL", "VS_JWT_LEEWAY", "VS_JWKS_CLIENT_TIMEOUT", "VS_JWKS_REFRESH_INTERVAL",
	"VS_STATS_CACHE_TTL", "VS_EMAIL_RETENTION", "VS_RETENTION_INTERVAL",
	"VS_DEPHEALTH_CHECK_INTERVAL", "VS_DEPHEALTH_GROUP",
	"VS_HTTP_READ_TIMEOUT", "VS_HTTP_WRITE_TIMEOUT", "VS_HTTP_IDLE_TIMEOUT",
	"VS_SHUTDOWN_TIMEOUT", "VS_LOG_LEVEL", "VS_LOG_FORMAT",
}

// clearEnv обнуляет все VS_* переменные на время теста.
// Пустое значение Load трактует как незаданное.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if cfg.Port != 8020 {
		t.Errorf("Port: ожидалось 8020, получено %d", cfg.Port)
	}
	if cfg.ServiceID != "bucket-gateway" {
		t.Errorf("ServiceID: ожидалось 'bucket-gateway', получено %q", cfg.ServiceID)
	}
	if cfg.StorageBackend != BackendLocal {
		t.Errorf("StorageBackend: ожидалось 'local', получено %q", cfg.StorageBackend)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir: ожидалось './data', получено %q", cfg.DataDir)
	}
	if cfg.PublicBaseURL != "http://localhost:8020/public" {
		t.Errorf("PublicBaseURL: получено %q", cfg.PublicBaseURL)
	}
	if cfg.MaxUploadSize != 52428800 {
		t.Errorf("MaxUploadSize: ожидалось 52428800, получено %d", cfg.MaxUploadSize)
	}
	if cfg.RemoteTimeout != 30*time.Second {
		t.Errorf("RemoteTimeout: ожидалось 30s, получено %v", cfg.RemoteTimeout)
	}
	if cfg.RemoteHealthPath != "/storage/v1/status" {
		t.Errorf("RemoteHealthPath: получено %q", cfg.RemoteHealthPath)
	}
	if cfg.AuthEnabled() {
		t.Error("AuthEnabled: ожидалось false без VS_JWKS_URL")
	}
	if cfg.TLSEnabled() {
		t.Error("TLSEnabled: ожидалось false")
	}
	if cfg.JWTLeeway != 5*time.Second {
		t.Errorf("JWTLeeway: ожидалось 5s, получено %v", cfg.JWTLeeway)
	}
	if cfg.JWKSRefreshInterval != 15*time.Minute {
		t.Errorf("JWKSRefreshInterval: ожидалось 15m, получено %v", cfg.JWKSRefreshInterval)
	}
	if cfg.StatsCacheTTL != 30*time.Second {
		t.Errorf("StatsCacheTTL: ожидалось 30s, получено %v", cfg.StatsCacheTTL)
	}
	if cfg.EmailRetention != 0 {
		t.Errorf("EmailRetention: ожидалось 0, получено %v", cfg.EmailRetention)
	}
	if cfg.RetentionInterval != time.Hour {
		t.Errorf("RetentionInterval: ожидалось 1h, получено %v", cfg.RetentionInterval)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval: ожидалось 15s, получено %v", cfg.DephealthCheckInterval)
	}
	if cfg.DephealthGroup != "ventaro" {
		t.Errorf("DephealthGroup: получено %q", cfg.DephealthGroup)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 10s, получено %v", cfg.ShutdownTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: ожидалось INFO, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: ожидалось 'json', получено %q", cfg.LogFormat)
	}
}

func TestLoad_RemoteBackend(t *testing.T) {
	clearEnv(t)
	setEnv(t, map[string]string{
		"VS_STORAGE_BACKEND":    "remote",
		"VS_REMOTE_URL":         "https://project.example.co",
		"VS_REMOTE_SERVICE_KEY": "secret",
		"VS_REMOTE_TIMEOUT":     "5s",
		"VS_JWKS_URL":           "https://auth.example.com/.well-known/jwks.json",
		"VS_LOG_LEVEL":          "debug",
		"VS_LOG_FORMAT":         "text",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if cfg.StorageBackend != BackendRemote {
		t.Errorf("StorageBackend: получено %q", cfg.StorageBackend)
	}
	if cfg.RemoteServiceKey != "secret" {
		t.Errorf("RemoteServiceKey: получено %q", cfg.RemoteServiceKey)
	}
	if cfg.RemoteTimeout != 5*time.Second {
		t.Errorf("RemoteTimeout: ожидалось 5s, получено %v", cfg.RemoteTimeout)
	}
	if !cfg.AuthEnabled() {
		t.Error("AuthEnabled: ожидалось true")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: ожидалось DEBUG, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: получено %q", cfg.LogFormat)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{"порт вне диапазона", map[string]string{"VS_PORT": "70000"}, "VS_PORT"},
		{"порт не число", map[string]string{"VS_PORT": "abc"}, "VS_PORT"},
		{"неизвестный backend", map[string]string{"VS_STORAGE_BACKEND": "s3"}, "VS_STORAGE_BACKEND"},
		{"remote без URL", map[string]string{"VS_STORAGE_BACKEND": "remote", "VS_REMOTE_SERVICE_KEY": "k"}, "VS_REMOTE_URL"},
		{"remote без ключа", map[string]string{"VS_STORAGE_BACKEND": "remote", "VS_REMOTE_URL": "https://x.example.co"}, "VS_REMOTE_SERVICE_KEY"},
		{"TLS без ключа", map[string]string{"VS_TLS_CERT": "/tmp/tls.crt"}, "VS_TLS_CERT"},
		{"нулевой размер загрузки", map[string]string{"VS_MAX_UPLOAD_SIZE": "0"}, "VS_MAX_UPLOAD_SIZE"},
		{"некорректная длительность", map[string]string{"VS_STATS_CACHE_TTL": "soon"}, "VS_STATS_CACHE_TTL"},
		{"отрицательная длительность", map[string]string{"VS_EMAIL_RETENTION": "-1h"}, "VS_EMAIL_RETENTION"},
		{"нулевой интервал очистки", map[string]string{"VS_RETENTION_INTERVAL": "0s"}, "VS_RETENTION_INTERVAL"},
		{"неизвестный уровень логов", map[string]string{"VS_LOG_LEVEL": "trace"}, "VS_LOG_LEVEL"},
		{"неизвестный формат логов", map[string]string{"VS_LOG_FORMAT": "xml"}, "VS_LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setEnv(t, tt.vars)

			_, err := Load()
			if err == nil {
				t.Fatal("ожидалась ошибка")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ошибка %q не содержит %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		if err != nil {
			t.Errorf("parseLogLevel(%q): неожиданная ошибка %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, ожидалось %v", tt.input, got, tt.want)
		}
	}
}
