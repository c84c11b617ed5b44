// Пакет backend — выбор реализации storage.Client по конфигурации.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/config"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/localstore"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/memstore"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/remote"
)

// Open создаёт клиент хранилища согласно cfg.StorageBackend.
func Open(cfg *config.Config, logger *slog.Logger) (storage.Client, error) {
	switch cfg.StorageBackend {
	case config.BackendRemote:
		client, err := remote.New(remote.Config{
			BaseURL:    cfg.RemoteURL,
			ServiceKey: cfg.RemoteServiceKey,
			CACertPath: cfg.RemoteCACert,
			Timeout:    cfg.RemoteTimeout,
			HealthPath: cfg.RemoteHealthPath,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("создание клиента удалённого хранилища: %w", err)
		}
		logger.Info("Хранилище: удалённый backend", slog.String("url", client.BaseURL()))
		return client, nil

	case config.BackendLocal:
		store, err := localstore.New(cfg.DataDir, cfg.PublicBaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("инициализация локального хранилища: %w", err)
		}
		logger.Info("Хранилище: локальный backend", slog.String("data_dir", store.Root()))
		return store, nil

	case config.BackendMemory:
		logger.Warn("Хранилище: in-memory backend, данные не сохраняются между перезапусками")
		return memstore.New(cfg.PublicBaseURL), nil

	default:
		return nil, fmt.Errorf("неизвестный backend хранилища %q", cfg.StorageBackend)
	}
}
