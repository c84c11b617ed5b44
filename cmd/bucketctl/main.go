// main.go — точка входа bucketctl.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bigkaa/goartstore/bucket-gateway/internal/buckets"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/cli"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/config"
	"github.com/bigkaa/goartstore/bucket-gateway/internal/storage/backend"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	open := func() (*buckets.Store, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("загрузка конфигурации: %w", err)
		}
		// Журнал CLI — только предупреждения и ошибки в stderr
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		client, err := backend.Open(cfg, logger)
		if err != nil {
			return nil, err
		}
		return buckets.New(client, logger), nil
	}

	if err := cli.NewRootCmd(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}
